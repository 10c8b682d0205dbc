package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/bursa/internal/common"
	"github.com/ternarybob/bursa/internal/interfaces"
	"github.com/ternarybob/bursa/internal/models"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// FinancialStorage implements the FinancialStorage interface for MongoDB
type FinancialStorage struct {
	conn   *Connection
	logger arbor.ILogger
}

// NewFinancialStorage creates a new FinancialStorage instance
func NewFinancialStorage(conn *Connection, logger arbor.ILogger) interfaces.FinancialStorage {
	return &FinancialStorage{
		conn:   conn,
		logger: logger,
	}
}

func (s *FinancialStorage) GetFinancialData(ctx context.Context, tickers []string) ([]*models.FinancialData, error) {
	if len(tickers) == 0 {
		return []*models.FinancialData{}, nil
	}

	db, err := s.conn.Database(ctx)
	if err != nil {
		return nil, err
	}

	cursor, err := db.Collection(financialDataCollection).Find(ctx, bson.M{"ticker": bson.M{"$in": tickers}})
	if err != nil {
		s.conn.ObserveError(err)
		return nil, common.NewInfrastructureError("find financial data", err)
	}

	var docs []*models.FinancialData
	if err := cursor.All(ctx, &docs); err != nil {
		s.conn.ObserveError(err)
		return nil, common.NewInfrastructureError("decode financial data", err)
	}
	return docs, nil
}

func (s *FinancialStorage) GetValuationMetrics(ctx context.Context, tickers []string) ([]*models.ValuationMetrics, error) {
	if len(tickers) == 0 {
		return []*models.ValuationMetrics{}, nil
	}

	db, err := s.conn.Database(ctx)
	if err != nil {
		return nil, err
	}

	cursor, err := db.Collection(valuationMetricsCollection).Find(ctx, bson.M{"ticker": bson.M{"$in": tickers}})
	if err != nil {
		s.conn.ObserveError(err)
		return nil, common.NewInfrastructureError("find valuation metrics", err)
	}

	var docs []*models.ValuationMetrics
	if err := cursor.All(ctx, &docs); err != nil {
		s.conn.ObserveError(err)
		return nil, common.NewInfrastructureError("decode valuation metrics", err)
	}
	return docs, nil
}

func (s *FinancialStorage) GetFinancialDataByTicker(ctx context.Context, ticker string) (*models.FinancialData, error) {
	db, err := s.conn.Database(ctx)
	if err != nil {
		return nil, err
	}

	var doc models.FinancialData
	err = db.Collection(financialDataCollection).FindOne(ctx, bson.M{"ticker": ticker}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, common.NewNotFoundError("financial data", ticker)
		}
		s.conn.ObserveError(err)
		return nil, common.NewInfrastructureError("get financial data", err)
	}
	return &doc, nil
}

func (s *FinancialStorage) GetValuationMetricsByTicker(ctx context.Context, ticker string) (*models.ValuationMetrics, error) {
	db, err := s.conn.Database(ctx)
	if err != nil {
		return nil, err
	}

	var doc models.ValuationMetrics
	err = db.Collection(valuationMetricsCollection).FindOne(ctx, bson.M{"ticker": ticker}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, common.NewNotFoundError("valuation metrics", ticker)
		}
		s.conn.ObserveError(err)
		return nil, common.NewInfrastructureError("get valuation metrics", err)
	}
	return &doc, nil
}

func (s *FinancialStorage) SaveFinancialData(ctx context.Context, data *models.FinancialData) error {
	if data.Ticker == "" {
		return fmt.Errorf("financial data ticker is required")
	}

	db, err := s.conn.Database(ctx)
	if err != nil {
		return err
	}

	data.UpdatedAt = time.Now().UTC()
	_, err = db.Collection(financialDataCollection).ReplaceOne(
		ctx,
		bson.M{"ticker": data.Ticker},
		data,
		options.Replace().SetUpsert(true),
	)
	if err != nil {
		s.conn.ObserveError(err)
		return common.NewInfrastructureError("save financial data", err)
	}
	return nil
}

func (s *FinancialStorage) SaveValuationMetrics(ctx context.Context, metrics *models.ValuationMetrics) error {
	if metrics.Ticker == "" {
		return fmt.Errorf("valuation metrics ticker is required")
	}

	db, err := s.conn.Database(ctx)
	if err != nil {
		return err
	}

	metrics.UpdatedAt = time.Now().UTC()
	_, err = db.Collection(valuationMetricsCollection).ReplaceOne(
		ctx,
		bson.M{"ticker": metrics.Ticker},
		metrics,
		options.Replace().SetUpsert(true),
	)
	if err != nil {
		s.conn.ObserveError(err)
		return common.NewInfrastructureError("save valuation metrics", err)
	}
	return nil
}
