package badger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/bursa/internal/common"
	"github.com/ternarybob/bursa/internal/interfaces"
	"github.com/ternarybob/bursa/internal/models"
	"github.com/timshannon/badgerhold/v4"
)

// FinancialStorage implements the FinancialStorage interface for Badger.
// Both document types are keyed by ticker; badgerhold namespaces keys
// per type so the two histories never collide.
type FinancialStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewFinancialStorage creates a new FinancialStorage instance
func NewFinancialStorage(db *BadgerDB, logger arbor.ILogger) interfaces.FinancialStorage {
	return &FinancialStorage{
		db:     db,
		logger: logger,
	}
}

func (s *FinancialStorage) GetFinancialData(ctx context.Context, tickers []string) ([]*models.FinancialData, error) {
	if len(tickers) == 0 {
		return []*models.FinancialData{}, nil
	}

	var docs []models.FinancialData
	err := s.db.Store().Find(&docs, badgerhold.Where("Ticker").In(badgerhold.Slice(tickers)...))
	if err != nil {
		return nil, common.NewInfrastructureError("find financial data", err)
	}

	result := make([]*models.FinancialData, len(docs))
	for i := range docs {
		result[i] = &docs[i]
	}
	return result, nil
}

func (s *FinancialStorage) GetValuationMetrics(ctx context.Context, tickers []string) ([]*models.ValuationMetrics, error) {
	if len(tickers) == 0 {
		return []*models.ValuationMetrics{}, nil
	}

	var docs []models.ValuationMetrics
	err := s.db.Store().Find(&docs, badgerhold.Where("Ticker").In(badgerhold.Slice(tickers)...))
	if err != nil {
		return nil, common.NewInfrastructureError("find valuation metrics", err)
	}

	result := make([]*models.ValuationMetrics, len(docs))
	for i := range docs {
		result[i] = &docs[i]
	}
	return result, nil
}

func (s *FinancialStorage) GetFinancialDataByTicker(ctx context.Context, ticker string) (*models.FinancialData, error) {
	var doc models.FinancialData
	if err := s.db.Store().Get(ticker, &doc); err != nil {
		if errors.Is(err, badgerhold.ErrNotFound) {
			return nil, common.NewNotFoundError("financial data", ticker)
		}
		return nil, common.NewInfrastructureError("get financial data", err)
	}
	return &doc, nil
}

func (s *FinancialStorage) GetValuationMetricsByTicker(ctx context.Context, ticker string) (*models.ValuationMetrics, error) {
	var doc models.ValuationMetrics
	if err := s.db.Store().Get(ticker, &doc); err != nil {
		if errors.Is(err, badgerhold.ErrNotFound) {
			return nil, common.NewNotFoundError("valuation metrics", ticker)
		}
		return nil, common.NewInfrastructureError("get valuation metrics", err)
	}
	return &doc, nil
}

func (s *FinancialStorage) SaveFinancialData(ctx context.Context, data *models.FinancialData) error {
	if data.Ticker == "" {
		return fmt.Errorf("financial data ticker is required")
	}
	data.UpdatedAt = time.Now().UTC()

	if err := s.db.Store().Upsert(data.Ticker, data); err != nil {
		return common.NewInfrastructureError("save financial data", err)
	}
	return nil
}

func (s *FinancialStorage) SaveValuationMetrics(ctx context.Context, metrics *models.ValuationMetrics) error {
	if metrics.Ticker == "" {
		return fmt.Errorf("valuation metrics ticker is required")
	}
	metrics.UpdatedAt = time.Now().UTC()

	if err := s.db.Store().Upsert(metrics.Ticker, metrics); err != nil {
		return common.NewInfrastructureError("save valuation metrics", err)
	}
	return nil
}
