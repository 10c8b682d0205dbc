package mongo

import (
	"context"
	"errors"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/bursa/internal/common"
	"github.com/ternarybob/bursa/internal/interfaces"
	"github.com/ternarybob/bursa/internal/models"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// MarketStorage implements the MarketStorage interface for MongoDB.
// The markets collection holds exactly one document: the denormalized
// region tree.
type MarketStorage struct {
	conn   *Connection
	logger arbor.ILogger
}

// NewMarketStorage creates a new MarketStorage instance
func NewMarketStorage(conn *Connection, logger arbor.ILogger) interfaces.MarketStorage {
	return &MarketStorage{
		conn:   conn,
		logger: logger,
	}
}

func (s *MarketStorage) GetMarketDocument(ctx context.Context) (*models.MarketDocument, error) {
	db, err := s.conn.Database(ctx)
	if err != nil {
		return nil, err
	}

	var doc models.MarketDocument
	err = db.Collection(marketsCollection).FindOne(ctx, bson.M{}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, common.NewNotFoundError("markets document", models.MarketDocumentID)
		}
		s.conn.ObserveError(err)
		return nil, common.NewInfrastructureError("get markets document", err)
	}
	return &doc, nil
}

func (s *MarketStorage) SaveMarketDocument(ctx context.Context, doc *models.MarketDocument) error {
	db, err := s.conn.Database(ctx)
	if err != nil {
		return err
	}

	doc.ID = models.MarketDocumentID
	doc.UpdatedAt = time.Now().UTC()

	_, err = db.Collection(marketsCollection).ReplaceOne(
		ctx,
		bson.M{"_id": doc.ID},
		doc,
		options.Replace().SetUpsert(true),
	)
	if err != nil {
		s.conn.ObserveError(err)
		return common.NewInfrastructureError("save markets document", err)
	}

	s.logger.Debug().Int("regions", len(doc.Regions)).Msg("Markets document saved")
	return nil
}
