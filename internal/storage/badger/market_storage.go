package badger

import (
	"context"
	"errors"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/bursa/internal/common"
	"github.com/ternarybob/bursa/internal/interfaces"
	"github.com/ternarybob/bursa/internal/models"
	"github.com/timshannon/badgerhold/v4"
)

// MarketStorage implements the MarketStorage interface for Badger
type MarketStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewMarketStorage creates a new MarketStorage instance
func NewMarketStorage(db *BadgerDB, logger arbor.ILogger) interfaces.MarketStorage {
	return &MarketStorage{
		db:     db,
		logger: logger,
	}
}

func (s *MarketStorage) GetMarketDocument(ctx context.Context) (*models.MarketDocument, error) {
	var doc models.MarketDocument
	if err := s.db.Store().Get(models.MarketDocumentID, &doc); err != nil {
		if errors.Is(err, badgerhold.ErrNotFound) {
			return nil, common.NewNotFoundError("markets document", models.MarketDocumentID)
		}
		return nil, common.NewInfrastructureError("get markets document", err)
	}
	return &doc, nil
}

func (s *MarketStorage) SaveMarketDocument(ctx context.Context, doc *models.MarketDocument) error {
	doc.ID = models.MarketDocumentID
	doc.UpdatedAt = time.Now().UTC()

	if err := s.db.Store().Upsert(doc.ID, doc); err != nil {
		return common.NewInfrastructureError("save markets document", err)
	}

	s.logger.Debug().Int("regions", len(doc.Regions)).Msg("Markets document saved")
	return nil
}
