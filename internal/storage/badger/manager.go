package badger

import (
	"context"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/bursa/internal/common"
	"github.com/ternarybob/bursa/internal/interfaces"
)

// Manager implements the StorageManager interface for Badger
type Manager struct {
	db         *BadgerDB
	market     interfaces.MarketStorage
	financial  interfaces.FinancialStorage
	subscriber interfaces.SubscriberStorage
	logger     arbor.ILogger
}

// NewManager creates a new Badger storage manager
func NewManager(logger arbor.ILogger, config *common.BadgerConfig) (interfaces.StorageManager, error) {
	db, err := NewBadgerDB(logger, config)
	if err != nil {
		return nil, err
	}

	manager := &Manager{
		db:         db,
		market:     NewMarketStorage(db, logger),
		financial:  NewFinancialStorage(db, logger),
		subscriber: NewSubscriberStorage(db, logger),
		logger:     logger,
	}

	logger.Info().Str("path", config.Path).Msg("Badger storage manager initialized")

	return manager, nil
}

// MarketStorage returns the Market storage interface
func (m *Manager) MarketStorage() interfaces.MarketStorage {
	return m.market
}

// FinancialStorage returns the Financial storage interface
func (m *Manager) FinancialStorage() interfaces.FinancialStorage {
	return m.financial
}

// SubscriberStorage returns the Subscriber storage interface
func (m *Manager) SubscriberStorage() interfaces.SubscriberStorage {
	return m.subscriber
}

// Ping reports store health. The embedded store is healthy whenever it is open.
func (m *Manager) Ping(ctx context.Context) error {
	return nil
}

// Close closes the underlying database
func (m *Manager) Close() error {
	m.logger.Debug().Msg("Closing Badger storage manager")
	return m.db.Close()
}
