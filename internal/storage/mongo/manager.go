package mongo

import (
	"context"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/bursa/internal/common"
	"github.com/ternarybob/bursa/internal/interfaces"
)

// Collection names in the configured database.
const (
	marketsCollection          = "markets"
	financialDataCollection    = "financialdata"
	valuationMetricsCollection = "valuationmetrics"
)

// Manager implements the StorageManager interface for MongoDB
type Manager struct {
	conn       *Connection
	market     interfaces.MarketStorage
	financial  interfaces.FinancialStorage
	subscriber interfaces.SubscriberStorage
	logger     arbor.ILogger
}

// NewManager creates a new Mongo storage manager. The connection is
// lazy; construction performs no I/O.
func NewManager(logger arbor.ILogger, config *common.MongoConfig) (interfaces.StorageManager, error) {
	conn := NewConnection(logger, config)

	manager := &Manager{
		conn:       conn,
		market:     NewMarketStorage(conn, logger),
		financial:  NewFinancialStorage(conn, logger),
		subscriber: NewSubscriberStorage(conn, logger),
		logger:     logger,
	}

	logger.Info().Str("database", config.Database).Msg("Mongo storage manager initialized")

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

// Ping verifies the deployment is reachable, connecting if needed.
func (m *Manager) Ping(ctx context.Context) error {
	return m.conn.Ping(ctx)
}

// Close disconnects the shared client
func (m *Manager) Close() error {
	m.logger.Debug().Msg("Closing Mongo storage manager")
	return m.conn.Close()
}
