package interfaces

import (
	"context"

	"github.com/ternarybob/bursa/internal/models"
)

// MarketStorage - interface for the denormalized markets document
type MarketStorage interface {
	// GetMarketDocument loads the single regions document. Returns a
	// NotFoundError when the store has never been seeded.
	GetMarketDocument(ctx context.Context) (*models.MarketDocument, error)
	SaveMarketDocument(ctx context.Context, doc *models.MarketDocument) error
}

// FinancialStorage - interface for financial and valuation documents
type FinancialStorage interface {
	// Batch reads: one round trip per call, unmatched tickers simply
	// missing from the result (never an error).
	GetFinancialData(ctx context.Context, tickers []string) ([]*models.FinancialData, error)
	GetValuationMetrics(ctx context.Context, tickers []string) ([]*models.ValuationMetrics, error)

	// Single-document reads for the merged financials endpoint.
	GetFinancialDataByTicker(ctx context.Context, ticker string) (*models.FinancialData, error)
	GetValuationMetricsByTicker(ctx context.Context, ticker string) (*models.ValuationMetrics, error)

	// Writers used by the collector.
	SaveFinancialData(ctx context.Context, data *models.FinancialData) error
	SaveValuationMetrics(ctx context.Context, metrics *models.ValuationMetrics) error
}

// SubscriberStorage - interface for notification subscriptions
type SubscriberStorage interface {
	// UpsertSubscriber inserts or updates by email within the given
	// set. Reports true when a new document was created.
	UpsertSubscriber(ctx context.Context, set models.SubscriptionSet, sub *models.Subscriber) (bool, error)
	GetSubscriber(ctx context.Context, set models.SubscriptionSet, email string) (*models.Subscriber, error)
}

// StorageManager - composite interface for all storage operations
type StorageManager interface {
	MarketStorage() MarketStorage
	FinancialStorage() FinancialStorage
	SubscriberStorage() SubscriberStorage
	Ping(ctx context.Context) error
	Close() error
}
