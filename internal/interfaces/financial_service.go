package interfaces

import (
	"context"

	"github.com/ternarybob/bursa/internal/models"
)

// FinancialService - batch resolution of financial and valuation documents
type FinancialService interface {
	// Resolve batch-fetches both collections for the given tickers
	// (the two fetches run concurrently) and returns a ticker-keyed
	// map. Tickers without documents are absent from the map.
	Resolve(ctx context.Context, tickers []string) (map[string]*models.TickerFinancials, error)

	// GetMergedFinancials returns one ticker's FinancialData flat-merged
	// with its ValuationMetrics document. NotFoundError when no
	// financial document exists for the ticker.
	GetMergedFinancials(ctx context.Context, ticker string) (map[string]any, error)
}
