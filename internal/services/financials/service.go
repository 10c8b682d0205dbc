package financials

import (
	"context"
	"fmt"

	"github.com/sourcegraph/conc/pool"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/bursa/internal/common"
	"github.com/ternarybob/bursa/internal/interfaces"
	"github.com/ternarybob/bursa/internal/models"
)

// Service implements the FinancialService interface
type Service struct {
	storage interfaces.StorageManager
	logger  arbor.ILogger
}

// NewService creates a new financial data resolver
func NewService(storage interfaces.StorageManager, logger arbor.ILogger) interfaces.FinancialService {
	return &Service{
		storage: storage,
		logger:  logger,
	}
}

// Resolve batch-fetches financial data and valuation metrics for the
// given tickers, one round trip per collection, run concurrently. The
// result is keyed by the stored documents' ticker field; tickers with
// no documents are absent from the map.
func (s *Service) Resolve(ctx context.Context, tickers []string) (map[string]*models.TickerFinancials, error) {
	unique := dedupeTickers(tickers)
	if len(unique) == 0 {
		return map[string]*models.TickerFinancials{}, nil
	}

	var (
		financialDocs []*models.FinancialData
		valuationDocs []*models.ValuationMetrics
	)

	// The two collections have no data dependency, so both fetches run
	// in parallel; the merge below waits for both.
	p := pool.New().WithContext(ctx)
	p.Go(func(ctx context.Context) error {
		docs, err := s.storage.FinancialStorage().GetFinancialData(ctx, unique)
		if err != nil {
			return fmt.Errorf("failed to fetch financial data: %w", err)
		}
		financialDocs = docs
		return nil
	})
	p.Go(func(ctx context.Context) error {
		docs, err := s.storage.FinancialStorage().GetValuationMetrics(ctx, unique)
		if err != nil {
			return fmt.Errorf("failed to fetch valuation metrics: %w", err)
		}
		valuationDocs = docs
		return nil
	})
	if err := p.Wait(); err != nil {
		return nil, err
	}

	resolved := make(map[string]*models.TickerFinancials, len(unique))
	for _, doc := range financialDocs {
		if doc == nil || doc.Ticker == "" {
			continue
		}
		resolved[doc.Ticker] = &models.TickerFinancials{
			FinancialData:         doc,
			LatestIncomeStatement: doc.LatestIncomeStatement(),
			LatestMarketCap:       doc.LatestMarketCap(),
		}
	}
	for _, doc := range valuationDocs {
		if doc == nil || doc.Ticker == "" {
			continue
		}
		entry, ok := resolved[doc.Ticker]
		if !ok {
			entry = &models.TickerFinancials{}
			resolved[doc.Ticker] = entry
		}
		entry.ValuationMetrics = doc
	}

	s.logger.Debug().
		Int("requested", len(unique)).
		Int("resolved", len(resolved)).
		Msg("Resolved financial documents")

	return resolved, nil
}

// GetMergedFinancials returns one ticker's financial document merged
// flat with its valuation metrics document. Valuation fields win on key
// collisions; a missing valuation document leaves the financial
// document as-is. A missing financial document is a NotFoundError.
func (s *Service) GetMergedFinancials(ctx context.Context, ticker string) (map[string]any, error) {
	data, err := s.storage.FinancialStorage().GetFinancialDataByTicker(ctx, ticker)
	if err != nil {
		return nil, err
	}

	merged, err := data.ToMap()
	if err != nil {
		return nil, fmt.Errorf("failed to flatten financial data: %w", err)
	}

	metrics, err := s.storage.FinancialStorage().GetValuationMetricsByTicker(ctx, ticker)
	if err != nil {
		if common.IsNotFound(err) {
			return merged, nil
		}
		return nil, err
	}

	metricsMap, err := metrics.ToMap()
	if err != nil {
		return nil, fmt.Errorf("failed to flatten valuation metrics: %w", err)
	}
	for k, v := range metricsMap {
		merged[k] = v
	}

	return merged, nil
}

// dedupeTickers drops empty and duplicate symbols while preserving
// first-seen order. Documents join by exact ticker string, so no case
// folding happens here.
func dedupeTickers(tickers []string) []string {
	result := make([]string, 0, len(tickers))
	seen := make(map[string]struct{}, len(tickers))
	for _, t := range tickers {
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		result = append(result, t)
	}
	return result
}
