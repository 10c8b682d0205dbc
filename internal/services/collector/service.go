package collector

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sourcegraph/conc/pool"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/bursa/internal/common"
	"github.com/ternarybob/bursa/internal/fmp"
	"github.com/ternarybob/bursa/internal/interfaces"
	"github.com/ternarybob/bursa/internal/models"
)

// marketCapHistoryLimit bounds the market-cap observations pulled per
// ticker. Only the most recent one drives the valuation metrics; the
// rest is kept as history.
const marketCapHistoryLimit = 30

// MarketDataClient is the slice of the market data provider the
// collector depends on.
type MarketDataClient interface {
	IncomeStatements(ctx context.Context, ticker string, limit int) ([]fmp.IncomeStatement, error)
	MarketCapHistory(ctx context.Context, ticker string, limit int) ([]fmp.HistoricalMarketCap, error)
}

// Service implements the CollectorService interface
type Service struct {
	storage      interfaces.StorageManager
	client       MarketDataClient
	collectorCfg *common.CollectorConfig
	fmpCfg       *common.FMPConfig
	logger       arbor.ILogger

	mu         sync.Mutex
	cron       *cron.Cron
	collecting bool
}

// NewService creates a new collector service
func NewService(
	storage interfaces.StorageManager,
	client MarketDataClient,
	collectorCfg *common.CollectorConfig,
	fmpCfg *common.FMPConfig,
	logger arbor.ILogger,
) interfaces.CollectorService {
	return &Service{
		storage:      storage,
		client:       client,
		collectorCfg: collectorCfg,
		fmpCfg:       fmpCfg,
		logger:       logger,
	}
}

// Collect pulls statements and market caps for every ticker in the
// markets document and rewrites the per-ticker financial and valuation
// documents. Individual ticker failures are logged and skipped; the
// run only fails when the markets document cannot be read.
func (s *Service) Collect(ctx context.Context) error {
	doc, err := s.storage.MarketStorage().GetMarketDocument(ctx)
	if err != nil {
		return fmt.Errorf("failed to load markets document: %w", err)
	}

	tickers := collectTickers(doc)
	if len(tickers) == 0 {
		s.logger.Warn().Msg("Markets document holds no tickers, nothing to collect")
		return nil
	}

	maxConcurrency := s.collectorCfg.MaxConcurrency
	if maxConcurrency <= 0 {
		maxConcurrency = 1
	}

	s.logger.Info().
		Int("tickers", len(tickers)).
		Int("max_concurrency", maxConcurrency).
		Msg("Collection started")
	started := time.Now()

	var succeeded, failed atomic.Int32
	p := pool.New().WithMaxGoroutines(maxConcurrency).WithContext(ctx)
	for _, ticker := range tickers {
		p.Go(func(ctx context.Context) error {
			if err := s.collectTicker(ctx, ticker); err != nil {
				failed.Add(1)
				s.logger.Warn().Err(err).Str("ticker", ticker).Msg("Ticker collection failed")
				return nil
			}
			succeeded.Add(1)
			return nil
		})
	}
	if err := p.Wait(); err != nil {
		return err
	}

	s.logger.Info().
		Int("succeeded", int(succeeded.Load())).
		Int("failed", int(failed.Load())).
		Str("duration", time.Since(started).String()).
		Msg("Collection finished")

	return nil
}

// collectTicker pulls one ticker's history and rewrites its documents.
func (s *Service) collectTicker(ctx context.Context, ticker string) error {
	statements, err := s.client.IncomeStatements(ctx, ticker, s.fmpCfg.StatementLimit)
	if err != nil {
		return fmt.Errorf("income statements: %w", err)
	}

	caps, err := s.client.MarketCapHistory(ctx, ticker, marketCapHistoryLimit)
	if err != nil {
		return fmt.Errorf("market cap history: %w", err)
	}

	if len(statements) == 0 && len(caps) == 0 {
		return fmt.Errorf("provider returned no data")
	}

	data := &models.FinancialData{
		Ticker:          ticker,
		IncomeStatement: make([]models.FinancialStatementEntry, 0, len(statements)),
		MarketCap:       make([]models.MarketCapEntry, 0, len(caps)),
	}
	for _, statement := range statements {
		data.IncomeStatement = append(data.IncomeStatement, statement.ToEntry())
	}
	for _, observation := range caps {
		data.MarketCap = append(data.MarketCap, observation.ToEntry())
	}

	if err := s.storage.FinancialStorage().SaveFinancialData(ctx, data); err != nil {
		return fmt.Errorf("save financial data: %w", err)
	}

	if metrics := buildValuationMetrics(data); metrics != nil {
		if err := s.storage.FinancialStorage().SaveValuationMetrics(ctx, metrics); err != nil {
			return fmt.Errorf("save valuation metrics: %w", err)
		}
	}

	return nil
}

// StartSchedule runs Collect on the given cron schedule until the
// context is cancelled. An empty schedule falls back to the configured
// one.
func (s *Service) StartSchedule(ctx context.Context, schedule string) error {
	if schedule == "" {
		schedule = s.collectorCfg.Schedule
	}
	if err := common.ValidateCollectorSchedule(schedule); err != nil {
		return err
	}

	s.mu.Lock()
	if s.cron != nil {
		s.mu.Unlock()
		return fmt.Errorf("collector schedule already running")
	}
	c := cron.New()
	if _, err := c.AddFunc(schedule, func() { s.runScheduledCollection(ctx) }); err != nil {
		s.mu.Unlock()
		return fmt.Errorf("failed to add cron job: %w", err)
	}
	s.cron = c
	s.mu.Unlock()

	c.Start()
	s.logger.Info().Str("schedule", schedule).Msg("Collector schedule started")

	<-ctx.Done()
	s.Stop()
	return nil
}

// Stop halts the schedule; in-flight collection finishes on its own.
func (s *Service) Stop() {
	s.mu.Lock()
	c := s.cron
	s.cron = nil
	s.mu.Unlock()

	if c != nil {
		c.Stop()
		s.logger.Info().Msg("Collector schedule stopped")
	}
}

// runScheduledCollection wraps Collect with overlap protection and
// panic recovery so a bad cycle never kills the daemon.
func (s *Service) runScheduledCollection(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error().
				Str("panic", fmt.Sprintf("%v", r)).
				Msg("PANIC RECOVERED in scheduled collection")
		}
	}()

	s.mu.Lock()
	if s.collecting {
		s.mu.Unlock()
		s.logger.Debug().Msg("Previous collection still running, skipping this cycle")
		return
	}
	s.collecting = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.collecting = false
		s.mu.Unlock()
	}()

	if err := s.Collect(ctx); err != nil {
		s.logger.Error().Err(err).Msg("Scheduled collection failed")
	}
}

// collectTickers walks every region and category in stored order and
// returns the canonical ticker set.
func collectTickers(doc *models.MarketDocument) []string {
	raw := make([]string, 0, 256)
	for _, region := range doc.Regions {
		for _, company := range region.Companies {
			if ticker, ok := company.Ticker(); ok {
				raw = append(raw, ticker)
			}
		}
		for _, category := range region.Categories {
			for _, company := range category.Companies {
				if ticker, ok := company.Ticker(); ok {
					raw = append(raw, ticker)
				}
			}
		}
	}
	return common.NormalizeTickers(raw)
}
