package app

import (
	"context"
	"fmt"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/bursa/internal/common"
	"github.com/ternarybob/bursa/internal/fmp"
	"github.com/ternarybob/bursa/internal/handlers"
	"github.com/ternarybob/bursa/internal/interfaces"
	"github.com/ternarybob/bursa/internal/services/collector"
	"github.com/ternarybob/bursa/internal/services/enrichment"
	"github.com/ternarybob/bursa/internal/services/financials"
	"github.com/ternarybob/bursa/internal/services/markets"
	"github.com/ternarybob/bursa/internal/services/subscriptions"
	"github.com/ternarybob/bursa/internal/storage"
)

// App holds all application components and dependencies
type App struct {
	Config *common.Config
	Logger arbor.ILogger

	StorageManager interfaces.StorageManager

	// Business services
	FinancialService    interfaces.FinancialService
	EnrichmentService   interfaces.EnrichmentService
	MarketService       interfaces.MarketService
	SubscriptionService interfaces.SubscriptionService
	CollectorService    interfaces.CollectorService

	// HTTP handlers
	APIHandler          *handlers.APIHandler
	MarketHandler       *handlers.MarketHandler
	FinancialHandler    *handlers.FinancialHandler
	SubscriptionHandler *handlers.SubscriptionHandler
}

// New initializes the application with all dependencies
func New(cfg *common.Config, logger arbor.ILogger) (*App, error) {
	app := &App{
		Config: cfg,
		Logger: logger,
	}

	if err := app.initStorage(); err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	app.initServices()
	app.initHandlers()

	logger.Info().
		Str("storage_type", cfg.Storage.Type).
		Str("environment", cfg.Environment).
		Msg("Application initialization complete")

	return app, nil
}

// initStorage initializes the storage layer behind the backend factory.
// The Mongo backend connects lazily; nothing touches the network here.
func (a *App) initStorage() error {
	storageManager, err := storage.NewStorageManager(a.Logger, a.Config)
	if err != nil {
		return err
	}

	a.StorageManager = storageManager
	a.Logger.Debug().
		Str("storage", a.Config.Storage.Type).
		Msg("Storage layer initialized")

	return nil
}

// initServices initializes all business services in dependency order
func (a *App) initServices() {
	a.FinancialService = financials.NewService(a.StorageManager, a.Logger)
	a.EnrichmentService = enrichment.NewService(a.FinancialService, a.Logger)
	a.MarketService = markets.NewService(a.StorageManager, a.EnrichmentService, a.Logger)
	a.SubscriptionService = subscriptions.NewService(a.StorageManager, a.Logger)

	// The collector only runs in the -collect/-schedule/-seed modes;
	// the serve path never calls it.
	client := fmp.NewClient(a.Config.FMP.APIKey,
		fmp.WithBaseURL(a.Config.FMP.BaseURL),
		fmp.WithTimeout(a.Config.FMP.RequestTimeout),
		fmp.WithRateLimit(a.Config.FMP.RateLimit),
		fmp.WithLogger(a.Logger),
	)
	a.CollectorService = collector.NewService(a.StorageManager, client, &a.Config.Collector, &a.Config.FMP, a.Logger)

	a.Logger.Debug().Msg("Services initialized")
}

// initHandlers initializes all HTTP handlers
func (a *App) initHandlers() {
	// Error detail in 500 bodies stays out of production responses.
	includeDetail := !a.Config.IsProduction()

	a.APIHandler = handlers.NewAPIHandler(a.Logger)
	a.MarketHandler = handlers.NewMarketHandler(a.MarketService, includeDetail, a.Logger)
	a.FinancialHandler = handlers.NewFinancialHandler(a.FinancialService, includeDetail, a.Logger)
	a.SubscriptionHandler = handlers.NewSubscriptionHandler(a.SubscriptionService, includeDetail, a.Logger)

	a.Logger.Debug().Msg("Handlers initialized")
}

// Ping verifies the document store is reachable.
func (a *App) Ping(ctx context.Context) error {
	return a.StorageManager.Ping(ctx)
}

// Close closes all application resources
func (a *App) Close() error {
	if a.CollectorService != nil {
		a.CollectorService.Stop()
	}

	if a.StorageManager != nil {
		if err := a.StorageManager.Close(); err != nil {
			return fmt.Errorf("failed to close storage: %w", err)
		}
		a.Logger.Info().Msg("Storage closed")
	}

	return nil
}
