package interfaces

import (
	"context"
)

// CollectorService - out-of-band population of the document store
type CollectorService interface {
	// SeedMarkets loads a regions seed file (YAML or JSON) into the
	// markets document, replacing the stored one.
	SeedMarkets(ctx context.Context, path string) error

	// Collect pulls statements and market caps for every ticker found
	// in the markets document and rewrites the per-ticker financial and
	// valuation documents.
	Collect(ctx context.Context) error

	// StartSchedule runs Collect on the given cron schedule until the
	// context is cancelled. Never used by the API serve path.
	StartSchedule(ctx context.Context, schedule string) error
	Stop()
}
