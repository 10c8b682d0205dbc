package interfaces

import (
	"context"

	"github.com/ternarybob/bursa/internal/models"
)

// EnrichmentService - attaches display-ready financial views to company records
type EnrichmentService interface {
	// EnrichCompanies resolves financial data for every ticker in the
	// batch and applies the precomputed/derived/no-data fallback per
	// company. Records stay untouched when no data exists.
	EnrichCompanies(ctx context.Context, companies []models.CompanyRecord) ([]models.EnrichedCompany, error)

	// Enrich applies the fallback policy to a single company with
	// already-resolved data. A nil resolution returns the record unchanged.
	Enrich(company models.CompanyRecord, resolved *models.TickerFinancials) models.EnrichedCompany
}
