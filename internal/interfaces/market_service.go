package interfaces

import (
	"context"

	"github.com/ternarybob/bursa/internal/models"
)

// MarketService - country/region/company lookups over the markets document
type MarketService interface {
	// ListCountries returns the deduplicated, ascending-sorted country
	// names, each truncated at its parenthetical qualifier.
	ListCountries(ctx context.Context) ([]string, error)

	// GetRegion returns the first region whose name starts with
	// countryName (case-sensitive prefix match).
	GetRegion(ctx context.Context, countryName string) (*models.Region, error)

	// ListUSCategories returns the category names of the United States region.
	ListUSCategories(ctx context.Context) ([]string, error)

	// GetCompanies selects a country's companies, applying the US
	// category policy, and enriches them with financial views when the
	// country is the United States.
	GetCompanies(ctx context.Context, countryName, category string) (*models.CompanyListing, error)
}
