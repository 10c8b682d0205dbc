package markets

import (
	"context"
	"sort"
	"strings"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/bursa/internal/common"
	"github.com/ternarybob/bursa/internal/interfaces"
	"github.com/ternarybob/bursa/internal/models"
)

// Service implements the MarketService interface
type Service struct {
	storage    interfaces.StorageManager
	enrichment interfaces.EnrichmentService
	logger     arbor.ILogger
}

// NewService creates a new market lookup service
func NewService(storage interfaces.StorageManager, enrichment interfaces.EnrichmentService, logger arbor.ILogger) interfaces.MarketService {
	return &Service{
		storage:    storage,
		enrichment: enrichment,
		logger:     logger,
	}
}

// ListCountries returns the distinct country names across all regions,
// sorted ascending. Parenthetical qualifiers are stripped, unnamed
// regions read as "Unknown".
func (s *Service) ListCountries(ctx context.Context) ([]string, error) {
	doc, err := s.storage.MarketStorage().GetMarketDocument(ctx)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{}, len(doc.Regions))
	countries := make([]string, 0, len(doc.Regions))
	for _, region := range doc.Regions {
		name := regionCountryName(region.Name)
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		countries = append(countries, name)
	}
	sort.Strings(countries)

	return countries, nil
}

// GetRegion returns the first region whose name starts with countryName.
func (s *Service) GetRegion(ctx context.Context, countryName string) (*models.Region, error) {
	doc, err := s.storage.MarketStorage().GetMarketDocument(ctx)
	if err != nil {
		return nil, err
	}

	region := findRegion(doc, countryName)
	if region == nil {
		return nil, common.NewNotFoundError("country", countryName)
	}
	return region, nil
}

// ListUSCategories returns the category names of the United States
// region, in stored order. A US region without categories yields an
// empty list, not an error.
func (s *Service) ListUSCategories(ctx context.Context) ([]string, error) {
	doc, err := s.storage.MarketStorage().GetMarketDocument(ctx)
	if err != nil {
		return nil, err
	}

	region := findRegion(doc, models.USRegionPrefix)
	if region == nil {
		return nil, common.NewNotFoundError("country", models.USRegionPrefix)
	}

	names := make([]string, 0, len(region.Categories))
	for _, category := range region.Categories {
		names = append(names, category.Name)
	}
	return names, nil
}

// GetCompanies selects a country's companies per the category policy
// and enriches them with financial views when the country is the
// United States.
func (s *Service) GetCompanies(ctx context.Context, countryName, category string) (*models.CompanyListing, error) {
	doc, err := s.storage.MarketStorage().GetMarketDocument(ctx)
	if err != nil {
		return nil, err
	}

	region := findRegion(doc, countryName)
	if region == nil {
		return nil, common.NewNotFoundError("country", countryName)
	}

	companies := selectCompanies(region, countryName, category)
	if companies == nil {
		companies = []models.CompanyRecord{}
	}

	listing := &models.CompanyListing{
		ExchangeName: region.ExchangeName,
		Companies:    companies,
	}

	if isUSCountry(countryName) {
		enriched, err := s.enrichment.EnrichCompanies(ctx, companies)
		if err != nil {
			return nil, err
		}
		listing.Companies = enriched
	}

	s.logger.Debug().
		Str("country", countryName).
		Str("category", category).
		Int("companies", len(listing.Companies)).
		Msg("Selected companies")

	return listing, nil
}

// findRegion returns the first region whose name starts with the given
// country name. The match is case-sensitive and survives parenthetical
// qualifiers, so "United States" finds "United States (NYSE/NASDAQ)".
func findRegion(doc *models.MarketDocument, countryName string) *models.Region {
	for i := range doc.Regions {
		if strings.HasPrefix(doc.Regions[i].Name, countryName) {
			return &doc.Regions[i]
		}
	}
	return nil
}

// findCategory returns the first category with the exact given name.
func findCategory(region *models.Region, name string) *models.Category {
	for i := range region.Categories {
		if region.Categories[i].Name == name {
			return &region.Categories[i]
		}
	}
	return nil
}

// selectCompanies applies the company selection policy. The United
// States region is the only one partitioned into categories: a named
// category selects just its companies, "All" or no category
// concatenates every category in stored order. Any other region serves
// its flat list.
func selectCompanies(region *models.Region, countryName, category string) []models.CompanyRecord {
	if !isUSCountry(countryName) {
		return region.Companies
	}

	if category != "" && category != models.CategoryAll {
		if c := findCategory(region, category); c != nil {
			return c.Companies
		}
		// A filtered-but-absent category is an empty list, not an error.
		return nil
	}

	companies := make([]models.CompanyRecord, 0)
	for _, c := range region.Categories {
		companies = append(companies, c.Companies...)
	}
	return companies
}

// isUSCountry reports whether the requested country name denotes the
// distinguished United States region.
func isUSCountry(countryName string) bool {
	return strings.HasPrefix(countryName, models.USRegionPrefix)
}

// regionCountryName strips the parenthetical qualifier from a region
// name. Unnamed regions read as "Unknown".
func regionCountryName(name string) string {
	if name == "" {
		return "Unknown"
	}
	if idx := strings.Index(name, "("); idx >= 0 {
		name = name[:idx]
	}
	return strings.TrimSpace(name)
}
