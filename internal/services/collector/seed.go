package collector

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-json"
	"github.com/ternarybob/bursa/internal/common"
	"github.com/ternarybob/bursa/internal/models"
	"gopkg.in/yaml.v3"
)

// seedFile is the on-disk shape of a markets seed. Regions either list
// companies inline or point at an exchange listing HTML file to parse,
// relative to the seed file.
type seedFile struct {
	Regions []seedRegion `yaml:"regions" json:"regions"`
}

type seedRegion struct {
	Name         string                 `yaml:"name" json:"name"`
	ExchangeName string                 `yaml:"exchangeName" json:"exchangeName"`
	Companies    []models.CompanyRecord `yaml:"companies" json:"companies"`
	ListingHTML  string                 `yaml:"listing_html" json:"listing_html"`
	Categories   []seedCategory         `yaml:"categories" json:"categories"`
}

type seedCategory struct {
	Name        string                 `yaml:"name" json:"name"`
	Companies   []models.CompanyRecord `yaml:"companies" json:"companies"`
	ListingHTML string                 `yaml:"listing_html" json:"listing_html"`
}

// SeedMarkets loads a regions seed file (YAML or JSON) and replaces the
// stored markets document with it.
func (s *Service) SeedMarkets(ctx context.Context, path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read seed file: %w", err)
	}

	var seed seedFile
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(raw, &seed); err != nil {
			return fmt.Errorf("failed to parse seed file: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(raw, &seed); err != nil {
			return fmt.Errorf("failed to parse seed file: %w", err)
		}
	default:
		return fmt.Errorf("unsupported seed format: %s", filepath.Ext(path))
	}

	if len(seed.Regions) == 0 {
		return fmt.Errorf("seed file %s has no regions", path)
	}

	doc, err := seed.toDocument(filepath.Dir(path))
	if err != nil {
		return err
	}

	if err := s.storage.MarketStorage().SaveMarketDocument(ctx, doc); err != nil {
		return fmt.Errorf("failed to save markets document: %w", err)
	}

	s.logger.Info().
		Str("path", path).
		Int("regions", len(doc.Regions)).
		Msg("Markets document seeded")

	return nil
}

func (f *seedFile) toDocument(baseDir string) (*models.MarketDocument, error) {
	doc := &models.MarketDocument{
		Regions: make([]models.Region, 0, len(f.Regions)),
	}

	for _, sr := range f.Regions {
		companies, err := resolveCompanies(baseDir, sr.Companies, sr.ListingHTML)
		if err != nil {
			return nil, fmt.Errorf("region %q: %w", sr.Name, err)
		}

		region := models.Region{
			Name:         sr.Name,
			ExchangeName: sr.ExchangeName,
			Companies:    companies,
		}

		for _, sc := range sr.Categories {
			categoryCompanies, err := resolveCompanies(baseDir, sc.Companies, sc.ListingHTML)
			if err != nil {
				return nil, fmt.Errorf("region %q category %q: %w", sr.Name, sc.Name, err)
			}
			region.Categories = append(region.Categories, models.Category{
				Name:      sc.Name,
				Companies: categoryCompanies,
			})
		}

		doc.Regions = append(doc.Regions, region)
	}

	return doc, nil
}

// resolveCompanies returns the inline companies with canonical tickers,
// or parses the referenced exchange listing when one is given.
func resolveCompanies(baseDir string, inline []models.CompanyRecord, listingPath string) ([]models.CompanyRecord, error) {
	if listingPath == "" {
		return canonicalTickers(inline), nil
	}

	path := listingPath
	if !filepath.IsAbs(path) {
		path = filepath.Join(baseDir, path)
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open listing file: %w", err)
	}
	defer file.Close()

	companies, err := ParseListing(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", listingPath, err)
	}
	return companies, nil
}

// canonicalTickers rewrites every record's ticker to its canonical
// form so the read-path join always matches what the collector stores.
func canonicalTickers(companies []models.CompanyRecord) []models.CompanyRecord {
	for _, company := range companies {
		if ticker, ok := company.Ticker(); ok {
			company["ticker"] = common.NormalizeTicker(ticker)
		}
	}
	return companies
}
