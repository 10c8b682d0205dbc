package markets

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/bursa/internal/common"
	"github.com/ternarybob/bursa/internal/interfaces"
	"github.com/ternarybob/bursa/internal/models"
)

// mockMarketStorage implements interfaces.MarketStorage for testing
type mockMarketStorage struct {
	doc *models.MarketDocument
	err error
}

func (m *mockMarketStorage) GetMarketDocument(ctx context.Context) (*models.MarketDocument, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.doc == nil {
		return nil, common.NewNotFoundError("market document", models.MarketDocumentID)
	}
	return m.doc, nil
}

func (m *mockMarketStorage) SaveMarketDocument(ctx context.Context, doc *models.MarketDocument) error {
	m.doc = doc
	return nil
}

// mockStorageManager implements interfaces.StorageManager for testing
type mockStorageManager struct {
	market *mockMarketStorage
}

func (m *mockStorageManager) MarketStorage() interfaces.MarketStorage         { return m.market }
func (m *mockStorageManager) FinancialStorage() interfaces.FinancialStorage   { return nil }
func (m *mockStorageManager) SubscriberStorage() interfaces.SubscriberStorage { return nil }
func (m *mockStorageManager) Ping(ctx context.Context) error                  { return nil }
func (m *mockStorageManager) Close() error                                    { return nil }

// mockEnrichmentService implements interfaces.EnrichmentService for
// testing; it tags every company it sees instead of joining data.
type mockEnrichmentService struct {
	batches [][]models.CompanyRecord
	err     error
}

func (m *mockEnrichmentService) EnrichCompanies(ctx context.Context, companies []models.CompanyRecord) ([]models.EnrichedCompany, error) {
	m.batches = append(m.batches, companies)
	if m.err != nil {
		return nil, m.err
	}
	enriched := make([]models.EnrichedCompany, len(companies))
	for i, company := range companies {
		e := company.Clone()
		e["enriched"] = true
		enriched[i] = e
	}
	return enriched, nil
}

func (m *mockEnrichmentService) Enrich(company models.CompanyRecord, resolved *models.TickerFinancials) models.EnrichedCompany {
	return company
}

func testDocument() *models.MarketDocument {
	return &models.MarketDocument{
		Regions: []models.Region{
			{
				Name:         "United States (NYSE/NASDAQ)",
				ExchangeName: "NYSE/NASDAQ",
				Categories: []models.Category{
					{Name: "Technology", Companies: []models.CompanyRecord{
						{"ticker": "AAPL", "name": "Apple Inc."},
						{"ticker": "MSFT", "name": "Microsoft"},
					}},
					{Name: "Finance", Companies: []models.CompanyRecord{
						{"ticker": "JPM", "name": "JPMorgan Chase"},
					}},
				},
			},
			{
				Name:         "Canada (TSX)",
				ExchangeName: "TSX",
				Companies: []models.CompanyRecord{
					{"ticker": "RY.TO", "name": "Royal Bank of Canada"},
				},
			},
			{Name: "Canada (TSX-V)"},
			{Name: ""},
			{Name: "(OTC)"},
		},
	}
}

func newTestService(doc *models.MarketDocument, enrichment *mockEnrichmentService) interfaces.MarketService {
	storage := &mockStorageManager{market: &mockMarketStorage{doc: doc}}
	return NewService(storage, enrichment, arbor.NewLogger())
}

func tickersOf(companies []models.CompanyRecord) []string {
	tickers := make([]string, 0, len(companies))
	for _, c := range companies {
		if t, ok := c.Ticker(); ok {
			tickers = append(tickers, t)
		}
	}
	return tickers
}

func TestListCountries(t *testing.T) {
	svc := newTestService(testDocument(), &mockEnrichmentService{})

	countries, err := svc.ListCountries(context.Background())
	if err != nil {
		t.Fatalf("ListCountries() error = %v", err)
	}

	// Qualifiers stripped, duplicates collapsed, unnamed regions read
	// as Unknown, qualifier-only names dropped, result sorted.
	want := []string{"Canada", "United States", "Unknown"}
	if !reflect.DeepEqual(countries, want) {
		t.Errorf("ListCountries() = %v, want %v", countries, want)
	}
}

func TestListCountriesStorageError(t *testing.T) {
	storage := &mockStorageManager{market: &mockMarketStorage{err: errors.New("connection lost")}}
	svc := NewService(storage, &mockEnrichmentService{}, arbor.NewLogger())

	if _, err := svc.ListCountries(context.Background()); err == nil {
		t.Fatal("ListCountries() should surface storage errors")
	}
}

func TestGetRegionPrefixMatch(t *testing.T) {
	svc := newTestService(testDocument(), &mockEnrichmentService{})

	region, err := svc.GetRegion(context.Background(), "United States")
	if err != nil {
		t.Fatalf("GetRegion() error = %v", err)
	}
	if region.Name != "United States (NYSE/NASDAQ)" {
		t.Errorf("region = %q, the prefix match should survive the qualifier", region.Name)
	}

	// First match wins among same-prefix regions.
	region, err = svc.GetRegion(context.Background(), "Canada")
	if err != nil {
		t.Fatalf("GetRegion() error = %v", err)
	}
	if region.Name != "Canada (TSX)" {
		t.Errorf("region = %q, want the first Canada region", region.Name)
	}
}

func TestGetRegionCaseSensitive(t *testing.T) {
	svc := newTestService(testDocument(), &mockEnrichmentService{})

	if _, err := svc.GetRegion(context.Background(), "united states"); !common.IsNotFound(err) {
		t.Errorf("lowercase lookup should not match, got %v", err)
	}
}

func TestGetRegionNotFound(t *testing.T) {
	svc := newTestService(testDocument(), &mockEnrichmentService{})

	_, err := svc.GetRegion(context.Background(), "Brazil")
	if !common.IsNotFound(err) {
		t.Errorf("error = %v, want a not-found error", err)
	}
}

func TestListUSCategories(t *testing.T) {
	svc := newTestService(testDocument(), &mockEnrichmentService{})

	categories, err := svc.ListUSCategories(context.Background())
	if err != nil {
		t.Fatalf("ListUSCategories() error = %v", err)
	}
	want := []string{"Technology", "Finance"}
	if !reflect.DeepEqual(categories, want) {
		t.Errorf("ListUSCategories() = %v, want %v in stored order", categories, want)
	}
}

func TestGetCompaniesUSAllCategories(t *testing.T) {
	enrichment := &mockEnrichmentService{}
	svc := newTestService(testDocument(), enrichment)

	for _, category := range []string{"", "All"} {
		listing, err := svc.GetCompanies(context.Background(), "United States", category)
		if err != nil {
			t.Fatalf("GetCompanies(%q) error = %v", category, err)
		}

		// Concatenation keeps category order, then company order.
		want := []string{"AAPL", "MSFT", "JPM"}
		if got := tickersOf(listing.Companies); !reflect.DeepEqual(got, want) {
			t.Errorf("GetCompanies(%q) tickers = %v, want %v", category, got, want)
		}
		if listing.ExchangeName != "NYSE/NASDAQ" {
			t.Errorf("exchangeName = %q, want NYSE/NASDAQ", listing.ExchangeName)
		}
		for _, company := range listing.Companies {
			if company["enriched"] != true {
				t.Errorf("US companies must be enriched, got %v", company)
			}
		}
	}
}

func TestGetCompaniesUSNamedCategory(t *testing.T) {
	svc := newTestService(testDocument(), &mockEnrichmentService{})

	listing, err := svc.GetCompanies(context.Background(), "United States", "Finance")
	if err != nil {
		t.Fatalf("GetCompanies() error = %v", err)
	}
	want := []string{"JPM"}
	if got := tickersOf(listing.Companies); !reflect.DeepEqual(got, want) {
		t.Errorf("tickers = %v, want %v", got, want)
	}
}

func TestGetCompaniesUSUnknownCategory(t *testing.T) {
	svc := newTestService(testDocument(), &mockEnrichmentService{})

	listing, err := svc.GetCompanies(context.Background(), "United States", "Utilities")
	if err != nil {
		t.Fatalf("an absent category is an empty list, not an error; got %v", err)
	}
	if listing.Companies == nil || len(listing.Companies) != 0 {
		t.Errorf("companies = %v, want an empty list", listing.Companies)
	}
}

func TestGetCompaniesNonUS(t *testing.T) {
	enrichment := &mockEnrichmentService{}
	svc := newTestService(testDocument(), enrichment)

	listing, err := svc.GetCompanies(context.Background(), "Canada", "")
	if err != nil {
		t.Fatalf("GetCompanies() error = %v", err)
	}
	want := []string{"RY.TO"}
	if got := tickersOf(listing.Companies); !reflect.DeepEqual(got, want) {
		t.Errorf("tickers = %v, want %v", got, want)
	}
	if len(enrichment.batches) != 0 {
		t.Error("non-US companies must not be enriched")
	}
	for _, company := range listing.Companies {
		if _, ok := company["enriched"]; ok {
			t.Errorf("non-US company carries enrichment marker: %v", company)
		}
	}
}

func TestGetCompaniesNonUSCategoryIgnored(t *testing.T) {
	svc := newTestService(testDocument(), &mockEnrichmentService{})

	// Categories only partition the United States region; elsewhere the
	// parameter has no effect.
	listing, err := svc.GetCompanies(context.Background(), "Canada", "Technology")
	if err != nil {
		t.Fatalf("GetCompanies() error = %v", err)
	}
	want := []string{"RY.TO"}
	if got := tickersOf(listing.Companies); !reflect.DeepEqual(got, want) {
		t.Errorf("tickers = %v, want %v", got, want)
	}
}

func TestGetCompaniesRegionWithoutCompanies(t *testing.T) {
	svc := newTestService(testDocument(), &mockEnrichmentService{})

	listing, err := svc.GetCompanies(context.Background(), "Canada (TSX-V)", "")
	if err != nil {
		t.Fatalf("GetCompanies() error = %v", err)
	}
	if listing.Companies == nil || len(listing.Companies) != 0 {
		t.Errorf("companies = %v, want an empty list", listing.Companies)
	}
}

func TestGetCompaniesNotFound(t *testing.T) {
	svc := newTestService(testDocument(), &mockEnrichmentService{})

	_, err := svc.GetCompanies(context.Background(), "Brazil", "")
	if !common.IsNotFound(err) {
		t.Errorf("error = %v, want a not-found error", err)
	}
}

func TestGetCompaniesEnrichmentError(t *testing.T) {
	enrichment := &mockEnrichmentService{err: errors.New("connection lost")}
	svc := newTestService(testDocument(), enrichment)

	if _, err := svc.GetCompanies(context.Background(), "United States", ""); err == nil {
		t.Fatal("GetCompanies() should surface enrichment errors")
	}
}
