package financials

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/bursa/internal/common"
	"github.com/ternarybob/bursa/internal/interfaces"
	"github.com/ternarybob/bursa/internal/models"
)

// mockFinancialStorage implements interfaces.FinancialStorage for testing
type mockFinancialStorage struct {
	mu               sync.Mutex
	financialData    map[string]*models.FinancialData
	valuationMetrics map[string]*models.ValuationMetrics
	err              error

	financialDataCalls [][]string
	valuationCalls     [][]string
}

func newMockFinancialStorage() *mockFinancialStorage {
	return &mockFinancialStorage{
		financialData:    make(map[string]*models.FinancialData),
		valuationMetrics: make(map[string]*models.ValuationMetrics),
	}
}

func (m *mockFinancialStorage) GetFinancialData(ctx context.Context, tickers []string) ([]*models.FinancialData, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	m.financialDataCalls = append(m.financialDataCalls, tickers)
	docs := make([]*models.FinancialData, 0, len(tickers))
	for _, t := range tickers {
		if doc, ok := m.financialData[t]; ok {
			docs = append(docs, doc)
		}
	}
	return docs, nil
}

func (m *mockFinancialStorage) GetValuationMetrics(ctx context.Context, tickers []string) ([]*models.ValuationMetrics, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	m.valuationCalls = append(m.valuationCalls, tickers)
	docs := make([]*models.ValuationMetrics, 0, len(tickers))
	for _, t := range tickers {
		if doc, ok := m.valuationMetrics[t]; ok {
			docs = append(docs, doc)
		}
	}
	return docs, nil
}

func (m *mockFinancialStorage) GetFinancialDataByTicker(ctx context.Context, ticker string) (*models.FinancialData, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	doc, ok := m.financialData[ticker]
	if !ok {
		return nil, common.NewNotFoundError("financial data", ticker)
	}
	return doc, nil
}

func (m *mockFinancialStorage) GetValuationMetricsByTicker(ctx context.Context, ticker string) (*models.ValuationMetrics, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	doc, ok := m.valuationMetrics[ticker]
	if !ok {
		return nil, common.NewNotFoundError("valuation metrics", ticker)
	}
	return doc, nil
}

func (m *mockFinancialStorage) SaveFinancialData(ctx context.Context, data *models.FinancialData) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.financialData[data.Ticker] = data
	return nil
}

func (m *mockFinancialStorage) SaveValuationMetrics(ctx context.Context, metrics *models.ValuationMetrics) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.valuationMetrics[metrics.Ticker] = metrics
	return nil
}

// mockStorageManager implements interfaces.StorageManager for testing
type mockStorageManager struct {
	financial *mockFinancialStorage
}

func (m *mockStorageManager) MarketStorage() interfaces.MarketStorage         { return nil }
func (m *mockStorageManager) FinancialStorage() interfaces.FinancialStorage   { return m.financial }
func (m *mockStorageManager) SubscriberStorage() interfaces.SubscriberStorage { return nil }
func (m *mockStorageManager) Ping(ctx context.Context) error                  { return nil }
func (m *mockStorageManager) Close() error                                    { return nil }

func floatPtr(v float64) *float64 {
	return &v
}

func newTestService(storage *mockFinancialStorage) interfaces.FinancialService {
	return NewService(&mockStorageManager{financial: storage}, arbor.NewLogger())
}

func TestResolve(t *testing.T) {
	storage := newMockFinancialStorage()
	storage.financialData["AAPL"] = &models.FinancialData{
		Ticker: "AAPL",
		IncomeStatement: []models.FinancialStatementEntry{
			{Date: "2022-01-01", Revenue: floatPtr(1000), CalendarYear: "2021"},
			{Date: "2023-01-01", Revenue: floatPtr(1200), CalendarYear: "2022"},
		},
		MarketCap: []models.MarketCapEntry{
			{Date: "2023-06-01", MarketCap: 2_800_000},
			{Date: "2023-06-02", MarketCap: 2_900_000},
		},
	}
	storage.valuationMetrics["AAPL"] = &models.ValuationMetrics{
		Ticker:    "AAPL",
		MarketCap: floatPtr(3_000_000),
	}
	storage.valuationMetrics["MSFT"] = &models.ValuationMetrics{
		Ticker:    "MSFT",
		MarketCap: floatPtr(2_500_000),
	}

	svc := newTestService(storage)

	resolved, err := svc.Resolve(context.Background(), []string{"AAPL", "MSFT", "ZZZZ"})
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}

	if len(resolved) != 2 {
		t.Fatalf("Resolve() returned %d entries, want 2", len(resolved))
	}
	if _, ok := resolved["ZZZZ"]; ok {
		t.Error("unmatched ticker should be absent from the result")
	}

	aapl := resolved["AAPL"]
	if aapl == nil || aapl.FinancialData == nil || aapl.ValuationMetrics == nil {
		t.Fatalf("AAPL should carry both documents, got %+v", aapl)
	}
	if aapl.LatestIncomeStatement == nil || aapl.LatestIncomeStatement.Date != "2023-01-01" {
		t.Errorf("latest income statement = %+v, want the 2023-01-01 entry", aapl.LatestIncomeStatement)
	}
	if aapl.LatestMarketCap == nil || aapl.LatestMarketCap.MarketCap != 2_900_000 {
		t.Errorf("latest market cap = %+v, want the 2023-06-02 entry", aapl.LatestMarketCap)
	}

	msft := resolved["MSFT"]
	if msft == nil || msft.ValuationMetrics == nil {
		t.Fatalf("MSFT should carry valuation metrics, got %+v", msft)
	}
	if msft.FinancialData != nil {
		t.Error("MSFT has no financial document; FinancialData should be nil")
	}
}

func TestResolveEmptyTickers(t *testing.T) {
	storage := newMockFinancialStorage()
	svc := newTestService(storage)

	resolved, err := svc.Resolve(context.Background(), nil)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if len(resolved) != 0 {
		t.Errorf("Resolve() returned %d entries, want 0", len(resolved))
	}
	if len(storage.financialDataCalls) != 0 || len(storage.valuationCalls) != 0 {
		t.Error("no tickers should mean no storage round trips")
	}
}

func TestResolveDeduplicatesTickers(t *testing.T) {
	storage := newMockFinancialStorage()
	svc := newTestService(storage)

	if _, err := svc.Resolve(context.Background(), []string{"AAPL", "AAPL", "", "MSFT"}); err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}

	want := []string{"AAPL", "MSFT"}
	if len(storage.financialDataCalls) != 1 || !reflect.DeepEqual(storage.financialDataCalls[0], want) {
		t.Errorf("financial data fetched with %v, want one call with %v", storage.financialDataCalls, want)
	}
	if len(storage.valuationCalls) != 1 || !reflect.DeepEqual(storage.valuationCalls[0], want) {
		t.Errorf("valuation metrics fetched with %v, want one call with %v", storage.valuationCalls, want)
	}
}

func TestResolveStorageError(t *testing.T) {
	storage := newMockFinancialStorage()
	storage.err = errors.New("connection lost")
	svc := newTestService(storage)

	if _, err := svc.Resolve(context.Background(), []string{"AAPL"}); err == nil {
		t.Fatal("Resolve() should surface storage errors")
	}
}

func TestGetMergedFinancials(t *testing.T) {
	storage := newMockFinancialStorage()
	storage.financialData["AAPL"] = &models.FinancialData{
		Ticker: "AAPL",
		IncomeStatement: []models.FinancialStatementEntry{
			{Date: "2023-01-01", Revenue: floatPtr(1200)},
		},
		MarketCap: []models.MarketCapEntry{
			{Date: "2023-06-01", MarketCap: 2_800_000},
		},
	}
	storage.valuationMetrics["AAPL"] = &models.ValuationMetrics{
		Ticker:           "AAPL",
		MarketCap:        floatPtr(3_000_000),
		LatestFiscalYear: "2022",
		GrowthMetrics: &models.GrowthMetrics{
			RevenueGrowthPct: floatPtr(20),
		},
	}

	svc := newTestService(storage)

	merged, err := svc.GetMergedFinancials(context.Background(), "AAPL")
	if err != nil {
		t.Fatalf("GetMergedFinancials() error = %v", err)
	}

	if _, ok := merged["income_statement"]; !ok {
		t.Error("merged document should keep the statement history")
	}
	if _, ok := merged["growth_metrics"]; !ok {
		t.Error("merged document should carry the valuation fields")
	}
	if merged["latest_fiscal_year"] != "2022" {
		t.Errorf("latest_fiscal_year = %v, want 2022", merged["latest_fiscal_year"])
	}
	// Both documents store a market_cap field; the valuation scalar wins.
	if _, ok := merged["market_cap"].(float64); !ok {
		t.Errorf("market_cap = %T(%v), want the valuation scalar", merged["market_cap"], merged["market_cap"])
	}
}

func TestGetMergedFinancialsWithoutValuationMetrics(t *testing.T) {
	storage := newMockFinancialStorage()
	storage.financialData["RY.TO"] = &models.FinancialData{
		Ticker: "RY.TO",
		IncomeStatement: []models.FinancialStatementEntry{
			{Date: "2023-01-01", Revenue: floatPtr(500)},
		},
	}

	svc := newTestService(storage)

	merged, err := svc.GetMergedFinancials(context.Background(), "RY.TO")
	if err != nil {
		t.Fatalf("GetMergedFinancials() error = %v", err)
	}
	if merged["ticker"] != "RY.TO" {
		t.Errorf("ticker = %v, want RY.TO", merged["ticker"])
	}
	if _, ok := merged["growth_metrics"]; ok {
		t.Error("no valuation document should mean no valuation fields")
	}
}

func TestGetMergedFinancialsNotFound(t *testing.T) {
	svc := newTestService(newMockFinancialStorage())

	_, err := svc.GetMergedFinancials(context.Background(), "ZZZZ")
	if err == nil {
		t.Fatal("GetMergedFinancials() should fail for an unknown ticker")
	}
	if !common.IsNotFound(err) {
		t.Errorf("error = %v, want a not-found error", err)
	}
}
