package collector

import (
	"math"
	"testing"

	"github.com/ternarybob/bursa/internal/models"
)

func fp(v float64) *float64 { return &v }

func collectedData() *models.FinancialData {
	return &models.FinancialData{
		Ticker: "AAPL",
		IncomeStatement: []models.FinancialStatementEntry{
			// Stored unordered; derivation must pick by date, not position.
			{Date: "2022-09-24", CalendarYear: "2022", Revenue: fp(100), GrossProfit: fp(40), NetIncome: fp(20)},
			{Date: "2023-09-30", CalendarYear: "2023", Revenue: fp(120), GrossProfit: fp(50), NetIncome: fp(25)},
		},
		MarketCap: []models.MarketCapEntry{
			{Date: "2024-01-02", MarketCap: 3000},
			{Date: "2024-01-03", MarketCap: 3100},
		},
	}
}

func TestBuildValuationMetrics(t *testing.T) {
	metrics := buildValuationMetrics(collectedData())
	if metrics == nil {
		t.Fatal("buildValuationMetrics() = nil, want a document")
	}

	if metrics.Ticker != "AAPL" {
		t.Errorf("ticker = %q, want AAPL", metrics.Ticker)
	}
	if metrics.LatestFiscalYear != "2023" {
		t.Errorf("latest_fiscal_year = %q, want the newest statement's year", metrics.LatestFiscalYear)
	}
	if metrics.MarketCap == nil || *metrics.MarketCap != 3100 {
		t.Errorf("market_cap = %v, want the newest observation 3100", metrics.MarketCap)
	}

	raw := metrics.RawValues
	if raw == nil || *raw.CurrentRevenue != 120 || *raw.CurrentGrossProfit != 50 || *raw.CurrentNetIncome != 25 {
		t.Errorf("raw_values = %+v, want the 2023 fundamentals", raw)
	}

	growth := metrics.GrowthMetrics
	if growth == nil {
		t.Fatal("growth_metrics missing with two statements on hand")
	}
	if got := *growth.RevenueGrowthPct; math.Abs(got-20) > 1e-9 {
		t.Errorf("revenue_growth_pct = %v, want 20", got)
	}
	if got := *growth.NetIncomeGrowthPct; math.Abs(got-25) > 1e-9 {
		t.Errorf("net_income_growth_pct = %v, want 25", got)
	}

	multiples := metrics.ValuationMultiplesRaw
	if multiples == nil {
		t.Fatal("valuation_multiples_raw missing with market cap on hand")
	}
	if got := *multiples.MarketcapToRevenue; math.Abs(got-3100.0/120.0) > 1e-9 {
		t.Errorf("marketcap_to_revenue = %v, want unrounded 3100/120", got)
	}
}

func TestBuildValuationMetricsNoStatements(t *testing.T) {
	data := &models.FinancialData{
		Ticker:    "NEW",
		MarketCap: []models.MarketCapEntry{{Date: "2024-01-02", MarketCap: 500}},
	}
	if metrics := buildValuationMetrics(data); metrics != nil {
		t.Errorf("metrics = %+v, want nil without an income statement anchor", metrics)
	}
}

func TestBuildValuationMetricsSingleStatement(t *testing.T) {
	data := &models.FinancialData{
		Ticker: "IPO",
		IncomeStatement: []models.FinancialStatementEntry{
			{Date: "2023-12-31", CalendarYear: "2023", Revenue: fp(10)},
		},
	}

	metrics := buildValuationMetrics(data)
	if metrics == nil {
		t.Fatal("one statement is enough for raw values")
	}
	if metrics.GrowthMetrics != nil {
		t.Errorf("growth_metrics = %+v, want absent without a prior year", metrics.GrowthMetrics)
	}
	if metrics.MarketCap != nil || metrics.ValuationMultiplesRaw != nil {
		t.Error("market cap fields must stay absent without observations")
	}
}

func TestGrowthPctZeroBase(t *testing.T) {
	if got := growthPct(fp(10), fp(0)); got != nil {
		t.Errorf("growthPct over a zero base = %v, want nil", got)
	}
	if got := growthPct(nil, fp(10)); got != nil {
		t.Errorf("growthPct with missing current = %v, want nil", got)
	}
	// A negative base grows toward zero as a positive percentage.
	if got := growthPct(fp(-5), fp(-10)); got == nil || math.Abs(*got-50) > 1e-9 {
		t.Errorf("growthPct(-5, -10) = %v, want 50", got)
	}
}

func TestRatioZeroDenominator(t *testing.T) {
	if got := ratio(100, fp(0)); got != nil {
		t.Errorf("ratio with zero denominator = %v, want nil", got)
	}
	if got := ratio(100, nil); got != nil {
		t.Errorf("ratio with missing denominator = %v, want nil", got)
	}
}
