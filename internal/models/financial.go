package models

import (
	"sort"
	"time"

	"github.com/goccy/go-json"
)

// FinancialStatementEntry is one annual income statement row. Every
// numeric field is optional; documents are stored schema-less and the
// provider omits fields it has no data for.
type FinancialStatementEntry struct {
	Date         string   `bson:"date" json:"date"`
	Revenue      *float64 `bson:"revenue,omitempty" json:"revenue,omitempty"`
	GrossProfit  *float64 `bson:"grossProfit,omitempty" json:"grossProfit,omitempty"`
	NetIncome    *float64 `bson:"netIncome,omitempty" json:"netIncome,omitempty"`
	CalendarYear string   `bson:"calendarYear,omitempty" json:"calendarYear,omitempty"`
}

// MarketCapEntry is one market capitalization observation.
type MarketCapEntry struct {
	Date      string  `bson:"date" json:"date"`
	MarketCap float64 `bson:"marketCap" json:"marketCap"`
}

// FinancialData holds one ticker's statement and market-cap history.
// The sequences are unordered in storage; latest-entry selection sorts
// by date on read.
type FinancialData struct {
	Ticker          string                    `bson:"ticker" json:"ticker"`
	IncomeStatement []FinancialStatementEntry `bson:"income_statement,omitempty" json:"income_statement,omitempty"`
	MarketCap       []MarketCapEntry          `bson:"market_cap,omitempty" json:"market_cap,omitempty"`
	UpdatedAt       time.Time                 `bson:"updatedAt,omitempty" json:"updatedAt,omitempty"`
}

// SortedIncomeStatements returns a copy of the statement history in
// stable descending date order (newest first). Nil when empty.
func (f *FinancialData) SortedIncomeStatements() []FinancialStatementEntry {
	if f == nil || len(f.IncomeStatement) == 0 {
		return nil
	}
	entries := make([]FinancialStatementEntry, len(f.IncomeStatement))
	copy(entries, f.IncomeStatement)
	sort.SliceStable(entries, func(i, j int) bool {
		return parseEntryDate(entries[i].Date).After(parseEntryDate(entries[j].Date))
	})
	return entries
}

// LatestIncomeStatement returns the entry with the maximum date (stable
// descending sort, first entry), or nil when the history is empty.
func (f *FinancialData) LatestIncomeStatement() *FinancialStatementEntry {
	entries := f.SortedIncomeStatements()
	if len(entries) == 0 {
		return nil
	}
	return &entries[0]
}

// LatestMarketCap returns the observation with the maximum date, or nil
// when the history is empty.
func (f *FinancialData) LatestMarketCap() *MarketCapEntry {
	if f == nil || len(f.MarketCap) == 0 {
		return nil
	}
	entries := make([]MarketCapEntry, len(f.MarketCap))
	copy(entries, f.MarketCap)
	sort.SliceStable(entries, func(i, j int) bool {
		return parseEntryDate(entries[i].Date).After(parseEntryDate(entries[j].Date))
	})
	return &entries[0]
}

// ToMap converts the document to a plain map for flat merge responses
func (f *FinancialData) ToMap() (map[string]any, error) {
	data, err := json.Marshal(f)
	if err != nil {
		return nil, err
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return m, nil
}

// parseEntryDate parses the date formats seen in stored documents.
// Unparseable dates sort last.
func parseEntryDate(s string) time.Time {
	for _, layout := range []string{"2006-01-02", time.RFC3339, "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

// GrowthMetrics holds precomputed year-over-year growth percentages.
// Absent fields mean "no growth figure", never zero.
type GrowthMetrics struct {
	RevenueGrowthPct     *float64 `bson:"revenue_growth_pct,omitempty" json:"revenue_growth_pct,omitempty"`
	GrossProfitGrowthPct *float64 `bson:"gross_profit_growth_pct,omitempty" json:"gross_profit_growth_pct,omitempty"`
	NetIncomeGrowthPct   *float64 `bson:"net_income_growth_pct,omitempty" json:"net_income_growth_pct,omitempty"`
}

// RawValues holds the most recent fiscal-year fundamentals backing the
// precomputed metrics.
type RawValues struct {
	CurrentRevenue     *float64 `bson:"current_revenue,omitempty" json:"current_revenue,omitempty"`
	CurrentGrossProfit *float64 `bson:"current_grossProfit,omitempty" json:"current_grossProfit,omitempty"`
	CurrentNetIncome   *float64 `bson:"current_netIncome,omitempty" json:"current_netIncome,omitempty"`
}

// ValuationMultiples holds unrounded market-cap multiples.
type ValuationMultiples struct {
	MarketcapToRevenue     *float64 `bson:"marketcap_to_revenue,omitempty" json:"marketcap_to_revenue,omitempty"`
	MarketcapToNetincome   *float64 `bson:"marketcap_to_netincome,omitempty" json:"marketcap_to_netincome,omitempty"`
	MarketcapToGrossprofit *float64 `bson:"marketcap_to_grossprofit,omitempty" json:"marketcap_to_grossprofit,omitempty"`
}

// ValuationMetrics is the precomputed per-ticker valuation document
// written by the collector and preferred by enrichment over on-the-fly
// derivation.
type ValuationMetrics struct {
	Ticker                string              `bson:"ticker" json:"ticker"`
	MarketCap             *float64            `bson:"market_cap,omitempty" json:"market_cap,omitempty"`
	LatestFiscalYear      string              `bson:"latest_fiscal_year,omitempty" json:"latest_fiscal_year,omitempty"`
	GrowthMetrics         *GrowthMetrics      `bson:"growth_metrics,omitempty" json:"growth_metrics,omitempty"`
	RawValues             *RawValues          `bson:"raw_values,omitempty" json:"raw_values,omitempty"`
	ValuationMultiplesRaw *ValuationMultiples `bson:"valuation_multiples_raw,omitempty" json:"valuation_multiples_raw,omitempty"`
	UpdatedAt             time.Time           `bson:"updatedAt,omitempty" json:"updatedAt,omitempty"`
}

// HasPrecomputed reports whether the document carries enough
// precomputed data to drive enrichment without derivation.
func (v *ValuationMetrics) HasPrecomputed() bool {
	return v != nil && (v.GrowthMetrics != nil || v.RawValues != nil)
}

// ToMap converts the document to a plain map for flat merge responses
func (v *ValuationMetrics) ToMap() (map[string]any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return m, nil
}

// Financials is the display-ready view enrichment attaches to a
// company record. The three multiples always serialize, as null when
// no denominator was available; every other field drops out of the
// payload when absent.
type Financials struct {
	Year        string   `json:"year,omitempty"`
	Revenue     *float64 `json:"revenue,omitempty"`
	GrossProfit *float64 `json:"grossProfit,omitempty"`
	NetIncome   *float64 `json:"netIncome,omitempty"`
	MarketCap   *float64 `json:"marketCap,omitempty"`

	RevenueGrowthPct     *float64 `json:"revenueGrowthPct,omitempty"`
	GrossProfitGrowthPct *float64 `json:"grossProfitGrowthPct,omitempty"`
	NetIncomeGrowthPct   *float64 `json:"netIncomeGrowthPct,omitempty"`

	CurrentRevenue     *float64 `json:"current_revenue,omitempty"`
	CurrentGrossProfit *float64 `json:"current_grossProfit,omitempty"`
	CurrentNetIncome   *float64 `json:"current_netIncome,omitempty"`

	MarketCapToRevenueMultiple     *float64 `json:"marketCapToRevenueMultiple"`
	MarketCapToNetIncomeMultiple   *float64 `json:"marketCapToNetIncomeMultiple"`
	MarketCapToGrossProfitMultiple *float64 `json:"marketCapToGrossProfitMultiple"`
}

// TickerFinancials pairs one ticker's resolved documents, with the
// latest entries precomputed for enrichment.
type TickerFinancials struct {
	FinancialData         *FinancialData
	ValuationMetrics      *ValuationMetrics
	LatestIncomeStatement *FinancialStatementEntry
	LatestMarketCap       *MarketCapEntry
}
