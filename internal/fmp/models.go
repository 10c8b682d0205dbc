package fmp

import (
	"github.com/ternarybob/bursa/internal/models"
)

// IncomeStatement is one annual statement row as returned by the
// income-statement endpoint. Only the fields the application stores are
// decoded; the numeric fields stay optional because FMP omits figures
// it has no data for.
type IncomeStatement struct {
	Date         string   `json:"date"`
	Symbol       string   `json:"symbol"`
	CalendarYear string   `json:"calendarYear"`
	Revenue      *float64 `json:"revenue"`
	GrossProfit  *float64 `json:"grossProfit"`
	NetIncome    *float64 `json:"netIncome"`
}

// ToEntry converts the wire row to the stored entry form.
func (s IncomeStatement) ToEntry() models.FinancialStatementEntry {
	return models.FinancialStatementEntry{
		Date:         s.Date,
		Revenue:      s.Revenue,
		GrossProfit:  s.GrossProfit,
		NetIncome:    s.NetIncome,
		CalendarYear: s.CalendarYear,
	}
}

// HistoricalMarketCap is one market capitalization observation as
// returned by the historical-market-capitalization endpoint.
type HistoricalMarketCap struct {
	Symbol    string  `json:"symbol"`
	Date      string  `json:"date"`
	MarketCap float64 `json:"marketCap"`
}

// ToEntry converts the wire row to the stored entry form.
func (h HistoricalMarketCap) ToEntry() models.MarketCapEntry {
	return models.MarketCapEntry{
		Date:      h.Date,
		MarketCap: h.MarketCap,
	}
}
