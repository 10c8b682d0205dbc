package collector

import (
	"math"

	"github.com/ternarybob/bursa/internal/models"
)

// buildValuationMetrics derives the precomputed valuation document from
// a ticker's collected history. Returns nil when there is no income
// statement to anchor the figures on; the read path then falls back to
// on-the-fly derivation or serves the company bare.
func buildValuationMetrics(data *models.FinancialData) *models.ValuationMetrics {
	statements := data.SortedIncomeStatements()
	if len(statements) == 0 {
		return nil
	}
	latest := statements[0]

	metrics := &models.ValuationMetrics{
		Ticker:           data.Ticker,
		LatestFiscalYear: latest.CalendarYear,
		RawValues: &models.RawValues{
			CurrentRevenue:     latest.Revenue,
			CurrentGrossProfit: latest.GrossProfit,
			CurrentNetIncome:   latest.NetIncome,
		},
	}

	if len(statements) > 1 {
		previous := statements[1]
		metrics.GrowthMetrics = &models.GrowthMetrics{
			RevenueGrowthPct:     growthPct(latest.Revenue, previous.Revenue),
			GrossProfitGrowthPct: growthPct(latest.GrossProfit, previous.GrossProfit),
			NetIncomeGrowthPct:   growthPct(latest.NetIncome, previous.NetIncome),
		}
	}

	if cap := data.LatestMarketCap(); cap != nil {
		mc := cap.MarketCap
		metrics.MarketCap = &mc
		metrics.ValuationMultiplesRaw = &models.ValuationMultiples{
			MarketcapToRevenue:     ratio(mc, latest.Revenue),
			MarketcapToNetincome:   ratio(mc, latest.NetIncome),
			MarketcapToGrossprofit: ratio(mc, latest.GrossProfit),
		}
	}

	return metrics
}

// growthPct computes the year-over-year percentage change. Either side
// missing, or a zero base year, means no figure; the field stays absent
// rather than reading as 0%.
func growthPct(current, previous *float64) *float64 {
	if current == nil || previous == nil || *previous == 0 {
		return nil
	}
	pct := (*current - *previous) / math.Abs(*previous) * 100
	return &pct
}

// ratio stores the unrounded multiple; display rounding happens at
// enrichment time. A zero or missing denominator yields no figure.
func ratio(marketCap float64, denominator *float64) *float64 {
	if denominator == nil || *denominator == 0 {
		return nil
	}
	r := marketCap / *denominator
	return &r
}
