package enrichment

import (
	"context"
	"math"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/bursa/internal/interfaces"
	"github.com/ternarybob/bursa/internal/models"
)

// Service implements the EnrichmentService interface
type Service struct {
	financials interfaces.FinancialService
	logger     arbor.ILogger
}

// NewService creates a new enrichment service
func NewService(financials interfaces.FinancialService, logger arbor.ILogger) interfaces.EnrichmentService {
	return &Service{
		financials: financials,
		logger:     logger,
	}
}

// EnrichCompanies resolves financial documents for the whole batch in
// one pass, then applies the fallback policy per company. Companies
// without a ticker or without any resolved data pass through unchanged.
func (s *Service) EnrichCompanies(ctx context.Context, companies []models.CompanyRecord) ([]models.EnrichedCompany, error) {
	if len(companies) == 0 {
		return []models.EnrichedCompany{}, nil
	}

	tickers := make([]string, 0, len(companies))
	for _, company := range companies {
		if ticker, ok := company.Ticker(); ok {
			tickers = append(tickers, ticker)
		}
	}

	resolved, err := s.financials.Resolve(ctx, tickers)
	if err != nil {
		return nil, err
	}

	enriched := make([]models.EnrichedCompany, len(companies))
	for i, company := range companies {
		ticker, ok := company.Ticker()
		if !ok {
			enriched[i] = company
			continue
		}
		enriched[i] = s.Enrich(company, resolved[ticker])
	}

	s.logger.Debug().
		Int("companies", len(companies)).
		Int("with_data", len(resolved)).
		Msg("Enriched company batch")

	return enriched, nil
}

// Enrich attaches a display-ready financials view to one company.
// Precomputed valuation metrics always win; without them the view is
// derived from the latest statement and market-cap entries; with
// neither the record is returned untouched, carrying no financials
// field at all.
func (s *Service) Enrich(company models.CompanyRecord, resolved *models.TickerFinancials) models.EnrichedCompany {
	if resolved == nil {
		return company
	}

	switch {
	case resolved.ValuationMetrics.HasPrecomputed():
		return enrichPrecomputed(company, resolved.ValuationMetrics, resolved.LatestIncomeStatement)
	case resolved.LatestIncomeStatement != nil && resolved.LatestMarketCap != nil:
		return enrichDerived(company, resolved.LatestIncomeStatement, resolved.LatestMarketCap)
	default:
		return company
	}
}

func enrichPrecomputed(company models.CompanyRecord, metrics *models.ValuationMetrics, latest *models.FinancialStatementEntry) models.EnrichedCompany {
	var raw models.RawValues
	if metrics.RawValues != nil {
		raw = *metrics.RawValues
	}

	var stmtRevenue, stmtGrossProfit, stmtNetIncome *float64
	var stmtYear string
	if latest != nil {
		stmtRevenue = latest.Revenue
		stmtGrossProfit = latest.GrossProfit
		stmtNetIncome = latest.NetIncome
		stmtYear = latest.CalendarYear
	}

	fin := &models.Financials{
		// Fundamentals prefer the stored current values, falling back
		// per field to the latest income statement. Market cap has no
		// fallback; the precomputed figure is authoritative.
		Revenue:     firstNonNil(raw.CurrentRevenue, stmtRevenue),
		GrossProfit: firstNonNil(raw.CurrentGrossProfit, stmtGrossProfit),
		NetIncome:   firstNonNil(raw.CurrentNetIncome, stmtNetIncome),
		MarketCap:   metrics.MarketCap,

		// The stored current values are also echoed for direct access.
		CurrentRevenue:     raw.CurrentRevenue,
		CurrentGrossProfit: raw.CurrentGrossProfit,
		CurrentNetIncome:   raw.CurrentNetIncome,
	}

	// Absent growth fields stay absent; zero means an actual 0.0%.
	if g := metrics.GrowthMetrics; g != nil {
		fin.RevenueGrowthPct = round1(g.RevenueGrowthPct)
		fin.GrossProfitGrowthPct = round1(g.GrossProfitGrowthPct)
		fin.NetIncomeGrowthPct = round1(g.NetIncomeGrowthPct)
	}

	// Absent multiples serialize as explicit nulls.
	if m := metrics.ValuationMultiplesRaw; m != nil {
		fin.MarketCapToRevenueMultiple = round2(m.MarketcapToRevenue)
		fin.MarketCapToNetIncomeMultiple = round2(m.MarketcapToNetincome)
		fin.MarketCapToGrossProfitMultiple = round2(m.MarketcapToGrossprofit)
	}

	fin.Year = metrics.LatestFiscalYear
	if fin.Year == "" {
		fin.Year = stmtYear
	}

	enriched := company.Clone()
	enriched["financials"] = fin
	return enriched
}

func enrichDerived(company models.CompanyRecord, latest *models.FinancialStatementEntry, marketCap *models.MarketCapEntry) models.EnrichedCompany {
	mc := marketCap.MarketCap

	fin := &models.Financials{
		Year:        latest.CalendarYear,
		Revenue:     latest.Revenue,
		GrossProfit: latest.GrossProfit,
		NetIncome:   latest.NetIncome,
		MarketCap:   &mc,

		MarketCapToRevenueMultiple:     divide(mc, latest.Revenue),
		MarketCapToNetIncomeMultiple:   divide(mc, latest.NetIncome),
		MarketCapToGrossProfitMultiple: divide(mc, latest.GrossProfit),
	}

	enriched := company.Clone()
	enriched["financials"] = fin
	return enriched
}

// divide computes a market-cap multiple rounded to 2 decimal places. A
// missing or zero denominator is a data condition and yields nil, never
// an infinity or a panic.
func divide(marketCap float64, denominator *float64) *float64 {
	if denominator == nil || *denominator == 0 {
		return nil
	}
	return round2Value(marketCap / *denominator)
}

func firstNonNil(values ...*float64) *float64 {
	for _, v := range values {
		if v != nil {
			return v
		}
	}
	return nil
}

// round1 rounds to 1 decimal place, passing nil through.
func round1(v *float64) *float64 {
	if v == nil {
		return nil
	}
	r := math.Round(*v*10) / 10
	return &r
}

// round2 rounds to 2 decimal places, passing nil through.
func round2(v *float64) *float64 {
	if v == nil {
		return nil
	}
	return round2Value(*v)
}

func round2Value(v float64) *float64 {
	r := math.Round(v*100) / 100
	return &r
}
