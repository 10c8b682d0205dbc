package models

import (
	"time"
)

// MarketDocumentID is the storage key of the single denormalized
// markets document. The whole region tree lives under one document and
// is loaded fresh per request.
const MarketDocumentID = "markets"

// USRegionPrefix is the distinguished region literal. The United States
// region is the only one partitioned into categories; every other
// region carries a flat companies list.
const USRegionPrefix = "United States"

// CategoryAll is the sentinel category meaning "no category filter".
const CategoryAll = "All"

// CompanyRecord is a schema-less company identity document. Records
// carry arbitrary display fields (name, description, sector, ...);
// only the ticker field is relied on, as the join key into the
// financial collections.
type CompanyRecord map[string]any

// Ticker returns the record's ticker symbol when present and non-empty.
func (c CompanyRecord) Ticker() (string, bool) {
	v, ok := c["ticker"]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	if !ok || s == "" {
		return "", false
	}
	return s, true
}

// Clone returns a shallow copy so enrichment never mutates the stored record.
func (c CompanyRecord) Clone() CompanyRecord {
	clone := make(CompanyRecord, len(c)+1)
	for k, v := range c {
		clone[k] = v
	}
	return clone
}

// EnrichedCompany is a company record with an optional display-ready
// financials view attached under the "financials" key. Records with no
// financial data pass through without the key.
type EnrichedCompany = CompanyRecord

// Category is a sub-grouping of companies within the United States region.
type Category struct {
	Name      string          `bson:"name" json:"name"`
	Companies []CompanyRecord `bson:"companies,omitempty" json:"companies,omitempty"`
}

// Region is one country's aggregated company listing. Name optionally
// carries a parenthetical exchange qualifier, e.g.
// "United States (NYSE/NASDAQ)".
type Region struct {
	Name         string          `bson:"name,omitempty" json:"name,omitempty"`
	ExchangeName string          `bson:"exchangeName,omitempty" json:"exchangeName,omitempty"`
	Companies    []CompanyRecord `bson:"companies,omitempty" json:"companies,omitempty"`
	Categories   []Category      `bson:"categories,omitempty" json:"categories,omitempty"`
}

// MarketDocument is the single top-level document holding every region.
type MarketDocument struct {
	ID        string    `bson:"_id,omitempty" json:"-"`
	Regions   []Region  `bson:"regions" json:"regions"`
	UpdatedAt time.Time `bson:"updatedAt,omitempty" json:"updatedAt,omitempty"`
}

// CompanyListing is the company-selection response for one country:
// the region's exchange name plus its (possibly enriched) companies.
type CompanyListing struct {
	ExchangeName string          `json:"exchangeName,omitempty"`
	Companies    []CompanyRecord `json:"companies"`
}
