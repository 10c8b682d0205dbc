package collector

import (
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/ternarybob/bursa/internal/common"
	"github.com/ternarybob/bursa/internal/models"
)

// ParseListing extracts company records from an exchange listing HTML
// page. The first table's header row names the record fields; rows
// without a ticker cell are dropped.
func ParseListing(r io.Reader) ([]models.CompanyRecord, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse listing document: %w", err)
	}

	table := doc.Find("table").First()
	if table.Length() == 0 {
		return nil, fmt.Errorf("listing document has no table")
	}

	var headers []string
	table.Find("tr").First().Find("th, td").Each(func(_ int, cell *goquery.Selection) {
		headers = append(headers, headerKey(cell.Text()))
	})
	if len(headers) == 0 {
		return nil, fmt.Errorf("listing table has no header row")
	}

	companies := make([]models.CompanyRecord, 0)
	table.Find("tr").Each(func(i int, row *goquery.Selection) {
		if i == 0 {
			return
		}
		cells := row.Find("td")
		if cells.Length() == 0 {
			return
		}

		record := make(models.CompanyRecord, len(headers))
		cells.Each(func(j int, cell *goquery.Selection) {
			if j >= len(headers) || headers[j] == "" {
				return
			}
			value := strings.TrimSpace(cell.Text())
			if value == "" {
				return
			}
			record[headers[j]] = value
		})

		if ticker, ok := record.Ticker(); ok {
			record["ticker"] = common.NormalizeTicker(ticker)
			companies = append(companies, record)
		}
	})

	return companies, nil
}

// headerKey converts a header cell into a record field name. Common
// exchange listing headings map onto the canonical field names the rest
// of the application keys on.
func headerKey(text string) string {
	key := strings.ToLower(strings.TrimSpace(text))
	key = strings.ReplaceAll(key, " ", "_")
	switch key {
	case "symbol", "code":
		return "ticker"
	case "company", "company_name", "security_name":
		return "name"
	}
	return key
}
