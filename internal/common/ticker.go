// Package common provides shared utilities across the application.
package common

import (
	"strings"
)

// NormalizeTicker returns the canonical form of a ticker symbol:
// whitespace-trimmed and uppercased. FMP and the document store both
// key financial documents by this form (e.g., "aapl " -> "AAPL",
// "ry.to" -> "RY.TO").
func NormalizeTicker(ticker string) string {
	return strings.ToUpper(strings.TrimSpace(ticker))
}

// NormalizeTickers normalizes a list of ticker symbols, dropping
// empties and duplicates while preserving first-seen order.
func NormalizeTickers(tickers []string) []string {
	result := make([]string, 0, len(tickers))
	seen := make(map[string]struct{}, len(tickers))
	for _, t := range tickers {
		normalized := NormalizeTicker(t)
		if normalized == "" {
			continue
		}
		if _, ok := seen[normalized]; ok {
			continue
		}
		seen[normalized] = struct{}{}
		result = append(result, normalized)
	}
	return result
}
