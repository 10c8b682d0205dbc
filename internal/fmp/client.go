package fmp

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/goccy/go-json"
	"github.com/ternarybob/arbor"
	"golang.org/x/time/rate"
)

const (
	// DefaultBaseURL is the base URL for the FMP API.
	DefaultBaseURL = "https://financialmodelingprep.com/api/v3"

	// DefaultTimeout is the default HTTP timeout.
	DefaultTimeout = 30 * time.Second

	// DefaultRateLimit is the default minimum interval between requests.
	DefaultRateLimit = 250 * time.Millisecond
)

// Client is an FMP API client.
type Client struct {
	http    *resty.Client
	apiKey  string
	logger  arbor.ILogger
	limiter *rate.Limiter
}

// NewClient creates a new FMP API client.
func NewClient(apiKey string, opts ...ClientOption) *Client {
	c := &Client{
		apiKey: apiKey,
		http: resty.New().
			SetBaseURL(DefaultBaseURL).
			SetTimeout(DefaultTimeout),
	}
	c.setRateLimit(DefaultRateLimit)

	for _, opt := range opts {
		opt(c)
	}

	return c
}

func (c *Client) setRateLimit(minInterval time.Duration) {
	if minInterval <= 0 {
		minInterval = DefaultRateLimit
	}
	c.limiter = rate.NewLimiter(rate.Every(minInterval), 1)
}

// get performs a GET request to the API and decodes the JSON response.
func (c *Client) get(ctx context.Context, path string, params map[string]string, result interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	if c.logger != nil {
		c.logger.Debug().
			Str("endpoint", path).
			Msg("FMP API request")
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(params).
		SetQueryParam("apikey", c.apiKey).
		Get(path)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}

	if resp.StatusCode() != http.StatusOK {
		return &APIError{
			StatusCode: resp.StatusCode(),
			Message:    string(resp.Body()),
			Endpoint:   path,
		}
	}

	if err := json.Unmarshal(resp.Body(), result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}

// IncomeStatements retrieves up to limit annual income statements for a
// ticker, most recent first.
func (c *Client) IncomeStatements(ctx context.Context, ticker string, limit int) ([]IncomeStatement, error) {
	params := map[string]string{"period": "annual"}
	if limit > 0 {
		params["limit"] = strconv.Itoa(limit)
	}

	var result []IncomeStatement
	if err := c.get(ctx, "/income-statement/"+url.PathEscape(ticker), params, &result); err != nil {
		return nil, err
	}
	return result, nil
}

// MarketCapHistory retrieves up to limit historical market
// capitalization observations for a ticker, most recent first.
func (c *Client) MarketCapHistory(ctx context.Context, ticker string, limit int) ([]HistoricalMarketCap, error) {
	var params map[string]string
	if limit > 0 {
		params = map[string]string{"limit": strconv.Itoa(limit)}
	}

	var result []HistoricalMarketCap
	if err := c.get(ctx, "/historical-market-capitalization/"+url.PathEscape(ticker), params, &result); err != nil {
		return nil, err
	}
	return result, nil
}
