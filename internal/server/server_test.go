package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/bursa/internal/app"
	"github.com/ternarybob/bursa/internal/common"
	"github.com/ternarybob/bursa/internal/handlers"
	"github.com/ternarybob/bursa/internal/models"
)

// stubMarketService panics on ListCountries to exercise the recovery
// middleware and answers everything else statically.
type stubMarketService struct {
	panicOnCountries bool
}

func (s *stubMarketService) ListCountries(ctx context.Context) ([]string, error) {
	if s.panicOnCountries {
		panic("stub failure")
	}
	return []string{"Canada", "United States"}, nil
}

func (s *stubMarketService) GetRegion(ctx context.Context, countryName string) (*models.Region, error) {
	return &models.Region{Name: countryName}, nil
}

func (s *stubMarketService) ListUSCategories(ctx context.Context) ([]string, error) {
	return []string{"Technology"}, nil
}

func (s *stubMarketService) GetCompanies(ctx context.Context, countryName, category string) (*models.CompanyListing, error) {
	return &models.CompanyListing{Companies: []models.CompanyRecord{}}, nil
}

type stubFinancialService struct{}

func (s *stubFinancialService) Resolve(ctx context.Context, tickers []string) (map[string]*models.TickerFinancials, error) {
	return map[string]*models.TickerFinancials{}, nil
}

func (s *stubFinancialService) GetMergedFinancials(ctx context.Context, ticker string) (map[string]any, error) {
	return map[string]any{"ticker": ticker}, nil
}

type stubSubscriptionService struct{}

func (s *stubSubscriptionService) Subscribe(ctx context.Context, req *models.SubscribeRequest) (*models.SubscriptionResults, error) {
	return &models.SubscriptionResults{AllCountries: "created"}, nil
}

func newTestServer(markets *stubMarketService) *Server {
	cfg := common.NewDefaultConfig()
	logger := arbor.NewLogger()

	a := &app.App{Config: cfg, Logger: logger}
	a.APIHandler = handlers.NewAPIHandler(logger)
	a.MarketHandler = handlers.NewMarketHandler(markets, true, logger)
	a.FinancialHandler = handlers.NewFinancialHandler(&stubFinancialService{}, true, logger)
	a.SubscriptionHandler = handlers.NewSubscriptionHandler(&stubSubscriptionService{}, true, logger)

	return New(a)
}

func do(t *testing.T, srv *Server, method, path string, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(method, path, reader))
	return rec
}

func TestRouting(t *testing.T) {
	srv := newTestServer(&stubMarketService{})

	tests := []struct {
		method     string
		path       string
		body       string
		wantStatus int
	}{
		{"GET", "/api/health", "", http.StatusOK},
		{"GET", "/api/version", "", http.StatusOK},
		{"GET", "/api/countries", "", http.StatusOK},
		{"GET", "/api/country/United%20States", "", http.StatusOK},
		{"GET", "/api/categories/usa", "", http.StatusOK},
		{"GET", "/api/companies/Canada", "", http.StatusOK},
		{"GET", "/api/financials/AAPL", "", http.StatusOK},
		{"POST", "/api/notifications/subscribe", `{"email":"user@example.com"}`, http.StatusCreated},
		{"GET", "/api/notifications/subscribe", "", http.StatusMethodNotAllowed},
		{"GET", "/api/nope", "", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			rec := do(t, srv, tt.method, tt.path, tt.body)
			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d (body %s)", rec.Code, tt.wantStatus, rec.Body.String())
			}
			if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
				t.Errorf("Content-Type = %q, want application/json", ct)
			}
		})
	}
}

func TestHealthBody(t *testing.T) {
	srv := newTestServer(&stubMarketService{})

	rec := do(t, srv, "GET", "/api/health", "")
	var got map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("body %q: %v", rec.Body.String(), err)
	}
	if got["status"] != "ok" {
		t.Errorf("body = %v, want status ok", got)
	}
}

func TestCORSPreflight(t *testing.T) {
	srv := newTestServer(&stubMarketService{})

	rec := do(t, srv, "OPTIONS", "/api/countries", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if rec.Header().Get("Access-Control-Allow-Origin") == "" {
		t.Error("preflight response missing CORS headers")
	}
}

func TestRequestIDEchoed(t *testing.T) {
	srv := newTestServer(&stubMarketService{})

	rec := do(t, srv, "GET", "/api/health", "")
	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("response missing X-Request-ID")
	}
}

func TestPanicRecovery(t *testing.T) {
	srv := newTestServer(&stubMarketService{panicOnCountries: true})

	rec := do(t, srv, "GET", "/api/countries", "")
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500 from the recovery middleware", rec.Code)
	}
	var got map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("500 body %q is not JSON: %v", rec.Body.String(), err)
	}
	if got["message"] == "" {
		t.Error("500 body must carry a message")
	}
}
