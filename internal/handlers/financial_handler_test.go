package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/bursa/internal/common"
	"github.com/ternarybob/bursa/internal/models"
)

// mockFinancialService implements interfaces.FinancialService for testing
type mockFinancialService struct {
	merged    map[string]any
	err       error
	gotTicker string
}

func (m *mockFinancialService) Resolve(ctx context.Context, tickers []string) (map[string]*models.TickerFinancials, error) {
	return nil, nil
}

func (m *mockFinancialService) GetMergedFinancials(ctx context.Context, ticker string) (map[string]any, error) {
	m.gotTicker = ticker
	if m.err != nil {
		return nil, m.err
	}
	return m.merged, nil
}

func TestFinancialsHandler(t *testing.T) {
	svc := &mockFinancialService{merged: map[string]any{
		"ticker":     "AAPL",
		"market_cap": 3.0e12,
	}}
	h := NewFinancialHandler(svc, true, arbor.NewLogger())

	rec := httptest.NewRecorder()
	h.FinancialsHandler(rec, httptest.NewRequest("GET", "/api/financials/AAPL", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if svc.gotTicker != "AAPL" {
		t.Errorf("ticker param = %q", svc.gotTicker)
	}
	var got map[string]any
	decodeBody(t, rec, &got)
	if got["ticker"] != "AAPL" {
		t.Errorf("body = %v", got)
	}
}

func TestFinancialsHandlerUnknownTicker(t *testing.T) {
	svc := &mockFinancialService{err: common.NewNotFoundError("financial data", "ZZZZ")}
	h := NewFinancialHandler(svc, true, arbor.NewLogger())

	rec := httptest.NewRecorder()
	h.FinancialsHandler(rec, httptest.NewRequest("GET", "/api/financials/ZZZZ", nil))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	var got map[string]string
	decodeBody(t, rec, &got)
	if got["message"] == "" {
		t.Error("404 body must carry a message")
	}
}

func TestFinancialsHandlerMissingTicker(t *testing.T) {
	h := NewFinancialHandler(&mockFinancialService{}, true, arbor.NewLogger())

	rec := httptest.NewRecorder()
	h.FinancialsHandler(rec, httptest.NewRequest("GET", "/api/financials/", nil))

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestFinancialsHandlerStoreFailure(t *testing.T) {
	svc := &mockFinancialService{err: common.NewInfrastructureError("find", errors.New("connection lost"))}
	h := NewFinancialHandler(svc, true, arbor.NewLogger())

	rec := httptest.NewRecorder()
	h.FinancialsHandler(rec, httptest.NewRequest("GET", "/api/financials/AAPL", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	var got map[string]string
	decodeBody(t, rec, &got)
	if got["error"] == "" {
		t.Error("development 500 body should carry the error detail")
	}
}
