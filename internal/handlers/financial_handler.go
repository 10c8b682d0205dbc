package handlers

import (
	"net/http"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/bursa/internal/interfaces"
)

// FinancialHandler serves the merged per-ticker financials endpoint.
type FinancialHandler struct {
	financials    interfaces.FinancialService
	includeDetail bool
	logger        arbor.ILogger
}

// NewFinancialHandler creates a new financial handler
func NewFinancialHandler(financials interfaces.FinancialService, includeDetail bool, logger arbor.ILogger) *FinancialHandler {
	return &FinancialHandler{
		financials:    financials,
		includeDetail: includeDetail,
		logger:        logger,
	}
}

// FinancialsHandler handles GET /api/financials/{ticker}: the ticker's
// financial document flat-merged with its valuation metrics document.
func (h *FinancialHandler) FinancialsHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	ticker := PathParam(r.URL.Path, "/api/financials/")
	if ticker == "" {
		WriteMessage(w, http.StatusBadRequest, "ticker is required")
		return
	}

	merged, err := h.financials.GetMergedFinancials(r.Context(), ticker)
	if err != nil {
		h.logger.Warn().Err(err).Str("ticker", ticker).Msg("Financials lookup failed")
		WriteServiceError(w, err, h.includeDetail)
		return
	}

	WriteJSON(w, http.StatusOK, merged)
}
