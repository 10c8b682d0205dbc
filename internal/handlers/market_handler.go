package handlers

import (
	"net/http"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/bursa/internal/interfaces"
)

// MarketHandler serves the country/region/company lookup endpoints.
type MarketHandler struct {
	markets       interfaces.MarketService
	includeDetail bool
	logger        arbor.ILogger
}

// NewMarketHandler creates a new market handler. includeDetail controls
// whether 500 bodies carry the underlying error (disabled in production).
func NewMarketHandler(markets interfaces.MarketService, includeDetail bool, logger arbor.ILogger) *MarketHandler {
	return &MarketHandler{
		markets:       markets,
		includeDetail: includeDetail,
		logger:        logger,
	}
}

// CountriesHandler handles GET /api/countries. Failures keep the array
// shape: an unseeded store is a 404 with [], a store failure a 500
// with [].
func (h *MarketHandler) CountriesHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	countries, err := h.markets.ListCountries(r.Context())
	if err != nil {
		h.logger.Warn().Err(err).Msg("Country listing failed")
		WriteJSON(w, StatusForError(err), []string{})
		return
	}

	WriteJSON(w, http.StatusOK, countries)
}

// CountryHandler handles GET /api/country/{countryName}.
func (h *MarketHandler) CountryHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	countryName := PathParam(r.URL.Path, "/api/country/")
	if countryName == "" {
		WriteMessage(w, http.StatusBadRequest, "country name is required")
		return
	}

	region, err := h.markets.GetRegion(r.Context(), countryName)
	if err != nil {
		h.logger.Warn().Err(err).Str("country", countryName).Msg("Region lookup failed")
		WriteServiceError(w, err, h.includeDetail)
		return
	}

	WriteJSON(w, http.StatusOK, region)
}

// CategoriesHandler handles GET /api/categories/usa.
func (h *MarketHandler) CategoriesHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	categories, err := h.markets.ListUSCategories(r.Context())
	if err != nil {
		h.logger.Warn().Err(err).Msg("US category listing failed")
		WriteServiceError(w, err, h.includeDetail)
		return
	}

	WriteJSON(w, http.StatusOK, categories)
}

// CompaniesHandler handles GET /api/companies/{countryName}?category=.
// US companies come back enriched with financial views.
func (h *MarketHandler) CompaniesHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	countryName := PathParam(r.URL.Path, "/api/companies/")
	if countryName == "" {
		WriteMessage(w, http.StatusBadRequest, "country name is required")
		return
	}
	category := r.URL.Query().Get("category")

	listing, err := h.markets.GetCompanies(r.Context(), countryName, category)
	if err != nil {
		h.logger.Warn().
			Err(err).
			Str("country", countryName).
			Str("category", category).
			Msg("Company selection failed")
		WriteServiceError(w, err, h.includeDetail)
		return
	}

	WriteJSON(w, http.StatusOK, listing)
}
