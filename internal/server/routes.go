package server

import (
	"net/http"
)

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	// API routes - Markets
	mux.HandleFunc("/api/countries", s.app.MarketHandler.CountriesHandler)
	mux.HandleFunc("/api/country/", s.app.MarketHandler.CountryHandler)       // GET /{countryName}
	mux.HandleFunc("/api/categories/usa", s.app.MarketHandler.CategoriesHandler)
	mux.HandleFunc("/api/companies/", s.app.MarketHandler.CompaniesHandler) // GET /{countryName}?category=

	// API routes - Financials
	mux.HandleFunc("/api/financials/", s.app.FinancialHandler.FinancialsHandler) // GET /{ticker}

	// API routes - Notifications
	mux.HandleFunc("/api/notifications/subscribe", s.app.SubscriptionHandler.SubscribeHandler) // POST

	// API routes - System
	mux.HandleFunc("/api/version", s.app.APIHandler.VersionHandler)
	mux.HandleFunc("/api/health", s.app.APIHandler.HealthHandler)

	// 404 handler for unmatched API routes
	mux.HandleFunc("/api/", s.app.APIHandler.NotFoundHandler)

	return mux
}
