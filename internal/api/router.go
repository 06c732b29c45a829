// Package api assembles the HTTP surface of the analytics service.
package api

import (
	"net/http"
	"time"

	"github.com/dvloznov/seller-analytics/internal/api/handlers"
	"github.com/dvloznov/seller-analytics/internal/api/middleware"
	"github.com/rs/zerolog"
)

// NewRouter registers every endpoint and wraps the mux in the standard
// middleware chain. A nil reports handler leaves the report endpoints out.
func NewRouter(log zerolog.Logger, analytics *handlers.AnalyticsHandler, reports *handlers.ReportsHandler) http.Handler {
	mux := http.NewServeMux()

	// Analytics endpoints
	mux.HandleFunc("/api/analytics/top-seller", only(http.MethodGet, analytics.TopSeller))
	mux.HandleFunc("/api/analytics/low-performance", only(http.MethodGet, analytics.LowPerformance))
	mux.HandleFunc("/api/analytics/best-period/{sellerId}", only(http.MethodGet, analytics.BestPeriod))
	mux.HandleFunc("/api/analytics/sellers/{sellerId}/total", only(http.MethodGet, analytics.SellerTotal))
	mux.HandleFunc("/api/analytics/summary", only(http.MethodGet, analytics.Summary))

	// Report export endpoints
	if reports != nil {
		mux.HandleFunc("/api/reports", func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet:
				reports.ListReports(w, r)
			case http.MethodPost:
				reports.CreateReport(w, r)
			default:
				middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
			}
		})
		mux.HandleFunc("/api/reports/{id}", only(http.MethodGet, reports.GetReport))
	}

	// Health check endpoint
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		middleware.WriteJSON(w, http.StatusOK, map[string]string{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	return middleware.Chain(mux,
		middleware.RequestID,
		middleware.Recovery(log),
		middleware.Logger(log),
		middleware.CORS,
	)
}

func only(method string, h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != method {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
			return
		}
		h(w, r)
	}
}
