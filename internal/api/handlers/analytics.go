package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/dvloznov/seller-analytics/internal/api/middleware"
	"github.com/dvloznov/seller-analytics/internal/domain"
	"github.com/shopspring/decimal"
)

// AnalyticsService is what the analytics endpoints need from the service layer.
type AnalyticsService interface {
	TopSeller(ctx context.Context, period string) (*domain.TopSeller, error)
	SellersBelow(ctx context.Context, start, end time.Time, minAmount decimal.Decimal) ([]domain.SellerAggregate, error)
	SellersBelowForPeriod(ctx context.Context, period string, minAmount decimal.Decimal) ([]domain.SellerAggregate, error)
	BestPeriod(ctx context.Context, sellerID int64) (*domain.BestPeriodResult, error)
	SellerTotal(ctx context.Context, sellerID int64, start, end time.Time) (decimal.Decimal, error)
	SellerTransactionCount(ctx context.Context, sellerID int64) (int64, error)
	Summary(ctx context.Context) (*domain.Summary, error)
}

// AnalyticsHandler handles /api/analytics endpoints.
type AnalyticsHandler struct {
	svc AnalyticsService
}

// NewAnalyticsHandler creates a new analytics handler.
func NewAnalyticsHandler(svc AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{svc: svc}
}

// TopSeller handles GET /api/analytics/top-seller?period=
func (h *AnalyticsHandler) TopSeller(w http.ResponseWriter, r *http.Request) {
	period := r.URL.Query().Get("period")
	if period == "" {
		middleware.WriteError(w, http.StatusBadRequest, "period is required")
		return
	}

	top, err := h.svc.TopSeller(r.Context(), period)
	if err != nil {
		writeServiceError(w, r, err, "Failed to compute top seller")
		return
	}
	if top == nil {
		middleware.WriteError(w, http.StatusNotFound, "No sales found for period")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, top)
}

// LowPerformance handles GET /api/analytics/low-performance with either
// start_date and end_date or period, plus min_amount.
func (h *AnalyticsHandler) LowPerformance(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	minStr := query.Get("min_amount")
	if minStr == "" {
		middleware.WriteError(w, http.StatusBadRequest, "min_amount is required")
		return
	}
	minAmount, err := decimal.NewFromString(minStr)
	if err != nil || minAmount.IsNegative() {
		middleware.WriteError(w, http.StatusBadRequest, "min_amount must be a non-negative number")
		return
	}

	var sellers []domain.SellerAggregate
	period, startStr, endStr := query.Get("period"), query.Get("start_date"), query.Get("end_date")

	switch {
	case startStr != "" || endStr != "":
		if startStr == "" || endStr == "" {
			middleware.WriteError(w, http.StatusBadRequest, "start_date and end_date must be given together")
			return
		}
		start, err := parseDate(startStr, false)
		if err != nil {
			middleware.WriteError(w, http.StatusBadRequest, err.Error())
			return
		}
		end, err := parseDate(endStr, true)
		if err != nil {
			middleware.WriteError(w, http.StatusBadRequest, err.Error())
			return
		}
		sellers, err = h.svc.SellersBelow(r.Context(), start, end, minAmount)
		if err != nil {
			writeServiceError(w, r, err, "Failed to compute low performers")
			return
		}
	case period != "":
		sellers, err = h.svc.SellersBelowForPeriod(r.Context(), period, minAmount)
		if err != nil {
			writeServiceError(w, r, err, "Failed to compute low performers")
			return
		}
	default:
		middleware.WriteError(w, http.StatusBadRequest, "either period or start_date and end_date is required")
		return
	}

	// Return array directly, empty rather than null
	if sellers == nil {
		sellers = []domain.SellerAggregate{}
	}
	middleware.WriteJSON(w, http.StatusOK, sellers)
}

// BestPeriod handles GET /api/analytics/best-period/{sellerId}
func (h *AnalyticsHandler) BestPeriod(w http.ResponseWriter, r *http.Request) {
	sellerID, err := parseSellerID(r.PathValue("sellerId"))
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.svc.BestPeriod(r.Context(), sellerID)
	if err != nil {
		writeServiceError(w, r, err, "Failed to compute best period")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, result)
}

// SellerTotal handles GET /api/analytics/sellers/{sellerId}/total?start_date&end_date
func (h *AnalyticsHandler) SellerTotal(w http.ResponseWriter, r *http.Request) {
	sellerID, err := parseSellerID(r.PathValue("sellerId"))
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	query := r.URL.Query()
	if query.Get("start_date") == "" || query.Get("end_date") == "" {
		middleware.WriteError(w, http.StatusBadRequest, "start_date and end_date are required")
		return
	}
	start, err := parseDate(query.Get("start_date"), false)
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	end, err := parseDate(query.Get("end_date"), true)
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	total, err := h.svc.SellerTotal(r.Context(), sellerID, start, end)
	if err != nil {
		writeServiceError(w, r, err, "Failed to compute seller total")
		return
	}
	count, err := h.svc.SellerTransactionCount(r.Context(), sellerID)
	if err != nil {
		writeServiceError(w, r, err, "Failed to count seller transactions")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"seller_id":         sellerID,
		"start_date":        start,
		"end_date":          end,
		"total_amount":      total,
		"transaction_count": count,
	})
}

// Summary handles GET /api/analytics/summary
func (h *AnalyticsHandler) Summary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.svc.Summary(r.Context())
	if err != nil {
		writeServiceError(w, r, err, "Failed to compute summary")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, summary)
}
