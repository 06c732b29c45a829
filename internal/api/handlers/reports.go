package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/dvloznov/seller-analytics/internal/api/middleware"
	"github.com/dvloznov/seller-analytics/internal/jobs"
	"github.com/dvloznov/seller-analytics/internal/logger"
	"github.com/shopspring/decimal"
)

// ReportsHandler handles report export job endpoints.
type ReportsHandler struct {
	publisher jobs.Publisher
	store     jobs.JobStore
}

// NewReportsHandler creates a new reports handler.
func NewReportsHandler(publisher jobs.Publisher, store jobs.JobStore) *ReportsHandler {
	return &ReportsHandler{publisher: publisher, store: store}
}

// CreateReport handles POST /api/reports
func (h *ReportsHandler) CreateReport(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Kind      jobs.ReportKind     `json:"kind"`
		Period    string              `json:"period"`
		MinAmount decimal.NullDecimal `json:"min_amount"`
		SellerID  int64               `json:"seller_id"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	job := &jobs.ReportJob{
		Kind:      req.Kind,
		Period:    req.Period,
		MinAmount: req.MinAmount.Decimal,
		SellerID:  req.SellerID,
	}
	if job.Kind == jobs.ReportLowPerformers && !req.MinAmount.Valid {
		middleware.WriteError(w, http.StatusBadRequest, "min_amount is required")
		return
	}

	if err := h.publisher.PublishReport(r.Context(), job); err != nil {
		writeServiceError(w, r, err, "Failed to enqueue report job")
		return
	}

	log := logger.FromContext(r.Context())
	log.Info().
		Str("job_id", job.JobID).
		Str("kind", string(job.Kind)).
		Msg("Report job enqueued")

	middleware.WriteJSON(w, http.StatusAccepted, map[string]string{
		"job_id": job.JobID,
		"kind":   string(job.Kind),
		"status": string(jobs.JobStatusPending),
	})
}

// GetReport handles GET /api/reports/{id}
func (h *ReportsHandler) GetReport(w http.ResponseWriter, r *http.Request) {
	job, err := h.store.GetJob(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, err, "Failed to get report job")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, job)
}

// ListReports handles GET /api/reports
func (h *ReportsHandler) ListReports(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filter := jobs.JobFilter{
		Kind:   jobs.ReportKind(query.Get("kind")),
		Status: jobs.JobStatus(query.Get("status")),
	}

	if limitStr := query.Get("limit"); limitStr != "" {
		if limit, err := strconv.Atoi(limitStr); err == nil {
			filter.Limit = limit
		}
	}

	if offsetStr := query.Get("offset"); offsetStr != "" {
		if offset, err := strconv.Atoi(offsetStr); err == nil {
			filter.Offset = offset
		}
	}

	list, err := h.store.ListJobs(r.Context(), filter)
	if err != nil {
		writeServiceError(w, r, err, "Failed to list report jobs")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"jobs":  list,
		"count": len(list),
	})
}
