package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/dvloznov/seller-analytics/internal/api/middleware"
	"github.com/dvloznov/seller-analytics/internal/domain"
	"github.com/dvloznov/seller-analytics/internal/jobs"
	"github.com/dvloznov/seller-analytics/internal/logger"
)

const dateLayout = "2006-01-02"

// statusFor maps service errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidPeriod),
		errors.Is(err, domain.ErrInvalidRange),
		errors.Is(err, domain.ErrInvalidPaymentKind),
		errors.Is(err, domain.ErrNoTransactions),
		errors.Is(err, domain.ErrInsufficientData),
		errors.Is(err, jobs.ErrInvalidJob):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrSellerNotFound),
		errors.Is(err, jobs.ErrJobNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrTooManyTransactions):
		return http.StatusUnprocessableEntity
	case errors.Is(err, jobs.ErrQueueClosed):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// writeServiceError logs server-side failures and writes the mapped
// status. Client errors echo the error message; server errors do not.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error, msg string) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		log := logger.FromContext(r.Context())
		log.Error().Err(err).Msg(msg)
		middleware.WriteError(w, status, msg)
		return
	}
	middleware.WriteError(w, status, clientMessage(err))
}

// callPrefix matches the "Func: " prefixes added while wrapping.
var callPrefix = regexp.MustCompile(`^(?:[A-Z][A-Za-z0-9.]*: )+`)

// clientMessage is the error text without the internal call chain.
func clientMessage(err error) string {
	return callPrefix.ReplaceAllString(err.Error(), "")
}

// parseDate accepts RFC3339 or YYYY-MM-DD. A date-only end bound covers
// the whole day.
func parseDate(s string, endOfDay bool) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: use YYYY-MM-DD or RFC3339", s)
	}
	if endOfDay {
		t = t.AddDate(0, 0, 1).Add(-time.Nanosecond)
	}
	return t, nil
}

func parseSellerID(s string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid seller ID %q", s)
	}
	return id, nil
}
