package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/dvloznov/seller-analytics/internal/domain"
	"github.com/dvloznov/seller-analytics/internal/jobs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("TopSeller: %w", domain.ErrInvalidPeriod), http.StatusBadRequest},
		{fmt.Errorf("SellersBelow: %w", domain.ErrInvalidRange), http.StatusBadRequest},
		{fmt.Errorf("BestPeriod: %w", &domain.NoTransactionsError{SellerID: 1}), http.StatusBadRequest},
		{fmt.Errorf("BestPeriod: %w", &domain.SellerNotFoundError{SellerID: 1}), http.StatusNotFound},
		{fmt.Errorf("GetJob: x: %w", jobs.ErrJobNotFound), http.StatusNotFound},
		{fmt.Errorf("Find: %w", domain.ErrTooManyTransactions), http.StatusUnprocessableEntity},
		{jobs.ErrQueueClosed, http.StatusServiceUnavailable},
		{fmt.Errorf("query read: %w", context.DeadlineExceeded), http.StatusGatewayTimeout},
		{errors.New("bigquery: backend error"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, statusFor(tt.err), tt.err.Error())
	}
}

func TestClientMessage(t *testing.T) {
	err := fmt.Errorf("TopSeller: %w", fmt.Errorf("ParsePeriod: %q: %w", "WEEK", domain.ErrInvalidPeriod))
	assert.Equal(t, `"WEEK": `+domain.ErrInvalidPeriod.Error(), clientMessage(err))

	err = fmt.Errorf("%w: top_seller requires a period", jobs.ErrInvalidJob)
	assert.Equal(t, err.Error(), clientMessage(err))
}

func TestParseDate(t *testing.T) {
	start, err := parseDate("2024-03-01", false)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), start)

	end, err := parseDate("2024-03-01", true)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 1, 23, 59, 59, 999999999, time.UTC), end)

	exact, err := parseDate("2024-03-01T10:30:00+02:00", true)
	require.NoError(t, err)
	assert.True(t, exact.Equal(time.Date(2024, 3, 1, 8, 30, 0, 0, time.UTC)))

	_, err = parseDate("03/01/2024", false)
	assert.Error(t, err)
}

func TestParseSellerID(t *testing.T) {
	id, err := parseSellerID("42")
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)

	for _, bad := range []string{"", "0", "-3", "x"} {
		_, err := parseSellerID(bad)
		assert.Error(t, err, bad)
	}
}
