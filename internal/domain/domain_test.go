package domain

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePaymentKind(t *testing.T) {
	tests := []struct {
		input   string
		want    PaymentKind
		wantErr bool
	}{
		{"CASH", PaymentCash, false},
		{"card", PaymentCard, false},
		{"  Transfer ", PaymentTransfer, false},
		{"CRYPTO", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParsePaymentKind(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidPaymentKind)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRangeContains(t *testing.T) {
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	end := start.Add(24 * time.Hour)

	closed := Range{Start: start, End: end, Bounds: Closed}
	halfOpen := Range{Start: start, End: end, Bounds: HalfOpen}

	assert.True(t, closed.Contains(start))
	assert.True(t, closed.Contains(end))
	assert.False(t, closed.Contains(end.Add(time.Nanosecond)))
	assert.False(t, closed.Contains(start.Add(-time.Nanosecond)))

	assert.True(t, halfOpen.Contains(start))
	assert.False(t, halfOpen.Contains(end))
	assert.True(t, halfOpen.Contains(end.Add(-time.Nanosecond)))
}

func TestNoTransactionsErrorMatchesSentinel(t *testing.T) {
	err := fmt.Errorf("BestPeriod: %w", &NoTransactionsError{SellerID: 42})

	assert.True(t, errors.Is(err, ErrNoTransactions))

	var nte *NoTransactionsError
	require.True(t, errors.As(err, &nte))
	assert.Equal(t, int64(42), nte.SellerID)
	assert.Contains(t, err.Error(), "42")
}

func TestSellerNotFoundErrorMatchesSentinel(t *testing.T) {
	err := fmt.Errorf("SellerTotal: %w", &SellerNotFoundError{SellerID: 7})
	assert.ErrorIs(t, err, ErrSellerNotFound)
}
