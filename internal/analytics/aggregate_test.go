package analytics

import (
	"testing"
	"time"

	"github.com/dvloznov/seller-analytics/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tx(sellerID int64, amount string, at time.Time) domain.Transaction {
	return domain.Transaction{
		SellerID:    sellerID,
		Amount:      decimal.RequireFromString(amount),
		PaymentKind: domain.PaymentCard,
		Timestamp:   at,
	}
}

func agg(id int64, total string) domain.SellerAggregate {
	return domain.SellerAggregate{SellerID: id, Total: decimal.RequireFromString(total)}
}

func TestAggregate_BoundsPolicies(t *testing.T) {
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	end := start.Add(48 * time.Hour)

	records := []domain.Transaction{
		tx(1, "10.00", start),
		tx(1, "5.25", start.Add(time.Hour)),
		tx(2, "7.00", end),
		tx(2, "1.00", start.Add(-time.Nanosecond)),
		tx(3, "99.99", end.Add(time.Second)),
	}
	names := map[int64]string{1: "Alice", 2: "Bob", 3: "Carol"}

	t.Run("closed includes end", func(t *testing.T) {
		got := Aggregate(records, names, domain.Range{Start: start, End: end, Bounds: domain.Closed})
		require.Len(t, got, 2)
		assert.Equal(t, int64(1), got[0].SellerID)
		assert.Equal(t, "Alice", got[0].SellerName)
		assert.True(t, got[0].Total.Equal(decimal.RequireFromString("15.25")))
		assert.Equal(t, int64(2), got[1].SellerID)
		assert.True(t, got[1].Total.Equal(decimal.RequireFromString("7.00")))
	})

	t.Run("half-open excludes end", func(t *testing.T) {
		got := Aggregate(records, names, domain.Range{Start: start, End: end, Bounds: domain.HalfOpen})
		require.Len(t, got, 1)
		assert.Equal(t, int64(1), got[0].SellerID)
	})

	t.Run("empty range yields no sellers", func(t *testing.T) {
		later := end.Add(time.Hour)
		got := Aggregate(records, names, domain.Range{Start: later, End: later.Add(time.Hour), Bounds: domain.Closed})
		assert.Empty(t, got)
	})
}

func TestAggregate_PartitionSumsMatch(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	var records []domain.Transaction
	for i := 0; i < 40; i++ {
		records = append(records, tx(int64(i%4+1), "1.10", base.Add(time.Duration(i)*6*time.Hour)))
	}

	split := base.Add(5 * 24 * time.Hour)
	farPast := base.AddDate(-1, 0, 0)
	farFuture := base.AddDate(1, 0, 0)

	inside := Aggregate(records, nil, domain.Range{Start: farPast, End: split, Bounds: domain.HalfOpen})
	outside := Aggregate(records, nil, domain.Range{Start: split, End: farFuture, Bounds: domain.Closed})

	total := decimal.Zero
	for _, a := range append(inside, outside...) {
		total = total.Add(a.Total)
	}
	assert.True(t, total.Equal(decimal.RequireFromString("44.00")), "got %s", total)
}

func TestTopSeller(t *testing.T) {
	tests := []struct {
		name   string
		input  []domain.SellerAggregate
		wantID int64
		wantOK bool
	}{
		{"empty", nil, 0, false},
		{"single", []domain.SellerAggregate{agg(5, "1")}, 5, true},
		{"max wins", []domain.SellerAggregate{agg(1, "10"), agg(2, "30"), agg(3, "20")}, 2, true},
		{"tie resolves to lowest id", []domain.SellerAggregate{agg(9, "50"), agg(4, "50"), agg(7, "50")}, 4, true},
		{"tie with different scale", []domain.SellerAggregate{agg(3, "50.00"), agg(2, "50")}, 2, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := TopSeller(tt.input)
			assert.Equal(t, tt.wantOK, ok)
			if ok {
				assert.Equal(t, tt.wantID, got.SellerID)
				for _, a := range tt.input {
					assert.False(t, a.Total.GreaterThan(got.Total))
				}
			}
		})
	}
}

func TestSellersBelow(t *testing.T) {
	input := []domain.SellerAggregate{
		agg(1, "100.00"),
		agg(2, "99.99"),
		agg(3, "10.00"),
		agg(4, "99.99"),
		agg(5, "150.00"),
	}

	got := SellersBelow(input, decimal.RequireFromString("100"))
	require.Len(t, got, 3)
	assert.Equal(t, []int64{3, 2, 4}, []int64{got[0].SellerID, got[1].SellerID, got[2].SellerID})
	for _, a := range got {
		assert.True(t, a.Total.LessThan(decimal.NewFromInt(100)))
	}

	assert.Empty(t, SellersBelow(nil, decimal.NewFromInt(100)))
	assert.Empty(t, SellersBelow(input, decimal.Zero))
}
