package analytics_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dvloznov/seller-analytics/internal/analytics"
	"github.com/dvloznov/seller-analytics/internal/cache"
	"github.com/dvloznov/seller-analytics/internal/domain"
	"github.com/dvloznov/seller-analytics/internal/infra/memory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2024, time.May, 20, 15, 0, 0, 0, time.UTC)

func seededStore(t *testing.T) *memory.Store {
	t.Helper()
	s := memory.NewStore()
	s.AddSeller(domain.Seller{ID: 1, Name: "Alice"})
	s.AddSeller(domain.Seller{ID: 2, Name: "Bob"})
	s.AddSeller(domain.Seller{ID: 3, Name: "Carol"})
	s.AddSeller(domain.Seller{ID: 4, Name: "Dave"})

	add := func(seller int64, amount string, kind domain.PaymentKind, at time.Time) {
		require.NoError(t, s.AddTransaction(domain.Transaction{
			SellerID:    seller,
			Amount:      decimal.RequireFromString(amount),
			PaymentKind: kind,
			Timestamp:   at,
		}))
	}

	today := time.Date(2024, time.May, 20, 0, 0, 0, 0, time.UTC)
	add(1, "100.00", domain.PaymentCash, today.Add(time.Hour))
	add(2, "250.00", domain.PaymentCard, today.Add(2*time.Hour))
	add(1, "500.00", domain.PaymentTransfer, today.AddDate(0, 0, -10))
	add(3, "40.00", domain.PaymentCard, today.AddDate(0, -2, 0))
	add(2, "10.00", domain.PaymentCash, now) // exactly at the evaluation instant
	add(1, "5.00", domain.PaymentCash, now.Add(time.Minute))
	return s
}

func newService(t *testing.T, opts ...analytics.Option) *analytics.Service {
	t.Helper()
	opts = append([]analytics.Option{analytics.WithClock(func() time.Time { return now })}, opts...)
	return analytics.NewService(seededStore(t), opts...)
}

func TestService_TopSeller(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	day, err := svc.TopSeller(ctx, "day")
	require.NoError(t, err)
	require.NotNil(t, day)
	assert.Equal(t, int64(2), day.SellerID)
	assert.Equal(t, "Bob", day.SellerName)
	assert.Equal(t, domain.PeriodDay, day.Period)
	assert.True(t, day.Total.Equal(decimal.RequireFromString("260.00")), "end instant is inclusive, got %s", day.Total)

	month, err := svc.TopSeller(ctx, "MONTH")
	require.NoError(t, err)
	require.NotNil(t, month)
	assert.Equal(t, int64(1), month.SellerID)
	assert.True(t, month.Total.Equal(decimal.RequireFromString("600.00")), "future transaction excluded, got %s", month.Total)
}

func TestService_TopSeller_NoData(t *testing.T) {
	svc := analytics.NewService(memory.NewStore(), analytics.WithClock(func() time.Time { return now }))

	top, err := svc.TopSeller(context.Background(), "YEAR")
	require.NoError(t, err)
	assert.Nil(t, top)
}

func TestService_TopSeller_InvalidPeriod(t *testing.T) {
	svc := newService(t)
	_, err := svc.TopSeller(context.Background(), "WEEK")
	assert.ErrorIs(t, err, domain.ErrInvalidPeriod)
}

func TestService_SellersBelow(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	got, err := svc.SellersBelowForPeriod(ctx, "YEAR", decimal.NewFromInt(300))
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, int64(3), got[0].SellerID)
	assert.Equal(t, int64(2), got[1].SellerID)
	for _, a := range got {
		assert.NotEqual(t, int64(4), a.SellerID, "sellers without activity are never reported")
	}

	_, err = svc.SellersBelow(ctx, now, now.Add(-time.Hour), decimal.NewFromInt(1))
	assert.ErrorIs(t, err, domain.ErrInvalidRange)

	_, err = svc.SellersBelowForPeriod(ctx, "fortnight", decimal.NewFromInt(1))
	assert.ErrorIs(t, err, domain.ErrInvalidPeriod)
}

func TestService_BestPeriod(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	got, err := svc.BestPeriod(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, int64(1), got.TransactionCount)
	assert.True(t, got.WindowStart.Equal(got.WindowEnd))

	_, err = svc.BestPeriod(ctx, 4)
	assert.ErrorIs(t, err, domain.ErrNoTransactions)

	_, err = svc.BestPeriod(ctx, 99)
	assert.ErrorIs(t, err, domain.ErrSellerNotFound)
}

func TestService_BestPeriod_UsesCache(t *testing.T) {
	c := cache.NewMemoryCache()
	svc := newService(t, analytics.WithCache(c, time.Minute))
	ctx := context.Background()

	first, err := svc.BestPeriod(ctx, 1)
	require.NoError(t, err)

	raw, ok := c.Get(ctx, "best-period:1")
	require.True(t, ok)
	assert.Contains(t, raw, "transaction_count")

	second, err := svc.BestPeriod(ctx, 1)
	require.NoError(t, err)
	assert.True(t, first.WindowStart.Equal(second.WindowStart))
	assert.Equal(t, first.TransactionCount, second.TransactionCount)
	assert.True(t, first.TotalAmount.Equal(second.TotalAmount))
}

func TestService_BestPeriod_ZeroTTLDisablesCache(t *testing.T) {
	ctx := context.Background()
	st := seededStore(t)
	c := cache.NewMemoryCache()
	svc := analytics.NewService(st,
		analytics.WithClock(func() time.Time { return now }),
		analytics.WithCache(c, 0),
	)

	at := time.Date(2024, time.May, 1, 9, 0, 0, 0, time.UTC)
	require.NoError(t, st.AddTransaction(domain.Transaction{
		SellerID: 4, Amount: decimal.NewFromInt(20), PaymentKind: domain.PaymentCard, Timestamp: at,
	}))

	before, err := svc.BestPeriod(ctx, 4)
	require.NoError(t, err)
	assert.Equal(t, int64(1), before.TransactionCount)

	_, ok := c.Get(ctx, "best-period:4")
	assert.False(t, ok)

	require.NoError(t, st.AddTransaction(domain.Transaction{
		SellerID: 4, Amount: decimal.NewFromInt(30), PaymentKind: domain.PaymentCash, Timestamp: at.Add(time.Hour),
	}))

	after, err := svc.BestPeriod(ctx, 4)
	require.NoError(t, err)
	assert.Equal(t, int64(2), after.TransactionCount)
	assert.True(t, after.TotalAmount.Equal(decimal.NewFromInt(50)))
}

func TestService_BestPeriod_InputLimit(t *testing.T) {
	svc := newService(t, analytics.WithFinder(analytics.NewBestPeriodFinder(2)))
	_, err := svc.BestPeriod(context.Background(), 1)
	assert.ErrorIs(t, err, domain.ErrTooManyTransactions)
}

func TestService_SellerTotal(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	total, err := svc.SellerTotal(ctx, 1, now.AddDate(0, 0, -30), now)
	require.NoError(t, err)
	assert.True(t, total.Equal(decimal.RequireFromString("600.00")))

	total, err = svc.SellerTotal(ctx, 4, now.AddDate(0, 0, -30), now)
	require.NoError(t, err)
	assert.True(t, total.IsZero())

	_, err = svc.SellerTotal(ctx, 1, now, now.AddDate(0, 0, -1))
	assert.ErrorIs(t, err, domain.ErrInvalidRange)

	_, err = svc.SellerTotal(ctx, 42, now.AddDate(0, 0, -1), now)
	assert.ErrorIs(t, err, domain.ErrSellerNotFound)
}

func TestService_Summary(t *testing.T) {
	svc := newService(t)

	got, err := svc.Summary(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(6), got.TransactionCount)
	assert.Equal(t, int64(4), got.SellerCount)
	assert.True(t, got.TotalSales.Equal(decimal.RequireFromString("905.00")))
	assert.True(t, got.AverageAmount.Equal(decimal.RequireFromString("150.83")), "got %s", got.AverageAmount)
	assert.True(t, got.SalesByPayment[domain.PaymentCash].Equal(decimal.RequireFromString("115.00")))
	assert.True(t, got.SalesByPayment[domain.PaymentCard].Equal(decimal.RequireFromString("290.00")))
	assert.True(t, got.SalesByPayment[domain.PaymentTransfer].Equal(decimal.RequireFromString("500.00")))
	assert.Equal(t, now, got.GeneratedAt)

	empty := analytics.NewService(memory.NewStore())
	got, err = empty.Summary(context.Background())
	require.NoError(t, err)
	assert.True(t, got.AverageAmount.IsZero())
}

func TestService_SellerTransactionCount(t *testing.T) {
	svc := newService(t)

	n, err := svc.SellerTransactionCount(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	_, err = svc.SellerTransactionCount(context.Background(), 77)
	assert.ErrorIs(t, err, domain.ErrSellerNotFound)
}

// failingStore wraps a working store and fails selected calls.
type failingStore struct {
	*memory.Store
	mock.Mock
}

func (f *failingStore) FetchGroupedByRange(ctx context.Context, start, end time.Time) ([]domain.SellerAggregate, error) {
	args := f.Called(ctx, start, end)
	return nil, args.Error(1)
}

func (f *failingStore) FetchOrderedBySeller(ctx context.Context, sellerID int64) ([]domain.Transaction, error) {
	args := f.Called(ctx, sellerID)
	return nil, args.Error(1)
}

func TestService_StoreErrorsPropagate(t *testing.T) {
	storeErr := errors.New("store unavailable")
	fs := &failingStore{Store: seededStore(t)}
	fs.On("FetchGroupedByRange", mock.Anything, mock.Anything, mock.Anything).Return(nil, storeErr)
	fs.On("FetchOrderedBySeller", mock.Anything, int64(1)).Return(nil, storeErr)

	svc := analytics.NewService(fs, analytics.WithClock(func() time.Time { return now }))

	_, err := svc.TopSeller(context.Background(), "DAY")
	assert.ErrorIs(t, err, storeErr)

	_, err = svc.BestPeriod(context.Background(), 1)
	assert.ErrorIs(t, err, storeErr)

	fs.AssertExpectations(t)
}
