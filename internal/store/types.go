package store

import (
	"context"
	"time"

	"github.com/dvloznov/seller-analytics/internal/domain"
	"github.com/shopspring/decimal"
)

// RecordStore provides the read paths the analytics engine consumes.
// Implementations own consistency of the data they return.
type RecordStore interface {
	// FetchOrderedBySeller returns every transaction of a seller, oldest first.
	FetchOrderedBySeller(ctx context.Context, sellerID int64) ([]domain.Transaction, error)

	// FetchGroupedByRange returns per-seller totals for start <= t <= end,
	// ordered by total descending.
	FetchGroupedByRange(ctx context.Context, start, end time.Time) ([]domain.SellerAggregate, error)

	// FetchGroupedBelowThreshold returns per-seller totals for start <= t <= end
	// having total < minAmount.
	FetchGroupedBelowThreshold(ctx context.Context, start, end time.Time, minAmount decimal.Decimal) ([]domain.SellerAggregate, error)
}

// SellerDirectory resolves seller identities.
type SellerDirectory interface {
	// GetSeller returns the seller or an error matching domain.ErrSellerNotFound.
	GetSeller(ctx context.Context, sellerID int64) (*domain.Seller, error)
}

// SummaryStore provides store-wide totals.
type SummaryStore interface {
	TotalSales(ctx context.Context) (decimal.Decimal, error)
	TotalSalesByPaymentKind(ctx context.Context, kind domain.PaymentKind) (decimal.Decimal, error)
	CountTransactions(ctx context.Context) (int64, error)
	CountTransactionsBySeller(ctx context.Context, sellerID int64) (int64, error)
	CountSellers(ctx context.Context) (int64, error)
}

// Store is the full read surface used by the analytics service.
type Store interface {
	RecordStore
	SellerDirectory
	SummaryStore
}
