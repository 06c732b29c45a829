package bigquery

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/bigquery"
	"github.com/dvloznov/seller-analytics/internal/domain"
	"github.com/dvloznov/seller-analytics/internal/store"
	"github.com/shopspring/decimal"
)

// Repository is the BigQuery-backed implementation of store.Store.
// It holds a shared BigQuery client to avoid creating a new connection
// for each operation.
type Repository struct {
	client  *bigquery.Client
	dataset Dataset
}

// NewRepository creates a Repository with a shared client for projectID.
func NewRepository(ctx context.Context, projectID, datasetID string) (*Repository, error) {
	client, err := bigquery.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("NewRepository: creating client: %w", err)
	}
	return &Repository{
		client:  client,
		dataset: Dataset{ProjectID: projectID, DatasetID: datasetID},
	}, nil
}

// Close closes the BigQuery client connection. This should be called when
// the repository is no longer needed to release resources.
func (r *Repository) Close() error {
	if r.client != nil {
		return r.client.Close()
	}
	return nil
}

// FetchOrderedBySeller delegates to FetchOrderedBySellerWithClient with the shared client.
func (r *Repository) FetchOrderedBySeller(ctx context.Context, sellerID int64) ([]domain.Transaction, error) {
	return FetchOrderedBySellerWithClient(ctx, r.client, r.dataset, sellerID)
}

// FetchGroupedByRange delegates to FetchGroupedByRangeWithClient with the shared client.
func (r *Repository) FetchGroupedByRange(ctx context.Context, start, end time.Time) ([]domain.SellerAggregate, error) {
	return FetchGroupedByRangeWithClient(ctx, r.client, r.dataset, start, end)
}

// FetchGroupedBelowThreshold delegates to FetchGroupedBelowThresholdWithClient with the shared client.
func (r *Repository) FetchGroupedBelowThreshold(ctx context.Context, start, end time.Time, minAmount decimal.Decimal) ([]domain.SellerAggregate, error) {
	return FetchGroupedBelowThresholdWithClient(ctx, r.client, r.dataset, start, end, minAmount)
}

// GetSeller delegates to GetSellerWithClient with the shared client.
func (r *Repository) GetSeller(ctx context.Context, sellerID int64) (*domain.Seller, error) {
	return GetSellerWithClient(ctx, r.client, r.dataset, sellerID)
}

// TotalSales delegates to TotalSalesWithClient with the shared client.
func (r *Repository) TotalSales(ctx context.Context) (decimal.Decimal, error) {
	return TotalSalesWithClient(ctx, r.client, r.dataset)
}

// TotalSalesByPaymentKind delegates to TotalSalesByPaymentKindWithClient with the shared client.
func (r *Repository) TotalSalesByPaymentKind(ctx context.Context, kind domain.PaymentKind) (decimal.Decimal, error) {
	return TotalSalesByPaymentKindWithClient(ctx, r.client, r.dataset, kind)
}

// CountTransactions delegates to CountTransactionsWithClient with the shared client.
func (r *Repository) CountTransactions(ctx context.Context) (int64, error) {
	return CountTransactionsWithClient(ctx, r.client, r.dataset)
}

// CountTransactionsBySeller delegates to CountTransactionsBySellerWithClient with the shared client.
func (r *Repository) CountTransactionsBySeller(ctx context.Context, sellerID int64) (int64, error) {
	return CountTransactionsBySellerWithClient(ctx, r.client, r.dataset, sellerID)
}

// CountSellers delegates to CountSellersWithClient with the shared client.
func (r *Repository) CountSellers(ctx context.Context) (int64, error) {
	return CountSellersWithClient(ctx, r.client, r.dataset)
}

// Ensure Repository implements the full store interface.
var _ store.Store = (*Repository)(nil)

// InsertSellers delegates to InsertSellersWithClient with the shared client.
func (r *Repository) InsertSellers(ctx context.Context, sellers []domain.Seller) error {
	return InsertSellersWithClient(ctx, r.client, r.dataset, sellers)
}

// InsertTransactions delegates to InsertTransactionsWithClient with the shared client.
func (r *Repository) InsertTransactions(ctx context.Context, txs []domain.Transaction) error {
	return InsertTransactionsWithClient(ctx, r.client, r.dataset, txs)
}
