package bigquery

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/bigquery"
	"github.com/dvloznov/seller-analytics/internal/domain"
	"github.com/shopspring/decimal"
	"google.golang.org/api/iterator"
)

const (
	transactionsTable = "transactions"
	sellersTable      = "sellers"
)

// Dataset locates the analytics tables.
type Dataset struct {
	ProjectID string
	DatasetID string
}

// Table returns the fully qualified, quoted table reference.
func (d Dataset) Table(name string) string {
	return fmt.Sprintf("`%s.%s.%s`", d.ProjectID, d.DatasetID, name)
}

// FetchOrderedBySellerWithClient returns all transactions of a seller,
// oldest first, using the provided BigQuery client.
func FetchOrderedBySellerWithClient(ctx context.Context, client *bigquery.Client, ds Dataset, sellerID int64) ([]domain.Transaction, error) {
	q := client.Query(fmt.Sprintf(`
		SELECT
			t.transaction_id,
			t.seller_id,
			t.amount,
			t.payment_type,
			t.transaction_date
		FROM %s t
		WHERE t.seller_id = @seller_id
		ORDER BY t.transaction_date, t.transaction_id
	`, ds.Table(transactionsTable)))
	q.Parameters = []bigquery.QueryParameter{
		{Name: "seller_id", Value: sellerID},
	}

	rows, err := readAll[TransactionRow](ctx, q)
	if err != nil {
		return nil, fmt.Errorf("FetchOrderedBySeller: %w", err)
	}

	txs := make([]domain.Transaction, 0, len(rows))
	for i := range rows {
		tx, err := rows[i].ToDomain()
		if err != nil {
			return nil, fmt.Errorf("FetchOrderedBySeller: %w", err)
		}
		txs = append(txs, tx)
	}
	return txs, nil
}

// FetchGroupedByRangeWithClient returns per-seller totals for
// start <= transaction_date <= end, largest total first.
func FetchGroupedByRangeWithClient(ctx context.Context, client *bigquery.Client, ds Dataset, start, end time.Time) ([]domain.SellerAggregate, error) {
	q := client.Query(fmt.Sprintf(`
		SELECT
			s.seller_id,
			s.name AS seller_name,
			SUM(t.amount) AS total
		FROM %s t
		JOIN %s s
		  ON t.seller_id = s.seller_id
		WHERE t.transaction_date BETWEEN @start_date AND @end_date
		GROUP BY s.seller_id, s.name
		ORDER BY total DESC, s.seller_id ASC
	`, ds.Table(transactionsTable), ds.Table(sellersTable)))
	q.Parameters = []bigquery.QueryParameter{
		{Name: "start_date", Value: start},
		{Name: "end_date", Value: end},
	}

	rows, err := readAll[SellerTotalRow](ctx, q)
	if err != nil {
		return nil, fmt.Errorf("FetchGroupedByRange: %w", err)
	}
	return toAggregates(rows), nil
}

// FetchGroupedBelowThresholdWithClient returns per-seller totals for
// start <= transaction_date <= end having a total below minAmount.
func FetchGroupedBelowThresholdWithClient(ctx context.Context, client *bigquery.Client, ds Dataset, start, end time.Time, minAmount decimal.Decimal) ([]domain.SellerAggregate, error) {
	q := client.Query(fmt.Sprintf(`
		SELECT
			s.seller_id,
			s.name AS seller_name,
			SUM(t.amount) AS total
		FROM %s t
		JOIN %s s
		  ON t.seller_id = s.seller_id
		WHERE t.transaction_date BETWEEN @start_date AND @end_date
		GROUP BY s.seller_id, s.name
		HAVING SUM(t.amount) < @min_amount
		ORDER BY total ASC, s.seller_id ASC
	`, ds.Table(transactionsTable), ds.Table(sellersTable)))
	q.Parameters = []bigquery.QueryParameter{
		{Name: "start_date", Value: start},
		{Name: "end_date", Value: end},
		{Name: "min_amount", Value: minAmount.Rat()},
	}

	rows, err := readAll[SellerTotalRow](ctx, q)
	if err != nil {
		return nil, fmt.Errorf("FetchGroupedBelowThreshold: %w", err)
	}
	return toAggregates(rows), nil
}

// GetSellerWithClient loads one seller by ID.
func GetSellerWithClient(ctx context.Context, client *bigquery.Client, ds Dataset, sellerID int64) (*domain.Seller, error) {
	q := client.Query(fmt.Sprintf(`
		SELECT seller_id, name, contact_info, registration_date
		FROM %s
		WHERE seller_id = @seller_id
		LIMIT 1
	`, ds.Table(sellersTable)))
	q.Parameters = []bigquery.QueryParameter{
		{Name: "seller_id", Value: sellerID},
	}

	rows, err := readAll[SellerRow](ctx, q)
	if err != nil {
		return nil, fmt.Errorf("GetSeller: %w", err)
	}
	if len(rows) == 0 {
		return nil, &domain.SellerNotFoundError{SellerID: sellerID}
	}

	seller := rows[0].ToDomain()
	return &seller, nil
}

func toAggregates(rows []SellerTotalRow) []domain.SellerAggregate {
	result := make([]domain.SellerAggregate, 0, len(rows))
	for i := range rows {
		result = append(result, rows[i].ToDomain())
	}
	return result
}

// readAll runs q and decodes every row into T.
func readAll[T any](ctx context.Context, q *bigquery.Query) ([]T, error) {
	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("query read: %w", err)
	}

	var rows []T
	for {
		var r T
		err := it.Next(&r)
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("iter next: %w", err)
		}
		rows = append(rows, r)
	}
	return rows, nil
}
