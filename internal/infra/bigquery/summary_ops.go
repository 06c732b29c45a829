package bigquery

import (
	"context"
	"fmt"
	"math/big"

	"cloud.google.com/go/bigquery"
	"github.com/dvloznov/seller-analytics/internal/domain"
	"github.com/shopspring/decimal"
)

type totalRow struct {
	Total *big.Rat `bigquery:"total"`
}

type countRow struct {
	N int64 `bigquery:"n"`
}

// TotalSalesWithClient sums every transaction amount, zero when empty.
func TotalSalesWithClient(ctx context.Context, client *bigquery.Client, ds Dataset) (decimal.Decimal, error) {
	q := client.Query(fmt.Sprintf(`SELECT COALESCE(SUM(amount), 0) AS total FROM %s`, ds.Table(transactionsTable)))
	total, err := readTotal(ctx, q)
	if err != nil {
		return decimal.Zero, fmt.Errorf("TotalSales: %w", err)
	}
	return total, nil
}

// TotalSalesByPaymentKindWithClient sums amounts paid with one payment kind.
func TotalSalesByPaymentKindWithClient(ctx context.Context, client *bigquery.Client, ds Dataset, kind domain.PaymentKind) (decimal.Decimal, error) {
	q := client.Query(fmt.Sprintf(`
		SELECT COALESCE(SUM(amount), 0) AS total
		FROM %s
		WHERE payment_type = @payment_type
	`, ds.Table(transactionsTable)))
	q.Parameters = []bigquery.QueryParameter{
		{Name: "payment_type", Value: string(kind)},
	}

	total, err := readTotal(ctx, q)
	if err != nil {
		return decimal.Zero, fmt.Errorf("TotalSalesByPaymentKind: %s: %w", kind, err)
	}
	return total, nil
}

// CountTransactionsWithClient counts all transactions.
func CountTransactionsWithClient(ctx context.Context, client *bigquery.Client, ds Dataset) (int64, error) {
	q := client.Query(fmt.Sprintf(`SELECT COUNT(*) AS n FROM %s`, ds.Table(transactionsTable)))
	n, err := readCount(ctx, q)
	if err != nil {
		return 0, fmt.Errorf("CountTransactions: %w", err)
	}
	return n, nil
}

// CountTransactionsBySellerWithClient counts one seller's transactions.
func CountTransactionsBySellerWithClient(ctx context.Context, client *bigquery.Client, ds Dataset, sellerID int64) (int64, error) {
	q := client.Query(fmt.Sprintf(`SELECT COUNT(*) AS n FROM %s WHERE seller_id = @seller_id`, ds.Table(transactionsTable)))
	q.Parameters = []bigquery.QueryParameter{
		{Name: "seller_id", Value: sellerID},
	}

	n, err := readCount(ctx, q)
	if err != nil {
		return 0, fmt.Errorf("CountTransactionsBySeller: %w", err)
	}
	return n, nil
}

// CountSellersWithClient counts registered sellers.
func CountSellersWithClient(ctx context.Context, client *bigquery.Client, ds Dataset) (int64, error) {
	q := client.Query(fmt.Sprintf(`SELECT COUNT(*) AS n FROM %s`, ds.Table(sellersTable)))
	n, err := readCount(ctx, q)
	if err != nil {
		return 0, fmt.Errorf("CountSellers: %w", err)
	}
	return n, nil
}

func readTotal(ctx context.Context, q *bigquery.Query) (decimal.Decimal, error) {
	rows, err := readAll[totalRow](ctx, q)
	if err != nil {
		return decimal.Zero, err
	}
	if len(rows) == 0 {
		return decimal.Zero, nil
	}
	return ratToDecimal(rows[0].Total), nil
}

func readCount(ctx context.Context, q *bigquery.Query) (int64, error) {
	rows, err := readAll[countRow](ctx, q)
	if err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		return 0, nil
	}
	return rows[0].N, nil
}
