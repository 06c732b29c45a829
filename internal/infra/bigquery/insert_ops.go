package bigquery

import (
	"context"
	"fmt"

	"cloud.google.com/go/bigquery"
	"github.com/dvloznov/seller-analytics/internal/domain"
)

// insertBatchSize bounds the rows sent in one streaming insert request.
const insertBatchSize = 500

// NewTransactionRow converts a domain transaction into a table row.
func NewTransactionRow(tx domain.Transaction) *TransactionRow {
	return &TransactionRow{
		TransactionID:   tx.ID,
		SellerID:        tx.SellerID,
		Amount:          tx.Amount.Round(amountScale).Rat(),
		PaymentType:     string(tx.PaymentKind),
		TransactionDate: tx.Timestamp.UTC(),
	}
}

// NewSellerRow converts a domain seller into a table row.
func NewSellerRow(s domain.Seller) *SellerRow {
	return &SellerRow{
		SellerID:         s.ID,
		Name:             s.Name,
		ContactInfo:      bigquery.NullString{StringVal: s.ContactInfo, Valid: s.ContactInfo != ""},
		RegistrationDate: s.RegistrationDate.UTC(),
	}
}

// InsertSellersWithClient streams sellers into the sellers table.
func InsertSellersWithClient(ctx context.Context, client *bigquery.Client, ds Dataset, sellers []domain.Seller) error {
	rows := make([]*SellerRow, 0, len(sellers))
	for _, s := range sellers {
		rows = append(rows, NewSellerRow(s))
	}
	if err := putBatches(ctx, client, ds, sellersTable, rows); err != nil {
		return fmt.Errorf("InsertSellers: %w", err)
	}
	return nil
}

// InsertTransactionsWithClient streams transactions into the transactions table.
func InsertTransactionsWithClient(ctx context.Context, client *bigquery.Client, ds Dataset, txs []domain.Transaction) error {
	rows := make([]*TransactionRow, 0, len(txs))
	for _, tx := range txs {
		rows = append(rows, NewTransactionRow(tx))
	}
	if err := putBatches(ctx, client, ds, transactionsTable, rows); err != nil {
		return fmt.Errorf("InsertTransactions: %w", err)
	}
	return nil
}

func putBatches[T any](ctx context.Context, client *bigquery.Client, ds Dataset, table string, rows []T) error {
	// Use fully qualified table name to avoid project ID issues
	inserter := client.DatasetInProject(ds.ProjectID, ds.DatasetID).Table(table).Inserter()
	for _, batch := range batches(rows, insertBatchSize) {
		if err := inserter.Put(ctx, batch); err != nil {
			return fmt.Errorf("inserting rows into %s: %w", table, err)
		}
	}
	return nil
}

func batches[T any](rows []T, size int) [][]T {
	var out [][]T
	for len(rows) > size {
		out = append(out, rows[:size])
		rows = rows[size:]
	}
	if len(rows) > 0 {
		out = append(out, rows)
	}
	return out
}
