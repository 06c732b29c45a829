package bigquery

import (
	"fmt"
	"math/big"
	"time"

	"cloud.google.com/go/bigquery"
	"github.com/dvloznov/seller-analytics/internal/domain"
	"github.com/shopspring/decimal"
)

// amountScale is the currency precision of NUMERIC amount columns.
const amountScale = 2

type TransactionRow struct {
	TransactionID   int64     `bigquery:"transaction_id"`   // REQUIRED
	SellerID        int64     `bigquery:"seller_id"`        // REQUIRED
	Amount          *big.Rat  `bigquery:"amount"`           // REQUIRED NUMERIC(10,2)
	PaymentType     string    `bigquery:"payment_type"`     // REQUIRED: CASH | CARD | TRANSFER
	TransactionDate time.Time `bigquery:"transaction_date"` // REQUIRED TIMESTAMP
}

// ToDomain converts a row into a domain transaction, validating the payment type.
func (r *TransactionRow) ToDomain() (domain.Transaction, error) {
	kind, err := domain.ParsePaymentKind(r.PaymentType)
	if err != nil {
		return domain.Transaction{}, fmt.Errorf("transaction %d: %w", r.TransactionID, err)
	}
	return domain.Transaction{
		ID:          r.TransactionID,
		SellerID:    r.SellerID,
		Amount:      ratToDecimal(r.Amount),
		PaymentKind: kind,
		Timestamp:   r.TransactionDate,
	}, nil
}

type SellerRow struct {
	SellerID         int64               `bigquery:"seller_id"`         // REQUIRED
	Name             string              `bigquery:"name"`              // REQUIRED
	ContactInfo      bigquery.NullString `bigquery:"contact_info"`      // NULLABLE
	RegistrationDate time.Time           `bigquery:"registration_date"` // REQUIRED TIMESTAMP
}

// ToDomain converts a row into a domain seller.
func (r *SellerRow) ToDomain() domain.Seller {
	return domain.Seller{
		ID:               r.SellerID,
		Name:             r.Name,
		ContactInfo:      r.ContactInfo.StringVal,
		RegistrationDate: r.RegistrationDate,
	}
}

// SellerTotalRow is one row of a grouped-by-seller sum query.
type SellerTotalRow struct {
	SellerID   int64    `bigquery:"seller_id"`
	SellerName string   `bigquery:"seller_name"`
	Total      *big.Rat `bigquery:"total"`
}

// ToDomain converts a row into a seller aggregate.
func (r *SellerTotalRow) ToDomain() domain.SellerAggregate {
	return domain.SellerAggregate{
		SellerID:   r.SellerID,
		SellerName: r.SellerName,
		Total:      ratToDecimal(r.Total),
	}
}

func ratToDecimal(r *big.Rat) decimal.Decimal {
	if r == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigRat(r, amountScale)
}
