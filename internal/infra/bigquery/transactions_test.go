package bigquery

import (
	"math/big"
	"testing"
	"time"

	"cloud.google.com/go/bigquery"
	"github.com/dvloznov/seller-analytics/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransactionRow_ToDomain(t *testing.T) {
	at := time.Date(2024, 2, 3, 4, 5, 6, 0, time.UTC)
	row := TransactionRow{
		TransactionID:   11,
		SellerID:        3,
		Amount:          big.NewRat(12345, 100),
		PaymentType:     "card",
		TransactionDate: at,
	}

	got, err := row.ToDomain()
	require.NoError(t, err)
	assert.Equal(t, int64(11), got.ID)
	assert.Equal(t, int64(3), got.SellerID)
	assert.Equal(t, domain.PaymentCard, got.PaymentKind)
	assert.True(t, got.Amount.Equal(decimal.RequireFromString("123.45")))
	assert.Equal(t, at, got.Timestamp)
}

func TestTransactionRow_ToDomainRejectsUnknownPaymentType(t *testing.T) {
	row := TransactionRow{TransactionID: 1, Amount: big.NewRat(1, 1), PaymentType: "BARTER"}
	_, err := row.ToDomain()
	assert.ErrorIs(t, err, domain.ErrInvalidPaymentKind)
}

func TestSellerRows_ToDomain(t *testing.T) {
	seller := SellerRow{
		SellerID:    5,
		Name:        "Eve",
		ContactInfo: bigquery.NullString{StringVal: "eve@example.com", Valid: true},
	}
	assert.Equal(t, "eve@example.com", seller.ToDomain().ContactInfo)

	total := SellerTotalRow{SellerID: 5, SellerName: "Eve", Total: big.NewRat(1, 3)}
	got := total.ToDomain()
	assert.Equal(t, "Eve", got.SellerName)
	assert.Equal(t, "0.33", got.Total.StringFixed(2))
}

func TestRatToDecimal_Nil(t *testing.T) {
	assert.True(t, ratToDecimal(nil).IsZero())
}

func TestDatasetTable(t *testing.T) {
	ds := Dataset{ProjectID: "proj", DatasetID: "sales"}
	assert.Equal(t, "`proj.sales.transactions`", ds.Table(transactionsTable))
}
