package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// PaymentKind is the closed set of payment methods a transaction can carry.
type PaymentKind string

const (
	PaymentCash     PaymentKind = "CASH"
	PaymentCard     PaymentKind = "CARD"
	PaymentTransfer PaymentKind = "TRANSFER"
)

// PaymentKinds lists every accepted payment kind in display order.
var PaymentKinds = []PaymentKind{PaymentCash, PaymentCard, PaymentTransfer}

// ParsePaymentKind validates a free-form token at the boundary.
// Matching is case-insensitive and ignores surrounding whitespace.
func ParsePaymentKind(s string) (PaymentKind, error) {
	kind := PaymentKind(strings.ToUpper(strings.TrimSpace(s)))
	for _, k := range PaymentKinds {
		if k == kind {
			return k, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidPaymentKind, s)
}

// Transaction is one immutable sale observed by the analytics engine.
// Amount is positive with two-decimal precision; the boundary enforces
// that before records reach the engine.
type Transaction struct {
	ID          int64           `json:"id"`
	SellerID    int64           `json:"seller_id"`
	Amount      decimal.Decimal `json:"amount"`
	PaymentKind PaymentKind     `json:"payment_kind"`
	Timestamp   time.Time       `json:"timestamp"`
}

// Seller is the directory entry that gives aggregates a display name.
type Seller struct {
	ID               int64     `json:"id"`
	Name             string    `json:"name"`
	ContactInfo      string    `json:"contact_info,omitempty"`
	RegistrationDate time.Time `json:"registration_date"`
}
