package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Period is a symbolic request for a trailing-to-date range.
type Period string

const (
	PeriodDay     Period = "DAY"
	PeriodMonth   Period = "MONTH"
	PeriodQuarter Period = "QUARTER"
	PeriodYear    Period = "YEAR"
)

// Bounds selects how the end of a Range is treated. The start is always inclusive.
type Bounds int

const (
	// Closed includes the end instant: start <= t <= end.
	Closed Bounds = iota
	// HalfOpen excludes the end instant: start <= t < end.
	HalfOpen
)

// Range is a concrete time interval with an explicit bounds policy.
type Range struct {
	Start  time.Time
	End    time.Time
	Bounds Bounds
}

// Contains reports whether t falls inside r under r's bounds policy.
func (r Range) Contains(t time.Time) bool {
	if t.Before(r.Start) {
		return false
	}
	if r.Bounds == HalfOpen {
		return t.Before(r.End)
	}
	return !t.After(r.End)
}

// ResolvedPeriod is a Period token pinned to concrete instants.
// End is always the evaluation instant.
type ResolvedPeriod struct {
	Period Period    `json:"period"`
	Start  time.Time `json:"start"`
	End    time.Time `json:"end"`
}

// Range returns the period as a closed range, the policy used by ranking
// and threshold queries.
func (p ResolvedPeriod) Range() Range {
	return Range{Start: p.Start, End: p.End, Bounds: Closed}
}

// SellerAggregate is a per-seller sum over a range. It is computed, never stored.
type SellerAggregate struct {
	SellerID   int64           `json:"seller_id"`
	SellerName string          `json:"seller_name"`
	Total      decimal.Decimal `json:"total_amount"`
}

// TopSeller is the ranking result for one resolved period.
type TopSeller struct {
	SellerAggregate
	Period Period `json:"period"`
}

// BestPeriodResult describes one seller's highest-density window.
type BestPeriodResult struct {
	WindowStart      time.Time       `json:"start_date"`
	WindowEnd        time.Time       `json:"end_date"`
	TransactionCount int64           `json:"transaction_count"`
	TotalAmount      decimal.Decimal `json:"total_amount"`
}

// Summary holds store-wide totals.
type Summary struct {
	TotalSales       decimal.Decimal                 `json:"total_sales"`
	TransactionCount int64                           `json:"transaction_count"`
	SellerCount      int64                           `json:"seller_count"`
	AverageAmount    decimal.Decimal                 `json:"average_amount"`
	SalesByPayment   map[PaymentKind]decimal.Decimal `json:"sales_by_payment_kind"`
	GeneratedAt      time.Time                       `json:"generated_at"`
}
