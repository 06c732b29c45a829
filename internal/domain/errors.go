package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidPeriod is returned for a period token outside DAY, MONTH, QUARTER, YEAR.
	ErrInvalidPeriod = errors.New("invalid period: allowed values are DAY, MONTH, QUARTER, YEAR")

	// ErrNoTransactions is returned when a seller has no transactions to analyse.
	ErrNoTransactions = errors.New("seller has no transactions")

	// ErrInsufficientData is reserved for analyses needing more points than supplied.
	// A single transaction is never insufficient for best-period analysis.
	ErrInsufficientData = errors.New("insufficient data for analytics")

	// ErrTooManyTransactions is returned when best-period input exceeds the configured limit.
	ErrTooManyTransactions = errors.New("too many transactions for best-period analysis")

	ErrInvalidRange       = errors.New("invalid date range: start is after end")
	ErrSellerNotFound     = errors.New("seller not found")
	ErrInvalidPaymentKind = errors.New("invalid payment kind: allowed values are CASH, CARD, TRANSFER")
)

// NoTransactionsError carries the seller whose history was empty.
type NoTransactionsError struct {
	SellerID int64
}

func (e *NoTransactionsError) Error() string {
	return fmt.Sprintf("seller %d has no transactions", e.SellerID)
}

// Is lets errors.Is(err, ErrNoTransactions) match.
func (e *NoTransactionsError) Is(target error) bool {
	return target == ErrNoTransactions
}

// SellerNotFoundError carries the missing seller ID.
type SellerNotFoundError struct {
	SellerID int64
}

func (e *SellerNotFoundError) Error() string {
	return fmt.Sprintf("seller %d not found", e.SellerID)
}

func (e *SellerNotFoundError) Is(target error) bool {
	return target == ErrSellerNotFound
}
