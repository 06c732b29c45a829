package analytics

import (
	"context"
	"fmt"
	"slices"
	"sort"

	"github.com/dvloznov/seller-analytics/internal/domain"
	"github.com/shopspring/decimal"
)

const (
	// MaxWindowDays is the longest candidate window, in days.
	MaxWindowDays = 30

	// DefaultMaxTransactions bounds the per-seller history accepted by Find.
	DefaultMaxTransactions = 5000
)

// BestPeriodFinder searches one seller's history for the window with the
// highest transaction density (transactions per day).
//
// Candidate windows are [t_i, t_i+d) for every transaction i and every
// d in 1..MaxWindowDays. Candidates are visited with d ascending in the
// outer loop and i ascending in the inner loop. A candidate replaces the
// incumbent only if its density is strictly higher, or equal with a
// strictly higher count, so among remaining ties the first one visited wins.
//
// Inputs are limited to maxTransactions records; the search is
// O(MaxWindowDays * N log N).
type BestPeriodFinder struct {
	maxTransactions int
}

// NewBestPeriodFinder creates a finder. A non-positive limit selects
// DefaultMaxTransactions.
func NewBestPeriodFinder(maxTransactions int) *BestPeriodFinder {
	if maxTransactions <= 0 {
		maxTransactions = DefaultMaxTransactions
	}
	return &BestPeriodFinder{maxTransactions: maxTransactions}
}

// MaxTransactions returns the input size limit.
func (f *BestPeriodFinder) MaxTransactions() int {
	return f.maxTransactions
}

// Find returns the best window for sellerID. txs should already be in
// chronological order; a sorted copy is taken regardless and txs is not
// modified. A single transaction yields the degenerate window [t, t].
func (f *BestPeriodFinder) Find(ctx context.Context, sellerID int64, txs []domain.Transaction) (domain.BestPeriodResult, error) {
	switch n := len(txs); {
	case n == 0:
		return domain.BestPeriodResult{}, &domain.NoTransactionsError{SellerID: sellerID}
	case n > f.maxTransactions:
		return domain.BestPeriodResult{}, fmt.Errorf("Find: seller %d has %d transactions, limit %d: %w",
			sellerID, n, f.maxTransactions, domain.ErrTooManyTransactions)
	case n == 1:
		return domain.BestPeriodResult{
			WindowStart:      txs[0].Timestamp,
			WindowEnd:        txs[0].Timestamp,
			TransactionCount: 1,
			TotalAmount:      txs[0].Amount,
		}, nil
	}

	sorted := slices.Clone(txs)
	slices.SortStableFunc(sorted, func(a, b domain.Transaction) int {
		return a.Timestamp.Compare(b.Timestamp)
	})

	n := len(sorted)

	// prefix[k] is the sum of the first k amounts.
	prefix := make([]decimal.Decimal, n+1)
	prefix[0] = decimal.Zero
	for k, tx := range sorted {
		prefix[k+1] = prefix[k].Add(tx.Amount)
	}

	// first[i] is the lowest index sharing sorted[i]'s timestamp, so that a
	// window starting at t_i also covers earlier records at the same instant.
	first := make([]int, n)
	for i := range sorted {
		if i > 0 && sorted[i].Timestamp.Equal(sorted[i-1].Timestamp) {
			first[i] = first[i-1]
		} else {
			first[i] = i
		}
	}

	var (
		best    domain.BestPeriodResult
		bestDay int64
		found   bool
	)

	for days := 1; days <= MaxWindowDays; days++ {
		if err := ctx.Err(); err != nil {
			return domain.BestPeriodResult{}, fmt.Errorf("Find: seller %d: %w", sellerID, err)
		}

		for i := range sorted {
			start := sorted[i].Timestamp
			end := start.AddDate(0, 0, days)

			lo := first[i]
			hi := sort.Search(n, func(k int) bool {
				return !sorted[k].Timestamp.Before(end)
			})
			count := int64(hi - lo)

			if found && !improves(count, int64(days), best.TransactionCount, bestDay) {
				continue
			}

			best = domain.BestPeriodResult{
				WindowStart:      start,
				WindowEnd:        end,
				TransactionCount: count,
				TotalAmount:      prefix[hi].Sub(prefix[lo]),
			}
			bestDay = int64(days)
			found = true
		}
	}

	return best, nil
}

// improves reports whether count/days beats bestCount/bestDays, or ties it
// with a larger count. Densities are compared by cross-multiplication.
func improves(count, days, bestCount, bestDays int64) bool {
	lhs, rhs := count*bestDays, bestCount*days
	if lhs != rhs {
		return lhs > rhs
	}
	return count > bestCount
}
