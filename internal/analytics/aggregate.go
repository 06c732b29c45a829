package analytics

import (
	"cmp"
	"slices"

	"github.com/dvloznov/seller-analytics/internal/domain"
	"github.com/shopspring/decimal"
)

// Aggregate sums transaction amounts per seller for records inside r.
// Only sellers with at least one qualifying record appear; the result is
// ordered by seller ID. names supplies display names and may be nil.
func Aggregate(records []domain.Transaction, names map[int64]string, r domain.Range) []domain.SellerAggregate {
	totals := make(map[int64]decimal.Decimal)
	for _, rec := range records {
		if !r.Contains(rec.Timestamp) {
			continue
		}
		totals[rec.SellerID] = totals[rec.SellerID].Add(rec.Amount)
	}

	result := make([]domain.SellerAggregate, 0, len(totals))
	for id, total := range totals {
		result = append(result, domain.SellerAggregate{
			SellerID:   id,
			SellerName: names[id],
			Total:      total,
		})
	}
	slices.SortFunc(result, func(a, b domain.SellerAggregate) int {
		return cmp.Compare(a.SellerID, b.SellerID)
	})
	return result
}

// TopSeller returns the aggregate with the largest total. Equal totals
// resolve to the lowest seller ID. ok is false for empty input.
func TopSeller(aggregates []domain.SellerAggregate) (top domain.SellerAggregate, ok bool) {
	for i, a := range aggregates {
		if i == 0 {
			top = a
			continue
		}
		switch c := a.Total.Cmp(top.Total); {
		case c > 0:
			top = a
		case c == 0 && a.SellerID < top.SellerID:
			top = a
		}
	}
	return top, len(aggregates) > 0
}

// SellersBelow returns sellers whose total is strictly less than minAmount,
// ordered by total then seller ID. Sellers absent from aggregates, i.e. with
// no activity in the range, are never reported.
func SellersBelow(aggregates []domain.SellerAggregate, minAmount decimal.Decimal) []domain.SellerAggregate {
	result := make([]domain.SellerAggregate, 0)
	for _, a := range aggregates {
		if a.Total.LessThan(minAmount) {
			result = append(result, a)
		}
	}
	slices.SortFunc(result, func(a, b domain.SellerAggregate) int {
		if c := a.Total.Cmp(b.Total); c != 0 {
			return c
		}
		return cmp.Compare(a.SellerID, b.SellerID)
	})
	return result
}
