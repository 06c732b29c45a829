package analytics

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/dvloznov/seller-analytics/internal/cache"
	"github.com/dvloznov/seller-analytics/internal/domain"
	"github.com/dvloznov/seller-analytics/internal/logger"
	"github.com/dvloznov/seller-analytics/internal/store"
	"github.com/shopspring/decimal"
)

// DefaultCacheTTL is how long a best-period result is reused.
const DefaultCacheTTL = 5 * time.Minute

// Service answers analytics queries by combining a record store with the
// pure functions of this package. The evaluation instant comes from the
// configured clock so that tests can pin it.
type Service struct {
	store    store.Store
	finder   *BestPeriodFinder
	cache    cache.Cache
	cacheTTL time.Duration
	now      func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithCache caches best-period results in c for ttl. A non-positive ttl
// disables caching.
func WithCache(c cache.Cache, ttl time.Duration) Option {
	return func(s *Service) {
		if c == nil || ttl <= 0 {
			s.cache = cache.NopCache{}
			return
		}
		s.cache = c
		s.cacheTTL = ttl
	}
}

// WithClock overrides time.Now as the evaluation instant.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// WithFinder overrides the default best-period finder.
func WithFinder(f *BestPeriodFinder) Option {
	return func(s *Service) {
		s.finder = f
	}
}

// NewService creates a Service over st.
func NewService(st store.Store, opts ...Option) *Service {
	s := &Service{
		store:    st,
		finder:   NewBestPeriodFinder(DefaultMaxTransactions),
		cache:    cache.NopCache{},
		cacheTTL: DefaultCacheTTL,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// TopSeller returns the seller with the highest total in the current
// period. It returns nil without error when nobody sold anything.
func (s *Service) TopSeller(ctx context.Context, token string) (*domain.TopSeller, error) {
	period, err := ResolvePeriod(token, s.now())
	if err != nil {
		return nil, fmt.Errorf("TopSeller: %w", err)
	}

	aggregates, err := s.store.FetchGroupedByRange(ctx, period.Start, period.End)
	if err != nil {
		return nil, fmt.Errorf("TopSeller: fetch grouped: %w", err)
	}

	top, ok := TopSeller(aggregates)
	if !ok {
		return nil, nil
	}

	log := logger.FromContext(ctx)
	log.Debug().
		Str("period", string(period.Period)).
		Int64("seller_id", top.SellerID).
		Str("total", top.Total.StringFixed(2)).
		Msg("Top seller resolved")

	return &domain.TopSeller{SellerAggregate: top, Period: period.Period}, nil
}

// SellersBelow returns sellers whose total within [start, end] is below
// minAmount. Sellers without transactions in the range are not included.
func (s *Service) SellersBelow(ctx context.Context, start, end time.Time, minAmount decimal.Decimal) ([]domain.SellerAggregate, error) {
	if start.After(end) {
		return nil, fmt.Errorf("SellersBelow: %w", domain.ErrInvalidRange)
	}

	aggregates, err := s.store.FetchGroupedBelowThreshold(ctx, start, end, minAmount)
	if err != nil {
		return nil, fmt.Errorf("SellersBelow: fetch grouped: %w", err)
	}

	return SellersBelow(aggregates, minAmount), nil
}

// SellersBelowForPeriod is SellersBelow over a resolved period token.
func (s *Service) SellersBelowForPeriod(ctx context.Context, token string, minAmount decimal.Decimal) ([]domain.SellerAggregate, error) {
	period, err := ResolvePeriod(token, s.now())
	if err != nil {
		return nil, fmt.Errorf("SellersBelowForPeriod: %w", err)
	}
	return s.SellersBelow(ctx, period.Start, period.End, minAmount)
}

// BestPeriod finds the highest-density window of a seller's history.
func (s *Service) BestPeriod(ctx context.Context, sellerID int64) (*domain.BestPeriodResult, error) {
	log := logger.FromContext(ctx)

	if _, err := s.store.GetSeller(ctx, sellerID); err != nil {
		return nil, fmt.Errorf("BestPeriod: %w", err)
	}

	key := bestPeriodKey(sellerID)
	if raw, ok := s.cache.Get(ctx, key); ok {
		var cached domain.BestPeriodResult
		if err := json.Unmarshal([]byte(raw), &cached); err == nil {
			log.Debug().Int64("seller_id", sellerID).Msg("Best period served from cache")
			return &cached, nil
		}
		log.Warn().Int64("seller_id", sellerID).Msg("Discarding undecodable cached best period")
	}

	txs, err := s.store.FetchOrderedBySeller(ctx, sellerID)
	if err != nil {
		return nil, fmt.Errorf("BestPeriod: fetch transactions: %w", err)
	}

	started := time.Now()
	result, err := s.finder.Find(ctx, sellerID, txs)
	if err != nil {
		return nil, fmt.Errorf("BestPeriod: %w", err)
	}

	log.Info().
		Int64("seller_id", sellerID).
		Int("transactions", len(txs)).
		Int64("window_count", result.TransactionCount).
		Dur("elapsed", time.Since(started)).
		Msg("Best period computed")

	if raw, err := json.Marshal(result); err == nil {
		if err := s.cache.Set(ctx, key, string(raw), s.cacheTTL); err != nil {
			log.Warn().Err(err).Int64("seller_id", sellerID).Msg("Failed to cache best period")
		}
	}

	return &result, nil
}

// SellerTotal sums one seller's transactions within [start, end].
func (s *Service) SellerTotal(ctx context.Context, sellerID int64, start, end time.Time) (decimal.Decimal, error) {
	if start.After(end) {
		return decimal.Zero, fmt.Errorf("SellerTotal: %w", domain.ErrInvalidRange)
	}

	seller, err := s.store.GetSeller(ctx, sellerID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("SellerTotal: %w", err)
	}

	txs, err := s.store.FetchOrderedBySeller(ctx, sellerID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("SellerTotal: fetch transactions: %w", err)
	}

	r := domain.Range{Start: start, End: end, Bounds: domain.Closed}
	aggregates := Aggregate(txs, map[int64]string{seller.ID: seller.Name}, r)
	if len(aggregates) == 0 {
		return decimal.Zero, nil
	}
	return aggregates[0].Total, nil
}

// Summary collects store-wide totals. The average is rounded half-up to
// two decimals and is zero when there are no transactions.
func (s *Service) Summary(ctx context.Context) (*domain.Summary, error) {
	total, err := s.store.TotalSales(ctx)
	if err != nil {
		return nil, fmt.Errorf("Summary: total sales: %w", err)
	}

	count, err := s.store.CountTransactions(ctx)
	if err != nil {
		return nil, fmt.Errorf("Summary: count transactions: %w", err)
	}

	sellers, err := s.store.CountSellers(ctx)
	if err != nil {
		return nil, fmt.Errorf("Summary: count sellers: %w", err)
	}

	byKind := make(map[domain.PaymentKind]decimal.Decimal, len(domain.PaymentKinds))
	for _, kind := range domain.PaymentKinds {
		sum, err := s.store.TotalSalesByPaymentKind(ctx, kind)
		if err != nil {
			return nil, fmt.Errorf("Summary: total for %s: %w", kind, err)
		}
		byKind[kind] = sum
	}

	average := decimal.Zero
	if count > 0 && !total.IsZero() {
		average = total.DivRound(decimal.NewFromInt(count), 2)
	}

	return &domain.Summary{
		TotalSales:       total,
		TransactionCount: count,
		SellerCount:      sellers,
		AverageAmount:    average,
		SalesByPayment:   byKind,
		GeneratedAt:      s.now(),
	}, nil
}

// SellerTransactionCount returns how many transactions a seller has.
func (s *Service) SellerTransactionCount(ctx context.Context, sellerID int64) (int64, error) {
	if _, err := s.store.GetSeller(ctx, sellerID); err != nil {
		return 0, fmt.Errorf("SellerTransactionCount: %w", err)
	}
	n, err := s.store.CountTransactionsBySeller(ctx, sellerID)
	if err != nil {
		return 0, fmt.Errorf("SellerTransactionCount: %w", err)
	}
	return n, nil
}

func bestPeriodKey(sellerID int64) string {
	return "best-period:" + strconv.FormatInt(sellerID, 10)
}
