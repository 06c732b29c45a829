package memory

import (
	"cmp"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"slices"
	"sync"
	"time"

	"github.com/dvloznov/seller-analytics/internal/analytics"
	"github.com/dvloznov/seller-analytics/internal/domain"
	"github.com/dvloznov/seller-analytics/internal/store"
	"github.com/shopspring/decimal"
)

// Store is an in-memory record store of sellers and transactions.
// It is safe for concurrent use. Data is lost on restart.
type Store struct {
	mu           sync.RWMutex
	sellers      map[int64]domain.Seller
	transactions []domain.Transaction
	lastID       int64
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		sellers: make(map[int64]domain.Seller),
	}
}

// Seed is the JSON layout accepted by LoadFile.
type Seed struct {
	Sellers      []domain.Seller      `json:"sellers"`
	Transactions []domain.Transaction `json:"transactions"`
}

// LoadFile creates a store populated from a JSON seed file.
func LoadFile(path string) (*Store, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("LoadFile: read %q: %w", path, err)
	}
	s, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("LoadFile: %q: %w", path, err)
	}
	return s, nil
}

// Decode creates a store from JSON seed data, validating every
// transaction as AddTransaction does.
func Decode(data []byte) (*Store, error) {
	var seed Seed
	if err := json.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("Decode: %w", err)
	}

	s := NewStore()
	for _, seller := range seed.Sellers {
		s.AddSeller(seller)
	}
	for _, tx := range seed.Transactions {
		if err := s.AddTransaction(tx); err != nil {
			return nil, fmt.Errorf("Decode: %w", err)
		}
	}
	return s, nil
}

// Snapshot returns a copy of the store's contents, sellers ordered by ID.
func (s *Store) Snapshot() Seed {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seed := Seed{
		Sellers:      make([]domain.Seller, 0, len(s.sellers)),
		Transactions: slices.Clone(s.transactions),
	}
	for _, seller := range s.sellers {
		seed.Sellers = append(seed.Sellers, seller)
	}
	slices.SortFunc(seed.Sellers, func(a, b domain.Seller) int { return cmp.Compare(a.ID, b.ID) })
	return seed
}

// AddSeller inserts or replaces a seller.
func (s *Store) AddSeller(seller domain.Seller) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sellers[seller.ID] = seller
}

// AddTransaction appends a transaction for a known seller.
// Amounts must be positive and payment kinds must be valid.
func (s *Store) AddTransaction(tx domain.Transaction) error {
	if !tx.Amount.IsPositive() {
		return fmt.Errorf("AddTransaction: amount %s must be positive", tx.Amount)
	}
	kind, err := domain.ParsePaymentKind(string(tx.PaymentKind))
	if err != nil {
		return fmt.Errorf("AddTransaction: %w", err)
	}
	tx.PaymentKind = kind
	tx.Amount = tx.Amount.Round(2)

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sellers[tx.SellerID]; !ok {
		return fmt.Errorf("AddTransaction: %w", &domain.SellerNotFoundError{SellerID: tx.SellerID})
	}
	if tx.ID == 0 {
		tx.ID = s.lastID + 1
	}
	s.lastID = max(s.lastID, tx.ID)
	s.transactions = append(s.transactions, tx)
	return nil
}

// GetSeller implements store.SellerDirectory.
func (s *Store) GetSeller(ctx context.Context, sellerID int64) (*domain.Seller, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seller, ok := s.sellers[sellerID]
	if !ok {
		return nil, &domain.SellerNotFoundError{SellerID: sellerID}
	}
	return &seller, nil
}

// FetchOrderedBySeller implements store.RecordStore.
func (s *Store) FetchOrderedBySeller(ctx context.Context, sellerID int64) ([]domain.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []domain.Transaction
	for _, tx := range s.transactions {
		if tx.SellerID == sellerID {
			result = append(result, tx)
		}
	}
	slices.SortStableFunc(result, func(a, b domain.Transaction) int {
		return a.Timestamp.Compare(b.Timestamp)
	})
	return result, nil
}

// FetchGroupedByRange implements store.RecordStore.
func (s *Store) FetchGroupedByRange(ctx context.Context, start, end time.Time) ([]domain.SellerAggregate, error) {
	aggregates := s.aggregate(start, end)
	slices.SortStableFunc(aggregates, func(a, b domain.SellerAggregate) int {
		if c := b.Total.Cmp(a.Total); c != 0 {
			return c
		}
		return cmp.Compare(a.SellerID, b.SellerID)
	})
	return aggregates, nil
}

// FetchGroupedBelowThreshold implements store.RecordStore.
func (s *Store) FetchGroupedBelowThreshold(ctx context.Context, start, end time.Time, minAmount decimal.Decimal) ([]domain.SellerAggregate, error) {
	return analytics.SellersBelow(s.aggregate(start, end), minAmount), nil
}

func (s *Store) aggregate(start, end time.Time) []domain.SellerAggregate {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make(map[int64]string, len(s.sellers))
	for id, seller := range s.sellers {
		names[id] = seller.Name
	}
	r := domain.Range{Start: start, End: end, Bounds: domain.Closed}
	return analytics.Aggregate(s.transactions, names, r)
}

// TotalSales implements store.SummaryStore.
func (s *Store) TotalSales(ctx context.Context) (decimal.Decimal, error) {
	return s.sum(func(domain.Transaction) bool { return true }), nil
}

// TotalSalesByPaymentKind implements store.SummaryStore.
func (s *Store) TotalSalesByPaymentKind(ctx context.Context, kind domain.PaymentKind) (decimal.Decimal, error) {
	return s.sum(func(tx domain.Transaction) bool { return tx.PaymentKind == kind }), nil
}

// CountTransactions implements store.SummaryStore.
func (s *Store) CountTransactions(ctx context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.transactions)), nil
}

// CountTransactionsBySeller implements store.SummaryStore.
func (s *Store) CountTransactionsBySeller(ctx context.Context, sellerID int64) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var n int64
	for _, tx := range s.transactions {
		if tx.SellerID == sellerID {
			n++
		}
	}
	return n, nil
}

// CountSellers implements store.SummaryStore.
func (s *Store) CountSellers(ctx context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.sellers)), nil
}

func (s *Store) sum(match func(domain.Transaction) bool) decimal.Decimal {
	s.mu.RLock()
	defer s.mu.RUnlock()

	total := decimal.Zero
	for _, tx := range s.transactions {
		if match(tx) {
			total = total.Add(tx.Amount)
		}
	}
	return total
}

// Ensure Store implements the full store interface.
var _ store.Store = (*Store)(nil)
