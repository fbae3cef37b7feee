package service

import (
	"context"
	"fmt"
	"math"
	"sync"
	"sync/atomic"

	"github.com/damon-houk/transaction-ledger/internal/domain/entity"
	"github.com/damon-houk/transaction-ledger/internal/domain/repository"
	"github.com/damon-houk/transaction-ledger/internal/infrastructure/cache"
	"github.com/damon-houk/transaction-ledger/internal/infrastructure/logger"
	"github.com/shopspring/decimal"
)

// RecordStore is the authoritative, concurrency-safe store of transactions.
// It owns the ID allocator and a read-through cache over the repository.
//
// mu orders cache population against mutations: Get holds it shared while it
// reads through and fills the cache, mutations hold it exclusively while they
// write the repository and refresh or evict the cache entry. A reader can
// therefore never put a value into the cache that a completed mutation has
// already superseded. Scans (Balance, ListPage) read repository snapshots and
// do not take mu.
type RecordStore struct {
	repo   repository.TransactionRepository
	cache  *cache.TransactionCache
	nextID atomic.Int64
	mu     sync.RWMutex
	logger logger.Logger
}

// NewRecordStore creates a store whose first allocated ID is 1
func NewRecordStore(repo repository.TransactionRepository, c *cache.TransactionCache, log logger.Logger) *RecordStore {
	if c == nil {
		c = cache.NewTransactionCache()
	}
	if log == nil {
		log = logger.GetDefaultLogger()
	}

	s := &RecordStore{
		repo:   repo,
		cache:  c,
		logger: log,
	}
	s.nextID.Store(1)
	return s
}

// AllocateID returns a fresh identifier, strictly greater than any previously allocated one
func (s *RecordStore) AllocateID() int64 {
	return s.nextID.Add(1) - 1
}

// Insert stores tx under id, failing with entity.ErrDuplicateIdentifier if id is taken
func (s *RecordStore) Insert(ctx context.Context, id int64, tx *entity.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.repo.Insert(ctx, id, tx); err != nil {
		return err
	}

	s.logger.Debug("Transaction inserted", map[string]interface{}{
		"id":   id,
		"type": tx.Type,
	})
	return nil
}

// Get returns the transaction stored under id, serving from the cache when possible
func (s *RecordStore) Get(ctx context.Context, id int64) (*entity.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if tx := s.cache.Get(id); tx != nil {
		return tx, nil
	}

	tx, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	s.cache.Put(tx)
	return tx, nil
}

// Exists reports whether a transaction is stored under id
func (s *RecordStore) Exists(ctx context.Context, id int64) (bool, error) {
	return s.repo.Exists(ctx, id)
}

// Replace overwrites the transaction stored under id and refreshes its cache entry.
// The stored ID is pinned to id regardless of tx.ID.
func (s *RecordStore) Replace(ctx context.Context, id int64, tx *entity.Transaction) (*entity.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, err := s.repo.Replace(ctx, id, tx)
	if err != nil {
		return nil, err
	}

	s.cache.Put(stored)
	return stored, nil
}

// Delete removes the transaction stored under id and evicts its cache entry
func (s *RecordStore) Delete(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.cache.Invalidate(id)
	return nil
}

// ListPage returns the pageIndex-th (0-based) page of pageSize transactions
func (s *RecordStore) ListPage(ctx context.Context, pageIndex, pageSize int) (*entity.Page, error) {
	if pageSize < 1 {
		return nil, entity.NewInvalidTransactionError("page size must be at least 1")
	}
	if pageIndex < 0 {
		pageIndex = 0
	}

	// pages beyond the addressable range are past the end of any store
	offset := math.MaxInt
	if pageIndex <= math.MaxInt/pageSize {
		offset = pageIndex * pageSize
	}

	items, total, err := s.repo.List(ctx, offset, pageSize)
	if err != nil {
		return nil, err
	}

	return &entity.Page{
		Items:      items,
		PageNumber: pageIndex + 1,
		TotalPages: entity.TotalPagesFor(total, pageSize),
		TotalCount: total,
	}, nil
}

// Balance sums the signed amounts of every stored transaction.
// It is a full scan over a single snapshot.
func (s *RecordStore) Balance(ctx context.Context) (decimal.Decimal, error) {
	balance := decimal.Zero

	err := s.repo.ForEach(ctx, func(tx *entity.Transaction) error {
		balance = balance.Add(tx.Type.SignedAmount(tx.Amount))
		return nil
	})
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to compute balance: %w", err)
	}

	return balance, nil
}
