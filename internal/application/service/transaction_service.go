package service

import (
	"context"
	"sync"
	"time"

	"github.com/damon-houk/transaction-ledger/internal/domain/entity"
	"github.com/damon-houk/transaction-ledger/internal/infrastructure/logger"
	"github.com/damon-houk/transaction-ledger/internal/infrastructure/middleware"
	"github.com/shopspring/decimal"
)

// TransactionService handles business logic for transactions
type TransactionService struct {
	store     *RecordStore
	validator *Validator
	logger    logger.Logger

	strictWithdrawals bool
	withdrawalMu      sync.Mutex
}

// Option configures a TransactionService
type Option func(*TransactionService)

// WithStrictWithdrawals makes withdrawal validation and insertion one critical
// section, so two concurrent withdrawals can no longer overdraw together.
// This changes the default behavior, which leaves that race open.
func WithStrictWithdrawals(strict bool) Option {
	return func(s *TransactionService) {
		s.strictWithdrawals = strict
	}
}

// NewTransactionService creates a new transaction service
func NewTransactionService(store *RecordStore, validator *Validator, log logger.Logger, opts ...Option) *TransactionService {
	if log == nil {
		log = logger.GetDefaultLogger()
	}

	s := &TransactionService{
		store:     store,
		validator: validator,
		logger:    log,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateTransaction validates and stores a new transaction.
// The stored copy gets a freshly allocated ID and the creation timestamp.
func (s *TransactionService) CreateTransaction(ctx context.Context, tx *entity.Transaction) (*entity.Transaction, error) {
	requestID := middleware.GetRequestID(ctx)

	if s.strictWithdrawals && tx.Type == entity.Withdrawal {
		s.withdrawalMu.Lock()
		defer s.withdrawalMu.Unlock()
	}

	if err := s.validator.Validate(ctx, tx); err != nil {
		s.logger.Warn("Transaction rejected", map[string]interface{}{
			"request_id": requestID,
			"type":       tx.Type,
			"error":      err.Error(),
		})
		return nil, err
	}

	if err := tx.Validate(); err != nil {
		return nil, err
	}

	record := tx.Clone()
	record.ID = s.store.AllocateID()
	record.Timestamp = time.Now().UTC()
	if record.Status == "" {
		record.Status = entity.StatusPending
	}

	if err := s.store.Insert(ctx, record.ID, record); err != nil {
		s.logger.Error("Failed to store transaction", map[string]interface{}{
			"request_id": requestID,
			"id":         record.ID,
			"error":      err.Error(),
		})
		return nil, err
	}

	s.logger.Info("Transaction created", map[string]interface{}{
		"request_id": requestID,
		"id":         record.ID,
		"type":       record.Type,
		"amount":     record.Amount.String(),
	})

	return record, nil
}

// GetTransaction retrieves a transaction by ID
func (s *TransactionService) GetTransaction(ctx context.Context, id int64) (*entity.Transaction, error) {
	return s.store.Get(ctx, id)
}

// ListTransactions returns one page of transactions; page is 1-based and
// values below 1 are treated as the first page
func (s *TransactionService) ListTransactions(ctx context.Context, page, size int) (*entity.Page, error) {
	index := page - 1
	if index < 0 {
		index = 0
	}
	return s.store.ListPage(ctx, index, size)
}

// UpdateTransaction fully replaces the transaction stored under id
func (s *TransactionService) UpdateTransaction(ctx context.Context, id int64, tx *entity.Transaction) (*entity.Transaction, error) {
	requestID := middleware.GetRequestID(ctx)

	if err := tx.Validate(); err != nil {
		return nil, err
	}

	replacement := tx.Clone()
	if replacement.Status == "" {
		replacement.Status = entity.StatusPending
	}

	stored, err := s.store.Replace(ctx, id, replacement)
	if err != nil {
		s.logger.Warn("Transaction update failed", map[string]interface{}{
			"request_id": requestID,
			"id":         id,
			"error":      err.Error(),
		})
		return nil, err
	}

	s.logger.Info("Transaction updated", map[string]interface{}{
		"request_id": requestID,
		"id":         id,
	})

	return stored, nil
}

// DeleteTransaction removes the transaction stored under id
func (s *TransactionService) DeleteTransaction(ctx context.Context, id int64) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info("Transaction deleted", map[string]interface{}{
		"request_id": middleware.GetRequestID(ctx),
		"id":         id,
	})
	return nil
}

// GetBalance returns the aggregate balance over all stored transactions
func (s *TransactionService) GetBalance(ctx context.Context) (decimal.Decimal, error) {
	return s.store.Balance(ctx)
}
