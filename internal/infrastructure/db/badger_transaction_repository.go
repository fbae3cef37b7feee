package db

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/damon-houk/transaction-ledger/internal/domain/entity"
	"github.com/dgraph-io/badger/v3"
)

const maxConflictRetries = 10

var txKeyPrefix = []byte("tx:")

// OpenInMemory opens a BadgerDB instance that keeps all data in memory.
// Nothing is written to disk and the contents are lost on Close.
func OpenInMemory() (*badger.DB, error) {
	opts := badger.DefaultOptions("").WithInMemory(true).WithLogger(nil)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open in-memory database: %w", err)
	}
	return db, nil
}

// BadgerTransactionRepository implements the transaction repository interface using BadgerDB
type BadgerTransactionRepository struct {
	db *badger.DB
}

// NewBadgerTransactionRepository creates a new BadgerDB transaction repository
func NewBadgerTransactionRepository(db *badger.DB) *BadgerTransactionRepository {
	return &BadgerTransactionRepository{db: db}
}

// txKey encodes id big-endian so key order equals ID order
func txKey(id int64) []byte {
	key := make([]byte, len(txKeyPrefix)+8)
	copy(key, txKeyPrefix)
	binary.BigEndian.PutUint64(key[len(txKeyPrefix):], uint64(id))
	return key
}

func decode(item *badger.Item) (*entity.Transaction, error) {
	var tx entity.Transaction
	err := item.Value(func(val []byte) error {
		return json.Unmarshal(val, &tx)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to decode transaction: %w", err)
	}
	return &tx, nil
}

// update runs fn in a read-write transaction, retrying when badger reports a
// write conflict with a concurrent transaction on the same key
func (r *BadgerTransactionRepository) update(ctx context.Context, fn func(txn *badger.Txn) error) error {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = time.Millisecond
	policy.MaxInterval = 50 * time.Millisecond
	policy.Reset()

	op := func() error {
		err := r.db.Update(fn)
		switch {
		case err == nil:
			return nil
		case errors.Is(err, badger.ErrConflict):
			return err
		default:
			return backoff.Permanent(err)
		}
	}

	return backoff.Retry(op, backoff.WithContext(backoff.WithMaxRetries(policy, maxConflictRetries), ctx))
}

// Insert stores a transaction under id
func (r *BadgerTransactionRepository) Insert(ctx context.Context, id int64, tx *entity.Transaction) error {
	data, err := json.Marshal(tx)
	if err != nil {
		return fmt.Errorf("failed to marshal transaction: %w", err)
	}

	key := txKey(id)
	err = r.update(ctx, func(txn *badger.Txn) error {
		_, err := txn.Get(key)
		if err == nil {
			return fmt.Errorf("%w: %d", entity.ErrDuplicateIdentifier, id)
		}
		if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
		return txn.Set(key, data)
	})

	if err != nil && !errors.Is(err, entity.ErrDuplicateIdentifier) {
		return fmt.Errorf("failed to store transaction: %w", err)
	}
	return err
}

// FindByID retrieves a transaction by its unique identifier
func (r *BadgerTransactionRepository) FindByID(ctx context.Context, id int64) (*entity.Transaction, error) {
	var tx *entity.Transaction

	err := r.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(txKey(id))
		if err != nil {
			return err
		}

		tx, err = decode(item)
		return err
	})

	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, fmt.Errorf("%w: %d", entity.ErrTransactionNotFound, id)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to retrieve transaction: %w", err)
	}

	return tx, nil
}

// Exists reports whether a transaction is stored under id
func (r *BadgerTransactionRepository) Exists(ctx context.Context, id int64) (bool, error) {
	err := r.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get(txKey(id))
		return err
	})

	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, badger.ErrKeyNotFound):
		return false, nil
	default:
		return false, fmt.Errorf("failed to check transaction: %w", err)
	}
}

// Replace overwrites the transaction stored under id
func (r *BadgerTransactionRepository) Replace(ctx context.Context, id int64, tx *entity.Transaction) (*entity.Transaction, error) {
	var stored *entity.Transaction
	key := txKey(id)

	err := r.update(ctx, func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("%w: %d", entity.ErrTransactionNotFound, id)
		}
		if err != nil {
			return err
		}

		prev, err := decode(item)
		if err != nil {
			return err
		}

		next := tx.Clone()
		next.ID = id
		next.Timestamp = prev.Timestamp

		data, err := json.Marshal(next)
		if err != nil {
			return fmt.Errorf("failed to marshal transaction: %w", err)
		}

		if err := txn.Set(key, data); err != nil {
			return err
		}
		stored = next
		return nil
	})

	if err != nil {
		if errors.Is(err, entity.ErrTransactionNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to replace transaction: %w", err)
	}

	return stored, nil
}

// Delete removes the transaction stored under id
func (r *BadgerTransactionRepository) Delete(ctx context.Context, id int64) error {
	key := txKey(id)

	err := r.update(ctx, func(txn *badger.Txn) error {
		if _, err := txn.Get(key); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return fmt.Errorf("%w: %d", entity.ErrTransactionNotFound, id)
			}
			return err
		}
		return txn.Delete(key)
	})

	if err != nil && !errors.Is(err, entity.ErrTransactionNotFound) {
		return fmt.Errorf("failed to delete transaction: %w", err)
	}
	return err
}

// List returns up to limit transactions in ID order after skipping offset
func (r *BadgerTransactionRepository) List(ctx context.Context, offset, limit int) ([]*entity.Transaction, int, error) {
	items := make([]*entity.Transaction, 0)
	total := 0

	err := r.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = txKeyPrefix
		opts.PrefetchValues = false

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			if total >= offset && len(items) < limit {
				tx, err := decode(it.Item())
				if err != nil {
					return err
				}
				items = append(items, tx)
			}
			total++
		}
		return nil
	})

	if err != nil {
		return nil, 0, fmt.Errorf("failed to list transactions: %w", err)
	}

	return items, total, nil
}

// ForEach calls fn for every stored transaction in ID order
func (r *BadgerTransactionRepository) ForEach(ctx context.Context, fn func(tx *entity.Transaction) error) error {
	return r.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = txKeyPrefix

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			tx, err := decode(it.Item())
			if err != nil {
				return err
			}
			if err := fn(tx); err != nil {
				return err
			}
		}
		return nil
	})
}
