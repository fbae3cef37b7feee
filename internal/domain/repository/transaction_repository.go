package repository

import (
	"context"

	"github.com/damon-houk/transaction-ledger/internal/domain/entity"
)

// TransactionRepository defines the interface for the keyed transaction container.
// Implementations must make each method atomic with respect to the others on the same ID.
type TransactionRepository interface {
	// Insert stores a transaction under id, failing with entity.ErrDuplicateIdentifier if id is taken
	Insert(ctx context.Context, id int64, tx *entity.Transaction) error

	// FindByID retrieves a transaction, failing with entity.ErrTransactionNotFound if absent
	FindByID(ctx context.Context, id int64) (*entity.Transaction, error)

	// Exists reports whether a transaction is stored under id
	Exists(ctx context.Context, id int64) (bool, error)

	// Replace overwrites the transaction stored under id and returns the stored value.
	// The stored ID is pinned to id and the original timestamp is kept.
	Replace(ctx context.Context, id int64, tx *entity.Transaction) (*entity.Transaction, error)

	// Delete removes the transaction stored under id
	Delete(ctx context.Context, id int64) error

	// List returns up to limit transactions after skipping offset, together with
	// the total count, both read from the same snapshot
	List(ctx context.Context, offset, limit int) ([]*entity.Transaction, int, error)

	// ForEach calls fn for every stored transaction in a single snapshot
	ForEach(ctx context.Context, fn func(tx *entity.Transaction) error) error
}
