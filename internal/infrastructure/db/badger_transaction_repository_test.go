package db

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/damon-houk/transaction-ledger/internal/domain/entity"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRepository(t *testing.T) *BadgerTransactionRepository {
	t.Helper()

	badgerDB, err := OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { badgerDB.Close() })

	return NewBadgerTransactionRepository(badgerDB)
}

func deposit(amount string) *entity.Transaction {
	return &entity.Transaction{
		Type:      entity.Deposit,
		Amount:    decimal.RequireFromString(amount),
		Status:    entity.StatusPending,
		Timestamp: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestBadgerTransactionRepository_InsertAndFind(t *testing.T) {
	repo := setupRepository(t)
	ctx := context.Background()

	tx := deposit("123.45")
	tx.ID = 1
	require.NoError(t, repo.Insert(ctx, 1, tx))

	found, err := repo.FindByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), found.ID)
	assert.True(t, decimal.RequireFromString("123.45").Equal(found.Amount))
	assert.True(t, tx.Timestamp.Equal(found.Timestamp))

	exists, err := repo.Exists(ctx, 1)
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.Exists(ctx, 2)
	require.NoError(t, err)
	assert.False(t, exists)

	_, err = repo.FindByID(ctx, 2)
	assert.ErrorIs(t, err, entity.ErrTransactionNotFound)
}

func TestBadgerTransactionRepository_DuplicateInsert(t *testing.T) {
	repo := setupRepository(t)
	ctx := context.Background()

	first := deposit("10")
	first.ID = 5
	require.NoError(t, repo.Insert(ctx, 5, first))

	second := deposit("99")
	second.ID = 5
	err := repo.Insert(ctx, 5, second)
	assert.ErrorIs(t, err, entity.ErrDuplicateIdentifier)

	found, err := repo.FindByID(ctx, 5)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(10).Equal(found.Amount), "existing record must be untouched")
}

func TestBadgerTransactionRepository_ConcurrentDuplicateInsert(t *testing.T) {
	repo := setupRepository(t)
	ctx := context.Background()

	var wins, dups atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tx := deposit("1")
			tx.ID = 42
			err := repo.Insert(ctx, 42, tx)
			switch {
			case err == nil:
				wins.Add(1)
			case assert.ErrorIs(t, err, entity.ErrDuplicateIdentifier):
				dups.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), wins.Load())
	assert.Equal(t, int32(19), dups.Load())
}

func TestBadgerTransactionRepository_Replace(t *testing.T) {
	repo := setupRepository(t)
	ctx := context.Background()

	tx := deposit("10")
	tx.ID = 3
	require.NoError(t, repo.Insert(ctx, 3, tx))

	repl := &entity.Transaction{
		ID:          999,
		Type:        entity.Transfer,
		Amount:      decimal.NewFromInt(200),
		Status:      entity.StatusPending,
		Description: "replaced",
	}
	stored, err := repo.Replace(ctx, 3, repl)
	require.NoError(t, err)
	assert.Equal(t, int64(3), stored.ID)
	assert.True(t, tx.Timestamp.Equal(stored.Timestamp))
	assert.Equal(t, int64(999), repl.ID, "caller's value must not be mutated")

	found, err := repo.FindByID(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, entity.Transfer, found.Type)
	assert.Equal(t, "replaced", found.Description)

	_, err = repo.Replace(ctx, 4, repl)
	assert.ErrorIs(t, err, entity.ErrTransactionNotFound)
}

func TestBadgerTransactionRepository_Delete(t *testing.T) {
	repo := setupRepository(t)
	ctx := context.Background()

	tx := deposit("10")
	tx.ID = 1
	require.NoError(t, repo.Insert(ctx, 1, tx))

	require.NoError(t, repo.Delete(ctx, 1))
	_, err := repo.FindByID(ctx, 1)
	assert.ErrorIs(t, err, entity.ErrTransactionNotFound)

	assert.ErrorIs(t, repo.Delete(ctx, 1), entity.ErrTransactionNotFound)
}

func TestBadgerTransactionRepository_ListAndForEach(t *testing.T) {
	repo := setupRepository(t)
	ctx := context.Background()

	for i := int64(1); i <= 25; i++ {
		tx := deposit(fmt.Sprintf("%d", i))
		tx.ID = i
		require.NoError(t, repo.Insert(ctx, i, tx))
	}

	items, total, err := repo.List(ctx, 0, 10)
	require.NoError(t, err)
	assert.Equal(t, 25, total)
	require.Len(t, items, 10)
	assert.Equal(t, int64(1), items[0].ID)

	items, total, err = repo.List(ctx, 20, 10)
	require.NoError(t, err)
	assert.Equal(t, 25, total)
	require.Len(t, items, 5)
	assert.Equal(t, int64(21), items[0].ID)

	items, _, err = repo.List(ctx, 30, 10)
	require.NoError(t, err)
	assert.Empty(t, items)

	sum := decimal.Zero
	err = repo.ForEach(ctx, func(tx *entity.Transaction) error {
		sum = sum.Add(tx.Amount)
		return nil
	})
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(325).Equal(sum))
}
