package cache

import (
	"context"
	"sync"
	"time"

	"github.com/damon-houk/transaction-ledger/internal/domain/entity"
)

// DefaultExpiration is how long an entry stays valid unless SetExpiration is called
const DefaultExpiration = 10 * time.Minute

// CacheEntry represents a cached transaction with its insertion time
type CacheEntry struct {
	Transaction *entity.Transaction
	Timestamp   time.Time
}

// TransactionCache provides a thread-safe in-memory point-lookup cache keyed by transaction ID.
// Entries are stored and returned as copies so callers cannot mutate cached state.
type TransactionCache struct {
	cache      map[int64]CacheEntry
	expiration time.Duration
	mutex      sync.RWMutex
}

// NewTransactionCache creates a new transaction cache
func NewTransactionCache() *TransactionCache {
	return &TransactionCache{
		cache:      make(map[int64]CacheEntry),
		expiration: DefaultExpiration,
	}
}

// Get retrieves a transaction from the cache if available and not expired
func (c *TransactionCache) Get(id int64) *entity.Transaction {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	entry, exists := c.cache[id]
	if !exists || time.Since(entry.Timestamp) > c.expiration {
		return nil
	}

	return entry.Transaction.Clone()
}

// Put stores a transaction in the cache under its ID
func (c *TransactionCache) Put(tx *entity.Transaction) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.cache[tx.ID] = CacheEntry{
		Transaction: tx.Clone(),
		Timestamp:   time.Now(),
	}
}

// Invalidate removes the entry for id, if any
func (c *TransactionCache) Invalidate(id int64) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	delete(c.cache, id)
}

// Clear clears all entries from the cache
func (c *TransactionCache) Clear() {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.cache = make(map[int64]CacheEntry)
}

// SetExpiration sets the cache expiration duration
func (c *TransactionCache) SetExpiration(duration time.Duration) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.expiration = duration
}

// Size returns the number of items in the cache
func (c *TransactionCache) Size() int {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	return len(c.cache)
}

// CleanExpired removes expired entries from the cache
func (c *TransactionCache) CleanExpired() int {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	count := 0
	now := time.Now()

	for id, entry := range c.cache {
		if now.Sub(entry.Timestamp) > c.expiration {
			delete(c.cache, id)
			count++
		}
	}

	return count
}

// StartJanitor runs CleanExpired every interval until ctx is done
func (c *TransactionCache) StartJanitor(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				c.CleanExpired()
			}
		}
	}()
}
