package service

import (
	"context"

	"github.com/shopspring/decimal"
)

// BalanceView is the read-only view of the record store used by admission rules
type BalanceView interface {
	// Exists reports whether a transaction is stored under id
	Exists(ctx context.Context, id int64) (bool, error)

	// Balance returns the aggregate signed amount over all stored transactions
	Balance(ctx context.Context) (decimal.Decimal, error)
}
