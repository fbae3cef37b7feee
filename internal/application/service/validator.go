package service

import (
	"context"
	"fmt"

	"github.com/damon-houk/transaction-ledger/internal/domain/entity"
	domainservice "github.com/damon-houk/transaction-ledger/internal/domain/service"
	"github.com/damon-houk/transaction-ledger/internal/infrastructure/logger"
)

// Admission rule rejection reasons
const (
	ReasonAmountNotPositive      = "amount must be positive"
	ReasonInsufficientBalance    = "insufficient balance"
	ReasonTargetAccountRequired  = "target account required"
	ReasonOriginalIDRequired     = "original transaction id required"
	ReasonSystemInitiatorMissing = "must be initiated by SYSTEM"
)

// Validator applies the admission rules a candidate transaction must pass before it is stored
type Validator struct {
	view   domainservice.BalanceView
	logger logger.Logger
}

// NewValidator creates a validator reading the given balance view
func NewValidator(view domainservice.BalanceView, log logger.Logger) *Validator {
	if log == nil {
		log = logger.GetDefaultLogger()
	}

	return &Validator{
		view:   view,
		logger: log,
	}
}

// Validate runs the checks in order and returns the first failure
func (v *Validator) Validate(ctx context.Context, tx *entity.Transaction) error {
	if tx.ID != 0 {
		exists, err := v.view.Exists(ctx, tx.ID)
		if err != nil {
			return err
		}
		if exists {
			return fmt.Errorf("%w: %d", entity.ErrDuplicateIdentifier, tx.ID)
		}
	}

	if !tx.Amount.IsPositive() {
		return entity.NewInvalidTransactionError(ReasonAmountNotPositive)
	}

	switch {
	case tx.Type == entity.Withdrawal:
		return v.validateWithdrawal(ctx, tx)
	case tx.Type == entity.Transfer:
		if tx.TargetAccount == "" {
			return entity.NewInvalidTransactionError(ReasonTargetAccountRequired)
		}
	case tx.Type == entity.Refund:
		if tx.OriginalTransactionID == nil {
			return entity.NewInvalidTransactionError(ReasonOriginalIDRequired)
		}
	case tx.Type.IsSystemOrigin():
		if tx.InitiatedBy != entity.SystemInitiator {
			return entity.NewInvalidTransactionError(ReasonSystemInitiatorMissing)
		}
	}

	return nil
}

// validateWithdrawal compares against committed transactions only; it does not
// reserve funds, so concurrent withdrawals can each pass against the same balance
func (v *Validator) validateWithdrawal(ctx context.Context, tx *entity.Transaction) error {
	balance, err := v.view.Balance(ctx)
	if err != nil {
		return err
	}

	if tx.Amount.GreaterThan(balance) {
		v.logger.Debug("Withdrawal exceeds balance", map[string]interface{}{
			"amount":  tx.Amount.String(),
			"balance": balance.String(),
		})
		return entity.NewInvalidTransactionError(ReasonInsufficientBalance)
	}
	return nil
}
