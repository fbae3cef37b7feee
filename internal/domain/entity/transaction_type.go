package entity

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// TransactionType is the closed set of transaction kinds
type TransactionType string

const (
	Deposit         TransactionType = "DEPOSIT"
	Withdrawal      TransactionType = "WITHDRAWAL"
	Transfer        TransactionType = "TRANSFER"
	Refund          TransactionType = "REFUND"
	InterestIncome  TransactionType = "INTEREST_INCOME"
	InterestExpense TransactionType = "INTEREST_EXPENSE"
	FeeIncome       TransactionType = "FEE_INCOME"
	FeeExpense      TransactionType = "FEE_EXPENSE"
)

// withdrawAlias is the legacy wire spelling of Withdrawal
const withdrawAlias = "WITHDRAW"

// ParseTransactionType converts a wire value into a TransactionType.
// Both WITHDRAWAL and WITHDRAW decode to Withdrawal.
func ParseTransactionType(s string) (TransactionType, error) {
	v := strings.ToUpper(strings.TrimSpace(s))
	if v == withdrawAlias {
		return Withdrawal, nil
	}

	t := TransactionType(v)
	if !t.IsValid() {
		return "", fmt.Errorf("unknown transaction type %q", s)
	}
	return t, nil
}

// IsValid reports whether the type is one of the known types
func (t TransactionType) IsValid() bool {
	switch t {
	case Deposit, Withdrawal, Transfer, Refund, InterestIncome, InterestExpense, FeeIncome, FeeExpense:
		return true
	}
	return false
}

// IsSystemOrigin reports whether the type may only be initiated by SYSTEM
func (t TransactionType) IsSystemOrigin() bool {
	switch t {
	case InterestIncome, InterestExpense, FeeIncome, FeeExpense:
		return true
	}
	return false
}

// SignedAmount returns the contribution of amount to the aggregate balance.
// Transfers are balance-neutral.
func (t TransactionType) SignedAmount(amount decimal.Decimal) decimal.Decimal {
	switch t {
	case Deposit, InterestIncome, FeeIncome, Refund:
		return amount
	case Withdrawal, InterestExpense, FeeExpense:
		return amount.Neg()
	default:
		return decimal.Zero
	}
}

// UnmarshalJSON accepts any known spelling of the type
func (t *TransactionType) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("transaction type must be a string: %w", err)
	}

	parsed, err := ParseTransactionType(s)
	if err != nil {
		return err
	}

	*t = parsed
	return nil
}
