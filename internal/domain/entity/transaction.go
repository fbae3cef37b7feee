package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// SystemInitiator is the only initiator accepted for system-origin transactions
const SystemInitiator = "SYSTEM"

// TransactionStatus represents the processing state of a transaction
type TransactionStatus string

const (
	StatusPending    TransactionStatus = "PENDING"
	StatusProcessing TransactionStatus = "PROCESSING"
	StatusCompleted  TransactionStatus = "COMPLETED"
	StatusFailed     TransactionStatus = "FAILED"
	StatusCancelled  TransactionStatus = "CANCELLED"
	StatusRefunded   TransactionStatus = "REFUNDED"
)

// IsValid reports whether the status is one of the known statuses
func (s TransactionStatus) IsValid() bool {
	switch s {
	case StatusPending, StatusProcessing, StatusCompleted, StatusFailed, StatusCancelled, StatusRefunded:
		return true
	}
	return false
}

// Transaction represents a single ledger record
type Transaction struct {
	ID                    int64             `json:"id"`
	Type                  TransactionType   `json:"type"`
	Amount                decimal.Decimal   `json:"amount"`
	Description           string            `json:"description,omitempty"`
	Timestamp             time.Time         `json:"timestamp"`
	Status                TransactionStatus `json:"status"`
	TargetAccount         string            `json:"targetAccount,omitempty"`
	OriginalTransactionID *int64            `json:"originalTransactionId,omitempty"`
	InitiatedBy           string            `json:"initiatedBy,omitempty"`
}

// Validate ensures the transaction satisfies its field-level constraints.
// Type-specific admission rules are applied separately at creation.
func (t *Transaction) Validate() error {
	if t.Type == "" {
		return NewInvalidTransactionError("type is required")
	}

	if !t.Type.IsValid() {
		return NewInvalidTransactionError("unknown transaction type " + string(t.Type))
	}

	if !t.Amount.IsPositive() {
		return NewInvalidTransactionError("amount must be greater than 0")
	}

	if t.Status != "" && !t.Status.IsValid() {
		return NewInvalidTransactionError("unknown transaction status " + string(t.Status))
	}

	return nil
}

// Clone returns a deep copy of the transaction
func (t *Transaction) Clone() *Transaction {
	if t == nil {
		return nil
	}

	c := *t
	if t.OriginalTransactionID != nil {
		id := *t.OriginalTransactionID
		c.OriginalTransactionID = &id
	}
	return &c
}
