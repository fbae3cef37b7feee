package handler

import (
	"time"

	"github.com/damon-houk/transaction-ledger/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// TransactionRequest represents the request body for creating or replacing a transaction
type TransactionRequest struct {
	ID                    int64                    `json:"id,omitempty"`
	Type                  entity.TransactionType   `json:"type"`
	Amount                *decimal.Decimal         `json:"amount"`
	Description           string                   `json:"description,omitempty"`
	Status                entity.TransactionStatus `json:"status,omitempty"`
	TargetAccount         string                   `json:"targetAccount,omitempty"`
	OriginalTransactionID *int64                   `json:"originalTransactionId,omitempty"`
	InitiatedBy           string                   `json:"initiatedBy,omitempty"`
}

// toEntity applies the field-level constraints and maps the request to the domain model
func (r *TransactionRequest) toEntity() (*entity.Transaction, error) {
	if r.Amount == nil {
		return nil, entity.NewInvalidTransactionError("amount is required")
	}

	tx := &entity.Transaction{
		ID:                    r.ID,
		Type:                  r.Type,
		Amount:                *r.Amount,
		Description:           r.Description,
		Status:                r.Status,
		TargetAccount:         r.TargetAccount,
		OriginalTransactionID: r.OriginalTransactionID,
		InitiatedBy:           r.InitiatedBy,
	}

	if err := tx.Validate(); err != nil {
		return nil, err
	}
	return tx, nil
}

// TransactionResponse represents a transaction returned by the API
type TransactionResponse struct {
	ID                    int64                    `json:"id"`
	Type                  entity.TransactionType   `json:"type"`
	Amount                decimal.Decimal          `json:"amount"`
	Description           string                   `json:"description,omitempty"`
	Timestamp             string                   `json:"timestamp"`
	Status                entity.TransactionStatus `json:"status"`
	TargetAccount         string                   `json:"targetAccount,omitempty"`
	OriginalTransactionID *int64                   `json:"originalTransactionId,omitempty"`
	InitiatedBy           string                   `json:"initiatedBy,omitempty"`
}

func toTransactionResponse(tx *entity.Transaction) TransactionResponse {
	return TransactionResponse{
		ID:                    tx.ID,
		Type:                  tx.Type,
		Amount:                tx.Amount,
		Description:           tx.Description,
		Timestamp:             tx.Timestamp.Format(time.RFC3339Nano),
		Status:                tx.Status,
		TargetAccount:         tx.TargetAccount,
		OriginalTransactionID: tx.OriginalTransactionID,
		InitiatedBy:           tx.InitiatedBy,
	}
}

// PageResponse represents one page of the transaction listing
type PageResponse struct {
	Content       []TransactionResponse `json:"content"`
	Page          int                   `json:"page"`
	Size          int                   `json:"size"`
	TotalPages    int                   `json:"totalPages"`
	TotalElements int                   `json:"totalElements"`
}

// BalanceResponse represents the aggregate balance
type BalanceResponse struct {
	Balance decimal.Decimal `json:"balance"`
}

// ErrorResponse represents a standardized error response
type ErrorResponse struct {
	Error       string `json:"error"`
	Status      int    `json:"status"`
	Description string `json:"description,omitempty"`
	RequestID   string `json:"request_id,omitempty"`
}
