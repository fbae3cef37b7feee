package entity

import "errors"

var (
	// ErrDuplicateIdentifier is returned when a transaction ID is already in use
	ErrDuplicateIdentifier = errors.New("transaction id already exists")

	// ErrTransactionNotFound is returned when no transaction has the requested ID
	ErrTransactionNotFound = errors.New("transaction not found")

	// ErrInvalidTransaction matches every *InvalidTransactionError
	ErrInvalidTransaction = errors.New("invalid transaction")
)

// InvalidTransactionError is a rejected admission or field constraint
type InvalidTransactionError struct {
	Reason string
}

// NewInvalidTransactionError creates an InvalidTransactionError with the given reason
func NewInvalidTransactionError(reason string) *InvalidTransactionError {
	return &InvalidTransactionError{Reason: reason}
}

func (e *InvalidTransactionError) Error() string {
	return "invalid transaction: " + e.Reason
}

// Is lets errors.Is(err, ErrInvalidTransaction) match
func (e *InvalidTransactionError) Is(target error) bool {
	return target == ErrInvalidTransaction
}
