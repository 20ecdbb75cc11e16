package bank

import (
	"errors"
	"fmt"
	"strings"
)

// Domain errors for the ledger core. Validation failures are detected before
// any persistent effect and reported synchronously; none of them leaves a
// partial state behind.
var (
	// ErrNotFound is returned when an id does not resolve to a stored entity.
	ErrNotFound = errors.New("bank: not found")

	// ErrConflict is returned when a uniqueness constraint is violated,
	// e.g. a duplicate account number or id on create.
	ErrConflict = errors.New("bank: conflict")

	// ErrInvalidAmount is returned when a transaction amount is not strictly positive.
	ErrInvalidAmount = errors.New("bank: amount must be positive")

	// ErrInsufficientBalance is returned when a withdrawal or transfer exceeds
	// the source account's balance.
	ErrInsufficientBalance = errors.New("bank: insufficient balance")

	// ErrSameAccount is returned when a transfer names its own source as recipient.
	ErrSameAccount = errors.New("bank: transfer to same account")

	// ErrUnknownType is returned when a proposed transaction carries a type
	// other than deposit, withdrawal or transfer.
	ErrUnknownType = errors.New("bank: unknown transaction type")

	// ErrBalanceImmutable is returned when an account update tries to write the
	// balance directly. Balance changes go through the ledger commit path only.
	ErrBalanceImmutable = errors.New("bank: balance cannot be updated directly")

	// ErrLockTimeout is returned when the commit path cannot acquire its
	// per-account critical section in time. The commit had no effect and is
	// safe to retry.
	ErrLockTimeout = errors.New("bank: account lock timeout")
)

// ReferenceError reports a malformed or dangling party reference on a proposed
// transaction, e.g. a transfer without a recipient or an unknown source account.
type ReferenceError struct {
	// Role is the party that failed to resolve: "source" or "recipient".
	Role string
	// ID is the offending reference, empty when the reference was missing.
	ID string
}

func (e *ReferenceError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("bank: %s account reference missing", e.Role)
	}
	return fmt.Sprintf("bank: %s account not found: %s", e.Role, e.ID)
}

// Unwrap lets errors.Is(err, ErrNotFound) match dangling references.
func (e *ReferenceError) Unwrap() error {
	if e.ID == "" {
		return nil
	}
	return ErrNotFound
}

// ValidationError reports required entity fields missing at creation time.
type ValidationError struct {
	Missing []string
}

func (e *ValidationError) Error() string {
	return "bank: missing required fields: " + strings.Join(e.Missing, ", ")
}

// IsNotFound checks if the given error indicates a missing entity.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsConflict checks if the given error indicates a uniqueness violation.
func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict)
}

// IsValidation reports whether the error is a pre-commit rejection: the
// operation had no effect and retrying with the same input will fail again.
func IsValidation(err error) bool {
	var ref *ReferenceError
	var val *ValidationError
	return errors.Is(err, ErrInvalidAmount) ||
		errors.Is(err, ErrInsufficientBalance) ||
		errors.Is(err, ErrSameAccount) ||
		errors.Is(err, ErrUnknownType) ||
		errors.Is(err, ErrBalanceImmutable) ||
		errors.As(err, &ref) ||
		errors.As(err, &val)
}

// IsRetryable reports whether the failed operation may be retried as-is.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrLockTimeout)
}

// Classify returns a stable label for the error, used in metrics and logs.
func Classify(err error) string {
	if err == nil {
		return "none"
	}
	var ref *ReferenceError
	var val *ValidationError
	switch {
	case errors.Is(err, ErrInsufficientBalance):
		return "insufficient_balance"
	case errors.Is(err, ErrInvalidAmount):
		return "invalid_amount"
	case errors.Is(err, ErrSameAccount):
		return "same_account"
	case errors.Is(err, ErrUnknownType):
		return "unknown_type"
	case errors.As(err, &ref):
		return "bad_reference"
	case errors.As(err, &val):
		return "missing_fields"
	case errors.Is(err, ErrBalanceImmutable):
		return "balance_immutable"
	case errors.Is(err, ErrLockTimeout):
		return "lock_timeout"
	case errors.Is(err, ErrConflict):
		return "conflict"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	default:
		return "other"
	}
}
