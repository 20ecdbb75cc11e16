package bank

import (
	"errors"
	"fmt"
	"testing"
)

func TestReferenceError_Unwrap(t *testing.T) {
	dangling := &ReferenceError{Role: "recipient", ID: "acc-1"}
	if !errors.Is(dangling, ErrNotFound) {
		t.Error("dangling reference should match ErrNotFound")
	}

	missing := &ReferenceError{Role: "recipient"}
	if errors.Is(missing, ErrNotFound) {
		t.Error("missing reference should not match ErrNotFound")
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, "none"},
		{ErrInsufficientBalance, "insufficient_balance"},
		{ErrInvalidAmount, "invalid_amount"},
		{ErrSameAccount, "same_account"},
		{ErrUnknownType, "unknown_type"},
		{&ReferenceError{Role: "source", ID: "x"}, "bad_reference"},
		{&ValidationError{Missing: []string{"name"}}, "missing_fields"},
		{ErrBalanceImmutable, "balance_immutable"},
		{ErrLockTimeout, "lock_timeout"},
		{ErrConflict, "conflict"},
		{ErrNotFound, "not_found"},
		{errors.New("boom"), "other"},
		{fmt.Errorf("commit: %w", ErrInsufficientBalance), "insufficient_balance"},
	}

	for _, tt := range tests {
		if got := Classify(tt.err); got != tt.want {
			t.Errorf("Classify(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}

func TestIsValidation(t *testing.T) {
	for _, err := range []error{
		ErrInvalidAmount,
		ErrInsufficientBalance,
		ErrSameAccount,
		ErrUnknownType,
		&ReferenceError{Role: "source", ID: "x"},
		&ValidationError{Missing: []string{"name"}},
	} {
		if !IsValidation(err) {
			t.Errorf("IsValidation(%v) = false, want true", err)
		}
	}

	if IsValidation(ErrNotFound) {
		t.Error("plain ErrNotFound is not a validation failure")
	}
	if !IsRetryable(ErrLockTimeout) {
		t.Error("lock timeout should be retryable")
	}
	if IsRetryable(ErrConflict) {
		t.Error("conflict should not be retryable")
	}
}

func TestCustomerValidate(t *testing.T) {
	c := &Customer{}
	err := c.Validate()
	var val *ValidationError
	if !errors.As(err, &val) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if len(val.Missing) != 5 {
		t.Errorf("expected 5 missing fields, got %v", val.Missing)
	}
}
