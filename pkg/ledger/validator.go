package ledger

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"bankledger/pkg/bank"
	"bankledger/pkg/store"
)

// Request is a proposed transaction as submitted by a client. RecipientID is
// required iff Type is transfer.
type Request struct {
	Type        bank.TransactionType
	AccountID   string
	RecipientID string
	Amount      decimal.Decimal
	Description string
}

// Validator decides whether a proposed transaction is admissible against
// current store state. It is a pure decision function: no side effects.
type Validator struct {
	store store.Store
}

// NewValidator creates a validator over the given store.
func NewValidator(s store.Store) *Validator {
	return &Validator{store: s}
}

// Validate applies the admission rules in order:
// source resolves, recipient present and resolves (transfers), amount strictly
// positive, and sufficient source balance for debiting types. The caller must
// hold the implicated accounts' critical sections so the balance it reads here
// is the one the mutator will act on.
func (v *Validator) Validate(ctx context.Context, req Request) error {
	if !req.Type.Valid() {
		return fmt.Errorf("%w: %q", bank.ErrUnknownType, req.Type)
	}

	source, err := v.store.GetAccount(ctx, req.AccountID)
	if err != nil {
		if bank.IsNotFound(err) {
			return &bank.ReferenceError{Role: "source", ID: req.AccountID}
		}
		return err
	}

	if req.Type == bank.Transfer {
		if req.RecipientID == "" {
			return &bank.ReferenceError{Role: "recipient"}
		}
		if req.RecipientID == req.AccountID {
			return bank.ErrSameAccount
		}
		ok, err := v.store.AccountExists(ctx, req.RecipientID)
		if err != nil {
			return err
		}
		if !ok {
			return &bank.ReferenceError{Role: "recipient", ID: req.RecipientID}
		}
	}

	if !req.Amount.IsPositive() {
		return bank.ErrInvalidAmount
	}

	if req.Type == bank.Withdrawal || req.Type == bank.Transfer {
		if source.Balance.LessThan(req.Amount) {
			return bank.ErrInsufficientBalance
		}
	}

	return nil
}
