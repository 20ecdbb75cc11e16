package ledger

import (
	"context"
	"fmt"

	"bankledger/pkg/bank"
	"bankledger/pkg/store"
)

// Mutator applies the monetary effect of a committed transaction exactly once.
// It trusts the caller to have validated the transaction against the same
// balances it is about to mutate, under the same account locks.
type Mutator struct {
	store store.Store
}

// NewMutator creates a mutator over the given store.
func NewMutator(s store.Store) *Mutator {
	return &Mutator{store: s}
}

// deltas returns the per-account balance changes for a transaction.
func deltas(t *bank.Transaction) []store.BalanceDelta {
	switch t.Type {
	case bank.Deposit:
		return []store.BalanceDelta{{AccountID: t.AccountID, Amount: t.Amount}}
	case bank.Withdrawal:
		return []store.BalanceDelta{{AccountID: t.AccountID, Amount: t.Amount.Neg()}}
	case bank.Transfer:
		return []store.BalanceDelta{
			{AccountID: t.AccountID, Amount: t.Amount.Neg()},
			{AccountID: t.RecipientID, Amount: t.Amount},
		}
	}
	return nil
}

// Apply writes the transaction's balance effect as one atomic batch: the store
// commits every delta or none, so a failure here means no balance moved and a
// concurrent snapshot can never see half of a transfer.
func (m *Mutator) Apply(ctx context.Context, t *bank.Transaction) error {
	ds := deltas(t)
	if len(ds) == 0 {
		return fmt.Errorf("%w: %q", bank.ErrUnknownType, t.Type)
	}

	if err := m.store.AdjustBalances(ctx, ds); err != nil {
		return fmt.Errorf("apply %s %s: %w", t.Type, t.ID, err)
	}
	return nil
}
