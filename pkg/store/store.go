// Package store defines the persistence contract for the banking entities.
// Stores hold pure records plus referential-integrity checks; business rules
// live in pkg/ledger and pkg/report.
package store

import (
	"context"

	"github.com/shopspring/decimal"

	"bankledger/pkg/bank"
)

// BalanceDelta is one account's share of a transaction's monetary effect.
type BalanceDelta struct {
	AccountID string
	Amount    decimal.Decimal
}

// AccountUpdate is a partial update for an account's mutable fields.
// Balance is deliberately absent: balances change only through the ledger's
// commit path, never through the generic update.
type AccountUpdate struct {
	AccountNumber *string
	BranchID      *string
}

// CustomerUpdate is a partial update for a customer's mutable fields.
type CustomerUpdate struct {
	FirstName   *string
	LastName    *string
	ContactInfo *bank.ContactInfo
	Address     *bank.Address
}

// BranchUpdate is a partial update for a branch's mutable fields.
type BranchUpdate struct {
	Name        *string
	ContactInfo *bank.ContactInfo
	Address     *bank.Address
}

// Store is the persistence contract shared by the in-memory and PostgreSQL
// backends. Lookups fail with bank.ErrNotFound when an id does not resolve;
// creates fail with bank.ErrConflict on a uniqueness violation.
type Store interface {
	// Customers. DeleteCustomer cascade-deletes every account owned by the
	// customer as one transactional unit.
	CreateCustomer(ctx context.Context, c *bank.Customer) error
	GetCustomer(ctx context.Context, id string) (*bank.Customer, error)
	ListCustomers(ctx context.Context) ([]*bank.Customer, error)
	UpdateCustomer(ctx context.Context, id string, upd CustomerUpdate) (*bank.Customer, error)
	DeleteCustomer(ctx context.Context, id string) error
	CustomerExists(ctx context.Context, id string) (bool, error)

	// Branches.
	CreateBranch(ctx context.Context, b *bank.Branch) error
	GetBranch(ctx context.Context, id string) (*bank.Branch, error)
	ListBranches(ctx context.Context) ([]*bank.Branch, error)
	UpdateBranch(ctx context.Context, id string, upd BranchUpdate) (*bank.Branch, error)
	DeleteBranch(ctx context.Context, id string) error
	BranchExists(ctx context.Context, id string) (bool, error)

	// Accounts. CreateAccount verifies the customer and branch references and
	// the account-number uniqueness.
	CreateAccount(ctx context.Context, a *bank.Account) error
	GetAccount(ctx context.Context, id string) (*bank.Account, error)
	ListAccounts(ctx context.Context) ([]*bank.Account, error)
	ListAccountsByCustomer(ctx context.Context, customerID string) ([]*bank.Account, error)
	UpdateAccount(ctx context.Context, id string, upd AccountUpdate) (*bank.Account, error)
	DeleteAccount(ctx context.Context, id string) error
	AccountExists(ctx context.Context, id string) (bool, error)

	// AdjustBalances applies signed deltas to account balances as one atomic
	// unit: either every delta applies or none does, and no concurrent reader
	// observes a partially applied batch. It is the only write path for
	// balances and is called exclusively by the ledger while it holds every
	// implicated account's critical section.
	AdjustBalances(ctx context.Context, deltas []BalanceDelta) error

	// Transactions. Records are immutable once created; DeleteTransaction
	// exists solely for the ledger's compensation path.
	CreateTransaction(ctx context.Context, t *bank.Transaction) error
	GetTransaction(ctx context.Context, id string) (*bank.Transaction, error)
	ListTransactions(ctx context.Context) ([]*bank.Transaction, error)
	ListTransactionsByAccounts(ctx context.Context, accountIDs []string) ([]*bank.Transaction, error)
	DeleteTransaction(ctx context.Context, id string) error

	// Snapshot returns a self-consistent point-in-time copy of all entity
	// collections in stable creation order.
	Snapshot(ctx context.Context) (*bank.Snapshot, error)

	Close() error
}
