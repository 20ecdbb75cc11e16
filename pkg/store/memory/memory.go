// Package memory provides the in-memory Store backend. It is the default
// backend and the one the test suite runs against.
package memory

import (
	"context"
	"sync"

	"bankledger/pkg/bank"
	"bankledger/pkg/store"
)

// MemoryStore is a thread-safe in-memory implementation of store.Store.
// Collections are keyed by id; insertion order is kept so that list and
// snapshot results are stable across calls.
type MemoryStore struct {
	mu sync.RWMutex

	customers     map[string]*bank.Customer
	branches      map[string]*bank.Branch
	accounts      map[string]*bank.Account
	transactions  map[string]*bank.Transaction
	accountNumber map[string]string // account number -> account id

	customerOrder    []string
	branchOrder      []string
	accountOrder     []string
	transactionOrder []string
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		customers:     make(map[string]*bank.Customer),
		branches:      make(map[string]*bank.Branch),
		accounts:      make(map[string]*bank.Account),
		transactions:  make(map[string]*bank.Transaction),
		accountNumber: make(map[string]string),
	}
}

// CreateCustomer stores a new customer record.
func (s *MemoryStore) CreateCustomer(ctx context.Context, c *bank.Customer) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.customers[c.ID]; exists {
		return bank.ErrConflict
	}
	cp := *c
	s.customers[c.ID] = &cp
	s.customerOrder = append(s.customerOrder, c.ID)
	return nil
}

// GetCustomer returns a copy of the customer with the given id.
func (s *MemoryStore) GetCustomer(ctx context.Context, id string) (*bank.Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.customers[id]
	if !ok {
		return nil, bank.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

// ListCustomers returns all customers in creation order.
func (s *MemoryStore) ListCustomers(ctx context.Context) ([]*bank.Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*bank.Customer, 0, len(s.customerOrder))
	for _, id := range s.customerOrder {
		cp := *s.customers[id]
		out = append(out, &cp)
	}
	return out, nil
}

// UpdateCustomer applies a partial update and returns the updated record.
func (s *MemoryStore) UpdateCustomer(ctx context.Context, id string, upd store.CustomerUpdate) (*bank.Customer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.customers[id]
	if !ok {
		return nil, bank.ErrNotFound
	}
	if upd.FirstName != nil {
		c.FirstName = *upd.FirstName
	}
	if upd.LastName != nil {
		c.LastName = *upd.LastName
	}
	if upd.ContactInfo != nil {
		c.ContactInfo = *upd.ContactInfo
	}
	if upd.Address != nil {
		c.Address = *upd.Address
	}
	cp := *c
	return &cp, nil
}

// DeleteCustomer removes the customer and cascade-deletes its accounts in the
// same critical section, so no reader ever sees an orphaned account.
func (s *MemoryStore) DeleteCustomer(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.customers[id]; !ok {
		return bank.ErrNotFound
	}
	delete(s.customers, id)
	s.customerOrder = remove(s.customerOrder, id)

	for _, accID := range s.accountOrder {
		acc, ok := s.accounts[accID]
		if ok && acc.CustomerID == id {
			delete(s.accountNumber, acc.AccountNumber)
			delete(s.accounts, accID)
		}
	}
	s.accountOrder = filter(s.accountOrder, func(accID string) bool {
		_, kept := s.accounts[accID]
		return kept
	})
	return nil
}

// CustomerExists reports whether the customer id resolves.
func (s *MemoryStore) CustomerExists(ctx context.Context, id string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.customers[id]
	return ok, nil
}

// CreateBranch stores a new branch record.
func (s *MemoryStore) CreateBranch(ctx context.Context, b *bank.Branch) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.branches[b.ID]; exists {
		return bank.ErrConflict
	}
	cp := *b
	s.branches[b.ID] = &cp
	s.branchOrder = append(s.branchOrder, b.ID)
	return nil
}

// GetBranch returns a copy of the branch with the given id.
func (s *MemoryStore) GetBranch(ctx context.Context, id string) (*bank.Branch, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	b, ok := s.branches[id]
	if !ok {
		return nil, bank.ErrNotFound
	}
	cp := *b
	return &cp, nil
}

// ListBranches returns all branches in creation order.
func (s *MemoryStore) ListBranches(ctx context.Context) ([]*bank.Branch, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*bank.Branch, 0, len(s.branchOrder))
	for _, id := range s.branchOrder {
		cp := *s.branches[id]
		out = append(out, &cp)
	}
	return out, nil
}

// UpdateBranch applies a partial update and returns the updated record.
func (s *MemoryStore) UpdateBranch(ctx context.Context, id string, upd store.BranchUpdate) (*bank.Branch, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.branches[id]
	if !ok {
		return nil, bank.ErrNotFound
	}
	if upd.Name != nil {
		b.Name = *upd.Name
	}
	if upd.ContactInfo != nil {
		b.ContactInfo = *upd.ContactInfo
	}
	if upd.Address != nil {
		b.Address = *upd.Address
	}
	cp := *b
	return &cp, nil
}

// DeleteBranch removes the branch record. Accounts keep their branch reference
// as recorded history; only customer deletion cascades.
func (s *MemoryStore) DeleteBranch(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.branches[id]; !ok {
		return bank.ErrNotFound
	}
	delete(s.branches, id)
	s.branchOrder = remove(s.branchOrder, id)
	return nil
}

// BranchExists reports whether the branch id resolves.
func (s *MemoryStore) BranchExists(ctx context.Context, id string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.branches[id]
	return ok, nil
}

// CreateAccount stores a new account after checking its customer and branch
// references and the account-number uniqueness.
func (s *MemoryStore) CreateAccount(ctx context.Context, a *bank.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.accounts[a.ID]; exists {
		return bank.ErrConflict
	}
	if _, ok := s.customers[a.CustomerID]; !ok {
		return bank.ErrNotFound
	}
	if _, ok := s.branches[a.BranchID]; !ok {
		return bank.ErrNotFound
	}
	if _, taken := s.accountNumber[a.AccountNumber]; taken {
		return bank.ErrConflict
	}
	cp := *a
	s.accounts[a.ID] = &cp
	s.accountNumber[a.AccountNumber] = a.ID
	s.accountOrder = append(s.accountOrder, a.ID)
	return nil
}

// GetAccount returns a copy of the account with the given id.
func (s *MemoryStore) GetAccount(ctx context.Context, id string) (*bank.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.accounts[id]
	if !ok {
		return nil, bank.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

// ListAccounts returns all accounts in creation order.
func (s *MemoryStore) ListAccounts(ctx context.Context) ([]*bank.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*bank.Account, 0, len(s.accountOrder))
	for _, id := range s.accountOrder {
		cp := *s.accounts[id]
		out = append(out, &cp)
	}
	return out, nil
}

// ListAccountsByCustomer returns the customer's accounts in creation order.
func (s *MemoryStore) ListAccountsByCustomer(ctx context.Context, customerID string) ([]*bank.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*bank.Account
	for _, id := range s.accountOrder {
		a := s.accounts[id]
		if a.CustomerID == customerID {
			cp := *a
			out = append(out, &cp)
		}
	}
	return out, nil
}

// UpdateAccount applies a partial update. The update carries no balance field;
// balances change only through AdjustBalances.
func (s *MemoryStore) UpdateAccount(ctx context.Context, id string, upd store.AccountUpdate) (*bank.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.accounts[id]
	if !ok {
		return nil, bank.ErrNotFound
	}
	if upd.AccountNumber != nil && *upd.AccountNumber != a.AccountNumber {
		if _, taken := s.accountNumber[*upd.AccountNumber]; taken {
			return nil, bank.ErrConflict
		}
		delete(s.accountNumber, a.AccountNumber)
		a.AccountNumber = *upd.AccountNumber
		s.accountNumber[a.AccountNumber] = id
	}
	if upd.BranchID != nil {
		if _, ok := s.branches[*upd.BranchID]; !ok {
			return nil, bank.ErrNotFound
		}
		a.BranchID = *upd.BranchID
	}
	cp := *a
	return &cp, nil
}

// DeleteAccount removes the account record.
func (s *MemoryStore) DeleteAccount(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.accounts[id]
	if !ok {
		return bank.ErrNotFound
	}
	delete(s.accountNumber, a.AccountNumber)
	delete(s.accounts, id)
	s.accountOrder = remove(s.accountOrder, id)
	return nil
}

// AccountExists reports whether the account id resolves.
func (s *MemoryStore) AccountExists(ctx context.Context, id string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.accounts[id]
	return ok, nil
}

// AdjustBalances applies a batch of signed deltas under one mutex hold, so a
// transfer's debit and credit become visible together: a concurrent Snapshot
// or GetAccount sees either both halves or neither. The caller (the ledger)
// is responsible for serializing adjustments per account.
func (s *MemoryStore) AdjustBalances(ctx context.Context, deltas []store.BalanceDelta) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, d := range deltas {
		if _, ok := s.accounts[d.AccountID]; !ok {
			return bank.ErrNotFound
		}
	}
	for _, d := range deltas {
		a := s.accounts[d.AccountID]
		a.Balance = a.Balance.Add(d.Amount)
	}
	return nil
}

// CreateTransaction stores a new transaction record.
func (s *MemoryStore) CreateTransaction(ctx context.Context, t *bank.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.transactions[t.ID]; exists {
		return bank.ErrConflict
	}
	cp := *t
	s.transactions[t.ID] = &cp
	s.transactionOrder = append(s.transactionOrder, t.ID)
	return nil
}

// GetTransaction returns a copy of the transaction with the given id.
func (s *MemoryStore) GetTransaction(ctx context.Context, id string) (*bank.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.transactions[id]
	if !ok {
		return nil, bank.ErrNotFound
	}
	cp := *t
	return &cp, nil
}

// ListTransactions returns all transactions in commit order.
func (s *MemoryStore) ListTransactions(ctx context.Context) ([]*bank.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*bank.Transaction, 0, len(s.transactionOrder))
	for _, id := range s.transactionOrder {
		cp := *s.transactions[id]
		out = append(out, &cp)
	}
	return out, nil
}

// ListTransactionsByAccounts returns transactions where any of the given
// accounts appears as source or recipient, in commit order.
func (s *MemoryStore) ListTransactionsByAccounts(ctx context.Context, accountIDs []string) ([]*bank.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	wanted := make(map[string]struct{}, len(accountIDs))
	for _, id := range accountIDs {
		wanted[id] = struct{}{}
	}

	var out []*bank.Transaction
	for _, id := range s.transactionOrder {
		t := s.transactions[id]
		_, src := wanted[t.AccountID]
		_, dst := wanted[t.RecipientID]
		if src || dst {
			cp := *t
			out = append(out, &cp)
		}
	}
	return out, nil
}

// DeleteTransaction removes a transaction record. Only the ledger's
// compensation path uses this; committed history is otherwise immutable.
func (s *MemoryStore) DeleteTransaction(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.transactions[id]; !ok {
		return bank.ErrNotFound
	}
	delete(s.transactions, id)
	s.transactionOrder = remove(s.transactionOrder, id)
	return nil
}

// Snapshot copies every collection under one read lock, so the result is a
// single consistent point-in-time view.
func (s *MemoryStore) Snapshot(ctx context.Context) (*bank.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := &bank.Snapshot{
		Customers:    make([]*bank.Customer, 0, len(s.customerOrder)),
		Branches:     make([]*bank.Branch, 0, len(s.branchOrder)),
		Accounts:     make([]*bank.Account, 0, len(s.accountOrder)),
		Transactions: make([]*bank.Transaction, 0, len(s.transactionOrder)),
	}
	for _, id := range s.customerOrder {
		cp := *s.customers[id]
		snap.Customers = append(snap.Customers, &cp)
	}
	for _, id := range s.branchOrder {
		cp := *s.branches[id]
		snap.Branches = append(snap.Branches, &cp)
	}
	for _, id := range s.accountOrder {
		cp := *s.accounts[id]
		snap.Accounts = append(snap.Accounts, &cp)
	}
	for _, id := range s.transactionOrder {
		cp := *s.transactions[id]
		snap.Transactions = append(snap.Transactions, &cp)
	}
	return snap, nil
}

// Close releases nothing for the in-memory store; it satisfies store.Store.
func (s *MemoryStore) Close() error {
	return nil
}

func remove(ids []string, id string) []string {
	for i, v := range ids {
		if v == id {
			return append(ids[:i], ids[i+1:]...)
		}
	}
	return ids
}

func filter(ids []string, keep func(string) bool) []string {
	out := ids[:0]
	for _, id := range ids {
		if keep(id) {
			out = append(out, id)
		}
	}
	return out
}

var _ store.Store = (*MemoryStore)(nil)
