package memory

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"bankledger/pkg/bank"
	"bankledger/pkg/store"
)

func newCustomer(first, last string) *bank.Customer {
	return &bank.Customer{
		ID:          bank.NewID(),
		FirstName:   first,
		LastName:    last,
		DateOfBirth: time.Date(1990, 1, 1, 0, 0, 0, 0, time.UTC),
		ContactInfo: bank.ContactInfo{PhoneNumbers: []string{"555-0100"}, Email: first + "@example.com"},
		Address:     bank.Address{StreetAddress: "1 Main St", City: "Metropolis", State: "NY", PostalCode: "10001"},
	}
}

func newBranch(name string) *bank.Branch {
	return &bank.Branch{
		ID:          bank.NewID(),
		Name:        name,
		Address:     bank.Address{StreetAddress: "2 Bank St", City: "Metropolis", State: "NY", PostalCode: "10002"},
		ContactInfo: bank.ContactInfo{PhoneNumbers: []string{"555-0200"}, Email: name + "@example.com"},
	}
}

func newAccount(customerID, branchID string) *bank.Account {
	now := time.Now()
	return &bank.Account{
		ID:            bank.NewID(),
		AccountNumber: bank.NewAccountNumber(now),
		CustomerID:    customerID,
		BranchID:      branchID,
		Balance:       decimal.Zero,
		OpeningDate:   now,
	}
}

func seed(t *testing.T, s *MemoryStore) (*bank.Customer, *bank.Branch) {
	t.Helper()
	ctx := context.Background()

	cust := newCustomer("Ada", "Lovelace")
	if err := s.CreateCustomer(ctx, cust); err != nil {
		t.Fatalf("CreateCustomer failed: %v", err)
	}
	br := newBranch("downtown")
	if err := s.CreateBranch(ctx, br); err != nil {
		t.Fatalf("CreateBranch failed: %v", err)
	}
	return cust, br
}

func TestMemoryStore_CreateAccount_ReferentialChecks(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	cust, br := seed(t, s)

	// Dangling customer reference
	acc := newAccount("no-such-customer", br.ID)
	if err := s.CreateAccount(ctx, acc); !bank.IsNotFound(err) {
		t.Errorf("expected ErrNotFound for dangling customer, got %v", err)
	}

	// Dangling branch reference
	acc = newAccount(cust.ID, "no-such-branch")
	if err := s.CreateAccount(ctx, acc); !bank.IsNotFound(err) {
		t.Errorf("expected ErrNotFound for dangling branch, got %v", err)
	}

	// Valid references
	acc = newAccount(cust.ID, br.ID)
	if err := s.CreateAccount(ctx, acc); err != nil {
		t.Fatalf("CreateAccount failed: %v", err)
	}

	// Duplicate account number
	dup := newAccount(cust.ID, br.ID)
	dup.AccountNumber = acc.AccountNumber
	if err := s.CreateAccount(ctx, dup); !bank.IsConflict(err) {
		t.Errorf("expected ErrConflict for duplicate account number, got %v", err)
	}
}

func TestMemoryStore_DeleteCustomer_Cascades(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	cust, br := seed(t, s)

	acc1 := newAccount(cust.ID, br.ID)
	acc2 := newAccount(cust.ID, br.ID)
	acc2.AccountNumber = acc1.AccountNumber + "x"
	for _, a := range []*bank.Account{acc1, acc2} {
		if err := s.CreateAccount(ctx, a); err != nil {
			t.Fatalf("CreateAccount failed: %v", err)
		}
	}

	// Another customer's account must survive the cascade.
	other := newCustomer("Grace", "Hopper")
	if err := s.CreateCustomer(ctx, other); err != nil {
		t.Fatalf("CreateCustomer failed: %v", err)
	}
	kept := newAccount(other.ID, br.ID)
	if err := s.CreateAccount(ctx, kept); err != nil {
		t.Fatalf("CreateAccount failed: %v", err)
	}

	if err := s.DeleteCustomer(ctx, cust.ID); err != nil {
		t.Fatalf("DeleteCustomer failed: %v", err)
	}

	for _, id := range []string{acc1.ID, acc2.ID} {
		if _, err := s.GetAccount(ctx, id); !bank.IsNotFound(err) {
			t.Errorf("expected cascade-deleted account %s, got %v", id, err)
		}
	}
	if _, err := s.GetAccount(ctx, kept.ID); err != nil {
		t.Errorf("unrelated account should survive cascade: %v", err)
	}

	// Freed account number can be reused.
	reuse := newAccount(other.ID, br.ID)
	reuse.AccountNumber = acc1.AccountNumber
	if err := s.CreateAccount(ctx, reuse); err != nil {
		t.Errorf("account number should be reusable after cascade: %v", err)
	}
}

func TestMemoryStore_UpdateAccount_NoBalanceField(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	cust, br := seed(t, s)

	acc := newAccount(cust.ID, br.ID)
	if err := s.CreateAccount(ctx, acc); err != nil {
		t.Fatalf("CreateAccount failed: %v", err)
	}
	if err := s.AdjustBalances(ctx, []store.BalanceDelta{{AccountID: acc.ID, Amount: decimal.NewFromInt(100)}}); err != nil {
		t.Fatalf("AdjustBalances failed: %v", err)
	}

	number := "99999"
	got, err := s.UpdateAccount(ctx, acc.ID, store.AccountUpdate{AccountNumber: &number})
	if err != nil {
		t.Fatalf("UpdateAccount failed: %v", err)
	}
	if got.AccountNumber != "99999" {
		t.Errorf("expected updated account number, got %s", got.AccountNumber)
	}
	if !got.Balance.Equal(decimal.NewFromInt(100)) {
		t.Errorf("update must not touch balance, got %s", got.Balance)
	}
}

func TestMemoryStore_AdjustBalances(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	cust, br := seed(t, s)

	acc := newAccount(cust.ID, br.ID)
	if err := s.CreateAccount(ctx, acc); err != nil {
		t.Fatalf("CreateAccount failed: %v", err)
	}

	if err := s.AdjustBalances(ctx, []store.BalanceDelta{{AccountID: acc.ID, Amount: decimal.RequireFromString("10.50")}}); err != nil {
		t.Fatalf("AdjustBalances failed: %v", err)
	}
	if err := s.AdjustBalances(ctx, []store.BalanceDelta{{AccountID: acc.ID, Amount: decimal.RequireFromString("-0.25")}}); err != nil {
		t.Fatalf("AdjustBalances failed: %v", err)
	}

	got, err := s.GetAccount(ctx, acc.ID)
	if err != nil {
		t.Fatalf("GetAccount failed: %v", err)
	}
	if want := decimal.RequireFromString("10.25"); !got.Balance.Equal(want) {
		t.Errorf("expected balance %s, got %s", want, got.Balance)
	}

	if err := s.AdjustBalances(ctx, []store.BalanceDelta{{AccountID: "missing", Amount: decimal.NewFromInt(1)}}); !bank.IsNotFound(err) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestMemoryStore_AdjustBalances_AllOrNothing(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	cust, br := seed(t, s)

	acc := newAccount(cust.ID, br.ID)
	if err := s.CreateAccount(ctx, acc); err != nil {
		t.Fatalf("CreateAccount failed: %v", err)
	}

	err := s.AdjustBalances(ctx, []store.BalanceDelta{
		{AccountID: acc.ID, Amount: decimal.NewFromInt(50)},
		{AccountID: "missing", Amount: decimal.NewFromInt(-50)},
	})
	if !bank.IsNotFound(err) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	got, err := s.GetAccount(ctx, acc.ID)
	if err != nil {
		t.Fatalf("GetAccount failed: %v", err)
	}
	if !got.Balance.Equal(decimal.Zero) {
		t.Errorf("failed batch applied a delta, balance %s", got.Balance)
	}
}

func TestMemoryStore_ListTransactionsByAccounts(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	cust, br := seed(t, s)

	src := newAccount(cust.ID, br.ID)
	dst := newAccount(cust.ID, br.ID)
	dst.AccountNumber = src.AccountNumber + "x"
	for _, a := range []*bank.Account{src, dst} {
		if err := s.CreateAccount(ctx, a); err != nil {
			t.Fatalf("CreateAccount failed: %v", err)
		}
	}

	txs := []*bank.Transaction{
		{ID: "t1", AccountID: src.ID, Type: bank.Deposit, Amount: decimal.NewFromInt(5), Timestamp: time.Now()},
		{ID: "t2", AccountID: "elsewhere", RecipientID: dst.ID, Type: bank.Transfer, Amount: decimal.NewFromInt(3), Timestamp: time.Now()},
		{ID: "t3", AccountID: "elsewhere", Type: bank.Withdrawal, Amount: decimal.NewFromInt(2), Timestamp: time.Now()},
	}
	for _, tx := range txs {
		if err := s.CreateTransaction(ctx, tx); err != nil {
			t.Fatalf("CreateTransaction failed: %v", err)
		}
	}

	got, err := s.ListTransactionsByAccounts(ctx, []string{src.ID, dst.ID})
	if err != nil {
		t.Fatalf("ListTransactionsByAccounts failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 transactions, got %d", len(got))
	}
	if got[0].ID != "t1" || got[1].ID != "t2" {
		t.Errorf("expected commit order [t1 t2], got [%s %s]", got[0].ID, got[1].ID)
	}
}

func TestMemoryStore_Snapshot_IsACopy(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	cust, br := seed(t, s)

	acc := newAccount(cust.ID, br.ID)
	if err := s.CreateAccount(ctx, acc); err != nil {
		t.Fatalf("CreateAccount failed: %v", err)
	}

	snap, err := s.Snapshot(ctx)
	if err != nil {
		t.Fatalf("Snapshot failed: %v", err)
	}
	if len(snap.Customers) != 1 || len(snap.Branches) != 1 || len(snap.Accounts) != 1 {
		t.Fatalf("unexpected snapshot sizes: %d customers, %d branches, %d accounts",
			len(snap.Customers), len(snap.Branches), len(snap.Accounts))
	}

	// Mutating the store after the snapshot must not change the snapshot.
	if err := s.AdjustBalances(ctx, []store.BalanceDelta{{AccountID: acc.ID, Amount: decimal.NewFromInt(42)}}); err != nil {
		t.Fatalf("AdjustBalances failed: %v", err)
	}
	if !snap.Accounts[0].Balance.Equal(decimal.Zero) {
		t.Errorf("snapshot changed after store mutation: %s", snap.Accounts[0].Balance)
	}
}
