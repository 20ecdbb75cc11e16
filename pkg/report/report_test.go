package report

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"bankledger/pkg/bank"
	"bankledger/pkg/store"
	"bankledger/pkg/store/memory"
)

type fixture struct {
	store  *memory.MemoryStore
	engine *Engine
	branch *bank.Branch
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	s := memory.NewMemoryStore()
	br := &bank.Branch{
		ID:          bank.NewID(),
		Name:        "downtown",
		Address:     bank.Address{StreetAddress: "2 Bank St", City: "Metropolis", State: "NY", PostalCode: "10002"},
		ContactInfo: bank.ContactInfo{PhoneNumbers: []string{"555-0200"}, Email: "downtown@example.com"},
	}
	if err := s.CreateBranch(context.Background(), br); err != nil {
		t.Fatalf("CreateBranch failed: %v", err)
	}
	return &fixture{store: s, engine: NewEngine(s, nil), branch: br}
}

func (f *fixture) addCustomer(t *testing.T, name string) *bank.Customer {
	t.Helper()
	c := &bank.Customer{
		ID:          bank.NewID(),
		FirstName:   name,
		LastName:    "Test",
		DateOfBirth: time.Date(1990, 1, 1, 0, 0, 0, 0, time.UTC),
		ContactInfo: bank.ContactInfo{PhoneNumbers: []string{"555-0100"}, Email: name + "@example.com"},
		Address:     bank.Address{StreetAddress: "1 Main St", City: "Metropolis", State: "NY", PostalCode: "10001"},
	}
	if err := f.store.CreateCustomer(context.Background(), c); err != nil {
		t.Fatalf("CreateCustomer failed: %v", err)
	}
	return c
}

var accountSeq int

func (f *fixture) addAccount(t *testing.T, customerID, balance string) *bank.Account {
	t.Helper()
	accountSeq++
	a := &bank.Account{
		ID:            bank.NewID(),
		AccountNumber: fmt.Sprintf("AN-%d", accountSeq),
		CustomerID:    customerID,
		BranchID:      f.branch.ID,
		Balance:       decimal.Zero,
		OpeningDate:   time.Now(),
	}
	if err := f.store.CreateAccount(context.Background(), a); err != nil {
		t.Fatalf("CreateAccount failed: %v", err)
	}
	if err := f.store.AdjustBalances(context.Background(), []store.BalanceDelta{{AccountID: a.ID, Amount: decimal.RequireFromString(balance)}}); err != nil {
		t.Fatalf("AdjustBalances failed: %v", err)
	}
	return a
}

func (f *fixture) addTransactions(t *testing.T, accountID string, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		tx := &bank.Transaction{
			ID:        bank.NewID(),
			AccountID: accountID,
			Type:      bank.Deposit,
			Amount:    decimal.NewFromInt(1),
			Timestamp: time.Now(),
		}
		if err := f.store.CreateTransaction(context.Background(), tx); err != nil {
			t.Fatalf("CreateTransaction failed: %v", err)
		}
	}
}

func TestEngine_TotalBalance(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	cust := f.addCustomer(t, "ada")
	f.addAccount(t, cust.ID, "30")
	f.addAccount(t, cust.ID, "-10")
	f.addAccount(t, cust.ID, "5")

	got, err := f.engine.TotalBalance(ctx, cust.ID)
	if err != nil {
		t.Fatalf("TotalBalance failed: %v", err)
	}
	if !got.TotalBalance.Equal(decimal.NewFromInt(25)) {
		t.Errorf("expected total 25, got %s", got.TotalBalance)
	}
	if got.Email != "ada@example.com" {
		t.Errorf("expected customer identity in result, got %q", got.Email)
	}
}

func TestEngine_TotalBalance_NoAccounts(t *testing.T) {
	f := newFixture(t)
	cust := f.addCustomer(t, "empty")

	got, err := f.engine.TotalBalance(context.Background(), cust.ID)
	if err != nil {
		t.Fatalf("TotalBalance failed: %v", err)
	}
	if !got.TotalBalance.Equal(decimal.Zero) {
		t.Errorf("expected zero total for accountless customer, got %s", got.TotalBalance)
	}
}

func TestEngine_TotalBalance_UnknownCustomer(t *testing.T) {
	f := newFixture(t)
	_, err := f.engine.TotalBalance(context.Background(), "missing")
	if !bank.IsNotFound(err) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestEngine_BranchAccountCounts_IncludesEmptyBranches(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	empty := &bank.Branch{
		ID:          bank.NewID(),
		Name:        "uptown",
		Address:     bank.Address{StreetAddress: "9 High St", City: "Metropolis", State: "NY", PostalCode: "10009"},
		ContactInfo: bank.ContactInfo{PhoneNumbers: []string{"555-0300"}, Email: "uptown@example.com"},
	}
	if err := f.store.CreateBranch(ctx, empty); err != nil {
		t.Fatalf("CreateBranch failed: %v", err)
	}

	cust := f.addCustomer(t, "ada")
	f.addAccount(t, cust.ID, "0")
	f.addAccount(t, cust.ID, "0")

	got, err := f.engine.BranchAccountCounts(ctx)
	if err != nil {
		t.Fatalf("BranchAccountCounts failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 branches, got %d", len(got))
	}
	if got[0].BranchName != "downtown" || got[0].TotalAccounts != 2 {
		t.Errorf("unexpected first branch: %+v", got[0])
	}
	if got[1].BranchName != "uptown" || got[1].TotalAccounts != 0 {
		t.Errorf("empty branch must appear with zero count: %+v", got[1])
	}
}

func TestEngine_TopByTransactions_TiesAtMax(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	c1 := f.addCustomer(t, "first")
	c2 := f.addCustomer(t, "second")
	c3 := f.addCustomer(t, "third")

	a1 := f.addAccount(t, c1.ID, "0")
	a2 := f.addAccount(t, c2.ID, "0")
	a3 := f.addAccount(t, c3.ID, "0")

	f.addTransactions(t, a1.ID, 5)
	f.addTransactions(t, a2.ID, 5)
	f.addTransactions(t, a3.ID, 3)

	got, err := f.engine.TopByTransactions(ctx)
	if err != nil {
		t.Fatalf("TopByTransactions failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected the two tied customers, got %d", len(got))
	}
	if got[0].CustomerID != c1.ID || got[1].CustomerID != c2.ID {
		t.Errorf("ties must keep creation order, got [%s %s]", got[0].FirstName, got[1].FirstName)
	}
	if got[0].Transactions != 5 {
		t.Errorf("expected count 5, got %d", got[0].Transactions)
	}
}

func TestEngine_TopByTransactions_CountsRecipientSide(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	sender := f.addCustomer(t, "sender")
	receiver := f.addCustomer(t, "receiver")
	src := f.addAccount(t, sender.ID, "100")
	dst := f.addAccount(t, receiver.ID, "0")

	// One transfer counts once for each side's owner.
	tx := &bank.Transaction{
		ID:          bank.NewID(),
		AccountID:   src.ID,
		RecipientID: dst.ID,
		Type:        bank.Transfer,
		Amount:      decimal.NewFromInt(10),
		Timestamp:   time.Now(),
	}
	if err := f.store.CreateTransaction(ctx, tx); err != nil {
		t.Fatalf("CreateTransaction failed: %v", err)
	}

	got, err := f.engine.TopByTransactions(ctx)
	if err != nil {
		t.Fatalf("TopByTransactions failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("both customers should be tied at 1, got %d entries", len(got))
	}
}

// ctxStore fails Snapshot when the caller's context is already done, the way a
// database-backed store would.
type ctxStore struct {
	store.Store
}

func (c *ctxStore) Snapshot(ctx context.Context) (*bank.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return c.Store.Snapshot(ctx)
}

func TestEngine_TotalBalance_DetachedFromCallerContext(t *testing.T) {
	f := newFixture(t)
	cust := f.addCustomer(t, "ada")
	f.addAccount(t, cust.ID, "40")

	engine := NewEngine(&ctxStore{Store: f.store}, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// The shared snapshot read must not inherit one caller's cancellation.
	got, err := engine.TotalBalance(ctx, cust.ID)
	if err != nil {
		t.Fatalf("TotalBalance failed under cancelled caller context: %v", err)
	}
	if !got.TotalBalance.Equal(decimal.NewFromInt(40)) {
		t.Errorf("expected total 40, got %s", got.TotalBalance)
	}
}

func TestEngine_TopByTransactions_NoCustomers(t *testing.T) {
	f := newFixture(t)
	got, err := f.engine.TopByTransactions(context.Background())
	if err != nil {
		t.Fatalf("TopByTransactions failed: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected empty result, got %d", len(got))
	}
}
