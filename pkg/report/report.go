// Package report computes the derived read-only views: total balance per
// customer, account counts per branch and the transaction-count leaderboard.
// Every query runs over one store snapshot, so it never mixes pre- and
// post-commit state.
package report

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/singleflight"

	"bankledger/pkg/bank"
	"bankledger/pkg/metrics"
	"bankledger/pkg/store"
)

// CustomerBalance is a customer identity with its summed account balance.
type CustomerBalance struct {
	CustomerID   string          `json:"customer_id"`
	FirstName    string          `json:"first_name"`
	LastName     string          `json:"last_name"`
	Email        string          `json:"email"`
	TotalBalance decimal.Decimal `json:"total_balance"`
}

// BranchAccounts is a branch with the number of accounts it holds.
type BranchAccounts struct {
	BranchID      string `json:"branch_id"`
	BranchName    string `json:"branch_name"`
	TotalAccounts int    `json:"total_accounts"`
}

// CustomerActivity is a customer with its transaction count.
type CustomerActivity struct {
	CustomerID   string `json:"customer_id"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	Email        string `json:"email"`
	Transactions int    `json:"transactions"`
}

// Engine answers aggregation queries. Identical concurrent queries collapse
// into one snapshot read via single-flight; the shared read runs detached from
// the initiating caller's context, so one caller cancelling cannot fail every
// query sharing the flight.
type Engine struct {
	store   store.Store
	metrics metrics.Collector
	sf      singleflight.Group
}

// NewEngine creates an aggregation engine over the given store.
func NewEngine(s store.Store, collector metrics.Collector) *Engine {
	if collector == nil {
		collector = metrics.NoOpCollector{}
	}
	return &Engine{store: s, metrics: collector}
}

// TotalBalance sums the balances of every account owned by the customer.
// A customer with no accounts yields zero; an unknown customer yields
// bank.ErrNotFound.
func (e *Engine) TotalBalance(ctx context.Context, customerID string) (*CustomerBalance, error) {
	start := time.Now()
	defer func() { e.metrics.RecordAggregate("total_balance", time.Since(start)) }()

	result, err, _ := e.sf.Do("total-balance:"+customerID, func() (interface{}, error) {
		snap, err := e.store.Snapshot(context.WithoutCancel(ctx))
		if err != nil {
			return nil, err
		}
		return totalBalance(snap, customerID)
	})
	if err != nil {
		return nil, err
	}
	return result.(*CustomerBalance), nil
}

func totalBalance(snap *bank.Snapshot, customerID string) (*CustomerBalance, error) {
	var cust *bank.Customer
	for _, c := range snap.Customers {
		if c.ID == customerID {
			cust = c
			break
		}
	}
	if cust == nil {
		return nil, bank.ErrNotFound
	}

	total := decimal.Zero
	for _, a := range snap.Accounts {
		if a.CustomerID == customerID {
			total = total.Add(a.Balance)
		}
	}
	return &CustomerBalance{
		CustomerID:   cust.ID,
		FirstName:    cust.FirstName,
		LastName:     cust.LastName,
		Email:        cust.ContactInfo.Email,
		TotalBalance: total,
	}, nil
}

// BranchAccountCounts returns every branch with its account count, including
// branches holding no accounts, in branch creation order.
func (e *Engine) BranchAccountCounts(ctx context.Context) ([]BranchAccounts, error) {
	start := time.Now()
	defer func() { e.metrics.RecordAggregate("branch_accounts", time.Since(start)) }()

	result, err, _ := e.sf.Do("branch-accounts", func() (interface{}, error) {
		snap, err := e.store.Snapshot(context.WithoutCancel(ctx))
		if err != nil {
			return nil, err
		}
		return branchAccountCounts(snap), nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]BranchAccounts), nil
}

func branchAccountCounts(snap *bank.Snapshot) []BranchAccounts {
	counts := make(map[string]int, len(snap.Branches))
	for _, a := range snap.Accounts {
		counts[a.BranchID]++
	}

	out := make([]BranchAccounts, 0, len(snap.Branches))
	for _, b := range snap.Branches {
		out = append(out, BranchAccounts{
			BranchID:      b.ID,
			BranchName:    b.Name,
			TotalAccounts: counts[b.ID],
		})
	}
	return out
}

// TopByTransactions returns every customer tied at the maximum transaction
// count, where a transaction counts for a customer when one of their accounts
// appears as source or recipient. Ties keep customer creation order; the
// result is empty only when there are no customers.
func (e *Engine) TopByTransactions(ctx context.Context) ([]CustomerActivity, error) {
	start := time.Now()
	defer func() { e.metrics.RecordAggregate("top_by_transactions", time.Since(start)) }()

	result, err, _ := e.sf.Do("top-by-transactions", func() (interface{}, error) {
		snap, err := e.store.Snapshot(context.WithoutCancel(ctx))
		if err != nil {
			return nil, err
		}
		return topByTransactions(snap), nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]CustomerActivity), nil
}

func topByTransactions(snap *bank.Snapshot) []CustomerActivity {
	if len(snap.Customers) == 0 {
		return []CustomerActivity{}
	}

	owner := make(map[string]string, len(snap.Accounts)) // account id -> customer id
	for _, a := range snap.Accounts {
		owner[a.ID] = a.CustomerID
	}

	counts := make(map[string]int, len(snap.Customers))
	for _, t := range snap.Transactions {
		credited := make(map[string]struct{}, 2)
		if cust, ok := owner[t.AccountID]; ok {
			credited[cust] = struct{}{}
		}
		if t.RecipientID != "" {
			if cust, ok := owner[t.RecipientID]; ok {
				credited[cust] = struct{}{}
			}
		}
		for cust := range credited {
			counts[cust]++
		}
	}

	max := 0
	for _, c := range snap.Customers {
		if counts[c.ID] > max {
			max = counts[c.ID]
		}
	}

	var out []CustomerActivity
	for _, c := range snap.Customers {
		if counts[c.ID] == max {
			out = append(out, CustomerActivity{
				CustomerID:   c.ID,
				FirstName:    c.FirstName,
				LastName:     c.LastName,
				Email:        c.ContactInfo.Email,
				Transactions: max,
			})
		}
	}
	return out
}
