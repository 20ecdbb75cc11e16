package bank

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionType identifies the monetary effect of a transaction.
type TransactionType string

const (
	// Deposit credits the source account.
	Deposit TransactionType = "deposit"
	// Withdrawal debits the source account.
	Withdrawal TransactionType = "withdrawal"
	// Transfer debits the source account and credits the recipient account.
	Transfer TransactionType = "transfer"
)

// Valid reports whether t is one of the known transaction types.
func (t TransactionType) Valid() bool {
	switch t {
	case Deposit, Withdrawal, Transfer:
		return true
	}
	return false
}

// Address is a postal address shared by customers and branches.
type Address struct {
	StreetAddress string `json:"street_address"`
	City          string `json:"city"`
	State         string `json:"state"`
	PostalCode    string `json:"postal_code"`
}

// Complete reports whether every address field is set.
func (a Address) Complete() bool {
	return a.StreetAddress != "" && a.City != "" && a.State != "" && a.PostalCode != ""
}

// ContactInfo holds phone numbers and an email address.
type ContactInfo struct {
	PhoneNumbers []string `json:"phone_numbers"`
	Email        string   `json:"email"`
}

// Complete reports whether there is at least one phone number and an email.
func (c ContactInfo) Complete() bool {
	return len(c.PhoneNumbers) > 0 && c.Email != ""
}

// Customer is a bank customer. Customers own zero or more accounts; deleting a
// customer removes its accounts as well.
type Customer struct {
	ID          string      `json:"id"`
	FirstName   string      `json:"first_name"`
	LastName    string      `json:"last_name"`
	DateOfBirth time.Time   `json:"date_of_birth"`
	ContactInfo ContactInfo `json:"contact_info"`
	Address     Address     `json:"address"`
}

// Validate checks the required identity fields and collects every missing one.
func (c *Customer) Validate() error {
	var missing []string
	if c.FirstName == "" {
		missing = append(missing, "first_name")
	}
	if c.LastName == "" {
		missing = append(missing, "last_name")
	}
	if c.DateOfBirth.IsZero() {
		missing = append(missing, "date_of_birth")
	}
	if !c.ContactInfo.Complete() {
		missing = append(missing, "contact_info")
	}
	if !c.Address.Complete() {
		missing = append(missing, "address")
	}
	if len(missing) > 0 {
		return &ValidationError{Missing: missing}
	}
	return nil
}

// Branch is a bank branch. Branches own zero or more accounts.
type Branch struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Address     Address     `json:"address"`
	ContactInfo ContactInfo `json:"contact_info"`
}

// Validate checks the required branch fields and collects every missing one.
func (b *Branch) Validate() error {
	var missing []string
	if b.Name == "" {
		missing = append(missing, "name")
	}
	if !b.Address.Complete() {
		missing = append(missing, "address")
	}
	if !b.ContactInfo.Complete() {
		missing = append(missing, "contact_info")
	}
	if len(missing) > 0 {
		return &ValidationError{Missing: missing}
	}
	return nil
}

// Account is a customer account held at a branch. Balance is only ever changed
// by the ledger as the effect of a committed transaction; the generic update
// path does not touch it.
type Account struct {
	ID            string          `json:"id"`
	AccountNumber string          `json:"account_number"`
	CustomerID    string          `json:"customer_id"`
	BranchID      string          `json:"branch_id"`
	Balance       decimal.Decimal `json:"balance"`
	OpeningDate   time.Time       `json:"opening_date"`
}

// Transaction is an immutable ledger record. RecipientID is set only for
// transfers. Once committed a transaction is history; corrections are made by
// committing a compensating transaction, never by editing the record.
type Transaction struct {
	ID          string          `json:"id"`
	AccountID   string          `json:"account_id"`
	RecipientID string          `json:"recipient_id,omitempty"`
	Type        TransactionType `json:"type"`
	Amount      decimal.Decimal `json:"amount"`
	Timestamp   time.Time       `json:"timestamp"`
	Description string          `json:"description,omitempty"`
}

// Snapshot is a self-consistent point-in-time copy of every entity collection,
// in stable creation order. Aggregations compute over a single snapshot so they
// never mix pre- and post-commit state.
type Snapshot struct {
	Customers    []*Customer
	Branches     []*Branch
	Accounts     []*Account
	Transactions []*Transaction
}

// NewID returns a fresh entity identifier.
func NewID() string {
	return uuid.New().String()
}

// NewAccountNumber derives an account number from the opening timestamp.
// Used when the creation request does not supply one; uniqueness is still
// enforced by the store.
func NewAccountNumber(openedAt time.Time) string {
	return fmt.Sprintf("%d", openedAt.UTC().UnixNano())
}
