// Package postgres provides the PostgreSQL Store backend on database/sql.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"bankledger/pkg/bank"
	"bankledger/pkg/store"
)

// uniqueViolation is the PostgreSQL error code for a unique constraint breach.
const uniqueViolation = "23505"

// PostgresStore implements store.Store on a pooled PostgreSQL connection.
type PostgresStore struct {
	db *sql.DB
}

// Config holds PostgreSQL connection configuration.
type Config struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
}

// DefaultConfig returns default PostgreSQL configuration.
func DefaultConfig() Config {
	return Config{
		Host:     "localhost",
		Port:     5432,
		User:     "postgres",
		Password: "postgres",
		Database: "bankledger",
		SSLMode:  "disable",
	}
}

// NewPostgresStore opens a connection pool, verifies connectivity and creates
// the schema if it does not exist yet.
func NewPostgresStore(cfg Config) (*PostgresStore, error) {
	connStr := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Database, cfg.SSLMode,
	)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres connection: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}

	s := &PostgresStore{db: db}
	if err := s.initTables(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to init tables: %w", err)
	}
	return s, nil
}

func (s *PostgresStore) initTables(ctx context.Context) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS customers (
			id TEXT PRIMARY KEY,
			first_name TEXT NOT NULL,
			last_name TEXT NOT NULL,
			date_of_birth TIMESTAMP WITH TIME ZONE NOT NULL,
			phone_numbers TEXT[] NOT NULL,
			email TEXT NOT NULL,
			street_address TEXT NOT NULL,
			city TEXT NOT NULL,
			state TEXT NOT NULL,
			postal_code TEXT NOT NULL,
			seq BIGSERIAL
		)`,
		`CREATE TABLE IF NOT EXISTS branches (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			phone_numbers TEXT[] NOT NULL,
			email TEXT NOT NULL,
			street_address TEXT NOT NULL,
			city TEXT NOT NULL,
			state TEXT NOT NULL,
			postal_code TEXT NOT NULL,
			seq BIGSERIAL
		)`,
		`CREATE TABLE IF NOT EXISTS accounts (
			id TEXT PRIMARY KEY,
			account_number TEXT NOT NULL UNIQUE,
			customer_id TEXT NOT NULL REFERENCES customers(id),
			branch_id TEXT NOT NULL,
			balance NUMERIC(19,4) NOT NULL DEFAULT 0,
			opening_date TIMESTAMP WITH TIME ZONE NOT NULL,
			seq BIGSERIAL
		)`,
		`CREATE TABLE IF NOT EXISTS transactions (
			id TEXT PRIMARY KEY,
			account_id TEXT NOT NULL,
			recipient_id TEXT,
			type TEXT NOT NULL,
			amount NUMERIC(19,4) NOT NULL,
			timestamp TIMESTAMP WITH TIME ZONE NOT NULL,
			description TEXT,
			seq BIGSERIAL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_accounts_customer_id ON accounts(customer_id)`,
		`CREATE INDEX IF NOT EXISTS idx_accounts_branch_id ON accounts(branch_id)`,
		`CREATE INDEX IF NOT EXISTS idx_transactions_account_id ON transactions(account_id)`,
		`CREATE INDEX IF NOT EXISTS idx_transactions_recipient_id ON transactions(recipient_id)`,
	}

	for _, query := range queries {
		if _, err := s.db.ExecContext(ctx, query); err != nil {
			return err
		}
	}
	return nil
}

// translate maps driver errors onto the domain taxonomy.
func translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return bank.ErrNotFound
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && string(pqErr.Code) == uniqueViolation {
		return bank.ErrConflict
	}
	return err
}

// CreateCustomer stores a new customer record.
func (s *PostgresStore) CreateCustomer(ctx context.Context, c *bank.Customer) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO customers (id, first_name, last_name, date_of_birth, phone_numbers, email,
			street_address, city, state, postal_code)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		c.ID, c.FirstName, c.LastName, c.DateOfBirth, pq.Array(c.ContactInfo.PhoneNumbers),
		c.ContactInfo.Email, c.Address.StreetAddress, c.Address.City, c.Address.State, c.Address.PostalCode,
	)
	if err != nil {
		return fmt.Errorf("create customer: %w", translate(err))
	}
	return nil
}

func scanCustomer(row interface{ Scan(...any) error }) (*bank.Customer, error) {
	var c bank.Customer
	var phones pq.StringArray
	err := row.Scan(&c.ID, &c.FirstName, &c.LastName, &c.DateOfBirth, &phones, &c.ContactInfo.Email,
		&c.Address.StreetAddress, &c.Address.City, &c.Address.State, &c.Address.PostalCode)
	if err != nil {
		return nil, err
	}
	c.ContactInfo.PhoneNumbers = phones
	return &c, nil
}

const customerColumns = `id, first_name, last_name, date_of_birth, phone_numbers, email,
	street_address, city, state, postal_code`

// GetCustomer returns the customer with the given id.
func (s *PostgresStore) GetCustomer(ctx context.Context, id string) (*bank.Customer, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+customerColumns+` FROM customers WHERE id = $1`, id)
	c, err := scanCustomer(row)
	if err != nil {
		return nil, translate(err)
	}
	return c, nil
}

// ListCustomers returns all customers in creation order.
func (s *PostgresStore) ListCustomers(ctx context.Context) ([]*bank.Customer, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+customerColumns+` FROM customers ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("list customers: %w", err)
	}
	defer rows.Close()

	var out []*bank.Customer
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, fmt.Errorf("scan customer: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// UpdateCustomer applies a partial update and returns the updated record.
func (s *PostgresStore) UpdateCustomer(ctx context.Context, id string, upd store.CustomerUpdate) (*bank.Customer, error) {
	c, err := s.GetCustomer(ctx, id)
	if err != nil {
		return nil, err
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
	_, err = s.db.ExecContext(ctx, `
		UPDATE customers SET first_name = $2, last_name = $3, phone_numbers = $4, email = $5,
			street_address = $6, city = $7, state = $8, postal_code = $9
		WHERE id = $1`,
		id, c.FirstName, c.LastName, pq.Array(c.ContactInfo.PhoneNumbers), c.ContactInfo.Email,
		c.Address.StreetAddress, c.Address.City, c.Address.State, c.Address.PostalCode,
	)
	if err != nil {
		return nil, fmt.Errorf("update customer: %w", translate(err))
	}
	return c, nil
}

// DeleteCustomer removes the customer and its accounts in one database
// transaction, so the cascade is atomic.
func (s *PostgresStore) DeleteCustomer(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("delete customer: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM accounts WHERE customer_id = $1`, id); err != nil {
		return fmt.Errorf("cascade accounts: %w", err)
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM customers WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete customer: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return bank.ErrNotFound
	}
	return tx.Commit()
}

// CustomerExists reports whether the customer id resolves.
func (s *PostgresStore) CustomerExists(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM customers WHERE id = $1)`, id).Scan(&exists)
	return exists, err
}

// CreateBranch stores a new branch record.
func (s *PostgresStore) CreateBranch(ctx context.Context, b *bank.Branch) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO branches (id, name, phone_numbers, email, street_address, city, state, postal_code)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		b.ID, b.Name, pq.Array(b.ContactInfo.PhoneNumbers), b.ContactInfo.Email,
		b.Address.StreetAddress, b.Address.City, b.Address.State, b.Address.PostalCode,
	)
	if err != nil {
		return fmt.Errorf("create branch: %w", translate(err))
	}
	return nil
}

func scanBranch(row interface{ Scan(...any) error }) (*bank.Branch, error) {
	var b bank.Branch
	var phones pq.StringArray
	err := row.Scan(&b.ID, &b.Name, &phones, &b.ContactInfo.Email,
		&b.Address.StreetAddress, &b.Address.City, &b.Address.State, &b.Address.PostalCode)
	if err != nil {
		return nil, err
	}
	b.ContactInfo.PhoneNumbers = phones
	return &b, nil
}

const branchColumns = `id, name, phone_numbers, email, street_address, city, state, postal_code`

// GetBranch returns the branch with the given id.
func (s *PostgresStore) GetBranch(ctx context.Context, id string) (*bank.Branch, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+branchColumns+` FROM branches WHERE id = $1`, id)
	b, err := scanBranch(row)
	if err != nil {
		return nil, translate(err)
	}
	return b, nil
}

// ListBranches returns all branches in creation order.
func (s *PostgresStore) ListBranches(ctx context.Context) ([]*bank.Branch, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+branchColumns+` FROM branches ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("list branches: %w", err)
	}
	defer rows.Close()

	var out []*bank.Branch
	for rows.Next() {
		b, err := scanBranch(rows)
		if err != nil {
			return nil, fmt.Errorf("scan branch: %w", err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// UpdateBranch applies a partial update and returns the updated record.
func (s *PostgresStore) UpdateBranch(ctx context.Context, id string, upd store.BranchUpdate) (*bank.Branch, error) {
	b, err := s.GetBranch(ctx, id)
	if err != nil {
		return nil, err
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
	_, err = s.db.ExecContext(ctx, `
		UPDATE branches SET name = $2, phone_numbers = $3, email = $4,
			street_address = $5, city = $6, state = $7, postal_code = $8
		WHERE id = $1`,
		id, b.Name, pq.Array(b.ContactInfo.PhoneNumbers), b.ContactInfo.Email,
		b.Address.StreetAddress, b.Address.City, b.Address.State, b.Address.PostalCode,
	)
	if err != nil {
		return nil, fmt.Errorf("update branch: %w", translate(err))
	}
	return b, nil
}

// DeleteBranch removes the branch record.
func (s *PostgresStore) DeleteBranch(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM branches WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete branch: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return bank.ErrNotFound
	}
	return nil
}

// BranchExists reports whether the branch id resolves.
func (s *PostgresStore) BranchExists(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM branches WHERE id = $1)`, id).Scan(&exists)
	return exists, err
}

// CreateAccount stores a new account after verifying its references.
func (s *PostgresStore) CreateAccount(ctx context.Context, a *bank.Account) error {
	if ok, err := s.CustomerExists(ctx, a.CustomerID); err != nil {
		return err
	} else if !ok {
		return bank.ErrNotFound
	}
	if ok, err := s.BranchExists(ctx, a.BranchID); err != nil {
		return err
	} else if !ok {
		return bank.ErrNotFound
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO accounts (id, account_number, customer_id, branch_id, balance, opening_date)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		a.ID, a.AccountNumber, a.CustomerID, a.BranchID, a.Balance.String(), a.OpeningDate,
	)
	if err != nil {
		return fmt.Errorf("create account: %w", translate(err))
	}
	return nil
}

func scanAccount(row interface{ Scan(...any) error }) (*bank.Account, error) {
	var a bank.Account
	var balance string
	err := row.Scan(&a.ID, &a.AccountNumber, &a.CustomerID, &a.BranchID, &balance, &a.OpeningDate)
	if err != nil {
		return nil, err
	}
	a.Balance, err = decimal.NewFromString(balance)
	if err != nil {
		return nil, fmt.Errorf("parse balance: %w", err)
	}
	return &a, nil
}

const accountColumns = `id, account_number, customer_id, branch_id, balance, opening_date`

// GetAccount returns the account with the given id.
func (s *PostgresStore) GetAccount(ctx context.Context, id string) (*bank.Account, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+accountColumns+` FROM accounts WHERE id = $1`, id)
	a, err := scanAccount(row)
	if err != nil {
		return nil, translate(err)
	}
	return a, nil
}

func (s *PostgresStore) queryAccounts(ctx context.Context, query string, args ...any) ([]*bank.Account, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	defer rows.Close()

	var out []*bank.Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("scan account: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// ListAccounts returns all accounts in creation order.
func (s *PostgresStore) ListAccounts(ctx context.Context) ([]*bank.Account, error) {
	return s.queryAccounts(ctx, `SELECT `+accountColumns+` FROM accounts ORDER BY seq`)
}

// ListAccountsByCustomer returns the customer's accounts in creation order.
func (s *PostgresStore) ListAccountsByCustomer(ctx context.Context, customerID string) ([]*bank.Account, error) {
	return s.queryAccounts(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE customer_id = $1 ORDER BY seq`, customerID)
}

// UpdateAccount applies a partial update; balance is not an updatable column
// on this path.
func (s *PostgresStore) UpdateAccount(ctx context.Context, id string, upd store.AccountUpdate) (*bank.Account, error) {
	a, err := s.GetAccount(ctx, id)
	if err != nil {
		return nil, err
	}
	if upd.AccountNumber != nil {
		a.AccountNumber = *upd.AccountNumber
	}
	if upd.BranchID != nil {
		if ok, err := s.BranchExists(ctx, *upd.BranchID); err != nil {
			return nil, err
		} else if !ok {
			return nil, bank.ErrNotFound
		}
		a.BranchID = *upd.BranchID
	}
	_, err = s.db.ExecContext(ctx,
		`UPDATE accounts SET account_number = $2, branch_id = $3 WHERE id = $1`,
		id, a.AccountNumber, a.BranchID,
	)
	if err != nil {
		return nil, fmt.Errorf("update account: %w", translate(err))
	}
	return a, nil
}

// DeleteAccount removes the account record.
func (s *PostgresStore) DeleteAccount(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM accounts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete account: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return bank.ErrNotFound
	}
	return nil
}

// AccountExists reports whether the account id resolves.
func (s *PostgresStore) AccountExists(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM accounts WHERE id = $1)`, id).Scan(&exists)
	return exists, err
}

// AdjustBalances applies a batch of signed deltas inside one database
// transaction, so a transfer's debit and credit commit together and a
// concurrent snapshot never observes half of the batch.
func (s *PostgresStore) AdjustBalances(ctx context.Context, deltas []store.BalanceDelta) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("adjust balances: %w", err)
	}
	defer tx.Rollback()

	for _, d := range deltas {
		res, err := tx.ExecContext(ctx,
			`UPDATE accounts SET balance = balance + $2 WHERE id = $1`, d.AccountID, d.Amount.String())
		if err != nil {
			return fmt.Errorf("adjust balance for account %s: %w", d.AccountID, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return bank.ErrNotFound
		}
	}
	return tx.Commit()
}

// CreateTransaction stores a new transaction record.
func (s *PostgresStore) CreateTransaction(ctx context.Context, t *bank.Transaction) error {
	recipient := sql.NullString{String: t.RecipientID, Valid: t.RecipientID != ""}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO transactions (id, account_id, recipient_id, type, amount, timestamp, description)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		t.ID, t.AccountID, recipient, string(t.Type), t.Amount.String(), t.Timestamp, t.Description,
	)
	if err != nil {
		return fmt.Errorf("create transaction: %w", translate(err))
	}
	return nil
}

func scanTransaction(row interface{ Scan(...any) error }) (*bank.Transaction, error) {
	var t bank.Transaction
	var recipient sql.NullString
	var txType, amount string
	err := row.Scan(&t.ID, &t.AccountID, &recipient, &txType, &amount, &t.Timestamp, &t.Description)
	if err != nil {
		return nil, err
	}
	t.RecipientID = recipient.String
	t.Type = bank.TransactionType(txType)
	t.Amount, err = decimal.NewFromString(amount)
	if err != nil {
		return nil, fmt.Errorf("parse amount: %w", err)
	}
	return &t, nil
}

const transactionColumns = `id, account_id, recipient_id, type, amount, timestamp, description`

// GetTransaction returns the transaction with the given id.
func (s *PostgresStore) GetTransaction(ctx context.Context, id string) (*bank.Transaction, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+transactionColumns+` FROM transactions WHERE id = $1`, id)
	t, err := scanTransaction(row)
	if err != nil {
		return nil, translate(err)
	}
	return t, nil
}

func (s *PostgresStore) queryTransactions(ctx context.Context, query string, args ...any) ([]*bank.Transaction, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var out []*bank.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// ListTransactions returns all transactions in commit order.
func (s *PostgresStore) ListTransactions(ctx context.Context) ([]*bank.Transaction, error) {
	return s.queryTransactions(ctx, `SELECT `+transactionColumns+` FROM transactions ORDER BY seq`)
}

// ListTransactionsByAccounts returns transactions touching any of the given
// accounts as source or recipient, in commit order.
func (s *PostgresStore) ListTransactionsByAccounts(ctx context.Context, accountIDs []string) ([]*bank.Transaction, error) {
	return s.queryTransactions(ctx, `
		SELECT `+transactionColumns+` FROM transactions
		WHERE account_id = ANY($1) OR recipient_id = ANY($1)
		ORDER BY seq`, pq.Array(accountIDs))
}

// DeleteTransaction removes a transaction record (compensation path only).
func (s *PostgresStore) DeleteTransaction(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM transactions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return bank.ErrNotFound
	}
	return nil
}

// Snapshot reads all four collections inside one repeatable-read read-only
// transaction, so the copy is a single consistent point-in-time view.
func (s *PostgresStore) Snapshot(ctx context.Context) (*bank.Snapshot, error) {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true})
	if err != nil {
		return nil, fmt.Errorf("snapshot: %w", err)
	}
	defer tx.Rollback()

	snap := &bank.Snapshot{}

	rows, err := tx.QueryContext(ctx, `SELECT `+customerColumns+` FROM customers ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("snapshot customers: %w", err)
	}
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		snap.Customers = append(snap.Customers, c)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	rows, err = tx.QueryContext(ctx, `SELECT `+branchColumns+` FROM branches ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("snapshot branches: %w", err)
	}
	for rows.Next() {
		b, err := scanBranch(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		snap.Branches = append(snap.Branches, b)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	rows, err = tx.QueryContext(ctx, `SELECT `+accountColumns+` FROM accounts ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("snapshot accounts: %w", err)
	}
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		snap.Accounts = append(snap.Accounts, a)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	rows, err = tx.QueryContext(ctx, `SELECT `+transactionColumns+` FROM transactions ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("snapshot transactions: %w", err)
	}
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		snap.Transactions = append(snap.Transactions, t)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return snap, tx.Commit()
}

// Close closes the underlying connection pool.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}

var _ store.Store = (*PostgresStore)(nil)
