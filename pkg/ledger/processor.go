// Package ledger implements the transaction commit path: validation, record
// persistence and balance mutation as one logical unit.
package ledger

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"bankledger/pkg/bank"
	"bankledger/pkg/logging"
	"bankledger/pkg/metrics"
	"bankledger/pkg/store"
)

// Config holds processor configuration.
type Config struct {
	// LockTimeout bounds the wait for per-account critical sections. A commit
	// that cannot acquire its locks in time fails with bank.ErrLockTimeout
	// and is safe to retry.
	LockTimeout time.Duration

	// Metrics receives commit observations. Defaults to a no-op collector.
	Metrics metrics.Collector

	// Logger for commit-path events. Defaults to the global logger.
	Logger *logging.Logger
}

// DefaultConfig returns sensible processor defaults.
func DefaultConfig() Config {
	return Config{
		LockTimeout: 5 * time.Second,
	}
}

// Processor orchestrates a transaction commit: acquire the implicated account
// locks in global order, validate, persist the record, apply the balance
// effect. Validation failure is a full no-op. The store applies balance deltas
// all-or-nothing, so a mutation failure after the record was persisted means no
// balance moved; compensation only has to remove the record, and the store
// never holds a transaction whose effect was not applied.
type Processor struct {
	store       store.Store
	validator   *Validator
	mutator     *Mutator
	locks       *accountLocks
	lockTimeout time.Duration
	metrics     metrics.Collector
	logger      *logging.Logger
}

// NewProcessor creates a processor over the given store.
func NewProcessor(s store.Store, config Config) *Processor {
	if config.LockTimeout <= 0 {
		config.LockTimeout = DefaultConfig().LockTimeout
	}
	if config.Metrics == nil {
		config.Metrics = metrics.NoOpCollector{}
	}
	if config.Logger == nil {
		config.Logger = logging.Global()
	}
	return &Processor{
		store:       s,
		validator:   NewValidator(s),
		mutator:     NewMutator(s),
		locks:       newAccountLocks(),
		lockTimeout: config.LockTimeout,
		metrics:     config.Metrics,
		logger:      config.Logger.Named("ledger"),
	}
}

// Commit validates and applies a proposed transaction, returning the persisted
// record. The check-then-mutate sequence runs inside the implicated accounts'
// critical sections, so two concurrent withdrawals can never both pass the
// sufficiency check.
func (p *Processor) Commit(ctx context.Context, req Request) (*bank.Transaction, error) {
	start := time.Now()
	tx, err := p.commit(ctx, req)
	duration := time.Since(start)

	txType := string(req.Type)
	if err != nil {
		outcome := "error"
		if bank.IsValidation(err) {
			outcome = "rejected"
			p.metrics.RecordValidationFailure(txType, bank.Classify(err))
		} else if bank.IsRetryable(err) {
			outcome = "timeout"
		}
		p.metrics.RecordCommit(txType, outcome, duration)
		p.logger.Debug("commit failed",
			zap.String("type", txType),
			zap.String("account_id", req.AccountID),
			zap.String("reason", bank.Classify(err)),
			zap.Error(err),
		)
		return nil, err
	}

	p.metrics.RecordCommit(txType, "committed", duration)
	p.logger.Info("transaction committed",
		zap.String("transaction_id", tx.ID),
		zap.String("type", txType),
		zap.String("account_id", tx.AccountID),
		zap.String("amount", tx.Amount.String()),
	)
	return tx, nil
}

func (p *Processor) commit(ctx context.Context, req Request) (*bank.Transaction, error) {
	ids := []string{req.AccountID}
	if req.Type == bank.Transfer && req.RecipientID != "" {
		ids = append(ids, req.RecipientID)
	}

	lockStart := time.Now()
	lockCtx, cancel := context.WithTimeout(ctx, p.lockTimeout)
	defer cancel()
	release, err := p.locks.acquire(lockCtx, ids...)
	p.metrics.RecordLockWait(time.Since(lockStart))
	if err != nil {
		return nil, err
	}
	defer release()

	// Step 1: validate against the balances these locks now pin.
	if err := p.validator.Validate(ctx, req); err != nil {
		return nil, err
	}

	// Cancellation is honored up to here; once the record is persisted the
	// commit must run to completion or be compensated, never abandoned.
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	tx := &bank.Transaction{
		ID:          bank.NewID(),
		AccountID:   req.AccountID,
		RecipientID: req.RecipientID,
		Type:        req.Type,
		Amount:      req.Amount,
		Timestamp:   time.Now().UTC(),
		Description: req.Description,
	}

	// Step 2: persist the immutable record.
	effectCtx := context.WithoutCancel(ctx)
	if err := p.store.CreateTransaction(effectCtx, tx); err != nil {
		return nil, fmt.Errorf("persist transaction: %w", err)
	}

	// Step 3: apply the balance effect.
	if err := p.mutator.Apply(effectCtx, tx); err != nil {
		p.metrics.RecordCompensation(string(req.Type))
		p.logger.Error("balance mutation failed, rolling back record",
			zap.String("transaction_id", tx.ID),
			zap.Error(err),
		)
		if derr := p.store.DeleteTransaction(effectCtx, tx.ID); derr != nil {
			// Record and effect are now inconsistent; surface both errors.
			return nil, multierr.Append(err, fmt.Errorf("rollback transaction record %s: %w", tx.ID, derr))
		}
		return nil, err
	}

	return tx, nil
}
