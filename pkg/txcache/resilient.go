package txcache

import (
	"context"
	"errors"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"bankledger/pkg/bank"
	"bankledger/pkg/logging"
)

var (
	// ErrTierUnavailable is returned while the circuit breaker is open.
	ErrTierUnavailable = errors.New("txcache: tier unavailable")

	// ErrTierTimeout is returned when a tier operation exceeds its timeout.
	ErrTierTimeout = errors.New("txcache: tier timeout")
)

// ResilientConfig configures timeout and circuit breaker protection for a tier.
type ResilientConfig struct {
	// Timeout bounds each tier operation.
	Timeout time.Duration

	// MaxRequests allowed through while the breaker is half-open.
	MaxRequests uint32

	// Interval is the closed-state period after which failure counts reset.
	Interval time.Duration

	// OpenTimeout is how long the breaker stays open before probing again.
	OpenTimeout time.Duration
}

// DefaultResilientConfig returns sensible resilience defaults.
func DefaultResilientConfig() ResilientConfig {
	return ResilientConfig{
		Timeout:     2 * time.Second,
		MaxRequests: 5,
		Interval:    60 * time.Second,
		OpenTimeout: 30 * time.Second,
	}
}

// ResilientTier wraps a Tier with a per-operation timeout and a circuit
// breaker, so a struggling Redis degrades lookups to the store instead of
// stalling them.
type ResilientTier struct {
	tier    Tier
	cb      *gobreaker.CircuitBreaker
	timeout time.Duration
	logger  *logging.Logger
}

// NewResilientTier wraps the given tier. A miss is a healthy answer and never
// counts against the breaker.
func NewResilientTier(tier Tier, config ResilientConfig) *ResilientTier {
	logger := logging.Global().Named("txcache").Named(tier.Name())

	settings := gobreaker.Settings{
		Name:        tier.Name(),
		MaxRequests: config.MaxRequests,
		Interval:    config.Interval,
		Timeout:     config.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		IsSuccessful: func(err error) bool {
			return err == nil || bank.IsNotFound(err)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed",
				zap.String("tier", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	}

	return &ResilientTier{
		tier:    tier,
		cb:      gobreaker.NewCircuitBreaker(settings),
		timeout: config.Timeout,
		logger:  logger,
	}
}

func (rt *ResilientTier) Name() string {
	return rt.tier.Name()
}

func (rt *ResilientTier) Get(ctx context.Context, id string) (*bank.Transaction, error) {
	if rt.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, rt.timeout)
		defer cancel()
	}

	result, err := rt.cb.Execute(func() (interface{}, error) {
		return rt.tier.Get(ctx, id)
	})
	if err != nil {
		return nil, rt.translate(ctx, err)
	}
	return result.(*bank.Transaction), nil
}

func (rt *ResilientTier) Put(ctx context.Context, t *bank.Transaction) error {
	if rt.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, rt.timeout)
		defer cancel()
	}

	_, err := rt.cb.Execute(func() (interface{}, error) {
		return nil, rt.tier.Put(ctx, t)
	})
	if err != nil {
		return rt.translate(ctx, err)
	}
	return nil
}

func (rt *ResilientTier) translate(ctx context.Context, err error) error {
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return ErrTierUnavailable
	}
	if ctx.Err() == context.DeadlineExceeded {
		return ErrTierTimeout
	}
	return err
}

func (rt *ResilientTier) Close() {
	rt.tier.Close()
}
