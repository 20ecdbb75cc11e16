// Package txcache caches committed transaction records. Records are immutable
// once committed, which makes them safe to cache indefinitely: a cached copy
// can never be stale, only absent.
//
// Lookups are answered in three steps: a bloom filter of known transaction ids
// answers definite misses without any I/O, an optional remote tier (Redis)
// serves hot records, and the store remains the source of truth.
package txcache

import (
	"context"
	"sync"
	"time"

	"github.com/bits-and-blooms/bloom/v3"
	"go.uber.org/zap"

	"bankledger/pkg/bank"
	"bankledger/pkg/logging"
	"bankledger/pkg/metrics"
)

// Source is the authoritative home of transaction records.
type Source interface {
	GetTransaction(ctx context.Context, id string) (*bank.Transaction, error)
	ListTransactions(ctx context.Context) ([]*bank.Transaction, error)
}

// Tier is a remote cache tier holding copies of committed records.
// Implementations must return bank.ErrNotFound on a miss.
type Tier interface {
	Name() string
	Get(ctx context.Context, id string) (*bank.Transaction, error)
	Put(ctx context.Context, t *bank.Transaction) error
	Close()
}

// Config holds cache configuration.
type Config struct {
	// ExpectedTransactions sizes the bloom filter.
	ExpectedTransactions uint

	// FalsePositiveRate is the target bloom false-positive rate. A false
	// positive only costs one store lookup; a false negative cannot happen
	// as long as every committed id is observed.
	FalsePositiveRate float64

	// Metrics receives hit/miss observations. Defaults to a no-op collector.
	Metrics metrics.Collector

	// Logger for cache events. Defaults to the global logger.
	Logger *logging.Logger
}

// DefaultConfig returns sensible cache defaults.
func DefaultConfig() Config {
	return Config{
		ExpectedTransactions: 1_000_000,
		FalsePositiveRate:    0.01,
	}
}

// Cache is a read-through cache for committed transaction records.
type Cache struct {
	source  Source
	tier    Tier // may be nil
	metrics metrics.Collector
	logger  *logging.Logger

	mu     sync.RWMutex
	filter *bloom.BloomFilter
}

// New creates a cache over the given source and optional remote tier, seeding
// the bloom filter with every transaction id already in the store so that
// records from earlier runs keep resolving.
func New(ctx context.Context, source Source, tier Tier, config Config) (*Cache, error) {
	if config.ExpectedTransactions == 0 {
		config.ExpectedTransactions = DefaultConfig().ExpectedTransactions
	}
	if config.FalsePositiveRate <= 0 {
		config.FalsePositiveRate = DefaultConfig().FalsePositiveRate
	}
	if config.Metrics == nil {
		config.Metrics = metrics.NoOpCollector{}
	}
	if config.Logger == nil {
		config.Logger = logging.Global()
	}

	c := &Cache{
		source:  source,
		tier:    tier,
		metrics: config.Metrics,
		logger:  config.Logger.Named("txcache"),
		filter:  bloom.NewWithEstimates(config.ExpectedTransactions, config.FalsePositiveRate),
	}

	existing, err := source.ListTransactions(ctx)
	if err != nil {
		return nil, err
	}
	for _, t := range existing {
		c.filter.AddString(t.ID)
	}
	c.logger.Info("transaction cache seeded", zap.Int("transactions", len(existing)))

	return c, nil
}

// Observe registers a freshly committed record: the id joins the bloom filter
// and the record is pushed to the remote tier, best effort.
func (c *Cache) Observe(ctx context.Context, t *bank.Transaction) {
	c.mu.Lock()
	c.filter.AddString(t.ID)
	c.mu.Unlock()

	if c.tier != nil {
		if err := c.tier.Put(ctx, t); err != nil {
			c.logger.Warn("tier put failed", zap.String("transaction_id", t.ID), zap.Error(err))
		}
	}
}

// Get returns the transaction with the given id. The bloom filter short
// circuits ids that were never committed; a tier failure degrades to a store
// read instead of failing the lookup.
func (c *Cache) Get(ctx context.Context, id string) (*bank.Transaction, error) {
	start := time.Now()

	c.mu.RLock()
	maybe := c.filter.TestString(id)
	c.mu.RUnlock()
	if !maybe {
		c.metrics.RecordCacheGet(true, time.Since(start))
		return nil, bank.ErrNotFound
	}

	if c.tier != nil {
		t, err := c.tier.Get(ctx, id)
		if err == nil {
			c.metrics.RecordCacheGet(true, time.Since(start))
			return t, nil
		}
		if !bank.IsNotFound(err) {
			c.logger.Warn("tier get failed, falling back to store",
				zap.String("tier", c.tier.Name()), zap.Error(err))
		}
	}

	t, err := c.source.GetTransaction(ctx, id)
	c.metrics.RecordCacheGet(false, time.Since(start))
	if err != nil {
		return nil, err
	}
	if c.tier != nil {
		if perr := c.tier.Put(ctx, t); perr != nil {
			c.logger.Warn("tier warm-up failed", zap.String("transaction_id", id), zap.Error(perr))
		}
	}
	return t, nil
}

// Close releases the remote tier, if any.
func (c *Cache) Close() {
	if c.tier != nil {
		c.tier.Close()
	}
}
