package metrics

import (
	"time"
)

// Collector defines the interface for collecting ledger metrics.
// Implementations can export metrics to various backends (Prometheus, StatsD, etc.).
type Collector interface {
	// Commit path
	RecordCommit(txType string, outcome string, duration time.Duration)
	RecordValidationFailure(txType string, reason string)
	RecordCompensation(txType string)
	RecordLockWait(duration time.Duration)

	// Read side
	RecordAggregate(query string, duration time.Duration)
	RecordCacheGet(hit bool, duration time.Duration)

	// HTTP surface
	RecordHTTPRequest(method, endpoint, status string, duration time.Duration)
}

// NoOpCollector is a no-op implementation of Collector.
// It's used as the default collector when metrics are not needed.
type NoOpCollector struct{}

// RecordCommit does nothing.
func (NoOpCollector) RecordCommit(txType string, outcome string, duration time.Duration) {}

// RecordValidationFailure does nothing.
func (NoOpCollector) RecordValidationFailure(txType string, reason string) {}

// RecordCompensation does nothing.
func (NoOpCollector) RecordCompensation(txType string) {}

// RecordLockWait does nothing.
func (NoOpCollector) RecordLockWait(duration time.Duration) {}

// RecordAggregate does nothing.
func (NoOpCollector) RecordAggregate(query string, duration time.Duration) {}

// RecordCacheGet does nothing.
func (NoOpCollector) RecordCacheGet(hit bool, duration time.Duration) {}

// RecordHTTPRequest does nothing.
func (NoOpCollector) RecordHTTPRequest(method, endpoint, status string, duration time.Duration) {}
