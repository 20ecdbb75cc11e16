package prometheus

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusCollector implements metrics.Collector for Prometheus.
type PrometheusCollector struct {
	namespace string

	// Commit path
	commits            *prometheus.CounterVec
	validationFailures *prometheus.CounterVec
	compensations      *prometheus.CounterVec
	commitLatency      *prometheus.HistogramVec
	lockWaitLatency    prometheus.Histogram

	// Read side
	aggregateLatency *prometheus.HistogramVec
	cacheHits        prometheus.Counter
	cacheMisses      prometheus.Counter
	cacheLatency     prometheus.Histogram

	// HTTP surface
	httpRequests *prometheus.CounterVec
	httpLatency  *prometheus.HistogramVec
}

// NewPrometheusCollector creates a new Prometheus metrics collector.
func NewPrometheusCollector(namespace string) *PrometheusCollector {
	return &PrometheusCollector{
		namespace: namespace,
		commits: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "ledger_commits_total",
				Help:      "Total number of transaction commits by type and outcome",
			},
			[]string{"type", "outcome"},
		),
		validationFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "ledger_validation_failures_total",
				Help:      "Total number of rejected transactions by type and reason",
			},
			[]string{"type", "reason"},
		),
		compensations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "ledger_compensations_total",
				Help:      "Total number of rolled-back commits after a mutation failure",
			},
			[]string{"type"},
		),
		commitLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "ledger_commit_duration_seconds",
				Help:      "Commit latency by transaction type",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"type"},
		),
		lockWaitLatency: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "ledger_lock_wait_seconds",
				Help:      "Time spent acquiring per-account locks",
				Buckets:   []float64{.0001, .0005, .001, .005, .01, .05, .1, .5, 1, 5},
			},
		),
		aggregateLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "aggregate_duration_seconds",
				Help:      "Aggregation query latency",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"query"},
		),
		cacheHits: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "txcache_hits_total",
				Help:      "Total number of transaction cache hits",
			},
		),
		cacheMisses: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "txcache_misses_total",
				Help:      "Total number of transaction cache misses",
			},
		),
		cacheLatency: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "txcache_get_duration_seconds",
				Help:      "Transaction cache lookup latency",
				Buckets:   prometheus.DefBuckets,
			},
		),
		httpRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "endpoint", "status"},
		),
		httpLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request latencies in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "endpoint"},
		),
	}
}

// Describe implements prometheus.Collector.
func (pc *PrometheusCollector) Describe(ch chan<- *prometheus.Desc) {
	pc.commits.Describe(ch)
	pc.validationFailures.Describe(ch)
	pc.compensations.Describe(ch)
	pc.commitLatency.Describe(ch)
	pc.lockWaitLatency.Describe(ch)
	pc.aggregateLatency.Describe(ch)
	pc.cacheHits.Describe(ch)
	pc.cacheMisses.Describe(ch)
	pc.cacheLatency.Describe(ch)
	pc.httpRequests.Describe(ch)
	pc.httpLatency.Describe(ch)
}

// Collect implements prometheus.Collector.
func (pc *PrometheusCollector) Collect(ch chan<- prometheus.Metric) {
	pc.commits.Collect(ch)
	pc.validationFailures.Collect(ch)
	pc.compensations.Collect(ch)
	pc.commitLatency.Collect(ch)
	pc.lockWaitLatency.Collect(ch)
	pc.aggregateLatency.Collect(ch)
	pc.cacheHits.Collect(ch)
	pc.cacheMisses.Collect(ch)
	pc.cacheLatency.Collect(ch)
	pc.httpRequests.Collect(ch)
	pc.httpLatency.Collect(ch)
}

// RecordCommit records a commit attempt and its latency.
func (pc *PrometheusCollector) RecordCommit(txType string, outcome string, duration time.Duration) {
	pc.commits.WithLabelValues(txType, outcome).Inc()
	pc.commitLatency.WithLabelValues(txType).Observe(duration.Seconds())
}

// RecordValidationFailure records a rejected transaction.
func (pc *PrometheusCollector) RecordValidationFailure(txType string, reason string) {
	pc.validationFailures.WithLabelValues(txType, reason).Inc()
}

// RecordCompensation records a rolled-back commit.
func (pc *PrometheusCollector) RecordCompensation(txType string) {
	pc.compensations.WithLabelValues(txType).Inc()
}

// RecordLockWait records time spent acquiring account locks.
func (pc *PrometheusCollector) RecordLockWait(duration time.Duration) {
	pc.lockWaitLatency.Observe(duration.Seconds())
}

// RecordAggregate records an aggregation query latency.
func (pc *PrometheusCollector) RecordAggregate(query string, duration time.Duration) {
	pc.aggregateLatency.WithLabelValues(query).Observe(duration.Seconds())
}

// RecordCacheGet records a transaction cache lookup.
func (pc *PrometheusCollector) RecordCacheGet(hit bool, duration time.Duration) {
	if hit {
		pc.cacheHits.Inc()
	} else {
		pc.cacheMisses.Inc()
	}
	pc.cacheLatency.Observe(duration.Seconds())
}

// RecordHTTPRequest records an HTTP request with its status code.
func (pc *PrometheusCollector) RecordHTTPRequest(method, endpoint, status string, duration time.Duration) {
	pc.httpRequests.WithLabelValues(method, endpoint, status).Inc()
	pc.httpLatency.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}
