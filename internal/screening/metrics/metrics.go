package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Cache operation results.
const (
	CacheHit     = "hit"
	CacheMiss    = "miss"
	CacheError   = "error"
	CacheSkipped = "skipped" // breaker open
)

// Metrics provides observability for the screening engine. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	// Provider call latencies by provider and outcome (ok, timeout, upstream_error, not_configured)
	ProviderLatency *prometheus.HistogramVec

	// Cache operations by op (get, set, delete, clear) and result
	CacheOperations *prometheus.CounterVec

	// 1 while the cache breaker is open
	CacheBreakerOpen prometheus.Gauge

	// Risk levels of freshly computed results
	RiskLevels *prometheus.CounterVec

	// Full per-entity resolve latency, by cache result
	ResolveLatency *prometheus.HistogramVec

	// Entities per batch request
	BatchSize prometheus.Histogram

	// Batch items that failed (validation or panic)
	BatchItemFailures *prometheus.CounterVec

	// Resolves that joined an identical in-flight resolve
	InflightShared prometheus.Counter
}

// New registers all screening metrics with reg. Pass prometheus.DefaultRegisterer
// in production and a fresh registry in tests.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		ProviderLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "screener_provider_duration_seconds",
			Help:    "Duration of external provider calls by provider and outcome",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 8, 10},
		}, []string{"provider", "outcome"}),

		CacheOperations: f.NewCounterVec(prometheus.CounterOpts{
			Name: "screener_cache_operations_total",
			Help: "Cache operations by operation and result",
		}, []string{"op", "result"}),

		CacheBreakerOpen: f.NewGauge(prometheus.GaugeOpts{
			Name: "screener_cache_breaker_open",
			Help: "Whether the cache circuit breaker is open (1) or closed (0)",
		}),

		RiskLevels: f.NewCounterVec(prometheus.CounterOpts{
			Name: "screener_risk_level_total",
			Help: "Computed risk assessments by level",
		}, []string{"level"}),

		ResolveLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "screener_resolve_duration_seconds",
			Help:    "Duration of a single entity resolve including cache lookup",
			Buckets: []float64{0.001, 0.005, 0.025, 0.1, 0.5, 1, 2.5, 5, 10},
		}, []string{"cache"}),

		BatchSize: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "screener_batch_entities",
			Help:    "Number of entities per batch request",
			Buckets: []float64{1, 2, 5, 10, 20, 50},
		}),

		BatchItemFailures: f.NewCounterVec(prometheus.CounterOpts{
			Name: "screener_batch_item_failures_total",
			Help: "Batch items that failed, by reason",
		}, []string{"reason"}),

		InflightShared: f.NewCounter(prometheus.CounterOpts{
			Name: "screener_inflight_shared_total",
			Help: "Resolves served by joining an identical in-flight resolve",
		}),
	}
}

func (m *Metrics) ObserveProvider(provider, outcome string, d time.Duration) {
	if m != nil {
		m.ProviderLatency.WithLabelValues(provider, outcome).Observe(d.Seconds())
	}
}

func (m *Metrics) IncrementCache(op, result string) {
	if m != nil {
		m.CacheOperations.WithLabelValues(op, result).Inc()
	}
}

func (m *Metrics) SetCacheBreakerOpen(open bool) {
	if m == nil {
		return
	}
	if open {
		m.CacheBreakerOpen.Set(1)
		return
	}
	m.CacheBreakerOpen.Set(0)
}

func (m *Metrics) IncrementRiskLevel(level string) {
	if m != nil {
		m.RiskLevels.WithLabelValues(level).Inc()
	}
}

func (m *Metrics) ObserveResolve(cacheResult string, d time.Duration) {
	if m != nil {
		m.ResolveLatency.WithLabelValues(cacheResult).Observe(d.Seconds())
	}
}

func (m *Metrics) ObserveBatchSize(n int) {
	if m != nil {
		m.BatchSize.Observe(float64(n))
	}
}

func (m *Metrics) IncrementBatchFailure(reason string) {
	if m != nil {
		m.BatchItemFailures.WithLabelValues(reason).Inc()
	}
}

func (m *Metrics) IncrementInflightShared() {
	if m != nil {
		m.InflightShared.Inc()
	}
}
