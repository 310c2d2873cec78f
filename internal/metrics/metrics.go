// Package metrics provides Prometheus metrics collection for the quote service.
package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTPRequestDuration tracks HTTP request duration by method, path, and status code.
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status_code"},
	)

	// HTTPRequestTotal tracks total HTTP requests by method, path, and status code.
	HTTPRequestTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status_code"},
	)

	// QuoteCalculationsTotal counts computations by kind (quote, cost_basis, order,
	// hourly_cost) and whether they were served from cache.
	QuoteCalculationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quote_calculations_total",
			Help: "Total number of quote computations",
		},
		[]string{"kind", "source"},
	)

	// QuoteCalculationDuration tracks computation duration by kind.
	QuoteCalculationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "quote_calculation_duration_seconds",
			Help:    "Quote computation duration in seconds",
			Buckets: []float64{0.00001, 0.00005, 0.0001, 0.0005, 0.001, 0.005, 0.01},
		},
		[]string{"kind"},
	)

	// CostBasisIncompleteTotal counts cost-basis estimates with at least one unknown cost.
	CostBasisIncompleteTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "cost_basis_incomplete_total",
			Help: "Total number of cost-basis estimates flagged incomplete",
		},
	)

	// PricingSnapshotVersion exposes the version of the active pricing snapshot.
	PricingSnapshotVersion = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "pricing_snapshot_version",
			Help: "Version of the active pricing configuration",
		},
	)

	// PricingSnapshotRefreshTotal counts scheduled snapshot refreshes by result.
	PricingSnapshotRefreshTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pricing_snapshot_refresh_total",
			Help: "Total number of pricing snapshot refreshes",
		},
		[]string{"result"},
	)

	// CircuitBreakerState exposes circuit breaker state (0 closed, 1 open, 2 half-open).
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state: 0 closed, 1 open, 2 half-open",
		},
		[]string{"name"},
	)

	// CacheOperationsTotal tracks cache operations.
	CacheOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_operations_total",
			Help: "Total number of cache operations",
		},
		[]string{"operation", "result"},
	)

	// CacheSize tracks current cache size.
	CacheSize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "cache_size",
			Help: "Current cache size",
		},
	)

	// LogEntriesTotal tracks request and audit entries handed to the async logger.
	LogEntriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "log_entries_total",
			Help: "Log entries by outcome: written, dropped or failed",
		},
		[]string{"result"},
	)

	// PanicsRecoveredTotal counts handler panics turned into 500 responses.
	PanicsRecoveredTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_panics_recovered_total",
			Help: "Handler panics recovered, by route",
		},
		[]string{"path"},
	)

	// CacheCapacity tracks cache capacity.
	CacheCapacity = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "cache_capacity",
			Help: "Cache capacity",
		},
	)
)

// unmatchedRoute labels requests that hit no route, keeping path
// cardinality bounded.
const unmatchedRoute = "unmatched"

// PrometheusMiddleware counts and times requests by route template.
func PrometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = unmatchedRoute
		}
		labels := []string{c.Request.Method, route, strconv.Itoa(c.Writer.Status())}
		HTTPRequestDuration.WithLabelValues(labels...).Observe(time.Since(start).Seconds())
		HTTPRequestTotal.WithLabelValues(labels...).Inc()
	}
}

// RecordQuoteCalculation records one computation of the given kind.
// source is "computed" or "cache".
func RecordQuoteCalculation(kind, source string, duration time.Duration) {
	QuoteCalculationDuration.WithLabelValues(kind).Observe(duration.Seconds())
	QuoteCalculationsTotal.WithLabelValues(kind, source).Inc()
}

// RecordCostBasisIncomplete counts an estimate with unknown costs.
func RecordCostBasisIncomplete() {
	CostBasisIncompleteTotal.Inc()
}

// SetPricingSnapshotVersion updates the active snapshot version gauge.
func SetPricingSnapshotVersion(version int) {
	PricingSnapshotVersion.Set(float64(version))
}

// RecordSnapshotRefresh records the result of a scheduled refresh:
// "unchanged", "updated" or "error".
func RecordSnapshotRefresh(result string) {
	PricingSnapshotRefreshTotal.WithLabelValues(result).Inc()
}

// SetCircuitBreakerState records the state of a named circuit breaker.
func SetCircuitBreakerState(name string, state int) {
	CircuitBreakerState.WithLabelValues(name).Set(float64(state))
}

// RecordCacheOperation records metrics for a cache operation.
func RecordCacheOperation(operation, result string) {
	CacheOperationsTotal.WithLabelValues(operation, result).Inc()
}

// UpdateCacheMetrics updates cache size and capacity metrics.
func UpdateCacheMetrics(size, capacity int) {
	CacheSize.Set(float64(size))
	CacheCapacity.Set(float64(capacity))
}

// RecordLogEntries counts n log entries with the given outcome.
func RecordLogEntries(result string, n int) {
	LogEntriesTotal.WithLabelValues(result).Add(float64(n))
}

// RecordPanic counts a recovered panic on path.
func RecordPanic(path string) {
	PanicsRecoveredTotal.WithLabelValues(path).Inc()
}
