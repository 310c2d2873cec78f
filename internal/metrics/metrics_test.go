package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestPrometheusMiddleware(t *testing.T) {
	router := gin.New()
	router.Use(PrometheusMiddleware())
	router.PATCH("/api/admin/pricing-config/services/:key", func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	tests := []struct {
		name   string
		method string
		path   string
		labels []string
	}{
		{
			name:   "route template instead of the raw path",
			method: http.MethodPatch,
			path:   "/api/admin/pricing-config/services/cirage",
			labels: []string{http.MethodPatch, "/api/admin/pricing-config/services/:key", "204"},
		},
		{
			name:   "unknown paths share one label",
			method: http.MethodGet,
			path:   "/wp-login.php",
			labels: []string{http.MethodGet, unmatchedRoute, "404"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			counter := HTTPRequestTotal.WithLabelValues(tt.labels...)
			before := testutil.ToFloat64(counter)

			router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(tt.method, tt.path, nil))

			assert.Equal(t, before+1, testutil.ToFloat64(counter))
		})
	}
}

func TestRecordQuoteCalculation(t *testing.T) {
	before := testutil.ToFloat64(QuoteCalculationsTotal.WithLabelValues("quote", "computed"))

	RecordQuoteCalculation("quote", "computed", 50*time.Microsecond)
	RecordQuoteCalculation("quote", "computed", 80*time.Microsecond)

	after := testutil.ToFloat64(QuoteCalculationsTotal.WithLabelValues("quote", "computed"))
	assert.Equal(t, before+2, after)
}

func TestRecordCostBasisIncomplete(t *testing.T) {
	before := testutil.ToFloat64(CostBasisIncompleteTotal)
	RecordCostBasisIncomplete()
	assert.Equal(t, before+1, testutil.ToFloat64(CostBasisIncompleteTotal))
}

func TestSetPricingSnapshotVersion(t *testing.T) {
	SetPricingSnapshotVersion(7)
	assert.Equal(t, 7.0, testutil.ToFloat64(PricingSnapshotVersion))
}

func TestRecordSnapshotRefresh(t *testing.T) {
	before := testutil.ToFloat64(PricingSnapshotRefreshTotal.WithLabelValues("updated"))
	RecordSnapshotRefresh("updated")
	assert.Equal(t, before+1, testutil.ToFloat64(PricingSnapshotRefreshTotal.WithLabelValues("updated")))
}

func TestRecordCacheOperation(t *testing.T) {
	before := testutil.ToFloat64(CacheOperationsTotal.WithLabelValues("get", "hit"))
	RecordCacheOperation("get", "hit")
	assert.Equal(t, before+1, testutil.ToFloat64(CacheOperationsTotal.WithLabelValues("get", "hit")))
}

func TestRecordLogEntries(t *testing.T) {
	before := testutil.ToFloat64(LogEntriesTotal.WithLabelValues("written"))
	RecordLogEntries("written", 50)
	assert.Equal(t, before+50, testutil.ToFloat64(LogEntriesTotal.WithLabelValues("written")))
}

func TestSetCircuitBreakerState(t *testing.T) {
	SetCircuitBreakerState("mongodb-pricing", 1)
	assert.Equal(t, 1.0, testutil.ToFloat64(CircuitBreakerState.WithLabelValues("mongodb-pricing")))
}

func TestUpdateCacheMetrics(t *testing.T) {
	UpdateCacheMetrics(50, 100)

	assert.Equal(t, 50.0, testutil.ToFloat64(CacheSize))
	assert.Equal(t, 100.0, testutil.ToFloat64(CacheCapacity))
}
