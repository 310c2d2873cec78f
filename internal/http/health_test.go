package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/baryc/quote-service/internal/circuitbreaker"
	"github.com/baryc/quote-service/internal/domain/model"
	"github.com/baryc/quote-service/internal/service"
)

func probe(t *testing.T, h *HealthHandler, path string) (*httptest.ResponseRecorder, ReadinessReport) {
	t.Helper()
	router := gin.New()
	h.Register(router)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))

	var report ReadinessReport
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &report), w.Body.String())
	return w, report
}

func TestHealthHandler_Liveness(t *testing.T) {
	router := gin.New()
	NewHealthHandler().Register(router)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestHealthHandler_Readiness(t *testing.T) {
	openBreaker := func() *circuitbreaker.CircuitBreaker {
		cb := circuitbreaker.New(circuitbreaker.Config{Name: "mongodb-pricing", FailureThreshold: 1, SuccessThreshold: 1, Timeout: time.Hour})
		_ = cb.Execute(context.Background(), func() error { return errors.New("down") })
		return cb
	}
	ok := HealthCheckFunc(func(context.Context) error { return nil })
	refused := HealthCheckFunc(func(context.Context) error { return errors.New("connection refused") })

	tests := []struct {
		name       string
		setup      func(h *HealthHandler)
		wantStatus int
		wantChecks map[string]string
	}{
		{
			name:       "nothing registered",
			setup:      func(*HealthHandler) {},
			wantStatus: http.StatusOK,
			wantChecks: map[string]string{"service": "ok"},
		},
		{
			name: "closed circuit",
			setup: func(h *HealthHandler) {
				h.RegisterCircuitBreaker("mongodb_pricing", circuitbreaker.New(circuitbreaker.DefaultConfig()))
			},
			wantStatus: http.StatusOK,
			wantChecks: map[string]string{"mongodb_pricing_circuit": "closed"},
		},
		{
			name:       "open circuit",
			setup:      func(h *HealthHandler) { h.RegisterCircuitBreaker("mongodb_pricing", openBreaker()) },
			wantStatus: http.StatusServiceUnavailable,
			wantChecks: map[string]string{"mongodb_pricing_circuit": "open"},
		},
		{
			name: "all dependencies up",
			setup: func(h *HealthHandler) {
				h.RegisterChecker("mongodb", ok)
				h.RegisterChecker("redis", ok)
			},
			wantStatus: http.StatusOK,
			wantChecks: map[string]string{"mongodb": "ok", "redis": "ok"},
		},
		{
			name: "redis down",
			setup: func(h *HealthHandler) {
				h.RegisterChecker("mongodb", ok)
				h.RegisterChecker("redis", refused)
			},
			wantStatus: http.StatusServiceUnavailable,
			wantChecks: map[string]string{"mongodb": "ok", "redis": "connection refused"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHealthHandler()
			tt.setup(h)

			w, report := probe(t, h, "/readyz")

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, tt.wantChecks, report.Checks)
			if tt.wantStatus == http.StatusOK {
				assert.Equal(t, "ok", report.Status)
			} else {
				assert.Equal(t, "degraded", report.Status)
			}
		})
	}
}

func TestHealthHandler_ReadinessReportsPricingVersion(t *testing.T) {
	snap := model.DefaultSnapshot()
	snap.Version = 7
	h := NewHealthHandler()
	h.SetPricingSource(service.NewSnapshotStore(snap))

	w, report := probe(t, h, "/readyz")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 7, report.PricingVersion)
}

func TestHealthHandler_ChecksRunInParallel(t *testing.T) {
	h := NewHealthHandler()

	var started atomic.Int32
	release := make(chan struct{})
	slow := HealthCheckFunc(func(ctx context.Context) error {
		if _, ok := ctx.Deadline(); !ok {
			return errors.New("no deadline")
		}
		if started.Add(1) == 2 {
			close(release)
		}
		select {
		case <-release:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	})
	h.RegisterChecker("mongodb", slow)
	h.RegisterChecker("redis", slow)

	w, report := probe(t, h, "/readyz")

	assert.Equal(t, http.StatusOK, w.Code, "each check waits for the other one to start")
	assert.Equal(t, map[string]string{"mongodb": "ok", "redis": "ok"}, report.Checks)
}
