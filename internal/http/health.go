package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/baryc/quote-service/internal/circuitbreaker"
	"github.com/baryc/quote-service/internal/service"
)

const healthCheckTimeout = 2 * time.Second

// HealthChecker probes one dependency.
type HealthChecker interface {
	Check(ctx context.Context) error
}

// HealthCheckFunc adapts a function such as (*repository.MongoDB).HealthCheck
// or (*service.RedisCache).Ping to HealthChecker.
type HealthCheckFunc func(ctx context.Context) error

// Check calls f(ctx).
func (f HealthCheckFunc) Check(ctx context.Context) error {
	return f(ctx)
}

// ReadinessReport is the body of GET /readyz.
// @Description Dependency status and the pricing version being served
type ReadinessReport struct {
	Status string `json:"status" example:"ok"`
	// PricingVersion is the active configuration version, 0 before any
	// configuration was stored
	PricingVersion int               `json:"pricing_version" example:"3"`
	Checks         map[string]string `json:"checks"`
} // @name ReadinessReport

// HealthHandler serves the liveness and readiness probes.
type HealthHandler struct {
	checkers map[string]HealthChecker
	breakers map[string]*circuitbreaker.CircuitBreaker
	pricing  service.SnapshotSource
}

// NewHealthHandler returns a handler with nothing registered.
func NewHealthHandler() *HealthHandler {
	return &HealthHandler{
		checkers: make(map[string]HealthChecker),
		breakers: make(map[string]*circuitbreaker.CircuitBreaker),
	}
}

// RegisterChecker adds a dependency probed on every readiness request.
func (h *HealthHandler) RegisterChecker(name string, checker HealthChecker) {
	h.checkers[name] = checker
}

// RegisterCircuitBreaker reports cb as "<name>_circuit". An open circuit
// makes the service not ready.
func (h *HealthHandler) RegisterCircuitBreaker(name string, cb *circuitbreaker.CircuitBreaker) {
	h.breakers[name] = cb
}

// SetPricingSource reports the version of the snapshot src serves.
func (h *HealthHandler) SetPricingSource(src service.SnapshotSource) {
	h.pricing = src
}

// Register adds /healthz and /readyz to router.
func (h *HealthHandler) Register(router *gin.Engine) {
	router.GET("/healthz", h.Liveness)
	router.GET("/readyz", h.Readiness)
}

// Liveness handles the liveness probe.
// @Summary     Liveness probe
// @Description Returns OK while the process is running.
// @Tags        Health
// @Produce     json
// @Success     200 {object} map[string]string "Service is alive"
// @Router      /healthz [get]
func (h *HealthHandler) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Readiness handles the readiness probe. Dependencies are probed in
// parallel under a shared deadline.
// @Summary     Readiness probe
// @Description Probes MongoDB and Redis when configured, reports the circuit breakers and the active pricing version.
// @Tags        Health
// @Produce     json
// @Success     200 {object} ReadinessReport "Service is ready"
// @Failure     503 {object} ReadinessReport "A dependency is down"
// @Router      /readyz [get]
func (h *HealthHandler) Readiness(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), healthCheckTimeout)
	defer cancel()

	report := ReadinessReport{Status: "ok", Checks: make(map[string]string)}
	ready := true

	var (
		wg sync.WaitGroup
		mu sync.Mutex
	)
	for name, checker := range h.checkers {
		wg.Add(1)
		go func(name string, checker HealthChecker) {
			defer wg.Done()
			result := "ok"
			if err := checker.Check(ctx); err != nil {
				result = err.Error()
			}
			mu.Lock()
			report.Checks[name] = result
			if result != "ok" {
				ready = false
			}
			mu.Unlock()
		}(name, checker)
	}
	wg.Wait()

	for name, cb := range h.breakers {
		stats := cb.Stats()
		report.Checks[name+"_circuit"] = stats.State
		if stats.State == circuitbreaker.StateOpen.String() {
			ready = false
		}
	}

	if h.pricing != nil {
		if snap := h.pricing.Current(); snap != nil {
			report.PricingVersion = snap.Version
		}
	}
	if len(report.Checks) == 0 {
		report.Checks["service"] = "ok"
	}

	status := http.StatusOK
	if !ready {
		status = http.StatusServiceUnavailable
		report.Status = "degraded"
	}
	c.JSON(status, report)
}
