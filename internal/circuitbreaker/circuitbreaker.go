// Package circuitbreaker stops calls to a failing dependency for a while so
// that it can recover, then lets a single probe through to test it.
package circuitbreaker

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/baryc/quote-service/internal/metrics"
)

// ErrCircuitOpen is returned without calling the dependency while the
// circuit is open, or while a half-open probe is already in flight.
var ErrCircuitOpen = errors.New("circuit breaker is open")

// State of a circuit breaker. The numeric values are exported as the
// circuit_breaker_state gauge.
type State int

const (
	StateClosed State = iota
	StateOpen
	StateHalfOpen
)

var stateNames = [...]string{
	StateClosed:   "closed",
	StateOpen:     "open",
	StateHalfOpen: "half-open",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "unknown"
	}
	return stateNames[s]
}

// Config holds circuit breaker settings.
type Config struct {
	// Name identifies the breaker in logs, metrics and health checks.
	Name string
	// FailureThreshold consecutive failures open the circuit.
	FailureThreshold int
	// SuccessThreshold consecutive half-open successes close it again.
	SuccessThreshold int
	// Timeout is how long the circuit stays open before a probe is allowed.
	Timeout time.Duration
	// IsFailure decides whether an error counts against the circuit. Nil
	// counts every error. A version conflict, for instance, is an answer
	// from a healthy database.
	IsFailure func(error) bool
}

// DefaultConfig returns the settings used when none are configured.
func DefaultConfig() Config {
	return Config{
		Name:             "circuit-breaker",
		FailureThreshold: 5,
		SuccessThreshold: 2,
		Timeout:          30 * time.Second,
	}
}

// CircuitBreaker is safe for concurrent use.
type CircuitBreaker struct {
	cfg Config
	now func() time.Time

	mu        sync.Mutex
	state     State
	failures  int
	successes int
	openedAt  time.Time
	probing   bool
}

// New returns a closed circuit breaker.
func New(cfg Config) *CircuitBreaker {
	if cfg.FailureThreshold <= 0 {
		cfg.FailureThreshold = 1
	}
	if cfg.SuccessThreshold <= 0 {
		cfg.SuccessThreshold = 1
	}
	return &CircuitBreaker{cfg: cfg, now: time.Now}
}

// Call runs fn through cb and returns its result. It is the generic form of
// Execute for calls that produce a value.
func Call[T any](ctx context.Context, cb *CircuitBreaker, fn func(context.Context) (T, error)) (T, error) {
	var zero T
	if err := ctx.Err(); err != nil {
		return zero, err
	}
	if err := cb.acquire(); err != nil {
		return zero, err
	}

	result, err := fn(ctx)
	cb.release(err)
	return result, err
}

// Execute runs fn unless the circuit is open. A context that is already
// done is returned as is and does not count as a failure.
func (cb *CircuitBreaker) Execute(ctx context.Context, fn func() error) error {
	_, err := Call(ctx, cb, func(context.Context) (struct{}, error) {
		return struct{}{}, fn()
	})
	return err
}

// acquire decides whether a call may proceed, moving an expired open
// circuit to half-open.
func (cb *CircuitBreaker) acquire() error {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case StateOpen:
		if cb.now().Sub(cb.openedAt) < cb.cfg.Timeout {
			return ErrCircuitOpen
		}
		cb.transition(StateHalfOpen)
		cb.successes = 0
		cb.probing = true
	case StateHalfOpen:
		if cb.probing {
			return ErrCircuitOpen
		}
		cb.probing = true
	}
	return nil
}

// release records the outcome of a call acquired with acquire.
func (cb *CircuitBreaker) release(err error) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.probing = false
	if err != nil && cb.countsAsFailure(err) {
		cb.failures++
		if cb.state == StateHalfOpen || cb.failures >= cb.cfg.FailureThreshold {
			cb.open()
		}
		return
	}

	cb.failures = 0
	if cb.state == StateHalfOpen {
		cb.successes++
		if cb.successes >= cb.cfg.SuccessThreshold {
			cb.successes = 0
			cb.transition(StateClosed)
		}
	}
}

func (cb *CircuitBreaker) countsAsFailure(err error) bool {
	if errors.Is(err, context.Canceled) {
		return false
	}
	return cb.cfg.IsFailure == nil || cb.cfg.IsFailure(err)
}

func (cb *CircuitBreaker) open() {
	cb.openedAt = cb.now()
	if cb.state != StateOpen {
		cb.transition(StateOpen)
	}
}

// transition changes state, mirrors it in the gauge and logs it. Callers
// hold cb.mu.
func (cb *CircuitBreaker) transition(to State) {
	from := cb.state
	cb.state = to
	metrics.SetCircuitBreakerState(cb.cfg.Name, int(to))

	event := log.Info()
	if to == StateOpen {
		event = log.Warn().Int("failures", cb.failures)
	}
	event.
		Str("circuit_breaker", cb.cfg.Name).
		Str("from", from.String()).
		Str("to", to.String()).
		Msg("Circuit breaker state changed")
}

// State returns the current state.
func (cb *CircuitBreaker) State() State {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}

// IsOpen reports whether calls are currently refused.
func (cb *CircuitBreaker) IsOpen() bool {
	return cb.State() == StateOpen
}

// Stats is a point-in-time view of a breaker.
type Stats struct {
	Name     string
	State    string
	Failures int
	// RetryAt is when an open circuit lets the next probe through.
	RetryAt time.Time
	Healthy bool
}

// Stats returns the breaker's current statistics.
func (cb *CircuitBreaker) Stats() Stats {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	s := Stats{
		Name:     cb.cfg.Name,
		State:    cb.state.String(),
		Failures: cb.failures,
		Healthy:  cb.state == StateClosed,
	}
	if cb.state == StateOpen {
		s.RetryAt = cb.openedAt.Add(cb.cfg.Timeout)
	}
	return s
}
