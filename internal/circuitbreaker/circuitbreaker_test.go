//go:build !integration

package circuitbreaker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errMongoDown = errors.New("server selection timeout")

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newBreaker(failures, successes int) (*CircuitBreaker, *clock) {
	clk := &clock{now: time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)}
	cb := New(Config{
		Name:             "mongodb-pricing",
		FailureThreshold: failures,
		SuccessThreshold: successes,
		Timeout:          30 * time.Second,
	})
	cb.now = clk.Now
	return cb, clk
}

func fail(cb *CircuitBreaker) error {
	return cb.Execute(context.Background(), func() error { return errMongoDown })
}

func succeed(cb *CircuitBreaker) error {
	return cb.Execute(context.Background(), func() error { return nil })
}

func TestState_String(t *testing.T) {
	tests := []struct {
		state State
		want  string
	}{
		{StateClosed, "closed"},
		{StateOpen, "open"},
		{StateHalfOpen, "half-open"},
		{State(7), "unknown"},
		{State(-1), "unknown"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.state.String())
		})
	}
}

func TestNew_ClampsThresholds(t *testing.T) {
	cb := New(Config{Name: "logs"})

	require.ErrorIs(t, fail(cb), errMongoDown)
	assert.True(t, cb.IsOpen(), "a zero threshold opens on the first failure")
}

func TestCircuitBreaker_OpensAfterThreshold(t *testing.T) {
	cb, _ := newBreaker(3, 1)

	for i := 0; i < 2; i++ {
		require.ErrorIs(t, fail(cb), errMongoDown)
		assert.Equal(t, StateClosed, cb.State())
	}
	require.ErrorIs(t, fail(cb), errMongoDown)
	assert.Equal(t, StateOpen, cb.State())

	called := false
	err := cb.Execute(context.Background(), func() error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.False(t, called)
}

func TestCircuitBreaker_SuccessResetsFailures(t *testing.T) {
	cb, _ := newBreaker(2, 1)

	_ = fail(cb)
	require.NoError(t, succeed(cb))
	_ = fail(cb)

	assert.Equal(t, StateClosed, cb.State())
	assert.Equal(t, 1, cb.Stats().Failures)
}

func TestCircuitBreaker_HalfOpen(t *testing.T) {
	tests := []struct {
		name      string
		probes    []error
		wantState State
	}{
		{name: "enough successes close", probes: []error{nil, nil}, wantState: StateClosed},
		{name: "one success stays half-open", probes: []error{nil}, wantState: StateHalfOpen},
		{name: "failing probe reopens", probes: []error{errMongoDown}, wantState: StateOpen},
		{name: "failure after a success reopens", probes: []error{nil, errMongoDown}, wantState: StateOpen},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cb, clk := newBreaker(1, 2)
			_ = fail(cb)
			require.True(t, cb.IsOpen())

			clk.Advance(29 * time.Second)
			require.ErrorIs(t, succeed(cb), ErrCircuitOpen)

			clk.Advance(time.Second)
			for _, probe := range tt.probes {
				probe := probe
				_ = cb.Execute(context.Background(), func() error { return probe })
			}
			assert.Equal(t, tt.wantState, cb.State())
		})
	}
}

func TestCircuitBreaker_SingleProbe(t *testing.T) {
	cb, clk := newBreaker(1, 1)
	_ = fail(cb)
	clk.Advance(30 * time.Second)

	inProbe := make(chan struct{})
	release := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		done <- cb.Execute(context.Background(), func() error {
			close(inProbe)
			<-release
			return nil
		})
	}()

	<-inProbe
	assert.ErrorIs(t, succeed(cb), ErrCircuitOpen, "a second call waits for the probe")

	close(release)
	require.NoError(t, <-done)
	assert.Equal(t, StateClosed, cb.State())
}

func TestCircuitBreaker_IsFailure(t *testing.T) {
	errConflict := errors.New("version conflict")
	cb := New(Config{
		Name:             "mongodb-pricing",
		FailureThreshold: 1,
		SuccessThreshold: 1,
		Timeout:          time.Minute,
		IsFailure:        func(err error) bool { return !errors.Is(err, errConflict) },
	})

	err := cb.Execute(context.Background(), func() error { return errConflict })

	assert.ErrorIs(t, err, errConflict)
	assert.Equal(t, StateClosed, cb.State())
	assert.Zero(t, cb.Stats().Failures)
}

func TestCircuitBreaker_Context(t *testing.T) {
	t.Run("done before the call", func(t *testing.T) {
		cb, _ := newBreaker(1, 1)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		called := false
		err := cb.Execute(ctx, func() error {
			called = true
			return nil
		})

		assert.ErrorIs(t, err, context.Canceled)
		assert.False(t, called)
	})

	t.Run("canceled during the call", func(t *testing.T) {
		cb, _ := newBreaker(1, 1)

		err := cb.Execute(context.Background(), func() error { return context.Canceled })

		assert.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, StateClosed, cb.State())
	})
}

func TestCall(t *testing.T) {
	cb, _ := newBreaker(1, 1)

	version, err := Call(context.Background(), cb, func(context.Context) (int, error) { return 4, nil })
	require.NoError(t, err)
	assert.Equal(t, 4, version)

	version, err = Call(context.Background(), cb, func(context.Context) (int, error) { return 0, errMongoDown })
	assert.ErrorIs(t, err, errMongoDown)
	assert.Zero(t, version)

	_, err = Call(context.Background(), cb, func(context.Context) (int, error) { return 5, nil })
	assert.ErrorIs(t, err, ErrCircuitOpen)
}

func TestCircuitBreaker_Stats(t *testing.T) {
	cb, clk := newBreaker(1, 1)

	stats := cb.Stats()
	assert.Equal(t, Stats{Name: "mongodb-pricing", State: "closed", Healthy: true}, stats)

	_ = fail(cb)
	stats = cb.Stats()
	assert.Equal(t, "open", stats.State)
	assert.False(t, stats.Healthy)
	assert.Equal(t, 1, stats.Failures)
	assert.Equal(t, clk.Now().Add(30*time.Second), stats.RetryAt)
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, 5, cfg.FailureThreshold)
	assert.Equal(t, 2, cfg.SuccessThreshold)
	assert.Equal(t, 30*time.Second, cfg.Timeout)
	assert.Nil(t, cfg.IsFailure)
}
