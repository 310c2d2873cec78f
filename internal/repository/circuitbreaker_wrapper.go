package repository

import (
	"context"
	"errors"

	"github.com/baryc/quote-service/internal/circuitbreaker"
	"github.com/baryc/quote-service/internal/domain/model"
)

// ErrStorageUnavailable is returned while the circuit is open.
var ErrStorageUnavailable = errors.New("storage temporarily unavailable")

// unavailable maps an open circuit to ErrStorageUnavailable.
func unavailable(err error) error {
	if errors.Is(err, circuitbreaker.ErrCircuitOpen) {
		return ErrStorageUnavailable
	}
	return err
}

// PricingSnapshotsRepositoryWithCircuitBreaker guards snapshot storage with
// a circuit breaker.
type PricingSnapshotsRepositoryWithCircuitBreaker struct {
	repo PricingSnapshotsRepositoryInterface
	cb   *circuitbreaker.CircuitBreaker
}

// NewPricingSnapshotsRepositoryWithCircuitBreaker wraps repo with cb.
func NewPricingSnapshotsRepositoryWithCircuitBreaker(repo PricingSnapshotsRepositoryInterface, cb *circuitbreaker.CircuitBreaker) *PricingSnapshotsRepositoryWithCircuitBreaker {
	return &PricingSnapshotsRepositoryWithCircuitBreaker{repo: repo, cb: cb}
}

// GetActive returns nil without error while the circuit is open, so callers
// keep the snapshot they already hold.
func (r *PricingSnapshotsRepositoryWithCircuitBreaker) GetActive(ctx context.Context) (*model.PricingSnapshot, error) {
	snap, err := circuitbreaker.Call(ctx, r.cb, r.repo.GetActive)
	if errors.Is(err, circuitbreaker.ErrCircuitOpen) {
		return nil, nil
	}
	return snap, err
}

// Save stores a snapshot. Writes are refused while the circuit is open.
func (r *PricingSnapshotsRepositoryWithCircuitBreaker) Save(ctx context.Context, snap *model.PricingSnapshot) error {
	return unavailable(r.cb.Execute(ctx, func() error {
		return r.repo.Save(ctx, snap)
	}))
}

// History lists snapshots, newest first.
func (r *PricingSnapshotsRepositoryWithCircuitBreaker) History(ctx context.Context, limit int) ([]model.PricingSnapshot, error) {
	history, err := circuitbreaker.Call(ctx, r.cb, func(ctx context.Context) ([]model.PricingSnapshot, error) {
		return r.repo.History(ctx, limit)
	})
	return history, unavailable(err)
}

// CircuitBreaker returns the breaker for health reporting.
func (r *PricingSnapshotsRepositoryWithCircuitBreaker) CircuitBreaker() *circuitbreaker.CircuitBreaker {
	return r.cb
}

// LogsRepositoryWithCircuitBreaker guards log storage with a circuit breaker.
// Writes are dropped silently while the circuit is open.
type LogsRepositoryWithCircuitBreaker struct {
	repo LogsRepositoryInterface
	cb   *circuitbreaker.CircuitBreaker
}

// NewLogsRepositoryWithCircuitBreaker wraps repo with cb.
func NewLogsRepositoryWithCircuitBreaker(repo LogsRepositoryInterface, cb *circuitbreaker.CircuitBreaker) *LogsRepositoryWithCircuitBreaker {
	return &LogsRepositoryWithCircuitBreaker{repo: repo, cb: cb}
}

// Create stores one entry.
func (r *LogsRepositoryWithCircuitBreaker) Create(ctx context.Context, entry *model.LogEntry) error {
	return r.dropWhenOpen(r.cb.Execute(ctx, func() error {
		return r.repo.Create(ctx, entry)
	}))
}

// CreateMany stores entries in bulk.
func (r *LogsRepositoryWithCircuitBreaker) CreateMany(ctx context.Context, entries []*model.LogEntry) error {
	return r.dropWhenOpen(r.cb.Execute(ctx, func() error {
		return r.repo.CreateMany(ctx, entries)
	}))
}

func (r *LogsRepositoryWithCircuitBreaker) dropWhenOpen(err error) error {
	if errors.Is(err, circuitbreaker.ErrCircuitOpen) {
		return nil
	}
	return err
}

// Query reads entries, newest first.
func (r *LogsRepositoryWithCircuitBreaker) Query(ctx context.Context, opts model.LogQueryOptions) ([]model.LogEntry, error) {
	entries, err := circuitbreaker.Call(ctx, r.cb, func(ctx context.Context) ([]model.LogEntry, error) {
		return r.repo.Query(ctx, opts)
	})
	return entries, unavailable(err)
}

// Count counts matching entries.
func (r *LogsRepositoryWithCircuitBreaker) Count(ctx context.Context, opts model.LogQueryOptions) (int64, error) {
	count, err := circuitbreaker.Call(ctx, r.cb, func(ctx context.Context) (int64, error) {
		return r.repo.Count(ctx, opts)
	})
	return count, unavailable(err)
}

// CircuitBreaker returns the breaker for health reporting.
func (r *LogsRepositoryWithCircuitBreaker) CircuitBreaker() *circuitbreaker.CircuitBreaker {
	return r.cb
}
