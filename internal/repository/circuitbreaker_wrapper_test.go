//go:build !integration

package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/baryc/quote-service/internal/circuitbreaker"
	"github.com/baryc/quote-service/internal/domain/model"
)

var errDown = errors.New("connection refused")

type failingSnapshots struct{ calls int }

func (f *failingSnapshots) GetActive(context.Context) (*model.PricingSnapshot, error) {
	f.calls++
	return nil, errDown
}

func (f *failingSnapshots) Save(context.Context, *model.PricingSnapshot) error {
	f.calls++
	return errDown
}

func (f *failingSnapshots) History(context.Context, int) ([]model.PricingSnapshot, error) {
	f.calls++
	return nil, errDown
}

type failingLogs struct{ calls int }

func (f *failingLogs) Create(context.Context, *model.LogEntry) error {
	f.calls++
	return errDown
}

func (f *failingLogs) CreateMany(context.Context, []*model.LogEntry) error {
	f.calls++
	return errDown
}

func (f *failingLogs) Query(context.Context, model.LogQueryOptions) ([]model.LogEntry, error) {
	f.calls++
	return nil, errDown
}

func (f *failingLogs) Count(context.Context, model.LogQueryOptions) (int64, error) {
	f.calls++
	return 0, errDown
}

func testBreaker() *circuitbreaker.CircuitBreaker {
	return circuitbreaker.New(circuitbreaker.Config{
		FailureThreshold: 2,
		SuccessThreshold: 1,
		Timeout:          time.Minute,
		Name:             "test",
	})
}

func TestPricingSnapshotsRepositoryWithCircuitBreaker_Open(t *testing.T) {
	inner := &failingSnapshots{}
	cb := testBreaker()
	repo := NewPricingSnapshotsRepositoryWithCircuitBreaker(inner, cb)
	ctx := context.Background()

	_, err := repo.GetActive(ctx)
	assert.ErrorIs(t, err, errDown)
	_, err = repo.GetActive(ctx)
	assert.ErrorIs(t, err, errDown)
	require.True(t, cb.IsOpen())

	active, err := repo.GetActive(ctx)
	assert.NoError(t, err)
	assert.Nil(t, active)

	assert.ErrorIs(t, repo.Save(ctx, model.DefaultSnapshot()), ErrStorageUnavailable)
	_, err = repo.History(ctx, 5)
	assert.ErrorIs(t, err, ErrStorageUnavailable)

	assert.Equal(t, 2, inner.calls)
	assert.Same(t, cb, repo.CircuitBreaker())
}

func TestLogsRepositoryWithCircuitBreaker_Open(t *testing.T) {
	inner := &failingLogs{}
	cb := testBreaker()
	repo := NewLogsRepositoryWithCircuitBreaker(inner, cb)
	ctx := context.Background()

	assert.ErrorIs(t, repo.Create(ctx, &model.LogEntry{}), errDown)
	assert.ErrorIs(t, repo.CreateMany(ctx, []*model.LogEntry{{}}), errDown)
	require.True(t, cb.IsOpen())

	assert.NoError(t, repo.Create(ctx, &model.LogEntry{}))
	assert.NoError(t, repo.CreateMany(ctx, []*model.LogEntry{{}}))
	_, err := repo.Query(ctx, model.LogQueryOptions{})
	assert.ErrorIs(t, err, ErrStorageUnavailable)
	_, err = repo.Count(ctx, model.LogQueryOptions{})
	assert.ErrorIs(t, err, ErrStorageUnavailable)

	assert.Equal(t, 2, inner.calls)
}
