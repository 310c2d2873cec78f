//go:build integration

package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/baryc/quote-service/internal/circuitbreaker"
	"github.com/baryc/quote-service/internal/domain/model"
)

func TestPricingSnapshotsRepositoryWithCircuitBreaker_Integration(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	db := setupTestDBFromSharedContainer(t)
	defer func() {
		require.NoError(t, db.Close(ctx))
	}()

	cfg := circuitbreaker.DefaultConfig()
	cfg.IsFailure = func(err error) bool { return !errors.Is(err, ErrVersionConflict) }
	cb := circuitbreaker.New(cfg)
	repo := NewPricingSnapshotsRepositoryWithCircuitBreaker(NewPricingSnapshotsRepository(db), cb)

	require.NoError(t, repo.Save(ctx, snapshotVersion(1)))
	for i := 0; i < 10; i++ {
		assert.ErrorIs(t, repo.Save(ctx, snapshotVersion(1)), ErrVersionConflict)
	}
	assert.False(t, cb.IsOpen())

	active, err := repo.GetActive(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, active.Version)
}

func TestLogsRepositoryWithCircuitBreaker_Integration(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	db := setupTestDBFromSharedContainer(t)
	defer func() {
		require.NoError(t, db.Close(ctx))
	}()

	repo := NewLogsRepositoryWithCircuitBreaker(NewLogsRepository(db), circuitbreaker.New(circuitbreaker.DefaultConfig()))

	require.NoError(t, repo.Create(ctx, &model.LogEntry{Level: "info", Message: "one"}))
	require.NoError(t, repo.CreateMany(ctx, []*model.LogEntry{{Level: "info", Message: "two"}}))

	count, err := repo.Count(ctx, model.LogQueryOptions{Level: "info"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}
