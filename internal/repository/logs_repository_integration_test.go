//go:build integration

package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/baryc/quote-service/internal/domain/model"
)

func TestLogsRepository_Integration(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	db := setupTestDBFromSharedContainer(t)
	defer func() {
		require.NoError(t, db.Close(ctx))
	}()
	require.NoError(t, db.SetLogsTTL(ctx, 30))

	repo := NewLogsRepository(db)

	t.Run("create fills id and timestamp", func(t *testing.T) {
		entry := &model.LogEntry{
			Level:      "info",
			Message:    "POST /api/quote",
			RequestID:  "req-1",
			Method:     "POST",
			Path:       "/api/quote",
			StatusCode: 200,
			Duration:   12,
		}
		require.NoError(t, repo.Create(ctx, entry))
		assert.False(t, entry.ID.IsZero())
		assert.False(t, entry.Timestamp.IsZero())
	})

	t.Run("create many", func(t *testing.T) {
		err := repo.CreateMany(ctx, []*model.LogEntry{
			{Level: "info", Message: "Service added", Actor: "admin", ActionType: model.ActionAddService, SnapshotVersion: 2},
			{Level: "info", Message: "Cost updated", Actor: "admin", ActionType: model.ActionSetCostPerArea, SnapshotVersion: 3},
		})
		require.NoError(t, err)
		assert.NoError(t, repo.CreateMany(ctx, nil))
	})

	t.Run("query filters", func(t *testing.T) {
		entries, err := repo.Query(ctx, model.LogQueryOptions{RequestID: "req-1"})
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, "/api/quote", entries[0].Path)

		entries, err = repo.Query(ctx, model.LogQueryOptions{Actor: "admin", Limit: 1})
		require.NoError(t, err)
		require.Len(t, entries, 1)

		past := time.Now().Add(-time.Hour)
		entries, err = repo.Query(ctx, model.LogQueryOptions{StartTime: &past})
		require.NoError(t, err)
		assert.Len(t, entries, 3)
	})

	t.Run("count", func(t *testing.T) {
		count, err := repo.Count(ctx, model.LogQueryOptions{ActionType: model.ActionSetCostPerArea})
		require.NoError(t, err)
		assert.Equal(t, int64(1), count)
	})
}
