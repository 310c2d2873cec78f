//go:build integration

package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/baryc/quote-service/internal/domain/model"
	"github.com/baryc/quote-service/internal/repository"
	"github.com/baryc/quote-service/internal/testutil"
)

func TestLoggingService_Integration(t *testing.T) {
	ctx := context.Background()

	mongoContainer, err := testutil.SetupMongoDB(ctx)
	require.NoError(t, err)
	defer func() {
		require.NoError(t, mongoContainer.Cleanup(ctx))
	}()

	db, err := repository.NewMongoDB(mongoContainer.URI, "test_quote_service")
	require.NoError(t, err)
	defer func() {
		_ = db.Close(ctx)
	}()

	require.NoError(t, db.SetLogsTTL(ctx, 30))

	svc := NewLoggingService(repository.NewLogsRepository(db))

	t.Run("create and query by action", func(t *testing.T) {
		err := svc.CreateLogs(ctx, []*model.LogEntry{
			{Level: "info", Message: "Service added", Actor: "admin", ActionType: model.ActionAddService, SnapshotVersion: 2},
			{Level: "info", Message: "Service removed", Actor: "admin", ActionType: model.ActionRemoveService, SnapshotVersion: 3},
			{Level: "info", Message: "GET /api/pricing-config", RequestID: "req-1", Path: "/api/pricing-config"},
		})
		require.NoError(t, err)

		entries, err := svc.QueryLogs(ctx, model.LogQueryOptions{ActionType: model.ActionAddService})
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, 2, entries[0].SnapshotVersion)
		assert.False(t, entries[0].ID.IsZero())
	})

	t.Run("count by actor", func(t *testing.T) {
		count, err := svc.CountLogs(ctx, model.LogQueryOptions{Actor: "admin"})
		require.NoError(t, err)
		assert.Equal(t, int64(2), count)
	})

	t.Run("time window", func(t *testing.T) {
		future := time.Now().Add(time.Hour)
		entries, err := svc.QueryLogs(ctx, model.LogQueryOptions{StartTime: &future})
		require.NoError(t, err)
		assert.Empty(t, entries)
	})

	t.Run("single entry by request id", func(t *testing.T) {
		require.NoError(t, svc.CreateLog(ctx, &model.LogEntry{Level: "warn", Message: "slow", RequestID: "req-2"}))

		entries, err := svc.QueryLogs(ctx, model.LogQueryOptions{RequestID: "req-2"})
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, "warn", entries[0].Level)
	})
}
