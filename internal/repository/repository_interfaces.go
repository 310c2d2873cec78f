package repository

import (
	"context"

	"github.com/baryc/quote-service/internal/domain/model"
)

// PricingSnapshotsRepositoryInterface stores versioned pricing snapshots.
type PricingSnapshotsRepositoryInterface interface {
	GetActive(ctx context.Context) (*model.PricingSnapshot, error)
	Save(ctx context.Context, snap *model.PricingSnapshot) error
	History(ctx context.Context, limit int) ([]model.PricingSnapshot, error)
}

// LogsRepositoryInterface stores request and audit log entries.
type LogsRepositoryInterface interface {
	Create(ctx context.Context, entry *model.LogEntry) error
	CreateMany(ctx context.Context, entries []*model.LogEntry) error
	Query(ctx context.Context, opts model.LogQueryOptions) ([]model.LogEntry, error)
	Count(ctx context.Context, opts model.LogQueryOptions) (int64, error)
}
