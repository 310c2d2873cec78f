package service

import (
	"context"

	"github.com/baryc/quote-service/internal/domain/model"
	"github.com/baryc/quote-service/internal/repository"
)

// LoggingService stores and queries request and audit log entries.
type LoggingService interface {
	// CreateLog stores a single log entry.
	CreateLog(ctx context.Context, entry *model.LogEntry) error
	// CreateLogs stores multiple log entries in bulk.
	CreateLogs(ctx context.Context, entries []*model.LogEntry) error
	// QueryLogs retrieves log entries matching the query options, newest first.
	QueryLogs(ctx context.Context, opts model.LogQueryOptions) ([]model.LogEntry, error)
	// CountLogs returns the count of log entries matching the query options.
	CountLogs(ctx context.Context, opts model.LogQueryOptions) (int64, error)
}

// maxLogQueryLimit caps a single query page.
const maxLogQueryLimit = 500

// LoggingServiceImpl implements LoggingService on a logs repository.
type LoggingServiceImpl struct {
	repo repository.LogsRepositoryInterface
}

// NewLoggingService creates a logging service.
func NewLoggingService(repo repository.LogsRepositoryInterface) LoggingService {
	return &LoggingServiceImpl{repo: repo}
}

// CreateLog stores a single log entry.
func (s *LoggingServiceImpl) CreateLog(ctx context.Context, entry *model.LogEntry) error {
	if entry == nil {
		return nil
	}
	return s.repo.Create(ctx, entry)
}

// CreateLogs stores entries in bulk, skipping nil ones.
func (s *LoggingServiceImpl) CreateLogs(ctx context.Context, entries []*model.LogEntry) error {
	batch := make([]*model.LogEntry, 0, len(entries))
	for _, e := range entries {
		if e != nil {
			batch = append(batch, e)
		}
	}
	if len(batch) == 0 {
		return nil
	}
	return s.repo.CreateMany(ctx, batch)
}

// QueryLogs retrieves entries; the page size is capped.
func (s *LoggingServiceImpl) QueryLogs(ctx context.Context, opts model.LogQueryOptions) ([]model.LogEntry, error) {
	if opts.Limit <= 0 || opts.Limit > maxLogQueryLimit {
		opts.Limit = maxLogQueryLimit
	}
	return s.repo.Query(ctx, opts)
}

// CountLogs counts matching entries.
func (s *LoggingServiceImpl) CountLogs(ctx context.Context, opts model.LogQueryOptions) (int64, error) {
	return s.repo.Count(ctx, opts)
}
