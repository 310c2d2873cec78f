package repository

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/baryc/quote-service/internal/domain/model"
)

// LogsRepository stores request and audit log entries.
type LogsRepository struct {
	collection *mongo.Collection
}

// NewLogsRepository creates a new logs repository.
func NewLogsRepository(db *MongoDB) *LogsRepository {
	return &LogsRepository{
		collection: db.Logs,
	}
}

// Create inserts a log entry, filling in ID and timestamp when missing.
func (r *LogsRepository) Create(ctx context.Context, entry *model.LogEntry) error {
	prepareEntry(entry)
	_, err := r.collection.InsertOne(ctx, entry)
	return err
}

// CreateMany inserts entries in one round trip.
func (r *LogsRepository) CreateMany(ctx context.Context, entries []*model.LogEntry) error {
	if len(entries) == 0 {
		return nil
	}

	docs := make([]any, len(entries))
	for i, entry := range entries {
		prepareEntry(entry)
		docs[i] = entry
	}

	_, err := r.collection.InsertMany(ctx, docs, options.InsertMany().SetOrdered(false))
	return err
}

// Query returns entries matching opts, newest first.
func (r *LogsRepository) Query(ctx context.Context, opts model.LogQueryOptions) ([]model.LogEntry, error) {
	find := options.Find().
		SetSort(bson.D{{Key: "timestamp", Value: -1}}).
		SetSkip(int64(max(opts.Skip, 0)))
	if opts.Limit > 0 {
		find.SetLimit(int64(opts.Limit))
	}

	cursor, err := r.collection.Find(ctx, logFilter(opts), find)
	if err != nil {
		return nil, fmt.Errorf("find logs: %w", err)
	}
	defer func() { _ = cursor.Close(ctx) }()

	entries := make([]model.LogEntry, 0, max(opts.Limit, 0))
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, fmt.Errorf("decode logs: %w", err)
	}
	return entries, nil
}

// Count returns the number of entries matching opts.
func (r *LogsRepository) Count(ctx context.Context, opts model.LogQueryOptions) (int64, error) {
	return r.collection.CountDocuments(ctx, logFilter(opts))
}

// logFilter builds the query document. Empty options match every entry.
func logFilter(opts model.LogQueryOptions) bson.D {
	filter := bson.D{}
	eq := func(field, value string) {
		if value != "" {
			filter = append(filter, bson.E{Key: field, Value: value})
		}
	}
	eq("request_id", opts.RequestID)
	eq("level", opts.Level)
	eq("actor", opts.Actor)
	eq("path", opts.Path)

	switch {
	case opts.ActionType != "":
		filter = append(filter, bson.E{Key: "action_type", Value: opts.ActionType})
	case opts.AuditOnly:
		filter = append(filter, bson.E{Key: "action_type", Value: bson.D{{Key: "$exists", Value: true}}})
	}

	var window bson.D
	if opts.StartTime != nil {
		window = append(window, bson.E{Key: "$gte", Value: *opts.StartTime})
	}
	if opts.EndTime != nil {
		window = append(window, bson.E{Key: "$lte", Value: *opts.EndTime})
	}
	if len(window) > 0 {
		filter = append(filter, bson.E{Key: "timestamp", Value: window})
	}
	return filter
}

func prepareEntry(entry *model.LogEntry) {
	if entry.ID.IsZero() {
		entry.ID = primitive.NewObjectID()
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now().UTC()
	}
}
