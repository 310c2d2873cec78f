// Package repository provides the MongoDB data access layer.
package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	pricingSnapshotsCollection = "pricing_snapshots"
	logsCollection             = "logs"

	logsTTLIndex = "logs_ttl"
)

// MongoConfig tunes the client pool and the start-up retry.
type MongoConfig struct {
	MaxPoolSize            uint64
	MinPoolSize            uint64
	MaxConnIdleTime        time.Duration
	ConnectTimeout         time.Duration // one connect and ping attempt
	ServerSelectionTimeout time.Duration
	// ConnectRetryMaxElapsed bounds the retries of the first connection.
	// Zero means a single attempt.
	ConnectRetryMaxElapsed time.Duration
}

// DefaultMongoConfig returns the settings used in production.
func DefaultMongoConfig() MongoConfig {
	return MongoConfig{
		MaxPoolSize:            20,
		MinPoolSize:            2,
		MaxConnIdleTime:        10 * time.Minute,
		ConnectTimeout:         10 * time.Second,
		ServerSelectionTimeout: 5 * time.Second,
		ConnectRetryMaxElapsed: time.Minute,
	}
}

func (c MongoConfig) clientOptions(uri string) *options.ClientOptions {
	return options.Client().
		ApplyURI(uri).
		SetMaxPoolSize(c.MaxPoolSize).
		SetMinPoolSize(c.MinPoolSize).
		SetMaxConnIdleTime(c.MaxConnIdleTime).
		SetConnectTimeout(c.ConnectTimeout).
		SetServerSelectionTimeout(c.ServerSelectionTimeout).
		SetRetryWrites(true).
		SetRetryReads(true)
}

func (c MongoConfig) retryPolicy() backoff.BackOff {
	if c.ConnectRetryMaxElapsed <= 0 {
		return &backoff.StopBackOff{}
	}
	policy := backoff.NewExponentialBackOff()
	policy.MaxElapsedTime = c.ConnectRetryMaxElapsed
	policy.MaxInterval = 10 * time.Second
	return policy
}

// MongoDB holds the client and the collections of the quote service.
type MongoDB struct {
	Client           *mongo.Client
	Database         *mongo.Database
	PricingSnapshots *mongo.Collection
	Logs             *mongo.Collection
}

// NewMongoDB connects with DefaultMongoConfig.
func NewMongoDB(uri, databaseName string) (*MongoDB, error) {
	return NewMongoDBWithConfig(uri, databaseName, DefaultMongoConfig())
}

// NewMongoDBWithConfig connects, retrying with exponential backoff while the
// server is unreachable, and creates the indexes.
func NewMongoDBWithConfig(uri, databaseName string, cfg MongoConfig) (*MongoDB, error) {
	client, err := dial(cfg, cfg.clientOptions(uri))
	if err != nil {
		return nil, err
	}

	db := client.Database(databaseName)
	m := &MongoDB{
		Client:           client,
		Database:         db,
		PricingSnapshots: db.Collection(pricingSnapshotsCollection),
		Logs:             db.Collection(logsCollection),
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ConnectTimeout)
	defer cancel()
	if err := m.ensureIndexes(ctx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	return m, nil
}

func dial(cfg MongoConfig, opts *options.ClientOptions) (*mongo.Client, error) {
	attempt := func() (*mongo.Client, error) {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.ConnectTimeout)
		defer cancel()

		client, err := mongo.Connect(ctx, opts)
		if err != nil {
			return nil, fmt.Errorf("connect: %w", err)
		}
		if err := client.Ping(ctx, nil); err != nil {
			_ = client.Disconnect(context.Background())
			return nil, fmt.Errorf("ping: %w", err)
		}
		return client, nil
	}

	return backoff.RetryNotifyWithData(attempt, cfg.retryPolicy(), func(err error, wait time.Duration) {
		log.Warn().Err(err).Dur("retry_in", wait).Msg("MongoDB unreachable, retrying")
	})
}

// Snapshots are looked up by version and by the active flag.
var snapshotIndexes = []mongo.IndexModel{
	{Keys: bson.D{{Key: "version", Value: 1}}, Options: options.Index().SetUnique(true)},
	{Keys: bson.D{{Key: "active", Value: 1}}},
}

// Audit queries filter by action and actor, newest first.
var logIndexes = []mongo.IndexModel{
	{Keys: bson.D{{Key: "request_id", Value: 1}}},
	{Keys: bson.D{{Key: "action_type", Value: 1}, {Key: "timestamp", Value: -1}}},
	{Keys: bson.D{{Key: "actor", Value: 1}, {Key: "timestamp", Value: -1}}},
}

func (m *MongoDB) ensureIndexes(ctx context.Context) error {
	if _, err := m.PricingSnapshots.Indexes().CreateMany(ctx, snapshotIndexes); err != nil {
		return fmt.Errorf("%s indexes: %w", pricingSnapshotsCollection, err)
	}
	if _, err := m.Logs.Indexes().CreateMany(ctx, logIndexes); err != nil {
		log.Warn().Err(err).Str("collection", logsCollection).Msg("Failed to create indexes")
	}
	return nil
}

// SetLogsTTL makes log entries expire ttlDays after their timestamp. The
// previous TTL index is replaced; a concurrent instance creating the same
// index is not an error.
func (m *MongoDB) SetLogsTTL(ctx context.Context, ttlDays int) error {
	_, _ = m.Logs.Indexes().DropOne(ctx, logsTTLIndex)

	_, err := m.Logs.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "timestamp", Value: 1}},
		Options: options.Index().
			SetName(logsTTLIndex).
			SetExpireAfterSeconds(int32((time.Duration(ttlDays) * 24 * time.Hour).Seconds())),
	})
	var cmdErr mongo.CommandError
	if errors.As(err, &cmdErr) && cmdErr.Name == "IndexOptionsConflict" {
		return nil
	}
	return err
}

// Close disconnects the client.
func (m *MongoDB) Close(ctx context.Context) error {
	return m.Client.Disconnect(ctx)
}

// HealthCheck pings the server, giving up after two seconds.
func (m *MongoDB) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return m.Client.Ping(ctx, nil)
}
