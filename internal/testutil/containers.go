//go:build integration

// Package testutil starts the MongoDB and Redis containers used by
// integration tests.
package testutil

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/mongodb"
	"github.com/testcontainers/testcontainers-go/wait"
)

// MongoDBContainer wraps a MongoDB testcontainer.
type MongoDBContainer struct {
	Container testcontainers.Container
	URI       string
}

// SetupMongoDB starts a MongoDB container.
func SetupMongoDB(ctx context.Context) (*MongoDBContainer, error) {
	container, err := mongodb.Run(ctx, "mongo:7.0")
	if err != nil {
		return nil, fmt.Errorf("failed to start MongoDB container: %w", err)
	}

	uri, err := container.ConnectionString(ctx)
	if err != nil {
		_ = container.Terminate(ctx)
		return nil, fmt.Errorf("failed to get connection string: %w", err)
	}

	return &MongoDBContainer{Container: container, URI: uri}, nil
}

// Cleanup terminates the container.
func (m *MongoDBContainer) Cleanup(ctx context.Context) error {
	if m.Container == nil {
		return nil
	}
	return m.Container.Terminate(ctx)
}

// RedisContainer wraps a Redis testcontainer.
type RedisContainer struct {
	Container testcontainers.Container
	Addr      string
}

// SetupRedis starts a Redis container.
func SetupRedis(ctx context.Context) (*RedisContainer, error) {
	req := testcontainers.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(30 * time.Second),
	}
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to start Redis container: %w", err)
	}

	addr, err := container.PortEndpoint(ctx, "6379/tcp", "")
	if err != nil {
		_ = container.Terminate(ctx)
		return nil, fmt.Errorf("failed to get Redis endpoint: %w", err)
	}

	return &RedisContainer{Container: container, Addr: addr}, nil
}

// Cleanup terminates the container.
func (r *RedisContainer) Cleanup(ctx context.Context) error {
	if r.Container == nil {
		return nil
	}
	return r.Container.Terminate(ctx)
}

var (
	sharedMongo     *MongoDBContainer
	sharedMongoErr  error
	sharedMongoOnce sync.Once
)

// GetSharedMongoDB returns a MongoDB container shared by all tests of a
// package. It is started on first use.
func GetSharedMongoDB(ctx context.Context) (*MongoDBContainer, error) {
	sharedMongoOnce.Do(func() {
		sharedMongo, sharedMongoErr = SetupMongoDB(ctx)
	})
	return sharedMongo, sharedMongoErr
}

// SetupTestMainWithMongoDB runs m against a shared MongoDB container and
// terminates it afterwards.
//
//	func TestMain(m *testing.M) {
//		os.Exit(testutil.SetupTestMainWithMongoDB(context.Background(), m))
//	}
func SetupTestMainWithMongoDB(ctx context.Context, m *testing.M) int {
	if _, err := GetSharedMongoDB(ctx); err != nil {
		panic(err)
	}

	code := m.Run()

	if sharedMongo != nil {
		if err := sharedMongo.Cleanup(ctx); err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "warning: failed to clean up MongoDB container: %v\n", err)
		}
	}
	return code
}

// SharedMongoURI returns the URI of the shared container.
func SharedMongoURI() string {
	if sharedMongo == nil {
		panic("shared MongoDB container not initialized, call GetSharedMongoDB first")
	}
	return sharedMongo.URI
}

// DBName turns a test name into a unique MongoDB database name.
func DBName(testName string) string {
	name := strings.NewReplacer("/", "_", "\\", "_", " ", "_", ".", "_").Replace(testName)
	if len(name) > 40 {
		name = name[:40]
	}
	return fmt.Sprintf("%s_%d", name, time.Now().UnixNano()%1000000)
}
