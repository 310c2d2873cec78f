package app

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/baryc/quote-service/config"
	"github.com/baryc/quote-service/internal/circuitbreaker"
	"github.com/baryc/quote-service/internal/repository"
	"github.com/baryc/quote-service/internal/service"
)

// DatabaseComponents holds database-related components.
type DatabaseComponents struct {
	DB                    *repository.MongoDB
	PricingRepo           repository.PricingSnapshotsRepositoryInterface
	LoggingService        service.LoggingService
	PricingCircuitBreaker *circuitbreaker.CircuitBreaker
	LogsCircuitBreaker    *circuitbreaker.CircuitBreaker
}

// InitializeDatabase connects to MongoDB and builds the repositories.
// Returns nil if the database is disabled or the connection fails; the
// service then keeps its pricing configuration in memory.
func InitializeDatabase(cfg config.DatabaseConfig) *DatabaseComponents {
	if !cfg.Enabled {
		return nil
	}

	mongoCfg := repository.DefaultMongoConfig()
	mongoCfg.ConnectRetryMaxElapsed = cfg.ConnectRetry

	db, err := repository.NewMongoDBWithConfig(cfg.URI, cfg.DatabaseName, mongoCfg)
	if err != nil {
		log.Error().Err(err).Msg("Failed to connect to MongoDB - continuing without database")
		return nil
	}

	log.Info().Str("database", cfg.DatabaseName).Msg("Connected to MongoDB")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.SetLogsTTL(ctx, logsTTLDays(cfg.LogsTTL)); err != nil {
		log.Warn().Err(err).Msg("Failed to set logs TTL index")
	}

	pricingCB := newCircuitBreaker(cfg, "mongodb-pricing")
	logsCB := newCircuitBreaker(cfg, "mongodb-logs")

	logsRepo := repository.NewLogsRepositoryWithCircuitBreaker(repository.NewLogsRepository(db), logsCB)
	pricingRepo := repository.NewPricingSnapshotsRepositoryWithCircuitBreaker(repository.NewPricingSnapshotsRepository(db), pricingCB)

	return &DatabaseComponents{
		DB:                    db,
		PricingRepo:           pricingRepo,
		LoggingService:        service.NewLoggingService(logsRepo),
		PricingCircuitBreaker: pricingCB,
		LogsCircuitBreaker:    logsCB,
	}
}

// Close disconnects from MongoDB.
func (d *DatabaseComponents) Close(ctx context.Context) error {
	if d == nil || d.DB == nil {
		return nil
	}
	return d.DB.Close(ctx)
}

func newCircuitBreaker(cfg config.DatabaseConfig, name string) *circuitbreaker.CircuitBreaker {
	return circuitbreaker.New(circuitbreaker.Config{
		FailureThreshold: cfg.CircuitBreakerFailureThreshold,
		SuccessThreshold: cfg.CircuitBreakerSuccessThreshold,
		Timeout:          cfg.CircuitBreakerTimeout,
		Name:             name,
		IsFailure:        isStorageFailure,
	})
}

// isStorageFailure keeps version conflicts from opening the circuit: they
// mean the database answered.
func isStorageFailure(err error) bool {
	return !errors.Is(err, repository.ErrVersionConflict)
}

func logsTTLDays(ttl time.Duration) int {
	days := int(ttl.Hours() / 24)
	if days < 1 {
		return 1
	}
	return days
}
