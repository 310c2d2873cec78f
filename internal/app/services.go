package app

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/baryc/quote-service/config"
	"github.com/baryc/quote-service/internal/domain/model"
	"github.com/baryc/quote-service/internal/repository"
	"github.com/baryc/quote-service/internal/service"
	"github.com/baryc/quote-service/internal/service/cache"
)

const (
	loadTimeout        = 10 * time.Second
	idempotencyTTL     = 5 * time.Minute
	idempotencyPrefix  = "idem:"
	defaultCacheShards = 16
)

// ServiceComponents holds service-related components.
type ServiceComponents struct {
	Store         *service.SnapshotStore
	PricingConfig *service.PricingConfigServiceImpl
	Calculator    *service.QuoteCalculatorService
	AuthService   service.AuthService
	// RedisCache holds replayable responses when the redis backend is
	// configured; it is nil when they are kept in process memory.
	RedisCache *service.RedisCache
}

// InitializeServices builds the pricing configuration, the calculator and
// its cache, and the admin authentication service. pricingRepo may be nil.
func InitializeServices(cfg *config.Config, pricingRepo repository.PricingSnapshotsRepositoryInterface) *ServiceComponents {
	store := service.NewSnapshotStore(nil)
	pricing := service.NewPricingConfigService(store, pricingRepo)

	ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
	defer cancel()
	if snap, err := pricing.Load(ctx); err != nil {
		log.Warn().Err(err).Msg("Failed to load pricing configuration - using defaults until the next refresh")
	} else {
		log.Info().Int("version", snap.Version).Msg("Pricing configuration loaded")
	}

	components := &ServiceComponents{
		Store:         store,
		PricingConfig: pricing,
	}

	opts := []service.Option{service.WithSnapshotSource(store)}
	if c := components.initializeCache(cfg.Cache); c != nil {
		opts = append(opts, service.WithCacheInterface(c))
	}
	components.Calculator = service.NewQuoteCalculatorService(opts...)

	store.Subscribe(func(prev, next *model.PricingSnapshot) {
		components.Calculator.InvalidateCache()
		log.Info().
			Int("previous_version", prev.Version).
			Int("version", next.Version).
			Msg("Pricing snapshot published")
	})

	if cfg.Auth.AdminEnabled() {
		components.AuthService = service.NewAdminAuthService(cfg.Auth)
	}

	return components
}

func (s *ServiceComponents) initializeCache(cfg config.CacheConfig) cache.Cache {
	if cfg.Backend == config.CacheBackendRedis {
		s.RedisCache = service.NewRedisCache(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, idempotencyTTL).
			WithKeyPrefix(idempotencyPrefix)
	}

	if !cfg.Enabled {
		return nil
	}
	if cfg.Backend == config.CacheBackendRedis {
		return service.NewRedisCache(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.TTL)
	}
	if cfg.Size <= 0 {
		return nil
	}
	return service.NewShardedCache(cfg.Size, cfg.TTL, defaultCacheShards)
}

// Stop releases cache resources.
func (s *ServiceComponents) Stop() {
	if s.Calculator != nil {
		s.Calculator.Stop()
	}
	if s.RedisCache != nil {
		s.RedisCache.Stop()
	}
}

// IdempotencyStore returns the shared response store, or nil for the
// in-process default.
func (s *ServiceComponents) IdempotencyStore() cache.Cache {
	if s.RedisCache == nil {
		return nil
	}
	return s.RedisCache
}
