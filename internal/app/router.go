package app

import (
	"github.com/baryc/quote-service/config"
	"github.com/baryc/quote-service/internal/http"
	"github.com/baryc/quote-service/internal/service"
)

// RouterComponents holds router-related components.
type RouterComponents struct {
	HealthHandler *http.HealthHandler
	Config        http.RouterConfig
}

// InitializeRouter builds the health handler and the router configuration.
// dbComponents may be nil.
func InitializeRouter(services *ServiceComponents, dbComponents *DatabaseComponents, cfg *config.Config) *RouterComponents {
	healthHandler := http.NewHealthHandler()
	healthHandler.SetPricingSource(services.Store)

	var loggingService service.LoggingService
	if dbComponents != nil {
		loggingService = dbComponents.LoggingService
		if dbComponents.DB != nil {
			healthHandler.RegisterChecker("mongodb", http.HealthCheckFunc(dbComponents.DB.HealthCheck))
		}
		if dbComponents.PricingCircuitBreaker != nil {
			healthHandler.RegisterCircuitBreaker("mongodb_pricing", dbComponents.PricingCircuitBreaker)
		}
		if dbComponents.LogsCircuitBreaker != nil {
			healthHandler.RegisterCircuitBreaker("mongodb_logs", dbComponents.LogsCircuitBreaker)
		}
	}
	if services.RedisCache != nil {
		healthHandler.RegisterChecker("redis", http.HealthCheckFunc(services.RedisCache.Ping))
	}

	routerCfg := http.DefaultRouterConfig()
	routerCfg.RateLimit = cfg.Server.RateLimit
	routerCfg.RateWindow = cfg.Server.RateWindow
	if cfg.Server.RequestTimeout > 0 {
		routerCfg.RequestTimeout = cfg.Server.RequestTimeout
	}
	routerCfg.EnableAuth = cfg.Auth.Enabled
	routerCfg.APIKeys = cfg.Auth.APIKeys
	routerCfg.EnableIdempotency = cfg.Server.EnableIdempotency
	routerCfg.IdempotencyStore = services.IdempotencyStore()
	routerCfg.CORSOrigins = cfg.Server.CORSOrigins
	routerCfg.SwaggerUser = cfg.Server.SwaggerUser
	routerCfg.SwaggerPass = cfg.Server.SwaggerPass
	if cfg.Pricing.HistoryLimit > 0 {
		routerCfg.HistoryLimit = cfg.Pricing.HistoryLimit
	}
	routerCfg.Calculator = services.Calculator
	routerCfg.PricingConfig = services.PricingConfig
	routerCfg.LoggingService = loggingService
	routerCfg.AuthService = services.AuthService

	return &RouterComponents{
		HealthHandler: healthHandler,
		Config:        routerCfg,
	}
}
