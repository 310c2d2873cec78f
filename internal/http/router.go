package http

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/baryc/quote-service/internal/metrics"
	"github.com/baryc/quote-service/internal/middleware"
	"github.com/baryc/quote-service/internal/service"
	"github.com/baryc/quote-service/internal/service/cache"
)

// RouterConfig holds router configuration options.
type RouterConfig struct {
	RateLimit         int
	RateWindow        time.Duration
	RequestTimeout    time.Duration
	APIKeys           []string
	EnableAuth        bool
	EnableIdempotency bool
	// IdempotencyStore holds replayable responses; nil uses an in-memory store
	IdempotencyStore cache.Cache
	CORSOrigins      []string
	SwaggerUser      string
	SwaggerPass      string
	HistoryLimit     int

	Calculator     service.QuoteCalculator
	PricingConfig  service.PricingConfigService
	LoggingService service.LoggingService
	// AuthService enables the admin routes when set
	AuthService service.AuthService
}

// DefaultRouterConfig returns the default router configuration.
func DefaultRouterConfig() RouterConfig {
	return RouterConfig{
		RateLimit:      100,
		RateWindow:     time.Minute,
		RequestTimeout: 10 * time.Second,
		HistoryLimit:   50,
	}
}

// NewRouter builds the engine: probes, metrics and docs at the root, the
// quote and admin endpoints under /api.
func NewRouter(healthHandler *HealthHandler, cfg RouterConfig) *gin.Engine {
	router := gin.New()
	useGlobalMiddleware(router, &cfg)
	mountOperational(router, healthHandler, &cfg)

	api := router.Group("/api", apiMiddleware(&cfg)...)
	for _, group := range routeGroups(&cfg) {
		group.RegisterRoutes(api, &cfg)
	}
	return router
}

// routeGroups returns the groups the configured services can serve. Admin
// routes need both the auth and the pricing configuration services.
func routeGroups(cfg *RouterConfig) []RouteGroup {
	var groups []RouteGroup
	if cfg.Calculator != nil {
		groups = append(groups, NewQuoteRoutes(NewHandler(cfg.Calculator)))
	}
	if cfg.AuthService != nil && cfg.PricingConfig != nil {
		groups = append(groups, NewAdminRoutes(
			NewAuthHandler(cfg.AuthService, cfg.LoggingService),
			NewAdminHandler(cfg.PricingConfig, cfg.LoggingService, cfg.HistoryLimit),
		))
	}
	return groups
}

// Recovery runs inside RequestID so a panic is logged with its ID;
// ErrorHandler runs innermost so RequestLogger sees the rendered status.
func useGlobalMiddleware(router *gin.Engine, cfg *RouterConfig) {
	router.Use(
		middleware.CORS(cfg.CORSOrigins),
		middleware.RequestID(),
		middleware.Recovery(),
		metrics.PrometheusMiddleware(),
		middleware.Compression(),
		middleware.RequestLogger(cfg.LoggingService),
		middleware.ErrorHandler(),
	)
	if cfg.RateLimit > 0 {
		router.Use(middleware.NewRateLimiter(cfg.RateLimit, cfg.RateWindow).RateLimit())
	}
}

func mountOperational(router *gin.Engine, healthHandler *HealthHandler, cfg *RouterConfig) {
	if healthHandler != nil {
		healthHandler.Register(router)
	}
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	docs := router.Group("/swagger")
	if cfg.SwaggerUser != "" && cfg.SwaggerPass != "" {
		docs.Use(gin.BasicAuth(gin.Accounts{cfg.SwaggerUser: cfg.SwaggerPass}))
	}
	docs.GET("/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
}

func apiMiddleware(cfg *RouterConfig) []gin.HandlerFunc {
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = middleware.DefaultTimeoutConfig().Timeout
	}
	handlers := []gin.HandlerFunc{middleware.Timeout(middleware.TimeoutConfig{Timeout: timeout})}

	if cfg.EnableIdempotency {
		idem := middleware.DefaultIdempotencyConfig()
		if cfg.IdempotencyStore != nil {
			idem = middleware.IdempotencyConfig{Store: cfg.IdempotencyStore, Enabled: true}
		}
		handlers = append(handlers, middleware.Idempotency(idem))
	}
	return handlers
}
