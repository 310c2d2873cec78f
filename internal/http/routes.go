package http

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/baryc/quote-service/internal/domain/dto"
	"github.com/baryc/quote-service/internal/middleware"
)

// Login attempts allowed per client IP.
const (
	loginRateLimit  = 10
	loginRateWindow = time.Minute
)

// RouteGroup defines a group of routes that can be registered.
type RouteGroup interface {
	// RegisterRoutes registers routes to the given router group.
	RegisterRoutes(rg *gin.RouterGroup, cfg *RouterConfig)
}

// QuoteRoutes registers the quoting endpoints.
type QuoteRoutes struct {
	handler *Handler
}

// NewQuoteRoutes creates a new QuoteRoutes instance.
func NewQuoteRoutes(handler *Handler) *QuoteRoutes {
	return &QuoteRoutes{handler: handler}
}

// RegisterRoutes registers the quote routes. The computation endpoints
// require an API key when API key auth is enabled; the active pricing
// configuration is always public.
func (r *QuoteRoutes) RegisterRoutes(rg *gin.RouterGroup, cfg *RouterConfig) {
	rg.GET("/pricing-config", r.handler.PricingConfig)

	quotes := rg.Group("")
	if cfg.EnableAuth && len(cfg.APIKeys) > 0 {
		quotes.Use(middleware.APIKeyAuth(cfg.APIKeys))
	}
	quotes.POST("/quote", r.handler.Quote)
	quotes.POST("/cost-basis", r.handler.CostBasis)
	quotes.POST("/hourly-cost", r.handler.HourlyCost)
	quotes.POST("/order/totals", r.handler.OrderTotals)
}

// AdminRoutes registers the login endpoint and the JWT-protected
// configuration endpoints.
type AdminRoutes struct {
	auth  *AuthHandler
	admin *AdminHandler
}

// NewAdminRoutes creates a new AdminRoutes instance.
func NewAdminRoutes(auth *AuthHandler, admin *AdminHandler) *AdminRoutes {
	return &AdminRoutes{auth: auth, admin: admin}
}

// RegisterRoutes registers the admin routes.
func (r *AdminRoutes) RegisterRoutes(rg *gin.RouterGroup, cfg *RouterConfig) {
	loginLimiter := middleware.NewRateLimiter(loginRateLimit, loginRateWindow)
	rg.POST("/auth/login", loginLimiter.RateLimit(), r.auth.Login)

	admin := rg.Group("/admin",
		middleware.JWTAuth(cfg.AuthService),
		middleware.RequireRole(dto.AdminRole),
	)
	if cfg.RateLimit > 0 {
		admin.Use(middleware.NewRateLimiter(cfg.RateLimit, cfg.RateWindow).UserRateLimit())
	}
	admin.PUT("/pricing-config", r.admin.ReplacePricingConfig)
	admin.GET("/pricing-config/history", r.admin.History)
	admin.POST("/pricing-config/services", r.admin.AddService)
	admin.PATCH("/pricing-config/services/:key", r.admin.UpdateService)
	admin.DELETE("/pricing-config/services/:key", r.admin.RemoveService)
	admin.PUT("/pricing-config/costs/:key", r.admin.SetCost)
	admin.GET("/audit", r.admin.AuditLog)
}
