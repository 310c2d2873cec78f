// Package app provides application initialization and dependency injection.
package app

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/baryc/quote-service/config"
	"github.com/baryc/quote-service/internal/http"
	"github.com/baryc/quote-service/internal/middleware"
	"github.com/baryc/quote-service/internal/repository"
	"github.com/baryc/quote-service/internal/scheduler"
)

// App holds the wired application.
type App struct {
	Router    *gin.Engine
	Services  *ServiceComponents
	Database  *DatabaseComponents
	Scheduler *scheduler.Scheduler
}

// InitializeApp creates and wires all application dependencies.
func InitializeApp(cfg *config.Config) (*App, error) {
	InitializeLogger(cfg.Logging)

	dbComponents := InitializeDatabase(cfg.Database)

	var pricingRepo repository.PricingSnapshotsRepositoryInterface
	if dbComponents != nil {
		pricingRepo = dbComponents.PricingRepo
		middleware.InitAsyncLogger(dbComponents.LoggingService, middleware.DefaultAsyncLoggerConfig())
	}

	services := InitializeServices(cfg, pricingRepo)
	routerComponents := InitializeRouter(services, dbComponents, cfg)

	a := &App{
		Router:   http.NewRouter(routerComponents.HealthHandler, routerComponents.Config),
		Services: services,
		Database: dbComponents,
	}

	// Another instance may publish a new version; without storage there is
	// nothing to pick up.
	if pricingRepo != nil && cfg.Pricing.RefreshSchedule != "" {
		a.Scheduler = scheduler.New(services.PricingConfig, cfg.Pricing.RefreshSchedule)
		if err := a.Scheduler.Start(); err != nil {
			a.Close(context.Background())
			return nil, fmt.Errorf("start scheduler: %w", err)
		}
	}

	return a, nil
}

// NewServer creates the HTTP server for the app and registers its shutdown
// hooks.
func (a *App) NewServer(cfg config.ServerConfig) *Server {
	server := NewServer(a.Router, cfg)
	server.OnShutdown(a.Close)
	return server
}

// Close stops background work and releases connections.
func (a *App) Close(ctx context.Context) {
	if a.Scheduler != nil {
		a.Scheduler.Stop(ctx)
	}
	if al := middleware.GetAsyncLogger(); al != nil {
		stats := al.Stats()
		log.Info().
			Int64("enqueued", stats.Enqueued).
			Int64("dropped", stats.Dropped).
			Int64("written", stats.Written).
			Int64("failed", stats.Failed).
			Msg("Stopping async logger")
	}
	middleware.StopAsyncLogger()
	if a.Services != nil {
		a.Services.Stop()
	}
	if err := a.Database.Close(ctx); err != nil {
		log.Warn().Err(err).Msg("Failed to close MongoDB connection")
	}
}
