// Package main is the entry point for the quote-service application.
//
// @title           Quote Service API
// @version         1.0.0
// @description     Quoting core of a furniture restoration workshop: surface-based pricing, transport brackets, cost basis and versioned pricing configuration.
//
// @contact.name   API Support
// @contact.email  support@example.com
// @contact.url    https://github.com/baryc/quote-service
//
// @license.name  MIT
// @license.url   https://opensource.org/licenses/MIT
//
// @host      localhost:8080
// @BasePath  /
//
// @securityDefinitions.apikey  ApiKeyAuth
// @in                          header
// @name                        X-API-Key
// @description                 API key for the quoting endpoints. Required if authentication is enabled.
//
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
// @description                 Admin token from /api/auth/login, as "Bearer <token>".
//
// @tag.name        Quotes
// @tag.description Quote and cost basis computations
//
// @tag.name        Pricing
// @tag.description Active pricing configuration
//
// @tag.name        Admin
// @tag.description Pricing configuration management
//
// @tag.name        Auth
// @tag.description Admin authentication
//
// @tag.name        Health
// @tag.description Health check endpoints
package main

import (
	"github.com/rs/zerolog/log"

	"github.com/baryc/quote-service/config"
	_ "github.com/baryc/quote-service/docs" // swagger docs
	"github.com/baryc/quote-service/internal/app"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	application, err := app.InitializeApp(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize application")
	}

	server := application.NewServer(cfg.Server)
	if err := server.Run(); err != nil {
		log.Fatal().Err(err).Msg("Server error")
	}
}
