package app

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/baryc/quote-service/config"
	"github.com/baryc/quote-service/internal/domain/model"
)

// testConfig mirrors the environment defaults with the database disabled.
func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			Port:              "8080",
			RequestTimeout:    10 * time.Second,
			RateLimit:         100,
			RateWindow:        time.Minute,
			EnableIdempotency: true,
		},
		Cache: config.CacheConfig{
			Enabled: true,
			Backend: config.CacheBackendMemory,
			Size:    1000,
			TTL:     5 * time.Minute,
		},
		Auth: config.AuthConfig{
			AdminUsername: "admin",
			TokenTTL:      time.Hour,
		},
		Logging: config.LoggingConfig{Level: "error"},
		Pricing: config.PricingConfig{RefreshSchedule: "@every 30s", HistoryLimit: 50},
	}
}

func withAdmin(t *testing.T, cfg *config.Config, password string) *config.Config {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	cfg.Auth.AdminPasswordHash = string(hash)
	cfg.Auth.JWTSecretKey = "0123456789abcdef0123456789abcdef"
	return cfg
}

var sandingCabinet = model.QuoteInput{
	Dimensions: model.Dimensions{Length: 1, Width: 0.5, Height: 0.8},
	Services:   map[string]bool{"sanding": true},
	Transport:  model.TransportConfig{Mode: model.TransportSelf},
}
