// Package config loads the quote service configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/caarlos0/env/v9"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
)

// Cache backends.
const (
	CacheBackendMemory = "memory"
	CacheBackendRedis  = "redis"
)

// minJWTSecretLength is the shortest accepted HMAC secret, in bytes.
const minJWTSecretLength = 32

// Config holds the complete application configuration.
type Config struct {
	Server   ServerConfig
	Cache    CacheConfig
	Auth     AuthConfig
	Database DatabaseConfig
	Logging  LoggingConfig
	Pricing  PricingConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port              string        `env:"PORT" envDefault:"8080"`
	ReadTimeout       time.Duration `env:"HTTP_READ_TIMEOUT" envDefault:"10s"`
	WriteTimeout      time.Duration `env:"HTTP_WRITE_TIMEOUT" envDefault:"15s"`
	IdleTimeout       time.Duration `env:"HTTP_IDLE_TIMEOUT" envDefault:"60s"`
	ShutdownTimeout   time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT" envDefault:"10s"`
	RequestTimeout    time.Duration `env:"HTTP_REQUEST_TIMEOUT" envDefault:"10s"`
	RateLimit         int           `env:"RATE_LIMIT" envDefault:"100"`
	RateWindow        time.Duration `env:"RATE_WINDOW" envDefault:"1m"`
	CORSOrigins       []string      `env:"CORS_ORIGINS" envSeparator:","`
	SwaggerUser       string        `env:"SWAGGER_USER"`
	SwaggerPass       string        `env:"SWAGGER_PASS"`
	EnableIdempotency bool          `env:"IDEMPOTENCY_ENABLED" envDefault:"true"`
}

// CacheConfig holds the quote result cache configuration.
type CacheConfig struct {
	Enabled       bool          `env:"CACHE_ENABLED" envDefault:"true"`
	Backend       string        `env:"CACHE_BACKEND" envDefault:"memory"`
	Size          int           `env:"CACHE_SIZE" envDefault:"1000"`
	TTL           time.Duration `env:"CACHE_TTL" envDefault:"5m"`
	RedisAddr     string        `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword string        `env:"REDIS_PASSWORD"`
	RedisDB       int           `env:"REDIS_DB" envDefault:"0"`
}

// AuthConfig holds authentication configuration. API keys protect the
// quoting endpoints; the admin account protects configuration changes.
type AuthConfig struct {
	Enabled           bool          `env:"AUTH_ENABLED" envDefault:"false"`
	APIKeys           []string      `env:"API_KEYS" envSeparator:","`
	AdminUsername     string        `env:"ADMIN_USERNAME" envDefault:"admin"`
	AdminPasswordHash string        `env:"ADMIN_PASSWORD_HASH"`
	JWTSecretKey      string        `env:"JWT_SECRET_KEY"`
	TokenTTL          time.Duration `env:"JWT_TOKEN_TTL" envDefault:"1h"`
}

// AdminEnabled reports whether the admin endpoints are served.
func (a AuthConfig) AdminEnabled() bool {
	return a.AdminPasswordHash != ""
}

// DatabaseConfig holds MongoDB configuration.
type DatabaseConfig struct {
	Enabled      bool          `env:"MONGODB_ENABLED" envDefault:"false"`
	URI          string        `env:"MONGODB_URI" envDefault:"mongodb://localhost:27017"`
	DatabaseName string        `env:"MONGODB_DATABASE" envDefault:"quote_service"`
	LogsTTL      time.Duration `env:"MONGODB_LOGS_TTL" envDefault:"720h"`
	// ConnectRetry bounds the time spent retrying the first connection.
	ConnectRetry time.Duration `env:"MONGODB_CONNECT_RETRY" envDefault:"1m"`

	CircuitBreakerFailureThreshold int           `env:"CIRCUIT_BREAKER_FAILURE_THRESHOLD" envDefault:"5"`
	CircuitBreakerSuccessThreshold int           `env:"CIRCUIT_BREAKER_SUCCESS_THRESHOLD" envDefault:"2"`
	CircuitBreakerTimeout          time.Duration `env:"CIRCUIT_BREAKER_TIMEOUT" envDefault:"30s"`
}

// LoggingConfig holds logger configuration.
type LoggingConfig struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Pretty bool   `env:"LOG_PRETTY" envDefault:"false"`
}

// PricingConfig holds pricing configuration settings.
type PricingConfig struct {
	// RefreshSchedule is a cron spec for re-reading the active snapshot, so
	// that changes made through another instance are picked up. Empty
	// disables the job.
	RefreshSchedule string `env:"PRICING_REFRESH_SCHEDULE" envDefault:"@every 30s"`
	// HistoryLimit caps the versions returned by the history endpoint.
	HistoryLimit int `env:"PRICING_HISTORY_LIMIT" envDefault:"50"`
}

// Load reads the optional env files (".env" when none is given), then the
// environment, and validates the result. Variables already set in the
// environment win over the files.
func Load(envFiles ...string) (*Config, error) {
	if err := godotenv.Load(envFiles...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load env file: %w", err)
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg.normalize()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) normalize() {
	c.Cache.Backend = strings.ToLower(strings.TrimSpace(c.Cache.Backend))
	c.Server.CORSOrigins = trimAll(c.Server.CORSOrigins)
	c.Auth.APIKeys = trimAll(c.Auth.APIKeys)
}

// Validate reports every misconfiguration at once.
func (c *Config) Validate() error {
	var errs []error

	if c.Server.Port == "" {
		errs = append(errs, errors.New("PORT is required"))
	}
	if c.Server.RateLimit < 0 {
		errs = append(errs, errors.New("RATE_LIMIT must not be negative"))
	}
	if c.Server.RateLimit > 0 && c.Server.RateWindow <= 0 {
		errs = append(errs, errors.New("RATE_WINDOW must be positive"))
	}

	switch c.Cache.Backend {
	case CacheBackendMemory:
	case CacheBackendRedis:
		if c.Cache.RedisAddr == "" {
			errs = append(errs, errors.New("REDIS_ADDR is required for the redis cache backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("CACHE_BACKEND %q: must be memory or redis", c.Cache.Backend))
	}

	if c.Auth.Enabled && len(c.Auth.APIKeys) == 0 {
		errs = append(errs, errors.New("API_KEYS is required when AUTH_ENABLED is true"))
	}
	if c.Auth.AdminEnabled() {
		if len(c.Auth.JWTSecretKey) < minJWTSecretLength {
			errs = append(errs, fmt.Errorf("JWT_SECRET_KEY must be at least %d bytes when ADMIN_PASSWORD_HASH is set", minJWTSecretLength))
		}
		if c.Auth.AdminUsername == "" {
			errs = append(errs, errors.New("ADMIN_USERNAME is required"))
		}
		if c.Auth.TokenTTL <= 0 {
			errs = append(errs, errors.New("JWT_TOKEN_TTL must be positive"))
		}
	}

	if c.Database.Enabled && c.Database.URI == "" {
		errs = append(errs, errors.New("MONGODB_URI is required when MONGODB_ENABLED is true"))
	}

	if c.Pricing.RefreshSchedule != "" {
		if _, err := cron.ParseStandard(c.Pricing.RefreshSchedule); err != nil {
			errs = append(errs, fmt.Errorf("PRICING_REFRESH_SCHEDULE: %w", err))
		}
	}

	return errors.Join(errs...)
}

func trimAll(values []string) []string {
	out := values[:0]
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
