package app

import (
	"github.com/baryc/quote-service/config"
	"github.com/baryc/quote-service/internal/logger"
)

// InitializeLogger sets up the global JSON logger.
func InitializeLogger(cfg config.LoggingConfig) {
	level := cfg.Level
	if level == "" {
		level = "info"
	}
	logger.Init(level, cfg.Pretty)
}
