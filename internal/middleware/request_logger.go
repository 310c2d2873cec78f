package middleware

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/baryc/quote-service/internal/domain/model"
	"github.com/baryc/quote-service/internal/logger"
	"github.com/baryc/quote-service/internal/service"
)

const (
	// SnapshotVersionKey holds the pricing version a handler computed against.
	SnapshotVersionKey = "snapshot_version"
	// PricingVersionHeader echoes SnapshotVersionKey to the client.
	PricingVersionHeader = "X-Pricing-Version"
)

// probePaths are polled by the orchestrator and the metrics scraper; they
// are neither printed nor stored.
var probePaths = map[string]struct{}{
	"/healthz": {},
	"/readyz":  {},
	"/metrics": {},
}

// RequestLogger prints one line per request and, when loggingService is
// set, stores an entry in the logs collection through the async sink.
func RequestLogger(loggingService service.LoggingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		if _, probe := probePaths[c.Request.URL.Path]; probe {
			return
		}

		status := c.Writer.Status()
		level := statusLevel(status)
		entry := &model.LogEntry{
			Timestamp:       time.Now().UTC(),
			Level:           level.String(),
			Message:         "HTTP request",
			RequestID:       GetRequestID(c),
			Method:          c.Request.Method,
			Path:            c.Request.URL.Path,
			StatusCode:      status,
			Duration:        time.Since(start).Milliseconds(),
			IP:              c.ClientIP(),
			UserAgent:       c.Request.UserAgent(),
			Actor:           GetActor(c),
			Client:          GetClient(c),
			SnapshotVersion: c.GetInt(SnapshotVersionKey),
		}
		if last := c.Errors.Last(); last != nil {
			entry.Error = last.Error()
		}

		event := logger.From(c.Request.Context()).WithLevel(level).
			Str("method", entry.Method).
			Str("path", entry.Path).
			Str("route", c.FullPath()).
			Int("status_code", status).
			Int64("duration_ms", entry.Duration).
			Str("ip", entry.IP)
		if entry.Actor != "" {
			event = event.Str("actor", entry.Actor)
		}
		if entry.Client != "" {
			event = event.Str("client", entry.Client)
		}
		if entry.SnapshotVersion > 0 {
			event = event.Int("snapshot_version", entry.SnapshotVersion)
		}
		if entry.Error != "" {
			event = event.Str("error", entry.Error)
		}
		event.Msg("HTTP request")

		if loggingService != nil {
			persist(loggingService, entry)
		}
	}
}

// persist hands entry to the process-wide sink, or writes it directly when
// no sink is installed.
func persist(loggingService service.LoggingService, entry *model.LogEntry) {
	if sink := GetAsyncLogger(); sink != nil {
		sink.Log(entry)
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = loggingService.CreateLog(ctx, entry)
	}()
}

func statusLevel(status int) zerolog.Level {
	switch {
	case status >= 500:
		return zerolog.ErrorLevel
	case status >= 400:
		return zerolog.WarnLevel
	default:
		return zerolog.InfoLevel
	}
}
