package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"github.com/baryc/quote-service/internal/domain/dto"
	"github.com/baryc/quote-service/internal/i18n"
	"github.com/baryc/quote-service/internal/logger"
	"github.com/baryc/quote-service/internal/metrics"
)

// Recovery turns a handler panic into a 500. The panic is logged with its
// stack, the request ID and the pricing version the handler had reached.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			recovered := recover()
			if recovered == nil {
				return
			}

			route := c.FullPath()
			if route == "" {
				route = c.Request.URL.Path
			}
			metrics.RecordPanic(route)

			requestID := GetRequestID(c)
			l := logger.Logger()
			l.Error().
				Str("request_id", requestID).
				Str("method", c.Request.Method).
				Str("route", route).
				Str("actor", GetActor(c)).
				Int("snapshot_version", c.GetInt(SnapshotVersionKey)).
				Interface("panic", recovered).
				Bytes("stack", debug.Stack()).
				Msg("Handler panicked")

			if c.Writer.Written() {
				c.Abort()
				return
			}
			message := i18n.GetTranslator().Translate(i18n.ErrKeyInternalError, i18n.GetLocale(c))
			c.AbortWithStatusJSON(http.StatusInternalServerError,
				dto.NewError(dto.ErrCodeInternal, message).WithRequestID(requestID))
		}()
		c.Next()
	}
}
