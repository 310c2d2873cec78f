package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/baryc/quote-service/internal/circuitbreaker"
	"github.com/baryc/quote-service/internal/domain/dto"
	"github.com/baryc/quote-service/internal/domain/model"
	"github.com/baryc/quote-service/internal/i18n"
	"github.com/baryc/quote-service/internal/logger"
	"github.com/baryc/quote-service/internal/repository"
	"github.com/baryc/quote-service/internal/service"
)

// MapError returns the HTTP status, error code and message key for err.
// Unknown errors map to 500.
func MapError(err error) (status int, code, messageKey string) {
	switch {
	case errors.Is(err, model.ErrInvalidSnapshot), errors.Is(err, service.ErrEmptyLabel):
		return http.StatusBadRequest, dto.ErrCodeInvalidRequest, i18n.ErrKeyInvalidPricingConfig
	case errors.Is(err, model.ErrServiceNotFound):
		return http.StatusNotFound, dto.ErrCodeNotFound, i18n.ErrKeyServiceNotFound
	case errors.Is(err, repository.ErrVersionConflict):
		return http.StatusConflict, dto.ErrCodeConflict, i18n.ErrKeyPricingConflict
	case errors.Is(err, repository.ErrStorageUnavailable), errors.Is(err, circuitbreaker.ErrCircuitOpen):
		return http.StatusServiceUnavailable, dto.ErrCodeUnavailable, i18n.ErrKeyStorageUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, dto.ErrCodeTimeout, i18n.ErrKeyTimeout
	default:
		return http.StatusInternalServerError, dto.ErrCodeInternal, i18n.ErrKeyInternalError
	}
}

// ErrorHandler logs errors attached with c.Error and, when the handler wrote
// nothing, renders the last one.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		err := c.Errors.Last()
		status, code, key := MapError(err.Err)

		logged := status
		if c.Writer.Written() {
			logged = c.Writer.Status()
		}

		event := logger.From(c.Request.Context()).Warn()
		if logged >= http.StatusInternalServerError {
			event = logger.From(c.Request.Context()).Error()
		}
		event.
			Err(err.Err).
			Int("status_code", logged).
			Str("path", c.Request.URL.Path).
			Str("method", c.Request.Method).
			Msg("Request error")

		if c.Writer.Written() {
			return
		}

		message := i18n.GetTranslator().Translate(key, i18n.GetLocale(c))
		c.JSON(status, dto.NewError(code, message).WithRequestID(GetRequestID(c)).WithCause(err.Err))
	}
}
