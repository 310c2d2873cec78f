package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/baryc/quote-service/internal/domain/dto"
	"github.com/baryc/quote-service/internal/i18n"
	"github.com/baryc/quote-service/internal/middleware"
)

// PricingVersionHeader reports the configuration version a response was
// computed against.
const PricingVersionHeader = middleware.PricingVersionHeader

// validatable is implemented by request bodies with rules beyond JSON shape.
type validatable interface {
	Validate() error
}

// decodeBody reads the JSON body into v and runs its Validate method if it
// has one.
func decodeBody(c *gin.Context, v any) error {
	if err := c.ShouldBindJSON(v); err != nil {
		return err
	}
	if val, ok := v.(validatable); ok {
		return val.Validate()
	}
	return nil
}

// bindRequest decodes a T from the body. On failure it writes the 400 and
// returns false.
func bindRequest[T any](c *gin.Context) (*T, bool) {
	req := new(T)
	err := decodeBody(c, req)
	if err == nil {
		return req, true
	}

	key := i18n.ErrKeyInvalidRequestBody
	var validationErr *dto.ValidationError
	if errors.As(err, &validationErr) {
		key = i18n.ErrKeyInvalidRequest
		if validationErr == dto.ErrInvalidTransportMode {
			key = i18n.ErrKeyInvalidTransportMode
		}
	}
	NewResponseBuilder(c).Error(http.StatusBadRequest, key, err)
	return nil, false
}

// ResponseBuilder writes the JSON envelopes for one request.
type ResponseBuilder struct {
	c *gin.Context
}

// NewResponseBuilder returns a builder writing to c.
func NewResponseBuilder(c *gin.Context) *ResponseBuilder {
	return &ResponseBuilder{c: c}
}

// Success writes data with the given status. The pricing version a handler
// stored under middleware.SnapshotVersionKey goes into the envelope and the
// X-Pricing-Version header.
func (b *ResponseBuilder) Success(status int, data any) {
	version := b.c.GetInt(middleware.SnapshotVersionKey)
	if version > 0 {
		b.c.Header(PricingVersionHeader, strconv.Itoa(version))
	}

	resp := dto.NewSuccess(data, version)
	resp.RequestID = middleware.GetRequestID(b.c)
	b.c.JSON(status, resp)
}

// SuccessOK writes a 200.
func (b *ResponseBuilder) SuccessOK(data any) {
	b.Success(http.StatusOK, data)
}

// SuccessCreated writes a 201.
func (b *ResponseBuilder) SuccessCreated(data any) {
	b.Success(http.StatusCreated, data)
}

// Error aborts with status and the message translated from messageKey. err,
// when given, is attached to the context for the error logger and fills the
// envelope details when it is a validation error.
func (b *ResponseBuilder) Error(status int, messageKey string, err error) {
	b.abort(status, dto.ErrCodeFromStatus(status), messageKey, err)
}

// FromError aborts with the status and message err maps to.
func (b *ResponseBuilder) FromError(err error) {
	status, code, key := middleware.MapError(err)
	b.abort(status, code, key, err)
}

func (b *ResponseBuilder) abort(status int, code, messageKey string, err error) {
	message := i18n.GetTranslator().Translate(messageKey, i18n.GetLocale(b.c))
	resp := dto.NewError(code, message).
		WithRequestID(middleware.GetRequestID(b.c)).
		WithCause(err)

	if err != nil {
		_ = b.c.Error(err)
	}
	b.c.AbortWithStatusJSON(status, resp)
}
