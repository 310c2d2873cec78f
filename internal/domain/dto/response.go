package dto

import (
	"errors"
	"net/http"
	"time"
)

// Error codes carried in ErrorResponse.Error.
const (
	ErrCodeInvalidRequest = "invalid_request"
	ErrCodeUnauthorized   = "unauthorized"
	ErrCodeForbidden      = "forbidden"
	ErrCodeNotFound       = "not_found"
	ErrCodeConflict       = "conflict"
	ErrCodeRateLimit      = "rate_limit_exceeded"
	ErrCodeTimeout        = "timeout"
	ErrCodeUnavailable    = "service_unavailable"
	ErrCodeInternal       = "internal_error"
)

// SuccessResponse is the envelope of every successful response.
// @Description Successful API response wrapper
type SuccessResponse struct {
	Data interface{} `json:"data" swaggertype:"object"`
	// PricingVersion is the configuration version the data was computed
	// against, when it depends on one.
	PricingVersion int       `json:"pricing_version,omitempty" example:"3"`
	RequestID      string    `json:"request_id,omitempty" example:"550e8400-e29b-41d4-a716-446655440000"`
	Timestamp      time.Time `json:"timestamp" example:"2025-01-28T10:00:00Z"`
} // @name SuccessResponse

// ErrorResponse is the envelope of every error response.
// @Description Standardized error response
type ErrorResponse struct {
	Error   string `json:"error" example:"invalid_request"`
	Message string `json:"message,omitempty" example:"Invalid request"`
	// Details maps a rejected field to the reason it was rejected.
	Details   map[string]string `json:"details,omitempty"`
	RequestID string            `json:"request_id,omitempty" example:"550e8400-e29b-41d4-a716-446655440000"`
	Timestamp time.Time         `json:"timestamp" example:"2025-01-28T10:00:00Z"`
} // @name ErrorResponse

// NewSuccess wraps data computed against the given pricing version (0 when
// it does not depend on one).
func NewSuccess(data interface{}, pricingVersion int) SuccessResponse {
	return SuccessResponse{
		Data:           data,
		PricingVersion: pricingVersion,
		Timestamp:      time.Now().UTC(),
	}
}

// NewError builds an error envelope.
func NewError(code, message string) ErrorResponse {
	return ErrorResponse{
		Error:     code,
		Message:   message,
		Timestamp: time.Now().UTC(),
	}
}

// WithRequestID sets the request ID.
func (e ErrorResponse) WithRequestID(requestID string) ErrorResponse {
	e.RequestID = requestID
	return e
}

// WithCause fills Details from err when it is, or wraps, a ValidationError.
func (e ErrorResponse) WithCause(err error) ErrorResponse {
	var validationErr *ValidationError
	if errors.As(err, &validationErr) {
		e.Details = map[string]string{validationErr.Field: validationErr.Message}
	}
	return e
}

var statusCodes = map[int]string{
	http.StatusBadRequest:          ErrCodeInvalidRequest,
	http.StatusUnauthorized:        ErrCodeUnauthorized,
	http.StatusForbidden:           ErrCodeForbidden,
	http.StatusNotFound:            ErrCodeNotFound,
	http.StatusConflict:            ErrCodeConflict,
	http.StatusTooManyRequests:     ErrCodeRateLimit,
	http.StatusRequestTimeout:      ErrCodeTimeout,
	http.StatusGatewayTimeout:      ErrCodeTimeout,
	http.StatusServiceUnavailable:  ErrCodeUnavailable,
	http.StatusInternalServerError: ErrCodeInternal,
}

// ErrCodeFromStatus returns the error code of an HTTP status. Unlisted
// statuses are reported as internal errors.
func ErrCodeFromStatus(status int) string {
	if code, ok := statusCodes[status]; ok {
		return code
	}
	return ErrCodeInternal
}
