package i18n

// Error message translation keys.
const (
	ErrKeyInvalidRequest     = "error.invalid_request"
	ErrKeyInvalidRequestBody = "error.invalid_request_body"
	ErrKeyInternalError      = "error.internal_error"
	ErrKeyUnauthorized       = "error.unauthorized"
	// ErrKeyInvalidCredentials is returned for a wrong admin username or password.
	ErrKeyInvalidCredentials = "error.invalid_credentials"
	ErrKeyAPIKeyRequired     = "error.api_key_required"
	ErrKeyInvalidAPIKey      = "error.invalid_api_key"
	ErrKeyForbidden          = "error.forbidden"
	ErrKeyNotFound           = "error.not_found"
	ErrKeyRateLimitExceeded  = "error.rate_limit_exceeded"
	ErrKeyConflict           = "error.conflict"
	ErrKeyInvalidToken       = "error.invalid_token"
	ErrKeyTokenRequired      = "error.token_required"
	ErrKeyTimeout            = "error.timeout"
	// ErrKeyInvalidTransportMode is returned when transport.mode is not self or operator.
	ErrKeyInvalidTransportMode = "error.validation.transport_mode"
	// ErrKeyInvalidPricingConfig is returned when a configuration change fails validation.
	ErrKeyInvalidPricingConfig = "error.validation.pricing_config"
	// ErrKeyServiceNotFound is returned for an unknown catalog key.
	ErrKeyServiceNotFound = "error.service_not_found"
	// ErrKeyPricingConflict is returned when another instance changed the configuration first.
	ErrKeyPricingConflict = "error.pricing_conflict"
	// ErrKeyStorageUnavailable is returned while the configuration store is unreachable.
	ErrKeyStorageUnavailable = "error.storage_unavailable"
)
