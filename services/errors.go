package services

import "errors"

var (
	// Payment event verification
	ErrMissingWebhookSecret = errors.New("webhook signing secret is not configured")
	ErrMissingSignature     = errors.New("webhook signature header is missing")
	ErrInvalidSignature     = errors.New("webhook signature verification failed")
	ErrMalformedEvent       = errors.New("webhook event payload is malformed")

	// Orders and stock
	ErrOrderNotFound = errors.New("order not found")
	ErrUnknownSlug   = errors.New("artwork slug is unknown")

	// Legacy codes and claims
	ErrCodeSpaceExhausted  = errors.New("could not generate an unused legacy code")
	ErrCodeRevoked         = errors.New("legacy code was revoked for this session")
	ErrMissingCode         = errors.New("legacy code is required")
	ErrCodeNotFound        = errors.New("legacy code not found")
	ErrMissingClaimFields  = errors.New("name, city and message are required")
	ErrCityNotFound        = errors.New("city could not be geocoded")
	ErrGeocoderUnavailable = errors.New("geocoding service unavailable")

	// Admin access
	ErrInvalidAdminSecret = errors.New("admin secret does not match")
)
