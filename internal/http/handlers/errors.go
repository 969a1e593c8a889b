package handlers

// Stable machine-readable error codes carried in ErrorResponse.Code. Clients
// branch on these rather than parsing messages. Generic codes mirror their
// HTTP status; the rest mark outcomes a status alone cannot convey, such as a
// profile validation failure versus a malformed body.
const (
	ErrCodeBadRequest   = "bad_request"
	ErrCodeUnauthorized = "unauthorized"
	ErrCodeForbidden    = "forbidden"
	ErrCodeNotFound     = "not_found"
	ErrCodeConflict     = "conflict"
	ErrCodeRateLimited  = "too_many_requests"
	ErrCodeInternal     = "internal_error"

	ErrCodeValidationFailed    = "validation_failed"
	ErrCodePayloadTooLarge     = "payload_too_large"
	ErrCodeUpstreamUnavailable = "upstream_unavailable"
	ErrCodeMethodNotAllowed    = "method_not_allowed"
)
