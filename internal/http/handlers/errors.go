// Package handlers defines HTTP-layer error codes used across all API
// endpoints. Codes are lowercase snake_case and stable: clients branch on
// them programmatically, the message field is for humans.
package handlers

const (
	ErrCodeBadRequest       = "bad_request"
	ErrCodeNotFound         = "not_found"
	ErrCodeInternal         = "internal_error"
	ErrCodeMethodNotAllowed = "method_not_allowed"

	// Domain-specific:
	ErrCodeInvalidIdempotencyKey = "invalid_idempotency_key"
	ErrCodePublishFailed         = "publish_failed"
	ErrCodeSubscribeFailed       = "subscribe_failed"
)
