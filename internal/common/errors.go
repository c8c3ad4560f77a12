// Package common defines shared constants and sentinel errors used across the
// CRM core. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")

	// Validation errors.
	ErrorInvalidEntity     = errors.New("invalid entity")
	ErrorUnknownEntityType = errors.New("unknown entity type")

	// ErrSequenceCollision is returned when a freshly issued business identifier
	// still clashes with an existing row after one resync-and-retry.
	ErrSequenceCollision = errors.New("sequence collision")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")
)

// AccessTokenHeaderName is the gRPC metadata key carrying the access token.
const AccessTokenHeaderName = "access_token"

// AuditIDHeaderName is the gRPC metadata key a caller may use to group several
// calls under one logical audit transaction.
const AuditIDHeaderName = "audit_id"

// GenericFailureMessage is the only failure text surfaced to API callers for
// internal errors.
const GenericFailureMessage = "could not complete operation, please retry"
