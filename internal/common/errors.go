// Package common defines shared constants and sentinel errors used across
// the service layers. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")

	// Auth errors (invalid or malformed access token).
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")

	// Registration and verification errors.
	ErrEmailAlreadyVerified  = errors.New("email already verified")
	ErrTooManyPendingSignups = errors.New("too many pending signups with same email")
	ErrTokenNotFound         = errors.New("registration token not found")

	// Read path errors.
	ErrUserNotFound = errors.New("user not found")

	// ErrTransactionConflictExhausted is returned when every transaction
	// attempt ended in a serialization failure. The whole request is safe
	// to retry.
	ErrTransactionConflictExhausted = errors.New("transaction conflict: retries exhausted")
)
