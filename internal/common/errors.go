// Package common defines shared constants and sentinel errors used across
// client and server layers of storykeeper. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors (generic/internal flow control).
	ErrorInternal   = errors.New("internal error")
	ErrorValidation = errors.New("validation error")
	ErrForbidden    = errors.New("forbidden")
	ErrShuttingDown = errors.New("server is shutting down")

	// Registration collision: the username is already taken.
	ErrConflict = errors.New("user with that username already exists")

	// Caller-visible auth outcomes. Bad logins and unusable tokens are
	// deliberately reported as the same ErrInvalidCredentials.
	ErrInvalidCredentials = errors.New("invalid authentication credentials")
	ErrMissingCredentials = errors.New("no authorization credentials found")
	ErrAccountNotFound    = errors.New("authorized user could not be found")

	// Token codec errors (invalid signature, malformed, wrong algorithm).
	ErrInvalidToken = errors.New("invalid token")

	// Token lifecycle errors.
	ErrTokenExpired = errors.New("token expired")
)
