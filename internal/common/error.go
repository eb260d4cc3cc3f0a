// Package common defines shared constants and sentinel errors used across
// the client and server layers of store-lit. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("already exists")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")
	ErrorForbidden    = errors.New("forbidden")

	// Validation errors.
	ErrorValidation  = errors.New("validation error")
	ErrorFileTooBig  = errors.New("file too large")
	ErrorNotAnImage  = errors.New("file is not an image")
	ErrorPlaceholder = errors.New("unknown placeholder avatar")

	// Auth errors (invalid or malformed session token).
	ErrInvalidToken = errors.New("invalid token")

	// Session and one-time code lifecycle errors.
	ErrTokenExpired    = errors.New("token expired")
	ErrCodeExpired     = errors.New("one-time code expired")
	ErrCodeMismatch    = errors.New("one-time code mismatch")
	ErrTooManyAttempts = errors.New("too many attempts")
)
