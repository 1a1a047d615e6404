// Package common defines shared constants and sentinel errors used across
// the client and server layers of sketchkeeper. Callers should use errors.Is
// to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("already exists")

	// Service-level errors.
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")

	// Validation errors.
	ErrorInvalidEmail     = errors.New("invalid email")
	ErrorPasswordTooShort = errors.New("password too short")
	ErrorBadRequest       = errors.New("bad request")

	// Session token errors.
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
	ErrTokenRevoked = errors.New("token revoked")

	// Snapshot short key space exhausted for a given hash prefix.
	ErrShortKeyExhausted = errors.New("short key space exhausted")
)
