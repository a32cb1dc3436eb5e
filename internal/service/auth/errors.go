package auth

import "errors"

// Bearer token errors. ValidateToken returns exactly one of these.
var (
	ErrInvalidToken     = errors.New("invalid authentication token")
	ErrExpiredToken     = errors.New("authentication token has expired")
	ErrTokenNotYetValid = errors.New("authentication token not yet valid")
	ErrMissingToken     = errors.New("authentication token is missing")
)

// Job runner token errors.
var (
	// ErrJobTokenNotConfigured means neither jobs.runner_token nor
	// jobs.runner_token_hash is set, which disables the job endpoints.
	ErrJobTokenNotConfigured = errors.New("job runner token is not configured")

	ErrJobTokenMismatch = errors.New("job runner token does not match")
)
