package domain

import "errors"

// Errors shared by every entity. Entity-specific validation errors live next
// to the entity.
var (
	// ErrValidation marks input rejected by an entity's Validate method.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidID is returned when a required ID is the nil UUID.
	ErrInvalidID = errors.New("invalid ID")

	// ErrUnauthorized is returned when the actor may not perform an operation.
	ErrUnauthorized = errors.New("unauthorized operation")
)
