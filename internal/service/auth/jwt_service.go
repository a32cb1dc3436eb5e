// Package auth issues and validates user bearer tokens and checks the
// operator token that guards job endpoints.
package auth

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// JWTService issues and validates the bearer tokens that identify users on
// task and inbox routes.
type JWTService interface {
	GenerateToken(ctx context.Context, userID uuid.UUID) (string, error)

	// ValidateToken returns ErrExpiredToken, ErrTokenNotYetValid or
	// ErrInvalidToken when tokenString is not acceptable.
	ValidateToken(ctx context.Context, tokenString string) (*Claims, error)
}

// Claims is the validated content of a bearer token. UserID is parsed from
// the sub claim.
type Claims struct {
	UserID    uuid.UUID
	Subject   string
	IssuedAt  time.Time
	ExpiresAt time.Time
	ID        string
}
