package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/phrazzld/taskflow-api/internal/service/auth"
)

var _ auth.JWTService = (*MockJWTService)(nil)

// MockJWTService is a function-field auth.JWTService. Unset functions
// return Token or Claims together with Err.
type MockJWTService struct {
	GenerateTokenFn func(ctx context.Context, userID uuid.UUID) (string, error)
	ValidateTokenFn func(ctx context.Context, token string) (*auth.Claims, error)

	Token  string
	Claims *auth.Claims
	Err    error
}

func (m *MockJWTService) GenerateToken(ctx context.Context, userID uuid.UUID) (string, error) {
	if m.GenerateTokenFn != nil {
		return m.GenerateTokenFn(ctx, userID)
	}
	return m.Token, m.Err
}

func (m *MockJWTService) ValidateToken(ctx context.Context, token string) (*auth.Claims, error) {
	if m.ValidateTokenFn != nil {
		return m.ValidateTokenFn(ctx, token)
	}
	return m.Claims, m.Err
}
