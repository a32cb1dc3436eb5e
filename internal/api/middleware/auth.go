package middleware

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/phrazzld/taskflow-api/internal/api/shared"
	"github.com/phrazzld/taskflow-api/internal/platform/logger"
	"github.com/phrazzld/taskflow-api/internal/redact"
	"github.com/phrazzld/taskflow-api/internal/service/auth"
)

// AuthMiddleware authenticates users with bearer JWTs.
type AuthMiddleware struct {
	jwtService auth.JWTService
	logger     *slog.Logger
}

// NewAuthMiddleware creates an AuthMiddleware.
func NewAuthMiddleware(jwtService auth.JWTService, log *slog.Logger) *AuthMiddleware {
	if jwtService == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("jwtService cannot be nil for AuthMiddleware")
	}
	if log == nil {
		log = slog.Default()
	}
	return &AuthMiddleware{
		jwtService: jwtService,
		logger:     log.With(slog.String("component", "auth_middleware")),
	}
}

// Authenticate validates the bearer token and stores the user ID on the
// request context.
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromContextOrDefault(r.Context(), m.logger)

		token, problem := bearerToken(r)
		if problem != "" {
			shared.RespondWithError(w, r, http.StatusUnauthorized, problem)
			return
		}

		claims, err := m.jwtService.ValidateToken(r.Context(), token)
		switch {
		case err == nil:
		case errors.Is(err, auth.ErrExpiredToken):
			shared.RespondWithError(w, r, http.StatusUnauthorized, "Token expired")
			return
		case errors.Is(err, auth.ErrInvalidToken), errors.Is(err, auth.ErrTokenNotYetValid):
			shared.RespondWithError(w, r, http.StatusUnauthorized, "Invalid token")
			return
		default:
			log.Error("failed to validate token", slog.String("error", redact.Error(err)))
			shared.RespondWithError(w, r, http.StatusInternalServerError, "Authentication error")
			return
		}

		ctx := shared.WithUserID(r.Context(), claims.UserID)
		ctx = logger.WithLogger(ctx, log.With(slog.String("user_id", claims.UserID.String())))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// bearerToken extracts the token of an "Authorization: Bearer <token>"
// header. A non-empty problem is the client facing reason it could not.
func bearerToken(r *http.Request) (token, problem string) {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if header == "" {
		return "", "Authorization header required"
	}
	scheme, token, ok := strings.Cut(header, " ")
	token = strings.TrimSpace(token)
	if !ok || !strings.EqualFold(scheme, "Bearer") || token == "" {
		return "", "Invalid authorization format"
	}
	return token, ""
}

// GetUserID returns the authenticated user of r.
func GetUserID(r *http.Request) (uuid.UUID, bool) {
	return shared.UserIDFromContext(r.Context())
}
