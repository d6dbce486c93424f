// Package middleware provides HTTP middleware for the quickweb API.
package middleware

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/quickweb-io/quickweb/internal/core/auth"
	"github.com/quickweb-io/quickweb/internal/core/domain"
)

// =============================================================================
// Interfaces
// =============================================================================

// TokenVerifier validates a bearer token and returns the user ID it was
// issued for. The shell auth.Authenticator implements this interface.
type TokenVerifier interface {
	Verify(token string) (uuid.UUID, error)
}

// UserLoader resolves a user ID to the user record. The store implements
// this interface.
type UserLoader interface {
	GetUser(ctx context.Context, id uuid.UUID) (*domain.User, error)
}

// =============================================================================
// Auth Configuration
// =============================================================================

// AuthConfig holds configuration for the auth middleware.
type AuthConfig struct {
	// Verifier validates bearer tokens.
	Verifier TokenVerifier

	// Users resolves verified user IDs to user records.
	Users UserLoader

	// Logger for auth middleware logging.
	Logger *slog.Logger
}

// =============================================================================
// Auth Middleware
// =============================================================================

// AuthMiddleware resolves the Authorization header to an auth context and
// stores it on the request. Requests without a valid token pass through with
// an unauthenticated context; handlers decide whether that is acceptable.
type AuthMiddleware struct {
	config AuthConfig
}

// NewAuthMiddleware creates a new auth middleware with the given config.
func NewAuthMiddleware(cfg AuthConfig) *AuthMiddleware {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &AuthMiddleware{config: cfg}
}

// Handler returns the middleware handler function.
func (m *AuthMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			next.ServeHTTP(w, r)
			return
		}

		userID, err := m.config.Verifier.Verify(token)
		if err != nil {
			// An invalid token is treated the same as no token; protected
			// handlers reject the unauthenticated context.
			m.config.Logger.Debug("rejected bearer token", "error", err)
			next.ServeHTTP(w, r)
			return
		}

		user, err := m.config.Users.GetUser(r.Context(), userID)
		if err != nil {
			m.config.Logger.Warn("token valid but user not found", "user_id", userID)
			next.ServeHTTP(w, r)
			return
		}

		authCtx := auth.Context{
			UserID:        user.ID,
			Username:      user.Username,
			Subdomain:     user.Subdomain,
			Authenticated: true,
		}
		next.ServeHTTP(w, r.WithContext(auth.WithContext(r.Context(), authCtx)))
	})
}

// =============================================================================
// Require Auth Middleware
// =============================================================================

// RequireAuth rejects unauthenticated requests with 401. Must be used AFTER
// AuthMiddleware.
func RequireAuth(logger *slog.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := auth.RequireUser(r.Context()); !ok {
				WriteJSONError(w, http.StatusUnauthorized, "Unauthorized", "Authentication required")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// =============================================================================
// Helpers
// =============================================================================

// bearerToken extracts the token from an "Authorization: Bearer x" header.
func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// WriteJSONError writes a JSON:API style error response.
func WriteJSONError(w http.ResponseWriter, status int, title, detail string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"errors": []map[string]interface{}{
			{
				"status": http.StatusText(status),
				"title":  title,
				"detail": detail,
			},
		},
	})
}
