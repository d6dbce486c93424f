// Package auth provides the authentication context carried through a request.
package auth

import (
	"context"

	"github.com/google/uuid"
)

// =============================================================================
// Context Key
// =============================================================================

type contextKey string

const authContextKey contextKey = "auth"

// =============================================================================
// Types
// =============================================================================

// Context represents the authentication context for a request. It is resolved
// from the bearer token by the auth middleware and stored in the request
// context.
type Context struct {
	// UserID is the authenticated user's ID.
	UserID uuid.UUID

	// Username is the authenticated user's username.
	Username string

	// Subdomain is the user's assigned subdomain identity.
	Subdomain string

	// Authenticated indicates whether the request carried a valid token.
	Authenticated bool
}

// =============================================================================
// Context Storage
// =============================================================================

// WithContext stores the auth context in a context.Context.
func WithContext(ctx context.Context, authCtx Context) context.Context {
	return context.WithValue(ctx, authContextKey, authCtx)
}

// FromContext retrieves the auth context. Returns an unauthenticated context
// if none is stored.
func FromContext(ctx context.Context) Context {
	if authCtx, ok := ctx.Value(authContextKey).(Context); ok {
		return authCtx
	}
	return Context{}
}

// RequireUser returns the authenticated user ID, or false when the request is
// unauthenticated.
func RequireUser(ctx context.Context) (uuid.UUID, bool) {
	authCtx := FromContext(ctx)
	if !authCtx.Authenticated {
		return uuid.Nil, false
	}
	return authCtx.UserID, true
}
