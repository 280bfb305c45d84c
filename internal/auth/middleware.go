// ABOUTME: Bearer-token authentication for the demo REST backend.
// ABOUTME: Extracts the caller identity and optionally enforces a shared API token.

package auth

import (
	"context"
	"net/http"
	"strings"

	apierrors "github.com/2389/adminkit/internal/errors"
)

type contextKey string

const userContextKey contextKey = "user"

// Middleware stores the caller identity in the request context. Tokens of
// the form "user:NAME" identify NAME; anything else identifies "api".
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user := extractUser(r.Header.Get("Authorization"))
		ctx := context.WithValue(r.Context(), userContextKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireToken rejects requests whose bearer token differs from token. An
// empty token disables the check.
func RequireToken(token string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if token != "" && bearer(r.Header.Get("Authorization")) != token {
				apierrors.WriteError(w, http.StatusUnauthorized, apierrors.ErrUnauthorized, "invalid or missing API token")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func UserFromContext(ctx context.Context) string {
	user, ok := ctx.Value(userContextKey).(string)
	if !ok || user == "" {
		return "anonymous"
	}
	return user
}

func bearer(authHeader string) string {
	return strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
}

func extractUser(authHeader string) string {
	token := bearer(authHeader)
	if token == "" {
		return "anonymous"
	}
	if strings.HasPrefix(token, "user:") {
		return strings.TrimPrefix(token, "user:")
	}
	return "api"
}
