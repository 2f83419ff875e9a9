package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/GyroZepelix/library-cms/internal/server"
)

type contextKey struct{}

var identityKey contextKey

// Middleware requires a valid Bearer token. On success the caller Identity is
// stored in the request context; otherwise it responds 401.
func Middleware(jwtSecret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("Authorization") == "" {
				server.Error(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing authorization header", nil)
				return
			}
			id, msg, ok := identityFromHeader(r, jwtSecret)
			if !ok {
				server.Error(w, http.StatusUnauthorized, "UNAUTHORIZED", msg, nil)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
		})
	}
}

// OptionalMiddleware attaches the caller Identity when a Bearer token is sent
// and lets anonymous requests through. A token that is present but invalid
// is still rejected with 401.
func OptionalMiddleware(jwtSecret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("Authorization") == "" {
				next.ServeHTTP(w, r)
				return
			}
			id, msg, ok := identityFromHeader(r, jwtSecret)
			if !ok {
				server.Error(w, http.StatusUnauthorized, "UNAUTHORIZED", msg, nil)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
		})
	}
}

func identityFromHeader(r *http.Request, jwtSecret string) (Identity, string, bool) {
	scheme, token, found := strings.Cut(r.Header.Get("Authorization"), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") || token == "" {
		return Identity{}, "invalid authorization header format", false
	}

	id, err := ValidateAccessToken(token, jwtSecret)
	if err != nil {
		return Identity{}, "invalid or expired token", false
	}
	return id, "", true
}

// WithIdentity returns a copy of ctx carrying id.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// IdentityFromContext returns the authenticated caller, if any.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey).(Identity)
	return id, ok
}

// UserIDFromContext returns the authenticated user's ID, or 0 for anonymous
// requests.
func UserIDFromContext(ctx context.Context) int64 {
	id, _ := IdentityFromContext(ctx)
	return id.UserID
}
