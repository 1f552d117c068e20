package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"
)

type contextKey int

const claimsKey contextKey = iota

// Middleware creates HTTP middleware that verifies bearer tokens and
// attaches the claims to the request context.
func Middleware(m *TokenManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractBearerToken(r)
			if token == "" {
				http.Error(w, "Unauthorized: missing token", http.StatusUnauthorized)
				return
			}

			claims, err := m.Verify(token)
			if err != nil {
				http.Error(w, "Unauthorized: invalid token", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), claimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func extractBearerToken(r *http.Request) string {
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

// FromContext returns the claims from context, or nil if not authenticated.
func FromContext(ctx context.Context) *Claims {
	claims, _ := ctx.Value(claimsKey).(*Claims)
	return claims
}

// UserID returns the authenticated user's ID from context, or uuid.Nil.
func UserID(ctx context.Context) uuid.UUID {
	claims := FromContext(ctx)
	if claims == nil {
		return uuid.Nil
	}
	id, err := claims.UserID()
	if err != nil {
		return uuid.Nil
	}
	return id
}

// IsAuthenticated reports whether the request carries valid authentication.
func IsAuthenticated(ctx context.Context) bool {
	return FromContext(ctx) != nil
}
