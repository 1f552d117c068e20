package auth

import (
	"context"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// WithClaims returns a new context with the given claims.
// This is primarily for testing purposes.
func WithClaims(ctx context.Context, claims *Claims) context.Context {
	return context.WithValue(ctx, claimsKey, claims)
}

// NewTestClaims creates Claims for the given user ID and username.
// This is primarily for testing purposes.
func NewTestClaims(userID uuid.UUID, username string) *Claims {
	return &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject: userID.String(),
		},
		Username: username,
	}
}
