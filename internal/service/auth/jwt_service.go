// Package auth verifies the bearer tokens issued by the identity service.
// This process never mints tokens; it only checks the HMAC signature and
// time claims and extracts the user identity.
package auth

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// JWTService defines operations for verifying JWT authentication tokens.
type JWTService interface {
	// ValidateToken validates the provided token string and extracts the
	// claims. Returns the claims containing user information if the token
	// is valid, or an error if validation fails (expired, invalid
	// signature, etc.).
	ValidateToken(ctx context.Context, tokenString string) (*Claims, error)
}

// Claims represents the verified claims extracted from a token.
type Claims struct {
	// UserID is the unique identifier of the user the token was issued for.
	UserID uuid.UUID `json:"uid,omitempty"`

	// Standard registered JWT claims
	Subject   string    `json:"sub,omitempty"`
	IssuedAt  time.Time `json:"iat,omitempty"`
	ExpiresAt time.Time `json:"exp,omitempty"`
	ID        string    `json:"jti,omitempty"`
}
