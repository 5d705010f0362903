package service

import (
	"time"

	"github.com/google/uuid"
)

// TokenClaims carries the validated content of an API access token.
type TokenClaims struct {
	UserID    uuid.UUID
	Username  string
	ExpiresAt time.Time
}

// TokenService defines the interface for issuing and validating API access
// tokens. The web surface relies on server-side sessions; tokens exist for
// non-browser API clients.
type TokenService interface {
	// GenerateAccessToken creates a signed token for the given user.
	GenerateAccessToken(userID uuid.UUID, username string) (string, error)

	// ValidateAccessToken checks a token string and returns its claims.
	ValidateAccessToken(tokenString string) (*TokenClaims, error)
}
