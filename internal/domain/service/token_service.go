package service

import (
	"time"

	"github.com/google/uuid"
)

// TokenService issues and verifies stateless session tokens.
type TokenService interface {
	// Issue signs a token for userID and reports when it expires.
	Issue(userID uuid.UUID) (token string, expiresAt time.Time, err error)

	// Verify returns the subject of a valid token. Expired tokens fail with
	// domain ErrTokenExpired and every other failure with ErrTokenInvalid.
	Verify(token string) (uuid.UUID, error)
}
