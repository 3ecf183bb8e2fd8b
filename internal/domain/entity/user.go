// Package entity contains the core domain models of the application.
package entity

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// User is an account that owns tasks and posts.
type User struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// NormalizeEmail trims and lower-cases an address so lookups are case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// DefaultDisplayName derives a display name from the local part of an email address.
func DefaultDisplayName(email string) string {
	local, _, found := strings.Cut(email, "@")
	if !found || local == "" {
		return email
	}

	return local
}
