// Package repository defines the interfaces for the persistence layer.
// These interfaces act as a contract between the domain/application layers and the infrastructure layer.
package repository

import (
	"context"

	"taskhub/internal/domain/entity"
	"taskhub/internal/errors"

	"github.com/google/uuid"
)

var (
	// ErrUserNotFound is returned when no user matches the lookup.
	ErrUserNotFound = errors.New("user not found")
	// ErrDuplicateEmail is returned by Create when the email is already taken.
	ErrDuplicateEmail = errors.New("email already registered")
)

// UserRepository defines the standard operations for user persistence.
type UserRepository interface {
	// FindByID retrieves a single user by their unique ID.
	FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error)

	// FindByEmail retrieves a single user by their normalised email address.
	FindByEmail(ctx context.Context, email string) (*entity.User, error)

	// Create persists a new user. Email uniqueness is enforced here so two
	// concurrent registrations cannot both succeed.
	Create(ctx context.Context, user *entity.User) error
}
