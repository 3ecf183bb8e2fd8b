// Package memory keeps repositories in process memory. Each constructor
// returns an independent store, so tests get isolation by building a new one.
package memory

import (
	"context"
	"sync"

	"taskhub/internal/domain/entity"
	"taskhub/internal/domain/repository"
	"taskhub/internal/errors"

	"github.com/google/uuid"
)

var _ repository.UserRepository = (*userRepository)(nil)

type userRepository struct {
	mu      sync.RWMutex
	users   map[uuid.UUID]*entity.User
	byEmail map[string]uuid.UUID
}

// NewUserRepository returns an empty in-memory user store.
func NewUserRepository() repository.UserRepository {
	return &userRepository{
		users:   make(map[uuid.UUID]*entity.User),
		byEmail: make(map[string]uuid.UUID),
	}
}

func (r *userRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.WithStack(err)
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	cp := *user

	return &cp, nil
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.WithStack(err)
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byEmail[entity.NormalizeEmail(email)]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	cp := *r.users[id]

	return &cp, nil
}

// Create checks and claims the email under one write lock.
func (r *userRepository) Create(ctx context.Context, user *entity.User) error {
	if err := ctx.Err(); err != nil {
		return errors.WithStack(err)
	}

	email := entity.NormalizeEmail(user.Email)

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, taken := r.byEmail[email]; taken {
		return repository.ErrDuplicateEmail
	}

	if user.ID == uuid.Nil {
		id, err := uuid.NewV7()
		if err != nil {
			return errors.Wrap(err, "generate user id")
		}
		user.ID = id
	}
	user.Email = email

	cp := *user
	r.users[user.ID] = &cp
	r.byEmail[email] = user.ID

	return nil
}
