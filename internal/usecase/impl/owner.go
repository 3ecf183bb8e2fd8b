package impl

import (
	"context"

	"taskhub/internal/domain/entity"
	domainerrors "taskhub/internal/domain/errors"
	"taskhub/internal/domain/repository"
	"taskhub/internal/errors"

	"github.com/google/uuid"
)

// deletedPayload is the notification body for a removed record.
type deletedPayload struct {
	ID uuid.UUID `json:"id"`
}

// requireOwner loads the user a new record will belong to. A token may
// still verify after its user is gone.
func requireOwner(ctx context.Context, users repository.UserRepository, ownerID uuid.UUID) (*entity.User, error) {
	owner, err := users.FindByID(ctx, ownerID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, domainerrors.ErrUserNotFound.WrapMessage("record owner")
		}

		return nil, errors.Wrap(err, "failed to load record owner")
	}

	return owner, nil
}

// mapOwnerError covers a foreign-key failure on insert.
func mapOwnerError(err error, msg string) error {
	if errors.Is(err, repository.ErrUserNotFound) {
		return domainerrors.ErrUserNotFound.WrapMessage(msg)
	}

	return errors.Wrap(err, msg)
}
