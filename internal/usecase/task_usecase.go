package usecase

import (
	"context"

	"taskhub/internal/domain/entity"

	"github.com/google/uuid"
)

// CreateTaskInput holds the fields of a new task. Empty priority and
// category take their defaults.
type CreateTaskInput struct {
	Title       string          `json:"title" validate:"required,notblank,min=3,max=200"`
	Description string          `json:"description" validate:"max=2000"`
	Completed   bool            `json:"completed"`
	Priority    entity.Priority `json:"priority" validate:"omitempty,oneof=low medium high"`
	Category    entity.Category `json:"category" validate:"omitempty,oneof=work personal other"`
}

// UpdateTaskInput is a partial update. Nil fields are left unchanged.
type UpdateTaskInput struct {
	Title       *string          `json:"title" validate:"omitempty,notblank,min=3,max=200"`
	Description *string          `json:"description" validate:"omitempty,max=2000"`
	Completed   *bool            `json:"completed"`
	Priority    *entity.Priority `json:"priority" validate:"omitempty,oneof=low medium high"`
	Category    *entity.Category `json:"category" validate:"omitempty,oneof=work personal other"`
}

// ListTasksInput selects one page of the caller's tasks.
type ListTasksInput struct {
	Completed *bool
	Priority  *entity.Priority
	Category  *entity.Category
	PageRequest
}

// TaskPage is one page of tasks.
type TaskPage struct {
	Items []*entity.Task `json:"items"`
	PageInfo
}

// TaskUsecase manages the caller's tasks. Every operation is scoped to ownerID.
type TaskUsecase interface {
	Create(ctx context.Context, ownerID uuid.UUID, input *CreateTaskInput) (*entity.Task, error)
	Get(ctx context.Context, ownerID, id uuid.UUID) (*entity.Task, error)
	Update(ctx context.Context, ownerID, id uuid.UUID, input *UpdateTaskInput) (*entity.Task, error)
	Delete(ctx context.Context, ownerID, id uuid.UUID) error
	List(ctx context.Context, ownerID uuid.UUID, input *ListTasksInput) (*TaskPage, error)
}
