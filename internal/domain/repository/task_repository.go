package repository

import (
	"bytes"
	"context"

	"taskhub/internal/domain/entity"
	"taskhub/internal/domain/listing"
	"taskhub/internal/errors"

	"github.com/google/uuid"
)

// ErrTaskNotFound covers both a missing task and one that belongs to someone else.
var ErrTaskNotFound = errors.New("task not found")

// TaskSortFields lists the keys a task list may be ordered by.
var TaskSortFields = []string{"created_at", "updated_at", "title", "priority"}

// TaskFilter narrows a task list. Nil fields add no constraint.
type TaskFilter struct {
	OwnerID   uuid.UUID
	Completed *bool
	Priority  *entity.Priority
	Category  *entity.Category
}

// Match reports whether t satisfies every set field of the filter.
func (f TaskFilter) Match(t *entity.Task) bool {
	if t.OwnerID != f.OwnerID {
		return false
	}
	if f.Completed != nil && t.Completed != *f.Completed {
		return false
	}
	if f.Priority != nil && t.Priority != *f.Priority {
		return false
	}
	if f.Category != nil && t.Category != *f.Category {
		return false
	}

	return true
}

// TaskListQuery is the full description of one task list page.
type TaskListQuery struct {
	Filter TaskFilter
	Sort   listing.Sort
	Page   listing.Page
}

// TaskRepository stores tasks. Every lookup and mutation is scoped by owner.
type TaskRepository interface {
	Create(ctx context.Context, task *entity.Task) error

	// FindByID returns ErrTaskNotFound when the task is absent or owned by another user.
	FindByID(ctx context.Context, ownerID, id uuid.UUID) (*entity.Task, error)

	// Update loads the owner's task, hands a copy to apply and stores the
	// result, all as one atomic step. An error from apply aborts the write.
	Update(ctx context.Context, ownerID, id uuid.UUID, apply func(*entity.Task) error) (*entity.Task, error)

	Delete(ctx context.Context, ownerID, id uuid.UUID) error

	List(ctx context.Context, query TaskListQuery) ([]*entity.Task, error)
}

var priorityRank = map[entity.Priority]int{
	entity.PriorityLow:    0,
	entity.PriorityMedium: 1,
	entity.PriorityHigh:   2,
}

// CompareTasks orders tasks by s, breaking ties on ID in the same direction.
// IDs are UUIDv7 so the tie-break follows creation order.
func CompareTasks(s listing.Sort) func(a, b *entity.Task) int {
	var primary func(a, b *entity.Task) int
	switch s.Field {
	case "updated_at":
		primary = listing.By(func(t *entity.Task) int64 { return t.UpdatedAt.UnixNano() }, s.Desc)
	case "title":
		primary = listing.By(func(t *entity.Task) string { return t.Title }, s.Desc)
	case "priority":
		primary = listing.By(func(t *entity.Task) int { return priorityRank[t.Priority] }, s.Desc)
	default:
		primary = listing.By(func(t *entity.Task) int64 { return t.CreatedAt.UnixNano() }, s.Desc)
	}

	return listing.Then(primary, func(a, b *entity.Task) int {
		return listing.Direction(s.Desc, bytes.Compare(a.ID[:], b.ID[:]))
	})
}
