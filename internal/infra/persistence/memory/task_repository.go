package memory

import (
	"context"
	"sync"

	"taskhub/internal/domain/entity"
	"taskhub/internal/domain/listing"
	"taskhub/internal/domain/repository"
	"taskhub/internal/errors"

	"github.com/google/uuid"
)

var _ repository.TaskRepository = (*taskRepository)(nil)

type taskRepository struct {
	mu      sync.RWMutex
	tasks   map[uuid.UUID]*entity.Task
	byOwner map[uuid.UUID]map[uuid.UUID]struct{}
}

// NewTaskRepository returns an empty in-memory task store.
func NewTaskRepository() repository.TaskRepository {
	return &taskRepository{
		tasks:   make(map[uuid.UUID]*entity.Task),
		byOwner: make(map[uuid.UUID]map[uuid.UUID]struct{}),
	}
}

func (r *taskRepository) Create(ctx context.Context, task *entity.Task) error {
	if err := ctx.Err(); err != nil {
		return errors.WithStack(err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if task.ID == uuid.Nil {
		id, err := uuid.NewV7()
		if err != nil {
			return errors.Wrap(err, "generate task id")
		}
		task.ID = id
	}

	r.tasks[task.ID] = task.Clone()
	owned, ok := r.byOwner[task.OwnerID]
	if !ok {
		owned = make(map[uuid.UUID]struct{})
		r.byOwner[task.OwnerID] = owned
	}
	owned[task.ID] = struct{}{}

	return nil
}

func (r *taskRepository) FindByID(ctx context.Context, ownerID, id uuid.UUID) (*entity.Task, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.WithStack(err)
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	task, ok := r.owned(ownerID, id)
	if !ok {
		return nil, repository.ErrTaskNotFound
	}

	return task.Clone(), nil
}

func (r *taskRepository) Update(ctx context.Context, ownerID, id uuid.UUID, apply func(*entity.Task) error) (*entity.Task, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.WithStack(err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.owned(ownerID, id)
	if !ok {
		return nil, repository.ErrTaskNotFound
	}

	updated := stored.Clone()
	if err := apply(updated); err != nil {
		return nil, err
	}
	// identity and ownership are not writable through apply
	updated.ID = stored.ID
	updated.OwnerID = stored.OwnerID
	updated.CreatedAt = stored.CreatedAt
	r.tasks[id] = updated

	return updated.Clone(), nil
}

func (r *taskRepository) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	if err := ctx.Err(); err != nil {
		return errors.WithStack(err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.owned(ownerID, id); !ok {
		return repository.ErrTaskNotFound
	}

	delete(r.tasks, id)
	delete(r.byOwner[ownerID], id)
	if len(r.byOwner[ownerID]) == 0 {
		delete(r.byOwner, ownerID)
	}

	return nil
}

func (r *taskRepository) List(ctx context.Context, query repository.TaskListQuery) ([]*entity.Task, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.WithStack(err)
	}

	r.mu.RLock()
	owned := make([]*entity.Task, 0, len(r.byOwner[query.Filter.OwnerID]))
	for id := range r.byOwner[query.Filter.OwnerID] {
		owned = append(owned, r.tasks[id].Clone())
	}
	r.mu.RUnlock()

	return listing.Collect(listing.Apply(owned, listing.Query[*entity.Task]{
		Filter:  query.Filter.Match,
		Compare: repository.CompareTasks(query.Sort),
		Page:    query.Page,
	})), nil
}

// owned must be called with r.mu held.
func (r *taskRepository) owned(ownerID, id uuid.UUID) (*entity.Task, bool) {
	task, ok := r.tasks[id]
	if !ok || task.OwnerID != ownerID {
		return nil, false
	}

	return task, true
}
