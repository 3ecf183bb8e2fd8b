package impl

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"taskhub/config"
	deliverycontext "taskhub/internal/delivery/context"
	"taskhub/internal/domain/entity"
	domainerrors "taskhub/internal/domain/errors"
	"taskhub/internal/domain/repository"
	"taskhub/internal/domain/service"
	"taskhub/internal/domain/validation"
	"taskhub/internal/errors"
	"taskhub/internal/usecase"

	"github.com/google/uuid"
	"go.uber.org/fx"
)

type taskService struct {
	taskRepo repository.TaskRepository
	userRepo repository.UserRepository
	notifier service.Notifier
	pager    pager
	logger   *slog.Logger
	now      func() time.Time
}

// TaskServiceParams holds dependencies for TaskService, injected by Fx.
type TaskServiceParams struct {
	fx.In

	TaskRepo repository.TaskRepository
	UserRepo repository.UserRepository
	Notifier service.Notifier
	Config   *config.Config
	Logger   *slog.Logger
}

// NewTaskService is the constructor for taskService.
func NewTaskService(params TaskServiceParams) usecase.TaskUsecase {
	return &taskService{
		taskRepo: params.TaskRepo,
		userRepo: params.UserRepo,
		notifier: params.Notifier,
		pager:    newPager(params.Config),
		logger:   params.Logger,
		now:      time.Now,
	}
}

func (srv *taskService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

func (srv *taskService) Create(ctx context.Context, ownerID uuid.UUID, input *usecase.CreateTaskInput) (*entity.Task, error) {
	input.Title = strings.TrimSpace(input.Title)
	if err := validation.Struct(input); err != nil {
		return nil, err
	}
	if _, err := requireOwner(ctx, srv.userRepo, ownerID); err != nil {
		return nil, err
	}

	priority := input.Priority
	if priority == "" {
		priority = entity.PriorityMedium
	}
	category := input.Category
	if category == "" {
		category = entity.CategoryPersonal
	}

	now := srv.now().UTC()
	task := &entity.Task{
		OwnerID:     ownerID,
		Title:       input.Title,
		Description: input.Description,
		Completed:   input.Completed,
		Priority:    priority,
		Category:    category,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := srv.taskRepo.Create(ctx, task); err != nil {
		return nil, mapOwnerError(err, "failed to create task")
	}
	srv.log(ctx).Debug("Task created", slog.Any("taskID", task.ID))
	srv.notifier.NotifyUser(ownerID, service.EventTaskCreated, task)

	return task, nil
}

func (srv *taskService) Get(ctx context.Context, ownerID, id uuid.UUID) (*entity.Task, error) {
	task, err := srv.taskRepo.FindByID(ctx, ownerID, id)
	if err != nil {
		return nil, mapTaskError(err, "failed to find task")
	}

	return task, nil
}

// Update applies only the supplied fields, inside the repository's atomic
// read-modify-write.
func (srv *taskService) Update(ctx context.Context, ownerID, id uuid.UUID, input *usecase.UpdateTaskInput) (*entity.Task, error) {
	if input.Title != nil {
		trimmed := strings.TrimSpace(*input.Title)
		input.Title = &trimmed
	}
	if err := validation.Struct(input); err != nil {
		return nil, err
	}

	task, err := srv.taskRepo.Update(ctx, ownerID, id, func(t *entity.Task) error {
		if input.Title != nil {
			t.Title = *input.Title
		}
		if input.Description != nil {
			t.Description = *input.Description
		}
		if input.Completed != nil {
			t.Completed = *input.Completed
		}
		if input.Priority != nil {
			t.Priority = *input.Priority
		}
		if input.Category != nil {
			t.Category = *input.Category
		}
		t.UpdatedAt = srv.now().UTC()

		return nil
	})
	if err != nil {
		return nil, mapTaskError(err, "failed to update task")
	}
	srv.notifier.NotifyUser(ownerID, service.EventTaskUpdated, task)

	return task, nil
}

func (srv *taskService) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	if err := srv.taskRepo.Delete(ctx, ownerID, id); err != nil {
		return mapTaskError(err, "failed to delete task")
	}
	srv.log(ctx).Debug("Task deleted", slog.Any("taskID", id))
	srv.notifier.NotifyUser(ownerID, service.EventTaskDeleted, deletedPayload{ID: id})

	return nil
}

func (srv *taskService) List(ctx context.Context, ownerID uuid.UUID, input *usecase.ListTasksInput) (*usecase.TaskPage, error) {
	if input.Priority != nil && !input.Priority.IsValid() {
		return nil, domainerrors.ErrInvalidQuery.WithDetails("priority must be one of: low, medium, high")
	}
	if input.Category != nil && !input.Category.IsValid() {
		return nil, domainerrors.ErrInvalidQuery.WithDetails("category must be one of: work, personal, other")
	}

	page, sort, info, err := srv.pager.resolve(input.PageRequest, repository.TaskSortFields)
	if err != nil {
		return nil, err
	}

	tasks, err := srv.taskRepo.List(ctx, repository.TaskListQuery{
		Filter: repository.TaskFilter{
			OwnerID:   ownerID,
			Completed: input.Completed,
			Priority:  input.Priority,
			Category:  input.Category,
		},
		Sort: sort,
		Page: page,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to list tasks")
	}

	return &usecase.TaskPage{Items: tasks, PageInfo: info}, nil
}

func mapTaskError(err error, msg string) error {
	if errors.Is(err, repository.ErrTaskNotFound) {
		return domainerrors.ErrTaskNotFound.WrapMessage(msg)
	}

	return errors.Wrap(err, msg)
}
