package postgres

import (
	"context"

	"taskhub/internal/domain/entity"
	domainerrors "taskhub/internal/domain/errors"
	"taskhub/internal/domain/repository"
	"taskhub/internal/errors"
	"taskhub/internal/infra/persistence/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var _ repository.TaskRepository = (*taskRepository)(nil)

type taskRepository struct {
	db *gorm.DB
}

// NewTaskRepository is the constructor for taskRepository.
func NewTaskRepository(db *gorm.DB) repository.TaskRepository {
	return &taskRepository{db: db}
}

func (repo *taskRepository) Create(ctx context.Context, task *entity.Task) error {
	if task.ID == uuid.Nil {
		id, err := uuid.NewV7()
		if err != nil {
			return errors.Wrap(err, "generate task id")
		}
		task.ID = id
	}

	row := fromTaskDomain(task)
	if err := repo.db.WithContext(ctx).Create(row).Error; err != nil {
		if isForeignKeyConstraintViolation(err) {
			return repository.ErrUserNotFound
		}
		if isCheckConstraintViolation(err) {
			return domainerrors.ErrValidationFailed.WrapMessage("task violates a table constraint")
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to create task")
	}

	task.CreatedAt = row.CreatedAt
	task.UpdatedAt = row.UpdatedAt

	return nil
}

func (repo *taskRepository) FindByID(ctx context.Context, ownerID, id uuid.UUID) (*entity.Task, error) {
	var row model.TaskModel
	if err := repo.db.WithContext(ctx).Where("id = ? AND owner_id = ?", id, ownerID).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrTaskNotFound
		}

		return nil, domainerrors.NewDatabaseExecuteError(err, "failed to find task")
	}

	return toTaskDomain(&row), nil
}

// Update holds a row lock between the read and the write so concurrent
// partial updates cannot lose each other's fields.
func (repo *taskRepository) Update(ctx context.Context, ownerID, id uuid.UUID, apply func(*entity.Task) error) (*entity.Task, error) {
	var updated *entity.Task

	err := inTransaction(ctx, repo.db, func(tx *gorm.DB) error {
		var row model.TaskModel
		if err := forUpdate(tx).Where("id = ? AND owner_id = ?", id, ownerID).First(&row).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return repository.ErrTaskNotFound
			}

			return domainerrors.NewDatabaseExecuteError(err, "failed to lock task")
		}

		task := toTaskDomain(&row)
		if err := apply(task); err != nil {
			return err
		}
		task.ID = row.ID
		task.OwnerID = row.OwnerID
		task.CreatedAt = row.CreatedAt

		next := fromTaskDomain(task)
		if err := tx.Save(next).Error; err != nil {
			if isCheckConstraintViolation(err) {
				return domainerrors.ErrValidationFailed.WrapMessage("task violates a table constraint")
			}

			return domainerrors.NewDatabaseExecuteError(err, "failed to update task")
		}
		task.UpdatedAt = next.UpdatedAt
		updated = task

		return nil
	})
	if err != nil {
		return nil, err
	}

	return updated, nil
}

func (repo *taskRepository) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	result := repo.db.WithContext(ctx).Where("id = ? AND owner_id = ?", id, ownerID).Delete(&model.TaskModel{})
	if result.Error != nil {
		return domainerrors.NewDatabaseExecuteError(result.Error, "failed to delete task")
	}
	if result.RowsAffected == 0 {
		return repository.ErrTaskNotFound
	}

	return nil
}

func (repo *taskRepository) List(ctx context.Context, query repository.TaskListQuery) ([]*entity.Task, error) {
	q, ok := taskListQuery(repo.db.WithContext(ctx), query)
	if !ok {
		return []*entity.Task{}, nil
	}

	var rows []model.TaskModel
	if err := q.Find(&rows).Error; err != nil {
		return nil, domainerrors.NewDatabaseExecuteError(err, "failed to list tasks")
	}

	tasks := make([]*entity.Task, 0, len(rows))
	for i := range rows {
		tasks = append(tasks, toTaskDomain(&rows[i]))
	}

	return tasks, nil
}

func taskListQuery(db *gorm.DB, query repository.TaskListQuery) (*gorm.DB, bool) {
	f := query.Filter
	q := db.Model(&model.TaskModel{}).Where("owner_id = ?", f.OwnerID)
	if f.Completed != nil {
		q = q.Where("completed = ?", *f.Completed)
	}
	if f.Priority != nil {
		q = q.Where("priority = ?", string(*f.Priority))
	}
	if f.Category != nil {
		q = q.Where("category = ?", string(*f.Category))
	}

	return orderAndPage(q, taskOrderColumns, query.Sort, query.Page)
}

func toTaskDomain(data *model.TaskModel) *entity.Task {
	return &entity.Task{
		ID:          data.ID,
		OwnerID:     data.OwnerID,
		Title:       data.Title,
		Description: data.Description,
		Completed:   data.Completed,
		Priority:    entity.Priority(data.Priority),
		Category:    entity.Category(data.Category),
		CreatedAt:   data.CreatedAt,
		UpdatedAt:   data.UpdatedAt,
	}
}

func fromTaskDomain(data *entity.Task) *model.TaskModel {
	return &model.TaskModel{
		ID:          data.ID,
		OwnerID:     data.OwnerID,
		Title:       data.Title,
		Description: data.Description,
		Completed:   data.Completed,
		Priority:    string(data.Priority),
		Category:    string(data.Category),
		CreatedAt:   data.CreatedAt,
		UpdatedAt:   data.UpdatedAt,
	}
}
