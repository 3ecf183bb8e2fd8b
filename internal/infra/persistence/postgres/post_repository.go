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

var _ repository.PostRepository = (*postRepository)(nil)

type postRepository struct {
	db *gorm.DB
}

// NewPostRepository is the constructor for postRepository.
func NewPostRepository(db *gorm.DB) repository.PostRepository {
	return &postRepository{db: db}
}

func (repo *postRepository) Create(ctx context.Context, post *entity.Post) error {
	if post.ID == uuid.Nil {
		id, err := uuid.NewV7()
		if err != nil {
			return errors.Wrap(err, "generate post id")
		}
		post.ID = id
	}

	row := fromPostDomain(post)
	if err := repo.db.WithContext(ctx).Create(row).Error; err != nil {
		if isForeignKeyConstraintViolation(err) {
			return repository.ErrUserNotFound
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to create post")
	}

	post.CreatedAt = row.CreatedAt
	post.UpdatedAt = row.UpdatedAt

	return nil
}

func (repo *postRepository) FindByID(ctx context.Context, ownerID, id uuid.UUID) (*entity.Post, error) {
	var row model.PostModel
	if err := repo.db.WithContext(ctx).Where("id = ? AND owner_id = ?", id, ownerID).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrPostNotFound
		}

		return nil, domainerrors.NewDatabaseExecuteError(err, "failed to find post")
	}

	return toPostDomain(&row), nil
}

func (repo *postRepository) Update(ctx context.Context, ownerID, id uuid.UUID, apply func(*entity.Post) error) (*entity.Post, error) {
	var updated *entity.Post

	err := inTransaction(ctx, repo.db, func(tx *gorm.DB) error {
		var row model.PostModel
		if err := forUpdate(tx).Where("id = ? AND owner_id = ?", id, ownerID).First(&row).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return repository.ErrPostNotFound
			}

			return domainerrors.NewDatabaseExecuteError(err, "failed to lock post")
		}

		post := toPostDomain(&row)
		if err := apply(post); err != nil {
			return err
		}
		post.ID = row.ID
		post.OwnerID = row.OwnerID
		post.CreatedAt = row.CreatedAt

		next := fromPostDomain(post)
		if err := tx.Save(next).Error; err != nil {
			return domainerrors.NewDatabaseExecuteError(err, "failed to update post")
		}
		post.UpdatedAt = next.UpdatedAt
		updated = post

		return nil
	})
	if err != nil {
		return nil, err
	}

	return updated, nil
}

func (repo *postRepository) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	result := repo.db.WithContext(ctx).Where("id = ? AND owner_id = ?", id, ownerID).Delete(&model.PostModel{})
	if result.Error != nil {
		return domainerrors.NewDatabaseExecuteError(result.Error, "failed to delete post")
	}
	if result.RowsAffected == 0 {
		return repository.ErrPostNotFound
	}

	return nil
}

func (repo *postRepository) List(ctx context.Context, query repository.PostListQuery) ([]*entity.Post, error) {
	q, ok := postListQuery(repo.db.WithContext(ctx), query)
	if !ok {
		return []*entity.Post{}, nil
	}

	var rows []model.PostModel
	if err := q.Find(&rows).Error; err != nil {
		return nil, domainerrors.NewDatabaseExecuteError(err, "failed to list posts")
	}

	posts := make([]*entity.Post, 0, len(rows))
	for i := range rows {
		posts = append(posts, toPostDomain(&rows[i]))
	}

	return posts, nil
}

func postListQuery(db *gorm.DB, query repository.PostListQuery) (*gorm.DB, bool) {
	q := db.Model(&model.PostModel{}).Where("owner_id = ?", query.OwnerID)

	return orderAndPage(q, postOrderColumns, query.Sort, query.Page)
}

func toPostDomain(data *model.PostModel) *entity.Post {
	return &entity.Post{
		ID:        data.ID,
		OwnerID:   data.OwnerID,
		Title:     data.Title,
		Content:   data.Content,
		Author:    data.Author,
		CreatedAt: data.CreatedAt,
		UpdatedAt: data.UpdatedAt,
	}
}

func fromPostDomain(data *entity.Post) *model.PostModel {
	return &model.PostModel{
		ID:        data.ID,
		OwnerID:   data.OwnerID,
		Title:     data.Title,
		Content:   data.Content,
		Author:    data.Author,
		CreatedAt: data.CreatedAt,
		UpdatedAt: data.UpdatedAt,
	}
}
