package usecase

import (
	"context"

	"taskhub/internal/domain/entity"

	"github.com/google/uuid"
)

// CreatePostInput holds the fields of a new post.
type CreatePostInput struct {
	Title   string `json:"title" validate:"required,notblank,min=3,max=200"`
	Content string `json:"content" validate:"required,notblank,max=10000"`
}

// UpdatePostInput is a partial update. Nil fields are left unchanged.
type UpdatePostInput struct {
	Title   *string `json:"title" validate:"omitempty,notblank,min=3,max=200"`
	Content *string `json:"content" validate:"omitempty,notblank,max=10000"`
}

// ListPostsInput selects one page of the caller's posts.
type ListPostsInput struct {
	PageRequest
}

// PostPage is one page of posts.
type PostPage struct {
	Items []*entity.Post `json:"items"`
	PageInfo
}

// PostUsecase manages the caller's posts. Every operation is scoped to ownerID.
type PostUsecase interface {
	Create(ctx context.Context, ownerID uuid.UUID, input *CreatePostInput) (*entity.Post, error)
	Get(ctx context.Context, ownerID, id uuid.UUID) (*entity.Post, error)
	Update(ctx context.Context, ownerID, id uuid.UUID, input *UpdatePostInput) (*entity.Post, error)
	Delete(ctx context.Context, ownerID, id uuid.UUID) error
	List(ctx context.Context, ownerID uuid.UUID, input *ListPostsInput) (*PostPage, error)
}
