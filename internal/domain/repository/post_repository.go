package repository

import (
	"bytes"
	"context"

	"taskhub/internal/domain/entity"
	"taskhub/internal/domain/listing"
	"taskhub/internal/errors"

	"github.com/google/uuid"
)

// ErrPostNotFound covers both a missing post and one that belongs to someone else.
var ErrPostNotFound = errors.New("post not found")

// PostSortFields lists the keys a post list may be ordered by.
var PostSortFields = []string{"created_at", "updated_at", "title"}

// PostListQuery is the full description of one post list page.
type PostListQuery struct {
	OwnerID uuid.UUID
	Sort    listing.Sort
	Page    listing.Page
}

// PostRepository stores posts. Every lookup and mutation is scoped by owner,
// and Update follows the same read-modify-write contract as TaskRepository.
type PostRepository interface {
	Create(ctx context.Context, post *entity.Post) error
	FindByID(ctx context.Context, ownerID, id uuid.UUID) (*entity.Post, error)
	Update(ctx context.Context, ownerID, id uuid.UUID, apply func(*entity.Post) error) (*entity.Post, error)
	Delete(ctx context.Context, ownerID, id uuid.UUID) error
	List(ctx context.Context, query PostListQuery) ([]*entity.Post, error)
}

// ComparePosts orders posts by s, breaking ties on ID in the same direction.
func ComparePosts(s listing.Sort) func(a, b *entity.Post) int {
	var primary func(a, b *entity.Post) int
	switch s.Field {
	case "updated_at":
		primary = listing.By(func(p *entity.Post) int64 { return p.UpdatedAt.UnixNano() }, s.Desc)
	case "title":
		primary = listing.By(func(p *entity.Post) string { return p.Title }, s.Desc)
	default:
		primary = listing.By(func(p *entity.Post) int64 { return p.CreatedAt.UnixNano() }, s.Desc)
	}

	return listing.Then(primary, func(a, b *entity.Post) int {
		return listing.Direction(s.Desc, bytes.Compare(a.ID[:], b.ID[:]))
	})
}
