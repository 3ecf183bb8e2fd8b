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

var _ repository.PostRepository = (*postRepository)(nil)

type postRepository struct {
	mu    sync.RWMutex
	posts map[uuid.UUID]*entity.Post
}

// NewPostRepository returns an empty in-memory post store.
func NewPostRepository() repository.PostRepository {
	return &postRepository{
		posts: make(map[uuid.UUID]*entity.Post),
	}
}

func (r *postRepository) Create(ctx context.Context, post *entity.Post) error {
	if err := ctx.Err(); err != nil {
		return errors.WithStack(err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if post.ID == uuid.Nil {
		id, err := uuid.NewV7()
		if err != nil {
			return errors.Wrap(err, "generate post id")
		}
		post.ID = id
	}
	r.posts[post.ID] = post.Clone()

	return nil
}

func (r *postRepository) FindByID(ctx context.Context, ownerID, id uuid.UUID) (*entity.Post, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.WithStack(err)
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	post, ok := r.posts[id]
	if !ok || post.OwnerID != ownerID {
		return nil, repository.ErrPostNotFound
	}

	return post.Clone(), nil
}

func (r *postRepository) Update(ctx context.Context, ownerID, id uuid.UUID, apply func(*entity.Post) error) (*entity.Post, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.WithStack(err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.posts[id]
	if !ok || stored.OwnerID != ownerID {
		return nil, repository.ErrPostNotFound
	}

	updated := stored.Clone()
	if err := apply(updated); err != nil {
		return nil, err
	}
	updated.ID = stored.ID
	updated.OwnerID = stored.OwnerID
	updated.CreatedAt = stored.CreatedAt
	r.posts[id] = updated

	return updated.Clone(), nil
}

func (r *postRepository) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	if err := ctx.Err(); err != nil {
		return errors.WithStack(err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	post, ok := r.posts[id]
	if !ok || post.OwnerID != ownerID {
		return repository.ErrPostNotFound
	}
	delete(r.posts, id)

	return nil
}

func (r *postRepository) List(ctx context.Context, query repository.PostListQuery) ([]*entity.Post, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.WithStack(err)
	}

	r.mu.RLock()
	all := make([]*entity.Post, 0, len(r.posts))
	for _, post := range r.posts {
		all = append(all, post.Clone())
	}
	r.mu.RUnlock()

	return listing.Collect(listing.Apply(all, listing.Query[*entity.Post]{
		Filter:  func(p *entity.Post) bool { return p.OwnerID == query.OwnerID },
		Compare: repository.ComparePosts(query.Sort),
		Page:    query.Page,
	})), nil
}
