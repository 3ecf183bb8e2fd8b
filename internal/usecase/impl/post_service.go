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

type postService struct {
	postRepo repository.PostRepository
	userRepo repository.UserRepository
	notifier service.Notifier
	pager    pager
	logger   *slog.Logger
	now      func() time.Time
}

// PostServiceParams holds dependencies for PostService, injected by Fx.
type PostServiceParams struct {
	fx.In

	PostRepo repository.PostRepository
	UserRepo repository.UserRepository
	Notifier service.Notifier
	Config   *config.Config
	Logger   *slog.Logger
}

// NewPostService is the constructor for postService.
func NewPostService(params PostServiceParams) usecase.PostUsecase {
	return &postService{
		postRepo: params.PostRepo,
		userRepo: params.UserRepo,
		notifier: params.Notifier,
		pager:    newPager(params.Config),
		logger:   params.Logger,
		now:      time.Now,
	}
}

func (srv *postService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// Create stamps the post with the owner's current display name.
func (srv *postService) Create(ctx context.Context, ownerID uuid.UUID, input *usecase.CreatePostInput) (*entity.Post, error) {
	input.Title = strings.TrimSpace(input.Title)
	if err := validation.Struct(input); err != nil {
		return nil, err
	}
	owner, err := requireOwner(ctx, srv.userRepo, ownerID)
	if err != nil {
		return nil, err
	}

	now := srv.now().UTC()
	post := &entity.Post{
		OwnerID:   ownerID,
		Title:     input.Title,
		Content:   input.Content,
		Author:    owner.Name,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := srv.postRepo.Create(ctx, post); err != nil {
		return nil, mapOwnerError(err, "failed to create post")
	}
	srv.log(ctx).Debug("Post created", slog.Any("postID", post.ID))
	srv.notifier.NotifyUser(ownerID, service.EventPostCreated, post)

	return post, nil
}

func (srv *postService) Get(ctx context.Context, ownerID, id uuid.UUID) (*entity.Post, error) {
	post, err := srv.postRepo.FindByID(ctx, ownerID, id)
	if err != nil {
		return nil, mapPostError(err, "failed to find post")
	}

	return post, nil
}

func (srv *postService) Update(ctx context.Context, ownerID, id uuid.UUID, input *usecase.UpdatePostInput) (*entity.Post, error) {
	if input.Title != nil {
		trimmed := strings.TrimSpace(*input.Title)
		input.Title = &trimmed
	}
	if err := validation.Struct(input); err != nil {
		return nil, err
	}

	post, err := srv.postRepo.Update(ctx, ownerID, id, func(p *entity.Post) error {
		if input.Title != nil {
			p.Title = *input.Title
		}
		if input.Content != nil {
			p.Content = *input.Content
		}
		p.UpdatedAt = srv.now().UTC()

		return nil
	})
	if err != nil {
		return nil, mapPostError(err, "failed to update post")
	}
	srv.notifier.NotifyUser(ownerID, service.EventPostUpdated, post)

	return post, nil
}

func (srv *postService) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	if err := srv.postRepo.Delete(ctx, ownerID, id); err != nil {
		return mapPostError(err, "failed to delete post")
	}
	srv.log(ctx).Debug("Post deleted", slog.Any("postID", id))
	srv.notifier.NotifyUser(ownerID, service.EventPostDeleted, deletedPayload{ID: id})

	return nil
}

func (srv *postService) List(ctx context.Context, ownerID uuid.UUID, input *usecase.ListPostsInput) (*usecase.PostPage, error) {
	page, sort, info, err := srv.pager.resolve(input.PageRequest, repository.PostSortFields)
	if err != nil {
		return nil, err
	}

	posts, err := srv.postRepo.List(ctx, repository.PostListQuery{
		OwnerID: ownerID,
		Sort:    sort,
		Page:    page,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to list posts")
	}

	return &usecase.PostPage{Items: posts, PageInfo: info}, nil
}

func mapPostError(err error, msg string) error {
	if errors.Is(err, repository.ErrPostNotFound) {
		return domainerrors.ErrPostNotFound.WrapMessage(msg)
	}

	return errors.Wrap(err, msg)
}
