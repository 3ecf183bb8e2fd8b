package handler

import (
	"log/slog"
	"net/http"

	"taskhub/internal/delivery/api/middleware"
	"taskhub/internal/delivery/api/response"
	domainerrors "taskhub/internal/domain/errors"
	"taskhub/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// PostHandlerParams holds dependencies for PostHandler, injected by Fx.
type PostHandlerParams struct {
	fx.In

	PostUC usecase.PostUsecase
	Logger *slog.Logger
}

// PostHandler serves the caller's posts.
type PostHandler struct {
	postUC usecase.PostUsecase
	logger *slog.Logger
}

// NewPostHandler is the constructor for PostHandler
func NewPostHandler(params PostHandlerParams) *PostHandler {
	return &PostHandler{
		postUC: params.PostUC,
		logger: params.Logger,
	}
}

func (h *PostHandler) CreatePost(c echo.Context) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return domainerrors.ErrTokenMissing
	}

	var input usecase.CreatePostInput
	if err := c.Bind(&input); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid post input")
	}
	if err := c.Validate(&input); err != nil {
		return err
	}

	post, err := h.postUC.Create(c.Request().Context(), userID, &input)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusCreated, post, "Post created")
}

func (h *PostHandler) ListPosts(c echo.Context) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return domainerrors.ErrTokenMissing
	}

	page, err := pageRequest(c)
	if err != nil {
		return err
	}

	result, err := h.postUC.List(c.Request().Context(), userID, &usecase.ListPostsInput{PageRequest: page})
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, result, "Posts retrieved")
}

func (h *PostHandler) GetPost(c echo.Context) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return domainerrors.ErrTokenMissing
	}
	id, err := recordID(c, domainerrors.ErrPostNotFound)
	if err != nil {
		return err
	}

	post, err := h.postUC.Get(c.Request().Context(), userID, id)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, post, "Post retrieved")
}

func (h *PostHandler) UpdatePost(c echo.Context) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return domainerrors.ErrTokenMissing
	}
	id, err := recordID(c, domainerrors.ErrPostNotFound)
	if err != nil {
		return err
	}

	var input usecase.UpdatePostInput
	if err := c.Bind(&input); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid post input")
	}
	if err := c.Validate(&input); err != nil {
		return err
	}

	post, err := h.postUC.Update(c.Request().Context(), userID, id, &input)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, post, "Post updated")
}

func (h *PostHandler) DeletePost(c echo.Context) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return domainerrors.ErrTokenMissing
	}
	id, err := recordID(c, domainerrors.ErrPostNotFound)
	if err != nil {
		return err
	}

	if err := h.postUC.Delete(c.Request().Context(), userID, id); err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, map[string]string{"message": "Post deleted"}, "Post deleted")
}
