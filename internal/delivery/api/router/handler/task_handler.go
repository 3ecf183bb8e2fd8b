package handler

import (
	"log/slog"
	"net/http"

	"taskhub/internal/delivery/api/middleware"
	"taskhub/internal/delivery/api/response"
	"taskhub/internal/domain/entity"
	domainerrors "taskhub/internal/domain/errors"
	"taskhub/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// TaskHandlerParams holds dependencies for TaskHandler, injected by Fx.
type TaskHandlerParams struct {
	fx.In

	TaskUC usecase.TaskUsecase
	Logger *slog.Logger
}

// TaskHandler serves the caller's tasks.
type TaskHandler struct {
	taskUC usecase.TaskUsecase
	logger *slog.Logger
}

// NewTaskHandler is the constructor for TaskHandler
func NewTaskHandler(params TaskHandlerParams) *TaskHandler {
	return &TaskHandler{
		taskUC: params.TaskUC,
		logger: params.Logger,
	}
}

// CreateTask handles task creation
func (h *TaskHandler) CreateTask(c echo.Context) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return domainerrors.ErrTokenMissing
	}

	var input usecase.CreateTaskInput
	if err := c.Bind(&input); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid task input")
	}
	if err := c.Validate(&input); err != nil {
		return err
	}

	task, err := h.taskUC.Create(c.Request().Context(), userID, &input)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusCreated, task, "Task created")
}

// ListTasks returns one filtered, sorted page of the caller's tasks
func (h *TaskHandler) ListTasks(c echo.Context) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return domainerrors.ErrTokenMissing
	}

	page, err := pageRequest(c)
	if err != nil {
		return err
	}
	input := usecase.ListTasksInput{PageRequest: page}

	var completed bool
	var priority, category string
	if err := echo.QueryParamsBinder(c).
		Bool("completed", &completed).
		String("priority", &priority).
		String("category", &category).
		BindError(); err != nil {
		return invalidQuery(err)
	}
	if hasQuery(c, "completed") {
		input.Completed = &completed
	}
	if priority != "" {
		p := entity.Priority(priority)
		input.Priority = &p
	}
	if category != "" {
		cat := entity.Category(category)
		input.Category = &cat
	}

	result, err := h.taskUC.List(c.Request().Context(), userID, &input)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, result, "Tasks retrieved")
}

// GetTask returns one of the caller's tasks
func (h *TaskHandler) GetTask(c echo.Context) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return domainerrors.ErrTokenMissing
	}
	id, err := recordID(c, domainerrors.ErrTaskNotFound)
	if err != nil {
		return err
	}

	task, err := h.taskUC.Get(c.Request().Context(), userID, id)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, task, "Task retrieved")
}

// UpdateTask applies a partial update. PUT and PATCH share it.
func (h *TaskHandler) UpdateTask(c echo.Context) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return domainerrors.ErrTokenMissing
	}
	id, err := recordID(c, domainerrors.ErrTaskNotFound)
	if err != nil {
		return err
	}

	var input usecase.UpdateTaskInput
	if err := c.Bind(&input); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid task input")
	}
	if err := c.Validate(&input); err != nil {
		return err
	}

	task, err := h.taskUC.Update(c.Request().Context(), userID, id, &input)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, task, "Task updated")
}

// DeleteTask removes one of the caller's tasks
func (h *TaskHandler) DeleteTask(c echo.Context) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return domainerrors.ErrTokenMissing
	}
	id, err := recordID(c, domainerrors.ErrTaskNotFound)
	if err != nil {
		return err
	}

	if err := h.taskUC.Delete(c.Request().Context(), userID, id); err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, map[string]string{"message": "Task deleted"}, "Task deleted")
}
