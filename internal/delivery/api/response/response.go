package response

import (
	"net/http"

	deliverycontext "taskhub/internal/delivery/context"
	domainerrors "taskhub/internal/domain/errors"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// Envelope is the body of every JSON response.
type Envelope struct {
	Success bool       `json:"success"`
	Code    int        `json:"code"`
	Message string     `json:"message"`
	Data    any        `json:"data,omitempty"`
	Error   *ErrorInfo `json:"error,omitempty"`
	Meta    *MetaInfo  `json:"meta"`
}

// ErrorInfo contains detailed error information
type ErrorInfo struct {
	Code    string `json:"code"`              // Machine-readable error code, e.g., "VALIDATION_FAILED"
	Details any    `json:"details,omitempty"` // Additional error context
}

// MetaInfo represents response metadata
type MetaInfo struct {
	RequestID string `json:"request_id"` // Request tracking ID
}

// Success returns a successful response
func Success(c echo.Context, statusCode int, data any, message string) error {
	return c.JSON(statusCode, Envelope{
		Success: true,
		Code:    statusCode,
		Message: message,
		Data:    data,
		Meta:    meta(c),
	})
}

// Error returns an error response. Details are never sent with 401 or 403.
func Error(c echo.Context, statusCode int, errorCode string, message string, details any) error {
	if statusCode == http.StatusUnauthorized || statusCode == http.StatusForbidden {
		details = nil
	}

	return c.JSON(statusCode, Envelope{
		Success: false,
		Code:    statusCode,
		Message: message,
		Error: &ErrorInfo{
			Code:    errorCode,
			Details: details,
		},
		Meta: meta(c),
	})
}

// BadRequest returns a 400 error
func BadRequest(c echo.Context, errorCode string, message string) error {
	return Error(c, http.StatusBadRequest, errorCode, message, nil)
}

// BindingError returns a binding error response
func BindingError(c echo.Context, errorCode string, message string) error {
	return Error(c, http.StatusBadRequest, errorCode, message, nil)
}

// Unauthorized returns a 401 error
func Unauthorized(c echo.Context, errorCode string, message string) error {
	return Error(c, http.StatusUnauthorized, errorCode, message, nil)
}

// NotFound returns a 404 error
func NotFound(c echo.Context, errorCode string, message string) error {
	return Error(c, http.StatusNotFound, errorCode, message, nil)
}

// InternalServerError returns a 500 error
func InternalServerError(c echo.Context, errorCode string, message string, details any) error {
	return Error(c, http.StatusInternalServerError, errorCode, message, details)
}

// AppError renders a domain error. Validation failures carry their
// per-field reasons; other 4xx errors carry their detail string.
func AppError(c echo.Context, appErr domainerrors.AppError) error {
	var details any
	var verr *domainerrors.ValidationError
	switch {
	case errors.As(appErr, &verr):
		details = verr.Fields()
	case appErr.HTTPCode() < http.StatusInternalServerError && appErr.Details() != "":
		details = appErr.Details()
	}

	return Error(c, appErr.HTTPCode(), appErr.ErrorCode(), appErr.Message(), details)
}

func meta(c echo.Context) *MetaInfo {
	return &MetaInfo{
		RequestID: deliverycontext.GetRequestID(c),
	}
}
