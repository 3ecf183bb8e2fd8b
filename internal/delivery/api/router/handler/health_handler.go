package handler

import (
	"net/http"
	"time"

	"taskhub/internal/delivery/api/response"

	"github.com/labstack/echo/v4"
)

// HealthCheck is a simple handler to check if the service is up.
func HealthCheck(c echo.Context) error {
	return response.Success(c, http.StatusOK, map[string]any{
		"status": "ok",
		"time":   time.Now().UTC(),
	}, "Service is healthy")
}
