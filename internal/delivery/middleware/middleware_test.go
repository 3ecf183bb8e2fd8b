package middleware

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"taskhub/config"
	deliverycontext "taskhub/internal/delivery/context"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newServer(buf *bytes.Buffer, debug bool) *echo.Echo {
	logger := slog.New(slog.NewJSONHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	cfg := &config.Config{}
	cfg.Env.Debug = debug

	e := echo.New()
	e.Use(NewRequestIDMiddleware(logger).Process)
	e.Use(NewLoggerMiddleware(logger, cfg).Handle)
	e.GET("/ok", func(c echo.Context) error {
		deliverycontext.GetLoggerOrDefault(c.Request().Context(), nil).Info("inside handler")

		return c.String(http.StatusOK, deliverycontext.GetRequestID(c))
	})
	e.GET("/boom", func(c echo.Context) error {
		return echo.NewHTTPError(http.StatusTeapot, "short and stout")
	})

	return e
}

func logLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()

	var lines []map[string]any
	for _, raw := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		var line map[string]any
		require.NoError(t, json.Unmarshal([]byte(raw), &line))
		lines = append(lines, line)
	}

	return lines
}

func TestRequestID_GeneratedAndPropagated(t *testing.T) {
	var buf bytes.Buffer
	e := newServer(&buf, false)

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ok", nil))

	id := rec.Header().Get(deliverycontext.HeaderXRequestID)
	require.NotEmpty(t, id)
	assert.Equal(t, id, rec.Body.String())

	lines := logLines(t, &buf)
	require.Len(t, lines, 2)
	assert.Equal(t, "inside handler", lines[0]["msg"])
	assert.Equal(t, id, lines[0]["request_id"])
	assert.Equal(t, "HTTP Request", lines[1]["msg"])
	assert.Equal(t, "DEBUG", lines[1]["level"])
	assert.Equal(t, id, lines[1]["request_id"])
}

func TestRequestID_ClientValueReused(t *testing.T) {
	var buf bytes.Buffer
	e := newServer(&buf, true)

	req := httptest.NewRequest(http.MethodGet, "/ok", nil)
	req.Header.Set(deliverycontext.HeaderXRequestID, "client-id")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, "client-id", rec.Header().Get(deliverycontext.HeaderXRequestID))

	oversized := httptest.NewRequest(http.MethodGet, "/ok", nil)
	oversized.Header.Set(deliverycontext.HeaderXRequestID, strings.Repeat("x", maxRequestIDLength+1))
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, oversized)

	assert.NotEqual(t, strings.Repeat("x", maxRequestIDLength+1), rec.Header().Get(deliverycontext.HeaderXRequestID))
}

func TestLogger_ErrorStatusIsLogged(t *testing.T) {
	var buf bytes.Buffer
	e := newServer(&buf, true)

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boom", nil))

	assert.Equal(t, http.StatusTeapot, rec.Code)

	lines := logLines(t, &buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "WARN", lines[0]["level"])
	assert.EqualValues(t, http.StatusTeapot, lines[0]["status"])
	assert.Contains(t, lines[0]["error"], "short and stout")
}
