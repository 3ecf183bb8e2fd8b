package context

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

func TestEchoContextValues(t *testing.T) {
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())

	_, ok := GetUserID(c)
	assert.False(t, ok)
	assert.NotEmpty(t, GetRequestID(c))

	SetRequestID(c, "req-1")
	assert.Equal(t, "req-1", GetRequestID(c))

	id := uuid.New()
	SetUserID(c, id)
	got, ok := GetUserID(c)
	assert.True(t, ok)
	assert.Equal(t, id, got)
}

func TestStdContextValues(t *testing.T) {
	ctx := context.Background()
	fallback := slog.New(slog.NewTextHandler(io.Discard, nil))

	assert.Empty(t, RequestIDFrom(ctx))
	assert.Same(t, fallback, GetLoggerOrDefault(ctx, fallback))

	scoped := fallback.With(slog.String("request_id", "req-1"))
	id := uuid.New()
	ctx = WithLogger(WithUserID(WithRequestID(ctx, "req-1"), id), scoped)

	assert.Equal(t, "req-1", RequestIDFrom(ctx))
	assert.Same(t, scoped, GetLoggerOrDefault(ctx, fallback))
	got, ok := UserIDFrom(ctx)
	assert.True(t, ok)
	assert.Equal(t, id, got)
}
