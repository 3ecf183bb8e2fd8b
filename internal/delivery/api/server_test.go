package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"taskhub/config"
	"taskhub/internal/delivery/api/middleware"
	"taskhub/internal/delivery/api/router"
	"taskhub/internal/delivery/api/router/handler"
	"taskhub/internal/delivery/ws"
	"taskhub/internal/infra/auth"
	"taskhub/internal/infra/persistence/memory"
	"taskhub/internal/infra/relay"
	"taskhub/internal/usecase"
	"taskhub/internal/usecase/impl"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx/fxtest"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"
)

type envelope struct {
	Success bool            `json:"success"`
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string          `json:"code"`
		Details json.RawMessage `json:"details"`
	} `json:"error"`
	Meta struct {
		RequestID string `json:"request_id"`
	} `json:"meta"`
}

// unreachableTasks fails loudly if a request gets past the auth gate.
type unreachableTasks struct {
	usecase.TaskUsecase
}

type testAPI struct {
	t   *testing.T
	srv *httptest.Server
}

func newTestConfig() *config.Config {
	cfg := &config.Config{
		Auth: &config.AuthConfig{BcryptCost: 4},
	}
	cfg.SecretKey.Access = "test-secret"
	cfg.HTTP.MaxRequestBodySize = "2KB"
	cfg.ApplyDefaults()

	return cfg
}

func newTestAPI(t *testing.T, tasks func(usecase.TaskUsecase) usecase.TaskUsecase) *testAPI {
	t.Helper()

	cfg := newTestConfig()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	tokens, err := auth.NewJWTService(cfg)
	require.NoError(t, err)

	users := memory.NewUserRepository()
	hub := relay.NewHub(logger)
	notifier := relay.NewHubNotifier(hub, logger)

	userUC := impl.NewUserService(impl.UserServiceParams{
		UserRepo:     users,
		Hasher:       auth.NewBcryptHasher(cfg),
		TokenService: tokens,
		Logger:       logger,
	})
	taskUC := impl.NewTaskService(impl.TaskServiceParams{
		TaskRepo: memory.NewTaskRepository(),
		UserRepo: users,
		Notifier: notifier,
		Config:   cfg,
		Logger:   logger,
	})
	if tasks != nil {
		taskUC = tasks(taskUC)
	}
	postUC := impl.NewPostService(impl.PostServiceParams{
		PostRepo: memory.NewPostRepository(),
		UserRepo: users,
		Notifier: notifier,
		Config:   cfg,
		Logger:   logger,
	})

	relayHandler := ws.NewHandler(ws.Params{
		Lifecycle: fxtest.NewLifecycle(t),
		Hub:       hub,
		Tokens:    tokens,
		Config:    cfg,
		Logger:    logger,
	})

	e := newEcho(cfg, logger, router.RouterParams{
		UserHandler:    handler.NewUserHandler(handler.UserHandlerParams{UserUC: userUC, Logger: logger}),
		TaskHandler:    handler.NewTaskHandler(handler.TaskHandlerParams{TaskUC: taskUC, Logger: logger}),
		PostHandler:    handler.NewPostHandler(handler.PostHandlerParams{PostUC: postUC, Logger: logger}),
		RelayHandler:   relayHandler,
		AuthMiddleware: middleware.NewAuthMiddleware(tokens, logger),
	})

	srv := httptest.NewServer(e)
	t.Cleanup(func() {
		relayHandler.Shutdown()
		srv.Close()
	})

	return &testAPI{t: t, srv: srv}
}

func (a *testAPI) do(method, path, token string, body any) (int, envelope) {
	a.t.Helper()

	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = strings.NewReader(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(a.t, err)
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, a.srv.URL+path, reader)
	require.NoError(a.t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := a.srv.Client().Do(req)
	require.NoError(a.t, err)
	defer resp.Body.Close()

	var env envelope
	require.NoError(a.t, json.NewDecoder(resp.Body).Decode(&env))
	assert.Equal(a.t, resp.StatusCode, env.Code)
	assert.Equal(a.t, resp.Header.Get("X-Request-Id"), env.Meta.RequestID)

	return resp.StatusCode, env
}

func (a *testAPI) login(prefix, email string) string {
	a.t.Helper()

	status, _ := a.do(http.MethodPost, prefix+"/register", "", map[string]string{"email": email, "password": "secret123"})
	require.Equal(a.t, http.StatusCreated, status)

	status, env := a.do(http.MethodPost, prefix+"/login", "", map[string]string{"email": email, "password": "secret123"})
	require.Equal(a.t, http.StatusOK, status)

	var out struct {
		Token string `json:"token"`
	}
	require.NoError(a.t, json.Unmarshal(env.Data, &out))
	require.NotEmpty(a.t, out.Token)

	return out.Token
}

func decode[T any](t *testing.T, raw json.RawMessage) T {
	t.Helper()

	var v T
	require.NoError(t, json.Unmarshal(raw, &v))

	return v
}

type taskBody struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Completed bool   `json:"completed"`
	Priority  string `json:"priority"`
}

type taskPage struct {
	Items []taskBody `json:"items"`
	Page  int        `json:"page"`
	Limit int        `json:"limit"`
}

func TestAPI_TaskLifecycle(t *testing.T) {
	api := newTestAPI(t, nil)
	token := api.login("/api", "a@x.com")

	status, env := api.do(http.MethodGet, "/api/me", token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "a", decode[map[string]any](t, env.Data)["name"])

	status, env = api.do(http.MethodPost, "/api/tasks", token, map[string]any{"title": "Buy milk"})
	require.Equal(t, http.StatusCreated, status)
	created := decode[taskBody](t, env.Data)
	assert.Equal(t, "medium", created.Priority)

	status, env = api.do(http.MethodGet, "/api/tasks?page=1&limit=5", token, nil)
	require.Equal(t, http.StatusOK, status)
	page := decode[taskPage](t, env.Data)
	require.Len(t, page.Items, 1)
	assert.Equal(t, created.ID, page.Items[0].ID)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 5, page.Limit)

	status, _ = api.do(http.MethodPatch, "/api/tasks/"+created.ID, token, map[string]any{"completed": true})
	require.Equal(t, http.StatusOK, status)

	status, env = api.do(http.MethodGet, "/api/tasks/"+created.ID, token, nil)
	require.Equal(t, http.StatusOK, status)
	got := decode[taskBody](t, env.Data)
	assert.True(t, got.Completed)
	assert.Equal(t, "Buy milk", got.Title)

	status, _ = api.do(http.MethodDelete, "/api/tasks/"+created.ID, token, nil)
	require.Equal(t, http.StatusOK, status)

	status, env = api.do(http.MethodGet, "/api/tasks/"+created.ID, token, nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "TASK_NOT_FOUND", env.Error.Code)
}

func TestAPI_LegacyRoutes(t *testing.T) {
	api := newTestAPI(t, nil)
	token := api.login("", "legacy@x.com")

	status, env := api.do(http.MethodPost, "/records", token, map[string]any{"title": "Old client"})
	require.Equal(t, http.StatusCreated, status)
	created := decode[taskBody](t, env.Data)

	status, env = api.do(http.MethodGet, "/api/tasks/"+created.ID, token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Old client", decode[taskBody](t, env.Data).Title)

	status, _ = api.do(http.MethodPut, "/records/"+created.ID, token, map[string]any{"title": "Renamed"})
	require.Equal(t, http.StatusOK, status)

	status, _ = api.do(http.MethodDelete, "/records/"+created.ID, token, nil)
	require.Equal(t, http.StatusOK, status)

	status, _ = api.do(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, status)
}

func TestAPI_AuthGate(t *testing.T) {
	api := newTestAPI(t, func(usecase.TaskUsecase) usecase.TaskUsecase { return unreachableTasks{} })

	tests := []struct {
		name   string
		header string
		code   string
	}{
		{name: "missing", header: "", code: "TOKEN_MISSING"},
		{name: "wrong scheme", header: "Basic abc", code: "TOKEN_INVALID"},
		{name: "forged", header: "Bearer not-a-jwt", code: "TOKEN_INVALID"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := http.NewRequest(http.MethodGet, api.srv.URL+"/api/tasks", nil)
			require.NoError(t, err)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}

			resp, err := api.srv.Client().Do(req)
			require.NoError(t, err)
			defer resp.Body.Close()

			var env envelope
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
			assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
			assert.False(t, env.Success)
			assert.Equal(t, tt.code, env.Error.Code)
			assert.Empty(t, env.Error.Details)
		})
	}
}

func TestAPI_ClientErrors(t *testing.T) {
	api := newTestAPI(t, nil)
	token := api.login("/api", "errors@x.com")

	status, env := api.do(http.MethodPost, "/api/tasks", token, map[string]any{"title": "ab", "priority": "urgent"})
	require.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION_FAILED", env.Error.Code)
	details := decode[map[string]string](t, env.Error.Details)
	assert.Contains(t, details, "title")
	assert.Contains(t, details, "priority")

	status, env = api.do(http.MethodPost, "/api/tasks", token, `{"title": 42`)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "INVALID_INPUT", env.Error.Code)

	for _, query := range []string{"page=abc", "page=0", "limit=-1", "sort=owner_id", "completed=maybe", "priority=urgent"} {
		status, env = api.do(http.MethodGet, "/api/tasks?"+query, token, nil)
		assert.Equal(t, http.StatusBadRequest, status, query)
		assert.Equal(t, "INVALID_QUERY", env.Error.Code, query)
	}

	status, env = api.do(http.MethodGet, "/api/tasks/not-a-uuid", token, nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "TASK_NOT_FOUND", env.Error.Code)

	status, env = api.do(http.MethodPost, "/api/register", "", map[string]string{"email": "ERRORS@x.com", "password": "secret123"})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "USER_ALREADY_EXISTS", env.Error.Code)

	status, env = api.do(http.MethodPost, "/api/login", "", map[string]string{"email": "errors@x.com", "password": "wrong-password"})
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "INVALID_CREDENTIALS", env.Error.Code)

	for _, path := range []string{"/nowhere", "/api/nope", "/api/tasks/a/b", "/records/a/b"} {
		status, env = api.do(http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusNotFound, status, path)
		assert.Equal(t, "NOT_FOUND", env.Error.Code, path)
	}

	status, env = api.do(http.MethodPost, "/api/posts", token, map[string]string{"title": "Big", "content": strings.Repeat("x", 4096)})
	assert.Equal(t, http.StatusRequestEntityTooLarge, status)
	assert.Equal(t, "REQUEST_TOO_LARGE", env.Error.Code)
}

func TestAPI_RecordsAreOwnerScoped(t *testing.T) {
	api := newTestAPI(t, nil)
	alice := api.login("/api", "alice@x.com")
	bob := api.login("/api", "bob@x.com")

	status, env := api.do(http.MethodPost, "/api/posts", alice, map[string]string{"title": "Diary", "content": "private"})
	require.Equal(t, http.StatusCreated, status)
	postID := decode[map[string]any](t, env.Data)["id"].(string)

	for _, method := range []string{http.MethodGet, http.MethodPatch, http.MethodDelete} {
		status, env = api.do(method, "/api/posts/"+postID, bob, map[string]string{"content": "defaced"})
		assert.Equal(t, http.StatusNotFound, status, method)
		assert.Equal(t, "POST_NOT_FOUND", env.Error.Code, method)
	}

	status, env = api.do(http.MethodGet, "/api/posts", bob, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Empty(t, decode[map[string]any](t, env.Data)["items"])

	status, env = api.do(http.MethodGet, "/api/posts/"+postID, alice, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "private", decode[map[string]any](t, env.Data)["content"])
}

func TestAPI_MutationsReachRelay(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	api := newTestAPI(t, nil)
	token := api.login("/api", "live@x.com")

	wsURL := "ws" + strings.TrimPrefix(api.srv.URL, "http") + "/ws?token=" + token
	conn, _, err := websocket.Dial(ctx, wsURL, nil)
	require.NoError(t, err)
	defer conn.CloseNow()

	var msg relay.Message
	require.NoError(t, wsjson.Read(ctx, conn, &msg))
	require.Equal(t, relay.TypeAnnounced, msg.Type)

	status, env := api.do(http.MethodPost, "/api/tasks", token, map[string]any{"title": "Watch this"})
	require.Equal(t, http.StatusCreated, status)
	created := decode[taskBody](t, env.Data)

	require.NoError(t, wsjson.Read(ctx, conn, &msg))
	assert.Equal(t, relay.TypeNotify, msg.Type)
	assert.Equal(t, "task.created", msg.Event)
	assert.Equal(t, created.ID, decode[taskBody](t, msg.Payload).ID)
}

func TestAPI_MutationEventsSkipAnonymousSockets(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	api := newTestAPI(t, nil)
	token := api.login("/api", "victim@x.com")

	status, env := api.do(http.MethodGet, "/api/me", token, nil)
	require.Equal(t, http.StatusOK, status)
	victimID := decode[map[string]any](t, env.Data)["id"].(string)

	conn, _, err := websocket.Dial(ctx, "ws"+strings.TrimPrefix(api.srv.URL, "http")+"/ws", nil)
	require.NoError(t, err)
	defer conn.CloseNow()

	require.NoError(t, wsjson.Write(ctx, conn, relay.Message{Type: relay.TypeAnnounce, UserID: victimID}))
	var msg relay.Message
	require.NoError(t, wsjson.Read(ctx, conn, &msg))
	require.Equal(t, relay.TypeAnnounced, msg.Type)

	status, _ = api.do(http.MethodPost, "/api/tasks", token, map[string]any{"title": "secret plan", "description": "private"})
	require.Equal(t, http.StatusCreated, status)

	// the pong is the next frame, so no task event was queued before it
	require.NoError(t, wsjson.Write(ctx, conn, relay.Message{Type: relay.TypePing}))
	require.NoError(t, wsjson.Read(ctx, conn, &msg))
	assert.Equal(t, relay.TypePong, msg.Type)
	assert.Empty(t, msg.Event)
}
