package impl

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"taskhub/internal/domain/entity"
	domainerrors "taskhub/internal/domain/errors"
	"taskhub/internal/infra/auth"
	"taskhub/internal/infra/persistence/memory"
	"taskhub/internal/usecase"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingNotifier struct {
	mu     sync.Mutex
	events []string
}

func (n *recordingNotifier) NotifyUser(_ uuid.UUID, event string, _ any) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, event)
}

type app struct {
	users    usecase.UserUsecase
	tasks    usecase.TaskUsecase
	posts    usecase.PostUsecase
	notifier *recordingNotifier
}

func newApp(t *testing.T) app {
	t.Helper()

	cfg := newTestConfig()
	tokens, err := auth.NewJWTService(cfg)
	require.NoError(t, err)

	userRepo := memory.NewUserRepository()
	notifier := &recordingNotifier{}

	return app{
		users: NewUserService(UserServiceParams{
			UserRepo:     userRepo,
			Hasher:       auth.NewBcryptHasher(cfg),
			TokenService: tokens,
			Logger:       newDiscardLogger(),
		}),
		tasks: NewTaskService(TaskServiceParams{
			TaskRepo: memory.NewTaskRepository(),
			UserRepo: userRepo,
			Notifier: notifier,
			Config:   cfg,
			Logger:   newDiscardLogger(),
		}),
		posts: NewPostService(PostServiceParams{
			PostRepo: memory.NewPostRepository(),
			UserRepo: userRepo,
			Notifier: notifier,
			Config:   cfg,
			Logger:   newDiscardLogger(),
		}),
		notifier: notifier,
	}
}

func (a app) register(ctx context.Context, t *testing.T, email string) *entity.User {
	t.Helper()

	out, err := a.users.Register(ctx, &usecase.RegisterUserInput{Email: email, Password: "secret123"})
	require.NoError(t, err)

	return out.User
}

func TestScenario_TaskLifecycle(t *testing.T) {
	ctx := context.Background()
	a := newApp(t)

	registered := a.register(ctx, t, "a@x.com")

	login, err := a.users.Login(ctx, &usecase.LoginInput{Email: "a@x.com", Password: "secret123"})
	require.NoError(t, err)
	require.NotEmpty(t, login.Token)
	assert.Equal(t, registered.ID, login.User.ID)
	owner := login.User.ID

	created, err := a.tasks.Create(ctx, owner, &usecase.CreateTaskInput{Title: "Buy milk"})
	require.NoError(t, err)

	page, err := a.tasks.List(ctx, owner, &usecase.ListTasksInput{
		PageRequest: usecase.PageRequest{Page: ptr(1), Limit: ptr(5)},
	})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, created.ID, page.Items[0].ID)

	_, err = a.tasks.Update(ctx, owner, created.ID, &usecase.UpdateTaskInput{Completed: ptr(true)})
	require.NoError(t, err)

	got, err := a.tasks.Get(ctx, owner, created.ID)
	require.NoError(t, err)
	assert.True(t, got.Completed)
	assert.Equal(t, "Buy milk", got.Title)

	require.NoError(t, a.tasks.Delete(ctx, owner, created.ID))
	_, err = a.tasks.Get(ctx, owner, created.ID)
	require.ErrorIs(t, err, domainerrors.ErrTaskNotFound)

	assert.Equal(t, []string{"task.created", "task.updated", "task.deleted"}, a.notifier.events)
}

func TestScenario_DuplicateRegistration(t *testing.T) {
	ctx := context.Background()
	a := newApp(t)

	first := a.register(ctx, t, "a@x.com")

	_, err := a.users.Register(ctx, &usecase.RegisterUserInput{Email: "A@X.com", Password: "other-secret"})
	require.ErrorIs(t, err, domainerrors.ErrUserAlreadyExists)

	// the first credentials still work and point at the first user
	login, err := a.users.Login(ctx, &usecase.LoginInput{Email: "a@x.com", Password: "secret123"})
	require.NoError(t, err)
	assert.Equal(t, first.ID, login.User.ID)

	_, err = a.users.Login(ctx, &usecase.LoginInput{Email: "a@x.com", Password: "other-secret"})
	require.ErrorIs(t, err, domainerrors.ErrInvalidCredentials)
}

func TestScenario_ConcurrentRegistrationCreatesOneUser(t *testing.T) {
	ctx := context.Background()
	a := newApp(t)

	var created, duplicates atomic.Int32
	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := a.users.Register(ctx, &usecase.RegisterUserInput{Email: "race@x.com", Password: "secret123"})
			switch {
			case err == nil:
				created.Add(1)
			case assert.ErrorIs(t, err, domainerrors.ErrUserAlreadyExists):
				duplicates.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), created.Load())
	assert.Equal(t, int32(7), duplicates.Load())
}

func TestScenario_OwnershipIsolation(t *testing.T) {
	ctx := context.Background()
	a := newApp(t)

	alice := a.register(ctx, t, "alice@x.com")
	bob := a.register(ctx, t, "bob@x.com")

	task, err := a.tasks.Create(ctx, alice.ID, &usecase.CreateTaskInput{Title: "Alice's task"})
	require.NoError(t, err)
	post, err := a.posts.Create(ctx, alice.ID, &usecase.CreatePostInput{Title: "Hello", Content: "World"})
	require.NoError(t, err)
	assert.Equal(t, "alice", post.Author)

	_, err = a.tasks.Get(ctx, bob.ID, task.ID)
	require.ErrorIs(t, err, domainerrors.ErrTaskNotFound)
	_, err = a.tasks.Update(ctx, bob.ID, task.ID, &usecase.UpdateTaskInput{Title: ptr("Stolen")})
	require.ErrorIs(t, err, domainerrors.ErrTaskNotFound)
	require.ErrorIs(t, a.tasks.Delete(ctx, bob.ID, task.ID), domainerrors.ErrTaskNotFound)

	_, err = a.posts.Get(ctx, bob.ID, post.ID)
	require.ErrorIs(t, err, domainerrors.ErrPostNotFound)
	_, err = a.posts.Update(ctx, bob.ID, post.ID, &usecase.UpdatePostInput{Content: ptr("defaced")})
	require.ErrorIs(t, err, domainerrors.ErrPostNotFound)
	require.ErrorIs(t, a.posts.Delete(ctx, bob.ID, post.ID), domainerrors.ErrPostNotFound)

	bobsTasks, err := a.tasks.List(ctx, bob.ID, &usecase.ListTasksInput{})
	require.NoError(t, err)
	assert.Empty(t, bobsTasks.Items)

	still, err := a.tasks.Get(ctx, alice.ID, task.ID)
	require.NoError(t, err)
	assert.Equal(t, "Alice's task", still.Title)
}

func TestScenario_PagesCoverFilteredCollection(t *testing.T) {
	ctx := context.Background()
	a := newApp(t)
	owner := a.register(ctx, t, "pager@x.com").ID

	want := map[uuid.UUID]bool{}
	for i := range 13 {
		task, err := a.tasks.Create(ctx, owner, &usecase.CreateTaskInput{
			Title:     "Task number " + string(rune('a'+i)),
			Completed: i%3 == 0,
		})
		require.NoError(t, err)
		want[task.ID] = task.Completed
	}

	done := true
	var seen []*entity.Task
	for pageNo := 1; ; pageNo++ {
		page, err := a.tasks.List(ctx, owner, &usecase.ListTasksInput{
			Completed:   &done,
			PageRequest: usecase.PageRequest{Page: ptr(pageNo), Limit: ptr(2), Sort: "title"},
		})
		require.NoError(t, err)
		if len(page.Items) == 0 {
			break
		}
		seen = append(seen, page.Items...)
	}

	require.Len(t, seen, 5)
	ids := map[uuid.UUID]struct{}{}
	for i, task := range seen {
		assert.True(t, want[task.ID])
		ids[task.ID] = struct{}{}
		if i > 0 {
			assert.Less(t, seen[i-1].Title, task.Title)
		}
	}
	assert.Len(t, ids, 5)

	all, err := a.tasks.List(ctx, owner, &usecase.ListTasksInput{
		PageRequest: usecase.PageRequest{Limit: ptr(100)},
	})
	require.NoError(t, err)
	assert.Len(t, all.Items, 13)

	empty, err := a.tasks.List(ctx, owner, &usecase.ListTasksInput{
		PageRequest: usecase.PageRequest{Limit: ptr(0)},
	})
	require.NoError(t, err)
	assert.Empty(t, empty.Items)
}
