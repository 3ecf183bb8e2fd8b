package persistence

import (
	"io"
	"log/slog"
	"testing"

	"taskhub/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx/fxtest"
)

func newDiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNew_Memory(t *testing.T) {
	cfg := &config.Config{}
	cfg.Storage.Driver = config.StorageMemory

	repos, err := New(Params{Lifecycle: fxtest.NewLifecycle(t), Config: cfg, Logger: newDiscardLogger()})
	require.NoError(t, err)
	assert.NotNil(t, repos.Users)
	assert.NotNil(t, repos.Tasks)
	assert.NotNil(t, repos.Posts)
}

func TestNew_PostgresWithoutSection(t *testing.T) {
	cfg := &config.Config{}
	cfg.Storage.Driver = config.StoragePostgres

	_, err := New(Params{Lifecycle: fxtest.NewLifecycle(t), Config: cfg, Logger: newDiscardLogger()})
	require.Error(t, err)
}

func TestNew_UnknownDriver(t *testing.T) {
	cfg := &config.Config{}
	cfg.Storage.Driver = "cassandra"

	_, err := New(Params{Lifecycle: fxtest.NewLifecycle(t), Config: cfg, Logger: newDiscardLogger()})
	require.ErrorContains(t, err, "cassandra")
}
