// Package persistence selects the repository implementations for the configured storage driver.
package persistence

import (
	"log/slog"

	"taskhub/config"
	"taskhub/internal/domain/repository"
	"taskhub/internal/errors"
	"taskhub/internal/infra/persistence/memory"
	"taskhub/internal/infra/persistence/postgres"

	"go.uber.org/fx"
)

// Params defines the required parameters
type Params struct {
	fx.In
	fx.Lifecycle

	Config *config.Config
	Logger *slog.Logger
}

// Repositories exposes one implementation of every repository to the container.
type Repositories struct {
	fx.Out

	Users repository.UserRepository
	Tasks repository.TaskRepository
	Posts repository.PostRepository
}

// New builds the repositories for cfg.Storage.Driver.
func New(params Params) (Repositories, error) {
	driver := params.Config.Storage.Driver
	params.Logger.Info("Storage driver selected", slog.String("driver", driver))

	switch driver {
	case config.StorageMemory:
		return Repositories{
			Users: memory.NewUserRepository(),
			Tasks: memory.NewTaskRepository(),
			Posts: memory.NewPostRepository(),
		}, nil
	case config.StoragePostgres:
		db, err := postgres.New(postgres.Params{
			Lifecycle: params.Lifecycle,
			Config:    params.Config,
			Logger:    params.Logger,
		})
		if err != nil {
			return Repositories{}, err
		}

		return Repositories{
			Users: postgres.NewUserRepository(db),
			Tasks: postgres.NewTaskRepository(db),
			Posts: postgres.NewPostRepository(db),
		}, nil
	default:
		return Repositories{}, errors.Errorf("unknown storage driver %q", driver)
	}
}
