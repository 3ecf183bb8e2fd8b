// Package postgres implements the repositories on PostgreSQL through GORM.
package postgres

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"taskhub/config"
	"taskhub/internal/domain/lifecycle"
	"taskhub/internal/errors"
	"taskhub/internal/infra/persistence/postgres/migrations"

	"github.com/pressly/goose/v3"
	"go.uber.org/fx"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const (
	dbPoolMonitorInterval       = 5 * time.Second
	dbPoolWarnDurationThreshold = 50 * time.Millisecond
)

// Params defines the required parameters
type Params struct {
	fx.In
	fx.Lifecycle

	Config *config.Config
	Logger *slog.Logger
}

// New opens the PostgreSQL connection pool. The first ping and the optional
// schema migration run in the fx start hook.
func New(params Params) (*gorm.DB, error) {
	pgCfg := params.Config.Postgres
	if pgCfg == nil {
		return nil, errors.New("postgres section is required for the postgres storage driver")
	}

	db, err := open(pgCfg, newGormSlogLogger(params.Logger, params.Config))
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, errors.Wrap(err, "failed to get PostgreSQL sql.DB")
	}
	configurePool(sqlDB, pgCfg)

	monitorCtx, cancelMonitor := context.WithCancel(context.Background())

	params.Append(fx.Hook{
		OnStart: func(startCtx context.Context) error {
			ctx, cancel := context.WithTimeout(startCtx, lifecycle.DefaultTimeout)
			defer cancel()

			if err := sqlDB.PingContext(ctx); err != nil {
				return errors.Wrap(err, "failed to ping PostgreSQL")
			}

			if pgCfg.AutoMigrate {
				if err := RunMigrations(ctx, sqlDB); err != nil {
					return err
				}
				params.Logger.InfoContext(ctx, "Postgres migrations applied")
			}

			go monitorDBPool(monitorCtx, params.Logger, sqlDB, dbPoolMonitorInterval)

			return nil
		},
		OnStop: func(_ context.Context) error {
			cancelMonitor()

			return sqlDB.Close()
		},
	})

	return db, nil
}

func open(pgCfg *config.PostgresConfig, gormLogger gormlogger.Interface) (*gorm.DB, error) {
	db, err := gorm.Open(gormpostgres.Open(pgCfg.DSN()), &gorm.Config{
		// Multi-step writes take explicit transactions through inTransaction.
		SkipDefaultTransaction: true,
		TranslateError:         true,
		DisableAutomaticPing:   true,
		Logger:                 gormLogger,
		NowFunc:                func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to create PostgreSQL client")
	}

	return db, nil
}

func configurePool(sqlDB *sql.DB, pgCfg *config.PostgresConfig) {
	if pgCfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(pgCfg.MaxOpenConns)
	}
	if pgCfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(pgCfg.MaxIdleConns)
	}
	if pgCfg.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(pgCfg.ConnMaxLifetime)
	}
}

// RunMigrations applies the embedded goose migrations.
func RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect("postgres"); err != nil {
		return errors.Wrap(err, "failed to set goose dialect")
	}

	if err := goose.UpContext(ctx, db, "."); err != nil {
		return errors.Wrap(err, "failed to apply migrations")
	}

	return nil
}

func monitorDBPool(ctx context.Context, logger *slog.Logger, sqlDB *sql.DB, interval time.Duration) {
	if logger == nil || sqlDB == nil {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	prev := sqlDB.Stats()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			cur := sqlDB.Stats()
			waitDelta := cur.WaitCount - prev.WaitCount
			waitDurationDelta := cur.WaitDuration - prev.WaitDuration

			if waitDelta > 0 {
				attrs := []slog.Attr{
					slog.Int64("waitCountDelta", waitDelta),
					slog.Duration("waitDurationDelta", waitDurationDelta),
					slog.Duration("avgWait", waitDurationDelta/time.Duration(waitDelta)),
					slog.Int("maxOpenConns", cur.MaxOpenConnections),
					slog.Int("openConns", cur.OpenConnections),
					slog.Int("inUseConns", cur.InUse),
				}
				if waitDurationDelta >= dbPoolWarnDurationThreshold {
					logger.LogAttrs(ctx, slog.LevelWarn, "Postgres pool wait detected", attrs...)
				} else {
					logger.LogAttrs(ctx, slog.LevelDebug, "Postgres pool wait observed", attrs...)
				}
			}

			prev = cur
		}
	}
}
