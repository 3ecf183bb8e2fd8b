package impl

import (
	"io"
	"log/slog"

	"taskhub/config"
)

func newDiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestConfig() *config.Config {
	cfg := &config.Config{
		Auth:       &config.AuthConfig{BcryptCost: 4},
		Pagination: &config.PaginationConfig{DefaultSize: 5, MaxSize: 100},
		PasswordStrength: &config.PasswordStrengthConfig{
			MinLength: 6,
			MaxLength: 72,
		},
	}
	cfg.SecretKey.Access = "test-secret"

	return cfg
}

func ptr[T any](v T) *T {
	return &v
}
