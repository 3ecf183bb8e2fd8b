package middleware

import (
	"log/slog"
	"strings"

	deliverycontext "taskhub/internal/delivery/context"
	domainerrors "taskhub/internal/domain/errors"
	"taskhub/internal/domain/service"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// AuthMiddleware gates routes behind a valid bearer token.
type AuthMiddleware struct {
	tokens service.TokenService
	logger *slog.Logger
}

// NewAuthMiddleware is the constructor for AuthMiddleware.
func NewAuthMiddleware(tokens service.TokenService, logger *slog.Logger) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens, logger: logger}
}

// Authenticate verifies the Authorization header and records the caller on
// both the echo context and the request context. Rejected requests never
// reach next.
func (m *AuthMiddleware) Authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		header := strings.TrimSpace(c.Request().Header.Get(echo.HeaderAuthorization))
		if header == "" {
			return domainerrors.ErrTokenMissing
		}

		scheme, token, found := strings.Cut(header, " ")
		token = strings.TrimSpace(token)
		if !found || !strings.EqualFold(scheme, "Bearer") || token == "" {
			return domainerrors.ErrTokenInvalid.WithDetails("authorization scheme must be Bearer")
		}

		userID, err := m.tokens.Verify(token)
		if err != nil {
			return err
		}

		deliverycontext.SetUserID(c, userID)

		ctx := c.Request().Context()
		logger := deliverycontext.GetLoggerOrDefault(ctx, m.logger).With(slog.String("user_id", userID.String()))
		ctx = deliverycontext.WithUserID(ctx, userID)
		ctx = deliverycontext.WithLogger(ctx, logger)
		c.SetRequest(c.Request().WithContext(ctx))

		return next(c)
	}
}

// GetUserID returns the caller set by Authenticate.
func GetUserID(c echo.Context) (uuid.UUID, bool) {
	return deliverycontext.GetUserID(c)
}
