// Package impl contains the implementation of the application's business logic.
package impl

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	deliverycontext "taskhub/internal/delivery/context"
	"taskhub/internal/domain/entity"
	domainerrors "taskhub/internal/domain/errors"
	"taskhub/internal/domain/repository"
	"taskhub/internal/domain/service"
	"taskhub/internal/domain/validation"
	"taskhub/internal/errors"
	"taskhub/internal/usecase"

	"github.com/google/uuid"
	"go.uber.org/fx"
)

// dummyPassword is hashed once and compared against on unknown emails so a
// failed login costs the same bcrypt work either way.
const dummyPassword = "taskhub-login-timing-equaliser"

// userService implements the UserUsecase interface.
type userService struct {
	userRepo     repository.UserRepository
	hasher       service.PasswordHasher
	tokenService service.TokenService
	logger       *slog.Logger
	now          func() time.Time

	dummyOnce sync.Once
	dummyHash string
}

// UserServiceParams holds dependencies for UserService, injected by Fx.
type UserServiceParams struct {
	fx.In

	UserRepo     repository.UserRepository
	Hasher       service.PasswordHasher
	TokenService service.TokenService
	Logger       *slog.Logger
}

// NewUserService is the constructor for userService.
func NewUserService(params UserServiceParams) usecase.UserUsecase {
	return &userService{
		userRepo:     params.UserRepo,
		hasher:       params.Hasher,
		tokenService: params.TokenService,
		logger:       params.Logger,
		now:          time.Now,
	}
}

// log returns a request-scoped logger if available, otherwise falls back to the service's logger.
func (srv *userService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// Register validates the input, hashes the password and stores the user.
// Email uniqueness is left to the repository so concurrent registrations
// cannot both win.
func (srv *userService) Register(ctx context.Context, input *usecase.RegisterUserInput) (*usecase.RegisterOutput, error) {
	input.Email = entity.NormalizeEmail(input.Email)
	input.Name = strings.TrimSpace(input.Name)

	if err := validation.Struct(input); err != nil {
		return nil, err
	}
	if err := srv.hasher.ValidatePasswordStrength(input.Password); err != nil {
		return nil, errors.Wrap(err, "password rejected")
	}

	hash, err := srv.hasher.Hash(input.Password)
	if err != nil {
		srv.log(ctx).Error("Failed to hash password", slog.Any("error", err))

		return nil, errors.Wrap(domainerrors.ErrPasswordHashFailed, err.Error())
	}

	name := input.Name
	if name == "" {
		name = entity.DefaultDisplayName(input.Email)
	}
	now := srv.now().UTC()
	user := &entity.User{
		Email:        input.Email,
		Name:         name,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := srv.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			srv.log(ctx).Info("Registration rejected: email taken", slog.String("email", input.Email))

			return nil, domainerrors.ErrUserAlreadyExists.WrapMessage("register")
		}

		return nil, errors.Wrap(err, "failed to create user")
	}
	srv.log(ctx).Info("User registered", slog.Any("userID", user.ID))

	return &usecase.RegisterOutput{User: user}, nil
}

// Login exchanges credentials for a session token. Unknown email and wrong
// password fail the same way.
func (srv *userService) Login(ctx context.Context, input *usecase.LoginInput) (*usecase.LoginOutput, error) {
	input.Email = entity.NormalizeEmail(input.Email)
	if err := validation.Struct(input); err != nil {
		return nil, err
	}

	user, err := srv.userRepo.FindByEmail(ctx, input.Email)
	if err != nil {
		if !errors.Is(err, repository.ErrUserNotFound) {
			return nil, errors.Wrap(err, "failed to find user by email")
		}
		srv.burnDummyCompare(input.Password)
		srv.log(ctx).Warn("Login failed", slog.String("email", input.Email), slog.String("reason", "unknown email"))

		return nil, errors.Wrap(domainerrors.ErrInvalidCredentials, "login failed")
	}

	if !srv.hasher.Check(input.Password, user.PasswordHash) {
		srv.log(ctx).Warn("Login failed", slog.String("email", input.Email), slog.String("reason", "password mismatch"))

		return nil, errors.Wrap(domainerrors.ErrInvalidCredentials, "login failed")
	}

	token, expiresAt, err := srv.tokenService.Issue(user.ID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to issue token")
	}
	srv.log(ctx).Debug("User logged in", slog.Any("userID", user.ID))

	return &usecase.LoginOutput{
		Token:     token,
		ExpiresAt: expiresAt,
		User:      user,
	}, nil
}

func (srv *userService) burnDummyCompare(password string) {
	srv.dummyOnce.Do(func() {
		hash, err := srv.hasher.Hash(dummyPassword)
		if err == nil {
			srv.dummyHash = hash
		}
	})
	if srv.dummyHash != "" {
		srv.hasher.Check(password, srv.dummyHash)
	}
}

// Profile returns the user behind userID.
func (srv *userService) Profile(ctx context.Context, userID uuid.UUID) (*entity.User, error) {
	user, err := srv.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, domainerrors.ErrUserNotFound.WrapMessage("profile")
		}

		return nil, errors.Wrap(err, "failed to find user")
	}

	return user, nil
}
