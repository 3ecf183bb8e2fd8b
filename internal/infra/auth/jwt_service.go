package auth

import (
	"time"

	"taskhub/config"
	domainerrors "taskhub/internal/domain/errors"
	"taskhub/internal/domain/service"
	"taskhub/internal/errors"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const accessTokenType = "access"

// accessClaims is the payload of an access token.
type accessClaims struct {
	Type string `json:"typ"`
	jwt.RegisteredClaims
}

// jwtService is a concrete implementation of the TokenService interface using the JWT standard.
type jwtService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewJWTService is the constructor for jwtService.
func NewJWTService(cfg *config.Config) (service.TokenService, error) {
	svc, err := newJWTService(cfg, time.Now)
	if err != nil {
		return nil, err
	}

	return svc, nil
}

func newJWTService(cfg *config.Config, now func() time.Time) (*jwtService, error) {
	if cfg == nil || cfg.SecretKey.Access == "" {
		return nil, errors.New("jwt secrets must be provided")
	}

	ttl := 24 * time.Hour
	if cfg.Auth != nil && cfg.Auth.TokenTTL > 0 {
		ttl = cfg.Auth.TokenTTL
	}

	return &jwtService{
		secret: []byte(cfg.SecretKey.Access),
		ttl:    ttl,
		now:    now,
	}, nil
}

// Issue creates a signed HS256 access token for userID.
func (s *jwtService) Issue(userID uuid.UUID) (string, time.Time, error) {
	issuedAt := s.now()
	expiresAt := issuedAt.Add(s.ttl)

	claims := accessClaims{
		Type: accessTokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, errors.Wrap(err, "sign access token")
	}

	return signed, expiresAt, nil
}

// Verify checks signature, algorithm, expiry and token type, then returns the subject.
func (s *jwtService) Verify(tokenString string) (uuid.UUID, error) {
	claims := &accessClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return uuid.Nil, domainerrors.ErrTokenExpired
		}

		return uuid.Nil, domainerrors.ErrTokenInvalid.WithDetails(err.Error())
	}

	if claims.Type != accessTokenType {
		return uuid.Nil, domainerrors.ErrTokenInvalid.WithDetails("unexpected token type")
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, domainerrors.ErrTokenInvalid.WithDetails("invalid subject")
	}

	return userID, nil
}
