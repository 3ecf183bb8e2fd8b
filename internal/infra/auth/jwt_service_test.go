package auth

import (
	"strings"
	"testing"
	"time"

	"taskhub/config"
	domainerrors "taskhub/internal/domain/errors"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test_access_secret_key_very_long_for_testing"

func newTestJWTConfig(ttl time.Duration) *config.Config {
	cfg := &config.Config{Auth: &config.AuthConfig{TokenTTL: ttl}}
	cfg.SecretKey.Access = testSecret

	return cfg
}

func TestJWTService_IssueAndVerify(t *testing.T) {
	svc, err := NewJWTService(newTestJWTConfig(time.Hour))
	require.NoError(t, err)

	userID := uuid.New()
	token, expiresAt, err := svc.Issue(userID)
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, 5*time.Second)

	got, err := svc.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, userID, got)
}

func TestJWTService_DefaultTTL(t *testing.T) {
	cfg := &config.Config{}
	cfg.SecretKey.Access = testSecret

	svc, err := NewJWTService(cfg)
	require.NoError(t, err)

	_, expiresAt, err := svc.Issue(uuid.New())
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(24*time.Hour), expiresAt, 5*time.Second)
}

func TestJWTService_ExpiredToken(t *testing.T) {
	issuedAt := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	clock := issuedAt

	svc, err := newJWTService(newTestJWTConfig(24*time.Hour), func() time.Time { return clock })
	require.NoError(t, err)

	token, _, err := svc.Issue(uuid.New())
	require.NoError(t, err)

	clock = issuedAt.Add(23 * time.Hour)
	_, err = svc.Verify(token)
	require.NoError(t, err)

	clock = issuedAt.Add(25 * time.Hour)
	_, err = svc.Verify(token)
	require.ErrorIs(t, err, domainerrors.ErrTokenExpired)
}

func TestJWTService_TamperedSignature(t *testing.T) {
	svc, err := NewJWTService(newTestJWTConfig(time.Hour))
	require.NoError(t, err)

	token, _, err := svc.Issue(uuid.New())
	require.NoError(t, err)

	parts := strings.Split(token, ".")
	require.Len(t, parts, 3)
	sig := []byte(parts[2])
	if sig[0] == 'A' {
		sig[0] = 'B'
	} else {
		sig[0] = 'A'
	}
	tampered := parts[0] + "." + parts[1] + "." + string(sig)

	_, err = svc.Verify(tampered)
	require.ErrorIs(t, err, domainerrors.ErrTokenInvalid)
}

func TestJWTService_WrongSecret(t *testing.T) {
	issuer, err := NewJWTService(newTestJWTConfig(time.Hour))
	require.NoError(t, err)

	otherCfg := newTestJWTConfig(time.Hour)
	otherCfg.SecretKey.Access = "a_completely_different_secret"
	verifier, err := NewJWTService(otherCfg)
	require.NoError(t, err)

	token, _, err := issuer.Issue(uuid.New())
	require.NoError(t, err)

	_, err = verifier.Verify(token)
	require.ErrorIs(t, err, domainerrors.ErrTokenInvalid)
}

func TestJWTService_RejectsOtherAlgorithms(t *testing.T) {
	svc, err := NewJWTService(newTestJWTConfig(time.Hour))
	require.NoError(t, err)

	claims := accessClaims{
		Type: accessTokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   uuid.NewString(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)

	_, err = svc.Verify(token)
	require.ErrorIs(t, err, domainerrors.ErrTokenInvalid)
}

func TestJWTService_RejectsMissingExpiry(t *testing.T) {
	svc, err := NewJWTService(newTestJWTConfig(time.Hour))
	require.NoError(t, err)

	claims := accessClaims{
		Type:             accessTokenType,
		RegisteredClaims: jwt.RegisteredClaims{Subject: uuid.NewString()},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)

	_, err = svc.Verify(token)
	require.ErrorIs(t, err, domainerrors.ErrTokenInvalid)
}

func TestJWTService_RejectsBadSubjectAndType(t *testing.T) {
	svc, err := NewJWTService(newTestJWTConfig(time.Hour))
	require.NoError(t, err)

	sign := func(typ, sub string) string {
		claims := accessClaims{
			Type: typ,
			RegisteredClaims: jwt.RegisteredClaims{
				Subject:   sub,
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			},
		}
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
		require.NoError(t, err)

		return token
	}

	_, err = svc.Verify(sign("refresh", uuid.NewString()))
	require.ErrorIs(t, err, domainerrors.ErrTokenInvalid)

	_, err = svc.Verify(sign(accessTokenType, "not-a-uuid"))
	require.ErrorIs(t, err, domainerrors.ErrTokenInvalid)
}

func TestJWTService_Malformed(t *testing.T) {
	svc, err := NewJWTService(newTestJWTConfig(time.Hour))
	require.NoError(t, err)

	_, err = svc.Verify("clearly-not-a-jwt-token-format")
	require.ErrorIs(t, err, domainerrors.ErrTokenInvalid)
}

func TestJWTService_EmptySecret(t *testing.T) {
	svc, err := NewJWTService(&config.Config{})
	require.Error(t, err)
	assert.Nil(t, svc)
	assert.Contains(t, err.Error(), "jwt secrets must be provided")
}
