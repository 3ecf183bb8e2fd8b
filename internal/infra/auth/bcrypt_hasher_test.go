package auth

import (
	"testing"

	"taskhub/config"
	domainerrors "taskhub/internal/domain/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newStrictConfig() *config.Config {
	return &config.Config{
		Auth: &config.AuthConfig{BcryptCost: bcrypt.MinCost},
		PasswordStrength: &config.PasswordStrengthConfig{
			MinLength:        8,
			MaxLength:        72,
			RequireUppercase: true,
			RequireLowercase: true,
			RequireNumbers:   true,
			RequireSpecial:   true,
			ForbiddenWords:   []string{"password", "qwerty"},
		},
	}
}

func TestBcryptHasher_HashAndCheck(t *testing.T) {
	hasher := NewBcryptHasher(&config.Config{Auth: &config.AuthConfig{BcryptCost: bcrypt.MinCost}})

	hash, err := hasher.Hash("secret123")
	require.NoError(t, err)
	assert.NotEqual(t, "secret123", hash)

	assert.True(t, hasher.Check("secret123", hash))
	assert.False(t, hasher.Check("secret124", hash))
	assert.False(t, hasher.Check("", hash))
	assert.False(t, hasher.Check("secret123", "invalid_hash"))
}

func TestBcryptHasher_HashesAreSalted(t *testing.T) {
	hasher := NewBcryptHasher(&config.Config{Auth: &config.AuthConfig{BcryptCost: bcrypt.MinCost}})

	first, err := hasher.Hash("secret123")
	require.NoError(t, err)
	second, err := hasher.Hash("secret123")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestBcryptHasher_CostIsClamped(t *testing.T) {
	hasher := NewBcryptHasher(&config.Config{Auth: &config.AuthConfig{BcryptCost: 1}})

	hash, err := hasher.Hash("secret123")
	require.NoError(t, err)

	cost, err := bcrypt.Cost([]byte(hash))
	require.NoError(t, err)
	assert.Equal(t, bcrypt.MinCost, cost)
}

func TestBcryptHasher_DefaultPolicy(t *testing.T) {
	hasher := NewBcryptHasher(nil)

	require.NoError(t, hasher.ValidatePasswordStrength("secret123"))
	require.ErrorIs(t, hasher.ValidatePasswordStrength("abc"), domainerrors.ErrPasswordStrength)
}

func TestBcryptHasher_ValidatePasswordStrength(t *testing.T) {
	hasher := NewBcryptHasher(newStrictConfig())

	valid := []string{
		"StrongPass123!",
		"MySecure@Pass1",
		"Complex#Secret9",
	}
	for _, password := range valid {
		assert.NoError(t, hasher.ValidatePasswordStrength(password), password)
	}

	tests := []struct {
		password string
		want     error
	}{
		{password: "Ab1!", want: domainerrors.ErrPasswordStrength},
		{password: "PASSWORD123!", want: domainerrors.ErrPasswordStrength},
		{password: "lowercase123!", want: domainerrors.ErrPasswordStrength},
		{password: "NoDigits!!", want: domainerrors.ErrPasswordStrength},
		{password: "NoSpecial123", want: domainerrors.ErrPasswordStrength},
		{password: "MyPassword1!", want: domainerrors.ErrPasswordForbiddenWords},
		{password: "Qwerty#2024x", want: domainerrors.ErrPasswordForbiddenWords},
	}
	for _, tt := range tests {
		t.Run(tt.password, func(t *testing.T) {
			assert.ErrorIs(t, hasher.ValidatePasswordStrength(tt.password), tt.want)
		})
	}
}

func TestBcryptHasher_MaxLength(t *testing.T) {
	hasher := NewBcryptHasher(&config.Config{PasswordStrength: &config.PasswordStrengthConfig{MinLength: 1, MaxLength: 10}})

	err := hasher.ValidatePasswordStrength("abcdefghijk")
	require.ErrorIs(t, err, domainerrors.ErrPasswordStrength)
}
