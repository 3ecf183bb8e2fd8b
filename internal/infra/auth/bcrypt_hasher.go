// Package auth provides concrete implementations for authentication-related domain services.
package auth

import (
	"strconv"
	"strings"
	"unicode"

	"taskhub/config"
	domainerrors "taskhub/internal/domain/errors"
	"taskhub/internal/domain/service"
	"taskhub/internal/errors"

	"golang.org/x/crypto/bcrypt"
)

// bcryptHasher is a concrete implementation of the PasswordHasher interface using bcrypt.
type bcryptHasher struct {
	cost   int
	policy config.PasswordStrengthConfig
}

// NewBcryptHasher is the constructor for bcryptHasher.
func NewBcryptHasher(cfg *config.Config) service.PasswordHasher {
	h := &bcryptHasher{
		cost: bcrypt.DefaultCost,
		policy: config.PasswordStrengthConfig{
			MinLength: 6,
			MaxLength: 72,
		},
	}

	if cfg != nil && cfg.Auth != nil && cfg.Auth.BcryptCost != 0 {
		h.cost = min(max(cfg.Auth.BcryptCost, bcrypt.MinCost), bcrypt.MaxCost)
	}
	if cfg != nil && cfg.PasswordStrength != nil {
		h.policy = *cfg.PasswordStrength
	}

	return h
}

// Hash generates a salted hash from a plaintext password using bcrypt.
func (h *bcryptHasher) Hash(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", errors.Wrap(err, "bcrypt generate")
	}

	return string(bytes), nil
}

// Check compares a plaintext password with a bcrypt hash.
func (h *bcryptHasher) Check(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// ValidatePasswordStrength applies the configured length, character-class and
// forbidden-word rules.
func (h *bcryptHasher) ValidatePasswordStrength(password string) error {
	p := h.policy

	if p.MinLength > 0 && len(password) < p.MinLength {
		return domainerrors.ErrPasswordStrength.WithDetails("password must be at least " + strconv.Itoa(p.MinLength) + " characters")
	}
	if p.MaxLength > 0 && len(password) > p.MaxLength {
		return domainerrors.ErrPasswordStrength.WithDetails("password must be at most " + strconv.Itoa(p.MaxLength) + " characters")
	}

	var hasUpper, hasLower, hasDigit, hasSpecial bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			hasSpecial = true
		}
	}

	var missing []string
	if p.RequireUppercase && !hasUpper {
		missing = append(missing, "an uppercase letter")
	}
	if p.RequireLowercase && !hasLower {
		missing = append(missing, "a lowercase letter")
	}
	if p.RequireNumbers && !hasDigit {
		missing = append(missing, "a digit")
	}
	if p.RequireSpecial && !hasSpecial {
		missing = append(missing, "a special character")
	}
	if len(missing) > 0 {
		return domainerrors.ErrPasswordStrength.WithDetails("password must contain " + strings.Join(missing, ", "))
	}

	lowered := strings.ToLower(password)
	for _, word := range p.ForbiddenWords {
		word = strings.ToLower(strings.TrimSpace(word))
		if word != "" && strings.Contains(lowered, word) {
			return domainerrors.ErrPasswordForbiddenWords
		}
	}

	return nil
}
