package services

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/epson121/budget/internal/config"

	"golang.org/x/crypto/bcrypt"
)

const (
	DefaultBCryptCost        = 12
	DefaultMinPasswordLength = 6
	MaxPasswordLength        = 72 // bcrypt input limit
)

var (
	ErrPasswordEmpty       = errors.New("password cannot be empty")
	ErrPasswordTooShort    = errors.New("password is too short")
	ErrPasswordTooLong     = fmt.Errorf("password must not exceed %d characters", MaxPasswordLength)
	ErrPasswordNoUppercase = errors.New("password must contain at least one uppercase letter")
	ErrPasswordNoLowercase = errors.New("password must contain at least one lowercase letter")
	ErrPasswordNoNumber    = errors.New("password must contain at least one number")
	ErrPasswordNoSpecial   = errors.New("password must contain at least one special character")

	uppercaseRegex = regexp.MustCompile(`[A-Z]`)
	lowercaseRegex = regexp.MustCompile(`[a-z]`)
	numberRegex    = regexp.MustCompile(`[0-9]`)
	specialRegex   = regexp.MustCompile(`[!@#$%^&*()_+\-=\[\]{}|;:,.<>?]`)
)

// PasswordService handles password hashing and the configured strength policy
type PasswordService struct {
	cost   int
	policy config.SecurityConfig
}

// NewPasswordService creates a password service from the security config.
// Zero values fall back to the defaults.
func NewPasswordService(cfg config.SecurityConfig) PasswordServiceInterface {
	if cfg.BCryptCost < bcrypt.MinCost || cfg.BCryptCost > bcrypt.MaxCost {
		cfg.BCryptCost = DefaultBCryptCost
	}
	if cfg.PasswordMinLength <= 0 {
		cfg.PasswordMinLength = DefaultMinPasswordLength
	}

	return &PasswordService{
		cost:   cfg.BCryptCost,
		policy: cfg,
	}
}

// ValidatePassword checks a password against the configured policy
func (ps *PasswordService) ValidatePassword(password string) error {
	if password == "" {
		return ErrPasswordEmpty
	}

	if len(password) < ps.policy.PasswordMinLength {
		return fmt.Errorf("%w: minimum is %d characters", ErrPasswordTooShort, ps.policy.PasswordMinLength)
	}

	if len(password) > MaxPasswordLength {
		return ErrPasswordTooLong
	}

	if ps.policy.RequireUppercase && !uppercaseRegex.MatchString(password) {
		return ErrPasswordNoUppercase
	}

	if ps.policy.RequireLowercase && !lowercaseRegex.MatchString(password) {
		return ErrPasswordNoLowercase
	}

	if ps.policy.RequireNumbers && !numberRegex.MatchString(password) {
		return ErrPasswordNoNumber
	}

	if ps.policy.RequireSpecialChars && !specialRegex.MatchString(password) {
		return ErrPasswordNoSpecial
	}

	return nil
}

// HashPassword validates and hashes a password using bcrypt
func (ps *PasswordService) HashPassword(password string) (string, error) {
	if err := ps.ValidatePassword(password); err != nil {
		return "", fmt.Errorf("password validation failed: %w", err)
	}

	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(password), ps.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}

	return string(hashedBytes), nil
}

// ComparePassword reports whether password matches the bcrypt hash
func (ps *PasswordService) ComparePassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
