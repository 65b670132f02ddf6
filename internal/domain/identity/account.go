package identity

import (
	"regexp"
	"strings"
	"time"

	"github.com/aquaportal/backend/internal/domain/shared"
	"golang.org/x/crypto/bcrypt"
)

// PasswordCost is the bcrypt cost used for new password hashes.
// Tests lower it to bcrypt.MinCost.
var PasswordCost = bcrypt.DefaultCost

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// Account is the login identity behind a profile
type Account struct {
	shared.BaseAggregateRoot
	Email        string
	PasswordHash string
	Active       bool
	LastLoginAt  *time.Time
}

// NewAccount validates credentials and hashes the password
func NewAccount(email, password string) (*Account, error) {
	email = NormalizeEmail(email)
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if err := validatePassword(password); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), PasswordCost)
	if err != nil {
		return nil, shared.NewDomainError("PASSWORD_HASH_ERROR", "Failed to hash password")
	}

	return &Account{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Email:             email,
		PasswordHash:      string(hash),
		Active:            true,
	}, nil
}

// VerifyPassword reports whether password matches the stored hash
func (a *Account) VerifyPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte(password)) == nil
}

// RecordLogin stamps the last successful login
func (a *Account) RecordLogin() {
	now := time.Now()
	a.LastLoginAt = &now
	a.IncrementVersion()
}

// Deactivate blocks further logins
func (a *Account) Deactivate() {
	if !a.Active {
		return
	}
	a.Active = false
	a.IncrementVersion()
}

// NormalizeEmail lowercases and trims an email address
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validateEmail(email string) error {
	if email == "" {
		return shared.NewDomainError("INVALID_EMAIL", "Email cannot be empty")
	}
	if len(email) > 200 {
		return shared.NewDomainError("INVALID_EMAIL", "Email cannot exceed 200 characters")
	}
	if !emailPattern.MatchString(email) {
		return shared.NewDomainError("INVALID_EMAIL", "Invalid email format")
	}
	return nil
}

func validatePassword(password string) error {
	if len(password) < 8 {
		return shared.NewDomainError("INVALID_PASSWORD", "Password must be at least 8 characters")
	}
	if len(password) > 72 {
		// bcrypt ignores bytes past 72
		return shared.NewDomainError("INVALID_PASSWORD", "Password cannot exceed 72 characters")
	}
	return nil
}
