package domain

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

const (
	RoleAdmin = "admin"

	MinPasswordLength = 6
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// User is an account allowed to manage the portfolio.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	Role         string    `json:"role"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// RegisterRequest carries the fields needed to create an account.
type RegisterRequest struct {
	Username string
	Email    string
	Password string
}

// Normalize trims and lowercases the identifying fields, then validates.
func (r *RegisterRequest) Normalize() error {
	r.Username = strings.TrimSpace(r.Username)
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))

	if r.Username == "" {
		return fmt.Errorf("%w: username is required", ErrValidation)
	}
	if !ValidEmail(r.Email) {
		return fmt.Errorf("%w: invalid email address", ErrValidation)
	}
	return ValidatePassword(r.Password)
}

func ValidEmail(s string) bool {
	return emailPattern.MatchString(s)
}

func ValidatePassword(p string) error {
	if len(p) < MinPasswordLength {
		return fmt.Errorf("%w: password must be at least %d characters", ErrValidation, MinPasswordLength)
	}
	return nil
}
