package auth

import (
	"context"
	"errors"
	"time"

	"claimspring.org/internal/access"
)

var (
	ErrInvalidCredentials = errors.New("auth: invalid credentials")
	ErrInactiveUser       = errors.New("auth: inactive user")
	ErrUserNotFound       = errors.New("auth: user not found")
	ErrInvalidToken       = errors.New("auth: invalid token")
)

// User is the authenticated actor supplied to every gated operation. The
// core trusts this input; only capability checks may reject it.
type User struct {
	ID           string      `json:"id"`
	Username     string      `json:"username"`
	Email        string      `json:"email"`
	Name         string      `json:"name"`
	Role         access.Role `json:"role"`
	Active       bool        `json:"is_active"`
	PasswordHash string      `json:"-"`
	LastLogin    time.Time   `json:"last_login,omitzero"`
	CreatedAt    time.Time   `json:"created_at"`
}

// Store persists users.
type Store interface {
	GetUser(ctx context.Context, id string) (*User, error)
	GetUserByUsername(ctx context.Context, username string) (*User, error)
	ListUsers(ctx context.Context) ([]*User, error)
	CountUsers(ctx context.Context, activeOnly bool) (int, error)
	UpdateLastLogin(ctx context.Context, id string, at time.Time) error
}
