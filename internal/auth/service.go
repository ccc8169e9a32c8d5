package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"claimspring.org/internal/audit"
)

const defaultTokenTTL = 30 * time.Minute

// Service authenticates users and issues bearer tokens. It is the identity
// collaborator of the claims core: downstream code receives an already
// authenticated User and never re-verifies identity.
type Service struct {
	store    Store
	audits   audit.Store
	recorder *audit.Recorder
	secret   []byte
	tokenTTL time.Duration
	now      func() time.Time
}

// Option configures Service behavior.
type Option func(*Service)

// WithTokenTTL overrides the default access token lifetime.
func WithTokenTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.tokenTTL = ttl
		}
	}
}

// WithClock injects the time source used for token lifetimes and login
// stamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// NewService constructs the identity service.
func NewService(store Store, audits audit.Store, recorder *audit.Recorder, secret string, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, errors.New("auth: user store is required")
	}
	if strings.TrimSpace(secret) == "" {
		return nil, errors.New("auth: token secret is required")
	}
	s := &Service{
		store:    store,
		audits:   audits,
		recorder: recorder,
		secret:   []byte(secret),
		tokenTTL: defaultTokenTTL,
		now:      func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Login verifies credentials, stamps last login, records an audit entry,
// and returns a signed token alongside the user.
func (s *Service) Login(ctx context.Context, username, password string) (string, *User, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	user, err := s.store.GetUserByUsername(ctx, username)
	if errors.Is(err, ErrUserNotFound) {
		return "", nil, ErrInvalidCredentials
	}
	if err != nil {
		return "", nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return "", nil, ErrInvalidCredentials
	}
	if !user.Active {
		return "", nil, ErrInactiveUser
	}

	now := s.now()
	if err := s.store.UpdateLastLogin(ctx, user.ID, now); err != nil {
		return "", nil, err
	}
	user.LastLogin = now

	token, err := generateToken(s.secret, user.ID, string(user.Role), s.tokenTTL, now)
	if err != nil {
		return "", nil, err
	}

	entry := s.recorder.Entry(ctx, user.ID, audit.ActionLogin, "user", user.ID,
		fmt.Sprintf("User %s logged in successfully", user.Username))
	if err := s.audits.AppendAuditEntry(ctx, entry); err != nil {
		return "", nil, err
	}
	s.recorder.Log(entry)

	return token, user, nil
}

// Logout records the logout action. Token invalidation itself is client
// side; the audit trail is the contract here.
func (s *Service) Logout(ctx context.Context, user *User) error {
	entry := s.recorder.Entry(ctx, user.ID, audit.ActionLogout, "user", user.ID,
		fmt.Sprintf("User %s logged out", user.Username))
	if err := s.audits.AppendAuditEntry(ctx, entry); err != nil {
		return err
	}
	s.recorder.Log(entry)
	return nil
}

// AuthenticateToken validates a bearer token and loads its user.
func (s *Service) AuthenticateToken(ctx context.Context, token string) (*User, error) {
	claims, err := parseToken(s.secret, token)
	if err != nil {
		return nil, err
	}
	user, err := s.store.GetUser(ctx, claims.Subject)
	if errors.Is(err, ErrUserNotFound) {
		return nil, ErrInvalidToken
	}
	if err != nil {
		return nil, err
	}
	if !user.Active {
		return nil, ErrInactiveUser
	}
	return user, nil
}

// ListUsers returns every user. Restricted to admins by the caller's
// capability check in the HTTP layer.
func (s *Service) ListUsers(ctx context.Context) ([]*User, error) {
	return s.store.ListUsers(ctx)
}

// CountUsers counts users, optionally restricted to active ones.
func (s *Service) CountUsers(ctx context.Context, activeOnly bool) (int, error) {
	return s.store.CountUsers(ctx, activeOnly)
}

// HashPassword produces a bcrypt hash for seeding and user provisioning.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
