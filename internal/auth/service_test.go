package auth_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"claimspring.org/internal/access"
	"claimspring.org/internal/audit"
	"claimspring.org/internal/auth"
	"claimspring.org/internal/store/memory"
)

var testClock = time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)

func newService(t *testing.T) (*auth.Service, *memory.Store) {
	t.Helper()
	store := memory.New()
	hash, err := auth.HashPassword("password")
	if err != nil {
		t.Fatal(err)
	}
	store.PutUser(&auth.User{
		ID:           "USR003",
		Username:     "admin",
		Email:        "admin@claimspring.org",
		Name:         "Mike Admin",
		Role:         access.RoleAdmin,
		Active:       true,
		PasswordHash: hash,
	})
	store.PutUser(&auth.User{
		ID:           "USR007",
		Username:     "disabled",
		Role:         access.RoleAnalyst,
		Active:       false,
		PasswordHash: hash,
	})

	recorder := audit.NewRecorder(func() time.Time { return testClock })
	svc, err := auth.NewService(store, store, recorder, "test-secret",
		auth.WithClock(func() time.Time { return testClock }),
		auth.WithTokenTTL(time.Hour),
	)
	if err != nil {
		t.Fatal(err)
	}
	return svc, store
}

func TestLoginAndAuthenticate(t *testing.T) {
	svc, store := newService(t)
	ctx := context.Background()

	token, user, err := svc.Login(ctx, "Admin", "password")
	if err != nil {
		t.Fatal(err)
	}
	if user.ID != "USR003" {
		t.Fatalf("unexpected user: %+v", user)
	}
	if !user.LastLogin.Equal(testClock) {
		t.Fatalf("last login not stamped: %v", user.LastLogin)
	}

	entries := store.AuditEntries()
	if len(entries) != 1 || entries[0].Action != audit.ActionLogin || entries[0].UserID != "USR003" {
		t.Fatalf("expected one login audit entry, got %+v", entries)
	}

	got, err := svc.AuthenticateToken(ctx, token)
	if err != nil {
		t.Fatal(err)
	}
	if got.ID != "USR003" || got.Role != access.RoleAdmin {
		t.Fatalf("unexpected authenticated user: %+v", got)
	}
}

func TestLoginFailures(t *testing.T) {
	svc, store := newService(t)
	ctx := context.Background()

	if _, _, err := svc.Login(ctx, "admin", "wrong"); !errors.Is(err, auth.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, _, err := svc.Login(ctx, "ghost", "password"); !errors.Is(err, auth.ErrInvalidCredentials) {
		t.Fatalf("unknown user must map to ErrInvalidCredentials, got %v", err)
	}
	if _, _, err := svc.Login(ctx, "disabled", "password"); !errors.Is(err, auth.ErrInactiveUser) {
		t.Fatalf("expected ErrInactiveUser, got %v", err)
	}
	if len(store.AuditEntries()) != 0 {
		t.Fatal("failed logins must not write audit entries")
	}
}

func TestLogoutWritesAuditEntry(t *testing.T) {
	svc, store := newService(t)
	ctx := context.Background()

	_, user, err := svc.Login(ctx, "admin", "password")
	if err != nil {
		t.Fatal(err)
	}
	if err := svc.Logout(ctx, user); err != nil {
		t.Fatal(err)
	}

	entries := store.AuditEntries()
	if len(entries) != 2 || entries[1].Action != audit.ActionLogout {
		t.Fatalf("expected login + logout entries, got %+v", entries)
	}
}

func TestAuthenticateTokenRejectsGarbage(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	for _, token := range []string{"", "not-a-jwt", "a.b.c"} {
		if _, err := svc.AuthenticateToken(ctx, token); !errors.Is(err, auth.ErrInvalidToken) {
			t.Fatalf("token %q: expected ErrInvalidToken, got %v", token, err)
		}
	}
}

func TestAuthenticateTokenRejectsForeignSecret(t *testing.T) {
	svc, store := newService(t)
	ctx := context.Background()

	token, _, err := svc.Login(ctx, "admin", "password")
	if err != nil {
		t.Fatal(err)
	}

	other, err := auth.NewService(store, store, audit.NewRecorder(nil), "another-secret")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := other.AuthenticateToken(ctx, token); !errors.Is(err, auth.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}
