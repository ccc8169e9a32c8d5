package fraud

import (
	"context"
	"fmt"
	"time"

	"claimspring.org/internal/access"
	"claimspring.org/internal/audit"
	"claimspring.org/internal/auth"
)

// Store persists alerts. ResolveAlert must commit the alert mutation and
// the audit entry as one unit.
type Store interface {
	GetAlert(ctx context.Context, id string) (*Alert, error)
	ListAlerts(ctx context.Context, filter Filter) ([]*Alert, error)
	CountAlerts(ctx context.Context, filter Filter) (int, error)
	ResolveAlert(ctx context.Context, alert *Alert, entry *audit.Entry) error
}

// Service exposes alert reads and the resolve operation.
type Service struct {
	store    Store
	recorder *audit.Recorder
	now      func() time.Time
}

// NewService constructs an alert service. A nil clock falls back to UTC
// wall time.
func NewService(store Store, recorder *audit.Recorder, now func() time.Time) *Service {
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &Service{store: store, recorder: recorder, now: now}
}

// List returns alerts matching the filter. Reading alerts is open to every
// authenticated role.
func (s *Service) List(ctx context.Context, filter Filter, actingUser *auth.User) ([]*Alert, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}
	return s.store.ListAlerts(ctx, filter)
}

// Get returns a single alert by ID.
func (s *Service) Get(ctx context.Context, id string, actingUser *auth.User) (*Alert, error) {
	return s.store.GetAlert(ctx, id)
}

// Count returns the number of alerts matching the filter.
func (s *Service) Count(ctx context.Context, filter Filter, actingUser *auth.User) (int, error) {
	if err := filter.Validate(); err != nil {
		return 0, err
	}
	return s.store.CountAlerts(ctx, filter)
}

// Resolve marks an alert resolved, stamping resolver identity and time.
// Resolving an already-resolved alert fails with ErrAlreadyResolved.
func (s *Service) Resolve(ctx context.Context, id, notes string, actingUser *auth.User) (*Alert, error) {
	if err := access.Require(actingUser.Role, access.CapResolveAlert); err != nil {
		return nil, err
	}

	alert, err := s.store.GetAlert(ctx, id)
	if err != nil {
		return nil, err
	}
	if alert.Resolved {
		return nil, ErrAlreadyResolved
	}

	alert.Resolved = true
	alert.ResolvedBy = actingUser.ID
	alert.ResolutionNotes = notes
	alert.ResolvedAt = s.now()

	entry := s.recorder.Entry(ctx, actingUser.ID, audit.ActionResolveAlert, "alert", alert.ID,
		fmt.Sprintf("Resolved alert %s for claim %s", alert.ID, alert.ClaimID))
	if err := s.store.ResolveAlert(ctx, alert, entry); err != nil {
		return nil, err
	}
	s.recorder.Log(entry)
	return alert, nil
}
