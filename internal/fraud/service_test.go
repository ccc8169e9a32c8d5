package fraud_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"claimspring.org/internal/access"
	"claimspring.org/internal/audit"
	"claimspring.org/internal/auth"
	"claimspring.org/internal/claims"
	"claimspring.org/internal/fraud"
	"claimspring.org/internal/store/memory"
)

var testClock = time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)

func fixedNow() time.Time { return testClock }

func seedAlerts(t *testing.T) (*memory.Store, []*fraud.Alert) {
	t.Helper()
	store := memory.New()
	recorder := audit.NewRecorder(fixedNow)
	scorer := claims.NewScorer(claims.DefaultHighRiskProviders, func() float64 { return 0 })
	policy, err := claims.NewPolicy("")
	if err != nil {
		t.Fatal(err)
	}
	svc := claims.NewService(store, scorer, policy, recorder, fixedNow)
	provider := &auth.User{ID: "USR004", Role: access.RoleProvider, Active: true}
	analyst := &auth.User{ID: "USR001", Role: access.RoleAnalyst, Active: true}

	// One auto-raised high severity alert and one manual flag.
	high := claims.CreateInput{
		PatientID: "USR005", PatientName: "Jane Patient",
		ProviderName: "Dr. Smith", Amount: 3500,
		ServiceDate: testClock.Add(-time.Hour),
	}
	c1, err := svc.Create(context.Background(), high, provider)
	if err != nil {
		t.Fatal(err)
	}
	low := high
	low.Amount = 500
	low.ProviderName = "Dr. Brown"
	c2, err := svc.Create(context.Background(), low, provider)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Flag(context.Background(), c2.ID, "manual review", analyst); err != nil {
		t.Fatal(err)
	}
	_ = c1

	alerts, err := store.ListAlerts(context.Background(), fraud.Filter{})
	if err != nil {
		t.Fatal(err)
	}
	if len(alerts) != 2 {
		t.Fatalf("fixture expected 2 alerts, got %d", len(alerts))
	}
	return store, alerts
}

func TestListFilters(t *testing.T) {
	store, _ := seedAlerts(t)
	svc := fraud.NewService(store, audit.NewRecorder(fixedNow), fixedNow)
	analyst := &auth.User{ID: "USR001", Role: access.RoleAnalyst, Active: true}
	ctx := context.Background()

	all, err := svc.List(ctx, fraud.Filter{}, analyst)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 alerts, got %d", len(all))
	}

	unresolved := false
	resolved, err := svc.List(ctx, fraud.Filter{Resolved: &unresolved}, analyst)
	if err != nil {
		t.Fatal(err)
	}
	if len(resolved) != 2 {
		t.Fatalf("expected 2 unresolved alerts, got %d", len(resolved))
	}

	// Severity filters are case-insensitive.
	highOnly, err := svc.List(ctx, fraud.Filter{Severity: "HIGH"}, analyst)
	if err != nil {
		t.Fatal(err)
	}
	for _, a := range highOnly {
		if a.Severity != fraud.SeverityHigh {
			t.Fatalf("severity filter mismatch: %+v", a)
		}
	}
	if len(highOnly) == 0 {
		t.Fatal("expected at least one high severity alert")
	}

	if _, err := svc.List(ctx, fraud.Filter{Severity: "extreme"}, analyst); !errors.Is(err, fraud.ErrInvalidFilter) {
		t.Fatalf("expected ErrInvalidFilter, got %v", err)
	}
}

func TestResolve(t *testing.T) {
	store, alerts := seedAlerts(t)
	svc := fraud.NewService(store, audit.NewRecorder(fixedNow), fixedNow)
	investigator := &auth.User{ID: "USR002", Role: access.RoleInvestigator, Active: true}
	ctx := context.Background()

	before := len(store.AuditEntries())
	resolved, err := svc.Resolve(ctx, alerts[0].ID, "verified with provider", investigator)
	if err != nil {
		t.Fatal(err)
	}
	if !resolved.Resolved || resolved.ResolvedBy != "USR002" {
		t.Fatalf("resolution fields not set: %+v", resolved)
	}
	if !resolved.ResolvedAt.Equal(testClock) {
		t.Fatalf("resolution time not from clock: %v", resolved.ResolvedAt)
	}
	if resolved.ResolutionNotes != "verified with provider" {
		t.Fatalf("notes not stored: %q", resolved.ResolutionNotes)
	}

	entries := store.AuditEntries()
	if len(entries) != before+1 {
		t.Fatalf("expected one new audit entry, got %d", len(entries)-before)
	}
	last := entries[len(entries)-1]
	if last.Action != audit.ActionResolveAlert || last.ResourceID != alerts[0].ID {
		t.Fatalf("audit entry mismatch: %+v", last)
	}

	if _, err := svc.Resolve(ctx, alerts[0].ID, "again", investigator); !errors.Is(err, fraud.ErrAlreadyResolved) {
		t.Fatalf("expected ErrAlreadyResolved, got %v", err)
	}
}

func TestResolveRequiresCapability(t *testing.T) {
	store, alerts := seedAlerts(t)
	svc := fraud.NewService(store, audit.NewRecorder(fixedNow), fixedNow)
	prov := &auth.User{ID: "USR004", Role: access.RoleProvider, Active: true}

	if _, err := svc.Resolve(context.Background(), alerts[0].ID, "", prov); !errors.Is(err, access.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestResolveUnknownAlert(t *testing.T) {
	store, _ := seedAlerts(t)
	svc := fraud.NewService(store, audit.NewRecorder(fixedNow), fixedNow)
	investigator := &auth.User{ID: "USR002", Role: access.RoleInvestigator, Active: true}

	if _, err := svc.Resolve(context.Background(), "ALT-missing", "", investigator); !errors.Is(err, fraud.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
