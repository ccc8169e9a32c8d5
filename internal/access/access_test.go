package access

import (
	"errors"
	"testing"
)

func TestCapabilityAllowLists(t *testing.T) {
	cases := []struct {
		cap     Capability
		allowed []Role
	}{
		{CapCreateClaim, []Role{RoleProvider, RoleAdmin}},
		{CapUpdateStatus, []Role{RoleAdmin, RoleInvestigator, RoleRegulator}},
		{CapFlagClaim, []Role{RoleAdmin, RoleInvestigator, RoleAnalyst, RoleRegulator}},
		{CapListUsers, []Role{RoleAdmin}},
		{CapResolveAlert, []Role{RoleAdmin, RoleInvestigator, RoleAnalyst, RoleRegulator}},
	}

	all := []Role{RolePatient, RoleProvider, RoleAnalyst, RoleInvestigator, RoleRegulator, RoleAdmin}
	for _, tc := range cases {
		allowed := make(map[Role]bool, len(tc.allowed))
		for _, r := range tc.allowed {
			allowed[r] = true
		}
		for _, role := range all {
			if got := HasCapability(role, tc.cap); got != allowed[role] {
				t.Errorf("%s/%s: got %v, want %v", role, tc.cap, got, allowed[role])
			}
		}
	}
}

func TestGrantsAreNotRankMonotonic(t *testing.T) {
	// An analyst may flag claims but not update their status, even though
	// the investigator above it may do both.
	if !HasCapability(RoleAnalyst, CapFlagClaim) {
		t.Fatal("analyst should be able to flag claims")
	}
	if HasCapability(RoleAnalyst, CapUpdateStatus) {
		t.Fatal("analyst should not be able to update status")
	}
	if !HasCapability(RoleInvestigator, CapUpdateStatus) {
		t.Fatal("investigator should be able to update status")
	}
}

func TestRequire(t *testing.T) {
	if err := Require(RoleProvider, CapCreateClaim); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	err := Require(RolePatient, CapCreateClaim)
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestAtLeast(t *testing.T) {
	if !AtLeast(RoleAdmin, RoleRegulator) {
		t.Fatal("admin should rank at least regulator")
	}
	if AtLeast(RoleProvider, RoleAnalyst) {
		t.Fatal("provider should rank below analyst")
	}
	if !AtLeast(RoleAnalyst, RoleAnalyst) {
		t.Fatal("rank comparison should be inclusive")
	}
}

func TestParseRole(t *testing.T) {
	r, err := ParseRole(" Investigator ")
	if err != nil || r != RoleInvestigator {
		t.Fatalf("got %q, %v", r, err)
	}
	if _, err := ParseRole("superuser"); err == nil {
		t.Fatal("expected error for unknown role")
	}
}

func TestScopeFor(t *testing.T) {
	if s := ScopeFor(RoleProvider, "USR004"); s.ProviderID != "USR004" || s.PatientID != "" {
		t.Fatalf("unexpected provider scope: %+v", s)
	}
	if s := ScopeFor(RolePatient, "USR005"); s.PatientID != "USR005" || s.ProviderID != "" {
		t.Fatalf("unexpected patient scope: %+v", s)
	}
	if s := ScopeFor(RoleRegulator, "USR006"); s != (Scope{}) {
		t.Fatalf("regulator scope should be unrestricted: %+v", s)
	}
}
