package access

import (
	"errors"
	"fmt"
	"strings"
)

// ErrForbidden indicates a capability check failed for the acting role.
var ErrForbidden = errors.New("access: forbidden")

// Role is a named actor category.
type Role string

const (
	RolePatient      Role = "patient"
	RoleProvider     Role = "provider"
	RoleAnalyst      Role = "analyst"
	RoleInvestigator Role = "investigator"
	RoleRegulator    Role = "regulator"
	RoleAdmin        Role = "admin"
)

// ranks orders roles for threshold checks. The rank table is not the source
// of truth for capability grants; those come from the allow-lists below.
var ranks = map[Role]int{
	RolePatient:      0,
	RoleProvider:     1,
	RoleAnalyst:      2,
	RoleInvestigator: 3,
	RoleRegulator:    4,
	RoleAdmin:        5,
}

// ParseRole validates a role name.
func ParseRole(raw string) (Role, error) {
	r := Role(strings.ToLower(strings.TrimSpace(raw)))
	if _, ok := ranks[r]; !ok {
		return "", fmt.Errorf("unknown role %q", raw)
	}
	return r, nil
}

// Rank returns the numeric position of a role in the hierarchy.
// Unknown roles rank lowest.
func Rank(r Role) int {
	return ranks[r]
}

// AtLeast reports whether role ranks at or above min. Kept as a reusable
// threshold primitive; current capability grants use explicit allow-lists
// because they are not rank-monotonic (an analyst can flag claims but not
// update their status, despite ranking below an investigator who can do both).
func AtLeast(role, min Role) bool {
	return ranks[role] >= ranks[min]
}

// Capability names one gated operation.
type Capability string

const (
	CapCreateClaim  Capability = "create_claim"
	CapUpdateStatus Capability = "update_status"
	CapFlagClaim    Capability = "flag_claim"
	CapListUsers    Capability = "list_users"
	CapResolveAlert Capability = "resolve_alert"
)

// grants is the static per-capability allow-list table.
var grants = map[Capability]map[Role]struct{}{
	CapCreateClaim: roleSet(RoleProvider, RoleAdmin),
	CapUpdateStatus: roleSet(
		RoleAdmin, RoleInvestigator, RoleRegulator,
	),
	CapFlagClaim: roleSet(
		RoleAdmin, RoleInvestigator, RoleAnalyst, RoleRegulator,
	),
	CapListUsers: roleSet(RoleAdmin),
	CapResolveAlert: roleSet(
		RoleAdmin, RoleInvestigator, RoleAnalyst, RoleRegulator,
	),
}

func roleSet(roles ...Role) map[Role]struct{} {
	set := make(map[Role]struct{}, len(roles))
	for _, r := range roles {
		set[r] = struct{}{}
	}
	return set
}

// HasCapability reports whether the role is in the capability's allow-list.
func HasCapability(role Role, cap Capability) bool {
	set, ok := grants[cap]
	if !ok {
		return false
	}
	_, ok = set[role]
	return ok
}

// Require returns ErrForbidden (wrapped with the capability name) when the
// role is not granted the capability. Callers must reject, never filter,
// on this error.
func Require(role Role, cap Capability) error {
	if !HasCapability(role, cap) {
		return fmt.Errorf("%w: role %s lacks %s", ErrForbidden, role, cap)
	}
	return nil
}

// Scope restricts which claims a role may see when listing. Empty fields
// mean unrestricted.
type Scope struct {
	ProviderID string
	PatientID  string
}

// ScopeFor returns the row-level visibility scope for a user: providers see
// only claims where they are the provider, patients only claims where they
// are the patient, every other role sees the full set.
func ScopeFor(role Role, userID string) Scope {
	switch role {
	case RoleProvider:
		return Scope{ProviderID: userID}
	case RolePatient:
		return Scope{PatientID: userID}
	default:
		return Scope{}
	}
}
