package memory

import (
	"time"

	"claimspring.org/internal/access"
	"claimspring.org/internal/auth"
)

// SeedDemoUsers loads one demo account per role, all sharing the given
// password. Meant for DSN-less development runs only.
func (s *Store) SeedDemoUsers(password string) error {
	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	demo := []*auth.User{
		{ID: "USR001", Username: "analyst", Email: "analyst@claimspring.org", Name: "John Analyst", Role: access.RoleAnalyst},
		{ID: "USR002", Username: "investigator", Email: "investigator@claimspring.org", Name: "Sarah Investigator", Role: access.RoleInvestigator},
		{ID: "USR003", Username: "admin", Email: "admin@claimspring.org", Name: "Mike Admin", Role: access.RoleAdmin},
		{ID: "USR004", Username: "provider", Email: "provider@claimspring.org", Name: "Dr. Smith", Role: access.RoleProvider},
		{ID: "USR005", Username: "patient", Email: "patient@claimspring.org", Name: "Jane Patient", Role: access.RolePatient},
		{ID: "USR006", Username: "regulator", Email: "regulator@claimspring.org", Name: "Robert Regulator", Role: access.RoleRegulator},
	}
	for _, u := range demo {
		u.Active = true
		u.PasswordHash = hash
		u.CreatedAt = now
		s.PutUser(u)
	}
	return nil
}
