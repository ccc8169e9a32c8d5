// Package memory provides an in-process implementation of every store
// interface in the service. It backs tests and DSN-less development runs;
// production deployments use the Postgres store.
package memory

import (
	"context"
	"sync"
	"time"

	"claimspring.org/internal/audit"
	"claimspring.org/internal/auth"
	"claimspring.org/internal/claims"
	"claimspring.org/internal/fraud"
)

// Store holds all service state behind one lock so that bundled mutations
// (claim + alert + audit entry) are atomic.
type Store struct {
	mu      sync.RWMutex
	claims  map[string]*claims.Claim
	claimID []string
	alerts  map[string]*fraud.Alert
	alertID []string
	users   map[string]*auth.User
	byName  map[string]string
	audits  []*audit.Entry
}

var (
	_ claims.Store = (*Store)(nil)
	_ fraud.Store  = (*Store)(nil)
	_ auth.Store   = (*Store)(nil)
	_ audit.Store  = (*Store)(nil)
)

// New creates an empty store.
func New() *Store {
	return &Store{
		claims: make(map[string]*claims.Claim),
		alerts: make(map[string]*fraud.Alert),
		users:  make(map[string]*auth.User),
		byName: make(map[string]string),
	}
}

// --- claims.Store ---

func (s *Store) CreateClaim(ctx context.Context, claim *claims.Claim, alert *fraud.Alert, entry *audit.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := *claim
	s.claims[c.ID] = &c
	s.claimID = append(s.claimID, c.ID)
	if alert != nil {
		a := *alert
		s.alerts[a.ID] = &a
		s.alertID = append(s.alertID, a.ID)
	}
	s.appendAudit(entry)
	return nil
}

func (s *Store) GetClaim(ctx context.Context, id string) (*claims.Claim, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.claims[id]
	if !ok {
		return nil, claims.ErrNotFound
	}
	out := *c
	return &out, nil
}

func (s *Store) ListClaims(ctx context.Context, filter claims.ListFilter) ([]*claims.Claim, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var matched []*claims.Claim
	for _, id := range s.claimID {
		c := s.claims[id]
		if !claimMatches(c, filter) {
			continue
		}
		out := *c
		matched = append(matched, &out)
	}
	return paginate(matched, filter.Skip, filter.Limit), nil
}

func (s *Store) CountClaims(ctx context.Context, filter claims.ListFilter) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, c := range s.claims {
		if claimMatches(c, filter) {
			n++
		}
	}
	return n, nil
}

func (s *Store) UpdateClaimStatus(ctx context.Context, claim *claims.Claim, entry *audit.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.claims[claim.ID]
	if !ok {
		return claims.ErrNotFound
	}
	stored.Status = claim.Status
	stored.UpdatedAt = claim.UpdatedAt
	s.appendAudit(entry)
	return nil
}

func (s *Store) FlagClaim(ctx context.Context, claim *claims.Claim, alert *fraud.Alert, entry *audit.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.claims[claim.ID]
	if !ok {
		return claims.ErrNotFound
	}
	stored.Status = claim.Status
	stored.UpdatedAt = claim.UpdatedAt
	a := *alert
	s.alerts[a.ID] = &a
	s.alertID = append(s.alertID, a.ID)
	s.appendAudit(entry)
	return nil
}

func claimMatches(c *claims.Claim, f claims.ListFilter) bool {
	if f.ProviderID != "" && c.ProviderID != f.ProviderID {
		return false
	}
	if f.PatientID != "" && c.PatientID != f.PatientID {
		return false
	}
	if f.Status != "" && c.Status != f.Status {
		return false
	}
	if f.RiskLevel != "" && c.RiskLevel != f.RiskLevel {
		return false
	}
	return true
}

// --- fraud.Store ---

func (s *Store) GetAlert(ctx context.Context, id string) (*fraud.Alert, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.alerts[id]
	if !ok {
		return nil, fraud.ErrNotFound
	}
	out := *a
	return &out, nil
}

func (s *Store) ListAlerts(ctx context.Context, filter fraud.Filter) ([]*fraud.Alert, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var matched []*fraud.Alert
	for _, id := range s.alertID {
		a := s.alerts[id]
		if !alertMatches(a, filter) {
			continue
		}
		out := *a
		matched = append(matched, &out)
	}
	return paginate(matched, filter.Skip, filter.Limit), nil
}

func (s *Store) CountAlerts(ctx context.Context, filter fraud.Filter) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, a := range s.alerts {
		if alertMatches(a, filter) {
			n++
		}
	}
	return n, nil
}

func (s *Store) ResolveAlert(ctx context.Context, alert *fraud.Alert, entry *audit.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.alerts[alert.ID]
	if !ok {
		return fraud.ErrNotFound
	}
	stored.Resolved = alert.Resolved
	stored.ResolvedBy = alert.ResolvedBy
	stored.ResolutionNotes = alert.ResolutionNotes
	stored.ResolvedAt = alert.ResolvedAt
	s.appendAudit(entry)
	return nil
}

func alertMatches(a *fraud.Alert, f fraud.Filter) bool {
	if f.Severity != "" && a.Severity != f.Severity {
		return false
	}
	if f.Category != "" && a.Category != f.Category {
		return false
	}
	if f.Resolved != nil && a.Resolved != *f.Resolved {
		return false
	}
	return true
}

// --- auth.Store ---

// PutUser inserts or replaces a user. Used by seeding and tests.
func (s *Store) PutUser(u *auth.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user := *u
	s.users[user.ID] = &user
	s.byName[user.Username] = user.ID
}

func (s *Store) GetUser(ctx context.Context, id string) (*auth.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return nil, auth.ErrUserNotFound
	}
	out := *u
	return &out, nil
}

func (s *Store) GetUserByUsername(ctx context.Context, username string) (*auth.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byName[username]
	if !ok {
		return nil, auth.ErrUserNotFound
	}
	out := *s.users[id]
	return &out, nil
}

func (s *Store) ListUsers(ctx context.Context) ([]*auth.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]*auth.User, 0, len(s.users))
	for _, u := range s.users {
		out := *u
		result = append(result, &out)
	}
	return result, nil
}

func (s *Store) CountUsers(ctx context.Context, activeOnly bool) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !activeOnly {
		return len(s.users), nil
	}
	n := 0
	for _, u := range s.users {
		if u.Active {
			n++
		}
	}
	return n, nil
}

func (s *Store) UpdateLastLogin(ctx context.Context, id string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return auth.ErrUserNotFound
	}
	u.LastLogin = at
	return nil
}

// --- audit.Store ---

func (s *Store) AppendAuditEntry(ctx context.Context, entry *audit.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.appendAudit(entry)
	return nil
}

// AuditEntries returns a snapshot of the audit trail, oldest first.
func (s *Store) AuditEntries() []*audit.Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*audit.Entry, len(s.audits))
	for i, e := range s.audits {
		copied := *e
		out[i] = &copied
	}
	return out
}

func (s *Store) appendAudit(entry *audit.Entry) {
	if entry == nil {
		return
	}
	e := *entry
	s.audits = append(s.audits, &e)
}

func paginate[T any](items []T, skip, limit int) []T {
	if skip >= len(items) {
		return nil
	}
	items = items[skip:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
