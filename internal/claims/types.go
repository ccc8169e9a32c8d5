package claims

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"claimspring.org/internal/audit"
	"claimspring.org/internal/fraud"
)

var (
	ErrNotFound      = errors.New("claims: claim not found")
	ErrInvalidAmount = errors.New("claims: amount must be positive")
	ErrFutureDate    = errors.New("claims: service date cannot be in the future")
	ErrInvalidStatus = errors.New("claims: invalid status")
	ErrInvalidRisk   = errors.New("claims: invalid risk level")
	ErrInvalidFilter = errors.New("claims: invalid filter")
)

// Status is a claim's position in its triage lifecycle. Claims are never
// deleted; they only move between statuses.
type Status string

const (
	StatusPending       Status = "pending"
	StatusApproved      Status = "approved"
	StatusDenied        Status = "denied"
	StatusFlagged       Status = "flagged"
	StatusInvestigation Status = "investigation"
)

// ParseStatus validates a status name.
func ParseStatus(raw string) (Status, error) {
	s := Status(strings.ToLower(strings.TrimSpace(raw)))
	switch s {
	case StatusPending, StatusApproved, StatusDenied, StatusFlagged, StatusInvestigation:
		return s, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidStatus, raw)
}

// RiskLevel buckets a risk score.
type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// ParseRiskLevel validates a risk level name.
func ParseRiskLevel(raw string) (RiskLevel, error) {
	l := RiskLevel(strings.ToLower(strings.TrimSpace(raw)))
	switch l {
	case RiskLow, RiskMedium, RiskHigh:
		return l, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidRisk, raw)
}

// Claim is a submitted billing record subject to fraud triage. RiskLevel is
// always derived from RiskScore, never set independently.
type Claim struct {
	ID           string    `json:"id"`
	PatientID    string    `json:"patient_id"`
	ProviderID   string    `json:"provider_id"`
	PatientName  string    `json:"patient_name"`
	ProviderName string    `json:"provider_name"`
	Amount       float64   `json:"amount"`
	ServiceDate  time.Time `json:"date"`
	Description  string    `json:"description,omitempty"`
	RiskScore    float64   `json:"risk_score"`
	RiskLevel    RiskLevel `json:"risk_level"`
	Status       Status    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// CreateInput carries the caller-supplied attributes of a new claim.
// ProviderID is honored only for admin submissions; provider submissions
// are always attributed to the submitting provider.
type CreateInput struct {
	PatientID    string
	ProviderID   string
	PatientName  string
	ProviderName string
	Amount       float64
	ServiceDate  time.Time
	Description  string
}

// ListFilter narrows claim listings. Zero values mean "no constraint".
// ProviderID/PatientID carry the row-level visibility scope and are set by
// the service, not by callers.
type ListFilter struct {
	Status     Status
	RiskLevel  RiskLevel
	ProviderID string
	PatientID  string
	Skip       int
	Limit      int
}

// Validate checks the caller-facing filter fields and rewrites them to
// their canonical form, so matching downstream is exact.
func (f *ListFilter) Validate() error {
	if f.Status != "" {
		s, err := ParseStatus(string(f.Status))
		if err != nil {
			return err
		}
		f.Status = s
	}
	if f.RiskLevel != "" {
		l, err := ParseRiskLevel(string(f.RiskLevel))
		if err != nil {
			return err
		}
		f.RiskLevel = l
	}
	if f.Skip < 0 || f.Limit < 0 {
		return fmt.Errorf("%w: skip and limit must be non-negative", ErrInvalidFilter)
	}
	return nil
}

// Store persists claims. The mutating methods take the fraud alert and
// audit entry belonging to the mutation and must commit the whole bundle as
// one unit of work, so a claim's visible effect and its audit record never
// diverge.
type Store interface {
	CreateClaim(ctx context.Context, claim *Claim, alert *fraud.Alert, entry *audit.Entry) error
	GetClaim(ctx context.Context, id string) (*Claim, error)
	ListClaims(ctx context.Context, filter ListFilter) ([]*Claim, error)
	CountClaims(ctx context.Context, filter ListFilter) (int, error)
	UpdateClaimStatus(ctx context.Context, claim *Claim, entry *audit.Entry) error
	FlagClaim(ctx context.Context, claim *Claim, alert *fraud.Alert, entry *audit.Entry) error
}
