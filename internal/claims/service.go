package claims

import (
	"context"
	"fmt"
	"time"

	"claimspring.org/internal/access"
	"claimspring.org/internal/audit"
	"claimspring.org/internal/auth"
	"claimspring.org/internal/fraud"
	"claimspring.org/internal/ids"
	"claimspring.org/internal/obs"
)

// alertThreshold is the score above which intake raises a fraud alert
// automatically; severeThreshold lifts its severity from medium to high.
const (
	alertThreshold  = 0.7
	severeThreshold = 0.8
)

// Service orchestrates the claim lifecycle: capability check, scoring,
// classification, persistence, alerting, and audit, in that order. It holds
// no state between invocations; all shared state lives in the store.
type Service struct {
	store    Store
	scorer   *Scorer
	policy   *Policy
	recorder *audit.Recorder
	now      func() time.Time
}

// NewService wires the claim service. A nil clock falls back to UTC wall
// time.
func NewService(store Store, scorer *Scorer, policy *Policy, recorder *audit.Recorder, now func() time.Time) *Service {
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &Service{
		store:    store,
		scorer:   scorer,
		policy:   policy,
		recorder: recorder,
		now:      now,
	}
}

// Create validates, scores, classifies, and persists a new claim. When the
// score crosses the alert threshold a fraud alert is raised in the same
// unit of work. Authorization and validation run before any scoring or
// mutation, so rejected calls leave no trace.
func (s *Service) Create(ctx context.Context, input CreateInput, actingUser *auth.User) (*Claim, error) {
	if err := access.Require(actingUser.Role, access.CapCreateClaim); err != nil {
		return nil, err
	}
	now := s.now()
	if input.Amount <= 0 {
		return nil, ErrInvalidAmount
	}
	if input.ServiceDate.After(now) {
		return nil, ErrFutureDate
	}

	score := s.scorer.Score(input.Amount, input.ProviderName)
	level := RiskLevelFor(score)
	status := s.policy.InitialStatus(score)

	providerID := input.ProviderID
	if actingUser.Role == access.RoleProvider {
		providerID = actingUser.ID
	}

	claim := &Claim{
		ID:           ids.New(),
		PatientID:    input.PatientID,
		ProviderID:   providerID,
		PatientName:  input.PatientName,
		ProviderName: input.ProviderName,
		Amount:       input.Amount,
		ServiceDate:  input.ServiceDate,
		Description:  input.Description,
		RiskScore:    score,
		RiskLevel:    level,
		Status:       status,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	var alert *fraud.Alert
	if score > alertThreshold {
		severity := fraud.SeverityMedium
		if score > severeThreshold {
			severity = fraud.SeverityHigh
		}
		alert = &fraud.Alert{
			ID:          ids.New(),
			ClaimID:     claim.ID,
			UserID:      actingUser.ID,
			Category:    fraud.CategoryFraud,
			Severity:    severity,
			Description: fmt.Sprintf("High risk claim detected with score %.2f", score),
			Confidence:  score,
			CreatedAt:   now,
		}
	}

	entry := s.recorder.Entry(ctx, actingUser.ID, audit.ActionCreateClaim, "claim", claim.ID,
		fmt.Sprintf("Created claim %s with risk score %.2f", claim.ID, score))
	if err := s.store.CreateClaim(ctx, claim, alert, entry); err != nil {
		return nil, err
	}
	s.recorder.Log(entry)

	obs.ObserveClaimCreated(string(level))
	if alert != nil {
		obs.ObserveAlertRaised(string(alert.Severity))
	}
	return claim, nil
}

// Get returns one claim, subject to the caller's visibility scope.
func (s *Service) Get(ctx context.Context, id string, actingUser *auth.User) (*Claim, error) {
	claim, err := s.store.GetClaim(ctx, id)
	if err != nil {
		return nil, err
	}
	scope := access.ScopeFor(actingUser.Role, actingUser.ID)
	if scope.ProviderID != "" && claim.ProviderID != scope.ProviderID {
		return nil, ErrNotFound
	}
	if scope.PatientID != "" && claim.PatientID != scope.PatientID {
		return nil, ErrNotFound
	}
	return claim, nil
}

// List returns claims narrowed first by the caller's visibility scope, then
// by the optional status/risk filters, then paginated. Reads are not part
// of the audit contract; the list action is logged for parity with the
// original system but its failure is ignored.
func (s *Service) List(ctx context.Context, filter ListFilter, actingUser *auth.User) ([]*Claim, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}
	scope := access.ScopeFor(actingUser.Role, actingUser.ID)
	filter.ProviderID = scope.ProviderID
	filter.PatientID = scope.PatientID

	result, err := s.store.ListClaims(ctx, filter)
	if err != nil {
		return nil, err
	}
	s.recorder.Log(s.recorder.Entry(ctx, actingUser.ID, audit.ActionListClaims, "claim", "",
		fmt.Sprintf("Listed %d claims", len(result))))
	return result, nil
}

// Count returns the number of claims visible to the caller after applying
// the optional status/risk filters.
func (s *Service) Count(ctx context.Context, filter ListFilter, actingUser *auth.User) (int, error) {
	if err := filter.Validate(); err != nil {
		return 0, err
	}
	scope := access.ScopeFor(actingUser.Role, actingUser.ID)
	filter.ProviderID = scope.ProviderID
	filter.PatientID = scope.PatientID
	return s.store.CountClaims(ctx, filter)
}

// UpdateStatus moves a claim to newStatus. Any status is reachable from any
// other; the transition and its audit entry commit together.
func (s *Service) UpdateStatus(ctx context.Context, claimID string, newStatus Status, actingUser *auth.User) (*Claim, error) {
	if err := access.Require(actingUser.Role, access.CapUpdateStatus); err != nil {
		return nil, err
	}
	newStatus, err := ParseStatus(string(newStatus))
	if err != nil {
		return nil, err
	}

	claim, err := s.store.GetClaim(ctx, claimID)
	if err != nil {
		return nil, err
	}

	oldStatus := claim.Status
	claim.Status = newStatus
	claim.UpdatedAt = s.now()

	entry := s.recorder.Entry(ctx, actingUser.ID, audit.ActionUpdateStatus, "claim", claim.ID,
		fmt.Sprintf("Updated claim status from %s to %s", oldStatus, newStatus))
	if err := s.store.UpdateClaimStatus(ctx, claim, entry); err != nil {
		return nil, err
	}
	s.recorder.Log(entry)

	obs.ObserveStatusUpdate(string(newStatus))
	return claim, nil
}

// Flag forces a claim to flagged regardless of its current status and
// raises a high-severity alert carrying the claim's risk score as
// confidence. Flagging is deliberately not deduplicated: flagging twice
// yields two alerts.
func (s *Service) Flag(ctx context.Context, claimID, reason string, actingUser *auth.User) (*Claim, error) {
	if err := access.Require(actingUser.Role, access.CapFlagClaim); err != nil {
		return nil, err
	}

	claim, err := s.store.GetClaim(ctx, claimID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	claim.Status = StatusFlagged
	claim.UpdatedAt = now

	description := reason
	if description == "" {
		description = "Claim flagged for manual review"
	}
	alert := &fraud.Alert{
		ID:          ids.New(),
		ClaimID:     claim.ID,
		UserID:      actingUser.ID,
		Category:    fraud.CategoryFraud,
		Severity:    fraud.SeverityHigh,
		Description: description,
		Confidence:  claim.RiskScore,
		CreatedAt:   now,
	}

	details := reason
	if details == "" {
		details = "Manual review required"
	}
	entry := s.recorder.Entry(ctx, actingUser.ID, audit.ActionFlagClaim, "claim", claim.ID,
		fmt.Sprintf("Flagged claim %s: %s", claim.ID, details))
	if err := s.store.FlagClaim(ctx, claim, alert, entry); err != nil {
		return nil, err
	}
	s.recorder.Log(entry)

	obs.ObserveAlertRaised(string(alert.Severity))
	obs.ObserveStatusUpdate(string(StatusFlagged))
	return claim, nil
}
