package claims

import "fmt"

// RiskLevelFor derives the categorical risk level from a score. This is the
// single derivation point; a claim's level must never be set independently
// of its score.
func RiskLevelFor(score float64) RiskLevel {
	switch {
	case score > 0.7:
		return RiskHigh
	case score > 0.4:
		return RiskMedium
	default:
		return RiskLow
	}
}

// Policy maps a risk score to a claim's initial status. The status for
// mid-range scores is configurable: the original triage process picked
// between pending and approved ad hoc, so the choice is surfaced here
// instead of being hard-coded.
type Policy struct {
	midRangeStatus Status
}

// NewPolicy builds a lifecycle policy. midRange must be pending or
// approved; empty selects pending.
func NewPolicy(midRange Status) (*Policy, error) {
	if midRange == "" {
		midRange = StatusPending
	}
	if midRange != StatusPending && midRange != StatusApproved {
		return nil, fmt.Errorf("%w: mid-range status must be pending or approved, got %q", ErrInvalidStatus, midRange)
	}
	return &Policy{midRangeStatus: midRange}, nil
}

// InitialStatus assigns the status a freshly scored claim starts in.
func (p *Policy) InitialStatus(score float64) Status {
	switch {
	case score > 0.8:
		return StatusFlagged
	case score > 0.6:
		return StatusInvestigation
	default:
		return p.midRangeStatus
	}
}
