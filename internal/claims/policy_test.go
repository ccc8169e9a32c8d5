package claims

import "testing"

func TestRiskLevelFor(t *testing.T) {
	cases := []struct {
		score float64
		want  RiskLevel
	}{
		{0.0, RiskLow},
		{0.4, RiskLow},
		{0.41, RiskMedium},
		{0.7, RiskMedium},
		{0.71, RiskHigh},
		{1.0, RiskHigh},
	}
	for _, tc := range cases {
		if got := RiskLevelFor(tc.score); got != tc.want {
			t.Errorf("RiskLevelFor(%v) = %s, want %s", tc.score, got, tc.want)
		}
	}
}

func TestInitialStatus(t *testing.T) {
	p, err := NewPolicy("")
	if err != nil {
		t.Fatal(err)
	}
	cases := []struct {
		score float64
		want  Status
	}{
		{0.9, StatusFlagged},
		{0.81, StatusFlagged},
		{0.8, StatusInvestigation},
		{0.61, StatusInvestigation},
		{0.6, StatusPending},
		{0.3, StatusPending},
	}
	for _, tc := range cases {
		if got := p.InitialStatus(tc.score); got != tc.want {
			t.Errorf("InitialStatus(%v) = %s, want %s", tc.score, got, tc.want)
		}
	}
}

func TestInitialStatusConfigurableMidRange(t *testing.T) {
	p, err := NewPolicy(StatusApproved)
	if err != nil {
		t.Fatal(err)
	}
	if got := p.InitialStatus(0.3); got != StatusApproved {
		t.Fatalf("mid-range status = %s, want approved", got)
	}
	if got := p.InitialStatus(0.9); got != StatusFlagged {
		t.Fatalf("high score must stay flagged, got %s", got)
	}
}

func TestNewPolicyRejectsOtherStatuses(t *testing.T) {
	for _, status := range []Status{StatusDenied, StatusFlagged, StatusInvestigation, "bogus"} {
		if _, err := NewPolicy(status); err == nil {
			t.Errorf("NewPolicy(%q) should fail", status)
		}
	}
}
