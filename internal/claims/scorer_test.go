package claims

import (
	"math"
	"testing"
)

func zeroJitter() float64 { return 0 }

func TestScoreHighRiskProviderLargeAmount(t *testing.T) {
	s := NewScorer(DefaultHighRiskProviders, zeroJitter)
	// 0.3 base + 0.4 amount + 0.2 provider = 0.9
	got := s.Score(3500, "Dr. Smith")
	if math.Abs(got-0.9) > 1e-9 {
		t.Fatalf("Score(3500, Dr. Smith) = %v, want 0.9", got)
	}
	if RiskLevelFor(got) != RiskHigh {
		t.Fatalf("expected high risk level, got %s", RiskLevelFor(got))
	}
}

func TestScoreSmallAmountUnknownProvider(t *testing.T) {
	s := NewScorer(DefaultHighRiskProviders, zeroJitter)
	got := s.Score(800, "Dr. Brown")
	if math.Abs(got-0.3) > 1e-9 {
		t.Fatalf("Score(800, Dr. Brown) = %v, want 0.3", got)
	}
	if RiskLevelFor(got) != RiskLow {
		t.Fatalf("expected low risk level, got %s", RiskLevelFor(got))
	}
}

func TestScoreAmountBands(t *testing.T) {
	s := NewScorer(nil, zeroJitter)
	cases := []struct {
		amount float64
		want   float64
	}{
		{500, 0.3},
		{1000, 0.3},
		{1001, 0.4},
		{2000, 0.4},
		{2001, 0.5},
		{3000, 0.5},
		{3001, 0.7},
	}
	for _, tc := range cases {
		if got := s.Score(tc.amount, "Dr. Jones"); math.Abs(got-tc.want) > 1e-9 {
			t.Errorf("Score(%v) = %v, want %v", tc.amount, got, tc.want)
		}
	}
}

func TestScoreClamped(t *testing.T) {
	high := NewScorer(DefaultHighRiskProviders, func() float64 { return 0.2 })
	if got := high.Score(5000, "Dr. Smith"); got != 1.0 {
		t.Fatalf("expected clamp to 1.0, got %v", got)
	}
	low := NewScorer(nil, func() float64 { return -0.5 })
	if got := low.Score(100, "Dr. Brown"); got != 0.0 {
		t.Fatalf("expected clamp to 0.0, got %v", got)
	}
}

func TestUniformJitterRange(t *testing.T) {
	jitter := UniformJitter()
	for i := 0; i < 1000; i++ {
		v := jitter()
		if v < -0.1 || v > 0.1 {
			t.Fatalf("jitter %v out of [-0.1, 0.1]", v)
		}
	}
}
