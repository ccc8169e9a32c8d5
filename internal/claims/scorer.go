package claims

import "math/rand"

// DefaultHighRiskProviders is the built-in provider watch set.
var DefaultHighRiskProviders = []string{"Dr. Smith"}

// Scorer estimates fraud likelihood for a claim as a score in [0, 1]. The
// jitter source is injected so tests can pin it; two scorings of identical
// input are non-reproducible when a real random source is wired.
type Scorer struct {
	highRisk map[string]struct{}
	jitter   func() float64
}

// NewScorer builds a scorer over the given high-risk provider set. A nil
// jitter source disables jitter entirely.
func NewScorer(highRiskProviders []string, jitter func() float64) *Scorer {
	set := make(map[string]struct{}, len(highRiskProviders))
	for _, p := range highRiskProviders {
		set[p] = struct{}{}
	}
	if jitter == nil {
		jitter = func() float64 { return 0 }
	}
	return &Scorer{highRisk: set, jitter: jitter}
}

// UniformJitter returns the production jitter source: uniform in
// [-0.1, 0.1].
func UniformJitter() func() float64 {
	return func() float64 { return rand.Float64()*0.2 - 0.1 }
}

// Score computes the risk score. Base 0.3, stepped up with the claim
// amount, bumped for watched providers, then jittered and clamped to
// [0, 1]. Always returns a value in range.
func (s *Scorer) Score(amount float64, providerName string) float64 {
	score := 0.3

	switch {
	case amount > 3000:
		score += 0.4
	case amount > 2000:
		score += 0.2
	case amount > 1000:
		score += 0.1
	}

	if _, ok := s.highRisk[providerName]; ok {
		score += 0.2
	}

	score += s.jitter()

	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}
