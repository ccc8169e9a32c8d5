package fraud

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrNotFound        = errors.New("fraud: alert not found")
	ErrAlreadyResolved = errors.New("fraud: alert already resolved")
	ErrInvalidFilter   = errors.New("fraud: invalid filter")
)

// Category classifies what an alert is about.
type Category string

const (
	CategoryFraud      Category = "fraud"
	CategoryCompliance Category = "compliance"
	CategoryBias       Category = "bias"
)

// Severity grades an alert.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// ParseCategory validates a category name.
func ParseCategory(raw string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(raw)))
	switch c {
	case CategoryFraud, CategoryCompliance, CategoryBias:
		return c, nil
	}
	return "", fmt.Errorf("%w: unknown category %q", ErrInvalidFilter, raw)
}

// ParseSeverity validates a severity name.
func ParseSeverity(raw string) (Severity, error) {
	s := Severity(strings.ToLower(strings.TrimSpace(raw)))
	switch s {
	case SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical:
		return s, nil
	}
	return "", fmt.Errorf("%w: unknown severity %q", ErrInvalidFilter, raw)
}

// Alert is a fraud alert raised against a claim, either automatically by
// the risk scorer or explicitly by a flag operation.
type Alert struct {
	ID              string    `json:"id"`
	ClaimID         string    `json:"claim_id"`
	UserID          string    `json:"user_id"`
	Category        Category  `json:"type"`
	Severity        Severity  `json:"severity"`
	Description     string    `json:"description"`
	Confidence      float64   `json:"confidence_score"`
	Resolved        bool      `json:"is_resolved"`
	ResolvedBy      string    `json:"resolved_by,omitempty"`
	ResolutionNotes string    `json:"resolution_notes,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	ResolvedAt      time.Time `json:"resolved_at,omitzero"`
}

// Filter narrows alert listings. Zero values mean "no constraint".
type Filter struct {
	Severity Severity
	Category Category
	Resolved *bool
	Skip     int
	Limit    int
}

// Validate checks filter fields and pagination bounds, rewriting severity
// and category to their canonical form so matching downstream is exact.
func (f *Filter) Validate() error {
	if f.Severity != "" {
		s, err := ParseSeverity(string(f.Severity))
		if err != nil {
			return err
		}
		f.Severity = s
	}
	if f.Category != "" {
		c, err := ParseCategory(string(f.Category))
		if err != nil {
			return err
		}
		f.Category = c
	}
	if f.Skip < 0 || f.Limit < 0 {
		return fmt.Errorf("%w: skip and limit must be non-negative", ErrInvalidFilter)
	}
	return nil
}
