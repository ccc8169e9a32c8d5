package audit

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
	"time"

	"claimspring.org/internal/obs"
)

func TestRecorderEntry(t *testing.T) {
	fixed := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	rec := NewRecorder(func() time.Time { return fixed })

	ctx := WithOrigin(context.Background(), "203.0.113.7")
	e := rec.Entry(ctx, "USR001", ActionFlagClaim, "claim", "CLM123", "flagged for review")

	if e.ID == "" {
		t.Fatal("expected generated id")
	}
	if !e.CreatedAt.Equal(fixed) {
		t.Fatalf("unexpected timestamp: %v", e.CreatedAt)
	}
	if e.IPAddress != "203.0.113.7" {
		t.Fatalf("origin not captured: %q", e.IPAddress)
	}
	if e.UserID != "USR001" || e.Action != ActionFlagClaim || e.ResourceID != "CLM123" {
		t.Fatalf("entry fields incorrect: %+v", e)
	}
}

func TestRecorderEntryWithoutOrigin(t *testing.T) {
	rec := NewRecorder(nil)
	e := rec.Entry(context.Background(), "USR002", ActionLogin, "user", "USR002", "")
	if e.IPAddress != "" {
		t.Fatalf("expected empty origin, got %q", e.IPAddress)
	}
	if e.CreatedAt.IsZero() {
		t.Fatal("expected fallback clock to stamp entry")
	}
}

func TestRecorderLog(t *testing.T) {
	logger := obs.Logger()
	original := logger.Writer()
	var buf bytes.Buffer
	logger.SetOutput(&buf)
	defer logger.SetOutput(original)

	rec := NewRecorder(nil)
	e := rec.Entry(context.Background(), "USR003", ActionUpdateStatus, "claim", "CLM001", "pending -> approved")
	rec.Log(e)

	var line map[string]any
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("audit line not valid JSON: %v", err)
	}
	if line["type"] != "audit" {
		t.Fatalf("unexpected type: %v", line["type"])
	}
	if line["action"] != ActionUpdateStatus {
		t.Fatalf("unexpected action: %v", line["action"])
	}
	if line["resource_id"] != "CLM001" {
		t.Fatalf("unexpected resource id: %v", line["resource_id"])
	}
	if line["details"] != "pending -> approved" {
		t.Fatalf("details missing: %v", line["details"])
	}
}
