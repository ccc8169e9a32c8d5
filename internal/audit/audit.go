package audit

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"claimspring.org/internal/ids"
	"claimspring.org/internal/obs"
)

// Entry is one append-only audit record. Entries are never updated or
// deleted after creation.
type Entry struct {
	ID           string    `json:"id"`
	UserID       string    `json:"user_id"`
	Action       string    `json:"action"`
	ResourceType string    `json:"resource_type"`
	ResourceID   string    `json:"resource_id"`
	Details      string    `json:"details,omitempty"`
	IPAddress    string    `json:"ip_address,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// Store persists entries. Implementations must only ever append.
type Store interface {
	AppendAuditEntry(ctx context.Context, entry *Entry) error
}

// Audit action names. Every mutating operation in the service records
// exactly one of these.
const (
	ActionLogin        = "login"
	ActionLogout       = "logout"
	ActionCreateClaim  = "create_claim"
	ActionListClaims   = "list_claims"
	ActionUpdateStatus = "update_status"
	ActionFlagClaim    = "flag_claim"
	ActionResolveAlert = "resolve_alert"
)

type ctxKey string

const originKey ctxKey = "audit_origin"

// WithOrigin attaches the request origin address to the context so entries
// built downstream carry it.
func WithOrigin(ctx context.Context, addr string) context.Context {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return ctx
	}
	return context.WithValue(ctx, originKey, addr)
}

func originFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(originKey).(string); ok {
		return v
	}
	return ""
}

// Recorder builds audit entries and emits them as JSON log lines.
// Persistence happens through the store call that carries the entry, so an
// entry and the mutation it documents commit as one unit.
type Recorder struct {
	now func() time.Time
}

// NewRecorder constructs a Recorder. A nil clock falls back to UTC wall time.
func NewRecorder(now func() time.Time) *Recorder {
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &Recorder{now: now}
}

// Entry assembles a new audit record stamped with the recorder's clock and
// the origin address from the context, when present.
func (r *Recorder) Entry(ctx context.Context, userID, action, resourceType, resourceID, details string) *Entry {
	return &Entry{
		ID:           ids.New(),
		UserID:       userID,
		Action:       action,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		Details:      details,
		IPAddress:    originFromContext(ctx),
		CreatedAt:    r.now(),
	}
}

// Log emits the entry as a structured JSON audit line.
func (r *Recorder) Log(e *Entry) {
	line := map[string]any{
		"ts":            e.CreatedAt.Format(time.RFC3339Nano),
		"type":          "audit",
		"action":        e.Action,
		"audit_id":      e.ID,
		"user_id":       e.UserID,
		"resource_type": e.ResourceType,
		"resource_id":   e.ResourceID,
	}
	if e.Details != "" {
		line["details"] = e.Details
	}
	if e.IPAddress != "" {
		line["ip_address"] = e.IPAddress
	}
	data, err := json.Marshal(line)
	if err != nil {
		obs.Logger().Println(`{"type":"audit","error":"marshal failed"}`)
		return
	}
	obs.Logger().Println(string(data))
}
