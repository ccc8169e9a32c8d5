package httpapi

import (
	"net/http"

	"claimspring.org/internal/access"
	"claimspring.org/internal/auth"
	"claimspring.org/internal/claims"
	"claimspring.org/internal/fraud"
)

// handleDashboardMetrics returns a metric set shaped by the caller's role.
// Providers and patients see counts over their own claims only; oversight
// roles see fleet-wide numbers.
func (a *API) handleDashboardMetrics(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	ctx := r.Context()
	total, err := a.claims.Count(ctx, claims.ListFilter{}, user)
	if err != nil {
		handleDomainError(w, err)
		return
	}

	switch user.Role {
	case access.RoleProvider:
		flagged, err := a.claims.Count(ctx, claims.ListFilter{Status: claims.StatusFlagged}, user)
		if err != nil {
			handleDomainError(w, err)
			return
		}
		highRisk, err := a.claims.Count(ctx, claims.ListFilter{RiskLevel: claims.RiskHigh}, user)
		if err != nil {
			handleDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"total_claims":     total,
			"flagged_claims":   flagged,
			"high_risk_claims": highRisk,
		})

	case access.RolePatient:
		approved, err := a.claims.Count(ctx, claims.ListFilter{Status: claims.StatusApproved}, user)
		if err != nil {
			handleDomainError(w, err)
			return
		}
		pending, err := a.claims.Count(ctx, claims.ListFilter{Status: claims.StatusPending}, user)
		if err != nil {
			handleDomainError(w, err)
			return
		}
		rate := 0.0
		if total > 0 {
			rate = float64(approved) / float64(total)
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"total_claims":    total,
			"approved_claims": approved,
			"pending_claims":  pending,
			"approval_rate":   rate,
		})

	case access.RoleAnalyst:
		highRisk, err := a.claims.Count(ctx, claims.ListFilter{RiskLevel: claims.RiskHigh}, user)
		if err != nil {
			handleDomainError(w, err)
			return
		}
		open := false
		openAlerts, err := a.alerts.Count(ctx, fraud.Filter{Resolved: &open}, user)
		if err != nil {
			handleDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"total_claims":     total,
			"high_risk_claims": highRisk,
			"pending_alerts":   openAlerts,
		})

	default:
		highRisk, err := a.claims.Count(ctx, claims.ListFilter{RiskLevel: claims.RiskHigh}, user)
		if err != nil {
			handleDomainError(w, err)
			return
		}
		open := false
		openAlerts, err := a.alerts.Count(ctx, fraud.Filter{Resolved: &open}, user)
		if err != nil {
			handleDomainError(w, err)
			return
		}
		activeUsers, err := a.auth.CountUsers(ctx, true)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		rate := 0.0
		if total > 0 {
			rate = float64(highRisk) / float64(total)
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"total_claims":         total,
			"high_risk_claims":     highRisk,
			"pending_alerts":       openAlerts,
			"active_users":         activeUsers,
			"fraud_detection_rate": rate,
		})
	}
}
