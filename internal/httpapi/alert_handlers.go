package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"claimspring.org/internal/auth"
	"claimspring.org/internal/fraud"
)

type resolveAlertRequest struct {
	Notes string `json:"resolution_notes"`
}

type listAlertsResponse struct {
	Items []*fraud.Alert `json:"items"`
	Total int            `json:"total"`
	Skip  int            `json:"skip"`
	Limit int            `json:"limit"`
}

func (a *API) handleAlertsCollection(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}
	a.listAlerts(w, r)
}

func (a *API) handleAlertResource(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/v1/alerts/")
	if path == "" {
		writeError(w, http.StatusNotFound, "alert not found")
		return
	}

	if id, ok := strings.CutSuffix(path, "/resolve"); ok {
		if r.Method != http.MethodPost {
			methodNotAllowed(w, http.MethodPost)
			return
		}
		a.resolveAlert(w, r, id)
		return
	}
	if strings.Contains(path, "/") {
		writeError(w, http.StatusNotFound, "resource not found")
		return
	}
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}
	a.getAlert(w, r, path)
}

func (a *API) listAlerts(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	q := r.URL.Query()
	skip, err := parseNonNegativeInt(q.Get("skip"), 0)
	if err != nil {
		writeError(w, http.StatusBadRequest, "skip must be a non-negative integer")
		return
	}
	limit, err := parseNonNegativeInt(q.Get("limit"), 100)
	if err != nil {
		writeError(w, http.StatusBadRequest, "limit must be a non-negative integer")
		return
	}

	filter := fraud.Filter{
		Severity: fraud.Severity(strings.TrimSpace(q.Get("severity"))),
		Category: fraud.Category(strings.TrimSpace(q.Get("type"))),
		Skip:     skip,
		Limit:    limit,
	}
	if raw := strings.TrimSpace(q.Get("resolved")); raw != "" {
		switch raw {
		case "true":
			t := true
			filter.Resolved = &t
		case "false":
			f := false
			filter.Resolved = &f
		default:
			writeError(w, http.StatusBadRequest, "resolved must be true or false")
			return
		}
	}

	items, err := a.alerts.List(r.Context(), filter, user)
	if err != nil {
		handleDomainError(w, err)
		return
	}
	total, err := a.alerts.Count(r.Context(), fraud.Filter{
		Severity: filter.Severity,
		Category: filter.Category,
		Resolved: filter.Resolved,
	}, user)
	if err != nil {
		handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, listAlertsResponse{
		Items: items,
		Total: total,
		Skip:  skip,
		Limit: limit,
	})
}

func (a *API) getAlert(w http.ResponseWriter, r *http.Request, id string) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}
	alert, err := a.alerts.Get(r.Context(), id, user)
	if err != nil {
		handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, alert)
}

func (a *API) resolveAlert(w http.ResponseWriter, r *http.Request, id string) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req resolveAlertRequest
	if err := decodeJSON(w, r, &req); err != nil && !errors.Is(err, errEmptyBody) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	alert, err := a.alerts.Resolve(r.Context(), id, strings.TrimSpace(req.Notes), user)
	if err != nil {
		handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, alert)
}
