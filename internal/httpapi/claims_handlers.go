package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"claimspring.org/internal/access"
	"claimspring.org/internal/auth"
	"claimspring.org/internal/claims"
	"claimspring.org/internal/fraud"
)

type createClaimRequest struct {
	PatientID    string  `json:"patient_id"`
	ProviderID   string  `json:"provider_id"`
	PatientName  string  `json:"patient_name"`
	ProviderName string  `json:"provider_name"`
	Amount       float64 `json:"amount"`
	Date         string  `json:"date"`
	Description  string  `json:"description"`
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

type flagClaimRequest struct {
	Reason string `json:"reason"`
}

type listClaimsResponse struct {
	Items []*claims.Claim `json:"items"`
	Total int             `json:"total"`
	Skip  int             `json:"skip"`
	Limit int             `json:"limit"`
}

func (a *API) handleClaimsCollection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		a.listClaims(w, r)
	case http.MethodPost:
		a.createClaim(w, r)
	default:
		methodNotAllowed(w, http.MethodGet, http.MethodPost)
	}
}

func (a *API) handleClaimResource(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/v1/claims/")
	if path == "" {
		writeError(w, http.StatusNotFound, "claim not found")
		return
	}

	if id, ok := strings.CutSuffix(path, "/status"); ok {
		if r.Method != http.MethodPut {
			methodNotAllowed(w, http.MethodPut)
			return
		}
		a.updateClaimStatus(w, r, id)
		return
	}
	if id, ok := strings.CutSuffix(path, "/flag"); ok {
		if r.Method != http.MethodPost {
			methodNotAllowed(w, http.MethodPost)
			return
		}
		a.flagClaim(w, r, id)
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
	a.getClaim(w, r, path)
}

func (a *API) createClaim(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req createClaimRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(req.PatientName) == "" || strings.TrimSpace(req.ProviderName) == "" {
		writeError(w, http.StatusBadRequest, "patient_name and provider_name are required")
		return
	}
	serviceDate, err := parseDate(req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	claim, err := a.claims.Create(r.Context(), claims.CreateInput{
		PatientID:    strings.TrimSpace(req.PatientID),
		ProviderID:   strings.TrimSpace(req.ProviderID),
		PatientName:  strings.TrimSpace(req.PatientName),
		ProviderName: strings.TrimSpace(req.ProviderName),
		Amount:       req.Amount,
		ServiceDate:  serviceDate,
		Description:  req.Description,
	}, user)
	if err != nil {
		handleDomainError(w, err)
		return
	}

	w.Header().Set("Location", "/v1/claims/"+claim.ID)
	writeJSON(w, http.StatusCreated, claim)
}

func (a *API) getClaim(w http.ResponseWriter, r *http.Request, id string) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}
	claim, err := a.claims.Get(r.Context(), id, user)
	if err != nil {
		handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, claim)
}

func (a *API) listClaims(w http.ResponseWriter, r *http.Request) {
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

	filter := claims.ListFilter{
		Status:    claims.Status(strings.TrimSpace(q.Get("status"))),
		RiskLevel: claims.RiskLevel(strings.TrimSpace(q.Get("risk_level"))),
		Skip:      skip,
		Limit:     limit,
	}

	items, err := a.claims.List(r.Context(), filter, user)
	if err != nil {
		handleDomainError(w, err)
		return
	}
	total, err := a.claims.Count(r.Context(), claims.ListFilter{
		Status:    filter.Status,
		RiskLevel: filter.RiskLevel,
	}, user)
	if err != nil {
		handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, listClaimsResponse{
		Items: items,
		Total: total,
		Skip:  skip,
		Limit: limit,
	})
}

func (a *API) updateClaimStatus(w http.ResponseWriter, r *http.Request, id string) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req updateStatusRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	claim, err := a.claims.UpdateStatus(r.Context(), id, claims.Status(req.Status), user)
	if err != nil {
		handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, claim)
}

func (a *API) flagClaim(w http.ResponseWriter, r *http.Request, id string) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req flagClaimRequest
	if err := decodeJSON(w, r, &req); err != nil && !errors.Is(err, errEmptyBody) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	claim, err := a.claims.Flag(r.Context(), id, strings.TrimSpace(req.Reason), user)
	if err != nil {
		handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, claim)
}

// --- helpers ---

var errEmptyBody = errors.New("request body is required")

func parseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, errors.New("date is required")
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, errors.New("date must be RFC 3339 or YYYY-MM-DD")
	}
	return t, nil
}

func parseNonNegativeInt(raw string, def int) (int, error) {
	if strings.TrimSpace(raw) == "" {
		return def, nil
	}
	val, err := strconv.Atoi(raw)
	if err != nil || val < 0 {
		return 0, errors.New("must be a non-negative integer")
	}
	return val, nil
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	reader := http.MaxBytesReader(w, r.Body, 1<<20)
	defer reader.Close()
	dec := json.NewDecoder(reader)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return errEmptyBody
		}
		return err
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		if err == nil {
			return errors.New("unexpected data after JSON body")
		}
		return err
	}
	return nil
}

func handleDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, claims.ErrInvalidAmount),
		errors.Is(err, claims.ErrFutureDate),
		errors.Is(err, claims.ErrInvalidStatus),
		errors.Is(err, claims.ErrInvalidRisk),
		errors.Is(err, claims.ErrInvalidFilter),
		errors.Is(err, fraud.ErrInvalidFilter):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, access.ErrForbidden):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, claims.ErrNotFound), errors.Is(err, fraud.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, fraud.ErrAlreadyResolved):
		writeError(w, http.StatusConflict, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]any{
		"error": msg,
	})
}

func methodNotAllowed(w http.ResponseWriter, allowed ...string) {
	w.Header().Set("Allow", strings.Join(allowed, ", "))
	writeError(w, http.StatusMethodNotAllowed, "method not allowed")
}
