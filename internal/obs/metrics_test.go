package obs

import "testing"

func TestCanonicalPath(t *testing.T) {
	cases := map[string]string{
		"":                             "/",
		"/metrics":                     "/metrics",
		"/v1/claims":                   "/v1/claims",
		"/v1/claims/CLM001":            "/v1/claims/:id",
		"/v1/claims/CLM001/status":     "/v1/claims/:id/status",
		"/v1/claims/CLM001/flag":       "/v1/claims/:id/flag",
		"/v1/claims/CLM001/extra/deep": "/v1/claims/CLM001/extra/deep",
		"/v1/alerts/ALT001":            "/v1/alerts/:id",
		"/v1/alerts/ALT001/resolve":    "/v1/alerts/:id/resolve",
		"/v1/claims?status=pending":    "/v1/claims",
		"/v1/claims/CLM001?risk=high":  "/v1/claims/:id",
		"/v1/dashboard/metrics":        "/v1/dashboard/metrics",
	}
	for input, expected := range cases {
		if got := CanonicalPath(input); got != expected {
			t.Fatalf("CanonicalPath(%q)=%q, want %q", input, got, expected)
		}
	}
}
