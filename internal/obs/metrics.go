package obs

import (
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpInFlight = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "http_in_flight_requests",
		Help: "In-flight HTTP requests.",
	})

	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latencies in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	claimsCreatedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "claims_created_total",
			Help: "Claims accepted for intake, by assigned risk level.",
		},
		[]string{"risk_level"},
	)

	fraudAlertsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fraud_alerts_raised_total",
			Help: "Fraud alerts raised, by severity.",
		},
		[]string{"severity"},
	)

	claimStatusUpdatesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "claim_status_updates_total",
			Help: "Claim status transitions, by new status.",
		},
		[]string{"status"},
	)
)

var initOnce sync.Once

// Init registers all service metrics in the default registry.
func Init() {
	initOnce.Do(func() {
		prometheus.MustRegister(
			httpInFlight,
			httpRequestsTotal,
			httpRequestDuration,
			claimsCreatedTotal,
			fraudAlertsTotal,
			claimStatusUpdatesTotal,
		)
	})
}

// Handler exposes the Prometheus scrape endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveClaimCreated counts an accepted claim under its risk level.
func ObserveClaimCreated(riskLevel string) {
	claimsCreatedTotal.WithLabelValues(riskLevel).Inc()
}

// ObserveAlertRaised counts a raised fraud alert under its severity.
func ObserveAlertRaised(severity string) {
	fraudAlertsTotal.WithLabelValues(severity).Inc()
}

// ObserveStatusUpdate counts a claim status transition.
func ObserveStatusUpdate(status string) {
	claimStatusUpdatesTotal.WithLabelValues(status).Inc()
}

// CanonicalPath collapses resource identifiers so metric label cardinality
// stays bounded.
func CanonicalPath(path string) string {
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	if path == "" {
		return "/"
	}
	for _, prefix := range []string{"/v1/claims/", "/v1/alerts/"} {
		if rest, ok := strings.CutPrefix(path, prefix); ok {
			switch {
			case rest == "":
				return path
			case strings.HasSuffix(rest, "/status") && strings.Count(rest, "/") == 1:
				return prefix + ":id/status"
			case strings.HasSuffix(rest, "/flag") && strings.Count(rest, "/") == 1:
				return prefix + ":id/flag"
			case strings.HasSuffix(rest, "/resolve") && strings.Count(rest, "/") == 1:
				return prefix + ":id/resolve"
			case !strings.Contains(rest, "/"):
				return prefix + ":id"
			}
		}
	}
	return path
}

// Instrument wraps a handler to measure request counts, latency, and
// in-flight requests.
func Instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := CanonicalPath(r.URL.Path)
		method := r.Method

		httpInFlight.Inc()
		start := time.Now()

		sw := &statusWriter{ResponseWriter: w, code: 200}
		next.ServeHTTP(sw, r)

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(sw.code)

		httpRequestDuration.WithLabelValues(method, path, status).Observe(duration)
		httpRequestsTotal.WithLabelValues(method, path, status).Inc()
		httpInFlight.Dec()
	})
}

type statusWriter struct {
	http.ResponseWriter
	code int
}

func (w *statusWriter) WriteHeader(code int) {
	w.code = code
	w.ResponseWriter.WriteHeader(code)
}
