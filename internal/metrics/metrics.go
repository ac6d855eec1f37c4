package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "schooladmin"

var (
	HTTPRequests = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace, Name: "http_request_duration_seconds", Help: "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "status"})
	DBQueries = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace, Name: "db_query_duration_seconds", Help: "Database call latency",
		Buckets: []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25, 1},
	}, []string{"op"})
	LoginAttempts = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace, Name: "login_attempts_total", Help: "Admin login attempts by outcome",
	}, []string{"outcome"})
	SectionMutations = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace, Name: "section_mutations_total", Help: "Section writes by operation and outcome",
	}, []string{"op", "outcome"})
	ArchiveExports = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace, Name: "archive_exports_total", Help: "Archived school years exported to XLSX",
	})
)

func init() {
	prometheus.MustRegister(HTTPRequests, DBQueries, LoginAttempts, SectionMutations, ArchiveExports)
}

// Handler serves the default registry.
func Handler() http.Handler { return promhttp.Handler() }

// ObserveRequest records one HTTP request.
func ObserveRequest(method string, status int, d time.Duration) {
	HTTPRequests.WithLabelValues(method, statusClass(status)).Observe(d.Seconds())
}

// ObserveQuery records one database call.
func ObserveQuery(op string, d time.Duration) {
	DBQueries.WithLabelValues(op).Observe(d.Seconds())
}

// SectionMutation counts a section write. outcome is "ok" or an error class.
func SectionMutation(op, outcome string) {
	SectionMutations.WithLabelValues(op, outcome).Inc()
}

// LoginAttempt counts a login attempt by outcome.
func LoginAttempt(outcome string) {
	LoginAttempts.WithLabelValues(outcome).Inc()
}

func statusClass(code int) string {
	switch {
	case code >= 500:
		return "5xx"
	case code >= 400:
		return "4xx"
	case code >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}
