package metrics

import (
	"regexp"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// RequestDuration tracks HTTP request duration in seconds by method, path, status.
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	// RequestTotal counts HTTP requests by method, path, status.
	RequestTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// UsersCreatedTotal counts successful registrations.
	UsersCreatedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "users_created_total",
			Help: "Total number of users created",
		},
	)

	// TokensIssuedTotal counts bearer tokens handed out by GET /token.
	TokensIssuedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "tokens_issued_total",
			Help: "Total number of auth tokens issued",
		},
	)

	// AuthFailuresTotal counts rejected requests on protected routes by scheme (basic, bearer, none, other).
	AuthFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_failures_total",
			Help: "Total number of failed authentication attempts",
		},
		[]string{"scheme"},
	)

	// UsersRegistered is the number of users in the store, refreshed on a schedule.
	UsersRegistered = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "users_registered",
			Help: "Number of registered users",
		},
	)
)

var numericPathSegment = regexp.MustCompile(`/[0-9]+(/|$)`)

func init() {
	prometheus.MustRegister(
		RequestDuration, RequestTotal,
		UsersCreatedTotal, TokensIssuedTotal, AuthFailuresTotal, UsersRegistered,
	)
}

// NormalizePath reduces cardinality by replacing numeric path segments with {id}.
// E.g. /users/123 -> /users/{id}.
func NormalizePath(path string) string {
	return numericPathSegment.ReplaceAllString(path, "/{id}$1")
}

// RecordRequest records duration and count for an HTTP request. Call from middleware with method, path, statusCode, duration.
func RecordRequest(method, path string, statusCode int, durationSeconds float64) {
	path = NormalizePath(path)
	status := strconv.Itoa(statusCode)
	RequestDuration.WithLabelValues(method, path, status).Observe(durationSeconds)
	RequestTotal.WithLabelValues(method, path, status).Inc()
}

func IncUsersCreated() {
	UsersCreatedTotal.Inc()
}

func IncTokensIssued() {
	TokensIssuedTotal.Inc()
}

// IncAuthFailures increments the failure counter for scheme ("basic", "bearer", "none" or "other").
func IncAuthFailures(scheme string) {
	AuthFailuresTotal.WithLabelValues(scheme).Inc()
}

func SetUsersRegistered(n int) {
	UsersRegistered.Set(float64(n))
}
