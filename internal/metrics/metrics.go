// Package metrics defines the Prometheus metrics exported by the admin and
// quoting endpoints. Metrics register with the default registry on import.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "htg"

// RequestsTotal counts handled requests.
// Labels:
//   - endpoint: route name (e.g. "create-user", "screen-print")
//   - status: HTTP status code returned
var RequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "requests_total",
		Help:      "Total number of handled requests by endpoint and status.",
	},
	[]string{"endpoint", "status"},
)

// RequestDuration measures end-to-end handling time per endpoint
var RequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "request_duration_seconds",
		Help:      "Duration of request handling from method check to response.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"endpoint"},
)

// IdentityCallsTotal counts calls to the identity provider.
// Labels:
//   - operation: "verify_token", "create_account", ...
//   - outcome: "ok", "rejected" (4xx) or "error" (transport or 5xx)
var IdentityCallsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "identity_calls_total",
		Help:      "Total number of identity provider calls by operation and outcome.",
	},
	[]string{"operation", "outcome"},
)

// PricingResolutionsTotal counts pricing lookups by outcome
// ("match", "no_match", "multiple_matches", "invalid_input", "db_error").
var PricingResolutionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "pricing_resolutions_total",
		Help:      "Total number of pricing lookups by outcome.",
	},
	[]string{"outcome"},
)

// AdminCleanupFailuresTotal counts admin records left behind after an account deletion
var AdminCleanupFailuresTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "admin_cleanup_failures_total",
		Help:      "Admin records that could not be removed after deleting their account.",
	},
)

// ReconcileRemovedTotal counts orphaned admin records removed by the reconciliation sweep
var ReconcileRemovedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "reconcile_removed_total",
		Help:      "Orphaned admin records removed by the reconciliation sweep.",
	},
)

// ObserveRequest records one handled request
func ObserveRequest(endpoint string, status int, started time.Time) {
	RequestsTotal.WithLabelValues(endpoint, strconv.Itoa(status)).Inc()
	RequestDuration.WithLabelValues(endpoint).Observe(time.Since(started).Seconds())
}

// Handler exposes the default registry
func Handler() http.Handler {
	return promhttp.Handler()
}
