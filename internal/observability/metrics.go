package observability

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Authorization layers
const (
	LayerGate    = "gate"
	LayerHandler = "handler"
)

// Authorization outcomes
const (
	OutcomeAllowed       = "allowed"
	OutcomeUnauthorized  = "unauthorized"
	OutcomeForbidden     = "forbidden"
	OutcomeRedirected    = "redirected"
	OutcomeReaderFailure = "reader_error"
)

var (
	authDecisionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "storefront",
		Name:      "auth_decisions_total",
		Help:      "Authorization decisions by layer and outcome",
	}, []string{"layer", "outcome"})

	signInsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "storefront",
		Name:      "sign_ins_total",
		Help:      "Sign-in attempts by method and result",
	}, []string{"method", "result"})

	adminActionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "storefront",
		Name:      "admin_actions_total",
		Help:      "Back-office mutations by action",
	}, []string{"action"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "storefront",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latencies by route pattern",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route", "status"})
)

// RecordAuthDecision counts one authorization decision
func RecordAuthDecision(layer, outcome string) {
	authDecisionsTotal.WithLabelValues(layer, outcome).Inc()
}

// RecordSignIn counts one sign-in attempt. method is credentials or google;
// result is success, failure or error.
func RecordSignIn(method, result string) {
	signInsTotal.WithLabelValues(method, result).Inc()
}

// RecordAdminAction counts one successful admin mutation
func RecordAdminAction(action string) {
	adminActionsTotal.WithLabelValues(action).Inc()
}

// ObserveHTTPRequest records one request. route must be a route pattern,
// never a raw path.
func ObserveHTTPRequest(method, route string, status int, d time.Duration) {
	httpRequestDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(d.Seconds())
}
