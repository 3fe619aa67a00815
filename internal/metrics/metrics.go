// Package metrics holds the Prometheus collectors of the console.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "user_console"

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests.",
	}, []string{"method", "route", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "Duration of HTTP requests.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route"})

	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "async_requests_total",
		Help:      "Finished user queries and mutations by outcome.",
	}, []string{"kind", "result"})

	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "async_request_duration_seconds",
		Help:      "Time from start to outcome of user queries and mutations.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"kind"})

	cacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "user_cache_lookups_total",
		Help:      "User cache lookups by result.",
	}, []string{"result"})

	rateLimited = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "rate_limited_requests_total",
		Help:      "Requests rejected by the rate limiter.",
	})

	pendingSubmissions = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "pending_submissions",
		Help:      "Submissions parked while their mutation is in flight.",
	})
)

// ObserveHTTPRequest records one served HTTP request.
func ObserveHTTPRequest(method, route, status string, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, route, status).Inc()
	httpRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// ObserveRequest records the outcome of an async query or mutation. kind is
// "query" or "mutation", result is "success" or "error".
func ObserveRequest(kind, result string, duration time.Duration) {
	requestsTotal.WithLabelValues(kind, result).Inc()
	requestDuration.WithLabelValues(kind).Observe(duration.Seconds())
}

// ObserveCacheLookup records a cache "hit", "miss" or "error".
func ObserveCacheLookup(result string) {
	cacheLookups.WithLabelValues(result).Inc()
}

// IncRateLimited counts one rejected request.
func IncRateLimited() {
	rateLimited.Inc()
}

// SetPendingSubmissions reports the size of the submission store.
func SetPendingSubmissions(n int) {
	pendingSubmissions.Set(float64(n))
}
