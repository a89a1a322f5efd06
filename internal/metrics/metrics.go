// Package metrics exposes Prometheus collectors for the client discovery service.
package metrics

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	discoveryPassesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "discovery_passes_total",
			Help: "Total number of client discovery passes, labeled by format and outcome.",
		},
		[]string{"format", "outcome"},
	)

	discoveryPassDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "discovery_pass_duration_seconds",
			Help:    "Histogram of client discovery pass latencies, labeled by format.",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
		},
		[]string{"format"},
	)

	// Fetch metrics carry no host label: client identifiers come from callers, so a
	// per-host series would grow without bound.
	discoveryFetchesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "discovery_fetches_total",
			Help: "Total number of client document fetches, labeled by status.",
		},
		[]string{"status"},
	)

	discoveryFetchBytesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "discovery_fetch_bytes_total",
			Help: "Total number of client document bytes fetched.",
		},
	)

	rateLimitDelaySeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "discovery_rate_limit_delay_seconds",
			Help:    "Histogram of time spent waiting on the per-host fetch limiter.",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
		},
	)

	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests, labeled by method and code.",
		},
		[]string{"method", "code"},
	)

	httpRequestDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Histogram of HTTP request latencies, labeled by method and route.",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5},
		},
		[]string{"method", "route"},
	)

	once sync.Once
)

// Init registers the collectors with the default Prometheus registry.
// It is safe to call this function multiple times. Observations made before Init are kept.
func Init() {
	once.Do(func() {
		prometheus.MustRegister(
			discoveryPassesTotal,
			discoveryPassDurationSeconds,
			discoveryFetchesTotal,
			discoveryFetchBytesTotal,
			rateLimitDelaySeconds,
			httpRequestsTotal,
			httpRequestDurationSeconds,
		)
	})
}

// Handler returns an http.Handler for exposing Prometheus metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveDiscovery records one completed discovery pass.
func ObserveDiscovery(format, outcome string, duration time.Duration) {
	discoveryPassesTotal.WithLabelValues(format, outcome).Inc()
	discoveryPassDurationSeconds.WithLabelValues(format).Observe(duration.Seconds())
}

// ObserveFetch records one client document fetch. A status of zero means no response.
func ObserveFetch(status int, bytesFetched int) {
	discoveryFetchesTotal.WithLabelValues(fetchStatusLabel(status)).Inc()
	if bytesFetched > 0 {
		discoveryFetchBytesTotal.Add(float64(bytesFetched))
	}
}

// fetchStatusLabel keeps the status label to a fixed set of values.
func fetchStatusLabel(status int) string {
	switch {
	case status == 0:
		return "error"
	case status < 100 || status > 599:
		return "other"
	default:
		return strconv.Itoa(status)
	}
}

// ObserveRateLimitDelay records time a fetch spent waiting for its host's limiter.
func ObserveRateLimitDelay(delay time.Duration) {
	rateLimitDelaySeconds.Observe(delay.Seconds())
}

// ObserveHTTPRequest increments the HTTP request metrics.
func ObserveHTTPRequest(method, route string, code int, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, strconv.Itoa(code)).Inc()
	httpRequestDurationSeconds.WithLabelValues(method, route).Observe(duration.Seconds())
}
