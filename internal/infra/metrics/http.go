package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() { register(httpDurationMs) }

var httpDurationMs = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "http_request_duration_ms",
		Help:    "HTTP request latency distribution in milliseconds.",
		Buckets: []float64{5, 10, 25, 50, 100, 200, 400, 800, 1600, 3000},
	},
	[]string{"method", "path", "status"},
)

func ObserveHTTPRequest(method, path, status string, ms float64) {
	httpDurationMs.WithLabelValues(method, path, status).Observe(ms)
}
