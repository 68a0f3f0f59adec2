// internal/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTPServerHandlingSeconds is a histogram for HTTP request latencies
	HTTPServerHandlingSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_server_handling_seconds",
			Help:    "Histogram of response latency (seconds) of HTTP requests handled by the server.",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path", "code"},
	)

	// WindowObservations is a histogram for observation counts per request window
	WindowObservations = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "forecast_window_observations",
			Help:    "Histogram of observation counts in submitted data windows.",
			Buckets: []float64{1, 8, 16, 32, 64, 128, 256, 512, 1024},
		},
	)

	// DroppedObservations counts observations discarded during normalization
	DroppedObservations = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "forecast_dropped_observations_total",
			Help: "Total observations dropped from windows because their value was not numeric.",
		},
	)

	// InferenceLatencySeconds is a histogram for pipeline (inference) latency
	InferenceLatencySeconds = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "inference_latency_seconds",
			Help:    "Histogram of forecast pipeline latency (seconds) excluding HTTP overhead.",
			Buckets: []float64{.0001, .0005, .001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
	)

	// CacheHits counts forecast responses served from the result cache
	CacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "forecast_cache_hits_total",
			Help: "Total forecast responses served from the result cache.",
		},
	)

	// HealthStatus is a gauge indicating the health status of the service
	HealthStatus = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "health_status",
			Help: "Health status of the service (1 = healthy, 0 = unhealthy).",
		},
	)
)

// RecordHTTPLatency records the latency of an HTTP request
func RecordHTTPLatency(method, path, code string, seconds float64) {
	HTTPServerHandlingSeconds.WithLabelValues(method, path, code).Observe(seconds)
}

// RecordWindowSize records the observation count of a submitted window
func RecordWindowSize(size int) {
	WindowObservations.Observe(float64(size))
}

// AddDroppedObservations adds to the dropped observation counter
func AddDroppedObservations(n int) {
	if n > 0 {
		DroppedObservations.Add(float64(n))
	}
}

// RecordInferenceLatency records the latency of a pipeline invocation
func RecordInferenceLatency(seconds float64) {
	InferenceLatencySeconds.Observe(seconds)
}

// RecordCacheHit increments the cache hit counter
func RecordCacheHit() {
	CacheHits.Inc()
}

// SetHealthy sets the health status to healthy
func SetHealthy() {
	HealthStatus.Set(1)
}

// SetUnhealthy sets the health status to unhealthy
func SetUnhealthy() {
	HealthStatus.Set(0)
}
