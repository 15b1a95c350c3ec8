// File: internal/infra/metrics/metrics.go
package metrics

import (
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func init() { register(apiRequestsTotal, apiRequestLatencyMs) }

var (
	apiRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "composite_api_requests_total",
			Help: "Composite service requests by operation and HTTP status code (0 = transport error).",
		},
		[]string{"op", "code"},
	)

	apiRequestLatencyMs = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "composite_api_request_latency_ms",
			Help:    "Composite service request latency in milliseconds.",
			Buckets: []float64{10, 25, 50, 100, 200, 400, 800, 1600, 3000, 5000},
		},
		[]string{"op"},
	)
)

func norm(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

// ObserveAPIRequest records one composite service round trip.
func ObserveAPIRequest(op string, code int, d time.Duration) {
	apiRequestsTotal.WithLabelValues(norm(op), strconv.Itoa(code)).Inc()
	apiRequestLatencyMs.WithLabelValues(norm(op)).Observe(float64(d / time.Millisecond))
}
