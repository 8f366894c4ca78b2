// Package metrics defines the Prometheus metrics exported by the server.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Projection endpoints, used as the "endpoint" label.
const (
	EndpointProjection = "projection"
	EndpointUpload     = "upload"
	EndpointBatch      = "batch"
	EndpointOptimize   = "optimize"
	EndpointExport     = "export"
)

// Outcomes, used as the "outcome" label.
const (
	OutcomeSuccess = "success"
	OutcomeInvalid = "invalid"
	OutcomeError   = "error"
)

var (
	ProjectionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "property_forecast_projections_total",
			Help: "Total number of projection requests by endpoint and outcome",
		},
		[]string{"endpoint", "outcome"},
	)

	ProjectionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "property_forecast_projection_duration_seconds",
			Help:    "Duration of projection requests in seconds",
			Buckets: prometheus.ExponentialBuckets(0.0005, 2, 14),
		},
		[]string{"endpoint"},
	)

	CacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "property_forecast_cache_lookups_total",
			Help: "Projection cache lookups by result",
		},
		[]string{"result"},
	)

	BatchSize = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "property_forecast_batch_size",
			Help:    "Number of records per batch projection request",
			Buckets: prometheus.LinearBuckets(1, 5, 10),
		},
	)

	ProjectionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "property_forecast_projections_active",
			Help: "Number of projection requests in flight",
		},
	)
)

// Observe records the outcome and duration of a request that started at start.
func Observe(endpoint, outcome string, start time.Time) {
	ProjectionsTotal.WithLabelValues(endpoint, outcome).Inc()
	ProjectionDuration.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
}

// CacheLookup records a cache hit or miss.
func CacheLookup(hit bool) {
	if hit {
		CacheLookups.WithLabelValues("hit").Inc()
		return
	}
	CacheLookups.WithLabelValues("miss").Inc()
}
