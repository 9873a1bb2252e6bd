// Package metrics declares the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RecommendationsTotal counts successful classifications by label.
	RecommendationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rockmass_recommendations_total",
			Help: "Total number of tunneling method recommendations",
		},
		[]string{"method"},
	)

	// InferenceFailuresTotal counts rejected or failed classifications.
	InferenceFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rockmass_inference_failures_total",
			Help: "Total number of failed recommendation requests",
		},
		[]string{"reason"},
	)

	ChartRenderDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "rockmass_chart_render_duration_seconds",
			Help:    "Time spent rendering the stress chart",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		},
		[]string{"format"},
	)

	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rockmass_http_requests_total",
			Help: "Total number of HTTP requests by route and status",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "rockmass_http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route"},
	)

	// ModelInfo is set to 1 for the artifact loaded at startup.
	ModelInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "rockmass_model_info",
			Help: "Loaded model artifact",
		},
		[]string{"estimator", "path", "classes"},
	)
)
