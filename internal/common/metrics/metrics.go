// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	SearchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lookup_searches_total",
			Help: "Total number of prospect searches by result source",
		},
		[]string{"source"},
	)

	CacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lookup_cache_lookups_total",
			Help: "Result cache lookups by outcome",
		},
		[]string{"outcome"},
	)

	VendorCalls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lookup_vendor_calls_total",
			Help: "Outbound vendor API calls by vendor and status",
		},
		[]string{"vendor", "status"},
	)

	EnrichmentFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lookup_enrichment_failures_total",
			Help: "Secondary enrichment calls that degraded to placeholders",
		},
		[]string{"source"},
	)

	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "lookup_request_duration_seconds",
			Help: "Duration of HTTP request handling in seconds",
		},
		[]string{"route", "status"},
	)
)
