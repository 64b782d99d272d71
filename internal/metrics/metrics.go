package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ExternalCalls counts calls to external collaborators by service and outcome.
	ExternalCalls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "iconsmith_external_calls_total",
			Help: "Total number of calls to external services",
		},
		[]string{"service", "outcome"},
	)
	// ExternalLatency is the latency of external calls.
	ExternalLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "iconsmith_external_call_duration_seconds",
			Help:    "External call latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"service"},
	)
	// SearchPages counts icon search pages fetched.
	SearchPages = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "iconsmith_search_pages_total",
			Help: "Icon search pages fetched",
		},
		[]string{"page", "outcome"},
	)
	// Evictions counts capacity evictions by entity kind.
	Evictions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "iconsmith_evictions_total",
			Help: "Entities deleted to enforce capacity bounds",
		},
		[]string{"kind"},
	)
	// ColorResolutions counts which resolver stage produced a color.
	ColorResolutions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "iconsmith_color_resolutions_total",
			Help: "Color resolutions by resolver stage",
		},
		[]string{"stage"},
	)
	// RefineRequests counts refinement requests by intent path.
	RefineRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "iconsmith_refine_requests_total",
			Help: "Refinement queries by classified path",
		},
		[]string{"path"},
	)
)

// ObserveExternal records one external call.
func ObserveExternal(service string, started time.Time, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	ExternalCalls.WithLabelValues(service, outcome).Inc()
	ExternalLatency.WithLabelValues(service).Observe(time.Since(started).Seconds())
}
