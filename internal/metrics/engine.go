package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Search engine Prometheus metrics.
var (
	EngineRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "museumapi",
			Name:      "engine_requests_total",
			Help:      "Total number of search engine requests",
		},
		[]string{"template", "status"},
	)

	EngineRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "museumapi",
			Name:      "engine_request_duration_seconds",
			Help:      "Search engine request duration in seconds",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"template"},
	)

	EngineHitsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "museumapi",
			Name:      "engine_hits_total",
			Help:      "Total number of documents returned by the search engine",
		},
		[]string{"template"},
	)

	GateRejectionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "museumapi",
			Name:      "gate_rejections_total",
			Help:      "Requests short-circuited by the availability gate",
		},
		[]string{"reason"}, // "busy" / "unavailable"
	)
)

var registerEngineOnce sync.Once

// RegisterEngineMetrics registers the engine and gate metrics with the default registry.
// Safe to call more than once.
func RegisterEngineMetrics() {
	registerEngineOnce.Do(func() {
		prometheus.MustRegister(EngineRequestsTotal)
		prometheus.MustRegister(EngineRequestDuration)
		prometheus.MustRegister(EngineHitsTotal)
		prometheus.MustRegister(GateRejectionsTotal)
	})
}
