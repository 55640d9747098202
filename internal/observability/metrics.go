package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce           sync.Once
	httpRequestsTotal      *prometheus.CounterVec
	httpLatencySeconds     *prometheus.HistogramVec
	httpErrorsTotal        *prometheus.CounterVec
	engineAllocationsTotal *prometheus.CounterVec
	engineShortlistsTotal  *prometheus.CounterVec
	engineWinnersTotal     *prometheus.CounterVec
	engineLatencySeconds   *prometheus.HistogramVec
)

// RegisterMetrics initialises the Prometheus collectors for the API and the
// evaluation engine.
func RegisterMetrics() {
	registerOnce.Do(func() {
		httpRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "hackmate_requests_total",
			Help: "Total number of API requests served.",
		}, []string{"method", "route", "status"})

		httpLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "hackmate_latency_seconds",
			Help:    "Latency distribution for API requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
		}, []string{"method", "route"})

		httpErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "hackmate_errors_total",
			Help: "Total number of error responses returned by the API.",
		}, []string{"method", "route", "status"})

		engineAllocationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "hackmate_engine_allocations_total",
			Help: "Total number of judge allocation runs.",
		}, []string{"mode", "distribution"})

		engineShortlistsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "hackmate_engine_shortlists_total",
			Help: "Total number of shortlist runs.",
		}, []string{"mode"})

		engineWinnersTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "hackmate_engine_winner_resolutions_total",
			Help: "Total number of winner resolution runs.",
		}, []string{"mode"})

		engineLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "hackmate_engine_latency_seconds",
			Help:    "Latency distribution for evaluation engine operations.",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1.0, 2.5, 5.0},
		}, []string{"operation"})

		prometheus.MustRegister(
			httpRequestsTotal,
			httpLatencySeconds,
			httpErrorsTotal,
			engineAllocationsTotal,
			engineShortlistsTotal,
			engineWinnersTotal,
			engineLatencySeconds,
		)
	})
}

// HTTPRequests exposes the counter for API requests.
func HTTPRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return httpRequestsTotal
}

// HTTPLatency exposes the latency histogram for API requests.
func HTTPLatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return httpLatencySeconds
}

// HTTPErrors exposes the counter for API error responses.
func HTTPErrors() *prometheus.CounterVec {
	RegisterMetrics()
	return httpErrorsTotal
}

// EngineAllocations exposes the counter for allocation runs.
func EngineAllocations() *prometheus.CounterVec {
	RegisterMetrics()
	return engineAllocationsTotal
}

// EngineShortlists exposes the counter for shortlist runs.
func EngineShortlists() *prometheus.CounterVec {
	RegisterMetrics()
	return engineShortlistsTotal
}

// EngineWinnerResolutions exposes the counter for winner resolution runs.
func EngineWinnerResolutions() *prometheus.CounterVec {
	RegisterMetrics()
	return engineWinnersTotal
}

// EngineLatency exposes the latency histogram for engine operations.
func EngineLatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return engineLatencySeconds
}
