// Package metrics provides Prometheus metrics for the TOQM router.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the TOQM router.
type Metrics struct {
	// Circuit metrics
	CircuitsRouted *prometheus.CounterVec
	CircuitsFailed *prometheus.CounterVec

	// Gate metrics
	GatesRouted   *prometheus.CounterVec
	SwapsInserted *prometheus.CounterVec

	// Timing metrics
	RouteDuration     *prometheus.HistogramVec
	TableBuildSeconds prometheus.Histogram

	// Search metrics
	SearchNodesPopped  *prometheus.CounterVec
	ScheduleDepth      *prometheus.HistogramVec
	StrategyFallbacks  *prometheus.CounterVec
	AttemptsPerCircuit *prometheus.HistogramVec
}

// Config holds metrics configuration.
type Config struct {
	Enabled bool
	Address string // Address for metrics HTTP server (e.g., ":9090")
}

var defaultMetrics *Metrics

// Init initializes the metrics package with global metrics.
// Call this once at startup.
func Init(namespace string) *Metrics {
	if namespace == "" {
		namespace = "toqm"
	}

	m := &Metrics{
		CircuitsRouted: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "circuits_routed_total",
				Help:      "Total number of circuits routed successfully",
			},
			[]string{"strategy"},
		),
		CircuitsFailed: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "circuits_failed_total",
				Help:      "Total number of circuits that failed routing",
			},
			[]string{"strategy", "reason"},
		),
		GatesRouted: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "gates_routed_total",
				Help:      "Total number of input gates routed",
			},
			[]string{"strategy"},
		),
		SwapsInserted: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "swaps_inserted_total",
				Help:      "Total number of exchange operations inserted",
			},
			[]string{"strategy"},
		),
		RouteDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "route_duration_seconds",
				Help:      "Wall time to route a circuit",
				Buckets:   prometheus.ExponentialBuckets(0.001, 2, 14), // 1ms to ~16s
			},
			[]string{"strategy"},
		),
		TableBuildSeconds: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "table_build_duration_seconds",
				Help:      "Time to build a cycle-cost table from a device profile",
				Buckets:   prometheus.ExponentialBuckets(0.0001, 2, 12), // 0.1ms to ~400ms
			},
		),
		SearchNodesPopped: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "search_nodes_popped_total",
				Help:      "Total number of search nodes popped by the mapper",
			},
			[]string{"strategy"},
		),
		ScheduleDepth: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "schedule_depth_cycles",
				Help:      "Depth in cycles of produced schedules",
				Buckets:   prometheus.ExponentialBuckets(2, 2, 12), // 2 to ~8k cycles
			},
			[]string{"strategy"},
		),
		StrategyFallbacks: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "strategy_fallbacks_total",
				Help:      "Total number of attempts abandoned in favor of a fallback",
			},
			[]string{"strategy", "attempt"},
		),
		AttemptsPerCircuit: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "attempts_per_circuit",
				Help:      "Number of mapper attempts needed per circuit",
				Buckets:   []float64{1, 2, 3, 4},
			},
			[]string{"strategy"},
		),
	}

	defaultMetrics = m
	return m
}

// Get returns the global metrics instance.
// Returns nil if Init has not been called.
func Get() *Metrics {
	return defaultMetrics
}

// StartServer starts an HTTP server for Prometheus metrics scraping.
// Blocks until the server exits.
func StartServer(address string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	return http.ListenAndServe(address, mux)
}

// Labels is a convenience type for metric labels.
type Labels struct {
	Strategy string
	Attempt  string
	Reason   string
}

// IncCircuitsRouted increments the circuits routed counter.
func (m *Metrics) IncCircuitsRouted(l Labels) {
	m.CircuitsRouted.WithLabelValues(l.Strategy).Inc()
}

// IncCircuitsFailed increments the circuits failed counter.
func (m *Metrics) IncCircuitsFailed(l Labels) {
	m.CircuitsFailed.WithLabelValues(l.Strategy, l.Reason).Inc()
}

// AddGatesRouted adds to the gates routed counter.
func (m *Metrics) AddGatesRouted(l Labels, count float64) {
	m.GatesRouted.WithLabelValues(l.Strategy).Add(count)
}

// AddSwapsInserted adds to the exchange insertion counter.
func (m *Metrics) AddSwapsInserted(l Labels, count float64) {
	m.SwapsInserted.WithLabelValues(l.Strategy).Add(count)
}

// ObserveRouteDuration records the routing wall time.
func (m *Metrics) ObserveRouteDuration(l Labels, seconds float64) {
	m.RouteDuration.WithLabelValues(l.Strategy).Observe(seconds)
}

// ObserveTableBuild records the cost-table build time.
func (m *Metrics) ObserveTableBuild(seconds float64) {
	m.TableBuildSeconds.Observe(seconds)
}

// AddSearchNodesPopped adds to the popped node counter.
func (m *Metrics) AddSearchNodesPopped(l Labels, count float64) {
	m.SearchNodesPopped.WithLabelValues(l.Strategy).Add(count)
}

// ObserveScheduleDepth records the produced schedule depth.
func (m *Metrics) ObserveScheduleDepth(l Labels, cycles float64) {
	m.ScheduleDepth.WithLabelValues(l.Strategy).Observe(cycles)
}

// IncStrategyFallbacks increments the fallback counter.
func (m *Metrics) IncStrategyFallbacks(l Labels) {
	m.StrategyFallbacks.WithLabelValues(l.Strategy, l.Attempt).Inc()
}

// ObserveAttempts records the number of attempts used for a circuit.
func (m *Metrics) ObserveAttempts(l Labels, attempts float64) {
	m.AttemptsPerCircuit.WithLabelValues(l.Strategy).Observe(attempts)
}
