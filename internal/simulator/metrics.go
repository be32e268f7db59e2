package simulator

import "github.com/prometheus/client_golang/prometheus"

const (
	outcomeOK      = "ok"
	outcomeFailed  = "failed"
	outcomeSkipped = "skipped"
	outcomeError   = "error"
)

var (
	simulationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dse_simulations_total",
			Help: "Simulations by outcome (ok, failed, skipped, error)",
		},
		[]string{"outcome"},
	)

	simulationDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "dse_simulation_duration_seconds",
			Help:    "Wall-clock duration of simulator processes",
			Buckets: prometheus.ExponentialBuckets(0.5, 2, 12),
		},
	)

	activeSimulations = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "dse_active_simulations",
			Help: "Simulator processes currently running",
		},
	)
)

// Collectors returns the package's Prometheus collectors for registration
func Collectors() []prometheus.Collector {
	return []prometheus.Collector{simulationsTotal, simulationDuration, activeSimulations}
}
