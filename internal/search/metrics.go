package search

import "github.com/prometheus/client_golang/prometheus"

var (
	searchRound = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "dse_search_round",
			Help: "Index of the round currently being explored",
		},
	)

	frontierSize = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "dse_frontier_size",
			Help: "Configurations generated by the current round",
		},
	)

	testedConfigurations = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "dse_tested_configurations",
			Help: "Configurations tested by the running search",
		},
	)

	searchBestScore = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "dse_best_score",
			Help: "Best objective score found so far (lower is better)",
		},
	)

	configurationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dse_configurations_total",
			Help: "Evaluated configurations by result (success, error)",
		},
		[]string{"result"},
	)
)

// Collectors returns the package's Prometheus collectors for registration
func Collectors() []prometheus.Collector {
	return []prometheus.Collector{searchRound, frontierSize, testedConfigurations, searchBestScore, configurationsTotal}
}
