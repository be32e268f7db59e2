package metrics

import "fmt"

// Result holds the scalar metrics of one analyzed configuration
type Result struct {
	Energy         float64 `json:"energy"`
	AverageLatency float64 `json:"avg_latency"`
	Throughput     float64 `json:"throughput"`
	Iterations     int     `json:"iterations"`
}

// Healthy reports whether the result can be ranked. A zero energy or latency
// would divide by zero in every score.
func (r Result) Healthy() bool {
	return r.Energy > 0 && r.AverageLatency > 0
}

func (r Result) String() string {
	return fmt.Sprintf("energy=%g latency=%g throughput=%g", r.Energy, r.AverageLatency, r.Throughput)
}

// Aggregate turns a power trace and a timing aggregate into a Result
func Aggregate(power *PowerTrace, timing *Timing, horizon float64) (Result, error) {
	energy, err := power.Energy(horizon)
	if err != nil {
		return Result{}, err
	}
	return Result{
		Energy:         energy,
		AverageLatency: timing.AverageLatency(),
		Throughput:     timing.Throughput(),
		Iterations:     timing.Iterations(),
	}, nil
}
