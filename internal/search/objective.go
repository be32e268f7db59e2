package search

import (
	"math"

	"github.com/GoSim-25-26J-441/platform-dse/internal/metrics"
	"github.com/GoSim-25-26J-441/platform-dse/pkg/utils"
)

// ObjectiveFunction evaluates an analyzed configuration and returns a score.
// Winners are ranked by ascending score.
type ObjectiveFunction interface {
	// Evaluate computes the objective value from a configuration's metrics.
	// Metrics the objective cannot rank yield an *InvalidMetricsError.
	Evaluate(m metrics.Result) (float64, error)

	// Name returns the name of the objective function.
	Name() string

	// Direction returns whether the underlying quantity is minimized (true)
	// or maximized (false).
	Direction() bool
}

// ObjectiveType represents the type of objective function
type ObjectiveType string

const (
	// ObjectiveGeometricMean ranks by geomean(1/energy, 1/latency, throughput)
	ObjectiveGeometricMean ObjectiveType = "geomean"
	// ObjectiveEnergy minimizes energy
	ObjectiveEnergy ObjectiveType = "energy"
	// ObjectiveLatency minimizes average iteration latency
	ObjectiveLatency ObjectiveType = "latency"
	// ObjectiveThroughput maximizes throughput
	ObjectiveThroughput ObjectiveType = "throughput"
)

// NewObjectiveFunction creates an objective function from a type string. An
// empty string selects the geometric mean.
func NewObjectiveFunction(objType string) (ObjectiveFunction, error) {
	switch ObjectiveType(objType) {
	case ObjectiveGeometricMean, "":
		return &GeometricMeanObjective{}, nil
	case ObjectiveEnergy:
		return &EnergyObjective{}, nil
	case ObjectiveLatency:
		return &LatencyObjective{}, nil
	case ObjectiveThroughput:
		return &ThroughputObjective{}, nil
	default:
		return nil, &UnknownObjectiveError{ObjectiveType: objType}
	}
}

// Score returns the geometric mean of 1/energy, 1/average latency and
// throughput. It is only meaningful for healthy metrics.
func Score(m metrics.Result) float64 {
	return utils.GeometricMean(1/m.Energy, 1/m.AverageLatency, m.Throughput)
}

// ExportScore is the four-term geometric mean written to result tables; it
// also rewards configurations with fewer nodes.
func ExportScore(nodes int, m metrics.Result) float64 {
	return utils.GeometricMean(1/float64(nodes), 1/m.Energy, 1/m.AverageLatency, m.Throughput)
}

// GeometricMeanObjective ranks by Score
type GeometricMeanObjective struct{}

func (o *GeometricMeanObjective) Name() string {
	return string(ObjectiveGeometricMean)
}

func (o *GeometricMeanObjective) Direction() bool {
	return true
}

func (o *GeometricMeanObjective) Evaluate(m metrics.Result) (float64, error) {
	if !m.Healthy() {
		return 0, &InvalidMetricsError{Reason: "energy and average latency must be positive"}
	}
	score := Score(m)
	if !utils.IsFinite(score) {
		return 0, &InvalidMetricsError{Reason: "score is not finite"}
	}
	return score, nil
}

// EnergyObjective minimizes energy
type EnergyObjective struct{}

func (o *EnergyObjective) Name() string {
	return string(ObjectiveEnergy)
}

func (o *EnergyObjective) Direction() bool {
	return true // minimize
}

func (o *EnergyObjective) Evaluate(m metrics.Result) (float64, error) {
	if m.Energy <= 0 {
		return 0, &InvalidMetricsError{Reason: "energy must be positive"}
	}
	return m.Energy, nil
}

// LatencyObjective minimizes the average iteration latency
type LatencyObjective struct{}

func (o *LatencyObjective) Name() string {
	return string(ObjectiveLatency)
}

func (o *LatencyObjective) Direction() bool {
	return true // minimize
}

func (o *LatencyObjective) Evaluate(m metrics.Result) (float64, error) {
	if m.AverageLatency <= 0 {
		return 0, &InvalidMetricsError{Reason: "no complete iteration"}
	}
	return m.AverageLatency, nil
}

// ThroughputObjective maximizes throughput
type ThroughputObjective struct{}

func (o *ThroughputObjective) Name() string {
	return string(ObjectiveThroughput)
}

func (o *ThroughputObjective) Direction() bool {
	return false // maximize
}

func (o *ThroughputObjective) Evaluate(m metrics.Result) (float64, error) {
	if math.IsNaN(m.Throughput) || m.Throughput < 0 {
		return 0, &InvalidMetricsError{Reason: "throughput is invalid"}
	}
	// Negate for maximization (lower is better)
	return -m.Throughput, nil
}

// UnknownObjectiveError indicates an unknown objective type
type UnknownObjectiveError struct {
	ObjectiveType string
}

func (e *UnknownObjectiveError) Error() string {
	return "unknown objective type: " + e.ObjectiveType
}

// InvalidMetricsError indicates metrics an objective cannot rank
type InvalidMetricsError struct {
	Reason string
}

func (e *InvalidMetricsError) Error() string {
	return "invalid metrics: " + e.Reason
}
