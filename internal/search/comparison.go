package search

import (
	"fmt"

	"github.com/GoSim-25-26J-441/platform-dse/internal/exploration"
)

// Comparison compares a configuration against a baseline, usually the root
// of the search
type Comparison struct {
	Baseline       string  `json:"baseline"`
	Config         string  `json:"config"`
	ScoreDiff      float64 `json:"score_diff"` // candidate - baseline
	Improvement    bool    `json:"improvement"`
	EnergyDiff     float64 `json:"energy_diff"`
	LatencyDiff    float64 `json:"latency_diff"`
	ThroughputDiff float64 `json:"throughput_diff"`
}

// Compare evaluates both nodes with the objective and reports the deltas
func Compare(baseline, candidate *exploration.Node, objective ObjectiveFunction) (*Comparison, error) {
	if baseline == nil || candidate == nil {
		return nil, fmt.Errorf("both nodes are required")
	}
	if objective == nil {
		return nil, fmt.Errorf("objective function is nil")
	}
	if !baseline.Analyzed {
		return nil, fmt.Errorf("baseline %s is not analyzed", baseline.Config.Name())
	}
	if !candidate.Analyzed {
		return nil, fmt.Errorf("candidate %s is not analyzed", candidate.Config.Name())
	}

	score1, err := objective.Evaluate(baseline.Metrics)
	if err != nil {
		return nil, fmt.Errorf("failed to evaluate objective for baseline: %w", err)
	}
	score2, err := objective.Evaluate(candidate.Metrics)
	if err != nil {
		return nil, fmt.Errorf("failed to evaluate objective for candidate: %w", err)
	}

	// Scores are already oriented so that lower is better
	return &Comparison{
		Baseline:       baseline.Config.Name(),
		Config:         candidate.Config.Name(),
		ScoreDiff:      score2 - score1,
		Improvement:    score2 < score1,
		EnergyDiff:     candidate.Metrics.Energy - baseline.Metrics.Energy,
		LatencyDiff:    candidate.Metrics.AverageLatency - baseline.Metrics.AverageLatency,
		ThroughputDiff: candidate.Metrics.Throughput - baseline.Metrics.Throughput,
	}, nil
}
