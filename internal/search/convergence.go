package search

import (
	"fmt"
	"math"

	"github.com/GoSim-25-26J-441/platform-dse/pkg/config"
	"github.com/GoSim-25-26J-441/platform-dse/pkg/utils"
)

// RoundStep records the best score reached by one search round. BestScore
// is NaN when no winner of the round could be ranked.
type RoundStep struct {
	Round     int
	BestScore float64
}

// ConvergenceStrategy defines how to detect convergence
type ConvergenceStrategy interface {
	// CheckConvergence checks if the search has converged based on history
	CheckConvergence(history []RoundStep) (bool, string)
	// Name returns the name of the convergence strategy
	Name() string
}

// ConvergenceConfig holds configuration for convergence detection
type ConvergenceConfig struct {
	// NoImprovementRounds is the number of rounds without improvement before stopping
	NoImprovementRounds int
	// PlateauRounds is the number of recent rounds whose scores must lie within Tolerance
	PlateauRounds int
	// Tolerance is the absolute score difference still considered equal
	Tolerance float64
	// MinRounds is the minimum number of rounds before convergence can be detected
	MinRounds int
}

// DefaultConvergenceConfig returns a default convergence configuration
func DefaultConvergenceConfig() *ConvergenceConfig {
	return &ConvergenceConfig{
		NoImprovementRounds: 3,
		PlateauRounds:       3,
		Tolerance:           1e-9,
		MinRounds:           2,
	}
}

// NewConvergenceStrategy builds the strategy selected in the search
// settings. A nil setting disables early stopping and returns nil.
func NewConvergenceStrategy(c *config.Convergence) (ConvergenceStrategy, error) {
	if c == nil {
		return nil, nil
	}
	cfg := DefaultConvergenceConfig()
	if c.NoImprovementRounds > 0 {
		cfg.NoImprovementRounds = c.NoImprovementRounds
	}
	if c.PlateauRounds > 0 {
		cfg.PlateauRounds = c.PlateauRounds
	}
	if c.Tolerance > 0 {
		cfg.Tolerance = c.Tolerance
	}

	switch c.Strategy {
	case "no_improvement":
		return NewNoImprovementStrategy(cfg), nil
	case "plateau":
		return NewPlateauStrategy(cfg), nil
	case "combined":
		return NewCombinedStrategy(NewNoImprovementStrategy(cfg), NewPlateauStrategy(cfg)), nil
	default:
		return nil, fmt.Errorf("unknown convergence strategy: %s", c.Strategy)
	}
}

// scored drops rounds without a ranked winner
func scored(history []RoundStep) []RoundStep {
	out := make([]RoundStep, 0, len(history))
	for _, s := range history {
		if utils.IsFinite(s.BestScore) {
			out = append(out, s)
		}
	}
	return out
}

// NoImprovementStrategy detects convergence when the best score has not
// improved for N rounds
type NoImprovementStrategy struct {
	config *ConvergenceConfig
}

// NewNoImprovementStrategy creates a new no-improvement convergence strategy
func NewNoImprovementStrategy(config *ConvergenceConfig) *NoImprovementStrategy {
	if config == nil {
		config = DefaultConvergenceConfig()
	}
	return &NoImprovementStrategy{config: config}
}

func (s *NoImprovementStrategy) Name() string {
	return "no_improvement"
}

func (s *NoImprovementStrategy) CheckConvergence(history []RoundStep) (converged bool, reason string) {
	steps := scored(history)
	if len(steps) < s.config.MinRounds {
		return false, ""
	}

	bestScore := math.MaxFloat64
	bestIdx := -1
	for i, step := range steps {
		if step.BestScore < bestScore-s.config.Tolerance {
			bestScore = step.BestScore
			bestIdx = i
		}
	}
	if bestIdx < 0 {
		return false, ""
	}

	since := len(steps) - 1 - bestIdx
	if since >= s.config.NoImprovementRounds {
		return true, fmt.Sprintf("no improvement for %d rounds (best in round %d)", since, steps[bestIdx].Round)
	}
	return false, ""
}

// PlateauStrategy detects convergence when the recent best scores lie within
// the tolerance of each other
type PlateauStrategy struct {
	config *ConvergenceConfig
}

// NewPlateauStrategy creates a new plateau convergence strategy
func NewPlateauStrategy(config *ConvergenceConfig) *PlateauStrategy {
	if config == nil {
		config = DefaultConvergenceConfig()
	}
	return &PlateauStrategy{config: config}
}

func (s *PlateauStrategy) Name() string {
	return "plateau"
}

func (s *PlateauStrategy) CheckConvergence(history []RoundStep) (converged bool, reason string) {
	steps := scored(history)
	if len(steps) < s.config.MinRounds || len(steps) < s.config.PlateauRounds {
		return false, ""
	}

	recent := steps[len(steps)-s.config.PlateauRounds:]
	minScore, maxScore := recent[0].BestScore, recent[0].BestScore
	for _, step := range recent {
		minScore = math.Min(minScore, step.BestScore)
		maxScore = math.Max(maxScore, step.BestScore)
	}

	if maxScore-minScore <= s.config.Tolerance {
		return true, fmt.Sprintf("score plateau over %d rounds (range %g)", s.config.PlateauRounds, maxScore-minScore)
	}
	return false, ""
}

// CombinedStrategy converges as soon as any of its strategies does
type CombinedStrategy struct {
	strategies []ConvergenceStrategy
}

// NewCombinedStrategy creates a strategy that stops on the first converged member
func NewCombinedStrategy(strategies ...ConvergenceStrategy) *CombinedStrategy {
	return &CombinedStrategy{strategies: strategies}
}

func (s *CombinedStrategy) Name() string {
	return "combined"
}

func (s *CombinedStrategy) CheckConvergence(history []RoundStep) (bool, string) {
	for _, strategy := range s.strategies {
		if ok, reason := strategy.CheckConvergence(history); ok {
			return true, fmt.Sprintf("%s: %s", strategy.Name(), reason)
		}
	}
	return false, ""
}
