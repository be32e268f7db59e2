package search

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/GoSim-25-26J-441/platform-dse/internal/exploration"
	"github.com/GoSim-25-26J-441/platform-dse/internal/metrics"
	"github.com/GoSim-25-26J-441/platform-dse/internal/simulator"
	"github.com/GoSim-25-26J-441/platform-dse/internal/space"
	"github.com/GoSim-25-26J-441/platform-dse/pkg/config"
	"github.com/GoSim-25-26J-441/platform-dse/pkg/logger"
	"github.com/GoSim-25-26J-441/platform-dse/pkg/utils"
)

// ErrNoWinners is returned when no tested configuration can be ranked
var ErrNoWinners = errors.New("no configuration could be ranked")

// Simulator simulates a frontier. *simulator.Pool implements it.
type Simulator interface {
	Run(ctx context.Context, cfgs []space.Configuration) []simulator.Result
}

// Analyzer turns a simulated configuration into metrics.
// *analysis.Analyzer implements it.
type Analyzer interface {
	Analyze(c space.Configuration) (metrics.Result, error)
	Failed(c space.Configuration) bool
}

// Exporter receives every analyzed configuration exactly once, in tested
// order
type Exporter interface {
	Export(n *exploration.Node) error
}

// Observer is notified after the root and after every round
type Observer interface {
	Update(s Status)
}

// Status is a snapshot of a running search
type Status struct {
	RunID     string   `json:"run_id"`
	Mode      string   `json:"mode"`
	Nodes     int      `json:"nodes"`
	Round     int      `json:"round"`
	Rounds    int      `json:"rounds"`
	Frontier  int      `json:"frontier"`
	Tested    int      `json:"tested"`
	Winners   int      `json:"winners"`
	Best      string   `json:"best,omitempty"`
	BestScore *float64 `json:"best_score,omitempty"`
	Done      bool     `json:"done"`
}

// RoundSummary counts what happened to one round's frontier
type RoundSummary struct {
	Round       int
	Frontier    int
	Ran         int
	AlreadyDone int
	Errors      int
	Successes   int
	Winners     int
	// Selected holds the round's winners in rank order
	Selected []exploration.NodeID
	// BestScore is NaN when no winner of the round could be ranked
	BestScore float64
}

// Result is the outcome of one search invocation
type Result struct {
	RunID   string
	Mode    string
	Nodes   int
	Graph   *exploration.Graph
	Root    exploration.NodeID
	Tested  []exploration.NodeID // in the order the configurations were tested
	Winners []exploration.NodeID // every winner of every round, first win first
	Rounds  []RoundSummary

	Converged         bool
	ConvergenceReason string
	// Errors holds one analysis error per configuration that failed
	Errors   []error
	Duration time.Duration
}

// RootNode returns the root of the search
func (r *Result) RootNode() *exploration.Node {
	return r.Graph.Node(r.Root)
}

// TestedNodes returns the tested configurations in tested order
func (r *Result) TestedNodes() []*exploration.Node {
	return r.Graph.Nodes(r.Tested)
}

// WinnerNodes returns all winners in the order they first won
func (r *Result) WinnerNodes() []*exploration.Node {
	return r.Graph.Nodes(r.Winners)
}

// Best returns the best ranked tested configuration
func (r *Result) Best(objective ObjectiveFunction) (Candidate, error) {
	ranked := Rank(r.TestedNodes(), objective)
	if len(ranked) == 0 {
		return Candidate{}, ErrNoWinners
	}
	return ranked[0], nil
}

// Controller runs searches over the configuration space
type Controller struct {
	space       *config.Space
	settings    config.Search
	variant     space.Variant
	simulator   Simulator
	analyzer    Analyzer
	objective   ObjectiveFunction
	convergence ConvergenceStrategy
	exporter    Exporter
	observer    Observer
	log         *slog.Logger
}

// NewController creates a controller from the search settings. Dry runs use
// reduced configurations and never touch the simulator or the analyzer.
func NewController(cfg *config.Config, sim Simulator, analyzer Analyzer) (*Controller, error) {
	objective, err := NewObjectiveFunction(cfg.Search.Objective)
	if err != nil {
		return nil, err
	}
	convergence, err := NewConvergenceStrategy(cfg.Search.Convergence)
	if err != nil {
		return nil, err
	}

	variant := space.Full
	if cfg.Search.DryRun {
		variant = space.Reduced
	} else if sim == nil || analyzer == nil {
		return nil, fmt.Errorf("simulator and analyzer are required unless dry_run is set")
	}

	return &Controller{
		space:       &cfg.Space,
		settings:    cfg.Search,
		variant:     variant,
		simulator:   sim,
		analyzer:    analyzer,
		objective:   objective,
		convergence: convergence,
		log:         logger.Component("search"),
	}, nil
}

// WithExporter sets the sink for analyzed configurations
func (c *Controller) WithExporter(e Exporter) *Controller {
	c.exporter = e
	return c
}

// WithObserver sets the receiver of progress updates
func (c *Controller) WithObserver(o Observer) *Controller {
	c.observer = o
	return c
}

// WithVariant overrides the configuration variant chosen from dry_run
func (c *Controller) WithVariant(v space.Variant) *Controller {
	c.variant = v
	return c
}

// Objective returns the ranking objective
func (c *Controller) Objective() ObjectiveFunction { return c.objective }

// Run dispatches to the configured search mode
func (c *Controller) Run(ctx context.Context, nodes int) (*Result, error) {
	switch c.settings.Mode {
	case config.ModeExhaustive:
		return c.Exhaustive(ctx, nodes)
	case config.ModeIterative:
		return c.Iterative(ctx, nodes)
	case config.ModeDirected:
		return c.DirectedIterative(ctx, nodes)
	default:
		return nil, fmt.Errorf("unknown search mode: %s", c.settings.Mode)
	}
}

// run is the bookkeeping of one search invocation
type run struct {
	*Result
	tested    *exploration.Set
	winners   *exploration.Set
	exported  map[exploration.NodeID]bool
	best      *exploration.Node
	bestScore float64
	start     time.Time
}

func (c *Controller) begin(mode string, nodes int) (*run, error) {
	root, err := space.NewRoot(c.variant, nodes, c.space)
	if err != nil {
		return nil, fmt.Errorf("failed to build root for %d nodes: %w", nodes, err)
	}
	g := exploration.New()
	r := g.AddRoot(root)

	searchRound.Set(0)
	frontierSize.Set(0)
	testedConfigurations.Set(0)

	return &run{
		Result: &Result{
			RunID: utils.GenerateRunID(mode),
			Mode:  mode,
			Nodes: nodes,
			Graph: g,
			Root:  r.ID,
		},
		tested:    exploration.NewSet(),
		winners:   exploration.NewSet(),
		exported:  make(map[exploration.NodeID]bool),
		bestScore: math.NaN(),
		start:     time.Now(),
	}, nil
}

// Exhaustive enumerates every configuration reachable from the root,
// simulates each once and analyzes them all. Nothing is pruned.
func (c *Controller) Exhaustive(ctx context.Context, nodes int) (*Result, error) {
	s, err := c.begin(config.ModeExhaustive, nodes)
	if err != nil {
		return nil, err
	}

	exp, err := exploration.Expand(s.Graph, s.Root, c.space, exploration.Unbounded, nil)
	if err != nil {
		return nil, err
	}
	all := s.Graph.Nodes(exp.Discovered)
	for _, n := range all {
		c.markTested(s, n)
	}
	frontierSize.Set(float64(len(all)))
	c.log.Info("configuration space enumerated",
		"run_id", s.RunID,
		"nodes", nodes,
		"configurations", exp.Count())

	sum := RoundSummary{Round: 0, Frontier: len(all), BestScore: math.NaN()}
	sum.Ran, sum.AlreadyDone = c.simulate(ctx, all)
	sum.Errors, sum.Successes = c.evaluate(s, all)
	if err := c.export(s); err != nil {
		return nil, err
	}
	if s.best != nil {
		sum.BestScore = s.bestScore
	}
	s.Rounds = append(s.Rounds, sum)
	c.logSummary(sum)

	return c.finish(s), ctx.Err()
}

// Iterative keeps the best SampleSize configurations of every round and
// explores their direct neighbors in the next one
func (c *Controller) Iterative(ctx context.Context, nodes int) (*Result, error) {
	return c.iterate(ctx, config.ModeIterative, nodes, false)
}

// DirectedIterative is Iterative with a depth bound per winner that grows by
// one every round the winner survives. Winners at MaxDepth or deeper no
// longer compete for the next round but stay in the result.
func (c *Controller) DirectedIterative(ctx context.Context, nodes int) (*Result, error) {
	return c.iterate(ctx, config.ModeDirected, nodes, true)
}

func (c *Controller) iterate(ctx context.Context, mode string, nodes int, directed bool) (*Result, error) {
	s, err := c.begin(mode, nodes)
	if err != nil {
		return nil, err
	}
	c.log.Info("search started",
		"run_id", s.RunID,
		"mode", mode,
		"nodes", nodes,
		"rounds", c.settings.Iterations,
		"sample_size", c.settings.SampleSize,
		"objective", c.objective.Name(),
		"dry_run", c.settings.DryRun)

	root := s.Graph.Node(s.Root)
	c.seed(ctx, s, root)
	if err := c.export(s); err != nil {
		return nil, err
	}
	c.notify(s, 0, 0, false)

	winners := []*exploration.Node{root}
	var history []RoundStep

	for round := 0; round < c.settings.Iterations; round++ {
		if err := ctx.Err(); err != nil {
			return c.finish(s), err
		}
		searchRound.Set(float64(round))

		var frontier []*exploration.Node
		for _, w := range winners {
			c.markTested(s, w)
			depth := 1
			if directed {
				w.Depth++
				depth = w.Depth
			}
			exp, err := exploration.Expand(s.Graph, w.ID, c.space, depth, s.tested)
			if err != nil {
				return nil, err
			}
			for _, n := range s.Graph.Nodes(exp.Discovered) {
				n.Round = round
				c.markTested(s, n)
				frontier = append(frontier, n)
			}
		}
		frontierSize.Set(float64(len(frontier)))
		c.log.Info("round generated", "round", round, "nodes", nodes, "frontier", len(frontier))

		sum := RoundSummary{Round: round, Frontier: len(frontier)}
		sum.Ran, sum.AlreadyDone = c.simulate(ctx, frontier)
		sum.Errors, sum.Successes = c.evaluate(s, frontier)
		if err := c.export(s); err != nil {
			return nil, err
		}

		candidates := frontier
		if directed {
			candidates = make([]*exploration.Node, 0, len(winners)+len(frontier))
			for _, n := range winners {
				if n.Depth < c.settings.MaxDepth {
					candidates = append(candidates, n)
				}
			}
			for _, n := range frontier {
				if n.Depth < c.settings.MaxDepth {
					candidates = append(candidates, n)
				}
			}
		}

		winners = SelectWinners(candidates, c.settings.SampleSize, c.objective, c.settings.DryRun)
		for _, w := range winners {
			sum.Selected = append(sum.Selected, w.ID)
			if s.winners.Add(w.Config) {
				s.Winners = append(s.Winners, w.ID)
			}
		}
		sum.Winners = len(winners)
		sum.BestScore = c.bestOf(winners)
		s.Rounds = append(s.Rounds, sum)
		c.logSummary(sum)
		c.logWinners(round, winners)
		c.notify(s, round, len(frontier), false)

		if len(winners) == 0 {
			c.log.Warn("no healthy winner left", "round", round)
			break
		}
		if c.convergence != nil {
			history = append(history, RoundStep{Round: round, BestScore: sum.BestScore})
			if ok, reason := c.convergence.CheckConvergence(history); ok {
				s.Converged = true
				s.ConvergenceReason = reason
				c.log.Info("search converged", "round", round, "reason", reason)
				break
			}
		}
	}

	return c.finish(s), nil
}

// seed simulates and analyzes the root. A root that cannot be analyzed is
// reported and the search continues from it anyway.
func (c *Controller) seed(ctx context.Context, s *run, root *exploration.Node) {
	c.markTested(s, root)
	if c.settings.DryRun {
		c.log.Info("dry run, root is not simulated", "config", root.Config.Name())
		return
	}
	c.simulate(ctx, []*exploration.Node{root})
	c.evaluate(s, []*exploration.Node{root})

	if !root.Analyzed {
		c.log.Warn("root could not be analyzed", "config", root.Config.Name())
		return
	}
	c.log.Info("root analyzed",
		"config", root.Config.Name(),
		"geometric_mean", Score(root.Metrics),
		"energy", root.Metrics.Energy,
		"avg_latency", root.Metrics.AverageLatency,
		"throughput", root.Metrics.Throughput)
}

func (c *Controller) markTested(s *run, n *exploration.Node) {
	if s.tested.Add(n.Config) {
		s.Tested = append(s.Tested, n.ID)
		testedConfigurations.Set(float64(len(s.Tested)))
	}
}

// simulate runs the nodes through the simulator and marks the failed ones.
// It returns how many simulations ran and how many were memoized.
func (c *Controller) simulate(ctx context.Context, nodes []*exploration.Node) (ran, done int) {
	if c.settings.DryRun || len(nodes) == 0 {
		return 0, 0
	}
	cfgs := make([]space.Configuration, len(nodes))
	for i, n := range nodes {
		cfgs[i] = n.Config
	}

	// results arrive in completion order
	byKey := make(map[space.Key]simulator.Result, len(nodes))
	for _, r := range c.simulator.Run(ctx, cfgs) {
		byKey[r.Config.Key()] = r
	}
	for _, n := range nodes {
		r, ok := byKey[n.Config.Key()]
		if !ok {
			continue
		}
		if r.Skipped {
			done++
		} else {
			ran++
		}
		if r.Failed() {
			n.Failed = true
		}
	}
	return ran, done
}

// evaluate analyzes the healthy nodes. Analysis errors mark the node failed
// and are kept in the result.
func (c *Controller) evaluate(s *run, nodes []*exploration.Node) (errs, ok int) {
	if c.settings.DryRun {
		return 0, 0
	}
	for _, n := range nodes {
		if !n.Failed && c.analyzer.Failed(n.Config) {
			n.Failed = true
		}
		if n.Failed {
			errs++
			configurationsTotal.WithLabelValues("error").Inc()
			continue
		}
		if !n.Analyzed {
			m, err := c.analyzer.Analyze(n.Config)
			if err != nil {
				n.Failed = true
				s.Errors = append(s.Errors, err)
				c.log.Error("analysis failed", "config", n.Config.Name(), "error", err)
				errs++
				configurationsTotal.WithLabelValues("error").Inc()
				continue
			}
			n.Metrics = m
			n.Analyzed = true
		}
		ok++
		configurationsTotal.WithLabelValues("success").Inc()

		if score, err := c.objective.Evaluate(n.Metrics); err == nil {
			if s.best == nil || score < s.bestScore {
				s.best, s.bestScore = n, score
				searchBestScore.Set(score)
			}
		}
	}
	return errs, ok
}

// export hands every analyzed, not yet exported node to the exporter,
// walking the tested collection so the order does not depend on the pool
func (c *Controller) export(s *run) error {
	if c.exporter == nil {
		return nil
	}
	for _, n := range s.TestedNodes() {
		if !n.Analyzed || s.exported[n.ID] {
			continue
		}
		if err := c.exporter.Export(n); err != nil {
			return fmt.Errorf("failed to export %s: %w", n.Config.Name(), err)
		}
		s.exported[n.ID] = true
	}
	return nil
}

func (c *Controller) bestOf(nodes []*exploration.Node) float64 {
	ranked := Rank(nodes, c.objective)
	if len(ranked) == 0 {
		return math.NaN()
	}
	return ranked[0].Score
}

func (c *Controller) logSummary(sum RoundSummary) {
	if c.settings.DryRun {
		return
	}
	c.log.Info("round summary",
		"round", sum.Round,
		"configs", sum.Frontier,
		"ran", sum.Ran,
		"already_done", sum.AlreadyDone,
		"errors", sum.Errors,
		"successful", sum.Successes)
}

func (c *Controller) logWinners(round int, winners []*exploration.Node) {
	for i, w := range winners {
		args := []any{"round", round, "rank", i, "config", w.Config.Name()}
		if w.Analyzed && w.Metrics.Healthy() {
			args = append(args, "geometric_mean", Score(w.Metrics))
		}
		c.log.Info("winner", args...)
	}
}

func (c *Controller) notify(s *run, round, frontier int, done bool) {
	if c.observer == nil {
		return
	}
	st := Status{
		RunID:    s.RunID,
		Mode:     s.Mode,
		Nodes:    s.Nodes,
		Round:    round,
		Rounds:   c.settings.Iterations,
		Frontier: frontier,
		Tested:   len(s.Tested),
		Winners:  len(s.Winners),
		Done:     done,
	}
	if s.Mode == config.ModeExhaustive {
		st.Rounds = 1
	}
	if s.best != nil {
		score := s.bestScore
		st.Best = s.best.Config.Name()
		st.BestScore = &score
	}
	c.observer.Update(st)
}

func (c *Controller) finish(s *run) *Result {
	s.Duration = time.Since(s.start)
	last := 0
	if len(s.Rounds) > 0 {
		last = s.Rounds[len(s.Rounds)-1].Round
	}
	c.notify(s, last, 0, true)
	c.log.Info("search finished",
		"run_id", s.RunID,
		"tested", len(s.Tested),
		"winners", len(s.Winners),
		"rounds", len(s.Rounds),
		"duration", s.Duration)
	return s.Result
}
