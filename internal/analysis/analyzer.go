package analysis

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/GoSim-25-26J-441/platform-dse/internal/metrics"
	"github.com/GoSim-25-26J-441/platform-dse/internal/space"
	"github.com/GoSim-25-26J-441/platform-dse/internal/trace"
	"github.com/GoSim-25-26J-441/platform-dse/pkg/config"
	"github.com/GoSim-25-26J-441/platform-dse/pkg/logger"
)

// ErrorFile holds the simulator's stderr. Any content beyond a stray line
// break marks the configuration as failed.
const ErrorFile = "stderr.txt"

// ErrUnhealthy is returned for configurations whose output carries an error
// marker
var ErrUnhealthy = errors.New("configuration is unhealthy")

// Error wraps a fatal analysis failure with the configuration it concerns
type Error struct {
	Config string
	Dir    string
	Err    error
}

func (e *Error) Error() string {
	return fmt.Sprintf("analysis of %s (%s) failed: %v", e.Config, e.Dir, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// ContainsError reports whether dir holds a non-trivial error marker
func ContainsError(dir string) bool {
	data, err := os.ReadFile(filepath.Join(dir, ErrorFile))
	if err != nil {
		return false
	}
	return len(data) > 2
}

// HasTraces reports whether dir holds the power trace and the processor
// trace of every node
func HasTraces(dir string, nodes int) bool {
	if !fileExists(filepath.Join(dir, trace.PowerTraceFile)) {
		return false
	}
	for i := 1; i <= nodes; i++ {
		if !fileExists(filepath.Join(dir, trace.ProcessorTraceFile(i))) {
			return false
		}
	}
	return true
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// Analyzer turns the traces in a configuration's output location into
// metrics
type Analyzer struct {
	outputRoot string
	tasks      []string
	horizon    float64
	log        *slog.Logger
}

// NewAnalyzer creates an analyzer reading below the simulation output root
func NewAnalyzer(cfg *config.Config) *Analyzer {
	return &Analyzer{
		outputRoot: cfg.Simulation.OutputRoot,
		tasks:      cfg.Space.Tasks,
		horizon:    cfg.Simulation.SimTime,
		log:        logger.Component("analysis"),
	}
}

// Dir returns the output location of a configuration
func (a *Analyzer) Dir(c space.Configuration) string {
	return c.OutputDir(a.outputRoot)
}

// Failed reports whether the configuration's output carries an error marker
func (a *Analyzer) Failed(c space.Configuration) bool {
	return ContainsError(a.Dir(c))
}

// Analyze reads the traces of a configuration and computes its metrics.
// Trace inconsistencies and integrity violations are returned as *Error.
func (a *Analyzer) Analyze(c space.Configuration) (metrics.Result, error) {
	dir := a.Dir(c)
	fail := func(err error) (metrics.Result, error) {
		return metrics.Result{}, &Error{Config: c.Name(), Dir: dir, Err: err}
	}

	if ContainsError(dir) {
		return fail(ErrUnhealthy)
	}

	deltas, err := trace.ReadPowerTrace(filepath.Join(dir, trace.PowerTraceFile))
	if err != nil {
		return fail(err)
	}
	power := metrics.NewPowerTrace()
	for _, d := range deltas {
		power.Add(d.Time, d.Difference)
	}

	timing := metrics.NewTiming(a.tasks)
	for i := 1; i <= c.Nodes(); i++ {
		events, err := trace.ReadProcessorTrace(filepath.Join(dir, trace.ProcessorTraceFile(i)))
		if err != nil {
			return fail(err)
		}
		intervals, err := trace.ReconstructNode(config.NodeName(i), events)
		if err != nil {
			return fail(err)
		}
		timing.AddAll(intervals)
	}

	result, err := metrics.Aggregate(power, timing, a.horizon)
	if err != nil {
		return fail(err)
	}

	a.log.Debug("configuration analyzed",
		"config", c.Name(),
		"energy", result.Energy,
		"avg_latency", result.AverageLatency,
		"throughput", result.Throughput)
	return result, nil
}
