package simulator

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"text/template"
	"time"

	"github.com/GoSim-25-26J-441/platform-dse/internal/analysis"
	"github.com/GoSim-25-26J-441/platform-dse/internal/space"
	"github.com/GoSim-25-26J-441/platform-dse/pkg/config"
	"github.com/GoSim-25-26J-441/platform-dse/pkg/logger"
)

// Result is the outcome of one simulation. A simulator that fails is not an
// error: the failure is carried in ExitCode and ErrorText. Err is only set
// when the simulation could not be attempted at all.
type Result struct {
	Config    space.Configuration
	Dir       string
	ExitCode  int
	ErrorText string
	Skipped   bool
	Duration  time.Duration
	Err       error
}

// Failed reports whether the configuration must be treated as unhealthy
func (r Result) Failed() bool {
	return r.Err != nil || r.ExitCode != 0 || len(r.ErrorText) > 2
}

// Runner simulates one configuration
type Runner interface {
	Run(ctx context.Context, c space.Configuration) Result
}

// NeedsRun reports whether a configuration must be simulated. An output
// location holding an error marker is never simulated again; otherwise the
// run is skipped when every trace file is already present, unless force is
// set.
func NeedsRun(dir string, nodes int, force bool) bool {
	if analysis.ContainsError(dir) {
		return false
	}
	if force {
		return true
	}
	return !analysis.HasTraces(dir, nodes)
}

// ProcessRunner runs the external simulator as a child process
type ProcessRunner struct {
	command      string
	args         []string
	outputRoot   string
	supportDir   string
	supportFiles []string
	application  string
	simTime      float64
	timeout      time.Duration
	tmpl         *template.Template
	log          *slog.Logger
}

// NewProcessRunner creates a runner from the simulation settings
func NewProcessRunner(sim *config.Simulation, application string, tmpl *template.Template) (*ProcessRunner, error) {
	timeout, err := sim.GetTimeout()
	if err != nil {
		return nil, fmt.Errorf("invalid simulation timeout: %w", err)
	}
	if tmpl == nil {
		return nil, fmt.Errorf("model template is required")
	}
	return &ProcessRunner{
		command:      sim.Command,
		args:         sim.Args,
		outputRoot:   sim.OutputRoot,
		supportDir:   sim.SupportDir,
		supportFiles: sim.SupportFiles,
		application:  application,
		simTime:      sim.SimTime,
		timeout:      timeout,
		tmpl:         tmpl,
		log:          logger.Component("simulator"),
	}, nil
}

// Run renders the model into the configuration's output location and runs
// the simulator there. Its stderr is kept as the location's error marker.
func (r *ProcessRunner) Run(ctx context.Context, c space.Configuration) (res Result) {
	dir := c.OutputDir(r.outputRoot)
	res = Result{Config: c, Dir: dir}
	start := time.Now()
	defer func() { res.Duration = time.Since(start) }()

	if err := PrepareWorkDir(dir, r.supportDir, r.supportFiles); err != nil {
		res.Err = err
		return res
	}

	model, err := RenderModel(r.tmpl, NewModelParams(c, r.application, r.simTime))
	if err != nil {
		res.Err = err
		return res
	}
	modelPath, err := filepath.Abs(filepath.Join(dir, ModelFile))
	if err != nil {
		res.Err = err
		return res
	}
	if err := writeFileAtomic(modelPath, model); err != nil {
		res.Err = fmt.Errorf("failed to write model: %w", err)
		return res
	}
	absDir, err := filepath.Abs(dir)
	if err != nil {
		res.Err = err
		return res
	}

	parent := ctx
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, r.command, expandArgs(r.args, modelPath, absDir)...)
	cmd.Dir = absDir
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	r.log.Debug("starting simulator", "config", c.Name(), "dir", dir)
	if err := cmd.Start(); err != nil {
		res.Err = fmt.Errorf("failed to start simulator: %w", err)
		return res
	}

	err = cmd.Wait()
	// an interrupted search must not leave error markers behind
	if parent.Err() != nil {
		res.Err = parent.Err()
		return res
	}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			res.ExitCode = exitErr.ExitCode()
			// killed by the timeout or a signal
			if res.ExitCode < 0 {
				res.ExitCode = -1
			}
		} else {
			res.Err = fmt.Errorf("simulator failed: %w", err)
			return res
		}
	}

	res.ErrorText = stderr.String()
	if res.ExitCode != 0 && len(res.ErrorText) <= 2 {
		res.ErrorText = fmt.Sprintf("simulator exited with status %d\n", res.ExitCode)
		if ctx.Err() != nil {
			res.ErrorText = fmt.Sprintf("simulator stopped: %v\n", ctx.Err())
		}
	}
	if err := os.WriteFile(filepath.Join(dir, analysis.ErrorFile), []byte(res.ErrorText), 0o644); err != nil {
		r.log.Warn("failed to persist simulator stderr", "config", c.Name(), "error", err)
	}

	if res.Failed() {
		r.log.Warn("simulation failed",
			"config", c.Name(),
			"exit_code", res.ExitCode,
			"dir", dir,
			"stderr", strings.TrimSpace(res.ErrorText))
	}
	return res
}

// expandArgs substitutes the {model} and {output} placeholders
func expandArgs(args []string, model, output string) []string {
	out := make([]string, len(args))
	for i, a := range args {
		a = strings.ReplaceAll(a, "{model}", model)
		out[i] = strings.ReplaceAll(a, "{output}", output)
	}
	return out
}
