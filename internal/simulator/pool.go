package simulator

import (
	"context"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"golang.org/x/time/rate"

	"github.com/GoSim-25-26J-441/platform-dse/internal/space"
	"github.com/GoSim-25-26J-441/platform-dse/pkg/config"
	"github.com/GoSim-25-26J-441/platform-dse/pkg/logger"
)

// Pool simulates a frontier with a bounded number of concurrent simulator
// processes
type Pool struct {
	runner     Runner
	workers    int
	limiter    *rate.Limiter
	retry      *RetryPolicy
	outputRoot string
	force      bool
	log        *slog.Logger
}

// DefaultWorkers returns the number of physical cores, falling back to the
// logical CPU count
func DefaultWorkers() int {
	if n, err := cpu.Counts(false); err == nil && n > 0 {
		return n
	}
	return runtime.NumCPU()
}

// NewPool creates a pool around runner
func NewPool(runner Runner, sim *config.Simulation) *Pool {
	workers := sim.Workers
	if workers <= 0 {
		workers = DefaultWorkers()
	}
	var limiter *rate.Limiter
	if sim.LaunchRate > 0 {
		limiter = rate.NewLimiter(rate.Limit(sim.LaunchRate), 1)
	}
	return &Pool{
		runner:     runner,
		workers:    workers,
		limiter:    limiter,
		retry:      NewRetryPolicy(sim.Retry),
		outputRoot: sim.OutputRoot,
		force:      sim.Force,
		log:        logger.Component("pool"),
	}
}

// Workers returns the concurrency bound
func (p *Pool) Workers() int { return p.workers }

// Run simulates every configuration that still needs it. Configurations
// whose output is memoized come back with Skipped set and never reach the
// runner. Results are returned in completion order.
func (p *Pool) Run(ctx context.Context, cfgs []space.Configuration) []Result {
	results := make([]Result, 0, len(cfgs))
	var pending []space.Configuration
	for _, c := range cfgs {
		dir := c.OutputDir(p.outputRoot)
		if !NeedsRun(dir, c.Nodes(), p.force) {
			simulationsTotal.WithLabelValues(outcomeSkipped).Inc()
			results = append(results, Result{Config: c, Dir: dir, Skipped: true})
			continue
		}
		pending = append(pending, c)
	}
	if len(pending) == 0 {
		return results
	}

	p.log.Info("running simulations", "pending", len(pending), "memoized", len(results), "workers", p.workers)

	semaphore := make(chan struct{}, p.workers)
	var wg sync.WaitGroup
	var mu sync.Mutex

	for _, c := range pending {
		wg.Add(1)
		go func(c space.Configuration) {
			defer wg.Done()

			semaphore <- struct{}{}
			defer func() { <-semaphore }()

			res := p.launch(ctx, c)

			mu.Lock()
			results = append(results, res)
			mu.Unlock()
		}(c)
	}

	wg.Wait()
	return results
}

func (p *Pool) launch(ctx context.Context, c space.Configuration) Result {
	var res Result
launches:
	for attempt := 0; ; attempt++ {
		res = p.attempt(ctx, c)
		if !p.retry.ShouldRetry(attempt, res) {
			break
		}
		wait := p.retry.Backoff(attempt + 1)
		p.log.Warn("retrying simulation", "config", c.Name(), "attempt", attempt+1, "max_retries", p.retry.MaxRetries(), "backoff", wait, "error", res.Err)
		select {
		case <-ctx.Done():
			break launches
		case <-time.After(wait):
		}
	}

	simulationDuration.Observe(res.Duration.Seconds())
	switch {
	case res.Err != nil:
		simulationsTotal.WithLabelValues(outcomeError).Inc()
		p.log.Error("simulation could not run", "config", c.Name(), "error", res.Err)
	case res.Failed():
		simulationsTotal.WithLabelValues(outcomeFailed).Inc()
	default:
		simulationsTotal.WithLabelValues(outcomeOK).Inc()
	}
	return res
}

func (p *Pool) attempt(ctx context.Context, c space.Configuration) Result {
	if p.limiter != nil {
		if err := p.limiter.Wait(ctx); err != nil {
			return Result{Config: c, Dir: c.OutputDir(p.outputRoot), Err: err}
		}
	}

	activeSimulations.Inc()
	defer activeSimulations.Dec()
	return p.runner.Run(ctx, c)
}
