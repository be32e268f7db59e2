package metrics

import (
	"math"
	"sort"

	"github.com/GoSim-25-26J-441/platform-dse/internal/trace"
	"github.com/GoSim-25-26J-441/platform-dse/pkg/utils"
)

// Timing groups completed task intervals by iteration and derives latency
// and throughput from them.
type Timing struct {
	// tasks in declared order; the first and the last bound an iteration
	tasks      []string
	iterations map[int]map[string]trace.Interval

	start float64
	stop  float64
}

// NewTiming creates a timing aggregate for the declared task order. With no
// declared tasks an iteration spans from its earliest start to its latest
// stop.
func NewTiming(tasks []string) *Timing {
	return &Timing{
		tasks:      append([]string(nil), tasks...),
		iterations: make(map[int]map[string]trace.Interval),
		start:      math.Inf(1),
		stop:       0,
	}
}

// Add records a completed interval. A later interval for the same task and
// iteration replaces the earlier one.
func (t *Timing) Add(iv trace.Interval) {
	it, ok := t.iterations[iv.Iteration]
	if !ok {
		it = make(map[string]trace.Interval)
		t.iterations[iv.Iteration] = it
	}
	it[iv.Task] = iv

	t.start = math.Min(t.start, iv.Start)
	t.stop = math.Max(t.stop, iv.Stop)
}

// AddAll records several intervals
func (t *Timing) AddAll(intervals []trace.Interval) {
	for _, iv := range intervals {
		t.Add(iv)
	}
}

// Iterations returns the number of distinct iterations observed
func (t *Timing) Iterations() int { return len(t.iterations) }

// IterationIDs returns the observed iteration indices in ascending order
func (t *Timing) IterationIDs() []int {
	ids := make([]int, 0, len(t.iterations))
	for id := range t.iterations {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// IterationLatency returns the latency of one iteration, or 0 when the
// iteration is incomplete.
func (t *Timing) IterationLatency(iteration int) float64 {
	it, ok := t.iterations[iteration]
	if !ok || len(it) == 0 {
		return 0
	}

	var latency float64
	if len(t.tasks) > 0 {
		first, ok1 := it[t.tasks[0]]
		last, ok2 := it[t.tasks[len(t.tasks)-1]]
		if !ok1 || !ok2 {
			return 0
		}
		latency = last.Stop - first.Start
	} else {
		start, stop := math.Inf(1), math.Inf(-1)
		for _, iv := range it {
			start = math.Min(start, iv.Start)
			stop = math.Max(stop, iv.Stop)
		}
		latency = stop - start
	}

	if latency <= 0 {
		return 0
	}
	return latency
}

// AverageLatency is the mean latency over complete iterations, 0 if none.
func (t *Timing) AverageLatency() float64 {
	var latencies []float64
	for _, id := range t.IterationIDs() {
		if l := t.IterationLatency(id); l > 0 {
			latencies = append(latencies, l)
		}
	}
	return utils.Mean(latencies)
}

// Throughput is the number of distinct iterations per unit of time between
// the earliest start and the latest stop, 0 if that span is not positive.
func (t *Timing) Throughput() float64 {
	span := t.stop - t.start
	if len(t.iterations) == 0 || span <= 0 {
		return 0
	}
	return float64(len(t.iterations)) / span
}
