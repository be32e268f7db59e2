package trace

import (
	"fmt"
)

// EventKind tells task starts from task stops
type EventKind int

const (
	Start EventKind = iota
	Stop
)

func (k EventKind) String() string {
	if k == Start {
		return "start"
	}
	return "stop"
}

// Event is one record of a processor trace. Iteration is only meaningful
// for starts; stops are matched by task name.
type Event struct {
	Kind      EventKind
	Task      string
	Iteration int
	Time      float64
}

// Interval is one completed task execution on a node. Down accumulates the
// time the task spent preempted between Start and Stop.
type Interval struct {
	Node      string
	Task      string
	Iteration int
	Start     float64
	Stop      float64
	Down      float64
}

// InconsistencyError reports a contradictory event sequence. It is fatal for
// the analysis of the configuration that produced the trace.
type InconsistencyError struct {
	Node      string
	Task      string
	Iteration int
	Time      float64
	Reason    string
}

func (e *InconsistencyError) Error() string {
	return fmt.Sprintf("inconsistent trace on %s at t=%g: task %s (iteration %d): %s",
		e.Node, e.Time, e.Task, e.Iteration, e.Reason)
}

// Reconstructor rebuilds closed task intervals for a single node from its
// ordered event stream. It keeps the tasks currently open on the node and a
// stack of the times at which a running task was preempted.
type Reconstructor struct {
	node       string
	open       []*Interval
	interrupts []float64
	done       []Interval
}

// NewReconstructor creates a reconstructor for one node
func NewReconstructor(node string) *Reconstructor {
	return &Reconstructor{node: node}
}

// Apply consumes the next event of the node's stream
func (r *Reconstructor) Apply(ev Event) error {
	switch ev.Kind {
	case Start:
		return r.start(ev)
	case Stop:
		return r.stop(ev)
	default:
		return r.inconsistent(ev, fmt.Sprintf("unknown event kind %d", int(ev.Kind)))
	}
}

func (r *Reconstructor) start(ev Event) error {
	var matches []*Interval
	for _, iv := range r.open {
		if iv.Task == ev.Task && iv.Iteration == ev.Iteration {
			matches = append(matches, iv)
		}
	}

	switch len(matches) {
	case 0:
		r.open = append(r.open, &Interval{
			Node:      r.node,
			Task:      ev.Task,
			Iteration: ev.Iteration,
			Start:     ev.Time,
		})
		// the new task preempted whatever was already running
		if len(r.open) > 1 {
			r.interrupts = append(r.interrupts, ev.Time)
		}
		return nil
	case 1:
		if len(r.interrupts) == 0 {
			return r.inconsistent(ev, "resumed without a recorded preemption")
		}
		last := len(r.interrupts) - 1
		matches[0].Down += ev.Time - r.interrupts[last]
		r.interrupts = r.interrupts[:last]
		return nil
	default:
		return r.inconsistent(ev, fmt.Sprintf("%d open intervals share name and iteration", len(matches)))
	}
}

func (r *Reconstructor) stop(ev Event) error {
	idx := -1
	for i, iv := range r.open {
		if iv.Task != ev.Task {
			continue
		}
		if idx >= 0 {
			return r.inconsistent(ev, "stop matches more than one open interval")
		}
		idx = i
	}
	if idx < 0 {
		return r.inconsistent(ev, "stop without a matching start")
	}

	iv := r.open[idx]
	iv.Stop = ev.Time
	r.done = append(r.done, *iv)
	r.open = append(r.open[:idx], r.open[idx+1:]...)
	return nil
}

func (r *Reconstructor) inconsistent(ev Event, reason string) error {
	return &InconsistencyError{
		Node:      r.node,
		Task:      ev.Task,
		Iteration: ev.Iteration,
		Time:      ev.Time,
		Reason:    reason,
	}
}

// Intervals returns the completed intervals in the order they stopped
func (r *Reconstructor) Intervals() []Interval {
	out := make([]Interval, len(r.done))
	copy(out, r.done)
	return out
}

// Open reports how many tasks are still running. Tasks still open when the
// simulation horizon is reached are never emitted.
func (r *Reconstructor) Open() int { return len(r.open) }

// ReconstructNode replays a node's whole event stream
func ReconstructNode(node string, events []Event) ([]Interval, error) {
	r := NewReconstructor(node)
	for _, ev := range events {
		if err := r.Apply(ev); err != nil {
			return nil, err
		}
	}
	return r.Intervals(), nil
}
