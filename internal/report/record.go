package report

import (
	"fmt"

	"github.com/GoSim-25-26J-441/platform-dse/internal/exploration"
	"github.com/GoSim-25-26J-441/platform-dse/internal/search"
	"github.com/GoSim-25-26J-441/platform-dse/internal/space"
	"github.com/GoSim-25-26J-441/platform-dse/pkg/utils"
)

// Record is the flat export form of one analyzed configuration. Per-node
// and per-task values follow natural key order.
type Record struct {
	Config         string   `json:"config"`
	Score          *float64 `json:"score,omitempty"` // nil when unscorable
	Nodes          int      `json:"nodes"`
	Energy         float64  `json:"energy"`
	AverageLatency float64  `json:"avg_latency"`
	Throughput     float64  `json:"throughput"`
	Iteration      int      `json:"iteration"`
	Processors     []string `json:"processors"`
	Schedules      []string `json:"schedules"`
	Voltages       []int    `json:"voltages"` // percent
	Mapping        []string `json:"mapping,omitempty"`
	Priorities     []string `json:"priorities,omitempty"`
}

// NewRecord flattens an analyzed node
func NewRecord(n *exploration.Node) (Record, error) {
	if n == nil || !n.Analyzed {
		return Record{}, fmt.Errorf("configuration is not analyzed")
	}
	c := n.Config
	r := Record{
		Config:         c.Name(),
		Nodes:          c.Nodes(),
		Energy:         n.Metrics.Energy,
		AverageLatency: n.Metrics.AverageLatency,
		Throughput:     n.Metrics.Throughput,
		Iteration:      n.Round,
		Processors:     c.Values(space.Processor),
		Schedules:      c.Values(space.Schedule),
	}
	if n.Metrics.Healthy() {
		if score := search.ExportScore(c.Nodes(), n.Metrics); utils.IsFinite(score) {
			r.Score = &score
		}
	}
	for _, v := range c.Values(space.Voltage) {
		pct, err := space.VoltagePercent(v)
		if err != nil {
			return Record{}, err
		}
		r.Voltages = append(r.Voltages, pct)
	}
	if c.Variant() == space.Full {
		r.Mapping = c.Values(space.Mapping)
		r.Priorities = c.Values(space.Priority)
	}
	return r, nil
}

// Exporters fans every exported node out to several sinks
type Exporters []search.Exporter

// Export implements search.Exporter
func (e Exporters) Export(n *exploration.Node) error {
	for _, x := range e {
		if err := x.Export(n); err != nil {
			return err
		}
	}
	return nil
}
