package space

import (
	"fmt"
	"strconv"

	"github.com/GoSim-25-26J-441/platform-dse/pkg/config"
)

// Attribute labels of the reduced variant.
func reducedLabels(node int) (proc, sched, volt string) {
	return fmt.Sprintf("Proc%d", node), fmt.Sprintf("Poli%d", node), fmt.Sprintf("Volt%d", node)
}

// Attribute labels of the full variant; these are the names used inside the
// simulation model.
func fullLabels(node int) (proc, sched, volt string) {
	return fmt.Sprintf("Node%dProcessorType", node), fmt.Sprintf("OSPolicy%d", node), fmt.Sprintf("VSF%d", node)
}

// NewRoot builds the search root for a node count: every node takes the
// first admissible processor, schedule and voltage scale. Full roots map
// tasks with the space's mapping for that node count and give task i
// priority i.
func NewRoot(variant Variant, nodes int, s *config.Space) (Configuration, error) {
	if nodes <= 0 {
		return Configuration{}, fmt.Errorf("node count must be positive, got %d", nodes)
	}
	if len(s.Processors) == 0 || len(s.Schedules) == 0 || len(s.VoltageScales) == 0 {
		return Configuration{}, fmt.Errorf("space has an empty dimension")
	}

	labels := reducedLabels
	if variant == Full {
		labels = fullLabels
	}

	a := Attributes{
		Processors: make(map[string]string, nodes),
		Schedules:  make(map[string]string, nodes),
		Voltages:   make(map[string]string, nodes),
	}
	for i := 1; i <= nodes; i++ {
		proc, sched, volt := labels(i)
		a.Processors[proc] = s.Processors[0]
		a.Schedules[sched] = s.Schedules[0]
		a.Voltages[volt] = s.VoltageScales[0]
	}

	if variant == Full {
		a.Mapping = s.Mapping(nodes)
		a.Priority = make(map[string]string, len(a.Mapping))
		for i := 1; i <= len(a.Mapping); i++ {
			a.Priority[config.PriorityKey(i)] = strconv.Itoa(i)
		}
	}

	root, err := New(variant, a)
	if err != nil {
		return Configuration{}, fmt.Errorf("failed to build %d-node root: %w", nodes, err)
	}
	return root, nil
}

// Admissible returns the declared values of a mutable dimension, in the
// order the neighbor generator tries them. Mapping and priority are fixed
// during a search and have no admissible alternatives.
func Admissible(d Dimension, s *config.Space) []string {
	switch d {
	case Processor:
		return s.Processors
	case Schedule:
		return s.Schedules
	case Voltage:
		return s.VoltageScales
	default:
		return nil
	}
}
