package config

import (
	"fmt"
	"strconv"
	"strings"
)

// MappingKey is the model label mapping task i to a node.
func MappingKey(task int) string { return fmt.Sprintf("MapTask%dTo", task) }

// PriorityKey is the model label of task i's priority.
func PriorityKey(task int) string { return fmt.Sprintf("PriorityTask%d", task) }

// NodeName is the model name of node i.
func NodeName(node int) string { return fmt.Sprintf("Node%d", node) }

// Default returns the configuration of the reference platform: three
// processor types, two scheduling policies, six voltage scales and eleven
// tasks with a fixed mapping for one to six nodes.
func Default() *Config {
	tasks := make([]string, 11)
	for i := range tasks {
		tasks[i] = fmt.Sprintf("Task%d", i+1)
	}

	return &Config{
		LogLevel:  "info",
		LogFormat: "text",
		Simulation: Simulation{
			Command:       "rotalumis",
			Args:          []string{"--poosl", "{model}", "--output", "{output}"},
			ModelTemplate: "templates/dse_template.poosl",
			OutputRoot:    "output",
			SupportDir:    "models/simulator",
			SupportFiles:  []string{"ARMv8.txt", "MIPS.txt", "Adreno.txt"},
			SimTime:       0.1,
		},
		Space: Space{
			Application:   "application",
			Processors:    []string{"ARMv8", "MIPS", "Adreno"},
			Schedules:     []string{"FCFS", "PB"},
			VoltageScales: []string{"1.0/1.0", "3.0/4.0", "2.0/3.0", "1.0/2.0", "1.0/3.0", "1.0/4.0"},
			Tasks:         tasks,
			Mappings: map[int]map[string]string{
				1: mapping(1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1),
				2: mapping(1, 1, 2, 2, 1, 2, 1, 2, 1, 2, 2),
				3: mapping(1, 1, 2, 3, 1, 2, 3, 3, 2, 2, 3),
				4: mapping(1, 1, 2, 3, 1, 2, 3, 4, 2, 4, 3),
				5: mapping(1, 2, 3, 4, 1, 2, 3, 4, 4, 5, 5),
				6: mapping(1, 2, 3, 4, 2, 3, 4, 5, 5, 6, 6),
			},
		},
		Search: Search{
			Mode:       ModeIterative,
			Nodes:      []int{4},
			SampleSize: 3,
			Iterations: 3,
			MaxDepth:   3,
			Objective:  "geomean",
		},
	}
}

// mapping builds a MapTask<i>To table where nodes[i-1] is task i's node.
func mapping(nodes ...int) map[string]string {
	m := make(map[string]string, len(nodes))
	for i, n := range nodes {
		m[MappingKey(i+1)] = NodeName(n)
	}
	return m
}

// ParseVoltage parses a "num/den" voltage scaling factor.
func ParseVoltage(v string) (num, den float64, err error) {
	parts := strings.SplitN(v, "/", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("voltage scale %q is not a num/den rational", v)
	}
	num, err = strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return 0, 0, fmt.Errorf("voltage scale %q: numerator: %w", v, err)
	}
	den, err = strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return 0, 0, fmt.Errorf("voltage scale %q: denominator: %w", v, err)
	}
	if den == 0 {
		return 0, 0, fmt.Errorf("voltage scale %q: zero denominator", v)
	}
	return num, den, nil
}

// VoltagePercent converts a num/den voltage scale to a truncated percentage.
func VoltagePercent(v string) (int, error) {
	num, den, err := ParseVoltage(v)
	if err != nil {
		return 0, err
	}
	return int(100 * num / den), nil
}

// Abbreviate shortens a processor or schedule value to the two characters
// used in configuration names and output directories.
func Abbreviate(v string) string {
	if len(v) > 2 {
		return v[:2]
	}
	return v
}
