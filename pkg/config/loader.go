package config

import (
	"fmt"
	"os"
)

// LoadConfig loads, parses and validates a configuration file
func LoadConfig(path string) (*Config, error) {
	cfg, err := ReadConfig(path)
	if err != nil {
		return nil, err
	}
	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", path, err)
	}
	return cfg, nil
}

// ReadConfig loads a configuration file without validating it, for callers
// that layer further overrides on top before calling Validate.
func ReadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	cfg, err := DecodeConfigYAML(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return cfg, nil
}

// Validate performs validation on the configuration
func Validate(cfg *Config) error {
	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[cfg.LogLevel] {
		return fmt.Errorf("invalid log_level: %s (must be debug, info, warn, or error)", cfg.LogLevel)
	}
	if cfg.LogFormat != "" && cfg.LogFormat != "text" && cfg.LogFormat != "json" {
		return fmt.Errorf("invalid log_format: %s (must be text or json)", cfg.LogFormat)
	}

	if err := validateSpace(&cfg.Space); err != nil {
		return fmt.Errorf("space validation failed: %w", err)
	}
	if err := validateSearch(&cfg.Search); err != nil {
		return fmt.Errorf("search validation failed: %w", err)
	}
	if err := validateSimulation(&cfg.Simulation, cfg.Search.DryRun); err != nil {
		return fmt.Errorf("simulation validation failed: %w", err)
	}
	if cfg.Export.NATSURL != "" && cfg.Export.NATSSubject == "" {
		return fmt.Errorf("export: nats_subject is required when nats_url is set")
	}

	return nil
}

// validateSpace checks that every dimension has unique admissible values
func validateSpace(s *Space) error {
	dims := []struct {
		name   string
		values []string
	}{
		{"processors", s.Processors},
		{"schedules", s.Schedules},
		{"voltage_scales", s.VoltageScales},
		{"tasks", s.Tasks},
	}
	for _, d := range dims {
		if len(d.values) == 0 {
			return fmt.Errorf("%s must not be empty", d.name)
		}
		seen := make(map[string]bool, len(d.values))
		for _, v := range d.values {
			if v == "" {
				return fmt.Errorf("%s contains an empty value", d.name)
			}
			if seen[v] {
				return fmt.Errorf("duplicate value in %s: %s", d.name, v)
			}
			seen[v] = true
		}
	}

	// names and output directories keep only the abbreviated forms
	for _, d := range []struct {
		name   string
		values []string
	}{
		{"processors", s.Processors},
		{"schedules", s.Schedules},
	} {
		short := make(map[string]string, len(d.values))
		for _, v := range d.values {
			a := Abbreviate(v)
			if prev, ok := short[a]; ok {
				return fmt.Errorf("%s %s and %s share the abbreviation %s", d.name, prev, v, a)
			}
			short[a] = v
		}
	}
	percents := make(map[int]string, len(s.VoltageScales))
	for _, v := range s.VoltageScales {
		p, err := VoltagePercent(v)
		if err != nil {
			return err
		}
		if prev, ok := percents[p]; ok {
			return fmt.Errorf("voltage_scales %s and %s both truncate to %d%%", prev, v, p)
		}
		percents[p] = v
	}

	for nodes, m := range s.Mappings {
		if nodes <= 0 {
			return fmt.Errorf("mapping for non-positive node count %d", nodes)
		}
		if len(m) != len(s.Tasks) {
			return fmt.Errorf("mapping for %d nodes has %d entries, want %d", nodes, len(m), len(s.Tasks))
		}
		for i := range s.Tasks {
			node, ok := m[MappingKey(i+1)]
			if !ok {
				return fmt.Errorf("mapping for %d nodes is missing %s", nodes, MappingKey(i+1))
			}
			if node == "" {
				return fmt.Errorf("mapping for %d nodes: %s has no node", nodes, MappingKey(i+1))
			}
		}
	}

	return nil
}

// validateSearch validates the search parameters
func validateSearch(s *Search) error {
	switch s.Mode {
	case ModeExhaustive, ModeIterative, ModeDirected:
	default:
		return fmt.Errorf("invalid mode: %s (must be exhaustive, iterative, or directed)", s.Mode)
	}
	if len(s.Nodes) == 0 {
		return fmt.Errorf("at least one node count must be given")
	}
	for _, n := range s.Nodes {
		if n <= 0 {
			return fmt.Errorf("node count must be positive, got %d", n)
		}
	}
	if s.Mode != ModeExhaustive {
		if s.SampleSize <= 0 {
			return fmt.Errorf("sample_size must be positive, got %d", s.SampleSize)
		}
		if s.Iterations <= 0 {
			return fmt.Errorf("iterations must be positive, got %d", s.Iterations)
		}
	}
	switch s.Objective {
	case "", "geomean", "energy", "latency", "throughput":
	default:
		return fmt.Errorf("invalid objective: %s (must be geomean, energy, latency, or throughput)", s.Objective)
	}
	if s.Mode == ModeDirected && s.MaxDepth <= 0 {
		return fmt.Errorf("max_depth must be positive for directed search, got %d", s.MaxDepth)
	}
	if c := s.Convergence; c != nil {
		switch c.Strategy {
		case "no_improvement", "plateau", "combined":
		default:
			return fmt.Errorf("invalid convergence strategy: %s", c.Strategy)
		}
		if c.NoImprovementRounds < 0 || c.PlateauRounds < 0 || c.Tolerance < 0 {
			return fmt.Errorf("convergence parameters cannot be negative")
		}
	}
	return nil
}

// validateSimulation checks the simulator settings; a dry run never starts
// the simulator so only the numeric settings matter there
func validateSimulation(s *Simulation, dryRun bool) error {
	if s.SimTime <= 0 {
		return fmt.Errorf("sim_time must be positive, got %f", s.SimTime)
	}
	if s.Workers < 0 {
		return fmt.Errorf("workers cannot be negative, got %d", s.Workers)
	}
	if s.LaunchRate < 0 {
		return fmt.Errorf("launch_rate cannot be negative, got %f", s.LaunchRate)
	}
	if r := s.Retry; r != nil {
		switch r.Backoff {
		case "", "exponential", "linear", "constant":
		default:
			return fmt.Errorf("invalid retry backoff: %s (must be exponential, linear, or constant)", r.Backoff)
		}
		if r.MaxRetries < 0 || r.BaseMs < 0 {
			return fmt.Errorf("retry parameters cannot be negative")
		}
	}
	if _, err := s.GetTimeout(); err != nil {
		return fmt.Errorf("invalid timeout %s: %w", s.Timeout, err)
	}
	if dryRun {
		return nil
	}
	if s.Command == "" {
		return fmt.Errorf("command cannot be empty")
	}
	if s.OutputRoot == "" {
		return fmt.Errorf("output_root cannot be empty")
	}
	return nil
}
