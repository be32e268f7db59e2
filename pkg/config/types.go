package config

import "time"

// Config represents the design-space-exploration configuration
type Config struct {
	LogLevel   string     `yaml:"log_level"`
	LogFormat  string     `yaml:"log_format"` // text or json
	Simulation Simulation `yaml:"simulation"`
	Space      Space      `yaml:"space"`
	Search     Search     `yaml:"search"`
	Export     Export     `yaml:"export"`
	Server     Server     `yaml:"server"`
}

// Simulation describes how the external simulator is driven
type Simulation struct {
	// Command is the simulator executable. Args may reference {model} and
	// {output}, which are replaced by the model file and work directory.
	Command       string       `yaml:"command"`
	Args          []string     `yaml:"args"`
	ModelTemplate string       `yaml:"model_template"`        // path to a text/template model file
	OutputRoot    string       `yaml:"output_root"`
	SupportDir    string       `yaml:"support_dir"`
	SupportFiles  []string     `yaml:"support_files"`
	SimTime       float64      `yaml:"sim_time"`              // simulation horizon, also used for energy integration
	Workers       int          `yaml:"workers,omitempty"`     // 0 means one per physical core
	LaunchRate    float64      `yaml:"launch_rate,omitempty"` // simulator starts per second, 0 is unlimited
	Timeout       string       `yaml:"timeout,omitempty"`     // per simulation, e.g. "10m"
	Force         bool         `yaml:"force,omitempty"`       // ignore memoized traces
	Retry         *RetryPolicy `yaml:"retry,omitempty"`
}

// RetryPolicy retries simulations that could not be started. A simulator
// that runs and fails is never retried.
type RetryPolicy struct {
	Enabled    bool   `yaml:"enabled"`
	MaxRetries int    `yaml:"max_retries"`
	Backoff    string `yaml:"backoff"` // exponential, linear, constant
	BaseMs     int    `yaml:"base_ms"`
}

// Space lists the admissible values of every dimension
type Space struct {
	Application   string   `yaml:"application"`
	Processors    []string `yaml:"processors"`
	Schedules     []string `yaml:"schedules"`
	VoltageScales []string `yaml:"voltage_scales"` // rationals, "num/den"
	Tasks         []string `yaml:"tasks"`          // declared order; first and last bound iteration latency
	// Mappings holds the task-to-node mapping per node count, keyed
	// "MapTask<i>To" -> "Node<j>".
	Mappings map[int]map[string]string `yaml:"mappings"`
}

// Search configures the search controller
type Search struct {
	Mode        string       `yaml:"mode"` // exhaustive, iterative or directed
	Nodes       []int        `yaml:"nodes"`
	SampleSize  int          `yaml:"sample_size"`
	Iterations  int          `yaml:"iterations"`
	MaxDepth    int          `yaml:"max_depth"`
	DryRun      bool         `yaml:"dry_run"`
	Objective   string       `yaml:"objective"`
	Convergence *Convergence `yaml:"convergence,omitempty"`
}

// Convergence enables an early stop of the iterative modes
type Convergence struct {
	Strategy            string  `yaml:"strategy"` // no_improvement, plateau or combined
	NoImprovementRounds int     `yaml:"no_improvement_rounds"`
	PlateauRounds       int     `yaml:"plateau_rounds"`
	Tolerance           float64 `yaml:"tolerance"`
}

// Export configures where analyzed configurations are written
type Export struct {
	Dir         string `yaml:"dir"` // defaults to the simulation output root
	JSON        string `yaml:"json,omitempty"`
	NATSURL     string `yaml:"nats_url,omitempty"`
	NATSSubject string `yaml:"nats_subject,omitempty"`
}

// Server configures the monitoring endpoints exposed while a search runs
type Server struct {
	HTTPAddr string `yaml:"http_addr,omitempty"`
	GRPCAddr string `yaml:"grpc_addr,omitempty"`
}

// Search modes
const (
	ModeExhaustive = "exhaustive"
	ModeIterative  = "iterative"
	ModeDirected   = "directed"
)

// GetTimeout parses the per-simulation timeout. An empty value means none.
func (s *Simulation) GetTimeout() (time.Duration, error) {
	if s.Timeout == "" {
		return 0, nil
	}
	return time.ParseDuration(s.Timeout)
}

// Mapping returns the task mapping for the given node count, falling back to
// a round-robin assignment of the declared tasks.
func (s *Space) Mapping(nodes int) map[string]string {
	out := make(map[string]string, len(s.Tasks))
	if m, ok := s.Mappings[nodes]; ok {
		for k, v := range m {
			out[k] = v
		}
		return out
	}
	for i := range s.Tasks {
		out[MappingKey(i+1)] = NodeName(i%nodes + 1)
	}
	return out
}
