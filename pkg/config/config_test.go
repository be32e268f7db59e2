package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"gopkg.in/yaml.v3"
)

func TestLoadConfig(t *testing.T) {
	cfg, err := LoadConfig("../../config/dse.yaml")
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.Search.Mode != ModeDirected {
		t.Errorf("Expected mode 'directed', got '%s'", cfg.Search.Mode)
	}
	if len(cfg.Search.Nodes) != 3 || cfg.Search.Nodes[0] != 4 {
		t.Errorf("Expected nodes [4 5 6], got %v", cfg.Search.Nodes)
	}
	if len(cfg.Space.Processors) != 3 {
		t.Errorf("Expected 3 processors, got %d", len(cfg.Space.Processors))
	}
	// mappings are not in the file, so the defaults survive
	if _, ok := cfg.Space.Mappings[6]; !ok {
		t.Errorf("Expected default mapping for 6 nodes to be kept")
	}
	timeout, err := cfg.Simulation.GetTimeout()
	if err != nil {
		t.Fatalf("unexpected timeout error: %v", err)
	}
	if timeout != 30*time.Minute {
		t.Errorf("Expected 30m timeout, got %v", timeout)
	}
	if r := cfg.Simulation.Retry; r == nil || !r.Enabled || r.MaxRetries != 2 || r.Backoff != "exponential" {
		t.Errorf("Expected the retry policy to be loaded, got %+v", r)
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestDefaultIsValid(t *testing.T) {
	if err := Validate(Default()); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
}

func TestDefaultMappings(t *testing.T) {
	cfg := Default()
	m := cfg.Space.Mapping(2)
	if m["MapTask3To"] != "Node2" || m["MapTask1To"] != "Node1" {
		t.Fatalf("unexpected 2-node mapping: %v", m)
	}

	// mutating the returned mapping must not leak into the config
	m["MapTask1To"] = "Node9"
	if cfg.Space.Mappings[2]["MapTask1To"] != "Node1" {
		t.Fatal("Mapping returned a shared map")
	}
}

func TestMappingRoundRobinFallback(t *testing.T) {
	cfg := Default()
	m := cfg.Space.Mapping(3 + 5) // no explicit mapping for 8 nodes
	if len(m) != len(cfg.Space.Tasks) {
		t.Fatalf("expected %d entries, got %d", len(cfg.Space.Tasks), len(m))
	}
	if m["MapTask8To"] != "Node8" || m["MapTask1To"] != "Node1" {
		t.Fatalf("unexpected round-robin mapping: %v", m)
	}
}

func TestParseVoltage(t *testing.T) {
	tests := []struct {
		in      string
		num     float64
		den     float64
		wantErr bool
	}{
		{"1.0/1.0", 1, 1, false},
		{"3.0/4.0", 3, 4, false},
		{" 2 / 3 ", 2, 3, false},
		{"1.0", 0, 0, true},
		{"a/2", 0, 0, true},
		{"1/0", 0, 0, true},
	}
	for _, tt := range tests {
		num, den, err := ParseVoltage(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseVoltage(%q): expected error", tt.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseVoltage(%q): %v", tt.in, err)
			continue
		}
		if num != tt.num || den != tt.den {
			t.Errorf("ParseVoltage(%q) = %v/%v, want %v/%v", tt.in, num, den, tt.num, tt.den)
		}
	}
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"log level", func(c *Config) { c.LogLevel = "loud" }, "log_level"},
		{"log format", func(c *Config) { c.LogFormat = "xml" }, "log_format"},
		{"empty processors", func(c *Config) { c.Space.Processors = nil }, "processors"},
		{"duplicate schedule", func(c *Config) { c.Space.Schedules = []string{"PB", "PB"} }, "duplicate"},
		{"bad voltage", func(c *Config) { c.Space.VoltageScales = []string{"x"} }, "voltage"},
		{"processor abbreviation", func(c *Config) { c.Space.Processors = []string{"ARMv7", "ARMv8"} }, "abbreviation AR"},
		{"schedule abbreviation", func(c *Config) { c.Space.Schedules = []string{"PB", "PBX"} }, "abbreviation PB"},
		{"voltage percent", func(c *Config) { c.Space.VoltageScales = []string{"1.0/3.0", "0.333/1.0"} }, "33%"},
		{"short mapping", func(c *Config) { c.Space.Mappings[2] = map[string]string{"MapTask1To": "Node1"} }, "entries"},
		{"mode", func(c *Config) { c.Search.Mode = "random" }, "mode"},
		{"no nodes", func(c *Config) { c.Search.Nodes = nil }, "node count"},
		{"sample size", func(c *Config) { c.Search.SampleSize = 0 }, "sample_size"},
		{"directed depth", func(c *Config) { c.Search.Mode = ModeDirected; c.Search.MaxDepth = 0 }, "max_depth"},
		{"objective", func(c *Config) { c.Search.Objective = "speed" }, "objective"},
		{"convergence", func(c *Config) { c.Search.Convergence = &Convergence{Strategy: "magic"} }, "convergence"},
		{"sim time", func(c *Config) { c.Simulation.SimTime = 0 }, "sim_time"},
		{"retry backoff", func(c *Config) { c.Simulation.Retry = &RetryPolicy{Enabled: true, Backoff: "random"} }, "backoff"},
		{"timeout", func(c *Config) { c.Simulation.Timeout = "soon" }, "timeout"},
		{"command", func(c *Config) { c.Simulation.Command = "" }, "command"},
		{"nats subject", func(c *Config) { c.Export.NATSURL = "nats://localhost:4222" }, "nats_subject"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := Validate(cfg)
			if err == nil {
				t.Fatalf("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected error mentioning %q, got %v", tt.want, err)
			}
		})
	}
}

func TestDryRunSkipsSimulatorChecks(t *testing.T) {
	cfg := Default()
	cfg.Search.DryRun = true
	cfg.Simulation.Command = ""
	if err := Validate(cfg); err != nil {
		t.Fatalf("dry run should not require a simulator command: %v", err)
	}
}

func TestParseConfigYAMLRoundTrip(t *testing.T) {
	data, err := yaml.Marshal(Default())
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	path := filepath.Join(t.TempDir(), "cfg.yaml")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Space.Mappings[5]["MapTask2To"] != "Node2" {
		t.Fatalf("mapping lost in round trip: %v", cfg.Space.Mappings[5])
	}
}

func TestParseConfigYAMLInvalid(t *testing.T) {
	if _, err := ParseConfigYAML([]byte("search: [unclosed")); err == nil {
		t.Fatal("expected parse error")
	}
	if _, err := ParseConfigYAML([]byte("search:\n  mode: sideways\n")); err == nil {
		t.Fatal("expected validation error")
	}
}

func TestReadConfigDefersValidation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partial.yaml")
	if err := os.WriteFile(path, []byte("search:\n  mode: sideways\n  sample_size: 0\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadConfig(path); err == nil {
		t.Fatal("LoadConfig must validate")
	}
	cfg, err := ReadConfig(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if cfg.Search.Mode != "sideways" || cfg.Search.SampleSize != 0 {
		t.Fatalf("unexpected search settings %+v", cfg.Search)
	}
	cfg.Search.Mode = ModeIterative
	cfg.Search.SampleSize = 2
	if err := Validate(cfg); err != nil {
		t.Fatalf("overridden config must validate: %v", err)
	}
	if _, err := ReadConfig(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected error for a missing file")
	}
}
