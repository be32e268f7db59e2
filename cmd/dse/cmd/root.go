package cmd

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/GoSim-25-26J-441/platform-dse/pkg/config"
	"github.com/GoSim-25-26J-441/platform-dse/pkg/logger"
)

var cfgFile string

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "dse",
	Short: "Design space exploration for MPSoC platforms",
	Long: `dse searches the processor, scheduling policy and voltage scaling
assignments of a multi-node platform, simulating every candidate with an
external simulator and ranking them by energy, latency and throughput.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default is ./config/dse.yaml or ./dse.yaml)")
	flags.String("log-level", "info", "log level (debug, info, warn, error)")
	flags.String("log-format", "text", "log format (text or json)")
	flags.String("output-root", "", "root directory of simulator output")
	flags.Int("workers", 0, "concurrent simulations, 0 for one per physical core")
	flags.Bool("force", false, "simulate again even when traces already exist")
	flags.IntSlice("nodes", nil, "node counts to explore")
	flags.Int("sample-size", 0, "winners kept per round")
	flags.Int("iterations", 0, "number of search rounds")
	flags.Int("max-depth", 0, "deepest expansion of the directed search")
	flags.Bool("dry-run", false, "explore reduced configurations without simulating")
	flags.String("objective", "", "ranking objective (geomean, energy, latency, throughput)")
	flags.String("export-dir", "", "directory of the result tables")
	flags.String("json", "", "write a JSON summary to this file")
	flags.String("nats-url", "", "publish exported configurations to this NATS server")
	flags.String("nats-subject", "", "NATS subject for exported configurations")
	flags.String("http-addr", "", "serve /healthz, /metrics and /v1/status on this address")
	flags.String("grpc-addr", "", "serve the gRPC health service on this address")

	for key, name := range flagKeys {
		_ = viper.BindPFlag(key, flags.Lookup(name))
	}
}

// flagKeys maps config keys to the persistent flags that override them
var flagKeys = map[string]string{
	"log_level":              "log-level",
	"log_format":             "log-format",
	"simulation.output_root": "output-root",
	"simulation.workers":     "workers",
	"simulation.force":       "force",
	"search.nodes":           "nodes",
	"search.sample_size":     "sample-size",
	"search.iterations":      "iterations",
	"search.max_depth":       "max-depth",
	"search.dry_run":         "dry-run",
	"search.objective":       "objective",
	"export.dir":             "export-dir",
	"export.json":            "json",
	"export.nats_url":        "nats-url",
	"export.nats_subject":    "nats-subject",
	"server.http_addr":       "http-addr",
	"server.grpc_addr":       "grpc-addr",
}

// initConfig locates the config file and enables DSE_ environment variables
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath("config")
		viper.AddConfigPath(".")
		viper.SetConfigName("dse")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("DSE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			fmt.Fprintf(os.Stderr, "Error reading config: %v\n", err)
			os.Exit(1)
		}
	}
}

// loadConfig resolves the configuration of a command: defaults, then the
// config file, then environment and flags. mode overrides the search mode
// when not empty.
func loadConfig(v *viper.Viper, mode string) (*config.Config, error) {
	cfg := config.Default()
	if path := v.ConfigFileUsed(); path != "" {
		loaded, err := config.ReadConfig(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if mode != "" {
		cfg.Search.Mode = mode
	}
	if err := applyOverrides(cfg, v); err != nil {
		return nil, err
	}
	if err := config.Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// applyOverrides copies every key set through the environment or a flag
// onto cfg
func applyOverrides(cfg *config.Config, v *viper.Viper) error {
	strs := map[string]*string{
		"log_level":                 &cfg.LogLevel,
		"log_format":                &cfg.LogFormat,
		"simulation.command":        &cfg.Simulation.Command,
		"simulation.model_template": &cfg.Simulation.ModelTemplate,
		"simulation.output_root":    &cfg.Simulation.OutputRoot,
		"simulation.support_dir":    &cfg.Simulation.SupportDir,
		"simulation.timeout":        &cfg.Simulation.Timeout,
		"search.objective":          &cfg.Search.Objective,
		"export.dir":                &cfg.Export.Dir,
		"export.json":               &cfg.Export.JSON,
		"export.nats_url":           &cfg.Export.NATSURL,
		"export.nats_subject":       &cfg.Export.NATSSubject,
		"server.http_addr":          &cfg.Server.HTTPAddr,
		"server.grpc_addr":          &cfg.Server.GRPCAddr,
	}
	for key, dst := range strs {
		if v.IsSet(key) {
			*dst = v.GetString(key)
		}
	}

	ints := map[string]*int{
		"simulation.workers": &cfg.Simulation.Workers,
		"search.sample_size": &cfg.Search.SampleSize,
		"search.iterations":  &cfg.Search.Iterations,
		"search.max_depth":   &cfg.Search.MaxDepth,
	}
	for key, dst := range ints {
		if v.IsSet(key) {
			*dst = v.GetInt(key)
		}
	}

	floats := map[string]*float64{
		"simulation.sim_time":    &cfg.Simulation.SimTime,
		"simulation.launch_rate": &cfg.Simulation.LaunchRate,
	}
	for key, dst := range floats {
		if v.IsSet(key) {
			*dst = v.GetFloat64(key)
		}
	}

	bools := map[string]*bool{
		"simulation.force": &cfg.Simulation.Force,
		"search.dry_run":   &cfg.Search.DryRun,
	}
	for key, dst := range bools {
		if v.IsSet(key) {
			*dst = v.GetBool(key)
		}
	}

	if v.IsSet("search.nodes") {
		nodes, err := parseInts(v.Get("search.nodes"))
		if err != nil {
			return fmt.Errorf("invalid search.nodes: %w", err)
		}
		cfg.Search.Nodes = nodes
	}
	return nil
}

// parseInts accepts the shapes viper hands back for an int list: a bound
// flag, a YAML sequence or a comma separated environment variable
func parseInts(raw any) ([]int, error) {
	switch val := raw.(type) {
	case []int:
		return val, nil
	case []any:
		out := make([]int, 0, len(val))
		for _, e := range val {
			n, err := strconv.Atoi(fmt.Sprint(e))
			if err != nil {
				return nil, err
			}
			out = append(out, n)
		}
		return out, nil
	case string:
		var out []int
		for _, f := range strings.FieldsFunc(strings.Trim(val, "[]"), func(r rune) bool { return r == ',' || r == ' ' }) {
			n, err := strconv.Atoi(f)
			if err != nil {
				return nil, err
			}
			out = append(out, n)
		}
		return out, nil
	case int:
		return []int{val}, nil
	default:
		return nil, fmt.Errorf("unsupported value %v", raw)
	}
}

func setupLogger(cfg *config.Config) {
	logger.SetDefault(logger.NewFormat(cfg.LogFormat, cfg.LogLevel, os.Stderr))
}
