package cmd

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"slices"
	"strings"
	"syscall"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/GoSim-25-26J-441/platform-dse/internal/analysis"
	"github.com/GoSim-25-26J-441/platform-dse/internal/metrics"
	"github.com/GoSim-25-26J-441/platform-dse/internal/search"
	"github.com/GoSim-25-26J-441/platform-dse/internal/space"
	"github.com/GoSim-25-26J-441/platform-dse/pkg/config"
)

var assignments []string

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Simulate (if needed) and analyze a single configuration",
	Long: `Builds the root configuration of the first --nodes value, applies each
--set label=value assignment, simulates it unless its traces already exist
and prints its energy, average latency and throughput.

Example:
  dse analyze --nodes 2 --set Node2ProcessorType=MIPS --set VSF1=1.0/2.0`,
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
	analyzeCmd.Flags().StringArrayVar(&assignments, "set", nil, "attribute assignment label=value, repeatable")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(viper.GetViper(), "")
	if err != nil {
		return err
	}
	setupLogger(cfg)

	root, err := space.NewRoot(space.Full, cfg.Search.Nodes[0], &cfg.Space)
	if err != nil {
		return err
	}
	c, err := applyAssignments(root, &cfg.Space, assignments)
	if err != nil {
		return err
	}

	pool, err := newPool(cfg)
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	for _, res := range pool.Run(ctx, []space.Configuration{c}) {
		if res.Err != nil {
			return fmt.Errorf("simulation of %s could not run: %w", c.Name(), res.Err)
		}
	}

	m, err := analysis.NewAnalyzer(cfg).Analyze(c)
	if err != nil {
		return err
	}
	return printMetrics(cmd.OutOrStdout(), c, cfg.Simulation.OutputRoot, m)
}

// applyAssignments changes the labelled attributes of c. Processor and
// schedule values must be admissible in the space.
func applyAssignments(c space.Configuration, sp *config.Space, sets []string) (space.Configuration, error) {
	for _, set := range sets {
		label, value, ok := strings.Cut(set, "=")
		label, value = strings.TrimSpace(label), strings.TrimSpace(value)
		if !ok || label == "" || value == "" {
			return space.Configuration{}, fmt.Errorf("invalid assignment %q, want label=value", set)
		}
		dim, found := dimensionOf(c, label)
		if !found {
			return space.Configuration{}, fmt.Errorf("unknown attribute %q for a %d-node configuration", label, c.Nodes())
		}
		if allowed := space.Admissible(dim, sp); allowed != nil && !slices.Contains(allowed, value) {
			return space.Configuration{}, fmt.Errorf("%s value %q is not one of %v", dim, value, allowed)
		}
		next, err := c.With(dim, label, value)
		if err != nil {
			return space.Configuration{}, err
		}
		c = next
	}
	return c, nil
}

func dimensionOf(c space.Configuration, label string) (space.Dimension, bool) {
	for _, d := range space.Dimensions {
		if _, ok := c.Value(d, label); ok {
			return d, true
		}
	}
	return 0, false
}

func printMetrics(out io.Writer, c space.Configuration, outputRoot string, m metrics.Result) error {
	score := "-"
	if m.Healthy() {
		score = fmt.Sprintf("%.6g", search.ExportScore(c.Nodes(), m))
	}
	table := tablewriter.NewWriter(out)
	table.Header("Metric", "Value")
	rows := [][]any{
		{"Configuration", c.Name()},
		{"Output", c.OutputDir(outputRoot)},
		{"Energy", fmt.Sprintf("%.6g", m.Energy)},
		{"Avg Latency", fmt.Sprintf("%.6g", m.AverageLatency)},
		{"Throughput", fmt.Sprintf("%.6g", m.Throughput)},
		{"Geo Mean", score},
	}
	for _, row := range rows {
		if err := table.Append(row...); err != nil {
			return err
		}
	}
	return table.Render()
}
