package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/GoSim-25-26J-441/platform-dse/internal/analysis"
	"github.com/GoSim-25-26J-441/platform-dse/internal/report"
	"github.com/GoSim-25-26J-441/platform-dse/internal/search"
	"github.com/GoSim-25-26J-441/platform-dse/internal/server"
	"github.com/GoSim-25-26J-441/platform-dse/internal/simulator"
	"github.com/GoSim-25-26J-441/platform-dse/pkg/config"
	"github.com/GoSim-25-26J-441/platform-dse/pkg/logger"
)

var exhaustiveCmd = &cobra.Command{
	Use:   "exhaustive",
	Short: "Simulate every configuration reachable from the root",
	Long: `Enumerates the whole design space of each node count, simulates every
configuration once and ranks them all.`,
	RunE: searchRunner(config.ModeExhaustive),
}

var iterativeCmd = &cobra.Command{
	Use:   "iterative",
	Short: "Expand the best configurations by one step per round",
	RunE:  searchRunner(config.ModeIterative),
}

var directedCmd = &cobra.Command{
	Use:   "directed",
	Short: "Expand repeat winners deeper each round, up to --max-depth",
	RunE:  searchRunner(config.ModeDirected),
}

func init() {
	rootCmd.AddCommand(exhaustiveCmd, iterativeCmd, directedCmd)
}

func searchRunner(mode string) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(viper.GetViper(), mode)
		if err != nil {
			return err
		}
		setupLogger(cfg)

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return runSearch(ctx, cfg, cmd.OutOrStdout())
	}
}

// newPool wires the simulator process runner behind a worker pool
func newPool(cfg *config.Config) (*simulator.Pool, error) {
	tmpl, err := simulator.LoadTemplate(cfg.Simulation.ModelTemplate)
	if err != nil {
		return nil, err
	}
	runner, err := simulator.NewProcessRunner(&cfg.Simulation, cfg.Space.Application, tmpl)
	if err != nil {
		return nil, err
	}
	return simulator.NewPool(runner, &cfg.Simulation), nil
}

// runSearch searches every configured node count in turn and prints the
// winners of each
func runSearch(ctx context.Context, cfg *config.Config, out io.Writer) error {
	var (
		sim      search.Simulator
		analyzer search.Analyzer
	)
	if !cfg.Search.DryRun {
		pool, err := newPool(cfg)
		if err != nil {
			return err
		}
		sim = pool
		analyzer = analysis.NewAnalyzer(cfg)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var srv *server.Server
	if cfg.Server.HTTPAddr != "" || cfg.Server.GRPCAddr != "" {
		srv = server.New(cfg.Server, server.NewRegistry())
		if err := srv.Start(func(error) { cancel() }); err != nil {
			return err
		}
		defer func() {
			shutdownCtx, done := context.WithTimeout(context.Background(), 10*time.Second)
			defer done()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Error("server shutdown error", "error", err)
			}
		}()
	}

	var sink *report.NATSSink
	if cfg.Export.NATSURL != "" {
		var err error
		sink, err = report.NewNATSSink(cfg.Export.NATSURL, cfg.Export.NATSSubject)
		if err != nil {
			return err
		}
		defer func() {
			if err := sink.Close(); err != nil {
				logger.Warn("failed to flush NATS sink", "error", err)
			}
		}()
	}

	for _, nodes := range cfg.Search.Nodes {
		ctrl, err := search.NewController(cfg, sim, analyzer)
		if err != nil {
			return err
		}

		var exporters report.Exporters
		if !cfg.Search.DryRun {
			table, err := report.NewTableWriter(filepath.Join(exportDir(cfg), tableName(&cfg.Search, nodes)), nodes, cfg.Space.Tasks)
			if err != nil {
				return err
			}
			exporters = append(exporters, table)
		}
		if sink != nil {
			exporters = append(exporters, sink)
		}
		if len(exporters) > 0 {
			ctrl.WithExporter(exporters)
		}
		if srv != nil {
			ctrl.WithObserver(srv)
		}

		res, err := ctrl.Run(ctx, nodes)
		if res != nil {
			if perr := printResult(out, res, ctrl.Objective()); perr != nil {
				return perr
			}
			if cfg.Export.JSON != "" {
				path := summaryPath(cfg.Export.JSON, nodes, len(cfg.Search.Nodes) > 1)
				if werr := report.WriteSummary(path, res, ctrl.Objective()); werr != nil {
					return werr
				}
			}
		}
		if err != nil {
			return fmt.Errorf("%s search with %d nodes: %w", cfg.Search.Mode, nodes, err)
		}
	}
	return nil
}

func printResult(out io.Writer, res *search.Result, objective search.ObjectiveFunction) error {
	fmt.Fprintf(out, "%s search, %d nodes: %d configurations tested in %s\n",
		res.Mode, res.Nodes, len(res.Tested), res.Duration.Round(time.Millisecond))
	if err := report.RenderWinners(out, res.WinnerNodes()); err != nil {
		return err
	}
	best, err := res.Best(objective)
	switch {
	case errors.Is(err, search.ErrNoWinners):
		fmt.Fprintln(out, "no configuration could be ranked")
	case err != nil:
		return err
	default:
		fmt.Fprintf(out, "best: %s (%s %.6g)\n", best.Node.Config.Name(), objective.Name(), best.Score)
	}
	if res.Converged {
		fmt.Fprintf(out, "stopped early: %s\n", res.ConvergenceReason)
	}
	return nil
}

func exportDir(cfg *config.Config) string {
	if cfg.Export.Dir != "" {
		return cfg.Export.Dir
	}
	return cfg.Simulation.OutputRoot
}

// tableName names the result table of one search the way earlier result
// sets were named
func tableName(s *config.Search, nodes int) string {
	switch s.Mode {
	case config.ModeExhaustive:
		return fmt.Sprintf("exhaustive_search_%d_nodes.csv", nodes)
	case config.ModeDirected:
		return fmt.Sprintf("directed_iterative_search_depth_%d_sampsize_%d_%d_nodes.csv", s.Iterations, s.SampleSize, nodes)
	default:
		return fmt.Sprintf("iterative_search_depth_%d_sampsize_%d_%d_nodes.csv", s.Iterations, s.SampleSize, nodes)
	}
}

// summaryPath gives each node count its own summary file when several are
// searched
func summaryPath(path string, nodes int, multi bool) string {
	if !multi {
		return path
	}
	ext := filepath.Ext(path)
	return fmt.Sprintf("%s_%dnodes%s", strings.TrimSuffix(path, ext), nodes, ext)
}
