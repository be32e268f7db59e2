package report

import (
	"fmt"
	"io"

	"github.com/olekukonko/tablewriter"

	"github.com/GoSim-25-26J-441/platform-dse/internal/exploration"
	"github.com/GoSim-25-26J-441/platform-dse/internal/search"
)

// RenderWinners prints one row per node. Nodes without metrics keep their
// row with dashes.
func RenderWinners(w io.Writer, nodes []*exploration.Node) error {
	table := tablewriter.NewWriter(w)
	table.Header("#", "Configuration", "Round", "Depth", "Energy", "Avg Latency", "Throughput", "Geo Mean")

	for i, n := range nodes {
		row := []any{i + 1, n.Config.Name(), n.Round, n.Depth}
		if n.Analyzed && n.Metrics.Healthy() {
			row = append(row,
				fmt.Sprintf("%.6g", n.Metrics.Energy),
				fmt.Sprintf("%.6g", n.Metrics.AverageLatency),
				fmt.Sprintf("%.6g", n.Metrics.Throughput),
				fmt.Sprintf("%.6g", search.Score(n.Metrics)))
		} else {
			row = append(row, "-", "-", "-", "-")
		}
		if err := table.Append(row...); err != nil {
			return err
		}
	}
	return table.Render()
}
