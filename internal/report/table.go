package report

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/GoSim-25-26J-441/platform-dse/internal/exploration"
)

const cellSep = "&;"

// TableWriter appends records to a LaTeX-ready table whose cells are
// separated by "&;" and whose rows end in "\\". The two header rows are
// written when the file is empty.
type TableWriter struct {
	path        string
	nodeColumns int
	tasks       []string
	mu          sync.Mutex
}

// NewTableWriter removes any previous table at path. nodeColumns is the
// number of node column groups; narrower configurations are padded.
func NewTableWriter(path string, nodeColumns int, tasks []string) (*TableWriter, error) {
	if nodeColumns <= 0 {
		return nil, fmt.Errorf("node columns must be positive, got %d", nodeColumns)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create table directory: %w", err)
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to reset table %s: %w", path, err)
	}
	return &TableWriter{path: path, nodeColumns: nodeColumns, tasks: tasks}, nil
}

// Path returns the table file
func (w *TableWriter) Path() string { return w.path }

// Export implements search.Exporter
func (w *TableWriter) Export(n *exploration.Node) error {
	r, err := NewRecord(n)
	if err != nil {
		return err
	}
	return w.Write(r)
}

// Write appends one record
func (w *TableWriter) Write(r Record) error {
	if r.Nodes > w.nodeColumns {
		return fmt.Errorf("record %s has %d nodes, table has %d node columns", r.Config, r.Nodes, w.nodeColumns)
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	f, err := os.OpenFile(w.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open table %s: %w", w.path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return err
	}

	b := bufio.NewWriter(f)
	if info.Size() == 0 {
		w.writeHeader(b)
	}
	w.writeRow(b, r)
	if err := b.Flush(); err != nil {
		return fmt.Errorf("failed to write table %s: %w", w.path, err)
	}
	return f.Close()
}

func (w *TableWriter) writeHeader(b io.Writer) {
	fmt.Fprint(b, cellSep)
	for _, title := range []string{"Geometric Mean", "Nodes", "Energy", "Average Latency", "Throughput", "Iteration"} {
		fmt.Fprintf(b, `\rot{%s}%s`, title, cellSep)
	}
	for i := 1; i <= w.nodeColumns; i++ {
		fmt.Fprintf(b, `\multicolumn{3}{|c||}{Node %d}%s`, i, cellSep)
	}
	for _, task := range w.tasks {
		fmt.Fprintf(b, `\multicolumn{2}{|c||}{%s}%s`, task, cellSep)
	}
	fmt.Fprint(b, "\\\\\n")

	for i := 0; i < 7; i++ {
		fmt.Fprint(b, cellSep)
	}
	for i := 0; i < w.nodeColumns; i++ {
		fmt.Fprintf(b, `\rot{Processor}%s\rot{Schedule}%s\rot{Voltage [\%%]}%s`, cellSep, cellSep, cellSep)
	}
	for range w.tasks {
		fmt.Fprintf(b, `\rot{Node}%s\rot{Priority}%s`, cellSep, cellSep)
	}
	fmt.Fprint(b, "\\\\\n")
}

func (w *TableWriter) writeRow(b io.Writer, r Record) {
	cell := func(s string) { fmt.Fprint(b, s, cellSep) }

	cell("")
	if r.Score != nil {
		cell(formatFloat(*r.Score))
	} else {
		cell("")
	}
	cell(strconv.Itoa(r.Nodes))
	cell(formatFloat(r.Energy))
	cell(formatFloat(r.AverageLatency))
	cell(formatFloat(r.Throughput))
	cell(strconv.Itoa(r.Iteration))
	for i := 0; i < w.nodeColumns; i++ {
		if i < r.Nodes {
			cell(r.Processors[i])
			cell(r.Schedules[i])
			cell(strconv.Itoa(r.Voltages[i]))
			continue
		}
		cell("")
		cell("")
		cell("")
	}
	for i := range w.tasks {
		mapping, priority := "", ""
		if i < len(r.Mapping) {
			mapping = r.Mapping[i]
		}
		if i < len(r.Priorities) {
			priority = r.Priorities[i]
		}
		cell(mapping)
		cell(priority)
	}
	fmt.Fprint(b, "\\\\\n")
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
