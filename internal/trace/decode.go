package trace

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// Trace file names written by the simulator into a configuration's output
// location.
const (
	PowerTraceFile = "BatteryTrace.xml"
)

// ProcessorTraceFile is the per-node event file of node i (1-based)
func ProcessorTraceFile(node int) string {
	return fmt.Sprintf("ProcessorTraceNode%d.xml", node)
}

// PowerDelta is one record of the power trace: the power level changes by
// Difference at Time.
type PowerDelta struct {
	Time       float64
	Difference float64
}

// record is a child element of a trace document with its attributes
type record struct {
	tag   string
	attrs map[string]string
}

// readRecords returns the direct children of the document's root element
func readRecords(r io.Reader) ([]record, error) {
	dec := xml.NewDecoder(r)
	var out []record
	depth := 0
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			depth++
			if depth == 2 {
				rec := record{tag: t.Name.Local, attrs: make(map[string]string, len(t.Attr))}
				for _, a := range t.Attr {
					rec.attrs[a.Name.Local] = a.Value
				}
				out = append(out, rec)
			}
		case xml.EndElement:
			depth--
		}
	}
	if depth != 0 {
		return nil, fmt.Errorf("unterminated trace document")
	}
	return out, nil
}

func (rec record) float(name string) (float64, error) {
	v, ok := rec.attrs[name]
	if !ok {
		return 0, fmt.Errorf("<%s> has no %q attribute", rec.tag, name)
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil {
		return 0, fmt.Errorf("<%s> attribute %q: %w", rec.tag, name, err)
	}
	return f, nil
}

// DecodePowerTrace reads the power-delta records of a battery trace
func DecodePowerTrace(r io.Reader) ([]PowerDelta, error) {
	recs, err := readRecords(r)
	if err != nil {
		return nil, fmt.Errorf("failed to decode power trace: %w", err)
	}
	out := make([]PowerDelta, 0, len(recs))
	for i, rec := range recs {
		t, err := rec.float("time")
		if err != nil {
			return nil, fmt.Errorf("power record %d: %w", i, err)
		}
		d, err := rec.float("difference")
		if err != nil {
			return nil, fmt.Errorf("power record %d: %w", i, err)
		}
		out = append(out, PowerDelta{Time: t, Difference: d})
	}
	return out, nil
}

// DecodeProcessorTrace reads the ordered task events of one node. A record
// is a start when its tag contains "start" and a stop when it contains
// "stop"; other records are ignored.
func DecodeProcessorTrace(r io.Reader) ([]Event, error) {
	recs, err := readRecords(r)
	if err != nil {
		return nil, fmt.Errorf("failed to decode processor trace: %w", err)
	}
	out := make([]Event, 0, len(recs))
	for i, rec := range recs {
		var kind EventKind
		tag := strings.ToLower(rec.tag)
		switch {
		case strings.Contains(tag, "start"):
			kind = Start
		case strings.Contains(tag, "stop"):
			kind = Stop
		default:
			continue
		}

		t, err := rec.float("time")
		if err != nil {
			return nil, fmt.Errorf("processor record %d: %w", i, err)
		}
		ev := Event{Kind: kind, Task: rec.attrs["task"], Time: t}
		if ev.Task == "" {
			return nil, fmt.Errorf("processor record %d: <%s> has no task", i, rec.tag)
		}
		if kind == Start {
			it, err := strconv.Atoi(strings.TrimSpace(rec.attrs["iteration"]))
			if err != nil {
				return nil, fmt.Errorf("processor record %d: iteration: %w", i, err)
			}
			ev.Iteration = it
		}
		out = append(out, ev)
	}
	return out, nil
}

// ReadPowerTrace opens and decodes a power trace file
func ReadPowerTrace(path string) ([]PowerDelta, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return DecodePowerTrace(f)
}

// ReadProcessorTrace opens and decodes a processor trace file
func ReadProcessorTrace(path string) ([]Event, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return DecodeProcessorTrace(f)
}
