package trace

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestReconstructPreemption(t *testing.T) {
	events := []Event{
		{Kind: Start, Task: "A", Iteration: 0, Time: 0},
		{Kind: Start, Task: "B", Iteration: 0, Time: 2},
		{Kind: Stop, Task: "B", Time: 5},
		{Kind: Start, Task: "A", Iteration: 0, Time: 5},
		{Kind: Stop, Task: "A", Time: 8},
	}

	intervals, err := ReconstructNode("Node1", events)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(intervals) != 2 {
		t.Fatalf("expected 2 intervals, got %d", len(intervals))
	}

	b, a := intervals[0], intervals[1]
	if b.Task != "B" || b.Start != 2 || b.Stop != 5 || b.Down != 0 {
		t.Errorf("unexpected B interval: %+v", b)
	}
	if a.Task != "A" || a.Start != 0 || a.Stop != 8 || a.Down != 3 {
		t.Errorf("unexpected A interval: %+v", a)
	}
	if a.Node != "Node1" {
		t.Errorf("expected node Node1, got %s", a.Node)
	}
}

func TestReconstructNestedPreemption(t *testing.T) {
	r := NewReconstructor("Node2")
	events := []Event{
		{Kind: Start, Task: "A", Iteration: 1, Time: 0},
		{Kind: Start, Task: "B", Iteration: 1, Time: 1},
		{Kind: Start, Task: "C", Iteration: 1, Time: 2},
		{Kind: Stop, Task: "C", Time: 4},
		{Kind: Start, Task: "B", Iteration: 1, Time: 4},
		{Kind: Stop, Task: "B", Time: 6},
		{Kind: Start, Task: "A", Iteration: 1, Time: 6},
	}
	for _, ev := range events {
		if err := r.Apply(ev); err != nil {
			t.Fatalf("Apply(%+v): %v", ev, err)
		}
	}
	if r.Open() != 1 {
		t.Fatalf("expected A to remain open, got %d open", r.Open())
	}

	got := r.Intervals()
	if len(got) != 2 {
		t.Fatalf("expected 2 closed intervals, got %d", len(got))
	}
	if got[1].Task != "B" || got[1].Down != 2 {
		t.Errorf("B should have been down for 2, got %+v", got[1])
	}

	if err := r.Apply(Event{Kind: Stop, Task: "A", Time: 9}); err != nil {
		t.Fatal(err)
	}
	a := r.Intervals()[2]
	if a.Down != 5 {
		t.Errorf("A should have been down for 5, got %v", a.Down)
	}
}

func TestReconstructInconsistencies(t *testing.T) {
	tests := []struct {
		name   string
		events []Event
		reason string
	}{
		{
			name:   "stop without start",
			events: []Event{{Kind: Stop, Task: "X", Time: 1}},
			reason: "without a matching start",
		},
		{
			name: "ambiguous stop",
			events: []Event{
				{Kind: Start, Task: "A", Iteration: 0, Time: 0},
				{Kind: Start, Task: "A", Iteration: 1, Time: 1},
				{Kind: Stop, Task: "A", Time: 2},
			},
			reason: "more than one",
		},
		{
			name: "resume without preemption",
			events: []Event{
				{Kind: Start, Task: "A", Iteration: 0, Time: 0},
				{Kind: Start, Task: "A", Iteration: 0, Time: 1},
			},
			reason: "without a recorded preemption",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReconstructNode("Node1", tt.events)
			if err == nil {
				t.Fatal("expected an inconsistency error")
			}
			var ie *InconsistencyError
			if !errors.As(err, &ie) {
				t.Fatalf("expected *InconsistencyError, got %T", err)
			}
			if !strings.Contains(ie.Reason, tt.reason) {
				t.Errorf("expected reason containing %q, got %q", tt.reason, ie.Reason)
			}
			if ie.Node != "Node1" {
				t.Errorf("expected node Node1, got %s", ie.Node)
			}
		})
	}
}

const processorXML = `<?xml version="1.0"?>
<trace>
  <taskStart time="0" task="A" iteration="0"/>
  <taskStart time="2.0" task="B" iteration="0"/>
  <taskStop time="5" task="B"/>
  <taskStart time="5" task="A" iteration="0"/>
  <marker time="6" task="A"/>
  <taskStop time="8" task="A"/>
</trace>`

func TestDecodeProcessorTrace(t *testing.T) {
	events, err := DecodeProcessorTrace(strings.NewReader(processorXML))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(events) != 5 {
		t.Fatalf("expected 5 events, got %d", len(events))
	}
	if events[1].Kind != Start || events[1].Task != "B" || events[1].Time != 2 {
		t.Errorf("unexpected event: %+v", events[1])
	}
	if events[4].Kind != Stop || events[4].Time != 8 {
		t.Errorf("unexpected event: %+v", events[4])
	}

	intervals, err := ReconstructNode("Node1", events)
	if err != nil {
		t.Fatal(err)
	}
	if intervals[1].Down != 3 {
		t.Errorf("expected A down 3, got %v", intervals[1].Down)
	}
}

func TestDecodeProcessorTraceErrors(t *testing.T) {
	bad := []string{
		`<trace><taskStart time="x" task="A" iteration="0"/></trace>`,
		`<trace><taskStart time="1" task="A"/></trace>`,
		`<trace><taskStop time="1"/></trace>`,
		`<trace><taskStart time="1" task="A" iteration="0"/>`,
	}
	for _, doc := range bad {
		if _, err := DecodeProcessorTrace(strings.NewReader(doc)); err == nil {
			t.Errorf("expected error for %s", doc)
		}
	}
}

func TestReadPowerTrace(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, PowerTraceFile)
	doc := `<battery><power time="0" difference="2"/><power time="3" difference="-1"/></battery>`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}

	deltas, err := ReadPowerTrace(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(deltas) != 2 || deltas[1].Time != 3 || deltas[1].Difference != -1 {
		t.Fatalf("unexpected deltas: %+v", deltas)
	}

	if _, err := ReadPowerTrace(filepath.Join(dir, "missing.xml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestProcessorTraceFile(t *testing.T) {
	if got := ProcessorTraceFile(3); got != "ProcessorTraceNode3.xml" {
		t.Fatalf("ProcessorTraceFile(3) = %s", got)
	}
}
