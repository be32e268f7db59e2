package search

import (
	"testing"

	"github.com/GoSim-25-26J-441/platform-dse/internal/exploration"
	"github.com/GoSim-25-26J-441/platform-dse/internal/metrics"
	"github.com/GoSim-25-26J-441/platform-dse/internal/space"
	"github.com/GoSim-25-26J-441/platform-dse/pkg/config"
)

func TestCompare(t *testing.T) {
	sp := config.Default().Space
	cfg, err := space.NewRoot(space.Reduced, 1, &sp)
	if err != nil {
		t.Fatal(err)
	}
	root := &exploration.Node{Config: cfg, Analyzed: true,
		Metrics: metrics.Result{Energy: 10, AverageLatency: 4, Throughput: 0.5}}
	other, _ := cfg.With(space.Processor, "Proc1", "MIPS")
	cand := &exploration.Node{Config: other, Analyzed: true,
		Metrics: metrics.Result{Energy: 8, AverageLatency: 5, Throughput: 0.25}}

	cmp, err := Compare(root, cand, &EnergyObjective{})
	if err != nil {
		t.Fatal(err)
	}
	if !cmp.Improvement || cmp.ScoreDiff != -2 {
		t.Fatalf("lower energy must be an improvement: %+v", cmp)
	}
	if cmp.EnergyDiff != -2 || cmp.LatencyDiff != 1 || cmp.ThroughputDiff != -0.25 {
		t.Fatalf("unexpected deltas %+v", cmp)
	}
	if cmp.Baseline != cfg.Name() || cmp.Config != other.Name() {
		t.Fatalf("unexpected names %+v", cmp)
	}

	cmp, err = Compare(root, cand, &ThroughputObjective{})
	if err != nil {
		t.Fatal(err)
	}
	if cmp.Improvement {
		t.Fatal("lower throughput must not be an improvement")
	}
}

func TestCompareErrors(t *testing.T) {
	n := &exploration.Node{Analyzed: false}
	if _, err := Compare(nil, n, &EnergyObjective{}); err == nil {
		t.Fatal("expected error for nil baseline")
	}
	if _, err := Compare(n, n, nil); err == nil {
		t.Fatal("expected error for nil objective")
	}
}
