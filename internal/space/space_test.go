package space

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/GoSim-25-26J-441/platform-dse/pkg/config"
)

func reduced(t *testing.T, procs, scheds, volts map[string]string) Configuration {
	t.Helper()
	c, err := New(Reduced, Attributes{Processors: procs, Schedules: scheds, Voltages: volts})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c
}

func TestEqualityIgnoresInsertionOrder(t *testing.T) {
	a := map[string]string{}
	a["Proc1"] = "ARMv8"
	a["Proc2"] = "MIPS"
	b := map[string]string{}
	b["Proc2"] = "MIPS"
	b["Proc1"] = "ARMv8"
	s := map[string]string{"Poli1": "FCFS", "Poli2": "PB"}
	v := map[string]string{"Volt1": "1.0/1.0", "Volt2": "3.0/4.0"}

	x := reduced(t, a, s, v)
	y := reduced(t, b, s, v)
	if !x.Equal(y) || x.Key() != y.Key() {
		t.Fatalf("expected equal configurations, got %q and %q", x.Key(), y.Key())
	}

	z, err := x.With(Processor, "Proc2", "Adreno")
	if err != nil {
		t.Fatal(err)
	}
	if z.Equal(x) {
		t.Fatal("changed configuration should not be equal")
	}
}

func TestWithLeavesReceiverUntouched(t *testing.T) {
	c := reduced(t,
		map[string]string{"Proc1": "ARMv8"},
		map[string]string{"Poli1": "FCFS"},
		map[string]string{"Volt1": "1.0/1.0"})
	key := c.Key()

	next, err := c.With(Voltage, "Volt1", "1.0/2.0")
	if err != nil {
		t.Fatal(err)
	}
	if c.Key() != key {
		t.Fatal("With modified its receiver")
	}
	if v, _ := c.Value(Voltage, "Volt1"); v != "1.0/1.0" {
		t.Fatalf("receiver voltage changed to %s", v)
	}
	if v, _ := next.Value(Voltage, "Volt1"); v != "1.0/2.0" {
		t.Fatalf("copy voltage = %s", v)
	}

	if _, err := c.With(Voltage, "Volt9", "1.0/2.0"); err == nil {
		t.Fatal("expected error for unknown key")
	}
	if _, err := c.With(Voltage, "Volt1", "half"); err == nil {
		t.Fatal("expected error for malformed voltage")
	}
}

func TestNewRejectsInvalid(t *testing.T) {
	tests := []struct {
		name    string
		variant Variant
		attrs   Attributes
	}{
		{"no nodes", Reduced, Attributes{}},
		{"length mismatch", Reduced, Attributes{
			Processors: map[string]string{"Proc1": "A", "Proc2": "B"},
			Schedules:  map[string]string{"Poli1": "FCFS"},
			Voltages:   map[string]string{"Volt1": "1/1"},
		}},
		{"bad voltage", Reduced, Attributes{
			Processors: map[string]string{"Proc1": "A"},
			Schedules:  map[string]string{"Poli1": "FCFS"},
			Voltages:   map[string]string{"Volt1": "one"},
		}},
		{"reduced with mapping", Reduced, Attributes{
			Mapping:    map[string]string{"MapTask1To": "Node1"},
			Processors: map[string]string{"Proc1": "A"},
			Schedules:  map[string]string{"Poli1": "FCFS"},
			Voltages:   map[string]string{"Volt1": "1/1"},
		}},
		{"full without mapping", Full, Attributes{
			Processors: map[string]string{"Node1ProcessorType": "A"},
			Schedules:  map[string]string{"OSPolicy1": "FCFS"},
			Voltages:   map[string]string{"VSF1": "1/1"},
		}},
		{"priorities not a permutation", Full, Attributes{
			Mapping:    map[string]string{"MapTask1To": "Node1", "MapTask2To": "Node1"},
			Priority:   map[string]string{"PriorityTask1": "1", "PriorityTask2": "1"},
			Processors: map[string]string{"Node1ProcessorType": "A"},
			Schedules:  map[string]string{"OSPolicy1": "FCFS"},
			Voltages:   map[string]string{"VSF1": "1/1"},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := New(tt.variant, tt.attrs); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestName(t *testing.T) {
	c := reduced(t,
		map[string]string{"Proc1": "ARMv8", "Proc2": "MIPS"},
		map[string]string{"Poli1": "FCFS", "Poli2": "PB"},
		map[string]string{"Volt1": "1.0/1.0", "Volt2": "3.0/4.0"})
	if got, want := c.Name(), "N2-PAR_MI-SFC_PB-V100_75"; got != want {
		t.Fatalf("Name() = %q, want %q", got, want)
	}
}

func TestNameOrdersNodesNaturally(t *testing.T) {
	procs := map[string]string{}
	scheds := map[string]string{}
	volts := map[string]string{}
	for i := 1; i <= 10; i++ {
		p, s, v := reducedLabels(i)
		procs[p] = "ARMv8"
		scheds[s] = "FCFS"
		volts[v] = "1.0/1.0"
	}
	procs["Proc10"] = "MIPS"
	procs["Proc2"] = "Adreno"

	c := reduced(t, procs, scheds, volts)
	name := c.Name()
	if !strings.HasPrefix(name, "N10-PAR_Ad_AR_AR_AR_AR_AR_AR_AR_MI-") {
		t.Fatalf("unexpected node order in %q", name)
	}
}

func TestVoltagePercent(t *testing.T) {
	tests := map[string]int{
		"1.0/1.0": 100,
		"3.0/4.0": 75,
		"2.0/3.0": 66,
		"1.0/2.0": 50,
		"1.0/3.0": 33,
		"1.0/4.0": 25,
	}
	for in, want := range tests {
		got, err := VoltagePercent(in)
		if err != nil {
			t.Errorf("VoltagePercent(%q): %v", in, err)
			continue
		}
		if got != want {
			t.Errorf("VoltagePercent(%q) = %d, want %d", in, got, want)
		}
	}
	if _, err := VoltagePercent("x"); err == nil {
		t.Error("expected error for malformed voltage")
	}
}

func TestDefaultValuesYieldDistinctOutputDirs(t *testing.T) {
	sp := config.Default().Space
	p, s, v := reducedLabels(1)
	dirs := map[string]string{}
	for _, proc := range sp.Processors {
		for _, sched := range sp.Schedules {
			for _, volt := range sp.VoltageScales {
				c := reduced(t,
					map[string]string{p: proc},
					map[string]string{s: sched},
					map[string]string{v: volt})
				dir := c.OutputDir("out")
				if prev, ok := dirs[dir]; ok {
					t.Fatalf("%s and %s share %s", prev, c.Key(), dir)
				}
				dirs[dir] = string(c.Key())
			}
		}
	}
	if want := len(sp.Processors) * len(sp.Schedules) * len(sp.VoltageScales); len(dirs) != want {
		t.Fatalf("expected %d directories, got %d", want, len(dirs))
	}
}

func TestNewRootFull(t *testing.T) {
	sp := config.Default().Space
	root, err := NewRoot(Full, 2, &sp)
	if err != nil {
		t.Fatal(err)
	}
	if root.Nodes() != 2 {
		t.Fatalf("Nodes() = %d", root.Nodes())
	}
	if v, _ := root.Value(Processor, "Node2ProcessorType"); v != "ARMv8" {
		t.Fatalf("node 2 processor = %q", v)
	}
	if v, _ := root.Value(Priority, "PriorityTask11"); v != "11" {
		t.Fatalf("task 11 priority = %q", v)
	}
	if got, want := root.Name(), "N2-PAR_AR-SFC_FC-V100_100"; got != want {
		t.Fatalf("Name() = %q, want %q", got, want)
	}

	want := filepath.Join("out", "2Nodes",
		"MapT1-N1_T2-N1_T3-N2_T4-N2_T5-N1_T6-N2_T7-N1_T8-N2_T9-N1_T10-N2_T11-N2",
		"PriT1-P1_T2-P2_T3-P3_T4-P4_T5-P5_T6-P6_T7-P7_T8-P8_T9-P9_T10-P10_T11-P11",
		"ProAR_AR", "SchedFC_FC", "Volt100_100")
	if got := root.OutputDir("out"); got != want {
		t.Fatalf("OutputDir() =\n %s\nwant\n %s", got, want)
	}
}

func TestNewRootReduced(t *testing.T) {
	sp := config.Default().Space
	root, err := NewRoot(Reduced, 3, &sp)
	if err != nil {
		t.Fatal(err)
	}
	if got := root.Keys(Schedule); len(got) != 3 || got[0] != "Poli1" || got[2] != "Poli3" {
		t.Fatalf("Keys(Schedule) = %v", got)
	}
	if len(root.Attributes(Mapping)) != 0 {
		t.Fatal("reduced root should have no mapping")
	}
	if _, err := NewRoot(Reduced, 0, &sp); err == nil {
		t.Fatal("expected error for zero nodes")
	}
}

func TestAdmissible(t *testing.T) {
	sp := config.Default().Space
	if got := Admissible(Voltage, &sp); len(got) != 6 || got[0] != "1.0/1.0" {
		t.Fatalf("Admissible(Voltage) = %v", got)
	}
	if got := Admissible(Mapping, &sp); got != nil {
		t.Fatalf("Admissible(Mapping) = %v", got)
	}
}
