package space

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/GoSim-25-26J-441/platform-dse/pkg/config"
)

// Variant distinguishes the cheap reduced configuration from the full one
type Variant int

const (
	// Reduced carries processors, schedules and voltage scales only. It is
	// used for dry exploration that never reaches the simulator.
	Reduced Variant = iota
	// Full adds the task mapping and task priorities and can be simulated.
	Full
)

func (v Variant) String() string {
	switch v {
	case Reduced:
		return "reduced"
	case Full:
		return "full"
	default:
		return fmt.Sprintf("variant(%d)", int(v))
	}
}

// Dimension names one attribute map of a configuration
type Dimension int

const (
	Mapping Dimension = iota
	Priority
	Processor
	Schedule
	Voltage
	numDimensions
)

// Dimensions lists every dimension in canonical order.
var Dimensions = []Dimension{Mapping, Priority, Processor, Schedule, Voltage}

// MutableDimensions lists the dimensions the neighbor generator changes, in
// the order it visits them.
var MutableDimensions = []Dimension{Processor, Schedule, Voltage}

func (d Dimension) String() string {
	switch d {
	case Mapping:
		return "mapping"
	case Priority:
		return "priority"
	case Processor:
		return "processor"
	case Schedule:
		return "schedule"
	case Voltage:
		return "voltage"
	default:
		return fmt.Sprintf("dimension(%d)", int(d))
	}
}

// Key is the canonical snapshot of a configuration. Two configurations with
// the same attribute assignments have the same Key, whatever order their
// maps were filled in. It is the membership key of every visited set.
type Key string

// Configuration is one point of the design space. It is immutable: With
// returns a modified copy and never touches the receiver's maps.
type Configuration struct {
	variant Variant
	attrs   [numDimensions]map[string]string
	key     Key
}

// Attributes groups the five attribute maps used to build a configuration
type Attributes struct {
	Mapping    map[string]string
	Priority   map[string]string
	Processors map[string]string
	Schedules  map[string]string
	Voltages   map[string]string
}

// New builds a configuration from its attribute maps. The maps are copied.
func New(variant Variant, a Attributes) (Configuration, error) {
	c := Configuration{variant: variant}
	c.attrs[Mapping] = copyMap(a.Mapping)
	c.attrs[Priority] = copyMap(a.Priority)
	c.attrs[Processor] = copyMap(a.Processors)
	c.attrs[Schedule] = copyMap(a.Schedules)
	c.attrs[Voltage] = copyMap(a.Voltages)

	if err := c.validate(); err != nil {
		return Configuration{}, err
	}
	c.key = c.canonicalKey()
	return c, nil
}

func (c Configuration) validate() error {
	nodes := len(c.attrs[Processor])
	if nodes == 0 {
		return fmt.Errorf("configuration has no nodes")
	}
	if len(c.attrs[Schedule]) != nodes || len(c.attrs[Voltage]) != nodes {
		return fmt.Errorf("configuration has %d processors, %d schedules and %d voltage scales",
			nodes, len(c.attrs[Schedule]), len(c.attrs[Voltage]))
	}
	for k, v := range c.attrs[Voltage] {
		if _, _, err := config.ParseVoltage(v); err != nil {
			return fmt.Errorf("%s: %w", k, err)
		}
	}

	switch c.variant {
	case Reduced:
		if len(c.attrs[Mapping]) != 0 || len(c.attrs[Priority]) != 0 {
			return fmt.Errorf("reduced configuration cannot carry a mapping or priorities")
		}
	case Full:
		tasks := len(c.attrs[Mapping])
		if tasks == 0 {
			return fmt.Errorf("full configuration needs a task mapping")
		}
		if len(c.attrs[Priority]) != tasks {
			return fmt.Errorf("full configuration maps %d tasks but has %d priorities", tasks, len(c.attrs[Priority]))
		}
		seen := make(map[int]bool, tasks)
		for k, v := range c.attrs[Priority] {
			p, err := strconv.Atoi(v)
			if err != nil || p < 1 || p > tasks || seen[p] {
				return fmt.Errorf("priorities must be a permutation of 1..%d, %s=%q", tasks, k, v)
			}
			seen[p] = true
		}
	default:
		return fmt.Errorf("unknown variant %d", int(c.variant))
	}
	return nil
}

// Variant reports whether the configuration is reduced or full.
func (c Configuration) Variant() Variant { return c.variant }

// Nodes is the number of processing nodes.
func (c Configuration) Nodes() int { return len(c.attrs[Processor]) }

// Key returns the canonical snapshot used for equality and set membership.
func (c Configuration) Key() Key { return c.key }

// Equal reports structural equality.
func (c Configuration) Equal(other Configuration) bool { return c.key == other.key }

// IsZero reports whether c was never built by New.
func (c Configuration) IsZero() bool { return c.key == "" }

// Value returns the value of one attribute.
func (c Configuration) Value(d Dimension, key string) (string, bool) {
	v, ok := c.attrs[d][key]
	return v, ok
}

// Keys returns the attribute keys of a dimension in natural order
// (Node2 before Node10).
func (c Configuration) Keys(d Dimension) []string {
	keys := make([]string, 0, len(c.attrs[d]))
	for k := range c.attrs[d] {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return naturalLess(keys[i], keys[j]) })
	return keys
}

// Values returns the attribute values of a dimension ordered by Keys.
func (c Configuration) Values(d Dimension) []string {
	keys := c.Keys(d)
	values := make([]string, len(keys))
	for i, k := range keys {
		values[i] = c.attrs[d][k]
	}
	return values
}

// Attributes returns a copy of one attribute map.
func (c Configuration) Attributes(d Dimension) map[string]string {
	return copyMap(c.attrs[d])
}

// With returns a copy of c with a single attribute changed. The receiver is
// left untouched; maps of the other dimensions are shared because they are
// never written after construction.
func (c Configuration) With(d Dimension, key, value string) (Configuration, error) {
	if _, ok := c.attrs[d][key]; !ok {
		return Configuration{}, fmt.Errorf("configuration has no %s attribute %q", d, key)
	}
	if d == Voltage {
		if _, _, err := config.ParseVoltage(value); err != nil {
			return Configuration{}, err
		}
	}
	next := c
	next.attrs[d] = copyMap(c.attrs[d])
	next.attrs[d][key] = value
	next.key = next.canonicalKey()
	return next, nil
}

// canonicalKey serialises the attribute maps as sorted key=value pairs.
// Mapping and priority are empty for reduced configurations, so the key of
// a reduced configuration only depends on the three mutable dimensions.
func (c Configuration) canonicalKey() Key {
	var b strings.Builder
	b.WriteString(c.variant.String())
	for _, d := range Dimensions {
		b.WriteByte('|')
		b.WriteString(d.String())
		b.WriteByte(':')
		for i, k := range c.Keys(d) {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteString(k)
			b.WriteByte('=')
			b.WriteString(c.attrs[d][k])
		}
	}
	return Key(b.String())
}

func (c Configuration) String() string { return c.Name() }

func copyMap(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
