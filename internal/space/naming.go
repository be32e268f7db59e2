package space

import (
	"fmt"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/GoSim-25-26J-441/platform-dse/pkg/config"
)

// Name derives the sortable configuration name, for example
// N2-PAR_MI-SFC_PB-V100_75. Values are ordered by node key.
func (c Configuration) Name() string {
	return fmt.Sprintf("N%d-P%s-S%s-V%s",
		c.Nodes(),
		strings.Join(abbreviate(c.Values(Processor)), "_"),
		strings.Join(abbreviate(c.Values(Schedule)), "_"),
		strings.Join(percentages(c.Values(Voltage)), "_"),
	)
}

// OutputDir derives the configuration's output location below root. The
// path doubles as the simulator's work directory and as the on-disk cache
// of earlier runs, so it must only depend on the attribute values.
func (c Configuration) OutputDir(root string) string {
	return filepath.Join(root,
		fmt.Sprintf("%dNodes", c.Nodes()),
		"Map"+strings.Join(c.taskPairs(Mapping, "N"), "_"),
		"Pri"+strings.Join(c.taskPairs(Priority, "P"), "_"),
		"Pro"+strings.Join(abbreviate(c.Values(Processor)), "_"),
		"Sched"+strings.Join(abbreviate(c.Values(Schedule)), "_"),
		"Volt"+strings.Join(percentages(c.Values(Voltage)), "_"),
	)
}

// VoltagePercent converts a num/den voltage scale to a truncated percentage.
func VoltagePercent(v string) (int, error) {
	return config.VoltagePercent(v)
}

// taskPairs renders "T<digits of key>-<tag><digits of value>" per attribute.
func (c Configuration) taskPairs(d Dimension, tag string) []string {
	keys := c.Keys(d)
	out := make([]string, len(keys))
	for i, k := range keys {
		out[i] = "T" + digits(k) + "-" + tag + digits(c.attrs[d][k])
	}
	return out
}

func abbreviate(values []string) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = config.Abbreviate(v)
	}
	return out
}

func percentages(values []string) []string {
	out := make([]string, len(values))
	for i, v := range values {
		p, err := VoltagePercent(v)
		if err != nil {
			out[i] = "NaN"
			continue
		}
		out[i] = fmt.Sprintf("%d", p)
	}
	return out
}

func digits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// naturalLess orders strings with embedded numbers numerically, so that
// Node2ProcessorType sorts before Node10ProcessorType.
func naturalLess(a, b string) bool {
	for a != "" && b != "" {
		ra, rb := rune(a[0]), rune(b[0])
		if unicode.IsDigit(ra) && unicode.IsDigit(rb) {
			na, restA := leadingNumber(a)
			nb, restB := leadingNumber(b)
			if len(na) != len(nb) {
				return len(na) < len(nb)
			}
			if na != nb {
				return na < nb
			}
			a, b = restA, restB
			continue
		}
		if ra != rb {
			return ra < rb
		}
		a, b = a[1:], b[1:]
	}
	return len(a) < len(b)
}

// leadingNumber splits off the leading digit run, without leading zeros.
func leadingNumber(s string) (string, string) {
	i := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	n := strings.TrimLeft(s[:i], "0")
	return n, s[i:]
}
