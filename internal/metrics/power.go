package metrics

import (
	"fmt"
	"sort"
)

// Sample is a cumulative power level that holds from Time until the next
// sample.
type Sample struct {
	Time  float64
	Level float64
}

// IntegrityError reports a negative running energy total. Energy cannot be
// negative, so this points at a broken model or a broken trace.
type IntegrityError struct {
	Energy   float64
	From     float64
	To       float64
	MinPower float64
}

func (e *IntegrityError) Error() string {
	return fmt.Sprintf("improbable energy consumption %g between t=%g and t=%g (minimum power %g)",
		e.Energy, e.From, e.To, e.MinPower)
}

// PowerTrace accumulates power-delta events keyed by time
type PowerTrace struct {
	deltas map[float64]float64
}

// NewPowerTrace creates an empty power trace
func NewPowerTrace() *PowerTrace {
	return &PowerTrace{deltas: make(map[float64]float64)}
}

// Add records a power change. Changes at the same time are summed.
func (p *PowerTrace) Add(time, difference float64) {
	p.deltas[time] += difference
}

// Len returns the number of distinct event times
func (p *PowerTrace) Len() int { return len(p.deltas) }

// Samples returns the cumulative power levels sorted by time, prefixed with
// an implicit (0, 0) sample.
func (p *PowerTrace) Samples() []Sample {
	times := make([]float64, 0, len(p.deltas))
	for t := range p.deltas {
		times = append(times, t)
	}
	sort.Float64s(times)

	samples := make([]Sample, 0, len(times)+1)
	samples = append(samples, Sample{Time: 0, Level: 0})
	level := 0.0
	for _, t := range times {
		level += p.deltas[t]
		samples = append(samples, Sample{Time: t, Level: level})
	}
	return samples
}

// Energy integrates the piecewise-constant power level up to horizon. Each
// level holds until the next sample; the last level holds until horizon if
// the horizon lies beyond the last sample.
func (p *PowerTrace) Energy(horizon float64) (float64, error) {
	samples := p.Samples()
	minPower := samples[0].Level
	for _, s := range samples {
		if s.Level < minPower {
			minPower = s.Level
		}
	}

	energy := 0.0
	for i := 0; i+1 < len(samples); i++ {
		cur, next := samples[i], samples[i+1]
		energy += cur.Level * (next.Time - cur.Time)
		if energy < 0 {
			return 0, &IntegrityError{Energy: energy, From: cur.Time, To: next.Time, MinPower: minPower}
		}
	}

	last := samples[len(samples)-1]
	if horizon > last.Time {
		energy += last.Level * (horizon - last.Time)
		if energy < 0 {
			return 0, &IntegrityError{Energy: energy, From: last.Time, To: horizon, MinPower: minPower}
		}
	}
	return energy, nil
}
