// Package search drives the design-space exploration.
//
// A Controller owns the exploration graph and the cumulative tested set of
// one search invocation. Each round it expands the current winners, hands
// the frontier to a Simulator, analyzes the outputs and keeps the best
// ranked configurations as the next winners. The exhaustive mode enumerates
// the whole reachable space instead and ranks nothing.
package search
