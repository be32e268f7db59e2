package search

import (
	"sort"

	"github.com/GoSim-25-26J-441/platform-dse/internal/exploration"
)

// Candidate is an analyzed node together with its objective score
type Candidate struct {
	Node  *exploration.Node
	Score float64
}

// Rank orders analyzed, healthy nodes by ascending score. Nodes the
// objective cannot evaluate are left out; equal scores keep the input order,
// which is the generator's discovery order.
func Rank(nodes []*exploration.Node, objective ObjectiveFunction) []Candidate {
	ranked := make([]Candidate, 0, len(nodes))
	for _, n := range nodes {
		if n.Failed || !n.Analyzed {
			continue
		}
		score, err := objective.Evaluate(n.Metrics)
		if err != nil {
			continue
		}
		ranked = append(ranked, Candidate{Node: n, Score: score})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score < ranked[j].Score
	})
	return ranked
}

// SelectWinners picks up to k nodes to seed the next round. Failed nodes are
// discarded first. A dry run keeps the first k healthy nodes in generator
// order; a real run returns the k best ranked nodes in rank order, leaving
// out every node the objective cannot evaluate.
func SelectWinners(nodes []*exploration.Node, k int, objective ObjectiveFunction, dryRun bool) []*exploration.Node {
	if k <= 0 {
		return nil
	}
	if dryRun {
		healthy := make([]*exploration.Node, 0, min(k, len(nodes)))
		for _, n := range nodes {
			if n.Failed {
				continue
			}
			healthy = append(healthy, n)
			if len(healthy) == k {
				break
			}
		}
		return healthy
	}

	ranked := Rank(nodes, objective)
	if len(ranked) > k {
		ranked = ranked[:k]
	}
	winners := make([]*exploration.Node, len(ranked))
	for i, c := range ranked {
		winners[i] = c.Node
	}
	return winners
}
