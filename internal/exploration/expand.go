package exploration

import (
	"fmt"
	"math"

	"github.com/GoSim-25-26J-441/platform-dse/internal/space"
	"github.com/GoSim-25-26J-441/platform-dse/pkg/config"
)

// Unbounded is the depth bound of an exhaustive expansion
const Unbounded = math.MaxInt32

// Expansion is the outcome of one breadth-first expansion
type Expansion struct {
	Root NodeID
	// Discovered holds the configurations visited by this call that were not
	// in the previous set, in discovery order. It includes the root when the
	// root itself was not previously visited.
	Discovered []NodeID
}

// Count returns the number of newly visited configurations
func (e *Expansion) Count() int { return len(e.Discovered) }

type queued struct {
	depth int
	id    NodeID
}

// Expand grows the tree below root breadth-first. Every child differs from
// its parent in exactly one processor, schedule or voltage attribute of one
// node. Dimensions, keys and values are visited in a fixed order (dimension
// order of space.MutableDimensions, natural key order, declared value order)
// so the discovery order is reproducible.
//
// Configurations in previous are never attached or reported. When such a
// configuration already has a node in g, the walk continues through that
// node, so raising maxDepth on a later call reaches past neighbors tested
// in earlier rounds. New children are attached below the node they were
// derived from.
func Expand(g *Graph, root NodeID, s *config.Space, maxDepth int, previous *Set) (*Expansion, error) {
	rootNode := g.Node(root)
	if rootNode == nil {
		return nil, fmt.Errorf("unknown root node %d", root)
	}

	seen := NewSet(rootNode.Config)
	exp := &Expansion{Root: root}
	if !previous.Has(rootNode.Config) {
		exp.Discovered = append(exp.Discovered, root)
	}

	queue := []queued{{depth: 0, id: root}}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if cur.depth >= maxDepth {
			continue
		}

		node := g.Node(cur.id)
		for _, dim := range space.MutableDimensions {
			options := space.Admissible(dim, s)
			for _, key := range node.Config.Keys(dim) {
				current, _ := node.Config.Value(dim, key)
				for _, value := range options {
					if value == current {
						continue
					}
					cfg, err := node.Config.With(dim, key, value)
					if err != nil {
						return nil, fmt.Errorf("failed to derive neighbor of %s: %w", node.Config.Name(), err)
					}
					if !seen.Add(cfg) {
						continue
					}
					if previous.Has(cfg) {
						if known, ok := g.Lookup(cfg); ok {
							queue = append(queue, queued{depth: cur.depth + 1, id: known.ID})
						}
						continue
					}
					child := g.AddChild(node.ID, cfg)
					exp.Discovered = append(exp.Discovered, child.ID)
					queue = append(queue, queued{depth: cur.depth + 1, id: child.ID})
				}
			}
		}
	}

	return exp, nil
}
