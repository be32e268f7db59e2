// Package exploration builds the configuration graph searched by the
// design-space exploration.
//
// Nodes live in an arena owned by a Graph and are addressed by NodeID. A
// node stores its parent as a plain id and owns the ids of its children, so
// winners can be reused as the roots of later rounds without copying.
//
// Main Types:
//   - Graph: the node arena
//   - Node: a configuration plus exploration metadata and lazily set metrics
//   - Set: a visited set keyed by the configuration's canonical key
//
// Usage:
//
//	g := exploration.New()
//	root := g.AddRoot(cfg)
//	exp, err := exploration.Expand(g, root.ID, &space, 1, tested)
//	if err != nil {
//	    return err
//	}
//	for _, id := range exp.Discovered {
//	    // simulate g.Node(id).Config
//	}
package exploration
