package exploration

import (
	"github.com/GoSim-25-26J-441/platform-dse/internal/metrics"
	"github.com/GoSim-25-26J-441/platform-dse/internal/space"
)

// NodeID indexes a node in its Graph
type NodeID int

// NoParent is the parent of a root node
const NoParent NodeID = -1

// Node wraps a configuration with exploration metadata
type Node struct {
	ID       NodeID
	Config   space.Configuration
	Parent   NodeID
	Children []NodeID

	// Depth starts at 0 and is raised by the directed search each round the
	// node survives as a winner; it bounds how far that node may explore.
	Depth int
	// Round is the search round in which the node was generated.
	Round int

	Metrics  metrics.Result
	Analyzed bool
	// Failed marks a configuration whose simulation left an error marker or
	// whose analysis failed.
	Failed bool
}

// Graph is an append-only arena of nodes
type Graph struct {
	nodes []*Node
	index map[space.Key]NodeID
}

// New creates an empty graph
func New() *Graph {
	return &Graph{index: make(map[space.Key]NodeID)}
}

// AddRoot adds a node without parent
func (g *Graph) AddRoot(cfg space.Configuration) *Node {
	return g.add(cfg, NoParent)
}

// AddChild adds a node under parent and records it in the parent's children
func (g *Graph) AddChild(parent NodeID, cfg space.Configuration) *Node {
	n := g.add(cfg, parent)
	if p := g.Node(parent); p != nil {
		p.Children = append(p.Children, n.ID)
	}
	return n
}

func (g *Graph) add(cfg space.Configuration, parent NodeID) *Node {
	n := &Node{
		ID:     NodeID(len(g.nodes)),
		Config: cfg,
		Parent: parent,
	}
	g.nodes = append(g.nodes, n)
	if _, ok := g.index[cfg.Key()]; !ok {
		g.index[cfg.Key()] = n.ID
	}
	return n
}

// Lookup returns the first node added for a configuration
func (g *Graph) Lookup(cfg space.Configuration) (*Node, bool) {
	id, ok := g.index[cfg.Key()]
	if !ok {
		return nil, false
	}
	return g.nodes[id], true
}

// Node returns a node by id, or nil if the id is unknown
func (g *Graph) Node(id NodeID) *Node {
	if id < 0 || int(id) >= len(g.nodes) {
		return nil
	}
	return g.nodes[id]
}

// Parent returns the parent of a node
func (g *Graph) Parent(id NodeID) (*Node, bool) {
	n := g.Node(id)
	if n == nil || n.Parent == NoParent {
		return nil, false
	}
	return g.Node(n.Parent), true
}

// Path returns the ids from the node's root down to the node itself
func (g *Graph) Path(id NodeID) []NodeID {
	var path []NodeID
	for n := g.Node(id); n != nil; n = g.Node(n.Parent) {
		path = append(path, n.ID)
		if n.Parent == NoParent {
			break
		}
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

// Distance returns the number of edges between ancestor and id, or -1 if
// ancestor is not on id's path.
func (g *Graph) Distance(ancestor, id NodeID) int {
	d := 0
	for n := g.Node(id); n != nil; n = g.Node(n.Parent) {
		if n.ID == ancestor {
			return d
		}
		if n.Parent == NoParent {
			break
		}
		d++
	}
	return -1
}

// Len returns the number of nodes in the arena
func (g *Graph) Len() int { return len(g.nodes) }

// Nodes returns the nodes for a list of ids, skipping unknown ids
func (g *Graph) Nodes(ids []NodeID) []*Node {
	out := make([]*Node, 0, len(ids))
	for _, id := range ids {
		if n := g.Node(id); n != nil {
			out = append(out, n)
		}
	}
	return out
}
