package dag

import (
	"errors"
	"slices"
)

var (
	// ErrInvalidNodeID is returned by [DAG.AddNode] when the node ID is empty.
	ErrInvalidNodeID = errors.New("node ID must not be empty")

	// ErrDuplicateNodeID is returned by [DAG.AddNode] when the ID is taken.
	ErrDuplicateNodeID = errors.New("duplicate node ID")

	// ErrUnknownSourceNode is returned by [DAG.AddEdge] when From does not exist.
	ErrUnknownSourceNode = errors.New("unknown source node")

	// ErrUnknownTargetNode is returned by [DAG.AddEdge] when To does not exist.
	ErrUnknownTargetNode = errors.New("unknown target node")

	// ErrGraphHasCycle is returned by [DAG.Validate] when a cycle is detected.
	ErrGraphHasCycle = errors.New("graph contains a cycle")
)

// Metadata stores arbitrary key-value pairs attached to nodes or the graph,
// such as a pod's version or the platform a graph was resolved for.
type Metadata map[string]any

// Node is a vertex of the graph.
type Node struct {
	ID   string   // Unique identifier (pod or subspec name)
	Row  int      // Depth at which the node was discovered (0 = root)
	Meta Metadata // Never nil after AddNode
}

// Edge is a directed "depends on" relation.
type Edge struct {
	From string
	To   string
	Meta Metadata // Never nil after AddEdge
}

// DAG is a directed graph with insertion-ordered nodes.
// The zero value is not usable; use [New].
// DAG is not safe for concurrent use without external synchronization.
type DAG struct {
	nodes    map[string]*Node
	order    []string
	edges    []Edge
	outgoing map[string][]string
	incoming map[string][]string
	meta     Metadata
}

// New creates an empty DAG with optional graph-level metadata.
func New(meta Metadata) *DAG {
	if meta == nil {
		meta = Metadata{}
	}
	return &DAG{
		nodes:    make(map[string]*Node),
		outgoing: make(map[string][]string),
		incoming: make(map[string][]string),
		meta:     meta,
	}
}

// Meta returns the graph-level metadata map.
func (d *DAG) Meta() Metadata { return d.meta }

// AddNode adds a node. It returns ErrInvalidNodeID for an empty ID and
// ErrDuplicateNodeID when the ID already exists.
func (d *DAG) AddNode(n Node) error {
	if n.ID == "" {
		return ErrInvalidNodeID
	}
	if _, exists := d.nodes[n.ID]; exists {
		return ErrDuplicateNodeID
	}
	if n.Meta == nil {
		n.Meta = Metadata{}
	}
	d.nodes[n.ID] = &n
	d.order = append(d.order, n.ID)
	return nil
}

// AddEdge adds a directed edge between two existing nodes. Adding an edge
// that already exists is a no-op.
func (d *DAG) AddEdge(e Edge) error {
	if _, ok := d.nodes[e.From]; !ok {
		return ErrUnknownSourceNode
	}
	if _, ok := d.nodes[e.To]; !ok {
		return ErrUnknownTargetNode
	}
	if slices.Contains(d.outgoing[e.From], e.To) {
		return nil
	}
	if e.Meta == nil {
		e.Meta = Metadata{}
	}
	d.edges = append(d.edges, e)
	d.outgoing[e.From] = append(d.outgoing[e.From], e.To)
	d.incoming[e.To] = append(d.incoming[e.To], e.From)
	return nil
}

// Node returns the node with the given ID.
func (d *DAG) Node(id string) (*Node, bool) {
	n, ok := d.nodes[id]
	return n, ok
}

// Nodes returns all nodes in insertion order. The pointers refer to the
// graph's nodes.
func (d *DAG) Nodes() []*Node {
	out := make([]*Node, len(d.order))
	for i, id := range d.order {
		out[i] = d.nodes[id]
	}
	return out
}

// Edges returns a copy of all edges in insertion order.
func (d *DAG) Edges() []Edge { return slices.Clone(d.edges) }

// NodeCount returns the number of nodes in the graph.
func (d *DAG) NodeCount() int { return len(d.nodes) }

// EdgeCount returns the number of edges in the graph.
func (d *DAG) EdgeCount() int { return len(d.edges) }

// Children returns the IDs the node depends on. Treat the result as read-only.
func (d *DAG) Children(id string) []string { return d.outgoing[id] }

// Parents returns the IDs depending on the node. Treat the result as read-only.
func (d *DAG) Parents(id string) []string { return d.incoming[id] }

// Sources returns nodes without incoming edges, in insertion order.
func (d *DAG) Sources() []*Node {
	var out []*Node
	for _, id := range d.order {
		if len(d.incoming[id]) == 0 {
			out = append(out, d.nodes[id])
		}
	}
	return out
}

// Reachable returns the IDs reachable from id (excluding id itself) in
// breadth-first order.
func (d *DAG) Reachable(id string) []string {
	seen := map[string]bool{id: true}
	queue := []string{id}
	var out []string
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, child := range d.outgoing[cur] {
			if !seen[child] {
				seen[child] = true
				out = append(out, child)
				queue = append(queue, child)
			}
		}
	}
	return out
}

// Validate returns ErrGraphHasCycle when the graph has a directed cycle.
// Cycles are detected with a white/gray/black depth-first search.
func (d *DAG) Validate() error {
	const (
		white = iota
		gray
		black
	)

	color := make(map[string]int, len(d.nodes))
	var hasCycle bool

	var dfs func(id string)
	dfs = func(id string) {
		color[id] = gray
		for _, child := range d.outgoing[id] {
			switch color[child] {
			case white:
				dfs(child)
			case gray:
				hasCycle = true
			}
			if hasCycle {
				return
			}
		}
		color[id] = black
	}

	for _, id := range d.order {
		if color[id] == white {
			dfs(id)
			if hasCycle {
				return ErrGraphHasCycle
			}
		}
	}
	return nil
}

// NodeIDs extracts the ID from each node in a slice.
func NodeIDs(nodes []*Node) []string {
	ids := make([]string, len(nodes))
	for i, n := range nodes {
		ids[i] = n.ID
	}
	return ids
}
