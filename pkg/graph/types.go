package graph

import (
	"cmp"
	"encoding/json"
	"fmt"
	"maps"
	"slices"

	"github.com/matzehuels/poddiff/pkg/dag"
)

// Metadata keys with a dedicated Node field.
const (
	metaVersion = "version"
)

// Graph is the JSON serialization of a dependency graph.
type Graph struct {
	Meta  map[string]any `json:"meta,omitempty"`
	Nodes []Node         `json:"nodes"`
	Edges []Edge         `json:"edges"`
}

// Node is one pod or subspec.
type Node struct {
	ID      string         `json:"id"`
	Version string         `json:"version,omitempty"`
	Depth   int            `json:"depth"`
	Meta    map[string]any `json:"meta,omitempty"`
}

// Edge is a directed "depends on" relation.
type Edge struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// FromDAG converts a DAG to its serialization format.
// Nodes are sorted by depth, then ID, for deterministic output.
func FromDAG(g *dag.DAG) Graph {
	nodes := g.Nodes()
	slices.SortStableFunc(nodes, func(a, b *dag.Node) int {
		return cmp.Or(cmp.Compare(a.Row, b.Row), cmp.Compare(a.ID, b.ID))
	})

	out := Graph{
		Meta:  copyMeta(g.Meta()),
		Nodes: make([]Node, len(nodes)),
		Edges: make([]Edge, 0, g.EdgeCount()),
	}
	for i, n := range nodes {
		out.Nodes[i] = nodeFromDAG(n)
	}
	for _, e := range g.Edges() {
		out.Edges = append(out.Edges, Edge{From: e.From, To: e.To})
	}
	return out
}

// ToDAG converts a Graph back to a DAG.
func ToDAG(gj Graph) (*dag.DAG, error) {
	d := dag.New(copyMeta(gj.Meta))
	for _, nj := range gj.Nodes {
		meta := copyMeta(nj.Meta)
		if meta == nil {
			meta = dag.Metadata{}
		}
		if nj.Version != "" {
			meta[metaVersion] = nj.Version
		}
		if err := d.AddNode(dag.Node{ID: nj.ID, Row: nj.Depth, Meta: meta}); err != nil {
			return nil, fmt.Errorf("add node %s: %w", nj.ID, err)
		}
	}
	for _, ej := range gj.Edges {
		if err := d.AddEdge(dag.Edge{From: ej.From, To: ej.To}); err != nil {
			return nil, fmt.Errorf("add edge %s→%s: %w", ej.From, ej.To, err)
		}
	}
	return d, nil
}

// UnmarshalGraph deserializes JSON bytes to a Graph.
func UnmarshalGraph(data []byte) (Graph, error) {
	var g Graph
	if err := json.Unmarshal(data, &g); err != nil {
		return Graph{}, err
	}
	return g, nil
}

func nodeFromDAG(n *dag.Node) Node {
	node := Node{ID: n.ID, Depth: n.Row}
	if v, ok := n.Meta[metaVersion].(string); ok {
		node.Version = v
	}
	rest := make(map[string]any)
	for k, v := range n.Meta {
		if k != metaVersion {
			rest[k] = v
		}
	}
	if len(rest) > 0 {
		node.Meta = rest
	}
	return node
}

func copyMeta(m map[string]any) map[string]any {
	if len(m) == 0 {
		return nil
	}
	return maps.Clone(m)
}
