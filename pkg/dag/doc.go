// Package dag provides the directed acyclic graph that records resolved pod
// dependencies.
//
// # Overview
//
// The resolver adds one [Node] per resolved pod (its Row is the depth at
// which the crawler first reached it) and one [Edge] per "depends on"
// relation. The graph feeds the DOT/SVG export in pkg/graph.
//
// # Basic Usage
//
//	g := dag.New(nil)
//	g.AddNode(dag.Node{ID: "Firebase", Row: 0})
//	g.AddNode(dag.Node{ID: "FirebaseCore", Row: 1})
//	g.AddEdge(dag.Edge{From: "Firebase", To: "FirebaseCore"})
//
// Nodes are returned in insertion order so that every traversal, and every
// rendering built on it, is deterministic. [DAG.Validate] reports dangling
// edges and cycles.
package dag
