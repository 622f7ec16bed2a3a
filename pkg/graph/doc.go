// Package graph exports resolved dependency graphs.
//
// A [dag.DAG] produced by the resolver can be written in three formats:
//
//   - JSON: the [Graph] serialization ([WriteGraph], [ReadGraph])
//   - DOT: Graphviz source ([ToDOT])
//   - SVG: rendered in-process with go-graphviz ([RenderSVG])
//
// [Export] picks the format from a file extension:
//
//	if err := graph.Export(ctx, g, "Firebase.svg", graph.Options{}); err != nil {
//	    return err
//	}
//
// Nodes are pods or subspecs ("GoogleUtilities/Logger"); an edge A → B means
// A depends on B. The node metadata "version" holds the selected version.
//
// [dag.DAG]: github.com/matzehuels/poddiff/pkg/dag.DAG
package graph
