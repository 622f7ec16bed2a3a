package graph

import (
	"bytes"
	"context"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/poddiff/pkg/dag"
)

// Options configures DOT generation.
type Options struct {
	// Detailed adds the depth and remaining metadata to node labels.
	Detailed bool
}

// ToDOT converts a DAG to Graphviz DOT source. Nodes are labeled
// "<name>\n<version>"; the roots (depth 0) are drawn bold.
func ToDOT(g *dag.DAG, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph pods {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontname=\"Helvetica\"];\n")
	buf.WriteString("  edge [color=\"#888888\"];\n\n")

	for _, n := range g.Nodes() {
		attrs := []string{fmt.Sprintf("label=%q", label(n, opts.Detailed))}
		if n.Row == 0 {
			attrs = append(attrs, "penwidth=2")
		}
		if strings.Contains(n.ID, "/") {
			attrs = append(attrs, "fillcolor=\"#f2f2f2\"")
		}
		fmt.Fprintf(&buf, "  %q [%s];\n", n.ID, strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, e := range g.Edges() {
		fmt.Fprintf(&buf, "  %q -> %q;\n", e.From, e.To)
	}
	buf.WriteString("}\n")
	return buf.String()
}

func label(n *dag.Node, detailed bool) string {
	parts := []string{n.ID}
	if v, ok := n.Meta[metaVersion].(string); ok && v != "" {
		parts = append(parts, v)
	}
	if detailed {
		parts = append(parts, fmt.Sprintf("depth: %d", n.Row))
		for _, k := range slices.Sorted(maps.Keys(n.Meta)) {
			if k != metaVersion {
				parts = append(parts, fmt.Sprintf("%s: %v", k, n.Meta[k]))
			}
		}
	}
	return strings.Join(parts, "\n")
}

// RenderSVG renders DOT source to SVG in-process.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}
