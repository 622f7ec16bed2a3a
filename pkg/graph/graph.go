package graph

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/matzehuels/poddiff/pkg/dag"
	perrors "github.com/matzehuels/poddiff/pkg/errors"
)

// Export formats.
const (
	FormatJSON = "json"
	FormatDOT  = "dot"
	FormatSVG  = "svg"
)

// FormatFor returns the export format implied by path's extension.
func FormatFor(path string) (string, error) {
	switch ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), ".")); ext {
	case FormatJSON, FormatDOT, FormatSVG:
		return ext, nil
	case "gv":
		return FormatDOT, nil
	default:
		return "", perrors.New(perrors.ErrCodeInvalidPath, "unsupported graph format %q (use .json, .dot or .svg)", filepath.Ext(path))
	}
}

// Render encodes g in the given format.
func Render(ctx context.Context, g *dag.DAG, format string, opts Options) ([]byte, error) {
	switch format {
	case FormatJSON:
		return MarshalGraph(g)
	case FormatDOT:
		return []byte(ToDOT(g, opts)), nil
	case FormatSVG:
		return RenderSVG(ctx, ToDOT(g, opts))
	}
	return nil, perrors.New(perrors.ErrCodeUnsupported, "unsupported graph format %q", format)
}

// Export writes g to path in the format implied by its extension.
func Export(ctx context.Context, g *dag.DAG, path string, opts Options) error {
	format, err := FormatFor(path)
	if err != nil {
		return err
	}
	data, err := Render(ctx, g, format, opts)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// MarshalGraph converts a DAG to indented JSON bytes.
func MarshalGraph(g *dag.DAG) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteGraph(g, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteGraph writes a DAG as JSON to w.
func WriteGraph(g *dag.DAG, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(FromDAG(g)); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ReadGraph decodes a JSON graph from r into a DAG.
func ReadGraph(r io.Reader) (*dag.DAG, error) {
	var data Graph
	if err := json.NewDecoder(r).Decode(&data); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return ToDAG(data)
}
