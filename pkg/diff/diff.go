package diff

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/poddiff/pkg/dag"
	"github.com/matzehuels/poddiff/pkg/deps"
	perrors "github.com/matzehuels/poddiff/pkg/errors"
	"github.com/matzehuels/poddiff/pkg/observability"
	"github.com/matzehuels/poddiff/pkg/podspec"
	"github.com/matzehuels/poddiff/pkg/source"
)

// Request describes one comparison. The versions may be given in any order.
type Request struct {
	Pod                 string   // Pod name, or a regular expression when Regex is set
	Version1            string   // One version to compare
	Version2            string   // The other version
	Regex               bool     // Interpret Pod as a regular expression
	IncludeDependencies bool     // Compare resolved dependencies, not only subspecs
	Platforms           []string // Platforms to compare; empty compares all supported
}

// Side selects one version of a comparison.
type Side int

const (
	Older Side = iota
	Newer
)

func (s Side) String() string {
	if s == Older {
		return "older"
	}
	return "newer"
}

// Result is a finished comparison.
type Result struct {
	Pod          string // Name of the located pod
	OlderVersion string // As requested, after ordering
	NewerVersion string
	Platforms    []podspec.Platform
	Older        *Package
	Newer        *Package
	Components   [2]map[podspec.Platform][]Component // Indexed by Side

	// Warning is set when there is nothing to compare; no table is produced.
	Warning string

	resolutions [2]*deps.Resolution
}

// NothingToCompare reports whether every platform is empty on both sides.
func (r *Result) NothingToCompare() bool {
	for _, comps := range r.Components {
		for _, p := range r.Platforms {
			if len(comps[p]) > 0 {
				return false
			}
		}
	}
	return true
}

// Rows returns the table rows of side on every platform.
func (r *Result) Rows(side Side) map[podspec.Platform][]Row {
	out := make(map[podspec.Platform][]Row, len(r.Platforms))
	for _, p := range r.Platforms {
		out[p] = RowsFor(r.Components[side][p], p)
	}
	return out
}

// Table renders the markdown comparison, or "" when there is nothing to compare.
func (r *Result) Table() string {
	if r.NothingToCompare() {
		return ""
	}
	return RenderTable(r.Pod, r.OlderVersion, r.NewerVersion, r.Platforms, r.Rows(Older), r.Rows(Newer))
}

// Package returns the package of side.
func (r *Result) Package(side Side) *Package {
	if side == Older {
		return r.Older
	}
	return r.Newer
}

// Podfile renders a Podfile installing side.
func (r *Result) Podfile(side Side) string {
	return GeneratePodfile(r.Package(side), r.Platforms, r.Components[side])
}

// Graph returns the dependency graph of side across all compared platforms.
// Without resolved dependencies the graph links the pod to its components.
func (r *Result) Graph(side Side) *dag.DAG {
	pkg := r.Package(side)
	g := dag.New(dag.Metadata{"pod": pkg.Name, "version": pkg.Version})
	if res := r.resolutions[side]; res != nil {
		for _, t := range res.Targets() {
			mergeGraph(g, t.Graph)
		}
		return g
	}
	_ = g.AddNode(dag.Node{ID: pkg.Name, Meta: dag.Metadata{"version": pkg.Version}})
	for _, p := range r.Platforms {
		for _, c := range r.Components[side][p] {
			if _, ok := g.Node(c.Name); !ok {
				_ = g.AddNode(dag.Node{ID: c.Name, Row: 1, Meta: dag.Metadata{"version": c.Version}})
			}
			_ = g.AddEdge(dag.Edge{From: pkg.Name, To: c.Name})
		}
	}
	return g
}

func mergeGraph(dst, src *dag.DAG) {
	for _, n := range src.Nodes() {
		if existing, ok := dst.Node(n.ID); ok {
			existing.Row = min(existing.Row, n.Row)
			continue
		}
		_ = dst.AddNode(dag.Node{ID: n.ID, Row: n.Row, Meta: n.Meta})
	}
	for _, e := range src.Edges() {
		_ = dst.AddEdge(dag.Edge{From: e.From, To: e.To})
	}
}

// Engine runs comparisons. Locator and Resolver are required; Resolver is
// only used when dependencies are included.
type Engine struct {
	Locator  *source.Locator
	Resolver deps.Resolver
	Logger   *log.Logger
	Closure  Closure
}

// NewEngine creates an engine reporting the one-hop closure.
// If logger is nil, log.Default() is used.
func NewEngine(locator *source.Locator, resolver deps.Resolver, logger *log.Logger) *Engine {
	if logger == nil {
		logger = log.Default()
	}
	return &Engine{Locator: locator, Resolver: resolver, Logger: logger}
}

func (e *Engine) logger() *log.Logger {
	if e.Logger == nil {
		return log.Default()
	}
	return e.Logger
}

// Run validates req, looks up both versions and collects their components.
// Nothing to compare is not an error: the result carries a Warning instead.
func (e *Engine) Run(ctx context.Context, req Request) (*Result, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	older, newer, err := OrderVersions(req.Version1, req.Version2)
	if err != nil {
		return nil, err
	}

	pod, err := e.Locator.Search(ctx, req.Pod, req.Regex)
	if err != nil {
		return nil, lookupError(req.Pod, older, err)
	}
	olderSpec, err := e.lookup(ctx, req.Pod, pod, older)
	if err != nil {
		return nil, err
	}
	newerSpec, err := e.lookup(ctx, req.Pod, pod, newer)
	if err != nil {
		return nil, err
	}

	olderSpec.ClearDefaultSubspecs()
	newerSpec.ClearDefaultSubspecs()
	res := &Result{
		Pod:          pod,
		OlderVersion: older,
		NewerVersion: newer,
		Older:        NewPackage(olderSpec),
		Newer:        NewPackage(newerSpec),
	}

	if res.Platforms, err = NormalizePlatforms(req.Platforms, res.Older, res.Newer); err != nil {
		return nil, err
	}

	for _, side := range []Side{Older, Newer} {
		comps, resolution, err := e.collectAll(ctx, res.Package(side), res.Platforms, req.IncludeDependencies)
		if err != nil {
			return nil, err
		}
		res.Components[side] = comps
		res.resolutions[side] = resolution
	}

	if res.NothingToCompare() {
		res.Warning = fmt.Sprintf("There's nothing to compare for %s %s vs. %s", pod, older, newer)
		e.logger().Debug("nothing to compare", "pod", pod, "older", older, "newer", newer)
	}
	return res, nil
}

func (e *Engine) lookup(ctx context.Context, query, pod, ver string) (*podspec.Spec, error) {
	start := time.Now()
	observability.Diff().OnLookupStart(ctx, pod, ver)
	spec, err := e.Locator.Load(ctx, pod, ver)
	observability.Diff().OnLookupComplete(ctx, pod, ver, time.Since(start), err)
	if err != nil {
		return nil, lookupError(query, ver, err)
	}
	e.logger().Debug("located podspec", "pod", spec.Name, "version", spec.Version, "subspecs", len(spec.Subspecs))
	return spec, nil
}

func lookupError(query, ver string, err error) error {
	return perrors.Wrap(perrors.ErrCodeLookup, err,
		"There was a problem trying to locate the pod %s (%s)\nOriginal error message: %s",
		query, ver, perrors.UserMessage(err))
}
