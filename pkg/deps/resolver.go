package deps

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/poddiff/pkg/dag"
	perrors "github.com/matzehuels/poddiff/pkg/errors"
	"github.com/matzehuels/poddiff/pkg/observability"
	"github.com/matzehuels/poddiff/pkg/podspec"
	"github.com/matzehuels/poddiff/pkg/source"
	"github.com/matzehuels/poddiff/pkg/version"
)

// Registry implements Resolver on top of a podspec source.
type Registry struct {
	src  source.Source
	opts Options
}

// NewRegistry creates a Resolver that crawls dependencies using src.
func NewRegistry(src source.Source, opts Options) *Registry {
	return &Registry{src: src, opts: opts.WithDefaults()}
}

// Resolve resolves every target of m independently.
func (r *Registry) Resolve(ctx context.Context, m *Manifest) (*Resolution, error) {
	res := &Resolution{}
	for _, t := range m.Targets {
		start := time.Now()
		observability.Diff().OnResolveStart(ctx, t.Name)
		tr, err := r.resolveTarget(ctx, t)
		count := 0
		if tr != nil {
			count = len(tr.Specs)
		}
		observability.Diff().OnResolveComplete(ctx, t.Name, count, time.Since(start), err)
		if err != nil {
			return nil, err
		}
		res.targets = append(res.targets, tr)
	}
	return res, nil
}

type request struct {
	name   string // full spec name
	reqs   []string
	parent string
	depth  int
}

type crawler struct {
	src    source.Source
	opts   Options
	target Target

	reqs     map[string]version.Requirement // merged, per root pod
	selected map[string]*podspec.Spec      // root spec at the chosen version
	out      *TargetResolution
}

func (r *Registry) resolveTarget(ctx context.Context, t Target) (*TargetResolution, error) {
	c := &crawler{
		src:      r.src,
		opts:     r.opts,
		target:   t,
		reqs:     make(map[string]version.Requirement),
		selected: make(map[string]*podspec.Spec),
		out: &TargetResolution{
			Name:     t.Name,
			Platform: t.Platform,
			Graph:    dag.New(dag.Metadata{"target": t.Name, "platform": string(t.Platform)}),
			index:    make(map[string]*ResolvedSpec),
		},
	}

	var level []request
	for _, dep := range t.Pods {
		level = append(level, request{name: dep.Name, reqs: dep.Requirements})
	}
	for len(level) > 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		next, err := c.step(ctx, level)
		if err != nil {
			return nil, err
		}
		level = next
	}
	return c.out, nil
}

// step merges the requirements of one level, fetches the pods first seen on
// it and activates every requested spec. It returns the next level.
func (c *crawler) step(ctx context.Context, level []request) ([]request, error) {
	var fresh []string
	for _, rq := range level {
		root := podspec.RootName(rq.name)
		req, err := version.ParseRequirements(rq.reqs)
		if err != nil {
			return nil, perrors.Wrap(perrors.ErrCodeResolution, err, "invalid requirement for `%s` in target `%s`", rq.name, c.target.Name)
		}
		prev, seen := c.reqs[root]
		c.reqs[root] = prev.Merge(req)
		if !seen {
			fresh = append(fresh, root)
		}
	}

	fetched, err := c.fetch(ctx, fresh)
	if err != nil {
		return nil, err
	}
	for i, root := range fresh {
		c.selected[root] = fetched[i]
	}
	for _, root := range c.touched(level) {
		spec := c.selected[root]
		v, err := version.Parse(spec.Version)
		if err != nil {
			return nil, perrors.Wrap(perrors.ErrCodeResolution, err, "invalid version of `%s`", root)
		}
		if req := c.reqs[root]; !req.Satisfied(v) {
			return nil, perrors.New(perrors.ErrCodeResolution,
				"Unable to satisfy `%s (%s)` in target `%s`: version %s was already selected",
				root, req, c.target.Name, spec.Version)
		}
	}

	var next []request
	for _, rq := range level {
		deps, err := c.activate(rq)
		if err != nil {
			return nil, err
		}
		next = append(next, deps...)
	}
	return next, nil
}

// touched returns the root pods named on level, once each.
func (c *crawler) touched(level []request) []string {
	var roots []string
	seen := make(map[string]bool)
	for _, rq := range level {
		if root := podspec.RootName(rq.name); !seen[root] {
			seen[root] = true
			roots = append(roots, root)
		}
	}
	return roots
}

// fetch selects and downloads the highest satisfying version of each root.
func (c *crawler) fetch(ctx context.Context, roots []string) ([]*podspec.Spec, error) {
	out := make([]*podspec.Spec, len(roots))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.opts.Workers)
	for i, root := range roots {
		req := c.reqs[root]
		g.Go(func() error {
			versions, err := c.src.Versions(gctx, root)
			if err != nil {
				return perrors.Wrap(perrors.ErrCodeResolution, err, "Unable to find a specification for `%s`", root)
			}
			chosen, ok := req.Highest(versions)
			if !ok {
				return perrors.New(perrors.ErrCodeResolution,
					"Unable to find a specification for `%s (%s)` depended upon by target `%s`", root, req, c.target.Name)
			}
			c.opts.Logger("fetching %s %s", root, chosen)
			spec, err := c.src.Podspec(gctx, root, chosen)
			if err != nil {
				return perrors.Wrap(perrors.ErrCodeResolution, err, "Unable to fetch `%s (%s)`", root, chosen)
			}
			out[i] = spec
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// activate adds the requested spec to the graph and returns its dependencies
// on the target's platform. Already active specs only gain an edge.
func (c *crawler) activate(rq request) ([]request, error) {
	root := c.selected[podspec.RootName(rq.name)]
	spec := root
	if rq.name != root.Name {
		if spec = root.Subspec(rq.name); spec == nil {
			return nil, perrors.New(perrors.ErrCodeResolution,
				"No subspec named `%s` in `%s (%s)`", rq.name, root.Name, root.Version)
		}
	}
	name := spec.FullName()

	_, active := c.out.index[name]
	if !active {
		p := c.target.Platform
		if !spec.SupportsPlatform(p) {
			return nil, perrors.New(perrors.ErrCodeResolution,
				"The platform of the target `%s` (%s) is not compatible with `%s (%s)`", c.target.Name, p, name, root.Version)
		}
		rs := &ResolvedSpec{Name: name, Version: root.Version, Depth: rq.depth, Spec: spec}
		if err := c.out.Graph.AddNode(dag.Node{ID: name, Row: rq.depth, Meta: dag.Metadata{"version": root.Version}}); err != nil {
			return nil, perrors.Wrap(perrors.ErrCodeInternal, err, "add node %s", name)
		}
		c.out.Specs = append(c.out.Specs, rs)
		c.out.index[name] = rs
	}
	if rq.parent != "" && rq.parent != name {
		if err := c.out.Graph.AddEdge(dag.Edge{From: rq.parent, To: name}); err != nil {
			return nil, perrors.Wrap(perrors.ErrCodeInternal, err, "add edge %s -> %s", rq.parent, name)
		}
	}
	if active || rq.depth >= c.opts.MaxDepth {
		return nil, nil
	}

	var next []request
	for _, dep := range spec.AllDependenciesFor(c.target.Platform) {
		next = append(next, request{name: dep.Name, reqs: dep.Requirements, parent: name, depth: rq.depth + 1})
	}
	for _, sub := range spec.SubspecDependencies(c.target.Platform) {
		next = append(next, request{name: sub.FullName(), parent: name, depth: rq.depth + 1})
	}
	return next, nil
}
