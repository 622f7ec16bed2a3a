package deps

import (
	"context"

	"github.com/matzehuels/poddiff/pkg/dag"
	"github.com/matzehuels/poddiff/pkg/podspec"
)

const (
	DefaultMaxDepth = 50 // Default maximum dependency depth
	DefaultWorkers  = 8  // Default concurrent podspec fetches
)

// Options configures dependency resolution behavior.
type Options struct {
	MaxDepth int                  // Maximum depth to traverse (default: 50)
	Workers  int                  // Concurrent fetches per level (default: 8)
	Logger   func(string, ...any) // Progress callback (optional)
}

// WithDefaults returns a copy of Options with zero values replaced by defaults.
func (o Options) WithDefaults() Options {
	opts := o
	if opts.MaxDepth <= 0 {
		opts.MaxDepth = DefaultMaxDepth
	}
	if opts.Workers <= 0 {
		opts.Workers = DefaultWorkers
	}
	if opts.Logger == nil {
		opts.Logger = func(string, ...any) {}
	}
	return opts
}

// Resolver computes the dependency closure of every target in a manifest.
type Resolver interface {
	Resolve(ctx context.Context, m *Manifest) (*Resolution, error)
}

// ResolvedSpec is one activated (sub)spec of a target.
type ResolvedSpec struct {
	Name    string        // Full name, e.g. "FirebaseCore" or "GoogleUtilities/Logger"
	Version string        // Selected pod version
	Depth   int           // Distance from the target's requested pods
	Spec    *podspec.Spec // The activated spec
}

// TargetResolution is the closure resolved for one target.
type TargetResolution struct {
	Name     string
	Platform podspec.Platform
	Specs    []*ResolvedSpec // Discovery order
	Graph    *dag.DAG        // Nodes are spec names, edges are "depends on"

	index map[string]*ResolvedSpec
}

// Spec returns the resolved spec with the given full name.
func (t *TargetResolution) Spec(name string) (*ResolvedSpec, bool) {
	s, ok := t.index[name]
	return s, ok
}

// Resolution holds the closure of every target of a manifest.
type Resolution struct {
	targets []*TargetResolution
}

// Targets returns the resolved targets in manifest order.
func (r *Resolution) Targets() []*TargetResolution { return r.targets }

// Target returns the resolved target with the given name.
func (r *Resolution) Target(name string) (*TargetResolution, bool) {
	for _, t := range r.targets {
		if t.Name == name {
			return t, true
		}
	}
	return nil, false
}
