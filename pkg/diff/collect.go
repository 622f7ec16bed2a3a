package diff

import (
	"context"
	"slices"

	"github.com/matzehuels/poddiff/pkg/deps"
	perrors "github.com/matzehuels/poddiff/pkg/errors"
	"github.com/matzehuels/poddiff/pkg/podspec"
)

// NotDefined labels a component without a minimum version on a platform.
const NotDefined = "Not defined"

// Closure selects how much of a resolved dependency closure is reported.
type Closure int

const (
	// ClosureOneHop keeps own subspecs, direct dependencies and their direct
	// dependencies.
	ClosureOneHop Closure = iota
	// ClosureFull keeps every resolved spec.
	ClosureFull
)

// Component is a subspec or a resolved dependency of a package.
type Component struct {
	Name        string                      // Full name, e.g. "Firebase/Core"
	Version     string                      // Version of the pod the component belongs to
	Platforms   []podspec.Platform          // Platforms the component is available on
	MinVersions map[podspec.Platform]string // Deployment targets; absent means not defined
}

// NewComponent describes s as a component.
func NewComponent(s *podspec.Spec) Component {
	c := Component{
		Name:        s.FullName(),
		Version:     s.PodVersion(),
		Platforms:   s.AvailablePlatforms(),
		MinVersions: make(map[podspec.Platform]string),
	}
	for _, p := range c.Platforms {
		if v, ok := s.DeploymentTarget(p); ok {
			c.MinVersions[p] = v
		}
	}
	return c
}

// SupportsPlatform reports whether c is available on p.
func (c Component) SupportsPlatform(p podspec.Platform) bool {
	return slices.Contains(c.Platforms, p)
}

// MinVersion returns the minimum OS version of c on p.
func (c Component) MinVersion(p podspec.Platform) (string, bool) {
	v, ok := c.MinVersions[p]
	return v, ok
}

// Label returns the minimum version of c on p, or [NotDefined].
func (c Component) Label(p podspec.Platform) string {
	if v, ok := c.MinVersion(p); ok {
		return v
	}
	return NotDefined
}

// Package is one version of a pod prepared for comparison.
type Package struct {
	Name        string
	Version     string
	Platforms   []podspec.Platform          // Platforms the pod is available on
	MinVersions map[podspec.Platform]string // The pod's own deployment targets
	Components  []Component                 // Direct subspecs, declaration order
	Spec        *podspec.Spec
}

// NewPackage describes a root spec. The spec itself is never one of its
// components.
func NewPackage(spec *podspec.Spec) *Package {
	root := NewComponent(spec)
	pkg := &Package{
		Name:        spec.Name,
		Version:     spec.Version,
		Platforms:   root.Platforms,
		MinVersions: root.MinVersions,
		Spec:        spec,
	}
	for _, sub := range spec.Subspecs {
		pkg.Components = append(pkg.Components, NewComponent(sub))
	}
	return pkg
}

// SupportsPlatform reports whether the pod is available on p.
func (p *Package) SupportsPlatform(platform podspec.Platform) bool {
	return slices.Contains(p.Platforms, platform)
}

// ComponentsFor returns the components available on p, in declaration order.
func (p *Package) ComponentsFor(platform podspec.Platform) []Component {
	var out []Component
	for _, c := range p.Components {
		if c.SupportsPlatform(platform) {
			out = append(out, c)
		}
	}
	return out
}

// DirectDependencies returns the names the pod and its components
// available on p depend on, first-seen order.
func (p *Package) DirectDependencies(platform podspec.Platform) []string {
	var out []string
	add := func(list []podspec.Dependency) {
		for _, d := range list {
			if !slices.Contains(out, d.Name) {
				out = append(out, d.Name)
			}
		}
	}
	add(p.Spec.DependenciesFor(platform))
	for _, sub := range p.Spec.Subspecs {
		if sub.SupportsPlatform(platform) {
			add(sub.DependenciesFor(platform))
		}
	}
	return out
}

// Collect returns the components of pkg to compare on p. Without
// dependencies these are the subspecs available on p. With dependencies the
// resolver computes the closure of a Podfile installing pkg, which is then
// narrowed according to the engine's closure policy.
func (e *Engine) Collect(ctx context.Context, pkg *Package, p podspec.Platform, includeDependencies bool) ([]Component, error) {
	if !includeDependencies {
		return pkg.ComponentsFor(p), nil
	}
	res, err := e.resolve(ctx, pkg, []podspec.Platform{p})
	if err != nil {
		return nil, err
	}
	return e.expand(pkg, p, res), nil
}

// collectAll collects every platform, resolving at most once.
func (e *Engine) collectAll(ctx context.Context, pkg *Package, platforms []podspec.Platform, includeDependencies bool) (map[podspec.Platform][]Component, *deps.Resolution, error) {
	out := make(map[podspec.Platform][]Component, len(platforms))
	if !includeDependencies {
		for _, p := range platforms {
			out[p] = pkg.ComponentsFor(p)
		}
		return out, nil, nil
	}
	res, err := e.resolve(ctx, pkg, platforms)
	if err != nil {
		return nil, nil, err
	}
	for _, p := range platforms {
		out[p] = e.expand(pkg, p, res)
	}
	return out, res, nil
}

// manifestFor returns the Podfile the generated report describes: per
// supported platform, the pod and each of its components at its version.
func manifestFor(pkg *Package, platforms []podspec.Platform) *deps.Manifest {
	var supported []podspec.Platform
	for _, p := range platforms {
		if pkg.SupportsPlatform(p) {
			supported = append(supported, p)
		}
	}
	m := deps.ForPod(pkg.Name, pkg.Version, supported)
	for i := range m.Targets {
		t := &m.Targets[i]
		for _, c := range pkg.ComponentsFor(t.Platform) {
			t.Pods = append(t.Pods, deps.Dependency{Name: c.Name, Requirements: []string{"= " + pkg.Version}})
		}
	}
	return m
}

func (e *Engine) resolve(ctx context.Context, pkg *Package, platforms []podspec.Platform) (*deps.Resolution, error) {
	m := manifestFor(pkg, platforms)
	if len(m.Targets) == 0 {
		return &deps.Resolution{}, nil
	}
	e.logger().Debug("resolving dependencies", "pod", pkg.Name, "version", pkg.Version, "targets", len(m.Targets))
	res, err := e.Resolver.Resolve(ctx, m)
	if err != nil {
		if perrors.GetCode(err) == perrors.ErrCodeResolution {
			return nil, err
		}
		return nil, perrors.Wrap(perrors.ErrCodeResolution, err, "unable to resolve %s (%s)", pkg.Name, pkg.Version)
	}
	return res, nil
}

// expand turns the resolved target of p into components. A platform without
// a resolved target has no components.
func (e *Engine) expand(pkg *Package, p podspec.Platform, res *deps.Resolution) []Component {
	target, ok := res.Target(deps.TargetName(pkg.Name, p))
	if !ok {
		return nil
	}
	var keep map[string]bool
	if e.Closure == ClosureOneHop {
		keep = oneHop(pkg, p, target)
	}
	var out []Component
	for _, rs := range target.Specs {
		if rs.Name == pkg.Name || (keep != nil && !keep[rs.Name]) {
			continue
		}
		out = append(out, NewComponent(rs.Spec))
	}
	return out
}

func oneHop(pkg *Package, p podspec.Platform, target *deps.TargetResolution) map[string]bool {
	keep := make(map[string]bool)
	for _, c := range pkg.ComponentsFor(p) {
		keep[c.Name] = true
	}
	for _, name := range pkg.DirectDependencies(p) {
		keep[name] = true
		rs, ok := target.Spec(name)
		if !ok {
			continue
		}
		for _, d := range rs.Spec.AllDependenciesFor(p) {
			keep[d.Name] = true
		}
		for _, sub := range rs.Spec.SubspecDependencies(p) {
			keep[sub.FullName()] = true
		}
	}
	return keep
}
