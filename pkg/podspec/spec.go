package podspec

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"
)

// NoDefaultSubspecs is the default_subspecs value that disables implicit subspecs.
const NoDefaultSubspecs = ":none"

// Attributes holds the platform-scoped attributes of a spec ("ios": {...}).
type Attributes struct {
	Dependencies Dependencies `json:"dependencies,omitempty"`
}

// Spec is a decoded .podspec.json document or one of its subspecs.
type Spec struct {
	Name            string       `json:"name"`
	Version         string       `json:"version,omitempty"`
	Summary         string       `json:"summary,omitempty"`
	Homepage        string       `json:"homepage,omitempty"`
	Platforms       Targets      `json:"platforms,omitempty"`
	Dependencies    Dependencies `json:"dependencies,omitempty"`
	DefaultSubspecs StringList   `json:"default_subspecs,omitempty"`
	Subspecs        []*Spec      `json:"subspecs,omitempty"`

	IOS      *Attributes `json:"ios,omitempty"`
	OSX      *Attributes `json:"osx,omitempty"`
	TVOS     *Attributes `json:"tvos,omitempty"`
	WatchOS  *Attributes `json:"watchos,omitempty"`
	VisionOS *Attributes `json:"visionos,omitempty"`

	parent *Spec
}

// Parse decodes a .podspec.json document.
func Parse(data []byte) (*Spec, error) {
	var s Spec
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decode podspec: %w", err)
	}
	if s.Name == "" {
		return nil, fmt.Errorf("decode podspec: missing name")
	}
	s.Link()
	return &s, nil
}

// Link sets parent pointers on the subspec tree. Parse calls it; callers
// building a Spec by hand must call it before using inheritance helpers.
func (s *Spec) Link() {
	for _, sub := range s.Subspecs {
		sub.parent = s
		sub.Link()
	}
}

// Parent returns the enclosing spec, or nil for a root spec.
func (s *Spec) Parent() *Spec { return s.parent }

// IsRoot reports whether s is a root spec.
func (s *Spec) IsRoot() bool { return s.parent == nil }

// Root returns the root spec of the tree s belongs to.
func (s *Spec) Root() *Spec {
	for s.parent != nil {
		s = s.parent
	}
	return s
}

// FullName returns the slash separated name, e.g. "Firebase/Core".
func (s *Spec) FullName() string {
	if s.parent == nil {
		return s.Name
	}
	return s.parent.FullName() + "/" + s.Name
}

// PodVersion returns the version of the pod s belongs to. Subspecs share
// their root's version.
func (s *Spec) PodVersion() string {
	return s.Root().Version
}

// DeploymentTarget returns the minimum OS version for p, inherited from the
// nearest ancestor that defines one.
func (s *Spec) DeploymentTarget(p Platform) (string, bool) {
	for cur := s; cur != nil; cur = cur.parent {
		if t, ok := cur.Platforms.Lookup(p); ok && t.Version != "" {
			return t.Version, true
		}
	}
	return "", false
}

// AvailablePlatforms returns the platforms s can be used on: the platforms it
// declares (all platforms when it declares none), restricted to those of its
// parent.
func (s *Spec) AvailablePlatforms() []Platform {
	var own []Platform
	for _, t := range s.Platforms {
		if !slices.Contains(own, t.Platform) {
			own = append(own, t.Platform)
		}
	}
	if len(own) == 0 {
		own = slices.Clone(Platforms)
	}
	if s.parent == nil {
		return own
	}
	inherited := s.parent.AvailablePlatforms()
	return slices.DeleteFunc(own, func(p Platform) bool {
		return !slices.Contains(inherited, p)
	})
}

// SupportsPlatform reports whether s is available on p.
func (s *Spec) SupportsPlatform(p Platform) bool {
	return slices.Contains(s.AvailablePlatforms(), p)
}

func (s *Spec) attributes(p Platform) *Attributes {
	switch p {
	case IOS:
		return s.IOS
	case OSX:
		return s.OSX
	case TVOS:
		return s.TVOS
	case WatchOS:
		return s.WatchOS
	case VisionOS:
		return s.VisionOS
	}
	return nil
}

// DependenciesFor returns the dependencies s declares for p: the shared
// dependencies followed by the platform-scoped ones.
func (s *Spec) DependenciesFor(p Platform) []Dependency {
	out := slices.Clone([]Dependency(s.Dependencies))
	if attrs := s.attributes(p); attrs != nil {
		out = append(out, attrs.Dependencies...)
	}
	return out
}

// AllDependenciesFor returns the dependencies of s and its ancestors for p,
// outermost first. Requirements for a repeated name are merged.
func (s *Spec) AllDependenciesFor(p Platform) []Dependency {
	var chain []*Spec
	for cur := s; cur != nil; cur = cur.parent {
		chain = append(chain, cur)
	}
	slices.Reverse(chain)

	var out []Dependency
	index := make(map[string]int)
	for _, spec := range chain {
		for _, dep := range spec.DependenciesFor(p) {
			if i, ok := index[dep.Name]; ok {
				out[i].Requirements = append(out[i].Requirements, dep.Requirements...)
				continue
			}
			index[dep.Name] = len(out)
			out = append(out, Dependency{Name: dep.Name, Requirements: slices.Clone(dep.Requirements)})
		}
	}
	return out
}

// HasNoDefaultSubspecs reports whether default_subspecs is ":none".
func (s *Spec) HasNoDefaultSubspecs() bool {
	return len(s.DefaultSubspecs) == 1 && s.DefaultSubspecs[0] == NoDefaultSubspecs
}

// SubspecDependencies returns the subspecs implicitly pulled in when s is
// depended upon as a whole on p: its default subspecs when declared,
// otherwise every direct subspec available on p.
func (s *Spec) SubspecDependencies(p Platform) []*Spec {
	if s.HasNoDefaultSubspecs() {
		return nil
	}
	candidates := s.Subspecs
	if len(s.DefaultSubspecs) > 0 {
		candidates = nil
		for _, name := range s.DefaultSubspecs {
			if sub := s.Subspec(name); sub != nil {
				candidates = append(candidates, sub)
			}
		}
	}
	var out []*Spec
	for _, sub := range candidates {
		if sub.SupportsPlatform(p) {
			out = append(out, sub)
		}
	}
	return out
}

// Subspec finds a descendant by relative ("Core/Sub") or full
// ("Pod/Core/Sub") name. It returns nil when there is no such subspec.
func (s *Spec) Subspec(name string) *Spec {
	if full := s.FullName() + "/"; strings.HasPrefix(name, full) {
		name = strings.TrimPrefix(name, full)
	}
	cur := s
	for part := range strings.SplitSeq(name, "/") {
		var next *Spec
		for _, sub := range cur.Subspecs {
			if sub.Name == part {
				next = sub
				break
			}
		}
		if next == nil {
			return nil
		}
		cur = next
	}
	return cur
}

// Walk calls fn for s and every descendant, depth first.
func (s *Spec) Walk(fn func(*Spec)) {
	fn(s)
	for _, sub := range s.Subspecs {
		sub.Walk(fn)
	}
}

// ClearDefaultSubspecs drops every default_subspecs restriction in the tree
// so that all subspecs take part in a comparison.
func (s *Spec) ClearDefaultSubspecs() {
	s.Walk(func(spec *Spec) { spec.DefaultSubspecs = nil })
}

// RootName returns the pod name part of a possibly qualified subspec name.
func RootName(name string) string {
	root, _, _ := strings.Cut(name, "/")
	return root
}
