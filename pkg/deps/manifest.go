package deps

import (
	"github.com/matzehuels/poddiff/pkg/podspec"
)

// Dependency is a pod requested by a target.
type Dependency struct {
	Name         string   // Pod or subspec name
	Requirements []string // e.g. ["= 10.0.0"]; empty means any release
}

// Target is a Podfile target.
type Target struct {
	Name     string
	Platform podspec.Platform
	Pods     []Dependency
}

// Manifest is a synthetic Podfile.
type Manifest struct {
	Targets []Target
}

// TargetName returns the name poddiff gives the target of pod on p.
func TargetName(pod string, p podspec.Platform) string {
	return pod + "_" + string(p)
}

// ForPod returns a manifest with one target per platform, each requesting
// pod pinned to version.
func ForPod(pod, version string, platforms []podspec.Platform) *Manifest {
	m := &Manifest{}
	for _, p := range platforms {
		m.Targets = append(m.Targets, Target{
			Name:     TargetName(pod, p),
			Platform: p,
			Pods:     []Dependency{{Name: pod, Requirements: []string{"= " + version}}},
		})
	}
	return m
}
