package diff

import (
	"strings"

	"github.com/matzehuels/poddiff/pkg/deps"
	"github.com/matzehuels/poddiff/pkg/podspec"
	"github.com/matzehuels/poddiff/pkg/version"
)

// GeneratePodfile renders a Podfile installing pkg and its components, one
// target per platform. Platforms pkg does not support and platforms without
// components get no target. The target's platform version is the highest
// minimum among the pod and its components, "0" when none is defined.
func GeneratePodfile(pkg *Package, platforms []podspec.Platform, components map[podspec.Platform][]Component) string {
	var b strings.Builder
	b.WriteString("install! 'cocoapods', integrate_targets: false\n")
	b.WriteString("use_frameworks!\n")

	for _, p := range platforms {
		comps := components[p]
		if !pkg.SupportsPlatform(p) || len(comps) == 0 {
			continue
		}
		mins := []string{pkg.MinVersions[p]}
		for _, c := range comps {
			v, _ := c.MinVersion(p)
			mins = append(mins, v)
		}

		b.WriteString("\ntarget '" + deps.TargetName(pkg.Name, p) + "' do\n")
		b.WriteString("\tplatform :" + string(p) + ", '" + version.Max(mins...) + "'\n")
		b.WriteString("\tpod '" + pkg.Name + "', '" + pkg.Version + "'\n")
		for _, c := range comps {
			b.WriteString("\tpod '" + c.Name + "', '" + c.Version + "'\n")
		}
		b.WriteString("end\n")
	}
	return b.String()
}
