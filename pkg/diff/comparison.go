package diff

import (
	"gopkg.in/yaml.v3"
)

// Comparison is the structured form of a Result.
type Comparison struct {
	Pod       string               `json:"pod" yaml:"pod"`
	Older     string               `json:"older" yaml:"older"`
	Newer     string               `json:"newer" yaml:"newer"`
	Warning   string               `json:"warning,omitempty" yaml:"warning,omitempty"`
	Platforms []PlatformComparison `json:"platforms" yaml:"platforms"`
}

// PlatformComparison compares both sides on one platform.
type PlatformComparison struct {
	Platform string   `json:"platform" yaml:"platform"`
	Older    []Row    `json:"older" yaml:"older"`
	Newer    []Row    `json:"newer" yaml:"newer"`
	Added    []string `json:"added,omitempty" yaml:"added,omitempty"`
	Removed  []string `json:"removed,omitempty" yaml:"removed,omitempty"`
	Changed  []Change `json:"changed,omitempty" yaml:"changed,omitempty"`
}

// Change is a component whose minimum version differs between the sides.
type Change struct {
	Name  string `json:"name" yaml:"name"`
	Older string `json:"older" yaml:"older"`
	Newer string `json:"newer" yaml:"newer"`
}

// Comparison returns the structured comparison of r.
func (r *Result) Comparison() Comparison {
	c := Comparison{
		Pod:       r.Pod,
		Older:     r.OlderVersion,
		Newer:     r.NewerVersion,
		Warning:   r.Warning,
		Platforms: make([]PlatformComparison, 0, len(r.Platforms)),
	}
	olderRows, newerRows := r.Rows(Older), r.Rows(Newer)
	for _, p := range r.Platforms {
		pc := PlatformComparison{Platform: string(p), Older: olderRows[p], Newer: newerRows[p]}
		o, n := index(olderRows[p]), index(newerRows[p])
		for _, row := range olderRows[p] {
			nr, ok := n[row.Name]
			switch {
			case !ok:
				pc.Removed = append(pc.Removed, row.Name)
			case nr.MinVersion != row.MinVersion:
				pc.Changed = append(pc.Changed, Change{Name: row.Name, Older: row.MinVersion, Newer: nr.MinVersion})
			}
		}
		for _, row := range newerRows[p] {
			if _, ok := o[row.Name]; !ok {
				pc.Added = append(pc.Added, row.Name)
			}
		}
		c.Platforms = append(c.Platforms, pc)
	}
	return c
}

// YAML encodes the comparison as a YAML document.
func (c Comparison) YAML() ([]byte, error) {
	return yaml.Marshal(c)
}
