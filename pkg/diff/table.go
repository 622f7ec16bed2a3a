package diff

import (
	"strings"
	"unicode/utf8"

	"github.com/matzehuels/poddiff/pkg/podspec"
)

const (
	nameHeader    = "Name"
	versionHeader = "Minimum Supported Version"
)

// Row is one side of a table line: a component and its minimum version label.
type Row struct {
	Name       string `json:"name" yaml:"name"`
	MinVersion string `json:"minimum_version" yaml:"minimum_version"`
}

// RowsFor returns the table rows of components on p.
func RowsFor(components []Component, p podspec.Platform) []Row {
	rows := make([]Row, 0, len(components))
	for _, c := range components {
		rows = append(rows, Row{Name: c.Name, MinVersion: c.Label(p)})
	}
	return rows
}

// RenderTable renders the markdown comparison of both sides, one section per
// platform. Rows list the older names first, then names only the newer side
// has. A name missing on one side leaves that side's cells empty.
func RenderTable(podName, older, newer string, platforms []podspec.Platform, olderRows, newerRows map[podspec.Platform][]Row) string {
	var b strings.Builder
	b.WriteString("# " + podName + "\n")

	for _, p := range platforms {
		o, n := index(olderRows[p]), index(newerRows[p])
		names := unionNames(olderRows[p], newerRows[p])

		nameWidth, versionWidth := len(nameHeader), len(versionHeader)
		for _, rows := range [][]Row{olderRows[p], newerRows[p]} {
			for _, r := range rows {
				nameWidth = max(nameWidth, width(r.Name))
				versionWidth = max(versionWidth, width(r.MinVersion))
			}
		}

		b.WriteString("\n## " + string(p) + " " + older + " vs. " + newer + "\n\n")
		writeLine(&b, nameWidth, versionWidth, nameHeader, versionHeader, nameHeader, versionHeader)
		dashes := func(w int) string { return strings.Repeat("-", w) }
		b.WriteString("|-" + dashes(nameWidth) + ":|:" + dashes(versionWidth) + "-|-" + dashes(nameWidth) + ":|:" + dashes(versionWidth) + "-|\n")

		for _, name := range names {
			var left, right Row
			if r, ok := o[name]; ok {
				left = r
			}
			if r, ok := n[name]; ok {
				right = r
			}
			writeLine(&b, nameWidth, versionWidth, left.Name, left.MinVersion, right.Name, right.MinVersion)
		}
		b.WriteString("\n")
	}
	return b.String()
}

func writeLine(b *strings.Builder, nameWidth, versionWidth int, cells ...string) {
	for i, c := range cells {
		w := nameWidth
		if i%2 == 1 {
			w = versionWidth
		}
		b.WriteString("| " + pad(c, w) + " ")
	}
	b.WriteString("|\n")
}

func index(rows []Row) map[string]Row {
	m := make(map[string]Row, len(rows))
	for _, r := range rows {
		if _, ok := m[r.Name]; !ok {
			m[r.Name] = r
		}
	}
	return m
}

func unionNames(older, newer []Row) []string {
	seen := make(map[string]bool, len(older)+len(newer))
	var out []string
	for _, rows := range [][]Row{older, newer} {
		for _, r := range rows {
			if !seen[r.Name] {
				seen[r.Name] = true
				out = append(out, r.Name)
			}
		}
	}
	return out
}

func width(s string) int { return utf8.RuneCountInString(s) }

func pad(s string, w int) string {
	if n := width(s); n < w {
		return s + strings.Repeat(" ", w-n)
	}
	return s
}
