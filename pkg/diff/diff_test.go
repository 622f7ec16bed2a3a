package diff

import (
	"context"
	"os"
	"slices"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/poddiff/pkg/deps"
	perrors "github.com/matzehuels/poddiff/pkg/errors"
	"github.com/matzehuels/poddiff/pkg/podspec"
	"github.com/matzehuels/poddiff/pkg/source"
)

func specFile(data string) *fstest.MapFile {
	return &fstest.MapFile{Data: []byte(data)}
}

// specsRepo is a flat specs repository:
//
//	X 1.0.0: Core (ios 10.0)
//	X 2.0.0: Core (ios 11.0, depends on Dep), UI (ios 11.0)
//	Y 1.0.0, Y 2.0.0: no subspecs
//	Dep -> Deeper -> Deepest
func specsRepo() fstest.MapFS {
	return fstest.MapFS{
		"X/1.0.0/X.podspec.json": specFile(`{
			"name": "X", "version": "1.0.0", "platforms": {"ios": "10.0"},
			"subspecs": [{"name": "Core", "platforms": {"ios": "10.0"}}]
		}`),
		"X/2.0.0/X.podspec.json": specFile(`{
			"name": "X", "version": "2.0.0", "platforms": {"ios": "11.0"},
			"default_subspecs": "Core",
			"subspecs": [
				{"name": "Core", "platforms": {"ios": "11.0"}, "dependencies": {"Dep": ["~> 1.0"]}},
				{"name": "UI", "platforms": {"ios": "11.0"}}
			]
		}`),
		"Y/1.0.0/Y.podspec.json":             specFile(`{"name": "Y", "version": "1.0.0", "platforms": {"ios": "9.0"}}`),
		"Y/2.0.0/Y.podspec.json":             specFile(`{"name": "Y", "version": "2.0.0", "platforms": {"ios": "9.0"}}`),
		"Dep/1.0.0/Dep.podspec.json":         specFile(`{"name": "Dep", "version": "1.0.0"}`),
		"Dep/1.2.0/Dep.podspec.json":         specFile(`{"name": "Dep", "version": "1.2.0", "dependencies": {"Deeper": []}}`),
		"Deeper/3.0.0/Deeper.podspec.json":   specFile(`{"name": "Deeper", "version": "3.0.0", "platforms": {"ios": "12.0"}, "dependencies": {"Deepest": []}}`),
		"Deepest/0.1.0/Deepest.podspec.json": specFile(`{"name": "Deepest", "version": "0.1.0"}`),
	}
}

func newTestEngine(closure Closure) *Engine {
	src := source.NewLocalFS("specs", specsRepo())
	e := NewEngine(source.NewLocator(src), deps.NewRegistry(src, deps.Options{}), log.New(os.Stderr))
	e.Closure = closure
	return e
}

func line(a, b, c, d string, nw, vw int) string {
	return "| " + pad(a, nw) + " | " + pad(b, vw) + " | " + pad(c, nw) + " | " + pad(d, vw) + " |\n"
}

func separator(nw, vw int) string {
	d := func(n int) string { return strings.Repeat("-", n) }
	return "|-" + d(nw) + ":|:" + d(vw) + "-|-" + d(nw) + ":|:" + d(vw) + "-|\n"
}

func TestRequestValidate(t *testing.T) {
	tests := []struct {
		name string
		req  Request
		want string
	}{
		{"missing pod", Request{}, "A Pod name is required."},
		{"missing old version", Request{Pod: "X"}, "An old Version is required."},
		{"missing new version", Request{Pod: "X", Version1: "1.0.0"}, "A new Version is required."},
		{"same version", Request{Pod: "X", Version1: "1.0.0", Version2: "1.0.0"}, "Versions should be different."},
		{"same precedence", Request{Pod: "X", Version1: "1.0", Version2: "1.0.0"}, "Versions should be different."},
		{"valid", Request{Pod: "X", Version1: "2.0.0", Version2: "1.0.0"}, ""},
		{"valid platforms", Request{Pod: "X", Version1: "2.0.0", Version2: "1.0.0", Platforms: []string{"ios", "macos"}}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if tt.want == "" {
				if err != nil {
					t.Fatalf("Validate() = %v", err)
				}
				return
			}
			if !perrors.Is(err, perrors.ErrCodeInvalidInput) {
				t.Fatalf("Validate() = %v, want INVALID_INPUT", err)
			}
			if got := perrors.UserMessage(err); got != tt.want {
				t.Errorf("message = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestOrderVersions(t *testing.T) {
	older, newer, err := OrderVersions("10.0.0", "9.6.0")
	if err != nil {
		t.Fatal(err)
	}
	if older != "9.6.0" || newer != "10.0.0" {
		t.Errorf("OrderVersions() = (%s, %s)", older, newer)
	}
	if _, _, err := OrderVersions("1.0", "banana"); !perrors.Is(err, perrors.ErrCodeInvalidVersion) {
		t.Errorf("OrderVersions(invalid) = %v, want INVALID_VERSION", err)
	}
}

func pkgWithPlatforms(platforms ...podspec.Platform) *Package {
	return &Package{Name: "X", Version: "1.0.0", Platforms: platforms}
}

func TestNormalizePlatforms(t *testing.T) {
	a := pkgWithPlatforms(podspec.TVOS, podspec.IOS)
	b := pkgWithPlatforms(podspec.IOS, podspec.WatchOS)

	tests := []struct {
		name      string
		requested []string
		want      []podspec.Platform
		wantErr   bool
	}{
		{"union", nil, []podspec.Platform{podspec.TVOS, podspec.IOS, podspec.WatchOS}, false},
		{"explicit", []string{"osx"}, []podspec.Platform{podspec.OSX}, false},
		{"explicit dedupe", []string{"ios", "macos", "iOS", "osx"}, []podspec.Platform{podspec.IOS, podspec.OSX}, false},
		{"invalid", []string{"android"}, nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizePlatforms(tt.requested, a, b)
			if tt.wantErr {
				if !perrors.Is(err, perrors.ErrCodeInvalidPlatform) {
					t.Fatalf("err = %v, want INVALID_PLATFORM", err)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if !slices.Equal(got, tt.want) {
				t.Errorf("NormalizePlatforms() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRenderTable(t *testing.T) {
	ios := podspec.IOS
	older := map[podspec.Platform][]Row{ios: {{"Core", "10.0"}, {"Legacy", NotDefined}}}
	newer := map[podspec.Platform][]Row{ios: {{"Core", "11.0"}, {"UI", "11.0"}}}

	got := RenderTable("X", "1.0.0", "2.0.0", []podspec.Platform{ios}, older, newer)
	nw, vw := len("Legacy"), len("Minimum Supported Version")
	want := "# X\n" +
		"\n## ios 1.0.0 vs. 2.0.0\n\n" +
		line("Name", "Minimum Supported Version", "Name", "Minimum Supported Version", nw, vw) +
		separator(nw, vw) +
		line("Core", "10.0", "Core", "11.0", nw, vw) +
		line("Legacy", "Not defined", "", "", nw, vw) +
		line("", "", "UI", "11.0", nw, vw) +
		"\n"
	if got != want {
		t.Errorf("RenderTable() =\n%s\nwant\n%s", got, want)
	}
	if again := RenderTable("X", "1.0.0", "2.0.0", []podspec.Platform{ios}, older, newer); again != got {
		t.Error("RenderTable is not idempotent")
	}
}

func TestRenderTableWidths(t *testing.T) {
	long := "AnExtremelyLongPodName/WithSubspec"
	rows := map[podspec.Platform][]Row{podspec.OSX: {{long, "10.13"}}}
	got := RenderTable("X", "1", "2", []podspec.Platform{podspec.OSX}, rows, nil)

	lines := strings.Split(got, "\n")
	header := lines[4]
	if want := "| Name" + strings.Repeat(" ", len(long)-4) + " | Minimum Supported Version |"; !strings.HasPrefix(header, want) {
		t.Errorf("header = %q, want prefix %q", header, want)
	}
	if sep := lines[5]; sep != strings.TrimSuffix(separator(len(long), 25), "\n") {
		t.Errorf("separator = %q", sep)
	}
	for _, l := range lines[4:7] {
		if len(l) != len(header) {
			t.Errorf("line %q has length %d, want %d", l, len(l), len(header))
		}
	}
}

func TestRenderTableEmptyPlatform(t *testing.T) {
	got := RenderTable("X", "1", "2", []podspec.Platform{podspec.IOS, podspec.TVOS},
		map[podspec.Platform][]Row{podspec.IOS: {{"Core", "9.0"}}}, nil)
	tvos := got[strings.Index(got, "## tvos"):]
	want := "## tvos 1 vs. 2\n\n" + line("Name", "Minimum Supported Version", "Name", "Minimum Supported Version", 4, 25) + separator(4, 25) + "\n"
	if tvos != want {
		t.Errorf("tvos section =\n%q\nwant\n%q", tvos, want)
	}
}

func TestGeneratePodfile(t *testing.T) {
	pkg := &Package{
		Name:        "X",
		Version:     "2.0.0",
		Platforms:   []podspec.Platform{podspec.IOS, podspec.OSX},
		MinVersions: map[podspec.Platform]string{podspec.IOS: "9.0"},
	}
	comps := map[podspec.Platform][]Component{
		podspec.IOS: {
			{Name: "X/A", Version: "2.0.0", MinVersions: map[podspec.Platform]string{podspec.IOS: "12.0"}},
			{Name: "X/B", Version: "2.0.0"},
		},
		podspec.OSX:  {{Name: "X/A", Version: "2.0.0"}},
		podspec.TVOS: {{Name: "X/C", Version: "2.0.0"}},
	}
	got := GeneratePodfile(pkg, []podspec.Platform{podspec.IOS, podspec.OSX, podspec.TVOS, podspec.WatchOS}, comps)
	want := "install! 'cocoapods', integrate_targets: false\n" +
		"use_frameworks!\n" +
		"\ntarget 'X_ios' do\n" +
		"\tplatform :ios, '12.0'\n" +
		"\tpod 'X', '2.0.0'\n" +
		"\tpod 'X/A', '2.0.0'\n" +
		"\tpod 'X/B', '2.0.0'\n" +
		"end\n" +
		"\ntarget 'X_osx' do\n" +
		"\tplatform :osx, '0'\n" +
		"\tpod 'X', '2.0.0'\n" +
		"\tpod 'X/A', '2.0.0'\n" +
		"end\n"
	if got != want {
		t.Errorf("GeneratePodfile() =\n%s\nwant\n%s", got, want)
	}
}

func TestGeneratePodfileEmpty(t *testing.T) {
	pkg := &Package{Name: "X", Version: "1.0.0", Platforms: []podspec.Platform{podspec.IOS}}
	got := GeneratePodfile(pkg, []podspec.Platform{podspec.IOS}, map[podspec.Platform][]Component{podspec.IOS: nil})
	if got != "install! 'cocoapods', integrate_targets: false\nuse_frameworks!\n" {
		t.Errorf("GeneratePodfile() = %q", got)
	}
}

func TestRunNothingToCompare(t *testing.T) {
	res, err := newTestEngine(ClosureOneHop).Run(context.Background(), Request{Pod: "Y", Version1: "2.0.0", Version2: "1.0.0"})
	if err != nil {
		t.Fatal(err)
	}
	if want := "There's nothing to compare for Y 1.0.0 vs. 2.0.0"; res.Warning != want {
		t.Errorf("Warning = %q, want %q", res.Warning, want)
	}
	if res.Table() != "" {
		t.Errorf("Table() = %q, want empty", res.Table())
	}
}

func TestRunSubspecs(t *testing.T) {
	res, err := newTestEngine(ClosureOneHop).Run(context.Background(), Request{Pod: "X", Version1: "2.0.0", Version2: "1.0.0"})
	if err != nil {
		t.Fatal(err)
	}
	if res.Warning != "" {
		t.Fatalf("unexpected warning %q", res.Warning)
	}
	if !slices.Equal(res.Platforms, []podspec.Platform{podspec.IOS}) {
		t.Errorf("Platforms = %v", res.Platforms)
	}

	nw, vw := len("X/Core"), len("Minimum Supported Version")
	want := "# X\n" +
		"\n## ios 1.0.0 vs. 2.0.0\n\n" +
		line("Name", "Minimum Supported Version", "Name", "Minimum Supported Version", nw, vw) +
		separator(nw, vw) +
		line("X/Core", "10.0", "X/Core", "11.0", nw, vw) +
		line("", "", "X/UI", "11.0", nw, vw) +
		"\n"
	if got := res.Table(); got != want {
		t.Errorf("Table() =\n%s\nwant\n%s", got, want)
	}

	podfile := res.Podfile(Older)
	if !strings.Contains(podfile, "\tplatform :ios, '10.0'\n\tpod 'X', '1.0.0'\n\tpod 'X/Core', '1.0.0'\nend\n") {
		t.Errorf("older Podfile =\n%s", podfile)
	}

	c := res.Comparison()
	if len(c.Platforms) != 1 || !slices.Equal(c.Platforms[0].Added, []string{"X/UI"}) {
		t.Errorf("Comparison() = %+v", c)
	}
	if ch := c.Platforms[0].Changed; len(ch) != 1 || ch[0] != (Change{Name: "X/Core", Older: "10.0", Newer: "11.0"}) {
		t.Errorf("Changed = %+v", ch)
	}
	data, err := c.YAML()
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "minimum_version: \"11.0\"") {
		t.Errorf("YAML =\n%s", data)
	}

	g := res.Graph(Newer)
	if !slices.Equal(g.Children("X"), []string{"X/Core", "X/UI"}) {
		t.Errorf("graph children = %v", g.Children("X"))
	}
}

func TestRunExplicitPlatforms(t *testing.T) {
	res, err := newTestEngine(ClosureOneHop).Run(context.Background(),
		Request{Pod: "X", Version1: "1.0.0", Version2: "2.0.0", Platforms: []string{"ios", "tvos"}})
	if err != nil {
		t.Fatal(err)
	}
	table := res.Table()
	if !strings.Contains(table, "## tvos 1.0.0 vs. 2.0.0") {
		t.Errorf("missing tvos section:\n%s", table)
	}
	if strings.Contains(res.Podfile(Newer), "X_tvos") {
		t.Error("Podfile should not contain a tvos target")
	}
}

func TestRunIncludeDependencies(t *testing.T) {
	tests := []struct {
		name    string
		closure Closure
		want    []string
	}{
		{"one hop", ClosureOneHop, []string{"X/Core", "X/UI", "Dep", "Deeper"}},
		{"full", ClosureFull, []string{"X/Core", "X/UI", "Dep", "Deeper", "Deepest"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := newTestEngine(tt.closure).Run(context.Background(),
				Request{Pod: "X", Version1: "1.0.0", Version2: "2.0.0", IncludeDependencies: true})
			if err != nil {
				t.Fatal(err)
			}
			var names []string
			for _, c := range res.Components[Newer][podspec.IOS] {
				names = append(names, c.Name)
			}
			if !slices.Equal(names, tt.want) {
				t.Errorf("components = %v, want %v", names, tt.want)
			}

			podfile := res.Podfile(Newer)
			for _, want := range []string{"\tplatform :ios, '12.0'\n", "\tpod 'Dep', '1.2.0'\n", "\tpod 'Deeper', '3.0.0'\n"} {
				if !strings.Contains(podfile, want) {
					t.Errorf("Podfile missing %q:\n%s", want, podfile)
				}
			}

			g := res.Graph(Newer)
			if !slices.Contains(g.Children("X/Core"), "Dep") {
				t.Errorf("X/Core children = %v", g.Children("X/Core"))
			}
		})
	}
}

func TestCollectPlatformWithoutTarget(t *testing.T) {
	e := newTestEngine(ClosureOneHop)
	spec, err := e.Locator.Locate(context.Background(), "X", false, "2.0.0")
	if err != nil {
		t.Fatal(err)
	}
	comps, err := e.Collect(context.Background(), NewPackage(spec), podspec.WatchOS, true)
	if err != nil {
		t.Fatal(err)
	}
	if len(comps) != 0 {
		t.Errorf("Collect(watchos) = %v, want none", comps)
	}
}

func TestRunLookupErrors(t *testing.T) {
	tests := []struct {
		name string
		req  Request
		want string
	}{
		{
			"unknown pod",
			Request{Pod: "Nope", Version1: "1.0.0", Version2: "2.0.0"},
			"There was a problem trying to locate the pod Nope (1.0.0)\nOriginal error message: Unable to find a pod with name matching `Nope`",
		},
		{
			"missing version",
			Request{Pod: "X", Version1: "3.0.0", Version2: "1.0.0"},
			"There was a problem trying to locate the pod X (3.0.0)\nOriginal error message: Unable to find a specification for `X (3.0.0)`",
		},
		{
			"ambiguous",
			Request{Pod: "Dee", Version1: "1.0.0", Version2: "2.0.0"},
			"There was a problem trying to locate the pod Dee (1.0.0)\nOriginal error message: More than one spec found for 'Dee':\nDeeper\nDeepest",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := newTestEngine(ClosureOneHop).Run(context.Background(), tt.req)
			if !perrors.Is(err, perrors.ErrCodeLookup) {
				t.Fatalf("Run() = %v, want LOOKUP_FAILED", err)
			}
			if got := perrors.UserMessage(err); got != tt.want {
				t.Errorf("message =\n%q\nwant\n%q", got, tt.want)
			}
		})
	}
}

func TestRunRegex(t *testing.T) {
	res, err := newTestEngine(ClosureOneHop).Run(context.Background(), Request{Pod: "^x$", Regex: true, Version1: "1.0.0", Version2: "2.0.0"})
	if err != nil {
		t.Fatal(err)
	}
	if res.Pod != "X" {
		t.Errorf("Pod = %q, want X", res.Pod)
	}
}

func TestRunRejectsPlatformBeforeLookup(t *testing.T) {
	// The pod does not exist, so a lookup would fail with LOOKUP_FAILED.
	req := Request{Pod: "Missing", Version1: "1.0.0", Version2: "2.0.0", Platforms: []string{"ios", "amiga"}}
	if err := req.Validate(); perrors.GetCode(err) != perrors.ErrCodeInvalidPlatform {
		t.Errorf("Validate() = %v, want INVALID_PLATFORM", err)
	}
	_, err := newTestEngine(ClosureOneHop).Run(context.Background(), req)
	if perrors.GetCode(err) != perrors.ErrCodeInvalidPlatform {
		t.Fatalf("Run() = %v, want INVALID_PLATFORM", err)
	}
	if !perrors.IsUsage(err) {
		t.Error("an unknown platform should be a usage error")
	}
}
