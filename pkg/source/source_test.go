package source

import (
	"context"
	"net/http"
	"net/http/httptest"
	"slices"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	perrors "github.com/matzehuels/poddiff/pkg/errors"
	"github.com/matzehuels/poddiff/pkg/integrations/trunk"
)

func spec(name, ver string) *fstest.MapFile {
	return &fstest.MapFile{Data: []byte(`{"name": "` + name + `", "version": "` + ver + `"}`)}
}

func shardedFS() fstest.MapFS {
	return fstest.MapFS{
		"README.md": &fstest.MapFile{Data: []byte("specs")},
		"Specs/0/3/5/Firebase/9.6.0/Firebase.podspec.json":          spec("Firebase", "9.6.0"),
		"Specs/0/3/5/Firebase/10.0.0/Firebase.podspec.json":         spec("Firebase", "10.0.0"),
		"Specs/0/3/5/Firebase/1.0.0/Firebase.podspec":               &fstest.MapFile{Data: []byte("Pod::Spec.new")},
		"Specs/8/b/d/FirebaseCore/10.0.0/FirebaseCore.podspec.json": spec("FirebaseCore", "10.0.0"),
		"Specs/d/a/2/Alamofire/5.8.1/Alamofire.podspec.json":        spec("Alamofire", "5.8.1"),
	}
}

func flatFS() fstest.MapFS {
	return fstest.MapFS{
		"Firebase/10.0.0/Firebase.podspec.json": spec("Firebase", "10.0.0"),
		"Firebase/2.0/Firebase.podspec.json":    spec("Firebase", "2.0"),
		"Firebase/.git/HEAD":                    &fstest.MapFile{Data: []byte("ref")},
		"Alamofire/5.8.1/Alamofire.podspec.json": spec("Alamofire", "5.8.1"),
	}
}

func TestLocalLayouts(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name         string
		fsys         fstest.MapFS
		wantSharded  bool
		wantPods     []string
		wantVersions []string
	}{
		{"sharded", shardedFS(), true, []string{"Alamofire", "Firebase", "FirebaseCore"}, []string{"1.0.0", "9.6.0", "10.0.0"}},
		{"flat", flatFS(), false, []string{"Alamofire", "Firebase"}, []string{"2.0", "10.0.0"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := NewLocalFS("specs", tt.fsys)
			if l.sharded != tt.wantSharded {
				t.Errorf("sharded = %v, want %v", l.sharded, tt.wantSharded)
			}
			pods, err := l.Pods(ctx)
			if err != nil {
				t.Fatal(err)
			}
			if !slices.Equal(pods, tt.wantPods) {
				t.Errorf("Pods() = %v, want %v", pods, tt.wantPods)
			}
			versions, err := l.Versions(ctx, "Firebase")
			if err != nil {
				t.Fatal(err)
			}
			if !slices.Equal(versions, tt.wantVersions) {
				t.Errorf("Versions() = %v, want %v", versions, tt.wantVersions)
			}
			s, err := l.Podspec(ctx, "Firebase", "10.0.0")
			if err != nil {
				t.Fatal(err)
			}
			if s.Name != "Firebase" || s.Version != "10.0.0" {
				t.Errorf("Podspec() = %s %s", s.Name, s.Version)
			}
		})
	}
}

func TestLocalErrors(t *testing.T) {
	ctx := context.Background()
	l := NewLocalFS("specs", shardedFS())

	if _, err := l.Versions(ctx, "Nope"); perrors.GetCode(err) != perrors.ErrCodePodNotFound {
		t.Errorf("Versions(Nope) code = %v", perrors.GetCode(err))
	}
	if _, err := l.Podspec(ctx, "Firebase", "3.0.0"); perrors.GetCode(err) != perrors.ErrCodeVersionNotFound {
		t.Errorf("missing version code = %v", perrors.GetCode(err))
	}
	if _, err := l.Podspec(ctx, "Firebase", "1.0.0"); perrors.GetCode(err) != perrors.ErrCodeUnsupported {
		t.Errorf("ruby podspec code = %v", perrors.GetCode(err))
	}
	if _, err := NewLocal(t.TempDir() + "/missing"); perrors.GetCode(err) != perrors.ErrCodeInvalidPath {
		t.Errorf("NewLocal(missing) code = %v", perrors.GetCode(err))
	}
}

func TestSortVersions(t *testing.T) {
	got := SortVersions([]string{"10.0.0", "garbage", "9.6.0", "10.0.0-beta", "1.0"})
	want := []string{"1.0", "9.6.0", "10.0.0-beta", "10.0.0", "garbage"}
	if !slices.Equal(got, want) {
		t.Errorf("SortVersions() = %v, want %v", got, want)
	}
}

func TestLocatorSearch(t *testing.T) {
	ctx := context.Background()
	l := NewLocator(NewLocalFS("specs", shardedFS()))

	tests := []struct {
		name     string
		query    string
		regex    bool
		want     string
		wantCode perrors.Code
	}{
		{"single match", "alamo", false, "Alamofire", ""},
		{"exact match wins", "Firebase", false, "Firebase", ""},
		{"ambiguous", "Fire", false, "", perrors.ErrCodeAmbiguousPod},
		{"not found", "Realm", false, "", perrors.ErrCodePodNotFound},
		{"regex anchored", "^Firebase$", true, "Firebase", ""},
		{"regex is literal without flag", "^Firebase$", false, "", perrors.ErrCodePodNotFound},
		{"invalid regex", "(", true, "", perrors.ErrCodeInvalidPattern},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := l.Search(ctx, tt.query, tt.regex)
			if tt.wantCode != "" {
				if perrors.GetCode(err) != tt.wantCode {
					t.Fatalf("Search(%q) err = %v, want code %s", tt.query, err, tt.wantCode)
				}
				return
			}
			if err != nil {
				t.Fatalf("Search(%q) error: %v", tt.query, err)
			}
			if got != tt.want {
				t.Errorf("Search(%q) = %q, want %q", tt.query, got, tt.want)
			}
		})
	}
}

func TestLocatorAmbiguousMessage(t *testing.T) {
	l := NewLocator(NewLocalFS("specs", shardedFS()))
	_, err := l.Search(context.Background(), "Fire", false)
	// The search is unanchored, so Alamofire matches too.
	want := "More than one spec found for 'Fire':\nAlamofire\nFirebase\nFirebaseCore"
	if msg := perrors.UserMessage(err); msg != want {
		t.Errorf("message = %q, want %q", msg, want)
	}
}

func TestLocatorChooser(t *testing.T) {
	ctx := context.Background()
	var offered []string
	l := &Locator{
		Source: NewLocalFS("specs", shardedFS()),
		Chooser: func(_ context.Context, _ string, matches []string) (string, error) {
			offered = matches
			return matches[len(matches)-1], nil
		},
	}

	got, err := l.Search(ctx, "Fire", false)
	if err != nil {
		t.Fatal(err)
	}
	if got != "FirebaseCore" || !slices.Equal(offered, []string{"Alamofire", "Firebase", "FirebaseCore"}) {
		t.Errorf("Search = %q, offered %v", got, offered)
	}

	l.Chooser = func(context.Context, string, []string) (string, error) { return "", nil }
	if _, err := l.Search(ctx, "Fire", false); perrors.GetCode(err) != perrors.ErrCodeAmbiguousPod {
		t.Errorf("declined choice should stay ambiguous, got %v", err)
	}
}

func TestLocatorLocate(t *testing.T) {
	ctx := context.Background()
	l := NewLocator(NewLocalFS("specs", flatFS()))

	s, err := l.Locate(ctx, "Firebase", false, "2.0.0")
	if err != nil {
		t.Fatalf("Locate: %v", err)
	}
	if s.Version != "2.0" {
		t.Errorf("Locate(2.0.0) version = %q, want published spelling 2.0", s.Version)
	}

	if _, err := l.Locate(ctx, "Firebase", false, "1.0.0-beta1"); perrors.GetCode(err) != perrors.ErrCodeVersionNotFound {
		t.Errorf("missing version err = %v", err)
	}
	if _, err := l.Locate(ctx, "Firebase", false, "latest"); perrors.GetCode(err) != perrors.ErrCodeInvalidVersion {
		t.Errorf("malformed version err = %v", err)
	}
}

func TestCDNSource(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/all_pods.txt":
			w.Write([]byte("Firebase\nFirebaseCore\n"))
		case "/all_pods_versions_0_3_5.txt":
			w.Write([]byte("Firebase/9.6.0/10.0.0\n"))
		case "/Specs/0/3/5/Firebase/10.0.0/Firebase.podspec.json":
			w.Write([]byte(`{"name": "Firebase", "version": "10.0.0"}`))
		case "/Specs/0/3/5/Firebase/9.6.0/Firebase.podspec.json":
			w.Write([]byte(`{"version": "9.6.0"}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	src := NewCDN(trunk.NewClient(nil, time.Hour, server.URL), false)
	if !strings.HasPrefix(src.Name(), "http://") {
		t.Errorf("Name() = %q", src.Name())
	}

	l := NewLocator(src)
	s, err := l.Locate(context.Background(), "firebase", false, "10.0.0")
	if err == nil {
		t.Fatalf("lowercase query matches two pods without an exact match, got %s", s.Name)
	}
	if perrors.GetCode(err) != perrors.ErrCodeAmbiguousPod {
		t.Errorf("code = %v", perrors.GetCode(err))
	}

	s, err = l.Locate(context.Background(), "Firebase", false, "10.0.0")
	if err != nil {
		t.Fatalf("Locate: %v", err)
	}
	if s.Version != "10.0.0" {
		t.Errorf("version = %q", s.Version)
	}

	if _, err := src.Podspec(context.Background(), "Firebase", "9.6.0"); perrors.GetCode(err) != perrors.ErrCodeLookup {
		t.Errorf("invalid podspec code = %v", perrors.GetCode(err))
	}
	if _, err := src.Versions(context.Background(), "FirebaseCore"); perrors.GetCode(err) != perrors.ErrCodePodNotFound {
		t.Errorf("missing shard code = %v", perrors.GetCode(err))
	}
}
