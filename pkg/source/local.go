package source

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path"
	"slices"

	perrors "github.com/matzehuels/poddiff/pkg/errors"
	"github.com/matzehuels/poddiff/pkg/integrations/trunk"
	"github.com/matzehuels/poddiff/pkg/podspec"
)

// Local reads pods from a specs repository checkout. Both the sharded
// layout of the master repo (Specs/0/3/5/Firebase/10.0.0/Firebase.podspec.json)
// and a flat layout (Firebase/10.0.0/Firebase.podspec.json, optionally under
// Specs/) are supported.
type Local struct {
	name    string
	fsys    fs.FS
	base    string
	sharded bool
}

// NewLocal opens the specs repository rooted at dir.
func NewLocal(dir string) (*Local, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, perrors.Wrap(perrors.ErrCodeInvalidPath, err, "open specs repo %s", dir)
	}
	if !info.IsDir() {
		return nil, perrors.New(perrors.ErrCodeInvalidPath, "specs repo %s is not a directory", dir)
	}
	return NewLocalFS(dir, os.DirFS(dir)), nil
}

// NewLocalFS uses fsys as the specs repository; name is used in messages.
func NewLocalFS(name string, fsys fs.FS) *Local {
	l := &Local{name: name, fsys: fsys, base: "."}
	if info, err := fs.Stat(fsys, "Specs"); err == nil && info.IsDir() {
		l.base = "Specs"
	}
	l.sharded = isShardDir(fsys, l.base)
	return l
}

// isShardDir reports whether dir contains only single hex digit directories.
func isShardDir(fsys fs.FS, dir string) bool {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return false
	}
	found := false
	for _, e := range entries {
		if !e.IsDir() || len(e.Name()) > 0 && e.Name()[0] == '.' {
			continue
		}
		if len(e.Name()) != 1 || !isHex(e.Name()[0]) {
			return false
		}
		found = true
	}
	return found
}

func isHex(c byte) bool {
	return '0' <= c && c <= '9' || 'a' <= c && c <= 'f'
}

// Name implements Source.
func (l *Local) Name() string { return l.name }

func (l *Local) podDir(pod string) string {
	if l.sharded {
		return path.Join(append(append([]string{l.base}, trunk.Shard(pod)...), pod)...)
	}
	return path.Join(l.base, pod)
}

// Pods implements Source.
func (l *Local) Pods(context.Context) ([]string, error) {
	pattern := path.Join(l.base, "*")
	if l.sharded {
		pattern = path.Join(l.base, "*", "*", "*", "*")
	}
	matches, err := fs.Glob(l.fsys, pattern)
	if err != nil {
		return nil, perrors.Wrap(perrors.ErrCodeInternal, err, "list pods in %s", l.name)
	}
	var pods []string
	for _, m := range matches {
		name := path.Base(m)
		if name[0] == '.' || l.base == "." && name == "Specs" {
			continue
		}
		if info, err := fs.Stat(l.fsys, m); err == nil && info.IsDir() {
			pods = append(pods, name)
		}
	}
	slices.Sort(pods)
	return pods, nil
}

// Versions implements Source.
func (l *Local) Versions(_ context.Context, pod string) ([]string, error) {
	entries, err := fs.ReadDir(l.fsys, l.podDir(pod))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, perrors.Wrap(perrors.ErrCodePodNotFound, err, "Unable to find a pod with name `%s`", pod)
	}
	if err != nil {
		return nil, perrors.Wrap(perrors.ErrCodeInternal, err, "list versions of %s", pod)
	}
	var versions []string
	for _, e := range entries {
		if e.IsDir() && e.Name()[0] != '.' {
			versions = append(versions, e.Name())
		}
	}
	return SortVersions(versions), nil
}

// Podspec implements Source.
func (l *Local) Podspec(_ context.Context, pod, version string) (*podspec.Spec, error) {
	dir := path.Join(l.podDir(pod), version)
	data, err := fs.ReadFile(l.fsys, path.Join(dir, pod+".podspec.json"))
	if errors.Is(err, fs.ErrNotExist) {
		if _, rubyErr := fs.Stat(l.fsys, path.Join(dir, pod+".podspec")); rubyErr == nil {
			return nil, perrors.New(perrors.ErrCodeUnsupported,
				"%s (%s) is only available as a Ruby podspec; convert it with `pod ipc spec`", pod, version)
		}
		return nil, perrors.Wrap(perrors.ErrCodeVersionNotFound, err, "Unable to find a specification for `%s (%s)`", pod, version)
	}
	if err != nil {
		return nil, perrors.Wrap(perrors.ErrCodeInternal, err, "read podspec %s (%s)", pod, version)
	}
	spec, err := podspec.Parse(data)
	if err != nil {
		return nil, perrors.Wrap(perrors.ErrCodeLookup, err, "invalid podspec %s (%s)", pod, version)
	}
	return spec, nil
}

var _ Source = (*Local)(nil)
