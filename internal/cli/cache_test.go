package cli

import (
	"bytes"
	"context"
	"io/fs"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/matzehuels/poddiff/pkg/cache"
)

func countEntries(t *testing.T, dir string) int {
	t.Helper()
	n := 0
	err := filepath.WalkDir(dir, func(_ string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			n++
		}
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	return n
}

func TestCachePathCommand(t *testing.T) {
	c, stdout := newTestCLI(t)
	c.Config.Cache.Backend = backendFile
	c.Config.Cache.Dir = filepath.Join(t.TempDir(), "cache")

	cmd := c.cachePathCommand()
	if err := cmd.RunE(cmd, nil); err != nil {
		t.Fatalf("cache path error: %v", err)
	}
	if got := strings.TrimSpace(stdout.String()); got != c.Config.Cache.Dir {
		t.Errorf("cache path = %q, want %q", got, c.Config.Cache.Dir)
	}
}

func TestCacheClearCommand(t *testing.T) {
	c, _ := newTestCLI(t)
	c.Config.Cache.Backend = backendFile
	c.Config.Cache.Dir = t.TempDir()

	fc, err := cache.NewFileCache(c.Config.Cache.Dir)
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	for _, key := range []string{"a", "b", "c"} {
		if err := fc.Set(ctx, key, []byte("{}"), time.Hour); err != nil {
			t.Fatal(err)
		}
	}
	if n := countEntries(t, c.Config.Cache.Dir); n != 3 {
		t.Fatalf("entries before clear = %d, want 3", n)
	}

	var status bytes.Buffer
	statusOut = &status
	cmd := c.cacheClearCommand()
	cmd.SetContext(ctx)
	if err := cmd.RunE(cmd, nil); err != nil {
		t.Fatalf("cache clear error: %v", err)
	}
	if n := countEntries(t, c.Config.Cache.Dir); n != 0 {
		t.Errorf("entries after clear = %d, want 0", n)
	}
	if !strings.Contains(status.String(), "Cleared file cache") {
		t.Errorf("status = %q", status.String())
	}
}
