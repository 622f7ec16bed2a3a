package cli

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"testing"
	"time"

	"github.com/matzehuels/poddiff/pkg/cache"
	perrors "github.com/matzehuels/poddiff/pkg/errors"
	"github.com/matzehuels/poddiff/pkg/integrations/trunk"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestConfigPath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")
	path, err := configPath()
	if err != nil {
		t.Fatalf("configPath() error: %v", err)
	}
	if want := filepath.Join("/tmp/xdg", "poddiff", "config.toml"); path != want {
		t.Errorf("configPath() = %q, want %q", path, want)
	}
}

func TestLoadConfigMissing(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nope.toml")

	cfg, unknown, err := loadConfig(missing, false)
	if err != nil {
		t.Fatalf("loadConfig() error: %v", err)
	}
	if cfg != defaultConfig() || unknown != nil {
		t.Errorf("missing default config should yield defaults, got %+v", cfg)
	}

	if _, _, err := loadConfig(missing, true); !perrors.Is(err, perrors.ErrCodeInvalidPath) {
		t.Errorf("loadConfig(explicit missing) error = %v, want INVALID_PATH", err)
	}
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `
[source]
kind = "local"
path = "/srv/specs"

[cache]
backend = "redis"
ttl = "30m"
redis_url = "redis://localhost:6379/0"

[resolve]
max_depth = 3
full_closure = true

[output]
pretty = true
colour = "blue"
`)
	cfg, unknown, err := loadConfig(path, true)
	if err != nil {
		t.Fatalf("loadConfig() error: %v", err)
	}
	if cfg.Source.Kind != sourceLocal || cfg.Source.Path != "/srv/specs" {
		t.Errorf("Source = %+v", cfg.Source)
	}
	if cfg.Cache.Backend != backendRedis || cfg.Cache.TTL.Duration != 30*time.Minute {
		t.Errorf("Cache = %+v", cfg.Cache)
	}
	if cfg.Resolve.MaxDepth != 3 || !cfg.Resolve.FullClosure {
		t.Errorf("Resolve = %+v", cfg.Resolve)
	}
	// Unset keys keep their defaults.
	if cfg.Resolve.Workers != defaultConfig().Resolve.Workers || cfg.Server.Addr != defaultAddr {
		t.Errorf("defaults lost: %+v", cfg)
	}
	if !slices.Equal(unknown, []string{"output.colour"}) {
		t.Errorf("unknown = %v", unknown)
	}
}

func TestLoadConfigInvalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"bad toml", "[source\n"},
		{"bad duration", "[cache]\nttl = \"soon\"\n"},
		{"unknown source", "[source]\nkind = \"git\"\n"},
		{"local without path", "[source]\nkind = \"local\"\n"},
		{"unknown backend", "[cache]\nbackend = \"memcached\"\n"},
		{"redis without url", "[cache]\nbackend = \"redis\"\n"},
		{"mongo without uri", "[cache]\nbackend = \"mongo\"\n"},
		{"negative workers", "[resolve]\nworkers = -1\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, _, err := loadConfig(writeConfig(t, tt.content), true); err == nil {
				t.Error("loadConfig() should fail")
			}
		})
	}
}

func TestOpenCache(t *testing.T) {
	cfg := defaultConfig()
	cfg.Cache.Dir = t.TempDir()

	c, err := cfg.openCache(context.Background(), false)
	if err != nil {
		t.Fatal(err)
	}
	fc, ok := c.(*cache.FileCache)
	if !ok || fc.Dir() != cfg.Cache.Dir {
		t.Errorf("openCache() = %T, want a file cache in %s", c, cfg.Cache.Dir)
	}

	for _, tc := range []struct {
		name    string
		backend string
		noCache bool
	}{{"no-cache flag", backendFile, true}, {"none backend", backendNone, false}} {
		cfg.Cache.Backend = tc.backend
		c, err := cfg.openCache(context.Background(), tc.noCache)
		if err != nil {
			t.Fatal(err)
		}
		if _, ok := c.(*cache.NullCache); !ok {
			t.Errorf("%s: openCache() = %T, want NullCache", tc.name, c)
		}
	}
}

func TestOpenSource(t *testing.T) {
	cfg := defaultConfig()
	specs := t.TempDir()

	tests := []struct {
		name     string
		override string
		want     string
	}{
		{"config default", "", trunk.DefaultBaseURL},
		{"cdn keyword", "cdn", trunk.DefaultBaseURL},
		{"cdn url", "https://mirror.example.com", "https://mirror.example.com"},
		{"directory", specs, specs},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src, err := cfg.openSource(cache.NewNullCache(), tt.override, false)
			if err != nil {
				t.Fatalf("openSource() error: %v", err)
			}
			if src.Name() != tt.want {
				t.Errorf("Name() = %q, want %q", src.Name(), tt.want)
			}
		})
	}

	if _, err := cfg.openSource(cache.NewNullCache(), filepath.Join(specs, "missing"), false); err == nil {
		t.Error("openSource() should fail for a missing directory")
	}
}
