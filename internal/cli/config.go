package cli

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/poddiff/pkg/cache"
	"github.com/matzehuels/poddiff/pkg/deps"
	perrors "github.com/matzehuels/poddiff/pkg/errors"
	"github.com/matzehuels/poddiff/pkg/integrations/trunk"
	"github.com/matzehuels/poddiff/pkg/source"
)

// Source kinds.
const (
	sourceCDN   = "cdn"
	sourceLocal = "local"
)

// Cache backends.
const (
	backendFile  = "file"
	backendNone  = "none"
	backendRedis = "redis"
	backendMongo = "mongo"
)

const (
	defaultCacheTTL = 24 * time.Hour
	defaultAddr     = "127.0.0.1:8080"
)

// Config is the content of config.toml. Flags override it.
type Config struct {
	Source  SourceConfig  `toml:"source"`
	Cache   CacheConfig   `toml:"cache"`
	Resolve ResolveConfig `toml:"resolve"`
	Output  OutputConfig  `toml:"output"`
	Server  ServerConfig  `toml:"server"`
}

// SourceConfig selects where podspecs come from.
type SourceConfig struct {
	Kind string `toml:"kind"` // "cdn" or "local"
	URL  string `toml:"url"`  // CDN root
	Path string `toml:"path"` // Specs repository checkout
}

// CacheConfig selects the response cache backend.
type CacheConfig struct {
	Backend         string   `toml:"backend"`
	TTL             duration `toml:"ttl"`
	Dir             string   `toml:"dir"`
	RedisURL        string   `toml:"redis_url"`
	RedisPrefix     string   `toml:"redis_prefix"`
	MongoURI        string   `toml:"mongo_uri"`
	MongoDatabase   string   `toml:"mongo_database"`
	MongoCollection string   `toml:"mongo_collection"`
}

// ResolveConfig tunes dependency resolution.
type ResolveConfig struct {
	MaxDepth    int  `toml:"max_depth"`
	Workers     int  `toml:"workers"`
	FullClosure bool `toml:"full_closure"`
}

// OutputConfig tunes console output.
type OutputConfig struct {
	Pretty bool `toml:"pretty"`
	Width  int  `toml:"width"`
}

// ServerConfig configures `poddiff serve`.
type ServerConfig struct {
	Addr string `toml:"addr"`
}

// duration decodes TOML strings such as "12h" or "30m".
type duration struct {
	time.Duration
}

func (d *duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", text, err)
	}
	d.Duration = v
	return nil
}

func (d duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func defaultConfig() Config {
	return Config{
		Source: SourceConfig{Kind: sourceCDN, URL: trunk.DefaultBaseURL},
		Cache: CacheConfig{
			Backend:         backendFile,
			TTL:             duration{defaultCacheTTL},
			RedisPrefix:     appName + ":",
			MongoDatabase:   appName,
			MongoCollection: "cache",
		},
		Resolve: ResolveConfig{MaxDepth: deps.DefaultMaxDepth, Workers: deps.DefaultWorkers},
		Output:  OutputConfig{Width: 100},
		Server:  ServerConfig{Addr: defaultAddr},
	}
}

// configPath returns the default config file location using the XDG
// standard (~/.config/poddiff/config.toml).
func configPath() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, appName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName, "config.toml"), nil
}

// loadConfig reads path on top of the defaults. A missing file is only an
// error when the path was given explicitly. Unknown keys are returned so the
// caller can warn about them.
func loadConfig(path string, explicit bool) (Config, []string, error) {
	cfg := defaultConfig()
	md, err := toml.DecodeFile(path, &cfg)
	if errors.Is(err, fs.ErrNotExist) && !explicit {
		return defaultConfig(), nil, nil
	}
	if err != nil {
		return Config{}, nil, perrors.Wrap(perrors.ErrCodeInvalidPath, err, "read config %s: %v", path, err)
	}
	var unknown []string
	for _, k := range md.Undecoded() {
		unknown = append(unknown, k.String())
	}
	if err := cfg.validate(); err != nil {
		return Config{}, nil, err
	}
	return cfg, unknown, nil
}

func (c Config) validate() error {
	if !slices.Contains([]string{sourceCDN, sourceLocal}, c.Source.Kind) {
		return perrors.New(perrors.ErrCodeInvalidInput, "config: unknown source kind %q (use cdn or local)", c.Source.Kind)
	}
	if c.Source.Kind == sourceLocal && c.Source.Path == "" {
		return perrors.New(perrors.ErrCodeInvalidInput, "config: source.path is required for a local source")
	}
	switch c.Cache.Backend {
	case backendFile, backendNone:
	case backendRedis:
		if c.Cache.RedisURL == "" {
			return perrors.New(perrors.ErrCodeInvalidInput, "config: cache.redis_url is required for the redis backend")
		}
	case backendMongo:
		if c.Cache.MongoURI == "" {
			return perrors.New(perrors.ErrCodeInvalidInput, "config: cache.mongo_uri is required for the mongo backend")
		}
	default:
		return perrors.New(perrors.ErrCodeInvalidInput, "config: unknown cache backend %q", c.Cache.Backend)
	}
	if c.Resolve.MaxDepth < 0 || c.Resolve.Workers < 0 {
		return perrors.New(perrors.ErrCodeInvalidInput, "config: resolve.max_depth and resolve.workers must not be negative")
	}
	return nil
}

// cacheDir returns the file cache directory: the configured one, or
// ~/.cache/poddiff.
func (c Config) cacheDir() (string, error) {
	if c.Cache.Dir != "" {
		return c.Cache.Dir, nil
	}
	return cache.DefaultDir()
}

// openCache connects the configured cache backend. With noCache, or the
// "none" backend, responses are not cached.
func (c Config) openCache(ctx context.Context, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	switch c.Cache.Backend {
	case backendRedis:
		return cache.NewRedisCache(ctx, c.Cache.RedisURL, c.Cache.RedisPrefix)
	case backendMongo:
		return cache.NewMongoCache(ctx, c.Cache.MongoURI, c.Cache.MongoDatabase, c.Cache.MongoCollection)
	case backendNone:
		return cache.NewNullCache(), nil
	}
	dir, err := c.cacheDir()
	if err != nil {
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(dir)
}

// openSource returns the podspec source. override is the --source flag:
// "cdn", a CDN URL, or a specs repository directory.
func (c Config) openSource(backend cache.Cache, override string, refresh bool) (source.Source, error) {
	kind, url, path := c.Source.Kind, c.Source.URL, c.Source.Path
	switch {
	case override == sourceCDN:
		kind, url = sourceCDN, trunk.DefaultBaseURL
	case strings.HasPrefix(override, "http://") || strings.HasPrefix(override, "https://"):
		kind, url = sourceCDN, override
	case override != "":
		kind, path = sourceLocal, override
	}
	if kind == sourceLocal {
		return source.NewLocal(path)
	}
	return source.NewCDN(trunk.NewClient(backend, c.Cache.TTL.Duration, url), refresh), nil
}
