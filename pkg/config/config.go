// Package config loads linkgraph settings from a TOML file and the environment.
//
// Precedence, lowest first: [Default], the config file, LINKGRAPH_*
// environment variables, command-line flags (applied by the CLI).
//
//	[store]
//	driver = "sqlite"          # sqlite | badger | mongo | memory
//	path = "/var/lib/linkgraph/linkage.db"
//
//	[cache]
//	driver = "file"            # file | redis | none
//	ttl = "24h"
//
//	[log]
//	level = "info"
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	lgerrors "github.com/matzehuels/linkgraph/pkg/errors"
)

const appName = "linkgraph"

// Store drivers.
const (
	StoreSQLite = "sqlite"
	StoreBadger = "badger"
	StoreMongo  = "mongo"
	StoreMemory = "memory"
)

// Cache drivers.
const (
	CacheFile  = "file"
	CacheRedis = "redis"
	CacheNone  = "none"
)

// Config is the top-level linkgraph configuration.
type Config struct {
	Store StoreConfig `toml:"store"`
	Cache CacheConfig `toml:"cache"`
	Log   LogConfig   `toml:"log"`
}

// StoreConfig selects and locates the linkage store.
type StoreConfig struct {
	Driver string `toml:"driver"`
	// Path is the database file (sqlite) or directory (badger).
	Path string `toml:"path"`

	// URI, Database and Collection locate a mongo store.
	URI        string `toml:"uri"`
	Database   string `toml:"database"`
	Collection string `toml:"collection"`
}

// CacheConfig selects the query result cache.
type CacheConfig struct {
	Driver    string   `toml:"driver"`
	Dir       string   `toml:"dir"`
	RedisAddr string   `toml:"redis_addr"`
	TTL       Duration `toml:"ttl"`
}

// LogConfig sets the default log level.
type LogConfig struct {
	Level string `toml:"level"`
}

// Duration is a time.Duration written as a string such as "36h" in TOML.
type Duration struct {
	time.Duration
}

// UnmarshalText parses a Go duration string.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText formats the duration as a Go duration string.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Default returns the configuration used when no file or environment
// overrides are present: a sqlite store under the data dir and a file cache.
func Default() Config {
	return Config{
		Store: StoreConfig{
			Driver:     StoreSQLite,
			Path:       filepath.Join(DataDir(), "linkage.db"),
			Database:   appName,
			Collection: "edges",
		},
		Cache: CacheConfig{
			Driver:    CacheFile,
			Dir:       CacheDir(),
			RedisAddr: "localhost:6379",
			TTL:       Duration{24 * time.Hour},
		},
		Log: LogConfig{Level: "info"},
	}
}

// Load reads the configuration at path on top of [Default] and applies
// environment overrides.
//
// An empty path loads [Path] if it exists. An explicit path that does not
// exist is an error.
func Load(path string) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = Path()
	}
	if err := cfg.loadFile(path, explicit); err != nil {
		return Config{}, err
	}

	cfg.ApplyEnv(os.Getenv)

	if errs := cfg.Validate(); len(errs) > 0 {
		return Config{}, lgerrors.Wrap(lgerrors.ErrCodeInvalidInput, errors.Join(errs...), "invalid config")
	}
	return cfg, nil
}

func (c *Config) loadFile(path string, explicit bool) error {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) && !explicit {
			return nil
		}
		if os.IsNotExist(err) {
			return lgerrors.Wrap(lgerrors.ErrCodeFileNotFound, err, "config file %s", path)
		}
		return fmt.Errorf("stat %s: %w", path, err)
	}

	md, err := toml.DecodeFile(path, c)
	if err != nil {
		return lgerrors.Wrap(lgerrors.ErrCodeInvalidInput, err, "parse config %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return lgerrors.New(lgerrors.ErrCodeInvalidInput, "unknown config keys in %s: %s", path, strings.Join(keys, ", "))
	}
	return nil
}

// ApplyEnv overrides fields from LINKGRAPH_* variables looked up with getenv.
func (c *Config) ApplyEnv(getenv func(string) string) {
	set := func(dst *string, key string) {
		if v := getenv(key); v != "" {
			*dst = v
		}
	}
	set(&c.Store.Driver, "LINKGRAPH_STORE_DRIVER")
	set(&c.Store.Path, "LINKGRAPH_STORE_PATH")
	set(&c.Store.URI, "LINKGRAPH_STORE_URI")
	set(&c.Cache.Driver, "LINKGRAPH_CACHE_DRIVER")
	set(&c.Cache.RedisAddr, "LINKGRAPH_REDIS_ADDR")
	set(&c.Log.Level, "LINKGRAPH_LOG_LEVEL")
}

// Validate checks the configuration for logical errors.
// It collects all issues rather than stopping at the first one.
func (c *Config) Validate() []error {
	var errs []error

	if err := lgerrors.ValidateDriver("store", c.Store.Driver, StoreSQLite, StoreBadger, StoreMongo, StoreMemory); err != nil {
		errs = append(errs, err)
	}
	switch c.Store.Driver {
	case StoreSQLite, StoreBadger:
		if err := lgerrors.ValidatePath(c.Store.Path); err != nil {
			errs = append(errs, fmt.Errorf("store.path: %w", err))
		}
	case StoreMongo:
		if c.Store.URI == "" {
			errs = append(errs, lgerrors.New(lgerrors.ErrCodeInvalidInput, "store.uri is required for the mongo driver"))
		}
		if c.Store.Database == "" || c.Store.Collection == "" {
			errs = append(errs, lgerrors.New(lgerrors.ErrCodeInvalidInput, "store.database and store.collection are required for the mongo driver"))
		}
	}

	if err := lgerrors.ValidateDriver("cache", c.Cache.Driver, CacheFile, CacheRedis, CacheNone); err != nil {
		errs = append(errs, err)
	}
	switch c.Cache.Driver {
	case CacheFile:
		if err := lgerrors.ValidatePath(c.Cache.Dir); err != nil {
			errs = append(errs, fmt.Errorf("cache.dir: %w", err))
		}
	case CacheRedis:
		if c.Cache.RedisAddr == "" {
			errs = append(errs, lgerrors.New(lgerrors.ErrCodeInvalidInput, "cache.redis_addr is required for the redis driver"))
		}
	}
	if c.Cache.TTL.Duration < 0 {
		errs = append(errs, lgerrors.New(lgerrors.ErrCodeInvalidInput, "cache.ttl must not be negative"))
	}

	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, lgerrors.New(lgerrors.ErrCodeInvalidInput, "log.level must be one of debug, info, warn, error; got %q", c.Log.Level))
	}

	return errs
}

// =============================================================================
// Paths
// =============================================================================

// Path returns the default config file location.
func Path() string {
	return filepath.Join(xdgDir("XDG_CONFIG_HOME", ".config"), "config.toml")
}

// DataDir returns the directory for persistent stores.
func DataDir() string {
	return xdgDir("XDG_DATA_HOME", filepath.Join(".local", "share"))
}

// CacheDir returns the directory for the file cache.
func CacheDir() string {
	return xdgDir("XDG_CACHE_HOME", ".cache")
}

// xdgDir resolves $env/linkgraph, falling back to ~/fallback/linkgraph and
// finally to a directory under the system temp dir.
func xdgDir(env, fallback string) string {
	if base := os.Getenv(env); base != "" {
		return filepath.Join(base, appName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), appName)
	}
	return filepath.Join(home, fallback, appName)
}
