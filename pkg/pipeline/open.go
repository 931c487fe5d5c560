package pipeline

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/linkgraph/pkg/cache"
	"github.com/matzehuels/linkgraph/pkg/config"
	"github.com/matzehuels/linkgraph/pkg/errors"
	"github.com/matzehuels/linkgraph/pkg/linkage"
	"github.com/matzehuels/linkgraph/pkg/linkage/badger"
	"github.com/matzehuels/linkgraph/pkg/linkage/mongo"
	"github.com/matzehuels/linkgraph/pkg/linkage/sqlite"
)

// Backend is an opened linkage store.
type Backend interface {
	linkage.ReadWriter
	linkage.Revisioner
	linkage.Dumper
	io.Closer
	Driver() string
}

// memBackend is a process-local store. It reports no revision, so its
// threads are never cached: a fresh process starts from an empty store and
// a shared cache would serve results for edges it no longer has.
type memBackend struct {
	*linkage.MemStore
}

func (memBackend) Revision(context.Context) (string, error) { return "", nil }
func (memBackend) Close() error                              { return nil }
func (memBackend) Driver() string                            { return config.StoreMemory }

// OpenStore opens the store described by cfg.
func OpenStore(ctx context.Context, cfg config.StoreConfig, logger *log.Logger) (Backend, error) {
	switch cfg.Driver {
	case config.StoreSQLite:
		if cfg.Path != ":memory:" {
			if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o750); err != nil {
				return nil, errors.Wrap(errors.ErrCodeStore, err, "create store directory")
			}
		}
		s, err := sqlite.Open(cfg.Path)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeStore, err, "open sqlite store %s", cfg.Path)
		}
		return s, nil
	case config.StoreBadger:
		s, err := badger.Open(badger.Config{Path: cfg.Path, Logger: logger})
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeStore, err, "open badger store %s", cfg.Path)
		}
		return s, nil
	case config.StoreMongo:
		s, err := mongo.Open(ctx, mongo.Config{
			URI:        cfg.URI,
			Database:   cfg.Database,
			Collection: cfg.Collection,
		})
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeStore, err, "open mongo store %s/%s", cfg.Database, cfg.Collection)
		}
		return s, nil
	case config.StoreMemory:
		return memBackend{linkage.NewMemStore()}, nil
	}
	return nil, errors.ValidateDriver("store", cfg.Driver,
		config.StoreSQLite, config.StoreBadger, config.StoreMongo, config.StoreMemory)
}

// OpenCache opens the cache described by cfg. Redis keys are prefixed with
// the application name so the database can be shared.
func OpenCache(ctx context.Context, cfg config.CacheConfig) (cache.Cache, error) {
	switch cfg.Driver {
	case config.CacheFile:
		c, err := cache.NewFileCache(cfg.Dir)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeCache, err, "open file cache %s", cfg.Dir)
		}
		return c, nil
	case config.CacheRedis:
		c, err := cache.NewRedisCache(ctx, cache.RedisConfig{Addr: cfg.RedisAddr, Prefix: "linkgraph:"})
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeCache, err, "open redis cache")
		}
		return c, nil
	case config.CacheNone:
		return cache.NewNullCache(), nil
	}
	return nil, errors.ValidateDriver("cache", cfg.Driver,
		config.CacheFile, config.CacheRedis, config.CacheNone)
}

// StoreScope returns a cache key prefix unique to the store in cfg, so
// stores sharing one cache never see each other's threads.
func StoreScope(cfg config.StoreConfig) string {
	switch cfg.Driver {
	case config.StoreMongo:
		return cfg.Driver + ":" + cache.Hash([]byte(cfg.URI+"/"+cfg.Database+"/"+cfg.Collection))[:16] + ":"
	default:
		return cfg.Driver + ":" + cache.Hash([]byte(cfg.Path))[:16] + ":"
	}
}

// NewKeyer returns the keyer for the store in cfg.
func NewKeyer(cfg config.StoreConfig) cache.Keyer {
	return cache.NewScopedKeyer(cache.NewDefaultKeyer(), StoreScope(cfg))
}

var (
	_ Backend = (*sqlite.Store)(nil)
	_ Backend = (*badger.Store)(nil)
	_ Backend = (*mongo.Store)(nil)
	_ Backend = memBackend{}
)
