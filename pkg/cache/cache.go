// Package cache stores serialized query results keyed by store revision.
//
// Results are cached as opaque bytes. Keys are derived by a [Keyer] from the
// query origin, the revision token of the store and the options that change
// the output, so a write to the store makes earlier entries unreachable
// without an explicit invalidation.
//
// Backends:
//   - [FileCache]: one JSON file per entry under a directory, for the CLI
//   - [RedisCache]: shared cache for several processes over one store
//   - [NullCache]: never stores anything
package cache

import (
	"context"
	"time"
)

// Default lifetimes of cached values.
const (
	// TTLThread bounds resolved threads. Keys already change with the store
	// revision; the TTL only limits disk and memory use.
	TTLThread = 24 * time.Hour

	// TTLArtifact bounds rendered diagrams (ASCII, DOT, SVG).
	TTLArtifact = 7 * 24 * time.Hour
)

// Cache is a byte-oriented key/value store with expiry.
//
// Get reports a miss with ok == false and a nil error. A ttl of zero stores
// the value without expiry.
type Cache interface {
	Get(ctx context.Context, key string) (data []byte, ok bool, err error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}
