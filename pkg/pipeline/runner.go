package pipeline

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/linkgraph/pkg/cache"
	"github.com/matzehuels/linkgraph/pkg/docgraph"
	"github.com/matzehuels/linkgraph/pkg/errors"
	"github.com/matzehuels/linkgraph/pkg/graph"
	"github.com/matzehuels/linkgraph/pkg/linkage"
	"github.com/matzehuels/linkgraph/pkg/observability"
)

// Runner executes thread queries with caching.
//
// The Runner keeps no per-query state; every call builds a fresh
// [docgraph.Graph]. Multiple goroutines can share a Runner as long as the
// store and cache are safe for concurrent use.
type Runner struct {
	Store  linkage.Store
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger

	// ThreadTTL and ArtifactTTL bound how long results are cached.
	ThreadTTL   time.Duration
	ArtifactTTL time.Duration

	store *observedStore
}

// NewRunner creates a runner over store.
// If c is nil, a NullCache is used (caching disabled).
// If keyer is nil, a DefaultKeyer is used.
func NewRunner(store linkage.Store, c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if c == nil {
		c = cache.NewNullCache()
	}
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Store:       store,
		Cache:       c,
		Keyer:       keyer,
		Logger:      logger,
		ThreadTTL:   cache.TTLThread,
		ArtifactTTL: cache.TTLArtifact,
		store:       observe(store, driverName(store)),
	}
}

// Execute resolves the thread around opts.Origin and renders every
// requested format.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	r.applyLogger(&opts)

	result := &Result{QueryID: uuid.NewString()}
	logger := opts.Logger.With("query", result.QueryID[:8])

	crawlStart := time.Now()
	t, hit, err := r.ThreadWithCacheInfo(ctx, opts)
	if err != nil {
		return nil, err
	}
	result.Thread = t
	result.Stats.CrawlTime = time.Since(crawlStart)
	result.Stats.NodeCount = len(t.Nodes)
	result.Stats.EdgeCount = len(t.Edges)
	result.CacheInfo.ThreadHit = hit

	logger.Info("resolved thread",
		"origin", linkage.Sha(opts.Origin).Short(),
		"nodes", result.Stats.NodeCount,
		"edges", result.Stats.EdgeCount,
		"cached", hit,
		"duration", result.Stats.CrawlTime)

	renderStart := time.Now()
	artifacts, threadHash, renderHit, err := r.RenderWithCacheInfo(ctx, t, opts)
	if err != nil {
		return nil, err
	}
	result.Artifacts = artifacts
	result.ThreadHash = threadHash
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = renderHit

	logger.Info("rendered outputs",
		"formats", opts.Formats,
		"cached", renderHit,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// ThreadWithCacheInfo resolves the thread for opts and reports whether it
// came from the cache.
//
// Threads are only cached when the store reports a non-empty revision.
func (r *Runner) ThreadWithCacheInfo(ctx context.Context, opts Options) (graph.Thread, bool, error) {
	if err := opts.ValidateForResolve(); err != nil {
		return graph.Thread{}, false, err
	}
	r.applyLogger(&opts)

	revision, err := r.store.Revision(ctx)
	if err != nil {
		return graph.Thread{}, false, errors.Wrap(errors.ErrCodeStore, err, "read store revision")
	}

	var cacheKey string
	if revision != "" {
		cacheKey = r.Keyer.ThreadKey(opts.Origin, revision, opts.ThreadKeyOpts())
	}

	if cacheKey != "" && !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			if t, err := graph.UnmarshalThread(data); err == nil {
				observability.Cache().OnCacheHit(ctx, "thread")
				return t, true, nil
			}
			// Undecodable entries fall through and are overwritten.
		} else if err != nil {
			opts.Logger.Warn("cache read failed", "err", err)
		}
		observability.Cache().OnCacheMiss(ctx, "thread")
	}

	t, err := r.resolve(ctx, opts)
	if err != nil {
		return graph.Thread{}, false, err
	}

	if cacheKey != "" {
		if data, err := graph.MarshalThread(t); err == nil {
			if err := r.Cache.Set(ctx, cacheKey, data, r.ThreadTTL); err != nil {
				opts.Logger.Warn("cache write failed", "err", err)
			} else {
				observability.Cache().OnCacheSet(ctx, "thread", len(data))
			}
		}
	}
	return t, false, nil
}

// Thread is a convenience wrapper that discards the cache hit info.
func (r *Runner) Thread(ctx context.Context, opts Options) (graph.Thread, error) {
	t, _, err := r.ThreadWithCacheInfo(ctx, opts)
	return t, err
}

func (r *Runner) resolve(ctx context.Context, opts Options) (graph.Thread, error) {
	origin := opts.Origin
	observability.Query().OnCrawlStart(ctx, origin)
	start := time.Now()

	g, err := r.Graph(ctx, opts)
	var t graph.Thread
	if err == nil {
		t, err = graph.FromGraph(ctx, g)
	}
	if err != nil {
		err = mapError(err, origin)
	}

	observability.Query().OnCrawlComplete(ctx, origin, len(t.Nodes), time.Since(start), err)
	if err != nil {
		return graph.Thread{}, err
	}
	opts.Logger.Debug("crawled store",
		"origin", linkage.Sha(origin).Short(),
		"tails", len(t.Tails),
		"duration", time.Since(start))
	return t, nil
}

// Graph returns an uncached live graph for opts.Origin with the requested
// sort applied. Store reads go through the observed store.
func (r *Runner) Graph(ctx context.Context, opts Options) (*docgraph.Graph, error) {
	if err := opts.ValidateForResolve(); err != nil {
		return nil, err
	}
	g := docgraph.New(r.store, linkage.Sha(opts.Origin))
	if opts.Sort == SortSha {
		if err := g.Sort(ctx, func(a, b linkage.Sha) int { return strings.Compare(string(a), string(b)) }); err != nil {
			return nil, mapError(err, opts.Origin)
		}
	}
	return g, nil
}

// Node returns the node snapshot of sha in the thread around origin.
// It fails with [errors.ErrCodeNodeNotFound] when sha is not reachable.
func (r *Runner) Node(ctx context.Context, origin, sha string) (docgraph.Node, error) {
	if err := errors.ValidateSha(sha); err != nil {
		return docgraph.Node{}, err
	}
	g, err := r.Graph(ctx, Options{Origin: origin})
	if err != nil {
		return docgraph.Node{}, err
	}
	n, ok, err := g.Node(ctx, linkage.Sha(sha))
	if err != nil {
		return docgraph.Node{}, mapError(err, origin)
	}
	if !ok {
		return docgraph.Node{}, errors.New(errors.ErrCodeNodeNotFound,
			"%s is not reachable from %s", linkage.Sha(sha).Short(), linkage.Sha(origin).Short())
	}
	return n, nil
}

// RenderWithCacheInfo renders t in every requested format. It returns the
// artifacts, the content hash of t and whether every artifact was cached.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, t graph.Thread, opts Options) (map[string][]byte, string, bool, error) {
	if err := opts.ValidateForRender(); err != nil {
		return nil, "", false, err
	}
	r.applyLogger(&opts)

	data, err := graph.MarshalThread(t)
	if err != nil {
		return nil, "", false, fmt.Errorf("serialize thread for cache key: %w", err)
	}
	threadHash := cache.Hash(data)

	artifacts := make(map[string][]byte, len(opts.Formats))
	allCached := true
	for _, format := range opts.Formats {
		key := r.Keyer.ArtifactKey(threadHash, opts.ArtifactKeyOpts(format))
		if !opts.Refresh {
			if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
				observability.Cache().OnCacheHit(ctx, "artifact")
				artifacts[format] = data
				continue
			}
			observability.Cache().OnCacheMiss(ctx, "artifact")
		}
		allCached = false

		observability.Query().OnRenderStart(ctx, format)
		start := time.Now()
		out, err := RenderFormat(ctx, t, format, opts.Detailed)
		observability.Query().OnRenderComplete(ctx, format, time.Since(start), err)
		if err != nil {
			return nil, "", false, err
		}
		artifacts[format] = out

		if err := r.Cache.Set(ctx, key, out, r.ArtifactTTL); err != nil {
			opts.Logger.Warn("cache write failed", "format", format, "err", err)
		} else {
			observability.Cache().OnCacheSet(ctx, "artifact", len(out))
		}
	}
	return artifacts, threadHash, allCached, nil
}

// Close releases the cache. The store is owned by the caller.
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}

// mapError gives store failures a code. A circular linkage keeps its
// sentinel so callers can still match [docgraph.ErrCircularLinkage].
func mapError(err error, origin string) error {
	var circ *docgraph.CircularLinkageError
	switch {
	case stderrors.As(err, &circ):
		return errors.Wrap(errors.ErrCodeCircularLinkage, err, "resolve %s", linkage.Sha(origin).Short())
	case stderrors.Is(err, context.Canceled), stderrors.Is(err, context.DeadlineExceeded):
		return err
	case errors.GetCode(err) != "":
		return err
	}
	return errors.Wrap(errors.ErrCodeStore, err, "crawl %s", linkage.Sha(origin).Short())
}

// driverName labels store hook events.
func driverName(s linkage.Store) string {
	if n, ok := s.(interface{ Driver() string }); ok {
		return n.Driver()
	}
	return fmt.Sprintf("%T", s)
}
