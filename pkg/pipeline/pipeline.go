// Package pipeline runs thread queries against a linkage store.
//
// It centralizes the crawl → resolve → render sequence so the CLI
// subcommands share one code path for caching, logging and error mapping.
//
// # Architecture
//
// A query has two stages:
//
//  1. Resolve: crawl the store from the origin, deconvolve updates and
//     deletes, build the live tree and capture it as a [graph.Thread]
//  2. Render: draw the thread in one or more formats (text, json, dot, svg)
//
// Both stages are cached. Resolved threads are keyed by origin, sort order
// and the store revision, so any write to the store invalidates them. Rendered
// artifacts are keyed by the content hash of the thread they were drawn from.
//
// # Usage
//
//	runner := pipeline.NewRunner(store, cache, nil, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    Origin:  "3f7a…",
//	    Formats: []string{pipeline.FormatText},
//	})
//	if err != nil {
//	    return err
//	}
//	fmt.Print(string(result.Artifacts[pipeline.FormatText]))
package pipeline

import (
	"io"
	"slices"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/linkgraph/pkg/cache"
	"github.com/matzehuels/linkgraph/pkg/errors"
	"github.com/matzehuels/linkgraph/pkg/graph"
)

// =============================================================================
// Default Values
// =============================================================================

// Output formats.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatDOT  = "dot"
	FormatSVG  = "svg"
)

// ValidFormats lists the supported output formats.
var ValidFormats = []string{FormatText, FormatJSON, FormatDOT, FormatSVG}

// Sort orders for sibling lists.
const (
	// SortStore keeps the order in which the store returned the linkages.
	SortStore = "store"
	// SortSha orders siblings by sha.
	SortSha = "sha"
)

// ValidSorts lists the supported sort orders.
var ValidSorts = []string{SortStore, SortSha}

// DefaultSort is the presentation order used when none is given.
const DefaultSort = SortStore

// =============================================================================
// Options - Query Configuration
// =============================================================================

// Options configures one thread query.
type Options struct {
	Origin   string   `json:"origin"`
	Sort     string   `json:"sort,omitempty"`
	Formats  []string `json:"formats,omitempty"`
	Detailed bool     `json:"detailed,omitempty"` // Full shas and positions in dot/svg labels
	Refresh  bool     `json:"refresh,omitempty"`  // Bypass cached results

	Logger *log.Logger `json:"-"`

	validated bool
}

// Result contains the outputs of a query.
type Result struct {
	// QueryID identifies the run in log lines.
	QueryID string

	// Thread is the resolved thread.
	Thread graph.Thread

	// ThreadHash is the content hash of the serialized thread.
	ThreadHash string

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	Stats     Stats
	CacheInfo CacheInfo
}

// Stats contains query execution statistics.
type Stats struct {
	NodeCount  int
	EdgeCount  int
	CrawlTime  time.Duration
	RenderTime time.Duration
}

// CacheInfo tracks which stages were served from the cache.
type CacheInfo struct {
	ThreadHit bool
	RenderHit bool // Whether all artifacts came from cache
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks the origin, sort and formats and fills in
// defaults. Calling it more than once has no further effect.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForResolve(); err != nil {
		return err
	}
	if err := o.ValidateForRender(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// ValidateForResolve checks the fields needed to resolve a thread.
func (o *Options) ValidateForResolve() error {
	if err := errors.ValidateSha(o.Origin); err != nil {
		return err
	}
	if o.Sort == "" {
		o.Sort = DefaultSort
	}
	if err := validateSort(o.Sort); err != nil {
		return err
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return nil
}

// ValidateForRender checks the fields needed to render a thread.
func (o *Options) ValidateForRender() error {
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatText}
	}
	for _, f := range o.Formats {
		if err := errors.ValidateFormat(f, ValidFormats...); err != nil {
			return err
		}
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return nil
}

// ThreadKeyOpts returns cache key options for thread resolution.
func (o *Options) ThreadKeyOpts() cache.ThreadKeyOpts {
	return cache.ThreadKeyOpts{Sort: o.Sort}
}

// ArtifactKeyOpts returns cache key options for rendering format.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	opts := cache.ArtifactKeyOpts{Format: format}
	// Only the node-link formats carry labels.
	if format == FormatDOT || format == FormatSVG {
		opts.Detailed = o.Detailed
	}
	return opts
}

func validateSort(sort string) error {
	if slices.Contains(ValidSorts, sort) {
		return nil
	}
	return errors.New(errors.ErrCodeInvalidInput, "unknown sort %q (want one of: store, sha)", sort)
}
