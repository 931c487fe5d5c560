package cli

import (
	"context"
	"errors"
	"io"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/linkgraph/pkg/buildinfo"
	"github.com/matzehuels/linkgraph/pkg/config"
	lgerrors "github.com/matzehuels/linkgraph/pkg/errors"
	pkgio "github.com/matzehuels/linkgraph/pkg/io"
	"github.com/matzehuels/linkgraph/pkg/observability"
	"github.com/matzehuels/linkgraph/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for display.
const appName = "linkgraph"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
	Config config.Config

	// Global flags.
	configPath string
	storeFlag  string
	pathFlag   string
	edgesFile  string
	verbose    bool
	noCache    bool
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "linkgraph resolves document threads from link, update and delete edges",
		Long: `linkgraph crawls a store of raw document edges, works out which documents
are current after updates and deletes, and shows the resulting thread as a
tree, a lane diagram or a rendered graph.`,
		Version:           buildinfo.Version,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: c.setup,
	}

	root.SetVersionTemplate(buildinfo.Template())

	flags := root.PersistentFlags()
	flags.StringVar(&c.configPath, "config", "", "config file (default: "+config.Path()+")")
	flags.StringVar(&c.storeFlag, "store", "", "store driver: sqlite, badger, mongo, memory")
	flags.StringVar(&c.pathFlag, "store-path", "", "store file (sqlite) or directory (badger)")
	flags.StringVar(&c.edgesFile, "edges", "", "load edges from a fixture file before running (useful with --store memory)")
	flags.BoolVarP(&c.verbose, "verbose", "v", false, "enable verbose logging")
	flags.BoolVar(&c.noCache, "no-cache", false, "disable the result cache")

	root.AddCommand(c.loadCommand())
	root.AddCommand(c.dumpCommand())
	root.AddCommand(c.treeCommand())
	root.AddCommand(c.drawCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.nodeCommand())
	root.AddCommand(c.browseCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// setup loads the configuration and applies the global flags on top of it.
func (c *CLI) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	if c.storeFlag != "" {
		cfg.Store.Driver = c.storeFlag
	}
	if c.pathFlag != "" {
		cfg.Store.Path = c.pathFlag
	}
	if c.noCache {
		cfg.Cache.Driver = config.CacheNone
	}
	if errs := cfg.Validate(); len(errs) > 0 {
		return lgerrors.Wrap(lgerrors.ErrCodeInvalidInput, errors.Join(errs...), "invalid settings")
	}
	c.Config = cfg

	level := log.InfoLevel
	if l, err := log.ParseLevel(strings.ToLower(cfg.Log.Level)); err == nil {
		level = l
	}
	if c.verbose {
		level = log.DebugLevel
		registerLogHooks(c.Logger)
	}
	c.SetLogLevel(level)

	cmd.SetContext(withLogger(cmd.Context(), c.Logger))
	return nil
}

// =============================================================================
// Runner Factory
// =============================================================================

// session is an opened store with a runner on top of it.
type session struct {
	store  pipeline.Backend
	runner *pipeline.Runner
}

// Close releases the cache and the store.
func (s *session) Close() error {
	return errors.Join(s.runner.Close(), s.store.Close())
}

// openStore opens the configured store and loads the --edges fixture into it.
func (c *CLI) openStore(ctx context.Context) (pipeline.Backend, error) {
	store, err := pipeline.OpenStore(ctx, c.Config.Store, c.Logger)
	if err != nil {
		return nil, err
	}
	c.Logger.Debug("opened store", "driver", store.Driver(), "path", c.Config.Store.Path)

	if c.edgesFile != "" {
		n, err := pkgio.Load(ctx, store, c.edgesFile)
		if err != nil {
			store.Close()
			return nil, err
		}
		c.Logger.Debug("loaded fixture", "file", c.edgesFile, "edges", n)
	}
	return store, nil
}

// openSession opens the configured store and cache and builds a runner.
// A cache that cannot be opened is logged and replaced by no cache.
func (c *CLI) openSession(ctx context.Context) (*session, error) {
	store, err := c.openStore(ctx)
	if err != nil {
		return nil, err
	}

	rc, err := pipeline.OpenCache(ctx, c.Config.Cache)
	if err != nil {
		c.Logger.Warn("cache disabled", "err", err)
		rc = nil
	}

	runner := pipeline.NewRunner(store, rc, pipeline.NewKeyer(c.Config.Store), c.Logger)
	if ttl := c.Config.Cache.TTL.Duration; ttl > 0 {
		runner.ThreadTTL = ttl
	}
	return &session{store: store, runner: runner}, nil
}

// =============================================================================
// Options Helpers
// =============================================================================

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s, def string) []string {
	if s == "" {
		return []string{def}
	}
	parts := strings.Split(s, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

// registerLogHooks routes store, cache and query events to logger at debug level.
func registerLogHooks(logger *log.Logger) {
	h := &logHooks{logger: logger}
	observability.SetQueryHooks(h)
	observability.SetCacheHooks(h)
	observability.SetStoreHooks(h)
}
