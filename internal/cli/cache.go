package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/linkgraph/pkg/cache"
	"github.com/matzehuels/linkgraph/pkg/config"
	"github.com/matzehuels/linkgraph/pkg/errors"
	"github.com/matzehuels/linkgraph/pkg/pipeline"
)

// cacheCommand creates the cache management command.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the thread and artifact cache",
	}

	cmd.AddCommand(c.cacheClearCommand())
	cmd.AddCommand(c.cachePathCommand())

	return cmd
}

// cacheClearCommand creates the "cache clear" subcommand.
func (c *CLI) cacheClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove every cached thread and artifact",
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runCacheClear(cmd.Context())
		},
	}
}

func (c *CLI) runCacheClear(ctx context.Context) error {
	cfg := c.Config.Cache
	switch cfg.Driver {
	case config.CacheNone:
		printInfo("Cache is disabled")
		return nil
	case config.CacheFile:
		fc, err := cache.NewFileCache(cfg.Dir)
		if err != nil {
			return errors.Wrap(errors.ErrCodeCache, err, "open cache %s", cfg.Dir)
		}
		n, err := fc.Clear()
		if err != nil {
			return errors.Wrap(errors.ErrCodeCache, err, "clear cache")
		}
		printSuccess("Cleared %d cached entries", n)
		printDetail("Directory: %s", fc.Dir())
		return nil
	}

	opened, err := pipeline.OpenCache(ctx, cfg)
	if err != nil {
		return err
	}
	defer opened.Close()

	rc, ok := opened.(*cache.RedisCache)
	if !ok {
		return errors.New(errors.ErrCodeUnsupported, "cannot clear %s cache", cfg.Driver)
	}
	n, err := rc.Clear(ctx)
	if err != nil {
		return errors.Wrap(errors.ErrCodeCache, err, "clear cache")
	}
	printSuccess("Cleared %d cached entries", n)
	printDetail("Redis: %s", cfg.RedisAddr)
	return nil
}

// cachePathCommand creates the "cache path" subcommand.
func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print where cached entries are kept",
		RunE: func(cmd *cobra.Command, args []string) error {
			switch c.Config.Cache.Driver {
			case config.CacheRedis:
				fmt.Fprintln(stdout, "redis://"+c.Config.Cache.RedisAddr)
			case config.CacheNone:
				printInfo("Cache is disabled")
			default:
				fmt.Fprintln(stdout, c.Config.Cache.Dir)
			}
			return nil
		},
	}
}
