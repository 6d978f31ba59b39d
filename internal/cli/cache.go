package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/repertoire/pkg/cache"
)

// cacheCommand creates the cache management command.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the explorer response and artifact cache",
	}

	cmd.AddCommand(c.cacheClearCommand())
	cmd.AddCommand(c.cachePathCommand())

	return cmd
}

// cacheClearCommand creates the "cache clear" subcommand.
func (c *CLI) cacheClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove all cached entries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			backend, err := c.newCache(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer backend.Close()

			count, where, err := clearCache(cmd.Context(), backend)
			if err != nil {
				return err
			}
			if where == "" {
				printInfo("Caching is disabled")
				return nil
			}
			printSuccess("Cleared %s", plural(count, "cached entry"))
			printDetail("%s", where)
			return nil
		},
	}
}

// clearCache empties backend and describes where the entries lived. An empty
// description means the backend stores nothing.
func clearCache(ctx context.Context, backend cache.Cache) (int, string, error) {
	switch b := backend.(type) {
	case *cache.FileCache:
		n, err := b.Clear()
		return n, "Directory: " + b.Dir(), err
	case *cache.RedisCache:
		n, err := b.Clear(ctx)
		return n, "Redis", err
	default:
		return 0, "", nil
	}
}

// cachePathCommand creates the "cache path" subcommand.
func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the cache directory path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			dir := cfg.Cache.Dir
			if dir == "" {
				if dir, err = cache.DefaultDir(); err != nil {
					return fmt.Errorf("get cache dir: %w", err)
				}
			}
			fmt.Println(dir)
			return nil
		},
	}
}
