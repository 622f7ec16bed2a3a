package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/poddiff/pkg/cache"
)

// cacheCommand creates the cache management command.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the CDN response cache",
	}

	cmd.AddCommand(c.cacheClearCommand())
	cmd.AddCommand(c.cachePathCommand())

	return cmd
}

// cacheClearCommand creates the "cache clear" subcommand.
func (c *CLI) cacheClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Clear all cached responses of the configured backend",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			backend, err := c.Config.openCache(ctx, false)
			if err != nil {
				return fmt.Errorf("open %s cache: %w", c.Config.Cache.Backend, err)
			}
			defer backend.Close()

			if err := cache.Clear(ctx, backend); err != nil {
				return fmt.Errorf("clear %s cache: %w", c.Config.Cache.Backend, err)
			}
			printSuccess("Cleared %s cache", c.Config.Cache.Backend)
			if fc, ok := backend.(*cache.FileCache); ok {
				printDetail("Directory: %s", fc.Dir())
			}
			return nil
		},
	}
}

// cachePathCommand creates the "cache path" subcommand.
func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the file cache directory path",
		RunE: func(cmd *cobra.Command, args []string) error {
			if c.Config.Cache.Backend != backendFile {
				printInfo("The %s backend does not use a directory", c.Config.Cache.Backend)
				return nil
			}
			dir, err := c.Config.cacheDir()
			if err != nil {
				return fmt.Errorf("get cache dir: %w", err)
			}
			fmt.Fprintln(c.Stdout, dir)
			return nil
		},
	}
}
