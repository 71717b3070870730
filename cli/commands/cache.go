package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cedricrupb/dataviewer/core/cache"
)

// NewCacheCommand creates the cache command
func NewCacheCommand(cli *CLI) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect and reset the viewer cache",
		Long: `Inspect and reset the cache of generated viewer scripts.

The cache is private state: one file per (dataset, split, prompt) key,
safe to delete at any time for a full reset.`,
	}

	// Subcommands
	cmd.AddCommand(
		newCacheListCommand(cli),
		newCacheClearCommand(cli),
		newCachePathCommand(cli),
	)

	return cmd
}

// newCacheListCommand creates the cache list command
func newCacheListCommand(cli *CLI) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List cached viewer scripts",
		RunE: func(cmd *cobra.Command, args []string) error {
			store := cache.NewDiskCache(cli.Config.CacheDir())

			entries, err := store.List()
			if err != nil {
				return err
			}

			cli.Output.ShowCacheEntries(entries)
			return nil
		},
	}
}

// newCacheClearCommand creates the cache clear command
func newCacheClearCommand(cli *CLI) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove all cached viewer scripts",
		RunE: func(cmd *cobra.Command, args []string) error {
			store := cache.NewDiskCache(cli.Config.CacheDir())

			if err := store.Clear(); err != nil {
				return err
			}

			cli.Output.Success("Viewer cache cleared")
			return nil
		},
	}
}

// newCachePathCommand creates the cache path command
func newCachePathCommand(cli *CLI) *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the cache directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Println(cli.Config.CacheDir())
			return nil
		},
	}
}
