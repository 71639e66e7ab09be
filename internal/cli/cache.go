package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/gitstat/pkg/cache"
	"github.com/matzehuels/gitstat/pkg/config"
)

// cacheCommand creates the cache management command.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the response cache",
	}

	cmd.AddCommand(c.cacheClearCommand())
	cmd.AddCommand(c.cachePathCommand())

	return cmd
}

// cacheClearCommand creates the "cache clear" subcommand.
func (c *CLI) cacheClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove all cached profiles and stats",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()
			store := c.openStore(cmd.Context())
			defer store.Close()

			ok, err := cache.Clear(cmd.Context(), store)
			if err != nil {
				return fmt.Errorf("clear cache: %w", err)
			}
			if !ok {
				printInfo(w, "The %s cache backend has nothing to clear", c.cfg.Cache.Backend)
				return nil
			}
			printSuccess(w, "Cache cleared")
			printDetail(w, "Location: %s", c.cacheLocation())
			return nil
		},
	}
}

// cachePathCommand creates the "cache path" subcommand.
func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print where cached responses are stored",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), c.cacheLocation())
			return nil
		},
	}
}

// cacheLocation describes the configured backend: a directory for the file
// backend, a redis URL, or the backend name.
func (c *CLI) cacheLocation() string {
	switch c.cfg.Cache.Backend {
	case config.BackendRedis:
		return fmt.Sprintf("redis://%s/%d (prefix %q)", c.cfg.Redis.Addr, c.cfg.Redis.DB, c.cfg.Redis.Prefix)
	case config.BackendMemory, config.BackendNone:
		return c.cfg.Cache.Backend
	}
	dir, err := c.cacheDir()
	if err != nil {
		return "unknown"
	}
	return dir
}
