package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"askshell/internal/logging"
	"askshell/internal/respcache"
)

func newCacheCommand(ctx *commandContext) *cobra.Command {
	cacheCmd := &cobra.Command{
		Use:   "cache",
		Short: "Response cache maintenance",
	}
	cacheCmd.AddCommand(newCacheStatsCommand(ctx))
	cacheCmd.AddCommand(newCacheClearCommand(ctx))
	return cacheCmd
}

func (c *commandContext) openCache() (*respcache.Cache, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return respcache.New(respcache.Options{
		Path:       cfg.Paths.CacheFile,
		TTL:        cfg.CacheTTL(),
		MaxEntries: cfg.Cache.MaxEntries,
	}, logging.NewNop()), nil
}

func newCacheStatsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show response cache statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			cache, err := ctx.openCache()
			if err != nil {
				return err
			}
			stats := cache.Stats()
			rows := [][]string{
				{"Entries", fmt.Sprintf("%d / %d", stats.Entries, stats.MaxEntries)},
				{"Total hits", fmt.Sprintf("%d", stats.TotalHits)},
				{"TTL", stats.TTL.String()},
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Metric", "Value"},
				rows,
				[]columnAlignment{alignLeft, alignRight},
			))
			return nil
		},
	}
}

func newCacheClearCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove all cached responses",
		RunE: func(cmd *cobra.Command, args []string) error {
			cache, err := ctx.openCache()
			if err != nil {
				return err
			}
			if err := cache.Clear(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Response cache cleared")
			return nil
		},
	}
}
