package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect and manage the metadata cache",
}

var cacheStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show cache hit rate and contents summary",
	Args:  cobra.NoArgs,
	RunE:  runCacheStats,
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear [key]",
	Short: "Drop a cached entry from all tiers",
	Long: `Removes the cached result for a query key, e.g. "artist:nirvana"
or "album:nevermind:nirvana". The next lookup re-aggregates from the
catalogs.`,
	Args: cobra.ExactArgs(1),
	RunE: runCacheClear,
}

var cacheSweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Reclaim storage held by expired entries",
	Args:  cobra.NoArgs,
	RunE:  runCacheSweep,
}

func init() {
	cacheCmd.AddCommand(cacheStatsCmd)
	cacheCmd.AddCommand(cacheClearCmd)
	cacheCmd.AddCommand(cacheSweepCmd)
	rootCmd.AddCommand(cacheCmd)
}

func runCacheStats(cmd *cobra.Command, _ []string) error {
	stats, err := app.metadata.CacheStats(context.Background())
	if err != nil {
		return fmt.Errorf("reading cache stats: %w", err)
	}

	cmd.Printf("Entries:      %d\n", stats.EntryCount)
	cmd.Printf("Hits:         %d\n", stats.Hits)
	cmd.Printf("Misses:       %d\n", stats.Misses)
	cmd.Printf("Hit rate:     %.1f%%\n", stats.HitRate*100)
	cmd.Printf("Avg quality:  %.2f\n", stats.AvgQualityScore)
	return nil
}

func runCacheClear(cmd *cobra.Command, args []string) error {
	if err := app.metadata.InvalidateEntry(context.Background(), args[0]); err != nil {
		return fmt.Errorf("invalidating %q: %w", args[0], err)
	}
	cmd.Printf("Invalidated %q.\n", args[0])
	return nil
}

func runCacheSweep(cmd *cobra.Command, _ []string) error {
	removed, err := app.cache.PurgeExpired(context.Background())
	if err != nil {
		return fmt.Errorf("sweeping cache: %w", err)
	}
	cmd.Printf("Reclaimed %d expired entries.\n", removed)
	return nil
}
