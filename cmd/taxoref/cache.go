// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/pdiddy/taxoref/internal/cache"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect or clear the persistent result cache",
}

var cacheStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show cached result counts and recent search terms",
	RunE:  runCacheStats,
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete all cached results and candidates",
	RunE:  runCacheClear,
}

func init() {
	cacheStatsCmd.Flags().Bool("json", false, "output stats as JSON")

	cacheCmd.AddCommand(cacheStatsCmd)
	cacheCmd.AddCommand(cacheClearCmd)
	rootCmd.AddCommand(cacheCmd)
}

func runCacheStats(cmd *cobra.Command, args []string) error {
	store, err := cache.Open(loadConfig().Cache)
	if err != nil {
		return err
	}
	defer store.Close()

	stats, err := store.Stats()
	if err != nil {
		return err
	}

	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(stats)
	}

	fmt.Printf("Cached results:    %d\n", stats.Results)
	fmt.Printf("Cached candidates: %d\n", stats.Candidates)
	if len(stats.BySource) > 0 {
		fmt.Println("By source:")
		sources := make([]string, 0, len(stats.BySource))
		for s := range stats.BySource {
			sources = append(sources, s)
		}
		sort.Strings(sources)
		for _, s := range sources {
			fmt.Printf("  %-24s %d\n", s, stats.BySource[s])
		}
	}
	if len(stats.Recent) > 0 {
		fmt.Println("Recent searches:")
		for _, e := range stats.Recent {
			fmt.Printf("  %-30s %s\n", e.SearchTerm, e.Timestamp.Format("2006-01-02"))
		}
	}
	return nil
}

func runCacheClear(cmd *cobra.Command, args []string) error {
	store, err := cache.Open(loadConfig().Cache)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.Clear(); err != nil {
		return err
	}
	fmt.Println("Cache cleared.")
	return nil
}
