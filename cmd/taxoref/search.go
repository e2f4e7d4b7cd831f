// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/taxoref/internal/aggregate"
	"github.com/pdiddy/taxoref/internal/cache"
	"github.com/pdiddy/taxoref/internal/report"
	"github.com/pdiddy/taxoref/pkg/types"
)

var searchCmd = &cobra.Command{
	Use:   "search [name]",
	Short: "Search all registries and merge the answers into one reference",
	Long: `Search queries GBIF, ZooBank, the local Paleobiology Database snapshot,
and WoRMS for each name and merges their answers: the first registry to
report a taxonomic authority seeds it, citations whose year contradicts the
authority are discarded, and the best surviving citation is kept. Missing
DOIs are backfilled through CrossRef.

Results persist in a local cache; repeated searches are instant. Use
--refresh to requery the registries.`,
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().StringP("file", "f", "", "file with one name per line")
	searchCmd.Flags().Bool("json", false, "output results as JSON")
	searchCmd.Flags().Bool("csl", false, "output results as CSL-YAML")
	searchCmd.Flags().Bool("refresh", false, "bypass the cache and requery all sources")
	searchCmd.Flags().Bool("no-delay", false, "disable the delay between external calls")

	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	file, _ := cmd.Flags().GetString("file")
	jsonOutput, _ := cmd.Flags().GetBool("json")
	cslOutput, _ := cmd.Flags().GetBool("csl")
	refresh, _ := cmd.Flags().GetBool("refresh")
	noDelay, _ := cmd.Flags().GetBool("no-delay")

	if jsonOutput && cslOutput {
		return fmt.Errorf("--json and --csl are mutually exclusive")
	}

	names, err := readNames(args, file)
	if err != nil {
		return err
	}

	cfg := loadConfig()
	if noDelay {
		cfg.Resolver.InterCallDelay = 0
	}

	store, err := cache.Open(cfg.Cache)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: opening cache: %v\n", err)
		store = nil
	} else {
		defer store.Close()
	}

	var resultCache aggregate.ResultCache
	if store != nil {
		resultCache = store
	}
	agg := aggregate.New(cfg, resultCache)
	agg.Log = os.Stderr

	ctx := context.Background()
	var results []*types.ResolvedReference
	found := 0
	for i, name := range names {
		if i > 0 && cfg.Resolver.InterCallDelay > 0 {
			time.Sleep(cfg.Resolver.InterCallDelay)
		}
		res, err := agg.Search(ctx, name, refresh)
		if err != nil {
			return err
		}
		results = append(results, res)
		if res.Found() {
			found++
		}
	}

	switch {
	case jsonOutput:
		if err := report.FormatJSON(results, os.Stdout); err != nil {
			return err
		}
	case cslOutput:
		if err := report.FormatCSL(results, os.Stdout); err != nil {
			return err
		}
	default:
		for i, res := range results {
			if i > 0 {
				fmt.Println()
			}
			report.FormatText(res, os.Stdout)
		}
	}

	return noResultsError(found, names)
}
