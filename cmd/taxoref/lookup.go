// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/taxoref/internal/cache"
	"github.com/pdiddy/taxoref/internal/report"
	"github.com/pdiddy/taxoref/internal/resolve"
	"github.com/pdiddy/taxoref/pkg/types"
)

var lookupCmd = &cobra.Command{
	Use:   "lookup [name]",
	Short: "Look up names in the local dataset and resolve their original descriptions",
	Long: `Lookup reads each name from the local Paleobiology Database snapshot,
checks whether its citation credits the actual describer, and when it does
not, resolves the original publication through CrossRef, WoRMS, and the
Biodiversity Heritage Library.

Names come from the positional argument or, with -f, one per line from a
file; blank lines and # comments are skipped.`,
	RunE: runLookup,
}

func init() {
	lookupCmd.Flags().StringP("file", "f", "", "file with one name per line")
	lookupCmd.Flags().Bool("json", false, "output results as JSON")
	lookupCmd.Flags().Bool("progress", false, "print progress for batch lookups")
	lookupCmd.Flags().Bool("no-delay", false, "disable the delay between external calls")
	lookupCmd.Flags().Bool("no-resolve", false, "skip external services, local dataset only")

	rootCmd.AddCommand(lookupCmd)
}

func runLookup(cmd *cobra.Command, args []string) error {
	file, _ := cmd.Flags().GetString("file")
	jsonOutput, _ := cmd.Flags().GetBool("json")
	progress, _ := cmd.Flags().GetBool("progress")
	noDelay, _ := cmd.Flags().GetBool("no-delay")
	noResolve, _ := cmd.Flags().GetBool("no-resolve")

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
		// A broken cache degrades to uncached operation.
		fmt.Fprintf(os.Stderr, "warning: opening cache: %v\n", err)
		store = nil
	} else {
		defer store.Close()
	}

	var candCache resolve.CandidateCache
	if store != nil {
		candCache = store
	}
	lookup := resolve.NewLookup(cfg, candCache)
	lookup.NoResolve = noResolve
	lookup.Resolver.Log = os.Stderr

	ctx := context.Background()
	var results []*resolve.Result
	found := 0
	for i, name := range names {
		if progress && len(names) > 3 {
			fmt.Fprintf(os.Stderr, "[%d/%d] %s\n", i+1, len(names), name)
		}
		if i > 0 && cfg.Resolver.InterCallDelay > 0 {
			time.Sleep(cfg.Resolver.InterCallDelay)
		}

		res, err := lookup.Run(ctx, types.TaxonQuery{Name: name})
		if err != nil {
			return err
		}
		results = append(results, res)
		if res.Found() {
			found++
		}
	}

	if jsonOutput {
		if err := report.FormatLookupJSON(results, os.Stdout); err != nil {
			return err
		}
	} else {
		for i, res := range results {
			if i > 0 {
				fmt.Println()
			}
			report.FormatLookupText(res, os.Stdout)
		}
	}

	return noResultsError(found, names)
}
