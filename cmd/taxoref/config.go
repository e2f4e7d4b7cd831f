// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"

	"github.com/pdiddy/taxoref/pkg/types"
)

// loadConfig merges code defaults, the viper config file, and secrets into
// one configuration. Precedence: config file over defaults, secrets fill
// credentials left empty.
func loadConfig() types.Config {
	cfg := types.DefaultConfig()

	if viper.IsSet("sources.timeout") {
		cfg.Sources.Timeout = viper.GetDuration("sources.timeout")
	}
	if viper.IsSet("sources.user_agent") {
		cfg.Sources.UserAgent = viper.GetString("sources.user_agent")
	}
	if viper.IsSet("sources.dataset_path") {
		cfg.Sources.DatasetPath = viper.GetString("sources.dataset_path")
	}
	if viper.IsSet("sources.response_cache_ttl") {
		cfg.Sources.ResponseCacheTTL = viper.GetDuration("sources.response_cache_ttl")
	}
	if viper.IsSet("sources.bhl_api_key") {
		cfg.Sources.BHLAPIKey = viper.GetString("sources.bhl_api_key")
	}
	if viper.IsSet("sources.crossref_mailto") {
		cfg.Sources.CrossRefMailto = viper.GetString("sources.crossref_mailto")
	}
	if viper.IsSet("resolver.inter_call_delay") {
		cfg.Resolver.InterCallDelay = viper.GetDuration("resolver.inter_call_delay")
	}
	if viper.IsSet("resolver.historical_cutoff") {
		cfg.Resolver.HistoricalCutoff = viper.GetInt("resolver.historical_cutoff")
	}
	if viper.IsSet("cache.path") {
		cfg.Cache.Path = viper.GetString("cache.path")
	}
	if viper.IsSet("scoring.local_dataset_bonus") {
		cfg.Scoring.LocalDatasetBonus = viper.GetInt("scoring.local_dataset_bonus")
	}
	if viper.IsSet("scoring.database_penalty") {
		cfg.Scoring.DatabasePenalty = viper.GetInt("scoring.database_penalty")
	}
	if viper.IsSet("scoring.high_confidence_stop") {
		cfg.Scoring.HighConfidenceStop = viper.GetFloat64("scoring.high_confidence_stop")
	}
	if viper.IsSet("scoring.title_overlap_ratio") {
		cfg.Scoring.TitleOverlapRatio = viper.GetFloat64("scoring.title_overlap_ratio")
	}
	if viper.IsSet("scoring.min_title_words") {
		cfg.Scoring.MinTitleWords = viper.GetInt("scoring.min_title_words")
	}
	if viper.IsSet("scoring.title_window_ratio") {
		cfg.Scoring.TitleWindowRatio = viper.GetFloat64("scoring.title_window_ratio")
	}

	if cfg.Sources.BHLAPIKey == "" {
		cfg.Sources.BHLAPIKey = loadedSecrets["bhl-api-key"]
	}
	if cfg.Sources.CrossRefMailto == "" {
		cfg.Sources.CrossRefMailto = loadedSecrets["crossref-mailto"]
	}
	return cfg
}

// noResultsError implements the exit contract shared by lookup and search:
// a run that found nothing exits nonzero.
func noResultsError(found int, names []string) error {
	if found > 0 {
		return nil
	}
	return fmt.Errorf("no records found for %d name(s)", len(names))
}

// readNames collects the names to process: the positional argument, or the
// lines of the file given with -f. Blank lines and # comments are skipped.
func readNames(args []string, file string) ([]string, error) {
	if file == "" {
		if len(args) == 0 {
			return nil, fmt.Errorf("provide a name or -f file")
		}
		return []string{strings.Join(args, " ")}, nil
	}

	f, err := os.Open(file)
	if err != nil {
		return nil, fmt.Errorf("opening names file: %w", err)
	}
	defer f.Close()

	var names []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		names = append(names, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading names file: %w", err)
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("no names in %s", file)
	}
	return names, nil
}
