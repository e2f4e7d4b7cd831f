// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings used by adapters that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "taxoref/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// SourcesConfig holds settings for the external database adapters.
type SourcesConfig struct {
	HTTPConfig `yaml:",inline"`

	// BHLAPIKey is an optional Biodiversity Heritage Library API key for
	// better rate limits. Resolution works without it.
	BHLAPIKey string `json:"bhl_api_key,omitempty" yaml:"bhl_api_key,omitempty"`

	// CrossRefMailto is an optional contact address sent to CrossRef for
	// polite-pool access.
	CrossRefMailto string `json:"crossref_mailto,omitempty" yaml:"crossref_mailto,omitempty"`

	// DatasetPath is the location of the offline PBDB taxonomy dataset
	// (SQLite file with name, authority, citation, doi columns).
	DatasetPath string `json:"dataset_path" yaml:"dataset_path"`

	// ResponseCacheTTL controls how long adapter responses are memoized
	// in memory, keyed by query string (default 24h).
	ResponseCacheTTL time.Duration `json:"response_cache_ttl" yaml:"response_cache_ttl"`
}

// ResolverConfig holds settings for the reference resolver.
type ResolverConfig struct {
	// InterCallDelay is the enforced minimum delay between outbound calls
	// to different services, and between names in a batch (default 500ms).
	// External registries ask for this; set to zero only for tests.
	InterCallDelay time.Duration `json:"inter_call_delay" yaml:"inter_call_delay"`

	// HistoricalCutoff is the year below which the historical-literature
	// adapter joins the chain (default 1950). BHL holds scanned literature
	// mostly from before this date.
	HistoricalCutoff int `json:"historical_cutoff" yaml:"historical_cutoff"`
}

// ScoringConfig holds the aggregator's scoring and validation parameters.
// The values are empirical, carried over from long-running use rather than
// derived; they are configurable so deployments can adjust them.
type ScoringConfig struct {
	// LocalDatasetBonus is added to candidates from the offline
	// paleontology dataset, which usually records the original
	// description verbatim (default 1000).
	LocalDatasetBonus int `json:"local_dataset_bonus" yaml:"local_dataset_bonus"`

	// DatabasePenalty is subtracted when the citation text looks like a
	// modern database export rather than a primary publication
	// (default 500).
	DatabasePenalty int `json:"database_penalty" yaml:"database_penalty"`

	// HighConfidenceStop is the adapter confidence at or above which a
	// chained search stops early (default 0.9).
	HighConfidenceStop float64 `json:"high_confidence_stop" yaml:"high_confidence_stop"`

	// TitleOverlapRatio is the minimum share of a candidate title's
	// significant words that must appear in the local citation for
	// validation to accept it (default 0.4).
	TitleOverlapRatio float64 `json:"title_overlap_ratio" yaml:"title_overlap_ratio"`

	// MinTitleWords and TitleWindowRatio govern bibliographic title
	// matching: a match needs at least MinTitleWords shared significant
	// words, or TitleWindowRatio of a five-word title window
	// (defaults 3 and 0.5).
	MinTitleWords    int     `json:"min_title_words" yaml:"min_title_words"`
	TitleWindowRatio float64 `json:"title_window_ratio" yaml:"title_window_ratio"`
}

// CacheConfig holds settings for the persistent result cache.
type CacheConfig struct {
	// Path is the SQLite cache file location. Empty selects
	// ~/.cache/taxoref/results.db.
	Path string `json:"path" yaml:"path"`
}

// Config groups all stage configurations.
type Config struct {
	Sources  SourcesConfig  `json:"sources" yaml:"sources"`
	Resolver ResolverConfig `json:"resolver" yaml:"resolver"`
	Scoring  ScoringConfig  `json:"scoring" yaml:"scoring"`
	Cache    CacheConfig    `json:"cache" yaml:"cache"`
}

// DefaultConfig returns the configuration used when no file overrides it.
func DefaultConfig() Config {
	return Config{
		Sources: SourcesConfig{
			HTTPConfig: HTTPConfig{
				Timeout:   10 * time.Second,
				UserAgent: "taxoref/0.1",
			},
			DatasetPath:      "data/pbdb_taxonomy.db",
			ResponseCacheTTL: 24 * time.Hour,
		},
		Resolver: ResolverConfig{
			InterCallDelay:   500 * time.Millisecond,
			HistoricalCutoff: 1950,
		},
		Scoring: ScoringConfig{
			LocalDatasetBonus:  1000,
			DatabasePenalty:    500,
			HighConfidenceStop: 0.9,
			TitleOverlapRatio:  0.4,
			MinTitleWords:      3,
			TitleWindowRatio:   0.5,
		},
	}
}
