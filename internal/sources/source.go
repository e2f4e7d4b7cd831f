// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package sources contains one adapter per external taxonomic or
// bibliographic database. Each adapter normalizes its service's response
// shape into a types.ReferenceCandidate and reports transport or parse
// problems as errors; callers treat an error as "this source had nothing"
// and move on. No adapter holds state beyond an in-memory response cache
// keyed by query string.
package sources

import (
	"context"
	"net/http"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/pdiddy/taxoref/pkg/types"
)

// Source looks up a taxonomic name in one external database.
type Source interface {
	// Name returns the source identifier used in result records
	// (e.g. "GBIF", "WoRMS", "PBDB").
	Name() string

	// Lookup returns the candidate reference for the name, (nil, nil)
	// when the source has no record, or an error on transport/parse
	// failure. Implementations never panic on malformed responses.
	Lookup(ctx context.Context, name string) (*types.ReferenceCandidate, error)
}

// newClient builds the HTTP client shared pattern for adapters.
func newClient(cfg types.HTTPConfig) *http.Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &http.Client{Timeout: timeout}
}

// newMemo builds the per-adapter response cache. A zero TTL falls back to
// 24 hours; external registry records change on the scale of months.
func newMemo(ttl time.Duration) *gocache.Cache {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return gocache.New(ttl, 2*ttl)
}

// memoGet retrieves a previously memoized candidate.
func memoGet(c *gocache.Cache, key string) (*types.ReferenceCandidate, bool) {
	if v, ok := c.Get(key); ok {
		if cand, ok := v.(*types.ReferenceCandidate); ok {
			return cand, true
		}
	}
	return nil, false
}
