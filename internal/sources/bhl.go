// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	gocache "github.com/patrickmn/go-cache"

	"github.com/pdiddy/taxoref/internal/httputil"
	"github.com/pdiddy/taxoref/pkg/types"
)

// bhlAPIBase is the Biodiversity Heritage Library API endpoint. Declared as
// a var so tests can substitute an httptest server.
var bhlAPIBase = "https://www.biodiversitylibrary.org/api3"

// BHL searches the Biodiversity Heritage Library's scanned literature.
// Only useful for historical descriptions; the resolver consults it when
// the authority year predates the historical cutoff.
type BHL struct {
	Client    *http.Client
	UserAgent string
	APIKey    string
	memo      *gocache.Cache
}

// NewBHL constructs the adapter. The API key is optional; without one the
// search still runs but BHL may throttle harder.
func NewBHL(cfg types.SourcesConfig) *BHL {
	return &BHL{
		Client:    newClient(cfg.HTTPConfig),
		UserAgent: cfg.UserAgent,
		APIKey:    cfg.BHLAPIKey,
		memo:      newMemo(cfg.ResponseCacheTTL),
	}
}

// Name returns the source identifier.
func (s *BHL) Name() string { return "BHL" }

// descriptionMarkers are title phrases that suggest a scanned item is an
// original species description rather than a later treatment.
var descriptionMarkers = []string{"new species", "nov.", "n. sp.", "described"}

// SearchPublication looks for a scanned publication matching the author and
// year. Titles are scored on how many of the author, the year, and the
// description markers they contain; the best title wins.
func (s *BHL) SearchPublication(ctx context.Context, author, year string) (*types.ReferenceCandidate, error) {
	term := strings.TrimSpace(author + " " + year)
	if cand, ok := memoGet(s.memo, term); ok {
		return cand, nil
	}

	params := url.Values{
		"op":         {"PublicationSearch"},
		"searchterm": {term},
		"searchtype": {"F"},
		"format":     {"json"},
	}
	if s.APIKey != "" {
		params.Set("apikey", s.APIKey)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, bhlAPIBase+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", s.UserAgent)

	resp, err := httputil.DoWithRetry(ctx, s.Client, req, 0)
	if err != nil {
		return nil, fmt.Errorf("BHL API request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("BHL API returned HTTP %d", resp.StatusCode)
	}

	var result bhlResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("parsing BHL response: %w", err)
	}
	if result.Status != "ok" || len(result.Result) == 0 {
		return nil, nil
	}

	var best *bhlItem
	bestScore := -1
	for i := range result.Result {
		score := scoreTitle(result.Result[i].Title, author, year)
		if score > bestScore {
			best = &result.Result[i]
			bestScore = score
		}
	}
	if best == nil {
		return nil, nil
	}

	confidence := 0.6 + 0.1*float64(bestScore)
	if confidence > 0.9 {
		confidence = 0.9
	}
	cand := &types.ReferenceCandidate{
		Title:      best.Title,
		Journal:    best.PublisherName,
		Year:       year,
		URL:        best.BHLUrl,
		Citation:   best.Title,
		Source:     "BHL",
		Confidence: confidence,
	}
	if author != "" {
		cand.Authors = []string{author}
	}

	s.memo.SetDefault(term, cand)
	return cand, nil
}

// scoreTitle rates how well a scanned title matches the query. Author and
// year hits weigh 2 each, a description marker 3.
func scoreTitle(title, author, year string) int {
	lower := strings.ToLower(title)
	score := 0
	if author != "" && strings.Contains(lower, strings.ToLower(author)) {
		score += 2
	}
	if year != "" && strings.Contains(lower, year) {
		score += 2
	}
	for _, marker := range descriptionMarkers {
		if strings.Contains(lower, marker) {
			score += 3
			break
		}
	}
	return score
}

// BHL API JSON structures.
type bhlResponse struct {
	Status string    `json:"Status"`
	Result []bhlItem `json:"Result"`
}

type bhlItem struct {
	Title         string `json:"Title"`
	PublisherName string `json:"PublisherName"`
	BHLUrl        string `json:"BHLUrl"`
}
