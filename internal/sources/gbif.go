// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	gocache "github.com/patrickmn/go-cache"

	"github.com/pdiddy/taxoref/internal/httputil"
	"github.com/pdiddy/taxoref/internal/textextract"
	"github.com/pdiddy/taxoref/pkg/types"
)

// gbifAPIBase is the GBIF backbone taxonomy endpoint. Declared as a var so
// tests can substitute an httptest server.
var gbifAPIBase = "https://api.gbif.org/v1"

// GBIF queries the GBIF backbone taxonomy. The backbone records the
// publication a name was established in under "publishedIn", which is the
// closest thing GBIF has to an original description.
type GBIF struct {
	Client    *http.Client
	UserAgent string
	memo      *gocache.Cache
}

// NewGBIF constructs the adapter.
func NewGBIF(cfg types.SourcesConfig) *GBIF {
	return &GBIF{
		Client:    newClient(cfg.HTTPConfig),
		UserAgent: cfg.UserAgent,
		memo:      newMemo(cfg.ResponseCacheTTL),
	}
}

// Name returns the source identifier.
func (s *GBIF) Name() string { return "GBIF" }

// Lookup matches the name against the backbone, then fetches the usage
// record for its authorship and publishedIn fields.
func (s *GBIF) Lookup(ctx context.Context, name string) (*types.ReferenceCandidate, error) {
	if cand, ok := memoGet(s.memo, name); ok {
		return cand, nil
	}

	params := url.Values{
		"name":   {name},
		"strict": {"false"},
	}
	var match gbifMatch
	if err := s.getJSON(ctx, gbifAPIBase+"/species/match?"+params.Encode(), &match); err != nil {
		return nil, err
	}
	if match.MatchType == "NONE" || match.UsageKey == 0 {
		return nil, nil
	}

	var detail gbifSpecies
	if err := s.getJSON(ctx, fmt.Sprintf("%s/species/%d", gbifAPIBase, match.UsageKey), &detail); err != nil {
		return nil, err
	}

	cand := &types.ReferenceCandidate{
		MatchedName:        detail.ScientificName,
		TaxonomicAuthority: detail.Authorship,
		Citation:           detail.PublishedIn,
		Source:             "GBIF",
		Confidence:         0.7,
	}
	if detail.PublishedIn != "" {
		cand.Confidence = 0.9
	}
	if y := textextract.Year(detail.Authorship); y != nil {
		cand.Year = fmt.Sprintf("%d", *y)
	}
	if author := textextract.Author(detail.Authorship); author != "" {
		cand.Authors = []string{author}
	}

	s.memo.SetDefault(name, cand)
	return cand, nil
}

func (s *GBIF) getJSON(ctx context.Context, reqURL string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", s.UserAgent)

	resp, err := httputil.DoWithRetry(ctx, s.Client, req, 0)
	if err != nil {
		return fmt.Errorf("GBIF API request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("GBIF API returned HTTP %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("parsing GBIF response: %w", err)
	}
	return nil
}

// GBIF API JSON structures.
type gbifMatch struct {
	MatchType string `json:"matchType"`
	UsageKey  int    `json:"usageKey"`
}

type gbifSpecies struct {
	ScientificName string `json:"scientificName"`
	Authorship     string `json:"authorship"`
	PublishedIn    string `json:"publishedIn"`
}
