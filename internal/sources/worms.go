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
	"github.com/pdiddy/taxoref/internal/textextract"
	"github.com/pdiddy/taxoref/pkg/types"
)

// wormsAPIBase is the WoRMS REST endpoint. Declared as a var so tests can
// substitute an httptest server.
var wormsAPIBase = "https://www.marinespecies.org/rest"

// WoRMS queries the World Register of Marine Species. WoRMS is the one
// registry that explicitly labels a cited source as the original
// description, so OriginalDescription results carry the highest confidence
// any adapter produces.
type WoRMS struct {
	Client    *http.Client
	UserAgent string
	memo      *gocache.Cache
}

// NewWoRMS constructs the adapter.
func NewWoRMS(cfg types.SourcesConfig) *WoRMS {
	return &WoRMS{
		Client:    newClient(cfg.HTTPConfig),
		UserAgent: cfg.UserAgent,
		memo:      newMemo(cfg.ResponseCacheTTL),
	}
}

// Name returns the source identifier.
func (s *WoRMS) Name() string { return "WoRMS" }

// Lookup matches the name and fetches the Aphia record's authority and
// citation. Used by the multi-source search; the citation here is the
// WoRMS database citation, not necessarily the original description.
func (s *WoRMS) Lookup(ctx context.Context, name string) (*types.ReferenceCandidate, error) {
	key := "record:" + name
	if cand, ok := memoGet(s.memo, key); ok {
		return cand, nil
	}

	rec, err := s.matchName(ctx, name)
	if err != nil || rec == nil {
		return nil, err
	}

	var detail wormsRecord
	if err := s.getJSON(ctx, fmt.Sprintf("%s/AphiaRecordByAphiaID/%d", wormsAPIBase, rec.AphiaID), &detail); err != nil {
		return nil, err
	}

	cand := &types.ReferenceCandidate{
		MatchedName:        detail.ScientificName,
		TaxonomicAuthority: detail.Authority,
		Citation:           detail.Citation,
		Source:             "WoRMS",
		Confidence:         0.6,
	}
	if y := textextract.Year(detail.Authority); y != nil {
		cand.Year = fmt.Sprintf("%d", *y)
	}
	if author := textextract.Author(detail.Authority); author != "" {
		cand.Authors = []string{author}
	}

	s.memo.SetDefault(key, cand)
	return cand, nil
}

// OriginalDescription matches the name and walks the Aphia sources list for
// the entry flagged as the original description. Used by the resolver for
// marine taxa with a known attribution mismatch.
func (s *WoRMS) OriginalDescription(ctx context.Context, name string) (*types.ReferenceCandidate, error) {
	key := "original:" + name
	if cand, ok := memoGet(s.memo, key); ok {
		return cand, nil
	}

	rec, err := s.matchName(ctx, name)
	if err != nil || rec == nil {
		return nil, err
	}

	var srcList []wormsSource
	if err := s.getJSON(ctx, fmt.Sprintf("%s/AphiaSourcesByAphiaID/%d", wormsAPIBase, rec.AphiaID), &srcList); err != nil {
		return nil, err
	}

	var original *wormsSource
	for i := range srcList {
		if strings.Contains(strings.ToLower(srcList[i].Use), "original") {
			original = &srcList[i]
			break
		}
	}

	cand := &types.ReferenceCandidate{
		MatchedName:        rec.ScientificName,
		TaxonomicAuthority: rec.Authority,
		Source:             "WoRMS",
		Confidence:         0.6,
	}
	if original != nil {
		cand.Citation = original.Reference
		cand.Title = original.Reference
		cand.DOI = original.DOI
		cand.URL = original.URL
		cand.Confidence = 0.95
	}
	if y := textextract.Year(rec.Authority); y != nil {
		cand.Year = fmt.Sprintf("%d", *y)
	}
	if author := textextract.Author(rec.Authority); author != "" {
		cand.Authors = []string{author}
	}

	// Nothing flagged original and no authority either: treat as no result.
	if original == nil && rec.Authority == "" {
		return nil, nil
	}

	s.memo.SetDefault(key, cand)
	return cand, nil
}

// matchName resolves a scientific name to its Aphia record. Returns
// (nil, nil) when WoRMS has no match.
func (s *WoRMS) matchName(ctx context.Context, name string) (*wormsRecord, error) {
	params := url.Values{
		"scientificnames[]": {name},
		"marine_only":       {"false"},
	}

	// AphiaRecordsByMatchNames returns one array of records per queried
	// name, so a single query yields [][]record.
	var matches [][]wormsRecord
	if err := s.getJSON(ctx, wormsAPIBase+"/AphiaRecordsByMatchNames?"+params.Encode(), &matches); err != nil {
		return nil, err
	}
	if len(matches) == 0 || len(matches[0]) == 0 {
		return nil, nil
	}
	return &matches[0][0], nil
}

func (s *WoRMS) getJSON(ctx context.Context, reqURL string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", s.UserAgent)

	resp, err := httputil.DoWithRetry(ctx, s.Client, req, 0)
	if err != nil {
		return fmt.Errorf("WoRMS API request: %w", err)
	}
	defer resp.Body.Close()

	// WoRMS answers 204 for names it does not know.
	if resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("WoRMS API returned HTTP %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("parsing WoRMS response: %w", err)
	}
	return nil
}

// WoRMS API JSON structures.
type wormsRecord struct {
	AphiaID        int    `json:"AphiaID"`
	ScientificName string `json:"scientificname"`
	Authority      string `json:"authority"`
	Citation       string `json:"citation"`
	IsFossil       int    `json:"isFossil"`
}

type wormsSource struct {
	Use       string `json:"use"`
	Reference string `json:"reference"`
	DOI       string `json:"doi"`
	URL       string `json:"url"`
}
