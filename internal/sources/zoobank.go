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

// zoobankAPIBase is the ZooBank name search endpoint. Declared as a var so
// tests can substitute an httptest server.
var zoobankAPIBase = "https://zoobank.org/NomenclatorZoologicus/api/name/search"

// ZooBank queries the ZooBank nomenclator, the ICZN's registry of
// zoological names. When a name is registered, the record points straight
// at the original publication.
type ZooBank struct {
	Client    *http.Client
	UserAgent string
	memo      *gocache.Cache
}

// NewZooBank constructs the adapter.
func NewZooBank(cfg types.SourcesConfig) *ZooBank {
	return &ZooBank{
		Client:    newClient(cfg.HTTPConfig),
		UserAgent: cfg.UserAgent,
		memo:      newMemo(cfg.ResponseCacheTTL),
	}
}

// Name returns the source identifier.
func (s *ZooBank) Name() string { return "ZooBank" }

// Lookup searches ZooBank for an exact name match.
func (s *ZooBank) Lookup(ctx context.Context, name string) (*types.ReferenceCandidate, error) {
	if cand, ok := memoGet(s.memo, name); ok {
		return cand, nil
	}

	params := url.Values{
		"name":   {name},
		"exact":  {"true"},
		"format": {"json"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, zoobankAPIBase+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", s.UserAgent)

	resp, err := httputil.DoWithRetry(ctx, s.Client, req, 0)
	if err != nil {
		return nil, fmt.Errorf("ZooBank API request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("ZooBank API returned HTTP %d", resp.StatusCode)
	}

	var records []zoobankRecord
	if err := json.NewDecoder(resp.Body).Decode(&records); err != nil {
		return nil, fmt.Errorf("parsing ZooBank response: %w", err)
	}
	if len(records) == 0 {
		return nil, nil
	}

	rec := records[0]
	cand := &types.ReferenceCandidate{
		MatchedName:        rec.NameString,
		TaxonomicAuthority: rec.Authorship,
		Citation:           rec.OriginalPublication,
		DOI:                rec.DOI,
		Source:             "ZooBank",
		Confidence:         0.5,
	}
	if rec.OriginalPublication != "" {
		cand.Confidence = 0.8
	}
	if y := textextract.Year(rec.AuthorshipYear); y != nil {
		cand.Year = fmt.Sprintf("%d", *y)
	} else if y := textextract.Year(rec.Authorship); y != nil {
		cand.Year = fmt.Sprintf("%d", *y)
	}
	if author := textextract.Author(rec.Authorship); author != "" {
		cand.Authors = []string{author}
	}

	s.memo.SetDefault(name, cand)
	return cand, nil
}

// ZooBank API JSON structure.
type zoobankRecord struct {
	NameString          string `json:"namestring"`
	Authorship          string `json:"authorship"`
	AuthorshipYear      string `json:"authorship_year"`
	OriginalPublication string `json:"original_publication"`
	DOI                 string `json:"doi"`
}
