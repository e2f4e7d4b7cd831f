// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"unicode"

	gocache "github.com/patrickmn/go-cache"

	"github.com/pdiddy/taxoref/internal/httputil"
	"github.com/pdiddy/taxoref/pkg/types"
)

// crossrefAPIBase is the CrossRef works endpoint. Declared as a var so
// tests can substitute an httptest server.
var crossrefAPIBase = "https://api.crossref.org/works"

// CrossRef searches the CrossRef bibliographic index. Unlike the registry
// adapters it does not look up taxon names directly; the resolver drives it
// with author/year or title queries built from registry output.
type CrossRef struct {
	Client    *http.Client
	UserAgent string
	Mailto    string

	// MinTitleWords caps the shared-word requirement for title matching;
	// TitleWindowRatio is the share of a query window that must match.
	// Zero values select the defaults (3 and 0.5).
	MinTitleWords    int
	TitleWindowRatio float64

	memo *gocache.Cache
}

// NewCrossRef constructs the adapter. Supplying a mailto address opts in to
// CrossRef's polite pool, which gets more generous rate limits.
func NewCrossRef(cfg types.SourcesConfig) *CrossRef {
	return &CrossRef{
		Client:    newClient(cfg.HTTPConfig),
		UserAgent: cfg.UserAgent,
		Mailto:    cfg.CrossRefMailto,
		memo:      newMemo(cfg.ResponseCacheTTL),
	}
}

// Name returns the source identifier.
func (s *CrossRef) Name() string { return "CrossRef" }

// titleStopwords are dropped when comparing titles word by word.
var titleStopwords = map[string]bool{
	"the": true, "a": true, "an": true, "of": true, "in": true, "on": true,
	"and": true, "or": true, "for": true, "from": true, "to": true,
	"by": true, "with": true,
}

// SearchByAuthorYear finds the paper in which the author described the
// genus in the given year. The author string is cleaned of parentheses and
// digits before querying; candidate papers must list a matching author
// family name.
func (s *CrossRef) SearchByAuthorYear(ctx context.Context, author, year, genus string) (*types.ReferenceCandidate, error) {
	cleaned := cleanAuthor(author)
	if cleaned == "" || year == "" {
		return nil, nil
	}

	key := fmt.Sprintf("ay:%s:%s:%s", cleaned, year, genus)
	if cand, ok := memoGet(s.memo, key); ok {
		return cand, nil
	}

	params := url.Values{
		"query":  {cleaned + " " + genus},
		"filter": {fmt.Sprintf("from-pub-date:%s-01-01,until-pub-date:%s-12-31", year, year)},
		"rows":   {"5"},
	}
	items, err := s.query(ctx, params)
	if err != nil {
		return nil, err
	}

	lowerAuthor := strings.ToLower(cleaned)
	for i := range items {
		if !itemHasAuthor(&items[i], lowerAuthor) {
			continue
		}
		cand := itemToCandidate(&items[i], 0.8)
		s.memo.SetDefault(key, cand)
		return cand, nil
	}
	return nil, nil
}

// SearchByTitle finds the paper whose title matches the given one. Titles
// shorter than 10 characters are too ambiguous to query. A non-empty year
// narrows the query to publications from that year. A hit must share at
// least half of the query's significant words, capped at MinTitleWords,
// with the query title; when author is non-empty the hit must also list it.
func (s *CrossRef) SearchByTitle(ctx context.Context, title, author, year string) (*types.ReferenceCandidate, error) {
	title = strings.TrimSpace(title)
	if len(title) < 10 {
		return nil, nil
	}

	key := "title:" + title + ":" + author + ":" + year
	if cand, ok := memoGet(s.memo, key); ok {
		return cand, nil
	}

	params := url.Values{
		"query.bibliographic": {`"` + title + `"`},
		"rows":                {"10"},
	}
	if year != "" {
		params.Set("filter", fmt.Sprintf("from-pub-date:%s-01-01,until-pub-date:%s-12-31", year, year))
	}
	items, err := s.query(ctx, params)
	if err != nil {
		return nil, err
	}

	queryWords := significantWords(title)
	needed := len(queryWords) / 2
	if limit := s.minTitleWords(); needed > limit {
		needed = limit
	}
	if needed < 1 {
		needed = 1
	}
	lowerAuthor := strings.ToLower(cleanAuthor(author))

	for i := range items {
		if len(items[i].Title) == 0 {
			continue
		}
		if wordOverlap(queryWords, significantWords(items[i].Title[0])) < needed {
			continue
		}
		if lowerAuthor != "" && !itemHasAuthor(&items[i], lowerAuthor) {
			continue
		}
		cand := itemToCandidate(&items[i], 0.7)
		s.memo.SetDefault(key, cand)
		return cand, nil
	}
	return nil, nil
}

// BackfillDOI finds a DOI and link for a reference chosen from a registry
// that records citations but not identifiers. Only the first five words of
// the title are queried; registry citation strings trail off into journal
// detail that hurts matching.
func (s *CrossRef) BackfillDOI(ctx context.Context, title string) (doi, link string, err error) {
	words := strings.Fields(title)
	if len(words) > 5 {
		words = words[:5]
	}
	window := strings.Join(words, " ")
	if window == "" {
		return "", "", nil
	}

	params := url.Values{
		"query.bibliographic": {window},
		"rows":                {"5"},
		"select":              {"DOI,URL,title,author,published-print,published-online"},
	}
	items, qerr := s.query(ctx, params)
	if qerr != nil {
		return "", "", qerr
	}

	queryWords := significantWords(window)
	ratio := s.TitleWindowRatio
	if ratio <= 0 {
		ratio = 0.5
	}
	needed := int(float64(len(queryWords))*ratio + 0.5)
	if limit := s.minTitleWords(); needed > limit {
		needed = limit
	}
	if needed < 1 {
		needed = 1
	}
	for i := range items {
		if len(items[i].Title) == 0 || items[i].DOI == "" {
			continue
		}
		if wordOverlap(queryWords, significantWords(items[i].Title[0])) < needed {
			continue
		}
		link := items[i].URL
		if link == "" {
			link = "https://doi.org/" + items[i].DOI
		}
		return items[i].DOI, link, nil
	}
	return "", "", nil
}

func (s *CrossRef) query(ctx context.Context, params url.Values) ([]crossrefItem, error) {
	if s.Mailto != "" {
		params.Set("mailto", s.Mailto)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, crossrefAPIBase+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", s.UserAgent)

	resp, err := httputil.DoWithRetry(ctx, s.Client, req, 0)
	if err != nil {
		return nil, fmt.Errorf("CrossRef API request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("CrossRef API returned HTTP %d", resp.StatusCode)
	}

	var result crossrefResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("parsing CrossRef response: %w", err)
	}
	return result.Message.Items, nil
}

// minTitleWords returns the configured shared-word cap, defaulting to 3.
func (s *CrossRef) minTitleWords() int {
	if s.MinTitleWords > 0 {
		return s.MinTitleWords
	}
	return 3
}

// cleanAuthor strips parentheses and digits from a taxonomic author string,
// leaving just the name for bibliographic matching.
func cleanAuthor(author string) string {
	var b strings.Builder
	for _, r := range author {
		if r == '(' || r == ')' || unicode.IsDigit(r) {
			continue
		}
		b.WriteRune(r)
	}
	return strings.TrimSpace(strings.TrimRight(strings.TrimSpace(b.String()), ","))
}

// significantWords lowercases and filters out stopwords and short tokens.
func significantWords(text string) []string {
	var words []string
	for _, w := range strings.Fields(strings.ToLower(text)) {
		w = strings.Trim(w, `.,;:"'()`)
		if len(w) > 2 && !titleStopwords[w] {
			words = append(words, w)
		}
	}
	return words
}

// wordOverlap counts distinct query words present in the candidate words.
func wordOverlap(query, candidate []string) int {
	set := make(map[string]bool, len(candidate))
	for _, w := range candidate {
		set[w] = true
	}
	seen := make(map[string]bool, len(query))
	count := 0
	for _, w := range query {
		if set[w] && !seen[w] {
			seen[w] = true
			count++
		}
	}
	return count
}

func itemHasAuthor(item *crossrefItem, lowerFamily string) bool {
	for _, a := range item.Author {
		family := strings.ToLower(a.Family)
		if family == "" {
			continue
		}
		if strings.Contains(family, lowerFamily) || strings.Contains(lowerFamily, family) {
			return true
		}
	}
	return false
}

func itemToCandidate(item *crossrefItem, confidence float64) *types.ReferenceCandidate {
	cand := &types.ReferenceCandidate{
		DOI:        item.DOI,
		URL:        item.URL,
		Volume:     item.Volume,
		Pages:      item.Page,
		Source:     "CrossRef",
		Confidence: confidence,
	}
	if len(item.Title) > 0 {
		cand.Title = item.Title[0]
	}
	if len(item.ContainerTitle) > 0 {
		cand.Journal = item.ContainerTitle[0]
	}
	for _, a := range item.Author {
		name := strings.TrimSpace(a.Given + " " + a.Family)
		if name != "" {
			cand.Authors = append(cand.Authors, name)
		}
	}
	if y := item.year(); y != "" {
		cand.Year = y
	}
	if cand.URL == "" && cand.DOI != "" {
		cand.URL = "https://doi.org/" + cand.DOI
	}
	return cand
}

// CrossRef API JSON structures.
type crossrefResponse struct {
	Message struct {
		Items []crossrefItem `json:"items"`
	} `json:"message"`
}

type crossrefItem struct {
	Title           []string       `json:"title"`
	Author          []crossrefName `json:"author"`
	ContainerTitle  []string       `json:"container-title"`
	Volume          string         `json:"volume"`
	Page            string         `json:"page"`
	DOI             string         `json:"DOI"`
	URL             string         `json:"URL"`
	PublishedPrint  crossrefDate   `json:"published-print"`
	PublishedOnline crossrefDate   `json:"published-online"`
}

type crossrefName struct {
	Given  string `json:"given"`
	Family string `json:"family"`
}

type crossrefDate struct {
	DateParts [][]int `json:"date-parts"`
}

func (i *crossrefItem) year() string {
	for _, d := range []crossrefDate{i.PublishedPrint, i.PublishedOnline} {
		if len(d.DateParts) > 0 && len(d.DateParts[0]) > 0 {
			return fmt.Sprintf("%d", d.DateParts[0][0])
		}
	}
	return ""
}
