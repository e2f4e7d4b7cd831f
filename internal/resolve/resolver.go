// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package resolve

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/pdiddy/taxoref/internal/sources"
	"github.com/pdiddy/taxoref/internal/textextract"
	"github.com/pdiddy/taxoref/pkg/types"
)

// CandidateCache persists resolved candidates between runs. Implemented by
// the cache package's Store; nil disables persistence.
type CandidateCache interface {
	GetCandidate(key string) (*types.ReferenceCandidate, bool)
	PutCandidate(key string, cand *types.ReferenceCandidate) error
}

// BibliographicSearcher finds papers by author/year or title. Implemented
// by sources.CrossRef.
type BibliographicSearcher interface {
	SearchByAuthorYear(ctx context.Context, author, year, genus string) (*types.ReferenceCandidate, error)
	SearchByTitle(ctx context.Context, title, author, year string) (*types.ReferenceCandidate, error)
}

// OriginalDescriber returns a registry's flagged original description.
// Implemented by sources.WoRMS.
type OriginalDescriber interface {
	OriginalDescription(ctx context.Context, name string) (*types.ReferenceCandidate, error)
}

// PublicationSearcher finds scanned historical publications. Implemented by
// sources.BHL.
type PublicationSearcher interface {
	SearchPublication(ctx context.Context, author, year string) (*types.ReferenceCandidate, error)
}

// marineKeywords select taxa worth asking the marine registry about. The
// registry covers far more than these groups, but outside them a miss is
// near certain and the call is wasted.
var marineKeywords = []string{
	"shark", "ray", "fish", "coral",
	"squalicorax", "enchodus", "mosasaur", "plesiosaur", "ichthyosaur",
}

// Request carries everything the resolver knows about one taxon before
// going to external services.
type Request struct {
	// Name is the scientific name being resolved.
	Name string

	// Author and Year come from the taxonomic authority.
	Author string
	Year   *int

	// LocalCitation is the reference text the local record carries, used
	// by the title strategy and for validation.
	LocalCitation string

	// Mismatch is true when the local citation credits a different
	// publication than the authority does.
	Mismatch bool
}

// Resolver chases a taxonomic authority to its original publication through
// bibliographic services. Strategy depends on whether the local citation is
// trusted: a mismatched citation triggers an author/year hunt across
// services, a trusted one just gets its title confirmed.
type Resolver struct {
	CrossRef BibliographicSearcher
	WoRMS    OriginalDescriber
	BHL      PublicationSearcher

	// Cache persists successful resolutions. Optional.
	Cache CandidateCache

	// InterCallDelay spaces outbound calls to distinct services. Zero
	// disables the delay.
	InterCallDelay time.Duration

	// HistoricalCutoff is the year below which the scanned-literature
	// service joins the chain.
	HistoricalCutoff int

	// Log receives progress lines. Optional.
	Log io.Writer
}

// NewResolver wires a resolver from configuration.
func NewResolver(cfg types.Config, cache CandidateCache) *Resolver {
	crossref := sources.NewCrossRef(cfg.Sources)
	crossref.MinTitleWords = cfg.Scoring.MinTitleWords
	crossref.TitleWindowRatio = cfg.Scoring.TitleWindowRatio
	return &Resolver{
		CrossRef:         crossref,
		WoRMS:            sources.NewWoRMS(cfg.Sources),
		BHL:              sources.NewBHL(cfg.Sources),
		Cache:            cache,
		InterCallDelay:   cfg.Resolver.InterCallDelay,
		HistoricalCutoff: cfg.Resolver.HistoricalCutoff,
	}
}

// Resolve runs the strategy for the request and returns the first
// acceptable candidate, or (nil, nil) when every service came up empty.
// Successful results are cached with confidence stripped; confidence is a
// per-source heuristic that would be stale on a later read.
func (r *Resolver) Resolve(ctx context.Context, req Request) (*types.ReferenceCandidate, error) {
	key := r.cacheKey(req)
	if r.Cache != nil && key != "" {
		if cand, ok := r.Cache.GetCandidate(key); ok {
			return cand, nil
		}
	}

	var cand *types.ReferenceCandidate
	var err error
	if req.Mismatch {
		cand, err = r.resolveByAuthorYear(ctx, req)
	} else {
		cand, err = r.resolveByTitle(ctx, req)
	}
	if err != nil || cand == nil {
		return nil, err
	}

	if r.Cache != nil && key != "" {
		stored := *cand
		stored.Confidence = 0
		if err := r.Cache.PutCandidate(key, &stored); err != nil {
			r.logf("warning: caching %q: %v\n", key, err)
		}
	}
	return cand, nil
}

// resolveByAuthorYear hunts for the original publication by the authority's
// author and year. Services are tried in order of precision; the first hit
// wins. No year means nothing to anchor the search, so it gives up early.
func (r *Resolver) resolveByAuthorYear(ctx context.Context, req Request) (*types.ReferenceCandidate, error) {
	if req.Year == nil || req.Author == "" {
		return nil, nil
	}
	year := fmt.Sprintf("%d", *req.Year)
	genus := firstToken(strings.ToLower(req.Name))

	type step struct {
		name string
		run  func(context.Context) (*types.ReferenceCandidate, error)
	}
	steps := []step{
		{"CrossRef", func(ctx context.Context) (*types.ReferenceCandidate, error) {
			return r.CrossRef.SearchByAuthorYear(ctx, req.Author, year, genus)
		}},
	}
	if isMarineTaxon(req.Name) {
		steps = append(steps, step{"WoRMS", func(ctx context.Context) (*types.ReferenceCandidate, error) {
			return r.WoRMS.OriginalDescription(ctx, req.Name)
		}})
	}
	if *req.Year < r.HistoricalCutoff {
		steps = append(steps, step{"BHL", func(ctx context.Context) (*types.ReferenceCandidate, error) {
			return r.BHL.SearchPublication(ctx, req.Author, year)
		}})
	}

	for i, s := range steps {
		if i > 0 {
			if err := r.pause(ctx); err != nil {
				return nil, err
			}
		}
		cand, err := s.run(ctx)
		if err != nil {
			r.logf("warning: %s lookup for %q: %v\n", s.name, req.Name, err)
			continue
		}
		if cand != nil {
			return cand, nil
		}
	}
	return nil, nil
}

// resolveByTitle confirms a trusted local citation by finding the paper it
// names. A known authority year narrows the search to that year.
func (r *Resolver) resolveByTitle(ctx context.Context, req Request) (*types.ReferenceCandidate, error) {
	title := textextract.TitleFromCitation(req.LocalCitation)
	if title == "" {
		return nil, nil
	}
	year := ""
	if req.Year != nil {
		year = fmt.Sprintf("%d", *req.Year)
	}
	cand, err := r.CrossRef.SearchByTitle(ctx, title, req.Author, year)
	if err != nil {
		r.logf("warning: CrossRef title lookup for %q: %v\n", req.Name, err)
		return nil, nil
	}
	return cand, nil
}

func (r *Resolver) cacheKey(req Request) string {
	if req.Mismatch {
		if req.Year == nil || req.Author == "" {
			return ""
		}
		return fmt.Sprintf("%s:%s %d", req.Name, req.Author, *req.Year)
	}
	title := textextract.TitleFromCitation(req.LocalCitation)
	if title == "" {
		return ""
	}
	return "title:" + title
}

func (r *Resolver) pause(ctx context.Context) error {
	if r.InterCallDelay <= 0 {
		return nil
	}
	select {
	case <-time.After(r.InterCallDelay):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (r *Resolver) logf(format string, args ...any) {
	if r.Log != nil {
		fmt.Fprintf(r.Log, format, args...)
	}
}

// isMarineTaxon reports whether the name suggests a marine group.
func isMarineTaxon(name string) bool {
	lower := strings.ToLower(name)
	for _, kw := range marineKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}
