// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package aggregate runs a name past every registry at once and merges the
// answers into a single resolved reference. The registries disagree
// constantly; the merge rules favor the original description over database
// exports and refuse any citation whose year contradicts the taxonomic
// authority.
package aggregate

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/pdiddy/taxoref/internal/sources"
	"github.com/pdiddy/taxoref/internal/textextract"
	"github.com/pdiddy/taxoref/pkg/types"
)

// databasePhrases mark a citation as a modern database export rather than a
// primary publication.
var databasePhrases = []string{
	"accessed through", "fishbase", "world register", "editors", "database",
}

// ResultCache persists resolved references between runs. Implemented by the
// cache package's Store; nil disables persistence.
type ResultCache interface {
	Lookup(term string) (*types.ResolvedReference, bool)
	Store(ref *types.ResolvedReference) error
}

// DOIBackfiller locates an identifier for a citation that lacks one.
// Implemented by sources.CrossRef.
type DOIBackfiller interface {
	BackfillDOI(ctx context.Context, title string) (doi, link string, err error)
}

// Aggregator queries every configured source and merges their candidates.
type Aggregator struct {
	// Sources are queried in order; all of them, no early stop. Order
	// matters for authority seeding: the first source to report an
	// authority wins that field.
	Sources []sources.Source

	// Backfill locates DOIs for chosen references. Optional.
	Backfill DOIBackfiller

	// Cache persists results. Optional.
	Cache ResultCache

	Scoring types.ScoringConfig

	// InterCallDelay spaces the network calls. Local sources are exempt.
	InterCallDelay time.Duration

	// Log receives per-source warnings. Optional.
	Log io.Writer
}

// New wires the standard source order: GBIF, ZooBank, the local dataset,
// WoRMS. The local dataset sits third so the global registries seed the
// authority, but its citations still dominate scoring.
func New(cfg types.Config, cache ResultCache) *Aggregator {
	crossref := sources.NewCrossRef(cfg.Sources)
	crossref.MinTitleWords = cfg.Scoring.MinTitleWords
	crossref.TitleWindowRatio = cfg.Scoring.TitleWindowRatio
	return &Aggregator{
		Sources: []sources.Source{
			sources.NewGBIF(cfg.Sources),
			sources.NewZooBank(cfg.Sources),
			sources.NewPBDB(cfg.Sources),
			sources.NewWoRMS(cfg.Sources),
		},
		Backfill:       crossref,
		Cache:          cache,
		Scoring:        cfg.Scoring,
		InterCallDelay: cfg.Resolver.InterCallDelay,
	}
}

// Search resolves one name across all sources. With refresh false a cached
// result is returned as-is; source errors are logged and skipped, never
// fatal.
func (a *Aggregator) Search(ctx context.Context, name string, refresh bool) (*types.ResolvedReference, error) {
	name = strings.TrimSpace(name)

	if a.Cache != nil && !refresh {
		if cached, ok := a.Cache.Lookup(name); ok {
			return cached, nil
		}
	}

	candidates := a.collect(ctx, name)
	result := a.merge(ctx, name, candidates)

	if a.Cache != nil {
		if err := a.Cache.Store(result); err != nil {
			a.logf("warning: caching result for %q: %v\n", name, err)
		}
	}
	return result, nil
}

// collect queries every source in order, pausing between network calls.
func (a *Aggregator) collect(ctx context.Context, name string) []*types.ReferenceCandidate {
	var candidates []*types.ReferenceCandidate
	needDelay := false
	for _, src := range a.Sources {
		local := isLocal(src)
		if needDelay && !local {
			if err := a.pause(ctx); err != nil {
				return candidates
			}
		}
		if !local {
			needDelay = true
		}

		cand, err := src.Lookup(ctx, name)
		if err != nil {
			a.logf("warning: %s lookup for %q: %v\n", src.Name(), name, err)
			continue
		}
		if cand != nil {
			candidates = append(candidates, cand)
		}
	}
	return candidates
}

// merge applies authority seeding, the year gate, and scoring.
func (a *Aggregator) merge(ctx context.Context, name string, candidates []*types.ReferenceCandidate) *types.ResolvedReference {
	result := &types.ResolvedReference{SearchTerm: name}

	// Authority: first source to report one wins.
	var authoritySource string
	for _, cand := range candidates {
		if cand.TaxonomicAuthority == "" {
			continue
		}
		result.Authority = cand.TaxonomicAuthority
		result.Source = cand.Source
		authoritySource = cand.Source
		if len(cand.Authors) > 0 {
			result.Author = cand.Authors[0]
		}
		if y, err := strconv.Atoi(cand.Year); err == nil {
			result.Year = &y
		}
		break
	}

	// Year gate: the year is read out of the citation text itself, not the
	// candidate's authority-derived Year field. Registries routinely pair a
	// correct authority with a modern compilation citation; a citation whose
	// own year contradicts the authority year is describing some other
	// publication, however long it is.
	var valid []*types.ReferenceCandidate
	sawReference := false
	for _, cand := range candidates {
		ref := referenceText(cand)
		if ref == "" {
			continue
		}
		sawReference = true
		if result.Year != nil {
			refYear := textextract.Year(ref)
			if refYear == nil || *refYear != *result.Year {
				continue
			}
		}
		valid = append(valid, cand)
	}
	if len(valid) == 0 {
		result.YearMismatch = sawReference
		return result
	}

	best := valid[0]
	bestScore := a.score(best)
	for _, cand := range valid[1:] {
		if s := a.score(cand); s > bestScore {
			best = cand
			bestScore = s
		}
	}

	result.Reference = referenceText(best)
	result.DOI = best.DOI
	result.PaperLink = best.URL
	if authoritySource != "" && best.Source != authoritySource {
		result.Source = fmt.Sprintf("%s (ref: %s)", authoritySource, best.Source)
	} else if authoritySource == "" {
		result.Source = best.Source
	}

	if result.DOI == "" && a.Backfill != nil {
		doi, link, err := a.Backfill.BackfillDOI(ctx, result.Reference)
		if err != nil {
			a.logf("warning: DOI backfill for %q: %v\n", name, err)
		} else if doi != "" {
			result.DOI = doi
			if result.PaperLink == "" {
				result.PaperLink = link
			}
		}
	}
	return result
}

// score rates a year-valid candidate. The local dataset usually holds the
// original description verbatim, database exports rarely do, and between
// two otherwise equal citations the longer one carries more bibliographic
// detail.
func (a *Aggregator) score(cand *types.ReferenceCandidate) int {
	score := 0
	if cand.Source == "PBDB" {
		score += a.Scoring.LocalDatasetBonus
	}
	lower := strings.ToLower(referenceText(cand))
	for _, phrase := range databasePhrases {
		if strings.Contains(lower, phrase) {
			score -= a.Scoring.DatabasePenalty
			break
		}
	}
	score += len(referenceText(cand))
	return score
}

func referenceText(cand *types.ReferenceCandidate) string {
	if cand.Citation != "" {
		return cand.Citation
	}
	return cand.Title
}

func isLocal(src sources.Source) bool {
	l, ok := src.(interface{ Local() bool })
	return ok && l.Local()
}

func (a *Aggregator) pause(ctx context.Context) error {
	if a.InterCallDelay <= 0 {
		return nil
	}
	select {
	case <-time.After(a.InterCallDelay):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (a *Aggregator) logf(format string, args ...any) {
	if a.Log != nil {
		fmt.Fprintf(a.Log, format, args...)
	}
}
