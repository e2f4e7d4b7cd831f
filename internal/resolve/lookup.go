// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package resolve

import (
	"context"
	"strconv"
	"strings"

	"github.com/pdiddy/taxoref/internal/sources"
	"github.com/pdiddy/taxoref/internal/textextract"
	"github.com/pdiddy/taxoref/pkg/types"
)

// Result is the outcome of one local-first lookup.
type Result struct {
	// Name is the queried name, whitespace-trimmed.
	Name string

	// Local is the record from the offline dataset, nil when the dataset
	// has no row for the name.
	Local *types.ReferenceCandidate

	// External is the externally resolved original publication, attached
	// only when it passed validation.
	External *types.ReferenceCandidate

	// Mismatch is true when the local citation credits a different
	// publication than the local authority.
	Mismatch bool

	// ResolutionAttempted is true when external services were consulted.
	ResolutionAttempted bool

	// ValidationFailed is true when a candidate was found but rejected as
	// unrelated to the local citation.
	ValidationFailed bool
}

// Found reports whether the lookup produced any record at all.
func (r *Result) Found() bool { return r.Local != nil }

// Lookup runs the local-first pipeline: offline dataset, mismatch check,
// external resolution, validation. The dataset answers first because it
// usually records the original description verbatim; external services are
// only consulted to repair or confirm what it says.
type Lookup struct {
	Dataset  *sources.PBDB
	Resolver *Resolver
	Scoring  types.ScoringConfig

	// NoResolve skips external services entirely, for offline runs.
	NoResolve bool
}

// NewLookup wires the pipeline from configuration.
func NewLookup(cfg types.Config, cache CandidateCache) *Lookup {
	return &Lookup{
		Dataset:  sources.NewPBDB(cfg.Sources),
		Resolver: NewResolver(cfg, cache),
		Scoring:  cfg.Scoring,
	}
}

// Run looks up one query. A dataset miss returns an empty Result, not an
// error; errors are reserved for a broken dataset or cancelled context.
// An authority or year the caller already knows overrides what the dataset
// records.
func (l *Lookup) Run(ctx context.Context, q types.TaxonQuery) (*Result, error) {
	name := strings.TrimSpace(q.Name)
	res := &Result{Name: name}

	local, err := l.Dataset.Lookup(ctx, name)
	if err != nil {
		return nil, err
	}
	if local == nil {
		return res, nil
	}
	res.Local = local

	authority := local.TaxonomicAuthority
	if q.Authority != "" {
		authority = q.Authority
	}

	refAuthor := textextract.AuthorFromCitation(local.Citation)
	refYear := ""
	if y := textextract.Year(local.Citation); y != nil {
		refYear = strconv.Itoa(*y)
	}
	res.Mismatch = HasMismatch(authority, refAuthor, refYear)

	if l.NoResolve {
		return res, nil
	}

	auth := textextract.ParseAuthority(authority)
	if q.Year != nil {
		auth.Year = q.Year
	}
	req := Request{
		Name:          name,
		Author:        auth.Author,
		Year:          auth.Year,
		LocalCitation: local.Citation,
		Mismatch:      res.Mismatch,
	}
	res.ResolutionAttempted = true

	cand, err := l.Resolver.Resolve(ctx, req)
	if err != nil {
		return nil, err
	}
	if cand == nil {
		return res, nil
	}

	if ValidateMatch(local.Citation, cand, res.Mismatch, l.Scoring) {
		res.External = cand
	} else {
		res.ValidationFailed = true
	}
	return res, nil
}
