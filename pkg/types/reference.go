// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the taxoref pipeline:
// queries, parsed authorities, candidate references produced by source
// adapters, and the resolved result persisted to the cache.
package types

import "time"

// TaxonQuery is the input to a resolution request. It is constructed once
// per request and never mutated.
type TaxonQuery struct {
	// Name is the scientific name, genus plus optional species epithet
	// (e.g. "Enchodus petrosus").
	Name string `json:"name" yaml:"name"`

	// Authority is the known taxonomic authority string, if any
	// (e.g. "Cope, 1874" or "(Whitley, 1939)").
	Authority string `json:"authority,omitempty" yaml:"authority,omitempty"`

	// Year is the known publication year, if the caller already has it.
	// When nil the resolver derives it from Authority.
	Year *int `json:"year,omitempty" yaml:"year,omitempty"`
}

// Authority is a parsed taxonomic-authority string. Derived from
// TaxonQuery.Authority by the textextract package; never persisted.
type Authority struct {
	// Raw is the authority text as received.
	Raw string

	// Author is the extracted author name, "" when nothing remains
	// after stripping parentheses and year tokens.
	Author string

	// Year is the extracted 4-digit year, nil when absent.
	Year *int
}

// ReferenceCandidate is a publication found by a source adapter. Candidates
// are transient per query and immutable once constructed; a better candidate
// supersedes, it never patches an earlier one in place.
type ReferenceCandidate struct {
	// Title is the paper title as returned by the source.
	Title string `json:"title,omitempty" yaml:"title,omitempty"`

	// Authors lists author names in source order.
	Authors []string `json:"authors,omitempty" yaml:"authors,omitempty"`

	// Year is the publication year as text ("1874"); sources disagree on
	// whether they return strings or numbers, so it is normalized to an
	// integer only at comparison time.
	Year string `json:"year,omitempty" yaml:"year,omitempty"`

	// Journal, Volume, and Pages carry bibliographic detail when the
	// source provides it.
	Journal string `json:"journal,omitempty" yaml:"journal,omitempty"`
	Volume  string `json:"volume,omitempty" yaml:"volume,omitempty"`
	Pages   string `json:"pages,omitempty" yaml:"pages,omitempty"`

	// DOI and URL identify and link the paper when known.
	DOI string `json:"doi,omitempty" yaml:"doi,omitempty"`
	URL string `json:"url,omitempty" yaml:"url,omitempty"`

	// Citation is the full reference text as recorded by a registry
	// (GBIF publishedIn, WoRMS citation, PBDB ref). Registry adapters
	// fill this; bibliographic adapters fill Title/Journal instead.
	Citation string `json:"citation,omitempty" yaml:"citation,omitempty"`

	// TaxonomicAuthority is the "Author, Year" attribution recorded by a
	// registry for the queried name.
	TaxonomicAuthority string `json:"taxonomic_authority,omitempty" yaml:"taxonomic_authority,omitempty"`

	// MatchedName is the canonical name the registry matched the query
	// against, when it reports one.
	MatchedName string `json:"matched_name,omitempty" yaml:"matched_name,omitempty"`

	// Source identifies the adapter that produced this candidate
	// (e.g. "GBIF", "WoRMS", "CrossRef", "PBDB").
	Source string `json:"source" yaml:"source"`

	// Confidence is a per-source heuristic in [0,1]. Values are not
	// comparable across adapters and are stripped before caching.
	Confidence float64 `json:"confidence,omitempty" yaml:"confidence,omitempty"`
}

// ResolvedReference is the final answer for a TaxonQuery.
type ResolvedReference struct {
	// SearchTerm is the name as queried, whitespace-trimmed.
	SearchTerm string `json:"search_term" yaml:"search_term"`

	// Authority is the selected taxonomic authority, "" when no source
	// supplied one.
	Authority string `json:"taxonomic_authority,omitempty" yaml:"taxonomic_authority,omitempty"`

	// Year is the authority year, nil when unknown.
	Year *int `json:"year,omitempty" yaml:"year,omitempty"`

	// Author is the authority's author name.
	Author string `json:"author,omitempty" yaml:"author,omitempty"`

	// Reference is the chosen citation text, "" when every candidate was
	// rejected.
	Reference string `json:"reference,omitempty" yaml:"reference,omitempty"`

	// DOI and PaperLink locate the paper when a bibliographic lookup
	// succeeded.
	DOI       string `json:"doi,omitempty" yaml:"doi,omitempty"`
	PaperLink string `json:"paper_link,omitempty" yaml:"paper_link,omitempty"`

	// Source names the adapter that supplied the authority, annotated as
	// "GBIF (ref: PBDB)" when the reference came from a different one.
	Source string `json:"source,omitempty" yaml:"source,omitempty"`

	// YearMismatch is true when candidates existed but every one was
	// rejected because its year did not equal the authority year.
	YearMismatch bool `json:"year_mismatch" yaml:"year_mismatch"`

	// FromCache is set by the cache layer on reads. Never persisted.
	FromCache bool `json:"from_cache,omitempty" yaml:"from_cache,omitempty"`
}

// Found reports whether the result carries any usable information.
func (r *ResolvedReference) Found() bool {
	return r.Authority != "" || r.Reference != ""
}

// CacheEntry is a persisted ResolvedReference with its creation time. The
// store is append-only; lookups select the most recent matching row.
type CacheEntry struct {
	ResolvedReference
	Timestamp time.Time `json:"timestamp" yaml:"timestamp"`
}
