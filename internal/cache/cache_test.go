// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package cache

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/taxoref/pkg/types"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := OpenMemory()
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleResult() *types.ResolvedReference {
	year := 1874
	return &types.ResolvedReference{
		SearchTerm: "Enchodus petrosus",
		Authority:  "Cope, 1874",
		Year:       &year,
		Author:     "Cope",
		Reference:  "Cope, E. D. 1874. Review of the Vertebrata of the Cretaceous period.",
		DOI:        "10.5555/cope1874",
		PaperLink:  "https://doi.org/10.5555/cope1874",
		Source:     "GBIF (ref: PBDB)",
	}
}

func TestStoreAndLookup(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Store(sampleResult()))

	got, ok := s.Lookup("Enchodus petrosus")
	require.True(t, ok)
	assert.Equal(t, "Enchodus petrosus", got.SearchTerm)
	assert.Equal(t, "Cope, 1874", got.Authority)
	require.NotNil(t, got.Year)
	assert.Equal(t, 1874, *got.Year)
	assert.Equal(t, "Cope", got.Author)
	assert.Equal(t, "10.5555/cope1874", got.DOI)
	assert.True(t, got.FromCache, "cache reads must set FromCache")
	assert.False(t, got.YearMismatch)
}

func TestLookupCaseInsensitive(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Store(sampleResult()))

	got, ok := s.Lookup("ENCHODUS petrosus")
	require.True(t, ok)
	assert.Equal(t, "Enchodus petrosus", got.SearchTerm)
}

func TestLookupMiss(t *testing.T) {
	s := newTestStore(t)
	_, ok := s.Lookup("Tyrannosaurus rex")
	assert.False(t, ok)
}

func TestLookupMostRecentWins(t *testing.T) {
	s := newTestStore(t)

	first := sampleResult()
	first.Reference = "stale reference"
	require.NoError(t, s.Store(first))

	second := sampleResult()
	require.NoError(t, s.Store(second))

	got, ok := s.Lookup("enchodus petrosus")
	require.True(t, ok)
	assert.Equal(t, second.Reference, got.Reference)
}

func TestStoreNilYearAndMismatch(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Store(&types.ResolvedReference{
		SearchTerm:   "Squalicorax kaupi",
		Authority:    "Whitley, 1939",
		YearMismatch: true,
	}))

	got, ok := s.Lookup("Squalicorax kaupi")
	require.True(t, ok)
	assert.Nil(t, got.Year)
	assert.True(t, got.YearMismatch)
	assert.Empty(t, got.Reference)
}

func TestCandidateRoundTrip(t *testing.T) {
	s := newTestStore(t)
	cand := &types.ReferenceCandidate{
		Title:   "Taxonomic notes on sharks and rays",
		Authors: []string{"Whitley"},
		Year:    "1939",
		Source:  "CrossRef",
	}
	require.NoError(t, s.PutCandidate("Squalicorax kaupi:Whitley 1939", cand))

	got, ok := s.GetCandidate("Squalicorax kaupi:Whitley 1939")
	require.True(t, ok)
	assert.Equal(t, cand.Title, got.Title)
	assert.Equal(t, cand.Authors, got.Authors)

	_, ok = s.GetCandidate("missing key")
	assert.False(t, ok)
}

func TestClear(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Store(sampleResult()))
	require.NoError(t, s.PutCandidate("k", &types.ReferenceCandidate{Title: "x"}))

	require.NoError(t, s.Clear())

	_, ok := s.Lookup("Enchodus petrosus")
	assert.False(t, ok)
	_, ok = s.GetCandidate("k")
	assert.False(t, ok)
}

func TestStats(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Store(sampleResult()))

	other := sampleResult()
	other.SearchTerm = "Squalicorax kaupi"
	other.Source = "WoRMS"
	require.NoError(t, s.Store(other))
	require.NoError(t, s.PutCandidate("k", &types.ReferenceCandidate{Title: "x"}))

	st, err := s.Stats()
	require.NoError(t, err)
	assert.Equal(t, 2, st.Results)
	assert.Equal(t, 1, st.Candidates)
	assert.Equal(t, 1, st.BySource["WoRMS"])
	assert.Equal(t, 1, st.BySource["GBIF (ref: PBDB)"])
	// Most recent first.
	require.Len(t, st.Recent, 2)
	assert.Equal(t, "Squalicorax kaupi", st.Recent[0].SearchTerm)
	assert.Equal(t, "WoRMS", st.Recent[0].Source)
	assert.False(t, st.Recent[0].Timestamp.IsZero())
}

func TestOpenCreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "results.db")
	s, err := Open(types.CacheConfig{Path: path})
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Store(sampleResult()))
	_, ok := s.Lookup("Enchodus petrosus")
	assert.True(t, ok)
}
