// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package sources

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

const sampleZooBankJSON = `[{
  "namestring": "Enchodus petrosus",
  "authorship": "Cope, 1874",
  "authorship_year": "1874",
  "original_publication": "Cope, E. D. 1874. Review of the Vertebrata of the Cretaceous period found west of the Mississippi River. Bulletin of the United States Geological and Geographical Survey of the Territories 1(2): 3-48.",
  "doi": ""
}]`

func zoobankTestServer(body string) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, body)
	}))
}

func TestZooBankLookup(t *testing.T) {
	ts := zoobankTestServer(sampleZooBankJSON)
	defer ts.Close()

	old := zoobankAPIBase
	zoobankAPIBase = ts.URL
	defer func() { zoobankAPIBase = old }()

	s := NewZooBank(testSourcesConfig())
	cand, err := s.Lookup(context.Background(), "Enchodus petrosus")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if cand == nil {
		t.Fatal("Lookup returned nil candidate for registered name")
	}
	if cand.MatchedName != "Enchodus petrosus" {
		t.Errorf("MatchedName = %q", cand.MatchedName)
	}
	if cand.Year != "1874" {
		t.Errorf("Year = %q, want 1874", cand.Year)
	}
	if len(cand.Authors) != 1 || cand.Authors[0] != "Cope" {
		t.Errorf("Authors = %v, want [Cope]", cand.Authors)
	}
	// Registered original publication raises confidence to 0.8.
	if cand.Confidence != 0.8 {
		t.Errorf("Confidence = %v, want 0.8", cand.Confidence)
	}
}

func TestZooBankLookupNoOriginalPublication(t *testing.T) {
	ts := zoobankTestServer(`[{"namestring": "Enchodus petrosus", "authorship": "Cope, 1874"}]`)
	defer ts.Close()

	old := zoobankAPIBase
	zoobankAPIBase = ts.URL
	defer func() { zoobankAPIBase = old }()

	s := NewZooBank(testSourcesConfig())
	cand, err := s.Lookup(context.Background(), "Enchodus petrosus")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if cand.Confidence != 0.5 {
		t.Errorf("Confidence = %v, want 0.5 without original publication", cand.Confidence)
	}
	// Year falls back to the authorship string when authorship_year is absent.
	if cand.Year != "1874" {
		t.Errorf("Year = %q, want 1874 from authorship fallback", cand.Year)
	}
}

func TestZooBankLookupEmpty(t *testing.T) {
	ts := zoobankTestServer(`[]`)
	defer ts.Close()

	old := zoobankAPIBase
	zoobankAPIBase = ts.URL
	defer func() { zoobankAPIBase = old }()

	s := NewZooBank(testSourcesConfig())
	cand, err := s.Lookup(context.Background(), "Nonexistus fakeus")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if cand != nil {
		t.Errorf("Lookup = %+v, want nil for unregistered name", cand)
	}
}
