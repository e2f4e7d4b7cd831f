// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package sources

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

const sampleWoRMSMatchJSON = `[[{
  "AphiaID": 105799,
  "scientificname": "Squalicorax",
  "authority": "Whitley, 1939",
  "isFossil": 1
}]]`

const sampleWoRMSRecordJSON = `{
  "AphiaID": 105799,
  "scientificname": "Squalicorax",
  "authority": "Whitley, 1939",
  "citation": "Froese, R. and D. Pauly. Editors. (2024). FishBase. Squalicorax Whitley, 1939. Accessed through: World Register of Marine Species.",
  "isFossil": 1
}`

const sampleWoRMSSourcesJSON = `[
  {"use": "basis of record", "reference": "FishBase. Froese R. & Pauly D. (Editors).", "doi": "", "url": "https://www.fishbase.org"},
  {"use": "original description", "reference": "Whitley, G.P. (1939). Taxonomic notes on sharks and rays. Australian Zoologist 9(3): 227-262.", "doi": "10.1000/whitley1939", "url": "https://example.org/whitley1939"}
]`

func wormsTestServer(matchBody, recordBody, sourcesBody string) *httptest.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/AphiaRecordsByMatchNames", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, matchBody)
	})
	mux.HandleFunc("/AphiaRecordByAphiaID/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, recordBody)
	})
	mux.HandleFunc("/AphiaSourcesByAphiaID/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, sourcesBody)
	})
	return httptest.NewServer(mux)
}

func TestWoRMSLookup(t *testing.T) {
	ts := wormsTestServer(sampleWoRMSMatchJSON, sampleWoRMSRecordJSON, sampleWoRMSSourcesJSON)
	defer ts.Close()

	old := wormsAPIBase
	wormsAPIBase = ts.URL
	defer func() { wormsAPIBase = old }()

	s := NewWoRMS(testSourcesConfig())
	cand, err := s.Lookup(context.Background(), "Squalicorax")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if cand == nil {
		t.Fatal("Lookup returned nil candidate for matched name")
	}
	if cand.TaxonomicAuthority != "Whitley, 1939" {
		t.Errorf("TaxonomicAuthority = %q, want %q", cand.TaxonomicAuthority, "Whitley, 1939")
	}
	if cand.Year != "1939" {
		t.Errorf("Year = %q, want 1939", cand.Year)
	}
	if cand.Source != "WoRMS" {
		t.Errorf("Source = %q, want WoRMS", cand.Source)
	}
	if cand.Confidence != 0.6 {
		t.Errorf("Confidence = %v, want 0.6", cand.Confidence)
	}
}

func TestWoRMSOriginalDescription(t *testing.T) {
	ts := wormsTestServer(sampleWoRMSMatchJSON, sampleWoRMSRecordJSON, sampleWoRMSSourcesJSON)
	defer ts.Close()

	old := wormsAPIBase
	wormsAPIBase = ts.URL
	defer func() { wormsAPIBase = old }()

	s := NewWoRMS(testSourcesConfig())
	cand, err := s.OriginalDescription(context.Background(), "Squalicorax")
	if err != nil {
		t.Fatalf("OriginalDescription: %v", err)
	}
	if cand == nil {
		t.Fatal("OriginalDescription returned nil candidate")
	}
	// The source flagged "original description" wins, not "basis of record".
	if !strings.HasPrefix(cand.Citation, "Whitley") {
		t.Errorf("Citation = %q, want the Whitley 1939 source", cand.Citation)
	}
	if cand.DOI != "10.1000/whitley1939" {
		t.Errorf("DOI = %q, want 10.1000/whitley1939", cand.DOI)
	}
	if cand.Confidence != 0.95 {
		t.Errorf("Confidence = %v, want 0.95 for flagged original", cand.Confidence)
	}
}

func TestWoRMSOriginalDescriptionNoneFlagged(t *testing.T) {
	sources := `[{"use": "basis of record", "reference": "FishBase.", "doi": "", "url": ""}]`
	ts := wormsTestServer(sampleWoRMSMatchJSON, sampleWoRMSRecordJSON, sources)
	defer ts.Close()

	old := wormsAPIBase
	wormsAPIBase = ts.URL
	defer func() { wormsAPIBase = old }()

	s := NewWoRMS(testSourcesConfig())
	cand, err := s.OriginalDescription(context.Background(), "Squalicorax")
	if err != nil {
		t.Fatalf("OriginalDescription: %v", err)
	}
	if cand == nil {
		t.Fatal("expected authority-only candidate when no source is flagged original")
	}
	if cand.Citation != "" {
		t.Errorf("Citation = %q, want empty when nothing is flagged original", cand.Citation)
	}
	if cand.Confidence != 0.6 {
		t.Errorf("Confidence = %v, want 0.6 without an original source", cand.Confidence)
	}
}

func TestWoRMSLookupNoMatch(t *testing.T) {
	ts := wormsTestServer(`[[]]`, `{}`, `[]`)
	defer ts.Close()

	old := wormsAPIBase
	wormsAPIBase = ts.URL
	defer func() { wormsAPIBase = old }()

	s := NewWoRMS(testSourcesConfig())
	cand, err := s.Lookup(context.Background(), "Nonexistus fakeus")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if cand != nil {
		t.Errorf("Lookup = %+v, want nil for unmatched name", cand)
	}
}

func TestWoRMSLookupNoContent(t *testing.T) {
	// WoRMS answers 204 with an empty body for unknown names.
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer ts.Close()

	old := wormsAPIBase
	wormsAPIBase = ts.URL
	defer func() { wormsAPIBase = old }()

	s := NewWoRMS(testSourcesConfig())
	cand, err := s.Lookup(context.Background(), "Nonexistus fakeus")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if cand != nil {
		t.Errorf("Lookup = %+v, want nil on HTTP 204", cand)
	}
}
