// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package report

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/pdiddy/taxoref/internal/resolve"
	"github.com/pdiddy/taxoref/pkg/types"
)

func resolved() *types.ResolvedReference {
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

func TestFormatText(t *testing.T) {
	var buf bytes.Buffer
	FormatText(resolved(), &buf)
	out := buf.String()

	for _, want := range []string{
		"Enchodus petrosus",
		"Cope, 1874",
		"1874",
		"10.5555/cope1874",
		"GBIF (ref: PBDB)",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "(cached)") {
		t.Error("fresh result rendered as cached")
	}
}

func TestFormatTextNotAvailable(t *testing.T) {
	var buf bytes.Buffer
	FormatText(&types.ResolvedReference{SearchTerm: "Nonexistus fakeus"}, &buf)
	out := buf.String()

	if got := strings.Count(out, "Not available"); got < 5 {
		t.Errorf("want every empty field rendered as Not available, got %d in:\n%s", got, out)
	}
}

func TestFormatTextYearMismatch(t *testing.T) {
	ref := resolved()
	ref.Reference = ""
	ref.DOI = ""
	ref.PaperLink = ""
	ref.YearMismatch = true

	var buf bytes.Buffer
	FormatText(ref, &buf)
	if !strings.Contains(buf.String(), "none with a year matching the authority") {
		t.Errorf("year-mismatch state not surfaced:\n%s", buf.String())
	}
}

func TestFormatTextCached(t *testing.T) {
	ref := resolved()
	ref.FromCache = true

	var buf bytes.Buffer
	FormatText(ref, &buf)
	if !strings.Contains(buf.String(), "(cached)") {
		t.Error("cached result not marked")
	}
}

func TestFormatJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := FormatJSON([]*types.ResolvedReference{resolved()}, &buf); err != nil {
		t.Fatalf("FormatJSON: %v", err)
	}

	var out []map[string]any
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if len(out) != 1 || out[0]["search_term"] != "Enchodus petrosus" {
		t.Errorf("unexpected JSON: %v", out)
	}
}

func TestFormatCSL(t *testing.T) {
	var buf bytes.Buffer
	empty := &types.ResolvedReference{SearchTerm: "Nonexistus fakeus"}
	if err := FormatCSL([]*types.ResolvedReference{resolved(), empty}, &buf); err != nil {
		t.Fatalf("FormatCSL: %v", err)
	}
	out := buf.String()

	if !strings.Contains(out, "id: enchodus-petrosus-1874") {
		t.Errorf("missing citation key:\n%s", out)
	}
	if !strings.Contains(out, "DOI: 10.5555/cope1874") {
		t.Errorf("missing DOI:\n%s", out)
	}
	if strings.Contains(out, "fakeus") {
		t.Error("unresolved reference should be skipped in CSL output")
	}
}

func TestFormatLookupText(t *testing.T) {
	res := &resolve.Result{
		Name: "Squalicorax kaupi",
		Local: &types.ReferenceCandidate{
			TaxonomicAuthority: "Whitley, 1939",
			Citation:           "Sepkoski, J. J. 2002. A compendium of fossil marine animal genera.",
			Source:             "PBDB",
		},
		Mismatch:            true,
		ResolutionAttempted: true,
		External: &types.ReferenceCandidate{
			Title:  "Taxonomic notes on sharks and rays",
			DOI:    "10.1000/whitley1939",
			Source: "CrossRef",
		},
	}

	var buf bytes.Buffer
	FormatLookupText(res, &buf)
	out := buf.String()

	if !strings.Contains(out, "credits a different publication") {
		t.Errorf("mismatch note missing:\n%s", out)
	}
	if !strings.Contains(out, "Taxonomic notes on sharks and rays") {
		t.Errorf("resolved title missing:\n%s", out)
	}
}

func TestFormatLookupTextStates(t *testing.T) {
	tests := []struct {
		name string
		res  *resolve.Result
		want string
	}{
		{
			name: "dataset miss",
			res:  &resolve.Result{Name: "Tyrannosaurus rex"},
			want: "No record in the local dataset",
		},
		{
			name: "validation failed",
			res: &resolve.Result{
				Name:                "Enchodus petrosus",
				Local:               &types.ReferenceCandidate{Citation: "c"},
				ResolutionAttempted: true,
				ValidationFailed:    true,
			},
			want: "rejected as unrelated",
		},
		{
			name: "nothing found",
			res: &resolve.Result{
				Name:                "Enchodus petrosus",
				Local:               &types.ReferenceCandidate{Citation: "c"},
				ResolutionAttempted: true,
			},
			want: "no external match",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			FormatLookupText(tt.res, &buf)
			if !strings.Contains(buf.String(), tt.want) {
				t.Errorf("output missing %q:\n%s", tt.want, buf.String())
			}
		})
	}
}
