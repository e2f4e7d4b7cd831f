// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package report renders resolved references for the command line: plain
// text for reading, JSON for scripting, CSL-YAML for reference managers.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/pdiddy/taxoref/internal/resolve"
	"github.com/pdiddy/taxoref/pkg/types"
)

// notAvailable is printed for fields no source could fill.
const notAvailable = "Not available"

// FormatText writes one resolved reference as labeled lines.
func FormatText(ref *types.ResolvedReference, w io.Writer) {
	fmt.Fprintf(w, "Search term:  %s\n", ref.SearchTerm)
	fmt.Fprintf(w, "Authority:    %s\n", orNA(ref.Authority))
	fmt.Fprintf(w, "Year:         %s\n", yearOrNA(ref.Year))
	fmt.Fprintf(w, "Reference:    %s\n", referenceLine(ref))
	fmt.Fprintf(w, "DOI:          %s\n", orNA(ref.DOI))
	fmt.Fprintf(w, "Link:         %s\n", orNA(ref.PaperLink))
	fmt.Fprintf(w, "Source:       %s\n", orNA(ref.Source))
	if ref.FromCache {
		fmt.Fprintln(w, "(cached)")
	}
}

// FormatJSON writes resolved references as a JSON array.
func FormatJSON(refs []*types.ResolvedReference, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(refs)
}

// FormatLookupText writes a local-first lookup result as labeled lines,
// distinguishing a dataset miss, a failed resolution, and a rejected match.
func FormatLookupText(res *resolve.Result, w io.Writer) {
	fmt.Fprintf(w, "Name:         %s\n", res.Name)
	if res.Local == nil {
		fmt.Fprintln(w, "No record in the local dataset.")
		return
	}
	fmt.Fprintf(w, "Authority:    %s\n", orNA(res.Local.TaxonomicAuthority))
	fmt.Fprintf(w, "Citation:     %s\n", orNA(res.Local.Citation))
	if res.Mismatch {
		fmt.Fprintln(w, "Note:         citation credits a different publication than the authority")
	}

	switch {
	case res.External != nil:
		fmt.Fprintf(w, "Resolved:     %s\n", orNA(res.External.Title))
		if res.External.Journal != "" {
			fmt.Fprintf(w, "Journal:      %s\n", res.External.Journal)
		}
		fmt.Fprintf(w, "DOI:          %s\n", orNA(res.External.DOI))
		fmt.Fprintf(w, "Link:         %s\n", orNA(res.External.URL))
		fmt.Fprintf(w, "Via:          %s\n", res.External.Source)
	case res.ValidationFailed:
		fmt.Fprintln(w, "Resolved:     candidate found but rejected as unrelated to the citation")
	case res.ResolutionAttempted:
		fmt.Fprintln(w, "Resolved:     no external match found")
	}
}

// FormatLookupJSON writes lookup results as a JSON array.
func FormatLookupJSON(results []*resolve.Result, w io.Writer) error {
	type lookupJSON struct {
		Name                string                    `json:"name"`
		Local               *types.ReferenceCandidate `json:"local,omitempty"`
		External            *types.ReferenceCandidate `json:"external,omitempty"`
		Mismatch            bool                      `json:"mismatch"`
		ResolutionAttempted bool                      `json:"resolution_attempted"`
		ValidationFailed    bool                      `json:"validation_failed"`
	}
	out := make([]lookupJSON, len(results))
	for i, r := range results {
		out[i] = lookupJSON{
			Name:                r.Name,
			Local:               r.Local,
			External:            r.External,
			Mismatch:            r.Mismatch,
			ResolutionAttempted: r.ResolutionAttempted,
			ValidationFailed:    r.ValidationFailed,
		}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func orNA(s string) string {
	if s == "" {
		return notAvailable
	}
	return s
}

func yearOrNA(y *int) string {
	if y == nil {
		return notAvailable
	}
	return strconv.Itoa(*y)
}

func referenceLine(ref *types.ResolvedReference) string {
	if ref.Reference != "" {
		return ref.Reference
	}
	if ref.YearMismatch {
		return "none with a year matching the authority"
	}
	return notAvailable
}
