// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package report

import (
	"io"
	"strconv"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/taxoref/pkg/types"
)

// CSLItem is a bibliographic entry in CSL (Citation Style Language) format.
// Field names follow the CSL-YAML schema so output is consumable by Pandoc
// and reference managers.
type CSLItem struct {
	ID     string    `yaml:"id"`
	Type   string    `yaml:"type"`
	Title  string    `yaml:"title"`
	Author []CSLName `yaml:"author,omitempty"`
	Issued *CSLDate  `yaml:"issued,omitempty"`
	DOI    string    `yaml:"DOI,omitempty"`
	URL    string    `yaml:"URL,omitempty"`
	Note   string    `yaml:"note,omitempty"`
}

// CSLName is a person's name in CSL format.
type CSLName struct {
	Family  string `yaml:"family,omitempty"`
	Given   string `yaml:"given,omitempty"`
	Literal string `yaml:"literal,omitempty"`
}

// CSLDate is a date in CSL date-parts format.
type CSLDate struct {
	DateParts [][]int `yaml:"date-parts"`
}

// FormatCSL writes resolved references as a CSL-YAML list. References that
// resolved to nothing are skipped; an empty bibliography entry helps nobody.
func FormatCSL(refs []*types.ResolvedReference, w io.Writer) error {
	var items []CSLItem
	for _, ref := range refs {
		if ref.Reference == "" {
			continue
		}
		items = append(items, toCSLItem(ref))
	}
	enc := yaml.NewEncoder(w)
	defer enc.Close()
	return enc.Encode(items)
}

func toCSLItem(ref *types.ResolvedReference) CSLItem {
	item := CSLItem{
		ID:    cslID(ref),
		Type:  "article",
		Title: ref.Reference,
		DOI:   ref.DOI,
		URL:   ref.PaperLink,
		Note:  "resolved via " + ref.Source,
	}
	if ref.Author != "" {
		item.Author = []CSLName{parseAuthorName(ref.Author)}
	}
	if ref.Year != nil {
		item.Issued = &CSLDate{DateParts: [][]int{{*ref.Year}}}
	}
	return item
}

// cslID builds a pandoc-friendly citation key from the search term and
// year, e.g. "enchodus-petrosus-1874".
func cslID(ref *types.ResolvedReference) string {
	id := strings.ToLower(strings.Join(strings.Fields(ref.SearchTerm), "-"))
	if ref.Year != nil {
		id += "-" + strconv.Itoa(*ref.Year)
	}
	return id
}

// parseAuthorName splits a full name on the last space: everything before
// is given, the last token is family. Single-token names use literal.
func parseAuthorName(name string) CSLName {
	name = strings.TrimSpace(name)
	if name == "" {
		return CSLName{}
	}
	idx := strings.LastIndex(name, " ")
	if idx < 0 {
		return CSLName{Literal: name}
	}
	return CSLName{
		Given:  name[:idx],
		Family: name[idx+1:],
	}
}
