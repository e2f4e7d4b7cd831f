package textextract

import "testing"

func TestYear(t *testing.T) {
	tests := []struct {
		name string
		text string
		want int // 0 means nil expected
	}{
		{"plain authority", "Cope, 1874", 1874},
		{"parenthesized", "(Whitley, 1939)", 1939},
		{"embedded in citation", "E. D. Cope. 1874. Review of the Vertebrata.", 1874},
		{"earliest accepted", "Linnaeus 1700", 1700},
		{"latest accepted", "Someone 2029", 2029},
		{"too early", "Gesner 1558", 0},
		{"too late", "Future 2100", 0},
		{"five digits not a year", "specimen 18744 catalogued", 0},
		{"first of several", "Smith 1890, emended 1902", 1890},
		{"empty", "", 0},
		{"no digits", "Cope", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Year(tt.text)
			if tt.want == 0 {
				if got != nil {
					t.Errorf("Year(%q) = %d, want nil", tt.text, *got)
				}
				return
			}
			if got == nil || *got != tt.want {
				t.Errorf("Year(%q) = %v, want %d", tt.text, got, tt.want)
			}
		})
	}
}

func TestAuthor(t *testing.T) {
	tests := []struct {
		name      string
		authority string
		want      string
	}{
		{"comma and year", "Cope, 1874", "Cope"},
		{"parenthesized", "(Cope, 1874)", "Cope"},
		{"no comma", "Whitley 1939", "Whitley"},
		{"two authors", "Agassiz & Hyrtl, 1845", "Agassiz & Hyrtl"},
		{"year only", "1874", ""},
		{"empty", "", ""},
		{"no year", "Linnaeus", "Linnaeus"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Author(tt.authority); got != tt.want {
				t.Errorf("Author(%q) = %q, want %q", tt.authority, got, tt.want)
			}
		})
	}
}

func TestParseAuthority(t *testing.T) {
	auth := ParseAuthority("(Whitley, 1939)")
	if auth.Raw != "(Whitley, 1939)" {
		t.Errorf("Raw = %q", auth.Raw)
	}
	if auth.Author != "Whitley" {
		t.Errorf("Author = %q, want Whitley", auth.Author)
	}
	if auth.Year == nil || *auth.Year != 1939 {
		t.Errorf("Year = %v, want 1939", auth.Year)
	}
}

func TestTitleFromCitation(t *testing.T) {
	tests := []struct {
		name     string
		citation string
		want     string
	}{
		{
			"author year title journal",
			"E. D. Cope. 1874. Review of the Vertebrata of the Cretaceous period found west of the Mississippi River. Bulletin of the United States Geological Survey 1:3-48",
			"Review of the Vertebrata of the Cretaceous period found west of the Mississippi River",
		},
		{
			"journal indicator inside title segment",
			"G. P. Whitley. 1939. Taxonomic notes on sharks and rays. The Australian Zoologist 9(3):227-262",
			"Taxonomic notes on sharks and rays",
		},
		{
			"short citation falls through unchanged",
			"Sepkoski 2002",
			"Sepkoski 2002",
		},
		{
			"no year segments",
			"A compendium. Of fossil marine animal genera. Third edition",
			"A compendium. Of fossil marine animal genera. Third edition",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TitleFromCitation(tt.citation); got != tt.want {
				t.Errorf("TitleFromCitation(%q) = %q, want %q", tt.citation, got, tt.want)
			}
		})
	}
}

func TestTitleFromCitationLongFallback(t *testing.T) {
	long := ""
	for i := 0; i < 30; i++ {
		long += "wordwordyz "
	}
	got := TitleFromCitation(long)
	if len(got) != fallbackTitleLen+3 {
		t.Errorf("fallback length = %d, want %d", len(got), fallbackTitleLen+3)
	}
	if got[len(got)-3:] != "..." {
		t.Errorf("fallback should end with ellipsis, got %q", got[len(got)-8:])
	}
}

func TestAuthorFromCitation(t *testing.T) {
	tests := []struct {
		citation string
		want     string
	}{
		{"Sepkoski. 2002. A compendium of fossil marine animal genera", "Sepkoski"},
		{"E. D. Cope. 1874. Review of the Vertebrata", "E"},
		{"no periods here", "no periods here"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := AuthorFromCitation(tt.citation); got != tt.want {
			t.Errorf("AuthorFromCitation(%q) = %q, want %q", tt.citation, got, tt.want)
		}
	}
}
