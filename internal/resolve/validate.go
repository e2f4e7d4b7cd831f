// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package resolve

import (
	"strings"

	"github.com/pdiddy/taxoref/pkg/types"
)

// validationStopwords are ignored when comparing a candidate title against
// the local citation word by word.
var validationStopwords = map[string]bool{
	"the": true, "a": true, "an": true, "of": true, "in": true, "on": true,
	"and": true, "or": true, "for": true, "with": true, "by": true,
}

// ValidateMatch decides whether an externally resolved candidate really is
// the publication the local citation describes. When the local citation was
// already known to be mismatched there is nothing to compare against, so
// the candidate is accepted as-is. Candidates at or above the
// high-confidence threshold (a registry explicitly flagging its source as
// the original description) are also accepted without textual comparison.
func ValidateMatch(localCitation string, cand *types.ReferenceCandidate, mismatch bool, cfg types.ScoringConfig) bool {
	if mismatch {
		return true
	}
	if cand == nil {
		return false
	}
	// Only candidates a registry explicitly flagged as the original
	// description reach this confidence (WoRMS flagged sources at 0.95);
	// CrossRef title hits top out at 0.7 and always face the textual
	// comparison below.
	if cfg.HighConfidenceStop > 0 && cand.Confidence >= cfg.HighConfidenceStop {
		return true
	}

	citation := strings.ToLower(localCitation)
	title := strings.ToLower(cand.Title)

	if len(title) > 10 {
		words := significantTitleWords(title)
		if len(words) > 0 {
			hits := 0
			for _, w := range words {
				if strings.Contains(citation, w) {
					hits++
				}
			}
			ratio := cfg.TitleOverlapRatio
			if ratio <= 0 {
				ratio = 0.4
			}
			if float64(hits)/float64(len(words)) >= ratio {
				return true
			}
		}
	}

	if j := strings.ToLower(cand.Journal); j != "" && strings.Contains(citation, j) {
		return true
	}
	if title != "" && strings.Contains(citation, title) {
		return true
	}
	return false
}

func significantTitleWords(lowerTitle string) []string {
	var words []string
	for _, w := range strings.Fields(lowerTitle) {
		w = strings.Trim(w, `.,;:"'()`)
		if len(w) > 2 && !validationStopwords[w] {
			words = append(words, w)
		}
	}
	return words
}
