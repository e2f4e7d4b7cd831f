// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package resolve finds the original describing publication for a taxon.
// It compares a registry's taxonomic authority against the citation a local
// record carries, and when they disagree it chases the authority through
// bibliographic services instead of trusting the citation.
package resolve

import "strings"

// HasMismatch reports whether a local record's citation appears to credit a
// different publication than the taxonomic authority does. This happens
// when a database exports its own compilation (e.g. "Sepkoski 2002") as the
// reference for a name described much earlier.
//
// The check is deliberately conservative: an empty authority or empty
// citation author never flags, and any containment between the two sides
// clears them. A missed mismatch costs one skipped lookup; a false flag
// costs wrong output.
func HasMismatch(authority, refAuthor, refYear string) bool {
	if authority == "" || refAuthor == "" {
		return false
	}

	attClean := strings.ToLower(strings.Trim(strings.TrimSpace(authority), "()"))
	combined := strings.ToLower(strings.TrimSpace(refAuthor + " " + refYear))

	if strings.Contains(combined, attClean) {
		return false
	}
	if first := firstToken(attClean); first != "" && strings.HasPrefix(combined, first) {
		return false
	}
	return true
}

func firstToken(s string) string {
	fields := strings.FieldsFunc(s, func(r rune) bool { return r == ' ' || r == ',' })
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}
