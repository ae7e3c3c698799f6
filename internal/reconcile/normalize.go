// Package reconcile implements the multi-source reconciliation engine: it
// joins extracted iframe-form records against an optional URL-mapping table
// and an optional CRM campaign table, resolving every enriched column through
// a deterministic priority cascade, and detects mapping URLs that never
// showed up in extraction.
//
// The engine is synchronous, side-effect-free, and owns no state across
// invocations; the same inputs always produce the same output table.
package reconcile

import (
	"regexp"
	"strings"
)

var (
	formIDPattern  = regexp.MustCompile(`ID=([^&]+)`)
	crmCodePattern = regexp.MustCompile(`CODE=([^&]+)`)
)

// NormalizeURL canonicalizes a URL for key comparison: lower-cased with
// trailing slashes stripped. Idempotent. Must be applied to both sides of
// every URL join; comparing a normalized key against a raw one is the classic
// correctness bug in this kind of system.
func NormalizeURL(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.TrimRight(s, "/")
}

// NormalizeCRMCode canonicalizes a CRM campaign code: trimmed and upper-cased.
// The literal strings "none", "nan" and "" (any casing) mean absent and map
// to the empty-string sentinel. Idempotent.
func NormalizeCRMCode(s string) string {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "NONE" || s == "NAN" {
		return ""
	}
	return s
}

// IsAbsent reports whether a cell value counts as missing data. Tables
// imported from pandas-style exports carry "None" and "nan" literals for
// empty cells.
func IsAbsent(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none", "nan":
		return true
	}
	return false
}

// ExtractIDAndCode parses the form ID and CRM code out of an iframe URL's
// ID= and CODE= query parameters. Either result may be empty.
func ExtractIDAndCode(iframeURL string) (formID, crmCode string) {
	if iframeURL == "" {
		return "", ""
	}
	if m := formIDPattern.FindStringSubmatch(iframeURL); m != nil {
		formID = m[1]
	}
	if m := crmCodePattern.FindStringSubmatch(iframeURL); m != nil {
		crmCode = m[1]
	}
	return formID, crmCode
}
