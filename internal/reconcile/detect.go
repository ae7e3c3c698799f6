package reconcile

import "strings"

// IsCRMCodeColumn reports whether a column name looks like a CRM campaign
// code column: it must contain "crm" and either "code" or "campaign",
// case-insensitive.
func IsCRMCodeColumn(name string) bool {
	n := strings.ToLower(name)
	if !strings.Contains(n, "crm") {
		return false
	}
	return strings.Contains(n, "code") || strings.Contains(n, "campaign")
}

// IsClusterColumn reports whether a column name looks like a cluster column:
// it must contain "cluster", case-insensitive.
func IsClusterColumn(name string) bool {
	return strings.Contains(strings.ToLower(name), "cluster")
}

// detectColumn returns the first column name matching the predicate, or "".
// At most one column is auto-detected per heuristic; when several match, the
// first in table order wins.
func detectColumn(columns []string, match func(string) bool) string {
	for _, c := range columns {
		if match(c) {
			return c
		}
	}
	return ""
}
