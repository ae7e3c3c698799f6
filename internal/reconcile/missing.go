package reconcile

import (
	"github.com/sells-group/formaudit-cli/internal/model"
	"github.com/sells-group/formaudit-cli/internal/tabular"
)

// FindMissing returns the mapping-table rows whose URL never appeared as a
// source URL in extraction: forms presumed to exist on a page the crawler
// never observed, either a crawl gap or a genuinely removed form.
//
// URLs are compared normalized on both sides. Mapping rows with an absent URL
// cell are skipped silently; they cannot participate in a set difference.
// The returned table carries the full mapping columns plus a Status column.
func FindMissing(records []model.ExtractedRecord, mapping *tabular.Table, urlColumn string) *tabular.Table {
	extracted := make(map[string]struct{}, len(records))
	for _, rec := range records {
		if u := NormalizeURL(rec.SourceURL); u != "" {
			extracted[u] = struct{}{}
		}
	}

	urls := mapping.Column(urlColumn)
	var rows [][]string
	for i, raw := range urls {
		if IsAbsent(raw) {
			continue
		}
		if _, found := extracted[NormalizeURL(raw)]; found {
			continue
		}
		rows = append(rows, mapping.Rows[i])
	}
	missing := tabular.New(mapping.Columns, rows)

	status := make([]string, missing.Len())
	for i := range status {
		status[i] = StatusMissing
	}
	out, err := missing.WithColumn(ColStatus, status)
	if err != nil {
		// Status column length always matches by construction.
		return missing
	}
	return out
}

// MissingURLs extracts the usable URL list from a missing-forms table, for
// handing back to the crawler during recovery.
func MissingURLs(missing *tabular.Table, urlColumn string) []string {
	var urls []string
	for _, raw := range missing.Column(urlColumn) {
		if IsAbsent(raw) {
			continue
		}
		urls = append(urls, raw)
	}
	return urls
}
