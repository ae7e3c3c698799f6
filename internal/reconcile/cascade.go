package reconcile

import (
	"strings"

	"go.uber.org/zap"

	"github.com/sells-group/formaudit-cli/internal/model"
	"github.com/sells-group/formaudit-cli/internal/tabular"
)

// keySep joins the parts of a compound lookup key. It never appears in
// normalized URLs or form IDs.
const keySep = "||"

// lookupKind identifies one priority level of the URL-mapping cascade,
// highest priority first.
type lookupKind int

const (
	keyURLIframe lookupKind = iota // (page URL, iframe URL) compound
	keyIframe                      // iframe URL alone
	keyURLID                       // (page URL, form ID) compound, templates excluded
	keyID                          // form ID alone, templates excluded
)

// lookupLevel is one candidate dictionary of the cascade.
type lookupLevel struct {
	kind   lookupKind
	values map[string]string
}

// buildCascade builds the lookup dictionaries for one mapping-table source
// column, in strictly decreasing priority. The iframe-keyed levels exist only
// when an iframe column was designated. Rows whose ID is a known template ID
// are excluded from the two ID-based levels, because template IDs are shared
// across unrelated pages and would fabricate joins.
//
// Duplicate keys within a level resolve last-row-wins in mapping-table order;
// a warning is logged since duplicate-key mapping rows are almost always an
// input mistake.
func (e *Engine) buildCascade(in *MappingInput, sourceCol string) []lookupLevel {
	t := in.Table
	cfg := in.Config

	urls := t.Column(cfg.URLColumn)
	ids := t.Column(cfg.IDColumn)
	values := t.Column(sourceCol)

	var iframes []string
	if cfg.IframeColumn != "" {
		iframes = t.Column(cfg.IframeColumn)
	}

	var levels []lookupLevel
	if iframes != nil {
		levels = append(levels,
			lookupLevel{keyURLIframe, map[string]string{}},
			lookupLevel{keyIframe, map[string]string{}},
		)
	}
	levels = append(levels,
		lookupLevel{keyURLID, map[string]string{}},
		lookupLevel{keyID, map[string]string{}},
	)

	for row := range t.Len() {
		value := values[row]
		if IsAbsent(value) {
			continue
		}

		u := NormalizeURL(urls[row])
		id := strings.TrimSpace(ids[row])
		isTemplate := id != "" && e.templates.Contains(id)

		var f string
		if iframes != nil {
			f = NormalizeURL(iframes[row])
		}

		for i := range levels {
			key := ""
			switch levels[i].kind {
			case keyURLIframe:
				if u != "" && f != "" {
					key = u + keySep + f
				}
			case keyIframe:
				key = f
			case keyURLID:
				if !isTemplate && u != "" && id != "" {
					key = u + keySep + id
				}
			case keyID:
				if !isTemplate {
					key = id
				}
			}
			if key == "" {
				continue
			}
			if prev, dup := levels[i].values[key]; dup && prev != value {
				zap.L().Warn("reconcile: duplicate mapping key, last row wins",
					zap.String("column", sourceCol),
					zap.String("key", key),
				)
			}
			levels[i].values[key] = value
		}
	}

	return levels
}

// recordKey computes the probe key of a record for one cascade level.
func recordKey(kind lookupKind, rec model.ExtractedRecord) string {
	u := NormalizeURL(rec.SourceURL)
	f := NormalizeURL(rec.IframeURL)

	switch kind {
	case keyURLIframe:
		if u == "" || f == "" {
			return ""
		}
		return u + keySep + f
	case keyIframe:
		return f
	case keyURLID:
		if u == "" || rec.FormID == "" {
			return ""
		}
		return u + keySep + rec.FormID
	case keyID:
		return rec.FormID
	}
	return ""
}

// resolveColumn fills absent cells of current by probing the cascade levels
// in priority order, one record per row. Cells that already carry a value are
// never overwritten: extraction-side data outranks mapping-side data. The
// pass produces a fresh column; nothing is mutated in place.
func resolveColumn(records []model.ExtractedRecord, current []string, levels []lookupLevel) []string {
	out := make([]string, len(records))
	for i, rec := range records {
		if current != nil && !IsAbsent(current[i]) {
			out[i] = current[i]
			continue
		}
		for _, lvl := range levels {
			key := recordKey(lvl.kind, rec)
			if key == "" {
				continue
			}
			if v, ok := lvl.values[key]; ok {
				out[i] = v
				break
			}
		}
	}
	return out
}

// applyMapping resolves every target column of the URL-mapping cascade and
// attaches the results to the enriched table. Each column's cascade is
// independent: a row may take its CRM code from one priority level and its
// cluster from another.
func (e *Engine) applyMapping(enriched *tabular.Table, records []model.ExtractedRecord, in *MappingInput) (*tabular.Table, error) {
	// Target column -> mapping-table source column. The CRM code and cluster
	// columns are auto-detected by name; everything else the caller selected
	// is projected under its own name.
	type target struct {
		outCol    string
		sourceCol string
	}
	var targets []target

	if crmCol := detectColumn(in.Table.Columns, IsCRMCodeColumn); crmCol != "" {
		targets = append(targets, target{ColCRMCampaign, crmCol})
	}
	if clusterCol := detectColumn(in.Table.Columns, IsClusterColumn); clusterCol != "" {
		targets = append(targets, target{ColCluster, clusterCol})
	}
	for _, c := range in.Config.SelectedColumns {
		targets = append(targets, target{c, c})
	}

	var err error
	for _, tg := range targets {
		levels := e.buildCascade(in, tg.sourceCol)
		resolved := resolveColumn(records, enriched.Column(tg.outCol), levels)
		enriched, err = enriched.WithColumn(tg.outCol, resolved)
		if err != nil {
			return nil, err
		}
	}

	return enriched, nil
}
