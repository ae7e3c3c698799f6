package reconcile

import (
	"strings"

	"github.com/sells-group/formaudit-cli/internal/tabular"
)

// crmIndex is the CRM table's code set prepared for the prefix join: codes
// normalized, in table row order, each pointing at its first carrier row.
type crmIndex struct {
	codes []string
	row   map[string]int
}

func buildCRMIndex(t *tabular.Table, codeColumn string) *crmIndex {
	idx := &crmIndex{row: make(map[string]int)}
	for i, raw := range t.Column(codeColumn) {
		code := NormalizeCRMCode(raw)
		if code == "" {
			continue
		}
		if _, seen := idx.row[code]; seen {
			continue
		}
		idx.codes = append(idx.codes, code)
		idx.row[code] = i
	}
	return idx
}

// match finds the best CRM-table row for a record's normalized code:
//
//  1. exact match;
//  2. the record's code is a prefix of a table code (the observed code was
//     truncated relative to canonical);
//  3. a table code is a prefix of the record's code (the observed code has
//     extra trailing characters).
//
// Within rules 2 and 3, the first qualifying code in CRM-table row order wins.
// Table order rather than a smarter tie-break is deliberate: it mirrors the
// historical behavior and keeps the join deterministic.
func (idx *crmIndex) match(code string) (int, bool) {
	if code == "" {
		return 0, false
	}
	if row, ok := idx.row[code]; ok {
		return row, true
	}
	for _, c := range idx.codes {
		if strings.HasPrefix(c, code) {
			return idx.row[c], true
		}
	}
	for _, c := range idx.codes {
		if strings.HasPrefix(code, c) {
			return idx.row[c], true
		}
	}
	return 0, false
}

// applyCRM projects the selected CRM-table columns onto the enriched table,
// joined through the prefix match on the resolved CRM Campaign column. Each
// projected column is renamed CRM_<name>. Rows with no resolvable code, or no
// match under any rule, keep absent CRM_* cells.
func applyCRM(enriched *tabular.Table, in *CRMInput) (*tabular.Table, error) {
	idx := buildCRMIndex(in.Table, in.Config.CodeColumn)

	// Resolve the join row once per record.
	matched := make([]int, enriched.Len())
	ok := make([]bool, enriched.Len())
	campaigns := enriched.Column(ColCRMCampaign)
	for i, raw := range campaigns {
		matched[i], ok[i] = idx.match(NormalizeCRMCode(raw))
	}

	var err error
	for _, name := range in.Config.SelectedColumns {
		source := in.Table.Column(name)
		values := make([]string, enriched.Len())
		for i := range values {
			if ok[i] {
				values[i] = source[matched[i]]
			}
		}
		enriched, err = enriched.WithColumn(CRMPrefix+name, values)
		if err != nil {
			return nil, err
		}
	}

	return enriched, nil
}
