// Package report is the read-only presentation layer over the enriched
// table: summary metrics, anomaly alerts, filtering, export and the email
// digest.
package report

import (
	"strings"

	"github.com/sells-group/formaudit-cli/internal/reconcile"
	"github.com/sells-group/formaudit-cli/internal/tabular"
)

// coreColumns are the extraction-side and engine-side columns; everything
// else on the enriched table came from the mapping or CRM joins.
var coreColumns = map[string]bool{
	reconcile.ColSourceURL:   true,
	reconcile.ColIframe:      true,
	reconcile.ColFormID:      true,
	reconcile.ColCRMCampaign: true,
	reconcile.ColTemplate:    true,
	reconcile.ColCluster:     true,
	reconcile.ColRecovery:    true,
}

// ColumnFill counts the filled cells of one imported column.
type ColumnFill struct {
	Column string `json:"column"`
	Filled int    `json:"filled"`
}

// Summary aggregates the headline metrics of an enriched table.
type Summary struct {
	TotalForms  int          `json:"total_forms"`
	UniqueForms int          `json:"unique_forms"`
	Templated   int          `json:"templated"`
	WithCRM     int          `json:"with_crm"`
	WithoutCRM  int          `json:"without_crm"`
	Recovered   int          `json:"recovered"`
	MappingFill []ColumnFill `json:"mapping_fill,omitempty"`
	CRMFill     []ColumnFill `json:"crm_fill,omitempty"`
}

// Summarize computes the Summary of an enriched table.
func Summarize(t *tabular.Table) Summary {
	s := Summary{TotalForms: t.Len()}

	uniqueIDs := make(map[string]bool)
	templatedIDs := make(map[string]bool)

	formIDs := t.Column(reconcile.ColFormID)
	templates := t.Column(reconcile.ColTemplate)
	campaigns := t.Column(reconcile.ColCRMCampaign)
	recovery := t.Column(reconcile.ColRecovery)

	for i := range t.Len() {
		uniqueIDs[formIDs[i]] = true
		if !reconcile.IsAbsent(templates[i]) {
			templatedIDs[formIDs[i]] = true
		}
		if reconcile.IsAbsent(campaigns[i]) {
			s.WithoutCRM++
		} else {
			s.WithCRM++
		}
		if recovery[i] == "Recovered" {
			s.Recovered++
		}
	}

	s.UniqueForms = len(uniqueIDs)
	s.Templated = len(templatedIDs)

	for _, col := range t.Columns {
		if coreColumns[col] {
			continue
		}
		fill := ColumnFill{Column: col, Filled: countFilled(t.Column(col))}
		if strings.HasPrefix(col, reconcile.CRMPrefix) {
			s.CRMFill = append(s.CRMFill, fill)
		} else {
			s.MappingFill = append(s.MappingFill, fill)
		}
	}

	return s
}

func countFilled(values []string) int {
	n := 0
	for _, v := range values {
		if !reconcile.IsAbsent(v) {
			n++
		}
	}
	return n
}
