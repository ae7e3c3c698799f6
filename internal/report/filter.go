package report

import (
	"github.com/sells-group/formaudit-cli/internal/model"
	"github.com/sells-group/formaudit-cli/internal/reconcile"
	"github.com/sells-group/formaudit-cli/internal/tabular"
)

// CRMStatus narrows rows by CRM-code presence.
type CRMStatus string

const (
	CRMAny     CRMStatus = ""
	CRMWith    CRMStatus = "with"
	CRMWithout CRMStatus = "without"
)

// RecoveryFilter narrows rows by recovery status.
type RecoveryFilter string

const (
	RecoveryAny      RecoveryFilter = ""
	RecoveryOnly     RecoveryFilter = "recovered"
	RecoveryOriginal RecoveryFilter = "original"
)

// Filter selects rows of the enriched table. Empty fields match everything;
// list fields match any of their values.
type Filter struct {
	Templates []string            `json:"templates,omitempty"`
	Clusters  []string            `json:"clusters,omitempty"`
	Campaigns []string            `json:"campaigns,omitempty"`
	CRM       CRMStatus           `json:"crm,omitempty"`
	Recovery  RecoveryFilter      `json:"recovery,omitempty"`
	Columns   map[string][]string `json:"columns,omitempty"`
}

// Apply returns the rows of t matching the filter.
func Apply(t *tabular.Table, f Filter) *tabular.Table {
	return t.Filter(func(row []string) bool {
		cell := func(name string) string {
			idx := t.Col(name)
			if idx < 0 {
				return ""
			}
			return row[idx]
		}

		if !matchAny(cell(reconcile.ColTemplate), f.Templates) {
			return false
		}
		if !matchAny(cell(reconcile.ColCluster), f.Clusters) {
			return false
		}
		if !matchAny(cell(reconcile.ColCRMCampaign), f.Campaigns) {
			return false
		}

		switch f.CRM {
		case CRMWith:
			if reconcile.IsAbsent(cell(reconcile.ColCRMCampaign)) {
				return false
			}
		case CRMWithout:
			if !reconcile.IsAbsent(cell(reconcile.ColCRMCampaign)) {
				return false
			}
		}

		switch f.Recovery {
		case RecoveryOnly:
			if cell(reconcile.ColRecovery) != string(model.RecoveryStatusRecovered) {
				return false
			}
		case RecoveryOriginal:
			if cell(reconcile.ColRecovery) == string(model.RecoveryStatusRecovered) {
				return false
			}
		}

		for col, values := range f.Columns {
			if !matchAny(cell(col), values) {
				return false
			}
		}

		return true
	})
}

func matchAny(value string, wanted []string) bool {
	if len(wanted) == 0 {
		return true
	}
	for _, w := range wanted {
		if value == w {
			return true
		}
	}
	return false
}
