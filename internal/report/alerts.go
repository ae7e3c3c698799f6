package report

import (
	"fmt"
	"strings"

	"github.com/sells-group/formaudit-cli/internal/reconcile"
	"github.com/sells-group/formaudit-cli/internal/tabular"
)

// Severity grades an alert.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Alert flags a data-quality problem in the enriched table.
type Alert struct {
	Severity Severity `json:"severity"`
	Title    string   `json:"title"`
	Message  string   `json:"message"`
	// RowIndexes are the offending rows of the enriched table.
	RowIndexes []int `json:"row_indexes"`
}

// badIntegrationMarker appears in iframe URLs embedded through the legacy
// survey endpoint instead of the supported one.
const badIntegrationMarker = "survey.dll"

// Alerts checks the enriched table for known anomalies: forms embedded
// through the legacy survey endpoint, and forms without a CRM code.
func Alerts(t *tabular.Table) []Alert {
	var alerts []Alert

	var badRows []int
	for i, iframe := range t.Column(reconcile.ColIframe) {
		if strings.Contains(iframe, badIntegrationMarker) {
			badRows = append(badRows, i)
		}
	}
	if len(badRows) > 0 {
		alerts = append(alerts, Alert{
			Severity:   SeverityError,
			Title:      "Bad integrations",
			Message:    fmt.Sprintf("%d forms with incorrect integration detected", len(badRows)),
			RowIndexes: badRows,
		})
	}

	var noCRMRows []int
	for i, campaign := range t.Column(reconcile.ColCRMCampaign) {
		if reconcile.IsAbsent(campaign) {
			noCRMRows = append(noCRMRows, i)
		}
	}
	if len(noCRMRows) > 0 {
		alerts = append(alerts, Alert{
			Severity:   SeverityWarning,
			Title:      "Missing CRM codes",
			Message:    fmt.Sprintf("%d forms without CRM code", len(noCRMRows)),
			RowIndexes: noCRMRows,
		})
	}

	return alerts
}
