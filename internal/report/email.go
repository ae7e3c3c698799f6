package report

import (
	"fmt"
	"strings"

	"github.com/sells-group/formaudit-cli/internal/reconcile"
)

// EmailBody renders the plain-text analysis digest historically pasted into
// the results email.
func EmailBody(s Summary, alerts []Alert) string {
	var b strings.Builder

	b.WriteString("Hello,\n\n")
	b.WriteString("Here are the results of the forms analysis:\n\n")
	b.WriteString("SUMMARY:\n")
	fmt.Fprintf(&b, "- %d total forms analyzed\n", s.TotalForms)
	fmt.Fprintf(&b, "- %d unique forms identified\n", s.UniqueForms)
	fmt.Fprintf(&b, "  - including %d templated forms\n", s.Templated)
	fmt.Fprintf(&b, "  - including %d non-templated forms\n", s.UniqueForms-s.Templated)
	fmt.Fprintf(&b, "- %d forms with CRM code\n", s.WithCRM)
	fmt.Fprintf(&b, "- %d forms without CRM code\n", s.WithoutCRM)

	if s.Recovered > 0 {
		fmt.Fprintf(&b, "- %d forms recovered from initially missing URLs\n", s.Recovered)
	}

	if len(s.MappingFill) > 0 {
		b.WriteString("\nURL MAPPING METRICS:\n")
		for _, fill := range s.MappingFill {
			fmt.Fprintf(&b, "- %d/%d forms with %s information\n", fill.Filled, s.TotalForms, fill.Column)
		}
	}

	if len(s.CRMFill) > 0 {
		b.WriteString("\nCRM DATA METRICS:\n")
		for _, fill := range s.CRMFill {
			name := strings.TrimPrefix(fill.Column, reconcile.CRMPrefix)
			fmt.Fprintf(&b, "- %d/%d forms with %s information\n", fill.Filled, s.TotalForms, name)
		}
	}

	if len(alerts) > 0 {
		b.WriteString("\nATTENTION POINTS:\n")
		for _, a := range alerts {
			fmt.Fprintf(&b, "- %s\n", a.Message)
		}
	}

	return b.String()
}
