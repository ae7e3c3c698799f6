package reconcile

import (
	"github.com/rotisserie/eris"

	"github.com/sells-group/formaudit-cli/internal/tabular"
)

// Column names of the enriched output table. They intentionally match the
// headers of the historical exports so downstream spreadsheets keep working.
const (
	ColSourceURL   = "URL source"
	ColIframe      = "Iframe"
	ColFormID      = "Form ID"
	ColCRMCampaign = "CRM Campaign"
	ColTemplate    = "Template"
	ColCluster     = "Cluster"
	ColRecovery    = "Recovery Status"
	ColStatus      = "Status"

	// CRMPrefix is prepended to every column projected from the CRM table.
	CRMPrefix = "CRM_"

	// StatusMissing tags mapping rows absent from extraction.
	StatusMissing = "Missing in extraction"
)

// MappingConfig names the roles of the URL-mapping table's columns.
type MappingConfig struct {
	URLColumn       string   `json:"url_column"`
	IDColumn        string   `json:"id_column"`
	IframeColumn    string   `json:"iframe_column,omitempty"`
	SelectedColumns []string `json:"selected_columns,omitempty"`
}

// CRMConfig names the roles of the CRM table's columns.
type CRMConfig struct {
	CodeColumn      string   `json:"crm_code_column"`
	SelectedColumns []string `json:"selected_columns,omitempty"`
}

// MappingInput bundles a URL-mapping table with its column configuration.
type MappingInput struct {
	Table  *tabular.Table
	Config MappingConfig
}

// CRMInput bundles a CRM table with its column configuration.
type CRMInput struct {
	Table  *tabular.Table
	Config CRMConfig
}

// validate checks the configuration against the table shape. Misconfigured
// column names are programmer errors and fail fast.
func (in *MappingInput) validate() error {
	if in.Table == nil {
		return eris.New("reconcile: mapping input has no table")
	}
	if !in.Table.HasColumn(in.Config.URLColumn) {
		return eris.Errorf("reconcile: url column %q not in mapping table", in.Config.URLColumn)
	}
	if !in.Table.HasColumn(in.Config.IDColumn) {
		return eris.Errorf("reconcile: id column %q not in mapping table", in.Config.IDColumn)
	}
	if in.Config.IframeColumn != "" && !in.Table.HasColumn(in.Config.IframeColumn) {
		return eris.Errorf("reconcile: iframe column %q not in mapping table", in.Config.IframeColumn)
	}
	for _, c := range in.Config.SelectedColumns {
		if !in.Table.HasColumn(c) {
			return eris.Errorf("reconcile: selected column %q not in mapping table", c)
		}
	}
	return nil
}

func (in *CRMInput) validate() error {
	if in.Table == nil {
		return eris.New("reconcile: crm input has no table")
	}
	if !in.Table.HasColumn(in.Config.CodeColumn) {
		return eris.Errorf("reconcile: crm code column %q not in crm table", in.Config.CodeColumn)
	}
	for _, c := range in.Config.SelectedColumns {
		if !in.Table.HasColumn(c) {
			return eris.Errorf("reconcile: selected crm column %q not in crm table", c)
		}
	}
	return nil
}
