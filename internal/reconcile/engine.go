package reconcile

import (
	"go.uber.org/zap"

	"github.com/sells-group/formaudit-cli/internal/model"
	"github.com/sells-group/formaudit-cli/internal/registry"
	"github.com/sells-group/formaudit-cli/internal/tabular"
)

// Engine reconciles extraction records against the optional mapping and CRM
// tables. It is a pure function of its inputs plus the static template map:
// no I/O, no locking, safe to invoke repeatedly and concurrently on
// independent snapshots.
type Engine struct {
	templates *registry.TemplateMap
}

// NewEngine creates an Engine. templates may be nil when no template
// dictionary is available; template annotation then yields empty cells.
func NewEngine(templates *registry.TemplateMap) *Engine {
	if templates == nil {
		templates = registry.NewTemplateMap(nil)
	}
	return &Engine{templates: templates}
}

// Result is the reconciliation output handed to the report layer.
type Result struct {
	// Enriched holds one row per valid extraction record, column-complete.
	Enriched *tabular.Table
	// Missing holds mapping rows never observed in extraction; nil when no
	// mapping table was supplied.
	Missing *tabular.Table
	// Valid counts the records that participated; Dropped the records
	// discarded for having no form ID.
	Valid   int
	Dropped int
}

// Reconcile builds the enriched table from scratch. Either input may be nil:
// with no mapping and no CRM table the result is the extraction table with
// the template annotation only. Rows are never dropped or duplicated past the
// initial form-ID validation, and every resolved column is deterministic
// given the same inputs.
func (e *Engine) Reconcile(records []model.ExtractedRecord, mapping *MappingInput, crm *CRMInput) (*Result, error) {
	valid := make([]model.ExtractedRecord, 0, len(records))
	for _, rec := range records {
		if rec.Valid() {
			valid = append(valid, rec)
		}
	}
	if dropped := len(records) - len(valid); dropped > 0 {
		zap.L().Debug("reconcile: dropped records without form id", zap.Int("dropped", dropped))
	}

	enriched := baseTable(valid)

	// Template annotation.
	names := make([]string, len(valid))
	for i, rec := range valid {
		names[i] = e.templates.Name(rec.FormID)
	}
	enriched, err := enriched.WithColumn(ColTemplate, names)
	if err != nil {
		return nil, err
	}

	var missing *tabular.Table
	if mapping != nil {
		if err := mapping.validate(); err != nil {
			return nil, err
		}
		enriched, err = e.applyMapping(enriched, valid, mapping)
		if err != nil {
			return nil, err
		}
		// Missing detection considers every observed source URL, including
		// pages whose records were dropped for lacking a form ID: the page
		// itself was still crawled.
		missing = FindMissing(records, mapping.Table, mapping.Config.URLColumn)
	}

	// A CRM input without a configured code column is a no-op passthrough.
	if crm != nil && crm.Config.CodeColumn != "" {
		if err := crm.validate(); err != nil {
			return nil, err
		}
		enriched, err = applyCRM(enriched, crm)
		if err != nil {
			return nil, err
		}
	}

	return &Result{
		Enriched: enriched,
		Missing:  missing,
		Valid:    len(valid),
		Dropped:  len(records) - len(valid),
	}, nil
}

// baseTable lays out the extraction-side columns of the enriched table.
func baseTable(records []model.ExtractedRecord) *tabular.Table {
	columns := []string{ColSourceURL, ColIframe, ColFormID, ColCRMCampaign, ColRecovery}
	rows := make([][]string, len(records))
	for i, rec := range records {
		rows[i] = []string{
			rec.SourceURL,
			rec.IframeURL,
			rec.FormID,
			rec.CRMCode,
			string(rec.RecoveryStatus),
		}
	}
	return tabular.New(columns, rows)
}
