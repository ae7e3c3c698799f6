package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/formaudit-cli/internal/model"
	"github.com/sells-group/formaudit-cli/internal/reconcile"
	"github.com/sells-group/formaudit-cli/internal/report"
	"github.com/sells-group/formaudit-cli/internal/tabular"
)

var (
	analyzeRecords string
	analyzeRunID   string

	analyzeMapping       string
	analyzeURLColumn     string
	analyzeIDColumn      string
	analyzeIframeColumn  string
	analyzeMappingCols   []string
	analyzeCRM           string
	analyzeCRMCodeColumn string
	analyzeCRMCols       []string

	analyzeRecover bool

	analyzeXLSX    string
	analyzeCSV     string
	analyzeStrip   bool
	analyzeEmail   bool
	analyzeSummary bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Reconcile extracted forms against mapping and CRM tables",
	Long: "Loads an extraction run (from history or a JSON file), joins it with the " +
		"URL-mapping and CRM tables, detects forms missing from extraction, and writes " +
		"the enriched results.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		records, err := loadRecords(ctx)
		if err != nil {
			return err
		}
		if len(records) == 0 {
			return eris.New("no extraction records to analyze")
		}

		mapping, err := mappingInput()
		if err != nil {
			return err
		}
		crm, err := crmInput()
		if err != nil {
			return err
		}

		templates, err := loadTemplates()
		if err != nil {
			return err
		}
		engine := reconcile.NewEngine(templates)

		result, err := engine.Reconcile(records, mapping, crm)
		if err != nil {
			return eris.Wrap(err, "reconcile")
		}
		zap.L().Info("reconciliation complete",
			zap.Int("valid", result.Valid),
			zap.Int("dropped", result.Dropped),
			zap.Int("missing", missingCount(result.Missing)),
		)

		if analyzeRecover && result.Missing != nil && result.Missing.Len() > 0 {
			producer := newBatch(newExtractor())
			outcome, err := reconcile.Recover(ctx, producer, records, result.Missing, mapping.Config.URLColumn)
			if err != nil {
				return eris.Wrap(err, "recover missing urls")
			}
			if len(outcome.Recovered) > 0 {
				records = outcome.Merged
				result, err = engine.Reconcile(records, mapping, crm)
				if err != nil {
					return eris.Wrap(err, "reconcile after recovery")
				}
			}
		}

		summary := report.Summarize(result.Enriched)
		alerts := report.Alerts(result.Enriched)

		if analyzeCSV != "" {
			if err := report.WriteCSV(result.Enriched, analyzeCSV); err != nil {
				return err
			}
		}
		if analyzeXLSX != "" {
			opts := report.ExportOptions{
				StripCRMPrefix: analyzeStrip,
				Missing:        result.Missing,
				Templates:      templates,
			}
			if mapping != nil {
				opts.Mapping = mapping.Table
			}
			if crm != nil {
				opts.CRM = crm.Table
			}
			if summary.Recovered > 0 {
				opts.Recovered = report.Apply(result.Enriched, report.Filter{Recovery: report.RecoveryOnly})
			}
			if err := report.WriteXLSX(result.Enriched, analyzeXLSX, opts); err != nil {
				return err
			}
		}

		if analyzeEmail {
			fmt.Print(report.EmailBody(summary, alerts))
			return nil
		}
		if analyzeSummary || (analyzeCSV == "" && analyzeXLSX == "") {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(struct {
				Summary report.Summary `json:"summary"`
				Alerts  []report.Alert `json:"alerts,omitempty"`
			}{summary, alerts})
		}
		return nil
	},
}

// loadRecords resolves the extraction input: a stored run by ID, or a JSON
// file holding either a run object or a bare record array.
func loadRecords(ctx context.Context) ([]model.ExtractedRecord, error) {
	switch {
	case analyzeRunID != "":
		st, err := initStore()
		if err != nil {
			return nil, eris.Wrap(err, "init store")
		}
		defer st.Close() //nolint:errcheck
		if err := st.Migrate(ctx); err != nil {
			return nil, eris.Wrap(err, "migrate store")
		}
		run, err := st.GetRun(ctx, analyzeRunID)
		if err != nil {
			return nil, err
		}
		return run.Records, nil

	case analyzeRecords != "":
		data, err := os.ReadFile(analyzeRecords)
		if err != nil {
			return nil, eris.Wrap(err, "read records file")
		}
		var run model.Run
		if err := json.Unmarshal(data, &run); err == nil && len(run.Records) > 0 {
			return run.Records, nil
		}
		var records []model.ExtractedRecord
		if err := json.Unmarshal(data, &records); err != nil {
			return nil, eris.Wrap(err, "parse records file")
		}
		return records, nil

	default:
		return nil, eris.New("either --run or --records is required")
	}
}

// mappingInput loads the URL-mapping table and its column configuration.
// Returns nil when no mapping file was given.
func mappingInput() (*reconcile.MappingInput, error) {
	if analyzeMapping == "" {
		return nil, nil
	}
	t, err := tabular.Load(analyzeMapping)
	if err != nil {
		return nil, err
	}
	return &reconcile.MappingInput{
		Table: t,
		Config: reconcile.MappingConfig{
			URLColumn:       analyzeURLColumn,
			IDColumn:        analyzeIDColumn,
			IframeColumn:    analyzeIframeColumn,
			SelectedColumns: analyzeMappingCols,
		},
	}, nil
}

// crmInput loads the CRM table and its column configuration. Returns nil when
// no CRM file was given.
func crmInput() (*reconcile.CRMInput, error) {
	if analyzeCRM == "" {
		return nil, nil
	}
	t, err := tabular.Load(analyzeCRM)
	if err != nil {
		return nil, err
	}
	return &reconcile.CRMInput{
		Table: t,
		Config: reconcile.CRMConfig{
			CodeColumn:      analyzeCRMCodeColumn,
			SelectedColumns: analyzeCRMCols,
		},
	}, nil
}

func missingCount(t *tabular.Table) int {
	if t == nil {
		return 0
	}
	return t.Len()
}

func init() {
	analyzeCmd.Flags().StringVar(&analyzeRecords, "records", "", "extraction run JSON file (as written by extract)")
	analyzeCmd.Flags().StringVar(&analyzeRunID, "run", "", "stored run ID to analyze")

	analyzeCmd.Flags().StringVar(&analyzeMapping, "mapping", "", "URL-mapping table (.csv or .xlsx)")
	analyzeCmd.Flags().StringVar(&analyzeURLColumn, "url-column", "", "mapping column holding the page URL")
	analyzeCmd.Flags().StringVar(&analyzeIDColumn, "id-column", "", "mapping column holding the form ID")
	analyzeCmd.Flags().StringVar(&analyzeIframeColumn, "iframe-column", "", "mapping column holding the iframe URL (optional)")
	analyzeCmd.Flags().StringSliceVar(&analyzeMappingCols, "columns", nil, "extra mapping columns to project")

	analyzeCmd.Flags().StringVar(&analyzeCRM, "crm", "", "CRM table (.csv or .xlsx)")
	analyzeCmd.Flags().StringVar(&analyzeCRMCodeColumn, "crm-code-column", "", "CRM column holding the campaign code")
	analyzeCmd.Flags().StringSliceVar(&analyzeCRMCols, "crm-columns", nil, "CRM columns to project (prefixed CRM_)")

	analyzeCmd.Flags().BoolVar(&analyzeRecover, "recover", false, "re-crawl missing URLs and merge recovered forms")

	analyzeCmd.Flags().StringVar(&analyzeXLSX, "xlsx", "", "write a multi-sheet workbook to this path")
	analyzeCmd.Flags().StringVar(&analyzeCSV, "csv", "", "write the enriched table as CSV to this path")
	analyzeCmd.Flags().BoolVar(&analyzeStrip, "strip-crm-prefix", false, "drop the CRM_ prefix from exported column names")
	analyzeCmd.Flags().BoolVar(&analyzeEmail, "email", false, "print the email digest instead of the JSON summary")
	analyzeCmd.Flags().BoolVar(&analyzeSummary, "summary", false, "print the JSON summary even when exporting")

	rootCmd.AddCommand(analyzeCmd)
}
