package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/formaudit-cli/internal/model"
	"github.com/sells-group/formaudit-cli/internal/reconcile"
	"github.com/sells-group/formaudit-cli/internal/report"
	"github.com/sells-group/formaudit-cli/internal/store"
	"github.com/sells-group/formaudit-cli/internal/tabular"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Inspect extraction run history",
	Long:  "Commands for listing and viewing stored extraction runs.",
}

// -- history list --

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List extraction runs",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		st, err := initStore()
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck
		if err := st.Migrate(ctx); err != nil {
			return err
		}

		limit, _ := cmd.Flags().GetInt("limit")
		offset, _ := cmd.Flags().GetInt("offset")

		runs, err := st.ListRuns(ctx, store.RunFilter{Limit: limit, Offset: offset})
		if err != nil {
			return eris.Wrap(err, "history list")
		}

		if len(runs) == 0 {
			fmt.Fprintln(os.Stderr, "No runs found.")
			return nil
		}

		formatRunList(os.Stdout, runs)
		return nil
	},
}

// -- history show --

var historyShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Show full details of a run",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStore()
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck
		if err := st.Migrate(ctx); err != nil {
			return err
		}

		run, err := st.GetRun(ctx, args[0])
		if err != nil {
			return eris.Wrap(err, "history show")
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(run)
	},
}

// -- history export --

var historyExportCmd = &cobra.Command{
	Use:   "export <run-id>",
	Short: "Re-export a run's records",
	Long:  "Writes the records of a stored run as CSV (--csv) or JSON (default, stdout).",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStore()
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck
		if err := st.Migrate(ctx); err != nil {
			return err
		}

		run, err := st.GetRun(ctx, args[0])
		if err != nil {
			return eris.Wrap(err, "history export")
		}

		csvPath, _ := cmd.Flags().GetString("csv")
		if csvPath != "" {
			return report.WriteCSV(recordTable(run.Records), csvPath)
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(run.Records)
	},
}

// recordTable renders extraction records with the standard export headers.
func recordTable(records []model.ExtractedRecord) *tabular.Table {
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
	return tabular.New([]string{
		reconcile.ColSourceURL,
		reconcile.ColIframe,
		reconcile.ColFormID,
		reconcile.ColCRMCampaign,
		reconcile.ColRecovery,
	}, rows)
}

func init() {
	historyListCmd.Flags().Int("limit", 50, "max number of runs to display")
	historyListCmd.Flags().Int("offset", 0, "number of runs to skip")

	historyExportCmd.Flags().String("csv", "", "write records as CSV to this path")

	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyShowCmd)
	historyCmd.AddCommand(historyExportCmd)
	rootCmd.AddCommand(historyCmd)
}

// formatRunList writes a tabular list of runs to w.
func formatRunList(out io.Writer, runs []model.Run) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tSTARTED\tURLS\tRECORDS\tDURATION\tABORTED")
	_, _ = fmt.Fprintln(w, "--\t-------\t----\t-------\t--------\t-------")

	for _, r := range runs {
		aborted := ""
		if r.Aborted {
			aborted = "yes"
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%s\t%s\n",
			truncateID(r.ID),
			r.StartedAt.Format("2006-01-02 15:04"),
			len(r.InputURLs),
			r.RecordCount(),
			(time.Duration(r.DurationMS) * time.Millisecond).Round(time.Second),
			aborted,
		)
	}
	_ = w.Flush()
}

// truncateID returns the first 8 characters of a UUID for compact display.
func truncateID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
