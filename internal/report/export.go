package report

import (
	"encoding/csv"
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
	"go.uber.org/zap"

	"github.com/sells-group/formaudit-cli/internal/reconcile"
	"github.com/sells-group/formaudit-cli/internal/registry"
	"github.com/sells-group/formaudit-cli/internal/tabular"
)

// ExportOptions selects the sheets of a multi-sheet workbook export and
// whether CRM_ prefixes are stripped from column names.
type ExportOptions struct {
	StripCRMPrefix bool

	// Optional supplementary sheets; nil skips the sheet.
	Missing   *tabular.Table
	Mapping   *tabular.Table
	CRM       *tabular.Table
	Templates *registry.TemplateMap
	Recovered *tabular.Table
}

// WriteCSV writes a table as a comma-separated file.
func WriteCSV(t *tabular.Table, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrap(err, "report: create csv")
	}
	defer f.Close() //nolint:errcheck

	w := csv.NewWriter(f)
	if err := w.Write(t.Columns); err != nil {
		return eris.Wrap(err, "report: write csv header")
	}
	for _, row := range t.Rows {
		if err := w.Write(row); err != nil {
			return eris.Wrap(err, "report: write csv row")
		}
	}
	w.Flush()
	return eris.Wrap(w.Error(), "report: flush csv")
}

// WriteXLSX writes the enriched table plus the selected supplementary sheets
// as a multi-sheet workbook.
func WriteXLSX(enriched *tabular.Table, path string, opts ExportOptions) error {
	f := xlsx.NewFile()

	main := enriched
	if opts.StripCRMPrefix {
		main = main.RenameColumns(func(c string) string {
			return strings.TrimPrefix(c, reconcile.CRMPrefix)
		})
	}

	if err := addSheet(f, "Analysis Results", main); err != nil {
		return err
	}
	if opts.Missing != nil && opts.Missing.Len() > 0 {
		if err := addSheet(f, "Missing Forms", opts.Missing); err != nil {
			return err
		}
	}
	if opts.Mapping != nil {
		if err := addSheet(f, "URL Mapping Data", opts.Mapping); err != nil {
			return err
		}
	}
	if opts.CRM != nil {
		if err := addSheet(f, "CRM Campaign Data", opts.CRM); err != nil {
			return err
		}
	}
	if opts.Templates != nil && opts.Templates.Len() > 0 {
		if err := addSheet(f, "Template Data", templateTable(opts.Templates)); err != nil {
			return err
		}
	}
	if opts.Recovered != nil && opts.Recovered.Len() > 0 {
		if err := addSheet(f, "Recovered Forms", opts.Recovered); err != nil {
			return err
		}
	}

	if err := f.Save(path); err != nil {
		return eris.Wrap(err, "report: save xlsx")
	}
	zap.L().Info("report: workbook written", zap.String("path", path))
	return nil
}

func addSheet(f *xlsx.File, name string, t *tabular.Table) error {
	sheet, err := f.AddSheet(name)
	if err != nil {
		return eris.Wrapf(err, "report: add sheet %s", name)
	}

	header := sheet.AddRow()
	for _, col := range t.Columns {
		header.AddCell().SetString(col)
	}
	for _, row := range t.Rows {
		r := sheet.AddRow()
		for _, cell := range row {
			r.AddCell().SetString(cell)
		}
	}
	return nil
}

// templateTable renders the template dictionary as a two-column table.
func templateTable(templates *registry.TemplateMap) *tabular.Table {
	ids := templates.SortedIDs()
	rows := make([][]string, len(ids))
	for i, id := range ids {
		rows[i] = []string{id, templates.Name(id)}
	}
	return tabular.New([]string{"Form ID", "Template Name"}, rows)
}
