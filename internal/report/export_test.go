package report

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/formaudit-cli/internal/reconcile"
	"github.com/sells-group/formaudit-cli/internal/registry"
	"github.com/sells-group/formaudit-cli/internal/tabular"
)

func TestWriteCSV_Roundtrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")

	require.NoError(t, WriteCSV(testEnriched(), path))

	got, err := tabular.Load(path)
	require.NoError(t, err)
	assert.Equal(t, testEnriched().Columns, got.Columns)
	assert.Equal(t, 3, got.Len())
}

func TestWriteXLSX_AllSheets(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.xlsx")

	missing := tabular.New([]string{"URL", reconcile.ColStatus}, [][]string{
		{"https://ex.com/gone", reconcile.StatusMissing},
	})
	mapping := tabular.New([]string{"URL", "ID"}, [][]string{{"https://ex.com/a", "F1"}})
	crm := tabular.New([]string{"Code", "Region"}, [][]string{{"C1", "EU"}})
	templates := registry.NewTemplateMap(map[string]string{"F1": "Newsletter"})
	recovered := Apply(testEnriched(), Filter{Recovery: RecoveryOnly})

	err := WriteXLSX(testEnriched(), path, ExportOptions{
		Missing:   missing,
		Mapping:   mapping,
		CRM:       crm,
		Templates: templates,
		Recovered: recovered,
	})
	require.NoError(t, err)

	f, err := xlsx.OpenFile(path)
	require.NoError(t, err)

	var names []string
	for _, sheet := range f.Sheets {
		names = append(names, sheet.Name)
	}
	assert.Equal(t, []string{
		"Analysis Results",
		"Missing Forms",
		"URL Mapping Data",
		"CRM Campaign Data",
		"Template Data",
		"Recovered Forms",
	}, names)

	// Header row plus data rows on the main sheet.
	main := f.Sheets[0]
	require.NotEmpty(t, main.Rows)
	assert.Equal(t, reconcile.ColSourceURL, main.Rows[0].Cells[0].String())
	assert.Len(t, main.Rows, 4)
}

func TestWriteXLSX_SkipsEmptySheets(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.xlsx")

	err := WriteXLSX(testEnriched(), path, ExportOptions{
		Missing: tabular.New([]string{"URL"}, nil),
	})
	require.NoError(t, err)

	f, err := xlsx.OpenFile(path)
	require.NoError(t, err)
	require.Len(t, f.Sheets, 1)
	assert.Equal(t, "Analysis Results", f.Sheets[0].Name)
}

func TestWriteXLSX_StripCRMPrefix(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.xlsx")

	require.NoError(t, WriteXLSX(testEnriched(), path, ExportOptions{StripCRMPrefix: true}))

	f, err := xlsx.OpenFile(path)
	require.NoError(t, err)

	header := f.Sheets[0].Rows[0]
	var cols []string
	for _, c := range header.Cells {
		cols = append(cols, c.String())
	}
	assert.Contains(t, cols, "Region")
	assert.NotContains(t, cols, "CRM_Region")
}
