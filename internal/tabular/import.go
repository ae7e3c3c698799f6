package tabular

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
	"go.uber.org/zap"
)

// MaxImportRows caps imported tables; rows beyond the cap are dropped with a
// warning. Protects downstream joins from runaway inputs.
const MaxImportRows = 100000

// Load reads a CSV or XLSX file into a Table and validates it. This is the
// collaborator boundary: tables handed to the reconciliation engine are
// guaranteed non-empty with at least two columns.
func Load(path string) (*Table, error) {
	var (
		t   *Table
		err error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		t, err = loadCSV(path)
	case ".xlsx":
		t, err = loadXLSX(path)
	default:
		return nil, eris.Errorf("tabular: unsupported file type %q (want .csv or .xlsx)", filepath.Ext(path))
	}
	if err != nil {
		return nil, err
	}
	return validate(t, path)
}

// loadCSV reads a CSV file, trying semicolon first and falling back to comma.
// Exported mapping tables in this domain are usually French-locale exports
// with ";" separators.
func loadCSV(path string) (*Table, error) {
	for _, sep := range []rune{';', ','} {
		t, err := readCSV(path, sep)
		if err != nil {
			return nil, err
		}
		if len(t.Columns) > 1 {
			return t, nil
		}
	}
	// Neither separator produced more than one column; return the comma
	// parse and let validation reject it.
	return readCSV(path, ',')
}

func readCSV(path string, sep rune) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrap(err, "tabular: open csv")
	}
	defer f.Close() //nolint:errcheck

	r := csv.NewReader(f)
	r.Comma = sep
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, eris.Wrap(err, "tabular: parse csv")
	}
	if len(records) == 0 {
		return &Table{}, nil
	}

	return New(records[0], records[1:]), nil
}

// loadXLSX reads the first sheet of an XLSX file.
func loadXLSX(path string) (*Table, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "tabular: open xlsx")
	}
	if len(f.Sheets) == 0 {
		return &Table{}, nil
	}

	sheet := f.Sheets[0]
	var header []string
	var rows [][]string
	for i, row := range sheet.Rows {
		cells := make([]string, len(row.Cells))
		for j, cell := range row.Cells {
			cells[j] = cell.String()
		}
		if i == 0 {
			header = cells
			continue
		}
		rows = append(rows, cells)
	}

	if header == nil {
		return &Table{}, nil
	}
	return New(header, rows), nil
}

// validate enforces the import contract: non-empty, at least two columns,
// row cap applied.
func validate(t *Table, path string) (*Table, error) {
	if len(t.Columns) == 0 || t.Len() == 0 {
		return nil, eris.Errorf("tabular: %s is empty", path)
	}
	if len(t.Columns) <= 1 {
		return nil, eris.Errorf("tabular: %s parsed to a single column; check the separator", path)
	}
	if t.Len() > MaxImportRows {
		zap.L().Warn("tabular: row cap applied",
			zap.String("path", path),
			zap.Int("rows", t.Len()),
			zap.Int("cap", MaxImportRows),
		)
		t = &Table{Columns: t.Columns, Rows: t.Rows[:MaxImportRows]}
	}
	return t, nil
}
