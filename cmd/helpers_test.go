package main

import (
	"bytes"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/formaudit-cli/internal/model"
	"github.com/sells-group/formaudit-cli/internal/tabular"
)

func TestReadURLLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "urls.txt")
	require.NoError(t, os.WriteFile(path, []byte(
		"https://ex.com/a\n"+
			"\n"+
			"# comment\n"+
			"  https://ex.com/b  \n",
	), 0o644))

	urls, err := readURLLines(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"https://ex.com/a", "https://ex.com/b"}, urls)
}

func TestReadURLLines_MissingFile(t *testing.T) {
	_, err := readURLLines(filepath.Join(t.TempDir(), "nope.txt"))
	assert.Error(t, err)
}

func TestFormatRunList(t *testing.T) {
	runs := []model.Run{
		{
			ID:         "0d9c1c6a-8f36-4f0e-9f58-1df1f54a2a11",
			StartedAt:  time.Date(2026, 8, 1, 9, 30, 0, 0, time.UTC),
			InputURLs:  []string{"https://ex.com/a", "https://ex.com/b"},
			Records:    []model.ExtractedRecord{{FormID: "F1"}},
			DurationMS: 2500,
			Aborted:    true,
		},
	}

	var buf bytes.Buffer
	formatRunList(&buf, runs)

	out := buf.String()
	assert.Contains(t, out, "0d9c1c6a")
	assert.NotContains(t, out, "8f36-4f0e")
	assert.Contains(t, out, "2026-08-01 09:30")
	assert.Contains(t, out, "yes")
}

func TestTruncateID(t *testing.T) {
	assert.Equal(t, "12345678", truncateID("123456789abc"))
	assert.Equal(t, "short", truncateID("short"))
}

func TestRecordTable(t *testing.T) {
	tbl := recordTable([]model.ExtractedRecord{
		{SourceURL: "https://ex.com/a", IframeURL: "https://frm/x?ID=F1", FormID: "F1", CRMCode: "C1"},
	})

	require.Equal(t, 1, tbl.Len())
	assert.Equal(t, "https://ex.com/a", tbl.Cell(0, "URL source"))
	assert.Equal(t, "F1", tbl.Cell(0, "Form ID"))
}

func TestMissingCount(t *testing.T) {
	assert.Equal(t, 0, missingCount(nil))
	assert.Equal(t, 2, missingCount(tabular.New([]string{"URL"}, [][]string{{"a"}, {"b"}})))
}

func TestWriteJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	writeJSON(rec, 404, map[string]string{"error": "run not found"})

	assert.Equal(t, 404, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"error":"run not found"}`, rec.Body.String())
}
