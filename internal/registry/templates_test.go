package registry

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadTemplates_MissingFileIsEmpty(t *testing.T) {
	m, err := LoadTemplates(filepath.Join(t.TempDir(), "nope.json"))
	require.NoError(t, err)
	assert.Equal(t, 0, m.Len())
	assert.False(t, m.Contains("F1"))
}

func TestLoadTemplates_Valid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "templates.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"F1":"Newsletter","F2":"Contact"}`), 0o644))

	m, err := LoadTemplates(path)
	require.NoError(t, err)

	assert.Equal(t, 2, m.Len())
	assert.True(t, m.Contains("F1"))
	assert.Equal(t, "Newsletter", m.Name("F1"))
	assert.Equal(t, "", m.Name("unknown"))
	assert.Equal(t, []string{"F1", "F2"}, m.SortedIDs())
}

func TestLoadTemplates_BadJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte(`not json`), 0o644))

	_, err := LoadTemplates(path)
	assert.Error(t, err)
}

func TestTemplateMap_NilSafe(t *testing.T) {
	var m *TemplateMap
	assert.Equal(t, "", m.Name("F1"))
	assert.False(t, m.Contains("F1"))
	assert.Nil(t, m.SortedIDs())
	assert.Equal(t, 0, m.Len())
}

func TestNewTemplateMap_NilMap(t *testing.T) {
	m := NewTemplateMap(nil)
	assert.Equal(t, 0, m.Len())
	assert.False(t, m.Contains("F1"))
}
