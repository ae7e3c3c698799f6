// Package registry loads the static form-template dictionary shipped with
// the tool. The dictionary maps form IDs of shared, reusable templates to a
// human-readable name; it is loaded once at startup and never mutated.
package registry

import (
	"encoding/json"
	"os"
	"sort"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// TemplateMap maps form IDs to template names. Template IDs are shared across
// many unrelated pages, so they double as the exclusion set for ID-based
// mapping joins.
type TemplateMap struct {
	names map[string]string
}

// LoadTemplates reads a form_id -> template_name JSON dictionary.
// A missing file is not an error: template annotation is optional and the
// engine degrades to an empty map.
func LoadTemplates(path string) (*TemplateMap, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			zap.L().Debug("registry: no template mapping file", zap.String("path", path))
			return &TemplateMap{names: map[string]string{}}, nil
		}
		return nil, eris.Wrap(err, "registry: read template mapping")
	}

	var names map[string]string
	if err := json.Unmarshal(data, &names); err != nil {
		return nil, eris.Wrap(err, "registry: parse template mapping")
	}

	zap.L().Debug("registry: loaded template mapping", zap.Int("templates", len(names)))
	return &TemplateMap{names: names}, nil
}

// NewTemplateMap builds a TemplateMap from an in-memory dictionary.
func NewTemplateMap(names map[string]string) *TemplateMap {
	if names == nil {
		names = map[string]string{}
	}
	return &TemplateMap{names: names}
}

// Name returns the template name for a form ID, or "" if the ID is not a
// known template.
func (m *TemplateMap) Name(formID string) string {
	if m == nil {
		return ""
	}
	return m.names[formID]
}

// Contains reports whether the form ID belongs to a shared template.
func (m *TemplateMap) Contains(formID string) bool {
	if m == nil {
		return false
	}
	_, ok := m.names[formID]
	return ok
}

// SortedIDs returns all template form IDs in sorted order.
func (m *TemplateMap) SortedIDs() []string {
	if m == nil {
		return nil
	}
	ids := make([]string, 0, len(m.names))
	for id := range m.names {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Len returns the number of known templates.
func (m *TemplateMap) Len() int {
	if m == nil {
		return 0
	}
	return len(m.names)
}
