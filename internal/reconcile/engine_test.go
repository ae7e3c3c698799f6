package reconcile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/formaudit-cli/internal/model"
	"github.com/sells-group/formaudit-cli/internal/registry"
)

func TestReconcile_NoInputsIsExtractionTable(t *testing.T) {
	records := []model.ExtractedRecord{
		{SourceURL: "https://ex.com/a", IframeURL: "https://frm/x?ID=F1", FormID: "F1", CRMCode: "C1"},
	}

	result, err := NewEngine(nil).Reconcile(records, nil, nil)
	require.NoError(t, err)

	assert.Equal(t, 1, result.Valid)
	assert.Equal(t, 0, result.Dropped)
	assert.Nil(t, result.Missing)

	enriched := result.Enriched
	assert.Equal(t, []string{ColSourceURL, ColIframe, ColFormID, ColCRMCampaign, ColRecovery, ColTemplate}, enriched.Columns)
	assert.Equal(t, "https://ex.com/a", enriched.Cell(0, ColSourceURL))
	assert.Equal(t, "C1", enriched.Cell(0, ColCRMCampaign))
}

func TestReconcile_DropsRecordsWithoutFormID(t *testing.T) {
	records := []model.ExtractedRecord{
		{SourceURL: "https://ex.com/a", FormID: "F1"},
		{SourceURL: "https://ex.com/b"},
	}

	result, err := NewEngine(nil).Reconcile(records, nil, nil)
	require.NoError(t, err)

	assert.Equal(t, 1, result.Valid)
	assert.Equal(t, 1, result.Dropped)
	assert.Equal(t, 1, result.Enriched.Len())
}

func TestReconcile_TemplateAnnotation(t *testing.T) {
	templates := registry.NewTemplateMap(map[string]string{"F1": "Newsletter"})

	records := []model.ExtractedRecord{
		{SourceURL: "https://ex.com/a", FormID: "F1"},
		{SourceURL: "https://ex.com/b", FormID: "F2"},
	}

	result, err := NewEngine(templates).Reconcile(records, nil, nil)
	require.NoError(t, err)

	assert.Equal(t, "Newsletter", result.Enriched.Cell(0, ColTemplate))
	assert.Equal(t, "", result.Enriched.Cell(1, ColTemplate))
}

func TestReconcile_MissingTableProducedWithMapping(t *testing.T) {
	mapping := testMappingInput([][]string{
		{"https://ex.com/a", "F1", "", "C1", "", ""},
		{"https://ex.com/gone", "F2", "", "C2", "", ""},
	})

	records := []model.ExtractedRecord{
		{SourceURL: "https://ex.com/a", IframeURL: "https://frm/x?ID=F1", FormID: "F1"},
	}

	result, err := NewEngine(nil).Reconcile(records, mapping, nil)
	require.NoError(t, err)

	require.NotNil(t, result.Missing)
	require.Equal(t, 1, result.Missing.Len())
	assert.Equal(t, "https://ex.com/gone", result.Missing.Cell(0, "Page URL"))
}

func TestReconcile_RecoveryStatusCarriedThrough(t *testing.T) {
	records := []model.ExtractedRecord{
		{SourceURL: "https://ex.com/a", FormID: "F1", RecoveryStatus: model.RecoveryStatusRecovered},
	}

	result, err := NewEngine(nil).Reconcile(records, nil, nil)
	require.NoError(t, err)

	assert.Equal(t, string(model.RecoveryStatusRecovered), result.Enriched.Cell(0, ColRecovery))
}

func TestReconcile_Deterministic(t *testing.T) {
	mapping := testMappingInput([][]string{
		{"https://ex.com/a", "F1", "", "C1", "Nord", "alice"},
		{"https://ex.com/b", "F2", "", "C2", "Sud", "bob"},
	})
	crm := testCRMInput([][]string{
		{"C1", "EU", "100"},
		{"C2", "US", "200"},
	})

	records := []model.ExtractedRecord{
		{SourceURL: "https://ex.com/a", IframeURL: "https://frm/x?ID=F1", FormID: "F1"},
		{SourceURL: "https://ex.com/b", IframeURL: "https://frm/x?ID=F2", FormID: "F2"},
	}

	engine := NewEngine(nil)
	first, err := engine.Reconcile(records, mapping, crm)
	require.NoError(t, err)
	second, err := engine.Reconcile(records, mapping, crm)
	require.NoError(t, err)

	assert.Equal(t, first.Enriched, second.Enriched)
	assert.Equal(t, first.Missing, second.Missing)
}
