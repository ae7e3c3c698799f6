package reconcile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/formaudit-cli/internal/model"
	"github.com/sells-group/formaudit-cli/internal/tabular"
)

func testCRMInput(rows [][]string) *CRMInput {
	return &CRMInput{
		Table: tabular.New([]string{"Campaign Code", "Region", "Budget"}, rows),
		Config: CRMConfig{
			CodeColumn:      "Campaign Code",
			SelectedColumns: []string{"Region", "Budget"},
		},
	}
}

func reconcileWithCRM(t *testing.T, records []model.ExtractedRecord, crm *CRMInput) *tabular.Table {
	t.Helper()
	result, err := NewEngine(nil).Reconcile(records, nil, crm)
	require.NoError(t, err)
	return result.Enriched
}

func TestCRMJoin_ExactMatch(t *testing.T) {
	crm := testCRMInput([][]string{
		{"SPRING", "EU", "100"},
		{"FALL", "APAC", "50"},
	})

	enriched := reconcileWithCRM(t, []model.ExtractedRecord{
		{SourceURL: "https://ex.com/a", FormID: "F1", CRMCode: "spring"},
	}, crm)

	assert.Equal(t, "EU", enriched.Cell(0, "CRM_Region"))
	assert.Equal(t, "100", enriched.Cell(0, "CRM_Budget"))
}

func TestCRMJoin_TableCodeIsPrefixOfRecordCode(t *testing.T) {
	// The observed code carries extra trailing characters relative to the
	// canonical table code.
	crm := testCRMInput([][]string{
		{"SPRING", "EU", "100"},
	})

	enriched := reconcileWithCRM(t, []model.ExtractedRecord{
		{SourceURL: "https://ex.com/a", FormID: "F1", CRMCode: "SPRING24"},
	}, crm)

	assert.Equal(t, "EU", enriched.Cell(0, "CRM_Region"))
}

func TestCRMJoin_RecordCodeIsPrefixOfTableCode(t *testing.T) {
	crm := testCRMInput([][]string{
		{"SPRING24X", "US", "200"},
	})

	enriched := reconcileWithCRM(t, []model.ExtractedRecord{
		{SourceURL: "https://ex.com/a", FormID: "F1", CRMCode: "SPRING24"},
	}, crm)

	assert.Equal(t, "US", enriched.Cell(0, "CRM_Region"))
}

func TestCRMJoin_TruncatedRuleBeatsExtendedRule(t *testing.T) {
	// Rule 2 (record code truncated) is checked before rule 3.
	crm := testCRMInput([][]string{
		{"SPRING", "EU", "100"},
		{"SPRING24X", "US", "200"},
	})

	enriched := reconcileWithCRM(t, []model.ExtractedRecord{
		{SourceURL: "https://ex.com/a", FormID: "F1", CRMCode: "SPRING24"},
	}, crm)

	assert.Equal(t, "US", enriched.Cell(0, "CRM_Region"))
}

func TestCRMJoin_RowOrderBreaksTies(t *testing.T) {
	crm := testCRMInput([][]string{
		{"SPRING24A", "US", "200"},
		{"SPRING24B", "EU", "100"},
	})

	enriched := reconcileWithCRM(t, []model.ExtractedRecord{
		{SourceURL: "https://ex.com/a", FormID: "F1", CRMCode: "SPRING24"},
	}, crm)

	assert.Equal(t, "US", enriched.Cell(0, "CRM_Region"))
}

func TestCRMJoin_NoMatchLeavesCellsAbsent(t *testing.T) {
	crm := testCRMInput([][]string{
		{"SPRING", "EU", "100"},
	})

	enriched := reconcileWithCRM(t, []model.ExtractedRecord{
		{SourceURL: "https://ex.com/a", FormID: "F1", CRMCode: "WINTER"},
		{SourceURL: "https://ex.com/b", FormID: "F2"},
		{SourceURL: "https://ex.com/c", FormID: "F3", CRMCode: "none"},
	}, crm)

	for i := range 3 {
		assert.Equal(t, "", enriched.Cell(i, "CRM_Region"), "row %d", i)
		assert.Equal(t, "", enriched.Cell(i, "CRM_Budget"), "row %d", i)
	}
}

func TestCRMJoin_AbsentTableCodesIgnored(t *testing.T) {
	crm := testCRMInput([][]string{
		{"none", "X", "0"},
		{"", "Y", "0"},
		{"SPRING", "EU", "100"},
	})

	enriched := reconcileWithCRM(t, []model.ExtractedRecord{
		{SourceURL: "https://ex.com/a", FormID: "F1", CRMCode: "SPRING"},
	}, crm)

	assert.Equal(t, "EU", enriched.Cell(0, "CRM_Region"))
}

func TestCRMJoin_EmptyCodeColumnIsPassthrough(t *testing.T) {
	crm := &CRMInput{
		Table:  tabular.New([]string{"Campaign Code", "Region"}, [][]string{{"SPRING", "EU"}}),
		Config: CRMConfig{SelectedColumns: []string{"Region"}},
	}

	enriched := reconcileWithCRM(t, []model.ExtractedRecord{
		{SourceURL: "https://ex.com/a", FormID: "F1", CRMCode: "SPRING"},
	}, crm)

	assert.False(t, enriched.HasColumn("CRM_Region"))
}

func TestCRMJoin_MisconfiguredColumnFails(t *testing.T) {
	crm := &CRMInput{
		Table:  tabular.New([]string{"Campaign Code"}, [][]string{{"SPRING"}}),
		Config: CRMConfig{CodeColumn: "Nope"},
	}

	_, err := NewEngine(nil).Reconcile([]model.ExtractedRecord{{SourceURL: "u", FormID: "F1"}}, nil, crm)
	assert.Error(t, err)
}
