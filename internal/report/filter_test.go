package report

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApply_EmptyFilterKeepsEverything(t *testing.T) {
	out := Apply(testEnriched(), Filter{})
	assert.Equal(t, 3, out.Len())
}

func TestApply_Templates(t *testing.T) {
	out := Apply(testEnriched(), Filter{Templates: []string{"Newsletter"}})
	assert.Equal(t, 2, out.Len())
}

func TestApply_Clusters(t *testing.T) {
	out := Apply(testEnriched(), Filter{Clusters: []string{"Nord", "Sud"}})
	assert.Equal(t, 2, out.Len())
}

func TestApply_CRMStatus(t *testing.T) {
	with := Apply(testEnriched(), Filter{CRM: CRMWith})
	assert.Equal(t, 2, with.Len())

	without := Apply(testEnriched(), Filter{CRM: CRMWithout})
	require.Equal(t, 1, without.Len())
	assert.Equal(t, "https://ex.com/b", without.Rows[0][0])
}

func TestApply_Recovery(t *testing.T) {
	recovered := Apply(testEnriched(), Filter{Recovery: RecoveryOnly})
	require.Equal(t, 1, recovered.Len())
	assert.Equal(t, "https://ex.com/b", recovered.Rows[0][0])

	original := Apply(testEnriched(), Filter{Recovery: RecoveryOriginal})
	assert.Equal(t, 2, original.Len())
}

func TestApply_ArbitraryColumns(t *testing.T) {
	out := Apply(testEnriched(), Filter{Columns: map[string][]string{"Owner": {"alice"}}})
	require.Equal(t, 1, out.Len())
	assert.Equal(t, "https://ex.com/a", out.Rows[0][0])
}

func TestApply_CombinedFiltersIntersect(t *testing.T) {
	out := Apply(testEnriched(), Filter{
		Templates: []string{"Newsletter"},
		CRM:       CRMWith,
	})
	require.Equal(t, 1, out.Len())
	assert.Equal(t, "https://ex.com/a", out.Rows[0][0])
}
