package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractedRecord_Valid(t *testing.T) {
	t.Parallel()

	assert.True(t, ExtractedRecord{SourceURL: "https://ex.com/a", FormID: "F1"}.Valid())
	assert.False(t, ExtractedRecord{SourceURL: "https://ex.com/a"}.Valid())
}

func TestRun_RecordCount(t *testing.T) {
	t.Parallel()

	run := Run{Records: []ExtractedRecord{{FormID: "F1"}, {FormID: "F2"}}}
	assert.Equal(t, 2, run.RecordCount())
	assert.Equal(t, 0, Run{}.RecordCount())
}
