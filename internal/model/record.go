package model

import "time"

// RecoveryStatus marks whether a record came from the initial crawl or from a
// later recovery pass over missing URLs.
type RecoveryStatus string

const (
	RecoveryStatusOriginal  RecoveryStatus = ""
	RecoveryStatusRecovered RecoveryStatus = "Recovered"
)

// ExtractedRecord is one iframe form observed on a crawled page.
// Immutable once produced by the extractor.
type ExtractedRecord struct {
	SourceURL      string         `json:"source_url"`
	IframeURL      string         `json:"iframe_url"`
	FormID         string         `json:"form_id,omitempty"`
	CRMCode        string         `json:"crm_code,omitempty"`
	RecoveryStatus RecoveryStatus `json:"recovery_status,omitempty"`
}

// Valid reports whether the record can participate in reconciliation.
// Records without a form ID cannot be joined and are dropped upstream.
func (r ExtractedRecord) Valid() bool {
	return r.FormID != ""
}

// RunParams captures the extraction settings a run was executed with.
type RunParams struct {
	Workers   int  `json:"workers"`
	TimeoutS  int  `json:"timeout_secs"`
	ChunkSize int  `json:"chunk_size"`
	TestMode  bool `json:"test_mode"`
	TestSize  int  `json:"test_size,omitempty"`
}

// Run is one stored extraction run.
type Run struct {
	ID         string            `json:"id"`
	StartedAt  time.Time         `json:"started_at"`
	InputURLs  []string          `json:"input_urls"`
	Params     RunParams         `json:"params"`
	Records    []ExtractedRecord `json:"records"`
	DurationMS int64             `json:"duration_ms"`
	Aborted    bool              `json:"aborted,omitempty"`
}

// RecordCount returns the number of iframe records found in the run.
func (r Run) RecordCount() int { return len(r.Records) }
