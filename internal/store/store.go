package store

import (
	"context"

	"github.com/sells-group/formaudit-cli/internal/model"
)

// RunFilter specifies criteria for listing stored runs.
type RunFilter struct {
	Limit  int `json:"limit,omitempty"`
	Offset int `json:"offset,omitempty"`
}

// Store persists extraction run history.
type Store interface {
	SaveRun(ctx context.Context, run model.Run) (string, error)
	GetRun(ctx context.Context, runID string) (*model.Run, error)
	ListRuns(ctx context.Context, filter RunFilter) ([]model.Run, error)

	Migrate(ctx context.Context) error
	Close() error
}
