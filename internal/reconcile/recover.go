package reconcile

import (
	"context"

	"go.uber.org/zap"

	"github.com/sells-group/formaudit-cli/internal/model"
	"github.com/sells-group/formaudit-cli/internal/tabular"
)

// Producer re-extracts records for a URL set. Implemented by the crawling
// layer; the engine only sees the resulting records. aborted reports that the
// run was cancelled cooperatively and the records are a partial set.
type Producer interface {
	Extract(ctx context.Context, urls []string) (records []model.ExtractedRecord, aborted bool, err error)
}

// RecoveryOutcome is the result of one recovery pass.
type RecoveryOutcome struct {
	// Recovered holds the newly found records, tagged Recovered.
	Recovered []model.ExtractedRecord
	// Merged is the original extraction set plus Recovered, in that order.
	// Originals are never dropped; reconciliation re-runs from scratch on
	// this set.
	Merged []model.ExtractedRecord
	// Partial marks a cancelled pass. Partial results are merged anyway; a
	// cancelled run is reported distinctly from a successful empty one.
	Partial bool
}

// Recover re-crawls exactly the missing-URL set and merges whatever comes
// back into the original extraction set. The caller then re-runs Reconcile on
// Merged; the enriched table stays a pure function of the current record set,
// with no incremental patching. Running recovery again on an already-recovered
// set is idempotent: URLs that still yield nothing simply remain missing.
func Recover(ctx context.Context, producer Producer, original []model.ExtractedRecord, missing *tabular.Table, urlColumn string) (*RecoveryOutcome, error) {
	urls := MissingURLs(missing, urlColumn)
	if len(urls) == 0 {
		return &RecoveryOutcome{Merged: original}, nil
	}

	zap.L().Info("reconcile: checking missing urls", zap.Int("urls", len(urls)))

	records, aborted, err := producer.Extract(ctx, urls)
	if err != nil {
		return nil, err
	}

	recovered := make([]model.ExtractedRecord, len(records))
	for i, rec := range records {
		rec.RecoveryStatus = model.RecoveryStatusRecovered
		recovered[i] = rec
	}

	merged := make([]model.ExtractedRecord, 0, len(original)+len(recovered))
	merged = append(merged, original...)
	merged = append(merged, recovered...)

	if aborted {
		zap.L().Warn("reconcile: recovery aborted, merging partial results",
			zap.Int("recovered", len(recovered)),
		)
	} else if len(recovered) == 0 {
		zap.L().Info("reconcile: no additional forms found on missing urls")
	} else {
		zap.L().Info("reconcile: recovered forms from missing urls",
			zap.Int("recovered", len(recovered)),
		)
	}

	return &RecoveryOutcome{
		Recovered: recovered,
		Merged:    merged,
		Partial:   aborted,
	}, nil
}
