package extract

import (
	"context"
	"math/rand/v2"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/formaudit-cli/internal/model"
)

// ProgressFunc receives completion counts as a batch advances. It always
// reaches done == total, including on abort, so progress indicators never
// stick below 100%.
type ProgressFunc func(done, total int)

// BatchOptions configures a crawl batch.
type BatchOptions struct {
	Workers   int
	ChunkSize int
	Progress  ProgressFunc
	Abort     *AbortFlag
}

// Batch runs iframe extraction over many URLs with a bounded worker pool.
// Work is dispatched in chunks; the abort flag is polled between chunks, so a
// cancelled batch finishes its in-flight fetches and returns whatever it
// collected. Completion order is unspecified and the result carries no
// ordering guarantee beyond grouping records per source page.
type Batch struct {
	extractor *Extractor
	opts      BatchOptions
}

// NewBatch creates a batch runner around an Extractor.
func NewBatch(extractor *Extractor, opts BatchOptions) *Batch {
	if opts.Workers <= 0 {
		opts.Workers = 10
	}
	if opts.ChunkSize <= 0 {
		opts.ChunkSize = 50
	}
	return &Batch{extractor: extractor, opts: opts}
}

// Extract crawls the URL set and returns all records found. aborted reports
// cooperative cancellation; the returned records are the partial set
// collected before the signal and are never discarded. Satisfies
// reconcile.Producer.
func (b *Batch) Extract(ctx context.Context, urls []string) (records []model.ExtractedRecord, aborted bool, err error) {
	total := len(urls)
	if total == 0 {
		return nil, false, nil
	}

	var mu sync.Mutex
	done := 0
	report := func() {
		if b.opts.Progress != nil {
			b.opts.Progress(done, total)
		}
	}

	for start := 0; start < total; start += b.opts.ChunkSize {
		if b.aborted(ctx) {
			aborted = true
			break
		}

		end := min(start+b.opts.ChunkSize, total)
		chunk := urls[start:end]

		g, gCtx := errgroup.WithContext(ctx)
		g.SetLimit(b.opts.Workers)

		for _, pageURL := range chunk {
			g.Go(func() error {
				recs := b.extractor.ExtractFromURL(gCtx, pageURL)

				mu.Lock()
				records = append(records, recs...)
				done++
				report()
				mu.Unlock()
				return nil
			})
		}
		_ = g.Wait()
	}

	if aborted {
		// Jump the indicator to completion; skipped URLs will not report.
		mu.Lock()
		done = total
		report()
		mu.Unlock()
		zap.L().Warn("extract: batch aborted",
			zap.Int("collected", len(records)),
			zap.Int("urls", total),
		)
	}

	return records, aborted, nil
}

// aborted polls the cancellation inputs between chunk dispatches.
func (b *Batch) aborted(ctx context.Context) bool {
	if ctx.Err() != nil {
		return true
	}
	return b.opts.Abort != nil && b.opts.Abort.Requested()
}

// Sample returns up to n randomly chosen URLs, for test-mode runs over a
// subset of a large sitemap.
func Sample(urls []string, n int) []string {
	if n <= 0 || n >= len(urls) {
		return urls
	}
	shuffled := append([]string(nil), urls...)
	rand.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	return shuffled[:n]
}
