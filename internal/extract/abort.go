package extract

import (
	"sync"
	"time"
)

// abortWindow is how long an abort request stays in effect. Auto-clearing
// keeps a forgotten abort from wedging every subsequent run; it is a
// usability safeguard, not a correctness mechanism.
const abortWindow = 5 * time.Second

// AbortFlag is a cooperative cancellation signal polled between units of
// work. In-flight fetches are not killed; only not-yet-started ones are
// skipped.
type AbortFlag struct {
	mu          sync.Mutex
	requestedAt time.Time
}

// NewAbortFlag creates an unset flag.
func NewAbortFlag() *AbortFlag { return &AbortFlag{} }

// Request asks running batches to stop scheduling new work. The request
// expires on its own after the abort window.
func (f *AbortFlag) Request() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requestedAt = time.Now()
}

// Requested reports whether an abort is currently in effect.
func (f *AbortFlag) Requested() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.requestedAt.IsZero() {
		return false
	}
	if time.Since(f.requestedAt) > abortWindow {
		f.requestedAt = time.Time{}
		return false
	}
	return true
}

// Clear resets the flag immediately.
func (f *AbortFlag) Clear() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requestedAt = time.Time{}
}
