package orchestration

import (
	"time"

	"github.com/agbru/cpindex/internal/source"
)

// ProgressTracker turns the stream of per-month updates into a fraction and
// an ETA. The CLI spinner uses it to build its suffix; it is not safe for
// concurrent use.
type ProgressTracker struct {
	startTime time.Time
	last      source.ProgressUpdate
	now       func() time.Time
}

// NewProgressTracker creates a tracker whose clock starts now.
func NewProgressTracker() *ProgressTracker {
	return &ProgressTracker{startTime: time.Now(), now: time.Now}
}

// TrackedProgress is the result of processing one update.
type TrackedProgress struct {
	// Update is the raw update.
	Update source.ProgressUpdate
	// Fraction is Done/Total, or 0 when the total is unknown.
	Fraction float64
	// ETA is the estimated time remaining, or 0 when it cannot be estimated.
	ETA time.Duration
}

// Update records u and returns the derived progress.
func (t *ProgressTracker) Update(u source.ProgressUpdate) TrackedProgress {
	t.last = u
	return TrackedProgress{Update: u, Fraction: t.Fraction(), ETA: t.ETA()}
}

// Last returns the most recent update.
func (t *ProgressTracker) Last() source.ProgressUpdate { return t.last }

// Fraction returns the completed share of the run in [0, 1].
func (t *ProgressTracker) Fraction() float64 {
	if t.last.Total <= 0 {
		return 0
	}
	return min(float64(t.last.Done)/float64(t.last.Total), 1)
}

// ETA extrapolates the remaining time from the average time per month so
// far. It returns 0 before the first month is done or once all are done.
func (t *ProgressTracker) ETA() time.Duration {
	done, total := t.last.Done, t.last.Total
	if done <= 0 || total <= done {
		return 0
	}
	elapsed := t.now().Sub(t.startTime)
	perMonth := elapsed / time.Duration(done)
	return perMonth * time.Duration(total-done)
}

// Elapsed returns the time since the tracker was created.
func (t *ProgressTracker) Elapsed() time.Duration {
	return t.now().Sub(t.startTime)
}

// DrainChannel reads all updates from the channel without processing.
func DrainChannel(progressChan <-chan source.ProgressUpdate) {
	for range progressChan {
	}
}
