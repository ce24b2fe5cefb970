//go:generate mockgen -source=fetcher.go -destination=mocks/mock_fetcher.go -package=mocks

// Package source implements the CPI data sources: the BLS time-series API
// for the United States and the PBS report archive for Pakistan.
package source

import (
	"context"

	"github.com/agbru/cpindex/internal/cpi"
)

// ProgressUpdate reports that one month has been processed.
type ProgressUpdate struct {
	// Source is the fetcher label ("bls", "pbs").
	Source string
	// Month is the month just processed.
	Month cpi.Month
	// Done is the number of months processed so far.
	Done int
	// Total is the number of months expected, or 0 when unknown.
	Total int
	// Message is a human-readable description of the step.
	Message string
}

// Fetcher retrieves a CPI series for an inclusive month range.
type Fetcher interface {
	// Name returns a display name for the series.
	Name() string
	// Locale returns the locale code the fetcher serves ("us", "pk").
	Locale() string
	// Fetch returns the points in [start, end]. Progress updates are sent on
	// progress, which may be nil; Fetch never closes it.
	Fetch(ctx context.Context, start, end cpi.Month, progress chan<- ProgressUpdate) (cpi.Series, error)
}

// Factory resolves fetchers by locale.
type Factory interface {
	// Get returns the fetcher for locale.
	Get(locale string) (Fetcher, error)
	// List returns the registered locales in sorted order.
	List() []string
}

// sendProgress delivers u unless ctx is done first.
func sendProgress(ctx context.Context, progress chan<- ProgressUpdate, u ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- u:
	case <-ctx.Done():
	}
}
