package orchestration

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/agbru/cpindex/internal/config"
	"github.com/agbru/cpindex/internal/cpi"
	apperrors "github.com/agbru/cpindex/internal/errors"
	"github.com/agbru/cpindex/internal/source"
)

// ProgressBufferSize is the capacity of the progress channel. A buffer keeps
// the fetcher from blocking when the display is slow to consume updates.
const ProgressBufferSize = 16

// Request describes one pipeline run.
type Request struct {
	// Locale selects the fetcher ("us", "pk").
	Locale string
	// Start and End bound the requested range, inclusive.
	Start, End cpi.Month
	// Index is the optional indexing request.
	Index *cpi.IndexRequest
}

// RequestFromConfig builds a Request from a validated configuration.
func RequestFromConfig(cfg config.AppConfig) Request {
	return Request{
		Locale: cfg.Locale,
		Start:  cfg.Start,
		End:    cfg.End,
		Index:  cfg.IndexRequest(),
	}
}

// Result is the outcome of a successful run.
type Result struct {
	// Fetcher is the display name of the fetcher that produced the series.
	Fetcher string
	// Locale is the locale of the fetcher.
	Locale string
	// Series is the validated series in ascending order.
	Series cpi.Series
	// Table is the tabulated, optionally indexed series.
	Table cpi.Table
	// Duration is the time spent fetching.
	Duration time.Duration
}

// ValidateRequest rejects requests that cannot produce a table, before any
// network call is made.
//
// Parameters:
//   - req: The request to check.
//
// Returns:
//   - error: A ValidationError naming the offending field, or nil.
func ValidateRequest(req Request) error {
	if req.Start.IsZero() || req.End.IsZero() {
		return apperrors.ValidationError{Field: "start", Message: "start and end months are required"}
	}
	if req.End.Before(req.Start) {
		return apperrors.ValidationError{
			Field:   "end",
			Message: fmt.Sprintf("end month (%s) must not be earlier than start month (%s)", req.End, req.Start),
		}
	}
	if req.Index != nil && !req.Index.Month.Between(req.Start, req.End) {
		return apperrors.ValidationError{
			Field:   "index-month",
			Message: fmt.Sprintf("index month (%s) must be within requested range (%s, %s)", req.Index.Month, req.Start, req.End),
		}
	}
	return nil
}

// FetchSeries runs fetcher over [start, end] while reporter displays its
// progress.
//
// The progress channel is closed once Fetch has returned, and FetchSeries
// waits for the reporter to finish before returning, so no progress output
// interleaves with whatever the caller prints next.
//
// Parameters:
//   - ctx: The context for cancellation and deadlines.
//   - fetcher: The fetcher to run.
//   - start, end: The requested range, inclusive.
//   - reporter: The progress reporter (NullProgressReporter for quiet mode).
//   - out: The writer for progress output.
//
// Returns:
//   - cpi.Series: The fetched series, unvalidated.
//   - time.Duration: The time spent in Fetch.
//   - error: The fetch error, if any.
func FetchSeries(ctx context.Context, fetcher source.Fetcher, start, end cpi.Month, reporter ProgressReporter, out io.Writer) (cpi.Series, time.Duration, error) {
	if reporter == nil {
		reporter = NullProgressReporter{}
	}
	progressChan := make(chan source.ProgressUpdate, ProgressBufferSize)

	var displayWg sync.WaitGroup
	displayWg.Add(1)
	go reporter.DisplayProgress(&displayWg, progressChan, out)

	startTime := time.Now()
	series, err := fetcher.Fetch(ctx, start, end, progressChan)
	duration := time.Since(startTime)

	close(progressChan)
	displayWg.Wait()

	return series, duration, err
}

// ValidateSeries checks that every point lies in [start, end] and that the
// points, once sorted, are distinct adjacent calendar months. An empty
// series is an integrity failure since no table can be written for it.
//
// Parameters:
//   - series: The fetched series; it is not modified.
//   - start, end: The requested range, inclusive.
//
// Returns:
//   - cpi.Series: The series in ascending order.
//   - error: An IntegrityError describing the first violation.
func ValidateSeries(series cpi.Series, start, end cpi.Month) (cpi.Series, error) {
	if len(series) == 0 {
		return nil, apperrors.NewIntegrityError("no data returned for %s..%s", start, end)
	}
	if err := series.Within(start, end); err != nil {
		return nil, err
	}
	sorted := series.Sorted()
	if err := sorted.CheckContiguity(); err != nil {
		return nil, err
	}
	return sorted, nil
}

// Run executes the whole pipeline for req: validation, fetcher selection,
// fetch with progress, series validation, and tabulation.
//
// Parameters:
//   - ctx: The context for cancellation and deadlines.
//   - req: The run request.
//   - factory: The factory resolving the locale to a fetcher.
//   - reporter: The progress reporter.
//   - out: The writer for progress output.
//
// Returns:
//   - Result: The tabulated result.
//   - error: A typed error from internal/errors describing the failure.
func Run(ctx context.Context, req Request, factory source.Factory, reporter ProgressReporter, out io.Writer) (Result, error) {
	if err := ValidateRequest(req); err != nil {
		return Result{}, err
	}

	fetcher, err := SelectFetcher(req.Locale, factory)
	if err != nil {
		return Result{}, err
	}

	series, duration, err := FetchSeries(ctx, fetcher, req.Start, req.End, reporter, out)
	if err != nil {
		return Result{}, apperrors.WrapError(err, "fetching %s", fetcher.Name())
	}

	sorted, err := ValidateSeries(series, req.Start, req.End)
	if err != nil {
		return Result{}, err
	}

	table, err := cpi.BuildTable(sorted, req.Index)
	if err != nil {
		return Result{}, err
	}

	return Result{
		Fetcher:  fetcher.Name(),
		Locale:   fetcher.Locale(),
		Series:   sorted,
		Table:    table,
		Duration: duration,
	}, nil
}
