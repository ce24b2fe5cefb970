package orchestration

import (
	"io"
	"sync"
	"time"

	"github.com/agbru/cpindex/internal/cpi"
	"github.com/agbru/cpindex/internal/source"
)

// ProgressReporter defines the interface for displaying fetch progress.
// This interface decouples the orchestration layer from the presentation
// layer: implementations handle the visual representation (spinners, log
// lines) while the orchestration layer coordinates the fetch.
type ProgressReporter interface {
	// DisplayProgress consumes progress updates until the channel is closed.
	// It is started in its own goroutine and must call wg.Done on return.
	//
	// Parameters:
	//   - wg: A WaitGroup to signal when display is complete.
	//   - progressChan: Channel receiving progress updates from the fetcher.
	//   - out: The writer for progress output.
	DisplayProgress(wg *sync.WaitGroup, progressChan <-chan source.ProgressUpdate, out io.Writer)
}

// ProgressReporterFunc is a function adapter that implements ProgressReporter.
type ProgressReporterFunc func(wg *sync.WaitGroup, progressChan <-chan source.ProgressUpdate, out io.Writer)

// DisplayProgress calls the underlying function.
func (f ProgressReporterFunc) DisplayProgress(wg *sync.WaitGroup, progressChan <-chan source.ProgressUpdate, out io.Writer) {
	f(wg, progressChan, out)
}

// NullProgressReporter drains the progress channel without displaying
// anything. Used for --quiet and in tests.
type NullProgressReporter struct{}

// DisplayProgress drains the channel without output.
func (NullProgressReporter) DisplayProgress(wg *sync.WaitGroup, progressChan <-chan source.ProgressUpdate, _ io.Writer) {
	defer wg.Done()
	DrainChannel(progressChan)
}

// ResultPresenter renders a finished table.
type ResultPresenter interface {
	// PresentTable writes the table to out.
	PresentTable(table cpi.Table, out io.Writer)
}

// DurationFormatter formats durations for display.
type DurationFormatter interface {
	FormatDuration(d time.Duration) string
}

// ErrorHandler reports a failed run and returns its exit code.
type ErrorHandler interface {
	HandleError(err error, out io.Writer) int
}
