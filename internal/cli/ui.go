//go:generate mockgen -source=ui.go -destination=mocks/mock_ui.go -package=mocks

package cli

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/briandowns/spinner"

	"github.com/agbru/cpindex/internal/format"
	"github.com/agbru/cpindex/internal/orchestration"
	"github.com/agbru/cpindex/internal/source"
)

const (
	// ProgressRefreshRate defines the refresh frequency of the spinner.
	ProgressRefreshRate = 200 * time.Millisecond
	// ProgressBarWidth defines the width in characters of the progress bar.
	ProgressBarWidth = 20
)

// Spinner is an interface that abstracts the behavior of a terminal spinner.
// This allows for the decoupling of the `DisplayProgress` function from a
// specific spinner implementation, facilitating easier testing.
type Spinner interface {
	// Start begins the spinner animation.
	Start()
	// Stop halts the spinner animation.
	Stop()
	// UpdateSuffix sets the text that is displayed after the spinner.
	//
	// Parameters:
	//   - suffix: The text string to display.
	UpdateSuffix(suffix string)
}

// realSpinner is a wrapper for the `spinner.Spinner` that implements the
// `Spinner` interface.
type realSpinner struct {
	s *spinner.Spinner
}

// Start begins the spinner animation.
func (rs *realSpinner) Start() {
	rs.s.Start()
}

// Stop halts the spinner animation.
func (rs *realSpinner) Stop() {
	rs.s.Stop()
}

// UpdateSuffix sets the text that is displayed after the spinner. The
// spinner goroutine reads the suffix concurrently, so it is set under the
// spinner's lock.
func (rs *realSpinner) UpdateSuffix(suffix string) {
	rs.s.Lock()
	rs.s.Suffix = suffix
	rs.s.Unlock()
}

var newSpinner = func(options ...spinner.Option) Spinner {
	// Using the same interval as ProgressRefreshRate to synchronize
	s := spinner.New(spinner.CharSets[11], ProgressRefreshRate, options...)
	return &realSpinner{s}
}

// DisplayProgress shows a spinner on out whose suffix names the month being
// processed, a progress bar and an ETA. It returns, stopping the spinner,
// once progressChan is closed.
//
// Parameters:
//   - wg: The WaitGroup to signal on return.
//   - progressChan: The channel of progress updates.
//   - out: The writer for the spinner (usually stderr).
func DisplayProgress(wg *sync.WaitGroup, progressChan <-chan source.ProgressUpdate, out io.Writer) {
	defer wg.Done()

	s := newSpinner(spinner.WithWriter(out))
	s.UpdateSuffix(" fetching...")
	s.Start()
	defer s.Stop()

	tracker := orchestration.NewProgressTracker()
	for update := range progressChan {
		s.UpdateSuffix(FormatProgressSuffix(tracker.Update(update)))
	}
}

// FormatProgressSuffix renders the spinner suffix for one tracked update,
// e.g. " processing 2023-02 [██████░░░░] 2/3 ETA 4s". The bar and ETA are
// omitted when the total is unknown.
func FormatProgressSuffix(p orchestration.TrackedProgress) string {
	var b strings.Builder
	b.WriteString(" ")
	if p.Update.Message != "" {
		b.WriteString(p.Update.Message)
	} else {
		b.WriteString("processing " + p.Update.Month.String())
	}
	if p.Update.Total > 0 {
		fmt.Fprintf(&b, " [%s] %d/%d ETA %s",
			progressBar(p.Fraction, ProgressBarWidth), p.Update.Done, p.Update.Total, format.FormatETA(p.ETA))
	} else if p.Update.Done > 0 {
		fmt.Fprintf(&b, " (%d)", p.Update.Done)
	}
	return b.String()
}

// progressBar generates a string representing a textual progress bar.
//
// Parameters:
//   - progress: The normalized progress value (0.0 to 1.0).
//   - length: The total character width of the progress bar.
//
// Returns:
//   - string: A string representation of the progress bar.
func progressBar(progress float64, length int) string {
	if progress > 1.0 {
		progress = 1.0
	}
	if progress < 0.0 {
		progress = 0.0
	}
	count := int(progress * float64(length))
	var builder strings.Builder
	builder.Grow(length * 3)
	for i := 0; i < length; i++ {
		if i < count {
			builder.WriteRune('█')
		} else {
			builder.WriteRune('░')
		}
	}
	return builder.String()
}
