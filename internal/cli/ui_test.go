package cli

import (
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/briandowns/spinner"
	"github.com/golang/mock/gomock"

	"github.com/agbru/cpindex/internal/cli/mocks"
	"github.com/agbru/cpindex/internal/cpi"
	"github.com/agbru/cpindex/internal/orchestration"
	"github.com/agbru/cpindex/internal/source"
)

func TestRealSpinner(t *testing.T) {
	t.Parallel()
	s := spinner.New(spinner.CharSets[11], 100*time.Millisecond, spinner.WithWriter(io.Discard))
	rs := &realSpinner{s}

	// Just verify these methods don't panic
	rs.Start()
	rs.UpdateSuffix(" test")
	rs.Stop()
	if s.Suffix != " test" {
		t.Errorf("Suffix = %q", s.Suffix)
	}
}

// TestDisplayProgress swaps newSpinner for a gomock spinner; it must not
// run in parallel with other tests touching newSpinner.
func TestDisplayProgress(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockS := mocks.NewMockSpinner(ctrl)

	originalNewSpinner := newSpinner
	defer func() { newSpinner = originalNewSpinner }()
	newSpinner = func(options ...spinner.Option) Spinner { return mockS }

	gomock.InOrder(
		mockS.EXPECT().UpdateSuffix(" fetching..."),
		mockS.EXPECT().Start(),
		mockS.EXPECT().UpdateSuffix(gomock.Any()).Do(func(suffix string) {
			if !strings.Contains(suffix, "processing 2023-01") || !strings.Contains(suffix, "1/2") {
				t.Errorf("suffix = %q", suffix)
			}
		}),
		mockS.EXPECT().UpdateSuffix(gomock.Any()),
		mockS.EXPECT().Stop(),
	)

	progressChan := make(chan source.ProgressUpdate)
	go func() {
		progressChan <- source.ProgressUpdate{Month: cpi.MustParseMonth("2023-01"), Done: 1, Total: 2, Message: "processing 2023-01"}
		progressChan <- source.ProgressUpdate{Month: cpi.MustParseMonth("2023-02"), Done: 2, Total: 2, Message: "processing 2023-02"}
		close(progressChan)
	}()

	var wg sync.WaitGroup
	wg.Add(1)
	DisplayProgress(&wg, progressChan, io.Discard)
	wg.Wait()
}

func TestFormatProgressSuffix(t *testing.T) {
	t.Parallel()

	month := cpi.MustParseMonth("2024-05")
	tests := []struct {
		name     string
		progress orchestration.TrackedProgress
		contains []string
		excludes []string
	}{
		{
			name: "known total",
			progress: orchestration.TrackedProgress{
				Update:   source.ProgressUpdate{Month: month, Done: 1, Total: 4, Message: "processing 2024-05"},
				Fraction: 0.25,
				ETA:      3 * time.Second,
			},
			contains: []string{"processing 2024-05", "1/4", "ETA 3s", "█████░"},
		},
		{
			name: "unknown total",
			progress: orchestration.TrackedProgress{
				Update: source.ProgressUpdate{Month: month, Done: 7},
			},
			contains: []string{"processing 2024-05", "(7)"},
			excludes: []string{"ETA", "█"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := FormatProgressSuffix(tt.progress)
			for _, s := range tt.contains {
				if !strings.Contains(got, s) {
					t.Errorf("suffix %q should contain %q", got, s)
				}
			}
			for _, s := range tt.excludes {
				if strings.Contains(got, s) {
					t.Errorf("suffix %q should not contain %q", got, s)
				}
			}
		})
	}
}

func TestProgressBar(t *testing.T) {
	t.Parallel()
	tests := []struct {
		progress float64
		want     string
	}{
		{-1, "░░░░"},
		{0, "░░░░"},
		{0.5, "██░░"},
		{1, "████"},
		{2, "████"},
	}
	for _, tt := range tests {
		if got := progressBar(tt.progress, 4); got != tt.want {
			t.Errorf("progressBar(%v) = %q, want %q", tt.progress, got, tt.want)
		}
	}
}

func TestCLIProgressReporter(t *testing.T) {
	originalNewSpinner := newSpinner
	defer func() { newSpinner = originalNewSpinner }()
	newSpinner = func(options ...spinner.Option) Spinner { return nopSpinner{} }

	ch := make(chan source.ProgressUpdate, 1)
	ch <- source.ProgressUpdate{Done: 1}
	close(ch)

	var wg sync.WaitGroup
	wg.Add(1)
	CLIProgressReporter{}.DisplayProgress(&wg, ch, io.Discard)
	wg.Wait()
}

type nopSpinner struct{}

func (nopSpinner) Start()              {}
func (nopSpinner) Stop()               {}
func (nopSpinner) UpdateSuffix(string) {}
