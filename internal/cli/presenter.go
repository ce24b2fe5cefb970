package cli

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/agbru/cpindex/internal/cpi"
	apperrors "github.com/agbru/cpindex/internal/errors"
	"github.com/agbru/cpindex/internal/format"
	"github.com/agbru/cpindex/internal/orchestration"
	"github.com/agbru/cpindex/internal/source"
	"github.com/agbru/cpindex/internal/ui"
)

// CLIProgressReporter implements orchestration.ProgressReporter with the
// spinner display.
type CLIProgressReporter struct{}

// Verify that CLIProgressReporter implements orchestration.ProgressReporter.
var _ orchestration.ProgressReporter = CLIProgressReporter{}

// DisplayProgress displays a spinner for the ongoing fetch.
func (CLIProgressReporter) DisplayProgress(wg *sync.WaitGroup, progressChan <-chan source.ProgressUpdate, out io.Writer) {
	DisplayProgress(wg, progressChan, out)
}

// CLITablePresenter renders tables for the terminal with lipgloss.
type CLITablePresenter struct{}

// Verify interface compliance.
var (
	_ orchestration.ResultPresenter   = CLITablePresenter{}
	_ orchestration.DurationFormatter = CLITablePresenter{}
	_ orchestration.ErrorHandler      = CLITablePresenter{}
)

// PresentTable writes the table with a header row, right-aligned numeric
// columns and the index month row highlighted. Styling follows the active
// ui theme; the lipgloss renderer is bound to out so escape codes are only
// emitted when out supports them.
func (CLITablePresenter) PresentTable(t cpi.Table, out io.Writer) {
	records := t.Records()
	if len(records) == 0 {
		return
	}

	theme := ui.GetCurrentTableTheme()
	r := lipgloss.NewRenderer(out)
	base := r.NewStyle().Padding(0, 1)
	header := base.Bold(true).Foreground(theme.Header)
	text := base.Foreground(theme.Text)
	accent := base.Bold(true).Foreground(theme.Accent)

	indexRow := -1
	if t.Index != nil {
		for i, row := range t.Rows {
			if row.Month.Equal(t.Index.Month) {
				indexRow = i
				break
			}
		}
	}

	tbl := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(r.NewStyle().Foreground(theme.Border)).
		Headers(records[0]...).
		Rows(records[1:]...).
		StyleFunc(func(row, col int) lipgloss.Style {
			var s lipgloss.Style
			switch {
			case row == table.HeaderRow:
				s = header
			case row == indexRow:
				s = accent
			default:
				s = text
			}
			if col >= 2 {
				s = s.Align(lipgloss.Right)
			}
			return s
		})

	fmt.Fprintln(out, tbl.String())
}

// FormatDuration formats a duration with the CLI's standard formatting.
func (CLITablePresenter) FormatDuration(d time.Duration) string {
	return format.FormatExecutionDuration(d)
}

// HandleError prints err and returns its exit code.
func (CLITablePresenter) HandleError(err error, out io.Writer) int {
	return apperrors.HandleError(err, out, CLIColorProvider{})
}

// CLIColorProvider implements apperrors.ColorProvider using the ui theme.
type CLIColorProvider struct{}

var _ apperrors.ColorProvider = CLIColorProvider{}

// Red returns the error color.
func (CLIColorProvider) Red() string { return ui.ColorRed() }

// Yellow returns the warning color.
func (CLIColorProvider) Yellow() string { return ui.ColorYellow() }

// Reset returns the reset sequence.
func (CLIColorProvider) Reset() string { return ui.ColorReset() }
