package cli

import (
	"fmt"
	"io"
	"runtime"
	"strings"

	"github.com/agbru/cpindex/internal/config"
	"github.com/agbru/cpindex/internal/format"
	"github.com/agbru/cpindex/internal/orchestration"
	"github.com/agbru/cpindex/internal/ui"
)

// PrintExecutionConfig displays the run configuration: locale, month range,
// index request and output directory.
//
// Parameters:
//   - cfg: The application configuration.
//   - out: The writer for standard output.
func PrintExecutionConfig(cfg config.AppConfig, out io.Writer) {
	fmt.Fprintf(out, "%s--- Execution Configuration ---%s\n", ui.ColorBold(), ui.ColorReset())
	fmt.Fprintf(out, "Fetching %s%s%s CPI from %s%s%s to %s%s%s with a timeout of %s%s%s.\n",
		ui.ColorMagenta(), strings.ToUpper(cfg.Locale), ui.ColorReset(),
		ui.ColorCyan(), cfg.Start, ui.ColorReset(),
		ui.ColorCyan(), cfg.End, ui.ColorReset(),
		ui.ColorYellow(), cfg.Timeout, ui.ColorReset())
	if idx := cfg.IndexRequest(); idx != nil {
		fmt.Fprintf(out, "Indexing %s%s%s at %s%s%s purchasing power.\n",
			ui.ColorGreen(), idx.Amount, ui.ColorReset(),
			ui.ColorCyan(), idx.Month, ui.ColorReset())
	}
	fmt.Fprintf(out, "Output directory: %s%s%s", ui.ColorCyan(), cfg.OutDir, ui.ColorReset())
	if cfg.XLSX {
		fmt.Fprintf(out, " (csv + xlsx)")
	}
	fmt.Fprintln(out)
	fmt.Fprintf(out, "Environment: Go %s%s%s, %d worker(s).\n",
		ui.ColorCyan(), runtime.Version(), ui.ColorReset(), cfg.Workers)
	fmt.Fprintf(out, "\n%s--- Starting Execution ---%s\n", ui.ColorBold(), ui.ColorReset())
}

// DisplaySummary reports what a finished run produced and where it was
// written.
//
// Parameters:
//   - res: The run result.
//   - paths: The files written.
//   - out: The writer for standard output.
func DisplaySummary(res orchestration.Result, paths []string, out io.Writer) {
	fmt.Fprintf(out, "\nFetched %s%d%s months (%s to %s) from %s%s%s in %s%s%s.\n",
		ui.ColorGreen(), res.Table.Len(), ui.ColorReset(),
		res.Table.First(), res.Table.Last(),
		ui.ColorBlue(), res.Fetcher, ui.ColorReset(),
		ui.ColorYellow(), format.FormatExecutionDuration(res.Duration), ui.ColorReset())
	for _, p := range paths {
		fmt.Fprintf(out, "%s✓ Table saved to: %s%s%s%s\n", ui.ColorGreen(), ui.ColorCyan(), ui.ColorUnderline(), p, ui.ColorReset())
	}
}
