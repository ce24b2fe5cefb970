package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/agbru/cpindex/internal/cli"
	apperrors "github.com/agbru/cpindex/internal/errors"
	"github.com/agbru/cpindex/internal/logging"
	"github.com/agbru/cpindex/internal/metrics"
	"github.com/agbru/cpindex/internal/orchestration"
	"github.com/agbru/cpindex/internal/telemetry"
	"github.com/agbru/cpindex/internal/ui"
	"go.opentelemetry.io/otel/attribute"
)

// Run executes one fetch-index-write cycle and returns the process exit code.
// The table and the summary go to out; progress, logs and errors go to
// ErrWriter.
func (a *Application) Run(ctx context.Context, out io.Writer) int {
	ui.InitTheme(a.Config.Theme, a.Config.NoColor, out)
	presenter := cli.CLITablePresenter{}

	shutdown, err := telemetry.Setup(ctx, a.Config.Trace, a.ErrWriter, Version)
	if err != nil {
		return presenter.HandleError(err, a.ErrWriter)
	}
	defer func() {
		if err := shutdown(context.Background()); err != nil {
			a.Logger.Warn("flushing traces failed", logging.Err(err))
		}
	}()

	// Setup lifecycle (timeout + signals)
	ctx, cancelTimeout := context.WithTimeout(ctx, a.Config.Timeout)
	defer cancelTimeout()
	ctx, stopSignals := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stopSignals()

	code := a.runFetch(ctx, out, presenter)
	a.flushMetrics()
	return code
}

// runFetch fetches, presents and writes the table.
func (a *Application) runFetch(ctx context.Context, out io.Writer, presenter cli.CLITablePresenter) int {
	ctx, span := telemetry.Tracer().Start(ctx, "cpindex.run")
	span.SetAttributes(
		attribute.String("cpindex.run_id", a.RunID),
		attribute.String("cpindex.locale", a.Config.Locale),
	)
	defer span.End()

	if !a.Config.Quiet {
		cli.PrintExecutionConfig(a.Config, out)
	}

	// Progress goes to stderr so the table on stdout stays clean.
	var progressReporter orchestration.ProgressReporter
	progressOut := a.ErrWriter
	if a.Config.Quiet {
		progressOut = io.Discard
		progressReporter = orchestration.NullProgressReporter{}
	} else {
		progressReporter = cli.CLIProgressReporter{}
	}

	a.Logger.Info("run started",
		logging.String("locale", a.Config.Locale),
		logging.Month("start", a.Config.Start),
		logging.Month("end", a.Config.End),
	)
	res, err := orchestration.Run(ctx, orchestration.RequestFromConfig(a.Config), a.Factory, progressReporter, progressOut)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			err = apperrors.TimeoutError{Operation: "fetch", Limit: a.Config.Timeout, Err: err}
		}
		telemetry.RecordError(span, err)
		a.Logger.Error("run failed", err, logging.String("locale", a.Config.Locale))
		return presenter.HandleError(err, a.ErrWriter)
	}
	a.Metrics.ObserveFetch(res.Locale, res.Duration)

	paths, err := a.writeOutputs(res)
	if err != nil {
		telemetry.RecordError(span, err)
		return presenter.HandleError(err, a.ErrWriter)
	}

	if a.Config.Quiet {
		for _, p := range paths {
			fmt.Fprintln(out, p)
		}
	} else {
		fmt.Fprintln(out)
		presenter.PresentTable(res.Table, out)
		cli.DisplaySummary(res, paths, out)
	}

	a.Logger.Info("run complete",
		logging.Int("months", res.Table.Len()),
		logging.Duration("elapsed", res.Duration),
	)
	return apperrors.ExitSuccess
}

// writeOutputs writes the CSV, and the XLSX when requested, and returns the
// paths written.
func (a *Application) writeOutputs(res orchestration.Result) ([]string, error) {
	csvPath := filepath.Join(a.Config.OutDir, cli.OutputFilename(res.Table))
	if err := cli.WriteCSV(csvPath, res.Table); err != nil {
		return nil, apperrors.WrapError(err, "writing %s", csvPath)
	}
	paths := []string{csvPath}

	if a.Config.XLSX {
		xlsxPath := cli.XLSXPath(csvPath)
		if err := cli.WriteXLSX(xlsxPath, res.Table); err != nil {
			return paths, apperrors.WrapError(err, "writing %s", xlsxPath)
		}
		paths = append(paths, xlsxPath)
	}
	return paths, nil
}

// flushMetrics records end-of-run memory statistics and writes the registry
// to the configured textfile.
func (a *Application) flushMetrics() {
	a.Metrics.RecordMemory(metrics.NewMemoryCollector().Snapshot())
	if a.Config.MetricsFile == "" {
		return
	}
	if err := a.Metrics.WriteTextfile(a.Config.MetricsFile); err != nil {
		a.Logger.Warn("writing metrics file failed",
			logging.String("path", a.Config.MetricsFile),
			logging.Err(err),
		)
	}
}
