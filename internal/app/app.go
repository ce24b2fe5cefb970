// Package app wires the configuration, data sources, orchestration and
// presentation layers into the cpindex command.
package app

import (
	"errors"
	"flag"
	"io"
	"log"
	"net/http"

	"github.com/agbru/cpindex/internal/config"
	"github.com/agbru/cpindex/internal/httpclient"
	"github.com/agbru/cpindex/internal/logging"
	"github.com/agbru/cpindex/internal/metrics"
	"github.com/agbru/cpindex/internal/source"
	"github.com/google/uuid"
)

// Application represents the cpindex application instance.
type Application struct {
	Config    config.AppConfig
	Factory   source.Factory
	ErrWriter io.Writer
	Logger    logging.Logger
	Metrics   *metrics.Registry
	// RunID tags every log line and span of one invocation.
	RunID string

	httpClient *http.Client
}

// AppOption configures an Application during construction.
type AppOption func(*Application)

// WithFactory sets a custom fetcher Factory for the application.
func WithFactory(f source.Factory) AppOption {
	return func(a *Application) { a.Factory = f }
}

// WithHTTPClient makes every data source send its requests through hc.
func WithHTTPClient(hc *http.Client) AppOption {
	return func(a *Application) { a.httpClient = hc }
}

// WithLogger replaces the stderr logger built from the configuration.
func WithLogger(l logging.Logger) AppOption {
	return func(a *Application) { a.Logger = l }
}

// New creates a new Application instance by parsing command-line arguments.
//
// Parameters:
//   - args: The full argument vector, program name first.
//   - errWriter: Destination for usage, logs and error messages.
//   - opts: Optional overrides.
//
// Returns:
//   - *Application: The configured application.
//   - error: flag.ErrHelp when help was requested, a configuration error otherwise.
func New(args []string, errWriter io.Writer, opts ...AppOption) (*Application, error) {
	app := &Application{ErrWriter: errWriter, RunID: uuid.NewString()}
	for _, opt := range opts {
		opt(app)
	}

	programName := "cpindex"
	var cmdArgs []string
	if len(args) > 0 {
		programName = args[0]
		cmdArgs = args[1:]
	}

	cfg, err := config.ParseConfig(programName, cmdArgs, errWriter)
	if err != nil {
		return nil, err
	}
	app.Config = cfg

	if app.Logger == nil {
		app.Logger = newRunLogger(cfg, errWriter, app.RunID)
	}
	app.Metrics = metrics.New()

	if app.Factory == nil {
		app.Factory = source.NewDefaultFactory(app.sourceOptions())
	}
	return app, nil
}

// newRunLogger builds the stderr logger of one run in the configured
// format. An explicit level wins over --verbose.
func newRunLogger(cfg config.AppConfig, w io.Writer, runID string) logging.Logger {
	level, _ := logging.ParseLevel(cfg.LogLevel)
	if cfg.LogLevel == "" && cfg.Verbose {
		level, _ = logging.ParseLevel("info")
	}
	runField := logging.String("run_id", runID)

	switch cfg.LogFormat {
	case "json":
		return logging.NewLogger(w, "cpindex").Level(level).With(runField)
	case "plain":
		return logging.NewStdLoggerAdapter(log.New(w, "cpindex ", log.LstdFlags)).Level(level).With(runField)
	default:
		return logging.NewConsoleLogger(w, "cpindex").Level(level).With(runField)
	}
}

// sourceOptions maps the configuration onto fetcher construction options.
func (a *Application) sourceOptions() source.Options {
	cfg := a.Config
	return source.Options{
		BLSEndpoint: cfg.BLSEndpoint,
		BLSKey:      cfg.BLSKey,
		PBSBaseURL:  cfg.PBSBaseURL,
		MaxPages:    cfg.MaxPages,
		Workers:     cfg.Workers,
		Extractors:  cfg.Extractors,
		Logger:      a.Logger,
		Metrics:     a.Metrics,
		HTTPOptions: []httpclient.Option{
			httpclient.WithHTTPClient(a.httpClient),
			httpclient.WithMaxBodySize(int64(cfg.MaxBodyMB) << 20),
			httpclient.WithRetries(cfg.Retries, cfg.RetryBackoff),
			httpclient.WithRateLimit(cfg.RateLimit, cfg.RateBurst),
			httpclient.WithUserAgent(cfg.UserAgent),
			httpclient.WithLogger(a.Logger),
			httpclient.WithMetrics(a.Metrics),
		},
	}
}

// IsHelpError checks if the error is a help flag error (--help was used).
func IsHelpError(err error) bool {
	return errors.Is(err, flag.ErrHelp)
}
