// Package config defines the run configuration of cpindex and resolves it
// from command-line flags, CPINDEX_* environment variables, an optional .env
// file, an optional YAML file, and built-in defaults, in that order of
// precedence.
package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/agbru/cpindex/internal/cpi"
	apperrors "github.com/agbru/cpindex/internal/errors"
	"github.com/shopspring/decimal"
)

// EnvPrefix is prepended to every environment variable read by the
// configuration layer.
const EnvPrefix = "CPINDEX_"

// Default values for the tunable settings.
const (
	DefaultLocale       = "us"
	DefaultTimeout      = 10 * time.Minute
	DefaultRetries      = 3
	DefaultRetryBackoff = 500 * time.Millisecond
	DefaultRateLimit    = 4.0
	DefaultRateBurst    = 2
	DefaultWorkers      = 1
	DefaultMaxPages     = 60
	DefaultMaxBodyMB    = 64
	DefaultBLSEndpoint  = "https://api.bls.gov/publicAPI/v2/timeseries/data/"
	DefaultPBSBaseURL   = "https://www.pbs.gov.pk/"
	DefaultUserAgent    = "cpindex/1.0 (+https://github.com/agbru/cpindex)"
	DefaultTheme        = "dark"
	DefaultLogFormat    = "console"
)

// DefaultExtractors is the default extractor chain, tried in order.
var DefaultExtractors = []string{"v1", "v2"}

// nowFunc returns the current time. Tests replace it to pin the default
// month range.
var nowFunc = time.Now

// AppConfig aggregates the configuration parameters of a run. Once returned
// by ParseConfig it is treated as immutable and passed by value.
type AppConfig struct {
	// Start is the first month of the requested range (inclusive).
	Start cpi.Month
	// End is the last month of the requested range (inclusive).
	End cpi.Month
	// Money is the amount to index; nil when indexing is not requested.
	Money *decimal.Decimal
	// IndexMonth is the reference month for indexing; zero when not requested.
	IndexMonth cpi.Month
	// Locale selects the data source: "us" (BLS) or "pk" (PBS).
	Locale string `flag:"locale" validate:"oneof=us pk"`

	// OutDir is the directory receiving the CSV (and XLSX) output.
	OutDir string
	// XLSX also writes a spreadsheet next to the CSV.
	XLSX bool
	// Quiet suppresses progress and the configuration banner.
	Quiet bool
	// Verbose raises the log level to info.
	Verbose bool
	// NoColor disables styled console output.
	NoColor bool
	// Theme names the color theme used on a terminal.
	Theme string `flag:"theme" validate:"oneof=dark light none"`

	// Timeout bounds the whole run.
	Timeout time.Duration `flag:"timeout" validate:"gt=0"`
	// Retries is the number of additional attempts for retryable requests.
	Retries int `flag:"retries" validate:"gte=0,lte=10"`
	// RetryBackoff is the base delay of the exponential backoff.
	RetryBackoff time.Duration `flag:"retry-backoff" validate:"gte=0"`
	// RateLimit is the outbound request rate per second; 0 disables limiting.
	RateLimit float64 `flag:"rate" validate:"gte=0"`
	// RateBurst is the limiter burst size.
	RateBurst int `flag:"rate-burst" validate:"gte=1"`
	// Workers bounds concurrent PDF downloads for the pk locale.
	Workers int `flag:"workers" validate:"gte=1,lte=16"`
	// MaxPages bounds pk listing pagination.
	MaxPages int `flag:"max-pages" validate:"gte=1"`
	// MaxBodyMB caps a single HTTP response, in MiB.
	MaxBodyMB int `flag:"max-body-mb" validate:"gte=1,lte=1024"`
	// Extractors is the ordered list of PDF extractor versions.
	Extractors []string `flag:"extractors" validate:"min=1,dive,oneof=v1 v2"`

	// BLSKey is an optional BLS API registration key.
	BLSKey string
	// BLSEndpoint is the BLS time-series API URL.
	BLSEndpoint string `flag:"bls-endpoint" validate:"url"`
	// PBSBaseURL is the root of the PBS website; listing and PDF links
	// resolve against it.
	PBSBaseURL string `flag:"pbs-base-url" validate:"url"`
	// UserAgent is sent with every outbound request.
	UserAgent string

	// MetricsFile, when set, receives the Prometheus metrics in text format.
	MetricsFile string
	// Trace enables OpenTelemetry span export to stderr.
	Trace bool
	// LogLevel is the zerolog level name; empty selects the default.
	LogLevel string `flag:"log-level" validate:"omitempty,oneof=trace debug info warn error disabled"`
	// LogFormat selects the log encoding: console, json or plain.
	LogFormat string `flag:"log-format" validate:"oneof=console json plain"`
	// ConfigFile is the YAML configuration file, if any.
	ConfigFile string
}

// Defaults returns a configuration populated with default values. The month
// range is left zero and resolved once all sources have been applied.
func Defaults() AppConfig {
	return AppConfig{
		Locale:       DefaultLocale,
		OutDir:       ".",
		Timeout:      DefaultTimeout,
		Retries:      DefaultRetries,
		RetryBackoff: DefaultRetryBackoff,
		RateLimit:    DefaultRateLimit,
		RateBurst:    DefaultRateBurst,
		Workers:      DefaultWorkers,
		MaxPages:     DefaultMaxPages,
		MaxBodyMB:    DefaultMaxBodyMB,
		Extractors:   append([]string(nil), DefaultExtractors...),
		BLSEndpoint:  DefaultBLSEndpoint,
		PBSBaseURL:   DefaultPBSBaseURL,
		UserAgent:    DefaultUserAgent,
		Theme:        DefaultTheme,
		LogFormat:    DefaultLogFormat,
	}
}

// IndexRequest returns the indexing request, or nil when no amount was
// supplied.
func (c AppConfig) IndexRequest() *cpi.IndexRequest {
	if c.Money == nil || c.IndexMonth.IsZero() {
		return nil
	}
	return &cpi.IndexRequest{Month: c.IndexMonth, Amount: *c.Money}
}

// decimalValue binds a flag to an optional decimal amount.
type decimalValue struct {
	target **decimal.Decimal
}

func (v decimalValue) String() string {
	if v.target == nil || *v.target == nil {
		return ""
	}
	return (*v.target).String()
}

func (v decimalValue) Set(s string) error {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return fmt.Errorf("not a valid amount: %q", s)
	}
	*v.target = &d
	return nil
}

// listValue binds a flag to a comma-separated list.
type listValue struct {
	target *[]string
}

func (v listValue) String() string {
	if v.target == nil {
		return ""
	}
	return strings.Join(*v.target, ",")
}

func (v listValue) Set(s string) error {
	*v.target = splitList(s)
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// registerFlags binds every command-line flag to cfg. Short aliases follow
// the long names they share a target with.
func registerFlags(fs *flag.FlagSet, cfg *AppConfig) {
	fs.Var(&cfg.Start, "start", "First month of the range (YYYY-MM). Default: a year before --end.")
	fs.Var(&cfg.Start, "s", "Shorthand for --start.")
	fs.Var(&cfg.End, "end", "Last month of the range (YYYY-MM). Default: the current month.")
	fs.Var(&cfg.End, "e", "Shorthand for --end.")
	fs.Var(decimalValue{&cfg.Money}, "money", "Monetary amount to index by inflation (requires --index-month).")
	fs.Var(decimalValue{&cfg.Money}, "m", "Shorthand for --money.")
	fs.Var(&cfg.IndexMonth, "index-month", "Month whose value equals --money (YYYY-MM).")
	fs.Var(&cfg.IndexMonth, "i", "Shorthand for --index-month.")
	fs.StringVar(&cfg.Locale, "locale", cfg.Locale, "Country of the CPI series: us or pk.")
	fs.StringVar(&cfg.Locale, "l", cfg.Locale, "Shorthand for --locale.")

	fs.StringVar(&cfg.OutDir, "out-dir", cfg.OutDir, "Directory for the output files.")
	fs.BoolVar(&cfg.XLSX, "xlsx", cfg.XLSX, "Also write an .xlsx workbook next to the CSV.")
	fs.BoolVar(&cfg.Quiet, "quiet", cfg.Quiet, "Suppress progress and configuration output.")
	fs.BoolVar(&cfg.Quiet, "q", cfg.Quiet, "Shorthand for --quiet.")
	fs.BoolVar(&cfg.Verbose, "verbose", cfg.Verbose, "Log progress details to stderr.")
	fs.BoolVar(&cfg.Verbose, "v", cfg.Verbose, "Shorthand for --verbose.")
	fs.BoolVar(&cfg.NoColor, "no-color", cfg.NoColor, "Disable colored output.")
	fs.StringVar(&cfg.Theme, "theme", cfg.Theme, "Color theme on a terminal: dark, light or none.")

	fs.DurationVar(&cfg.Timeout, "timeout", cfg.Timeout, "Maximum duration of the whole run.")
	fs.IntVar(&cfg.Retries, "retries", cfg.Retries, "Retries for failed requests (transport errors, 5xx, 429).")
	fs.DurationVar(&cfg.RetryBackoff, "retry-backoff", cfg.RetryBackoff, "Base delay between retries.")
	fs.Float64Var(&cfg.RateLimit, "rate", cfg.RateLimit, "Outbound requests per second (0 disables limiting).")
	fs.IntVar(&cfg.RateBurst, "rate-burst", cfg.RateBurst, "Requests allowed in a burst above --rate.")
	fs.IntVar(&cfg.Workers, "workers", cfg.Workers, "Concurrent PDF downloads (pk only).")
	fs.IntVar(&cfg.MaxPages, "max-pages", cfg.MaxPages, "Maximum listing pages to scan (pk only).")
	fs.IntVar(&cfg.MaxBodyMB, "max-body-mb", cfg.MaxBodyMB, "Largest accepted HTTP response, in MiB.")
	fs.Var(listValue{&cfg.Extractors}, "extractors", "Comma-separated PDF extractor versions, tried in order (pk only).")
	fs.StringVar(&cfg.BLSKey, "bls-key", cfg.BLSKey, "BLS API registration key (us only).")
	fs.StringVar(&cfg.BLSEndpoint, "bls-endpoint", cfg.BLSEndpoint, "BLS time-series API URL (us only).")
	fs.StringVar(&cfg.PBSBaseURL, "pbs-base-url", cfg.PBSBaseURL, "Root URL of the PBS website (pk only).")

	fs.StringVar(&cfg.ConfigFile, "config", cfg.ConfigFile, "YAML configuration file.")
	fs.StringVar(&cfg.MetricsFile, "metrics-file", cfg.MetricsFile, "Write Prometheus metrics to this file.")
	fs.BoolVar(&cfg.Trace, "trace", cfg.Trace, "Export trace spans to stderr.")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level: debug, info, warn, error.")
	fs.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "Log encoding: console, json or plain.")
}

// ParseConfig resolves the run configuration from args and the environment.
//
// Parameters:
//   - programName: The program name used in usage output.
//   - args: The command-line arguments, excluding the program name.
//   - errWriter: Destination for usage and flag parsing messages.
//
// Returns:
//   - AppConfig: The validated configuration.
//   - error: flag.ErrHelp when help was requested, a ConfigError or
//     ValidationError otherwise.
func ParseConfig(programName string, args []string, errWriter io.Writer) (AppConfig, error) {
	fs := flag.NewFlagSet(programName, flag.ContinueOnError)
	fs.SetOutput(errWriter)

	cfg := Defaults()
	registerFlags(fs, &cfg)
	fs.Usage = func() {
		fmt.Fprintf(errWriter, "Usage: %s [options]\n\n", programName)
		fmt.Fprintln(errWriter, "Fetch a monthly CPI series and index a monetary amount by it.")
		fmt.Fprintln(errWriter, "\nOptions:")
		fs.PrintDefaults()
		fmt.Fprintf(errWriter, "\nEvery long option can also be set through %s<NAME> (e.g. %sLOCALE=pk).\n", EnvPrefix, EnvPrefix)
	}

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return AppConfig{}, err
		}
		return AppConfig{}, apperrors.NewConfigError("%v", err)
	}
	if fs.NArg() > 0 {
		return AppConfig{}, apperrors.NewConfigError("unexpected arguments: %s", strings.Join(fs.Args(), " "))
	}

	if err := loadDotEnv(DotEnvFile); err != nil {
		return AppConfig{}, err
	}

	if path := configFilePath(cfg, fs); path != "" {
		fc, err := LoadFile(path)
		if err != nil {
			return AppConfig{}, err
		}
		if err := fc.apply(&cfg, fs); err != nil {
			return AppConfig{}, err
		}
		cfg.ConfigFile = path
	}

	if err := applyEnvOverrides(&cfg, fs); err != nil {
		return AppConfig{}, err
	}

	cfg.resolveMonths(nowFunc())

	if err := cfg.Validate(); err != nil {
		return AppConfig{}, err
	}
	return cfg, nil
}

// resolveMonths fills in the default range: the current month for End and
// the month 365 days before End for Start.
func (c *AppConfig) resolveMonths(now time.Time) {
	if c.End.IsZero() {
		c.End = cpi.MonthOf(now)
	}
	if c.Start.IsZero() {
		c.Start = cpi.MonthOf(c.End.Time().AddDate(0, 0, -365))
	}
}
