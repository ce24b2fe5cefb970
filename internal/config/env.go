// This file contains environment variable utilities for configuration override.

package config

import (
	"errors"
	"flag"
	"os"
	"strconv"
	"strings"
	"time"

	apperrors "github.com/agbru/cpindex/internal/errors"
	"github.com/joho/godotenv"
)

// DotEnvFile is the optional dotenv file read from the working directory.
// Its entries never override variables already present in the environment.
var DotEnvFile = ".env"

// loadDotEnv loads path into the process environment. A missing file is not
// an error.
func loadDotEnv(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return apperrors.NewConfigError("reading %s: %v", path, err)
	}
	return nil
}

// isFlagSet checks if a flag was explicitly set on the command line.
// This is used to determine whether to apply lower-priority overrides.
func isFlagSet(fs *flag.FlagSet, name string) bool {
	found := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == name {
			found = true
		}
	})
	return found
}

// isFlagSetAny checks if any of the specified flags were explicitly set.
// This is useful for aliased flags where either the short or long form may be used.
func isFlagSetAny(fs *flag.FlagSet, names ...string) bool {
	for _, name := range names {
		if isFlagSet(fs, name) {
			return true
		}
	}
	return false
}

// configFilePath returns the YAML file to load: the --config flag, else
// CPINDEX_CONFIG.
func configFilePath(cfg AppConfig, fs *flag.FlagSet) string {
	if isFlagSet(fs, "config") {
		return cfg.ConfigFile
	}
	if v := os.Getenv(EnvPrefix + "CONFIG"); v != "" {
		return v
	}
	return cfg.ConfigFile
}

// envOverride declares a single environment variable override.
// Each entry maps an env key (without the CPINDEX_ prefix) to the CLI flag
// name(s) it corresponds to and a function that applies the env value.
type envOverride struct {
	envKey string
	flags  []string
	apply  func(*AppConfig, string) error
}

// envOverrides is the declarative table of all environment variable overrides,
// grouped as range, numeric, duration, string, bool.
var envOverrides = []envOverride{
	// Range and indexing
	{"START", []string{"start", "s"}, func(c *AppConfig, v string) error {
		return c.Start.Set(v)
	}},
	{"END", []string{"end", "e"}, func(c *AppConfig, v string) error {
		return c.End.Set(v)
	}},
	{"MONEY", []string{"money", "m"}, func(c *AppConfig, v string) error {
		return decimalValue{&c.Money}.Set(v)
	}},
	{"INDEX_MONTH", []string{"index-month", "i"}, func(c *AppConfig, v string) error {
		return c.IndexMonth.Set(v)
	}},

	// Numeric overrides
	{"RETRIES", []string{"retries"}, intSetter(func(c *AppConfig) *int { return &c.Retries })},
	{"WORKERS", []string{"workers"}, intSetter(func(c *AppConfig) *int { return &c.Workers })},
	{"MAX_PAGES", []string{"max-pages"}, intSetter(func(c *AppConfig) *int { return &c.MaxPages })},
	{"MAX_BODY_MB", []string{"max-body-mb"}, intSetter(func(c *AppConfig) *int { return &c.MaxBodyMB })},
	{"RATE_BURST", []string{"rate-burst"}, intSetter(func(c *AppConfig) *int { return &c.RateBurst })},
	{"RATE", []string{"rate"}, func(c *AppConfig, v string) error {
		parsed, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return err
		}
		c.RateLimit = parsed
		return nil
	}},

	// Duration overrides
	{"TIMEOUT", []string{"timeout"}, durationSetter(func(c *AppConfig) *time.Duration { return &c.Timeout })},
	{"RETRY_BACKOFF", []string{"retry-backoff"}, durationSetter(func(c *AppConfig) *time.Duration { return &c.RetryBackoff })},

	// String overrides
	{"LOCALE", []string{"locale", "l"}, func(c *AppConfig, v string) error {
		c.Locale = strings.ToLower(v)
		return nil
	}},
	{"OUT_DIR", []string{"out-dir"}, func(c *AppConfig, v string) error {
		c.OutDir = v
		return nil
	}},
	{"EXTRACTORS", []string{"extractors"}, func(c *AppConfig, v string) error {
		c.Extractors = splitList(v)
		return nil
	}},
	{"BLS_KEY", []string{"bls-key"}, func(c *AppConfig, v string) error {
		c.BLSKey = v
		return nil
	}},
	{"BLS_ENDPOINT", []string{"bls-endpoint"}, func(c *AppConfig, v string) error {
		c.BLSEndpoint = v
		return nil
	}},
	{"PBS_BASE_URL", []string{"pbs-base-url"}, func(c *AppConfig, v string) error {
		c.PBSBaseURL = v
		return nil
	}},
	{"METRICS_FILE", []string{"metrics-file"}, func(c *AppConfig, v string) error {
		c.MetricsFile = v
		return nil
	}},
	{"LOG_LEVEL", []string{"log-level"}, func(c *AppConfig, v string) error {
		c.LogLevel = strings.ToLower(v)
		return nil
	}},
	{"LOG_FORMAT", []string{"log-format"}, func(c *AppConfig, v string) error {
		c.LogFormat = strings.ToLower(v)
		return nil
	}},
	{"THEME", []string{"theme"}, func(c *AppConfig, v string) error {
		c.Theme = strings.ToLower(v)
		return nil
	}},

	// Boolean overrides
	{"XLSX", []string{"xlsx"}, boolSetter(func(c *AppConfig) *bool { return &c.XLSX })},
	{"QUIET", []string{"quiet", "q"}, boolSetter(func(c *AppConfig) *bool { return &c.Quiet })},
	{"VERBOSE", []string{"verbose", "v"}, boolSetter(func(c *AppConfig) *bool { return &c.Verbose })},
	{"NO_COLOR", []string{"no-color"}, boolSetter(func(c *AppConfig) *bool { return &c.NoColor })},
	{"TRACE", []string{"trace"}, boolSetter(func(c *AppConfig) *bool { return &c.Trace })},
}

func intSetter(field func(*AppConfig) *int) func(*AppConfig, string) error {
	return func(c *AppConfig, v string) error {
		parsed, err := strconv.Atoi(v)
		if err != nil {
			return err
		}
		*field(c) = parsed
		return nil
	}
}

func durationSetter(field func(*AppConfig) *time.Duration) func(*AppConfig, string) error {
	return func(c *AppConfig, v string) error {
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return err
		}
		*field(c) = parsed
		return nil
	}
}

func boolSetter(field func(*AppConfig) *bool) func(*AppConfig, string) error {
	return func(c *AppConfig, v string) error {
		parsed, ok := parseBoolEnv(v)
		if !ok {
			return errors.New("expected true/false, 1/0 or yes/no")
		}
		*field(c) = parsed
		return nil
	}
}

// parseBoolEnv parses a boolean environment variable value.
// Accepts "true", "1", "yes" as true; "false", "0", "no" as false (case-insensitive).
func parseBoolEnv(val string) (bool, bool) {
	switch strings.ToLower(val) {
	case "true", "1", "yes":
		return true, true
	case "false", "0", "no":
		return false, true
	}
	return false, false
}

// applyEnvOverrides applies environment variable values to the configuration
// for any flags that were not explicitly set on the command line.
// This implements the priority: CLI flags > Environment variables > file > Defaults.
//
// An unparsable value is reported as a ConfigError naming the variable.
func applyEnvOverrides(config *AppConfig, fs *flag.FlagSet) error {
	for _, o := range envOverrides {
		if len(o.flags) > 0 && isFlagSetAny(fs, o.flags...) {
			continue
		}
		val := os.Getenv(EnvPrefix + o.envKey)
		if val == "" {
			continue
		}
		if err := o.apply(config, val); err != nil {
			return apperrors.NewConfigError("invalid %s%s=%q: %v", EnvPrefix, o.envKey, val, err)
		}
	}
	return nil
}
