package config

import (
	"errors"
	"flag"
	"io"
	"os"
	"strings"
	"time"

	"github.com/agbru/cpindex/internal/cpi"
	apperrors "github.com/agbru/cpindex/internal/errors"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// FileConfig is the YAML representation of a configuration file. Every field
// is optional; absent fields leave the lower-priority value untouched.
//
//	locale: pk
//	start: 2023-01
//	end: 2023-12
//	money: 1500
//	index_month: 2023-06
//	workers: 4
//	extractors: [v2, v1]
//	pbs:
//	  base_url: https://www.pbs.gov.pk/
type FileConfig struct {
	Start      cpi.Month        `yaml:"start"`
	End        cpi.Month        `yaml:"end"`
	Money      *decimal.Decimal `yaml:"money"`
	IndexMonth cpi.Month        `yaml:"index_month"`
	Locale     string           `yaml:"locale"`

	OutDir  string `yaml:"out_dir"`
	XLSX    *bool  `yaml:"xlsx"`
	Quiet   *bool  `yaml:"quiet"`
	Verbose *bool  `yaml:"verbose"`
	NoColor *bool  `yaml:"no_color"`
	Theme   string `yaml:"theme"`

	Timeout      string   `yaml:"timeout"`
	Retries      *int     `yaml:"retries"`
	RetryBackoff string   `yaml:"retry_backoff"`
	Rate         *float64 `yaml:"rate"`
	RateBurst    *int     `yaml:"rate_burst"`
	Workers      *int     `yaml:"workers"`
	MaxPages     *int     `yaml:"max_pages"`
	MaxBodyMB    *int     `yaml:"max_body_mb"`
	Extractors   []string `yaml:"extractors"`

	BLS struct {
		Key      string `yaml:"key"`
		Endpoint string `yaml:"endpoint"`
	} `yaml:"bls"`
	PBS struct {
		BaseURL string `yaml:"base_url"`
	} `yaml:"pbs"`
	UserAgent string `yaml:"user_agent"`

	MetricsFile string `yaml:"metrics_file"`
	Trace       *bool  `yaml:"trace"`
	LogLevel    string `yaml:"log_level"`
	LogFormat   string `yaml:"log_format"`
}

// LoadFile reads and decodes a YAML configuration file. Unknown keys are
// rejected so typos do not go unnoticed.
func LoadFile(path string) (FileConfig, error) {
	f, err := os.Open(path)
	if err != nil {
		return FileConfig{}, apperrors.NewConfigError("opening config file: %v", err)
	}
	defer f.Close()
	return decodeFile(f, path)
}

func decodeFile(r io.Reader, name string) (FileConfig, error) {
	var fc FileConfig
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&fc); err != nil && !errors.Is(err, io.EOF) {
		return FileConfig{}, apperrors.NewConfigError("parsing config file %s: %v", name, err)
	}
	return fc, nil
}

// apply copies the values present in the file onto cfg, skipping settings
// whose flag was given explicitly.
func (fc FileConfig) apply(cfg *AppConfig, fs *flag.FlagSet) error {
	unset := func(names ...string) bool { return !isFlagSetAny(fs, names...) }

	if !fc.Start.IsZero() && unset("start", "s") {
		cfg.Start = fc.Start
	}
	if !fc.End.IsZero() && unset("end", "e") {
		cfg.End = fc.End
	}
	if fc.Money != nil && unset("money", "m") {
		money := *fc.Money
		cfg.Money = &money
	}
	if !fc.IndexMonth.IsZero() && unset("index-month", "i") {
		cfg.IndexMonth = fc.IndexMonth
	}
	if fc.Locale != "" && unset("locale", "l") {
		cfg.Locale = strings.ToLower(fc.Locale)
	}
	if fc.OutDir != "" && unset("out-dir") {
		cfg.OutDir = fc.OutDir
	}

	setBool(&cfg.XLSX, fc.XLSX, unset("xlsx"))
	setBool(&cfg.Quiet, fc.Quiet, unset("quiet", "q"))
	setBool(&cfg.Verbose, fc.Verbose, unset("verbose", "v"))
	setBool(&cfg.NoColor, fc.NoColor, unset("no-color"))
	setBool(&cfg.Trace, fc.Trace, unset("trace"))

	if err := setDuration(&cfg.Timeout, "timeout", fc.Timeout, unset("timeout")); err != nil {
		return err
	}
	if err := setDuration(&cfg.RetryBackoff, "retry_backoff", fc.RetryBackoff, unset("retry-backoff")); err != nil {
		return err
	}

	setInt(&cfg.Retries, fc.Retries, unset("retries"))
	setInt(&cfg.RateBurst, fc.RateBurst, unset("rate-burst"))
	setInt(&cfg.Workers, fc.Workers, unset("workers"))
	setInt(&cfg.MaxPages, fc.MaxPages, unset("max-pages"))
	setInt(&cfg.MaxBodyMB, fc.MaxBodyMB, unset("max-body-mb"))
	if fc.Rate != nil && unset("rate") {
		cfg.RateLimit = *fc.Rate
	}
	if len(fc.Extractors) > 0 && unset("extractors") {
		cfg.Extractors = append([]string(nil), fc.Extractors...)
	}

	if fc.BLS.Key != "" && unset("bls-key") {
		cfg.BLSKey = fc.BLS.Key
	}
	if fc.BLS.Endpoint != "" && unset("bls-endpoint") {
		cfg.BLSEndpoint = fc.BLS.Endpoint
	}
	if fc.PBS.BaseURL != "" && unset("pbs-base-url") {
		cfg.PBSBaseURL = fc.PBS.BaseURL
	}
	if fc.UserAgent != "" {
		cfg.UserAgent = fc.UserAgent
	}
	if fc.MetricsFile != "" && unset("metrics-file") {
		cfg.MetricsFile = fc.MetricsFile
	}
	if fc.LogLevel != "" && unset("log-level") {
		cfg.LogLevel = strings.ToLower(fc.LogLevel)
	}
	if fc.LogFormat != "" && unset("log-format") {
		cfg.LogFormat = strings.ToLower(fc.LogFormat)
	}
	if fc.Theme != "" && unset("theme") {
		cfg.Theme = strings.ToLower(fc.Theme)
	}
	return nil
}

func setBool(dst *bool, v *bool, allowed bool) {
	if v != nil && allowed {
		*dst = *v
	}
}

func setInt(dst *int, v *int, allowed bool) {
	if v != nil && allowed {
		*dst = *v
	}
}

func setDuration(dst *time.Duration, key, v string, allowed bool) error {
	if v == "" || !allowed {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return apperrors.NewConfigError("config file: invalid %s %q: %v", key, v, err)
	}
	*dst = d
	return nil
}
