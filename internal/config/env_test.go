package config

import (
	"flag"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestParseBoolEnv(t *testing.T) {
	t.Parallel()
	tests := []struct {
		in     string
		want   bool
		wantOK bool
	}{
		{"true", true, true},
		{"YES", true, true},
		{"1", true, true},
		{"false", false, true},
		{"No", false, true},
		{"0", false, true},
		{"maybe", false, false},
	}
	for _, tt := range tests {
		got, ok := parseBoolEnv(tt.in)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("parseBoolEnv(%q) = %v, %v; want %v, %v", tt.in, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestIsFlagSetAny(t *testing.T) {
	t.Parallel()
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	var quiet bool
	fs.BoolVar(&quiet, "quiet", false, "")
	fs.BoolVar(&quiet, "q", false, "")
	if err := fs.Parse([]string{"-q"}); err != nil {
		t.Fatal(err)
	}
	if !isFlagSetAny(fs, "quiet", "q") {
		t.Error("short alias should count as set")
	}
	if isFlagSet(fs, "quiet") {
		t.Error("long name was not given")
	}
}

func TestApplyEnvOverrides_SkipsExplicitFlags(t *testing.T) {
	t.Setenv(EnvPrefix+"RETRY_BACKOFF", "2s")
	t.Setenv(EnvPrefix+"RETRIES", "7")

	cfg := Defaults()
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	registerFlags(fs, &cfg)
	if err := fs.Parse([]string{"--retries", "1"}); err != nil {
		t.Fatal(err)
	}
	if err := applyEnvOverrides(&cfg, fs); err != nil {
		t.Fatalf("applyEnvOverrides() error = %v", err)
	}
	if cfg.Retries != 1 {
		t.Errorf("Retries = %d, want 1", cfg.Retries)
	}
	if cfg.RetryBackoff != 2*time.Second {
		t.Errorf("RetryBackoff = %v, want 2s", cfg.RetryBackoff)
	}
}

func TestLoadDotEnv_DoesNotOverrideEnvironment(t *testing.T) {
	const presetKey = EnvPrefix + "DOTENV_TEST_PRESET"
	const newKey = EnvPrefix + "DOTENV_TEST_NEW"
	t.Setenv(presetKey, "from-env")
	t.Cleanup(func() { os.Unsetenv(newKey) })

	path := filepath.Join(t.TempDir(), ".env")
	content := presetKey + "=from-file\n" + newKey + "=from-file\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	if err := loadDotEnv(path); err != nil {
		t.Fatalf("loadDotEnv() error = %v", err)
	}
	if got := os.Getenv(presetKey); got != "from-env" {
		t.Errorf("%s = %q, the real environment should win", presetKey, got)
	}
	if got := os.Getenv(newKey); got != "from-file" {
		t.Errorf("%s = %q, want from-file", newKey, got)
	}
}

func TestLoadDotEnv_MissingFile(t *testing.T) {
	t.Parallel()
	if err := loadDotEnv(filepath.Join(t.TempDir(), "absent.env")); err != nil {
		t.Errorf("missing file should be ignored, got %v", err)
	}
}
