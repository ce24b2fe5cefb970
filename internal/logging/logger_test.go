package logging

import (
	"bytes"
	"errors"
	"log"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

type yearMonth string

func (m yearMonth) String() string { return string(m) }

func TestFieldHelpers(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		field   Field
		wantKey string
		wantVal any
	}{
		{"String", String("locale", "pk"), "locale", "pk"},
		{"Int", Int("page", 3), "page", 3},
		{"Uint64", Uint64("bytes", 1<<40), "bytes", uint64(1<<40)},
		{"Float64", Float64("urban_cpi", 296.796), "urban_cpi", 296.796},
		{"Duration", Duration("elapsed", time.Second), "elapsed", time.Second},
		{"Month", Month("month", yearMonth("2024-03")), "month", "2024-03"},
		{"Err nil", Err(nil), "error", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if tt.field.Key != tt.wantKey {
				t.Errorf("Key = %q, want %q", tt.field.Key, tt.wantKey)
			}
			if tt.field.Value != tt.wantVal {
				t.Errorf("Value = %v, want %v", tt.field.Value, tt.wantVal)
			}
		})
	}
}

func TestNewLogger_Component(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, "pbs")
	logger.Info("listing page fetched", Int("page", 2), String("month", "2024-01"))

	out := buf.String()
	for _, want := range []string{`"component":"pbs"`, "listing page fetched", `"page":2`, "2024-01"} {
		if !strings.Contains(out, want) {
			t.Errorf("output should contain %q, got: %s", want, out)
		}
	}
}

func TestZerologAdapter_Levels(t *testing.T) {
	var buf bytes.Buffer
	logger := NewZerologAdapter(zerolog.New(&buf).Level(zerolog.WarnLevel))

	logger.Debug("hidden debug")
	logger.Info("hidden info")
	logger.Warn("visible warn")
	logger.Error("visible error", errors.New("connection refused"), String("source", "bls"))

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("entries below warn should be filtered, got: %s", out)
	}
	for _, want := range []string{"visible warn", "visible error", "connection refused", "bls"} {
		if !strings.Contains(out, want) {
			t.Errorf("output should contain %q, got: %s", want, out)
		}
	}
}

func TestZerologAdapter_applyFields(t *testing.T) {
	tests := []struct {
		name     string
		field    Field
		contains string
	}{
		{"string", Field{Key: "s", Value: "hello"}, `"s":"hello"`},
		{"int", Field{Key: "n", Value: 42}, `"n":42`},
		{"int64", Field{Key: "n", Value: int64(7)}, `"n":7`},
		{"bool", Field{Key: "b", Value: true}, `"b":true`},
		{"error", Field{Key: "cause", Value: errors.New("oops")}, `"cause":"oops"`},
		{"stringer", Field{Key: "d", Value: stringer("2023-02")}, `"d":"2023-02"`},
		{"struct", Field{Key: "v", Value: struct{ X int }{X: 1}}, `"X":1`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			NewLogger(&buf, "test").Info("m", tt.field)
			if !strings.Contains(buf.String(), tt.contains) {
				t.Errorf("want %s in %s", tt.contains, buf.String())
			}
		})
	}
}

type stringer string

func (s stringer) String() string { return string(s) }

func TestZerologAdapter_With(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, "app").With(String("run_id", "abc"), Int("attempt", 1))
	logger.Info("start")

	out := buf.String()
	if strings.Count(out, `"run_id"`) != 1 || !strings.Contains(out, `"run_id":"abc"`) {
		t.Errorf("run_id should appear once, got: %s", out)
	}
	if !strings.Contains(out, `"attempt":1`) {
		t.Errorf("attempt missing, got: %s", out)
	}
}

func TestZerologAdapter_PrintfPrintln(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, "test")
	logger.Printf("fetched %d months", 12)
	logger.Println("done", "ok")

	out := buf.String()
	if !strings.Contains(out, "fetched 12 months") || !strings.Contains(out, "done ok") {
		t.Errorf("unexpected output: %s", out)
	}
}

func TestStdLoggerAdapter(t *testing.T) {
	var buf bytes.Buffer
	adapter := NewStdLoggerAdapter(log.New(&buf, "", 0))

	adapter.Info("user action", String("locale", "us"))
	adapter.Warn("slow upstream")
	adapter.Debug("trace", Int("line", 42))
	adapter.Error("db failed", errors.New("timeout"))
	adapter.Println("done", "ok")

	out := buf.String()
	for _, want := range []string{"[INFO] user action locale=us", "[WARN] slow upstream", "[DEBUG] trace line=42", "[ERROR] db failed error=timeout", "[INFO] done ok\n"} {
		if !strings.Contains(out, want) {
			t.Errorf("output should contain %q, got: %s", want, out)
		}
	}
}

func TestStdLoggerAdapter_LevelAndWith(t *testing.T) {
	var buf bytes.Buffer
	adapter := NewStdLoggerAdapter(log.New(&buf, "", 0)).
		Level(zerolog.WarnLevel).
		With(String("run_id", "r1"))

	adapter.Info("hidden")
	adapter.Printf("fetched %d months", 3)
	adapter.Warn("retrying", Int("attempt", 2))

	if got, want := buf.String(), "[WARN] retrying run_id=r1 attempt=2\n"; got != want {
		t.Errorf("output = %q, want %q", got, want)
	}

	buf.Reset()
	adapter.Level(zerolog.Disabled).Error("dropped", errors.New("x"))
	if buf.Len() != 0 {
		t.Errorf("disabled adapter wrote %q", buf.String())
	}
}

func TestParseLevel(t *testing.T) {
	t.Parallel()
	if lvl, err := ParseLevel(""); err != nil || lvl != zerolog.WarnLevel {
		t.Errorf("empty level = %v, %v", lvl, err)
	}
	if lvl, err := ParseLevel("DEBUG"); err != nil || lvl != zerolog.DebugLevel {
		t.Errorf("DEBUG = %v, %v", lvl, err)
	}
	if _, err := ParseLevel("loud"); err == nil {
		t.Error("expected error for unknown level")
	}
}
