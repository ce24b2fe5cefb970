package e2e

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

const blsBody = `{"status":"REQUEST_SUCCEEDED","message":[],"Results":{"series":[{"seriesID":"CWSR0000SA0","data":[
{"year":"2023","period":"M03","value":"296.944"},
{"year":"2023","period":"M02","value":"296.718"},
{"year":"2023","period":"M01","value":"295.584"}]}]}}`

// TestCLI_E2E verifies the built binary functions correctly
func TestCLI_E2E(t *testing.T) {
	tmpDir := t.TempDir()
	binName := "cpindex"
	if runtime.GOOS == "windows" {
		binName = "cpindex.exe"
	}
	binPath := filepath.Join(tmpDir, binName)

	// go test runs in test/e2e; the build runs from the module root.
	cmd := exec.Command("go", "build", "-o", binPath, "./cmd/cpindex")
	cmd.Dir = "../.."
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		t.Fatalf("Failed to build cpindex: %v", err)
	}

	bls := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, blsBody)
	}))
	defer bls.Close()
	outDir := filepath.Join(tmpDir, "out")

	tests := []struct {
		name     string
		args     []string
		wantOut  string // substring match (case-insensitive)
		wantCode int
	}{
		{
			name:     "Help",
			args:     []string{"--help"},
			wantOut:  "usage",
			wantCode: 0,
		},
		{
			name:     "Version Flag",
			args:     []string{"--version"},
			wantOut:  "cpindex",
			wantCode: 0,
		},
		{
			name:     "Indexed US Series",
			args:     []string{"-s", "2023-01", "-e", "2023-03", "-m", "100", "-i", "2023-02", "--out-dir", outDir},
			wantOut:  "202301_202303_ucpi.csv",
			wantCode: 0,
		},
		{
			name:     "Quiet Mode",
			args:     []string{"-s", "2023-01", "-e", "2023-02", "-q", "--out-dir", outDir},
			wantOut:  "202301_202302_ucpi.csv",
			wantCode: 0,
		},
		{
			name:     "Invalid Month",
			args:     []string{"--start", "2023-13"},
			wantOut:  "start",
			wantCode: 4,
		},
		{
			name:     "Index Month Out Of Range",
			args:     []string{"-s", "2023-01", "-e", "2023-03", "-m", "100", "-i", "2024-01"},
			wantOut:  "index month",
			wantCode: 4,
		},
		{
			name:     "Unknown Locale",
			args:     []string{"-l", "fr", "-s", "2023-01", "-e", "2023-03"},
			wantOut:  "locale",
			wantCode: 4,
		},
		{
			name:     "Very Short Timeout",
			args:     []string{"-s", "2023-01", "-e", "2023-03", "--timeout", "1ns", "--out-dir", outDir},
			wantOut:  "",
			wantCode: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := exec.Command(binPath, tt.args...)
			cmd.Env = append(os.Environ(), "NO_COLOR=1", "CPINDEX_BLS_ENDPOINT="+bls.URL)
			output, err := cmd.CombinedOutput()

			outStr := string(output)

			if tt.wantCode == 0 {
				if err != nil {
					t.Errorf("Command failed unexpectedly: %v\nOutput: %s", err, outStr)
				}
			} else {
				var exitErr *exec.ExitError
				switch {
				case err == nil:
					t.Errorf("Expected exit code %d, but command succeeded.\nOutput: %s", tt.wantCode, outStr)
				case errors.As(err, &exitErr) && exitErr.ExitCode() != tt.wantCode:
					t.Errorf("Exit code = %d, want %d\nOutput: %s", exitErr.ExitCode(), tt.wantCode, outStr)
				}
			}

			if tt.wantOut != "" {
				if !strings.Contains(strings.ToLower(outStr), strings.ToLower(tt.wantOut)) {
					t.Errorf("Output missing expected string.\nExpected: %q\nGot:\n%s", tt.wantOut, outStr)
				}
			}
		})
	}

	if _, err := os.Stat(filepath.Join(outDir, "202301_202303_ucpi.csv")); err != nil {
		t.Errorf("indexed run left no CSV: %v", err)
	}
}
