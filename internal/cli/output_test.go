package cli

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/agbru/cpindex/internal/cpi"
)

func scenarioTable(t *testing.T, indexed bool) cpi.Table {
	t.Helper()
	series := cpi.Series{
		{Month: cpi.MustParseMonth("2023-01"), UrbanCPI: 299.17},
		{Month: cpi.MustParseMonth("2023-02"), UrbanCPI: 300.84},
		{Month: cpi.MustParseMonth("2023-03"), UrbanCPI: 301.836},
	}
	var idx *cpi.IndexRequest
	if indexed {
		idx = &cpi.IndexRequest{Month: cpi.MustParseMonth("2023-02"), Amount: decimal.NewFromInt(100)}
	}
	table, err := cpi.BuildTable(series, idx)
	if err != nil {
		t.Fatalf("BuildTable() error = %v", err)
	}
	return table
}

func TestOutputFilename(t *testing.T) {
	t.Parallel()
	if got := OutputFilename(scenarioTable(t, false)); got != "202301_202303_ucpi.csv" {
		t.Errorf("OutputFilename() = %q", got)
	}
	if got := OutputFilename(cpi.Table{}); got != "" {
		t.Errorf("OutputFilename(empty) = %q, want empty", got)
	}
	if got := XLSXPath(filepath.Join("out", "202301_202303_ucpi.csv")); got != filepath.Join("out", "202301_202303_ucpi.xlsx") {
		t.Errorf("XLSXPath() = %q", got)
	}
}

func TestWriteCSV(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "202301_202303_ucpi.csv")
	table := scenarioTable(t, true)

	if err := WriteCSV(path, table); err != nil {
		t.Fatalf("WriteCSV() error = %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading output: %v", err)
	}
	records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	if err != nil {
		t.Fatalf("parsing output: %v", err)
	}
	want := [][]string{
		{"month", "year", "urban_cpi", "index_2023-02", "indexed_monetary_value"},
		records[1], // January ratio is a long float; checked separately
		{"February", "2023", "300.84", "1.0", "100.0"},
		records[3],
	}
	if diff := cmp.Diff(want, records); diff != "" {
		t.Errorf("records mismatch (-want +got):\n%s", diff)
	}
	if records[1][0] != "January" || records[3][0] != "March" {
		t.Errorf("rows not ascending: %v", records)
	}

	t.Run("idempotent", func(t *testing.T) {
		if err := WriteCSV(path, scenarioTable(t, true)); err != nil {
			t.Fatalf("second WriteCSV() error = %v", err)
		}
		again, err := os.ReadFile(path)
		if err != nil {
			t.Fatal(err)
		}
		if !bytes.Equal(data, again) {
			t.Error("two writes of the same table differ")
		}
	})

	t.Run("no temp files left", func(t *testing.T) {
		entries, err := os.ReadDir(filepath.Dir(path))
		if err != nil {
			t.Fatal(err)
		}
		if len(entries) != 1 {
			t.Errorf("directory holds %d entries, want only the csv", len(entries))
		}
	})
}

func TestWriteCSV_Errors(t *testing.T) {
	t.Parallel()

	if err := WriteCSV(filepath.Join(t.TempDir(), "x.csv"), cpi.Table{}); err == nil {
		t.Error("WriteCSV() should reject an empty table")
	}

	// A file where the directory should be.
	blocker := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(blocker, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := WriteCSV(filepath.Join(blocker, "x.csv"), scenarioTable(t, false)); err == nil {
		t.Error("WriteCSV() should fail when the directory cannot be created")
	}
}

func TestWriteXLSX(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "202301_202303_ucpi.xlsx")
	if err := WriteXLSX(path, scenarioTable(t, true)); err != nil {
		t.Fatalf("WriteXLSX() error = %v", err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("OpenFile() error = %v", err)
	}
	defer f.Close()

	if diff := cmp.Diff([]string{SheetName}, f.GetSheetList()); diff != "" {
		t.Errorf("sheets mismatch (-want +got):\n%s", diff)
	}
	rows, err := f.GetRows(SheetName)
	if err != nil {
		t.Fatalf("GetRows() error = %v", err)
	}
	if len(rows) != 4 {
		t.Fatalf("got %d rows, want header + 3", len(rows))
	}
	if rows[0][4] != "indexed_monetary_value" || rows[2][0] != "February" || rows[2][4] != "100" {
		t.Errorf("unexpected rows: %v", rows)
	}

	if err := WriteXLSX(path, cpi.Table{}); err == nil {
		t.Error("WriteXLSX() should reject an empty table")
	}
}
