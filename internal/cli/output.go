// # Naming Conventions
//
// Functions in this package follow consistent naming patterns based on their behavior:
//
//   - Display* and Print* functions write formatted output to an [io.Writer].
//     Examples: [DisplayProgress], [PrintExecutionConfig], [DisplaySummary].
//
//   - Format* functions return a formatted string without performing I/O.
//     Examples: [FormatProgressSuffix], [OutputFilename].
//
//   - Write* functions write data to files on the filesystem.
//     Examples: [WriteCSV], [WriteXLSX].

package cli

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/agbru/cpindex/internal/cpi"
)

// SheetName is the worksheet written by WriteXLSX.
const SheetName = "ucpi"

var errEmptyTable = errors.New("table has no rows")

// OutputFilename returns the CSV file name for a table,
// "<first YYYYMM>_<last YYYYMM>_ucpi.csv". It returns "" for an empty table.
func OutputFilename(t cpi.Table) string {
	if t.Len() == 0 {
		return ""
	}
	return fmt.Sprintf("%s_%s_ucpi.csv", t.First().Compact(), t.Last().Compact())
}

// XLSXPath returns the workbook path written next to csvPath.
func XLSXPath(csvPath string) string {
	return strings.TrimSuffix(csvPath, filepath.Ext(csvPath)) + ".xlsx"
}

// WriteCSV writes the table to path. The file is written to a temporary
// file in the same directory and renamed into place, so readers never see
// a partial table and an existing file is replaced whole.
//
// Parameters:
//   - path: The destination file.
//   - t: The table to write.
//
// Returns:
//   - error: An error if the directory or file cannot be written.
func WriteCSV(path string, t cpi.Table) (err error) {
	if t.Len() == 0 {
		return errEmptyTable
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".ucpi-*.csv.tmp")
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	w := csv.NewWriter(tmp)
	if err := w.WriteAll(t.Records()); err != nil {
		return fmt.Errorf("failed to write csv: %w", err)
	}
	if err := tmp.Chmod(0o644); err != nil {
		return fmt.Errorf("failed to set file mode: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close output file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to move output file into place: %w", err)
	}
	return nil
}

// WriteXLSX writes the table to a workbook at path with a single sheet
// named SheetName. Numeric columns are stored as numbers.
//
// Parameters:
//   - path: The destination file.
//   - t: The table to write.
//
// Returns:
//   - error: An error if the workbook cannot be built or saved.
func WriteXLSX(path string, t cpi.Table) error {
	if t.Len() == 0 {
		return errEmptyTable
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	header := make([]any, len(t.Columns))
	for i, c := range t.Columns {
		header[i] = c
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for i, row := range t.Rows {
		values := []any{row.MonthName, row.Year, row.UrbanCPI}
		if t.Index != nil {
			values = append(values, row.Ratio, row.IndexedValue.InexactFloat64())
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(SheetName, cell, &values); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+1, err)
		}
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}
