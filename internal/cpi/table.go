package cpi

import (
	"github.com/shopspring/decimal"

	apperrors "github.com/agbru/cpindex/internal/errors"
	"github.com/agbru/cpindex/internal/format"
)

// Output column names.
const (
	ColumnMonth        = "month"
	ColumnYear         = "year"
	ColumnUrbanCPI     = "urban_cpi"
	ColumnIndexedValue = "indexed_monetary_value"
)

// IndexRequest asks for every month's CPI to be expressed relative to Month,
// and for Amount to be carried across months at that ratio.
type IndexRequest struct {
	Month  Month
	Amount decimal.Decimal
}

// ColumnName returns the ratio column name, e.g. "index_2023-02".
func (r IndexRequest) ColumnName() string { return "index_" + r.Month.String() }

// Row is one output line. Ratio and IndexedValue are only meaningful when the
// owning table carries an IndexRequest.
type Row struct {
	Month        Month
	MonthName    string
	Year         string
	UrbanCPI     float64
	Ratio        float64
	IndexedValue decimal.Decimal
}

// Table is the final, ascending tabulation of a series.
type Table struct {
	Columns []string
	Rows    []Row
	Index   *IndexRequest
}

// BuildTable derives the display columns from each point, sorts ascending by
// month, and applies the optional index request.
//
// Parameters:
//   - series: The fetched series; it is not modified.
//   - index: The index request, or nil.
//
// Returns:
//   - Table: The tabulated series.
//   - error: MissingMonthError when the index month is absent from the series,
//     IntegrityError when its CPI is zero.
func BuildTable(series Series, index *IndexRequest) (Table, error) {
	sorted := series.Sorted()

	t := Table{
		Columns: []string{ColumnMonth, ColumnYear, ColumnUrbanCPI},
		Rows:    make([]Row, len(sorted)),
	}
	for i, p := range sorted {
		t.Rows[i] = Row{
			Month:     p.Month,
			MonthName: p.Month.Name(),
			Year:      p.Month.YearString(),
			UrbanCPI:  p.UrbanCPI,
		}
	}

	if index == nil {
		return t, nil
	}

	base, ok := sorted.Lookup(index.Month)
	if !ok {
		return Table{}, apperrors.MissingMonthError{Month: index.Month.String()}
	}
	if base == 0 {
		return Table{}, apperrors.NewIntegrityError("index month %s has a zero CPI", index.Month)
	}

	req := *index
	t.Index = &req
	t.Columns = append(t.Columns, req.ColumnName(), ColumnIndexedValue)
	for i := range t.Rows {
		ratio := t.Rows[i].UrbanCPI / base
		t.Rows[i].Ratio = ratio
		t.Rows[i].IndexedValue = decimal.NewFromFloat(ratio).Mul(req.Amount)
	}
	return t, nil
}

// Len returns the number of rows.
func (t Table) Len() int { return len(t.Rows) }

// First returns the earliest month, or the zero Month for an empty table.
func (t Table) First() Month {
	if len(t.Rows) == 0 {
		return Month{}
	}
	return t.Rows[0].Month
}

// Last returns the latest month, or the zero Month for an empty table.
func (t Table) Last() Month {
	if len(t.Rows) == 0 {
		return Month{}
	}
	return t.Rows[len(t.Rows)-1].Month
}

// Records renders the table as string records, header first.
func (t Table) Records() [][]string {
	records := make([][]string, 0, len(t.Rows)+1)
	records = append(records, append([]string(nil), t.Columns...))
	for _, r := range t.Rows {
		rec := []string{r.MonthName, r.Year, format.FormatFloat(r.UrbanCPI)}
		if t.Index != nil {
			rec = append(rec, format.FormatFloat(r.Ratio), format.FormatDecimal(r.IndexedValue))
		}
		records = append(records, rec)
	}
	return records
}
