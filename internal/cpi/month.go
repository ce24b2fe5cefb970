package cpi

import (
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/civil"
)

const (
	isoLayout     = "2006-01"
	compactLayout = "200601"
)

// Month is a calendar month. The underlying date always falls on day 1, so two
// Months compare equal exactly when they name the same year and month.
type Month struct {
	date civil.Date
}

// NewMonth returns the month for the given year and calendar month.
func NewMonth(year int, month time.Month) Month {
	return Month{date: civil.Date{Year: year, Month: month, Day: 1}}
}

// MonthOf returns the month containing t.
func MonthOf(t time.Time) Month {
	return NewMonth(t.Year(), t.Month())
}

// ParseMonth parses a YYYY-MM string.
func ParseMonth(s string) (Month, error) {
	t, err := time.Parse(isoLayout, strings.TrimSpace(s))
	if err != nil {
		return Month{}, fmt.Errorf("not a valid month: %q, expected format: YYYY-MM", s)
	}
	return MonthOf(t), nil
}

// MustParseMonth is like ParseMonth but panics on malformed input.
// Intended for constants and tests.
func MustParseMonth(s string) Month {
	m, err := ParseMonth(s)
	if err != nil {
		panic(err)
	}
	return m
}

// IsZero reports whether m is the zero Month.
func (m Month) IsZero() bool { return m.date.IsZero() }

// Year returns the calendar year.
func (m Month) Year() int { return m.date.Year }

// Month returns the calendar month.
func (m Month) Month() time.Month { return m.date.Month }

// Date returns the first day of the month.
func (m Month) Date() civil.Date { return m.date }

// Time returns midnight UTC on the first day of the month.
func (m Month) Time() time.Time { return m.date.In(time.UTC) }

// AddMonths returns m shifted by n calendar months.
func (m Month) AddMonths(n int) Month {
	return MonthOf(m.Time().AddDate(0, n, 0))
}

// Before reports whether m precedes o.
func (m Month) Before(o Month) bool { return m.date.Before(o.date) }

// After reports whether m follows o.
func (m Month) After(o Month) bool { return m.date.After(o.date) }

// Equal reports whether m and o are the same month.
func (m Month) Equal(o Month) bool { return m.date == o.date }

// Between reports whether m lies in the inclusive range [start, end].
func (m Month) Between(start, end Month) bool {
	return !m.Before(start) && !m.After(end)
}

// DaysUntil returns the number of days from the first of m to the first of o.
func (m Month) DaysUntil(o Month) int { return o.date.DaysSince(m.date) }

// String returns the month in YYYY-MM form, or "" for the zero Month.
func (m Month) String() string {
	if m.IsZero() {
		return ""
	}
	return m.Time().Format(isoLayout)
}

// Compact returns the month in YYYYMM form, as used in output file names.
func (m Month) Compact() string { return m.Time().Format(compactLayout) }

// Name returns the full English month name ("January").
func (m Month) Name() string { return m.date.Month.String() }

// YearString returns the 4-digit year.
func (m Month) YearString() string { return fmt.Sprintf("%04d", m.date.Year) }

// MarshalText implements encoding.TextMarshaler.
func (m Month) MarshalText() ([]byte, error) { return []byte(m.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *Month) UnmarshalText(b []byte) error {
	if len(b) == 0 {
		*m = Month{}
		return nil
	}
	parsed, err := ParseMonth(string(b))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// Set implements flag.Value, so a *Month can be bound directly to a flag.
func (m *Month) Set(s string) error {
	parsed, err := ParseMonth(s)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
