package cpi

import (
	"sort"

	apperrors "github.com/agbru/cpindex/internal/errors"
)

// Point is one monthly CPI observation.
type Point struct {
	Month    Month
	UrbanCPI float64
}

// Series is a sequence of monthly observations, one per calendar month.
type Series []Point

// Sort orders the series ascending by month.
func (s Series) Sort() {
	sort.SliceStable(s, func(i, j int) bool { return s[i].Month.Before(s[j].Month) })
}

// Sorted returns an ascending copy of the series.
func (s Series) Sorted() Series {
	out := make(Series, len(s))
	copy(out, s)
	out.Sort()
	return out
}

// Months returns the months of the series in their current order.
func (s Series) Months() []Month {
	months := make([]Month, len(s))
	for i, p := range s {
		months[i] = p.Month
	}
	return months
}

// Lookup returns the value recorded for m.
func (s Series) Lookup(m Month) (float64, bool) {
	for _, p := range s {
		if p.Month.Equal(m) {
			return p.UrbanCPI, true
		}
	}
	return 0, false
}

// Within checks that every point lies in the inclusive range [start, end].
func (s Series) Within(start, end Month) error {
	for _, p := range s {
		if !p.Month.Between(start, end) {
			return apperrors.NewIntegrityError("month %s outside requested range %s..%s", p.Month, start, end)
		}
	}
	return nil
}

// CheckContiguity verifies that consecutive points of an ascending series are
// adjacent calendar months, i.e. 28 to 31 days apart. A repeated month is
// reported as a duplicate.
func (s Series) CheckContiguity() error {
	for i := 1; i < len(s); i++ {
		prev, cur := s[i-1].Month, s[i].Month
		if cur.Equal(prev) {
			return apperrors.NewIntegrityError("duplicate month %s", cur)
		}
		if !cur.Equal(prev.AddMonths(1)) {
			return apperrors.NewIntegrityError("rows are not adjacent months: %s -> %s (%d days)",
				prev, cur, prev.DaysUntil(cur))
		}
	}
	return nil
}
