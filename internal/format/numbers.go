package format

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// FormatFloat renders a float in its shortest round-trip form, always keeping
// a decimal point so integral values read as "100.0" rather than "100".
// The output is deterministic, which keeps written tables byte-identical
// across runs with identical inputs.
//
// Parameters:
//   - v: The value to format.
//
// Returns:
//   - string: The formatted value.
func FormatFloat(v float64) string {
	return ensurePoint(strconv.FormatFloat(v, 'f', -1, 64))
}

// FormatDecimal renders a decimal exactly, with the same trailing ".0"
// convention as FormatFloat.
func FormatDecimal(d decimal.Decimal) string {
	return ensurePoint(d.String())
}

func ensurePoint(s string) string {
	if strings.ContainsAny(s, ".eEnN") {
		return s
	}
	return s + ".0"
}
