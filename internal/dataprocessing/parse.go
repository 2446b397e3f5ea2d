package dataprocessing

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Cell parsing for pt-BR formatted spreadsheet exports. All parsers are
// total: malformed input is a normal outcome (missing measurement) and
// folds to 0 or an absent date, never an error. Whitespace-only, empty and
// literal "0" cells are indistinguishable from genuine zero measurements in
// the source data; that ambiguity is preserved here, not resolved.

const isoDateLayout = "2006-01-02"

// genericDateLayouts are tried after the locale formats, in order.
var genericDateLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"02-01-2006",
}

// ParseLocaleNumber converts a pt-BR formatted numeric cell ("R$ 1.500,00",
// "8.000", "1,25") to a float64. Unparseable, non-finite and negative
// values normalize to 0.
func ParseLocaleNumber(cell string) float64 {
	s := strings.TrimSpace(cell)
	if s == "" || s == "0" {
		return 0
	}
	s = strings.TrimSpace(strings.TrimPrefix(s, "R$"))
	s = strings.ReplaceAll(s, ".", "")
	s = strings.ReplaceAll(s, ",", ".")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return v
}

// ParseLocaleInteger converts a pt-BR formatted count cell ("10.000") to an
// int64. Thousands separators are stripped; a decimal tail after a comma is
// dropped. Unparseable or negative values normalize to 0.
func ParseLocaleInteger(cell string) int64 {
	s := strings.TrimSpace(cell)
	if s == "" || s == "0" {
		return 0
	}
	s = strings.ReplaceAll(s, ".", "")
	if i := strings.IndexByte(s, ','); i >= 0 {
		s = s[:i]
	}
	v, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || v < 0 {
		return 0
	}
	return v
}

// ParseFlexibleDate normalizes a date cell to zero-padded ISO YYYY-MM-DD.
// Accepted inputs: DD/MM/YYYY (padded or not), YYYY-MM-DD, and a small set
// of generic layouts. Returns "" when no interpretation succeeds; an absent
// date excludes the record from date-filtered views but is not an error.
func ParseFlexibleDate(cell string) string {
	s := strings.TrimSpace(cell)
	if s == "" {
		return ""
	}

	if parts := strings.Split(s, "/"); len(parts) == 3 {
		first := strings.TrimSpace(parts[0])
		second := strings.TrimSpace(parts[1])
		third := strings.TrimSpace(parts[2])
		if len(first) == 4 {
			// Year-first variant.
			first, third = third, first
		}
		day, derr := strconv.Atoi(first)
		month, merr := strconv.Atoi(second)
		year, yerr := strconv.Atoi(third)
		if derr == nil && merr == nil && yerr == nil && validCalendarDate(year, month, day) {
			return fmt.Sprintf("%04d-%02d-%02d", year, month, day)
		}
		return ""
	}

	if t, err := time.Parse(isoDateLayout, s); err == nil {
		return t.Format(isoDateLayout)
	}
	for _, layout := range genericDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format(isoDateLayout)
		}
	}
	return ""
}

// validCalendarDate checks the round trip through time.Date so that inputs
// like 32/13/2025 are rejected rather than normalized forward.
func validCalendarDate(year, month, day int) bool {
	if year < 1000 || year > 9999 || month < 1 || month > 12 || day < 1 || day > 31 {
		return false
	}
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	return t.Year() == year && int(t.Month()) == month && t.Day() == day
}

// ratio returns num/den with the divide-by-zero-to-zero policy applied
// uniformly across every derived metric in the package.
func ratio(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	return num / den
}
