package dataprocessing

import (
	"log/slog"
	"strings"
)

// ColumnNotFound is the index reported for a logical field whose column
// could not be resolved. Records built from such a table carry a zero or
// empty value for that field; an unresolved column is never fatal.
const ColumnNotFound = -1

// ColumnSpec binds a logical field to the header texts that may name it,
// in priority order, plus an optional positional fallback for legacy tabs
// whose columns carry no usable header.
type ColumnSpec struct {
	Field    string
	Synonyms []string
	// Fallback is the zero-based column index used when no synonym
	// matches; ColumnNotFound disables the positional tier.
	Fallback int
}

// Schema is the ordered column layout of one logical source table.
type Schema []ColumnSpec

// ResolveColumn returns the index of the first header cell matching any
// synonym. Matching is case-insensitive on trimmed text: an exact-equality
// pass over all synonyms runs first, then a substring pass (containment in
// either direction). Headers are scanned left to right, synonyms in
// priority order. Returns ColumnNotFound when nothing matches.
func ResolveColumn(header []string, synonyms []string) int {
	cells := make([]string, len(header))
	for i, h := range header {
		cells[i] = strings.ToLower(strings.TrimSpace(h))
	}

	for _, syn := range synonyms {
		want := strings.ToLower(strings.TrimSpace(syn))
		if want == "" {
			continue
		}
		for i, cell := range cells {
			if cell == want {
				return i
			}
		}
	}
	for _, syn := range synonyms {
		want := strings.ToLower(strings.TrimSpace(syn))
		if want == "" {
			continue
		}
		for i, cell := range cells {
			if cell == "" {
				continue
			}
			if strings.Contains(cell, want) || strings.Contains(want, cell) {
				return i
			}
		}
	}
	return ColumnNotFound
}

// columnMap is the cached schema-to-index mapping for one table. Resolution
// runs once per table, never per row.
type columnMap map[string]int

// resolveSchema maps every field of the schema against the table header.
// Fields that miss both the synonym passes and the positional fallback are
// logged and recorded as ColumnNotFound.
func resolveSchema(table RawTable, schema Schema, logger *slog.Logger) columnMap {
	m := make(columnMap, len(schema))
	for _, spec := range schema {
		idx := ResolveColumn(table.Header, spec.Synonyms)
		if idx == ColumnNotFound && spec.Fallback != ColumnNotFound {
			// Degraded mode: legacy tabs with unnamed columns keep a
			// fixed layout, so the documented position is trusted.
			idx = spec.Fallback
		}
		if idx == ColumnNotFound {
			logger.Warn("column not resolved",
				slog.String("table", table.Name),
				slog.String("field", spec.Field))
		}
		m[spec.Field] = idx
	}
	return m
}

// cell returns the trimmed raw value of a field for one row, or "" when the
// column is unresolved or the row is short.
func (m columnMap) cell(row []string, field string) string {
	idx, ok := m[field]
	if !ok || idx == ColumnNotFound || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// number, integer and date apply the cell parsers to a resolved field.

func (m columnMap) number(row []string, field string) float64 {
	return ParseLocaleNumber(m.cell(row, field))
}

func (m columnMap) integer(row []string, field string) int64 {
	return ParseLocaleInteger(m.cell(row, field))
}

func (m columnMap) date(row []string, field string) string {
	return ParseFlexibleDate(m.cell(row, field))
}
