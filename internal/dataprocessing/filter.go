package dataprocessing

import "strings"

// Dimension identifies one filterable attribute of a record.
type Dimension string

const (
	DimPlatform Dimension = "platform"
	DimPraca    Dimension = "praca"
	DimBuyType  Dimension = "buy_type"
	DimOrigin   Dimension = "origin"
)

// FilterState is an immutable description of the active filters. An empty
// inclusion set for a dimension means "no filtering on that dimension",
// never "match none". Dates are inclusive ISO bounds; an empty bound is
// unbounded on that side.
type FilterState struct {
	Start     string   `json:"start"`
	End       string   `json:"end"`
	Platforms []string `json:"platforms"`
	Pracas    []string `json:"pracas"`
	BuyTypes  []string `json:"buy_types"`
	Origins   []string `json:"origins"`
}

// IsZero reports whether the state filters nothing.
func (f FilterState) IsZero() bool {
	return f.Start == "" && f.End == "" &&
		len(f.Platforms) == 0 && len(f.Pracas) == 0 &&
		len(f.BuyTypes) == 0 && len(f.Origins) == 0
}

func (f FilterState) set(dim Dimension) []string {
	switch dim {
	case DimPlatform:
		return f.Platforms
	case DimPraca:
		return f.Pracas
	case DimBuyType:
		return f.BuyTypes
	case DimOrigin:
		return f.Origins
	default:
		return nil
	}
}

// Filterable is implemented by every normalized record type. DimensionValue
// reports ok=false for dimensions the record does not carry; such records
// pass that dimension's filter (matching the fail-open behavior for tabs
// that lack the column entirely).
type Filterable interface {
	RecordDate() string
	DimensionValue(dim Dimension) (string, bool)
}

// Apply returns the records passing every predicate of the filter state.
// Date comparison runs on normalized ISO strings; a record without a
// resolvable date passes the date filter. Apply never mutates its input and
// always allocates a fresh slice.
func Apply[T Filterable](records []T, state FilterState) []T {
	out := make([]T, 0, len(records))
	for _, rec := range records {
		if !dateInRange(rec.RecordDate(), state.Start, state.End) {
			continue
		}
		if !matchesSets(rec, state) {
			continue
		}
		out = append(out, rec)
	}
	return out
}

func dateInRange(date, start, end string) bool {
	if date == "" {
		return true
	}
	if start != "" && date < start {
		return false
	}
	if end != "" && date > end {
		return false
	}
	return true
}

func matchesSets[T Filterable](rec T, state FilterState) bool {
	for _, dim := range []Dimension{DimPlatform, DimPraca, DimBuyType, DimOrigin} {
		set := state.set(dim)
		if len(set) == 0 {
			continue
		}
		value, ok := rec.DimensionValue(dim)
		if !ok {
			continue
		}
		if !containsFold(set, value) {
			return false
		}
	}
	return true
}

func containsFold(set []string, value string) bool {
	for _, member := range set {
		if strings.EqualFold(strings.TrimSpace(member), strings.TrimSpace(value)) {
			return true
		}
	}
	return false
}

// Filterable implementations.

func (r DeliveryRecord) RecordDate() string { return r.Date }

func (r DeliveryRecord) DimensionValue(dim Dimension) (string, bool) {
	switch dim {
	case DimPlatform:
		return r.Platform, true
	case DimPraca:
		return r.Praca, true
	case DimBuyType:
		return r.BuyType, true
	default:
		return "", false
	}
}

// ReachRecord carries no date of its own; it passes every date filter.
func (r ReachRecord) RecordDate() string { return "" }

func (r ReachRecord) DimensionValue(dim Dimension) (string, bool) {
	switch dim {
	case DimPlatform:
		return r.Platform, true
	case DimPraca:
		return r.Praca, true
	default:
		return "", false
	}
}

func (r EventRecord) RecordDate() string { return r.Date }

// Analytics tabs do not always carry the praça or origem columns; an unset
// value fail-opens instead of excluding every session from that tab.
func (r EventRecord) DimensionValue(dim Dimension) (string, bool) {
	switch dim {
	case DimPraca:
		return r.Praca, r.Praca != ""
	case DimOrigin:
		return r.Origin, r.Origin != ""
	default:
		return "", false
	}
}

func (r PlanRecord) RecordDate() string { return "" }

func (r PlanRecord) DimensionValue(dim Dimension) (string, bool) {
	switch dim {
	case DimPlatform:
		return r.Vehicle, true
	case DimPraca:
		return r.Praca, true
	case DimBuyType:
		return r.BuyType, true
	default:
		return "", false
	}
}
