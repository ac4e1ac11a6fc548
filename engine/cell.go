/*
Package engine provides the salary calculation core.

PURPOSE:
  This package contains the pure arithmetic of the salary estimator:
  monthly payroll derivation, annual bonus aggregation, totals
  composition, and the multi-year stock-trust projection. It has zero
  knowledge of storage or transport - inputs come in as value types,
  derived values come out as new value types.

KEY CONCEPTS IN THIS FILE (cell.go):
  - Cell: a numeric-or-blank form value. Payroll fields distinguish
    "not applicable" (blank) from "computed to zero" (0), so a plain
    decimal is not enough.
  - Coercion: blank or unparseable input coerces to zero for
    arithmetic, but blankness is preserved for storage and display.

DESIGN PRINCIPLES:
  1. Immutability: derivations return new records, never mutate.
  2. Precision: decimal.Decimal everywhere, no float drift.
  3. Totality: every input coerces to a defined value; the engine
     never returns an error for user-typed garbage.

SEE ALSO:
  - payroll.go: monthly derivation rules
  - trust.go: multi-year projection
*/
package engine

import (
	"bytes"

	gojson "github.com/goccy/go-json"
	"github.com/shopspring/decimal"
)

// =============================================================================
// CELL - Numeric-or-blank form value
// =============================================================================

// Cell is a single form field: either blank or a decimal value.
// The zero Cell is blank.
type Cell struct {
	value decimal.Decimal
	set   bool
}

// Blank returns the blank Cell.
func Blank() Cell { return Cell{} }

// NewCell wraps a decimal in a set Cell.
func NewCell(v decimal.Decimal) Cell { return Cell{value: v, set: true} }

// CellFromInt wraps an integer amount.
func CellFromInt(v int64) Cell { return NewCell(decimal.NewFromInt(v)) }

// CellFromFloat wraps a float amount.
func CellFromFloat(v float64) Cell { return NewCell(decimal.NewFromFloat(v)) }

// ParseCell converts raw user input into a Cell.
// Empty input stays blank; unparseable input coerces to zero.
func ParseCell(raw string) Cell {
	if raw == "" {
		return Blank()
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return NewCell(decimal.Zero)
	}
	return NewCell(d)
}

// IsBlank reports whether the Cell holds no value.
func (c Cell) IsBlank() bool { return !c.set }

// Decimal returns the Cell's value, coercing blank to zero.
// This is the arithmetic view of the field.
func (c Cell) Decimal() decimal.Decimal {
	if !c.set {
		return decimal.Zero
	}
	return c.value
}

// Equal reports value equality. Two blanks are equal; a blank never
// equals a set zero (the distinction matters for display).
func (c Cell) Equal(o Cell) bool {
	if c.set != o.set {
		return false
	}
	if !c.set {
		return true
	}
	return c.value.Equal(o.value)
}

// String renders the value, or "" for blank.
func (c Cell) String() string {
	if !c.set {
		return ""
	}
	return c.value.String()
}

// =============================================================================
// JSON CODEC
// =============================================================================

// MarshalJSON renders blank as "" (matching the persisted form state of
// the original records) and set values as bare numbers.
func (c Cell) MarshalJSON() ([]byte, error) {
	if !c.set {
		return []byte(`""`), nil
	}
	return []byte(c.value.String()), nil
}

// UnmarshalJSON accepts a number, a numeric string, "" or null.
// Anything else coerces to zero per the engine's parse-error policy.
func (c *Cell) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*c = Blank()
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := gojson.Unmarshal(data, &s); err != nil {
			*c = NewCell(decimal.Zero)
			return nil
		}
		*c = ParseCell(s)
		return nil
	}
	d, err := decimal.NewFromString(string(data))
	if err != nil {
		*c = NewCell(decimal.Zero)
		return nil
	}
	*c = NewCell(d)
	return nil
}

// =============================================================================
// SHARED HELPERS
// =============================================================================

// blankWhenNA stores a computed amount, except that a zero result on a
// zero base total is "not applicable" and stays blank.
func blankWhenNA(v, baseTotal decimal.Decimal) Cell {
	if v.IsZero() && baseTotal.IsZero() {
		return Blank()
	}
	return NewCell(v)
}

// round is arithmetic rounding to a whole amount (half away from zero;
// the domain is non-negative so this matches half-up).
func round(d decimal.Decimal) decimal.Decimal { return d.Round(0) }
