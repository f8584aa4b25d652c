// Package unit defines the opaque measurement-unit tag carried by
// calculation values.
//
// The multi-hop conversion subsystem lives elsewhere; the engine carries the
// tag through operations untouched and hands actual conversion to a
// Converter supplied by the caller.
package unit

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Unit tags a value with a measurement unit, e.g. Currency[USD] or
// Mass[kg]. Units compare by category and code; the engine attaches no
// meaning beyond equality.
type Unit struct {
	Category string
	Code     string
}

// New builds a unit tag.
func New(category, code string) *Unit {
	return &Unit{Category: category, Code: code}
}

// String renders the canonical "<Category>[<code>]" form.
func (u *Unit) String() string {
	if u == nil {
		return ""
	}
	return fmt.Sprintf("%s[%s]", u.Category, u.Code)
}

// Equal reports whether two unit tags match. Two nil units are equal.
func (u *Unit) Equal(other *Unit) bool {
	if u == nil || other == nil {
		return u == other
	}
	return u.Category == other.Category && u.Code == other.Code
}

// Converter is the narrow interface to the external conversion subsystem.
// Implementations resolve an amount from one unit to another, optionally as
// of a point in time (exchange rates, historical factors).
type Converter interface {
	Convert(amount decimal.Decimal, from, to *Unit, at time.Time) (decimal.Decimal, error)
}

// ConverterFunc adapts a plain function to the Converter interface.
type ConverterFunc func(amount decimal.Decimal, from, to *Unit, at time.Time) (decimal.Decimal, error)

// Convert implements Converter.
func (f ConverterFunc) Convert(amount decimal.Decimal, from, to *Unit, at time.Time) (decimal.Decimal, error) {
	return f(amount, from, to, at)
}
