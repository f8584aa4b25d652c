// Package value implements the immutable calculation value: an optional
// arbitrary-precision decimal amount with a unit tag, rounding policy,
// percentage flag, and one provenance record.
//
// Values never mutate; every operation returns a new value carrying a new
// provenance node. An undefined amount (missing data, division by zero)
// is a valid value, not an error: it renders as "undefined" and propagates
// through arithmetic.
package value

import (
	"github.com/shopspring/decimal"

	"github.com/teranos/tally/policy"
	"github.com/teranos/tally/provenance"
	"github.com/teranos/tally/unit"
)

// Value is an immutable calculation value.
type Value struct {
	amount       *decimal.Decimal
	unit         *unit.Unit
	pol          *policy.Policy
	isPercentage bool
	prov         *provenance.Record
}

// Option customizes value construction.
type Option func(*Value)

// WithUnit tags the value with a measurement unit.
func WithUnit(u *unit.Unit) Option {
	return func(v *Value) { v.unit = u }
}

// WithPolicy attaches a rounding/precision policy.
func WithPolicy(p *policy.Policy) Option {
	return func(v *Value) { v.pol = p }
}

// New constructs a literal value and stamps its provenance record.
func New(d decimal.Decimal, opts ...Option) Value {
	v := Value{amount: &d}
	for _, opt := range opts {
		opt(&v)
	}
	v.prov = provenance.NewLiteral(v.amount, v.pol, literalMeta(v.unit))
	return v
}

// NewFromString parses s as a decimal and constructs a literal value.
func NewFromString(s string, opts ...Option) (Value, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Value{}, err
	}
	return New(d, opts...), nil
}

// NewFromInt constructs a literal value from an integer.
func NewFromInt(n int64, opts ...Option) Value {
	return New(decimal.NewFromInt(n), opts...)
}

// NewFromFloat constructs a literal value from a float.
func NewFromFloat(f float64, opts ...Option) Value {
	return New(decimal.NewFromFloat(f), opts...)
}

// Undefined constructs a value with no amount. Undefined is distinct from
// zero: it means "no result", and it propagates through arithmetic.
func Undefined(opts ...Option) Value {
	v := Value{}
	for _, opt := range opts {
		opt(&v)
	}
	v.prov = provenance.NewLiteral(nil, v.pol, literalMeta(v.unit))
	return v
}

func literalMeta(u *unit.Unit) map[string]string {
	if u == nil {
		return nil
	}
	return map[string]string{"unit": u.String()}
}

// Amount returns the decimal amount; ok is false when undefined.
func (v Value) Amount() (decimal.Decimal, bool) {
	if v.amount == nil {
		return decimal.Decimal{}, false
	}
	return *v.amount, true
}

// IsDefined reports whether the value carries an amount.
func (v Value) IsDefined() bool { return v.amount != nil }

// Unit returns the unit tag, nil when untagged.
func (v Value) Unit() *unit.Unit { return v.unit }

// Policy returns the attached rounding policy, nil when unset.
func (v Value) Policy() *policy.Policy { return v.pol }

// IsPercentage reports whether the value represents a percentage.
func (v Value) IsPercentage() bool { return v.isPercentage }

// Provenance returns the value's own provenance record, nil when tracking
// was disabled at construction.
func (v Value) Provenance() *provenance.Record { return v.prov }

// String renders the value for humans: quantized amount, unit suffix,
// percent sign. Undefined values render as "undefined".
func (v Value) String() string {
	if v.amount == nil {
		return "undefined"
	}
	s := v.pol.Quantize(*v.amount).String()
	if v.isPercentage {
		s += "%"
	}
	if v.unit != nil {
		s += " " + v.unit.String()
	}
	return s
}

// Explain summarizes how the value was produced, walking at most maxDepth
// recorded inputs.
func (v Value) Explain(maxDepth int) string {
	return provenance.Explain(v.prov, v.String(), maxDepth)
}

// Equal reports amount, unit, and percentage-flag equality. Provenance is
// excluded: two independently computed identical results compare equal.
func (v Value) Equal(other Value) bool {
	if (v.amount == nil) != (other.amount == nil) {
		return false
	}
	if v.amount != nil && !v.amount.Equal(*other.amount) {
		return false
	}
	return v.unit.Equal(other.unit) && v.isPercentage == other.isPercentage
}

// derived builds a result value sharing construction internals with the
// arithmetic and conversion layers.
func derived(amount *decimal.Decimal, u *unit.Unit, pol *policy.Policy, percentage bool, rec *provenance.Record) Value {
	return Value{amount: amount, unit: u, pol: pol, isPercentage: percentage, prov: rec}
}
