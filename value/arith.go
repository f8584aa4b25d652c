package value

import (
	"github.com/shopspring/decimal"

	"github.com/teranos/tally/config"
	"github.com/teranos/tally/errors"
	"github.com/teranos/tally/policy"
	"github.com/teranos/tally/provenance"
	"github.com/teranos/tally/unit"
)

// Arithmetic operators. Shared semantics:
//
//   - Undefined operands propagate an undefined result, unless strict_nulls
//     is active, in which case the operation fails.
//   - The left operand's policy quantizes the result (falling back to the
//     right operand's when the left has none).
//   - "+" and "-" require matching units; "*" and "/" keep the left unit
//     without validating the right.
//   - Every operation stamps a provenance node over the operand records.

var half = decimal.NewFromFloat(0.5)

// powPrecision bounds fractional exponentiation. Results quantize to the
// operand policy afterward, so extra digits here only buy headroom.
const powPrecision = 32

// Add returns v + o.
func (v Value) Add(o Value) (Value, error) {
	u, err := additiveUnit("+", v.unit, o.unit)
	if err != nil {
		return Value{}, err
	}
	return v.arith2("+", o, u, nil, func(a, b decimal.Decimal) (decimal.Decimal, error) {
		return a.Add(b), nil
	})
}

// Sub returns v - o.
func (v Value) Sub(o Value) (Value, error) {
	u, err := additiveUnit("-", v.unit, o.unit)
	if err != nil {
		return Value{}, err
	}
	return v.arith2("-", o, u, nil, func(a, b decimal.Decimal) (decimal.Decimal, error) {
		return a.Sub(b), nil
	})
}

// Mul returns v * o. The result keeps v's unit.
func (v Value) Mul(o Value) (Value, error) {
	return v.arith2("*", o, v.unit, nil, func(a, b decimal.Decimal) (decimal.Decimal, error) {
		return a.Mul(b), nil
	})
}

// Div returns v / o. The result keeps v's unit. Division by zero yields an
// undefined result, or fails under strict arithmetic.
func (v Value) Div(o Value) (Value, error) {
	return v.arith2("/", o, v.unit, nil, func(a, b decimal.Decimal) (decimal.Decimal, error) {
		if b.IsZero() {
			return decimal.Decimal{}, errors.New("division by zero")
		}
		return a.Div(b), nil
	})
}

// Pow returns v ** o. Integer exponents are tagged exponent_type=integer,
// the 0.5 exponent is tagged sqrt, and 0**0 is defined as 1.
func (v Value) Pow(o Value) (Value, error) {
	meta := map[string]string{}
	if o.amount != nil {
		switch {
		case o.amount.IsInteger():
			meta["exponent_type"] = "integer"
		case o.amount.Equal(half):
			meta["exponent_type"] = "sqrt"
		}
	}
	if v.amount != nil && o.amount != nil && v.amount.IsZero() && o.amount.IsZero() {
		meta["special_case"] = "0^0"
	}

	return v.arith2("**", o, v.unit, meta, func(a, b decimal.Decimal) (decimal.Decimal, error) {
		if a.IsZero() && b.IsZero() {
			return decimal.NewFromInt(1), nil
		}
		if b.IsInteger() {
			return a.Pow(b), nil
		}
		return a.PowWithPrecision(b, powPrecision)
	})
}

// Neg returns -v.
func (v Value) Neg() (Value, error) {
	return v.arith1("neg", func(a decimal.Decimal) (decimal.Decimal, error) {
		return a.Neg(), nil
	})
}

// Abs returns |v|.
func (v Value) Abs() (Value, error) {
	return v.arith1("abs", func(a decimal.Decimal) (decimal.Decimal, error) {
		return a.Abs(), nil
	})
}

// additiveUnit resolves the unit for "+"/"-": matching units pass through,
// a single nil defers to the other side, mismatched units fail.
func additiveUnit(op string, left, right *unit.Unit) (*unit.Unit, error) {
	switch {
	case left == nil:
		return right, nil
	case right == nil:
		return left, nil
	case left.Equal(right):
		return left, nil
	default:
		return nil, errors.NewIncompatibleUnits(op, left.String(), right.String())
	}
}

func (v Value) arith2(op string, o Value, resUnit *unit.Unit, extraMeta map[string]string, f func(a, b decimal.Decimal) (decimal.Decimal, error)) (Value, error) {
	cfg := config.Active()
	pol := effectivePolicy(v.pol, o.pol)

	var amount *decimal.Decimal
	switch {
	case v.amount == nil || o.amount == nil:
		if cfg.StrictNulls {
			return Value{}, errors.NewCalculationErrorf("", "operator %q received an undefined operand", op)
		}
	default:
		res, err := f(*v.amount, *o.amount)
		if err != nil {
			if cfg.StrictArithmetic {
				return Value{}, errors.NewCalculationErrorf("", "operator %q: %s", op, err.Error())
			}
			// Degrade to an undefined result.
		} else {
			q := pol.Quantize(res)
			amount = &q
		}
	}

	meta := make(map[string]string, len(extraMeta)+1)
	for k, val := range extraMeta {
		meta[k] = val
	}
	if resUnit != nil {
		meta["unit"] = resUnit.String()
	}

	rec := provenance.NewNode(op, []*provenance.Record{v.prov, o.prov}, pol, meta)
	return derived(amount, resUnit, pol, v.isPercentage && o.isPercentage, rec), nil
}

func (v Value) arith1(op string, f func(a decimal.Decimal) (decimal.Decimal, error)) (Value, error) {
	cfg := config.Active()

	var amount *decimal.Decimal
	if v.amount == nil {
		if cfg.StrictNulls {
			return Value{}, errors.NewCalculationErrorf("", "operator %q received an undefined operand", op)
		}
	} else {
		res, err := f(*v.amount)
		if err != nil {
			if cfg.StrictArithmetic {
				return Value{}, errors.NewCalculationErrorf("", "operator %q: %s", op, err.Error())
			}
		} else {
			q := v.pol.Quantize(res)
			amount = &q
		}
	}

	var meta map[string]string
	if v.unit != nil {
		meta = map[string]string{"unit": v.unit.String()}
	}

	rec := provenance.NewNode(op, []*provenance.Record{v.prov}, v.pol, meta)
	return derived(amount, v.unit, v.pol, v.isPercentage, rec), nil
}

func effectivePolicy(left, right *policy.Policy) *policy.Policy {
	if left != nil {
		return left
	}
	return right
}
