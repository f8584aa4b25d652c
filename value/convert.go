package value

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/teranos/tally/config"
	"github.com/teranos/tally/errors"
	"github.com/teranos/tally/provenance"
	"github.com/teranos/tally/unit"
)

var hundred = decimal.NewFromInt(100)

// AsPercentage returns the value scaled by 100 and flagged as a percentage.
// The unit tag is dropped: a percentage is dimensionless.
func (v Value) AsPercentage() (Value, error) {
	var amount *decimal.Decimal
	if v.amount == nil {
		if config.Active().StrictNulls {
			return Value{}, errors.NewCalculationErrorf("", "as_percentage received an undefined operand")
		}
	} else {
		q := v.pol.Quantize(v.amount.Mul(hundred))
		amount = &q
	}

	meta := map[string]string{"conversion": "percentage"}
	rec := provenance.NewNode("as_percentage", []*provenance.Record{v.prov}, v.pol, meta)
	return derived(amount, nil, v.pol, true, rec), nil
}

// Ratio returns v / total as a dimensionless ratio. A zero or undefined
// total yields an undefined result (or fails under strict modes).
func (v Value) Ratio(total Value) (Value, error) {
	cfg := config.Active()

	var amount *decimal.Decimal
	switch {
	case v.amount == nil || total.amount == nil:
		if cfg.StrictNulls {
			return Value{}, errors.NewCalculationErrorf("", "ratio received an undefined operand")
		}
	case total.amount.IsZero():
		if cfg.StrictArithmetic {
			return Value{}, errors.NewCalculationErrorf("", "ratio denominator is zero")
		}
	default:
		q := v.pol.Quantize(v.amount.Div(*total.amount))
		amount = &q
	}

	meta := map[string]string{"conversion": "ratio"}
	rec := provenance.NewNode("ratio", []*provenance.Record{v.prov, total.prov}, v.pol, meta)
	return derived(amount, nil, v.pol, false, rec), nil
}

// ConvertOption customizes a unit conversion.
type ConvertOption func(*convertOptions)

type convertOptions struct {
	at  time.Time
	ctx map[string]string
}

// At pins the conversion to a point in time (exchange rates, historical
// factors). Recorded in the provenance meta.
func At(t time.Time) ConvertOption {
	return func(o *convertOptions) { o.at = t }
}

// WithContext attaches caller context entries to the conversion's
// provenance meta, prefixed "ctx_".
func WithContext(ctx map[string]string) ConvertOption {
	return func(o *convertOptions) { o.ctx = ctx }
}

// To converts the value to the target unit through the supplied converter.
// The conversion provenance node records from, to, the optional timestamp,
// and any caller context entries.
func (v Value) To(conv unit.Converter, target *unit.Unit, opts ...ConvertOption) (Value, error) {
	var o convertOptions
	for _, opt := range opts {
		opt(&o)
	}

	meta := map[string]string{
		"operation_type": "conversion",
		"from":           v.unit.String(),
		"to":             target.String(),
	}
	if !o.at.IsZero() {
		meta["at"] = o.at.UTC().Format(time.RFC3339)
	}
	for k, val := range o.ctx {
		meta["ctx_"+k] = val
	}
	if target != nil {
		meta["unit"] = target.String()
	}

	var amount *decimal.Decimal
	if v.amount == nil {
		if config.Active().StrictNulls {
			return Value{}, errors.NewCalculationErrorf("", "conversion received an undefined operand")
		}
	} else {
		converted, err := conv.Convert(*v.amount, v.unit, target, o.at)
		if err != nil {
			return Value{}, errors.NewCalculationError("", err)
		}
		q := v.pol.Quantize(converted)
		amount = &q
	}

	rec := provenance.NewNode("convert", []*provenance.Record{v.prov}, v.pol, meta)
	return derived(amount, target, v.pol, v.isPercentage, rec), nil
}
