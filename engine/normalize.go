package engine

import (
	"github.com/shopspring/decimal"

	"github.com/teranos/tally/errors"
	"github.com/teranos/tally/value"
)

// Input normalization boundary. Callers hand the engine heterogeneous leaf
// inputs; everything converts to a calculation value exactly once, here.
// Unsupported kinds fail immediately rather than deep inside a calculation.

func normalizeInputs(ctx Inputs) (map[string]value.Value, error) {
	supplied := make(map[string]value.Value, len(ctx))
	for name, raw := range ctx {
		v, err := normalizeInput(raw)
		if err != nil {
			return nil, errors.Wrapf(err, "input %q", name)
		}
		supplied[name] = v
	}
	return supplied, nil
}

func normalizeInput(raw any) (value.Value, error) {
	switch x := raw.(type) {
	case value.Value:
		return x, nil
	case *value.Value:
		if x == nil {
			return value.Undefined(), nil
		}
		return *x, nil
	case decimal.Decimal:
		return value.New(x), nil
	case *decimal.Decimal:
		if x == nil {
			return value.Undefined(), nil
		}
		return value.New(*x), nil
	case int:
		return value.NewFromInt(int64(x)), nil
	case int32:
		return value.NewFromInt(int64(x)), nil
	case int64:
		return value.NewFromInt(x), nil
	case float32:
		return value.NewFromFloat(float64(x)), nil
	case float64:
		return value.NewFromFloat(x), nil
	case string:
		v, err := value.NewFromString(x)
		if err != nil {
			return value.Value{}, errors.Wrapf(err, "cannot parse %q as a decimal", x)
		}
		return v, nil
	case nil:
		return value.Undefined(), nil
	default:
		return value.Value{}, errors.Newf("unsupported input kind %T", raw)
	}
}
