// Package testutil provides shared fixtures for engine tests.
package testutil

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/teranos/tally/engine"
	"github.com/teranos/tally/value"
)

// SumFunc returns a calculation function that adds all of its inputs.
func SumFunc() engine.CalcFunc {
	return func(inputs []value.Value) (value.Value, error) {
		out := value.NewFromInt(0)
		for _, in := range inputs {
			var err error
			out, err = out.Add(in)
			if err != nil {
				return value.Value{}, err
			}
		}
		return out, nil
	}
}

// ScaleFunc returns a calculation function that multiplies its single input
// by factor.
func ScaleFunc(factor int64) engine.CalcFunc {
	scale := value.NewFromInt(factor)
	return func(inputs []value.Value) (value.Value, error) {
		return inputs[0].Mul(scale)
	}
}

// MustRegister registers a calculation and fails the test on error.
func MustRegister(t *testing.T, reg *engine.Registry, name string, deps []string, fn engine.CalcFunc) {
	t.Helper()
	require.NoError(t, reg.Register(name, deps, fn))
}

// AmountString renders a value's amount, failing the test when undefined.
func AmountString(t *testing.T, v value.Value) string {
	t.Helper()
	amt, ok := v.Amount()
	require.True(t, ok, "value is undefined")
	return amt.String()
}

// Dec parses a decimal or fails the test.
func Dec(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	require.NoError(t, err)
	return d
}
