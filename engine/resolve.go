package engine

import (
	"github.com/teranos/tally/errors"
	"github.com/teranos/tally/logger"
	"github.com/teranos/tally/policy"
	"github.com/teranos/tally/value"
)

// resolution is the per-call evaluation state. It lives for exactly one
// CalculateMany invocation and is never shared across calls or goroutines.
type resolution struct {
	engine   *Engine
	supplied map[string]value.Value
	policy   *policy.Policy
	memo     map[string]value.Value
}

// resolve computes name, consulting the memo first so every shared
// dependency computes exactly once per call and all dependents observe the
// identical value and provenance id.
func (c *resolution) resolve(name string) (value.Value, error) {
	if v, ok := c.memo[name]; ok {
		return v, nil
	}

	// Explicit input wins over derivation.
	if v, ok := c.supplied[name]; ok {
		c.memo[name] = v
		return v, nil
	}

	fn, err := c.engine.reg.Get(name)
	if err != nil {
		// Closure analysis makes this unreachable for evaluable targets.
		return value.Value{}, err
	}
	depNames, err := c.engine.reg.Dependencies(name)
	if err != nil {
		return value.Value{}, err
	}

	inputs := make([]value.Value, len(depNames))
	for i, dep := range depNames {
		v, err := c.resolve(dep)
		if err != nil {
			return value.Value{}, err
		}
		inputs[i] = v
	}

	out, err := invoke(name, fn, inputs)
	if err != nil {
		return value.Value{}, err
	}

	out = out.AsCalculation(name, inputs, depNames, c.policy)
	c.memo[name] = out

	logger.Debugw("calculation evaluated", "name", name, "value", out.String())
	return out, nil
}

// invoke runs a user calculation function, converting its error or panic
// into a CalculationError naming the calculation.
func invoke(name string, fn CalcFunc, inputs []value.Value) (out value.Value, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.NewCalculationErrorf(name, "panic: %v", r)
		}
	}()

	out, err = fn(inputs)
	if err != nil {
		return value.Value{}, errors.NewCalculationError(name, err)
	}
	return out, nil
}
