package errors

import (
	"fmt"
	"sort"
	"strings"
)

// CircularDependencyError reports a dependency cycle discovered during
// resolution. Cycle holds the offending names as a closed path
// (first == last when reconstructed from a DFS back-edge).
type CircularDependencyError struct {
	Cycle []string
}

func (e *CircularDependencyError) Error() string {
	return fmt.Sprintf("circular dependency: %s", strings.Join(e.Cycle, " -> "))
}

// CycleSet returns the distinct names participating in the cycle.
func (e *CircularDependencyError) CycleSet() map[string]struct{} {
	set := make(map[string]struct{}, len(e.Cycle))
	for _, name := range e.Cycle {
		set[name] = struct{}{}
	}
	return set
}

// NewCircularDependency wraps a cycle path in a CircularDependencyError
// carrying a stack trace.
func NewCircularDependency(cycle []string) error {
	return WithStack(&CircularDependencyError{Cycle: cycle})
}

// MissingInputError reports, per affected target, the leaf inputs that were
// neither supplied in the context nor computable from the registry.
type MissingInputError struct {
	// Missing maps target name -> sorted missing input names.
	Missing map[string][]string
}

func (e *MissingInputError) Error() string {
	targets := make([]string, 0, len(e.Missing))
	for t := range e.Missing {
		targets = append(targets, t)
	}
	sort.Strings(targets)

	parts := make([]string, 0, len(targets))
	for _, t := range targets {
		parts = append(parts, fmt.Sprintf("%s needs [%s]", t, strings.Join(e.Missing[t], ", ")))
	}
	return "missing inputs: " + strings.Join(parts, "; ")
}

// NewMissingInput wraps a target->missing-inputs map in a MissingInputError.
func NewMissingInput(missing map[string][]string) error {
	return WithStack(&MissingInputError{Missing: missing})
}

// IncompatibleUnitsError reports an additive operation over values whose
// non-nil units differ.
type IncompatibleUnitsError struct {
	Op    string
	Left  string
	Right string
}

func (e *IncompatibleUnitsError) Error() string {
	return fmt.Sprintf("incompatible units for %q: %s vs %s", e.Op, e.Left, e.Right)
}

// NewIncompatibleUnits builds an IncompatibleUnitsError for operator op.
func NewIncompatibleUnits(op, left, right string) error {
	return WithStack(&IncompatibleUnitsError{Op: op, Left: left, Right: right})
}

// CalculationError wraps a failure inside a user calculation function, or a
// domain-undefined arithmetic result under strict arithmetic mode.
// Calculation preserves the registered name ("" for anonymous arithmetic).
type CalculationError struct {
	Calculation string
	Reason      string
	Cause       error
}

func (e *CalculationError) Error() string {
	name := e.Calculation
	if name == "" {
		name = "arithmetic"
	}
	if e.Cause != nil {
		return fmt.Sprintf("calculation %q failed: %s", name, e.Cause)
	}
	return fmt.Sprintf("calculation %q failed: %s", name, e.Reason)
}

func (e *CalculationError) Unwrap() error { return e.Cause }

// NewCalculationError wraps err as a failure of the named calculation.
func NewCalculationError(name string, err error) error {
	return WithStack(&CalculationError{Calculation: name, Cause: err})
}

// NewCalculationErrorf reports a domain-undefined condition (division by
// zero, nil operand under strict mode) without an underlying cause.
func NewCalculationErrorf(name, format string, args ...interface{}) error {
	return WithStack(&CalculationError{Calculation: name, Reason: fmt.Sprintf(format, args...)})
}
