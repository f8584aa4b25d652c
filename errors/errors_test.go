package errors

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrapPreservesSentinel(t *testing.T) {
	err := Wrapf(ErrDuplicateName, "calculation %q", "gross_profit")

	assert.True(t, Is(err, ErrDuplicateName))
	assert.Contains(t, err.Error(), "gross_profit")
}

func TestIsNotFoundError(t *testing.T) {
	assert.False(t, IsNotFoundError(nil))
	assert.False(t, IsNotFoundError(New("other")))
	assert.True(t, IsNotFoundError(NewNotFoundError("calculation %q", "margin")))
}

func TestCircularDependencyError(t *testing.T) {
	err := NewCircularDependency([]string{"calc_a", "calc_b", "calc_c"})

	var cdErr *CircularDependencyError
	require.True(t, As(err, &cdErr))
	assert.Equal(t, []string{"calc_a", "calc_b", "calc_c"}, cdErr.Cycle)
	assert.Contains(t, err.Error(), "calc_a -> calc_b -> calc_c")

	set := cdErr.CycleSet()
	assert.Len(t, set, 3)
	assert.Contains(t, set, "calc_b")
}

func TestMissingInputError(t *testing.T) {
	err := NewMissingInput(map[string][]string{
		"gross_profit": {"cost", "sales"},
		"margin":       {"cost"},
	})

	var miErr *MissingInputError
	require.True(t, As(err, &miErr))
	assert.Equal(t, []string{"cost", "sales"}, miErr.Missing["gross_profit"])

	// Targets render in sorted order for stable messages.
	assert.Equal(t, "missing inputs: gross_profit needs [cost, sales]; margin needs [cost]", miErr.Error())
}

func TestIncompatibleUnitsError(t *testing.T) {
	err := NewIncompatibleUnits("+", "Currency[USD]", "Currency[EUR]")

	var iuErr *IncompatibleUnitsError
	require.True(t, As(err, &iuErr))
	assert.Equal(t, "+", iuErr.Op)
	assert.Contains(t, err.Error(), "Currency[USD]")
	assert.Contains(t, err.Error(), "Currency[EUR]")
}

func TestCalculationErrorWrapsCause(t *testing.T) {
	cause := New("boom")
	err := NewCalculationError("net_margin", cause)

	var cErr *CalculationError
	require.True(t, As(err, &cErr))
	assert.Equal(t, "net_margin", cErr.Calculation)
	assert.True(t, Is(err, cause), "cause should remain reachable through Unwrap")
}

func TestCalculationErrorWithoutCause(t *testing.T) {
	err := NewCalculationErrorf("", "division by zero")

	var cErr *CalculationError
	require.True(t, As(err, &cErr))
	assert.Contains(t, err.Error(), `"arithmetic"`)
	assert.Contains(t, err.Error(), "division by zero")
}
