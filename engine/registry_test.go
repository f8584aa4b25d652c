package engine_test

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/tally/engine"
	"github.com/teranos/tally/errors"
	"github.com/teranos/tally/internal/testutil"
	"github.com/teranos/tally/value"
)

func identity(inputs []value.Value) (value.Value, error) {
	return inputs[0], nil
}

func TestRegisterValidation(t *testing.T) {
	reg := engine.NewRegistry()

	err := reg.Register("", nil, testutil.SumFunc())
	assert.True(t, errors.Is(err, errors.ErrInvalidName))

	err = reg.Register("   ", nil, testutil.SumFunc())
	assert.True(t, errors.Is(err, errors.ErrInvalidName), "whitespace-only names are invalid")

	err = reg.Register("loop", []string{"loop"}, identity)
	assert.True(t, errors.Is(err, errors.ErrSelfDependency))

	require.NoError(t, reg.Register("taken", nil, testutil.SumFunc()))
	err = reg.Register("taken", nil, testutil.SumFunc())
	assert.True(t, errors.Is(err, errors.ErrDuplicateName))
}

func TestDependenciesDirectOnly(t *testing.T) {
	reg := engine.NewRegistry()
	testutil.MustRegister(t, reg, "a", []string{"b", "c", "b"}, testutil.SumFunc())

	deps, err := reg.Dependencies("a")
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "c"}, deps, "declaration order kept, duplicates dropped")

	_, err = reg.Dependencies("missing")
	assert.True(t, errors.Is(err, errors.ErrNotFound))

	_, err = reg.Get("missing")
	assert.True(t, errors.Is(err, errors.ErrNotFound))
}

func TestUnregisterPrunesDanglingReferences(t *testing.T) {
	reg := engine.NewRegistry()
	testutil.MustRegister(t, reg, "base", nil, testutil.SumFunc())
	testutil.MustRegister(t, reg, "derived", []string{"base", "other"}, testutil.SumFunc())

	reg.Unregister("base")

	assert.False(t, reg.Contains("base"))
	deps, err := reg.Dependencies("derived")
	require.NoError(t, err)
	assert.Equal(t, []string{"other"}, deps, "unregistration prunes the name from every dependency set")

	// Absent name is a no-op.
	reg.Unregister("never-existed")
}

func TestReregistrationIdempotence(t *testing.T) {
	reg := engine.NewRegistry()
	eng := engine.New(reg)

	testutil.MustRegister(t, reg, "input_doubler", []string{"input_a"}, testutil.ScaleFunc(2))

	before, err := eng.GetDependencies("input_doubler")
	require.NoError(t, err)

	reg.Unregister("input_doubler")
	testutil.MustRegister(t, reg, "input_doubler", []string{"input_a"}, testutil.ScaleFunc(2))

	after, err := eng.GetDependencies("input_doubler")
	require.NoError(t, err)
	assert.Equal(t, before, after, "re-registration restores the original closure")
}

func TestDetectCycles(t *testing.T) {
	reg := engine.NewRegistry()
	testutil.MustRegister(t, reg, "calc_a", []string{"calc_b"}, identity)
	testutil.MustRegister(t, reg, "calc_b", []string{"calc_c"}, identity)
	testutil.MustRegister(t, reg, "calc_c", []string{"calc_a"}, identity)
	testutil.MustRegister(t, reg, "standalone", []string{"leaf"}, identity)

	cycles := reg.DetectCycles()
	require.Len(t, cycles, 1, "one cycle, reported once despite three entry points")

	members := make(map[string]bool)
	for _, name := range cycles[0] {
		members[name] = true
	}
	assert.True(t, members["calc_a"] && members["calc_b"] && members["calc_c"])
}

func TestDetectCyclesAcyclic(t *testing.T) {
	reg := engine.NewRegistry()
	testutil.MustRegister(t, reg, "a", []string{"b"}, identity)
	testutil.MustRegister(t, reg, "b", []string{"leaf"}, identity)

	assert.Empty(t, reg.DetectCycles())
}

func TestDetectCyclesUnregisteredDepsAreLeaves(t *testing.T) {
	reg := engine.NewRegistry()
	// "ghost" is not registered; an edge into it cannot close a cycle.
	testutil.MustRegister(t, reg, "a", []string{"ghost"}, identity)

	assert.Empty(t, reg.DetectCycles())
}

func TestConcurrentRegistrationAndLookup(t *testing.T) {
	reg := engine.NewRegistry()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			name := fmt.Sprintf("calc_%d", i)
			if err := reg.Register(name, []string{"shared_input"}, testutil.SumFunc()); err != nil {
				t.Error(err)
			}
		}(i)
	}
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				reg.Names()
				reg.Contains("calc_0")
				_, _ = reg.Dependencies("calc_0")
			}
		}()
	}
	wg.Wait()

	assert.Len(t, reg.Names(), 10)
}
