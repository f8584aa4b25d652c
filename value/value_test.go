package value_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/tally/policy"
	"github.com/teranos/tally/unit"
	"github.com/teranos/tally/value"
)

var usd = unit.New("Currency", "USD")

func mustDec(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	require.NoError(t, err)
	return d
}

func TestLiteralProvenance(t *testing.T) {
	v := value.New(mustDec(t, "100"), value.WithUnit(usd), value.WithPolicy(policy.Default()))

	rec := v.Provenance()
	require.NotNil(t, rec)
	assert.Equal(t, "literal", rec.Op())

	u, ok := rec.MetaValue("unit")
	require.True(t, ok)
	assert.Equal(t, "Currency[USD]", u)
}

func TestLiteralWithoutUnitOmitsMetaKey(t *testing.T) {
	v := value.New(mustDec(t, "100"))

	rec := v.Provenance()
	require.NotNil(t, rec)
	_, ok := rec.MetaValue("unit")
	assert.False(t, ok, "unit key absent when no unit is tagged")
}

func TestUndefined(t *testing.T) {
	v := value.Undefined()

	assert.False(t, v.IsDefined())
	_, ok := v.Amount()
	assert.False(t, ok)
	assert.Equal(t, "undefined", v.String())
	require.NotNil(t, v.Provenance(), "undefined values still carry provenance")
}

func TestNewFromString(t *testing.T) {
	v, err := value.NewFromString("12.5")
	require.NoError(t, err)
	amt, ok := v.Amount()
	require.True(t, ok)
	assert.Equal(t, "12.5", amt.String())

	_, err = value.NewFromString("not-a-number")
	assert.Error(t, err)
}

func TestString(t *testing.T) {
	v := value.New(mustDec(t, "1234.567"), value.WithUnit(usd), value.WithPolicy(policy.Default()))
	assert.Equal(t, "1234.57 Currency[USD]", v.String())

	plain := value.New(mustDec(t, "3"))
	assert.Equal(t, "3", plain.String())
}

func TestEqual(t *testing.T) {
	a := value.New(mustDec(t, "100"), value.WithUnit(usd))
	b := value.New(mustDec(t, "100.00"), value.WithUnit(unit.New("Currency", "USD")))
	c := value.New(mustDec(t, "100"))

	assert.True(t, a.Equal(b), "equal amounts and units compare equal regardless of spelling")
	assert.False(t, a.Equal(c), "unit mismatch")
	assert.False(t, a.Equal(value.Undefined()))
	assert.True(t, value.Undefined().Equal(value.Undefined()))
}

func TestSameContentSameProvenanceID(t *testing.T) {
	p := policy.Default()
	a := value.New(mustDec(t, "100"), value.WithPolicy(p))
	b := value.New(mustDec(t, "100.00"), value.WithPolicy(p))

	require.NotNil(t, a.Provenance())
	require.NotNil(t, b.Provenance())
	assert.Equal(t, a.Provenance().ID(), b.Provenance().ID())
}
