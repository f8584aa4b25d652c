package unit_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/tally/unit"
)

func TestString(t *testing.T) {
	assert.Equal(t, "Currency[USD]", unit.New("Currency", "USD").String())

	var u *unit.Unit
	assert.Equal(t, "", u.String())
}

func TestEqual(t *testing.T) {
	usd := unit.New("Currency", "USD")

	assert.True(t, usd.Equal(unit.New("Currency", "USD")))
	assert.False(t, usd.Equal(unit.New("Currency", "EUR")))
	assert.False(t, usd.Equal(unit.New("Mass", "USD")))
	assert.False(t, usd.Equal(nil))

	var a, b *unit.Unit
	assert.True(t, a.Equal(b))
}

func TestConverterFunc(t *testing.T) {
	double := unit.ConverterFunc(func(amount decimal.Decimal, from, to *unit.Unit, at time.Time) (decimal.Decimal, error) {
		return amount.Mul(decimal.NewFromInt(2)), nil
	})

	got, err := double.Convert(decimal.NewFromInt(21), unit.New("Currency", "USD"), unit.New("Currency", "EUR"), time.Time{})
	require.NoError(t, err)
	assert.Equal(t, "42", got.String())
}
