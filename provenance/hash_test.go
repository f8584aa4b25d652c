package provenance_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/tally/config"
	"github.com/teranos/tally/policy"
	"github.com/teranos/tally/provenance"
)

func dec(t *testing.T, s string) *decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	require.NoError(t, err)
	return &d
}

func TestCanonicalDecimal(t *testing.T) {
	tests := []struct{ in, want string }{
		{"100", "100"},
		{"100.00", "100"},
		{"100.50", "100.5"},
		{"0.500", "0.5"},
		{"-3.1400", "-3.14"},
		{"0", "0"},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, provenance.CanonicalDecimal(*dec(t, tc.in)), "input %s", tc.in)
	}
}

func TestHashLiteralRepresentationIndependent(t *testing.T) {
	p := policy.Default()

	// Equal decimal values hash identically even when spelled differently.
	assert.Equal(t,
		provenance.HashLiteral(dec(t, "100"), p),
		provenance.HashLiteral(dec(t, "100.00"), p))

	assert.NotEqual(t,
		provenance.HashLiteral(dec(t, "100"), p),
		provenance.HashLiteral(dec(t, "100.5"), p))
}

func TestHashLiteralNilAmount(t *testing.T) {
	p := policy.Default()

	first := provenance.HashLiteral(nil, p)
	second := provenance.HashLiteral(nil, p)
	assert.Equal(t, first, second, "nil amount must hash to a stable id")
	assert.NotEqual(t, first, provenance.HashLiteral(dec(t, "0"), p), "nil is not zero")
}

func TestHashLiteralPolicySensitive(t *testing.T) {
	d := dec(t, "100")

	withPolicy := provenance.HashLiteral(d, policy.New(2, policy.RoundHalfUp))
	withOther := provenance.HashLiteral(d, policy.New(4, policy.RoundHalfUp))
	withNil := provenance.HashLiteral(d, nil)

	assert.NotEqual(t, withPolicy, withOther)
	assert.NotEqual(t, withPolicy, withNil)
}

func TestHashNodeOperandOrderIrrelevant(t *testing.T) {
	p := policy.Default()
	a := provenance.HashLiteral(dec(t, "1"), p)
	b := provenance.HashLiteral(dec(t, "2"), p)

	assert.Equal(t,
		provenance.HashNode("+", []string{a, b}, p, nil),
		provenance.HashNode("+", []string{b, a}, p, nil),
		"operand order must not change the content hash")
}

func TestHashNodeEveryComponentChangesHash(t *testing.T) {
	p := policy.Default()
	a := provenance.HashLiteral(dec(t, "1"), p)
	b := provenance.HashLiteral(dec(t, "2"), p)
	c := provenance.HashLiteral(dec(t, "3"), p)

	ids := []string{
		provenance.HashNode("+", []string{a, b}, p, nil),
		provenance.HashNode("-", []string{a, b}, p, nil),
		provenance.HashNode("+", []string{a, c}, p, nil),
		provenance.HashNode("+", []string{a, b}, p, map[string]string{"unit": "Currency[USD]"}),
		provenance.HashNode("+", []string{a, b}, p, map[string]string{"unit": "Currency[EUR]"}),
		provenance.HashNode("+", []string{a, b}, policy.New(4, policy.RoundHalfUp), nil),
		provenance.HashNode("+", []string{a, b}, nil, nil),
	}

	unique := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		unique[id] = struct{}{}
	}
	assert.Len(t, unique, len(ids), "op, parents, meta, and policy must each perturb the hash")
}

func TestHashNodeMetaKeyOrderIrrelevant(t *testing.T) {
	p := policy.Default()
	// Maps iterate randomly; two logically equal metas must canonicalize
	// identically. Run a few times to shake out ordering luck.
	for i := 0; i < 10; i++ {
		m1 := map[string]string{"unit": "Currency[USD]", "calculation": "margin", "span": "close"}
		m2 := map[string]string{"span": "close", "unit": "Currency[USD]", "calculation": "margin"}
		assert.Equal(t,
			provenance.HashNode("+", nil, p, m1),
			provenance.HashNode("+", nil, p, m2))
	}
}

func TestCacheHitMissCounters(t *testing.T) {
	provenance.ResetCache()
	p := policy.Default()
	a := provenance.HashLiteral(dec(t, "1"), p)
	b := provenance.HashLiteral(dec(t, "2"), p)

	first := provenance.HashNode("+", []string{a, b}, p, nil)
	second := provenance.HashNode("+", []string{a, b}, p, nil)
	assert.Equal(t, first, second)

	stats := provenance.GetCacheStats()
	assert.GreaterOrEqual(t, stats.Misses, uint64(1), "first computation misses")
	assert.GreaterOrEqual(t, stats.Hits, uint64(1), "repeat computation hits")
	assert.Greater(t, stats.Entries, 0)
}

func TestCacheBounded(t *testing.T) {
	provenance.ResetCache()
	cfg := config.Default()
	cfg.MaxHashCacheSize = 8

	config.Override(cfg, func() {
		p := policy.Default()
		for i := 0; i < 100; i++ {
			d := decimal.NewFromInt(int64(i))
			parent := provenance.HashLiteral(&d, p)
			provenance.HashNode("+", []string{parent}, p, nil)
		}
		stats := provenance.GetCacheStats()
		assert.LessOrEqual(t, stats.Entries, 8, "cache must evict past its bound")
	})
	provenance.ResetCache()
}

func TestInternTransparent(t *testing.T) {
	provenance.ResetCache()

	id := "abc123"
	interned := provenance.Intern(id)
	again := provenance.Intern("abc" + "123")

	assert.Equal(t, id, interned)
	assert.Equal(t, interned, again)

	stats := provenance.GetInternStats()
	assert.GreaterOrEqual(t, stats.Hits, uint64(1))
	assert.GreaterOrEqual(t, stats.Misses, uint64(1))
}

func TestInternDisabled(t *testing.T) {
	cfg := config.Default()
	cfg.EnableWeakRefs = false

	config.Override(cfg, func() {
		// Bypassed interning still returns an equal string.
		assert.Equal(t, "xyz", provenance.Intern("xyz"))
	})
}
