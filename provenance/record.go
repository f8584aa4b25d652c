package provenance

import (
	"github.com/shopspring/decimal"

	"github.com/teranos/tally/config"
	"github.com/teranos/tally/policy"
)

// Record is an immutable, content-hashed description of how a value was
// produced. Records reference parents by id string only, never by pointer,
// so a value's lifetime is independent of its ancestors'.
//
// Two records are equal iff their ids are equal.
type Record struct {
	id     string
	op     string
	inputs []string
	meta   map[string]string
}

// ID returns the hex content hash of the record.
func (r *Record) ID() string { return r.id }

// Op returns the operation kind, e.g. "literal", "+", "calc:gross_profit".
func (r *Record) Op() string { return r.op }

// Inputs returns the parent record ids in semantic (insertion) order.
func (r *Record) Inputs() []string {
	out := make([]string, len(r.inputs))
	copy(out, r.inputs)
	return out
}

// Meta returns a copy of the record's metadata.
func (r *Record) Meta() map[string]string {
	out := make(map[string]string, len(r.meta))
	for k, v := range r.meta {
		out[k] = v
	}
	return out
}

// MetaValue looks up a single metadata key.
func (r *Record) MetaValue(key string) (string, bool) {
	v, ok := r.meta[key]
	return v, ok
}

// Equal reports content equality, i.e. id equality.
func (r *Record) Equal(other *Record) bool {
	if r == nil || other == nil {
		return r == other
	}
	return r.id == other.id
}

// NewLiteral stamps a record for a literal amount. Returns nil when
// provenance or literal tracking is disabled.
//
// The id hashes only the canonical amount and the policy fingerprint;
// metadata (unit, span context) annotates the record without entering the
// literal hash.
func NewLiteral(amount *decimal.Decimal, pol *policy.Policy, meta map[string]string) (rec *Record) {
	cfg := config.Active()
	if !cfg.Enabled || !cfg.TrackLiterals {
		return nil
	}
	// Provenance generation must never abort a calculation.
	defer func() {
		if recover() != nil {
			rec = nil
		}
	}()

	return &Record{
		id:   HashLiteral(amount, pol),
		op:   "literal",
		meta: mergeMeta(meta, currentSpanMeta()),
	}
}

// NewNode stamps a record for an operation over parent records. Returns nil
// when provenance or operation tracking is disabled. Parents with no record
// of their own (tracking was off when they were built) contribute no input.
func NewNode(op string, parents []*Record, pol *policy.Policy, meta map[string]string) (rec *Record) {
	cfg := config.Active()
	if !cfg.Enabled || !cfg.TrackOperations {
		return nil
	}
	defer func() {
		if recover() != nil {
			rec = nil
		}
	}()

	inputs := make([]string, 0, len(parents))
	for _, p := range parents {
		if p != nil {
			inputs = append(inputs, p.id)
		}
	}

	merged := mergeMeta(meta, currentSpanMeta())
	return &Record{
		id:     HashNode(op, inputs, pol, merged),
		op:     op,
		inputs: inputs,
		meta:   merged,
	}
}

// mergeMeta combines caller metadata with the span snapshot. Span keys win
// ties; both inputs stay untouched.
func mergeMeta(base, span map[string]string) map[string]string {
	if len(base) == 0 && len(span) == 0 {
		return nil
	}
	out := make(map[string]string, len(base)+len(span))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range span {
		out[k] = v
	}
	return out
}
