package provenance

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/teranos/tally/policy"
)

// noneToken is the stable stand-in for an undefined amount or absent policy.
const noneToken = "None"

// CanonicalDecimal renders d in a representation-independent form: trailing
// fractional zeros are stripped so Decimal("100") and Decimal("100.00")
// canonicalize identically.
func CanonicalDecimal(d decimal.Decimal) string {
	s := d.String()
	if !strings.Contains(s, ".") {
		return s
	}
	s = strings.TrimRight(s, "0")
	return strings.TrimSuffix(s, ".")
}

// canonicalMeta serializes meta deterministically: keys sorted, k=v pairs
// joined with ';'. Empty or nil meta serializes to the empty string.
func canonicalMeta(meta map[string]string) string {
	if len(meta) == 0 {
		return ""
	}
	keys := make([]string, 0, len(meta))
	for k := range meta {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for i, k := range keys {
		if i > 0 {
			b.WriteByte(';')
		}
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(meta[k])
	}
	return b.String()
}

func digest(parts ...string) string {
	h := sha256.New()
	for i, p := range parts {
		if i > 0 {
			h.Write([]byte{':'})
		}
		h.Write([]byte(p))
	}
	return hex.EncodeToString(h.Sum(nil))
}

// HashLiteral computes the content hash of a literal amount under a policy.
// Equal decimal values hash identically regardless of textual
// representation; a nil amount hashes to a distinct, stable id.
func HashLiteral(amount *decimal.Decimal, pol *policy.Policy) string {
	repr := noneToken
	if amount != nil {
		repr = CanonicalDecimal(*amount)
	}
	return Intern(digest("literal", repr, pol.Fingerprint()))
}

// HashNode computes the content hash of an operation node.
//
// Parent ids are sorted before hashing, so operand order never changes the
// id; callers record semantically meaningful order in the record's inputs.
// Consults the bounded hash cache before computing.
func HashNode(op string, parentIDs []string, pol *policy.Policy, meta map[string]string) string {
	sorted := make([]string, len(parentIDs))
	copy(sorted, parentIDs)
	sort.Strings(sorted)

	joined := strings.Join(sorted, ",")
	metaStr := canonicalMeta(meta)
	fp := pol.Fingerprint()

	key := op + "\x1f" + joined + "\x1f" + fp + "\x1f" + metaStr
	if id, ok := cacheGet(key); ok {
		return id
	}

	id := Intern(digest("node", op, joined, metaStr, fp))
	cacheAdd(key, id)
	return id
}
