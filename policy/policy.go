// Package policy defines the rounding/precision policy attached to
// calculation values.
//
// The display and locale subsystem owns presentation; the engine only needs
// two things from a policy: a deterministic fingerprint (so content hashes
// are policy-sensitive) and a quantize operation (so arithmetic results land
// on the policy's precision).
package policy

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// RoundingMode selects how Quantize resolves discarded digits.
type RoundingMode string

const (
	// RoundHalfUp rounds half away from zero (the commercial default).
	RoundHalfUp RoundingMode = "half_up"
	// RoundHalfEven rounds half to the nearest even digit (banker's rounding).
	RoundHalfEven RoundingMode = "half_even"
	// RoundDown truncates toward zero.
	RoundDown RoundingMode = "down"
	// RoundUp rounds away from zero.
	RoundUp RoundingMode = "up"
	// RoundCeiling rounds toward positive infinity.
	RoundCeiling RoundingMode = "ceiling"
	// RoundFloor rounds toward negative infinity.
	RoundFloor RoundingMode = "floor"
)

// Policy is a rounding/precision configuration. The zero value means
// two decimal places, half-up.
type Policy struct {
	DecimalPlaces int
	Rounding      RoundingMode
}

// Default returns the engine's default policy: two places, half-up.
func Default() *Policy {
	return &Policy{DecimalPlaces: 2, Rounding: RoundHalfUp}
}

// New builds a policy with the given precision and mode.
func New(places int, mode RoundingMode) *Policy {
	return &Policy{DecimalPlaces: places, Rounding: mode}
}

func (p *Policy) mode() RoundingMode {
	if p.Rounding == "" {
		return RoundHalfUp
	}
	return p.Rounding
}

// Fingerprint returns a deterministic digest of the rounding-relevant
// fields. Structurally equal policies always fingerprint identically; a nil
// policy fingerprints as "None".
func (p *Policy) Fingerprint() string {
	if p == nil {
		return "None"
	}
	return fmt.Sprintf("places=%d;rounding=%s", p.DecimalPlaces, p.mode())
}

// Quantize rounds d to the policy's precision using its rounding mode.
// A nil policy returns d unchanged.
func (p *Policy) Quantize(d decimal.Decimal) decimal.Decimal {
	if p == nil {
		return d
	}
	places := int32(p.DecimalPlaces)
	switch p.mode() {
	case RoundHalfEven:
		return d.RoundBank(places)
	case RoundDown:
		return d.RoundDown(places)
	case RoundUp:
		return d.RoundUp(places)
	case RoundCeiling:
		return d.RoundCeil(places)
	case RoundFloor:
		return d.RoundFloor(places)
	default:
		return d.Round(places)
	}
}

// Equal reports structural equality. Two nil policies are equal; nil never
// equals non-nil.
func (p *Policy) Equal(other *Policy) bool {
	if p == nil || other == nil {
		return p == other
	}
	return p.DecimalPlaces == other.DecimalPlaces && p.mode() == other.mode()
}
