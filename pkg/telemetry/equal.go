package telemetry

import "math"

// DefaultULPs is the tolerance used by EpsilonEqual, in units in the last place.
const DefaultULPs = 4

// EpsilonEqual reports whether a and b are within DefaultULPs of each
// other. Zeros of either sign are equal, and NaN equals NaN so an
// unavailable reading repeated is not a change.
func EpsilonEqual(a, b float64) bool {
	return ULPEqual(a, b, DefaultULPs)
}

// ULPEqual reports whether a and b are at most maxULPs representable
// doubles apart.
func ULPEqual(a, b float64, maxULPs uint64) bool {
	if math.IsNaN(a) || math.IsNaN(b) {
		return math.IsNaN(a) && math.IsNaN(b)
	}
	ai, bi := ordered(a), ordered(b)
	var diff uint64
	if ai >= bi {
		diff = uint64(ai) - uint64(bi)
	} else {
		diff = uint64(bi) - uint64(ai)
	}
	return diff <= maxULPs
}

// ordered maps float bits onto a monotonic signed integer scale.
func ordered(f float64) int64 {
	i := int64(math.Float64bits(f))
	if i < 0 {
		i = math.MinInt64 - i
	}
	return i
}

// OptionalEqual compares optional floats: both unset, or both set and
// epsilon-equal.
func OptionalEqual(a, b *float64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return EpsilonEqual(*a, *b)
}

// Float returns a pointer to v, for optional fields.
func Float(v float64) *float64 {
	return &v
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
