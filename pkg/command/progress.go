package command

import "math/bits"

// Progress maps part/whole onto the [shift, limit] slice of 0..100.
//
// A zero whole is treated as 1. When part reaches or exceeds whole the
// result is limit. limit is capped at 100 and shift at limit.
func Progress(part, whole uint64, shift, limit uint8) uint8 {
	if limit > 100 {
		limit = 100
	}
	if shift > limit {
		shift = limit
	}
	if whole == 0 {
		whole = 1
	}
	if part >= whole {
		return limit
	}

	// (limit-shift)*part cannot overflow 128 bits and hi < whole, so Div64
	// does not panic. The quotient is strictly below limit-shift.
	hi, lo := bits.Mul64(uint64(limit-shift), part)
	q, _ := bits.Div64(hi, lo, whole)
	return shift + uint8(q)
}

// Slice returns the progress range owned by the i-th of n sub-tasks, for
// forwarding sub-task progress as part of an overall 0..100 report.
func Slice(i, n int) (shift, limit uint8) {
	if n <= 0 {
		return 0, 100
	}
	if i < 0 {
		i = 0
	}
	if i >= n {
		return 100, 100
	}
	return uint8(100 * i / n), uint8(100 * (i + 1) / n)
}
