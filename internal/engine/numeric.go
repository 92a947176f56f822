package engine

import "golang.org/x/exp/constraints"

// clamp restricts v to [lo, hi]. Used wherever a value computed as a
// sum or product has to be range-checked before it is narrowed into a
// packed bitfield (the transposition table's depth byte) or bounded to
// keep a gravity-style update from overflowing its own scale (history's
// bonus/malus).
func clamp[T constraints.Integer](v, lo, hi T) T {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
