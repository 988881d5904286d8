// SPDX-License-Identifier: EPL-2.0

// Package ring implements the modular pointer arithmetic shared by the
// CMX channel and conference ring buffers.
package ring

// Ahead reports whether index a is at or ahead of index b in modular
// order over a buffer of the given size, i.e. whether walking forward
// from b reaches a in fewer than half the buffer's steps.
//
// size must be a power of two; mask must be size-1.
func Ahead(a, b, mask uint32) bool {
	half := (mask + 1) / 2
	return ((a - b) & mask) < half
}

// Advance returns (idx + n) mod (mask+1), using the power-of-two mask.
func Advance(idx, n, mask uint32) uint32 {
	return (idx + n) & mask
}

// Distance returns the modular forward distance from a to b: the number
// of Advance-by-1 steps needed to walk from a to b.
func Distance(a, b, mask uint32) uint32 {
	return (b - a) & mask
}
