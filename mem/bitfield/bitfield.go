// Package bitfield provides helpers that extract and insert bit ranges of
// addresses.
//
// All ranges are inclusive and given as (first, last) with first being the
// most significant bit, in the same order hardware documents write them.
package bitfield

import "math/bits"

// Mask returns a mask with the lowest n bits set.
func Mask(n int) uint64 {
	if n <= 0 {
		return 0
	}

	if n >= 64 {
		return ^uint64(0)
	}

	return (uint64(1) << uint(n)) - 1
}

// Bits returns the bits [first, last] of val, shifted down to bit 0.
func Bits(val uint64, first, last int) uint64 {
	mustBeValidRange(first, last)

	nbits := first - last + 1

	return (val >> uint(last)) & Mask(nbits)
}

// Bit returns a single bit of val.
func Bit(val uint64, bit int) uint64 {
	return Bits(val, bit, bit)
}

// InsertBits returns val with the bits [first, last] replaced by the low
// bits of field.
func InsertBits(val uint64, first, last int, field uint64) uint64 {
	mustBeValidRange(first, last)

	bmask := Mask(first-last+1) << uint(last)

	return (val &^ bmask) | ((field << uint(last)) & bmask)
}

// FloorLog2 returns floor(log2(n)). It panics if n is 0.
func FloorLog2(n uint64) int {
	if n == 0 {
		panic("floor log2 of 0 is undefined")
	}

	return bits.Len64(n) - 1
}

// IsPowerOf2 tells if n is a power of 2. Zero is not.
func IsPowerOf2(n uint64) bool {
	return n != 0 && n&(n-1) == 0
}

func mustBeValidRange(first, last int) {
	if last < 0 || first < last || first > 63 {
		panic("invalid bit range")
	}
}
