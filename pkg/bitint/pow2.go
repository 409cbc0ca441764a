// SPDX-License-Identifier: MIT

/*
Package bitint provides the power-of-2 helpers used to size transform
plans and analysis blocks.

Usage:

	// Round an odd block size up for the radix-2 transform
	size := bitint.NextPowerOfTwo(1000) // Returns 1024

	// Validate a configured block size
	ok := bitint.IsPowerOfTwo(size)

	// Number of butterfly stages for a 1024 point transform
	stages := bitint.Log2(1024) // Returns 10

NextPowerOfTwo subtracts 1 before taking the bit length so that exact
powers of 2 are preserved:

	size = 8:  bits.Len(7) = 3, 1 << 3 = 8
	size = 9:  bits.Len(8) = 4, 1 << 4 = 16
*/
package bitint

import "math/bits"

// NextPowerOfTwo returns the next power of 2 >= size.
//
//	Input  Output
//	4      4
//	5      8
//	0      1
//	-1     1
func NextPowerOfTwo(size int) int {
	if size <= 0 {
		return 1
	}
	return 1 << bits.Len(uint(size-1))
}

// IsPowerOfTwo checks if n is a power of 2. Powers of 2 have exactly one
// bit set, so n&(n-1) clears it and leaves zero.
//
//	Input  Output  Binary
//	8      true    1000 & 0111 = 0000
//	7      false   0111 & 0110 = 0110
//	0      false   Not positive
func IsPowerOfTwo(n int) bool {
	return n > 0 && (n&(n-1)) == 0
}

// Log2 returns the base-2 logarithm of a power of 2, i.e. the index of its
// single set bit. The result is undefined for other inputs.
func Log2(n int) int {
	if n <= 0 {
		return 0
	}
	return bits.TrailingZeros(uint(n))
}

// ReverseBits reverses the lowest width bits of v. It is the index
// permutation applied before an in-place decimation-in-time transform.
func ReverseBits(v, width int) int {
	if width <= 0 {
		return 0
	}
	return int(bits.Reverse(uint(v)) >> (bits.UintSize - width))
}
