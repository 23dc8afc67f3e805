// Package rank implements the size classification used by the blob
// allocator's free lists: a monotonic function from a byte count to a small
// integer "rank". The bit mask over ranks with its find-first-set query
// lives in package bitmask.
package rank

import "math/bits"

// Max is an exclusive upper bound on the rank Of returns for any n up to
// ~200e9 bytes, the largest buffer size this allocator supports. A bit mask
// sized Max bits is always enough to index every such rank.
const Max = 640

// Of returns the rank of n, a 4-bits-of-magnitude + 4-bits-of-mantissa
// bucket index: the bits above the bottom 4 hold n's bit length, the bottom
// 4 bits are the next 4 most significant bits of n below its highest set bit. Of is
// monotonic non-decreasing: Of(n) <= Of(n+1) for all n >= 1.
//
// n must be >= 1; Of(0) is not a meaningful bucket and is not called by the
// allocator.
func Of(n uint64) int {
	lg := bits.Len64(n)
	return (lg << 4) | int((n<<5>>uint(lg))&15)
}
