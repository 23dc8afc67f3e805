package kv

import "github.com/cespare/xxhash/v2"

// keyHashMask56 truncates a 64-bit hash to the 56 bits stored in a bucket
// entry's header. 56 bits of hash keeps collisions negligible for any
// realistic key population while leaving room for the 40-bit key-size
// field in the same 16-byte header.
const keyHashMask56 = (1 << 56) - 1

func hashKey(key string) uint64 {
	return xxhash.Sum64String(key) & keyHashMask56
}
