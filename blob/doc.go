// Package blob implements a fixed-capacity, single-buffer byte-blob store:
// a best-fit free-list allocator over one contiguous []byte, addressed by
// stable integer indices rather than raw offsets.
//
// # Overview
//
// A Store owns exactly one buffer, sized once at construction and never
// grown. Values are allocated, read, and freed by an opaque Index rather
// than a byte offset, because the allocator may relocate records during
// defragmentation to satisfy an allocation no single existing gap can host.
// A []byte returned by Allocate or Get is only valid until the next call
// that mutates the store (Allocate or Free): Allocate may trigger
// defragmentation, which moves records around in the backing buffer.
//
// # Usage Example
//
//	s, err := blob.New(1 << 20)
//	if err != nil {
//		log.Fatal(err)
//	}
//	idx, buf, err := s.Allocate(64)
//	if err != nil {
//		log.Fatal(err)
//	}
//	copy(buf, "hello")
//	buf = s.Get(idx) // re-fetch after the store has mutated
//	s.Free(idx)
//
// # Design
//
// Free space is tracked by "rank": a size bucket computed from a value's
// bit length, so a best-fit gap can be found in O(1) via a bit mask of
// non-empty rank buckets rather than scanning a sorted tree. Live records
// are threaded into one doubly-linked list ordered by buffer
// offset (the "occupancy list"), bounded by two permanent sentinels; each
// record's trailing gap to its right neighbor is what gets tracked by rank.
// When no single gap is large enough, the store defragments by sliding a
// contiguous run of records left to coalesce their gaps, rather than
// compacting the whole buffer.
//
// # Thread Safety
//
// A Store is not safe for concurrent use; callers needing concurrent access
// must serialize their own calls.
package blob
