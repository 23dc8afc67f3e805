package blob

import (
	"fmt"
	"math/rand"
	"os"

	"github.com/yuri-pechatnov/compact-cache/internal/bitmask"
	"github.com/yuri-pechatnov/compact-cache/internal/bitpack"
	"github.com/yuri-pechatnov/compact-cache/internal/indextable"
	"github.com/yuri-pechatnov/compact-cache/internal/rank"
)

// logAlloc traces allocation, free, and defragmentation activity to
// stderr when the CACHE_LOG_ALLOC environment variable is set, the same
// env-var debug-trace idiom used throughout this module.
var logAlloc = os.Getenv("CACHE_LOG_ALLOC") != ""

func debugLogf(format string, args ...any) {
	if logAlloc {
		fmt.Fprintf(os.Stderr, "[blob] "+format+"\n", args...)
	}
}

// Index is a stable handle to an allocated record. It remains valid across
// defragmentation, unlike the raw byte offset backing it.
type Index = indextable.Index

// NilIndex is never returned by a successful Allocate and never resolves
// via Get; Allocate returns it alongside an error.
const NilIndex = indextable.NilIndex

// occupiedMetaSize is the number of bytes permanently reserved for the two
// sentinels and the rank.Max rank nodes, unavailable for payload.
const occupiedMetaSize = headerSize * (rank.Max + 2)

// Stats reports counters useful for tests and diagnostics.
type Stats struct {
	Allocations      uint64
	Frees            uint64
	Defragmentations uint64
}

// Store is a fixed-capacity blob allocator over one []byte buffer. See the
// package doc comment for the usage contract. The zero Store is not usable;
// construct one with New.
type Store struct {
	data []byte

	rankMask          *bitmask.Mask
	index             *indextable.Table
	rng               *rand.Rand
	firstRecordOffset int64

	elementsCount     uint64
	occupiedSpace     uint64
	defragmentedBytes uint64

	stats Stats
}

// New constructs a Store over a freshly allocated buffer of bufferSize
// bytes. It returns ErrInvalidArgument if bufferSize is too small to hold
// the fixed per-buffer metadata overhead.
func New(bufferSize uint64) (*Store, error) {
	if bufferSize < occupiedMetaSize {
		return nil, ErrInvalidArgument
	}
	s := &Store{
		data:              make([]byte, bufferSize),
		firstRecordOffset: headerSize * (rank.Max + 1),
	}
	s.rng = rand.New(rand.NewSource(int64(bufferSize) ^ 0x5deece66d))
	s.resetLayout()
	return s, nil
}

// Clear discards every record and returns the store to its freshly
// constructed state. DefragmentedBytes and the Stats counters are lifetime
// counters and are not reset by Clear.
func (s *Store) Clear() {
	for i := range s.data {
		s.data[i] = 0
	}
	s.elementsCount = 0
	s.index = indextable.New()
	s.rankMask = bitmask.New(rank.Max)
	s.resetLayout()
}

// resetLayout (re)writes the sentinels and rank nodes and registers the
// whole usable buffer as one free gap hanging off the leftmost sentinel.
func (s *Store) resetLayout() {
	if s.index == nil {
		s.index = indextable.New()
	}
	if s.rankMask == nil {
		s.rankMask = bitmask.New(rank.Max)
	}
	s.occupiedSpace = occupiedMetaSize

	for r := 0; r < rank.Max; r++ {
		off := s.rankNodeOffset(r)
		s.setOwnIndex(off, NilIndex)
		s.setValueSize(off, 0)
		s.setLeft(off, off)
		s.setRight(off, off)
		s.setLeftInRank(off, off)
		s.setRightInRank(off, off)
	}

	leftOff := int64(0)
	rightOff := int64(len(s.data)) - headerSize

	s.setOwnIndex(leftOff, NilIndex)
	s.setValueSize(leftOff, 0)
	s.setLeft(leftOff, 0)
	s.setRight(leftOff, rightOff)
	s.setLeftInRank(leftOff, leftOff)
	s.setRightInRank(leftOff, leftOff)

	s.setOwnIndex(rightOff, NilIndex)
	s.setValueSize(rightOff, 0)
	s.setLeft(rightOff, leftOff)
	s.setRight(rightOff, int64(len(s.data)))
	s.setLeftInRank(rightOff, rightOff)
	s.setRightInRank(rightOff, rightOff)

	s.registerFreeSpace(leftOff)
}

// rankNodeOffset returns the fixed offset of rank r's sentinel node. Rank
// nodes live immediately after the leftmost sentinel, one per rank.
func (s *Store) rankNodeOffset(r int) int64 {
	return headerSize * int64(1+r)
}

// Allocate reserves size bytes and returns a stable Index plus a slice
// over the reserved payload. The payload is not cleared: it may hold bytes
// left behind by earlier records. The slice is only valid until the next
// call to Allocate or Free.
func (s *Store) Allocate(size uint64) (Index, []byte, error) {
	fullSize := headerSize + int64(bitpack.Align4(size))
	if uint64(fullSize) > uint64(len(s.data))-s.occupiedSpace {
		return NilIndex, nil, ErrNoSpace
	}

	hostOff, err := s.findHost(fullSize)
	if err != nil {
		return NilIndex, nil, err
	}

	idx := s.index.Allocate()
	s.elementsCount++
	s.occupiedSpace += uint64(fullSize)
	s.stats.Allocations++

	newOff := s.occupiedEnd(hostOff)

	s.unregisterFreeSpace(hostOff)

	s.setOwnIndex(newOff, idx)
	s.setValueSize(newOff, size)
	s.setRight(newOff, s.right(hostOff))
	s.setLeft(newOff, hostOff)
	s.setRight(hostOff, newOff)
	s.setLeft(s.right(newOff), newOff)

	s.index.Set(idx, newOff)

	s.registerFreeSpace(hostOff)
	s.registerFreeSpace(newOff)

	debugLogf("allocate size=%d index=%d offset=%d", size, idx, newOff)
	return idx, s.valueSlice(newOff), nil
}

// Get returns the payload slice for idx, or nil if idx is stale or unknown.
func (s *Store) Get(idx Index) []byte {
	off, ok := s.index.Resolve(idx)
	if !ok {
		return nil
	}
	return s.valueSlice(off)
}

// Free releases the record at idx. It reports whether idx was a live
// index; freeing an already-free or unknown index is a no-op returning
// false.
func (s *Store) Free(idx Index) bool {
	off, ok := s.index.Resolve(idx)
	if !ok {
		return false
	}

	s.elementsCount--
	s.occupiedSpace -= uint64(s.fullSize(off))
	s.stats.Frees++

	leftOff := s.left(off)
	rightOff := s.right(off)

	s.unregisterFreeSpace(leftOff)
	s.unregisterFreeSpace(off)

	s.setRight(leftOff, rightOff)
	s.setLeft(rightOff, leftOff)

	s.registerFreeSpace(leftOff)

	s.index.Free(idx)
	debugLogf("free index=%d offset=%d", idx, off)
	return true
}

// ElementsCount returns the number of currently live records.
func (s *Store) ElementsCount() uint64 {
	return s.elementsCount
}

// FillRate returns the fraction of the buffer currently occupied by live
// records and fixed metadata, in [0, 1].
func (s *Store) FillRate() float64 {
	return float64(s.occupiedSpace) / float64(len(s.data))
}

// DefragmentedBytes returns the lifetime total of bytes moved by
// defragmentation, monotonically increasing and never reset by Clear.
func (s *Store) DefragmentedBytes() uint64 {
	return s.defragmentedBytes
}

// Stats returns a snapshot of the store's operation counters.
func (s *Store) Stats() Stats {
	return s.stats
}

// BufferSize returns the fixed size of the backing buffer.
func (s *Store) BufferSize() uint64 {
	return uint64(len(s.data))
}
