package blob

import (
	"github.com/yuri-pechatnov/compact-cache/internal/bitpack"
	"github.com/yuri-pechatnov/compact-cache/internal/indextable"
)

// headerSize is the fixed size in bytes of every record header, sentinel
// and rank node included. The five 38-bit offset/size fields plus the
// 32-bit own-index add up to 222 bits; 32 bytes leaves headroom without
// needing byte-unaligned field boundaries to line up with anything.
const headerSize = 32

const (
	bitLeft         = 0
	bitRight        = 38
	bitLeftInRank   = 76
	bitRightInRank  = 114
	bitValueSize    = 152
	bitOwnIndex     = 190
	fieldWidth38    = 38
	fieldWidthIndex = 32
)

// A negative array length fails to compile, pinning the packed header
// layout to headerSize: if a future field widens past the end of the
// window, this breaks the build instead of silently misaligning offsets.
var _ [headerSize*8 - (bitOwnIndex + fieldWidthIndex)]byte

func headerBytes(data []byte, off int64) []byte {
	return data[off : off+headerSize]
}

func (s *Store) left(off int64) int64 {
	return int64(bitpack.Get(headerBytes(s.data, off), bitLeft, fieldWidth38))
}

func (s *Store) setLeft(off int64, v int64) {
	bitpack.Set(headerBytes(s.data, off), bitLeft, fieldWidth38, uint64(v))
}

func (s *Store) right(off int64) int64 {
	return int64(bitpack.Get(headerBytes(s.data, off), bitRight, fieldWidth38))
}

func (s *Store) setRight(off int64, v int64) {
	bitpack.Set(headerBytes(s.data, off), bitRight, fieldWidth38, uint64(v))
}

func (s *Store) leftInRank(off int64) int64 {
	return int64(bitpack.Get(headerBytes(s.data, off), bitLeftInRank, fieldWidth38))
}

func (s *Store) setLeftInRank(off int64, v int64) {
	bitpack.Set(headerBytes(s.data, off), bitLeftInRank, fieldWidth38, uint64(v))
}

func (s *Store) rightInRank(off int64) int64 {
	return int64(bitpack.Get(headerBytes(s.data, off), bitRightInRank, fieldWidth38))
}

func (s *Store) setRightInRank(off int64, v int64) {
	bitpack.Set(headerBytes(s.data, off), bitRightInRank, fieldWidth38, uint64(v))
}

func (s *Store) valueSize(off int64) uint64 {
	return bitpack.Get(headerBytes(s.data, off), bitValueSize, fieldWidth38)
}

func (s *Store) setValueSize(off int64, v uint64) {
	bitpack.Set(headerBytes(s.data, off), bitValueSize, fieldWidth38, v)
}

func (s *Store) ownIndex(off int64) indextable.Index {
	return indextable.Index(bitpack.Get(headerBytes(s.data, off), bitOwnIndex, fieldWidthIndex))
}

func (s *Store) setOwnIndex(off int64, idx indextable.Index) {
	bitpack.Set(headerBytes(s.data, off), bitOwnIndex, fieldWidthIndex, uint64(idx))
}

// fullSize is the total footprint of the record at off: its header plus
// its 4-byte-rounded payload.
func (s *Store) fullSize(off int64) int64 {
	return headerSize + int64(bitpack.Align4(s.valueSize(off)))
}

// occupiedEnd is the first byte offset past off's own footprint: where a
// new record placed immediately after off would start.
//
// The leftmost sentinel is the one exception. It lives at literal buffer
// offset 0, so that its own left_offset field (always 0)
// can double as the "no left neighbor" marker the defragmentation walk
// relies on. But the rank-node region (headerSize * rank.Max bytes,
// holding the per-rank free-list sentinels) physically sits between the
// leftmost sentinel and the first real record, and must never be treated
// as allocatable free space. occupiedEnd special-cases offset 0 to skip
// straight past that reserved region, the same exclusion the original
// implementation gets for free by placing its sentinel after the region
// instead of before it.
func (s *Store) occupiedEnd(off int64) int64 {
	if off == 0 {
		return s.firstRecordOffset
	}
	return off + s.fullSize(off)
}

// rightFreeSize is the size of the gap between off's record and its right
// occupancy-list neighbor.
func (s *Store) rightFreeSize(off int64) int64 {
	return s.right(off) - s.occupiedEnd(off)
}

func (s *Store) valueSlice(off int64) []byte {
	vs := s.valueSize(off)
	start := off + headerSize
	return s.data[start : start+int64(vs) : start+int64(vs)]
}
