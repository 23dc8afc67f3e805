package blob

import "github.com/yuri-pechatnov/compact-cache/internal/rank"

// findHost locates a record whose trailing gap can host fullSize bytes,
// triggering defragmentation if no existing gap is large enough.
//
// The rank requested is rank.Of(fullSize)+1 rather than rank.Of(fullSize)
// itself: a gap's rank is a lower bound on its size (rank buckets gaps by
// magnitude, not exact size), so asking one rank higher guarantees any hit
// is large enough without inspecting candidates one by one.
func (s *Store) findHost(fullSize int64) (int64, error) {
	want := rank.Of(uint64(fullSize)) + 1
	r := s.rankMask.Find(want)
	if r == -1 {
		return s.defragmentate(fullSize)
	}
	nodeOff := s.rankNodeOffset(r)
	return s.rightInRank(nodeOff), nil
}

// unregisterFreeSpace removes off's trailing gap from whatever rank list
// it currently belongs to. A no-op if off currently has no trailing gap.
func (s *Store) unregisterFreeSpace(off int64) {
	gap := s.rightFreeSize(off)
	if gap == 0 {
		return
	}
	r := rank.Of(uint64(gap))
	wasOnly := s.leftInRank(off) == s.rightInRank(off)
	if wasOnly {
		s.rankMask.Reset(r)
	}

	l := s.leftInRank(off)
	right := s.rightInRank(off)
	s.setRightInRank(l, right)
	s.setLeftInRank(right, l)
	s.setLeftInRank(off, off)
	s.setRightInRank(off, off)
}

// registerFreeSpace adds off's current trailing gap to the appropriate
// rank list, inserting at the head (LIFO) so a gap just freed is the first
// one reused at its rank. A no-op if off has no trailing gap.
func (s *Store) registerFreeSpace(off int64) {
	gap := s.rightFreeSize(off)
	if gap == 0 {
		return
	}
	r := rank.Of(uint64(gap))
	nodeOff := s.rankNodeOffset(r)
	wasEmpty := s.rightInRank(nodeOff) == nodeOff

	s.setLeftInRank(off, nodeOff)
	oldHead := s.rightInRank(nodeOff)
	s.setRightInRank(off, oldHead)
	s.setRightInRank(nodeOff, off)
	s.setLeftInRank(oldHead, off)

	if wasEmpty {
		s.rankMask.Set(r)
	}
}

// defragmentate slides a contiguous run of records left to coalesce their
// trailing gaps into one large enough to host fullSize, and returns the
// offset of the record that now hosts it.
//
// It picks a random occupied record as a seed (the leftmost sentinel when
// the store holds no records), extends a window right
// (and, if still short, left) of the seed until the sum of trailing gaps
// in the window reaches fullSize, then walks the window left to right:
// whenever two adjacent records are not already touching, the right one
// is slid left to abut the left one, coalescing the gap between them.
func (s *Store) defragmentate(fullSize int64) (int64, error) {
	if uint64(fullSize) > uint64(len(s.data))-s.occupiedSpace {
		return 0, ErrNoSpace
	}

	seedOff := int64(0)
	if s.elementsCount > 0 {
		_, seedOff = s.index.Random(func(n int) int { return s.rng.Intn(n) })
	}

	hostOff := seedOff
	acc := int64(0)
	cur := hostOff
	for acc < fullSize && s.right(cur) != int64(len(s.data)) {
		acc += s.rightFreeSize(cur)
		cur = s.right(cur)
	}
	for acc < fullSize && s.left(hostOff) != 0 {
		hostOff = s.left(hostOff)
		acc += s.rightFreeSize(hostOff)
	}
	if acc < fullSize {
		return 0, ErrNoSpace
	}

	header := hostOff
	for {
		if s.rightFreeSize(header) >= fullSize {
			s.stats.Defragmentations++
			debugLogf("defragmented host offset=%d", header)
			return header, nil
		}

		next := s.right(header)
		if s.right(next) == int64(len(s.data)) {
			return 0, ErrNoSpace
		}

		oldNextOff := next
		newNextOff := s.occupiedEnd(header)
		if newNextOff == oldNextOff {
			header = next
			continue
		}

		nextFullSize := s.fullSize(next)
		afterNext := s.right(next)

		s.unregisterFreeSpace(header)
		s.unregisterFreeSpace(next)

		s.setRight(header, newNextOff)
		s.setLeft(afterNext, newNextOff)
		s.index.Set(s.ownIndex(next), newNextOff)

		copy(s.data[newNextOff:newNextOff+nextFullSize], s.data[oldNextOff:oldNextOff+nextFullSize])

		s.defragmentedBytes += uint64(nextFullSize)
		header = newNextOff
		s.registerFreeSpace(header)
	}
}
