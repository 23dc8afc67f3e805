package blob

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/yuri-pechatnov/compact-cache/internal/rank"
)

// assertInvariants walks the occupancy list and the rank lists and checks
// the universal invariants every mutating call must preserve: sentinel
// positions, non-overlap, bidirectional links, and rank-list consistency.
func assertInvariants(t *testing.T, s *Store) {
	t.Helper()

	rightSentinel := int64(len(s.data)) - headerSize
	require.Equal(t, int64(0), s.left(0), "leftmost sentinel's left_offset must be 0")
	require.Equal(t, int64(len(s.data)), s.right(rightSentinel), "rightmost sentinel's right_offset must be buffer size")

	var liveCount uint64
	prev := int64(0)
	cur := s.right(0)
	for cur != rightSentinel {
		require.Equal(t, prev, s.left(cur), "occupancy list back-link mismatch at offset %d", cur)
		require.GreaterOrEqual(t, cur, s.occupiedEnd(prev), "record at %d overlaps predecessor", cur)
		liveCount++
		prev = cur
		cur = s.right(cur)
	}
	require.Equal(t, prev, s.left(rightSentinel), "rightmost sentinel's back-link mismatch")
	require.Equal(t, s.elementsCount, liveCount, "elementsCount must match occupancy-list length")

	for r := 0; r < rank.Max; r++ {
		node := s.rankNodeOffset(r)
		n := s.rightInRank(node)
		empty := n == node
		require.Equal(t, !empty, maskHas(s, r), "rank %d mask bit disagrees with list emptiness", r)
		for n != node {
			require.Equal(t, r, rankOfGap(s, n), "record at %d in wrong rank list", n)
			n = s.rightInRank(n)
		}
	}
}

func maskHas(s *Store, r int) bool {
	found := s.rankMask.Find(r)
	return found == r
}

func rankOfGap(s *Store, off int64) int {
	gap := s.rightFreeSize(off)
	return rank.Of(uint64(gap))
}

// newTestStore builds a store sized to comfortably hold the given
// allocation sizes plus fixed overhead, the way hive/alloc's test helpers
// size a synthetic hive around the cells a test needs.
func newTestStore(t *testing.T, payload uint64) *Store {
	t.Helper()
	s, err := New(occupiedMetaSize + payload)
	require.NoError(t, err)
	return s
}
