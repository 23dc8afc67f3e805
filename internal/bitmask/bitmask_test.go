package bitmask

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFindEmpty(t *testing.T) {
	m := New(128)
	require.Equal(t, -1, m.Find(0))
}

func TestFindInclusiveStart(t *testing.T) {
	m := New(128)
	m.Set(40)
	require.Equal(t, 40, m.Find(40))
	require.Equal(t, 40, m.Find(0))
	require.Equal(t, -1, m.Find(41))
}

func TestFindCrossesWords(t *testing.T) {
	m := New(200)
	m.Set(130)
	require.Equal(t, 130, m.Find(64))
	require.Equal(t, 130, m.Find(127))
}

func TestResetClears(t *testing.T) {
	m := New(64)
	m.Set(5)
	m.Set(6)
	m.Reset(5)
	require.Equal(t, 6, m.Find(0))
}

func TestFindOutOfRange(t *testing.T) {
	m := New(10)
	require.Equal(t, -1, m.Find(10))
	require.Equal(t, -1, m.Find(1000))
}
