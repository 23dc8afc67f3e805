package bitpack

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGetSetRoundTrip(t *testing.T) {
	buf := make([]byte, 32)

	Set(buf, 0, 38, 0x3FFFFFFFFF)
	require.Equal(t, uint64(0x3FFFFFFFFF), Get(buf, 0, 38))

	Set(buf, 38, 38, 123456789)
	require.Equal(t, uint64(123456789), Get(buf, 38, 38))
	require.Equal(t, uint64(0x3FFFFFFFFF), Get(buf, 0, 38), "adjacent field must not be disturbed")

	Set(buf, 190, 32, 0xDEADBEEF)
	require.Equal(t, uint64(0xDEADBEEF), Get(buf, 190, 32))
}

func TestGetSetZero(t *testing.T) {
	buf := make([]byte, 16)
	Set(buf, 4, 56, 0x00FFFFFFFFFFFFFF)
	require.Equal(t, uint64(0x00FFFFFFFFFFFFFF), Get(buf, 4, 56))

	Set(buf, 4, 56, 0)
	require.Equal(t, uint64(0), Get(buf, 4, 56))
}

func TestAlign4(t *testing.T) {
	cases := map[uint64]uint64{0: 0, 1: 4, 2: 4, 3: 4, 4: 4, 5: 8, 10000: 10000, 10001: 10004}
	for in, want := range cases {
		require.Equal(t, want, Align4(in), "Align4(%d)", in)
	}
}
