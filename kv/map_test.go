package kv

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/yuri-pechatnov/compact-cache/blob"
)

// assertMapInvariants checks the properties every mutating Map call must
// preserve: every bucket's chain hashes to that bucket, walking all chains
// reaches exactly size entries, and each reachable entry is readable back
// through both Get and GetIndex consistently.
func assertMapInvariants(t *testing.T, m *Map) {
	t.Helper()

	var reached uint64
	seen := make(map[blob.Index]bool)
	for bucket, head := range m.buckets {
		cur := head
		for cur != blob.NilIndex {
			require.False(t, seen[cur], "index %d reachable from more than one bucket chain", cur)
			seen[cur] = true

			payload := m.store.Get(cur)
			require.NotNil(t, payload, "bucket chain references a freed index")
			require.EqualValues(t, bucket, entryKeyHash(payload)%uint64(len(m.buckets)),
				"entry hashed into the wrong bucket")

			key := string(entryKeyBytes(payload))
			require.Equal(t, entryValueBytes(payload), m.Get(key), "Get must match the chain's own payload")
			require.Equal(t, entryValueBytes(payload), m.GetIndex(cur), "GetIndex must match the chain's own payload")

			reached++
			cur = entryListNext(payload)
		}
	}
	require.Equal(t, m.size, reached, "size must match the number of entries reachable via bucket chains")
	require.LessOrEqual(t, m.size, 2*uint64(len(m.buckets)), "bucket count must keep up with growth threshold")
}

func TestPutGetErase(t *testing.T) {
	m, err := New(1 << 20)
	require.NoError(t, err)

	require.NoError(t, m.Put("name", []byte("ada")))
	require.Equal(t, []byte("ada"), m.Get("name"))
	require.Nil(t, m.Get("missing"))

	require.True(t, m.Erase("name"))
	require.Nil(t, m.Get("name"))
	require.False(t, m.Erase("name"))
}

func TestPutOverwritesExistingKey(t *testing.T) {
	m, err := New(1 << 20)
	require.NoError(t, err)

	require.NoError(t, m.Put("k", []byte("first")))
	require.NoError(t, m.Put("k", []byte("second")))
	require.Equal(t, []byte("second"), m.Get("k"))
	require.EqualValues(t, 1, m.ElementsCount())
}

func TestIndexRoundTrip(t *testing.T) {
	m, err := New(1 << 20)
	require.NoError(t, err)

	idx, buf, err := m.PutUninitialized("k", 5)
	require.NoError(t, err)
	copy(buf, "hello")

	require.Equal(t, []byte("hello"), m.GetIndex(idx))
	require.True(t, m.EraseIndex(idx))
	require.Nil(t, m.GetIndex(idx))
}

func TestGrowthRehashesExistingEntries(t *testing.T) {
	m, err := New(1 << 20)
	require.NoError(t, err)

	const n = 500
	for i := 0; i < n; i++ {
		require.NoError(t, m.Put(fmt.Sprintf("key-%d", i), []byte(fmt.Sprintf("value-%d", i))))
	}
	require.EqualValues(t, n, m.ElementsCount())

	for i := 0; i < n; i++ {
		require.Equal(t, []byte(fmt.Sprintf("value-%d", i)), m.Get(fmt.Sprintf("key-%d", i)))
	}
}

func TestClearRemovesEverything(t *testing.T) {
	m, err := New(1 << 20)
	require.NoError(t, err)

	for i := 0; i < 10; i++ {
		require.NoError(t, m.Put(fmt.Sprintf("k%d", i), []byte("v")))
	}
	m.Clear()
	require.EqualValues(t, 0, m.ElementsCount())
	require.Nil(t, m.Get("k0"))
}

func TestBulkFragmentAndRefill(t *testing.T) {
	m, err := New(4 << 20)
	require.NoError(t, err)

	keys := make([]string, 94)
	value := make([]byte, 10000)
	for i := range value {
		value[i] = byte(i)
	}
	for i := range keys {
		keys[i] = fmt.Sprintf("bulk-%d", i)
		require.NoError(t, m.Put(keys[i], value))
	}

	for i := 0; i < len(keys); i += 2 {
		require.True(t, m.Erase(keys[i]))
	}
	for i := 0; i < len(keys); i += 2 {
		require.NoError(t, m.Put(keys[i], value))
	}

	for _, k := range keys {
		require.Equal(t, value, m.Get(k))
	}
	require.EqualValues(t, 94, m.ElementsCount())
}

func TestEmptyKeyIsValid(t *testing.T) {
	m, err := New(1 << 16)
	require.NoError(t, err)

	require.NoError(t, m.Put("", []byte("v")))
	require.Equal(t, []byte("v"), m.Get(""))
}

// TestRandomizedMixedOpsPreserveInvariants drives a shared pool of keys
// through a long randomized mix of put, get, erase, and occasional large
// values, checking the map's invariants after every mutating call.
func TestRandomizedMixedOpsPreserveInvariants(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	m, err := New(4 << 20)
	require.NoError(t, err)

	const poolSize = 200
	keys := make([]string, poolSize)
	for i := range keys {
		keys[i] = fmt.Sprintf("pool-key-%d", i)
	}
	present := make(map[string][]byte)

	const ops = 4000
	for i := 0; i < ops; i++ {
		key := keys[rng.Intn(poolSize)]

		switch rng.Intn(4) {
		case 0, 1:
			size := 1 + rng.Intn(64)
			if rng.Intn(100) == 0 {
				size = 2000 + rng.Intn(4000)
			}
			value := make([]byte, size)
			for j := range value {
				value[j] = byte(i + j)
			}
			if err := m.Put(key, value); err != nil {
				require.ErrorIs(t, err, blob.ErrNoSpace)
				assertMapInvariants(t, m)
				continue
			}
			present[key] = value
		case 2:
			erased := m.Erase(key)
			if _, ok := present[key]; ok {
				require.True(t, erased)
				delete(present, key)
			} else {
				require.False(t, erased)
			}
		default:
			got := m.Get(key)
			want, ok := present[key]
			if !ok {
				require.Nil(t, got)
			} else {
				require.Equal(t, want, got)
			}
		}

		assertMapInvariants(t, m)
	}

	require.EqualValues(t, len(present), m.ElementsCount())
	for k, v := range present {
		require.Equal(t, v, m.Get(k))
	}
}
