package kv

import (
	"github.com/yuri-pechatnov/compact-cache/blob"
)

// Map is a separately-chained string-keyed hash map backed by one
// blob.Store. Every entry (header, key, and value) lives in a single blob
// record; bucket chains are threaded through the entry's own header, so no
// extra allocation is needed per bucket.
type Map struct {
	store   *blob.Store
	buckets []blob.Index
	size    uint64
}

// New constructs a Map backed by a freshly allocated buffer of bufferSize
// bytes.
func New(bufferSize uint64) (*Map, error) {
	store, err := blob.New(bufferSize)
	if err != nil {
		return nil, err
	}
	return &Map{
		store:   store,
		buckets: []blob.Index{blob.NilIndex},
	}, nil
}

// Put inserts or overwrites key with value.
func (m *Map) Put(key string, value []byte) error {
	_, buf, err := m.PutUninitialized(key, uint64(len(value)))
	if err != nil {
		return err
	}
	copy(buf, value)
	return nil
}

// PutUninitialized inserts key, reserving valueSize bytes for the value
// without writing to them, and returns the entry's stable index plus a
// slice over the reserved value region, which is not cleared and may hold
// bytes left behind by earlier records. Any existing entry for
// key is removed first.
func (m *Map) PutUninitialized(key string, valueSize uint64) (blob.Index, []byte, error) {
	if uint64(len(key)) >= uint64(1)<<widthSize {
		return blob.NilIndex, nil, ErrKeyTooLarge
	}

	if m.size+1 > 2*uint64(len(m.buckets)) {
		m.grow()
	}

	hash := hashKey(key)
	bucket := hash % uint64(len(m.buckets))

	m.eraseFromBucket(bucket, hash, key)

	idx, payload, err := m.store.Allocate(entrySize(len(key), int(valueSize)))
	if err != nil {
		return blob.NilIndex, nil, err
	}
	setEntryKeyHash(payload, hash)
	setEntryKeySize(payload, uint64(len(key)))
	copy(entryKeyBytes(payload), key)
	setEntryListNext(payload, m.buckets[bucket])
	m.buckets[bucket] = idx
	m.size++

	return idx, entryValueBytes(payload), nil
}

// Get returns the value stored for key, or nil if key is absent.
func (m *Map) Get(key string) []byte {
	_, payload := m.findInBucket(m.bucketFor(key), hashKey(key), key)
	if payload == nil {
		return nil
	}
	return entryValueBytes(payload)
}

// GetIndex returns the value stored at a previously returned stable index,
// or nil if the index is stale.
func (m *Map) GetIndex(idx blob.Index) []byte {
	payload := m.store.Get(idx)
	if payload == nil {
		return nil
	}
	return entryValueBytes(payload)
}

// Erase removes key, reporting whether it was present.
func (m *Map) Erase(key string) bool {
	bucket := m.bucketFor(key)
	return m.eraseFromBucket(bucket, hashKey(key), key)
}

// EraseIndex removes the entry at a previously returned stable index,
// reporting whether it was present.
func (m *Map) EraseIndex(idx blob.Index) bool {
	payload := m.store.Get(idx)
	if payload == nil {
		return false
	}
	key := string(entryKeyBytes(payload))
	return m.Erase(key)
}

// Clear removes every entry.
func (m *Map) Clear() {
	m.store.Clear()
	m.buckets = []blob.Index{blob.NilIndex}
	m.size = 0
}

// ElementsCount returns the number of entries currently stored.
func (m *Map) ElementsCount() uint64 {
	return m.size
}

// FillRate delegates to the backing store.
func (m *Map) FillRate() float64 {
	return m.store.FillRate()
}

// DefragmentedBytes delegates to the backing store.
func (m *Map) DefragmentedBytes() uint64 {
	return m.store.DefragmentedBytes()
}

func (m *Map) bucketFor(key string) uint64 {
	return hashKey(key) % uint64(len(m.buckets))
}

// findInBucket walks bucket's chain looking for key, returning its stable
// index and payload slice, or (NilIndex, nil) if absent.
func (m *Map) findInBucket(bucket, hash uint64, key string) (blob.Index, []byte) {
	cur := m.buckets[bucket]
	for cur != blob.NilIndex {
		payload := m.store.Get(cur)
		if entryKeyHash(payload) == hash && string(entryKeyBytes(payload)) == key {
			return cur, payload
		}
		cur = entryListNext(payload)
	}
	return blob.NilIndex, nil
}

// eraseFromBucket removes key from bucket's chain if present, reporting
// whether it found and removed an entry.
func (m *Map) eraseFromBucket(bucket, hash uint64, key string) bool {
	cur := m.buckets[bucket]
	var prev blob.Index = blob.NilIndex
	for cur != blob.NilIndex {
		payload := m.store.Get(cur)
		next := entryListNext(payload)
		if entryKeyHash(payload) == hash && string(entryKeyBytes(payload)) == key {
			if prev == blob.NilIndex {
				m.buckets[bucket] = next
			} else {
				prevPayload := m.store.Get(prev)
				setEntryListNext(prevPayload, next)
			}
			m.store.Free(cur)
			m.size--
			return true
		}
		prev = cur
		cur = next
	}
	return false
}

// grow doubles the bucket count and re-threads every live entry into its
// new bucket, the way the source's DoubleHashTable does.
func (m *Map) grow() {
	newBuckets := make([]blob.Index, len(m.buckets)*2)
	for i := range newBuckets {
		newBuckets[i] = blob.NilIndex
	}

	for _, head := range m.buckets {
		cur := head
		for cur != blob.NilIndex {
			payload := m.store.Get(cur)
			next := entryListNext(payload)
			hash := entryKeyHash(payload)
			bucket := hash % uint64(len(newBuckets))
			setEntryListNext(payload, newBuckets[bucket])
			newBuckets[bucket] = cur
			cur = next
		}
	}
	debugLogf("rehash old_buckets=%d new_buckets=%d size=%d", len(m.buckets), len(newBuckets), m.size)
	m.buckets = newBuckets
}
