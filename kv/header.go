package kv

import (
	"github.com/yuri-pechatnov/compact-cache/blob"
	"github.com/yuri-pechatnov/compact-cache/internal/bitpack"
)

// entryHeaderSize is the fixed size of the bucket-entry header prepended
// to every key/value payload: a 56-bit key hash, a 40-bit key size, and a
// 32-bit bucket-chain link, packed into 16 bytes.
const entryHeaderSize = 16

const (
	bitKeyHash  = 0
	widthHash   = 56
	bitKeySize  = 56
	widthSize   = 40
	bitListNext = 96
	widthNext   = 32
)

func entryKeyHash(payload []byte) uint64 {
	return bitpack.Get(payload, bitKeyHash, widthHash)
}

func setEntryKeyHash(payload []byte, h uint64) {
	bitpack.Set(payload, bitKeyHash, widthHash, h)
}

func entryKeySize(payload []byte) uint64 {
	return bitpack.Get(payload, bitKeySize, widthSize)
}

func setEntryKeySize(payload []byte, n uint64) {
	bitpack.Set(payload, bitKeySize, widthSize, n)
}

func entryListNext(payload []byte) blob.Index {
	return blob.Index(bitpack.Get(payload, bitListNext, widthNext))
}

func setEntryListNext(payload []byte, next blob.Index) {
	bitpack.Set(payload, bitListNext, widthNext, uint64(next))
}

func entryKeyBytes(payload []byte) []byte {
	n := entryKeySize(payload)
	return payload[entryHeaderSize : entryHeaderSize+n]
}

func entryValueBytes(payload []byte) []byte {
	n := entryKeySize(payload)
	return payload[entryHeaderSize+n:]
}

func entrySize(keyLen, valueLen int) uint64 {
	return uint64(entryHeaderSize + keyLen + valueLen)
}
