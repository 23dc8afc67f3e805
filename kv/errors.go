package kv

import "errors"

var (
	// ErrKeyTooLarge indicates a key longer than fits in the hash map's
	// 40-bit key-size header field.
	ErrKeyTooLarge = errors.New("kv: key too large")
)
