package blob

import "errors"

var (
	// ErrNoSpace indicates the buffer has no gap large enough to host the
	// request even after defragmentation.
	ErrNoSpace = errors.New("blob: no space large enough for allocation")

	// ErrInvalidArgument indicates a buffer size too small to hold the
	// allocator's fixed metadata overhead. A value larger than the buffer
	// could ever host is reported by Allocate as ErrNoSpace.
	ErrInvalidArgument = errors.New("blob: invalid argument")
)
