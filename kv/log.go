package kv

import (
	"fmt"
	"os"
)

// logAlloc traces bucket-table rehashes to stderr when CACHE_LOG_ALLOC is
// set, the same toggle and idiom blob.Store uses for allocation tracing.
var logAlloc = os.Getenv("CACHE_LOG_ALLOC") != ""

func debugLogf(format string, args ...any) {
	if logAlloc {
		fmt.Fprintf(os.Stderr, "[kv] "+format+"\n", args...)
	}
}
