package sharedtest

import (
	"fmt"
	"sync/atomic"
)

var memoryPathCounter int64

// UniqueMemoryFilepath returns a filepath on the shared in-memory
// filesystem that no other test has used, so tests do not see each other's
// writes.
func UniqueMemoryFilepath(basename string) string {
	n := atomic.AddInt64(&memoryPathCounter, 1)
	return fmt.Sprintf("memory://t%d/%s", n, basename)
}
