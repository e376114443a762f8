// Package arena implements a bump allocator: a contiguous byte region with a
// monotonically increasing high-water mark. Every long-lived structure in
// nornicvec (weight tensors, run-state buffers, vocabulary, index rows, note
// strings, metadata strings) is carved from one Arena. There is no
// per-allocation free; callers use Mark/ResetTo to release scratch
// sub-regions in bulk.
package arena

import (
	"errors"
	"fmt"
)

const alignment = 8

// ErrOutOfMemory is returned by Push when the region is exhausted.
var ErrOutOfMemory = errors.New("arena: out of memory")

// Arena is a bump allocator over a fixed-size byte region.
type Arena struct {
	base []byte
	used int
}

// New reserves size bytes up front. Unlike the reference implementation's
// mmap-backed region, this is a plain heap-allocated slice — Go's GC already
// owns the backing store, and there is no syscall boundary to cross for a
// single-process, non-shared-memory allocator.
func New(size int) *Arena {
	return &Arena{base: make([]byte, size)}
}

// Push returns an 8-byte-aligned view of n bytes and advances the high-water
// mark. The returned slice aliases the arena's backing array; it remains
// valid until a ResetTo rewinds past its offset.
func (a *Arena) Push(n int) ([]byte, error) {
	padding := (alignment - (a.used % alignment)) % alignment
	start := a.used + padding
	end := start + n
	if end > len(a.base) {
		return nil, fmt.Errorf("%w: used=%d requested=%d capacity=%d", ErrOutOfMemory, a.used, n, len(a.base))
	}
	a.used = end
	return a.base[start:end:end], nil
}

// MustPush panics on exhaustion instead of returning an error, matching the
// reference allocator's fatal-trap behavior for allocations the caller has
// already sized against Config (weight tensors, run-state buffers) where
// failure indicates a corrupt checkpoint, not a recoverable condition.
func (a *Arena) MustPush(n int) []byte {
	b, err := a.Push(n)
	if err != nil {
		panic(err)
	}
	return b
}

// Mark returns the current high-water mark for a later ResetTo.
func (a *Arena) Mark() int {
	return a.used
}

// ResetTo rewinds the high-water mark to a previously captured Mark. Views
// returned by Push before the mark remain valid; views after it must not be
// used again.
func (a *Arena) ResetTo(mark int) error {
	if mark < 0 || mark > a.used {
		return fmt.Errorf("arena: invalid mark %d (used=%d)", mark, a.used)
	}
	a.used = mark
	return nil
}

// Used reports the number of bytes currently allocated.
func (a *Arena) Used() int {
	return a.used
}

// Capacity reports the total reserved size.
func (a *Arena) Capacity() int {
	return len(a.base)
}

// Free releases the region. The Arena must not be used afterward.
func (a *Arena) Free() {
	a.base = nil
	a.used = 0
}
