// Package pixmap implements the DVB subtitle decoder's bump allocator: one
// externally provided graphics buffer is carved into per-region pixmaps for
// one epoch at a time, and the whole arena is rewound on every epoch reset.
package pixmap

import "fmt"

// Allocate requests a graphics buffer of the given size from the host. It
// returns nil if the host could not satisfy the request at that size; the
// Arena retries with smaller sizes before giving up.
type Allocate func(size int) []byte

// Free releases a buffer previously returned by Allocate.
type Free func(buf []byte)

const (
	// BufferSizeMin is the smallest block the arena will request before
	// giving up entirely.
	BufferSizeMin = 80 * 1024
)

// Spec selects the ETSI EN 300 743 revision, which determines the arena's
// upper bound. 2-bit and 4-bit region storage is widened to 8 bits per
// pixel, hence the x4 multiplier on both bounds.
type Spec int

const (
	SpecV121 Spec = iota
	SpecV131
)

func (s Spec) maxSize() int {
	switch s {
	case SpecV131:
		return 320 * 1024 * 4
	default:
		return 80 * 1024 * 4
	}
}

// Arena is a bump allocator over one buffer obtained from the host at
// construction. reset() rewinds the bump pointer; it does not return memory
// to the host — the same buffer is reused for every epoch.
type Arena struct {
	free      Free
	block     []byte
	blockSize int
	pos       int
}

// New constructs an arena for the given spec version, retrying with
// geometrically decreasing sizes down to BufferSizeMin if the host cannot
// satisfy the first request. If every attempt fails, the arena is left in a
// permanently-failed state: every subsequent Allocate call returns nil until
// the arena is replaced.
func New(spec Spec, allocate Allocate, free Free) *Arena {
	a := &Arena{free: free}
	size := spec.maxSize()
	for size >= BufferSizeMin {
		if buf := allocate(size); buf != nil {
			a.block = buf
			a.blockSize = size
			return a
		}
		size /= 2
	}
	return a
}

// Failed reports whether construction could not obtain any buffer.
func (a *Arena) Failed() bool {
	return a.block == nil
}

// Close releases the arena's buffer back to the host, if any was obtained.
func (a *Arena) Close() {
	if a.block != nil && a.free != nil {
		a.free(a.block)
	}
	a.block = nil
	a.blockSize = 0
	a.pos = 0
}

// Reset rewinds the bump pointer to the start of the block. Every pointer
// returned by a prior Allocate call is invalidated; the DVB epoch reset is
// the sole caller of this method.
func (a *Arena) Reset() {
	a.pos = 0
}

// CanAllocate reports whether size bytes remain in the current block.
func (a *Arena) CanAllocate(size int) bool {
	return !a.Failed() && a.blockSize-a.pos >= size
}

// Allocate carves size bytes off the front of the remaining block. It
// returns nil, with no side effects, if the arena has failed construction
// or does not have size bytes left.
func (a *Arena) Allocate(size int) []byte {
	if !a.CanAllocate(size) {
		return nil
	}
	buf := a.block[a.pos : a.pos+size : a.pos+size]
	a.pos += size
	return buf
}

// ErrResourceExhausted is returned by callers building on top of Arena when
// Allocate cannot satisfy a request.
type ErrResourceExhausted struct {
	Requested int
	Available int
}

func (e *ErrResourceExhausted) Error() string {
	return fmt.Sprintf("pixmap: resource exhausted: requested %d, %d available", e.Requested, e.Available)
}

// BytesInUse reports how much of the current block has been handed out,
// for metrics/diagnostics.
func (a *Arena) BytesInUse() int {
	return a.pos
}
