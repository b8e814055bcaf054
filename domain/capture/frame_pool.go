package capture

import (
	"fmt"
	"sync"
)

// maxFrameBytes bounds a single capture surface (16k x 16k at 32 bpp).
const maxFrameBytes = 16384 * 16384 * 4

// FrameBuffer is the reusable memory region that holds the most recent raw
// capture. It grows to the largest frame requested and is never shrunk.
// Acquire and Release bracket each use; only one holder is allowed at a time.
type FrameBuffer struct {
	mu    sync.Mutex
	pix   []byte
	inUse bool
}

// Acquire returns a slice of exactly n bytes backed by the shared region.
func (b *FrameBuffer) Acquire(n int) ([]byte, error) {
	if n <= 0 || n > maxFrameBytes {
		return nil, fmt.Errorf("%w: %d bytes", ErrAllocationFailed, n)
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.inUse {
		return nil, ErrBufferInUse
	}
	if cap(b.pix) < n {
		b.pix = make([]byte, n)
	}
	b.inUse = true
	return b.pix[:n], nil
}

// Release marks the region free. The slice returned by Acquire must not be
// accessed afterwards.
func (b *FrameBuffer) Release() {
	b.mu.Lock()
	b.inUse = false
	b.mu.Unlock()
}

// Cap reports the current capacity of the region.
func (b *FrameBuffer) Cap() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return cap(b.pix)
}
