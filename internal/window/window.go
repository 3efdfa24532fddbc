// Package window accumulates keypoint observations into fixed-size,
// non-overlapping windows for classification.
package window

import "github.com/ernest-danials/cookture/internal/detector"

// Size is the number of observations in one classification window.
const Size = 60

// Window is a completed run of observations, oldest first.
type Window []detector.Observation

// Buffer collects observations until a window is full. Consecutive windows
// are disjoint: the buffer is emptied on every hand-off.
//
// Buffer is not safe for concurrent use; the pipeline owns it from a single
// goroutine.
type Buffer struct {
	size int
	obs  []detector.Observation
}

// New creates a buffer that emits windows of size observations.
// A non-positive size uses Size.
func New(size int) *Buffer {
	if size <= 0 {
		size = Size
	}
	return &Buffer{
		size: size,
		obs:  make([]detector.Observation, 0, size),
	}
}

// Push appends obs. When the buffer reaches its size the filled window is
// returned with true and the buffer starts over empty.
func (b *Buffer) Push(obs detector.Observation) (Window, bool) {
	b.obs = append(b.obs, obs)
	if len(b.obs) < b.size {
		return nil, false
	}

	w := Window(b.obs)
	b.obs = make([]detector.Observation, 0, b.size)
	return w, true
}

// Len returns the number of buffered observations.
func (b *Buffer) Len() int {
	return len(b.obs)
}

// Cap returns the window size.
func (b *Buffer) Cap() int {
	return b.size
}

// Reset discards any partial window.
func (b *Buffer) Reset() {
	b.obs = b.obs[:0]
}
