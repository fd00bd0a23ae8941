// Package history provides the bounded FIFO buffers that hold recent samples
// for each metric stream.
package history

import "fmt"

// DefaultCapacity is the number of samples retained per stream.
const DefaultCapacity = 60

// Ring is a fixed-capacity FIFO. Once full, each Push evicts the oldest
// element.
//
// Thread-safety: NOT thread-safe. The owner must serialize access.
type Ring[T any] struct {
	buf   []T
	start int // index of the oldest element
	size  int
}

// New creates an empty Ring. Panics if capacity < 1.
func New[T any](capacity int) *Ring[T] {
	if capacity < 1 {
		panic(fmt.Sprintf("history.New: capacity must be >= 1, got %d", capacity))
	}
	return &Ring[T]{buf: make([]T, capacity)}
}

// Push appends v, evicting the oldest element when full.
// Returns the evicted element and true if one was evicted.
func (r *Ring[T]) Push(v T) (evicted T, ok bool) {
	if r.size < len(r.buf) {
		r.buf[(r.start+r.size)%len(r.buf)] = v
		r.size++
		return evicted, false
	}
	evicted = r.buf[r.start]
	r.buf[r.start] = v
	r.start = (r.start + 1) % len(r.buf)
	return evicted, true
}

// Items returns a copy of the contents, oldest first.
func (r *Ring[T]) Items() []T {
	out := make([]T, r.size)
	for i := 0; i < r.size; i++ {
		out[i] = r.buf[(r.start+i)%len(r.buf)]
	}
	return out
}

// Last returns a copy of the newest n elements, oldest first.
// n larger than Len returns everything.
func (r *Ring[T]) Last(n int) []T {
	if n > r.size {
		n = r.size
	}
	if n <= 0 {
		return []T{}
	}
	out := make([]T, n)
	skip := r.size - n
	for i := 0; i < n; i++ {
		out[i] = r.buf[(r.start+skip+i)%len(r.buf)]
	}
	return out
}

// Latest returns the newest element. ok is false when the ring is empty.
func (r *Ring[T]) Latest() (v T, ok bool) {
	if r.size == 0 {
		return v, false
	}
	return r.buf[(r.start+r.size-1)%len(r.buf)], true
}

// Len returns the number of stored elements.
func (r *Ring[T]) Len() int { return r.size }

// Cap returns the capacity.
func (r *Ring[T]) Cap() int { return len(r.buf) }

// Reset drops all elements.
func (r *Ring[T]) Reset() {
	var zero T
	for i := range r.buf {
		r.buf[i] = zero
	}
	r.start, r.size = 0, 0
}
