// Package ringbuf provides a fixed-capacity FIFO ring buffer used for the
// bounded recency windows (recent form, toss form, rolling innings history).
package ringbuf

// Buffer is a fixed-size circular buffer. It never grows: once full, each
// Push evicts the oldest element.
type Buffer[T any] struct {
	data  []T
	index int // next write position
	size  int
}

// New creates a buffer with the given capacity. A non-positive capacity is
// treated as 1.
func New[T any](capacity int) *Buffer[T] {
	if capacity <= 0 {
		capacity = 1
	}
	return &Buffer[T]{data: make([]T, capacity)}
}

// Push appends v, evicting the oldest element when the buffer is full.
func (b *Buffer[T]) Push(v T) {
	b.data[b.index] = v
	b.index = (b.index + 1) % len(b.data)
	if b.size < len(b.data) {
		b.size++
	}
}

// Len returns the current number of elements.
func (b *Buffer[T]) Len() int { return b.size }

// All returns the elements in insertion order (oldest to newest).
func (b *Buffer[T]) All() []T {
	out := make([]T, b.size)
	start := 0
	if b.size == len(b.data) {
		start = b.index
	}
	for i := 0; i < b.size; i++ {
		out[i] = b.data[(start+i)%len(b.data)]
	}
	return out
}

// Each calls fn for every element, oldest first, without allocating.
func (b *Buffer[T]) Each(fn func(T)) {
	start := 0
	if b.size == len(b.data) {
		start = b.index
	}
	for i := 0; i < b.size; i++ {
		fn(b.data[(start+i)%len(b.data)])
	}
}
