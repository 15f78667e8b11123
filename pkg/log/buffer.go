package log

import (
	"fmt"
	"io"
	"sync"
)

// CircularBuffer is an [io.Writer] that keeps the most recent writes in
// memory. It is used to hold log output while an interactive form owns the
// terminal, so that it can be flushed once the form exits.
type CircularBuffer struct {
	entries [][]byte
	start   int
	size    int
	mu      sync.Mutex
}

// NewCircularBuffer creates a new [CircularBuffer] that holds up to capacity
// entries. Non-positive capacities default to 100.
func NewCircularBuffer(capacity int) *CircularBuffer {
	if capacity <= 0 {
		capacity = 100
	}

	return &CircularBuffer{
		entries: make([][]byte, capacity),
	}
}

// Write stores a copy of p as a new entry, evicting the oldest entry when the
// buffer is full.
func (cb *CircularBuffer) Write(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}

	entry := make([]byte, len(p))
	copy(entry, p)

	cb.mu.Lock()
	defer cb.mu.Unlock()

	idx := (cb.start + cb.size) % len(cb.entries)
	cb.entries[idx] = entry

	if cb.size < len(cb.entries) {
		cb.size++
	} else {
		cb.start = (cb.start + 1) % len(cb.entries)
	}

	return len(p), nil
}

// Entries returns copies of the stored entries, oldest first.
func (cb *CircularBuffer) Entries() [][]byte {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if cb.size == 0 {
		return nil
	}

	out := make([][]byte, 0, cb.size)
	for i := range cb.size {
		e := cb.entries[(cb.start+i)%len(cb.entries)]
		out = append(out, append([]byte(nil), e...))
	}

	return out
}

// Size returns the number of stored entries.
func (cb *CircularBuffer) Size() int {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	return cb.size
}

// Capacity returns the maximum number of entries.
func (cb *CircularBuffer) Capacity() int {
	return len(cb.entries)
}

// IsFull reports whether older entries are being evicted.
func (cb *CircularBuffer) IsFull() bool {
	return cb.Size() == cb.Capacity()
}

// WriteTo writes all entries to w, oldest first.
func (cb *CircularBuffer) WriteTo(w io.Writer) (int64, error) {
	var total int64

	for _, entry := range cb.Entries() {
		n, err := w.Write(entry)
		total += int64(n)

		if err != nil {
			return total, fmt.Errorf("writing entry: %w", err)
		}
	}

	return total, nil
}
