// Package capture provides the shared in-memory buffer that log output is
// collected into during a test run.
//
// The primary component is Buffer, a thread-safe append-only byte buffer.
// Any number of writers may append to it concurrently while a single reader
// atomically drains the accumulated bytes for rendering.
package capture

import "sync"

// Buffer is a thread-safe append-only byte buffer for capturing log output.
//
// Unlike a bounded ring buffer, Buffer grows without limit until it is
// drained: every byte written between two drains is retained, in write
// order. This is the right trade-off for a test aid, where the buffer is
// read after every few log statements, and the wrong one for production,
// where it would grow until the process runs out of memory.
//
// # Thread Safety
//
// All methods are safe for concurrent use. A single sync.Mutex serializes
// writers against each other and against Drain, Clear, and Teardown. The
// critical sections are short (an append or a pointer swap), so the lock is
// never held across formatting or I/O.
//
// # Sharing
//
// The buffer is shared between the Collector that drains it and the Writer
// adapters handed to the logging framework. All of them reference the same
// *Buffer; the garbage collector frees it once the last referent is gone,
// so the buffer may outlive the Collector that created it at the cost of an
// empty slice and a mutex.
type Buffer struct {
	mu   sync.Mutex
	data []byte
}

// NewBuffer creates a new empty capture buffer.
func NewBuffer() *Buffer {
	return &Buffer{}
}

// Write appends p to the buffer, implementing io.Writer.
//
// Bytes are appended in order and never dropped or reordered; concurrent
// writers serialize through the buffer's lock. Write always returns
// len(p), nil.
func (b *Buffer) Write(p []byte) (n int, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.data = append(b.data, p...)
	return len(p), nil
}

// Drain atomically removes and returns everything written since the last
// drain, leaving the buffer empty.
//
// The swap is performed under the lock, so a drain that happens after a set
// of writes observes exactly those writes and none after; concurrent
// writers immediately begin accumulating into fresh storage rather than
// blocking while the caller processes the returned bytes.
//
// The returned slice is owned by the caller.
func (b *Buffer) Drain() []byte {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := b.data
	b.data = nil
	return out
}

// Clear discards the buffer's contents without returning them.
//
// The backing storage is retained to avoid reallocation on the next write.
func (b *Buffer) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.data = b.data[:0]
}

// Len returns the number of bytes currently buffered.
func (b *Buffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()

	return len(b.data)
}

// Teardown discards the buffer's contents and releases its backing storage,
// shrinking the retained footprint to the struct itself.
//
// Writers holding the buffer may still append after Teardown; they start
// from empty storage. Teardown bounds the memory kept alive by outstanding
// writer adapters to a small constant regardless of how much was ever
// logged before it.
func (b *Buffer) Teardown() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.data = nil
}
