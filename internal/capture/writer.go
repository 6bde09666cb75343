package capture

// Writer is a cheap adapter that writes into a shared Buffer.
//
// Writer is a value type holding only a pointer to the buffer, so copies
// are free and every copy references the same underlying storage. This
// matters because the logging framework may request a writer per output
// destination; all of them must feed the same capture buffer.
type Writer struct {
	buf *Buffer
}

// Writer returns a new Writer bound to b. Every Writer minted from the
// same buffer appends to the same storage.
func (b *Buffer) Writer() Writer {
	return Writer{buf: b}
}

// Write appends p to the shared buffer, implementing io.Writer.
func (w Writer) Write(p []byte) (n int, err error) {
	return w.buf.Write(p)
}

// Flush implements the flushing half of a buffered-sink contract. The
// capture buffer has no downstream sink, so there is nothing to flush;
// Flush acquires and releases the lock and reports success.
func (w Writer) Flush() error {
	w.buf.mu.Lock()
	defer w.buf.mu.Unlock()
	return nil
}
