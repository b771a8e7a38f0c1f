// Completion: 100% - Module complete
package main

import (
	"fmt"
	"io"
)

// SafeBuffer is a bounded byte sink over a fixed backing store (normally the
// code pages of an executable mapping). Writing past the end records a
// capacity error instead of growing, and writing after Commit panics.
type SafeBuffer struct {
	buf       []byte
	n         int
	err       error
	committed bool   // True once Commit() is called
	name      string // For debugging
	trace     io.Writer
}

// NewSafeBuffer creates a SafeBuffer writing into backing
func NewSafeBuffer(name string, backing []byte) *SafeBuffer {
	return &SafeBuffer{
		buf:  backing,
		name: name,
	}
}

// SetTrace enables the commit log on w
func (sb *SafeBuffer) SetTrace(w io.Writer) {
	sb.trace = w
}

// Write appends bytes to the buffer. Panics if buffer is committed.
// Once the capacity is exceeded, nothing more is written and the error sticks.
func (sb *SafeBuffer) Write(p []byte) (n int, err error) {
	if sb.committed {
		panic(fmt.Sprintf("SafeBuffer(%s): Cannot write to committed buffer", sb.name))
	}
	if sb.err != nil {
		return 0, sb.err
	}
	if sb.n+len(p) > len(sb.buf) {
		sb.err = CapacityError(sb.name, len(sb.buf))
		return 0, sb.err
	}
	copy(sb.buf[sb.n:], p)
	sb.n += len(p)
	return len(p), nil
}

// Bytes returns the buffer contents. Safe to call after commit.
func (sb *SafeBuffer) Bytes() []byte {
	return sb.buf[:sb.n]
}

// Len returns the number of bytes written
func (sb *SafeBuffer) Len() int {
	return sb.n
}

// Cap returns the capacity of the backing store
func (sb *SafeBuffer) Cap() int {
	return len(sb.buf)
}

// Err returns the first capacity error, if any
func (sb *SafeBuffer) Err() error {
	return sb.err
}

// Commit marks the buffer as complete. After this, no more writes allowed.
func (sb *SafeBuffer) Commit() {
	if sb.trace != nil {
		fmt.Fprintf(sb.trace, "SafeBuffer(%s): Committed with %d bytes\n", sb.name, sb.n)
	}
	sb.committed = true
}

// IsCommitted returns true if the buffer has been committed
func (sb *SafeBuffer) IsCommitted() bool {
	return sb.committed
}
