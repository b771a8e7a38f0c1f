package main

import (
	"bytes"
	"strings"
	"testing"
)

func TestSafeBufferBasicUsage(t *testing.T) {
	sb := NewSafeBuffer("test", make([]byte, 16))

	// Write some data
	sb.Write([]byte("hello"))
	if sb.Len() != 5 {
		t.Errorf("Expected length 5, got %d", sb.Len())
	}

	// Commit the buffer
	sb.Commit()

	// Reading is safe after commit
	if string(sb.Bytes()) != "hello" {
		t.Errorf("Expected 'hello', got '%s'", string(sb.Bytes()))
	}
	if !sb.IsCommitted() {
		t.Error("Buffer should be committed")
	}
}

func TestSafeBufferPreventsWriteAfterCommit(t *testing.T) {
	sb := NewSafeBuffer("test", make([]byte, 16))
	sb.Write([]byte("data"))
	sb.Commit()

	// This should panic
	defer func() {
		if r := recover(); r == nil {
			t.Error("Expected panic when writing to committed buffer")
		}
	}()

	sb.Write([]byte("more"))
}

func TestSafeBufferOverflowIsStickyCapacityError(t *testing.T) {
	sb := NewSafeBuffer("code buffer", make([]byte, 4))

	if _, err := sb.Write([]byte{1, 2, 3}); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	_, err := sb.Write([]byte{4, 5})
	if !IsCategory(err, CategoryCapacity) {
		t.Fatalf("Expected capacity error, got %v", err)
	}
	if !strings.Contains(err.Error(), "code buffer") {
		t.Errorf("Error should name the buffer: %v", err)
	}

	// Fits, but the buffer already failed
	if n, err := sb.Write([]byte{6}); n != 0 || err == nil {
		t.Errorf("Expected the error to stick, got n=%d err=%v", n, err)
	}
	if sb.Len() != 3 || sb.Err() == nil {
		t.Errorf("Expected 3 bytes and a recorded error, got %d, %v", sb.Len(), sb.Err())
	}
}

func TestSafeBufferWritesIntoBacking(t *testing.T) {
	backing := make([]byte, 8)
	sb := NewSafeBuffer("test", backing)
	sb.Write([]byte{0xC3})
	if backing[0] != 0xC3 {
		t.Errorf("Expected the write to land in the backing store, got %x", backing[0])
	}
	if sb.Cap() != 8 {
		t.Errorf("Expected capacity 8, got %d", sb.Cap())
	}
}

func TestSafeBufferCommitTrace(t *testing.T) {
	var trace bytes.Buffer
	sb := NewSafeBuffer("test", make([]byte, 8))
	sb.SetTrace(&trace)
	sb.Write([]byte{1, 2})
	sb.Commit()
	if got := trace.String(); got != "SafeBuffer(test): Committed with 2 bytes\n" {
		t.Errorf("Unexpected trace %q", got)
	}
}
