// Completion: 100% - JIT invocation complete
package main

import (
	"unsafe"
)

// jitFunc is the Go view of the generated code. With the register based
// calling convention the argument arrives in the first integer register
// (rax on amd64, x0 on arm64) and the result is returned in the same one.
type jitFunc func(env uintptr) int64

// callNative calls the sealed code of m with the environment table as argument.
// This is the only place generated code is executed directly.
func callNative(m *ExecMemory) (int64, error) {
	switch {
	case m.closed:
		return 0, FatalError("call of released memory")
	case !m.native:
		return 0, FatalError("call of emulation-only memory")
	case !m.sealed:
		return 0, FatalError("call of unsealed code")
	}

	// A func value points at a word holding the code address
	entry := m.CodeAddr()
	entryRef := &entry
	fn := *(*jitFunc)(unsafe.Pointer(&entryRef))
	return fn(uintptr(m.data.Base())), nil
}
