// stack_validator.go - Track stack operations to detect corruption and overflow
package main

import (
	"fmt"
	"io"
)

// StackValidator tracks the push/pop operations the accumulator backend emits.
// The generated code runs on the calling goroutine's stack, so the depth is
// bounded and exceeding it is a capacity error rather than a fault at run time.
type StackValidator struct {
	depth      int      // Current stack depth (in 8-byte words)
	maxDepth   int      // Limit on depth
	highWater  int      // Deepest point reached
	operations []string // History of operations for debugging
	trace      io.Writer
}

func NewStackValidator(maxDepth int, trace io.Writer) *StackValidator {
	return &StackValidator{
		maxDepth:   maxDepth,
		operations: make([]string, 0, 32),
		trace:      trace,
	}
}

// Push records a push of reg, or fails when the stack is full
func (sv *StackValidator) Push(reg string) error {
	if sv.depth >= sv.maxDepth {
		return CapacityError("stack depth", sv.maxDepth)
	}
	sv.depth++
	if sv.depth > sv.highWater {
		sv.highWater = sv.depth
	}
	sv.operations = append(sv.operations, fmt.Sprintf("push %s (depth=%d)", reg, sv.depth))
	if sv.trace != nil {
		fmt.Fprintf(sv.trace, "STACK: push %s, depth now %d\n", reg, sv.depth)
	}
	return nil
}

// Pop records a pop into reg. Popping an empty stack is a code generator bug.
func (sv *StackValidator) Pop(reg string) {
	if sv.depth <= 0 {
		start := len(sv.operations) - 10
		if start < 0 {
			start = 0
		}
		panic(FatalError(fmt.Sprintf("stack underflow on pop %s, recent operations: %v", reg, sv.operations[start:])))
	}
	sv.depth--
	sv.operations = append(sv.operations, fmt.Sprintf("pop %s (depth=%d)", reg, sv.depth))
	if sv.trace != nil {
		fmt.Fprintf(sv.trace, "STACK: pop %s, depth now %d\n", reg, sv.depth)
	}
}

// Depth returns the current depth
func (sv *StackValidator) Depth() int {
	return sv.depth
}

// HighWater returns the deepest the stack has been
func (sv *StackValidator) HighWater() int {
	return sv.highWater
}

// Validate panics unless the stack is back at the given depth
func (sv *StackValidator) Validate(checkpointDepth int, label string) {
	if sv.depth != checkpointDepth {
		panic(FatalError(fmt.Sprintf("stack imbalance at %s: expected depth %d, got %d", label, checkpointDepth, sv.depth)))
	}
}
