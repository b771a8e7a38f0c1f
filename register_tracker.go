// Completion: 100% - Helper module complete
package main

import (
	"fmt"
	"io"
)

// RegisterTracker manages the pool of free general purpose registers for the
// register pool backend. Free registers form a stack: the most recently freed
// register is handed out first, and the initial order hands out the lowest
// numbered register first.
type RegisterTracker struct {
	free    []string
	inUse   map[string]string // register -> purpose (debugging)
	size    int
	maxUsed int
	trace   io.Writer
}

// NewRegisterTracker creates a tracker over regs, which are allocated in order
func NewRegisterTracker(regs []string, trace io.Writer) *RegisterTracker {
	rt := &RegisterTracker{
		free:  make([]string, 0, len(regs)),
		inUse: make(map[string]string, len(regs)),
		size:  len(regs),
		trace: trace,
	}
	for i := len(regs) - 1; i >= 0; i-- {
		rt.free = append(rt.free, regs[i])
	}
	return rt
}

// ARM64PoolRegisters returns x1..x<n>, the caller-saved registers the pool
// may hand out. x0 carries the environment pointer and the result.
func ARM64PoolRegisters(n int) []string {
	regs := make([]string, 0, n)
	for i := 1; i <= n; i++ {
		regs = append(regs, fmt.Sprintf("x%d", i))
	}
	return regs
}

// Alloc pops a free register. Returns false when the pool is empty.
func (rt *RegisterTracker) Alloc(purpose string) (string, bool) {
	if len(rt.free) == 0 {
		return "", false
	}
	reg := rt.free[len(rt.free)-1]
	rt.free = rt.free[:len(rt.free)-1]
	rt.inUse[reg] = purpose
	if n := len(rt.inUse); n > rt.maxUsed {
		rt.maxUsed = n
	}
	if rt.trace != nil {
		fmt.Fprintf(rt.trace, "REGS: alloc %s for %s, %d free\n", reg, purpose, len(rt.free))
	}
	return reg, true
}

// Free returns reg to the pool
func (rt *RegisterTracker) Free(reg string) {
	if _, ok := rt.inUse[reg]; !ok {
		panic(FatalError(fmt.Sprintf("freeing register %s that is not in use", reg)))
	}
	delete(rt.inUse, reg)
	rt.free = append(rt.free, reg)
	if rt.trace != nil {
		fmt.Fprintf(rt.trace, "REGS: free %s, %d free\n", reg, len(rt.free))
	}
}

// IsInUse returns true if reg is currently allocated
func (rt *RegisterTracker) IsInUse(reg string) bool {
	_, ok := rt.inUse[reg]
	return ok
}

// InUse returns the number of live registers
func (rt *RegisterTracker) InUse() int {
	return len(rt.inUse)
}

// MaxUsed returns the high-water mark of live registers
func (rt *RegisterTracker) MaxUsed() int {
	return rt.maxUsed
}

// Size returns the number of registers in the pool
func (rt *RegisterTracker) Size() int {
	return rt.size
}
