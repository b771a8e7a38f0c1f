// Completion: 100% - ARM64 register pool backend complete
package main

import (
	"fmt"
	"io"
)

// ARM64 register roles:
//   - x0: environment table pointer on entry, result on return
//   - x1..x15: the allocation pool (caller-saved, never touched by Go code
//     across the call)
const (
	arm64EnvReg    = "x0"
	arm64ResultReg = "x0"
)

// ARM64CodeGen emits code that keeps every live value in its own register.
// A node's register is freed once all AST edges that reference it have
// consumed it, so the number of live registers follows the sharing counts.
type ARM64CodeGen struct {
	pool      *NodePool
	out       *Out
	data      *DataArea
	regs      *RegisterTracker
	assigned  map[NodeRef]string // register of every emitted node
	remaining []int              // outstanding references, a copy of Shares
	root      NodeRef
	trace     io.Writer
}

// NewARM64CodeGen creates a generator with a pool of the given size (x1 upwards)
func NewARM64CodeGen(pool *NodePool, out *Out, data *DataArea, poolSize int, trace io.Writer) *ARM64CodeGen {
	return &ARM64CodeGen{
		pool:     pool,
		out:      out,
		data:     data,
		regs:     NewRegisterTracker(ARM64PoolRegisters(poolSize), trace),
		assigned: make(map[NodeRef]string),
		root:     NoNode,
		trace:    trace,
	}
}

// Generate emits the whole function for root. Share counts must be marked.
// The pool itself is not modified: the counts are consumed from a copy.
func (g *ARM64CodeGen) Generate(root NodeRef) error {
	g.root = root
	nodes := g.pool.Nodes()
	g.remaining = make([]int, len(nodes))
	for i, n := range nodes {
		g.remaining[i] = n.Shares
	}

	if err := g.compile(root); err != nil {
		return err
	}
	g.out.Ret()
	return g.out.Err()
}

// MaxRegisters returns the high-water mark of live pool registers
func (g *ARM64CodeGen) MaxRegisters() int {
	return g.regs.MaxUsed()
}

// LiveRegisters returns the number of pool registers still allocated
func (g *ARM64CodeGen) LiveRegisters() int {
	return g.regs.InUse()
}

// alloc assigns a register to ref: the pinned result register for the
// root, otherwise the next free pool register
func (g *ARM64CodeGen) alloc(ref NodeRef) (string, error) {
	if ref == g.root {
		g.assigned[ref] = arm64ResultReg
		return arm64ResultReg, nil
	}
	reg, ok := g.regs.Alloc(fmt.Sprintf("node %d", ref))
	if !ok {
		return "", RegisterExhaustionError(g.regs.Size(), ref)
	}
	g.assigned[ref] = reg
	return reg, nil
}

// use consumes one reference to the register of ref and frees it with the last one
func (g *ARM64CodeGen) use(ref NodeRef) {
	if g.remaining[ref] <= 0 {
		panic(FatalError(fmt.Sprintf("node %d used more often than it is referenced", ref)))
	}
	g.remaining[ref]--
	if g.remaining[ref] == 0 && ref != g.root {
		g.regs.Free(g.assigned[ref])
	}
}

func (g *ARM64CodeGen) compile(ref NodeRef) error {
	if _, ok := g.assigned[ref]; ok {
		return nil
	}

	n := g.pool.At(ref)
	switch n.Kind {
	case KindInt:
		reg, err := g.alloc(ref)
		if err != nil {
			return err
		}
		g.out.MovImmToReg(reg, n.Value)
		return nil
	case KindName:
		reg, err := g.alloc(ref)
		if err != nil {
			return err
		}
		g.out.LdrRegFromBase(reg, arm64EnvReg, g.data.EnvOffset(byte(n.Value)))
		return nil
	}

	if err := g.compile(n.Right); err != nil {
		return err
	}
	if err := g.compile(n.Left); err != nil {
		return err
	}
	rn, rm := g.assigned[n.Left], g.assigned[n.Right]
	g.use(n.Right)
	g.use(n.Left)

	reg, err := g.alloc(ref)
	if err != nil {
		return err
	}
	switch n.Kind {
	case KindAdd:
		g.out.AddRegToRegToReg(reg, rn, rm)
	default:
		g.out.MulRegToRegToReg(reg, rn, rm)
	}
	return nil
}
