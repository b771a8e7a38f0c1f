// Completion: 100% - x86_64 accumulator backend complete
package main

import (
	"fmt"
	"io"
)

// X86_64CodeGen emits code with an accumulator discipline: every
// subexpression leaves its value in rax, the right operand of a binary node
// waits on the stack while the left one is computed, and shared nodes are
// stored to a cache slot the first time and reloaded from it afterwards.
type X86_64CodeGen struct {
	pool  *NodePool
	out   *Out
	data  *DataArea
	stack *StackValidator
	slots map[NodeRef]uint64 // cache slot address per materialized node
	trace io.Writer
}

// NewX86_64CodeGen creates a generator writing into out, with environment
// and cache slots in data
func NewX86_64CodeGen(pool *NodePool, out *Out, data *DataArea, maxStack int, trace io.Writer) *X86_64CodeGen {
	return &X86_64CodeGen{
		pool:  pool,
		out:   out,
		data:  data,
		stack: NewStackValidator(maxStack, trace),
		slots: make(map[NodeRef]uint64),
		trace: trace,
	}
}

// Generate emits the whole function for root. Share counts must be marked.
func (g *X86_64CodeGen) Generate(root NodeRef) error {
	// Prologue: rbx is the secondary operand register
	if err := g.stack.Push("rbx"); err != nil {
		return err
	}
	g.out.PushReg("rbx")

	if err := g.compile(root); err != nil {
		return err
	}

	g.stack.Pop("rbx")
	g.out.PopReg("rbx")
	g.out.Ret()
	g.stack.Validate(0, "epilogue")
	return g.out.Err()
}

// SlotsUsed returns the number of shared nodes that got a cache slot
func (g *X86_64CodeGen) SlotsUsed() int {
	return len(g.slots)
}

// MaxStackDepth returns the deepest push nesting of the generated code
func (g *X86_64CodeGen) MaxStackDepth() int {
	return g.stack.HighWater()
}

func (g *X86_64CodeGen) compile(ref NodeRef) error {
	n := g.pool.At(ref)
	switch n.Kind {
	case KindInt:
		g.out.MovImmToReg("rax", n.Value)
		return nil
	case KindName:
		g.out.MovMemToReg("rax", g.data.EnvAddr(byte(n.Value)))
		return nil
	}

	// CSE reuse
	if addr, ok := g.slots[ref]; ok {
		if g.trace != nil {
			fmt.Fprintf(g.trace, "DEBUG: node %d reloaded from %#x\n", ref, addr)
		}
		g.out.MovMemToReg("rax", addr)
		return nil
	}

	if err := g.compile(n.Right); err != nil {
		return err
	}
	if err := g.stack.Push("rax"); err != nil {
		return err
	}
	g.out.PushReg("rax")
	if err := g.compile(n.Left); err != nil {
		return err
	}
	g.stack.Pop("rbx")
	g.out.PopReg("rbx")

	switch n.Kind {
	case KindAdd:
		g.out.AddRegToReg("rax", "rbx")
	case KindMul:
		g.out.ImulRegWithReg("rax", "rbx")
	}

	if n.IsShared() {
		addr, err := g.data.AllocSlot()
		if err != nil {
			return err
		}
		g.out.MovRegToMem(addr, "rax")
		g.slots[ref] = addr
	}
	return nil
}
