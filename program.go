// Completion: 100% - Compiled program complete
package main

import (
	"io"

	"github.com/xyproto/expjit/internal/engine"
)

// CodegenStats describes the code one compilation produced
type CodegenStats struct {
	Instructions int
	CodeBytes    int
	CacheSlots   int // x86_64: shared nodes stored to memory
	StackDepth   int // x86_64: deepest push nesting, prologue included
	Registers    int // aarch64: most pool registers live at once
}

// Program is the sealed result of a compilation
type Program struct {
	Arch   engine.Arch
	Source string
	Pool   *NodePool
	Root   NodeRef
	Stats  CodegenStats

	mem     *ExecMemory
	codeLen int
}

// Instructions returns the number of emitted machine instructions
func (p *Program) Instructions() int {
	return p.Stats.Instructions
}

// Code returns the emitted machine code
func (p *Program) Code() []byte {
	if p.mem == nil || p.mem.Closed() {
		return nil
	}
	return p.mem.Code()[:p.codeLen]
}

// Unparse renders the rewritten AST with sharing markers
func (p *Program) Unparse() string {
	return p.Pool.Unparse(p.Root)
}

// Evaluate computes the value with the tree-walking evaluator
func (p *Program) Evaluate(env *Environment) int64 {
	return p.Pool.Evaluate(p.Root, env)
}

// Native returns true when Run calls the machine code directly
func (p *Program) Native() bool {
	return p.mem != nil && p.mem.Native() && p.Arch == engine.HostArch()
}

// Run executes the program with env, natively when possible and in the
// emulator for the program's arch otherwise
func (p *Program) Run(env *Environment) (int64, error) {
	if p.mem == nil || p.mem.Closed() {
		return 0, FatalError("run of a closed program")
	}
	p.mem.Data().LoadEnv(env)
	if p.Native() {
		return callNative(p.mem)
	}
	return p.Emulate(env)
}

// Emulate executes the program in the emulator for its arch, even on a
// matching host
func (p *Program) Emulate(env *Environment) (int64, error) {
	if p.mem == nil || p.mem.Closed() {
		return 0, FatalError("run of a closed program")
	}
	data := p.mem.Data()
	data.LoadEnv(env)
	switch p.Arch {
	case engine.ArchX86_64:
		return NewX86_64Emulator(p.Code(), data).Run()
	case engine.ArchARM64:
		return NewARM64Emulator(p.Code(), data).Run()
	default:
		return 0, FatalError("no emulator for " + p.Arch.String())
	}
}

// Disassemble decodes the emitted code
func (p *Program) Disassemble() ([]Instruction, error) {
	return Disassemble(p.Arch, p.Code())
}

// WriteListing writes a disassembly table of the program to w
func (p *Program) WriteListing(w io.Writer) error {
	instrs, err := p.Disassemble()
	if err != nil {
		return err
	}
	WriteListing(w, p.Arch, instrs)
	return nil
}

// Close releases the memory region
func (p *Program) Close() error {
	if p.mem == nil {
		return nil
	}
	return p.mem.Close()
}
