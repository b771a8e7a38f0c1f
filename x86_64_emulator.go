// Completion: 100% - x86_64 emulator for the accumulator backend complete
package main

import (
	"fmt"

	"github.com/xyproto/expjit/internal/engine"
)

// X86_64Emulator runs accumulator backend code without executing it natively.
// Memory operands are resolved against the program's data area, so the
// absolute addresses baked into the code work unchanged.
type X86_64Emulator struct {
	regs     [8]int64
	stack    []int64
	pc       int
	code     []byte
	data     *DataArea
	halted   bool
	Steps    int
	MaxSteps int
}

// NewX86_64Emulator creates an emulator for code reading and writing data
func NewX86_64Emulator(code []byte, data *DataArea) *X86_64Emulator {
	return &X86_64Emulator{
		code:     code,
		data:     data,
		stack:    make([]int64, 0, 16),
		MaxSteps: 1 << 20,
	}
}

// Step executes one instruction
func (e *X86_64Emulator) Step() error {
	if e.pc >= len(e.code) {
		return FatalError(fmt.Sprintf("x86_64 emulator: ran past the end of the code at offset %d", e.pc))
	}
	in, err := DecodeX86_64(e.code, e.pc)
	if err != nil {
		return err
	}
	e.pc += len(in.Bytes)
	e.Steps++

	switch in.Op {
	case OpPush:
		e.stack = append(e.stack, e.regs[in.Rd])
	case OpPop:
		if len(e.stack) == 0 {
			return FatalError(fmt.Sprintf("x86_64 emulator: pop of empty stack at offset %d", in.Offset))
		}
		e.regs[in.Rd] = e.stack[len(e.stack)-1]
		e.stack = e.stack[:len(e.stack)-1]
	case OpMovImm:
		e.regs[in.Rd] = in.Imm
	case OpLoad:
		v, ok := e.data.Load(in.Addr)
		if !ok {
			return e.fault(in)
		}
		e.regs[in.Rd] = v
	case OpStore:
		if !e.data.Store(in.Addr, e.regs[in.Rn]) {
			return e.fault(in)
		}
	case OpAdd:
		e.regs[in.Rd] = fold(KindAdd, e.regs[in.Rn], e.regs[in.Rm])
	case OpMul:
		e.regs[in.Rd] = fold(KindMul, e.regs[in.Rn], e.regs[in.Rm])
	case OpRet:
		// The return address is not modeled: a ret with a balanced stack ends the call
		if len(e.stack) != 0 {
			return FatalError(fmt.Sprintf("x86_64 emulator: ret with %d words left on the stack", len(e.stack)))
		}
		e.halted = true
	default:
		return undecodable(engine.ArchX86_64, e.code, in.Offset)
	}
	return nil
}

// Run executes until ret and returns rax
func (e *X86_64Emulator) Run() (int64, error) {
	for !e.halted {
		if e.Steps >= e.MaxSteps {
			return 0, FatalError(fmt.Sprintf("x86_64 emulator: no ret after %d steps", e.Steps))
		}
		if err := e.Step(); err != nil {
			return 0, err
		}
	}
	return e.regs[0], nil
}

func (e *X86_64Emulator) fault(in Instruction) error {
	return FatalError(fmt.Sprintf("x86_64 emulator: %s at offset %d touches memory outside the data area", in.Text, in.Offset))
}
