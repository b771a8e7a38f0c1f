// Completion: 100% - ARM64 emulator for the register pool backend complete
package main

import (
	"fmt"

	"github.com/xyproto/expjit/internal/engine"
)

// arm64ReturnSentinel is the link register value a top level ret jumps to
const arm64ReturnSentinel = -1

// ARM64Emulator runs register pool backend code without executing it natively.
// x0 starts out as the address of the environment table, as a native call
// would pass it.
type ARM64Emulator struct {
	regs     [32]int64 // x31 reads as zero
	pc       int
	code     []byte
	data     *DataArea
	halted   bool
	Steps    int
	MaxSteps int
}

// NewARM64Emulator creates an emulator for code reading data
func NewARM64Emulator(code []byte, data *DataArea) *ARM64Emulator {
	e := &ARM64Emulator{
		code:     code,
		data:     data,
		MaxSteps: 1 << 20,
	}
	e.regs[0] = int64(data.Base())
	e.regs[30] = arm64ReturnSentinel
	return e
}

func (e *ARM64Emulator) reg(r uint8) int64 {
	if r == 31 {
		return 0
	}
	return e.regs[r]
}

func (e *ARM64Emulator) setReg(r uint8, v int64) {
	if r != 31 {
		e.regs[r] = v
	}
}

// Step executes one instruction
func (e *ARM64Emulator) Step() error {
	if e.pc < 0 || e.pc >= len(e.code) {
		return FatalError(fmt.Sprintf("aarch64 emulator: pc %d is outside the code", e.pc))
	}
	in, err := DecodeARM64(e.code, e.pc)
	if err != nil {
		return err
	}
	e.pc += 4
	e.Steps++

	switch in.Op {
	case OpMovImm:
		e.setReg(in.Rd, in.Imm)
	case OpMovK:
		mask := int64(0xFFFF) << in.Shift
		e.setReg(in.Rd, e.reg(in.Rd)&^mask|in.Imm<<in.Shift)
	case OpLoad:
		if in.Rn == 31 {
			return FatalError(fmt.Sprintf("aarch64 emulator: sp based load at offset %d", in.Offset))
		}
		v, ok := e.data.Load(uint64(e.reg(in.Rn) + in.Imm))
		if !ok {
			return FatalError(fmt.Sprintf("aarch64 emulator: %s at offset %d reads outside the data area", in.Text, in.Offset))
		}
		e.setReg(in.Rd, v)
	case OpAdd:
		e.setReg(in.Rd, fold(KindAdd, e.reg(in.Rn), e.reg(in.Rm)))
	case OpMul:
		e.setReg(in.Rd, fold(KindMul, e.reg(in.Rn), e.reg(in.Rm)))
	case OpRet:
		target := e.reg(in.Rn)
		if target == arm64ReturnSentinel {
			e.halted = true
			return nil
		}
		e.pc = int(target)
	default:
		return undecodable(engine.ArchARM64, e.code, in.Offset)
	}
	return nil
}

// Run executes until the top level ret and returns x0
func (e *ARM64Emulator) Run() (int64, error) {
	for !e.halted {
		if e.Steps >= e.MaxSteps {
			return 0, FatalError(fmt.Sprintf("aarch64 emulator: no ret after %d steps", e.Steps))
		}
		if err := e.Step(); err != nil {
			return 0, err
		}
	}
	return e.regs[0], nil
}

// Register returns the value of xN, for tests
func (e *ARM64Emulator) Register(n int) int64 {
	return e.reg(uint8(n))
}
