// Completion: 100% - Instruction implementation complete
package main

import (
	"github.com/xyproto/expjit/internal/engine"
)

// PUSH/POP instructions for the accumulator backend:
//   - saving rbx in the prologue and restoring it in the epilogue
//   - holding the right operand while the left one is computed

// PushReg pushes a register value onto the stack
func (o *Out) PushReg(reg string) {
	switch o.arch {
	case engine.ArchX86_64:
		o.pushX86Reg(reg)
	}
}

// PopReg pops a value from the stack into a register
func (o *Out) PopReg(reg string) {
	switch o.arch {
	case engine.ArchX86_64:
		o.popX86Reg(reg)
	}
}

// x86-64 PUSH reg
func (o *Out) pushX86Reg(reg string) {
	r := mustRegister(o.arch, reg)
	// PUSH uses compact encoding: 0x50 + reg
	o.emit("push "+reg, []byte{0x50 + r.Encoding})
}

// x86-64 POP reg
func (o *Out) popX86Reg(reg string) {
	r := mustRegister(o.arch, reg)
	// POP uses compact encoding: 0x58 + reg
	o.emit("pop "+reg, []byte{0x58 + r.Encoding})
}
