// Completion: 100% - Instruction implementation complete
package main

import (
	"fmt"

	"github.com/xyproto/expjit/internal/engine"
)

// IMUL for the '*' operator. Only the low 64 bits of the product are kept,
// which is the same value for signed and unsigned operands.

// ImulRegWithReg generates dst = dst * src
func (o *Out) ImulRegWithReg(dst, src string) {
	switch o.arch {
	case engine.ArchX86_64:
		o.imulX86RegWithReg(dst, src)
	default:
		panic(FatalError("two-operand imul on " + o.arch.String()))
	}
}

// MulRegToRegToReg generates dst = a * b (three-operand form, arm64 only)
func (o *Out) MulRegToRegToReg(dst, a, b string) {
	if err := (&ARM64Out{out: o}).Mul64(dst, a, b); err != nil {
		panic(FatalError(err.Error()))
	}
}

// x86-64 IMUL r64, r/m64
func (o *Out) imulX86RegWithReg(dst, src string) {
	d := mustRegister(o.arch, dst)
	s := mustRegister(o.arch, src)

	// REX.W + 0F AF /r, ModR/M: mod=11, reg=dst, rm=src
	modrm := byte(0xC0) | (d.Encoding&7)<<3 | (s.Encoding & 7)
	o.emit(fmt.Sprintf("imul %s, %s", dst, src), []byte{0x48, 0x0F, 0xAF, modrm})
}
