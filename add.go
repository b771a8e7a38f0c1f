// Completion: 100% - Instruction implementation complete
package main

import (
	"fmt"

	"github.com/xyproto/expjit/internal/engine"
)

// ADD instruction for the '+' operator. Wraps around on overflow.

// AddRegToReg generates dst = dst + src
func (o *Out) AddRegToReg(dst, src string) {
	switch o.arch {
	case engine.ArchX86_64:
		o.addX86RegToReg(dst, src)
	default:
		panic(FatalError("two-operand add on " + o.arch.String()))
	}
}

// AddRegToRegToReg generates dst = a + b (three-operand form, arm64 only)
func (o *Out) AddRegToRegToReg(dst, a, b string) {
	if err := (&ARM64Out{out: o}).AddReg64(dst, a, b); err != nil {
		panic(FatalError(err.Error()))
	}
}

// x86-64 ADD r/m64, r64
func (o *Out) addX86RegToReg(dst, src string) {
	d := mustRegister(o.arch, dst)
	s := mustRegister(o.arch, src)

	// REX.W + 01 /r, ModR/M: mod=11, reg=src, rm=dst
	modrm := byte(0xC0) | (s.Encoding&7)<<3 | (d.Encoding & 7)
	o.emit(fmt.Sprintf("add %s, %s", dst, src), []byte{0x48, 0x01, modrm})
}
