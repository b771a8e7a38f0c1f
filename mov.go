// Completion: 100% - Instruction implementation complete
package main

import (
	"fmt"
	"math"

	"github.com/xyproto/expjit/internal/engine"
)

// MOV instructions for loading literals and moving values between the
// accumulator and memory. The accumulator backend only ever moves through
// rax, so the memory forms use the short moffs64 encodings.

// MovImmToReg loads a 64-bit literal into a register
func (o *Out) MovImmToReg(dst string, imm int64) {
	switch o.arch {
	case engine.ArchX86_64:
		o.movX86ImmToReg(dst, imm)
	case engine.ArchARM64:
		if err := (&ARM64Out{out: o}).MovImm64(dst, imm); err != nil {
			panic(FatalError(err.Error()))
		}
	}
}

// MovMemToReg loads the 64-bit word at an absolute address
func (o *Out) MovMemToReg(dst string, addr uint64) {
	switch o.arch {
	case engine.ArchX86_64:
		o.movX86MemToReg(dst, addr)
	}
}

// LdrRegFromBase loads the 64-bit word at base+offset (arm64 only)
func (o *Out) LdrRegFromBase(dst, base string, offset int32) {
	if err := (&ARM64Out{out: o}).LdrImm64(dst, base, offset); err != nil {
		panic(FatalError(err.Error()))
	}
}

// MovRegToMem stores a register to an absolute address
func (o *Out) MovRegToMem(addr uint64, src string) {
	switch o.arch {
	case engine.ArchX86_64:
		o.movX86RegToMem(addr, src)
	}
}

// x86-64 MOV r64, imm
func (o *Out) movX86ImmToReg(dst string, imm int64) {
	reg := mustRegister(o.arch, dst)

	if imm >= math.MinInt32 && imm <= math.MaxInt32 {
		// REX.W + C7 /0 id: sign-extended imm32
		code := []byte{0x48, 0xC7, 0xC0 | reg.Encoding}
		code = append(code, le32(uint32(int32(imm)))...)
		o.emit(fmt.Sprintf("mov %s, %d", dst, imm), code)
		return
	}

	// REX.W + B8+rd io: movabs
	code := []byte{0x48, 0xB8 + reg.Encoding}
	code = append(code, le64(uint64(imm))...)
	o.emit(fmt.Sprintf("movabs %s, %d", dst, imm), code)
}

// x86-64 MOV rax, moffs64
func (o *Out) movX86MemToReg(dst string, addr uint64) {
	if dst != "rax" {
		panic(FatalError("moffs64 load needs rax, got " + dst))
	}
	code := append([]byte{0x48, 0xA1}, le64(addr)...)
	o.emit(fmt.Sprintf("mov rax, [0x%x]", addr), code)
}

// x86-64 MOV moffs64, rax
func (o *Out) movX86RegToMem(addr uint64, src string) {
	if src != "rax" {
		panic(FatalError("moffs64 store needs rax, got " + src))
	}
	code := append([]byte{0x48, 0xA3}, le64(addr)...)
	o.emit(fmt.Sprintf("mov [0x%x], rax", addr), code)
}
