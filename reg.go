// Completion: 100% - Utility module complete
package main

import (
	"fmt"

	"github.com/xyproto/expjit/internal/engine"
)

// Register definitions for both supported architectures

type Register struct {
	Name     string
	Size     int   // Size in bits
	Encoding uint8 // Encoding for instruction generation
}

// x86_64 registers the accumulator backend touches
var x86_64Registers = map[string]Register{
	"rax": {Name: "rax", Size: 64, Encoding: 0},
	"rcx": {Name: "rcx", Size: 64, Encoding: 1},
	"rdx": {Name: "rdx", Size: 64, Encoding: 2},
	"rbx": {Name: "rbx", Size: 64, Encoding: 3},
	"rsp": {Name: "rsp", Size: 64, Encoding: 4},
	"rbp": {Name: "rbp", Size: 64, Encoding: 5},
	"rsi": {Name: "rsi", Size: 64, Encoding: 6},
	"rdi": {Name: "rdi", Size: 64, Encoding: 7},
}

// x86_64RegisterNames maps an encoding back to its name, for the disassembler
var x86_64RegisterNames = [8]string{"rax", "rcx", "rdx", "rbx", "rsp", "rbp", "rsi", "rdi"}

// GetRegister looks up a register by name for the given architecture
func GetRegister(arch engine.Arch, name string) (Register, bool) {
	var r Register
	var ok bool
	switch arch {
	case engine.ArchX86_64:
		r, ok = x86_64Registers[name]
	case engine.ArchARM64:
		var enc uint32
		enc, ok = arm64GPRegs[name]
		r = Register{Name: name, Size: 64, Encoding: uint8(enc)}
	}
	return r, ok
}

// mustRegister looks up a register the code generator chose itself. An
// unknown name here is a bug in the generator, not in the input.
func mustRegister(arch engine.Arch, name string) Register {
	r, ok := GetRegister(arch, name)
	if !ok {
		panic(FatalError(fmt.Sprintf("unknown %s register %q", arch, name)))
	}
	return r
}
