// Completion: 100% - Instruction implementation complete
package main

import (
	"github.com/xyproto/expjit/internal/engine"
)

// Ret generates a return instruction. The result is already in the return
// register (rax or x0) when it runs.
func (o *Out) Ret() {
	switch o.arch {
	case engine.ArchX86_64:
		o.retX86()
	case engine.ArchARM64:
		if err := (&ARM64Out{out: o}).Return("lr"); err != nil {
			panic(FatalError(err.Error()))
		}
	}
}

// x86-64 RET (near return)
func (o *Out) retX86() {
	o.emit("ret", []byte{0xC3})
}
