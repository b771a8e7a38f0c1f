// Completion: 100% - Utility module complete
package main

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/xyproto/expjit/internal/engine"
)

// Out is the instruction sink shared by both code generators. Each named
// builder (MovImmToReg, AddRegToReg, ...) ends up in emit, which writes the
// encoded bytes, counts the instruction and traces it when verbose.
type Out struct {
	arch  engine.Arch
	buf   *SafeBuffer
	trace io.Writer
	count int
}

// NewOut creates an emitter for arch writing into buf. trace may be nil.
func NewOut(arch engine.Arch, buf *SafeBuffer, trace io.Writer) *Out {
	return &Out{
		arch:  arch,
		buf:   buf,
		trace: trace,
	}
}

// Arch returns the target architecture
func (o *Out) Arch() engine.Arch {
	return o.arch
}

// emit writes one complete instruction
func (o *Out) emit(mnemonic string, code []byte) {
	if o.trace != nil {
		fmt.Fprintf(o.trace, "%s:", mnemonic)
		for _, b := range code {
			fmt.Fprintf(o.trace, " %x", b)
		}
		fmt.Fprintln(o.trace)
	}
	if _, err := o.buf.Write(code); err != nil {
		return
	}
	o.count++
}

// emit32 writes one fixed-width little-endian instruction word
func (o *Out) emit32(mnemonic string, instr uint32) {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], instr)
	o.emit(mnemonic, buf[:])
}

// Instructions returns the number of instructions emitted so far
func (o *Out) Instructions() int {
	return o.count
}

// Len returns the number of bytes emitted so far
func (o *Out) Len() int {
	return o.buf.Len()
}

// Err returns the first capacity error of the underlying buffer
func (o *Out) Err() error {
	return o.buf.Err()
}

// le32 and le64 encode little-endian immediates and addresses
func le32(v uint32) []byte {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	return b[:]
}

func le64(v uint64) []byte {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	return b[:]
}
