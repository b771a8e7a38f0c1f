// Completion: 100% - Disassembler for the emitted instruction subset complete
package main

import (
	"encoding/binary"
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/xyproto/expjit/internal/engine"
)

// Opcode is the operation of a decoded instruction, shared by both ISAs
type Opcode uint8

const (
	OpPush   Opcode = iota // push Rd
	OpPop                  // pop Rd
	OpMovImm               // Rd = Imm
	OpMovK                 // Rd[Shift:Shift+16] = Imm
	OpLoad                 // Rd = [Addr] (x86) or [Rn + Imm] (arm64)
	OpStore                // [Addr] = Rn
	OpAdd                  // Rd = Rn + Rm
	OpMul                  // Rd = Rn * Rm
	OpRet                  // return (to Rn on arm64)
)

// Instruction is one decoded machine instruction
type Instruction struct {
	Offset int
	Bytes  []byte
	Op     Opcode
	Rd     uint8
	Rn     uint8
	Rm     uint8
	Imm    int64
	Shift  uint
	Addr   uint64
	Text   string
}

// Decode decodes the instruction at offset pc of code
func Decode(arch engine.Arch, code []byte, pc int) (Instruction, error) {
	switch arch {
	case engine.ArchX86_64:
		return DecodeX86_64(code, pc)
	case engine.ArchARM64:
		return DecodeARM64(code, pc)
	default:
		return Instruction{}, fmt.Errorf("no decoder for %s", arch)
	}
}

// Disassemble decodes all of code
func Disassemble(arch engine.Arch, code []byte) ([]Instruction, error) {
	var instrs []Instruction
	for pc := 0; pc < len(code); {
		in, err := Decode(arch, code, pc)
		if err != nil {
			return instrs, err
		}
		instrs = append(instrs, in)
		pc += len(in.Bytes)
	}
	return instrs, nil
}

func undecodable(arch engine.Arch, code []byte, pc int) error {
	end := pc + 4
	if end > len(code) {
		end = len(code)
	}
	return FatalError(fmt.Sprintf("%s: cannot decode % x at offset %d", arch, code[pc:end], pc))
}

// DecodeX86_64 decodes the accumulator backend's instruction subset
func DecodeX86_64(code []byte, pc int) (Instruction, error) {
	in := Instruction{Offset: pc}
	rest := code[pc:]
	take := func(n int) bool {
		if len(rest) < n {
			return false
		}
		in.Bytes = rest[:n]
		return true
	}
	bad := func() (Instruction, error) {
		return Instruction{}, undecodable(engine.ArchX86_64, code, pc)
	}
	if len(rest) == 0 {
		return bad()
	}

	b := rest[0]
	switch {
	case b >= 0x50 && b <= 0x57:
		take(1)
		in.Op, in.Rd = OpPush, b-0x50
		in.Text = "push " + x86_64RegisterNames[in.Rd]
		return in, nil
	case b >= 0x58 && b <= 0x5F:
		take(1)
		in.Op, in.Rd = OpPop, b-0x58
		in.Text = "pop " + x86_64RegisterNames[in.Rd]
		return in, nil
	case b == 0xC3:
		take(1)
		in.Op = OpRet
		in.Text = "ret"
		return in, nil
	case b != 0x48 || len(rest) < 2:
		return bad()
	}

	// REX.W forms
	op := rest[1]
	switch {
	case op == 0xC7 && len(rest) >= 3 && rest[2]&0xF8 == 0xC0:
		if !take(7) {
			return bad()
		}
		in.Op, in.Rd = OpMovImm, rest[2]&7
		in.Imm = int64(int32(binary.LittleEndian.Uint32(rest[3:7])))
		in.Text = fmt.Sprintf("mov %s, %d", x86_64RegisterNames[in.Rd], in.Imm)
	case op >= 0xB8 && op <= 0xBF:
		if !take(10) {
			return bad()
		}
		in.Op, in.Rd = OpMovImm, op-0xB8
		in.Imm = int64(binary.LittleEndian.Uint64(rest[2:10]))
		in.Text = fmt.Sprintf("movabs %s, %d", x86_64RegisterNames[in.Rd], in.Imm)
	case op == 0xA1:
		if !take(10) {
			return bad()
		}
		in.Op, in.Rd = OpLoad, 0
		in.Addr = binary.LittleEndian.Uint64(rest[2:10])
		in.Text = fmt.Sprintf("mov rax, [0x%x]", in.Addr)
	case op == 0xA3:
		if !take(10) {
			return bad()
		}
		in.Op, in.Rn = OpStore, 0
		in.Addr = binary.LittleEndian.Uint64(rest[2:10])
		in.Text = fmt.Sprintf("mov [0x%x], rax", in.Addr)
	case op == 0x01 && len(rest) >= 3 && rest[2]&0xC0 == 0xC0:
		take(3)
		modrm := rest[2]
		in.Op = OpAdd
		in.Rd, in.Rn, in.Rm = modrm&7, modrm&7, (modrm>>3)&7
		in.Text = fmt.Sprintf("add %s, %s", x86_64RegisterNames[in.Rd], x86_64RegisterNames[in.Rm])
	case op == 0x0F && len(rest) >= 4 && rest[2] == 0xAF && rest[3]&0xC0 == 0xC0:
		take(4)
		modrm := rest[3]
		in.Op = OpMul
		in.Rd, in.Rn, in.Rm = (modrm>>3)&7, (modrm>>3)&7, modrm&7
		in.Text = fmt.Sprintf("imul %s, %s", x86_64RegisterNames[in.Rd], x86_64RegisterNames[in.Rm])
	default:
		return bad()
	}
	return in, nil
}

// DecodeARM64 decodes the register pool backend's instruction subset
func DecodeARM64(code []byte, pc int) (Instruction, error) {
	if len(code)-pc < 4 {
		return Instruction{}, undecodable(engine.ArchARM64, code, pc)
	}
	word := binary.LittleEndian.Uint32(code[pc:])
	in := Instruction{Offset: pc, Bytes: code[pc : pc+4]}
	rd := uint8(word & 31)
	rn := uint8(word >> 5 & 31)
	rm := uint8(word >> 16 & 31)

	movWide := func(name string) {
		hw := uint(word >> 21 & 3)
		imm16 := word >> 5 & 0xFFFF
		in.Rd, in.Shift = rd, hw*16
		if hw == 0 {
			in.Text = fmt.Sprintf("%s %s, #0x%x", name, arm64RegisterName(uint32(rd)), imm16)
		} else {
			in.Text = fmt.Sprintf("%s %s, #0x%x, lsl #%d", name, arm64RegisterName(uint32(rd)), imm16, in.Shift)
		}
	}

	switch {
	case word&0xFF800000 == arm64MOVZ:
		in.Op = OpMovImm
		movWide("movz")
		in.Imm = int64(uint64(word>>5&0xFFFF) << in.Shift)
	case word&0xFF800000 == arm64MOVN:
		in.Op = OpMovImm
		movWide("movn")
		in.Imm = int64(^(uint64(word>>5&0xFFFF) << in.Shift))
	case word&0xFF800000 == arm64MOVK:
		in.Op = OpMovK
		movWide("movk")
		in.Imm = int64(word >> 5 & 0xFFFF)
	case word&0xFFC00000 == arm64LDR:
		in.Op, in.Rd, in.Rn = OpLoad, rd, rn
		in.Imm = int64(word>>10&0xFFF) * 8
		in.Text = fmt.Sprintf("ldr %s, [%s, #%d]", arm64RegisterName(uint32(rd)), arm64RegisterName(uint32(rn)), in.Imm)
	case word&0xFFE0FC00 == arm64ADD:
		in.Op, in.Rd, in.Rn, in.Rm = OpAdd, rd, rn, rm
		in.Text = fmt.Sprintf("add %s, %s, %s", arm64RegisterName(uint32(rd)), arm64RegisterName(uint32(rn)), arm64RegisterName(uint32(rm)))
	case word&0xFFE0FC00 == arm64MUL:
		in.Op, in.Rd, in.Rn, in.Rm = OpMul, rd, rn, rm
		in.Text = fmt.Sprintf("mul %s, %s, %s", arm64RegisterName(uint32(rd)), arm64RegisterName(uint32(rn)), arm64RegisterName(uint32(rm)))
	case word&0xFFFFFC1F == arm64RET:
		in.Op, in.Rn = OpRet, rn
		in.Text = "ret"
		if rn != 30 {
			in.Text = "ret " + arm64RegisterName(uint32(rn))
		}
	default:
		return Instruction{}, undecodable(engine.ArchARM64, code, pc)
	}
	return in, nil
}

// WriteListing renders instrs as a table of offset, bytes and assembly
func WriteListing(w io.Writer, arch engine.Arch, instrs []Instruction) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.SetTitle(fmt.Sprintf("%s (%s)", arch, arch.Discipline()))
	t.AppendHeader(table.Row{"Offset", "Bytes", "Instruction"})
	size := 0
	for _, in := range instrs {
		t.AppendRow(table.Row{fmt.Sprintf("%04x", in.Offset), hexBytes(in.Bytes), in.Text})
		size += len(in.Bytes)
	}
	t.AppendFooter(table.Row{"", fmt.Sprintf("%d bytes", size), fmt.Sprintf("%d instructions", len(instrs))})
	t.Render()
}

func hexBytes(b []byte) string {
	parts := make([]string, len(b))
	for i, c := range b {
		parts[i] = fmt.Sprintf("%02x", c)
	}
	return strings.Join(parts, " ")
}
