// Completion: 100% - ARM64 instructions complete for the register pool backend
package main

import (
	"fmt"
)

// ARM64 instruction encoding
// ARM64 uses fixed 32-bit little-endian instructions

// ARM64 Register mapping
var arm64GPRegs = map[string]uint32{
	"x0": 0, "x1": 1, "x2": 2, "x3": 3, "x4": 4, "x5": 5, "x6": 6, "x7": 7,
	"x8": 8, "x9": 9, "x10": 10, "x11": 11, "x12": 12, "x13": 13, "x14": 14, "x15": 15,
	"x16": 16, "x17": 17, "x18": 18, "x19": 19, "x20": 20, "x21": 21, "x22": 22, "x23": 23,
	"x24": 24, "x25": 25, "x26": 26, "x27": 27, "x28": 28, "x29": 29, "x30": 30,
	"xzr": 31, "fp": 29, "lr": 30,
}

// Base opcodes, with every operand field zero
const (
	arm64MOVZ uint32 = 0xD2800000 // MOVZ Xd, #imm16, LSL #hw*16
	arm64MOVN uint32 = 0x92800000 // MOVN Xd, #imm16, LSL #hw*16
	arm64MOVK uint32 = 0xF2800000 // MOVK Xd, #imm16, LSL #hw*16
	arm64LDR  uint32 = 0xF9400000 // LDR Xt, [Xn, #imm12*8]
	arm64ADD  uint32 = 0x8B000000 // ADD Xd, Xn, Xm (shifted register, shift 0)
	arm64MUL  uint32 = 0x9B007C00 // MADD Xd, Xn, Xm, XZR
	arm64RET  uint32 = 0xD65F0000 // RET Xn
)

// ARM64Out wraps Out for ARM64-specific instructions
type ARM64Out struct {
	out *Out
}

// encodeInstr writes a 32-bit ARM64 instruction in little-endian format
func (a *ARM64Out) encodeInstr(mnemonic string, instr uint32) {
	a.out.emit32(mnemonic, instr)
}

// arm64RegisterName renders an encoding, using xzr for 31
func arm64RegisterName(enc uint32) string {
	if enc == 31 {
		return "xzr"
	}
	return fmt.Sprintf("x%d", enc)
}

func arm64Reg(name string) (uint32, error) {
	r, ok := arm64GPRegs[name]
	if !ok {
		return 0, fmt.Errorf("invalid ARM64 register: %s", name)
	}
	return r, nil
}

// ARM64 Instruction encodings

// movWide encodes MOVZ, MOVN and MOVK: opc | hw | imm16 | Rd
func (a *ARM64Out) movWide(op uint32, name, dest string, imm16 uint16, hw uint32) error {
	rd, err := arm64Reg(dest)
	if err != nil {
		return err
	}
	if hw > 3 {
		return fmt.Errorf("invalid halfword shift for %s: %d", name, hw*16)
	}
	instr := op | hw<<21 | uint32(imm16)<<5 | rd
	if hw == 0 {
		a.encodeInstr(fmt.Sprintf("%s %s, #0x%x", name, dest, imm16), instr)
	} else {
		a.encodeInstr(fmt.Sprintf("%s %s, #0x%x, lsl #%d", name, dest, imm16, hw*16), instr)
	}
	return nil
}

// MovZ64 sets dest to imm16 << (hw*16), zeroing the other bits
func (a *ARM64Out) MovZ64(dest string, imm16 uint16, hw uint32) error {
	return a.movWide(arm64MOVZ, "movz", dest, imm16, hw)
}

// MovN64 sets dest to ^(imm16 << (hw*16))
func (a *ARM64Out) MovN64(dest string, imm16 uint16, hw uint32) error {
	return a.movWide(arm64MOVN, "movn", dest, imm16, hw)
}

// MovK64 replaces one halfword of dest, keeping the others
func (a *ARM64Out) MovK64(dest string, imm16 uint16, hw uint32) error {
	return a.movWide(arm64MOVK, "movk", dest, imm16, hw)
}

// MovImm64 loads any 64-bit value with the shortest movz/movn + movk sequence.
// Values in 0..0xFFFF take a single movz and values in -0x10000..-1 a single
// movn. Anything else starts from whichever of movz and movn leaves fewer
// halfwords to patch, then sets each remaining halfword with movk.
func (a *ARM64Out) MovImm64(dest string, imm int64) error {
	u := uint64(imm)
	var halves [4]uint16
	zeros, ones := 0, 0
	for i := range halves {
		halves[i] = uint16(u >> (16 * i))
		switch halves[i] {
		case 0x0000:
			zeros++
		case 0xFFFF:
			ones++
		}
	}

	// Halfwords equal to fill are produced by the base instruction
	fill := uint16(0x0000)
	inverted := ones > zeros
	if inverted {
		fill = 0xFFFF
	}

	first := true
	for i, h := range halves {
		if h == fill {
			continue
		}
		var err error
		switch {
		case first && inverted:
			err = a.MovN64(dest, ^h, uint32(i))
		case first:
			err = a.MovZ64(dest, h, uint32(i))
		default:
			err = a.MovK64(dest, h, uint32(i))
		}
		if err != nil {
			return err
		}
		first = false
	}

	// 0 and -1: every halfword equals the fill
	if first {
		if inverted {
			return a.MovN64(dest, 0, 0)
		}
		return a.MovZ64(dest, 0, 0)
	}
	return nil
}

// LDR (immediate, unsigned offset): LDR Xt, [Xn, #offset]
// offset must be a multiple of 8 below 32768
func (a *ARM64Out) LdrImm64(dest, base string, offset int32) error {
	rt, err := arm64Reg(dest)
	if err != nil {
		return err
	}
	rn, err := arm64Reg(base)
	if err != nil {
		return err
	}
	if offset < 0 || offset%8 != 0 || offset/8 > 0xFFF {
		return fmt.Errorf("offset out of range for LDR: %d", offset)
	}
	instr := arm64LDR | uint32(offset/8)<<10 | rn<<5 | rt
	a.encodeInstr(fmt.Sprintf("ldr %s, [%s, #%d]", dest, base, offset), instr)
	return nil
}

// ADD (shifted register): ADD Xd, Xn, Xm
func (a *ARM64Out) AddReg64(dest, op1, op2 string) error {
	rd, err := arm64Reg(dest)
	if err != nil {
		return err
	}
	rn, err := arm64Reg(op1)
	if err != nil {
		return err
	}
	rm, err := arm64Reg(op2)
	if err != nil {
		return err
	}
	a.encodeInstr(fmt.Sprintf("add %s, %s, %s", dest, op1, op2), arm64ADD|rm<<16|rn<<5|rd)
	return nil
}

// MUL: MUL Xd, Xn, Xm (alias of MADD Xd, Xn, Xm, XZR)
func (a *ARM64Out) Mul64(dest, op1, op2 string) error {
	rd, err := arm64Reg(dest)
	if err != nil {
		return err
	}
	rn, err := arm64Reg(op1)
	if err != nil {
		return err
	}
	rm, err := arm64Reg(op2)
	if err != nil {
		return err
	}
	a.encodeInstr(fmt.Sprintf("mul %s, %s, %s", dest, op1, op2), arm64MUL|rm<<16|rn<<5|rd)
	return nil
}

// RET: return to the address in reg (normally lr)
func (a *ARM64Out) Return(reg string) error {
	rn, err := arm64Reg(reg)
	if err != nil {
		return err
	}
	a.encodeInstr("ret", arm64RET|rn<<5)
	return nil
}
