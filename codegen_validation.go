package main

import (
	"fmt"
	"strings"

	"github.com/xyproto/expjit/internal/engine"
)

// validateGeneratedCode decodes the code emitted for arch before it is sealed
// and returns every inconsistency found. An empty result means the code
// decodes completely, has the expected number of instructions, only touches
// the data area, keeps the stack balanced and ends in ret.
func validateGeneratedCode(arch engine.Arch, code []byte, instructions int, data *DataArea) []string {
	var problems []string

	instrs, err := Disassemble(arch, code)
	if err != nil {
		problems = append(problems, err.Error())
	}
	if err == nil && len(instrs) != instructions {
		problems = append(problems, fmt.Sprintf("emitted %d instructions but %d decode", instructions, len(instrs)))
	}

	depth := 0
	for _, in := range instrs {
		switch in.Op {
		case OpLoad, OpStore:
			if arch != engine.ArchX86_64 {
				continue
			}
			if _, ok := data.Load(in.Addr); !ok {
				problems = append(problems, fmt.Sprintf("%04x: %s addresses memory outside the data area", in.Offset, in.Text))
			}
		case OpPush:
			depth++
		case OpPop:
			depth--
			if depth < 0 {
				problems = append(problems, fmt.Sprintf("%04x: %s underflows the stack", in.Offset, in.Text))
			}
		}
	}
	if depth > 0 {
		problems = append(problems, fmt.Sprintf("%d words left on the stack at return", depth))
	}

	if len(instrs) == 0 || instrs[len(instrs)-1].Op != OpRet {
		problems = append(problems, "code does not end in ret")
	}
	return problems
}

// checkGeneratedCode turns validation problems into an internal error
func checkGeneratedCode(arch engine.Arch, code []byte, instructions int, data *DataArea) error {
	problems := validateGeneratedCode(arch, code, instructions, data)
	if len(problems) == 0 {
		return nil
	}
	return FatalError(fmt.Sprintf("%s code failed validation: %s", arch, strings.Join(problems, "; ")))
}
