// Package disasm implements a disassembler for the Sharp LR35902 opcode
// space, grounded on the teacher's disassemble package: a single Step
// function that reads an instruction at a given address and returns its
// text plus the byte count to advance by, without interpreting control
// flow (a JP target is never followed).
package disasm

import (
	"fmt"
	"strings"

	"github.com/jmchacon/gbcore/cpu"
)

// Reader is the minimal byte-addressable source Step needs; cpu.Bus and
// peripheral.Bus both satisfy it.
type Reader interface {
	Read(addr uint16) uint8
}

// Step disassembles the instruction at pc and returns its text and the
// number of bytes (including the opcode, and the CB prefix byte when
// present) the caller should advance PC by to reach the next instruction.
func Step(pc uint16, r Reader) (string, int) {
	op := r.Read(pc)
	if op == 0xCB {
		sub := r.Read(pc + 1)
		name := cpu.PrefixedOpcodeName(sub)
		if name == "" {
			return fmt.Sprintf(".DB 0xCB, 0x%.2X", sub), 2
		}
		return withOperand(name, pc+2, r, 2)
	}

	name := cpu.OpcodeName(op)
	if name == "" {
		return fmt.Sprintf(".DB 0x%.2X", op), 1
	}
	return withOperand(name, pc+1, r, 1)
}

// withOperand expands a mnemonic's "d8"/"a16"/"r8" placeholder (if any)
// into the concrete operand value read from r at operandPC, and reports
// the total instruction length: opcodeBytes (1, or 2 across a CB prefix)
// plus however many operand bytes the mnemonic consumed.
func withOperand(name string, operandPC uint16, r Reader, opcodeBytes int) (string, int) {
	if strings.Contains(name, "PREFIX") {
		return name, opcodeBytes
	}

	switch {
	case strings.Contains(name, "a16"):
		lo := r.Read(operandPC)
		hi := r.Read(operandPC + 1)
		addr := uint16(hi)<<8 | uint16(lo)
		text := strings.Replace(name, "a16", fmt.Sprintf("0x%.4X", addr), 1)
		return text, opcodeBytes + 2
	case strings.Contains(name, "d8"):
		v := r.Read(operandPC)
		text := strings.Replace(name, "d8", fmt.Sprintf("0x%.2X", v), 1)
		return text, opcodeBytes + 1
	case strings.Contains(name, "r8"):
		v := int8(r.Read(operandPC))
		text := strings.Replace(name, "r8", fmt.Sprintf("%+d", v), 1)
		return text, opcodeBytes + 1
	case strings.Contains(name, "a8"):
		v := r.Read(operandPC)
		text := strings.Replace(name, "a8", fmt.Sprintf("0xFF00+0x%.2X", v), 1)
		return text, opcodeBytes + 1
	default:
		return name, opcodeBytes
	}
}
