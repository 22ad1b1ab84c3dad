// Package cpu implements the Sharp LR35902 instruction interpreter: an
// 8080/Z80 hybrid with eight 8 bit registers, a 16 bit stack pointer and
// program counter, and a two-page opcode space (a plain page and a
// 0xCB-prefixed page). Decode uses two 256 entry dispatch tables built
// once in init() rather than a large switch, the one place this package
// departs from the teacher's processOpcode control structure -- see
// DESIGN.md.
package cpu

import (
	"fmt"

	"github.com/jmchacon/gbcore/nvic"
)

// Flag bits within the F register. The low nibble of F is always zero.
const (
	FlagZ = uint8(0x80)
	FlagN = uint8(0x40)
	FlagH = uint8(0x20)
	FlagC = uint8(0x10)
)

// Mode is the CPU's current execution state.
type Mode int

const (
	// ModeRun is normal fetch/decode/execute.
	ModeRun Mode = iota
	// ModeHalt suspends fetching until an interrupt is pending.
	ModeHalt
	// ModeStop suspends the whole SoC until a joypad edge; this package
	// treats any pending interrupt as the wake condition, since the
	// joypad-specific wake edge lives in the peripheral package.
	ModeStop
)

// Bus is everything the CPU needs from the memory map: byte-addressable
// read/write and a handle to the interrupt controller it arbitrates
// against on every Step.
type Bus interface {
	Read(addr uint16) uint8
	Write(addr uint16, val uint8)
	Interrupts() *nvic.Chip
}

// InvalidOpcode is returned by Step when it fetches a byte with no table
// entry (the handful of real opcodes Sharp never defined).
type InvalidOpcode struct {
	Op uint8
	PC uint16
}

func (e InvalidOpcode) Error() string {
	return fmt.Sprintf("invalid opcode 0x%.2X at PC=0x%.4X", e.Op, e.PC)
}

// InvalidCPUState is returned for internal consistency failures that
// should never happen outside of a bug in this package.
type InvalidCPUState struct {
	Reason string
}

func (e InvalidCPUState) Error() string {
	return fmt.Sprintf("invalid CPU state: %s", e.Reason)
}

// Chip holds the complete register file and execution state.
type Chip struct {
	A, F   uint8
	B, C   uint8
	D, E   uint8
	H, L   uint8
	SP, PC uint16

	mode         Mode
	imeScheduled bool
	lastOp       uint8
}

// New returns a powered-on CPU: the register state PowerOn documents, with
// PC at the cartridge entry point 0x0100.
func New() *Chip {
	c := &Chip{}
	c.PowerOn()
	return c
}

// PowerOn resets the CPU to its documented post-reset register state (the
// values the real boot ROM leaves behind just before jumping to 0x0100).
func (c *Chip) PowerOn() {
	c.A, c.F = 0x01, 0xB0
	c.B, c.C = 0x00, 0x13
	c.D, c.E = 0x00, 0xD8
	c.H, c.L = 0x01, 0x4D
	c.SP = 0xFFFE
	c.PC = 0x0100
	c.mode = ModeRun
	c.imeScheduled = false
}

// Mode reports the CPU's current execution state.
func (c *Chip) Mode() Mode {
	return c.mode
}

func (c *Chip) flag(mask uint8) bool {
	return c.F&mask != 0
}

func (c *Chip) setFlag(mask uint8, v bool) {
	if v {
		c.F |= mask
	} else {
		c.F &^= mask
	}
	c.F &= 0xF0
}

// BC, DE, HL and AF read/write the eight 8 bit registers as 16 bit pairs.
func (c *Chip) BC() uint16     { return uint16(c.B)<<8 | uint16(c.C) }
func (c *Chip) SetBC(v uint16) { c.B, c.C = uint8(v>>8), uint8(v) }
func (c *Chip) DE() uint16     { return uint16(c.D)<<8 | uint16(c.E) }
func (c *Chip) SetDE(v uint16) { c.D, c.E = uint8(v>>8), uint8(v) }
func (c *Chip) HL() uint16     { return uint16(c.H)<<8 | uint16(c.L) }
func (c *Chip) SetHL(v uint16) { c.H, c.L = uint8(v>>8), uint8(v) }
func (c *Chip) AF() uint16     { return uint16(c.A)<<8 | uint16(c.F&0xF0) }
func (c *Chip) SetAF(v uint16) { c.A, c.F = uint8(v>>8), uint8(v)&0xF0 }

// reg8 decodes a 3 bit register field in the classic Z80/8080 order:
// B, C, D, E, H, L, (HL), A.
func (c *Chip) reg8(bus Bus, idx uint8) uint8 {
	switch idx & 0x07 {
	case 0:
		return c.B
	case 1:
		return c.C
	case 2:
		return c.D
	case 3:
		return c.E
	case 4:
		return c.H
	case 5:
		return c.L
	case 6:
		return bus.Read(c.HL())
	default:
		return c.A
	}
}

func (c *Chip) setReg8(bus Bus, idx uint8, v uint8) {
	switch idx & 0x07 {
	case 0:
		c.B = v
	case 1:
		c.C = v
	case 2:
		c.D = v
	case 3:
		c.E = v
	case 4:
		c.H = v
	case 5:
		c.L = v
	case 6:
		bus.Write(c.HL(), v)
	default:
		c.A = v
	}
}

// fetch8 reads the byte at PC and advances PC.
func (c *Chip) fetch8(bus Bus) uint8 {
	v := bus.Read(c.PC)
	c.PC++
	return v
}

// fetch16 reads a little-endian word at PC and advances PC by two.
func (c *Chip) fetch16(bus Bus) uint16 {
	lo := c.fetch8(bus)
	hi := c.fetch8(bus)
	return uint16(hi)<<8 | uint16(lo)
}

func (c *Chip) push16(bus Bus, v uint16) {
	c.SP--
	bus.Write(c.SP, uint8(v>>8))
	c.SP--
	bus.Write(c.SP, uint8(v))
}

func (c *Chip) pop16(bus Bus) uint16 {
	lo := bus.Read(c.SP)
	c.SP++
	hi := bus.Read(c.SP)
	c.SP++
	return uint16(hi)<<8 | uint16(lo)
}

// Step executes exactly one instruction, one interrupt dispatch, or (while
// halted or stopped) one idle machine cycle, and returns the number of
// clocks elapsed (4 per machine cycle, matching every other peripheral's
// cycle accounting).
func (c *Chip) Step(bus Bus) (int, error) {
	nv := bus.Interrupts()

	if c.mode == ModeHalt || c.mode == ModeStop {
		if nv.Pending() {
			c.mode = ModeRun
		} else {
			return 4, nil
		}
	}

	if nv.MasterEnable() {
		if src, ok := nv.NextToRun(); ok {
			return c.dispatchInterrupt(bus, nv, src), nil
		}
	}

	if c.imeScheduled {
		nv.SetMasterEnable(true)
		c.imeScheduled = false
	}

	pc := c.PC
	op := c.fetch8(bus)
	c.lastOp = op
	entry := primaryTable[op]
	if entry.exec == nil {
		return 0, InvalidOpcode{Op: op, PC: pc}
	}
	return entry.exec(c, bus)
}

func (c *Chip) dispatchInterrupt(bus Bus, nv *nvic.Chip, src nvic.Source) int {
	nv.Ack(src)
	c.push16(bus, c.PC)
	c.PC = src.Vector()
	return 20
}
