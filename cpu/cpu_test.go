package cpu

import (
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/jmchacon/gbcore/nvic"
)

// flatBus is a trivial 64K RAM Bus implementation used to drive the CPU in
// isolation, the same way the teacher's flatMemory drove the 6502 core.
type flatBus struct {
	mem [65536]uint8
	nv  *nvic.Chip
}

func newFlatBus() *flatBus {
	b := &flatBus{nv: nvic.New()}
	return b
}

func (b *flatBus) Read(addr uint16) uint8       { return b.mem[addr] }
func (b *flatBus) Write(addr uint16, val uint8) { b.mem[addr] = val }
func (b *flatBus) Interrupts() *nvic.Chip       { return b.nv }

func (b *flatBus) loadAt(addr uint16, prog ...uint8) {
	for i, v := range prog {
		b.mem[int(addr)+i] = v
	}
}

func newTestChip() (*Chip, *flatBus) {
	c := New()
	c.PC = 0x0000
	b := newFlatBus()
	return c, b
}

func TestPowerOnState(t *testing.T) {
	c := New()
	want := &Chip{A: 0x01, F: 0xB0, B: 0x00, C: 0x13, D: 0x00, E: 0xD8, H: 0x01, L: 0x4D, SP: 0xFFFE, PC: 0x0100, mode: ModeRun}
	if got := c; got.A != want.A || got.F != want.F || got.B != want.B || got.C != want.C ||
		got.D != want.D || got.E != want.E || got.H != want.H || got.L != want.L ||
		got.SP != want.SP || got.PC != want.PC {
		t.Errorf("PowerOn() = %s, want %s", spew.Sdump(got), spew.Sdump(want))
	}
}

func TestLDR8R8(t *testing.T) {
	c, b := newTestChip()
	b.loadAt(0, 0x3E, 0x42) // LD A,d8
	b.loadAt(2, 0x47)       // LD B,A
	if _, err := c.Step(b); err != nil {
		t.Fatal(err)
	}
	if _, err := c.Step(b); err != nil {
		t.Fatal(err)
	}
	if c.B != 0x42 {
		t.Errorf("B = %.2X, want 0x42", c.B)
	}
}

func TestADDSetsFlags(t *testing.T) {
	c, b := newTestChip()
	c.A = 0xFF
	b.loadAt(0, 0xC6, 0x01) // ADD A,d8
	if _, err := c.Step(b); err != nil {
		t.Fatal(err)
	}
	if c.A != 0x00 {
		t.Errorf("A = %.2X, want 0x00", c.A)
	}
	for _, f := range []struct {
		mask uint8
		name string
		want bool
	}{
		{FlagZ, "Z", true},
		{FlagN, "N", false},
		{FlagH, "H", true},
		{FlagC, "C", true},
	} {
		if c.flag(f.mask) != f.want {
			t.Errorf("flag %s = %v, want %v", f.name, c.flag(f.mask), f.want)
		}
	}
}

func TestINCDECHalfCarry(t *testing.T) {
	c, b := newTestChip()
	c.A = 0x0F
	b.loadAt(0, 0x3C) // INC A
	if _, err := c.Step(b); err != nil {
		t.Fatal(err)
	}
	if c.A != 0x10 || !c.flag(FlagH) {
		t.Errorf("A=%.2X H=%v, want A=10 H=true", c.A, c.flag(FlagH))
	}
	c.A = 0x10
	b.loadAt(1, 0x3D) // DEC A
	if _, err := c.Step(b); err != nil {
		t.Fatal(err)
	}
	if c.A != 0x0F || !c.flag(FlagH) {
		t.Errorf("A=%.2X H=%v, want A=0F H=true", c.A, c.flag(FlagH))
	}
}

func TestDAAAfterBCDAdd(t *testing.T) {
	c, b := newTestChip()
	c.A = 0x09
	b.loadAt(0, 0xC6, 0x09) // ADD A,9
	b.loadAt(2, 0x27)       // DAA
	if _, err := c.Step(b); err != nil {
		t.Fatal(err)
	}
	if _, err := c.Step(b); err != nil {
		t.Fatal(err)
	}
	if c.A != 0x18 {
		t.Errorf("A = %.2X, want 0x18 (BCD 09+09)", c.A)
	}
}

func TestPushPopPreservesValue(t *testing.T) {
	c, b := newTestChip()
	c.SetBC(0x1234)
	c.SP = 0xFFFE
	b.loadAt(0, 0xC5) // PUSH BC
	b.loadAt(1, 0xD1) // POP DE
	if _, err := c.Step(b); err != nil {
		t.Fatal(err)
	}
	if _, err := c.Step(b); err != nil {
		t.Fatal(err)
	}
	if c.DE() != 0x1234 {
		t.Errorf("DE = %.4X, want 0x1234", c.DE())
	}
	if c.SP != 0xFFFE {
		t.Errorf("SP = %.4X, want 0xFFFE", c.SP)
	}
}

func TestJRConditional(t *testing.T) {
	c, b := newTestChip()
	c.setFlag(FlagZ, true)
	b.loadAt(0, 0x28, 0x05) // JR Z,+5
	clocks, err := c.Step(b)
	if err != nil {
		t.Fatal(err)
	}
	if clocks != 12 {
		t.Errorf("clocks = %d, want 12 (branch taken)", clocks)
	}
	if c.PC != 0x0007 {
		t.Errorf("PC = %.4X, want 0x0007", c.PC)
	}
}

func TestJRNotTakenClocks(t *testing.T) {
	c, b := newTestChip()
	c.setFlag(FlagZ, false)
	b.loadAt(0, 0x28, 0x05) // JR Z,+5
	clocks, err := c.Step(b)
	if err != nil {
		t.Fatal(err)
	}
	if clocks != 8 {
		t.Errorf("clocks = %d, want 8 (branch not taken)", clocks)
	}
	if c.PC != 0x0002 {
		t.Errorf("PC = %.4X, want 0x0002", c.PC)
	}
}

func TestCallRet(t *testing.T) {
	c, b := newTestChip()
	c.SP = 0xFFFE
	b.loadAt(0, 0xCD, 0x00, 0x10) // CALL 0x1000
	b.loadAt(0x1000, 0xC9)        // RET
	if _, err := c.Step(b); err != nil {
		t.Fatal(err)
	}
	if c.PC != 0x1000 {
		t.Errorf("PC = %.4X, want 0x1000", c.PC)
	}
	if _, err := c.Step(b); err != nil {
		t.Fatal(err)
	}
	if c.PC != 0x0003 {
		t.Errorf("PC = %.4X, want 0x0003 (return address)", c.PC)
	}
}

func TestAddSPSignedQuirk(t *testing.T) {
	c, b := newTestChip()
	c.SP = 0x0005
	b.loadAt(0, 0xE8, 0xFF) // ADD SP,-1
	if _, err := c.Step(b); err != nil {
		t.Fatal(err)
	}
	if c.SP != 0x0004 {
		t.Errorf("SP = %.4X, want 0x0004", c.SP)
	}
	if c.flag(FlagZ) {
		t.Error("FlagZ set, ADD SP,r8 always clears Z")
	}
}

func TestCBBitResSet(t *testing.T) {
	c, b := newTestChip()
	c.B = 0x00
	b.loadAt(0, 0xCB, 0x40) // BIT 0,B
	if _, err := c.Step(b); err != nil {
		t.Fatal(err)
	}
	if !c.flag(FlagZ) {
		t.Error("FlagZ should be set, bit 0 of B is 0")
	}

	b.loadAt(2, 0xCB, 0xC0) // SET 0,B
	if _, err := c.Step(b); err != nil {
		t.Fatal(err)
	}
	if c.B != 0x01 {
		t.Errorf("B = %.2X, want 0x01", c.B)
	}

	b.loadAt(4, 0xCB, 0x80) // RES 0,B
	if _, err := c.Step(b); err != nil {
		t.Fatal(err)
	}
	if c.B != 0x00 {
		t.Errorf("B = %.2X, want 0x00", c.B)
	}
}

func TestHaltWakesOnPendingRegardlessOfIME(t *testing.T) {
	c, b := newTestChip()
	b.loadAt(0, 0x76) // HALT
	if _, err := c.Step(b); err != nil {
		t.Fatal(err)
	}
	if c.Mode() != ModeHalt {
		t.Fatalf("Mode() = %v, want ModeHalt", c.Mode())
	}
	b.nv.SetMasterEnable(false)
	b.nv.WriteIE(1 << nvic.VBlank)
	b.nv.Raise(nvic.VBlank)
	if _, err := c.Step(b); err != nil {
		t.Fatal(err)
	}
	if c.Mode() != ModeRun {
		t.Errorf("Mode() = %v, want ModeRun after pending interrupt wakes HALT", c.Mode())
	}
}

func TestEIDelaysOneInstruction(t *testing.T) {
	c, b := newTestChip()
	b.nv.WriteIE(1 << nvic.VBlank)
	b.nv.Raise(nvic.VBlank)
	b.loadAt(0, 0xFB) // EI
	b.loadAt(1, 0x00) // NOP
	b.loadAt(2, 0x00) // NOP
	if _, err := c.Step(b); err != nil { // EI: IME not yet live
		t.Fatal(err)
	}
	if b.nv.MasterEnable() {
		t.Error("MasterEnable() true immediately after EI, want delayed by one instruction")
	}
	if _, err := c.Step(b); err != nil { // NOP: IME becomes live, then next Step dispatches
		t.Fatal(err)
	}
	if !b.nv.MasterEnable() {
		t.Error("MasterEnable() false after the instruction following EI")
	}
}

func TestInterruptDispatchPushesPCAndJumps(t *testing.T) {
	c, b := newTestChip()
	c.PC = 0x0200
	c.SP = 0xFFFE
	b.nv.SetMasterEnable(true)
	b.nv.WriteIE(1 << nvic.VBlank)
	b.nv.Raise(nvic.VBlank)

	clocks, err := c.Step(b)
	if err != nil {
		t.Fatal(err)
	}
	if clocks != 20 {
		t.Errorf("clocks = %d, want 20", clocks)
	}
	if c.PC != nvic.VBlank.Vector() {
		t.Errorf("PC = %.4X, want vector %.4X", c.PC, nvic.VBlank.Vector())
	}
	if got := c.pop16(b); got != 0x0200 {
		t.Errorf("pushed return address = %.4X, want 0x0200", got)
	}
}

func TestInvalidOpcode(t *testing.T) {
	c, b := newTestChip()
	b.loadAt(0, 0xDD) // never assigned in the LR35902 opcode space
	if _, err := c.Step(b); err == nil {
		t.Error("Step() with invalid opcode returned nil error")
	}
}

func TestStopConsumesPaddingByte(t *testing.T) {
	c, b := newTestChip()
	b.loadAt(0, 0x10, 0x00) // STOP
	if _, err := c.Step(b); err != nil {
		t.Fatal(err)
	}
	if c.Mode() != ModeStop {
		t.Errorf("Mode() = %v, want ModeStop", c.Mode())
	}
	if c.PC != 2 {
		t.Errorf("PC = %d, want 2 (padding byte consumed)", c.PC)
	}
}
