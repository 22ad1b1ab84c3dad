// Package soc assembles a complete Game Boy: a cpu.Chip bound to a
// peripheral.Bus, advanced one instruction (or interrupt dispatch, or
// HALT/STOP idle step) at a time. Structured after atari2600.VCS.Tick --
// an Init-style constructor plus a single per-step method a host driver
// calls in a loop -- though unlike the 6507/TIA's fixed 1:3 clock ratio,
// every Game Boy peripheral is driven by the exact clock count the CPU
// instruction just spent, not a fixed slowdown counter.
package soc

import (
	"github.com/jmchacon/gbcore/cartridge"
	"github.com/jmchacon/gbcore/cpu"
	"github.com/jmchacon/gbcore/io"
	"github.com/jmchacon/gbcore/peripheral"
)

// SoC is a complete, runnable Game Boy core.
type SoC struct {
	CPU *cpu.Chip
	Bus *peripheral.Bus
}

// New builds a SoC around a parsed cartridge and an optional boot ROM
// image. keys may be nil if the host never wires a controller.
func New(cart cartridge.Cartridge, bootImage []byte, keys io.KeySetter) (*SoC, error) {
	bus, err := peripheral.New(cart, bootImage, keys)
	if err != nil {
		return nil, err
	}
	s := &SoC{CPU: cpu.New(), Bus: bus}
	s.PowerOn()
	return s, nil
}

// PowerOn resets the CPU and every peripheral to their documented startup
// state. If a boot ROM was supplied, PC is left at the CPU's power-on
// default of 0x0100 -- the boot ROM is an address-space overlay, not a
// program counter override, so Read(PC) sees it until 0xFF50 is written,
// matching the teacher's convention of letting Reset on a chip clear only
// that chip's own state.
func (s *SoC) PowerOn() {
	s.CPU.PowerOn()
	s.Bus.PowerOn()
}

// Step executes exactly one CPU step and advances every cycle-driven
// peripheral by the clocks it took, returning that clock count.
func (s *SoC) Step() (int, error) {
	clocks, err := s.CPU.Step(s.Bus)
	if err != nil {
		return clocks, err
	}
	s.Bus.Run(clocks)
	return clocks, nil
}

// RunFrame steps the SoC until it has produced at least one full frame's
// worth of clocks (70224, the Game Boy's fixed per-frame clock count at
// 59.7 Hz), stopping as soon as that threshold is crossed. A host driver
// calls this once per vsync and then reads Bus.PPU().FrameBuffer.
func (s *SoC) RunFrame() error {
	const clocksPerFrame = 70224
	total := 0
	for total < clocksPerFrame {
		clocks, err := s.Step()
		if err != nil {
			return err
		}
		total += clocks
	}
	return nil
}
