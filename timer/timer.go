// Package timer implements the Game Boy's two clock-derived counters: the
// free-running divider (DIV, 0xFF04) and the configurable main counter
// (TIMA/TMA/TAC, 0xFF05-0xFF07). Both are driven purely by an elapsed
// CPU clock count handed in by the SoC each step, the same role
// pia6532's Chip.Tick plays for the 6532's interval timer.
package timer

import "fmt"

// Frequency is one of the four TAC-selectable rates for the main counter.
type Frequency int

const (
	// Freq4096 ticks TIMA at 4096 Hz (every 1024 clocks), TAC bits 00.
	Freq4096 Frequency = iota
	// Freq262144 ticks TIMA at 262144 Hz (every 16 clocks), TAC bits 01.
	Freq262144
	// Freq65536 ticks TIMA at 65536 Hz (every 64 clocks), TAC bits 10.
	Freq65536
	// Freq16384 ticks TIMA at 16384 Hz (every 256 clocks), TAC bits 11.
	Freq16384
)

// cyclesPerTick is the number of CPU clocks (not machine cycles) that must
// elapse for the main counter to advance by one, per TAC's encoding.
func (f Frequency) cyclesPerTick() int {
	switch f {
	case Freq4096:
		return 1024
	case Freq262144:
		return 16
	case Freq65536:
		return 64
	case Freq16384:
		return 256
	default:
		return 1024
	}
}

const (
	kDIVIDER_CYCLES_PER_TICK = 256

	kMASK_TAC_ENABLE = uint8(0x04)
	kMASK_TAC_FREQ   = uint8(0x03)
	kMASK_TAC_UNUSED = uint8(0xF8)

	// cyclesPerMachineCycle is the number of CPU clocks in one machine
	// cycle.
	cyclesPerMachineCycle = 4
)

// Chip holds the complete timer/divider state.
type Chip struct {
	mainCycles int
	divCycles  int
	overflowed bool

	divider uint8
	value   uint8
	modulo  uint8

	enabled bool
	freq    Frequency
}

// New returns a powered-on timer.
func New() *Chip {
	c := &Chip{}
	c.PowerOn()
	return c
}

// PowerOn resets the timer to its documented post-boot-ROM state.
func (c *Chip) PowerOn() {
	c.mainCycles = 0
	c.divCycles = 0
	c.overflowed = false
	c.divider = 0
	c.value = 0
	c.modulo = 0
	c.enabled = false
	c.freq = Freq4096
}

// Run advances the timer by the given number of CPU clocks (4 per machine
// cycle), calling raise to request a timer interrupt when TIMA overflows.
// The divider always advances; TIMA only while TAC's enable bit is set. The
// overflow->reload->interrupt sequence is delayed by exactly one machine
// cycle, matching real hardware: TIMA reads as 0x00 for one machine cycle
// before TMA is latched in.
func (c *Chip) Run(cycles int, raise func()) {
	c.divCycles += cycles
	if c.divCycles >= kDIVIDER_CYCLES_PER_TICK {
		add := c.divCycles / kDIVIDER_CYCLES_PER_TICK
		c.divCycles %= kDIVIDER_CYCLES_PER_TICK
		c.divider += uint8(add)
	}

	if !c.enabled {
		return
	}
	c.mainCycles += cycles

	if c.overflowed && c.mainCycles >= cyclesPerMachineCycle {
		c.overflowed = false
		raise()
		c.value = c.modulo
	}

	perTick := c.freq.cyclesPerTick()
	if c.mainCycles >= perTick {
		add := c.mainCycles / perTick
		c.mainCycles %= perTick

		sum := int(c.value) + add
		if sum > 0xFF {
			c.overflowed = true
			c.value = 0
		} else {
			c.value = uint8(sum)
		}

		if c.overflowed && c.mainCycles >= cyclesPerMachineCycle {
			c.overflowed = false
			raise()
			c.value = c.modulo
		}
	}
}

// Divider returns the current DIV register value.
func (c *Chip) Divider() uint8 {
	return c.divider
}

// ResetDivider implements the hardware quirk that any write to DIV, of any
// value, resets it to zero.
func (c *Chip) ResetDivider() {
	c.divider = 0
}

// Value returns the current TIMA register value.
func (c *Chip) Value() uint8 {
	return c.value
}

// SetValue writes the TIMA register directly.
func (c *Chip) SetValue(v uint8) {
	c.value = v
}

// Modulo returns the current TMA register value.
func (c *Chip) Modulo() uint8 {
	return c.modulo
}

// SetModulo writes the TMA register.
func (c *Chip) SetModulo(v uint8) {
	c.modulo = v
}

// TAC returns the current TAC register, with unused bits forced to 1.
func (c *Chip) TAC() uint8 {
	var b uint8
	if c.enabled {
		b |= kMASK_TAC_ENABLE
	}
	switch c.freq {
	case Freq4096:
		b |= 0x00
	case Freq262144:
		b |= 0x01
	case Freq65536:
		b |= 0x02
	case Freq16384:
		b |= 0x03
	}
	return b | kMASK_TAC_UNUSED
}

// SetTAC decodes and stores a write to the TAC register.
func (c *Chip) SetTAC(val uint8) {
	c.enabled = val&kMASK_TAC_ENABLE != 0
	switch val & kMASK_TAC_FREQ {
	case 0x00:
		c.freq = Freq4096
	case 0x01:
		c.freq = Freq262144
	case 0x02:
		c.freq = Freq65536
	case 0x03:
		c.freq = Freq16384
	}
}

func (f Frequency) String() string {
	switch f {
	case Freq4096:
		return "4096Hz"
	case Freq262144:
		return "262144Hz"
	case Freq65536:
		return "65536Hz"
	case Freq16384:
		return "16384Hz"
	default:
		return fmt.Sprintf("Frequency(%d)", int(f))
	}
}
