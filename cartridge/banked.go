package cartridge

// cyclesPerSecond is the Game Boy's fixed CPU clock rate, used to drive the
// MBC3 real-time clock off the same cycle count every other peripheral
// consumes.
const cyclesPerSecond = 4194304

const (
	kRAM_ENABLE_VALUE = 0x0A

	kRTC_SECONDS = 0x08
	kRTC_MINUTES = 0x09
	kRTC_HOURS   = 0x0A
	kRTC_DAY_LO  = 0x0B
	kRTC_DAY_HI  = 0x0C
)

// Banked implements a switchable-bank cartridge with an 8 bit ROM bank
// number (up to 256 selectable ROM banks), RAM banks 0-3, and the MBC3
// real-time clock register file. Simpler
// MBC1/MBC5 images are served by the same controller: this implementation
// does not need MBC1's RAM-banking-mode quirk or MBC5's 9th ROM-bank bit,
// so one controller covers all three headers the pack's sources describe.
type Banked struct {
	rom      []uint8
	romMask  uint8
	romBanks int

	ram     []uint8
	ramBank uint8

	ramEnabled bool
	romBank    uint8

	latchFlag   bool
	latchLoaded bool

	rtcCycles int
	rtcSec    uint8
	rtcMin    uint8
	rtcHours  uint8
	rtcDayLo  uint8
	rtcDayHi  bool
	rtcHalt   bool
	rtcOver   bool

	latchSec   uint8
	latchMin   uint8
	latchHours uint8
	latchDay   uint8
}

func newBanked(image []byte, romBanks, ramSize int) (Cartridge, error) {
	b := &Banked{
		rom:      make([]uint8, romBanks*kROM_BANK_SIZE),
		romMask:  uint8(romBanks - 1),
		romBanks: romBanks,
		ram:      make([]uint8, ramSize),
		romBank:  1,
	}
	copy(b.rom, image)
	return b, nil
}

// ReadROM0 implements Cartridge: bank 0 is always mapped at 0x0000-0x3FFF.
func (b *Banked) ReadROM0(addr uint16) uint8 {
	return b.rom[addr]
}

// ReadROMN implements Cartridge: the selected bank is mapped at
// 0x4000-0x7FFF.
func (b *Banked) ReadROMN(addr uint16) uint8 {
	bank := int(b.romBank & b.romMask)
	return b.rom[bank*kROM_BANK_SIZE+int(addr&0x3FFF)]
}

// ReadRAM implements Cartridge: either a RAM bank or, for bank selectors
// 0x08-0x0C, a latched RTC register.
func (b *Banked) ReadRAM(addr uint16) uint8 {
	if !b.ramEnabled {
		return 0xFF
	}
	switch {
	case b.ramBank <= 0x03:
		if len(b.ram) == 0 {
			return 0xFF
		}
		off := int(b.ramBank)*kRAM_BANK_SIZE + int(addr&0x1FFF)
		return b.ram[off&(len(b.ram)-1)]
	case b.ramBank == kRTC_SECONDS:
		return b.latchSec
	case b.ramBank == kRTC_MINUTES:
		return b.latchMin
	case b.ramBank == kRTC_HOURS:
		return b.latchHours
	case b.ramBank == kRTC_DAY_LO:
		return b.latchDay
	case b.ramBank == kRTC_DAY_HI:
		var v uint8
		if b.rtcDayHi {
			v |= 0x01
		}
		if b.rtcHalt {
			v |= 0x40
		}
		if b.rtcOver {
			v |= 0x80
		}
		return v
	default:
		return 0xFF
	}
}

// WriteROM0 implements Cartridge: 0x0000-0x1FFF enables/disables cartridge
// RAM, 0x2000-0x3FFF selects the ROM bank mapped at 0x4000-0x7FFF.
func (b *Banked) WriteROM0(addr uint16, val uint8) {
	switch {
	case addr <= 0x1FFF:
		b.ramEnabled = val&0x0F == kRAM_ENABLE_VALUE
	case addr >= 0x2000 && addr <= 0x3FFF:
		sel := val & b.romMask
		if sel == 0 {
			sel = 1
		}
		b.romBank = sel
	}
}

// WriteROMN implements Cartridge: 0x4000-0x5FFF selects a RAM bank or RTC
// register, 0x6000-0x7FFF latches the RTC. addr may be absolute or relative
// to 0x4000 (as peripheral.Bus passes it); only its offset within the
// window is decoded.
func (b *Banked) WriteROMN(addr uint16, val uint8) {
	switch {
	case addr&0x3FFF < 0x2000:
		if val <= 0x03 || (val >= kRTC_SECONDS && val <= kRTC_DAY_HI) {
			b.ramBank = val
		}
	default:
		if val == 0x00 {
			b.latchFlag = true
		}
		if val == 0x01 && b.latchFlag {
			b.latchFlag = false
			b.latchLoaded = true
			b.latchSec = b.rtcSec
			b.latchMin = b.rtcMin
			b.latchHours = b.rtcHours
			b.latchDay = b.rtcDayLo
		}
	}
}

// WriteRAM implements Cartridge.
func (b *Banked) WriteRAM(addr uint16, val uint8) {
	if !b.ramEnabled {
		return
	}
	switch {
	case b.ramBank <= 0x03:
		if len(b.ram) == 0 {
			return
		}
		off := int(b.ramBank)*kRAM_BANK_SIZE + int(addr&0x1FFF)
		b.ram[off&(len(b.ram)-1)] = val
	case b.ramBank == kRTC_SECONDS:
		b.rtcSec = val
	case b.ramBank == kRTC_MINUTES:
		b.rtcMin = val
	case b.ramBank == kRTC_HOURS:
		b.rtcHours = val
	case b.ramBank == kRTC_DAY_LO:
		b.rtcDayLo = val
	case b.ramBank == kRTC_DAY_HI:
		b.rtcDayHi = val&0x01 != 0
		b.rtcHalt = val&0x40 != 0
		b.rtcOver = val&0x80 != 0
	}
}

// Run advances the real-time clock by the given number of CPU clocks. The
// carry chain uses canonical wraparound (seconds/minutes roll at 60, hours
// at 24) rather than the off-by-one ">60" comparison for seconds and
// minutes that appears in some reference sources -- see
// DESIGN.md.
func (b *Banked) Run(cycles int) {
	if b.rtcHalt {
		return
	}
	b.rtcCycles += cycles
	if b.rtcCycles < cyclesPerSecond {
		return
	}
	add := b.rtcCycles / cyclesPerSecond
	b.rtcCycles %= cyclesPerSecond

	for ; add > 0; add-- {
		b.rtcSec++
		if b.rtcSec < 60 {
			continue
		}
		b.rtcSec = 0
		b.rtcMin++
		if b.rtcMin < 60 {
			continue
		}
		b.rtcMin = 0
		b.rtcHours++
		if b.rtcHours < 24 {
			continue
		}
		b.rtcHours = 0
		if b.rtcDayLo == 0xFF {
			if b.rtcDayHi {
				b.rtcOver = true
			}
			b.rtcDayHi = !b.rtcDayHi
		}
		b.rtcDayLo++
	}
}
