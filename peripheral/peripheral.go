// Package peripheral wires every addressable Game Boy device -- boot ROM,
// cartridge, PPU, timer, interrupt controller, joypad and working RAM --
// behind a single flat 64KiB address space, the same role atari2600's
// Atari2600 struct plays for the 6507's memory map: one Read/Write pair
// that switches on address range and forwards to the owning chip.
package peripheral

import (
	"fmt"

	"github.com/jmchacon/gbcore/bootrom"
	"github.com/jmchacon/gbcore/cartridge"
	"github.com/jmchacon/gbcore/io"
	"github.com/jmchacon/gbcore/memory"
	"github.com/jmchacon/gbcore/nvic"
	"github.com/jmchacon/gbcore/ppu"
	"github.com/jmchacon/gbcore/timer"
)

const (
	kBOOT_ROM_END = 0x00FF

	kROM_BANK_0_END = 0x3FFF
	kROM_BANK_N_END = 0x7FFF

	kVRAM_BEGIN = 0x8000
	kVRAM_END   = 0x9FFF

	kEXTERNAL_RAM_BEGIN = 0xA000
	kEXTERNAL_RAM_END   = 0xBFFF

	kWORKING_RAM_BEGIN = 0xC000
	kWORKING_RAM_END   = 0xDFFF
	kWORKING_RAM_SIZE  = kWORKING_RAM_END - kWORKING_RAM_BEGIN + 1

	kECHO_RAM_BEGIN = 0xE000
	kECHO_RAM_END   = 0xFDFF

	kOAM_BEGIN = 0xFE00
	kOAM_END   = 0xFE9F

	kUNUSED_BEGIN = 0xFEA0
	kUNUSED_END   = 0xFEFF

	kIO_BEGIN = 0xFF00
	kIO_END   = 0xFF7F

	kZERO_PAGE_BEGIN = 0xFF80
	kZERO_PAGE_END   = 0xFFFE
	// kZERO_PAGE_SIZE is rounded up to a power of two for memory.NewRAMBank;
	// the real register occupies only 0x7F of these 0x80 addressable bytes.
	kZERO_PAGE_SIZE = 0x80

	kIE_REGISTER = 0xFFFF

	kDMA_LENGTH = 0xA0 // OAM size; one DMA byte copied per clock.
)

// Bus implements cpu.Bus and ppu/timer's wiring point: it owns every chip
// and exposes the flat byte-addressable memory map the CPU core expects.
type Bus struct {
	boot *bootrom.Chip
	cart cartridge.Cartridge
	ppu  *ppu.Chip
	nv   *nvic.Chip
	tmr  *timer.Chip
	pad  *Joypad

	workRAM  memory.Bank
	zeroPage memory.Bank

	dmaActive bool
	dmaSrc    uint16
	dmaCycles int

	// Sound, serial: these registers latch a value but drive no emulated
	// device, matching this implementation's scope.
	soundRegs  [48]uint8
	serialData uint8
	serialCtrl uint8
}

// New wires a fresh Bus around a parsed cartridge. bootImage may be nil or
// empty, in which case PC starts directly at the cartridge entry point.
func New(cart cartridge.Cartridge, bootImage []byte, keys io.KeySetter) (*Bus, error) {
	boot, err := bootrom.New(bootImage)
	if err != nil {
		return nil, err
	}
	workRAM, err := memory.NewRAMBank(kWORKING_RAM_SIZE)
	if err != nil {
		return nil, err
	}
	zeroPage, err := memory.NewRAMBank(kZERO_PAGE_SIZE)
	if err != nil {
		return nil, err
	}
	b := &Bus{
		boot:     boot,
		cart:     cart,
		ppu:      ppu.New(),
		nv:       nvic.New(),
		tmr:      timer.New(),
		pad:      NewJoypad(keys),
		workRAM:  workRAM,
		zeroPage: zeroPage,
	}
	return b, nil
}

// PowerOn resets every owned chip to its documented startup state.
func (b *Bus) PowerOn() {
	b.ppu.PowerOn()
	b.nv.PowerOn()
	b.tmr.PowerOn()
	b.pad.PowerOn()
	b.workRAM.PowerOn()
	b.zeroPage.PowerOn()
	b.dmaActive = false
	b.dmaSrc = 0
	b.dmaCycles = 0
}

// Interrupts returns the interrupt controller, satisfying cpu.Bus.
func (b *Bus) Interrupts() *nvic.Chip { return b.nv }

// PPU returns the picture processing unit, for a host driver to read the
// frame buffer from after VBlank.
func (b *Bus) PPU() *ppu.Chip { return b.ppu }

// Run advances every cycle-driven peripheral (timer, cartridge RTC, OAM
// DMA, PPU) by the given number of CPU clocks, in a fixed order: timer
// first, then the cartridge, then DMA, then the PPU.
func (b *Bus) Run(cycles int) {
	b.tmr.Run(cycles, func() { b.nv.Raise(nvic.Timer) })
	b.cart.Run(cycles)
	b.runDMA(cycles)
	b.ppu.Run(cycles, b.nv)
}

func (b *Bus) runDMA(cycles int) {
	if !b.dmaActive {
		return
	}
	for i := 0; i < cycles && b.dmaCycles < kDMA_LENGTH; i++ {
		val := b.Read(b.dmaSrc + uint16(b.dmaCycles))
		b.ppu.WriteOAM(uint16(b.dmaCycles), val)
		b.dmaCycles++
	}
	if b.dmaCycles >= kDMA_LENGTH {
		b.dmaActive = false
		b.dmaCycles = 0
	}
}

// Read returns the byte visible at addr across the entire memory map.
func (b *Bus) Read(addr uint16) uint8 {
	switch {
	case addr <= kBOOT_ROM_END && b.boot.Enabled():
		return b.boot.Read(addr)
	case addr <= kROM_BANK_0_END:
		return b.cart.ReadROM0(addr)
	case addr <= kROM_BANK_N_END:
		return b.cart.ReadROMN(addr - (kROM_BANK_0_END + 1))
	case addr >= kVRAM_BEGIN && addr <= kVRAM_END:
		return b.ppu.ReadVRAM(addr - kVRAM_BEGIN)
	case addr >= kEXTERNAL_RAM_BEGIN && addr <= kEXTERNAL_RAM_END:
		return b.cart.ReadRAM(addr - kEXTERNAL_RAM_BEGIN)
	case addr >= kWORKING_RAM_BEGIN && addr <= kWORKING_RAM_END:
		return b.workRAM.Read(addr - kWORKING_RAM_BEGIN)
	case addr >= kECHO_RAM_BEGIN && addr <= kECHO_RAM_END:
		return b.workRAM.Read(addr - kECHO_RAM_BEGIN)
	case addr >= kOAM_BEGIN && addr <= kOAM_END:
		return b.ppu.ReadOAM(addr - kOAM_BEGIN)
	case addr >= kUNUSED_BEGIN && addr <= kUNUSED_END:
		return 0
	case addr >= kIO_BEGIN && addr <= kIO_END:
		return b.readIO(addr)
	case addr >= kZERO_PAGE_BEGIN && addr <= kZERO_PAGE_END:
		return b.zeroPage.Read(addr - kZERO_PAGE_BEGIN)
	case addr == kIE_REGISTER:
		return b.nv.ReadIE()
	default:
		return 0xFF
	}
}

// Write stores a byte at addr across the entire memory map.
func (b *Bus) Write(addr uint16, val uint8) {
	switch {
	case addr <= kROM_BANK_0_END:
		b.cart.WriteROM0(addr, val)
	case addr <= kROM_BANK_N_END:
		b.cart.WriteROMN(addr-(kROM_BANK_0_END+1), val)
	case addr >= kVRAM_BEGIN && addr <= kVRAM_END:
		b.ppu.WriteVRAM(addr-kVRAM_BEGIN, val)
	case addr >= kEXTERNAL_RAM_BEGIN && addr <= kEXTERNAL_RAM_END:
		b.cart.WriteRAM(addr-kEXTERNAL_RAM_BEGIN, val)
	case addr >= kWORKING_RAM_BEGIN && addr <= kWORKING_RAM_END:
		b.workRAM.Write(addr-kWORKING_RAM_BEGIN, val)
	case addr >= kECHO_RAM_BEGIN && addr <= kECHO_RAM_END:
		b.workRAM.Write(addr-kECHO_RAM_BEGIN, val)
	case addr >= kOAM_BEGIN && addr <= kOAM_END:
		b.ppu.WriteOAM(addr-kOAM_BEGIN, val)
	case addr >= kUNUSED_BEGIN && addr <= kUNUSED_END:
		// Writes here are discarded.
	case addr >= kIO_BEGIN && addr <= kIO_END:
		b.writeIO(addr, val)
	case addr >= kZERO_PAGE_BEGIN && addr <= kZERO_PAGE_END:
		b.zeroPage.Write(addr-kZERO_PAGE_BEGIN, val)
	case addr == kIE_REGISTER:
		b.nv.WriteIE(val)
	}
}

func (b *Bus) readIO(addr uint16) uint8 {
	switch addr {
	case 0xFF00:
		return b.pad.Read()
	case 0xFF01:
		return b.serialData
	case 0xFF02:
		return b.serialCtrl
	case 0xFF04:
		return b.tmr.Divider()
	case 0xFF05:
		return b.tmr.Value()
	case 0xFF06:
		return b.tmr.Modulo()
	case 0xFF07:
		return b.tmr.TAC()
	case 0xFF0F:
		return b.nv.ReadIF()
	case 0xFF40:
		return b.ppu.LCDC()
	case 0xFF41:
		return b.ppu.STAT()
	case 0xFF42:
		return b.ppu.ScrollY()
	case 0xFF43:
		return b.ppu.ScrollX()
	case 0xFF44:
		return b.ppu.CurrentLine()
	case 0xFF45:
		return b.ppu.CompareLine()
	case 0xFF47:
		return b.ppu.BGPalette()
	case 0xFF48:
		return b.ppu.ObjPalette(0)
	case 0xFF49:
		return b.ppu.ObjPalette(1)
	case 0xFF4A:
		return b.ppu.WindowY()
	case 0xFF4B:
		return b.ppu.WindowX()
	case 0xFF10, 0xFF11, 0xFF12, 0xFF13, 0xFF14,
		0xFF16, 0xFF17, 0xFF18, 0xFF19,
		0xFF1A, 0xFF1B, 0xFF1C, 0xFF1D, 0xFF1E,
		0xFF20, 0xFF21, 0xFF22, 0xFF23, 0xFF24, 0xFF25, 0xFF26:
		return b.soundRegs[addr-0xFF10]
	default:
		if addr >= 0xFF30 && addr <= 0xFF3F {
			return b.soundRegs[addr-0xFF10]
		}
		return 0xFF
	}
}

func (b *Bus) writeIO(addr uint16, val uint8) {
	switch addr {
	case 0xFF00:
		b.pad.Control(val)
	case 0xFF01:
		b.serialData = val
	case 0xFF02:
		b.serialCtrl = val
	case 0xFF04:
		b.tmr.ResetDivider()
	case 0xFF05:
		b.tmr.SetValue(val)
	case 0xFF06:
		b.tmr.SetModulo(val)
	case 0xFF07:
		b.tmr.SetTAC(val)
	case 0xFF0F:
		b.nv.WriteIF(val)
	case 0xFF40:
		b.ppu.SetLCDC(val)
	case 0xFF41:
		b.ppu.SetSTAT(val)
	case 0xFF42:
		b.ppu.SetScrollY(val)
	case 0xFF43:
		b.ppu.SetScrollX(val)
	case 0xFF45:
		b.ppu.SetCompareLine(val)
	case 0xFF46:
		b.dmaSrc = uint16(val) << 8
		b.dmaActive = true
		b.dmaCycles = 0
	case 0xFF47:
		b.ppu.SetBGPalette(val)
	case 0xFF48:
		b.ppu.SetObjPalette(0, val)
	case 0xFF49:
		b.ppu.SetObjPalette(1, val)
	case 0xFF4A:
		b.ppu.SetWindowY(val)
	case 0xFF4B:
		b.ppu.SetWindowX(val)
	case 0xFF50:
		b.boot.Disable()
	case 0xFF10, 0xFF11, 0xFF12, 0xFF13, 0xFF14,
		0xFF16, 0xFF17, 0xFF18, 0xFF19,
		0xFF1A, 0xFF1B, 0xFF1C, 0xFF1D, 0xFF1E,
		0xFF20, 0xFF21, 0xFF22, 0xFF23, 0xFF24, 0xFF25, 0xFF26:
		b.soundRegs[addr-0xFF10] = val
	default:
		if addr >= 0xFF30 && addr <= 0xFF3F {
			b.soundRegs[addr-0xFF10] = val
		}
		// Everything else in the I/O page, and 0xFF7F, discards writes.
	}
}

func (b *Bus) String() string {
	return fmt.Sprintf("peripheral.Bus{dmaActive=%v}", b.dmaActive)
}
