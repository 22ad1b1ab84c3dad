// Package cartridge implements the Game Boy cartridge header parser and the
// two supported storage controllers: a fixed ROM-only cart and a banked
// cart with switchable ROM/RAM banks and an optional real-time clock,
// grounded on the MBC3 controller. Each variant satisfies the Cartridge
// interface; peripheral.Bus holds one and forwards the three ROM/RAM
// address ranges to it, the same shape the teacher's memory.Bank gives
// atari2600's basicCart.
package cartridge

import "fmt"

const (
	kHEADER_TYPE     = 0x0147
	kHEADER_ROM_SIZE = 0x0148
	kHEADER_RAM_SIZE = 0x0149

	kROM_BANK_SIZE = 0x4000 // 16KiB, banks 0 and N.
	kRAM_BANK_SIZE = 0x2000 // 8KiB.
)

// Cartridge is the storage-controller interface every cart type implements.
// Bank 0 and bank N are read/written separately since real MBCs route
// writes to bank 0's address range to control registers rather than ROM.
type Cartridge interface {
	ReadROM0(addr uint16) uint8
	ReadROMN(addr uint16) uint8
	ReadRAM(addr uint16) uint8
	WriteROM0(addr uint16, val uint8)
	WriteROMN(addr uint16, val uint8)
	WriteRAM(addr uint16, val uint8)
	// Run advances any cartridge-local clock (the MBC3 RTC) by the given
	// number of CPU clocks. A no-op for controllers with no clock.
	Run(cycles int)
}

// UnsupportedMBC reports a cartridge header byte this implementation has
// no controller for.
type UnsupportedMBC struct {
	Type uint8
}

func (e UnsupportedMBC) Error() string {
	return fmt.Sprintf("unsupported cartridge type byte: 0x%.2X", e.Type)
}

// BadHeader reports a cartridge image too small to contain a valid header,
// one with an unknown ROM or RAM size code, or a ROM-only image that is not
// exactly 32KiB.
type BadHeader struct {
	Reason string
}

func (e BadHeader) Error() string {
	return fmt.Sprintf("bad cartridge header: %s", e.Reason)
}

// New parses a raw cartridge image and returns the matching controller.
func New(image []byte) (Cartridge, error) {
	if len(image) <= kHEADER_RAM_SIZE {
		return nil, BadHeader{Reason: fmt.Sprintf("image is only %d bytes, too small for a header", len(image))}
	}
	typ := image[kHEADER_TYPE]
	romBanks, err := romBanksFromCode(image[kHEADER_ROM_SIZE])
	if err != nil {
		return nil, err
	}
	ramSize, err := ramSizeFromCode(image[kHEADER_RAM_SIZE])
	if err != nil {
		return nil, err
	}

	switch typ {
	case 0x00:
		return newROMOnly(image)
	case 0x01, 0x02, 0x03, // MBC1(+RAM)(+BATTERY)
		0x0F, 0x10, 0x11, 0x12, 0x13, // MBC3(+TIMER)(+RAM)(+BATTERY)
		0x19, 0x1A, 0x1B, 0x1C, 0x1D, 0x1E: // MBC5(+RAM)(+BATTERY)(+RUMBLE)
		return newBanked(image, romBanks, ramSize)
	default:
		return nil, UnsupportedMBC{Type: typ}
	}
}

func romBanksFromCode(b uint8) (int, error) {
	if b > 0x08 {
		return 0, BadHeader{Reason: fmt.Sprintf("unknown ROM size code 0x%.2X", b)}
	}
	return 2 << uint(b), nil
}

func ramSizeFromCode(b uint8) (int, error) {
	switch b {
	case 0x00:
		return 0, nil
	case 0x01:
		return 2 * 1024, nil
	case 0x02:
		return 8 * 1024, nil
	case 0x03:
		return 32 * 1024, nil
	case 0x04:
		return 128 * 1024, nil
	case 0x05:
		return 64 * 1024, nil
	default:
		return 0, BadHeader{Reason: fmt.Sprintf("unknown RAM size code 0x%.2X", b)}
	}
}
