// Package bootrom implements the 256 byte power-on overlay mapped at
// 0x0000-0x00FF until the boot sequence disables it by writing to the
// bank-control register at 0xFF50. It is deliberately tiny -- the teacher
// would likely have inlined something this size directly into its bus,
// but peripheral already owns six other devices and the teacher's
// convention is one package per addressable chip.
package bootrom

import "fmt"

const size = 256

// Chip holds the boot image and the disable latch.
type Chip struct {
	image   [size]uint8
	enabled bool
}

// New returns a Chip loaded with image, enabled. image must be exactly 256
// bytes; a zero-length image is treated as "no boot ROM present" and the
// overlay starts disabled, letting a SoC run straight into cartridge code.
func New(image []byte) (*Chip, error) {
	c := &Chip{}
	if len(image) == 0 {
		return c, nil
	}
	if len(image) != size {
		return nil, fmt.Errorf("boot ROM image must be exactly %d bytes, got %d", size, len(image))
	}
	copy(c.image[:], image)
	c.enabled = true
	return c, nil
}

// Enabled reports whether the overlay is currently mapped.
func (c *Chip) Enabled() bool {
	return c.enabled
}

// Disable unmaps the overlay. This is permanent for the life of the chip;
// hardware provides no way to re-enable it.
func (c *Chip) Disable() {
	c.enabled = false
}

// Read returns the boot ROM byte at addr, which must be in 0x0000-0x00FF.
func (c *Chip) Read(addr uint16) uint8 {
	return c.image[addr&0xFF]
}
