package peripheral

import "github.com/jmchacon/gbcore/io"

// Joypad implements the Game Boy's single input register (0xFF00). Writing
// selects one of two button banks (action or direction); reading back
// returns the four button lines for whichever bank is currently selected,
// active low, matching real hardware's open-collector wiring.
type Joypad struct {
	actionSelected    bool
	directionSelected bool
	keys              io.KeySetter
}

// NewJoypad wraps a host-provided key source. A nil source reads back as
// "nothing pressed", so callers that never wire a controller still get a
// well-defined joypad register.
func NewJoypad(keys io.KeySetter) *Joypad {
	j := &Joypad{keys: keys}
	j.PowerOn()
	return j
}

func (j *Joypad) PowerOn() {
	j.actionSelected = false
	j.directionSelected = false
}

// Control handles a write to 0xFF00: bits 5 and 4 select the action and
// direction button banks respectively, active low.
func (j *Joypad) Control(data uint8) {
	j.actionSelected = data>>5&0x01 == 0
	j.directionSelected = data>>4&0x01 == 0
}

func (j *Joypad) pressed(k io.Key) bool {
	return j.keys != nil && j.keys.Pressed(k)
}

// Read returns the current value of 0xFF00, active low for both the bank
// select bits and the four button lines of whichever bank is selected. If
// neither bank is selected no buttons are visible, matching real hardware.
func (j *Joypad) Read() uint8 {
	bankBits := uint8(0)
	if !j.actionSelected {
		bankBits |= 1 << 5
	}
	if !j.directionSelected {
		bankBits |= 1 << 4
	}

	switch {
	case j.actionSelected && !j.directionSelected:
		return bankBits | lines(!j.pressed(io.KeyStart), !j.pressed(io.KeySelect), !j.pressed(io.KeyB), !j.pressed(io.KeyA))
	case !j.actionSelected && j.directionSelected:
		return bankBits | lines(!j.pressed(io.KeyDown), !j.pressed(io.KeyUp), !j.pressed(io.KeyLeft), !j.pressed(io.KeyRight))
	default:
		return bankBits | 0x0F
	}
}

func lines(b3, b2, b1, b0 bool) uint8 {
	v := uint8(0)
	if b3 {
		v |= 1 << 3
	}
	if b2 {
		v |= 1 << 2
	}
	if b1 {
		v |= 1 << 1
	}
	if b0 {
		v |= 1 << 0
	}
	return v
}
