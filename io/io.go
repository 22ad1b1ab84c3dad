// Package io defines the basic interfaces for working with the Game Boy's
// single bi-directional input device, the joypad. Implementors of the host
// side (keyboard polling, a game controller, a test harness) satisfy
// KeySetter; the peripheral package's Joypad reads button state through it.
package io

// Key identifies one of the eight physical Game Boy buttons.
type Key int

const (
	KeyRight Key = iota
	KeyLeft
	KeyUp
	KeyDown
	KeyA
	KeyB
	KeySelect
	KeyStart
)

// KeySetter is implemented by the host side and consulted by the joypad
// whenever a bank (action or direction) is selected and read.
type KeySetter interface {
	// Set records whether the given key is currently pressed.
	Set(k Key, pressed bool)
	// Pressed reports whether the given key is currently held.
	Pressed(k Key) bool
}
