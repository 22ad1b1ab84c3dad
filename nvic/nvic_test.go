package nvic

import "testing"

func TestPowerOn(t *testing.T) {
	c := New()
	if c.MasterEnable() {
		t.Error("master enable set after power on")
	}
	if got, want := c.ReadIE(), uint8(0xE0); got != want {
		t.Errorf("ReadIE() after power on = %.2X, want %.2X", got, want)
	}
	if got, want := c.ReadIF(), uint8(0xE0); got != want {
		t.Errorf("ReadIF() after power on = %.2X, want %.2X", got, want)
	}
}

func TestUnusedBitsForcedHigh(t *testing.T) {
	c := New()
	c.WriteIE(0xFF)
	c.WriteIF(0xFF)
	if got, want := c.ReadIE(), uint8(0xFF); got != want {
		t.Errorf("ReadIE() = %.2X, want %.2X", got, want)
	}
	if got, want := c.ReadIF(), uint8(0xFF); got != want {
		t.Errorf("ReadIF() = %.2X, want %.2X", got, want)
	}
}

func TestPriority(t *testing.T) {
	tests := []struct {
		name    string
		enable  uint8
		pending uint8
		want    Source
	}{
		{"vblank beats everything", 0x1F, 0x1F, VBlank},
		{"lcdstat beats timer", 0x1E, 0x1E, LCDStat},
		{"timer beats serial", 0x1C, 0x1C, Timer},
		{"serial beats joypad", 0x18, 0x18, Serial},
		{"only joypad", 0x10, 0x10, Joypad},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c := New()
			c.SetMasterEnable(true)
			c.WriteIE(tc.enable)
			c.WriteIF(tc.pending)
			got, ok := c.NextToRun()
			if !ok {
				t.Fatalf("NextToRun() reported nothing runnable, want %s", tc.want)
			}
			if got != tc.want {
				t.Errorf("NextToRun() = %s, want %s", got, tc.want)
			}
		})
	}
}

func TestMasterEnableGatesDispatchNotPending(t *testing.T) {
	c := New()
	c.WriteIE(0x01)
	c.Raise(VBlank)
	if !c.Pending() {
		t.Error("Pending() should be true regardless of IME (needed to wake from HALT)")
	}
	if _, ok := c.NextToRun(); ok {
		t.Error("NextToRun() should refuse to dispatch with IME clear")
	}
	c.SetMasterEnable(true)
	got, ok := c.NextToRun()
	if !ok || got != VBlank {
		t.Errorf("NextToRun() = (%s, %v), want (VBlank, true)", got, ok)
	}
}

func TestAckClearsPendingAndMasterEnable(t *testing.T) {
	c := New()
	c.SetMasterEnable(true)
	c.WriteIE(0x1F)
	c.Raise(Timer)
	c.Raise(Serial)
	c.Ack(Timer)
	if c.MasterEnable() {
		t.Error("Ack() should clear master enable")
	}
	if got, want := c.pending, uint8(0x08); got != want {
		t.Errorf("pending after Ack(Timer) = %.2X, want %.2X (Serial still set)", got, want)
	}
}

func TestVectors(t *testing.T) {
	tests := []struct {
		s    Source
		want uint16
	}{
		{VBlank, 0x0040},
		{LCDStat, 0x0048},
		{Timer, 0x0050},
		{Serial, 0x0058},
		{Joypad, 0x0060},
	}
	for _, tc := range tests {
		if got := tc.s.Vector(); got != tc.want {
			t.Errorf("%s.Vector() = %.4X, want %.4X", tc.s, got, tc.want)
		}
	}
}
