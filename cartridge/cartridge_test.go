package cartridge

import "testing"

func makeHeader(typ, romSize, ramSize uint8, total int) []byte {
	img := make([]byte, total)
	img[kHEADER_TYPE] = typ
	img[kHEADER_ROM_SIZE] = romSize
	img[kHEADER_RAM_SIZE] = ramSize
	return img
}

func TestNewROMOnly(t *testing.T) {
	img := makeHeader(0x00, 0x00, 0x00, 2*kROM_BANK_SIZE)
	c, err := New(img)
	if err != nil {
		t.Fatalf("New() err = %v, want nil", err)
	}
	if _, ok := c.(*ROMOnly); !ok {
		t.Fatalf("New() = %T, want *ROMOnly", c)
	}
}

func TestROMOnlyReadsSecondBank(t *testing.T) {
	img := makeHeader(0x00, 0x00, 0x00, 2*kROM_BANK_SIZE)
	img[0x0000] = 0x11
	img[kROM_BANK_SIZE] = 0x22
	c, err := New(img)
	if err != nil {
		t.Fatalf("New() err = %v", err)
	}
	if got, want := c.ReadROM0(0x0000), uint8(0x11); got != want {
		t.Errorf("ReadROM0(0) = %.2X, want %.2X", got, want)
	}
	if got, want := c.ReadROMN(0x0000), uint8(0x22); got != want {
		t.Errorf("ReadROMN(0) = %.2X, want %.2X (second bank, not a repeat of bank 0)", got, want)
	}
}

func TestNewUnsupportedMBC(t *testing.T) {
	img := makeHeader(0xFE, 0x00, 0x00, 2*kROM_BANK_SIZE)
	_, err := New(img)
	if _, ok := err.(UnsupportedMBC); !ok {
		t.Fatalf("New() err = %v (%T), want UnsupportedMBC", err, err)
	}
}

func TestNewBadHeaderTooSmall(t *testing.T) {
	_, err := New(make([]byte, 4))
	if _, ok := err.(BadHeader); !ok {
		t.Fatalf("New() err = %v (%T), want BadHeader", err, err)
	}
}

func TestBankedROMBankZeroPromotesToOne(t *testing.T) {
	img := makeHeader(0x13, 0x01, 0x03, 4*kROM_BANK_SIZE) // MBC3+RAM+BATTERY, 64KB ROM
	c, err := New(img)
	if err != nil {
		t.Fatalf("New() err = %v", err)
	}
	c.WriteROM0(0x2000, 0x00)
	// Write bank 2 at 0x8000 so we can distinguish bank 1 (promoted-to)
	// from bank 2.
	b := c.(*Banked)
	b.rom[2*kROM_BANK_SIZE] = 0xAB
	b.rom[1*kROM_BANK_SIZE] = 0xCD
	if got, want := c.ReadROMN(0x0000), uint8(0xCD); got != want {
		t.Errorf("ReadROMN() after bank select 0 = %.2X, want %.2X (bank 1)", got, want)
	}
	c.WriteROM0(0x2000, 0x02)
	if got, want := c.ReadROMN(0x0000), uint8(0xAB); got != want {
		t.Errorf("ReadROMN() after bank select 2 = %.2X, want %.2X", got, want)
	}
}

func TestBankedRAMEnableGate(t *testing.T) {
	img := makeHeader(0x13, 0x00, 0x03, 2*kROM_BANK_SIZE)
	c, err := New(img)
	if err != nil {
		t.Fatalf("New() err = %v", err)
	}
	if got, want := c.ReadRAM(0x0000), uint8(0xFF); got != want {
		t.Errorf("ReadRAM() with RAM disabled = %.2X, want %.2X", got, want)
	}
	c.WriteROM0(0x0000, 0x0A)
	c.WriteRAM(0x0000, 0x42)
	if got, want := c.ReadRAM(0x0000), uint8(0x42); got != want {
		t.Errorf("ReadRAM() after enable = %.2X, want %.2X", got, want)
	}
}

func TestBankedRTCLatchAndCarry(t *testing.T) {
	img := makeHeader(0x13, 0x00, 0x03, 2*kROM_BANK_SIZE)
	c, err := New(img)
	if err != nil {
		t.Fatalf("New() err = %v", err)
	}
	b := c.(*Banked)
	b.rtcSec = 59
	c.Run(cyclesPerSecond)
	if got, want := b.rtcSec, uint8(0); got != want {
		t.Errorf("rtcSec after rollover = %d, want %d", got, want)
	}
	if got, want := b.rtcMin, uint8(1); got != want {
		t.Errorf("rtcMin after rollover = %d, want %d", got, want)
	}

	c.WriteROM0(0x0000, 0x0A) // enable RAM/RTC access
	c.WriteROMN(0x4000, kRTC_MINUTES)
	c.WriteROMN(0x6000, 0x00)
	c.WriteROMN(0x6000, 0x01)
	if got, want := c.ReadRAM(0x0000), uint8(1); got != want {
		t.Errorf("latched minutes = %d, want %d", got, want)
	}
}

func TestBankedRTCHaltStopsClock(t *testing.T) {
	img := makeHeader(0x13, 0x00, 0x03, 2*kROM_BANK_SIZE)
	c, err := New(img)
	if err != nil {
		t.Fatalf("New() err = %v", err)
	}
	b := c.(*Banked)
	b.rtcHalt = true
	c.Run(cyclesPerSecond * 10)
	if b.rtcSec != 0 {
		t.Errorf("rtcSec advanced while halted: %d", b.rtcSec)
	}
}
