package ppu

const (
	kLCDC_ENABLE      = uint8(0x80)
	kLCDC_WIN_MAP     = uint8(0x40)
	kLCDC_WIN_ENABLE  = uint8(0x20)
	kLCDC_BG_DATA     = uint8(0x10)
	kLCDC_BG_MAP      = uint8(0x08)
	kLCDC_OBJ_SIZE    = uint8(0x04)
	kLCDC_OBJ_ENABLE  = uint8(0x02)
	kLCDC_BG_ENABLE   = uint8(0x01)

	kSTAT_LYC_ENABLE = uint8(0x40)
	kSTAT_OAM_ENABLE = uint8(0x20)
	kSTAT_VBL_ENABLE = uint8(0x10)
	kSTAT_HBL_ENABLE = uint8(0x08)
	kSTAT_LYC_EQ     = uint8(0x04)
	kSTAT_MODE_MASK  = uint8(0x03)
	kSTAT_UNUSED     = uint8(0x80)
)

// LCDC returns the LCD control register (0xFF40).
func (c *Chip) LCDC() uint8 {
	var b uint8
	if c.lcdEnabled {
		b |= kLCDC_ENABLE
	}
	if c.windowTileMap == TileMap9C00 {
		b |= kLCDC_WIN_MAP
	}
	if c.windowEnabled {
		b |= kLCDC_WIN_ENABLE
	}
	if c.bgTileDataArea {
		b |= kLCDC_BG_DATA
	}
	if c.bgTileMap == TileMap9C00 {
		b |= kLCDC_BG_MAP
	}
	if c.objectSize == Object8x16 {
		b |= kLCDC_OBJ_SIZE
	}
	if c.objectEnabled {
		b |= kLCDC_OBJ_ENABLE
	}
	if c.bgEnabled {
		b |= kLCDC_BG_ENABLE
	}
	return b
}

// SetLCDC writes the LCD control register.
func (c *Chip) SetLCDC(val uint8) {
	c.lcdEnabled = val&kLCDC_ENABLE != 0
	if val&kLCDC_WIN_MAP != 0 {
		c.windowTileMap = TileMap9C00
	} else {
		c.windowTileMap = TileMap9800
	}
	c.windowEnabled = val&kLCDC_WIN_ENABLE != 0
	c.bgTileDataArea = val&kLCDC_BG_DATA != 0
	if val&kLCDC_BG_MAP != 0 {
		c.bgTileMap = TileMap9C00
	} else {
		c.bgTileMap = TileMap9800
	}
	if val&kLCDC_OBJ_SIZE != 0 {
		c.objectSize = Object8x16
	} else {
		c.objectSize = Object8x8
	}
	c.objectEnabled = val&kLCDC_OBJ_ENABLE != 0
	c.bgEnabled = val&kLCDC_BG_ENABLE != 0

	// Turning the LCD off resets the scanline position, matching real
	// hardware: the next enable always restarts at line 0, OAM scan.
	if !c.lcdEnabled {
		c.currentLine = 0
		c.mode = ModeOAMScan
		c.cycles = 0
		c.newMode = true
	}
}

// STAT returns the LCD status register (0xFF41), bit 7 always reads 1.
func (c *Chip) STAT() uint8 {
	var b uint8 = kSTAT_UNUSED
	if c.lineCompareITEnable {
		b |= kSTAT_LYC_ENABLE
	}
	if c.oamITEnable {
		b |= kSTAT_OAM_ENABLE
	}
	if c.vblankITEnable {
		b |= kSTAT_VBL_ENABLE
	}
	if c.hblankITEnable {
		b |= kSTAT_HBL_ENABLE
	}
	if c.lineCompareState {
		b |= kSTAT_LYC_EQ
	}
	return b | uint8(c.mode)&kSTAT_MODE_MASK
}

// SetSTAT writes the writable bits (6-3) of the LCD status register; mode
// and the LYC-equal flag are read only, driven by Run.
func (c *Chip) SetSTAT(val uint8) {
	c.lineCompareITEnable = val&kSTAT_LYC_ENABLE != 0
	c.oamITEnable = val&kSTAT_OAM_ENABLE != 0
	c.vblankITEnable = val&kSTAT_VBL_ENABLE != 0
	c.hblankITEnable = val&kSTAT_HBL_ENABLE != 0
}

func (c *Chip) ScrollY() uint8      { return c.scrollY }
func (c *Chip) SetScrollY(v uint8)  { c.scrollY = v }
func (c *Chip) ScrollX() uint8      { return c.scrollX }
func (c *Chip) SetScrollX(v uint8)  { c.scrollX = v }
func (c *Chip) CompareLine() uint8  { return c.compareLine }
func (c *Chip) SetCompareLine(v uint8) { c.compareLine = v }
func (c *Chip) WindowY() uint8      { return c.windowY }
func (c *Chip) SetWindowY(v uint8)  { c.windowY = v }
func (c *Chip) WindowX() uint8      { return c.windowX }
func (c *Chip) SetWindowX(v uint8)  { c.windowX = v }

// BGPalette returns the background palette register (0xFF47) encoded back
// to a byte.
func (c *Chip) BGPalette() uint8 { return encodePalette(c.bgPalette) }

// SetBGPalette decodes a write to the background palette register.
func (c *Chip) SetBGPalette(val uint8) { c.bgPalette = decodePalette(val) }

// ObjPalette returns object palette n (0 or 1) encoded back to a byte.
func (c *Chip) ObjPalette(n int) uint8 { return encodePalette(c.objPalette[n]) }

// SetObjPalette decodes a write to object palette n (0 or 1).
func (c *Chip) SetObjPalette(n int, val uint8) { c.objPalette[n] = decodePalette(val) }
