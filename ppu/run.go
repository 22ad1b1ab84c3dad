package ppu

import "github.com/jmchacon/gbcore/nvic"

// Run advances the PPU by the given number of CPU clocks, cycling through
// OAM scan -> Draw -> HBlank (repeated for all 144 visible lines) -> a
// 10-line VBlank period, raising STAT and VBlank interrupts on nv at the
// documented mode transitions. It is a no-op while the LCD is disabled.
func (c *Chip) Run(cycles int, nv *nvic.Chip) {
	if !c.lcdEnabled {
		return
	}
	c.cycles += cycles

	switch c.mode {
	case ModeHBlank:
		if c.newMode && c.hblankITEnable {
			c.newMode = false
			nv.Raise(nvic.LCDStat)
		}
		if c.cycles >= kHBLANK_CYCLES {
			c.cycles %= kHBLANK_CYCLES
			if c.currentLine < ScreenHeight-1 {
				c.currentLine++
				c.compareLineCheck(nv)
				c.newMode = true
				c.mode = ModeOAMScan
			} else {
				c.newMode = true
				c.mode = ModeVBlank
			}
		}
	case ModeVBlank:
		if c.newMode {
			c.newMode = false
			nv.Raise(nvic.VBlank)
			if c.vblankITEnable {
				nv.Raise(nvic.LCDStat)
			}
		}
		if c.cycles/((c.vblankLine+1)*kONE_LINE_CYCLES) != 0 {
			c.vblankLine++
			c.currentLine++
			c.compareLineCheck(nv)
		}
		if c.cycles >= kVBLANK_CYCLES {
			c.cycles %= kVBLANK_CYCLES
			c.currentLine = 0
			c.vblankLine = 0
			c.newMode = true
			c.mode = ModeOAMScan
		}
	case ModeOAMScan:
		if c.newMode && c.oamITEnable {
			c.newMode = false
			nv.Raise(nvic.LCDStat)
		}
		if c.cycles >= kOAM_CYCLES {
			c.cycles %= kOAM_CYCLES
			c.newMode = true
			c.mode = ModeDraw
		}
	case ModeDraw:
		if c.cycles >= kDRAW_CYCLES {
			c.cycles %= kDRAW_CYCLES
			c.drawLine()
			c.mode = ModeHBlank
		}
	}
}

func (c *Chip) compareLineCheck(nv *nvic.Chip) {
	if c.currentLine == c.compareLine {
		c.lineCompareState = true
		if c.lineCompareITEnable {
			nv.Raise(nvic.LCDStat)
		}
	} else {
		c.lineCompareState = false
	}
}

// drawLine renders one full scanline (background/window, then sprites)
// into FrameBuffer at c.currentLine.
func (c *Chip) drawLine() {
	var bgLine [ScreenWidth]uint8

	if c.bgEnabled {
		y := c.currentLine
		for x := 0; x < ScreenWidth; x++ {
			var mapArea TileMapArea
			var yOff, xOff uint8

			winX := x + windowXOffset - int(c.windowX)
			if c.windowEnabled && c.windowY <= c.currentLine && winX >= 0 {
				mapArea = c.windowTileMap
				yOff = -c.windowY
				xOff = windowXOffset - c.windowX
			} else {
				mapArea = c.bgTileMap
				yOff = c.scrollY
				xOff = c.scrollX
			}

			mapY := uint16((y + yOff) / tileRowPixels)
			mapX := uint16((uint8(x) + xOff) / tileRowPixels)
			mapIdx := mapY*tileMapSize + mapX

			tileIdx := c.ReadVRAM(uint16(mapArea) + mapIdx)
			tileAddr := uint16(tileIdx) * tileBytes
			rowOffset := uint16((y+yOff)%tileRowPixels) * bytesPerTileRow

			lo, hi := c.bgTileData(tileAddr, rowOffset)

			bit := 7 - (uint8(x)+xOff)%tileRowPixels
			bit0 := (lo >> bit) & 0x01
			bit1 := (hi >> bit) & 0x01
			value := (bit1 << 1) | bit0

			c.FrameBuffer[int(y)*ScreenWidth+x] = c.bgPalette.shade(value)
			bgLine[x] = value
		}
	}

	if c.objectEnabled {
		c.drawSprites(&bgLine)
	}
}

// bgTileData returns (lowByte, highByte) of one tile row, honoring the
// signed $8800 addressing mode when background_tile_data_area is clear.
func (c *Chip) bgTileData(tileAddr, rowOffset uint16) (uint8, uint8) {
	addr := tileAddr + rowOffset
	if c.bgTileDataArea {
		return c.ReadVRAM(addr), c.ReadVRAM(addr + 1)
	}
	if addr < 0x0800 {
		addr += 0x1000
	}
	return c.ReadVRAM(addr), c.ReadVRAM(addr + 1)
}

func (c *Chip) drawSprites(bgLine *[ScreenWidth]uint8) {
	var candidates []uint16
	for i := uint16(0); i < numSpritesInOAM && len(candidates) < maxSpritesPerLine; i++ {
		addr := i * spriteAttrBytes
		yStart := int(c.ReadOAM(addr)) - spriteYOffset
		height := tileRowPixels
		if c.objectSize == Object8x16 {
			height = tileRowPixels * 2
		}
		yEnd := yStart + height - 1
		line := int(c.currentLine)
		if line >= yStart && line <= yEnd {
			candidates = append(candidates, addr)
		}
	}

	// Draw lowest priority (highest OAM index found) first so that
	// earlier OAM entries, which win ties, are painted last and survive.
	for i := len(candidates) - 1; i >= 0; i-- {
		c.drawSprite(candidates[i], bgLine)
	}
}

func (c *Chip) drawSprite(addr uint16, bgLine *[ScreenWidth]uint8) {
	y := c.currentLine
	yPos := int(c.ReadOAM(addr)) - spriteYOffset
	xPos := int(c.ReadOAM(addr + 1))
	tileIdx := c.ReadOAM(addr + 2)
	attr := c.ReadOAM(addr + 3)

	tileAddr := uint16(tileIdx) * tileBytes
	sizeMult := 1
	if c.objectSize == Object8x16 {
		tileAddr &^= 0x001F
		sizeMult = 2
	}

	bgOverSprite := attr&0x80 != 0
	yFlip := attr&0x40 != 0
	xFlip := attr&0x20 != 0
	paletteIdx := 0
	if attr&0x10 != 0 {
		paletteIdx = 1
	}

	rowOffset := int(y) - yPos
	var tileRowAddr uint16
	if !yFlip {
		tileRowAddr = tileAddr + uint16(rowOffset)*bytesPerTileRow
	} else {
		row := tileRowPixels*sizeMult - 1 - rowOffset
		tileRowAddr = tileAddr + uint16(row)*bytesPerTileRow
	}

	lo := c.ReadVRAM(tileRowAddr)
	hi := c.ReadVRAM(tileRowAddr + 1)

	for px := 0; px < tileRowPixels; px++ {
		var bit0, bit1 uint8
		if !xFlip {
			bit0 = (lo >> (7 - px)) & 0x01
			bit1 = (hi >> (7 - px)) & 0x01
		} else {
			bit0 = (lo >> px) & 0x01
			bit1 = (hi >> px) & 0x01
		}
		value := (bit1 << 1) | bit0

		screenX := xPos - spriteXOffset + px
		if screenX < 0 || screenX >= ScreenWidth || value == pixelTransparent {
			continue
		}
		if bgOverSprite && bgLine[screenX] != pixelTransparent {
			c.FrameBuffer[int(y)*ScreenWidth+screenX] = c.bgPalette.shade(bgLine[screenX])
			continue
		}
		c.FrameBuffer[int(y)*ScreenWidth+screenX] = c.objPalette[paletteIdx].shade(value)
	}
}
