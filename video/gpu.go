package video

import (
	"fmt"
	"log/slog"

	"github.com/jrastelli/gbcore/addr"
	"github.com/jrastelli/gbcore/bit"
	"github.com/jrastelli/gbcore/memory"
)

// Mode is the PPU's current rendering stage, matching STAT bits 1-0.
type Mode int

const (
	// HBlank (Mode 0): horizontal blank, CPU can access VRAM/OAM.
	HBlank Mode = 0
	// VBlank (Mode 1): vertical blank, CPU can access VRAM/OAM.
	VBlank Mode = 1
	// OAMScan (Mode 2): PPU is scanning OAM, CPU cannot access OAM.
	OAMScan Mode = 2
	// Transfer (Mode 3): PPU is reading VRAM, CPU cannot access VRAM/OAM.
	Transfer Mode = 3
)

const (
	hblankCycles       = 204
	oamScanCycles      = 80
	transferCycles     = 172
	scanlineCycles     = oamScanCycles + transferCycles + hblankCycles
	framesCyclesPerDot = 70224
)

// PPU renders the background/window/sprite layers scanline by scanline
// into a FrameBuffer and, when attached, pushes the same pixels through
// a ScreenSink. It holds a direct pointer to the MMU exactly like the
// CPU does, since LCDC/STAT/SCY/.../OAM/VRAM all live in the MMU's flat
// address space rather than behind a dispatch layer of their own.
type PPU struct {
	mmu *memory.MMU
	fb  *FrameBuffer
	sink ScreenSink

	bgPriority     [Size]uint8 // background color index per pixel, for sprite-behind-bg checks
	spritePriority spritePriority

	mode       Mode
	line       int
	cycles     int
	vblankAux  int
	vblankLine int
	windowLine int
	scanlineDone bool
}

// NewPPU constructs a PPU bound to mmu. Register state (LCDC/BGP/etc.) is
// owned by the MMU and is expected to already hold its post-boot-ROM
// values by the time the PPU starts ticking.
func NewPPU(mmu *memory.MMU) *PPU {
	p := &PPU{
		mmu:  mmu,
		fb:   NewFrameBuffer(),
		mode: VBlank,
		line: 144,
	}

	lcdc := mmu.Read(addr.LCDC)
	bgp := mmu.Read(addr.BGP)
	slog.Debug("PPU initialized", "LCDC", fmt.Sprintf("0x%02X", lcdc), "display_enabled", lcdc&0x80 != 0, "BGP", fmt.Sprintf("0x%02X", bgp))

	return p
}

// AttachSink wires an external ScreenSink; it may be nil, in which case
// the PPU still renders into its internal FrameBuffer.
func (p *PPU) AttachSink(sink ScreenSink) {
	p.sink = sink
}

// FrameBuffer returns the PPU's internal frame, for callers that poll
// the full image rather than receiving a ScreenSink push.
func (p *PPU) FrameBuffer() *FrameBuffer {
	return p.fb
}

// Tick advances the PPU's mode state machine by cycles T-cycles,
// rendering a scanline on entry to Transfer mode and firing STAT/VBlank
// interrupts on mode transitions per the enabled STAT conditions.
func (p *PPU) Tick(cycles int) {
	p.cycles += cycles

	switch p.mode {
	case HBlank:
		if p.cycles < hblankCycles {
			break
		}
		p.cycles -= hblankCycles
		p.setMode(OAMScan)
		p.setLY(p.line + 1)

		if p.line == 144 {
			p.setMode(VBlank)
			p.vblankLine = 0
			p.vblankAux = p.cycles
			p.windowLine = 0

			p.mmu.RequestInterrupt(addr.VBlankInterrupt)
			if p.mmu.ReadBit(statVblankIRQ, addr.STAT) {
				p.mmu.RequestInterrupt(addr.LCDSTATInterrupt)
			}
			if p.sink != nil {
				p.sink.PresentFrame()
			}
		} else if p.mmu.ReadBit(statOAMIRQ, addr.STAT) {
			p.mmu.RequestInterrupt(addr.LCDSTATInterrupt)
		}
	case VBlank:
		p.vblankAux += cycles

		if p.vblankAux >= scanlineCycles {
			p.vblankAux -= scanlineCycles
			p.vblankLine++
			if p.vblankLine <= 9 {
				p.setLY(p.line + 1)
			}
		}

		if p.cycles >= 4104 && p.vblankAux >= 4 && p.line == 153 {
			p.setLY(0)
		}

		if p.cycles >= 4560 {
			p.cycles -= 4560
			p.setMode(OAMScan)
			if p.mmu.ReadBit(statOAMIRQ, addr.STAT) {
				p.mmu.RequestInterrupt(addr.LCDSTATInterrupt)
			}
		}
	case OAMScan:
		if p.cycles >= oamScanCycles {
			p.cycles -= oamScanCycles
			p.setMode(Transfer)
			p.scanlineDone = false
		}
	case Transfer:
		if !p.scanlineDone {
			if p.lcdcBit(lcdDisplayEnable) {
				p.drawScanline()
			}
			p.scanlineDone = true
		}

		if p.cycles >= transferCycles {
			p.cycles -= transferCycles
			p.setMode(HBlank)
			if p.mmu.ReadBit(statHBlankIRQ, addr.STAT) {
				p.mmu.RequestInterrupt(addr.LCDSTATInterrupt)
			}
		}
	}

	if p.cycles >= framesCyclesPerDot {
		p.cycles -= framesCyclesPerDot
	}
}

func (p *PPU) drawScanline() {
	if !p.lcdcBit(lcdDisplayEnable) {
		for x := 0; x < Width; x++ {
			p.plot(x, p.line, 0, ShadeForIndex(0))
		}
		return
	}

	p.drawBackground()
	p.drawWindow()
	p.drawSprites()
}

// plot writes a pixel into the internal framebuffer and, if attached,
// pushes it to the external sink.
func (p *PPU) plot(x, y int, index uint8, c Color) {
	p.fb.Set(x, y, index, c)
	p.bgPriority[y*Width+x] = index
	if p.sink != nil {
		p.sink.WritePixel(x, y, c)
	}
}

func (p *PPU) drawBackground() {
	if !p.lcdcBit(bgDisplay) {
		bgp := p.mmu.Read(addr.BGP)
		idx := bgp & 0x03
		c := ApplyPalette(bgp, 0)
		for x := 0; x < Width; x++ {
			p.plot(x, p.line, idx, c)
		}
		return
	}

	signedTiles := !p.lcdcBit(bgWindowTileData)
	tileMapZero := !p.lcdcBit(bgTileMap)

	tilesBase := addr.TileData0
	if signedTiles {
		tilesBase = addr.TileData2
	}
	mapBase := addr.TileMap1
	if tileMapZero {
		mapBase = addr.TileMap0
	}

	scx := p.mmu.Read(addr.SCX)
	scy := p.mmu.Read(addr.SCY)
	scrolledLine := (p.line + int(scy)) & 0xFF
	tileRow := (scrolledLine / 8) * 32
	tileY2 := (scrolledLine % 8) * 2

	for x := 0; x < Width; x++ {
		mapX := (x + int(scx)) & 0xFF
		tileCol := mapX / 8
		tileXOffset := mapX % 8

		tileNum := p.mmu.Read(mapBase + uint16(tileRow+tileCol))
		tileAddr := tileAddress(tilesBase, tileNum, tileY2, signedTiles)

		low := p.mmu.Read(tileAddr)
		high := p.mmu.Read(tileAddr + 1)
		idx := tilePixel(low, high, uint8(7-tileXOffset))

		bgp := p.mmu.Read(addr.BGP)
		p.plot(x, p.line, idx, ApplyPalette(bgp, idx))
	}
}

func (p *PPU) drawWindow() {
	if p.windowLine > 143 {
		return
	}
	if !p.lcdcBit(windowDisplayEnable) {
		return
	}

	wx := int(p.mmu.Read(addr.WX)) - 7
	wy := p.mmu.Read(addr.WY)

	if wx > 159 {
		return
	}
	if int(wy) > p.line {
		return
	}

	signedTiles := !p.lcdcBit(bgWindowTileData)
	tileMapZero := !p.lcdcBit(windowTileMap)

	tilesBase := addr.TileData0
	if signedTiles {
		tilesBase = addr.TileData2
	}
	mapBase := addr.TileMap1
	if tileMapZero {
		mapBase = addr.TileMap0
	}

	tileRow := (p.windowLine / 8) * 32
	tileY2 := (p.windowLine % 8) * 2

	for tileCol := 0; tileCol < 32; tileCol++ {
		tileNum := p.mmu.Read(mapBase + uint16(tileRow+tileCol))
		tileAddr := tileAddress(tilesBase, tileNum, tileY2, signedTiles)

		low := p.mmu.Read(tileAddr)
		high := p.mmu.Read(tileAddr + 1)

		for px := 0; px < 8; px++ {
			x := wx + tileCol*8 + px
			if x < wx || x < 0 || x >= Width {
				continue
			}

			idx := tilePixel(low, high, uint8(7-px))
			bgp := p.mmu.Read(addr.BGP)
			p.plot(x, p.line, idx, ApplyPalette(bgp, idx))
		}
	}

	p.windowLine++
}

func (p *PPU) drawSprites() {
	if !p.lcdcBit(spriteDisplayEnable) {
		return
	}

	height := 8
	if p.lcdcBit(spriteSize) {
		height = 16
	}

	var candidates []int
	for sprite := 0; sprite < 40; sprite++ {
		oamAddr := addr.OAMStart + uint16(sprite*4)
		spriteY := int(p.mmu.Read(oamAddr)) - 16

		if spriteY > p.line || spriteY+height <= p.line {
			continue
		}
		candidates = append(candidates, sprite)
		if len(candidates) >= 10 {
			break
		}
	}

	p.spritePriority.clear()
	for _, sprite := range candidates {
		oamAddr := addr.OAMStart + uint16(sprite*4)
		spriteX := int(p.mmu.Read(oamAddr+1)) - 8
		for px := 0; px < 8; px++ {
			p.spritePriority.tryClaim(spriteX+px, sprite, spriteX)
		}
	}

	for _, sprite := range candidates {
		oamAddr := addr.OAMStart + uint16(sprite*4)
		spriteY := int(p.mmu.Read(oamAddr)) - 16
		spriteX := int(p.mmu.Read(oamAddr+1)) - 8
		tile := p.mmu.Read(oamAddr + 2)
		flags := p.mmu.Read(oamAddr + 3)

		owned := false
		for px := 0; px < 8; px++ {
			if p.spritePriority.owner(spriteX+px) == sprite {
				owned = true
				break
			}
		}
		if !owned {
			continue
		}

		tileMask := 0xFF
		if height == 16 {
			tileMask = 0xFE
		}
		tile16 := (int(tile) & tileMask) * 16

		paletteAddr := addr.OBP0
		if bit.IsSet(4, flags) {
			paletteAddr = addr.OBP1
		}
		flipX := bit.IsSet(5, flags)
		flipY := bit.IsSet(6, flags)
		aboveBG := !bit.IsSet(7, flags)

		pixelY := p.line - spriteY
		if flipY {
			pixelY = height - 1 - pixelY
		}

		offset := 0
		if height == 16 && pixelY >= 8 {
			pixelY -= 8
			offset = 16
		}
		tileAddr := addr.TileData0 + uint16(tile16+pixelY*2+offset)
		low := p.mmu.Read(tileAddr)
		high := p.mmu.Read(tileAddr + 1)

		for px := 0; px < 8; px++ {
			x := spriteX + px
			if p.spritePriority.owner(x) != sprite {
				continue
			}

			bitIdx := uint8(7 - px)
			if flipX {
				bitIdx = uint8(px)
			}
			idx := tilePixel(low, high, bitIdx)
			if idx == 0 {
				continue
			}

			if !aboveBG && p.bgPriority[p.line*Width+x] != 0 {
				continue
			}

			palette := p.mmu.Read(paletteAddr)
			p.plot(x, p.line, idx, ApplyPalette(palette, idx))
		}
	}
}

// tileAddress resolves a tile index to the address of its first row,
// offset by tileY2 (2 bytes per row) into that tile's 16-byte bitmap.
func tileAddress(base uint16, tileNum uint8, tileY2 int, signed bool) uint16 {
	if signed {
		return uint16(int(base) + int(int8(tileNum))*16 + tileY2)
	}
	return base + uint16(tileNum)*16 + uint16(tileY2)
}

// tilePixel decodes the 2-bit color index at bitIdx (7=leftmost) from a
// tile row's low/high bitplane bytes.
func tilePixel(low, high uint8, bitIdx uint8) uint8 {
	var idx uint8
	if bit.IsSet(bitIdx, low) {
		idx |= 1
	}
	if bit.IsSet(bitIdx, high) {
		idx |= 2
	}
	return idx
}

func (p *PPU) lcdcBit(flag lcdcFlag) bool {
	return bit.IsSet(uint8(flag), p.mmu.Read(addr.LCDC))
}

func (p *PPU) compareLYtoLYC() {
	ly := p.mmu.Read(addr.LY)
	lyc := p.mmu.Read(addr.LYC)
	stat := p.mmu.Read(addr.STAT)

	if ly == lyc {
		stat = bit.Set(statLYCCondition, stat)
		if bit.IsSet(statLYCIRQ, stat) {
			p.mmu.RequestInterrupt(addr.LCDSTATInterrupt)
		}
	} else {
		stat = bit.Reset(statLYCCondition, stat)
	}

	p.mmu.Write(addr.STAT, stat)
}

func (p *PPU) setMode(mode Mode) {
	p.mode = mode
	stat := p.mmu.Read(addr.STAT)
	stat = stat&0xFC | uint8(mode)
	p.mmu.Write(addr.STAT, stat)
}

func (p *PPU) setLY(line int) {
	p.line = line
	p.mmu.Write(addr.LY, uint8(p.line))
	p.compareLYtoLYC()
}

// STAT register bit positions.
const (
	statLYCIRQ       uint8 = 6
	statOAMIRQ       uint8 = 5
	statVblankIRQ    uint8 = 4
	statHBlankIRQ    uint8 = 3
	statLYCCondition uint8 = 2
)

// LCDC register bit positions.
type lcdcFlag uint8

const (
	lcdDisplayEnable    lcdcFlag = 7
	windowTileMap       lcdcFlag = 6
	windowDisplayEnable lcdcFlag = 5
	bgWindowTileData    lcdcFlag = 4
	bgTileMap           lcdcFlag = 3
	spriteSize          lcdcFlag = 2
	spriteDisplayEnable lcdcFlag = 1
	bgDisplay           lcdcFlag = 0
)
