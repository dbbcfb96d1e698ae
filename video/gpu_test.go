package video

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jrastelli/gbcore/addr"
	"github.com/jrastelli/gbcore/memory"
)

func newTestPPU() (*PPU, *memory.MMU) {
	mmu := memory.New()
	mmu.Write(addr.LCDC, 0x91) // LCD on, BG on, unsigned tiles, map 0
	mmu.Write(addr.BGP, 0xE4) // identity palette: 3,2,1,0
	return NewPPU(mmu), mmu
}

func TestPPU_TickAdvancesThroughModes(t *testing.T) {
	p, mmu := newTestPPU()
	p.mode = OAMScan
	p.line = 0
	p.cycles = 0

	p.Tick(oamScanCycles)
	assert.Equal(t, Transfer, p.mode)

	p.Tick(transferCycles)
	assert.Equal(t, HBlank, p.mode)
	assert.Equal(t, uint8(0), mmu.Read(addr.STAT)&0x03)

	p.Tick(hblankCycles)
	assert.Equal(t, OAMScan, p.mode)
	assert.Equal(t, 1, p.line)
}

func TestPPU_EntersVBlankAfter144Lines(t *testing.T) {
	p, mmu := newTestPPU()
	p.mode = OAMScan
	p.line = 143
	mmu.Write(addr.LY, 143)

	p.Tick(oamScanCycles)
	p.Tick(transferCycles)
	p.Tick(hblankCycles)

	assert.Equal(t, VBlank, p.mode)
	assert.Equal(t, 144, p.line)
	assert.NotZero(t, mmu.Read(addr.IF)&uint8(addr.VBlankInterrupt))
}

func TestPPU_BackgroundTileDecoding(t *testing.T) {
	p, mmu := newTestPPU()

	// tile 0 at tilemap 0x9800, row 0 is all color index 3 (both bitplane
	// bytes 0xFF -> 1|2 for every pixel).
	mmu.Write(addr.TileMap0, 0)
	mmu.Write(addr.TileData0, 0xFF)
	mmu.Write(addr.TileData0+1, 0xFF)

	p.line = 0
	p.drawBackground()

	assert.Equal(t, uint8(3), p.fb.Index(0, 0))
	assert.Equal(t, ShadeForIndex(3), p.fb.Pixel(0, 0))
}

type recordingSink struct {
	pixels   int
	presents int
}

func (r *recordingSink) WritePixel(x, y int, c Color) { r.pixels++ }
func (r *recordingSink) PresentFrame()                { r.presents++ }

func TestPPU_PushesPixelsToAttachedSink(t *testing.T) {
	p, _ := newTestPPU()
	sink := &recordingSink{}
	p.AttachSink(sink)

	p.line = 0
	p.drawBackground()

	assert.Equal(t, Width, sink.pixels)
}

func TestSpritePriority_LowerXWins(t *testing.T) {
	var sp spritePriority
	sp.clear()

	assert.True(t, sp.tryClaim(10, 0, 5))
	assert.False(t, sp.tryClaim(10, 1, 10), "higher X must not steal the pixel")
	assert.Equal(t, 0, sp.owner(10))
}

func TestSpritePriority_TieGoesToLowerOAMIndex(t *testing.T) {
	var sp spritePriority
	sp.clear()

	assert.True(t, sp.tryClaim(12, 3, 12))
	assert.True(t, sp.tryClaim(12, 1, 12), "lower OAM index must win a tie")
	assert.Equal(t, 1, sp.owner(12))
}
