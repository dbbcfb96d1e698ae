// Package gbcore is the emulator driver: it owns the CPU, MMU and PPU,
// advances them together one frame at a time, and exposes the external
// ScreenSink/InputSource seams a frontend drives.
package gbcore

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/jrastelli/gbcore/cpu"
	"github.com/jrastelli/gbcore/input"
	"github.com/jrastelli/gbcore/memory"
	"github.com/jrastelli/gbcore/timing"
	"github.com/jrastelli/gbcore/video"
)

// postBootDIVSeed is the DIV/system-counter value observed right after
// the DMG boot ROM hands off to cartridge code.
const postBootDIVSeed = 0xABCC

// Emulator composes one CPU, one MMU and one PPU into a runnable
// machine. Unlike the MMU owning a PPU reference, the PPU holds a
// pointer back into the MMU; Emulator is what ticks both per M-cycle
// block executed by the CPU.
type Emulator struct {
	cpu *cpu.CPU
	ppu *video.PPU
	mem *memory.MMU

	lastInput   input.Snapshot
	frameCount  uint64
}

// New returns an Emulator with no cartridge inserted (an open slot).
func New() *Emulator {
	return newFromMMU(memory.NewWithCartridge(memory.NewCartridge()))
}

// NewWithFile loads the ROM at path and returns an Emulator ready to run
// it, or an error if the file can't be read or the cartridge header
// names banking hardware this core doesn't implement.
func NewWithFile(path string) (*Emulator, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading ROM file: %w", err)
	}

	cart, err := memory.NewCartridgeFromBytes(data)
	if err != nil {
		return nil, fmt.Errorf("parsing cartridge header: %w", err)
	}

	slog.Debug("loaded ROM", "path", path, "size", len(data), "title", cart.Title)

	return newFromMMU(memory.NewWithCartridge(cart)), nil
}

func newFromMMU(mem *memory.MMU) *Emulator {
	mem.SetTimerSeed(postBootDIVSeed)

	e := &Emulator{
		cpu: cpu.New(mem),
		ppu: video.NewPPU(mem),
		mem: mem,
	}
	e.cpu.Reset()

	return e
}

// AttachSink wires an external ScreenSink that receives per-pixel writes
// and a present call at the end of every rendered frame.
func (e *Emulator) AttachSink(sink video.ScreenSink) {
	e.ppu.AttachSink(sink)
}

// FrameBuffer returns the most recently rendered frame, for callers that
// poll the image instead of (or in addition to) an attached ScreenSink.
func (e *Emulator) FrameBuffer() *video.FrameBuffer {
	return e.ppu.FrameBuffer()
}

// FrameCount returns the number of frames completed since power-on.
func (e *Emulator) FrameCount() uint64 {
	return e.frameCount
}

// MMU exposes the memory bus, mainly for tests and disassembly tooling.
func (e *Emulator) MMU() *memory.MMU {
	return e.mem
}

// CPU exposes the register file, mainly for tests and disassembly tooling.
func (e *Emulator) CPU() *cpu.CPU {
	return e.cpu
}

// RunFrame applies one InputSource snapshot and runs the machine until at
// least 70224 T-cycles (one frame) have elapsed (one Step per CPU unit of
// work, the PPU and timer/serial ticked in lockstep with every cycle it
// consumes). The last Step may overshoot the frame budget; the excess is
// not carried into the next frame.
func (e *Emulator) RunFrame(source input.Source) {
	e.applyInput(source.Poll())

	total := 0
	for total < timing.CyclesPerFrame {
		cycles := e.cpu.Step()
		e.mem.Tick(cycles)
		e.ppu.Tick(cycles)
		total += cycles
	}

	e.frameCount++
	if e.frameCount%60 == 0 {
		slog.Debug("frame completed", "frame", e.frameCount, "pc", fmt.Sprintf("0x%04X", e.cpu.PC()))
	}
}
