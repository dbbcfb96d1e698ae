package cpu

import (
	"testing"

	"github.com/jrastelli/gbcore/addr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeBus is a flat 64KiB address space used to exercise the CPU in
// isolation from the real MMU.
type fakeBus struct {
	mem [0x10000]uint8
}

func newFakeBus() *fakeBus { return &fakeBus{} }

func (b *fakeBus) Read(address uint16) uint8 { return b.mem[address] }

func (b *fakeBus) Write(address uint16, value uint8) { b.mem[address] = value }

func (b *fakeBus) loadAt(pc uint16, bytes ...uint8) {
	for i, v := range bytes {
		b.mem[int(pc)+i] = v
	}
}

func newTestCPU() (*CPU, *fakeBus) {
	bus := newFakeBus()
	c := New(bus)
	c.Reset()
	return c, bus
}

func TestNOP(t *testing.T) {
	c, bus := newTestCPU()
	bus.loadAt(c.pc, 0x00)

	cycles := c.Step()

	assert.Equal(t, 4, cycles)
	assert.Equal(t, uint16(0x0101), c.pc)
}

func TestLoadBCImmediate(t *testing.T) {
	c, bus := newTestCPU()
	bus.loadAt(c.pc, 0x01, 0x34, 0x12) // LD BC,0x1234

	cycles := c.Step()

	assert.Equal(t, 12, cycles)
	assert.Equal(t, uint16(0x1234), c.getBC())
}

func TestAddAccumulatorHalfCarry(t *testing.T) {
	c, bus := newTestCPU()
	c.a = 0x0F
	c.b = 0x01
	bus.loadAt(c.pc, 0x80) // ADD A,B

	c.Step()

	assert.Equal(t, uint8(0x10), c.a)
	assert.True(t, c.hasFlag(halfCarryFlag))
	assert.False(t, c.hasFlag(zeroFlag))
	assert.False(t, c.hasFlag(subFlag))
	assert.False(t, c.hasFlag(carryFlag))
}

func TestDAAAfterAdd(t *testing.T) {
	c, bus := newTestCPU()
	c.a = 0x09
	c.b = 0x08
	bus.loadAt(c.pc, 0x80, 0x27) // ADD A,B ; DAA

	c.Step()
	assert.Equal(t, uint8(0x11), c.a)

	c.Step()
	assert.Equal(t, uint8(0x17), c.a, "DAA uses the half-carry from 9+8 to correct 0x11 into packed BCD 17")
	assert.False(t, c.hasFlag(carryFlag))
}

func TestConditionalJRNotTaken(t *testing.T) {
	c, bus := newTestCPU()
	c.setFlag(zeroFlag)
	bus.loadAt(c.pc, 0x20, 0x05) // JR NZ,+5, but Z is set so it must not branch
	start := c.pc

	cycles := c.Step()

	assert.Equal(t, 8, cycles, "condition false costs the shorter duration")
	assert.Equal(t, start+2, c.pc, "PC only advances past the two instruction bytes")
}

func TestRST18(t *testing.T) {
	c, bus := newTestCPU()
	bus.loadAt(c.pc, 0xDF) // RST 0x18
	c.sp = 0xFFFE

	cycles := c.Step()

	assert.Equal(t, 16, cycles)
	assert.Equal(t, uint16(0x0018), c.pc)
	assert.Equal(t, uint16(0xFFFC), c.sp)
	assert.Equal(t, uint16(0x0101), c.popStack(), "the return address pushed was right after RST")
}

func TestPushWritesWithoutReadingStack(t *testing.T) {
	c, bus := newTestCPU()
	c.sp = 0xC010
	c.setBC(0xBEEF)
	// Poison the stack area so a PUSH that accidentally reads first would
	// leave evidence of it; the corrected implementation never reads.
	bus.mem[0xC00E] = 0xAA
	bus.mem[0xC00F] = 0xAA

	c.pushStack(c.getBC())

	assert.Equal(t, uint16(0xC00E), c.sp)
	assert.Equal(t, uint8(0xBE), bus.mem[0xC00F], "high byte written at SP-1")
	assert.Equal(t, uint8(0xEF), bus.mem[0xC00E], "low byte written at SP-2")
}

func TestAdcUsesCarryFlagNotHalfCarryFlag(t *testing.T) {
	c, _ := newTestCPU()
	c.a = 0x01
	c.setFlag(halfCarryFlag)
	c.resetFlag(carryFlag)

	c.adcToA(0x01)

	assert.Equal(t, uint8(0x02), c.a, "stale half-carry flag must not be added in as a carry-in")
}

func TestAdcHalfCarryIncludesCarryIn(t *testing.T) {
	c, _ := newTestCPU()
	c.a = 0x0E
	c.setFlag(carryFlag)

	c.adcToA(0x01)

	assert.Equal(t, uint8(0x10), c.a)
	assert.True(t, c.hasFlag(halfCarryFlag), "0xE + 0x1 + carry-in of 1 crosses the nibble boundary")
}

func TestSbcUsesCarryFlagAsBorrowIn(t *testing.T) {
	c, _ := newTestCPU()
	c.a = 0x05
	c.setFlag(carryFlag)

	c.sbcFromA(0x01)

	assert.Equal(t, uint8(0x03), c.a)
}

func TestInterruptDispatchClearsIMEAndLowestIFBit(t *testing.T) {
	c, bus := newTestCPU()
	c.ime = true
	c.sp = 0xFFFE
	bus.Write(addr.IE, 0xFF)
	bus.Write(addr.IF, uint8(addr.TimerInterrupt)|uint8(addr.VBlankInterrupt))

	cycles := c.Step()

	assert.Equal(t, 20, cycles)
	assert.False(t, c.ime)
	assert.Equal(t, uint16(0x0040), c.pc, "VBlank has the lowest vector and must win over Timer")
	assert.Equal(t, uint8(addr.TimerInterrupt), bus.Read(addr.IF), "only VBlank's IF bit is cleared")
}

func TestHaltWakesOnPendingInterruptEvenWithIMEClear(t *testing.T) {
	c, bus := newTestCPU()
	c.ime = false
	c.halted = true
	bus.Write(addr.IE, uint8(addr.JoypadInterrupt))
	bus.Write(addr.IF, uint8(addr.JoypadInterrupt))
	bus.loadAt(c.pc, 0x00) // NOP, executed once HALT releases

	cycles := c.Step()

	assert.False(t, c.halted)
	assert.Equal(t, 4, cycles, "the instruction after waking still just runs normally")
}

func TestHaltWakesAndDispatchesWhenIMESet(t *testing.T) {
	c, bus := newTestCPU()
	c.ime = true
	c.sp = 0xFFFE
	c.halted = true
	bus.Write(addr.IE, uint8(addr.VBlankInterrupt))
	bus.Write(addr.IF, uint8(addr.VBlankInterrupt))

	cycles := c.Step()

	assert.False(t, c.halted, "HALT must release before the interrupt is serviced")
	assert.Equal(t, 20, cycles, "the pending interrupt is dispatched, not skipped")
	assert.False(t, c.ime)
	assert.Equal(t, uint16(0x0040), c.pc)

	nextCycles := c.Step()
	assert.Equal(t, 4, nextCycles, "the handler's own NOP now executes normally")
}

func TestHaltWithoutPendingInterruptBillsFourCycles(t *testing.T) {
	c, _ := newTestCPU()
	c.halted = true

	cycles := c.Step()

	assert.Equal(t, 4, cycles)
	assert.True(t, c.halted)
}

func TestEITakesEffectAfterFollowingInstruction(t *testing.T) {
	c, bus := newTestCPU()
	bus.loadAt(c.pc, 0xFB, 0x00, 0x00) // EI ; NOP ; NOP

	c.Step() // EI
	require.False(t, c.ime, "IME does not flip on immediately")

	c.Step() // NOP
	assert.True(t, c.ime, "IME turns on once the instruction after EI has run")
}

func TestCBBitOnMemoryOperand(t *testing.T) {
	c, bus := newTestCPU()
	c.setHL(0xC000)
	bus.mem[0xC000] = 0b0000_0100
	bus.loadAt(c.pc, 0xCB, 0x66) // BIT 4,(HL)

	cycles := c.Step()

	assert.Equal(t, 12, cycles)
	assert.True(t, c.hasFlag(zeroFlag), "bit 4 is clear in 0b0000_0100")
}

func TestCBSetOnRegister(t *testing.T) {
	c, bus := newTestCPU()
	c.b = 0x00
	bus.loadAt(c.pc, 0xCB, 0xC0) // SET 0,B

	cycles := c.Step()

	assert.Equal(t, 8, cycles)
	assert.Equal(t, uint8(0x01), c.b)
}
