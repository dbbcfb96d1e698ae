package memory

import (
	"testing"

	"github.com/jrastelli/gbcore/addr"
	"github.com/stretchr/testify/assert"
)

func TestTimerDivIncrementsWithSystemCounter(t *testing.T) {
	timer := NewTimer(0)

	timer.Tick(256)
	assert.Equal(t, uint8(1), timer.Read(addr.DIV))
}

func TestTimerDivResetOnWrite(t *testing.T) {
	timer := NewTimer(0)
	timer.Tick(1024)
	assert.NotEqual(t, uint8(0), timer.Read(addr.DIV))

	timer.Write(addr.DIV, 0xFF)
	assert.Equal(t, uint8(0), timer.Read(addr.DIV), "any write to DIV resets the whole counter")
}

func TestTimerTIMAIncrementsOnFallingEdge(t *testing.T) {
	timer := NewTimer(0)
	timer.Write(addr.TAC, 0x05) // enabled, bit 3 selected (every 16 cycles)

	timer.Tick(16)
	assert.Equal(t, uint8(1), timer.Read(addr.TIMA))
}

func TestTimerOverflowReloadsAfterDelay(t *testing.T) {
	var fired addr.Interrupt
	timer := NewTimer(0)
	timer.RequestInterrupt = func(i addr.Interrupt) { fired = i }
	timer.Write(addr.TMA, 0x10)
	timer.Write(addr.TAC, 0x05)
	timer.Write(addr.TIMA, 0xFF)

	timer.Tick(16) // falling edge -> overflow, TIMA set to 0, 4-cycle delay starts
	assert.Equal(t, uint8(0), timer.Read(addr.TIMA))
	assert.Zero(t, fired)

	timer.Tick(4) // delay elapses: TIMA reloads from TMA, interrupt flagged for next tick
	assert.Equal(t, uint8(0x10), timer.Read(addr.TIMA), "TIMA reloads from TMA after the delay")
	assert.Zero(t, fired, "the interrupt callback fires on the following tick, not this one")

	timer.Tick(1)
	assert.Equal(t, addr.TimerInterrupt, fired)
}
