package gbcore

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jrastelli/gbcore/input"
)

func TestNew_PowersOnAtPostBootState(t *testing.T) {
	e := New()

	assert.Equal(t, uint16(0x0100), e.CPU().PC())
	assert.Equal(t, uint16(0xFFFE), e.CPU().SP())
}

func TestRunFrame_AdvancesFrameCount(t *testing.T) {
	e := New()

	e.RunFrame(input.None{})

	assert.Equal(t, uint64(1), e.FrameCount())
}

func TestApplyInput_PressAndRelease(t *testing.T) {
	e := New()

	e.applyInput(input.Snapshot{A: true})
	// P1 selects the button row (bit 5 low) to read back the A line.
	e.MMU().Write(0xFF00, 0x10)
	assert.Equal(t, uint8(0), e.MMU().Read(0xFF00)&0x01, "A line low while held")

	e.applyInput(input.Snapshot{})
	e.MMU().Write(0xFF00, 0x10)
	assert.NotZero(t, e.MMU().Read(0xFF00)&0x01, "A line high once released")
}
