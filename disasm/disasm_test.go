package disasm

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jrastelli/gbcore/memory"
)

func TestAtPC_BasicInstructions(t *testing.T) {
	mem := memory.New()

	// Work RAM, since ROM-space writes only drive the bank controller.
	mem.Write(0xC100, 0x00) // NOP
	mem.Write(0xC101, 0x3E) // LD A,$42
	mem.Write(0xC102, 0x42)
	mem.Write(0xC103, 0xC3) // JP $1234
	mem.Write(0xC104, 0x34)
	mem.Write(0xC105, 0x12)

	nop := AtPC(0xC100, mem)
	assert.Equal(t, "NOP", nop.Text)
	assert.Equal(t, uint16(1), nop.Length)

	ldAn := AtPC(0xC101, mem)
	assert.Equal(t, "LD A,$42", ldAn.Text)
	assert.Equal(t, uint16(2), ldAn.Length)

	jp := AtPC(0xC103, mem)
	assert.Equal(t, "JP $1234", jp.Text)
	assert.Equal(t, uint16(3), jp.Length)
}

func TestAtPC_RegisterToRegisterLoad(t *testing.T) {
	mem := memory.New()
	mem.Write(0xC200, 0x41) // LD B,C

	line := AtPC(0xC200, mem)
	assert.Equal(t, "LD B,C", line.Text)
}

func TestAtPC_CBPrefixed(t *testing.T) {
	mem := memory.New()
	mem.Write(0xC300, 0xCB)
	mem.Write(0xC301, 0x7C) // BIT 7,H

	line := AtPC(0xC300, mem)
	assert.Equal(t, "BIT 7,H", line.Text)
	assert.Equal(t, uint16(2), line.Length)
}

func TestRange_AdvancesByInstructionLength(t *testing.T) {
	mem := memory.New()
	mem.Write(0xC400, 0x00)
	mem.Write(0xC401, 0x3E)
	mem.Write(0xC402, 0x07)
	mem.Write(0xC403, 0x00)

	lines := Range(0xC400, 3, mem)
	assert.Equal(t, uint16(0xC400), lines[0].Address)
	assert.Equal(t, uint16(0xC401), lines[1].Address)
	assert.Equal(t, uint16(0xC403), lines[2].Address)
}
