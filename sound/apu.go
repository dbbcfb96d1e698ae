// Package sound implements the passive register surface of the Game
// Boy's audio block. It stores every NRxx register and wave-RAM byte
// and reproduces the hardware's read masks and power-off register
// clearing, but performs no channel synthesis: no driver in this core
// consumes a sample stream, so there is nothing for synthesis to feed.
package sound

import (
	"github.com/jrastelli/gbcore/addr"
	"github.com/jrastelli/gbcore/bit"
)

const waveRAMSize = 16

// APU is the audio register block: NR10-NR52 plus wave RAM, with the
// read-back masks and master-enable behavior real hardware shows.
type APU struct {
	enabled bool

	NR10, NR11, NR12, NR13, NR14 uint8
	NR21, NR22, NR23, NR24       uint8
	NR30, NR31, NR32, NR33, NR34 uint8
	NR41, NR42, NR43, NR44       uint8
	NR50, NR51, NR52             uint8
	waveRAM                      [waveRAMSize]uint8
}

// New returns a powered-off APU register block.
func New() *APU {
	return &APU{}
}

// ReadRegister returns a register's value with its write-only and
// always-set bits masked in, matching what real hardware reads back.
func (a *APU) ReadRegister(address uint16) uint8 {
	switch address {
	case addr.NR10:
		return a.NR10 | 0b1000_0000
	case addr.NR11:
		return a.NR11 | 0b0011_1111
	case addr.NR12:
		return a.NR12
	case addr.NR13:
		return 0xFF
	case addr.NR14:
		return a.NR14 | 0b1011_1111
	case addr.NR21:
		return a.NR21 | 0b0011_1111
	case addr.NR22:
		return a.NR22
	case addr.NR23:
		return 0xFF
	case addr.NR24:
		return a.NR24 | 0b1011_1111
	case addr.NR30:
		return a.NR30 | 0b0111_1111
	case addr.NR31:
		return 0xFF
	case addr.NR32:
		return a.NR32 | 0b1001_1111
	case addr.NR33:
		return 0xFF
	case addr.NR34:
		return a.NR34 | 0b1011_1111
	case addr.NR41:
		return 0xFF
	case addr.NR42:
		return a.NR42
	case addr.NR43:
		return a.NR43
	case addr.NR44:
		return a.NR44 | 0b1011_1111
	case addr.NR50:
		return a.NR50
	case addr.NR51:
		return a.NR51
	case addr.NR52:
		return a.NR52&0x80 | 0b0111_0000
	}
	if address >= addr.WaveRAMStart && address <= addr.WaveRAMEnd {
		return a.waveRAM[address-addr.WaveRAMStart]
	}
	return 0xFF
}

// WriteRegister stores a register write. Writes to any register other
// than NR52 and wave RAM are ignored while the block is powered off,
// matching real hardware.
func (a *APU) WriteRegister(address uint16, value uint8) {
	isWaveRAM := address >= addr.WaveRAMStart && address <= addr.WaveRAMEnd

	if !a.enabled && address != addr.NR52 && !isWaveRAM {
		return
	}

	switch address {
	case addr.NR10:
		a.NR10 = value
	case addr.NR11:
		a.NR11 = value
	case addr.NR12:
		a.NR12 = value
	case addr.NR13:
		a.NR13 = value
	case addr.NR14:
		a.NR14 = value
	case addr.NR21:
		a.NR21 = value
	case addr.NR22:
		a.NR22 = value
	case addr.NR23:
		a.NR23 = value
	case addr.NR24:
		a.NR24 = value
	case addr.NR30:
		a.NR30 = value
	case addr.NR31:
		a.NR31 = value
	case addr.NR32:
		a.NR32 = value
	case addr.NR33:
		a.NR33 = value
	case addr.NR34:
		a.NR34 = value
	case addr.NR41:
		a.NR41 = value
	case addr.NR42:
		a.NR42 = value
	case addr.NR43:
		a.NR43 = value
	case addr.NR44:
		a.NR44 = value
	case addr.NR50:
		a.NR50 = value
	case addr.NR51:
		a.NR51 = value
	case addr.NR52:
		a.setNR52(value)
	}

	if isWaveRAM {
		a.waveRAM[address-addr.WaveRAMStart] = value
	}
}

func (a *APU) setNR52(value uint8) {
	a.NR52 = value
	a.enabled = bit.IsSet(7, value)
	if !a.enabled {
		a.NR10, a.NR11, a.NR12, a.NR13, a.NR14 = 0, 0, 0, 0, 0
		a.NR21, a.NR22, a.NR23, a.NR24 = 0, 0, 0, 0
		a.NR30, a.NR31, a.NR32, a.NR33, a.NR34 = 0, 0, 0, 0, 0
		a.NR41, a.NR42, a.NR43, a.NR44 = 0, 0, 0, 0
		a.NR50, a.NR51 = 0, 0
	}
}

// Tick is a no-op hook kept so the bus can advance the APU uniformly
// alongside the timer and PPU if a future driver adds sample output.
func (a *APU) Tick(cycles int) {}

// PowerOn sets every register to its documented post-boot-ROM value,
// bypassing the powered-off write gate that WriteRegister enforces.
func (a *APU) PowerOn() {
	a.NR10, a.NR11, a.NR12, a.NR13, a.NR14 = 0x80, 0xBF, 0xF3, 0xFF, 0xBF
	a.NR21, a.NR22, a.NR23, a.NR24 = 0x3F, 0x00, 0xFF, 0xBF
	a.NR30, a.NR31, a.NR32, a.NR33, a.NR34 = 0x7F, 0xFF, 0x9F, 0xFF, 0xBF
	a.NR41, a.NR42, a.NR43, a.NR44 = 0xFF, 0x00, 0x00, 0xBF
	a.NR50, a.NR51, a.NR52 = 0x77, 0xF3, 0xF1
	a.enabled = true
}
