package memory

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNoMBC(t *testing.T) {
	rom := make([]uint8, 0x8000)
	for i := range rom {
		rom[i] = uint8(i & 0xFF)
	}
	mbc := NewNoMBC(rom, 0x2000)

	assert.Equal(t, uint8(0x34), mbc.ReadROM(0x1234))
	mbc.WriteROM(0x1234, 0xFF)
	assert.Equal(t, uint8(0x34), mbc.ReadROM(0x1234), "ROM writes must be ignored")

	assert.Equal(t, uint8(0), mbc.ReadExtRAM(0xA000))
	mbc.WriteExtRAM(0xA010, 0x42)
	assert.Equal(t, uint8(0x42), mbc.ReadExtRAM(0xA010))
}

func TestMBC1(t *testing.T) {
	t.Run("rom bank 0 is fixed", func(t *testing.T) {
		rom := make([]uint8, 0x8000)
		for i := range rom {
			rom[i] = uint8(i & 0xFF)
		}
		mbc := NewMBC1(rom, 0)

		for addr := uint16(0x0000); addr < 0x4000; addr += 0x123 {
			assert.Equal(t, uint8(addr&0xFF), mbc.ReadROM(addr))
		}
	})

	t.Run("rom bank switching", func(t *testing.T) {
		rom := make([]uint8, 4*0x4000)
		for bank := 0; bank < 4; bank++ {
			for i := 0; i < 0x4000; i++ {
				rom[bank*0x4000+i] = uint8(bank)
			}
		}
		mbc := NewMBC1(rom, 0)

		assert.Equal(t, uint8(1), mbc.ReadROM(0x4000), "bank register defaults to 1")

		mbc.WriteROM(0x2000, 2)
		assert.Equal(t, uint8(2), mbc.ReadROM(0x4000))

		mbc.WriteROM(0x2000, 0)
		assert.Equal(t, uint8(1), mbc.ReadROM(0x4000), "bank 0 is substituted with 1")
	})

	t.Run("ram disabled by default", func(t *testing.T) {
		mbc := NewMBC1(make([]uint8, 0x8000), 4*0x2000)
		assert.Equal(t, uint8(0xFF), mbc.ReadExtRAM(0xA000))
	})

	t.Run("ram enable and banking", func(t *testing.T) {
		mbc := NewMBC1(make([]uint8, 0x8000), 4*0x2000)

		mbc.WriteROM(0x0000, 0x0A)
		mbc.WriteExtRAM(0xA000, 0x42)
		assert.Equal(t, uint8(0x42), mbc.ReadExtRAM(0xA000))

		mbc.WriteROM(0x0000, 0x00)
		assert.Equal(t, uint8(0xFF), mbc.ReadExtRAM(0xA000), "disabled RAM reads as 0xFF")
	})

	t.Run("ram banking mode switches ram banks", func(t *testing.T) {
		mbc := NewMBC1(make([]uint8, 0x8000), 4*0x2000)
		mbc.WriteROM(0x0000, 0x0A)
		mbc.WriteROM(0x6000, 1) // RAM banking mode

		for bank := uint8(0); bank < 4; bank++ {
			mbc.WriteROM(0x4000, bank)
			mbc.WriteExtRAM(0xA000, 0x10+bank)
		}
		for bank := uint8(0); bank < 4; bank++ {
			mbc.WriteROM(0x4000, bank)
			assert.Equal(t, uint8(0x10+bank), mbc.ReadExtRAM(0xA000))
		}
	})
}

func TestMBC3RTC(t *testing.T) {
	mbc := NewMBC3(make([]uint8, 0x8000), 0x2000, true)
	mbc.WriteROM(0x0000, 0x0A) // enable RAM/RTC access

	mbc.WriteROM(0x4000, 0x08) // select RTC seconds register
	mbc.WriteExtRAM(0xA000, 30)
	assert.Equal(t, uint8(30), mbc.ReadExtRAM(0xA000), "write is visible without a fresh latch")

	mbc.Tick(cpuFrequency * 2) // advance two in-game seconds
	assert.Equal(t, uint8(30), mbc.ReadExtRAM(0xA000), "latched snapshot doesn't move until latched again")

	mbc.WriteROM(0x6000, 0)
	mbc.WriteROM(0x6000, 1) // 0-then-1 latch sequence
	assert.Equal(t, uint8(32), mbc.ReadExtRAM(0xA000))
}

func TestMBC3RTCHalt(t *testing.T) {
	mbc := NewMBC3(make([]uint8, 0x8000), 0x2000, true)
	mbc.WriteROM(0x0000, 0x0A)

	mbc.WriteROM(0x4000, 0x0C) // day-high register
	mbc.WriteExtRAM(0xA000, 0x40)

	mbc.WriteROM(0x4000, 0x08)
	mbc.WriteExtRAM(0xA000, 10)

	mbc.Tick(cpuFrequency * 5)

	mbc.WriteROM(0x6000, 0)
	mbc.WriteROM(0x6000, 1)
	assert.Equal(t, uint8(10), mbc.ReadExtRAM(0xA000), "halted clock must not advance")
}

func TestMBC5(t *testing.T) {
	rom := make([]uint8, 512*0x4000)
	for bank := 0; bank < 512; bank++ {
		rom[bank*0x4000] = uint8(bank)
		rom[bank*0x4000+1] = uint8(bank >> 8)
	}
	mbc := NewMBC5(rom, 0x2000)

	mbc.WriteROM(0x2000, 0xFF)
	mbc.WriteROM(0x3000, 0x01)
	assert.Equal(t, uint8(0xFF), mbc.ReadROM(0x4000))
	assert.Equal(t, uint8(0x01), mbc.ReadROM(0x4001))

	mbc.WriteROM(0x2000, 0)
	mbc.WriteROM(0x3000, 0)
	assert.Equal(t, uint8(0), mbc.ReadROM(0x4000), "MBC5 performs no bank-0 substitution")
}
