package memory

import (
	"fmt"

	"github.com/jrastelli/gbcore/addr"
	"github.com/jrastelli/gbcore/bit"
	"github.com/jrastelli/gbcore/serial"
	"github.com/jrastelli/gbcore/sound"
)

type memRegion uint8

const (
	regionROM memRegion = iota
	regionVRAM
	regionExtRAM
	regionWRAM
	regionEcho
	regionOAM
	regionIO
)

// JoypadKey identifies one of the eight Game Boy input lines.
type JoypadKey uint8

const (
	JoypadRight JoypadKey = iota
	JoypadLeft
	JoypadUp
	JoypadDown
	JoypadA
	JoypadB
	JoypadSelect
	JoypadStart
)

// MMU is the memory bus: it decodes every CPU-visible address into the
// cartridge's bank controller, VRAM/WRAM/OAM/HRAM, or one of the
// memory-mapped peripherals (timer, serial port, sound block, joypad).
type MMU struct {
	cart      *Cartridge
	mbc       MBC
	memory    []byte
	APU       *sound.APU
	regionMap [256]memRegion

	joypadButtons uint8
	joypadDpad    uint8

	serial serial.Port
	timer  *Timer
}

// New creates an MMU with no cartridge inserted, equivalent to powering
// on the console with an empty cartridge slot.
func New() *MMU {
	mmu := &MMU{
		memory:        make([]byte, 0x10000),
		cart:          NewCartridge(),
		mbc:           NewNoMBC(make([]byte, 0x8000), 0),
		APU:           sound.New(),
		joypadButtons: 0x0F,
		joypadDpad:    0x0F,
		timer:         NewTimer(0),
	}
	mmu.serial = serial.NewLogSink(func() { mmu.RequestInterrupt(addr.SerialInterrupt) })
	mmu.timer.RequestInterrupt = mmu.RequestInterrupt
	initRegionMap(mmu)
	mmu.applyPowerOnIO()
	return mmu
}

// applyPowerOnIO sets the joypad, LCD, interrupt, TMA/TAC and sound
// registers to their post-boot-ROM values. Registers not listed here (the
// serial port, LY, TIMA, the CGB stubs) keep their zero or device-reset
// state. DIV is seeded separately via SetTimerSeed, since
// its accurate value depends on the emulated boot-ROM hand-off cycle
// count rather than this fixed table.
func (m *MMU) applyPowerOnIO() {
	m.memory[addr.P1] = 0xCF
	m.memory[addr.LCDC] = 0x91
	m.memory[addr.STAT] = 0x81
	m.memory[addr.SCY] = 0x00
	m.memory[addr.SCX] = 0x00
	m.memory[addr.LYC] = 0x00
	m.memory[addr.BGP] = 0xFC
	m.memory[addr.OBP0] = 0xFF
	m.memory[addr.OBP1] = 0xFF
	m.memory[addr.WY] = 0x00
	m.memory[addr.WX] = 0x00
	m.memory[addr.IF] = 0xE1
	m.memory[addr.IE] = 0x00

	m.timer.Write(addr.TMA, 0x00)
	m.timer.Write(addr.TAC, 0xF8)

	m.APU.PowerOn()
}

// NewWithCartridge creates an MMU with the given cartridge inserted,
// constructing the bank controller its header calls for.
func NewWithCartridge(cart *Cartridge) *MMU {
	mmu := New()
	mmu.cart = cart

	switch cart.MBCKind {
	case NoMBCKind:
		mmu.mbc = NewNoMBC(cart.ROM(), cart.RAMSizeBytes)
	case MBC1Kind:
		mmu.mbc = NewMBC1(cart.ROM(), cart.RAMSizeBytes)
	case MBC3Kind:
		mmu.mbc = NewMBC3(cart.ROM(), cart.RAMSizeBytes, cart.HasRTC)
	case MBC5Kind:
		mmu.mbc = NewMBC5(cart.ROM(), cart.RAMSizeBytes)
	default:
		panic(fmt.Sprintf("unsupported MBC kind: %d", cart.MBCKind))
	}

	return mmu
}

// SetTimerSeed reseeds the internal timer divider, used to match the
// post-boot-ROM DIV state at power-on.
func (m *MMU) SetTimerSeed(seed uint16) {
	m.timer.Reset(seed)
}

// Tick advances the timer, the serial port and the bank controller (its
// real-time clock, if any) by cycles T-cycles. The PPU is not owned by the
// bus and is ticked separately by the driver; the APU is not ticked.
func (m *MMU) Tick(cycles int) {
	m.timer.Tick(cycles)
	if m.serial != nil {
		m.serial.Tick(cycles)
	}
	m.mbc.Tick(cycles)
}

func initRegionMap(m *MMU) {
	for i := 0x00; i <= 0x7F; i++ {
		m.regionMap[i] = regionROM
	}
	for i := 0x80; i <= 0x9F; i++ {
		m.regionMap[i] = regionVRAM
	}
	for i := 0xA0; i <= 0xBF; i++ {
		m.regionMap[i] = regionExtRAM
	}
	for i := 0xC0; i <= 0xDF; i++ {
		m.regionMap[i] = regionWRAM
	}
	for i := 0xE0; i <= 0xFD; i++ {
		m.regionMap[i] = regionEcho
	}
	m.regionMap[0xFE] = regionOAM
	m.regionMap[0xFF] = regionIO
}

// RequestInterrupt sets the matching bit of the IF register.
func (m *MMU) RequestInterrupt(interrupt addr.Interrupt) {
	flags := m.Read(addr.IF)
	m.Write(addr.IF, bit.Set(interrupt.Bit(), flags))
}

// ReadBit reports whether the given bit of the byte at address is set.
func (m *MMU) ReadBit(index uint8, address uint16) bool {
	return bit.IsSet(index, m.Read(address))
}

// SetBit sets or clears the given bit of the byte at address.
func (m *MMU) SetBit(index uint8, address uint16, set bool) {
	value := m.Read(address)
	if set {
		value = bit.Set(index, value)
	} else {
		value = bit.Reset(index, value)
	}
	m.Write(address, value)
}

// Read returns the byte visible to the CPU at address.
func (m *MMU) Read(address uint16) uint8 {
	switch m.regionMap[address>>8] {
	case regionROM:
		return m.mbc.ReadROM(address)
	case regionExtRAM:
		return m.mbc.ReadExtRAM(address)
	case regionVRAM, regionWRAM:
		return m.memory[address]
	case regionEcho:
		return m.memory[address-0x2000]
	case regionOAM:
		if address > addr.OAMEnd {
			return 0xFF
		}
		return m.memory[address]
	case regionIO:
		return m.readIO(address)
	default:
		panic(fmt.Sprintf("attempted read at unmapped address: 0x%04X", address))
	}
}

func (m *MMU) readIO(address uint16) uint8 {
	switch {
	case address == addr.SB || address == addr.SC:
		return m.serial.Read(address)
	case address == addr.DIV || address == addr.TIMA || address == addr.TMA || address == addr.TAC:
		return m.timer.Read(address)
	case address >= addr.AudioStart && address <= addr.AudioEnd:
		return m.APU.ReadRegister(address)
	case address == addr.IF:
		// Bits 5-7 are unused and always read back as 1.
		return m.memory[address] | 0xE0
	default:
		return m.memory[address]
	}
}

// Write stores value at the byte visible to the CPU at address.
func (m *MMU) Write(address uint16, value uint8) {
	switch m.regionMap[address>>8] {
	case regionROM:
		m.mbc.WriteROM(address, value)
	case regionExtRAM:
		m.mbc.WriteExtRAM(address, value)
	case regionVRAM, regionWRAM:
		m.memory[address] = value
	case regionEcho:
		m.memory[address-0x2000] = value
	case regionOAM:
		if address > addr.OAMEnd {
			return
		}
		m.memory[address] = value
	case regionIO:
		m.writeIO(address, value)
	default:
		panic(fmt.Sprintf("attempted write at unmapped address: 0x%04X", address))
	}
}

func (m *MMU) writeIO(address uint16, value uint8) {
	switch {
	case address == addr.P1:
		m.writeJoypad(value)
	case address == addr.SB || address == addr.SC:
		m.serial.Write(address, value)
	case address == addr.DIV || address == addr.TIMA || address == addr.TMA || address == addr.TAC:
		m.timer.Write(address, value)
	case address >= addr.AudioStart && address <= addr.AudioEnd:
		m.APU.WriteRegister(address, value)
	case address == addr.IF:
		m.memory[address] = value | 0xE0
	case address == addr.DMA:
		m.doOAMDMA(value)
	default:
		m.memory[address] = value
	}
}

// doOAMDMA copies the 160-byte OAM region from value<<8 into OAM, as
// triggered by a write to the DMA register.
func (m *MMU) doOAMDMA(value uint8) {
	source := uint16(value) << 8
	for i := uint16(0); i < 160; i++ {
		m.memory[addr.OAMStart+i] = m.Read(source + i)
	}
	m.memory[addr.DMA] = value
}

// updateJoypadRegister recomputes P1's low nibble from the selection
// bits (4-5) and the live button/d-pad state. Low means pressed.
func (m *MMU) updateJoypadRegister() {
	p1 := m.memory[addr.P1]
	result := uint8(0b11000000)
	result |= p1 & 0b00110000

	selectDpad := !bit.IsSet(4, p1)
	selectButtons := !bit.IsSet(5, p1)

	switch {
	case selectButtons && !selectDpad:
		result |= m.joypadButtons & 0x0F
	case selectDpad && !selectButtons:
		result |= m.joypadDpad & 0x0F
	case selectButtons && selectDpad:
		result |= m.joypadButtons & m.joypadDpad & 0x0F
	default:
		result |= 0x0F
	}

	m.memory[addr.P1] = result
}

func (m *MMU) writeJoypad(value uint8) {
	m.memory[addr.P1] = value & 0b00110000
	m.updateJoypadRegister()
}

// HandleKeyPress marks key as pressed and raises a joypad interrupt on
// any high-to-low transition.
func (m *MMU) HandleKeyPress(key JoypadKey) {
	oldButtons, oldDpad := m.joypadButtons, m.joypadDpad

	switch key {
	case JoypadRight:
		m.joypadDpad = bit.Reset(0, m.joypadDpad)
	case JoypadLeft:
		m.joypadDpad = bit.Reset(1, m.joypadDpad)
	case JoypadUp:
		m.joypadDpad = bit.Reset(2, m.joypadDpad)
	case JoypadDown:
		m.joypadDpad = bit.Reset(3, m.joypadDpad)
	case JoypadA:
		m.joypadButtons = bit.Reset(0, m.joypadButtons)
	case JoypadB:
		m.joypadButtons = bit.Reset(1, m.joypadButtons)
	case JoypadSelect:
		m.joypadButtons = bit.Reset(2, m.joypadButtons)
	case JoypadStart:
		m.joypadButtons = bit.Reset(3, m.joypadButtons)
	}

	buttonTransitions := oldButtons &^ m.joypadButtons
	dpadTransitions := oldDpad &^ m.joypadDpad
	if buttonTransitions|dpadTransitions != 0 {
		m.RequestInterrupt(addr.JoypadInterrupt)
	}

	m.updateJoypadRegister()
}

// HandleKeyRelease marks key as released.
func (m *MMU) HandleKeyRelease(key JoypadKey) {
	switch key {
	case JoypadRight:
		m.joypadDpad = bit.Set(0, m.joypadDpad)
	case JoypadLeft:
		m.joypadDpad = bit.Set(1, m.joypadDpad)
	case JoypadUp:
		m.joypadDpad = bit.Set(2, m.joypadDpad)
	case JoypadDown:
		m.joypadDpad = bit.Set(3, m.joypadDpad)
	case JoypadA:
		m.joypadButtons = bit.Set(0, m.joypadButtons)
	case JoypadB:
		m.joypadButtons = bit.Set(1, m.joypadButtons)
	case JoypadSelect:
		m.joypadButtons = bit.Set(2, m.joypadButtons)
	case JoypadStart:
		m.joypadButtons = bit.Set(3, m.joypadButtons)
	}

	m.updateJoypadRegister()
}
