// Package cpu implements the Sharp LR35902 instruction interpreter: the
// register file, the base and 0xCB-prefixed opcode tables, and the
// interrupt dispatcher.
package cpu

import (
	"fmt"

	"github.com/jrastelli/gbcore/addr"
)

// Bus is everything the CPU needs from the rest of the machine. It is
// deliberately narrow so the CPU never holds a direct reference to the
// MMU/PPU/timer: the driver that owns all of them implements Bus once and
// hands a single value down to the CPU, avoiding a cyclic dependency
// between the cpu and memory packages.
type Bus interface {
	Read(address uint16) uint8
	Write(address uint16, value uint8)
}

// CPU holds the Sharp LR35902 register file and executes instructions
// against a Bus.
type CPU struct {
	bus Bus

	a, f          uint8
	b, c          uint8
	d, e          uint8
	h, l          uint8
	sp, pc        uint16
	currentOpcode uint8

	ime     bool
	eiDelay int // 1 = IME turns on once the instruction in flight completes
	halted  bool
	stopped bool
}

// New creates a CPU wired to bus, with every register zeroed. Call Reset
// to bring it to the post-boot-ROM power-on state.
func New(bus Bus) *CPU {
	return &CPU{bus: bus}
}

// Reset sets every register and latch to the documented post-boot-ROM
// power-on state for the monochrome model.
func (c *CPU) Reset() {
	c.setAF(0x0100)
	c.setBC(0xFF13)
	c.setDE(0x00C1)
	c.setHL(0x8403)
	c.sp = 0xFFFE
	c.pc = 0x0100
	c.ime = false
	c.eiDelay = 0
	c.halted = false
	c.stopped = false
}

// PC returns the program counter, mainly for disassembly and debugging.
func (c *CPU) PC() uint16 { return c.pc }

// SP returns the stack pointer.
func (c *CPU) SP() uint16 { return c.sp }

// IME reports whether the master interrupt enable latch is set.
func (c *CPU) IME() bool { return c.ime }

// Halted reports whether the CPU is in the HALT low-power state.
func (c *CPU) Halted() bool { return c.halted }

// Step executes exactly one unit of work: either one pending interrupt
// dispatch, or one instruction (base or 0xCB-prefixed), or (while halted
// with no pending interrupt) 4 idle T-cycles. It returns the T-cycles
// consumed.
func (c *CPU) Step() int {
	pending := c.pendingInterrupts()

	if c.halted && pending != 0 {
		c.halted = false
	}

	if c.ime && pending != 0 {
		return c.dispatchInterrupt(pending)
	}

	if c.halted {
		return 4
	}

	cycles := c.execNext()

	if c.eiDelay > 0 {
		c.eiDelay--
		if c.eiDelay == 0 {
			c.ime = true
		}
	}

	return cycles
}

// pendingInterrupts returns the IE & IF & 0x1F mask of sources that are
// both enabled and requested.
func (c *CPU) pendingInterrupts() uint8 {
	return c.bus.Read(addr.IE) & c.bus.Read(addr.IF) & 0x1F
}

var interruptPriority = []addr.Interrupt{
	addr.VBlankInterrupt,
	addr.LCDSTATInterrupt,
	addr.TimerInterrupt,
	addr.SerialInterrupt,
	addr.JoypadInterrupt,
}

// dispatchInterrupt services the lowest-numbered pending interrupt: it
// clears IME, clears the source's IF bit, pushes PC, jumps to the fixed
// vector and bills 20 T-cycles.
func (c *CPU) dispatchInterrupt(pending uint8) int {
	for _, source := range interruptPriority {
		if pending&uint8(source) == 0 {
			continue
		}

		c.ime = false
		flags := c.bus.Read(addr.IF)
		c.bus.Write(addr.IF, flags&^uint8(source))

		c.pushStack(c.pc)
		c.pc = source.Vector()
		return 20
	}
	panic("dispatchInterrupt called with no pending interrupt bit set")
}

// execNext fetches, decodes and executes the instruction at PC.
func (c *CPU) execNext() int {
	opcode := c.fetchByte()

	if opcode == 0xCB {
		cbOpcode := c.fetchByte()
		c.currentOpcode = cbOpcode
		handler := cbOpcodeTable[cbOpcode]
		if handler == nil {
			panic(fmt.Sprintf("unimplemented CB opcode 0x%02X", cbOpcode))
		}
		return handler(c)
	}

	c.currentOpcode = opcode
	handler := opcodeTable[opcode]
	if handler == nil {
		panic(fmt.Sprintf("undefined opcode 0x%02X at 0x%04X", opcode, c.pc-1))
	}
	return handler(c)
}

func (c *CPU) fetchByte() uint8 {
	value := c.bus.Read(c.pc)
	c.pc++
	return value
}

func (c *CPU) fetchWord() uint16 {
	low := c.fetchByte()
	high := c.fetchByte()
	return uint16(high)<<8 | uint16(low)
}

func (c *CPU) fetchSigned() int8 {
	return int8(c.fetchByte())
}

// readReg8 reads one of the eight 3-bit-encoded 8-bit operands in
// B,C,D,E,H,L,(HL),A order.
func (c *CPU) readReg8(index uint8) uint8 {
	switch index {
	case 0:
		return c.b
	case 1:
		return c.c
	case 2:
		return c.d
	case 3:
		return c.e
	case 4:
		return c.h
	case 5:
		return c.l
	case 6:
		return c.bus.Read(c.getHL())
	default:
		return c.a
	}
}

func (c *CPU) writeReg8(index uint8, value uint8) {
	switch index {
	case 0:
		c.b = value
	case 1:
		c.c = value
	case 2:
		c.d = value
	case 3:
		c.e = value
	case 4:
		c.h = value
	case 5:
		c.l = value
	case 6:
		c.bus.Write(c.getHL(), value)
	default:
		c.a = value
	}
}

// readReg16 reads one of the four 2-bit-encoded 16-bit operands in
// BC,DE,HL,SP order (used by LD rr,nn / INC rr / DEC rr / ADD HL,rr).
func (c *CPU) readReg16(index uint8) uint16 {
	switch index {
	case 0:
		return c.getBC()
	case 1:
		return c.getDE()
	case 2:
		return c.getHL()
	default:
		return c.sp
	}
}

func (c *CPU) writeReg16(index uint8, value uint16) {
	switch index {
	case 0:
		c.setBC(value)
	case 1:
		c.setDE(value)
	case 2:
		c.setHL(value)
	default:
		c.sp = value
	}
}

// readStackReg/writeStackReg use the alternate PUSH/POP encoding, where
// the 4th slot is AF instead of SP.
func (c *CPU) readStackReg(index uint8) uint16 {
	switch index {
	case 0:
		return c.getBC()
	case 1:
		return c.getDE()
	case 2:
		return c.getHL()
	default:
		return c.getAF()
	}
}

func (c *CPU) writeStackReg(index uint8, value uint16) {
	switch index {
	case 0:
		c.setBC(value)
	case 1:
		c.setDE(value)
	case 2:
		c.setHL(value)
	default:
		c.setAF(value)
	}
}

// checkCondition evaluates one of the four branch conditions (NZ,Z,NC,C).
func (c *CPU) checkCondition(index uint8) bool {
	switch index {
	case 0:
		return !c.hasFlag(zeroFlag)
	case 1:
		return c.hasFlag(zeroFlag)
	case 2:
		return !c.hasFlag(carryFlag)
	default:
		return c.hasFlag(carryFlag)
	}
}
