package cpu

import "github.com/jrastelli/gbcore/bit"

// Flag bit positions within the F register.
const (
	zeroFlag      uint8 = 1 << 7
	subFlag       uint8 = 1 << 6
	halfCarryFlag uint8 = 1 << 5
	carryFlag     uint8 = 1 << 4
)

func (c *CPU) setFlag(flag uint8) {
	c.f |= flag
}

func (c *CPU) resetFlag(flag uint8) {
	c.f &^= flag
}

func (c *CPU) setFlagToCondition(flag uint8, condition bool) {
	if condition {
		c.setFlag(flag)
	} else {
		c.resetFlag(flag)
	}
}

func (c *CPU) hasFlag(flag uint8) bool {
	return c.f&flag != 0
}

// flagToBit returns 1 if flag is set, 0 otherwise. Used as a carry-in for
// ADC/SBC/RL/RR.
func (c *CPU) flagToBit(flag uint8) uint8 {
	if c.hasFlag(flag) {
		return 1
	}
	return 0
}

func (c *CPU) getAF() uint16 {
	return bit.Combine(c.a, c.f&0xF0)
}

func (c *CPU) setAF(value uint16) {
	c.a = bit.High(value)
	c.f = bit.Low(value) & 0xF0
}

func (c *CPU) getBC() uint16 {
	return bit.Combine(c.b, c.c)
}

func (c *CPU) setBC(value uint16) {
	c.b = bit.High(value)
	c.c = bit.Low(value)
}

func (c *CPU) getDE() uint16 {
	return bit.Combine(c.d, c.e)
}

func (c *CPU) setDE(value uint16) {
	c.d = bit.High(value)
	c.e = bit.Low(value)
}

func (c *CPU) getHL() uint16 {
	return bit.Combine(c.h, c.l)
}

func (c *CPU) setHL(value uint16) {
	c.h = bit.High(value)
	c.l = bit.Low(value)
}
