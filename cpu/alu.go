package cpu

import "github.com/jrastelli/gbcore/bit"

// inc increments an 8-bit register operand, leaving the carry flag untouched.
func (c *CPU) inc(r *uint8) {
	*r++
	c.setFlagToCondition(zeroFlag, *r == 0)
	c.resetFlag(subFlag)
	c.setFlagToCondition(halfCarryFlag, *r&0x0F == 0x00)
}

// dec decrements an 8-bit register operand, leaving the carry flag untouched.
func (c *CPU) dec(r *uint8) {
	*r--
	c.setFlagToCondition(zeroFlag, *r == 0)
	c.setFlag(subFlag)
	c.setFlagToCondition(halfCarryFlag, *r&0x0F == 0x0F)
}

// addToA adds value to A.
func (c *CPU) addToA(value uint8) {
	a := c.a
	result := a + value

	c.setFlagToCondition(zeroFlag, result == 0)
	c.resetFlag(subFlag)
	c.setFlagToCondition(halfCarryFlag, (a&0xF)+(value&0xF) > 0xF)
	c.setFlagToCondition(carryFlag, uint16(a)+uint16(value) > 0xFF)

	c.a = result
}

// adcToA adds value plus the current carry flag to A.
func (c *CPU) adcToA(value uint8) {
	a := c.a
	carryIn := c.flagToBit(carryFlag)
	result := a + value + carryIn

	c.setFlagToCondition(zeroFlag, result == 0)
	c.resetFlag(subFlag)
	c.setFlagToCondition(halfCarryFlag, (a&0xF)+(value&0xF)+carryIn > 0xF)
	c.setFlagToCondition(carryFlag, uint16(a)+uint16(value)+uint16(carryIn) > 0xFF)

	c.a = result
}

// sub subtracts value from A.
func (c *CPU) sub(value uint8) {
	a := c.a
	result := a - value

	c.setFlagToCondition(zeroFlag, result == 0)
	c.setFlag(subFlag)
	c.setFlagToCondition(halfCarryFlag, int(a&0xF)-int(value&0xF) < 0)
	c.setFlagToCondition(carryFlag, a < value)

	c.a = result
}

// sbcFromA subtracts value and the current carry flag from A.
func (c *CPU) sbcFromA(value uint8) {
	a := c.a
	carryIn := c.flagToBit(carryFlag)
	result := int(a) - int(value) - int(carryIn)

	c.setFlagToCondition(zeroFlag, uint8(result) == 0)
	c.setFlag(subFlag)
	c.setFlagToCondition(halfCarryFlag, int(a&0xF)-int(value&0xF)-int(carryIn) < 0)
	c.setFlagToCondition(carryFlag, result < 0)

	c.a = uint8(result)
}

// and ANDs value into A.
func (c *CPU) and(value uint8) {
	c.a &= value
	c.setFlagToCondition(zeroFlag, c.a == 0)
	c.resetFlag(subFlag)
	c.setFlag(halfCarryFlag)
	c.resetFlag(carryFlag)
}

// or ORs value into A.
func (c *CPU) or(value uint8) {
	c.a |= value
	c.setFlagToCondition(zeroFlag, c.a == 0)
	c.resetFlag(subFlag)
	c.resetFlag(halfCarryFlag)
	c.resetFlag(carryFlag)
}

// xor XORs value into A.
func (c *CPU) xor(value uint8) {
	c.a ^= value
	c.setFlagToCondition(zeroFlag, c.a == 0)
	c.resetFlag(subFlag)
	c.resetFlag(halfCarryFlag)
	c.resetFlag(carryFlag)
}

// cp compares value against A without storing the result.
func (c *CPU) cp(value uint8) {
	a := c.a
	c.setFlagToCondition(zeroFlag, a-value == 0)
	c.setFlag(subFlag)
	c.setFlagToCondition(halfCarryFlag, int(a&0xF)-int(value&0xF) < 0)
	c.setFlagToCondition(carryFlag, a < value)
}

// addToHL adds a 16-bit operand into HL, leaving the zero flag untouched.
func (c *CPU) addToHL(value uint16) {
	hl := c.getHL()
	result := hl + value

	c.resetFlag(subFlag)
	c.setFlagToCondition(halfCarryFlag, (hl&0xFFF)+(value&0xFFF) > 0xFFF)
	c.setFlagToCondition(carryFlag, uint32(hl)+uint32(value) > 0xFFFF)

	c.setHL(result)
}

// addSPSigned computes SP+e for ADD SP,e and LD HL,SP+e: Z and N are always
// cleared, H and C are computed on the low byte of SP exactly as if adding
// two unsigned bytes.
func (c *CPU) addSPSigned(e int8) uint16 {
	sp := c.sp
	value := uint16(int32(sp) + int32(e))

	c.resetFlag(zeroFlag)
	c.resetFlag(subFlag)
	c.setFlagToCondition(halfCarryFlag, (sp&0xF)+(uint16(uint8(e))&0xF) > 0xF)
	c.setFlagToCondition(carryFlag, (sp&0xFF)+uint16(uint8(e)) > 0xFF)

	return value
}

// rotate/shift family. All of these update the carry flag from the bit
// shifted out. The setZero parameter distinguishes the accumulator-only
// forms (RLCA/RLA/RRCA/RRA, which always clear Z) from the 0xCB-prefixed
// generic forms (which set Z from the result).

func (c *CPU) rlc(r *uint8, setZero bool) {
	value := *r
	carryOut := value&0x80 != 0
	result := value<<1 | value>>7

	*r = result
	c.resetFlag(subFlag)
	c.resetFlag(halfCarryFlag)
	c.setFlagToCondition(carryFlag, carryOut)
	c.setFlagToCondition(zeroFlag, setZero && result == 0)
}

func (c *CPU) rl(r *uint8, setZero bool) {
	value := *r
	carryIn := c.flagToBit(carryFlag)
	carryOut := value&0x80 != 0
	result := value<<1 | carryIn

	*r = result
	c.resetFlag(subFlag)
	c.resetFlag(halfCarryFlag)
	c.setFlagToCondition(carryFlag, carryOut)
	c.setFlagToCondition(zeroFlag, setZero && result == 0)
}

func (c *CPU) rrc(r *uint8, setZero bool) {
	value := *r
	carryOut := value&0x01 != 0
	result := value>>1 | value<<7

	*r = result
	c.resetFlag(subFlag)
	c.resetFlag(halfCarryFlag)
	c.setFlagToCondition(carryFlag, carryOut)
	c.setFlagToCondition(zeroFlag, setZero && result == 0)
}

func (c *CPU) rr(r *uint8, setZero bool) {
	value := *r
	carryIn := c.flagToBit(carryFlag)
	carryOut := value&0x01 != 0
	result := value>>1 | carryIn<<7

	*r = result
	c.resetFlag(subFlag)
	c.resetFlag(halfCarryFlag)
	c.setFlagToCondition(carryFlag, carryOut)
	c.setFlagToCondition(zeroFlag, setZero && result == 0)
}

func (c *CPU) sla(r *uint8) {
	value := *r
	carryOut := value&0x80 != 0
	result := value << 1

	*r = result
	c.resetFlag(subFlag)
	c.resetFlag(halfCarryFlag)
	c.setFlagToCondition(carryFlag, carryOut)
	c.setFlagToCondition(zeroFlag, result == 0)
}

func (c *CPU) sra(r *uint8) {
	value := *r
	carryOut := value&0x01 != 0
	result := value&0x80 | value>>1

	*r = result
	c.resetFlag(subFlag)
	c.resetFlag(halfCarryFlag)
	c.setFlagToCondition(carryFlag, carryOut)
	c.setFlagToCondition(zeroFlag, result == 0)
}

func (c *CPU) srl(r *uint8) {
	value := *r
	carryOut := value&0x01 != 0
	result := value >> 1

	*r = result
	c.resetFlag(subFlag)
	c.resetFlag(halfCarryFlag)
	c.setFlagToCondition(carryFlag, carryOut)
	c.setFlagToCondition(zeroFlag, result == 0)
}

func (c *CPU) swap(r *uint8) {
	value := *r
	result := value<<4 | value>>4

	*r = result
	c.resetFlag(subFlag)
	c.resetFlag(halfCarryFlag)
	c.resetFlag(carryFlag)
	c.setFlagToCondition(zeroFlag, result == 0)
}

func (c *CPU) testBit(index uint8, value uint8) {
	c.setFlagToCondition(zeroFlag, !bit.IsSet(index, value))
	c.resetFlag(subFlag)
	c.setFlag(halfCarryFlag)
}

// daa adjusts A into packed BCD after an 8-bit add or subtract, using N,
// H and the incoming C to decide the correction, and may itself set C.
func (c *CPU) daa() {
	a := c.a
	adjust := uint8(0)
	setCarry := false

	if c.hasFlag(subFlag) {
		if c.hasFlag(halfCarryFlag) {
			adjust += 0x06
		}
		if c.hasFlag(carryFlag) {
			adjust += 0x60
			setCarry = true
		}
		a -= adjust
	} else {
		if c.hasFlag(halfCarryFlag) || a&0x0F > 0x09 {
			adjust += 0x06
		}
		if c.hasFlag(carryFlag) || a > 0x99 {
			adjust += 0x60
			setCarry = true
		}
		a += adjust
	}

	c.a = a
	c.setFlagToCondition(zeroFlag, a == 0)
	c.resetFlag(halfCarryFlag)
	c.setFlagToCondition(carryFlag, setCarry)
}

// pushStack writes a 16-bit value to the stack, high byte first, per the
// corrected (non-buggy) PUSH semantics: it writes, it never reads.
func (c *CPU) pushStack(value uint16) {
	c.sp--
	c.bus.Write(c.sp, bit.High(value))
	c.sp--
	c.bus.Write(c.sp, bit.Low(value))
}

func (c *CPU) popStack() uint16 {
	low := c.bus.Read(c.sp)
	c.sp++
	high := c.bus.Read(c.sp)
	c.sp++
	return bit.Combine(high, low)
}
