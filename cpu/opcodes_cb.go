package cpu

import "github.com/jrastelli/gbcore/bit"

// cbOpcodeTable is the 256-entry 0xCB-prefixed dispatch table. Every
// entry follows the same r = opcode & 0x07 register encoding as the base
// page, so the whole page is generated from four loops instead of 256
// named handlers.
var cbOpcodeTable [256]opcodeHandler

func init() {
	buildCBBitOps()
	buildCBBit()
	buildCBResSet()
}

// buildCBBitOps fills 0x00-0x3F: eight rotate/shift operations, each
// applied across the eight B,C,D,E,H,L,(HL),A operands.
func buildCBBitOps() {
	ops := []func(c *CPU, r *uint8){
		func(c *CPU, r *uint8) { c.rlc(r, true) },
		func(c *CPU, r *uint8) { c.rrc(r, true) },
		func(c *CPU, r *uint8) { c.rl(r, true) },
		func(c *CPU, r *uint8) { c.rr(r, true) },
		func(c *CPU, r *uint8) { c.sla(r) },
		func(c *CPU, r *uint8) { c.sra(r) },
		func(c *CPU, r *uint8) { c.swap(r) },
		func(c *CPU, r *uint8) { c.srl(r) },
	}

	for opIndex, fn := range ops {
		fn := fn
		for reg := uint8(0); reg < 8; reg++ {
			reg := reg
			opcode := opIndex*8 + int(reg)
			cbOpcodeTable[opcode] = func(c *CPU) int {
				v := c.readReg8(reg)
				fn(c, &v)
				c.writeReg8(reg, v)
				return reg8Cycles(reg, 8, 16)
			}
		}
	}
}

// buildCBBit fills 0x40-0x7F: BIT b,r for every bit index and operand.
func buildCBBit() {
	for b := uint8(0); b < 8; b++ {
		for reg := uint8(0); reg < 8; reg++ {
			b, reg := b, reg
			opcode := 0x40 + int(b)*8 + int(reg)
			cbOpcodeTable[opcode] = func(c *CPU) int {
				c.testBit(b, c.readReg8(reg))
				return reg8Cycles(reg, 8, 12)
			}
		}
	}
}

// buildCBResSet fills 0x80-0xBF (RES b,r) and 0xC0-0xFF (SET b,r).
func buildCBResSet() {
	for b := uint8(0); b < 8; b++ {
		for reg := uint8(0); reg < 8; reg++ {
			b, reg := b, reg

			resOpcode := 0x80 + int(b)*8 + int(reg)
			cbOpcodeTable[resOpcode] = func(c *CPU) int {
				c.writeReg8(reg, bit.Reset(b, c.readReg8(reg)))
				return reg8Cycles(reg, 8, 16)
			}

			setOpcode := 0xC0 + int(b)*8 + int(reg)
			cbOpcodeTable[setOpcode] = func(c *CPU) int {
				c.writeReg8(reg, bit.Set(b, c.readReg8(reg)))
				return reg8Cycles(reg, 8, 16)
			}
		}
	}
}
