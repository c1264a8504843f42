// This file is part of Emulite.
//
// Emulite is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Emulite is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with Emulite.  If not, see <https://www.gnu.org/licenses/>.

package mos6502

import (
	"fmt"
)

// Step implements the cpu.CPU interface.
//
// Pending interrupts are checked before the opcode is fetched. A taken
// interrupt is the entire step.
func (mc *CPU) Step() (int, error) {
	mc.fault = nil
	mc.last.Address = mc.PC()
	mc.last.Opcode = 0
	mc.last.Mnemonic = ""
	mc.last.Operand = ""
	mc.last.Bytes = 0
	mc.last.Cycles = 0
	mc.last.PageCrossed = false
	mc.last.BranchTaken = false
	mc.last.Undefined = false
	mc.last.Interrupt = ""

	if mc.jammed {
		mc.last.Mnemonic = "KIL"
		mc.last.Undefined = true
		mc.last.Cycles = 1
		return 1, nil
	}

	if mc.stopped {
		mc.last.Mnemonic = "STP"
		mc.last.Cycles = 1
		return 1, nil
	}

	if mc.lines != nil {
		if mc.lines.TakeNMI() {
			mc.waiting = false
			mc.interrupt("NMI", NMI, false)
			return mc.last.Cycles, mc.fault
		}

		// an IRQ wakes a WAI instruction even when interrupts are disabled
		if mc.lines.IRQ() {
			mc.waiting = false
			if !mc.status.InterruptDisable {
				mc.interrupt("IRQ", IRQ, false)
				return mc.last.Cycles, mc.fault
			}
		}
	}

	if mc.waiting {
		mc.last.Mnemonic = "WAI"
		mc.last.Cycles = 1
		return 1, nil
	}

	opcode := mc.fetch()
	defn := mc.instructions[opcode]

	mc.last.Opcode = uint32(opcode)
	mc.last.Mnemonic = defn.mnemonic
	mc.last.Bytes = defn.mode.bytes()
	mc.last.Cycles = defn.cycles
	mc.last.Undefined = defn.undocumented

	address := mc.resolve(defn.mode)
	if mc.crossed {
		mc.last.PageCrossed = true
		if defn.pageSensitive {
			mc.last.Cycles++
		}
	}

	mc.execute(defn, address)

	return mc.last.Cycles, mc.fault
}

// interrupt pushes the PC and status register and loads the PC from vector.
// software interrupts (BRK and COP) set the break flag in the pushed status.
func (mc *CPU) interrupt(name string, vector uint16, software bool) {
	mc.push16(mc.pc)
	sr := mc.status.value()
	if software {
		sr |= breakBit
	} else {
		sr &^= breakBit
	}
	mc.push(sr)
	mc.status.InterruptDisable = true

	if mc.wide {
		mc.status.DecimalMode = false
		mc.pbr = 0
	}

	mc.pc = mc.read16(uint32(vector))

	if !software {
		mc.last.Mnemonic = name
		mc.last.Cycles = 7
	}
	mc.last.Interrupt = name
}

// resolve reads the operand of the instruction and returns the effective
// address. for relative addressing the effective address is the branch
// target.
func (mc *CPU) resolve(m mode) uint32 {
	mc.crossed = false

	switch m {
	case implied, accumulator:
		return 0

	case immediate:
		mc.imm = mc.fetch()
		mc.last.Operand = fmt.Sprintf("#$%02x", mc.imm)
		return 0

	case relative:
		off := mc.fetch()
		target := mc.pc + uint16(int8(off))
		mc.crossed = mc.pc&0xff00 != target&0xff00
		mc.last.Operand = fmt.Sprintf("$%04x", target)
		return uint32(mc.pbr)<<16 | uint32(target)

	case relativeLong:
		off := mc.fetch16()
		target := mc.pc + off
		mc.last.Operand = fmt.Sprintf("$%04x", target)
		return uint32(mc.pbr)<<16 | uint32(target)

	case zeroPage:
		off := mc.fetch()
		mc.imm = off
		mc.last.Operand = fmt.Sprintf("$%02x", off)
		return mc.direct(off)

	case zeroPageX:
		off := mc.fetch()
		mc.last.Operand = fmt.Sprintf("$%02x,X", off)
		return mc.directIndexed(off, mc.x)

	case zeroPageY:
		off := mc.fetch()
		mc.last.Operand = fmt.Sprintf("$%02x,Y", off)
		return mc.directIndexed(off, mc.y)

	case absolute:
		mc.operand = mc.fetch16()
		mc.last.Operand = fmt.Sprintf("$%04x", mc.operand)
		return mc.data(mc.operand)

	case absoluteX:
		mc.operand = mc.fetch16()
		mc.baseHi = uint8(mc.operand >> 8)
		mc.last.Operand = fmt.Sprintf("$%04x,X", mc.operand)
		var a uint32
		a, mc.crossed = mc.indexed(mc.data(mc.operand), mc.x)
		return a

	case absoluteY:
		mc.operand = mc.fetch16()
		mc.baseHi = uint8(mc.operand >> 8)
		mc.last.Operand = fmt.Sprintf("$%04x,Y", mc.operand)
		var a uint32
		a, mc.crossed = mc.indexed(mc.data(mc.operand), mc.y)
		return a

	case indirect:
		mc.operand = mc.fetch16()
		mc.last.Operand = fmt.Sprintf("($%04x)", mc.operand)
		return uint32(mc.operand)

	case absIndexedIndirect:
		mc.operand = mc.fetch16()
		mc.last.Operand = fmt.Sprintf("($%04x,X)", mc.operand)
		return uint32(mc.pbr)<<16 | uint32(mc.operand+uint16(mc.x))

	case absIndirectLong:
		mc.operand = mc.fetch16()
		mc.last.Operand = fmt.Sprintf("[$%04x]", mc.operand)
		return uint32(mc.operand)

	case indexedIndirect:
		off := mc.fetch()
		mc.last.Operand = fmt.Sprintf("($%02x,X)", off)
		return mc.data(mc.directPointer(off + mc.x))

	case indirectIndexed:
		off := mc.fetch()
		mc.last.Operand = fmt.Sprintf("($%02x),Y", off)
		ptr := mc.directPointer(off)
		mc.baseHi = uint8(ptr >> 8)
		var a uint32
		a, mc.crossed = mc.indexed(mc.data(ptr), mc.y)
		return a

	case dpIndirect:
		off := mc.fetch()
		mc.last.Operand = fmt.Sprintf("($%02x)", off)
		return mc.data(mc.directPointer(off))

	case dpIndirectLong, dpIndirectLongY:
		off := mc.fetch()
		lo := mc.read8(mc.direct(off))
		hi := mc.read8(mc.direct(off + 1))
		bank := mc.read8(mc.direct(off + 2))
		a := uint32(bank)<<16 | uint32(hi)<<8 | uint32(lo)
		if m == dpIndirectLongY {
			mc.last.Operand = fmt.Sprintf("[$%02x],Y", off)
			return (a + uint32(mc.y)) & 0xffffff
		}
		mc.last.Operand = fmt.Sprintf("[$%02x]", off)
		return a

	case long, longX:
		lo := mc.fetch16()
		bank := mc.fetch()
		mc.operand = lo
		mc.imm = bank
		a := uint32(bank)<<16 | uint32(lo)
		if m == longX {
			mc.last.Operand = fmt.Sprintf("$%06x,X", a)
			return (a + uint32(mc.x)) & 0xffffff
		}
		mc.last.Operand = fmt.Sprintf("$%06x", a)
		return a

	case stackRelative:
		off := mc.fetch()
		mc.last.Operand = fmt.Sprintf("$%02x,S", off)
		return uint32(0x0100|uint16(mc.sp)) + uint32(off)

	case stackRelativeIndirectY:
		off := mc.fetch()
		mc.last.Operand = fmt.Sprintf("($%02x,S),Y", off)
		p := uint32(0x0100|uint16(mc.sp)) + uint32(off)
		ptr := mc.read16(p)
		return (mc.data(ptr) + uint32(mc.y)) & 0xffffff

	case blockMove:
		dst := mc.fetch()
		src := mc.fetch()
		mc.operand = uint16(dst)<<8 | uint16(src)
		mc.last.Operand = fmt.Sprintf("$%02x,$%02x", src, dst)
		return 0
	}

	return 0
}

func (mc *CPU) setNZ(v uint8) {
	mc.status.Zero = v == 0
	mc.status.Sign = v&0x80 == 0x80
}

func (mc *CPU) setNZ16(v uint16) {
	mc.status.Zero = v == 0
	mc.status.Sign = v&0x8000 == 0x8000
}

// load returns the operand value for instructions that read memory.
func (mc *CPU) load(m mode, address uint32) uint8 {
	switch m {
	case immediate:
		return mc.imm
	case accumulator:
		return mc.a
	}
	return mc.read8(address)
}

// modify performs a read-modify-write on memory or the accumulator.
func (mc *CPU) modify(m mode, address uint32, f func(uint8) uint8) uint8 {
	if m == accumulator {
		mc.a = f(mc.a)
		return mc.a
	}
	v := f(mc.read8(address))
	mc.write8(address, v)
	return v
}

func (mc *CPU) asl(v uint8) uint8 {
	mc.status.Carry = v&0x80 == 0x80
	v <<= 1
	mc.setNZ(v)
	return v
}

func (mc *CPU) lsr(v uint8) uint8 {
	mc.status.Carry = v&0x01 == 0x01
	v >>= 1
	mc.setNZ(v)
	return v
}

func (mc *CPU) rol(v uint8) uint8 {
	c := mc.status.Carry
	mc.status.Carry = v&0x80 == 0x80
	v <<= 1
	if c {
		v |= 0x01
	}
	mc.setNZ(v)
	return v
}

func (mc *CPU) ror(v uint8) uint8 {
	c := mc.status.Carry
	mc.status.Carry = v&0x01 == 0x01
	v >>= 1
	if c {
		v |= 0x80
	}
	mc.setNZ(v)
	return v
}

func (mc *CPU) compare(r uint8, v uint8) {
	mc.status.Carry = r >= v
	mc.setNZ(r - v)
}

func (mc *CPU) branch(taken bool, target uint32) {
	if !taken {
		return
	}
	mc.last.BranchTaken = true
	mc.last.Cycles++
	if mc.crossed {
		mc.last.Cycles++
	}
	mc.pc = uint16(target)
}

// unstable store instructions (SHA, SHX, SHY, TAS) AND the value with the
// high byte of the base address plus one. when the indexing crosses a page
// the high byte of the address is replaced by the stored value.
func (mc *CPU) unstableStore(address uint32, v uint8) {
	v &= mc.baseHi + 1
	if mc.crossed {
		address = uint32(v)<<8 | address&0xff
	}
	mc.write8(address, v)
}

func (mc *CPU) execute(defn definition, address uint32) {
	m := defn.mode

	switch defn.mnemonic {
	case "NOP", "WDM":
		// undocumented NOPs with an address read from it
		switch m {
		case implied, immediate, accumulator:
		default:
			_ = mc.read8(address)
		}

	case "CLC":
		mc.status.Carry = false
	case "SEC":
		mc.status.Carry = true
	case "CLI":
		mc.status.InterruptDisable = false
	case "SEI":
		mc.status.InterruptDisable = true
	case "CLV":
		mc.status.Overflow = false
	case "CLD":
		mc.status.DecimalMode = false
	case "SED":
		mc.status.DecimalMode = true

	case "LDA":
		mc.a = mc.load(m, address)
		mc.setNZ(mc.a)
	case "LDX":
		mc.x = mc.load(m, address)
		mc.setNZ(mc.x)
	case "LDY":
		mc.y = mc.load(m, address)
		mc.setNZ(mc.y)
	case "STA":
		mc.write8(address, mc.a)
	case "STX":
		mc.write8(address, mc.x)
	case "STY":
		mc.write8(address, mc.y)
	case "STZ":
		mc.write8(address, 0)

	case "TAX":
		mc.x = mc.a
		mc.setNZ(mc.x)
	case "TAY":
		mc.y = mc.a
		mc.setNZ(mc.y)
	case "TXA":
		mc.a = mc.x
		mc.setNZ(mc.a)
	case "TYA":
		mc.a = mc.y
		mc.setNZ(mc.a)
	case "TSX":
		mc.x = mc.sp
		mc.setNZ(mc.x)
	case "TXS":
		mc.sp = mc.x
	case "TXY":
		mc.y = mc.x
		mc.setNZ(mc.y)
	case "TYX":
		mc.x = mc.y
		mc.setNZ(mc.x)

	case "PHA":
		mc.push(mc.a)
	case "PHP":
		mc.push(mc.status.value() | breakBit)
	case "PHX":
		mc.push(mc.x)
	case "PHY":
		mc.push(mc.y)
	case "PLA":
		mc.a = mc.pull()
		mc.setNZ(mc.a)
	case "PLX":
		mc.x = mc.pull()
		mc.setNZ(mc.x)
	case "PLY":
		mc.y = mc.pull()
		mc.setNZ(mc.y)
	case "PLP":
		// the break flag doesn't exist in the status register. it is only
		// the value pushed to the stack
		mc.status.load(mc.pull() &^ breakBit)

	case "ORA":
		mc.a |= mc.load(m, address)
		mc.setNZ(mc.a)
	case "AND":
		mc.a &= mc.load(m, address)
		mc.setNZ(mc.a)
	case "EOR":
		mc.a ^= mc.load(m, address)
		mc.setNZ(mc.a)
	case "ADC":
		mc.adc(mc.load(m, address))
	case "SBC":
		mc.sbc(mc.load(m, address))
	case "CMP":
		mc.compare(mc.a, mc.load(m, address))
	case "CPX":
		mc.compare(mc.x, mc.load(m, address))
	case "CPY":
		mc.compare(mc.y, mc.load(m, address))

	case "BIT":
		v := mc.load(m, address)
		mc.status.Zero = mc.a&v == 0
		if m != immediate {
			mc.status.Sign = v&0x80 == 0x80
			mc.status.Overflow = v&0x40 == 0x40
		}

	case "ASL":
		mc.modify(m, address, mc.asl)
	case "LSR":
		mc.modify(m, address, mc.lsr)
	case "ROL":
		mc.modify(m, address, mc.rol)
	case "ROR":
		mc.modify(m, address, mc.ror)
	case "INC":
		mc.modify(m, address, func(v uint8) uint8 {
			v++
			mc.setNZ(v)
			return v
		})
	case "DEC":
		mc.modify(m, address, func(v uint8) uint8 {
			v--
			mc.setNZ(v)
			return v
		})
	case "INX":
		mc.x++
		mc.setNZ(mc.x)
	case "INY":
		mc.y++
		mc.setNZ(mc.y)
	case "DEX":
		mc.x--
		mc.setNZ(mc.x)
	case "DEY":
		mc.y--
		mc.setNZ(mc.y)

	case "TSB":
		v := mc.read8(address)
		mc.status.Zero = mc.a&v == 0
		mc.write8(address, v|mc.a)
	case "TRB":
		v := mc.read8(address)
		mc.status.Zero = mc.a&v == 0
		mc.write8(address, v&^mc.a)

	case "BPL":
		mc.branch(!mc.status.Sign, address)
	case "BMI":
		mc.branch(mc.status.Sign, address)
	case "BVC":
		mc.branch(!mc.status.Overflow, address)
	case "BVS":
		mc.branch(mc.status.Overflow, address)
	case "BCC":
		mc.branch(!mc.status.Carry, address)
	case "BCS":
		mc.branch(mc.status.Carry, address)
	case "BNE":
		mc.branch(!mc.status.Zero, address)
	case "BEQ":
		mc.branch(mc.status.Zero, address)
	case "BRA":
		mc.branch(true, address)
	case "BRL":
		mc.last.BranchTaken = true
		mc.pc = uint16(address)

	case "JMP":
		switch m {
		case absolute:
			mc.pc = mc.operand
		case indirect:
			lo := mc.read8(address)
			var hi uint8
			if mc.wide {
				hi = mc.read8(address + 1)
			} else {
				// the NMOS part does not carry into the high byte of the
				// pointer
				hi = mc.read8(address&0xff00 | (address+1)&0x00ff)
			}
			mc.pc = uint16(hi)<<8 | uint16(lo)
		case absIndexedIndirect:
			mc.pc = mc.read16(address)
		}

	case "JML":
		switch m {
		case long:
			mc.pbr = mc.imm
			mc.pc = mc.operand
		case absIndirectLong:
			mc.pc = mc.read16(address)
			mc.pbr = mc.read8(address + 2)
		}

	case "JSR":
		mc.push16(mc.pc - 1)
		if m == absIndexedIndirect {
			mc.pc = mc.read16(address)
		} else {
			mc.pc = mc.operand
		}

	case "JSL":
		mc.push(mc.pbr)
		mc.push16(mc.pc - 1)
		mc.pbr = mc.imm
		mc.pc = mc.operand

	case "RTS":
		mc.pc = mc.pull16() + 1

	case "RTL":
		mc.pc = mc.pull16() + 1
		mc.pbr = mc.pull()

	case "RTI":
		mc.status.load(mc.pull() &^ breakBit)
		mc.pc = mc.pull16()

	case "BRK":
		mc.interrupt("BRK", IRQ, true)

	case "COP":
		mc.interrupt("COP", COP, true)

	case "KIL":
		// the PC stays at the KIL instruction
		mc.pc--
		mc.jammed = true

	// 65C816 instructions
	case "XBA":
		mc.a, mc.b = mc.b, mc.a
		mc.setNZ(mc.a)
	case "XCE":
		// only emulation mode is supported. the emulation flag is always set
		// so the carry flag is always set after the exchange
		mc.status.Carry = true
	case "TCD":
		mc.d = uint16(mc.b)<<8 | uint16(mc.a)
		mc.setNZ16(mc.d)
	case "TDC":
		mc.a = uint8(mc.d)
		mc.b = uint8(mc.d >> 8)
		mc.setNZ16(mc.d)
	case "TCS":
		mc.sp = mc.a
	case "TSC":
		mc.a = mc.sp
		mc.b = 0x01
		mc.setNZ16(0x0100 | uint16(mc.sp))
	case "PHB":
		mc.push(mc.dbr)
	case "PLB":
		mc.dbr = mc.pull()
		mc.setNZ(mc.dbr)
	case "PHK":
		mc.push(mc.pbr)
	case "PHD":
		mc.push16(mc.d)
	case "PLD":
		mc.d = mc.pull16()
		mc.setNZ16(mc.d)
	case "PEA":
		mc.push16(mc.operand)
	case "PEI":
		mc.push16(mc.directPointer(mc.imm))
	case "PER":
		mc.push16(uint16(address))
	case "REP":
		// the M and X bits are fixed in emulation mode
		mc.status.load(mc.status.value() &^ (mc.imm &^ 0x30))
	case "SEP":
		mc.status.load(mc.status.value() | (mc.imm &^ 0x30))
	case "WAI":
		mc.waiting = true
	case "STP":
		mc.stopped = true
	case "MVN", "MVP":
		mc.blockMove(defn.mnemonic == "MVN")

	// undocumented NMOS instructions
	case "SLO":
		v := mc.modify(m, address, mc.asl)
		mc.a |= v
		mc.setNZ(mc.a)
	case "RLA":
		v := mc.modify(m, address, mc.rol)
		mc.a &= v
		mc.setNZ(mc.a)
	case "SRE":
		v := mc.modify(m, address, mc.lsr)
		mc.a ^= v
		mc.setNZ(mc.a)
	case "RRA":
		v := mc.modify(m, address, mc.ror)
		mc.adc(v)
	case "SAX":
		mc.write8(address, mc.a&mc.x)
	case "LAX":
		mc.a = mc.load(m, address)
		mc.x = mc.a
		mc.setNZ(mc.a)
	case "DCP":
		v := mc.modify(m, address, func(v uint8) uint8 { return v - 1 })
		mc.compare(mc.a, v)
	case "ISC":
		v := mc.modify(m, address, func(v uint8) uint8 { return v + 1 })
		mc.sbc(v)
	case "ANC":
		mc.a &= mc.imm
		mc.setNZ(mc.a)
		mc.status.Carry = mc.status.Sign
	case "ALR":
		mc.a = mc.lsr(mc.a & mc.imm)
	case "ARR":
		mc.a = mc.ror(mc.a & mc.imm)
		mc.status.Carry = mc.a&0x40 == 0x40
		mc.status.Overflow = (mc.a>>6)&0x01 != (mc.a>>5)&0x01
	case "SBX":
		t := mc.a & mc.x
		mc.status.Carry = t >= mc.imm
		mc.x = t - mc.imm
		mc.setNZ(mc.x)
	case "ANE":
		mc.a = (mc.a | 0xee) & mc.x & mc.imm
		mc.setNZ(mc.a)
	case "LXA":
		mc.a = (mc.a | 0xee) & mc.imm
		mc.x = mc.a
		mc.setNZ(mc.a)
	case "LAS":
		v := mc.read8(address) & mc.sp
		mc.a = v
		mc.x = v
		mc.sp = v
		mc.setNZ(v)
	case "SHA":
		mc.unstableStore(address, mc.a&mc.x)
	case "SHX":
		mc.unstableStore(address, mc.x)
	case "SHY":
		mc.unstableStore(address, mc.y)
	case "TAS":
		mc.sp = mc.a & mc.x
		mc.unstableStore(address, mc.sp)
	}
}

// blockMove moves one byte. the instruction is repeated, by leaving the PC
// at the start of the instruction, until the 16 bit accumulator underflows.
func (mc *CPU) blockMove(increment bool) {
	dst := uint8(mc.operand >> 8)
	src := uint8(mc.operand)

	v := mc.read8(uint32(src)<<16 | uint32(mc.x))
	mc.write8(uint32(dst)<<16|uint32(mc.y), v)
	mc.dbr = dst

	if increment {
		mc.x++
		mc.y++
	} else {
		mc.x--
		mc.y--
	}

	c := uint16(mc.b)<<8 | uint16(mc.a)
	c--
	mc.a = uint8(c)
	mc.b = uint8(c >> 8)

	if c != 0xffff {
		mc.pc -= 3
	}
}
