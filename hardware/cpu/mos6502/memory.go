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

// read8 returns the value at address. A memory fault is noted and the value
// returned by the bus is used anyway.
func (mc *CPU) read8(address uint32) uint8 {
	v, err := mc.bus.Read8(address & mc.addressMask)
	if err != nil && mc.fault == nil {
		mc.fault = err
	}
	return v
}

// write8 writes value to address. A memory fault is noted and execution
// continues.
func (mc *CPU) write8(address uint32, value uint8) {
	err := mc.bus.Write8(address&mc.addressMask, value)
	if err != nil && mc.fault == nil {
		mc.fault = err
	}
}

// read16 returns the little-endian 16 bit value at address.
func (mc *CPU) read16(address uint32) uint16 {
	lo := mc.read8(address)
	hi := mc.read8(address + 1)
	return uint16(hi)<<8 | uint16(lo)
}

// fetch the byte at the program counter and advance the program counter.
func (mc *CPU) fetch() uint8 {
	v := mc.read8(uint32(mc.pbr)<<16 | uint32(mc.pc))
	mc.pc++
	return v
}

func (mc *CPU) fetch16() uint16 {
	lo := mc.fetch()
	hi := mc.fetch()
	return uint16(hi)<<8 | uint16(lo)
}

func (mc *CPU) push(v uint8) {
	mc.write8(0x0100|uint32(mc.sp), v)
	mc.sp--
}

func (mc *CPU) pull() uint8 {
	mc.sp++
	return mc.read8(0x0100 | uint32(mc.sp))
}

func (mc *CPU) push16(v uint16) {
	mc.push(uint8(v >> 8))
	mc.push(uint8(v))
}

func (mc *CPU) pull16() uint16 {
	lo := mc.pull()
	hi := mc.pull()
	return uint16(hi)<<8 | uint16(lo)
}

// data returns the address in the data bank.
func (mc *CPU) data(a uint16) uint32 {
	return uint32(mc.dbr)<<16 | uint32(a)
}

// direct page address. for the non-65C816 variants the direct page register
// is always zero so this is the zero page.
func (mc *CPU) direct(off uint8) uint32 {
	return uint32(mc.d + uint16(off))
}

// indexed direct page addresses wrap around the page when the low byte of
// the direct page register is zero.
func (mc *CPU) directIndexed(off uint8, idx uint8) uint32 {
	if mc.d&0x00ff == 0 {
		return uint32(mc.d | uint16(off+idx))
	}
	return uint32(mc.d + uint16(off) + uint16(idx))
}

// directPointer reads a 16 bit pointer from the direct page.
func (mc *CPU) directPointer(off uint8) uint16 {
	lo := mc.read8(mc.direct(off))
	hi := mc.read8(mc.directIndexed(off, 1))
	return uint16(hi)<<8 | uint16(lo)
}

// indexed adds idx to base. the second return value is true if the result is
// in a different page.
func (mc *CPU) indexed(base uint32, idx uint8) (uint32, bool) {
	a := base + uint32(idx)
	if mc.wide {
		a &= 0xffffff
	} else {
		a &= 0xffff
	}
	return a, base>>8 != a>>8
}
