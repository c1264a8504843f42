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

// adc adds v and the carry flag to the accumulator. in decimal mode the
// result is adjusted as the NMOS 6502 does it. the Z flag comes from the
// binary sum and the N and V flags from the sum after the low nibble has been
// adjusted.
func (mc *CPU) adc(v uint8) {
	var c uint16
	if mc.status.Carry {
		c = 1
	}

	bin := uint16(mc.a) + uint16(v) + c

	if !mc.decimal || !mc.status.DecimalMode {
		r := uint8(bin)
		mc.status.Overflow = (mc.a^r)&(v^r)&0x80 == 0x80
		mc.status.Carry = bin > 0xff
		mc.a = r
		mc.setNZ(r)
		return
	}

	lo := uint16(mc.a&0x0f) + uint16(v&0x0f) + c
	if lo >= 0x0a {
		lo = ((lo + 0x06) & 0x0f) + 0x10
	}
	r := uint16(mc.a&0xf0) + uint16(v&0xf0) + lo

	mc.status.Zero = uint8(bin) == 0
	mc.status.Sign = r&0x80 == 0x80
	mc.status.Overflow = (uint16(mc.a)^r)&(uint16(v)^r)&0x80 == 0x80

	if r >= 0xa0 {
		r += 0x60
	}
	mc.status.Carry = r >= 0x100
	mc.a = uint8(r)

	// the 65C816 sets N and Z from the decimal result
	if mc.wide {
		mc.setNZ(mc.a)
	}
}

// sbc subtracts v and the inverse of the carry flag from the accumulator. in
// decimal mode the flags are those of the binary subtraction.
func (mc *CPU) sbc(v uint8) {
	if !mc.decimal || !mc.status.DecimalMode {
		mc.adc(^v)
		return
	}

	var borrow int
	if !mc.status.Carry {
		borrow = 1
	}

	bin := int(mc.a) - int(v) - borrow

	lo := int(mc.a&0x0f) - int(v&0x0f) - borrow
	if lo < 0 {
		lo = ((lo - 0x06) & 0x0f) - 0x10
	}
	r := int(mc.a&0xf0) - int(v&0xf0) + lo
	if r < 0 {
		r -= 0x60
	}

	b := uint8(bin)
	mc.status.Carry = bin >= 0
	mc.status.Overflow = (mc.a^v)&(mc.a^b)&0x80 == 0x80
	mc.a = uint8(r)

	if mc.wide {
		mc.setNZ(mc.a)
	} else {
		mc.setNZ(b)
	}
}
