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

package mips

import (
	"github.com/emulite/emulite/hardware/memory"
)

// physical translates a virtual address to a physical address.
func physical(address uint32) uint32 {
	if address >= 0xc0000000 {
		return address
	}
	return address & 0x1fffffff
}

func (mc *CPU) read(address uint32, width int) uint32 {
	v, err := mc.bus.Read(physical(address), width)
	if err != nil && mc.fault == nil {
		mc.fault = err
	}
	return v
}

// write is dropped when the cache is isolated. the BIOS isolates the cache
// to clear it and the writes must not reach memory.
func (mc *CPU) write(address uint32, width int, value uint32) {
	if mc.cop0[cop0SR]&srIsC == srIsC {
		return
	}
	err := mc.bus.Write(physical(address), width, value)
	if err != nil && mc.fault == nil {
		mc.fault = err
	}
}

// aligned checks the alignment of a data access and raises an address error
// exception if it is misaligned.
func (mc *CPU) aligned(address uint32, width int, code exception) bool {
	if address&uint32(width-1) == 0 {
		return true
	}
	mc.cop0[cop0BadVAddr] = address
	mc.raise(code)
	return false
}

// byteIndex returns the position of the addressed byte in a word, counting
// from the least significant byte.
func (mc *CPU) byteIndex(address uint32) uint32 {
	k := address & 0x03
	if mc.order == memory.BigEndian {
		k = 3 - k
	}
	return k
}
