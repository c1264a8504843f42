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

package memory

import (
	"golang.org/x/exp/constraints"
)

// ByteOrder of multi-byte accesses. Fixed for a bus.
type ByteOrder int

// List of valid ByteOrder values.
const (
	LittleEndian ByteOrder = iota
	BigEndian
)

func (o ByteOrder) String() string {
	if o == BigEndian {
		return "big endian"
	}
	return "little endian"
}

// shift returns the bit shift for byte i of a width byte value.
func (o ByteOrder) shift(i int, width int) uint {
	if o == BigEndian {
		return uint(8 * (width - 1 - i))
	}
	return uint(8 * i)
}

// Split decomposes v into width bytes in the specified byte order.
func Split[T constraints.Unsigned](o ByteOrder, v T, width int) []uint8 {
	b := make([]uint8, width)
	SplitInto(o, v, b)
	return b
}

// SplitInto decomposes v into len(b) bytes in the specified byte order.
func SplitInto[T constraints.Unsigned](o ByteOrder, v T, b []uint8) {
	for i := range b {
		b[i] = uint8(v >> o.shift(i, len(b)))
	}
}

// Join composes a value from bytes in the specified byte order. Only the
// bytes that fit in T are used.
func Join[T constraints.Unsigned](o ByteOrder, b []uint8) T {
	var v T
	for i := range b {
		v |= T(b[i]) << o.shift(i, len(b))
	}
	return v
}
