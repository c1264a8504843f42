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
	"strings"
)

// bits of the status register as pushed to the stack
const (
	carryBit     = 0x01
	zeroBit      = 0x02
	interruptBit = 0x04
	decimalBit   = 0x08
	breakBit     = 0x10
	unusedBit    = 0x20
	overflowBit  = 0x40
	signBit      = 0x80
)

// status register of the CPU.
type status struct {
	Sign             bool
	Overflow         bool
	Break            bool
	DecimalMode      bool
	InterruptDisable bool
	Zero             bool
	Carry            bool
}

func (sr status) String() string {
	s := strings.Builder{}
	flag := func(v bool, r rune) {
		if v {
			s.WriteRune(r)
		} else {
			s.WriteRune(r + 'a' - 'A')
		}
	}
	flag(sr.Sign, 'N')
	flag(sr.Overflow, 'V')
	s.WriteRune('-')
	flag(sr.Break, 'B')
	flag(sr.DecimalMode, 'D')
	flag(sr.InterruptDisable, 'I')
	flag(sr.Zero, 'Z')
	flag(sr.Carry, 'C')
	return s.String()
}

// value returns the status register as an 8 bit value. The unused bit is
// always set.
func (sr status) value() uint8 {
	v := uint8(unusedBit)
	if sr.Sign {
		v |= signBit
	}
	if sr.Overflow {
		v |= overflowBit
	}
	if sr.Break {
		v |= breakBit
	}
	if sr.DecimalMode {
		v |= decimalBit
	}
	if sr.InterruptDisable {
		v |= interruptBit
	}
	if sr.Zero {
		v |= zeroBit
	}
	if sr.Carry {
		v |= carryBit
	}
	return v
}

func (sr *status) load(v uint8) {
	sr.Sign = v&signBit == signBit
	sr.Overflow = v&overflowBit == overflowBit
	sr.Break = v&breakBit == breakBit
	sr.DecimalMode = v&decimalBit == decimalBit
	sr.InterruptDisable = v&interruptBit == interruptBit
	sr.Zero = v&zeroBit == zeroBit
	sr.Carry = v&carryBit == carryBit
}

// names of flags in display order
var flagNames = []string{"N", "V", "B", "D", "I", "Z", "C"}

func (sr *status) flag(name string) (*bool, bool) {
	switch name {
	case "N":
		return &sr.Sign, true
	case "V":
		return &sr.Overflow, true
	case "B":
		return &sr.Break, true
	case "D":
		return &sr.DecimalMode, true
	case "I":
		return &sr.InterruptDisable, true
	case "Z":
		return &sr.Zero, true
	case "C":
		return &sr.Carry, true
	}
	return nil, false
}
