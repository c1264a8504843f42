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

package cpu

import (
	"fmt"
	"strings"
)

// Result of a single call to CPU.Step().
type Result struct {
	// address of the instruction
	Address uint32

	// the opcode. for fixed width architectures this is the entire
	// instruction word
	Opcode uint32

	Mnemonic string
	Operand  string

	// number of bytes in the instruction
	Bytes int

	Cycles int

	PageCrossed bool
	BranchTaken bool

	// the instruction was not a documented instruction for the architecture
	Undefined bool

	// the name of the interrupt or exception taken during the step, if any.
	// when an interrupt is taken instead of an instruction the Mnemonic field
	// is the same as the Interrupt field
	Interrupt string
}

func (r Result) String() string {
	s := strings.Builder{}
	s.WriteString(fmt.Sprintf("%08x %s", r.Address, r.Mnemonic))
	if r.Operand != "" {
		s.WriteString(" ")
		s.WriteString(r.Operand)
	}
	s.WriteString(fmt.Sprintf(" [%d]", r.Cycles))
	if r.PageCrossed {
		s.WriteString(" page crossed")
	}
	if r.BranchTaken {
		s.WriteString(" branch taken")
	}
	if r.Undefined {
		s.WriteString(" undefined")
	}
	if r.Interrupt != "" && r.Interrupt != r.Mnemonic {
		s.WriteString(" ")
		s.WriteString(r.Interrupt)
	}
	return s.String()
}
