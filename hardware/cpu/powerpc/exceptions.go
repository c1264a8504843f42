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

package powerpc

// Exception vectors.
const (
	ResetVector    = 0x100
	ExternalVector = 0x500
	ProgramVector  = 0x700
	SyscallVector  = 0xc00
)

// MSR bits.
const (
	msrEE = 0x00008000
	msrPR = 0x00004000
	msrFP = 0x00002000
	msrME = 0x00001000
	msrSE = 0x00000400
	msrBE = 0x00000200
	msrIP = 0x00000040
	msrIR = 0x00000020
	msrDR = 0x00000010
	msrRI = 0x00000002
)

// the MSR bits cleared on entry to an exception handler.
const msrClearOnException = msrEE | msrPR | msrFP | msrSE | msrBE | msrIR | msrDR | msrRI

// SRR1 bits describing the cause of a program exception.
const (
	programIllegal    = 0x00080000
	programPrivileged = 0x00040000
	programTrap       = 0x00020000
)

// exception enters the handler at vector. srr0 is the address the handler
// should return to and reason is ORed into SRR1.
func (mc *CPU) exception(name string, vector uint32, srr0 uint32, reason uint32) {
	mc.srr0 = srr0
	mc.srr1 = mc.msr&0x0000ffff | reason
	mc.msr &^= msrClearOnException
	if mc.msr&msrIP == msrIP {
		vector |= 0xfff00000
	}
	mc.pc = vector
	mc.last.Interrupt = name
}

// program takes the program exception for the current instruction.
func (mc *CPU) program(reason uint32) {
	mc.exception("Program", ProgramVector, mc.current, reason)
}

// illegal takes the program exception for an instruction that is not
// implemented.
func (mc *CPU) illegal(word uint32) {
	mc.op(".long", "%#08x", word)
	mc.last.Undefined = true
	mc.program(programIllegal)
}

// privileged returns true if the current instruction can be executed. The
// program exception is taken if the CPU is in problem state.
func (mc *CPU) privileged() bool {
	if mc.msr&msrPR == msrPR {
		mc.program(programPrivileged)
		return false
	}
	return true
}

// rfi returns from an exception handler.
func (mc *CPU) rfi() {
	mc.msr = mc.msr&^0x0000ffff | mc.srr1&0x0000ffff
	mc.pc = mc.srr0 &^ 0x03
}
