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

// coprocessor 0 register numbers.
const (
	cop0BadVAddr = 8
	cop0SR       = 12
	cop0Cause    = 13
	cop0EPC      = 14
	cop0PRId     = 15
)

// status register bits.
const (
	srIEc = 1 << 0
	srKUc = 1 << 1
	srIsC = 1 << 16
	srBEV = 1 << 22
	srIM  = 0xff00
)

// cause register bits.
const (
	causeBD = 1 << 31
	causeIP = 0xff00

	// only the software interrupt bits can be written with MTC0
	causeSW = 0x0300

	// hardware interrupt 0 is connected to the interrupt lines
	causeIP2 = 0x0400
)

// exception codes as stored in the ExcCode field of the cause register.
type exception int

const (
	excInt  exception = 0
	excAdEL exception = 4
	excAdES exception = 5
	excSys  exception = 8
	excBp   exception = 9
	excRI   exception = 10
	excCpU  exception = 11
	excOv   exception = 12
)

func (e exception) String() string {
	switch e {
	case excInt:
		return "Int"
	case excAdEL:
		return "AdEL"
	case excAdES:
		return "AdES"
	case excSys:
		return "Sys"
	case excBp:
		return "Bp"
	case excRI:
		return "RI"
	case excCpU:
		return "CpU"
	case excOv:
		return "Ov"
	}
	return "exception"
}

// the value of the PRId register. implementation 0x00, revision 0x02
const prid = 0x00000002

// Exception vectors.
const (
	ResetVector     = 0xbfc00000
	GeneralVector   = 0x80000080
	BootstrapVector = 0xbfc00180
)

// exception enters the exception handler. epc is the address of the
// instruction that caused the exception, or the address of the instruction
// that was not executed because of an interrupt. delay is true if that
// instruction is in a branch delay slot.
func (mc *CPU) exception(code exception, epc uint32, delay bool) {
	cause := mc.cop0[cop0Cause] &^ (causeBD | 0x7c)
	cause |= uint32(code) << 2
	if delay {
		cause |= causeBD
		epc -= 4
	}
	mc.cop0[cop0Cause] = cause
	mc.cop0[cop0EPC] = epc

	// push the kernel mode and interrupt enable bits. the new current mode
	// is kernel with interrupts disabled
	sr := mc.cop0[cop0SR]
	mc.cop0[cop0SR] = sr&^0x3f | (sr<<2)&0x3f

	if sr&srBEV == srBEV {
		mc.pc = BootstrapVector
	} else {
		mc.pc = GeneralVector
	}
	mc.npc = mc.pc + 4
	mc.delay = false

	mc.last.Interrupt = code.String()
}

// rfe pops the kernel mode and interrupt enable bits.
func (mc *CPU) rfe() {
	sr := mc.cop0[cop0SR]
	mc.cop0[cop0SR] = sr&^0x0f | (sr>>2)&0x0f
}

// mtc0 writes to a coprocessor 0 register.
func (mc *CPU) mtc0(reg int, v uint32) {
	switch reg {
	case cop0Cause:
		mc.cop0[cop0Cause] = mc.cop0[cop0Cause]&^causeSW | v&causeSW
	case cop0PRId, cop0BadVAddr:
		// read only
	default:
		mc.cop0[reg] = v
	}
}

// pendingInterrupt returns true if an unmasked interrupt is pending and
// interrupts are enabled.
func (mc *CPU) pendingInterrupt() bool {
	if mc.lines != nil {
		if mc.lines.IRQ() {
			mc.cop0[cop0Cause] |= causeIP2
		} else {
			mc.cop0[cop0Cause] &^= causeIP2
		}
	}
	sr := mc.cop0[cop0SR]
	return sr&srIEc == srIEc && sr&srIM&mc.cop0[cop0Cause]&causeIP != 0
}
