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
	"fmt"

	"github.com/emulite/emulite/hardware/cpu"
)

// Step implements the cpu.CPU interface. Every instruction takes one cycle.
//
// Interrupts are sampled before the instruction is fetched. A taken interrupt
// is the entire step.
func (mc *CPU) Step() (int, error) {
	mc.fault = nil
	mc.last = cpu.Result{Address: mc.pc, Bytes: 4, Cycles: 1}

	mc.current = mc.pc
	mc.currentDelay = mc.delay
	mc.delay = false

	if mc.pendingInterrupt() {
		mc.last.Mnemonic = excInt.String()
		mc.raise(excInt)
		return mc.last.Cycles, mc.fault
	}

	if mc.pc&0x03 != 0 {
		mc.last.Mnemonic = excAdEL.String()
		mc.cop0[cop0BadVAddr] = mc.pc
		mc.raise(excAdEL)
		return mc.last.Cycles, mc.fault
	}

	word := mc.read(mc.pc, 4)
	mc.last.Opcode = word

	mc.pc = mc.npc
	mc.npc += 4

	mc.execute(word)

	return mc.last.Cycles, mc.fault
}

// raise an exception for the current instruction.
func (mc *CPU) raise(code exception) {
	mc.exception(code, mc.current, mc.currentDelay)
}

// coprocessorUnusable raises the CpU exception with the coprocessor number
// in the CE field of the cause register.
func (mc *CPU) coprocessorUnusable(z uint32) {
	mc.cop0[cop0Cause] = mc.cop0[cop0Cause]&^(0x03<<28) | (z&0x03)<<28
	mc.raise(excCpU)
}

// reserved raises the reserved instruction exception.
func (mc *CPU) reserved(word uint32) {
	mc.op("DW", "%#08x", word)
	mc.last.Undefined = true
	mc.raise(excRI)
}

// branch schedules a jump to target after the delay slot.
func (mc *CPU) branch(taken bool, target uint32) {
	mc.delay = true
	if taken {
		mc.npc = target
		mc.last.BranchTaken = true
	}
}

// op sets the disassembly of the current instruction.
func (mc *CPU) op(mnemonic string, format string, args ...any) {
	mc.last.Mnemonic = mnemonic
	if format != "" {
		mc.last.Operand = fmt.Sprintf(format, args...)
	}
}

func reg(r int) string {
	return "$" + gprNames[r]
}

func (mc *CPU) execute(word uint32) {
	opcode := word >> 26
	rs := int(word>>21) & 0x1f
	rt := int(word>>16) & 0x1f
	imm := word & 0xffff
	simm := uint32(int32(int16(imm)))

	branchTarget := mc.current + 4 + simm<<2

	switch opcode {
	case 0x00:
		mc.special(word)

	case 0x01:
		// the link register is written whether or not the branch is taken
		v := int32(mc.gpr[rs])
		switch rt {
		case 0x00:
			mc.op("BLTZ", "%s, %#08x", reg(rs), branchTarget)
			mc.branch(v < 0, branchTarget)
		case 0x01:
			mc.op("BGEZ", "%s, %#08x", reg(rs), branchTarget)
			mc.branch(v >= 0, branchTarget)
		case 0x10:
			mc.op("BLTZAL", "%s, %#08x", reg(rs), branchTarget)
			mc.setGPR(31, mc.current+8)
			mc.branch(v < 0, branchTarget)
		case 0x11:
			mc.op("BGEZAL", "%s, %#08x", reg(rs), branchTarget)
			mc.setGPR(31, mc.current+8)
			mc.branch(v >= 0, branchTarget)
		default:
			mc.reserved(word)
		}

	case 0x02:
		target := (mc.current+4)&0xf0000000 | (word&0x03ffffff)<<2
		mc.op("J", "%#08x", target)
		mc.branch(true, target)

	case 0x03:
		target := (mc.current+4)&0xf0000000 | (word&0x03ffffff)<<2
		mc.op("JAL", "%#08x", target)
		mc.setGPR(31, mc.current+8)
		mc.branch(true, target)

	case 0x04:
		mc.op("BEQ", "%s, %s, %#08x", reg(rs), reg(rt), branchTarget)
		mc.branch(mc.gpr[rs] == mc.gpr[rt], branchTarget)

	case 0x05:
		mc.op("BNE", "%s, %s, %#08x", reg(rs), reg(rt), branchTarget)
		mc.branch(mc.gpr[rs] != mc.gpr[rt], branchTarget)

	case 0x06:
		mc.op("BLEZ", "%s, %#08x", reg(rs), branchTarget)
		mc.branch(int32(mc.gpr[rs]) <= 0, branchTarget)

	case 0x07:
		mc.op("BGTZ", "%s, %#08x", reg(rs), branchTarget)
		mc.branch(int32(mc.gpr[rs]) > 0, branchTarget)

	case 0x08:
		mc.op("ADDI", "%s, %s, %d", reg(rt), reg(rs), int32(simm))
		a := mc.gpr[rs]
		r := a + simm
		if (a^r)&(simm^r)&0x80000000 != 0 {
			mc.raise(excOv)
			return
		}
		mc.setGPR(rt, r)

	case 0x09:
		mc.op("ADDIU", "%s, %s, %d", reg(rt), reg(rs), int32(simm))
		mc.setGPR(rt, mc.gpr[rs]+simm)

	case 0x0a:
		mc.op("SLTI", "%s, %s, %d", reg(rt), reg(rs), int32(simm))
		mc.setGPR(rt, boolToWord(int32(mc.gpr[rs]) < int32(simm)))

	case 0x0b:
		mc.op("SLTIU", "%s, %s, %d", reg(rt), reg(rs), int32(simm))
		mc.setGPR(rt, boolToWord(mc.gpr[rs] < simm))

	case 0x0c:
		mc.op("ANDI", "%s, %s, %#04x", reg(rt), reg(rs), imm)
		mc.setGPR(rt, mc.gpr[rs]&imm)

	case 0x0d:
		mc.op("ORI", "%s, %s, %#04x", reg(rt), reg(rs), imm)
		mc.setGPR(rt, mc.gpr[rs]|imm)

	case 0x0e:
		mc.op("XORI", "%s, %s, %#04x", reg(rt), reg(rs), imm)
		mc.setGPR(rt, mc.gpr[rs]^imm)

	case 0x0f:
		mc.op("LUI", "%s, %#04x", reg(rt), imm)
		mc.setGPR(rt, imm<<16)

	case 0x10:
		mc.cop0Instruction(word)

	case 0x11, 0x12, 0x13:
		mc.op(fmt.Sprintf("COP%d", opcode&0x03), "%#07x", word&0x01ffffff)
		mc.coprocessorUnusable(opcode & 0x03)

	case 0x20:
		address := mc.gpr[rs] + simm
		mc.op("LB", "%s, %d(%s)", reg(rt), int32(simm), reg(rs))
		mc.setGPR(rt, uint32(int32(int8(mc.read(address, 1)))))

	case 0x21:
		address := mc.gpr[rs] + simm
		mc.op("LH", "%s, %d(%s)", reg(rt), int32(simm), reg(rs))
		if mc.aligned(address, 2, excAdEL) {
			mc.setGPR(rt, uint32(int32(int16(mc.read(address, 2)))))
		}

	case 0x22:
		address := mc.gpr[rs] + simm
		mc.op("LWL", "%s, %d(%s)", reg(rt), int32(simm), reg(rs))
		w := mc.read(address&^0x03, 4)
		k := mc.byteIndex(address)
		mc.setGPR(rt, mc.gpr[rt]&(uint32(0x00ffffff)>>(k*8))|w<<(24-k*8))

	case 0x23:
		address := mc.gpr[rs] + simm
		mc.op("LW", "%s, %d(%s)", reg(rt), int32(simm), reg(rs))
		if mc.aligned(address, 4, excAdEL) {
			mc.setGPR(rt, mc.read(address, 4))
		}

	case 0x24:
		address := mc.gpr[rs] + simm
		mc.op("LBU", "%s, %d(%s)", reg(rt), int32(simm), reg(rs))
		mc.setGPR(rt, mc.read(address, 1))

	case 0x25:
		address := mc.gpr[rs] + simm
		mc.op("LHU", "%s, %d(%s)", reg(rt), int32(simm), reg(rs))
		if mc.aligned(address, 2, excAdEL) {
			mc.setGPR(rt, mc.read(address, 2))
		}

	case 0x26:
		address := mc.gpr[rs] + simm
		mc.op("LWR", "%s, %d(%s)", reg(rt), int32(simm), reg(rs))
		w := mc.read(address&^0x03, 4)
		k := mc.byteIndex(address)
		mc.setGPR(rt, mc.gpr[rt]&(uint32(0xffffff00)<<((3-k)*8))|w>>(k*8))

	case 0x28:
		address := mc.gpr[rs] + simm
		mc.op("SB", "%s, %d(%s)", reg(rt), int32(simm), reg(rs))
		mc.write(address, 1, mc.gpr[rt]&0xff)

	case 0x29:
		address := mc.gpr[rs] + simm
		mc.op("SH", "%s, %d(%s)", reg(rt), int32(simm), reg(rs))
		if mc.aligned(address, 2, excAdES) {
			mc.write(address, 2, mc.gpr[rt]&0xffff)
		}

	case 0x2a:
		address := mc.gpr[rs] + simm
		mc.op("SWL", "%s, %d(%s)", reg(rt), int32(simm), reg(rs))
		w := mc.read(address&^0x03, 4)
		k := mc.byteIndex(address)
		mc.write(address&^0x03, 4, w&(uint32(0xffffff00)<<(k*8))|mc.gpr[rt]>>(24-k*8))

	case 0x2b:
		address := mc.gpr[rs] + simm
		mc.op("SW", "%s, %d(%s)", reg(rt), int32(simm), reg(rs))
		if mc.aligned(address, 4, excAdES) {
			mc.write(address, 4, mc.gpr[rt])
		}

	case 0x2e:
		address := mc.gpr[rs] + simm
		mc.op("SWR", "%s, %d(%s)", reg(rt), int32(simm), reg(rs))
		w := mc.read(address&^0x03, 4)
		k := mc.byteIndex(address)
		mc.write(address&^0x03, 4, w&(uint32(0x00ffffff)>>((3-k)*8))|mc.gpr[rt]<<(k*8))

	case 0x30, 0x31, 0x32, 0x33:
		mc.op(fmt.Sprintf("LWC%d", opcode&0x03), "$%d, %d(%s)", rt, int32(simm), reg(rs))
		mc.coprocessorUnusable(opcode & 0x03)

	case 0x38, 0x39, 0x3a, 0x3b:
		mc.op(fmt.Sprintf("SWC%d", opcode&0x03), "$%d, %d(%s)", rt, int32(simm), reg(rs))
		mc.coprocessorUnusable(opcode & 0x03)

	default:
		mc.reserved(word)
	}
}

// special executes the instructions with primary opcode zero.
func (mc *CPU) special(word uint32) {
	rs := int(word>>21) & 0x1f
	rt := int(word>>16) & 0x1f
	rd := int(word>>11) & 0x1f
	sa := word >> 6 & 0x1f

	switch word & 0x3f {
	case 0x00:
		if word == 0 {
			mc.op("NOP", "")
			return
		}
		mc.op("SLL", "%s, %s, %d", reg(rd), reg(rt), sa)
		mc.setGPR(rd, mc.gpr[rt]<<sa)

	case 0x02:
		mc.op("SRL", "%s, %s, %d", reg(rd), reg(rt), sa)
		mc.setGPR(rd, mc.gpr[rt]>>sa)

	case 0x03:
		mc.op("SRA", "%s, %s, %d", reg(rd), reg(rt), sa)
		mc.setGPR(rd, uint32(int32(mc.gpr[rt])>>sa))

	case 0x04:
		mc.op("SLLV", "%s, %s, %s", reg(rd), reg(rt), reg(rs))
		mc.setGPR(rd, mc.gpr[rt]<<(mc.gpr[rs]&0x1f))

	case 0x06:
		mc.op("SRLV", "%s, %s, %s", reg(rd), reg(rt), reg(rs))
		mc.setGPR(rd, mc.gpr[rt]>>(mc.gpr[rs]&0x1f))

	case 0x07:
		mc.op("SRAV", "%s, %s, %s", reg(rd), reg(rt), reg(rs))
		mc.setGPR(rd, uint32(int32(mc.gpr[rt])>>(mc.gpr[rs]&0x1f)))

	case 0x08:
		mc.op("JR", "%s", reg(rs))
		mc.branch(true, mc.gpr[rs])

	case 0x09:
		mc.op("JALR", "%s, %s", reg(rd), reg(rs))
		target := mc.gpr[rs]
		mc.setGPR(rd, mc.current+8)
		mc.branch(true, target)

	case 0x0c:
		mc.op("SYSCALL", "")
		mc.raise(excSys)

	case 0x0d:
		mc.op("BREAK", "%#x", word>>6&0xfffff)
		mc.raise(excBp)

	case 0x10:
		mc.op("MFHI", "%s", reg(rd))
		mc.setGPR(rd, mc.hi)

	case 0x11:
		mc.op("MTHI", "%s", reg(rs))
		mc.hi = mc.gpr[rs]

	case 0x12:
		mc.op("MFLO", "%s", reg(rd))
		mc.setGPR(rd, mc.lo)

	case 0x13:
		mc.op("MTLO", "%s", reg(rs))
		mc.lo = mc.gpr[rs]

	case 0x18:
		mc.op("MULT", "%s, %s", reg(rs), reg(rt))
		r := uint64(int64(int32(mc.gpr[rs])) * int64(int32(mc.gpr[rt])))
		mc.hi = uint32(r >> 32)
		mc.lo = uint32(r)

	case 0x19:
		mc.op("MULTU", "%s, %s", reg(rs), reg(rt))
		r := uint64(mc.gpr[rs]) * uint64(mc.gpr[rt])
		mc.hi = uint32(r >> 32)
		mc.lo = uint32(r)

	case 0x1a:
		mc.op("DIV", "%s, %s", reg(rs), reg(rt))
		n := int32(mc.gpr[rs])
		d := int32(mc.gpr[rt])
		switch {
		case d == 0:
			// division by zero does not raise an exception. the results
			// are those produced by the hardware divider
			mc.hi = uint32(n)
			if n >= 0 {
				mc.lo = 0xffffffff
			} else {
				mc.lo = 1
			}
		case n == -0x80000000 && d == -1:
			mc.hi = 0
			mc.lo = 0x80000000
		default:
			mc.hi = uint32(n % d)
			mc.lo = uint32(n / d)
		}

	case 0x1b:
		mc.op("DIVU", "%s, %s", reg(rs), reg(rt))
		n := mc.gpr[rs]
		d := mc.gpr[rt]
		if d == 0 {
			mc.hi = n
			mc.lo = 0xffffffff
		} else {
			mc.hi = n % d
			mc.lo = n / d
		}

	case 0x20:
		mc.op("ADD", "%s, %s, %s", reg(rd), reg(rs), reg(rt))
		a := mc.gpr[rs]
		b := mc.gpr[rt]
		r := a + b
		if (a^r)&(b^r)&0x80000000 != 0 {
			mc.raise(excOv)
			return
		}
		mc.setGPR(rd, r)

	case 0x21:
		mc.op("ADDU", "%s, %s, %s", reg(rd), reg(rs), reg(rt))
		mc.setGPR(rd, mc.gpr[rs]+mc.gpr[rt])

	case 0x22:
		mc.op("SUB", "%s, %s, %s", reg(rd), reg(rs), reg(rt))
		a := mc.gpr[rs]
		b := mc.gpr[rt]
		r := a - b
		if (a^b)&(a^r)&0x80000000 != 0 {
			mc.raise(excOv)
			return
		}
		mc.setGPR(rd, r)

	case 0x23:
		mc.op("SUBU", "%s, %s, %s", reg(rd), reg(rs), reg(rt))
		mc.setGPR(rd, mc.gpr[rs]-mc.gpr[rt])

	case 0x24:
		mc.op("AND", "%s, %s, %s", reg(rd), reg(rs), reg(rt))
		mc.setGPR(rd, mc.gpr[rs]&mc.gpr[rt])

	case 0x25:
		if rt == 0 {
			mc.op("MOVE", "%s, %s", reg(rd), reg(rs))
		} else {
			mc.op("OR", "%s, %s, %s", reg(rd), reg(rs), reg(rt))
		}
		mc.setGPR(rd, mc.gpr[rs]|mc.gpr[rt])

	case 0x26:
		mc.op("XOR", "%s, %s, %s", reg(rd), reg(rs), reg(rt))
		mc.setGPR(rd, mc.gpr[rs]^mc.gpr[rt])

	case 0x27:
		mc.op("NOR", "%s, %s, %s", reg(rd), reg(rs), reg(rt))
		mc.setGPR(rd, ^(mc.gpr[rs] | mc.gpr[rt]))

	case 0x2a:
		mc.op("SLT", "%s, %s, %s", reg(rd), reg(rs), reg(rt))
		mc.setGPR(rd, boolToWord(int32(mc.gpr[rs]) < int32(mc.gpr[rt])))

	case 0x2b:
		mc.op("SLTU", "%s, %s, %s", reg(rd), reg(rs), reg(rt))
		mc.setGPR(rd, boolToWord(mc.gpr[rs] < mc.gpr[rt]))

	default:
		mc.reserved(word)
	}
}

// cop0Instruction executes the coprocessor 0 instructions. Coprocessor 0 is
// usable in kernel mode or when the CU0 bit is set.
func (mc *CPU) cop0Instruction(word uint32) {
	rt := int(word>>16) & 0x1f
	rd := int(word>>11) & 0x1f

	const cu0 = 1 << 28
	if mc.cop0[cop0SR]&srKUc == srKUc && mc.cop0[cop0SR]&cu0 == 0 {
		mc.op("COP0", "%#07x", word&0x01ffffff)
		mc.coprocessorUnusable(0)
		return
	}

	switch word >> 21 & 0x1f {
	case 0x00:
		mc.op("MFC0", "%s, $%d", reg(rt), rd)
		mc.setGPR(rt, mc.cop0[rd])
	case 0x04:
		mc.op("MTC0", "%s, $%d", reg(rt), rd)
		mc.mtc0(rd, mc.gpr[rt])
	case 0x10:
		if word&0x3f == 0x10 {
			mc.op("RFE", "")
			mc.rfe()
			return
		}
		mc.reserved(word)
	default:
		mc.reserved(word)
	}
}

func boolToWord(b bool) uint32 {
	if b {
		return 1
	}
	return 0
}
