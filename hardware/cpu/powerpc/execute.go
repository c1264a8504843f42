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

import (
	"fmt"
	"math/bits"

	"github.com/emulite/emulite/hardware/cpu"
)

// Step implements the cpu.CPU interface. Every instruction takes one cycle.
//
// The external interrupt is sampled before the instruction is fetched. A
// taken interrupt is the entire step.
func (mc *CPU) Step() (int, error) {
	mc.fault = nil
	mc.last = cpu.Result{Address: mc.pc, Bytes: 4, Cycles: 1}
	mc.current = mc.pc
	mc.tb++

	if mc.lines != nil && mc.lines.IRQ() && mc.msr&msrEE == msrEE {
		mc.last.Mnemonic = "External"
		mc.exception("External", ExternalVector, mc.pc, 0)
		return mc.last.Cycles, mc.fault
	}

	word := mc.read(mc.pc, 4)
	mc.last.Opcode = word
	mc.pc += 4

	mc.execute(word)

	return mc.last.Cycles, mc.fault
}

func (mc *CPU) read(address uint32, width int) uint32 {
	v, err := mc.bus.Read(address, width)
	if err != nil && mc.fault == nil {
		mc.fault = err
	}
	return v
}

func (mc *CPU) write(address uint32, width int, value uint32) {
	err := mc.bus.Write(address, width, value)
	if err != nil && mc.fault == nil {
		mc.fault = err
	}
}

// op sets the disassembly of the current instruction.
func (mc *CPU) op(mnemonic string, format string, args ...any) {
	mc.last.Mnemonic = mnemonic
	if format != "" {
		mc.last.Operand = fmt.Sprintf(format, args...)
	}
}

// dot appends the record suffix to a mnemonic.
func dot(mnemonic string, rc bool) string {
	if rc {
		return mnemonic + "."
	}
	return mnemonic
}

// setCR sets condition register field n.
func (mc *CPU) setCR(n uint32, lt, gt, eq bool) {
	var f uint32
	switch {
	case lt:
		f = 0x8
	case gt:
		f = 0x4
	case eq:
		f = 0x2
	}
	if mc.xer&xerSO == xerSO {
		f |= 0x1
	}
	shift := 28 - 4*n
	mc.cr = mc.cr&^(0xf<<shift) | f<<shift
}

// record sets CR0 from a result.
func (mc *CPU) record(v uint32) {
	mc.setCR(0, int32(v) < 0, int32(v) > 0, v == 0)
}

func (mc *CPU) crBit(n uint32) bool {
	return mc.cr>>(31-n)&1 == 1
}

func (mc *CPU) setCRBit(n uint32, v bool) {
	if v {
		mc.cr |= 1 << (31 - n)
	} else {
		mc.cr &^= 1 << (31 - n)
	}
}

func (mc *CPU) setCA(v bool) {
	if v {
		mc.xer |= xerCA
	} else {
		mc.xer &^= xerCA
	}
}

// setOV sets the overflow bit. the summary overflow bit is sticky.
func (mc *CPU) setOV(v bool) {
	if v {
		mc.xer |= xerOV | xerSO
	} else {
		mc.xer &^= xerOV
	}
}

func (mc *CPU) carry() uint32 {
	return mc.xer >> 29 & 1
}

// addExtended adds a, b and the carry in. The carry out and signed overflow
// are returned.
func addExtended(a, b, c uint32) (uint32, bool, bool) {
	r, c1 := bits.Add32(a, b, c)
	ov := (a^r)&(b^r)&0x80000000 != 0
	return r, c1 == 1, ov
}

// mask returns the rotate mask with bits mb through me set. Bit zero is the
// most significant bit.
func mask(mb, me uint32) uint32 {
	m1 := uint32(0xffffffff) >> mb
	m2 := uint32(0xffffffff) << (31 - me)
	if mb <= me {
		return m1 & m2
	}
	return m1 | m2
}

// branchCondition evaluates the BO and BI fields of a conditional branch.
// The count register is decremented if BO asks for it.
func (mc *CPU) branchCondition(bo, bi uint32) bool {
	ctrOK := true
	if bo&0x04 == 0 {
		mc.ctr--
		ctrOK = (mc.ctr != 0) != (bo&0x02 == 0x02)
	}
	condOK := bo&0x10 == 0x10 || mc.crBit(bi) == (bo&0x08 == 0x08)
	return ctrOK && condOK
}

// trap returns true if the trap condition TO is met by a and b.
func trap(to, a, b uint32) bool {
	sa, sb := int32(a), int32(b)
	return (to&0x10 == 0x10 && sa < sb) ||
		(to&0x08 == 0x08 && sa > sb) ||
		(to&0x04 == 0x04 && a == b) ||
		(to&0x02 == 0x02 && a < b) ||
		(to&0x01 == 0x01 && a > b)
}

func (mc *CPU) execute(word uint32) {
	opcode := word >> 26
	rd := word >> 21 & 0x1f
	ra := word >> 16 & 0x1f
	imm := word & 0xffff
	simm := uint32(int32(int16(imm)))

	// the base register of an address or an addi is zero when ra is r0
	base := uint32(0)
	if ra != 0 {
		base = mc.gpr[ra]
	}

	switch opcode {
	case 3:
		mc.op("twi", "%d, r%d, %d", rd, ra, int32(simm))
		if trap(rd, mc.gpr[ra], simm) {
			mc.program(programTrap)
		}

	case 7:
		mc.op("mulli", "r%d, r%d, %d", rd, ra, int32(simm))
		mc.gpr[rd] = uint32(int32(mc.gpr[ra]) * int32(simm))

	case 8:
		mc.op("subfic", "r%d, r%d, %d", rd, ra, int32(simm))
		r, c, _ := addExtended(^mc.gpr[ra], simm, 1)
		mc.gpr[rd] = r
		mc.setCA(c)

	case 10:
		crf := rd >> 2
		mc.op("cmplwi", "cr%d, r%d, %#x", crf, ra, imm)
		a := mc.gpr[ra]
		mc.setCR(crf, a < imm, a > imm, a == imm)

	case 11:
		crf := rd >> 2
		mc.op("cmpwi", "cr%d, r%d, %d", crf, ra, int32(simm))
		a := int32(mc.gpr[ra])
		b := int32(simm)
		mc.setCR(crf, a < b, a > b, a == b)

	case 12, 13:
		rc := opcode == 13
		mc.op(dot("addic", rc), "r%d, r%d, %d", rd, ra, int32(simm))
		r, c, _ := addExtended(mc.gpr[ra], simm, 0)
		mc.gpr[rd] = r
		mc.setCA(c)
		if rc {
			mc.record(r)
		}

	case 14:
		if ra == 0 {
			mc.op("li", "r%d, %d", rd, int32(simm))
		} else {
			mc.op("addi", "r%d, r%d, %d", rd, ra, int32(simm))
		}
		mc.gpr[rd] = base + simm

	case 15:
		if ra == 0 {
			mc.op("lis", "r%d, %#x", rd, imm)
		} else {
			mc.op("addis", "r%d, r%d, %#x", rd, ra, imm)
		}
		mc.gpr[rd] = base + imm<<16

	case 16:
		bo := rd
		bi := ra
		bd := uint32(int32(int16(word & 0xfffc)))
		target := bd
		if word&0x02 == 0 {
			target += mc.current
		}
		mc.op(branchMnemonic("bc", word), "%d, %d, %#08x", bo, bi, target)
		if word&0x01 == 0x01 {
			mc.lr = mc.current + 4
		}
		if mc.branchCondition(bo, bi) {
			mc.pc = target
			mc.last.BranchTaken = true
		}

	case 17:
		if word&0x02 == 0 {
			mc.illegal(word)
			return
		}
		mc.op("sc", "")
		mc.exception("Syscall", SyscallVector, mc.pc, 0)

	case 18:
		li := uint32(int32((word&0x03fffffc)<<6) >> 6)
		target := li
		if word&0x02 == 0 {
			target += mc.current
		}
		mc.op(branchMnemonic("b", word), "%#08x", target)
		if word&0x01 == 0x01 {
			mc.lr = mc.current + 4
		}
		mc.pc = target
		mc.last.BranchTaken = true

	case 19:
		mc.extended19(word)

	case 20:
		sh := word >> 11 & 0x1f
		mb := word >> 6 & 0x1f
		me := word >> 1 & 0x1f
		rc := word&1 == 1
		mc.op(dot("rlwimi", rc), "r%d, r%d, %d, %d, %d", ra, rd, sh, mb, me)
		m := mask(mb, me)
		r := bits.RotateLeft32(mc.gpr[rd], int(sh))&m | mc.gpr[ra]&^m
		mc.gpr[ra] = r
		if rc {
			mc.record(r)
		}

	case 21:
		sh := word >> 11 & 0x1f
		mb := word >> 6 & 0x1f
		me := word >> 1 & 0x1f
		rc := word&1 == 1
		mc.op(dot("rlwinm", rc), "r%d, r%d, %d, %d, %d", ra, rd, sh, mb, me)
		r := bits.RotateLeft32(mc.gpr[rd], int(sh)) & mask(mb, me)
		mc.gpr[ra] = r
		if rc {
			mc.record(r)
		}

	case 23:
		rb := word >> 11 & 0x1f
		mb := word >> 6 & 0x1f
		me := word >> 1 & 0x1f
		rc := word&1 == 1
		mc.op(dot("rlwnm", rc), "r%d, r%d, r%d, %d, %d", ra, rd, rb, mb, me)
		r := bits.RotateLeft32(mc.gpr[rd], int(mc.gpr[rb]&0x1f)) & mask(mb, me)
		mc.gpr[ra] = r
		if rc {
			mc.record(r)
		}

	case 24:
		if word == 0x60000000 {
			mc.op("nop", "")
			return
		}
		mc.op("ori", "r%d, r%d, %#x", ra, rd, imm)
		mc.gpr[ra] = mc.gpr[rd] | imm

	case 25:
		mc.op("oris", "r%d, r%d, %#x", ra, rd, imm)
		mc.gpr[ra] = mc.gpr[rd] | imm<<16

	case 26:
		mc.op("xori", "r%d, r%d, %#x", ra, rd, imm)
		mc.gpr[ra] = mc.gpr[rd] ^ imm

	case 27:
		mc.op("xoris", "r%d, r%d, %#x", ra, rd, imm)
		mc.gpr[ra] = mc.gpr[rd] ^ imm<<16

	case 28:
		mc.op("andi.", "r%d, r%d, %#x", ra, rd, imm)
		mc.gpr[ra] = mc.gpr[rd] & imm
		mc.record(mc.gpr[ra])

	case 29:
		mc.op("andis.", "r%d, r%d, %#x", ra, rd, imm)
		mc.gpr[ra] = mc.gpr[rd] & (imm << 16)
		mc.record(mc.gpr[ra])

	case 31:
		mc.extended31(word)

	case 32, 33, 34, 35, 40, 41, 42, 43:
		mc.loadStore(word, opcode, rd, ra, base+simm, int32(simm))

	case 36, 37, 38, 39, 44, 45:
		mc.loadStore(word, opcode, rd, ra, base+simm, int32(simm))

	case 46:
		mc.op("lmw", "r%d, %d(r%d)", rd, int32(simm), ra)
		ea := base + simm
		for r := rd; r < 32; r++ {
			mc.gpr[r] = mc.read(ea, 4)
			ea += 4
		}

	case 47:
		mc.op("stmw", "r%d, %d(r%d)", rd, int32(simm), ra)
		ea := base + simm
		for r := rd; r < 32; r++ {
			mc.write(ea, 4, mc.gpr[r])
			ea += 4
		}

	default:
		mc.illegal(word)
	}
}

// branchMnemonic adds the link and absolute suffixes to a branch mnemonic.
func branchMnemonic(m string, word uint32) string {
	if word&0x01 == 0x01 {
		m += "l"
	}
	if word&0x02 == 0x02 {
		m += "a"
	}
	return m
}

// loadStore executes the D-form loads and stores. The update forms write the
// effective address back to ra.
func (mc *CPU) loadStore(word uint32, opcode uint32, rd uint32, ra uint32, ea uint32, d int32) {
	update := false

	switch opcode {
	case 32, 33:
		update = opcode == 33
		mc.op(updateMnemonic("lwz", update), "r%d, %d(r%d)", rd, d, ra)
		mc.gpr[rd] = mc.read(ea, 4)
	case 34, 35:
		update = opcode == 35
		mc.op(updateMnemonic("lbz", update), "r%d, %d(r%d)", rd, d, ra)
		mc.gpr[rd] = mc.read(ea, 1)
	case 40, 41:
		update = opcode == 41
		mc.op(updateMnemonic("lhz", update), "r%d, %d(r%d)", rd, d, ra)
		mc.gpr[rd] = mc.read(ea, 2)
	case 42, 43:
		update = opcode == 43
		mc.op(updateMnemonic("lha", update), "r%d, %d(r%d)", rd, d, ra)
		mc.gpr[rd] = uint32(int32(int16(mc.read(ea, 2))))
	case 36, 37:
		update = opcode == 37
		mc.op(updateMnemonic("stw", update), "r%d, %d(r%d)", rd, d, ra)
		mc.write(ea, 4, mc.gpr[rd])
	case 38, 39:
		update = opcode == 39
		mc.op(updateMnemonic("stb", update), "r%d, %d(r%d)", rd, d, ra)
		mc.write(ea, 1, mc.gpr[rd]&0xff)
	case 44, 45:
		update = opcode == 45
		mc.op(updateMnemonic("sth", update), "r%d, %d(r%d)", rd, d, ra)
		mc.write(ea, 2, mc.gpr[rd]&0xffff)
	}

	if update {
		// the update forms with ra equal to zero are invalid
		if ra == 0 {
			mc.illegal(word)
			return
		}
		mc.gpr[ra] = ea
	}
}

func updateMnemonic(m string, update bool) string {
	if update {
		return m + "u"
	}
	return m
}

// extended19 executes the instructions with primary opcode 19.
func (mc *CPU) extended19(word uint32) {
	bt := word >> 21 & 0x1f
	ba := word >> 16 & 0x1f
	bb := word >> 11 & 0x1f
	lk := word&0x01 == 0x01

	crop := func(mnemonic string, f func(a, b bool) bool) {
		mc.op(mnemonic, "%d, %d, %d", bt, ba, bb)
		mc.setCRBit(bt, f(mc.crBit(ba), mc.crBit(bb)))
	}

	switch word >> 1 & 0x3ff {
	case 0:
		mc.op("mcrf", "cr%d, cr%d", bt>>2, ba>>2)
		f := mc.cr >> (28 - 4*(ba>>2)) & 0xf
		shift := 28 - 4*(bt>>2)
		mc.cr = mc.cr&^(0xf<<shift) | f<<shift

	case 16:
		m := "bclr"
		if bt&0x14 == 0x14 {
			m = "blr"
		}
		if lk {
			m += "l"
		}
		mc.op(m, "")
		target := mc.lr &^ 0x03
		if lk {
			mc.lr = mc.current + 4
		}
		if mc.branchCondition(bt, ba) {
			mc.pc = target
			mc.last.BranchTaken = true
		}

	case 528:
		// the count register can't be decremented by bcctr
		if bt&0x04 == 0 {
			mc.illegal(word)
			return
		}
		m := "bcctr"
		if bt&0x14 == 0x14 {
			m = "bctr"
		}
		if lk {
			m += "l"
		}
		mc.op(m, "")
		target := mc.ctr &^ 0x03
		if lk {
			mc.lr = mc.current + 4
		}
		if mc.branchCondition(bt, ba) {
			mc.pc = target
			mc.last.BranchTaken = true
		}

	case 50:
		mc.op("rfi", "")
		if mc.privileged() {
			mc.rfi()
		}

	case 150:
		mc.op("isync", "")

	case 257:
		crop("crand", func(a, b bool) bool { return a && b })
	case 449:
		crop("cror", func(a, b bool) bool { return a || b })
	case 193:
		crop("crxor", func(a, b bool) bool { return a != b })
	case 225:
		crop("crnand", func(a, b bool) bool { return !(a && b) })
	case 33:
		crop("crnor", func(a, b bool) bool { return !(a || b) })
	case 289:
		crop("creqv", func(a, b bool) bool { return a == b })
	case 129:
		crop("crandc", func(a, b bool) bool { return a && !b })
	case 417:
		crop("crorc", func(a, b bool) bool { return a || !b })

	default:
		mc.illegal(word)
	}
}

// extended31 executes the instructions with primary opcode 31.
func (mc *CPU) extended31(word uint32) {
	rd := word >> 21 & 0x1f
	ra := word >> 16 & 0x1f
	rb := word >> 11 & 0x1f
	rc := word&0x01 == 0x01
	oe := word&0x400 == 0x400

	base := uint32(0)
	if ra != 0 {
		base = mc.gpr[ra]
	}

	// arithmetic instructions with the OE bit use the low nine bits of the
	// extended opcode
	xo := word >> 1 & 0x3ff

	arith := func(mnemonic string, r uint32, ov bool) {
		if oe {
			mnemonic += "o"
			mc.setOV(ov)
		}
		mc.op(dot(mnemonic, rc), "r%d, r%d, r%d", rd, ra, rb)
		mc.gpr[rd] = r
		if rc {
			mc.record(r)
		}
	}

	logical := func(mnemonic string, r uint32) {
		mc.op(dot(mnemonic, rc), "r%d, r%d, r%d", ra, rd, rb)
		mc.gpr[ra] = r
		if rc {
			mc.record(r)
		}
	}

	switch xo & 0x1ff {
	case 266:
		r, _, ov := addExtended(mc.gpr[ra], mc.gpr[rb], 0)
		arith("add", r, ov)
		return
	case 10:
		r, c, ov := addExtended(mc.gpr[ra], mc.gpr[rb], 0)
		arith("addc", r, ov)
		mc.setCA(c)
		return
	case 138:
		r, c, ov := addExtended(mc.gpr[ra], mc.gpr[rb], mc.carry())
		arith("adde", r, ov)
		mc.setCA(c)
		return
	case 202:
		r, c, ov := addExtended(mc.gpr[ra], 0, mc.carry())
		arith("addze", r, ov)
		mc.setCA(c)
		return
	case 40:
		r, _, ov := addExtended(^mc.gpr[ra], mc.gpr[rb], 1)
		arith("subf", r, ov)
		return
	case 8:
		r, c, ov := addExtended(^mc.gpr[ra], mc.gpr[rb], 1)
		arith("subfc", r, ov)
		mc.setCA(c)
		return
	case 136:
		r, c, ov := addExtended(^mc.gpr[ra], mc.gpr[rb], mc.carry())
		arith("subfe", r, ov)
		mc.setCA(c)
		return
	case 104:
		r, _, ov := addExtended(^mc.gpr[ra], 0, 1)
		arith("neg", r, ov)
		return
	case 235:
		p := int64(int32(mc.gpr[ra])) * int64(int32(mc.gpr[rb]))
		arith("mullw", uint32(p), p != int64(int32(p)))
		return
	case 75:
		p := int64(int32(mc.gpr[ra])) * int64(int32(mc.gpr[rb]))
		oe = false
		arith("mulhw", uint32(uint64(p)>>32), false)
		return
	case 11:
		p := uint64(mc.gpr[ra]) * uint64(mc.gpr[rb])
		oe = false
		arith("mulhwu", uint32(p>>32), false)
		return
	case 491:
		a := int32(mc.gpr[ra])
		b := int32(mc.gpr[rb])
		if b == 0 || (a == -0x80000000 && b == -1) {
			// the result is undefined
			arith("divw", 0, true)
			return
		}
		arith("divw", uint32(a/b), false)
		return
	case 459:
		a := mc.gpr[ra]
		b := mc.gpr[rb]
		if b == 0 {
			arith("divwu", 0, true)
			return
		}
		arith("divwu", a/b, false)
		return
	}

	switch xo {
	case 0, 32:
		crf := rd >> 2
		a := mc.gpr[ra]
		b := mc.gpr[rb]
		if xo == 0 {
			mc.op("cmpw", "cr%d, r%d, r%d", crf, ra, rb)
			mc.setCR(crf, int32(a) < int32(b), int32(a) > int32(b), a == b)
		} else {
			mc.op("cmplw", "cr%d, r%d, r%d", crf, ra, rb)
			mc.setCR(crf, a < b, a > b, a == b)
		}

	case 4:
		mc.op("tw", "%d, r%d, r%d", rd, ra, rb)
		if trap(rd, mc.gpr[ra], mc.gpr[rb]) {
			mc.program(programTrap)
		}

	case 28:
		logical("and", mc.gpr[rd]&mc.gpr[rb])
	case 60:
		logical("andc", mc.gpr[rd]&^mc.gpr[rb])
	case 444:
		if rd == rb {
			mc.op(dot("mr", rc), "r%d, r%d", ra, rd)
			mc.gpr[ra] = mc.gpr[rd]
			if rc {
				mc.record(mc.gpr[ra])
			}
			return
		}
		logical("or", mc.gpr[rd]|mc.gpr[rb])
	case 412:
		logical("orc", mc.gpr[rd]|^mc.gpr[rb])
	case 316:
		logical("xor", mc.gpr[rd]^mc.gpr[rb])
	case 124:
		logical("nor", ^(mc.gpr[rd] | mc.gpr[rb]))
	case 476:
		logical("nand", ^(mc.gpr[rd] & mc.gpr[rb]))
	case 284:
		logical("eqv", ^(mc.gpr[rd] ^ mc.gpr[rb]))

	case 24:
		n := mc.gpr[rb] & 0x3f
		var r uint32
		if n < 32 {
			r = mc.gpr[rd] << n
		}
		logical("slw", r)
	case 536:
		n := mc.gpr[rb] & 0x3f
		var r uint32
		if n < 32 {
			r = mc.gpr[rd] >> n
		}
		logical("srw", r)
	case 792:
		n := mc.gpr[rb] & 0x3f
		s := int32(mc.gpr[rd])
		if n > 31 {
			n = 31
		}
		r := uint32(s >> n)
		mc.setCA(s < 0 && mc.gpr[rd]&^(0xffffffff<<n) != 0 || s < 0 && mc.gpr[rb]&0x20 == 0x20)
		logical("sraw", r)
	case 824:
		n := rb
		s := int32(mc.gpr[rd])
		mc.setCA(s < 0 && mc.gpr[rd]&^(0xffffffff<<n) != 0)
		mc.op(dot("srawi", rc), "r%d, r%d, %d", ra, rd, n)
		mc.gpr[ra] = uint32(s >> n)
		if rc {
			mc.record(mc.gpr[ra])
		}

	case 26:
		mc.op(dot("cntlzw", rc), "r%d, r%d", ra, rd)
		mc.gpr[ra] = uint32(bits.LeadingZeros32(mc.gpr[rd]))
		if rc {
			mc.record(mc.gpr[ra])
		}
	case 954:
		mc.op(dot("extsb", rc), "r%d, r%d", ra, rd)
		mc.gpr[ra] = uint32(int32(int8(mc.gpr[rd])))
		if rc {
			mc.record(mc.gpr[ra])
		}
	case 922:
		mc.op(dot("extsh", rc), "r%d, r%d", ra, rd)
		mc.gpr[ra] = uint32(int32(int16(mc.gpr[rd])))
		if rc {
			mc.record(mc.gpr[ra])
		}

	case 339, 371:
		spr := (rb << 5) | ra
		mc.op("mfspr", "r%d, %d", rd, spr)
		v, ok := mc.mfspr(spr)
		if !ok {
			mc.illegal(word)
			return
		}
		mc.gpr[rd] = v
	case 467:
		spr := (rb << 5) | ra
		mc.op("mtspr", "%d, r%d", spr, rd)
		if !mc.mtspr(spr, mc.gpr[rd]) {
			mc.illegal(word)
		}

	case 19:
		mc.op("mfcr", "r%d", rd)
		mc.gpr[rd] = mc.cr
	case 144:
		crm := word >> 12 & 0xff
		mc.op("mtcrf", "%#02x, r%d", crm, rd)
		var m uint32
		for i := uint32(0); i < 8; i++ {
			if crm&(0x80>>i) != 0 {
				m |= 0xf0000000 >> (4 * i)
			}
		}
		mc.cr = mc.cr&^m | mc.gpr[rd]&m
	case 83:
		mc.op("mfmsr", "r%d", rd)
		if mc.privileged() {
			mc.gpr[rd] = mc.msr
		}
	case 146:
		mc.op("mtmsr", "r%d", rd)
		if mc.privileged() {
			mc.msr = mc.gpr[rd]
		}

	case 23:
		mc.op("lwzx", "r%d, r%d, r%d", rd, ra, rb)
		mc.gpr[rd] = mc.read(base+mc.gpr[rb], 4)
	case 87:
		mc.op("lbzx", "r%d, r%d, r%d", rd, ra, rb)
		mc.gpr[rd] = mc.read(base+mc.gpr[rb], 1)
	case 279:
		mc.op("lhzx", "r%d, r%d, r%d", rd, ra, rb)
		mc.gpr[rd] = mc.read(base+mc.gpr[rb], 2)
	case 151:
		mc.op("stwx", "r%d, r%d, r%d", rd, ra, rb)
		mc.write(base+mc.gpr[rb], 4, mc.gpr[rd])
	case 215:
		mc.op("stbx", "r%d, r%d, r%d", rd, ra, rb)
		mc.write(base+mc.gpr[rb], 1, mc.gpr[rd]&0xff)
	case 407:
		mc.op("sthx", "r%d, r%d, r%d", rd, ra, rb)
		mc.write(base+mc.gpr[rb], 2, mc.gpr[rd]&0xffff)

	case 598:
		mc.op("sync", "")
	case 854:
		mc.op("eieio", "")

	// cache management has no effect because there is no cache
	case 86:
		mc.op("dcbf", "r%d, r%d", ra, rb)
	case 54:
		mc.op("dcbst", "r%d, r%d", ra, rb)
	case 278:
		mc.op("dcbt", "r%d, r%d", ra, rb)
	case 246:
		mc.op("dcbtst", "r%d, r%d", ra, rb)
	case 982:
		mc.op("icbi", "r%d, r%d", ra, rb)

	default:
		mc.illegal(word)
	}
}

// mfspr reads a special purpose register. The time base can be read with
// mfspr or mftb.
func (mc *CPU) mfspr(spr uint32) (uint32, bool) {
	switch spr {
	case 1:
		return mc.xer, true
	case 8:
		return mc.lr, true
	case 9:
		return mc.ctr, true
	case 26:
		return mc.srr0, true
	case 27:
		return mc.srr1, true
	case 268:
		return uint32(mc.tb), true
	case 269:
		return uint32(mc.tb >> 32), true
	case 272, 273, 274, 275:
		return mc.sprg[spr-272], true
	case 287:
		return pvr, true
	}
	return 0, false
}

// mtspr writes to a special purpose register.
func (mc *CPU) mtspr(spr uint32, v uint32) bool {
	switch spr {
	case 1:
		mc.xer = v
	case 8:
		mc.lr = v
	case 9:
		mc.ctr = v
	case 26:
		mc.srr0 = v
	case 27:
		mc.srr1 = v
	case 272, 273, 274, 275:
		mc.sprg[spr-272] = v
	default:
		return false
	}
	return true
}
