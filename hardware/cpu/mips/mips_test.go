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

package mips_test

import (
	"testing"

	"github.com/emulite/emulite/hardware/cpu"
	"github.com/emulite/emulite/hardware/cpu/mips"
	"github.com/emulite/emulite/hardware/interrupt"
	"github.com/emulite/emulite/hardware/memory"
	"github.com/emulite/emulite/savestate"
	"github.com/emulite/emulite/test"
)

// register numbers used in the test programs
const (
	zero = 0
	t0   = 8
	t1   = 9
	t2   = 10
	t3   = 11
	ra   = 31
)

func special(funct, rs, rt, rd, sa uint32) uint32 {
	return rs<<21 | rt<<16 | rd<<11 | sa<<6 | funct
}

func itype(op, rs, rt, imm uint32) uint32 {
	return op<<26 | rs<<21 | rt<<16 | imm&0xffff
}

func jtype(op, target uint32) uint32 {
	return op<<26 | (target>>2)&0x03ffffff
}

func lui(rt, imm uint32) uint32       { return itype(0x0f, 0, rt, imm) }
func ori(rt, rs, imm uint32) uint32   { return itype(0x0d, rs, rt, imm) }
func addiu(rt, rs, imm uint32) uint32 { return itype(0x09, rs, rt, imm) }
func addi(rt, rs, imm uint32) uint32  { return itype(0x08, rs, rt, imm) }
func lw(rt, rs, imm uint32) uint32    { return itype(0x23, rs, rt, imm) }
func sw(rt, rs, imm uint32) uint32    { return itype(0x2b, rs, rt, imm) }
func mtc0(rt, rd uint32) uint32       { return 0x10<<26 | 0x04<<21 | rt<<16 | rd<<11 }

const (
	nop     = 0
	syscall = 0x0c
	rfe     = 0x42000010
)

type machine struct {
	cpu   *mips.CPU
	bus   *memory.Bus
	ram   *memory.RAM
	bios  *memory.RAM
	lines *interrupt.Lines
	order memory.ByteOrder
}

// newMachine creates a CPU with 2MB of RAM at zero and a writable boot area
// at 0x1fc00000. The program is placed at the reset address.
func newMachine(t *testing.T, order memory.ByteOrder, program ...uint32) *machine {
	t.Helper()

	m := &machine{lines: &interrupt.Lines{}, order: order}
	m.bus = memory.NewBus("test", 32, order, memory.OpenBusConstant(0))
	m.ram = memory.NewRAM("RAM", 0x200000)
	m.bios = memory.NewRAM("BIOS", 0x80000)
	test.DemandSuccess(t, m.bus.Attach(0, 0x1fffff, m.ram))
	test.DemandSuccess(t, m.bus.Attach(0x1fc00000, 0x1fc7ffff, m.bios))

	m.load(m.bios, 0, program...)

	m.cpu = mips.NewCPU(m.bus, order, m.lines)
	test.DemandSuccess(t, m.cpu.Reset())
	return m
}

func (m *machine) load(ram *memory.RAM, offset uint32, words ...uint32) {
	for i, w := range words {
		ram.Load(offset+uint32(i*4), memory.Split(m.order, w, 4))
	}
}

func (m *machine) step(t *testing.T, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		_, err := m.cpu.Step()
		test.ExpectSuccess(t, err)
	}
}

func (m *machine) reg(name string) uint32 {
	v, _ := m.cpu.Register(name)
	return v
}

func TestReset(t *testing.T) {
	m := newMachine(t, memory.LittleEndian)
	test.DemandImplements[cpu.CPU](t, m.cpu)

	test.ExpectEquality(t, m.cpu.PC(), uint32(mips.ResetVector))
	bev, ok := m.cpu.Flag("BEV")
	test.ExpectSuccess(t, ok)
	test.ExpectSuccess(t, bev)
}

func TestArithmetic(t *testing.T) {
	m := newMachine(t, memory.LittleEndian,
		lui(t0, 0x1234),
		ori(t0, t0, 0x5678),
		addiu(t1, zero, 0xffff),
		special(0x21, t0, t1, t2, 0), // addu t2, t0, t1
		special(0x2b, t1, t0, t3, 0), // sltu t3, t1, t0
		special(0x2a, t1, t0, t3, 0), // slt t3, t1, t0
		special(0x03, 0, t1, t3, 4),  // sra t3, t1, 4
		special(0x02, 0, t1, t3, 4),  // srl t3, t1, 4
	)

	m.step(t, 2)
	test.ExpectEquality(t, m.reg("t0"), uint32(0x12345678))

	m.step(t, 1)
	test.ExpectEquality(t, m.reg("t1"), uint32(0xffffffff))

	m.step(t, 1)
	test.ExpectEquality(t, m.reg("t2"), uint32(0x12345677))

	m.step(t, 1)
	test.ExpectEquality(t, m.reg("t3"), uint32(0))

	m.step(t, 1)
	test.ExpectEquality(t, m.reg("t3"), uint32(1))

	m.step(t, 1)
	test.ExpectEquality(t, m.reg("t3"), uint32(0xffffffff))

	m.step(t, 1)
	test.ExpectEquality(t, m.reg("t3"), uint32(0x0fffffff))
}

func TestZeroRegister(t *testing.T) {
	m := newMachine(t, memory.LittleEndian, addiu(zero, zero, 5))
	m.step(t, 1)
	test.ExpectEquality(t, m.reg("zero"), uint32(0))

	test.ExpectSuccess(t, m.cpu.SetRegister("$0", 10))
	test.ExpectEquality(t, m.reg("r0"), uint32(0))

	test.ExpectSuccess(t, m.cpu.SetRegister("sp", 0x801ffff0))
	test.ExpectEquality(t, m.reg("$29"), uint32(0x801ffff0))
	test.ExpectEquality(t, m.reg("r29"), uint32(0x801ffff0))

	_, ok := m.cpu.Register("r32")
	test.ExpectFailure(t, ok)
}

func TestDelaySlot(t *testing.T) {
	m := newMachine(t, memory.LittleEndian,
		jtype(0x03, 0xbfc00100), // jal 0xbfc00100
		addiu(t0, zero, 1),      // delay slot
		addiu(t0, zero, 2),      // skipped
	)
	m.load(m.bios, 0x100, addiu(t1, zero, 3))

	m.step(t, 1)
	test.ExpectSuccess(t, m.cpu.LastResult().BranchTaken)
	test.ExpectEquality(t, m.cpu.LastResult().Mnemonic, "JAL")
	test.ExpectEquality(t, m.cpu.PC(), uint32(0xbfc00004))
	test.ExpectEquality(t, m.reg("ra"), uint32(0xbfc00008))

	m.step(t, 1)
	test.ExpectEquality(t, m.reg("t0"), uint32(1))
	test.ExpectEquality(t, m.cpu.PC(), uint32(0xbfc00100))

	m.step(t, 1)
	test.ExpectEquality(t, m.reg("t0"), uint32(1))
	test.ExpectEquality(t, m.reg("t1"), uint32(3))
	test.ExpectEquality(t, m.cpu.PC(), uint32(0xbfc00104))
}

func TestBranchNotTaken(t *testing.T) {
	m := newMachine(t, memory.LittleEndian,
		addiu(t0, zero, 1),
		itype(0x04, t0, zero, 0x10), // beq t0, zero, +0x10
		addiu(t1, zero, 1),
		addiu(t2, zero, 1),
	)
	m.step(t, 2)
	test.ExpectFailure(t, m.cpu.LastResult().BranchTaken)
	m.step(t, 2)
	test.ExpectEquality(t, m.reg("t1"), uint32(1))
	test.ExpectEquality(t, m.reg("t2"), uint32(1))
}

func TestOverflow(t *testing.T) {
	m := newMachine(t, memory.LittleEndian,
		lui(t0, 0x7fff),
		ori(t0, t0, 0xffff),
		addi(t1, t0, 1),
	)
	m.step(t, 3)

	r := m.cpu.LastResult()
	test.ExpectEquality(t, r.Mnemonic, "ADDI")
	test.ExpectEquality(t, r.Interrupt, "Ov")
	test.ExpectEquality(t, m.reg("t1"), uint32(0))
	test.ExpectEquality(t, m.reg("EPC"), uint32(0xbfc00008))
	test.ExpectEquality(t, m.reg("Cause")>>2&0x1f, uint32(12))
	test.ExpectEquality(t, m.cpu.PC(), uint32(mips.BootstrapVector))

	// ADDIU does not trap
	m = newMachine(t, memory.LittleEndian,
		lui(t0, 0x7fff),
		ori(t0, t0, 0xffff),
		addiu(t1, t0, 1),
	)
	m.step(t, 3)
	test.ExpectEquality(t, m.reg("t1"), uint32(0x80000000))
	test.ExpectEquality(t, m.cpu.LastResult().Interrupt, "")
}

func TestExceptionInDelaySlot(t *testing.T) {
	m := newMachine(t, memory.LittleEndian,
		nop,
		itype(0x04, zero, zero, 0x10), // beq zero, zero, +0x10
		syscall,
	)
	m.step(t, 3)

	test.ExpectEquality(t, m.cpu.LastResult().Interrupt, "Sys")
	test.ExpectEquality(t, m.reg("EPC"), uint32(0xbfc00004))
	bd, _ := m.cpu.Flag("BD")
	test.ExpectSuccess(t, bd)
	test.ExpectEquality(t, m.cpu.PC(), uint32(mips.BootstrapVector))
}

func TestReservedInstruction(t *testing.T) {
	m := newMachine(t, memory.LittleEndian, 0xfc000000)

	// exceptions go to the general vector when BEV is clear
	test.ExpectSuccess(t, m.cpu.SetFlag("BEV", false))

	_, err := m.cpu.Step()
	test.ExpectSuccess(t, err)

	r := m.cpu.LastResult()
	test.ExpectSuccess(t, r.Undefined)
	test.ExpectEquality(t, r.Interrupt, "RI")
	test.ExpectEquality(t, m.reg("Cause")>>2&0x1f, uint32(10))
	test.ExpectEquality(t, m.cpu.PC(), uint32(mips.GeneralVector))
}

func TestRFE(t *testing.T) {
	m := newMachine(t, memory.LittleEndian, syscall)
	m.cpu.SetRegister("SR", 0x00400001)
	m.load(m.bios, 0x180, rfe)

	m.step(t, 1)
	test.ExpectEquality(t, m.reg("SR")&0x3f, uint32(0x04))

	m.step(t, 1)
	test.ExpectEquality(t, m.cpu.LastResult().Mnemonic, "RFE")
	test.ExpectEquality(t, m.reg("SR")&0x3f, uint32(0x01))
}

func TestLoadStore(t *testing.T) {
	m := newMachine(t, memory.LittleEndian,
		lui(t0, 0x8000),
		lui(t1, 0xdead),
		ori(t1, t1, 0xbeef),
		sw(t1, t0, 0x100),
		lw(t2, t0, 0x100),
		itype(0x20, t0, t3, 0x100), // lb t3, 0x100(t0)
		itype(0x25, t0, t3, 0x102), // lhu t3, 0x102(t0)
		itype(0x28, t1, t0, 0x0),   // sb t0, 0(t1)
	)
	m.step(t, 4)

	// kseg0 is translated to physical address zero
	test.ExpectEquality(t, m.ram.Peek(0x100), uint8(0xef))
	test.ExpectEquality(t, m.ram.Peek(0x103), uint8(0xde))

	m.step(t, 1)
	test.ExpectEquality(t, m.reg("t2"), uint32(0xdeadbeef))

	m.step(t, 1)
	test.ExpectEquality(t, m.reg("t3"), uint32(0xffffffef))

	m.step(t, 1)
	test.ExpectEquality(t, m.reg("t3"), uint32(0xdead))
}

func TestAddressError(t *testing.T) {
	m := newMachine(t, memory.LittleEndian,
		lui(t0, 0x8000),
		lw(t1, t0, 0x102),
	)
	m.step(t, 2)
	test.ExpectEquality(t, m.cpu.LastResult().Interrupt, "AdEL")
	test.ExpectEquality(t, m.reg("BadVAddr"), uint32(0x80000102))

	m = newMachine(t, memory.LittleEndian,
		lui(t0, 0x8000),
		sw(t1, t0, 0x101),
	)
	m.step(t, 2)
	test.ExpectEquality(t, m.cpu.LastResult().Interrupt, "AdES")
	test.ExpectEquality(t, m.reg("BadVAddr"), uint32(0x80000101))
}

func TestUnalignedWord(t *testing.T) {
	m := newMachine(t, memory.LittleEndian,
		itype(0x26, zero, t0, 0x201), // lwr t0, 0x201(zero)
		itype(0x22, zero, t0, 0x204), // lwl t0, 0x204(zero)
		lui(t1, 0xaabb),
		ori(t1, t1, 0xccdd),
		itype(0x2e, zero, t1, 0x301), // swr t1, 0x301(zero)
		itype(0x2a, zero, t1, 0x304), // swl t1, 0x304(zero)
	)
	m.ram.Load(0x200, []uint8{0x00, 0x11, 0x22, 0x33, 0x44, 0x55, 0x66, 0x77})
	m.ram.Load(0x300, []uint8{0x99, 0x99, 0x99, 0x99, 0x99, 0x99, 0x99, 0x99})

	m.step(t, 2)
	test.ExpectEquality(t, m.reg("t0"), uint32(0x44332211))

	m.step(t, 4)
	b, _ := m.bus.PeekRange(0x300, 6)
	test.ExpectEquality(t, b[0], uint8(0x99))
	test.ExpectEquality(t, b[1], uint8(0xdd))
	test.ExpectEquality(t, b[2], uint8(0xcc))
	test.ExpectEquality(t, b[3], uint8(0xbb))
	test.ExpectEquality(t, b[4], uint8(0xaa))
	test.ExpectEquality(t, b[5], uint8(0x99))
}

func TestUnalignedWordBigEndian(t *testing.T) {
	m := newMachine(t, memory.BigEndian,
		itype(0x22, zero, t0, 0x201), // lwl t0, 0x201(zero)
		itype(0x26, zero, t0, 0x204), // lwr t0, 0x204(zero)
	)
	m.ram.Load(0x200, []uint8{0x00, 0x11, 0x22, 0x33, 0x44, 0x55, 0x66, 0x77})

	m.step(t, 2)
	test.ExpectEquality(t, m.reg("t0"), uint32(0x11223344))
}

func TestMultiplyDivide(t *testing.T) {
	m := newMachine(t, memory.LittleEndian,
		addiu(t0, zero, 0xfffd), // -3
		addiu(t1, zero, 7),
		special(0x18, t0, t1, 0, 0),   // mult t0, t1
		special(0x12, 0, 0, t2, 0),    // mflo t2
		special(0x10, 0, 0, t3, 0),    // mfhi t3
		special(0x1a, t1, t0, 0, 0),   // div t1, t0
		special(0x12, 0, 0, t2, 0),    // mflo t2
		special(0x10, 0, 0, t3, 0),    // mfhi t3
		special(0x1a, t1, zero, 0, 0), // div t1, zero
		special(0x12, 0, 0, t2, 0),    // mflo t2
	)
	m.step(t, 5)
	test.ExpectEquality(t, m.reg("t2"), uint32(0xffffffeb))
	test.ExpectEquality(t, m.reg("t3"), uint32(0xffffffff))

	m.step(t, 3)
	test.ExpectEquality(t, m.reg("t2"), uint32(0xfffffffe))
	test.ExpectEquality(t, m.reg("t3"), uint32(1))

	m.step(t, 2)
	test.ExpectEquality(t, m.reg("t2"), uint32(0xffffffff))
	test.ExpectEquality(t, m.reg("HI"), uint32(7))
}

func TestInterrupt(t *testing.T) {
	m := newMachine(t, memory.LittleEndian, nop, nop)

	// interrupts enabled with hardware interrupt 0 unmasked
	m.cpu.SetRegister("SR", 0x0401)

	m.step(t, 1)
	test.ExpectEquality(t, m.cpu.PC(), uint32(0xbfc00004))

	m.lines.RaiseIRQ(0)
	m.step(t, 1)
	r := m.cpu.LastResult()
	test.ExpectEquality(t, r.Mnemonic, "Int")
	test.ExpectEquality(t, r.Interrupt, "Int")
	test.ExpectEquality(t, m.reg("EPC"), uint32(0xbfc00004))
	test.ExpectEquality(t, m.reg("Cause")&0x0400, uint32(0x0400))
	test.ExpectEquality(t, m.cpu.PC(), uint32(mips.GeneralVector))

	// interrupts are disabled on entry to the handler
	ie, _ := m.cpu.Flag("IEc")
	test.ExpectFailure(t, ie)
}

func TestInterruptMasked(t *testing.T) {
	m := newMachine(t, memory.LittleEndian, nop, nop)
	m.cpu.SetRegister("SR", 0x0001)
	m.lines.RaiseIRQ(0)
	m.step(t, 2)
	test.ExpectEquality(t, m.cpu.PC(), uint32(0xbfc00008))
}

func TestIsolatedCache(t *testing.T) {
	m := newMachine(t, memory.LittleEndian,
		lui(t0, 0x0001),       // IsC
		mtc0(t0, 12),          // mtc0 t0, SR
		addiu(t1, zero, 0x55), // li t1, 0x55
		sw(t1, zero, 0x40),
	)
	m.step(t, 4)
	test.ExpectEquality(t, m.ram.Peek(0x40), uint8(0))
}

func TestDeterminism(t *testing.T) {
	m := newMachine(t, memory.LittleEndian,
		addiu(t0, t0, 3),
		special(0x21, t0, t1, t1, 0), // addu t1, t0, t1
		sw(t1, zero, 0x80),
		jtype(0x02, 0xbfc00000),
		nop,
	)
	m.step(t, 13)

	enc := savestate.NewEncoder()
	enc.Snapshot(1, m.cpu)
	enc.Snapshot(2, m.bus)

	run := func() []uint32 {
		r := make([]uint32, 40)
		for i := range r {
			m.step(t, 1)
			r[i] = m.cpu.PC() ^ m.reg("t1")
		}
		return r
	}
	first := run()

	dec, err := savestate.NewDecoder(enc.Data())
	test.DemandSuccess(t, err)
	test.DemandSuccess(t, dec.Restore(1, m.cpu))
	test.DemandSuccess(t, dec.Restore(2, m.bus))

	second := run()
	for i := range first {
		test.ExpectEquality(t, second[i], first[i], i)
	}
}
