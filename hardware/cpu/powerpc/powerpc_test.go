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

package powerpc_test

import (
	"testing"

	"github.com/emulite/emulite/hardware/cpu"
	"github.com/emulite/emulite/hardware/cpu/powerpc"
	"github.com/emulite/emulite/hardware/interrupt"
	"github.com/emulite/emulite/hardware/memory"
	"github.com/emulite/emulite/hardware/memory/cartridge"
	"github.com/emulite/emulite/savestate"
	"github.com/emulite/emulite/test"
)

func dform(op, rd, ra, imm uint32) uint32 {
	return op<<26 | rd<<21 | ra<<16 | imm&0xffff
}

func xform(rd, ra, rb, xo uint32, rc bool) uint32 {
	w := 31<<26 | rd<<21 | ra<<16 | rb<<11 | xo<<1
	if rc {
		w |= 1
	}
	return w
}

func li(rd, imm uint32) uint32       { return dform(14, rd, 0, imm) }
func addi(rd, ra, imm uint32) uint32 { return dform(14, rd, ra, imm) }
func lis(rd, imm uint32) uint32      { return dform(15, rd, 0, imm) }
func ori(ra, rs, imm uint32) uint32  { return dform(24, rs, ra, imm) }
func cmpwi(ra, imm uint32) uint32    { return dform(11, 0, ra, imm) }
func stw(rs, ra, d uint32) uint32    { return dform(36, rs, ra, d) }
func lwz(rd, ra, d uint32) uint32    { return dform(32, rd, ra, d) }
func stwu(rs, ra, d uint32) uint32   { return dform(37, rs, ra, d) }

func b(offset int32, link bool) uint32 {
	w := 18<<26 | uint32(offset)&0x03fffffc
	if link {
		w |= 1
	}
	return w
}

// bc with BO and BI fields
func bc(bo, bi uint32, offset int32) uint32 {
	return 16<<26 | bo<<21 | bi<<16 | uint32(offset)&0xfffc
}

const (
	blr  = 0x4e800020
	bctr = 0x4e800420
	sc   = 0x44000002
	rfi  = 0x4c000064
	nop  = 0x60000000
)

type machine struct {
	cpu   *powerpc.CPU
	bus   *memory.Bus
	ram   *memory.RAM
	lines *interrupt.Lines
}

func newMachine(t *testing.T, program ...uint32) *machine {
	t.Helper()

	m := &machine{lines: &interrupt.Lines{}}
	m.bus = memory.NewBus("test", 32, memory.BigEndian, memory.OpenBusConstant(0))
	m.ram = memory.NewRAM("RAM", 0x10000)
	test.DemandSuccess(t, m.bus.Attach(0, 0xffff, m.ram))

	m.load(powerpc.ResetVector, program...)

	m.cpu = powerpc.NewCPU(m.bus, m.lines)
	test.DemandSuccess(t, m.cpu.Reset())
	return m
}

func (m *machine) load(address uint32, words ...uint32) {
	for i, w := range words {
		m.ram.Load(address+uint32(i*4), memory.Split(memory.BigEndian, w, 4))
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

func (m *machine) flag(name string) bool {
	v, _ := m.cpu.Flag(name)
	return v
}

func TestReset(t *testing.T) {
	m := newMachine(t)
	test.DemandImplements[cpu.CPU](t, m.cpu)
	test.ExpectEquality(t, m.cpu.PC(), uint32(0x100))
	test.ExpectEquality(t, m.cpu.Label(), "PowerPC")
}

func TestTrampoline(t *testing.T) {
	m := newMachine(t)
	m.ram.Load(powerpc.ResetVector, cartridge.Trampoline(0x00002000))
	m.load(0x2000, li(3, 42))

	m.step(t, 4)
	test.ExpectEquality(t, m.reg("CTR"), uint32(0x2000))
	test.ExpectEquality(t, m.reg("r12"), uint32(0x2000))
	test.ExpectEquality(t, m.cpu.LastResult().Mnemonic, "bctr")
	test.ExpectSuccess(t, m.cpu.LastResult().BranchTaken)
	test.ExpectEquality(t, m.cpu.PC(), uint32(0x2000))

	m.step(t, 1)
	test.ExpectEquality(t, m.reg("r3"), uint32(42))
}

func TestArithmetic(t *testing.T) {
	m := newMachine(t,
		lis(3, 0x1234),
		ori(3, 3, 0x5678),
		li(4, 0xffff),              // li r4, -1
		xform(5, 3, 4, 266, false), // add r5, r3, r4
		xform(6, 4, 3, 40, true),   // subf. r6, r4, r3
		xform(7, 4, 4, 10, false),  // addc r7, r4, r4
		xform(3, 8, 0, 954, false), // extsb r8, r3
	)

	m.step(t, 2)
	test.ExpectEquality(t, m.reg("r3"), uint32(0x12345678))

	m.step(t, 1)
	test.ExpectEquality(t, m.reg("r4"), uint32(0xffffffff))

	m.step(t, 1)
	test.ExpectEquality(t, m.reg("r5"), uint32(0x12345677))

	// r6 = r3 - r4
	m.step(t, 1)
	test.ExpectEquality(t, m.reg("r6"), uint32(0x12345679))
	test.ExpectSuccess(t, m.flag("GT"))
	test.ExpectFailure(t, m.flag("EQ"))

	m.step(t, 1)
	test.ExpectEquality(t, m.reg("r7"), uint32(0xfffffffe))
	test.ExpectSuccess(t, m.flag("CA"))

	m.step(t, 1)
	test.ExpectEquality(t, m.reg("r8"), uint32(0x78))
}

func TestOverflow(t *testing.T) {
	m := newMachine(t,
		lis(3, 0x7fff),
		ori(3, 3, 0xffff),
		li(4, 1),
		xform(5, 3, 4, 266|0x200, true), // addo. r5, r3, r4
	)
	m.step(t, 4)
	test.ExpectEquality(t, m.cpu.LastResult().Mnemonic, "addo.")
	test.ExpectEquality(t, m.reg("r5"), uint32(0x80000000))
	test.ExpectSuccess(t, m.flag("OV"))
	test.ExpectSuccess(t, m.flag("LT"))
	test.ExpectSuccess(t, m.flag("SO"))
}

func TestRotate(t *testing.T) {
	m := newMachine(t,
		lis(3, 0x1234),
		ori(3, 3, 0x5678),
		21<<26|3<<21|4<<16|8<<11|24<<6|31<<1, // rlwinm r4, r3, 8, 24, 31
		21<<26|3<<21|5<<16|0<<11|16<<6|15<<1, // rlwinm r5, r3, 0, 16, 15
		xform(3, 6, 0, 26, false),            // cntlzw r6, r3
	)
	m.step(t, 3)
	test.ExpectEquality(t, m.reg("r4"), uint32(0x12))

	// a mask that wraps around selects every bit
	m.step(t, 1)
	test.ExpectEquality(t, m.reg("r5"), uint32(0x12345678))

	m.step(t, 1)
	test.ExpectEquality(t, m.reg("r6"), uint32(3))
}

func TestLoadStore(t *testing.T) {
	m := newMachine(t,
		lis(3, 0xdead),
		ori(3, 3, 0xbeef),
		li(4, 0x1000),
		stw(3, 4, 8),
		lwz(5, 4, 8),
		dform(34, 6, 4, 9),  // lbz r6, 9(r4)
		dform(42, 7, 4, 10), // lha r7, 10(r4)
		stwu(3, 4, 0x20),
	)
	m.step(t, 4)

	// big endian
	test.ExpectEquality(t, m.ram.Peek(0x1008), uint8(0xde))
	test.ExpectEquality(t, m.ram.Peek(0x100b), uint8(0xef))

	m.step(t, 1)
	test.ExpectEquality(t, m.reg("r5"), uint32(0xdeadbeef))

	m.step(t, 1)
	test.ExpectEquality(t, m.reg("r6"), uint32(0xad))

	m.step(t, 1)
	test.ExpectEquality(t, m.reg("r7"), uint32(0xffffbeef))

	m.step(t, 1)
	test.ExpectEquality(t, m.reg("r4"), uint32(0x1020))
	test.ExpectEquality(t, m.ram.Peek(0x1020), uint8(0xde))
}

func TestBranches(t *testing.T) {
	m := newMachine(t,
		li(3, 3),
		li(4, 0),
		addi(4, 4, 1),  // loop
		cmpwi(4, 3),    // cmpwi r4, 3
		bc(4, 2, -8),   // bne loop
		b(0x100, true), // bl 0x214
	)
	m.load(0x214, li(5, 7), blr)

	// two instructions and three iterations of the loop
	m.step(t, 2+9)
	test.ExpectEquality(t, m.reg("r4"), uint32(3))
	test.ExpectSuccess(t, m.flag("EQ"))
	test.ExpectFailure(t, m.cpu.LastResult().BranchTaken)
	test.ExpectEquality(t, m.cpu.PC(), uint32(0x114))

	m.step(t, 1)
	test.ExpectEquality(t, m.cpu.PC(), uint32(0x214))
	test.ExpectEquality(t, m.reg("LR"), uint32(0x118))

	m.step(t, 2)
	test.ExpectEquality(t, m.reg("r5"), uint32(7))
	test.ExpectEquality(t, m.cpu.PC(), uint32(0x118))
}

func TestCountLoop(t *testing.T) {
	m := newMachine(t,
		li(3, 5),
		xform(3, 9, 0, 467, false), // mtctr r3
		addi(4, 4, 2),
		bc(16, 0, -4), // bdnz
	)
	m.step(t, 2+10)
	test.ExpectEquality(t, m.reg("r4"), uint32(10))
	test.ExpectEquality(t, m.reg("CTR"), uint32(0))
	test.ExpectEquality(t, m.cpu.PC(), uint32(0x110))
}

func TestSyscall(t *testing.T) {
	m := newMachine(t, sc)
	m.load(powerpc.SyscallVector, rfi)
	m.cpu.SetFlag("EE", true)

	m.step(t, 1)
	test.ExpectEquality(t, m.cpu.LastResult().Interrupt, "Syscall")
	test.ExpectEquality(t, m.cpu.PC(), uint32(powerpc.SyscallVector))
	test.ExpectEquality(t, m.reg("SRR0"), uint32(0x104))
	test.ExpectFailure(t, m.flag("EE"))

	m.step(t, 1)
	test.ExpectEquality(t, m.cpu.PC(), uint32(0x104))
	test.ExpectSuccess(t, m.flag("EE"))
}

func TestIllegal(t *testing.T) {
	m := newMachine(t, 0x00000000)
	m.step(t, 1)

	r := m.cpu.LastResult()
	test.ExpectSuccess(t, r.Undefined)
	test.ExpectEquality(t, r.Interrupt, "Program")
	test.ExpectEquality(t, m.cpu.PC(), uint32(powerpc.ProgramVector))
	test.ExpectEquality(t, m.reg("SRR0"), uint32(0x100))
	test.ExpectEquality(t, m.reg("SRR1")&0x00080000, uint32(0x00080000))
}

func TestTrap(t *testing.T) {
	m := newMachine(t,
		li(3, 1),
		dform(3, 4, 3, 1), // tweqi r3, 1
	)
	m.step(t, 2)
	test.ExpectEquality(t, m.cpu.LastResult().Interrupt, "Program")
	test.ExpectEquality(t, m.reg("SRR1")&0x00020000, uint32(0x00020000))
}

func TestExternalInterrupt(t *testing.T) {
	m := newMachine(t, nop, nop)

	// masked until MSR[EE] is set
	m.lines.RaiseIRQ(0)
	m.step(t, 1)
	test.ExpectEquality(t, m.cpu.PC(), uint32(0x104))

	m.cpu.SetFlag("EE", true)
	m.step(t, 1)
	r := m.cpu.LastResult()
	test.ExpectEquality(t, r.Mnemonic, "External")
	test.ExpectEquality(t, m.cpu.PC(), uint32(powerpc.ExternalVector))
	test.ExpectEquality(t, m.reg("SRR0"), uint32(0x104))
	test.ExpectFailure(t, m.flag("EE"))
}

func TestProblemState(t *testing.T) {
	m := newMachine(t, xform(3, 0, 0, 83, false)) // mfmsr r3
	m.cpu.SetRegister("MSR", 0x4000)
	m.step(t, 1)
	test.ExpectEquality(t, m.cpu.LastResult().Interrupt, "Program")
	test.ExpectEquality(t, m.reg("SRR1")&0x00040000, uint32(0x00040000))
}

func TestDeterminism(t *testing.T) {
	m := newMachine(t,
		addi(3, 3, 7),
		xform(4, 3, 4, 266, false), // add r4, r3, r4
		stw(4, 0, 0x800),
		b(-12, false),
	)
	m.step(t, 21)

	enc := savestate.NewEncoder()
	enc.Snapshot(1, m.cpu)
	enc.Snapshot(2, m.bus)

	run := func() []uint32 {
		r := make([]uint32, 30)
		for i := range r {
			m.step(t, 1)
			r[i] = m.cpu.PC() ^ m.reg("r4")
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
