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

package memory_test

import (
	"testing"

	"github.com/emulite/emulite/hardware/memory"
	"github.com/emulite/emulite/test"
)

type wordLog struct {
	regs   [4]uint32
	writes []uint32
	reads  int
}

func (w *wordLog) ReadWord(reg uint32) uint32 {
	w.reads++
	return w.regs[reg]
}

func (w *wordLog) WriteWord(reg uint32, value uint32) {
	w.regs[reg] = value
	w.writes = append(w.writes, value)
}

func (w *wordLog) PeekWord(reg uint32) uint32 {
	return w.regs[reg]
}

func TestWordRegisters(t *testing.T) {
	for _, order := range []memory.ByteOrder{memory.LittleEndian, memory.BigEndian} {
		h := &wordLog{}
		bus := memory.NewBus("test", 16, order, memory.OpenBusConstant(0))
		test.DemandSuccess(t, bus.Attach(0x1000, 0x100f, memory.NewWordRegisters("regs", 4, 4, order, h)))

		// a full width write is passed to the handler once
		test.ExpectSuccess(t, bus.Write(0x1004, 4, 0x12345678))
		test.ExpectEquality(t, len(h.writes), 1, order)
		test.ExpectEquality(t, h.regs[1], uint32(0x12345678), order)

		// a full width read calls the handler once
		v, err := bus.Read(0x1004, 4)
		test.ExpectSuccess(t, err)
		test.ExpectEquality(t, v, uint32(0x12345678), order)
		test.ExpectEquality(t, h.reads, 1, order)

		// peeking has no side effect
		_, err = bus.PeekRange(0x1004, 4)
		test.ExpectSuccess(t, err)
		test.ExpectEquality(t, h.reads, 1, order)
	}
}

func TestHalfWordRegisters(t *testing.T) {
	h := &wordLog{}
	bus := memory.NewBus("test", 16, memory.LittleEndian, memory.OpenBusConstant(0))
	test.DemandSuccess(t, bus.Attach(0x1000, 0x1007, memory.NewWordRegisters("regs", 4, 2, memory.LittleEndian, h)))

	// a 32 bit write covers two registers
	test.ExpectSuccess(t, bus.Write(0x1000, 4, 0xaaaa5555))
	test.ExpectEquality(t, h.regs[0], uint32(0x5555))
	test.ExpectEquality(t, h.regs[1], uint32(0xaaaa))

	// a single byte write to the low byte is held
	test.ExpectSuccess(t, bus.Write8(0x1004, 0x01))
	test.ExpectEquality(t, len(h.writes), 2)
	test.ExpectSuccess(t, bus.Write8(0x1005, 0x02))
	test.ExpectEquality(t, h.regs[2], uint32(0x0201))
}
