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
	"github.com/emulite/emulite/savestate"
	"github.com/emulite/emulite/test"
)

func TestSparseRAM(t *testing.T) {
	ram := memory.NewRAM("RAM", 256*1024*1024)
	test.ExpectEquality(t, ram.Pages(), 0)

	// writing zero to an untouched page allocates nothing
	test.ExpectSuccess(t, ram.Write(0x0fffffff, 0))
	test.ExpectEquality(t, ram.Pages(), 0)

	test.ExpectSuccess(t, ram.Write(0x0fffffff, 0x12))
	test.ExpectEquality(t, ram.Pages(), 1)
	test.ExpectEquality(t, ram.Peek(0x0fffffff), uint8(0x12))

	ram.Load(0x100, []uint8{1, 2, 3})
	v, err := ram.Read(0x102)
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, v, uint8(3))

	enc := savestate.NewEncoder()
	ram.SaveState(enc)

	other := memory.NewRAM("RAM", 256*1024*1024)
	dec, err := savestate.NewDecoder(enc.Data())
	test.DemandSuccess(t, err)
	test.DemandSuccess(t, other.RestoreState(dec))
	test.ExpectEquality(t, other.Pages(), 2)
	test.ExpectEquality(t, other.Peek(0x0fffffff), uint8(0x12))

	// size mismatch
	small := memory.NewRAM("RAM", 1024)
	dec, _ = savestate.NewDecoder(enc.Data())
	test.ExpectFailure(t, small.RestoreState(dec))
}

func TestRAMWrap(t *testing.T) {
	ram := memory.NewRAM("RIOT", 128)
	test.ExpectSuccess(t, ram.Write(0x80, 0x55))
	test.ExpectEquality(t, ram.Peek(0x00), uint8(0x55))
}
