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

package clocks_test

import (
	"errors"
	"testing"

	"github.com/emulite/emulite/hardware/clocks"
	"github.com/emulite/emulite/savestate"
	"github.com/emulite/emulite/test"
)

func TestWholeRatio(t *testing.T) {
	acc := clocks.NewAccumulator(clocks.Whole(76))
	test.ExpectEquality(t, acc.Add(75), 0)
	test.ExpectEquality(t, acc.Add(1), 1)
	test.ExpectEquality(t, acc.Add(76*3+10), 3)
	test.ExpectEquality(t, acc.Remainder(), 10)
	test.ExpectEquality(t, acc.UntilTick(), 66)
}

func TestFractionalRatio(t *testing.T) {
	// 341/3 CPU cycles per scanline. 262 lines is exactly 29780.67 cycles and
	// three frames is a whole number of cycles
	acc := clocks.NewAccumulator(clocks.Ratio{Cycles: 341, Per: 3})

	var ticks int
	for i := 0; i < 341*262; i++ {
		ticks += acc.Add(1)
	}
	test.ExpectEquality(t, ticks, 262*3)
	test.ExpectEquality(t, acc.Remainder(), 0)

	// remainder is carried and not truncated
	acc.Reset()
	ticks = 0
	for i := 0; i < 1000; i++ {
		ticks += acc.Add(7)
	}
	test.ExpectEquality(t, ticks, 7000*3/341)
	test.ExpectEquality(t, acc.Remainder(), 7000*3%341)
}

func TestUntilTick(t *testing.T) {
	acc := clocks.NewAccumulator(clocks.Ratio{Cycles: 341, Per: 3})
	test.ExpectEquality(t, acc.UntilTick(), 114)
	test.ExpectEquality(t, acc.Add(113), 0)
	test.ExpectEquality(t, acc.UntilTick(), 1)
	test.ExpectEquality(t, acc.Add(1), 1)
	test.ExpectEquality(t, acc.Remainder(), 1)
}

func TestInvalidRatio(t *testing.T) {
	acc := clocks.NewAccumulator(clocks.Ratio{})
	test.ExpectEquality(t, acc.Ratio(), clocks.Whole(1))
	test.ExpectEquality(t, acc.Add(5), 5)
	test.ExpectEquality(t, acc.Add(-1), 0)
}

func TestAccumulatorState(t *testing.T) {
	acc := clocks.NewAccumulator(clocks.Ratio{Cycles: 682, Per: 3})
	acc.Add(100)

	enc := savestate.NewEncoder()
	acc.SaveState(enc)
	dec, err := savestate.NewDecoder(enc.Data())
	test.DemandSuccess(t, err)

	other := clocks.NewAccumulator(clocks.Ratio{Cycles: 682, Per: 3})
	test.ExpectSuccess(t, other.RestoreState(dec))
	test.ExpectEquality(t, other.Remainder(), 300)

	// a remainder too large for the ratio
	small := clocks.NewAccumulator(clocks.Whole(10))
	dec, err = savestate.NewDecoder(enc.Data())
	test.DemandSuccess(t, err)
	err = small.RestoreState(dec)
	test.ExpectEquality(t, errors.Is(err, savestate.CorruptError), true)
}
