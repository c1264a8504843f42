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

// Package clocks defines the timing relationship between a CPU and the
// peripherals it drives.
//
// A peripheral runs at a rational number of CPU cycles per tick. For example,
// the NES PPU draws one scanline every 341/3 CPU cycles. The Accumulator type
// converts CPU cycles into ticks without ever truncating the remainder, so
// that the ratio holds exactly over any number of steps.
package clocks

import (
	"fmt"

	"github.com/emulite/emulite/curated"
	"github.com/emulite/emulite/savestate"
)

// CPU clock speeds, in MHz.
const (
	NTSC      = 1.193182
	NES       = 1.789773
	SNES      = 3.579545
	PSX       = 33.8688
	EmotionEE = 294.912

	// the PS3 is timed by the time base of the Cell rather than by the
	// processor clock
	CellTimebase = 79.8
)

// Ratio is the number of CPU cycles per peripheral tick, expressed as the
// fraction Cycles/Per.
type Ratio struct {
	Cycles int
	Per    int
}

// Whole returns a ratio of n CPU cycles per tick.
func Whole(n int) Ratio {
	return Ratio{Cycles: n, Per: 1}
}

func (r Ratio) String() string {
	if r.Per == 1 {
		return fmt.Sprintf("%d", r.Cycles)
	}
	return fmt.Sprintf("%d/%d", r.Cycles, r.Per)
}

// Valid returns false if the ratio would never produce a tick.
func (r Ratio) Valid() bool {
	return r.Cycles > 0 && r.Per > 0
}

// Accumulator counts CPU cycles towards the next tick of a peripheral.
//
// The count is kept in units of 1/Per CPU cycles. Adding n CPU cycles adds
// n*Per units and every Cycles units is one tick.
type Accumulator struct {
	ratio Ratio
	units int
}

// NewAccumulator is the preferred method of initialisation for the
// Accumulator type. An invalid ratio is treated as one tick per cycle.
func NewAccumulator(ratio Ratio) *Accumulator {
	if !ratio.Valid() {
		ratio = Whole(1)
	}
	return &Accumulator{ratio: ratio}
}

// Ratio returns the ratio of the accumulator.
func (acc *Accumulator) Ratio() Ratio {
	return acc.ratio
}

// Add CPU cycles to the accumulator. Returns the number of ticks completed.
// The remainder is carried to the next call.
func (acc *Accumulator) Add(cycles int) int {
	if cycles <= 0 {
		return 0
	}
	acc.units += cycles * acc.ratio.Per
	ticks := acc.units / acc.ratio.Cycles
	acc.units -= ticks * acc.ratio.Cycles
	return ticks
}

// UntilTick returns the number of whole CPU cycles that must be added for the
// next tick to complete. It is never less than one.
func (acc *Accumulator) UntilTick() int {
	need := acc.ratio.Cycles - acc.units
	n := (need + acc.ratio.Per - 1) / acc.ratio.Per
	if n < 1 {
		n = 1
	}
	return n
}

// Remainder returns the accumulated count in units of 1/Per CPU cycles.
func (acc *Accumulator) Remainder() int {
	return acc.units
}

// Reset clears the accumulated count.
func (acc *Accumulator) Reset() {
	acc.units = 0
}

func (acc *Accumulator) String() string {
	return fmt.Sprintf("%d/%d of %s", acc.units, acc.ratio.Per, acc.ratio)
}

// SaveState implements the savestate.Snapshotter interface.
func (acc *Accumulator) SaveState(enc *savestate.Encoder) {
	enc.Uint(1, uint64(acc.units))
}

// RestoreState implements the savestate.Snapshotter interface.
func (acc *Accumulator) RestoreState(dec *savestate.Decoder) error {
	acc.units = int(dec.Uint(1))
	if acc.units < 0 || acc.units >= acc.ratio.Cycles {
		acc.units = 0
		return curated.Errorf("clocks: %v: accumulator remainder out of range", savestate.CorruptError)
	}
	return nil
}
