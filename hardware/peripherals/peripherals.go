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

// Package peripherals defines the Stepper interface implemented by every
// peripheral that advances in time with the CPU.
//
// A peripheral never calls into the CPU. It communicates through its memory
// mapped registers and the interrupt lines. The platform converts the cycles
// consumed by the CPU into ticks of each peripheral using a
// clocks.Accumulator.
//
// The packages video, audio and input contain the generic peripherals used
// by every platform.
package peripherals

import (
	"github.com/emulite/emulite/hardware/clocks"
	"github.com/emulite/emulite/savestate"
)

// Stepper is implemented by every peripheral driven by the CPU clock.
type Stepper interface {
	Label() string

	// the number of CPU cycles per tick
	Ratio() clocks.Ratio

	// Tick advances the peripheral by one unit of its own time. For example,
	// one scanline or one audio sample
	Tick() error

	Reset()

	savestate.Snapshotter
}
