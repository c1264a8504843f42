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

package input

import (
	"github.com/emulite/emulite/savestate"
)

// ParallelPort presents every button of a controller as the bits of a
// register.
type ParallelPort struct {
	// the bit used by each button
	bits map[Button]uint

	// pressed buttons read as zero
	activeLow bool

	current Snapshot
}

// NewParallelPort is the preferred method of initialisation for the
// ParallelPort type.
func NewParallelPort(bits map[Button]uint, activeLow bool) *ParallelPort {
	return &ParallelPort{
		bits:      bits,
		activeLow: activeLow,
	}
}

// Set the state of the controller.
func (p *ParallelPort) Set(s Snapshot) {
	p.current = s
}

// Snapshot returns the state of the controller.
func (p *ParallelPort) Snapshot() Snapshot {
	return p.current
}

// Read returns the register value. Bits not used by any button read as
// released.
func (p *ParallelPort) Read() uint32 {
	var v uint32
	for b, bit := range p.bits {
		if p.current.Pressed(b) {
			v |= 1 << bit
		}
	}
	if p.activeLow {
		return ^v
	}
	return v
}

// Reset releases every button.
func (p *ParallelPort) Reset() {
	p.current = Snapshot{}
}

// SaveState implements the savestate.Snapshotter interface.
func (p *ParallelPort) SaveState(enc *savestate.Encoder) {
	enc.Uint(1, uint64(p.current.Buttons))
}

// RestoreState implements the savestate.Snapshotter interface.
func (p *ParallelPort) RestoreState(dec *savestate.Decoder) error {
	p.current.Buttons = Button(dec.Uint(1))
	return nil
}
