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

// NESOrder is the order in which the buttons of a NES controller are shifted
// out.
var NESOrder = []Button{A, B, Select, Start, Up, Down, Left, Right}

// SNESOrder is the order in which the buttons of a SNES controller are
// shifted out. The last four bits are always zero.
var SNESOrder = []Button{B, Y, Select, Start, Up, Down, Left, Right, A, X, L, R, 0, 0, 0, 0}

// ShiftPort is a controller read serially after a strobe.
//
// While the strobe is high the port continuously latches the buttons and a
// read returns the state of the first button. When the strobe falls the
// latched buttons are shifted out one bit per read. Once every bit has been
// read the port returns 1.
type ShiftPort struct {
	order []Button

	current Snapshot
	strobe  bool
	latched uint32
	shifted int
}

// NewShiftPort is the preferred method of initialisation for the ShiftPort
// type.
func NewShiftPort(order []Button) *ShiftPort {
	return &ShiftPort{order: order}
}

// Set the state of the controller.
func (p *ShiftPort) Set(s Snapshot) {
	p.current = s
	if p.strobe {
		p.latch()
	}
}

// Snapshot returns the state of the controller.
func (p *ShiftPort) Snapshot() Snapshot {
	return p.current
}

func (p *ShiftPort) latch() {
	p.latched = 0
	for i, b := range p.order {
		if b != 0 && p.current.Pressed(b) {
			p.latched |= 1 << i
		}
	}
	p.shifted = 0
}

// Strobe sets the level of the strobe line.
func (p *ShiftPort) Strobe(level bool) {
	if level || p.strobe {
		p.latch()
	}
	p.strobe = level
}

// Read returns the next bit in bit zero.
func (p *ShiftPort) Read() uint8 {
	if p.strobe {
		p.latch()
		return uint8(p.latched & 0x01)
	}
	if p.shifted >= len(p.order) {
		return 1
	}
	v := uint8((p.latched >> p.shifted) & 0x01)
	p.shifted++
	return v
}

// Peek returns the next bit without shifting.
func (p *ShiftPort) Peek() uint8 {
	if p.shifted >= len(p.order) {
		return 1
	}
	return uint8((p.latched >> p.shifted) & 0x01)
}

// Word returns every button in the order of the port as a single value. The
// first button in the order is the most significant bit. This is the value
// read by the SNES auto-read registers.
func (p *ShiftPort) Word() uint16 {
	var w uint16
	for i, b := range p.order {
		if i >= 16 {
			break
		}
		w <<= 1
		if b != 0 && p.current.Pressed(b) {
			w |= 1
		}
	}
	return w << (16 - min(len(p.order), 16))
}

// Reset the port. The controller state is kept.
func (p *ShiftPort) Reset() {
	p.strobe = false
	p.latched = 0
	p.shifted = 0
}

// SaveState implements the savestate.Snapshotter interface.
func (p *ShiftPort) SaveState(enc *savestate.Encoder) {
	enc.Uint(1, uint64(p.current.Buttons))
	enc.Bool(2, p.strobe)
	enc.Uint(3, uint64(p.latched))
	enc.Uint(4, uint64(p.shifted))
}

// RestoreState implements the savestate.Snapshotter interface.
func (p *ShiftPort) RestoreState(dec *savestate.Decoder) error {
	p.current.Buttons = Button(dec.Uint(1))
	p.strobe = dec.Bool(2)
	p.latched = uint32(dec.Uint(3))
	p.shifted = int(dec.Uint(4))
	return nil
}
