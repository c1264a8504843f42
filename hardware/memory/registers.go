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

package memory

import (
	"github.com/emulite/emulite/savestate"
)

// RegisterHandler is implemented by peripherals with memory mapped registers.
// The register number is the offset into the register block.
type RegisterHandler interface {
	ReadRegister(reg uint32) uint8
	WriteRegister(reg uint32, data uint8)
	PeekRegister(reg uint32) uint8
}

// Registers is a block of memory mapped registers. The state of the
// registers belongs to the handler and is saved by it, not by the device.
//
// Offsets beyond the size of the block wrap around.
type Registers struct {
	label   string
	size    uint32
	handler RegisterHandler
}

// NewRegisters is the preferred method of initialisation for the Registers
// type.
func NewRegisters(label string, size uint32, handler RegisterHandler) *Registers {
	if size == 0 {
		size = 1
	}
	return &Registers{
		label:   label,
		size:    size,
		handler: handler,
	}
}

// Label implements the Device interface.
func (r *Registers) Label() string {
	return r.label
}

// Read implements the Device interface.
func (r *Registers) Read(offset uint32) (uint8, error) {
	return r.handler.ReadRegister(offset % r.size), nil
}

// Write implements the Device interface.
func (r *Registers) Write(offset uint32, data uint8) error {
	r.handler.WriteRegister(offset%r.size, data)
	return nil
}

// Peek implements the Device interface.
func (r *Registers) Peek(offset uint32) uint8 {
	return r.handler.PeekRegister(offset % r.size)
}

// Reset implements the Device interface. The handler is reset by its owner.
func (r *Registers) Reset() {
}

// SaveState implements the savestate.Snapshotter interface.
func (r *Registers) SaveState(_ *savestate.Encoder) {
}

// RestoreState implements the savestate.Snapshotter interface.
func (r *Registers) RestoreState(_ *savestate.Decoder) error {
	return nil
}
