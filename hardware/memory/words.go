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

// WordHandler is implemented by peripherals with memory mapped registers
// wider than one byte. The register number is the byte offset divided by the
// register width.
type WordHandler interface {
	ReadWord(reg uint32) uint32
	WriteWord(reg uint32, value uint32)
	PeekWord(reg uint32) uint32
}

// WordRegisters is a block of 16 or 32 bit registers. The bus accesses a
// device one byte at a time, in increasing address order, so the device
// assembles the bytes of a register in the byte order of the bus.
//
// A write is passed to the handler when the byte at the highest address of
// the register is written. Writes to the other bytes are held until then. A
// read calls the handler when the byte at the lowest address is read and
// the remaining bytes come from that value.
type WordRegisters struct {
	label   string
	width   int
	count   uint32
	order   ByteOrder
	handler WordHandler

	// bytes written but not yet passed to the handler
	pending []uint32

	// the most recent value returned by ReadWord()
	readReg   uint32
	readValue uint32
	readValid bool
}

// NewWordRegisters is the preferred method of initialisation for the
// WordRegisters type. A width other than 2 is treated as 4.
func NewWordRegisters(label string, count uint32, width int, order ByteOrder, handler WordHandler) *WordRegisters {
	if width != 2 {
		width = 4
	}
	if count == 0 {
		count = 1
	}
	return &WordRegisters{
		label:   label,
		width:   width,
		count:   count,
		order:   order,
		handler: handler,
		pending: make([]uint32, count),
	}
}

// Label implements the Device interface.
func (r *WordRegisters) Label() string {
	return r.label
}

func (r *WordRegisters) split(offset uint32) (uint32, int) {
	w := uint32(r.width)
	return (offset / w) % r.count, int(offset % w)
}

func (r *WordRegisters) byteOf(v uint32, i int) uint8 {
	return uint8(v >> r.order.shift(i, r.width))
}

// Read implements the Device interface.
func (r *WordRegisters) Read(offset uint32) (uint8, error) {
	reg, i := r.split(offset)
	if i == 0 || !r.readValid || r.readReg != reg {
		if i == 0 {
			r.readValue = r.handler.ReadWord(reg)
		} else {
			r.readValue = r.handler.PeekWord(reg)
		}
		r.readReg = reg
		r.readValid = true
	}
	return r.byteOf(r.readValue, i), nil
}

// Write implements the Device interface.
func (r *WordRegisters) Write(offset uint32, data uint8) error {
	reg, i := r.split(offset)
	s := r.order.shift(i, r.width)
	r.pending[reg] = (r.pending[reg] &^ (0xff << s)) | uint32(data)<<s
	if i == r.width-1 {
		r.readValid = false
		r.handler.WriteWord(reg, r.pending[reg])
	}
	return nil
}

// Peek implements the Device interface.
func (r *WordRegisters) Peek(offset uint32) uint8 {
	reg, i := r.split(offset)
	return r.byteOf(r.handler.PeekWord(reg), i)
}

// Reset implements the Device interface. The handler is reset by its owner.
func (r *WordRegisters) Reset() {
	for i := range r.pending {
		r.pending[i] = 0
	}
	r.readValid = false
}

// SaveState implements the savestate.Snapshotter interface. The state of the
// registers belongs to the handler.
func (r *WordRegisters) SaveState(enc *savestate.Encoder) {
	p := make([]uint64, len(r.pending))
	for i := range r.pending {
		p[i] = uint64(r.pending[i])
	}
	enc.Uints(1, p)
}

// RestoreState implements the savestate.Snapshotter interface.
func (r *WordRegisters) RestoreState(dec *savestate.Decoder) error {
	p := dec.Uints(1)
	for i := range r.pending {
		if i < len(p) {
			r.pending[i] = uint32(p[i])
		} else {
			r.pending[i] = 0
		}
	}
	r.readValid = false
	return nil
}
