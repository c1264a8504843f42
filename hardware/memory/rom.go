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
	"github.com/emulite/emulite/curated"
	"github.com/emulite/emulite/savestate"
)

// ROM is read-only memory. The response to a write depends on the
// WritePolicy of the device.
//
// Offsets beyond the size of the ROM wrap around.
type ROM struct {
	label  string
	data   []uint8
	policy WritePolicy
}

// NewROM is the preferred method of initialisation for the ROM type. The data
// is copied.
func NewROM(label string, data []uint8, policy WritePolicy) *ROM {
	rom := &ROM{
		label:  label,
		data:   make([]uint8, len(data)),
		policy: policy,
	}
	copy(rom.data, data)
	if len(rom.data) == 0 {
		rom.data = []uint8{0}
	}
	return rom
}

// Label implements the Device interface.
func (rom *ROM) Label() string {
	return rom.label
}

// Size returns the size of the ROM in bytes.
func (rom *ROM) Size() uint32 {
	return uint32(len(rom.data))
}

// Policy returns the WritePolicy of the ROM.
func (rom *ROM) Policy() WritePolicy {
	return rom.policy
}

// Read implements the Device interface.
func (rom *ROM) Read(offset uint32) (uint8, error) {
	return rom.Peek(offset), nil
}

// Peek implements the Device interface.
func (rom *ROM) Peek(offset uint32) uint8 {
	return rom.data[offset%uint32(len(rom.data))]
}

// Write implements the Device interface. The ROM is never changed.
func (rom *ROM) Write(offset uint32, data uint8) error {
	if rom.policy == RaiseOnWrite {
		return &Fault{Reason: ReadOnly, Kind: AccessWrite, Address: offset, Width: 1, Device: rom.label}
	}
	return nil
}

// Reset implements the Device interface.
func (rom *ROM) Reset() {
}

// SaveState implements the savestate.Snapshotter interface. ROM contents are
// not part of the state.
func (rom *ROM) SaveState(enc *savestate.Encoder) {
	enc.Uint(1, uint64(len(rom.data)))
}

// RestoreState implements the savestate.Snapshotter interface.
func (rom *ROM) RestoreState(dec *savestate.Decoder) error {
	if n := uint32(dec.Uint(1)); n != uint32(len(rom.data)) {
		return curatedSizeMismatch(rom.label, n, uint32(len(rom.data)))
	}
	return nil
}

func curatedSizeMismatch(label string, got uint32, expected uint32) error {
	return curated.Errorf("memory: %v: %s size %d does not match %d", savestate.CorruptError, label, got, expected)
}
