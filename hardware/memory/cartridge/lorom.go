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

package cartridge

import (
	"github.com/alttpo/snes/mapping/lorom"
	"github.com/emulite/emulite/curated"
	"github.com/emulite/emulite/hardware/memory"
	"github.com/emulite/emulite/savestate"
)

const (
	loromBank      = 0x8000
	copierHeader   = 512
	loromMaxLength = 0x400000

	// start of SRAM in the translated address space
	loromSRAM = 0xe00000
)

// LoROM is a SNES LoROM cartridge. The device expects to receive the full
// 24-bit bus address as its offset. Attach it with Range.Base set to the
// start of each range.
type LoROM struct {
	data []uint8
}

// NewLoROM creates a LoROM device. A 512 byte copier header is removed if
// present.
func NewLoROM(data []uint8) (*LoROM, error) {
	if len(data)%loromBank == copierHeader {
		data = data[copierHeader:]
	}
	if len(data) == 0 || len(data)%loromBank != 0 {
		return nil, curated.Errorf("lorom: %v: size is not a multiple of 32K (%d bytes)", FormatError, len(data))
	}
	if len(data) > loromMaxLength {
		return nil, curated.Errorf("lorom: %v: image too large (%d bytes)", FormatError, len(data))
	}

	r := &LoROM{data: make([]uint8, len(data))}
	copy(r.data, data)
	return r, nil
}

// Label implements the memory.Device interface.
func (r *LoROM) Label() string {
	return "LoROM"
}

// Size returns the size of the ROM data.
func (r *LoROM) Size() int {
	return len(r.data)
}

// Title returns the internal name of the cartridge from the header.
func (r *LoROM) Title() string {
	const titleAddr = 0x00ffc0
	t := make([]byte, 21)
	for i := range t {
		t[i] = r.Peek(titleAddr + uint32(i))
	}
	for len(t) > 0 && (t[len(t)-1] == ' ' || t[len(t)-1] == 0) {
		t = t[:len(t)-1]
	}
	return string(t)
}

// pak translates a bus address to an offset in the ROM data. The ROM is
// mirrored if it is smaller than the address space. Addresses in the lower
// half of a bank, WRAM or SRAM are not ROM.
func (r *LoROM) pak(address uint32) (uint32, bool) {
	pc, err := lorom.BusAddressToPak(address & 0xffffff)
	if err != nil || pc >= loromSRAM {
		return 0, false
	}
	return pc % uint32(len(r.data)), true
}

// Read implements the memory.Device interface. Reading an address that does
// not map to ROM is a fault.
func (r *LoROM) Read(address uint32) (uint8, error) {
	pc, ok := r.pak(address)
	if !ok {
		return 0, &memory.Fault{
			Reason:  memory.OutOfRange,
			Kind:    memory.AccessRead,
			Address: address,
			Width:   1,
			Device:  r.Label(),
		}
	}
	return r.data[pc], nil
}

// Write implements the memory.Device interface. Writes are ignored.
func (r *LoROM) Write(_ uint32, _ uint8) error {
	return nil
}

// Peek implements the memory.Device interface. Addresses that do not map to
// ROM peek as zero.
func (r *LoROM) Peek(address uint32) uint8 {
	pc, ok := r.pak(address)
	if !ok {
		return 0
	}
	return r.data[pc]
}

// Reset implements the memory.Device interface.
func (r *LoROM) Reset() {
}

// SaveState implements the savestate.Snapshotter interface.
func (r *LoROM) SaveState(enc *savestate.Encoder) {
	enc.Uint(1, uint64(len(r.data)))
}

// RestoreState implements the savestate.Snapshotter interface.
func (r *LoROM) RestoreState(dec *savestate.Decoder) error {
	if int(dec.Uint(1)) != len(r.data) {
		return curated.Errorf("lorom: %v: rom size mismatch", savestate.CorruptError)
	}
	return nil
}
