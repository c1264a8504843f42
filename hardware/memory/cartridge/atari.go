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
	"github.com/emulite/emulite/curated"
	"github.com/emulite/emulite/hardware/memory"
)

// the size of the cartridge address space on the 2600
const atariWindow = 0x1000

// atariScheme describes one of the standard Atari bank switching methods. Any
// access to a hotspot selects a bank. The hotspots are consecutive
// addresses, one per bank.
type atariScheme struct {
	id      string
	size    int
	hotspot uint32
}

// from Kevin Horton's "sizes.txt". 2K carts repeat twice in the 4K space.
var atariSchemes = []atariScheme{
	{id: "2K", size: 2048},
	{id: "4K", size: 4096},
	{id: "F8", size: 8192, hotspot: 0x0ff8},
	{id: "F6", size: 16384, hotspot: 0x0ff6},
	{id: "F4", size: 32768, hotspot: 0x0ff4},
}

// Reset implements the memory.BankControl interface.
//
// The start bank is the second bank when there is more than one. Most
// cartridges don't care but some will not boot in bank zero.
func (s atariScheme) Reset(b *memory.Banked) {
	if b.NumBanks() > 1 {
		b.SetWindow(0, 1)
	}
}

// Access implements the memory.BankControl interface.
func (s atariScheme) Access(b *memory.Banked, offset uint32, _ uint8, write bool) bool {
	if s.hotspot == 0 {
		return false
	}
	offset &= atariWindow - 1
	if offset >= s.hotspot && offset < s.hotspot+uint32(b.NumBanks()) {
		b.SetWindow(0, int(offset-s.hotspot))

		// writes to a hotspot are swallowed. the 2600 cartridge bus has no
		// write line so a write would otherwise be a read of ROM
		return write
	}
	return false
}

// NewAtari creates the cartridge device for an Atari 2600 ROM image. The
// bank switching scheme is chosen by the size of the image.
//
// The device should be attached to the 4K cartridge space.
func NewAtari(data []uint8) (*memory.Banked, error) {
	for _, s := range atariSchemes {
		if len(data) != s.size {
			continue
		}

		bankSize := uint32(atariWindow)
		if s.size < atariWindow {
			bankSize = uint32(s.size)
		}

		b, err := memory.NewBanked(s.id, data, bankSize, 1, s, memory.IgnoreWrites)
		if err != nil {
			return nil, curated.Errorf("atari: %v: %v", FormatError, err)
		}
		return b, nil
	}

	return nil, curated.Errorf("atari: %v: unsupported cartridge size (%d bytes)", FormatError, len(data))
}
