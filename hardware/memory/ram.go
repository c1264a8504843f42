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

const (
	pageBits = 12
	pageSize = 1 << pageBits
	pageMask = pageSize - 1
)

type page [pageSize]uint8

// RAM is read/write memory. Storage is allocated a page at a time on the
// first write to the page. Pages that have never been written read as zero.
//
// Offsets beyond the size of the RAM wrap around.
type RAM struct {
	label string
	size  uint32
	pages []*page
}

// NewRAM is the preferred method of initialisation for the RAM type.
func NewRAM(label string, size uint32) *RAM {
	if size == 0 {
		size = 1
	}
	return &RAM{
		label: label,
		size:  size,
		pages: make([]*page, (size+pageMask)>>pageBits),
	}
}

// Label implements the Device interface.
func (ram *RAM) Label() string {
	return ram.label
}

// Size returns the size of the RAM in bytes.
func (ram *RAM) Size() uint32 {
	return ram.size
}

func (ram *RAM) wrap(offset uint32) uint32 {
	if offset >= ram.size {
		offset %= ram.size
	}
	return offset
}

// Read implements the Device interface.
func (ram *RAM) Read(offset uint32) (uint8, error) {
	return ram.Peek(offset), nil
}

// Peek implements the Device interface.
func (ram *RAM) Peek(offset uint32) uint8 {
	offset = ram.wrap(offset)
	p := ram.pages[offset>>pageBits]
	if p == nil {
		return 0
	}
	return p[offset&pageMask]
}

// Write implements the Device interface.
func (ram *RAM) Write(offset uint32, data uint8) error {
	offset = ram.wrap(offset)
	p := ram.pages[offset>>pageBits]
	if p == nil {
		if data == 0 {
			return nil
		}
		p = &page{}
		ram.pages[offset>>pageBits] = p
	}
	p[offset&pageMask] = data
	return nil
}

// Load copies data into RAM starting at offset.
func (ram *RAM) Load(offset uint32, data []uint8) {
	for i, d := range data {
		_ = ram.Write(offset+uint32(i), d)
	}
}

// Reset implements the Device interface. All pages are released.
func (ram *RAM) Reset() {
	for i := range ram.pages {
		ram.pages[i] = nil
	}
}

// Pages returns the number of allocated pages.
func (ram *RAM) Pages() int {
	n := 0
	for _, p := range ram.pages {
		if p != nil {
			n++
		}
	}
	return n
}

// SaveState implements the savestate.Snapshotter interface. Only allocated
// pages are saved.
func (ram *RAM) SaveState(enc *savestate.Encoder) {
	enc.Uint(1, uint64(ram.size))
	for i, p := range ram.pages {
		if p == nil {
			continue
		}
		enc.Message(2, func(enc *savestate.Encoder) {
			enc.Uint(1, uint64(i))
			enc.Bytes(2, p[:])
		})
	}
}

// RestoreState implements the savestate.Snapshotter interface.
func (ram *RAM) RestoreState(dec *savestate.Decoder) error {
	if uint32(dec.Uint(1)) != ram.size {
		return curatedSizeMismatch(ram.label, uint32(dec.Uint(1)), ram.size)
	}

	pages, err := dec.Messages(2)
	if err != nil {
		return err
	}

	ram.Reset()
	for _, pd := range pages {
		i := int(pd.Uint(1))
		if i >= len(ram.pages) {
			return curatedSizeMismatch(ram.label, uint32(i)<<pageBits, ram.size)
		}
		p := &page{}
		if err := pd.CopyBytes(2, p[:]); err != nil {
			return err
		}
		ram.pages[i] = p
	}

	return nil
}
