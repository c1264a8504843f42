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
	"bytes"

	"github.com/emulite/emulite/curated"
	"github.com/emulite/emulite/hardware/memory"
)

const (
	inesHeaderLen  = 16
	inesTrainerLen = 512
	inesPRGBank    = 16384
	inesCHRBank    = 8192
)

var inesMagic = []byte{'N', 'E', 'S', 0x1a}

// Mirroring of the PPU nametables, from the iNES header.
type Mirroring int

// List of valid Mirroring values.
const (
	Horizontal Mirroring = iota
	Vertical
	FourScreen
)

func (m Mirroring) String() string {
	switch m {
	case Vertical:
		return "vertical"
	case FourScreen:
		return "four screen"
	}
	return "horizontal"
}

// INES is a parsed iNES image.
type INES struct {
	Mapper    int
	Mirroring Mirroring
	Battery   bool
	PRG       []uint8
	CHR       []uint8
}

// ParseINES interprets the iNES header and extracts the PRG and CHR data.
// Only mappers 0 (NROM) and 2 (UxROM) are supported.
func ParseINES(data []uint8) (*INES, error) {
	if len(data) < inesHeaderLen || !bytes.Equal(data[:4], inesMagic) {
		return nil, curated.Errorf("ines: %v: missing iNES header", FormatError)
	}

	prgBanks := int(data[4])
	chrBanks := int(data[5])
	flags6 := data[6]
	flags7 := data[7]

	img := &INES{
		Mapper:  int(flags6>>4) | int(flags7&0xf0),
		Battery: flags6&0x02 == 0x02,
	}

	switch {
	case flags6&0x08 == 0x08:
		img.Mirroring = FourScreen
	case flags6&0x01 == 0x01:
		img.Mirroring = Vertical
	default:
		img.Mirroring = Horizontal
	}

	if img.Mapper != 0 && img.Mapper != 2 {
		return nil, curated.Errorf("ines: %v: unsupported mapper (%d)", FormatError, img.Mapper)
	}

	if prgBanks == 0 {
		return nil, curated.Errorf("ines: %v: no PRG data", FormatError)
	}
	if img.Mapper == 0 && prgBanks > 2 {
		return nil, curated.Errorf("ines: %v: NROM with %d PRG banks", FormatError, prgBanks)
	}

	ptr := inesHeaderLen
	if flags6&0x04 == 0x04 {
		ptr += inesTrainerLen
	}

	prgLen := prgBanks * inesPRGBank
	chrLen := chrBanks * inesCHRBank
	if len(data) < ptr+prgLen+chrLen {
		return nil, curated.Errorf("ines: %v: image truncated (%d bytes, expected %d)", FormatError, len(data), ptr+prgLen+chrLen)
	}

	img.PRG = data[ptr : ptr+prgLen]
	ptr += prgLen
	img.CHR = data[ptr : ptr+chrLen]

	return img, nil
}

// uxrom switches the lower 16K window by writes anywhere in ROM. The upper
// window is fixed to the last bank.
type uxrom struct{}

// Reset implements the memory.BankControl interface.
func (uxrom) Reset(b *memory.Banked) {
	b.SetWindow(0, 0)
	b.SetWindow(1, b.NumBanks()-1)
}

// Access implements the memory.BankControl interface.
func (uxrom) Access(b *memory.Banked, _ uint32, data uint8, write bool) bool {
	if !write {
		return false
	}
	b.SetWindow(0, int(data))
	return true
}

// PRGDevice creates the device for the 32K PRG space at 0x8000.
func (img *INES) PRGDevice() (memory.Device, error) {
	switch img.Mapper {
	case 0:
		// a single 16K bank is mirrored by the ROM device wrapping offsets
		return memory.NewROM("NROM", img.PRG, memory.IgnoreWrites), nil
	case 2:
		b, err := memory.NewBanked("UxROM", img.PRG, inesPRGBank, 2, uxrom{}, memory.IgnoreWrites)
		if err != nil {
			return nil, curated.Errorf("ines: %v: %v", FormatError, err)
		}
		return b, nil
	}
	return nil, curated.Errorf("ines: %v: unsupported mapper (%d)", FormatError, img.Mapper)
}
