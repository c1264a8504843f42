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

package video

// Colour is a single RGBA8888 pixel.
type Colour struct {
	R, G, B, A uint8
}

// RGB returns an opaque colour.
func RGB(r, g, b uint8) Colour {
	return Colour{R: r, G: g, B: b, A: 0xff}
}

// Fill a row of pixel data with a single colour.
func Fill(row []uint8, c Colour) {
	for i := 0; i+3 < len(row); i += 4 {
		row[i] = c.R
		row[i+1] = c.G
		row[i+2] = c.B
		row[i+3] = c.A
	}
}

// FillSpan fills pixels [from, to) of a row.
func FillSpan(row []uint8, from int, to int, c Colour) {
	if from < 0 {
		from = 0
	}
	if to*4 > len(row) {
		to = len(row) / 4
	}
	if from >= to {
		return
	}
	Fill(row[from*4:to*4], c)
}

// Palette maps an index to a colour.
type Palette []Colour

// Colour returns the colour for index. Out of range indexes are black.
func (p Palette) Colour(idx int) Colour {
	if idx < 0 || idx >= len(p) {
		return RGB(0, 0, 0)
	}
	return p[idx]
}

// BGR555 converts a 15 bit colour as used by the SNES and PlayStation.
func BGR555(c uint16) Colour {
	r := uint8(c & 0x1f)
	g := uint8((c >> 5) & 0x1f)
	b := uint8((c >> 10) & 0x1f)
	return RGB(r<<3|r>>2, g<<3|g>>2, b<<3|b>>2)
}
