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

import (
	"image"
)

// Frame is a completed video frame.
type Frame struct {
	// the frame number, counting from zero after reset
	Number int

	Width  int
	Height int

	// RGBA8888 with a stride of 4*Width
	Pixels []uint8
}

// NewFrame allocates a frame of the specified dimensions.
func NewFrame(width int, height int) Frame {
	return Frame{
		Width:  width,
		Height: height,
		Pixels: make([]uint8, width*height*4),
	}
}

// Stride returns the number of bytes in each row of the frame.
func (f Frame) Stride() int {
	return f.Width * 4
}

// Row returns the pixels of a row. Returns nil if the row is out of range or
// the frame has no pixel data.
func (f Frame) Row(y int) []uint8 {
	s := f.Stride()
	if y < 0 || y >= f.Height || len(f.Pixels) < (y+1)*s {
		return nil
	}
	return f.Pixels[y*s : (y+1)*s]
}

// Copy returns a frame with its own copy of the pixel data.
func (f Frame) Copy() Frame {
	c := f
	c.Pixels = make([]uint8, len(f.Pixels))
	copy(c.Pixels, f.Pixels)
	return c
}

// Image returns an image.RGBA sharing the pixel data of the frame.
func (f Frame) Image() *image.RGBA {
	return &image.RGBA{
		Pix:    f.Pixels,
		Stride: f.Stride(),
		Rect:   image.Rect(0, 0, f.Width, f.Height),
	}
}

// FromImage creates a frame from an image.RGBA. The pixel data is copied.
func FromImage(number int, img *image.RGBA) Frame {
	b := img.Bounds()
	f := NewFrame(b.Dx(), b.Dy())
	f.Number = number
	for y := 0; y < f.Height; y++ {
		i := img.PixOffset(b.Min.X, b.Min.Y+y)
		copy(f.Row(y), img.Pix[i:i+f.Stride()])
	}
	return f
}

// SetPixel sets the colour of a single pixel. Coordinates outside of the
// frame are ignored.
func (f Frame) SetPixel(x int, y int, c Colour) {
	if x < 0 || x >= f.Width || y < 0 || y >= f.Height {
		return
	}
	i := y*f.Stride() + x*4
	f.Pixels[i] = c.R
	f.Pixels[i+1] = c.G
	f.Pixels[i+2] = c.B
	f.Pixels[i+3] = c.A
}

// Pixel returns the colour of a single pixel.
func (f Frame) Pixel(x int, y int) Colour {
	if x < 0 || x >= f.Width || y < 0 || y >= f.Height {
		return Colour{}
	}
	i := y*f.Stride() + x*4
	return Colour{R: f.Pixels[i], G: f.Pixels[i+1], B: f.Pixels[i+2], A: f.Pixels[i+3]}
}
