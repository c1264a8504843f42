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
	"fmt"

	"github.com/emulite/emulite/curated"
	"github.com/emulite/emulite/hardware/clocks"
	"github.com/emulite/emulite/savestate"
)

// Geometry of the video signal.
type Geometry struct {
	// visible dimensions
	Width  int
	Height int

	// total number of scanlines in a frame, including the vertical blank
	Scanlines int

	// frames per second
	Refresh float64
}

func (g Geometry) String() string {
	return fmt.Sprintf("%dx%d (%d lines) %.2fHz", g.Width, g.Height, g.Scanlines, g.Refresh)
}

// Renderer is implemented by the platform specific part of the video
// hardware.
type Renderer interface {
	// Scanline draws a single visible scanline into row. The row is Width*4
	// bytes of RGBA8888 data.
	Scanline(line int, row []uint8)

	// VBlank is called when the vertical blank begins (start is true) and
	// when it ends (start is false). The platform raises its vblank
	// interrupt from here.
	VBlank(start bool)
}

// Sink receives completed frames. NewFrame must not block. The frame belongs
// to the sink and will not be touched by the generator again.
type Sink interface {
	NewFrame(Frame)
}

// Generator is a scanline stepper. It implements the peripherals.Stepper
// interface.
type Generator struct {
	label    string
	geometry Geometry
	ratio    clocks.Ratio
	renderer Renderer
	sink     Sink

	// the frame being drawn
	frame Frame

	// the current scanline and the number of completed frames
	line  int
	count int
}

// NewGenerator is the preferred method of initialisation for the Generator
// type. The ratio is the number of CPU cycles per scanline.
func NewGenerator(label string, geometry Geometry, ratio clocks.Ratio, renderer Renderer) (*Generator, error) {
	if geometry.Width <= 0 || geometry.Height <= 0 {
		return nil, curated.Errorf("video: %s: invalid dimensions %dx%d", label, geometry.Width, geometry.Height)
	}
	if geometry.Scanlines < geometry.Height {
		return nil, curated.Errorf("video: %s: %d scanlines is fewer than the visible height (%d)", label, geometry.Scanlines, geometry.Height)
	}
	if !ratio.Valid() {
		return nil, curated.Errorf("video: %s: invalid clock ratio (%s)", label, ratio)
	}
	if geometry.Refresh <= 0 {
		geometry.Refresh = 60
	}

	return &Generator{
		label:    label,
		geometry: geometry,
		ratio:    ratio,
		renderer: renderer,
		frame:    NewFrame(geometry.Width, geometry.Height),
	}, nil
}

// Label implements the peripherals.Stepper interface.
func (gen *Generator) Label() string {
	return gen.label
}

// Ratio implements the peripherals.Stepper interface.
func (gen *Generator) Ratio() clocks.Ratio {
	return gen.ratio
}

// Geometry returns the geometry of the generator.
func (gen *Generator) Geometry() Geometry {
	return gen.geometry
}

// SetSink sets the destination for completed frames. A nil sink discards
// frames.
func (gen *Generator) SetSink(sink Sink) {
	gen.sink = sink
}

// Frame returns the number of completed frames.
func (gen *Generator) Frame() int {
	return gen.count
}

// Scanline returns the current scanline.
func (gen *Generator) Scanline() int {
	return gen.line
}

// InVBlank returns true if the current scanline is not visible.
func (gen *Generator) InVBlank() bool {
	return gen.line >= gen.geometry.Height
}

// Current returns the frame being drawn. The pixel data is shared with the
// generator and will change as the frame is drawn.
func (gen *Generator) Current() Frame {
	f := gen.frame
	f.Number = gen.count
	return f
}

// Tick implements the peripherals.Stepper interface. It completes the current
// scanline.
func (gen *Generator) Tick() error {
	if gen.line < gen.geometry.Height && gen.renderer != nil {
		if row := gen.frame.Row(gen.line); row != nil {
			gen.renderer.Scanline(gen.line, row)
		}
	}

	gen.line++

	if gen.line == gen.geometry.Height {
		f := gen.frame.Copy()
		f.Number = gen.count
		gen.count++
		if gen.sink != nil {
			gen.sink.NewFrame(f)
		}
		if gen.renderer != nil {
			gen.renderer.VBlank(true)
		}
	}

	if gen.line >= gen.geometry.Scanlines {
		gen.line = 0
		if gen.renderer != nil {
			gen.renderer.VBlank(false)
		}
	}

	return nil
}

// Reset implements the peripherals.Stepper interface.
func (gen *Generator) Reset() {
	gen.line = 0
	gen.count = 0
	Fill(gen.frame.Pixels, Colour{})
}

// Release frees the frame buffer.
func (gen *Generator) Release() {
	gen.frame.Pixels = nil
	gen.sink = nil
}

// SaveState implements the savestate.Snapshotter interface. The frame buffer
// is not part of the state. A restored generator completes the current frame
// with the lines drawn after the restore.
func (gen *Generator) SaveState(enc *savestate.Encoder) {
	enc.Uint(1, uint64(gen.line))
	enc.Uint(2, uint64(gen.count))
}

// RestoreState implements the savestate.Snapshotter interface.
func (gen *Generator) RestoreState(dec *savestate.Decoder) error {
	line := int(dec.Uint(1))
	if line >= gen.geometry.Scanlines {
		return curated.Errorf("video: %v: scanline %d out of range", savestate.CorruptError, line)
	}
	gen.line = line
	gen.count = int(dec.Uint(2))
	return nil
}
