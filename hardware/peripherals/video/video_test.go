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

package video_test

import (
	"testing"

	"github.com/emulite/emulite/hardware/clocks"
	"github.com/emulite/emulite/hardware/peripherals"
	"github.com/emulite/emulite/hardware/peripherals/video"
	"github.com/emulite/emulite/savestate"
	"github.com/emulite/emulite/test"
)

// draws each scanline in a colour derived from the line number
type stripes struct {
	vblankStart int
	vblankEnd   int
}

func (s *stripes) Scanline(line int, row []uint8) {
	video.Fill(row, video.RGB(uint8(line), 0, 0))
}

func (s *stripes) VBlank(start bool) {
	if start {
		s.vblankStart++
	} else {
		s.vblankEnd++
	}
}

type collect struct {
	frames []video.Frame
}

func (c *collect) NewFrame(f video.Frame) {
	c.frames = append(c.frames, f)
}

func TestGenerator(t *testing.T) {
	r := &stripes{}
	gen, err := video.NewGenerator("test", video.Geometry{Width: 4, Height: 3, Scanlines: 5}, clocks.Whole(10), r)
	test.DemandSuccess(t, err)
	test.DemandImplements[peripherals.Stepper](t, gen)

	c := &collect{}
	gen.SetSink(c)

	for i := 0; i < 3; i++ {
		test.ExpectSuccess(t, gen.Tick())
	}
	test.ExpectEquality(t, gen.Frame(), 1)
	test.ExpectEquality(t, gen.InVBlank(), true)
	test.ExpectEquality(t, r.vblankStart, 1)
	test.ExpectEquality(t, r.vblankEnd, 0)
	test.DemandEquality(t, len(c.frames), 1)

	f := c.frames[0]
	test.ExpectEquality(t, f.Number, 0)
	test.ExpectEquality(t, f.Stride(), 16)
	test.ExpectEquality(t, len(f.Pixels), 4*3*4)
	test.ExpectEquality(t, f.Pixel(0, 0), video.RGB(0, 0, 0))
	test.ExpectEquality(t, f.Pixel(3, 2), video.RGB(2, 0, 0))

	// the end of the vertical blank
	test.ExpectSuccess(t, gen.Tick())
	test.ExpectSuccess(t, gen.Tick())
	test.ExpectEquality(t, gen.Scanline(), 0)
	test.ExpectEquality(t, gen.InVBlank(), false)
	test.ExpectEquality(t, r.vblankEnd, 1)

	// the frame handed to the sink is a copy
	gen.Current().SetPixel(0, 0, video.RGB(9, 9, 9))
	test.ExpectEquality(t, c.frames[0].Pixel(0, 0), video.RGB(0, 0, 0))
}

func TestGeneratorState(t *testing.T) {
	gen, err := video.NewGenerator("test", video.Geometry{Width: 4, Height: 3, Scanlines: 5}, clocks.Whole(10), nil)
	test.DemandSuccess(t, err)
	for i := 0; i < 7; i++ {
		test.ExpectSuccess(t, gen.Tick())
	}

	enc := savestate.NewEncoder()
	gen.SaveState(enc)

	gen.Reset()
	test.ExpectEquality(t, gen.Frame(), 0)
	test.ExpectEquality(t, gen.Scanline(), 0)

	dec, err := savestate.NewDecoder(enc.Data())
	test.DemandSuccess(t, err)
	test.ExpectSuccess(t, gen.RestoreState(dec))
	test.ExpectEquality(t, gen.Frame(), 1)
	test.ExpectEquality(t, gen.Scanline(), 2)
}

func TestGeometry(t *testing.T) {
	_, err := video.NewGenerator("test", video.Geometry{Width: 4, Height: 3, Scanlines: 2}, clocks.Whole(10), nil)
	test.ExpectFailure(t, err)
	_, err = video.NewGenerator("test", video.Geometry{Width: 0, Height: 3, Scanlines: 5}, clocks.Whole(10), nil)
	test.ExpectFailure(t, err)
	_, err = video.NewGenerator("test", video.Geometry{Width: 4, Height: 3, Scanlines: 5}, clocks.Ratio{}, nil)
	test.ExpectFailure(t, err)
}

func TestFrameImage(t *testing.T) {
	f := video.NewFrame(2, 2)
	f.SetPixel(1, 1, video.RGB(1, 2, 3))
	img := f.Image()
	test.ExpectEquality(t, img.Bounds().Dx(), 2)
	c := img.RGBAAt(1, 1)
	test.ExpectEquality(t, c.R, uint8(1))
	test.ExpectEquality(t, c.B, uint8(3))
	test.ExpectEquality(t, c.A, uint8(0xff))

	g := video.FromImage(5, img)
	test.ExpectEquality(t, g.Number, 5)
	test.ExpectEquality(t, g.Pixel(1, 1), video.RGB(1, 2, 3))

	// out of range pixels are ignored
	f.SetPixel(2, 0, video.RGB(1, 1, 1))
	test.ExpectEquality(t, f.Pixel(2, 0), video.Colour{})
}

func TestBGR555(t *testing.T) {
	test.ExpectEquality(t, video.BGR555(0x7fff), video.RGB(0xff, 0xff, 0xff))
	test.ExpectEquality(t, video.BGR555(0x001f), video.RGB(0xff, 0, 0))
	test.ExpectEquality(t, video.BGR555(0x7c00), video.RGB(0, 0, 0xff))
}
