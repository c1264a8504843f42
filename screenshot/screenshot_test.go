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

package screenshot_test

import (
	"bytes"
	"image/color"
	"os"
	"testing"

	"golang.org/x/image/bmp"

	"github.com/emulite/emulite/hardware/peripherals/video"
	"github.com/emulite/emulite/screenshot"
	"github.com/emulite/emulite/test"
)

func TestEncode(t *testing.T) {
	f := video.NewFrame(8, 4)
	f.SetPixel(2, 3, video.RGB(10, 20, 30))

	var b bytes.Buffer
	test.DemandSuccess(t, screenshot.Encode(&b, f))

	img, err := bmp.Decode(&b)
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, img.Bounds().Dx(), 8)
	test.ExpectEquality(t, img.Bounds().Dy(), 4)

	r, g, bl, _ := img.At(2, 3).RGBA()
	c := color.RGBA{R: uint8(r >> 8), G: uint8(g >> 8), B: uint8(bl >> 8)}
	test.ExpectEquality(t, c.R, uint8(10))
	test.ExpectEquality(t, c.G, uint8(20))
	test.ExpectEquality(t, c.B, uint8(30))

	test.ExpectFailure(t, screenshot.Encode(&b, video.Frame{}))
}

func TestCapture(t *testing.T) {
	c := &screenshot.Capture{Dir: t.TempDir(), Prefix: "shot", Every: 2}
	for i := 0; i < 5; i++ {
		f := video.NewFrame(2, 2)
		f.Number = i
		c.NewFrame(f)
	}

	names, err := c.Flush()
	test.DemandSuccess(t, err)
	test.DemandEquality(t, len(names), 3)

	_, err = os.Stat(names[2])
	test.ExpectSuccess(t, err)

	names, err = c.Flush()
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, len(names), 0)
}
