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

// Package screenshot writes video frames to disk as BMP images.
package screenshot

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"golang.org/x/image/bmp"

	"github.com/emulite/emulite/curated"
	"github.com/emulite/emulite/hardware/peripherals/video"
	"github.com/emulite/emulite/logger"
)

// Encode writes the frame as a BMP image.
func Encode(w io.Writer, f video.Frame) error {
	if f.Width == 0 || f.Height == 0 {
		return curated.Errorf("screenshot: empty frame")
	}

	// frames are always opaque but the alpha channel of unpainted pixels
	// may be zero
	f = f.Copy()
	for i := 3; i < len(f.Pixels); i += 4 {
		f.Pixels[i] = 0xff
	}

	if err := bmp.Encode(w, f.Image()); err != nil {
		return curated.Errorf("screenshot: %v", err)
	}
	return nil
}

// Save the frame to the named file.
func Save(filename string, f video.Frame) (rerr error) {
	fh, err := os.Create(filename)
	if err != nil {
		return curated.Errorf("screenshot: %v", err)
	}
	defer func() {
		if err := fh.Close(); err != nil && rerr == nil {
			rerr = curated.Errorf("screenshot: %v", err)
		}
	}()
	return Encode(fh, f)
}

// Capture implements the video.Sink interface. Every frame with a number
// that is a multiple of Every is saved to a file in Dir. Frames are only
// written when Flush() is called.
type Capture struct {
	Dir    string
	Prefix string
	Every  int

	pending []video.Frame
}

// NewFrame implements the video.Sink interface.
func (c *Capture) NewFrame(f video.Frame) {
	every := c.Every
	if every <= 0 {
		every = 1
	}
	if f.Number%every != 0 {
		return
	}
	c.pending = append(c.pending, f.Copy())
}

// Flush writes every captured frame and returns the filenames.
func (c *Capture) Flush() ([]string, error) {
	var names []string
	for _, f := range c.pending {
		fn := filepath.Join(c.Dir, fmt.Sprintf("%s%06d.bmp", c.Prefix, f.Number))
		if err := Save(fn, f); err != nil {
			return names, err
		}
		names = append(names, fn)
		logger.Logf(logger.Allow, "screenshot", "saved %s", fn)
	}
	c.pending = c.pending[:0]
	return names, nil
}
