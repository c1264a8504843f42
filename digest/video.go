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

package digest

import (
	"crypto/sha1"
	"fmt"

	"github.com/emulite/emulite/hardware/peripherals/video"
)

// Video implements the video.Sink interface.
type Video struct {
	digest [sha1.Size]byte
	frames int

	// scratch space holding the previous digest followed by the pixels of
	// the frame
	scratch []uint8
}

// NewVideo is the preferred method of initialisation for the Video type.
func NewVideo() *Video {
	return &Video{}
}

// Hash implements the Digest interface.
func (dig *Video) Hash() string {
	return fmt.Sprintf("%x", dig.digest)
}

// ResetDigest implements the Digest interface.
func (dig *Video) ResetDigest() {
	dig.digest = [sha1.Size]byte{}
	dig.frames = 0
}

// Frames returns the number of frames included in the digest.
func (dig *Video) Frames() int {
	return dig.frames
}

// NewFrame implements the video.Sink interface.
func (dig *Video) NewFrame(f video.Frame) {
	l := len(dig.digest) + 8 + len(f.Pixels)
	if cap(dig.scratch) < l {
		dig.scratch = make([]uint8, l)
	}
	dig.scratch = dig.scratch[:l]

	n := copy(dig.scratch, dig.digest[:])

	// the dimensions are part of the digest so that frames of different
	// shapes with the same pixel data are told apart
	dig.scratch[n] = uint8(f.Width >> 24)
	dig.scratch[n+1] = uint8(f.Width >> 16)
	dig.scratch[n+2] = uint8(f.Width >> 8)
	dig.scratch[n+3] = uint8(f.Width)
	dig.scratch[n+4] = uint8(f.Height >> 24)
	dig.scratch[n+5] = uint8(f.Height >> 16)
	dig.scratch[n+6] = uint8(f.Height >> 8)
	dig.scratch[n+7] = uint8(f.Height)

	copy(dig.scratch[n+8:], f.Pixels)
	dig.digest = sha1.Sum(dig.scratch)
	dig.frames++
}
