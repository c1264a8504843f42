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

package audio

// Buffer is a completed buffer of audio data.
type Buffer struct {
	// samples per second
	Rate int

	Channels int

	// interleaved signed 16-bit samples. the length is always a multiple of
	// the number of channels
	Data []int16
}

// Frames returns the number of sample frames in the buffer. A sample frame
// is one sample for every channel.
func (b Buffer) Frames() int {
	if b.Channels == 0 {
		return 0
	}
	return len(b.Data) / b.Channels
}

// Sink receives completed buffers. NewBuffer must not block. The buffer
// belongs to the sink and will not be touched by the generator again.
type Sink interface {
	NewBuffer(Buffer)
}
