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

package digest_test

import (
	"testing"

	"github.com/emulite/emulite/digest"
	"github.com/emulite/emulite/hardware/peripherals/audio"
	"github.com/emulite/emulite/hardware/peripherals/video"
	"github.com/emulite/emulite/test"
)

func TestVideoDigest(t *testing.T) {
	a := digest.NewVideo()
	b := digest.NewVideo()
	test.DemandImplements[digest.Digest](t, a)
	test.ExpectEquality(t, a.Hash(), b.Hash())

	f := video.NewFrame(4, 4)
	f.SetPixel(1, 1, video.RGB(255, 0, 0))
	a.NewFrame(f)
	b.NewFrame(f)
	test.ExpectEquality(t, a.Hash(), b.Hash())
	test.ExpectEquality(t, a.Frames(), 1)

	// the same pixels in a different order
	a.NewFrame(video.NewFrame(4, 4))
	a.NewFrame(f)
	b.NewFrame(f)
	b.NewFrame(video.NewFrame(4, 4))
	test.ExpectInequality(t, a.Hash(), b.Hash())

	// the same number of pixels in a different shape
	a.ResetDigest()
	b.ResetDigest()
	a.NewFrame(video.NewFrame(2, 8))
	b.NewFrame(video.NewFrame(8, 2))
	test.ExpectInequality(t, a.Hash(), b.Hash())
}

func TestAudioDigest(t *testing.T) {
	a := digest.NewAudio()
	b := digest.NewAudio()
	test.DemandImplements[digest.Digest](t, a)

	// enough data to flush the buffer more than once
	data := make([]int16, 10000)
	for i := range data {
		data[i] = int16(i)
	}
	a.NewBuffer(audio.Buffer{Rate: 44100, Channels: 1, Data: data})
	b.NewBuffer(audio.Buffer{Rate: 44100, Channels: 1, Data: data[:5000]})
	b.NewBuffer(audio.Buffer{Rate: 44100, Channels: 1, Data: data[5000:]})
	test.ExpectEquality(t, a.Hash(), b.Hash())

	data[9999] = 0
	b.ResetDigest()
	b.NewBuffer(audio.Buffer{Rate: 44100, Channels: 1, Data: data})
	test.ExpectInequality(t, a.Hash(), b.Hash())
}
