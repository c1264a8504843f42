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

package wavwriter_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/go-audio/wav"

	"github.com/emulite/emulite/hardware/peripherals/audio"
	"github.com/emulite/emulite/test"
	"github.com/emulite/emulite/wavwriter"
)

func TestWavWriter(t *testing.T) {
	fn := filepath.Join(t.TempDir(), "out.wav")

	aw, err := wavwriter.New(fn)
	test.DemandSuccess(t, err)
	test.ExpectFailure(t, aw.EndMixing())

	aw.NewBuffer(audio.Buffer{Rate: 44100, Channels: 2, Data: []int16{1, -1, 100, -100}})
	aw.NewBuffer(audio.Buffer{Rate: 44100, Channels: 2, Data: []int16{1000, -1000}})

	// a buffer in a different format is ignored
	aw.NewBuffer(audio.Buffer{Rate: 22050, Channels: 1, Data: []int16{5}})
	test.ExpectEquality(t, aw.Samples(), 3)

	test.DemandSuccess(t, aw.EndMixing())

	f, err := os.Open(fn)
	test.DemandSuccess(t, err)
	defer f.Close()

	dec := wav.NewDecoder(f)
	test.ExpectEquality(t, dec.IsValidFile(), true)
	test.ExpectEquality(t, int(dec.SampleRate), 44100)
	test.ExpectEquality(t, int(dec.NumChans), 2)
	test.ExpectEquality(t, int(dec.BitDepth), 16)

	buf, err := dec.FullPCMBuffer()
	test.DemandSuccess(t, err)
	test.DemandEquality(t, len(buf.Data), 6)
	test.ExpectEquality(t, buf.Data[2], 100)
	test.ExpectEquality(t, buf.Data[5], -1000)
}

func TestNoFilename(t *testing.T) {
	_, err := wavwriter.New("")
	test.ExpectFailure(t, err)
}
