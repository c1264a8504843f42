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

// Package wavwriter writes the audio output of an emulator to disk as a WAV
// file. Audio data is buffered in memory in its entirety and written to disk
// when EndMixing() is called. It is therefore only suitable for short
// recordings and testing.
package wavwriter

import (
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/emulite/emulite/curated"
	emuaudio "github.com/emulite/emulite/hardware/peripherals/audio"
	"github.com/emulite/emulite/logger"
)

const bitDepth = 16

// the format tag for uncompressed PCM data.
const pcmFormat = 1

// WavWriter implements the audio.Sink interface.
type WavWriter struct {
	filename string

	rate     int
	channels int
	buffer   []int
}

// New is the preferred method of initialisation for the WavWriter type.
func New(filename string) (*WavWriter, error) {
	if filename == "" {
		return nil, curated.Errorf("wavwriter: no filename")
	}
	return &WavWriter{
		filename: filename,
	}, nil
}

// NewBuffer implements the audio.Sink interface. Buffers with a different
// format to the first buffer are ignored.
func (aw *WavWriter) NewBuffer(b emuaudio.Buffer) {
	if aw.rate == 0 {
		aw.rate = b.Rate
		aw.channels = b.Channels
	}
	if b.Rate != aw.rate || b.Channels != aw.channels {
		return
	}
	for _, s := range b.Data {
		aw.buffer = append(aw.buffer, int(s))
	}
}

// Samples returns the number of sample frames waiting to be written.
func (aw *WavWriter) Samples() int {
	if aw.channels == 0 {
		return 0
	}
	return len(aw.buffer) / aw.channels
}

// EndMixing writes the buffered audio to the file.
func (aw *WavWriter) EndMixing() (rerr error) {
	if aw.rate == 0 {
		return curated.Errorf("wavwriter: no audio to write")
	}

	f, err := os.Create(aw.filename)
	if err != nil {
		return curated.Errorf("wavwriter: %v", err)
	}
	defer func() {
		err := f.Close()
		if err != nil && rerr == nil {
			rerr = curated.Errorf("wavwriter: %v", err)
		}
	}()

	enc := wav.NewEncoder(f, aw.rate, bitDepth, aw.channels, pcmFormat)

	buf := &audio.IntBuffer{
		Format: &audio.Format{
			NumChannels: aw.channels,
			SampleRate:  aw.rate,
		},
		Data:           aw.buffer,
		SourceBitDepth: bitDepth,
	}

	logger.Logf(logger.Allow, "wavwriter", "writing audio to %s", aw.filename)

	err = enc.Write(buf)
	if err != nil {
		return curated.Errorf("wavwriter: %v", err)
	}
	err = enc.Close()
	if err != nil {
		return curated.Errorf("wavwriter: %v", err)
	}

	return nil
}

// Reset discards all buffered audio.
func (aw *WavWriter) Reset() {
	aw.buffer = aw.buffer[:0]
	aw.rate = 0
	aw.channels = 0
}
