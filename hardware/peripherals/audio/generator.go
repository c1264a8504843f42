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

import (
	"math"

	"github.com/emulite/emulite/curated"
	"github.com/emulite/emulite/hardware/clocks"
	"github.com/emulite/emulite/savestate"
)

// Generator is a sample stepper. It implements the peripherals.Stepper
// interface.
type Generator struct {
	label    string
	ratio    clocks.Ratio
	rate     int
	channels int
	size     int

	voices []*Voice
	sink   Sink

	// samples of the buffer being filled
	data []int16

	// total number of sample frames generated since reset
	generated uint64
}

// NewGenerator is the preferred method of initialisation for the Generator
// type. The CPU clock is in Hz. The buffer size is in sample frames.
func NewGenerator(label string, cpuClock int, rate int, channels int, size int, voices ...*Voice) (*Generator, error) {
	if cpuClock <= 0 || rate <= 0 {
		return nil, curated.Errorf("audio: %s: invalid clock (%d) or sample rate (%d)", label, cpuClock, rate)
	}
	if channels <= 0 || size <= 0 {
		return nil, curated.Errorf("audio: %s: invalid channels (%d) or buffer size (%d)", label, channels, size)
	}

	return &Generator{
		label:    label,
		ratio:    clocks.Ratio{Cycles: cpuClock, Per: rate},
		rate:     rate,
		channels: channels,
		size:     size,
		voices:   voices,
		data:     make([]int16, 0, size*channels),
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

// Rate returns the sample rate of the generator.
func (gen *Generator) Rate() int {
	return gen.rate
}

// Channels returns the number of interleaved channels.
func (gen *Generator) Channels() int {
	return gen.channels
}

// Voices returns the number of voices mixed by the generator.
func (gen *Generator) Voices() int {
	return len(gen.voices)
}

// Generated returns the number of sample frames generated since reset.
func (gen *Generator) Generated() uint64 {
	return gen.generated
}

// SetSink sets the destination for completed buffers. A nil sink discards
// buffers.
func (gen *Generator) SetSink(sink Sink) {
	gen.sink = sink
}

// Tick implements the peripherals.Stepper interface. It generates one sample
// frame.
func (gen *Generator) Tick() error {
	var mix float64
	for _, v := range gen.voices {
		mix += v.Sample(gen.rate)
	}
	if len(gen.voices) > 1 {
		mix /= float64(len(gen.voices))
	}

	s := int16(math.Round(mix * math.MaxInt16))
	for c := 0; c < gen.channels; c++ {
		gen.data = append(gen.data, s)
	}
	gen.generated++

	if len(gen.data) >= gen.size*gen.channels {
		gen.flush()
	}

	return nil
}

func (gen *Generator) flush() {
	if len(gen.data) == 0 {
		return
	}
	if gen.sink != nil {
		b := Buffer{
			Rate:     gen.rate,
			Channels: gen.channels,
			Data:     make([]int16, len(gen.data)),
		}
		copy(b.Data, gen.data)
		gen.sink.NewBuffer(b)
	}
	gen.data = gen.data[:0]
}

// Reset implements the peripherals.Stepper interface. Samples in the current
// buffer are discarded.
func (gen *Generator) Reset() {
	for _, v := range gen.voices {
		v.Silence()
	}
	gen.data = gen.data[:0]
	gen.generated = 0
}

// Release frees the sample buffer.
func (gen *Generator) Release() {
	gen.data = nil
	gen.sink = nil
}

// SaveState implements the savestate.Snapshotter interface. Samples waiting
// in the current buffer are not part of the state.
func (gen *Generator) SaveState(enc *savestate.Encoder) {
	enc.Uint(1, gen.generated)
	for _, v := range gen.voices {
		enc.Snapshot(2, v)
	}
}

// RestoreState implements the savestate.Snapshotter interface.
func (gen *Generator) RestoreState(dec *savestate.Decoder) error {
	gen.generated = dec.Uint(1)

	voices, err := dec.Messages(2)
	if err != nil {
		return err
	}
	if len(voices) != len(gen.voices) {
		return curated.Errorf("audio: %v: %d voices in state", savestate.CorruptError, len(voices))
	}
	for i, v := range gen.voices {
		if err := v.RestoreState(voices[i]); err != nil {
			return err
		}
	}
	gen.data = gen.data[:0]
	return nil
}
