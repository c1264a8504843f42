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
	"github.com/emulite/emulite/savestate"
)

// Voice is a square wave tone generator.
type Voice struct {
	// frequency in Hz. a frequency of zero is silent
	Frequency float64

	// volume in the range 0 to 1
	Volume float64

	// fraction of each period where the output is high. a value of zero is
	// treated as 0.5
	Duty float64

	Enabled bool

	// position in the current period, in the range 0 to 1
	phase float64
}

// Sample returns the next sample of the voice, in the range -1 to 1, and
// advances the phase for the sample rate.
func (v *Voice) Sample(rate int) float64 {
	if !v.Enabled || v.Frequency <= 0 || v.Volume <= 0 || rate <= 0 {
		return 0
	}

	duty := v.Duty
	if duty <= 0 || duty >= 1 {
		duty = 0.5
	}

	var s float64
	if v.phase < duty {
		s = v.Volume
	} else {
		s = -v.Volume
	}

	v.phase += v.Frequency / float64(rate)
	for v.phase >= 1 {
		v.phase--
	}

	return s
}

// Silence disables the voice and resets its phase.
func (v *Voice) Silence() {
	*v = Voice{}
}

// SaveState implements the savestate.Snapshotter interface. Floating point
// values are stored with 1/65536 precision.
func (v *Voice) SaveState(enc *savestate.Encoder) {
	enc.Uint(1, fixed(v.Frequency))
	enc.Uint(2, fixed(v.Volume))
	enc.Uint(3, fixed(v.Duty))
	enc.Bool(4, v.Enabled)
	enc.Uint(5, fixed(v.phase))
}

// RestoreState implements the savestate.Snapshotter interface.
func (v *Voice) RestoreState(dec *savestate.Decoder) error {
	v.Frequency = fromFixed(dec.Uint(1))
	v.Volume = fromFixed(dec.Uint(2))
	v.Duty = fromFixed(dec.Uint(3))
	v.Enabled = dec.Bool(4)
	v.phase = fromFixed(dec.Uint(5))
	return nil
}

func fixed(f float64) uint64 {
	if f < 0 {
		return 0
	}
	return uint64(f*65536 + 0.5)
}

func fromFixed(v uint64) float64 {
	return float64(v) / 65536
}
