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

package config_test

import (
	"errors"
	"testing"

	"github.com/emulite/emulite/config"
	"github.com/emulite/emulite/test"
)

func TestDefaults(t *testing.T) {
	cfg := config.NewConfig()
	test.ExpectEquality(t, cfg.SampleRate(), 44100)
	test.ExpectEquality(t, cfg.Channels(), 2)
	test.ExpectEquality(t, cfg.BufferSize(), 1024)
	test.ExpectEquality(t, cfg.Speed(), 1.0)
	test.ExpectEquality(t, cfg.FrameSkip(), 0)
	test.ExpectEquality(t, cfg.DebugEnabled(), false)
	test.ExpectEquality(t, cfg.TraceEntries(), 10000)

	w, h := cfg.Dimensions()
	test.ExpectEquality(t, w, 0)
	test.ExpectEquality(t, h, 0)
}

func TestRangeChecks(t *testing.T) {
	cfg := config.NewConfig()

	err := cfg.Audio.Channels.Set(0)
	test.ExpectSuccess(t, errors.Is(err, config.RangeError))
	test.ExpectEquality(t, cfg.Channels(), 2)

	err = cfg.Emulation.Speed.Set(0.0)
	test.ExpectSuccess(t, errors.Is(err, config.RangeError))

	err = cfg.Emulation.Speed.Set(17.0)
	test.ExpectSuccess(t, errors.Is(err, config.RangeError))

	test.ExpectSuccess(t, cfg.Emulation.Speed.Set(2.5))
	test.ExpectEquality(t, cfg.Speed(), 2.5)

	err = cfg.Audio.SampleRate.Set(100)
	test.ExpectSuccess(t, errors.Is(err, config.RangeError))

	err = cfg.Video.Width.Set(-1)
	test.ExpectSuccess(t, errors.Is(err, config.RangeError))
}

func TestCommandLine(t *testing.T) {
	cfg := config.NewConfig()

	test.ExpectSuccess(t, cfg.ApplyCommandLine("audio.samplerate::48000; debug.enabled::true; video.width::320"))
	test.ExpectEquality(t, cfg.SampleRate(), 48000)
	test.ExpectEquality(t, cfg.DebugEnabled(), true)
	w, _ := cfg.Dimensions()
	test.ExpectEquality(t, w, 320)

	// unrecognised keys are reported
	test.ExpectFailure(t, cfg.ApplyCommandLine("audio.volume::11"))

	// range errors are reported
	err := cfg.ApplyCommandLine("audio.channels::9")
	test.ExpectSuccess(t, errors.Is(err, config.RangeError))

	test.ExpectSuccess(t, cfg.Set("emulation.frameskip", 2))
	test.ExpectEquality(t, cfg.FrameSkip(), 2)
	test.ExpectFailure(t, cfg.Set("foo", 2))
}
