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

// Package config holds the structured configuration supplied to the emulator
// by its host. Only the fields listed in the Config type are recognised.
//
// Values are range checked when they are set but no other validation takes
// place. A value failing a range check is not stored and the error returned
// wraps RangeError.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/emulite/emulite/curated"
	"github.com/emulite/emulite/prefs"
)

// RangeError is wrapped by all errors returned when a value is outside its
// permitted range.
var RangeError = errors.New("value out of range")

// Video configuration. A Width or Height of zero means the native resolution
// of the platform.
type Video struct {
	Width  prefs.Int
	Height prefs.Int
}

// Audio configuration. BufferSize is measured in sample frames (one sample per
// channel).
type Audio struct {
	SampleRate prefs.Int
	Channels   prefs.Int
	BufferSize prefs.Int
}

// Emulation configuration.
type Emulation struct {
	Speed     prefs.Float
	FrameSkip prefs.Int
}

// Debug configuration.
type Debug struct {
	Enabled      prefs.Bool
	TraceEntries prefs.Int
}

// Config is the complete configuration for an emulator instance.
type Config struct {
	Video     Video
	Audio     Audio
	Emulation Emulation
	Debug     Debug
}

// default values.
const (
	DefaultSampleRate   = 44100
	DefaultChannels     = 2
	DefaultBufferSize   = 1024
	DefaultSpeed        = 1.0
	DefaultTraceEntries = 10000
)

// NewConfig returns a configuration with default values and range checks
// installed.
func NewConfig() *Config {
	cfg := &Config{}

	cfg.Video.Width.SetHookPre(intRange("video.width", 0, 4096))
	cfg.Video.Height.SetHookPre(intRange("video.height", 0, 4096))
	cfg.Audio.SampleRate.SetHookPre(intRange("audio.samplerate", 8000, 192000))
	cfg.Audio.Channels.SetHookPre(intRange("audio.channels", 1, 8))
	cfg.Audio.BufferSize.SetHookPre(intRange("audio.buffersize", 64, 65536))
	cfg.Emulation.FrameSkip.SetHookPre(intRange("emulation.frameskip", 0, 60))
	cfg.Debug.TraceEntries.SetHookPre(intRange("debug.traceentries", 1, 1000000))
	cfg.Emulation.Speed.SetHookPre(func(v prefs.Value) error {
		f := v.(float64)
		if f <= 0 || f > 16 {
			return curated.Errorf("config: %v: emulation.speed must be greater than 0 and at most 16 (%.3f)", RangeError, f)
		}
		return nil
	})

	// defaults are all within range
	_ = cfg.Audio.SampleRate.Set(DefaultSampleRate)
	_ = cfg.Audio.Channels.Set(DefaultChannels)
	_ = cfg.Audio.BufferSize.Set(DefaultBufferSize)
	_ = cfg.Emulation.Speed.Set(DefaultSpeed)
	_ = cfg.Debug.TraceEntries.Set(DefaultTraceEntries)

	return cfg
}

func intRange(key string, min int, max int) func(prefs.Value) error {
	return func(v prefs.Value) error {
		n := v.(int)
		if n < min || n > max {
			return curated.Errorf("config: %v: %s must be between %d and %d (%d)", RangeError, key, min, max, n)
		}
		return nil
	}
}

// entries returns every preference in the configuration keyed by name.
func (cfg *Config) entries() []struct {
	key string
	p   prefs.Pref
} {
	return []struct {
		key string
		p   prefs.Pref
	}{
		{"video.width", &cfg.Video.Width},
		{"video.height", &cfg.Video.Height},
		{"audio.samplerate", &cfg.Audio.SampleRate},
		{"audio.channels", &cfg.Audio.Channels},
		{"audio.buffersize", &cfg.Audio.BufferSize},
		{"emulation.speed", &cfg.Emulation.Speed},
		{"emulation.frameskip", &cfg.Emulation.FrameSkip},
		{"debug.enabled", &cfg.Debug.Enabled},
		{"debug.traceentries", &cfg.Debug.TraceEntries},
	}
}

// ApplyCommandLine sets configuration values from a prefs string of
// "key::value" pairs. Keys that are not recognised are returned as an error
// after all recognised values have been applied.
func (cfg *Config) ApplyCommandLine(s string) error {
	cl := prefs.ParseCommandLine(s)
	for _, e := range cfg.entries() {
		if err := cl.Apply(e.key, e.p); err != nil {
			return err
		}
	}
	if u := cl.Unused(); u != "" {
		return curated.Errorf("config: unrecognised preferences: %s", u)
	}
	return nil
}

// Set a configuration value by key.
func (cfg *Config) Set(key string, v prefs.Value) error {
	for _, e := range cfg.entries() {
		if e.key == key {
			return e.p.Set(v)
		}
	}
	return curated.Errorf("config: unrecognised preference: %s", key)
}

func (cfg *Config) String() string {
	s := strings.Builder{}
	for i, e := range cfg.entries() {
		if i > 0 {
			s.WriteString("; ")
		}
		s.WriteString(fmt.Sprintf("%s::%s", e.key, e.p.String()))
	}
	return s.String()
}

// Accessors returning native types.

// SampleRate returns the configured audio sample rate.
func (cfg *Config) SampleRate() int {
	return cfg.Audio.SampleRate.Get().(int)
}

// Channels returns the configured number of audio channels.
func (cfg *Config) Channels() int {
	return cfg.Audio.Channels.Get().(int)
}

// BufferSize returns the configured audio buffer size in sample frames.
func (cfg *Config) BufferSize() int {
	return cfg.Audio.BufferSize.Get().(int)
}

// Speed returns the emulation speed multiplier.
func (cfg *Config) Speed() float64 {
	return cfg.Emulation.Speed.Get().(float64)
}

// FrameSkip returns the number of frames skipped between presented frames.
func (cfg *Config) FrameSkip() int {
	return cfg.Emulation.FrameSkip.Get().(int)
}

// Dimensions returns the configured video dimensions. Zero values mean the
// native dimension of the platform.
func (cfg *Config) Dimensions() (int, int) {
	return cfg.Video.Width.Get().(int), cfg.Video.Height.Get().(int)
}

// DebugEnabled returns true if a debugger may be attached.
func (cfg *Config) DebugEnabled() bool {
	return cfg.Debug.Enabled.Get().(bool)
}

// TraceEntries returns the capacity of the debugger's execution trace.
func (cfg *Config) TraceEntries() int {
	return cfg.Debug.TraceEntries.Get().(int)
}
