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

package emulation_test

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/emulite/emulite/config"
	"github.com/emulite/emulite/emulation"
	"github.com/emulite/emulite/hardware/memory"
	"github.com/emulite/emulite/hardware/memory/cartridge"
	"github.com/emulite/emulite/hardware/peripherals/video"
	"github.com/emulite/emulite/hardware/platform"
	"github.com/emulite/emulite/savestate"
	"github.com/emulite/emulite/test"
)

// JMP $8000
var jumpLoop = []uint8{0x4c, 0x00, 0x80}

// INC $0200; JMP $8000
var counterLoop = []uint8{0xee, 0x00, 0x02, 0x4c, 0x00, 0x80}

func newEmulator(t *testing.T, cfg *config.Config, rom []uint8) *emulation.Emulator {
	t.Helper()
	emu, err := emulation.NewEmulator(cfg)
	test.DemandSuccess(t, err)
	test.DemandSuccess(t, emu.Load("generic", rom))
	t.Cleanup(func() {
		_ = emu.Stop()
	})
	return emu
}

func peek(t *testing.T, emu *emulation.Emulator, address uint32) uint8 {
	t.Helper()
	var v uint8
	err := emu.Checkpoint(func(p *platform.Platform) error {
		var err error
		v, err = p.Bus().Peek(address)
		return err
	})
	test.DemandSuccess(t, err)
	return v
}

func receiveFrame(t *testing.T, emu *emulation.Emulator) video.Frame {
	t.Helper()
	select {
	case f := <-emu.Frames():
		return f
	case <-time.After(5 * time.Second):
		t.Fatalf("no frame received")
	}
	return video.Frame{}
}

func TestLifecycle(t *testing.T) {
	emu, err := emulation.NewEmulator(nil)
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, emu.State(), emulation.Empty)

	_, err = emu.StepInstruction()
	test.ExpectEquality(t, errors.Is(err, emulation.StateError), true)

	err = emu.Load("amiga", jumpLoop)
	test.ExpectEquality(t, errors.Is(err, platform.UnsupportedError), true)
	test.ExpectEquality(t, emu.State(), emulation.Empty)

	err = emu.Load("generic", nil)
	test.ExpectEquality(t, errors.Is(err, cartridge.FormatError), true)
	test.ExpectEquality(t, emu.State(), emulation.Empty)

	test.DemandSuccess(t, emu.Load("generic", jumpLoop))
	test.ExpectEquality(t, emu.State(), emulation.Loaded)
	test.ExpectFailure(t, emu.Load("generic", jumpLoop))

	n, err := emu.StepInstruction()
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, n, 3)
	c := emu.Counters()
	test.ExpectEquality(t, c.Instructions, uint64(1))
	test.ExpectEquality(t, c.Cycles, uint64(3))

	test.ExpectSuccess(t, emu.Pause())
	test.ExpectEquality(t, emu.State(), emulation.Paused)
	test.ExpectSuccess(t, emu.Resume())
	test.ExpectEquality(t, emu.State(), emulation.Loaded)
	test.ExpectFailure(t, emu.Resume())

	test.ExpectSuccess(t, emu.Reset())
	test.ExpectEquality(t, emu.Counters().Instructions, uint64(0))

	test.ExpectSuccess(t, emu.Stop())
	test.ExpectEquality(t, emu.State(), emulation.Stopped)
	test.ExpectSuccess(t, emu.Stop())

	// presentation channels are closed by Stop()
	for range emu.Frames() {
	}
	_, ok := <-emu.Faults()
	test.ExpectEquality(t, ok, false)

	test.ExpectEquality(t, errors.Is(emu.RunFrame(), emulation.StateError), true)
}

func TestRunFrame(t *testing.T) {
	emu := newEmulator(t, nil, jumpLoop)
	test.DemandSuccess(t, emu.RunFrame())
	test.ExpectEquality(t, emu.Counters().Frames, 1)

	f := receiveFrame(t, emu)
	test.ExpectEquality(t, f.Number, 0)
	test.ExpectEquality(t, f.Width, 32)
	test.ExpectEquality(t, f.Height, 32)
}

func TestScaling(t *testing.T) {
	cfg := config.NewConfig()
	test.DemandSuccess(t, cfg.Video.Width.Set(64))
	test.DemandSuccess(t, cfg.Video.Height.Set(48))

	emu := newEmulator(t, cfg, jumpLoop)
	test.DemandSuccess(t, emu.RunFrame())

	f := receiveFrame(t, emu)
	test.ExpectEquality(t, f.Width, 64)
	test.ExpectEquality(t, f.Height, 48)
	test.ExpectEquality(t, len(f.Pixels), 64*48*4)
}

func TestFrameSkip(t *testing.T) {
	cfg := config.NewConfig()
	test.DemandSuccess(t, cfg.Emulation.FrameSkip.Set(1))

	emu := newEmulator(t, cfg, jumpLoop)
	for i := 0; i < 4; i++ {
		test.DemandSuccess(t, emu.RunFrame())
	}

	test.ExpectEquality(t, receiveFrame(t, emu).Number, 0)
	test.ExpectEquality(t, receiveFrame(t, emu).Number, 2)

	select {
	case f := <-emu.Frames():
		t.Errorf("unexpected frame %d", f.Number)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestFault(t *testing.T) {
	// STA $8000; JMP $8000
	emu := newEmulator(t, nil, []uint8{0x8d, 0x00, 0x80, 0x4c, 0x00, 0x80})

	err := emu.RunFrame()
	test.ExpectFailure(t, err)
	test.ExpectEquality(t, errors.Is(err, memory.FaultError), true)
	test.ExpectEquality(t, emu.State(), emulation.Paused)
	test.ExpectEquality(t, errors.Is(emu.LastFault(), memory.FaultError), true)

	select {
	case err := <-emu.Faults():
		test.ExpectEquality(t, errors.Is(err, memory.FaultError), true)
	default:
		t.Errorf("fault not delivered")
	}

	// the step completed despite the fault
	test.ExpectEquality(t, emu.Counters().Instructions, uint64(1))
}

func TestSnapshot(t *testing.T) {
	emu := newEmulator(t, nil, counterLoop)
	test.DemandSuccess(t, emu.RunFrame())
	test.DemandSuccess(t, emu.RunFrame())

	s, err := emu.Snapshot()
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, s.Platform, "generic")
	test.ExpectEquality(t, s.Frame, 2)

	for i := 0; i < 3; i++ {
		test.DemandSuccess(t, emu.RunFrame())
	}
	v := peek(t, emu, 0x0200)
	c := emu.Counters()

	test.DemandSuccess(t, emu.Restore(s))
	test.ExpectEquality(t, emu.Counters().Frames, 2)
	test.ExpectEquality(t, emu.Counters().Cycles, s.Cycles)

	for i := 0; i < 3; i++ {
		test.DemandSuccess(t, emu.RunFrame())
	}
	test.ExpectEquality(t, peek(t, emu, 0x0200), v)
	test.ExpectEquality(t, emu.Counters(), c)
}

func TestStateFile(t *testing.T) {
	emu := newEmulator(t, nil, counterLoop)
	for i := 0; i < 3; i++ {
		test.DemandSuccess(t, emu.RunFrame())
	}
	v := peek(t, emu, 0x0200)

	var b bytes.Buffer
	test.DemandSuccess(t, emu.SaveState(&b))

	s, err := emulation.ReadState(bytes.NewReader(b.Bytes()))
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, s.Platform, "generic")
	test.ExpectEquality(t, s.Frame, 3)

	other := newEmulator(t, nil, counterLoop)
	test.DemandSuccess(t, other.LoadState(&b))
	test.ExpectEquality(t, other.Counters(), emu.Counters())
	test.ExpectEquality(t, peek(t, other, 0x0200), v)

	err = other.LoadState(bytes.NewReader([]byte("not a state file")))
	test.ExpectEquality(t, errors.Is(err, savestate.CorruptError), true)
	test.ExpectEquality(t, other.Counters(), emu.Counters())
}

func TestRestoreWrongPlatform(t *testing.T) {
	emu := newEmulator(t, nil, jumpLoop)
	s, err := emu.Snapshot()
	test.DemandSuccess(t, err)

	other, err := emulation.NewEmulator(nil)
	test.DemandSuccess(t, err)
	defer other.Stop()

	rom := make([]uint8, 4096)
	rom[0xffc] = 0x00
	rom[0xffd] = 0xf0
	test.DemandSuccess(t, other.Load("atari", rom))

	err = other.Restore(s)
	test.ExpectEquality(t, errors.Is(err, savestate.CorruptError), true)
}

func TestCheats(t *testing.T) {
	emu := newEmulator(t, nil, counterLoop)
	test.DemandSuccess(t, emu.AddCheat(0x0300, 0x42))
	test.DemandSuccess(t, emu.AddCheat(0x0301, 0x01))
	test.DemandSuccess(t, emu.AddCheat(0x0300, 0x43))
	test.ExpectEquality(t, len(emu.Cheats()), 2)

	test.DemandSuccess(t, emu.RunFrame())
	test.ExpectEquality(t, peek(t, emu, 0x0300), uint8(0x43))
	test.ExpectEquality(t, peek(t, emu, 0x0301), uint8(0x01))

	test.ExpectEquality(t, emu.RemoveCheat(0x0301), true)
	test.ExpectEquality(t, emu.RemoveCheat(0x0301), false)
	test.DemandEquality(t, len(emu.Cheats()), 1)
	test.ExpectEquality(t, emu.Cheats()[0], emulation.Cheat{Address: 0x0300, Value: 0x43})

	// addresses outside the address space are rejected
	test.ExpectFailure(t, emu.AddCheat(0x10000, 0x01))
}

func TestRewind(t *testing.T) {
	emu := newEmulator(t, nil, counterLoop)

	values := make(map[int]uint8)
	for i := 0; i < 70; i++ {
		test.DemandSuccess(t, emu.RunFrame())
		values[emu.Counters().Frames] = peek(t, emu, 0x0200)
	}

	fr := emu.RewindFrames()
	test.ExpectEquality(t, fr.Start, 0)
	test.ExpectEquality(t, fr.End, 60)

	fn, err := emu.RewindTo(35)
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, fn, 35)
	test.ExpectEquality(t, emu.Counters().Frames, 35)
	test.ExpectEquality(t, peek(t, emu, 0x0200), values[35])

	// running on from the rewound frame reaches the same state
	for i := 0; i < 10; i++ {
		test.DemandSuccess(t, emu.RunFrame())
	}
	test.ExpectEquality(t, peek(t, emu, 0x0200), values[45])
}

func TestStartStop(t *testing.T) {
	emu := newEmulator(t, nil, jumpLoop)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	test.DemandSuccess(t, emu.Start(ctx))
	test.ExpectEquality(t, emu.State(), emulation.Running)
	test.ExpectFailure(t, emu.Start(ctx))

	// synchronous driving is not allowed while the loop is running
	_, err := emu.StepInstruction()
	test.ExpectEquality(t, errors.Is(err, emulation.StateError), true)

	receiveFrame(t, emu)

	test.ExpectSuccess(t, emu.Pause())
	test.ExpectEquality(t, emu.State(), emulation.Paused)
	test.ExpectSuccess(t, emu.Resume())
	test.ExpectEquality(t, emu.State(), emulation.Running)

	test.ExpectSuccess(t, emu.Stop())
	test.ExpectEquality(t, emu.State(), emulation.Stopped)
}
