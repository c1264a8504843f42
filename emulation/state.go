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

package emulation

import (
	"io"

	"github.com/emulite/emulite/curated"
	"github.com/emulite/emulite/hardware/platform"
	"github.com/emulite/emulite/rewind"
	"github.com/emulite/emulite/savestate"
)

// EmulatorState is a snapshot of the emulation taken between two steps. The
// snapshot is a deep copy and is unaffected by further emulation.
type EmulatorState struct {
	// the identifier of the platform the state was taken from
	Platform string

	Frame        int
	Cycles       uint64
	Instructions uint64

	// the encoded state of the platform
	Data []byte
}

// state files start with this string.
const stateMagic = "emulite state"

const stateVersion = 1

func (emu *Emulator) snapshot(p *platform.Platform) *EmulatorState {
	enc := savestate.NewEncoder()
	p.SaveState(enc)
	return &EmulatorState{
		Platform:     p.ID(),
		Frame:        p.Frame(),
		Cycles:       p.Cycles(),
		Instructions: p.Instructions(),
		Data:         append([]byte(nil), enc.Data()...),
	}
}

// restore the state. if the state cannot be decoded the platform is returned
// to the state it was in before the call.
func (emu *Emulator) restore(p *platform.Platform, s *EmulatorState) error {
	if s == nil {
		return curated.Errorf("emulation: %v: no state", savestate.CorruptError)
	}
	if s.Platform != p.ID() {
		return curated.Errorf("emulation: %v: state is for %s not %s", savestate.CorruptError, s.Platform, p.ID())
	}

	dec, err := savestate.NewDecoder(s.Data)
	if err != nil {
		return curated.Errorf("emulation: %v", err)
	}

	backup := emu.snapshot(p)
	if err := p.RestoreState(dec); err != nil {
		if dec, derr := savestate.NewDecoder(backup.Data); derr == nil {
			_ = p.RestoreState(dec)
		}
		return curated.Errorf("emulation: %v", err)
	}

	emu.frame = p.Frame()
	emu.lastFault = nil
	return nil
}

// Snapshot returns a copy of the current state of the emulation.
func (emu *Emulator) Snapshot() (*EmulatorState, error) {
	var s *EmulatorState
	err := emu.Checkpoint(func(p *platform.Platform) error {
		s = emu.snapshot(p)
		return nil
	})
	return s, err
}

// Restore a state returned by Snapshot(). A state taken from a different
// platform is rejected and the emulation is unchanged.
func (emu *Emulator) Restore(s *EmulatorState) error {
	return emu.Checkpoint(func(p *platform.Platform) error {
		return emu.restore(p, s)
	})
}

// SaveState writes the current state of the emulation to a state file.
func (emu *Emulator) SaveState(w io.Writer) error {
	s, err := emu.Snapshot()
	if err != nil {
		return err
	}

	enc := savestate.NewEncoder()
	enc.String(1, stateMagic)
	enc.Uint(2, stateVersion)
	enc.String(3, s.Platform)
	enc.Int(4, int64(s.Frame))
	enc.Uint(5, s.Cycles)
	enc.Uint(6, s.Instructions)
	enc.Bytes(7, s.Data)

	if _, err := w.Write(enc.Data()); err != nil {
		return curated.Errorf("emulation: %v", err)
	}
	return nil
}

// ReadState reads a state file without restoring it.
func ReadState(r io.Reader) (*EmulatorState, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, curated.Errorf("emulation: %v", err)
	}

	dec, err := savestate.NewDecoder(b)
	if err != nil {
		return nil, curated.Errorf("emulation: %v", err)
	}
	if dec.String(1) != stateMagic {
		return nil, curated.Errorf("emulation: %v: not a state file", savestate.CorruptError)
	}
	if v := dec.Uint(2); v != stateVersion {
		return nil, curated.Errorf("emulation: %v: unsupported state file version (%d)", savestate.CorruptError, v)
	}

	return &EmulatorState{
		Platform:     dec.String(3),
		Frame:        int(dec.Int(4)),
		Cycles:       dec.Uint(5),
		Instructions: dec.Uint(6),
		Data:         dec.Bytes(7),
	}, nil
}

// LoadState reads a state file and restores it.
func (emu *Emulator) LoadState(r io.Reader) error {
	s, err := ReadState(r)
	if err != nil {
		return err
	}
	return emu.Restore(s)
}

// rewindRunner implements the rewind.Runner interface. It is only used with
// the execution lock held.
type rewindRunner struct {
	emu *Emulator
}

// Plumb implements the rewind.Runner interface.
func (r rewindRunner) Plumb(s *rewind.State) error {
	dec, err := savestate.NewDecoder(s.Data)
	if err != nil {
		return err
	}
	if err := r.emu.plat.RestoreState(dec); err != nil {
		return err
	}
	r.emu.frame = r.emu.plat.Frame()
	return nil
}

// CatchUpLoop implements the rewind.Runner interface. The step hooks are not
// called and logging is suppressed.
func (r rewindRunner) CatchUpLoop(frame int) error {
	emu := r.emu

	emu.catchingUp.Store(true)
	defer emu.catchingUp.Store(false)

	hooks := emu.hooks
	emu.hooks = nil
	defer func() {
		emu.hooks = hooks
	}()

	for n := 0; emu.plat.Frame() < frame; n++ {
		if n >= maxFrameSteps*(frame-emu.plat.Frame()) {
			return curated.Errorf("emulation: frame %d not reached", frame)
		}
		// faults were seen the first time the frames were run
		_, _, _ = emu.step()
	}
	return nil
}

func (emu *Emulator) takeRewind() (*rewind.State, error) {
	enc := savestate.NewEncoder()
	emu.plat.SaveState(enc)
	return &rewind.State{Data: append([]byte(nil), enc.Data()...)}, nil
}

func (emu *Emulator) resetRewind() error {
	s, err := emu.takeRewind()
	if err != nil {
		return err
	}
	s.Frame = emu.plat.Frame()
	emu.rewind.Reset(s)
	return nil
}

// RewindTo moves the emulation to a frame in the rewind history. The
// nearest earlier snapshot is restored and the platform run forward to the
// frame. Frames outside the history are clamped to the earliest or latest
// snapshot. Only allowed when the emulator is loaded or paused. Returns the
// frame reached.
func (emu *Emulator) RewindTo(frame int) (int, error) {
	emu.crit.Lock()
	defer emu.crit.Unlock()
	if err := emu.synchronous(); err != nil {
		return 0, err
	}
	fn, err := emu.rewind.GotoFrame(frame)
	if err != nil {
		return 0, curated.Errorf("emulation: %v", err)
	}
	return fn, nil
}

// RewindFrames returns the range of frames in the rewind history.
func (emu *Emulator) RewindFrames() rewind.Frames {
	emu.crit.Lock()
	defer emu.crit.Unlock()
	return emu.rewind.GetFrames()
}
