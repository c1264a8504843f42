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
	"context"
	"errors"
	"math"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/emulite/emulite/config"
	"github.com/emulite/emulite/curated"
	"github.com/emulite/emulite/hardware/peripherals/audio"
	"github.com/emulite/emulite/hardware/peripherals/input"
	"github.com/emulite/emulite/hardware/peripherals/video"
	"github.com/emulite/emulite/hardware/platform"
	"github.com/emulite/emulite/logger"
	"github.com/emulite/emulite/rewind"
)

// StateError is wrapped by errors returned when an operation is not allowed
// in the current state of the emulator.
var StateError = errors.New("invalid emulator state")

const faultQueue = 16

// the most steps taken for a single frame. a platform that never completes a
// frame must still return control.
const maxFrameSteps = 20000000

// Emulator runs a single platform.
type Emulator struct {
	cfg *config.Config

	// the execution lock. held for every step and by Checkpoint()
	crit sync.Mutex

	state atomic.Int32

	plat  *platform.Platform
	hooks Hooks

	// frame number at the most recent frame boundary
	frame int

	cheats []Cheat
	rewind *rewind.Rewind

	// catchingUp is true while the rewind system is running the platform.
	// logging is suppressed
	catchingUp atomic.Bool

	pres      *presenter
	faults    chan error
	lastFault error

	group   *errgroup.Group
	cancel  context.CancelFunc
	started bool

	// closed when Stop() is called
	done <-chan struct{}

	// the most recent measurement of the frame rate, stored as float64 bits
	fps atomic.Uint64
}

// NewEmulator is the preferred method of initialisation for the Emulator
// type. A nil configuration is replaced by the default configuration.
func NewEmulator(cfg *config.Config) (*Emulator, error) {
	if cfg == nil {
		cfg = config.NewConfig()
	}

	// values are range checked when they are set. a configuration created
	// without NewConfig() has no values at all
	if cfg.SampleRate() == 0 || cfg.Channels() == 0 || cfg.BufferSize() == 0 || cfg.Speed() == 0 {
		return nil, curated.Errorf("emulation: %v: configuration has not been initialised", config.RangeError)
	}

	w, h := cfg.Dimensions()
	emu := &Emulator{
		cfg:    cfg,
		pres:   newPresenter(cfg.FrameSkip(), w, h),
		faults: make(chan error, faultQueue),
	}
	emu.rewind = rewind.NewRewind(rewindRunner{emu: emu}, rewind.DefaultEntries, rewind.DefaultFrequency)
	emu.state.Store(int32(Empty))
	return emu, nil
}

// AllowLogging implements the logger.Permission interface.
func (emu *Emulator) AllowLogging() bool {
	return !emu.catchingUp.Load()
}

// State returns the current state of the emulator.
func (emu *Emulator) State() State {
	return State(emu.state.Load())
}

func (emu *Emulator) setState(s State) {
	emu.state.Store(int32(s))
}

// Config returns the configuration of the emulator.
func (emu *Emulator) Config() *config.Config {
	return emu.cfg
}

// Load creates the platform, loads the image and resets the platform. The
// platform is named by its identifier or one of its aliases.
//
// An image can only be loaded into an empty emulator.
func (emu *Emulator) Load(platformID string, rom []uint8) error {
	emu.crit.Lock()
	defer emu.crit.Unlock()

	if emu.State() != Empty {
		return curated.Errorf("emulation: %v: cannot load when %s", StateError, emu.State())
	}

	p, err := platform.Create(platformID, emu.cfg)
	if err != nil {
		return curated.Errorf("emulation: %v", err)
	}
	p.SetLogPermission(emu)

	if err := p.Load(rom); err != nil {
		p.Release()
		return curated.Errorf("emulation: %v", err)
	}
	if err := p.Reset(); err != nil {
		p.Release()
		return curated.Errorf("emulation: %v", err)
	}

	p.SetVideoSink(emu.pres)
	p.SetAudioSink(emu.pres)
	emu.plat = p
	emu.frame = 0

	if err := emu.resetRewind(); err != nil {
		logger.Logf(emu, "emulation", "%v", err)
	}

	// the presentation dispatchers run for the lifetime of the platform
	ctx, cancel := context.WithCancel(context.Background())
	emu.cancel = cancel
	emu.group, ctx = errgroup.WithContext(ctx)
	emu.done = ctx.Done()
	emu.group.Go(func() error {
		return emu.pres.dispatchFrames(ctx)
	})
	emu.group.Go(func() error {
		return emu.pres.dispatchAudio(ctx)
	})

	emu.setState(Loaded)
	logger.Logf(emu, "emulation", "loaded %s", p.ID())

	return nil
}

// Platform returns the platform being emulated. Returns nil if nothing has
// been loaded. The platform must only be accessed through Checkpoint() while
// the emulator is running.
func (emu *Emulator) Platform() *platform.Platform {
	return emu.plat
}

// Start the fixed timestep loop on its own goroutine. The loop ends when the
// context is cancelled or when Stop() is called.
func (emu *Emulator) Start(ctx context.Context) error {
	emu.crit.Lock()
	defer emu.crit.Unlock()

	if emu.started {
		return curated.Errorf("emulation: %v: already started", StateError)
	}
	switch emu.State() {
	case Loaded, Paused:
	default:
		return curated.Errorf("emulation: %v: cannot start when %s", StateError, emu.State())
	}

	emu.started = true
	refresh := emu.plat.Geometry().Refresh
	speed := emu.cfg.Speed()

	// the state is changed to Running only if the emulator was not paused
	if emu.State() == Loaded {
		emu.setState(Running)
	}

	emu.group.Go(func() error {
		return emu.loop(ctx, refresh, speed)
	})

	return nil
}

func (emu *Emulator) loop(ctx context.Context, refresh float64, speed float64) error {
	lmtr := newLimiter(refresh, speed)
	defer lmtr.stop()

	for {
		select {
		case <-ctx.Done():
			emu.crit.Lock()
			if emu.State() == Running || emu.State() == Paused {
				emu.setState(Paused)
			}
			emu.started = false
			emu.crit.Unlock()
			return nil
		case <-emu.done:
			return nil
		case <-lmtr.pulse.C:
		}

		emu.crit.Lock()
		if emu.State() == Running {
			if err := emu.runFrame(true); err != nil {
				emu.fault(err)
			}
			lmtr.checkFrame()
		}
		emu.crit.Unlock()

		lmtr.measureActual()
		emu.fps.Store(lmtr.actual.Load())
	}
}

// FPS returns the most recent measurement of the number of frames run per
// second by the loop.
func (emu *Emulator) FPS() float64 {
	return math.Float64frombits(emu.fps.Load())
}

// Pause the loop. The loop stops between two steps.
func (emu *Emulator) Pause() error {
	if emu.state.CompareAndSwap(int32(Running), int32(Paused)) {
		return nil
	}
	if emu.state.CompareAndSwap(int32(Loaded), int32(Paused)) {
		return nil
	}
	if emu.State() == Paused {
		return nil
	}
	return curated.Errorf("emulation: %v: cannot pause when %s", StateError, emu.State())
}

// Resume a paused emulator. If the loop has been started the emulator
// returns to the Running state, otherwise it returns to the Loaded state.
func (emu *Emulator) Resume() error {
	emu.crit.Lock()
	defer emu.crit.Unlock()
	return emu.resume()
}

func (emu *Emulator) resume() error {
	if emu.State() != Paused {
		return curated.Errorf("emulation: %v: cannot resume when %s", StateError, emu.State())
	}
	if emu.started {
		emu.setState(Running)
	} else {
		emu.setState(Loaded)
	}
	return nil
}

// Reset the platform. The state of the emulator is unchanged and the last
// fault is forgotten.
func (emu *Emulator) Reset() error {
	return emu.Checkpoint(func(p *platform.Platform) error {
		if err := p.Reset(); err != nil {
			return err
		}
		emu.frame = 0
		emu.lastFault = nil
		return emu.resetRewind()
	})
}

// Stop cancels the loop, waits for it to end and releases the platform. The
// presentation channels are closed. A stopped emulator cannot be used again.
func (emu *Emulator) Stop() error {
	emu.crit.Lock()
	if emu.State() == Stopped {
		emu.crit.Unlock()
		return nil
	}
	cancel := emu.cancel
	group := emu.group
	emu.crit.Unlock()

	var err error
	if cancel != nil {
		cancel()
		err = group.Wait()
	}

	emu.crit.Lock()
	defer emu.crit.Unlock()
	if emu.plat != nil {
		emu.plat.Release()
	}
	emu.setState(Stopped)
	emu.started = false
	emu.pres.close()
	close(emu.faults)

	logger.Log(emu, "emulation", "stopped")

	if err != nil {
		return curated.Errorf("emulation: %v", err)
	}
	return nil
}

// Checkpoint runs the function between two steps while holding the execution
// lock. The platform must not be retained after the function returns.
func (emu *Emulator) Checkpoint(f func(p *platform.Platform) error) error {
	emu.crit.Lock()
	defer emu.crit.Unlock()
	if err := emu.usable(); err != nil {
		return err
	}
	return f(emu.plat)
}

// usable returns an error if there is no platform to use.
func (emu *Emulator) usable() error {
	switch emu.State() {
	case Empty, Stopped:
		return curated.Errorf("emulation: %v: no platform when %s", StateError, emu.State())
	}
	return nil
}

// SetHooks installs the step hooks. A nil value removes the hooks.
func (emu *Emulator) SetHooks(h Hooks) {
	emu.crit.Lock()
	defer emu.crit.Unlock()
	emu.hooks = h
}

// SetHooksLocked is the same as SetHooks() but must only be called from
// inside a Checkpoint() function.
func (emu *Emulator) SetHooksLocked(h Hooks) {
	emu.hooks = h
}

// ResumeLocked is the same as Resume() but must only be called from inside a
// Checkpoint() function or a Hooks function.
func (emu *Emulator) ResumeLocked() error {
	return emu.resume()
}

// step the platform once. Returns true if the step was halted by a hook.
// Must be called with the execution lock held.
func (emu *Emulator) step() (int, bool, error) {
	if emu.hooks != nil && !emu.hooks.BeforeStep(emu.plat) {
		emu.setState(Paused)
		return 0, true, nil
	}

	n, err := emu.plat.Step()

	halt := false
	if emu.hooks != nil && !emu.hooks.AfterStep(emu.plat, n, err) {
		emu.setState(Paused)
		halt = true
	}

	if fn := emu.plat.Frame(); fn != emu.frame {
		emu.frame = fn
		emu.frameBoundary()
	}

	return n, halt, err
}

// frameBoundary is called once per completed frame.
func (emu *Emulator) frameBoundary() {
	emu.applyCheats()
	if !emu.catchingUp.Load() {
		err := emu.rewind.Check(emu.frame, emu.takeRewind)
		if err != nil {
			logger.Logf(emu, "emulation", "%v", err)
		}
	}
}

// runFrame steps the platform until the frame number changes. If checkState
// is true the function returns early if the emulator leaves the Running
// state. Must be called with the execution lock held.
func (emu *Emulator) runFrame(checkState bool) error {
	target := emu.plat.Frame() + 1
	for n := 0; emu.plat.Frame() < target && n < maxFrameSteps; n++ {
		if checkState && emu.State() != Running {
			return nil
		}
		_, halt, err := emu.step()
		if err != nil {
			return err
		}
		if halt {
			return nil
		}
	}
	return nil
}

// fault pauses the emulator and reports the error. Must be called with the
// execution lock held.
func (emu *Emulator) fault(err error) {
	emu.setState(Paused)
	emu.lastFault = err
	logger.Logf(emu, "emulation", "paused: %v", err)
	select {
	case emu.faults <- err:
	default:
	}
}

// synchronous returns an error if the emulator cannot be driven by
// StepInstruction() or RunFrame(). Must be called with the execution lock
// held.
func (emu *Emulator) synchronous() error {
	switch emu.State() {
	case Loaded, Paused:
		return nil
	}
	return curated.Errorf("emulation: %v: cannot drive the platform when %s", StateError, emu.State())
}

// StepInstruction executes a single CPU step. Only allowed when the
// emulator is loaded or paused. A fault pauses the emulator and is returned.
func (emu *Emulator) StepInstruction() (int, error) {
	emu.crit.Lock()
	defer emu.crit.Unlock()
	if err := emu.synchronous(); err != nil {
		return 0, err
	}
	n, _, err := emu.step()
	if err != nil {
		emu.fault(err)
	}
	return n, err
}

// StepLocked is the same as StepInstruction() but must only be called from
// inside a Checkpoint() function. The state of the emulator is not checked.
func (emu *Emulator) StepLocked() (int, error) {
	n, _, err := emu.step()
	if err != nil {
		emu.fault(err)
	}
	return n, err
}

// RunFrame runs the platform until the next frame is completed, a step hook
// halts it or a fault occurs. Only allowed when the emulator is loaded or
// paused. A fault pauses the emulator and is returned.
func (emu *Emulator) RunFrame() error {
	emu.crit.Lock()
	defer emu.crit.Unlock()
	if err := emu.synchronous(); err != nil {
		return err
	}
	if err := emu.runFrame(false); err != nil {
		emu.fault(err)
		return err
	}
	return nil
}

// Frames returns the channel of completed frames. The channel is closed by
// Stop().
func (emu *Emulator) Frames() <-chan video.Frame {
	return emu.pres.frames
}

// Audio returns the channel of completed audio buffers. The channel is
// closed by Stop().
func (emu *Emulator) Audio() <-chan audio.Buffer {
	return emu.pres.audio
}

// Dropped returns the number of frames and audio buffers dropped because the
// host did not keep up.
func (emu *Emulator) Dropped() (uint64, uint64) {
	return emu.pres.droppedFrames.Load(), emu.pres.droppedAudio.Load()
}

// Faults returns the channel of errors that paused the emulator. Delivery
// does not block and faults are lost if the channel is full. The channel is
// closed by Stop().
func (emu *Emulator) Faults() <-chan error {
	return emu.faults
}

// LastFault returns the error that most recently paused the emulator.
func (emu *Emulator) LastFault() error {
	emu.crit.Lock()
	defer emu.crit.Unlock()
	return emu.lastFault
}

// SetInput sets the state of the controller in a port. The value is latched
// and seen by the platform from the next step.
func (emu *Emulator) SetInput(port int, s input.Snapshot) error {
	return emu.Checkpoint(func(p *platform.Platform) error {
		return p.SetInput(port, s)
	})
}

// Counters returns the number of instructions and cycles executed since the
// last reset.
func (emu *Emulator) Counters() Counters {
	var c Counters
	_ = emu.Checkpoint(func(p *platform.Platform) error {
		c = Counters{
			Instructions: p.Instructions(),
			Cycles:       p.Cycles(),
			Frames:       p.Frame(),
		}
		return nil
	})
	return c
}
