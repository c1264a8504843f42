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

package platform

import (
	"github.com/emulite/emulite/config"
	"github.com/emulite/emulite/curated"
	"github.com/emulite/emulite/hardware/clocks"
	"github.com/emulite/emulite/hardware/cpu"
	"github.com/emulite/emulite/hardware/interrupt"
	"github.com/emulite/emulite/hardware/memory"
	"github.com/emulite/emulite/hardware/memory/memorymap"
	"github.com/emulite/emulite/hardware/peripherals"
	"github.com/emulite/emulite/hardware/peripherals/audio"
	"github.com/emulite/emulite/hardware/peripherals/input"
	"github.com/emulite/emulite/hardware/peripherals/video"
	"github.com/emulite/emulite/logger"
	"github.com/emulite/emulite/savestate"
)

// hardware is the platform specific part of a composition.
type hardware interface {
	// load parses the image and installs the ROM devices on the bus
	load(rom []uint8) error

	// reset the peripheral registers. called after the bus devices have been
	// reset and before the CPU is reset
	reset()

	setInput(port int, s input.Snapshot) error

	release()

	savestate.Snapshotter
}

// Platform is a complete emulated machine.
type Platform struct {
	info Info
	cfg  *config.Config

	bus   *memory.Bus
	lines *interrupt.Lines
	cpu   cpu.CPU

	video *video.Generator
	audio *audio.Generator

	// every peripheral stepper and the accumulator that drives it. the
	// slices are parallel
	steppers     []peripherals.Stepper
	accumulators []*clocks.Accumulator

	hw hardware

	loaded bool

	// stall requested during the current step. stallOn is an index into the
	// steppers slice or -1
	stallOn int
	stall   int

	cycles       uint64
	instructions uint64

	perm logger.Permission
}

// newPlatform creates the parts of a Platform common to every composition.
// The caller adds the CPU, the steppers and the hardware.
func newPlatform(info Info, cfg *config.Config, bus *memory.Bus) *Platform {
	return &Platform{
		info:    info,
		cfg:     cfg,
		bus:     bus,
		lines:   &interrupt.Lines{},
		stallOn: -1,
		perm:    logger.Allow,
	}
}

// addStepper adds a peripheral and creates its accumulator.
func (p *Platform) addStepper(s peripherals.Stepper) {
	p.steppers = append(p.steppers, s)
	p.accumulators = append(p.accumulators, clocks.NewAccumulator(s.Ratio()))
}

// addVideo creates the video generator of the platform.
func (p *Platform) addVideo(geometry video.Geometry, ratio clocks.Ratio, renderer video.Renderer) error {
	gen, err := video.NewGenerator(p.info.ID, geometry, ratio, renderer)
	if err != nil {
		return curated.Errorf("platform: %v", err)
	}
	p.video = gen
	p.addStepper(gen)
	return nil
}

// addAudio creates the audio generator of the platform. The clock is the CPU
// clock in Hz.
func (p *Platform) addAudio(clock int, voices ...*audio.Voice) error {
	gen, err := audio.NewGenerator(p.info.ID, clock, p.cfg.SampleRate(), p.cfg.Channels(), p.cfg.BufferSize(), voices...)
	if err != nil {
		return curated.Errorf("platform: %v", err)
	}
	p.audio = gen
	p.addStepper(gen)
	return nil
}

// SetLogPermission sets the permission used for log entries made by the
// platform.
func (p *Platform) SetLogPermission(perm logger.Permission) {
	if perm == nil {
		perm = logger.Allow
	}
	p.perm = perm
}

// ID returns the identifier of the platform.
func (p *Platform) ID() string {
	return p.info.ID
}

// Info returns a description of the platform.
func (p *Platform) Info() Info {
	return p.info
}

func (p *Platform) String() string {
	return p.info.String()
}

// CPU returns the CPU of the platform.
func (p *Platform) CPU() cpu.CPU {
	return p.cpu
}

// Bus returns the memory bus of the platform.
func (p *Platform) Bus() *memory.Bus {
	return p.bus
}

// MemoryMap returns the memory map of the platform's bus.
func (p *Platform) MemoryMap() *memorymap.Map[memory.Device] {
	return p.bus.Map()
}

// Lines returns the interrupt lines of the platform.
func (p *Platform) Lines() *interrupt.Lines {
	return p.lines
}

// Steppers returns the peripherals of the platform.
func (p *Platform) Steppers() []peripherals.Stepper {
	return p.steppers
}

// Loaded returns true if a ROM image has been loaded.
func (p *Platform) Loaded() bool {
	return p.loaded
}

// Cycles returns the number of CPU cycles consumed since reset.
func (p *Platform) Cycles() uint64 {
	return p.cycles
}

// Instructions returns the number of steps taken since reset.
func (p *Platform) Instructions() uint64 {
	return p.instructions
}

// Frame returns the number of completed video frames since reset.
func (p *Platform) Frame() int {
	return p.video.Frame()
}

// Picture returns the frame being drawn. The pixel data is shared with the
// video generator.
func (p *Platform) Picture() video.Frame {
	return p.video.Current()
}

// Geometry returns the geometry of the video signal.
func (p *Platform) Geometry() video.Geometry {
	return p.video.Geometry()
}

// SetVideoSink sets the destination for completed frames.
func (p *Platform) SetVideoSink(sink video.Sink) {
	p.video.SetSink(sink)
}

// SetAudioSink sets the destination for completed audio buffers. Platforms
// without audio ignore the sink.
func (p *Platform) SetAudioSink(sink audio.Sink) {
	if p.audio != nil {
		p.audio.SetSink(sink)
	}
}

// Load a ROM image. The image is parsed and the ROM devices are installed
// on the bus. A malformed image returns a cartridge.FormatError. An image
// can only be loaded once.
func (p *Platform) Load(rom []uint8) error {
	if p.loaded {
		return curated.Errorf("platform: %s: image already loaded", p.info.ID)
	}
	if err := p.hw.load(rom); err != nil {
		return curated.Errorf("platform: %s: %v", p.info.ID, err)
	}
	p.loaded = true
	logger.Logf(p.perm, "platform", "%s: loaded %d bytes", p.info.ID, len(rom))
	return nil
}

// Reset the platform to its power-on state. The CPU is reset last and reads
// its reset vector through the bus.
func (p *Platform) Reset() error {
	p.bus.Reset()
	for _, s := range p.steppers {
		s.Reset()
	}
	for _, a := range p.accumulators {
		a.Reset()
	}
	p.lines.Reset()
	p.hw.reset()

	p.stallOn = -1
	p.stall = 0
	p.cycles = 0
	p.instructions = 0

	if err := p.cpu.Reset(); err != nil {
		return curated.Errorf("platform: %s: %v", p.info.ID, err)
	}
	return nil
}

// Step executes one CPU instruction and advances the peripherals by the
// number of cycles consumed. A memory fault does not stop the step. The
// first fault is returned with the cycle count.
func (p *Platform) Step() (int, error) {
	if !p.loaded {
		return 0, curated.Errorf("platform: %s: no image loaded", p.info.ID)
	}

	n, err := p.cpu.Step()
	p.instructions++

	// cycles taken by DMA during the instruction
	n += p.stall
	p.stall = 0

	if serr := p.advance(n); err == nil {
		err = serr
	}

	// the CPU is held until the next tick of the peripheral
	if p.stallOn >= 0 {
		s := p.accumulators[p.stallOn].UntilTick()
		p.stallOn = -1
		n += s
		if serr := p.advance(s); err == nil {
			err = serr
		}
	}

	p.cycles += uint64(n)

	return n, err
}

// advance every peripheral by a number of CPU cycles.
func (p *Platform) advance(cycles int) error {
	var err error
	for i, a := range p.accumulators {
		for t := a.Add(cycles); t > 0; t-- {
			if serr := p.steppers[i].Tick(); serr != nil && err == nil {
				err = serr
			}
		}
	}
	return err
}

// StallUntil holds the CPU until the next tick of the peripheral. The
// stalled cycles are counted as consumed by the current step. Peripherals
// call this from a register write, for example the WSYNC strobe of the
// Atari 2600.
func (p *Platform) StallUntil(s peripherals.Stepper) {
	for i := range p.steppers {
		if p.steppers[i] == s {
			p.stallOn = i
			return
		}
	}
}

// Stall adds a number of cycles to the current step. Used for DMA transfers
// that take the bus away from the CPU.
func (p *Platform) Stall(cycles int) {
	if cycles > 0 {
		p.stall += cycles
	}
}

// SetInput sets the state of the controller in a port. Ports are numbered
// from zero.
func (p *Platform) SetInput(port int, s input.Snapshot) error {
	return p.hw.setInput(port, s)
}

// Release frees the devices and buffers of the platform. The platform
// cannot be used afterwards.
func (p *Platform) Release() {
	if p.hw != nil {
		p.hw.release()
	}
	p.bus.Release()
	if p.video != nil {
		p.video.Release()
	}
	if p.audio != nil {
		p.audio.Release()
	}
	p.loaded = false
	logger.Logf(p.perm, "platform", "%s: released", p.info.ID)
}

// SaveState implements the savestate.Snapshotter interface.
func (p *Platform) SaveState(enc *savestate.Encoder) {
	enc.String(1, p.info.ID)
	enc.Snapshot(2, p.cpu)
	enc.Snapshot(3, p.bus)
	enc.Snapshot(4, p.lines)
	for _, s := range p.steppers {
		enc.Snapshot(5, s)
	}
	for _, a := range p.accumulators {
		enc.Snapshot(6, a)
	}
	enc.Uint(7, p.cycles)
	enc.Uint(8, p.instructions)
	enc.Snapshot(9, p.hw)
}

// RestoreState implements the savestate.Snapshotter interface.
func (p *Platform) RestoreState(dec *savestate.Decoder) error {
	if id := dec.String(1); id != p.info.ID {
		return curated.Errorf("platform: %v: state is for %s not %s", savestate.CorruptError, id, p.info.ID)
	}

	steppers, err := dec.Messages(5)
	if err != nil {
		return err
	}
	accumulators, err := dec.Messages(6)
	if err != nil {
		return err
	}
	if len(steppers) != len(p.steppers) || len(accumulators) != len(p.accumulators) {
		return curated.Errorf("platform: %v: %s has %d peripherals, state has %d", savestate.CorruptError, p.info.ID, len(p.steppers), len(steppers))
	}

	if err := dec.Restore(2, p.cpu); err != nil {
		return err
	}
	if err := dec.Restore(3, p.bus); err != nil {
		return err
	}
	if err := dec.Restore(4, p.lines); err != nil {
		return err
	}
	for i, s := range p.steppers {
		if err := s.RestoreState(steppers[i]); err != nil {
			return err
		}
	}
	for i, a := range p.accumulators {
		if err := a.RestoreState(accumulators[i]); err != nil {
			return err
		}
	}
	p.cycles = dec.Uint(7)
	p.instructions = dec.Uint(8)
	p.stallOn = -1
	p.stall = 0

	return dec.Restore(9, p.hw)
}
