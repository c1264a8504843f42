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

package debugger

import (
	"errors"
	"io"
	"sync/atomic"

	"github.com/emulite/emulite/curated"
	"github.com/emulite/emulite/emulation"
	"github.com/emulite/emulite/hardware/memory"
	"github.com/emulite/emulite/hardware/platform"
	"github.com/emulite/emulite/logger"
)

// StateError is wrapped by errors returned when a debugger operation is not
// allowed in the current state, or when the arguments to an operation are
// unusable. The platform is never changed by an operation that returns a
// StateError.
var StateError = errors.New("invalid debugger state")

// State of the debugger.
type State int

// List of valid State values.
const (
	Detached State = iota
	AttachedRunning
	AttachedPaused
	AttachedStepping
)

func (s State) String() string {
	switch s {
	case Detached:
		return "detached"
	case AttachedRunning:
		return "running"
	case AttachedPaused:
		return "paused"
	case AttachedStepping:
		return "stepping"
	}
	return "unknown"
}

// Debugger controls and inspects the platform of an Emulator.
type Debugger struct {
	emu *emulation.Emulator

	state atomic.Int32

	// the following fields are only touched with the emulator's execution
	// lock held. either from inside a Checkpoint() function or from one of
	// the hook functions
	brk   *breakpoints
	wtc   *watches
	trace *ExecutionTrace

	// the program counter at the start of the current step
	stepPC uint32

	// the breakpoint check is skipped for the first step after Continue()
	// if the program counter is still skipPC
	skipBreak bool
	skipPC    uint32

	instructions int
	cycles       int

	events chan Event
}

// New is the preferred method of initialisation for the Debugger type. The
// debugger is not attached until Attach() is called.
func New(emu *emulation.Emulator) *Debugger {
	dbg := &Debugger{
		emu:    emu,
		brk:    newBreakpoints(),
		wtc:    newWatches(),
		trace:  newExecutionTrace(1),
		events: make(chan Event, eventQueue),
	}
	dbg.state.Store(int32(Detached))
	return dbg
}

// AllowLogging implements the logger.Permission interface.
func (dbg *Debugger) AllowLogging() bool {
	return dbg.emu.AllowLogging()
}

// State returns the current state of the debugger.
func (dbg *Debugger) State() State {
	return State(dbg.state.Load())
}

func (dbg *Debugger) setState(s State) {
	dbg.state.Store(int32(s))
}

func (dbg *Debugger) stateError(op string) error {
	return curated.Errorf("debugger: %v: cannot %s when %s", StateError, op, dbg.State())
}

// attached runs the function with the execution lock held. Returns a
// StateError if the debugger is not attached.
func (dbg *Debugger) attached(op string, f func(p *platform.Platform) error) error {
	if dbg.State() == Detached {
		return dbg.stateError(op)
	}
	return dbg.emu.Checkpoint(f)
}

// paused runs the function with the execution lock held. Returns a
// StateError if the debugger is not paused.
func (dbg *Debugger) paused(op string, f func(p *platform.Platform) error) error {
	if dbg.State() != AttachedPaused {
		return dbg.stateError(op)
	}
	return dbg.emu.Checkpoint(func(p *platform.Platform) error {
		if dbg.State() != AttachedPaused {
			return dbg.stateError(op)
		}
		return f(p)
	})
}

// Attach the debugger to the emulator. The emulator must have a platform and
// debugging must be enabled in the emulator's configuration.
//
// The execution trace is recreated with the configured capacity.
func (dbg *Debugger) Attach() error {
	cfg := dbg.emu.Config()
	if !cfg.DebugEnabled() {
		return curated.Errorf("debugger: %v: debugging is not enabled", StateError)
	}
	if dbg.State() != Detached {
		return curated.Errorf("debugger: %v: already attached", StateError)
	}

	return dbg.emu.Checkpoint(func(p *platform.Platform) error {
		dbg.trace = newExecutionTrace(cfg.TraceEntries())
		dbg.wtc.take()
		dbg.skipBreak = false
		dbg.emu.SetHooksLocked(dbg)
		p.Bus().SetObserver(dbg)
		dbg.setState(AttachedRunning)
		logger.Logf(dbg, "debugger", "attached to %s", p.Info().Name)
		return nil
	})
}

// Detach the debugger from the emulator. Breakpoints and watchpoints are
// kept for the next call to Attach(). The emulator is not resumed.
func (dbg *Debugger) Detach() error {
	if dbg.State() == Detached {
		return curated.Errorf("debugger: %v: not attached", StateError)
	}

	err := dbg.emu.Checkpoint(func(p *platform.Platform) error {
		dbg.emu.SetHooksLocked(nil)
		p.Bus().SetObserver(nil)
		dbg.setState(Detached)
		return nil
	})

	// a stopped emulator has no platform to detach from
	dbg.setState(Detached)
	if errors.Is(err, emulation.StateError) {
		return nil
	}
	return err
}

// Pause the emulation. The emulation stops at the next step boundary.
func (dbg *Debugger) Pause() error {
	if !dbg.state.CompareAndSwap(int32(AttachedRunning), int32(AttachedPaused)) {
		return dbg.stateError("pause")
	}
	if err := dbg.emu.Pause(); err != nil {
		logger.Logf(dbg, "debugger", "%v", err)
	}
	return nil
}

// Continue a paused emulation. If the emulation was halted by a breakpoint
// the breakpoint does not halt the emulation again until the program
// counter has moved.
func (dbg *Debugger) Continue() error {
	return dbg.paused("continue", func(p *platform.Platform) error {
		dbg.skipBreak = true
		dbg.skipPC = p.CPU().PC()
		dbg.setState(AttachedRunning)
		if dbg.emu.State() == emulation.Paused {
			return dbg.emu.ResumeLocked()
		}
		return nil
	})
}

// Step executes exactly one CPU step. Watchpoints are checked during the
// step but do not cause an event. The debugger is always paused afterwards.
//
// Returns the number of cycles consumed and any fault raised by the step.
func (dbg *Debugger) Step() (int, error) {
	var n int
	var serr error
	err := dbg.paused("step", func(p *platform.Platform) error {
		dbg.setState(AttachedStepping)
		defer dbg.setState(AttachedPaused)
		n, serr = dbg.emu.StepLocked()
		return nil
	})
	if err != nil {
		return 0, err
	}
	return n, serr
}

// halt the emulation of the debugger's own accord.
func (dbg *Debugger) halt(ev Event) {
	dbg.setState(AttachedPaused)
	dbg.send(ev)
	logger.Logf(dbg, "debugger", "halted: %v", ev)
}

// BeforeStep implements the emulation.Hooks interface.
func (dbg *Debugger) BeforeStep(p *platform.Platform) bool {
	switch dbg.State() {
	case AttachedPaused:
		return false
	case AttachedStepping:
		dbg.stepPC = p.CPU().PC()
		return true
	case Detached:
		return true
	}

	pc := p.CPU().PC()
	dbg.stepPC = pc

	if dbg.skipBreak {
		dbg.skipBreak = false
		if pc == dbg.skipPC {
			return true
		}
	}

	b, err := dbg.brk.check(pc, p)
	if err != nil {
		logger.Logf(dbg, "debugger", "%v", err)
	}
	if b != nil {
		dbg.halt(Event{
			Kind:       EventBreakpoint,
			PC:         pc,
			Breakpoint: b.ID,
		})
		return false
	}

	return true
}

// AfterStep implements the emulation.Hooks interface.
func (dbg *Debugger) AfterStep(p *platform.Platform, cycles int, err error) bool {
	dbg.trace.record(p.CPU().LastResult())
	dbg.instructions++
	dbg.cycles += cycles

	hits := dbg.wtc.take()

	if dbg.State() != AttachedRunning {
		return true
	}

	if err != nil {
		dbg.halt(Event{
			Kind: EventFault,
			PC:   dbg.stepPC,
			Err:  err,
		})
		return false
	}

	if len(hits) > 0 {
		dbg.halt(Event{
			Kind: EventWatchpoint,
			PC:   dbg.stepPC,
			Hits: hits,
		})
		return false
	}

	return true
}

// MemoryAccess implements the memory.Observer interface.
func (dbg *Debugger) MemoryAccess(acc memory.Access) {
	if dbg.State() == Detached {
		return
	}
	dbg.wtc.check(acc, dbg.stepPC)
}

// Events returns the channel on which events are sent. Events are lost if
// the channel is not drained.
func (dbg *Debugger) Events() <-chan Event {
	return dbg.events
}

// Register returns the value of the named CPU register.
func (dbg *Debugger) Register(name string) (uint32, error) {
	var v uint32
	err := dbg.paused("read register", func(p *platform.Platform) error {
		var ok bool
		v, ok = p.CPU().Register(name)
		if !ok {
			return curated.Errorf("debugger: %v: unknown register (%s)", StateError, name)
		}
		return nil
	})
	return v, err
}

// SetRegister changes the value of the named CPU register.
func (dbg *Debugger) SetRegister(name string, value uint32) error {
	return dbg.paused("set register", func(p *platform.Platform) error {
		if !p.CPU().SetRegister(name, value) {
			return curated.Errorf("debugger: %v: unknown register (%s)", StateError, name)
		}
		return nil
	})
}

// Flag returns the value of the named CPU flag.
func (dbg *Debugger) Flag(name string) (bool, error) {
	var v bool
	err := dbg.paused("read flag", func(p *platform.Platform) error {
		var ok bool
		v, ok = p.CPU().Flag(name)
		if !ok {
			return curated.Errorf("debugger: %v: unknown flag (%s)", StateError, name)
		}
		return nil
	})
	return v, err
}

// SetFlag changes the value of the named CPU flag.
func (dbg *Debugger) SetFlag(name string, value bool) error {
	return dbg.paused("set flag", func(p *platform.Platform) error {
		if !p.CPU().SetFlag(name, value) {
			return curated.Errorf("debugger: %v: unknown flag (%s)", StateError, name)
		}
		return nil
	})
}

// PC returns the address of the next instruction.
func (dbg *Debugger) PC() (uint32, error) {
	var pc uint32
	err := dbg.paused("read PC", func(p *platform.Platform) error {
		pc = p.CPU().PC()
		return nil
	})
	return pc, err
}

// SetPC changes the address of the next instruction.
func (dbg *Debugger) SetPC(pc uint32) error {
	return dbg.paused("set PC", func(p *platform.Platform) error {
		p.CPU().SetPC(pc)
		return nil
	})
}

// ReadMemory returns n bytes starting at address. Memory is read without
// side effects.
func (dbg *Debugger) ReadMemory(address uint32, n int) ([]uint8, error) {
	var b []uint8
	err := dbg.paused("read memory", func(p *platform.Platform) error {
		var err error
		b, err = p.Bus().PeekRange(address, n)
		if err != nil {
			return curated.Errorf("debugger: %v", err)
		}
		return nil
	})
	return b, err
}

// WriteMemory writes the bytes starting at address. The writes are normal
// bus writes and are seen by watchpoints, which record the current program
// counter.
func (dbg *Debugger) WriteMemory(address uint32, data []uint8) error {
	return dbg.paused("write memory", func(p *platform.Platform) error {
		dbg.stepPC = p.CPU().PC()

		// the emulation is already paused so the hits do not need to
		// halt the next step
		defer dbg.wtc.take()

		for i, v := range data {
			if err := p.Bus().Write8(address+uint32(i), v); err != nil {
				return curated.Errorf("debugger: %v", err)
			}
		}
		return nil
	})
}

// Trace returns a copy of the execution trace, oldest entry first.
func (dbg *Debugger) Trace() ([]TraceEntry, error) {
	var t []TraceEntry
	err := dbg.paused("read trace", func(_ *platform.Platform) error {
		t = dbg.trace.Entries()
		return nil
	})
	return t, err
}

// ExportTrace writes the execution trace as text, oldest entry first.
func (dbg *Debugger) ExportTrace(w io.Writer) error {
	return dbg.attached("export trace", func(_ *platform.Platform) error {
		return dbg.trace.export(w)
	})
}

// ClearTrace empties the execution trace.
func (dbg *Debugger) ClearTrace() error {
	return dbg.attached("clear trace", func(_ *platform.Platform) error {
		dbg.trace.clear()
		return nil
	})
}

// AddBreakpoint adds a breakpoint and returns its ID. The condition is a
// Lua expression. An empty condition is always true.
func (dbg *Debugger) AddBreakpoint(address uint32, condition string) (int, error) {
	var id int
	err := dbg.attached("add breakpoint", func(_ *platform.Platform) error {
		var err error
		id, err = dbg.brk.add(address, condition)
		return err
	})
	return id, err
}

// RemoveBreakpoint removes the breakpoint with the ID.
func (dbg *Debugger) RemoveBreakpoint(id int) error {
	return dbg.attached("remove breakpoint", func(_ *platform.Platform) error {
		return dbg.brk.drop(id)
	})
}

// EnableBreakpoint enables or disables the breakpoint with the ID.
func (dbg *Debugger) EnableBreakpoint(id int, enabled bool) error {
	return dbg.attached("enable breakpoint", func(_ *platform.Platform) error {
		return dbg.brk.enable(id, enabled)
	})
}

// Breakpoints returns a copy of every breakpoint in the order they were
// added.
func (dbg *Debugger) Breakpoints() []Breakpoint {
	var l []Breakpoint
	_ = dbg.attached("list breakpoints", func(_ *platform.Platform) error {
		l = dbg.brk.list()
		return nil
	})
	return l
}

// AddWatchpoint adds a watchpoint covering size bytes from address and
// returns its ID. A size of zero is the same as a size of one.
func (dbg *Debugger) AddWatchpoint(address uint32, size uint32, filter WatchFilter) (int, error) {
	var id int
	err := dbg.attached("add watchpoint", func(_ *platform.Platform) error {
		var err error
		id, err = dbg.wtc.add(address, size, filter)
		return err
	})
	return id, err
}

// RemoveWatchpoint removes the watchpoint with the ID.
func (dbg *Debugger) RemoveWatchpoint(id int) error {
	return dbg.attached("remove watchpoint", func(_ *platform.Platform) error {
		return dbg.wtc.drop(id)
	})
}

// EnableWatchpoint enables or disables the watchpoint with the ID.
func (dbg *Debugger) EnableWatchpoint(id int, enabled bool) error {
	return dbg.attached("enable watchpoint", func(_ *platform.Platform) error {
		return dbg.wtc.enable(id, enabled)
	})
}

// Watchpoints returns a copy of every watchpoint in the order they were
// added.
func (dbg *Debugger) Watchpoints() []Watchpoint {
	var l []Watchpoint
	_ = dbg.attached("list watchpoints", func(_ *platform.Platform) error {
		l = dbg.wtc.list()
		return nil
	})
	return l
}

// Hits returns the most recent watchpoint matches, oldest first.
func (dbg *Debugger) Hits() []Hit {
	var h []Hit
	_ = dbg.attached("list hits", func(_ *platform.Platform) error {
		h = dbg.wtc.hits.Slice()
		return nil
	})
	return h
}

// Instructions returns the number of steps seen since the counters were last
// reset.
func (dbg *Debugger) Instructions() int {
	var n int
	_ = dbg.attached("count instructions", func(_ *platform.Platform) error {
		n = dbg.instructions
		return nil
	})
	return n
}

// CyclesCounted returns the number of cycles seen since the counters were
// last reset.
func (dbg *Debugger) CyclesCounted() int {
	var n int
	_ = dbg.attached("count cycles", func(_ *platform.Platform) error {
		n = dbg.cycles
		return nil
	})
	return n
}

// ResetCounters sets the instruction and cycle counters to zero.
func (dbg *Debugger) ResetCounters() error {
	return dbg.attached("reset counters", func(_ *platform.Platform) error {
		dbg.instructions = 0
		dbg.cycles = 0
		return nil
	})
}

// Close releases the resources used by the condition interpreter. The
// debugger is detached first if necessary and cannot be used again.
func (dbg *Debugger) Close() {
	if dbg.State() != Detached {
		_ = dbg.Detach()
	}
	dbg.brk.close()
}
