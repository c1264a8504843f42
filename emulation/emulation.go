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

// Package emulation runs a platform. The Emulator type owns the platform and
// drives it with a fixed timestep loop, handing completed frames and audio
// buffers to its presentation channels without ever blocking the core.
//
// Everything that touches the platform from outside the loop goes through
// Checkpoint(), which runs between two steps while holding the execution
// lock. Snapshots, restores, debugger access, input and cheats all use it.
//
// For hosts and tests that want to drive the emulation themselves, the
// StepInstruction() and RunFrame() functions run the platform synchronously.
// They can be used when the emulator has not been started or is paused.
package emulation

import (
	"github.com/emulite/emulite/hardware/platform"
)

// State indicates the emulator's state.
type State int

// List of possible emulator states.
//
// Empty is the state before anything has been loaded. Stopped is the state
// after Stop() has been called. The platform of a stopped emulator has been
// released.
const (
	Empty State = iota
	Loaded
	Running
	Paused
	Stopped
)

func (s State) String() string {
	switch s {
	case Empty:
		return "empty"
	case Loaded:
		return "loaded"
	case Running:
		return "running"
	case Paused:
		return "paused"
	case Stopped:
		return "stopped"
	}
	return "unknown"
}

// Hooks are called around every step of the CPU. Both functions are called
// with the execution lock held and must not call Checkpoint().
//
// If BeforeStep returns false the step is not taken. If AfterStep returns
// false the emulator pauses after the step. In both cases the emulator
// enters the Paused state.
//
// The only likely implementation of this interface is the debugger.Debugger
// type.
type Hooks interface {
	BeforeStep(p *platform.Platform) bool
	AfterStep(p *platform.Platform, cycles int, err error) bool
}

// Counters of executed instructions and cycles since the last reset.
type Counters struct {
	Instructions uint64
	Cycles       uint64
	Frames       int
}
