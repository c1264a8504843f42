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

// Package debugger implements a programmatic debugger for a running
// emulation. Features include:
//
//   - breakpoints with conditions written as Lua expressions
//   - watchpoints on ranges of memory
//   - single stepping
//   - register, flag and memory peek and poke
//   - an execution trace of the most recent instructions
//
// Initialisation of the debugger is done with the New() function. The
// emulator must have been created with debugging enabled in its
// configuration.
//
//	dbg := debugger.New(emu)
//	err := dbg.Attach()
//
// The debugger has four states. A new debugger is Detached. Attach() moves
// it to AttachedRunning, where the emulation runs at its normal cadence
// until a breakpoint or watchpoint halts it, or until Pause() is called.
// Both of these move the debugger to AttachedPaused. From there Step()
// executes exactly one instruction, passing through AttachedStepping on the
// way, and Continue() returns to AttachedRunning.
//
// Breakpoints are checked immediately before every step against the program
// counter at that point. Watchpoints are checked inside every bus access
// made during a step. A step that matches any number of watchpoints records
// every match but pauses only once, after the step has completed.
//
// Register, flag and memory access is only possible when the debugger is
// paused. Calling a function in the wrong state returns an error wrapping
// StateError and never changes the state of the emulation.
package debugger
