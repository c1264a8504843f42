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
	"fmt"
)

// EventKind indicates why an Event was sent.
type EventKind int

// List of valid EventKind values.
const (
	EventBreakpoint EventKind = iota
	EventWatchpoint
	EventFault
)

func (k EventKind) String() string {
	switch k {
	case EventBreakpoint:
		return "breakpoint"
	case EventWatchpoint:
		return "watchpoint"
	case EventFault:
		return "fault"
	}
	return "unknown"
}

// Event is sent on the Events() channel whenever the debugger pauses the
// emulation of its own accord.
type Event struct {
	Kind EventKind

	// the program counter at the start of the step that caused the event
	PC uint32

	// the breakpoint that halted the emulation. only valid for
	// EventBreakpoint
	Breakpoint int

	// every watchpoint match made during the step. only valid for
	// EventWatchpoint
	Hits []Hit

	// the fault returned by the step. only valid for EventFault
	Err error
}

func (ev Event) String() string {
	switch ev.Kind {
	case EventBreakpoint:
		return fmt.Sprintf("breakpoint #%d at %08x", ev.Breakpoint, ev.PC)
	case EventWatchpoint:
		return fmt.Sprintf("watchpoint at %08x (%d hits)", ev.PC, len(ev.Hits))
	case EventFault:
		return fmt.Sprintf("fault at %08x: %v", ev.PC, ev.Err)
	}
	return ev.Kind.String()
}

const eventQueue = 16

// send the event without blocking. the event is lost if the channel is full.
func (dbg *Debugger) send(ev Event) {
	select {
	case dbg.events <- ev:
	default:
	}
}
