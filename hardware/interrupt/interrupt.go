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

// Package interrupt models the interrupt request lines between peripherals
// and the CPU.
//
// Peripherals never call into the CPU. They raise or lower a line and the CPU
// samples the lines at the start of its next instruction.
package interrupt

import (
	"github.com/emulite/emulite/savestate"
)

// Source identifies a peripheral driving the IRQ line. Each platform defines
// its own sources. There can be no more than 32.
type Source uint

// Lines are the interrupt request lines of a platform.
//
// The NMI line is edge triggered. A rising edge leaves a pending request that
// stays pending until the CPU takes it, even if the line falls again.
//
// The IRQ line is level triggered and is the OR of every raised source.
type Lines struct {
	nmi        bool
	nmiPending bool
	irq        uint32
}

// SetNMI drives the NMI line.
func (l *Lines) SetNMI(level bool) {
	if level && !l.nmi {
		l.nmiPending = true
	}
	l.nmi = level
}

// PulseNMI raises and lowers the NMI line, leaving a pending request.
func (l *Lines) PulseNMI() {
	l.SetNMI(true)
	l.SetNMI(false)
}

// NMIPending returns true if an NMI edge has not been taken.
func (l *Lines) NMIPending() bool {
	return l.nmiPending
}

// TakeNMI returns true if an NMI is pending and clears the request.
func (l *Lines) TakeNMI() bool {
	p := l.nmiPending
	l.nmiPending = false
	return p
}

// RaiseIRQ asserts the IRQ line on behalf of a source.
func (l *Lines) RaiseIRQ(src Source) {
	l.irq |= 1 << src
}

// LowerIRQ releases the IRQ line on behalf of a source.
func (l *Lines) LowerIRQ(src Source) {
	l.irq &^= 1 << src
}

// IRQ returns true if any source is asserting the IRQ line.
func (l *Lines) IRQ() bool {
	return l.irq != 0
}

// IRQSource returns true if the specified source is asserting the IRQ line.
func (l *Lines) IRQSource(src Source) bool {
	return l.irq&(1<<src) != 0
}

// Reset releases all lines and forgets pending requests.
func (l *Lines) Reset() {
	*l = Lines{}
}

// SaveState implements the savestate.Snapshotter interface.
func (l *Lines) SaveState(enc *savestate.Encoder) {
	enc.Bool(1, l.nmi)
	enc.Bool(2, l.nmiPending)
	enc.Uint(3, uint64(l.irq))
}

// RestoreState implements the savestate.Snapshotter interface.
func (l *Lines) RestoreState(dec *savestate.Decoder) error {
	l.nmi = dec.Bool(1)
	l.nmiPending = dec.Bool(2)
	l.irq = uint32(dec.Uint(3))
	return nil
}
