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

package memory

import (
	"github.com/emulite/emulite/savestate"
)

// Device is implemented by everything that can be attached to a Bus. Offsets
// are relative to the device and are calculated by the bus from the range
// the device is mapped to.
type Device interface {
	Label() string

	// Read may have side effects, for example bank switching or clearing a
	// status register.
	Read(offset uint32) (uint8, error)
	Write(offset uint32, data uint8) error

	// Peek returns the value at offset without side effects.
	Peek(offset uint32) uint8

	// Reset returns the device to its power-on state. RAM contents are
	// cleared.
	Reset()

	savestate.Snapshotter
}

// WritePolicy describes how a read-only device responds to a write. The
// policy is set for each device individually.
type WritePolicy int

// List of valid WritePolicy values.
const (
	// the write is silently ignored
	IgnoreWrites WritePolicy = iota

	// the write is ignored and a *Fault is returned
	RaiseOnWrite
)
