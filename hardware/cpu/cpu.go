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

// Package cpu defines the interface shared by every CPU family. The register
// layout of each family is private to its own package. Registers and flags
// are reached by name through the interface.
//
// A CPU reads and writes memory only through a memory.CPUBus, including the
// fetch of instructions.
package cpu

import (
	"github.com/emulite/emulite/savestate"
)

// CPU is implemented by every CPU family.
type CPU interface {
	// Label is the name of the CPU type. For example, "MOS 6507"
	Label() string

	// Reset the CPU to its power-on state. The program counter is loaded from
	// the reset vector (read through the bus) or the fixed reset address of
	// the architecture.
	Reset() error

	// Step executes one instruction, or takes one pending interrupt, and
	// returns the number of cycles consumed. A memory fault does not stop
	// the instruction. The first fault is returned with the cycle count.
	Step() (int, error)

	// PC returns the address of the next instruction to be fetched
	PC() uint32
	SetPC(pc uint32)

	// Registers returns the names of the registers in a sensible display
	// order. Register() and SetRegister() return false if the name is not
	// recognised.
	Registers() []string
	Register(name string) (uint32, bool)
	SetRegister(name string, value uint32) bool

	// Flags returns the names of the status flags.
	Flags() []string
	Flag(name string) (bool, bool)
	SetFlag(name string, value bool) bool

	// LastResult returns information about the most recent call to Step()
	LastResult() Result

	savestate.Snapshotter
}
