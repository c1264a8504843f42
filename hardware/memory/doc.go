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

// Package memory implements the memory bus and the devices that can be
// attached to it.
//
// A Bus maps address ranges to devices using a memorymap.Map. Every access is
// resolved to exactly one device or, if no device covers the address, to the
// bus's open bus policy. Accesses of 1, 2 or 4 bytes are supported and are
// decomposed into single byte accesses in the byte order of the bus.
//
// Device types are RAM, ROM, Registers (memory mapped I/O handled by a
// peripheral) and Banked (bank switched ROM). Bank switching state is private
// to the Banked device.
//
// An Observer can be attached to the bus. It is notified synchronously of
// every Read() and Write(), after the access has completed but before the
// value is returned. This is how the debugger implements watchpoints. The
// Peek() functions are never observed and have no side effects.
//
// Errors of type *Fault are returned when a write is made to a ROM device
// that raises on write, or when an access falls outside the address space of
// the bus. Faults are recoverable and the bus remains usable.
package memory
