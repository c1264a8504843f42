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

// AccessKind distinguishes reads from writes.
type AccessKind int

// List of valid AccessKind values.
const (
	AccessRead AccessKind = iota
	AccessWrite
)

func (k AccessKind) String() string {
	if k == AccessWrite {
		return "write"
	}
	return "read"
}

// Access describes a completed bus access. Value is the value returned by a
// read or the value written by a write.
type Access struct {
	Address uint32
	Width   int
	Kind    AccessKind
	Value   uint32
}

// Overlaps returns true if the access touches any byte in the range
// [address, address+size).
func (a Access) Overlaps(address uint32, size uint32) bool {
	if size == 0 {
		size = 1
	}
	aEnd := uint64(a.Address) + uint64(a.Width)
	end := uint64(address) + uint64(size)
	return uint64(a.Address) < end && uint64(address) < aEnd
}

// Observer is notified of every observed bus access.
type Observer interface {
	MemoryAccess(acc Access)
}

// CPUBus is the view of the bus used by CPU implementations.
type CPUBus interface {
	Read8(address uint32) (uint8, error)
	Write8(address uint32, data uint8) error
	Read(address uint32, width int) (uint32, error)
	Write(address uint32, width int, value uint32) error
}
