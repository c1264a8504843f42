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
	"errors"
	"fmt"
)

// FaultError is wrapped by every *Fault. Use errors.Is(err, FaultError) to
// test for a memory fault.
var FaultError = errors.New("memory fault")

// FaultReason describes why a memory access faulted.
type FaultReason int

// List of valid FaultReason values.
const (
	ReadOnly FaultReason = iota
	OutOfRange
	BadWidth
)

func (r FaultReason) String() string {
	switch r {
	case ReadOnly:
		return "write to read-only device"
	case OutOfRange:
		return "address outside address space"
	case BadWidth:
		return "unsupported access width"
	}
	return "unknown fault"
}

// Fault describes a failed memory access.
type Fault struct {
	Reason  FaultReason
	Kind    AccessKind
	Address uint32
	Width   int
	Device  string
}

func (f *Fault) Error() string {
	if f.Device != "" {
		return fmt.Sprintf("memory fault: %s %s at %#x (%d bytes)", f.Reason, f.Device, f.Address, f.Width)
	}
	return fmt.Sprintf("memory fault: %s: %s at %#x (%d bytes)", f.Reason, f.Kind, f.Address, f.Width)
}

// Unwrap returns FaultError.
func (f *Fault) Unwrap() error {
	return FaultError
}
