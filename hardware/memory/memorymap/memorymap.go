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

// Package memorymap describes how an address space is divided between
// devices. A Map is an ordered set of non-overlapping ranges. Any address
// resolves to at most one range.
//
// The package is generic over the device type so that it does not depend on
// the memory package, which uses it.
package memorymap

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/emulite/emulite/curated"
)

// OverlapError is returned when a range cannot be added to a map.
var OverlapError = errors.New("invalid range")

// Labeller is the only requirement for a device in a memory map.
type Labeller interface {
	Label() string
}

// Range of addresses covered by a single device. The device sees an offset
// rather than the bus address:
//
//	offset = Base + ((address - Start) & Mask)
//
// A Mask of zero means no masking. Masking is how a device is mirrored
// across a range larger than itself.
type Range[D Labeller] struct {
	Start  uint32
	End    uint32
	Device D
	Base   uint32
	Mask   uint32
}

// Contains returns true if address is within the range.
func (r Range[D]) Contains(address uint32) bool {
	return address >= r.Start && address <= r.End
}

// Offset converts a bus address to a device offset.
func (r Range[D]) Offset(address uint32) uint32 {
	o := address - r.Start
	if r.Mask != 0 {
		o &= r.Mask
	}
	return r.Base + o
}

func (r Range[D]) String() string {
	s := fmt.Sprintf("%08x -> %08x %s", r.Start, r.End, r.Device.Label())
	if r.Mask != 0 {
		s = fmt.Sprintf("%s (mask %#x)", s, r.Mask)
	}
	return s
}

// Map is an ordered set of ranges.
type Map[D Labeller] struct {
	max    uint32
	ranges []Range[D]
}

// New creates an empty Map for an address space with the specified maximum
// address.
func New[D Labeller](max uint32) *Map[D] {
	return &Map[D]{max: max}
}

// Max returns the highest address in the address space.
func (m *Map[D]) Max() uint32 {
	return m.max
}

// Add a range to the map. The range must lie within the address space and
// must not overlap an existing range.
func (m *Map[D]) Add(r Range[D]) error {
	if r.Start > r.End {
		return curated.Errorf("memorymap: %v: start %#x after end %#x", OverlapError, r.Start, r.End)
	}
	if r.End > m.max {
		return curated.Errorf("memorymap: %v: end %#x beyond address space %#x", OverlapError, r.End, m.max)
	}

	i := sort.Search(len(m.ranges), func(i int) bool {
		return m.ranges[i].End >= r.Start
	})
	if i < len(m.ranges) && m.ranges[i].Start <= r.End {
		return curated.Errorf("memorymap: %v: %s overlaps %s", OverlapError, r.String(), m.ranges[i].String())
	}

	m.ranges = append(m.ranges, Range[D]{})
	copy(m.ranges[i+1:], m.ranges[i:])
	m.ranges[i] = r

	return nil
}

// Lookup returns the index of the range covering address. Returns false if
// no range covers the address.
func (m *Map[D]) Lookup(address uint32) (int, bool) {
	i := sort.Search(len(m.ranges), func(i int) bool {
		return m.ranges[i].End >= address
	})
	if i < len(m.ranges) && m.ranges[i].Start <= address {
		return i, true
	}
	return -1, false
}

// Range returns the range at index i. Index values come from Lookup().
func (m *Map[D]) Range(i int) *Range[D] {
	return &m.ranges[i]
}

// Len returns the number of ranges in the map.
func (m *Map[D]) Len() int {
	return len(m.ranges)
}

// Ranges returns a copy of all ranges in address order.
func (m *Map[D]) Ranges() []Range[D] {
	c := make([]Range[D], len(m.ranges))
	copy(c, m.ranges)
	return c
}

// Devices returns every device in the map, in the order of its first
// appearance. Devices mapped to more than one range are listed once.
func (m *Map[D]) Devices() []D {
	seen := make(map[any]bool)
	d := make([]D, 0, len(m.ranges))
	for _, r := range m.ranges {
		if !seen[r.Device] {
			seen[r.Device] = true
			d = append(d, r.Device)
		}
	}
	return d
}

// Clear removes all ranges.
func (m *Map[D]) Clear() {
	m.ranges = m.ranges[:0]
}

// Summary returns a multiline description of the map. Consecutive ranges for
// the same device are combined with a count.
func (m *Map[D]) Summary() string {
	s := strings.Builder{}
	for i := 0; i < len(m.ranges); i++ {
		r := m.ranges[i]
		n := 1
		for i+1 < len(m.ranges) && any(m.ranges[i+1].Device) == any(r.Device) && m.ranges[i+1].Start == m.ranges[i].End+1 {
			i++
			n++
		}
		if n == 1 {
			s.WriteString(r.String())
		} else {
			s.WriteString(fmt.Sprintf("%08x -> %08x %s (%d ranges)", r.Start, m.ranges[i].End, r.Device.Label(), n))
		}
		s.WriteString("\n")
	}
	return s.String()
}
