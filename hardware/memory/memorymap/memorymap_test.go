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

package memorymap_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/emulite/emulite/hardware/memory/memorymap"
	"github.com/emulite/emulite/test"
)

type device string

func (d device) Label() string {
	return string(d)
}

func TestAddAndLookup(t *testing.T) {
	m := memorymap.New[device](0xffff)

	test.ExpectSuccess(t, m.Add(memorymap.Range[device]{Start: 0x8000, End: 0xffff, Device: "ROM"}))
	test.ExpectSuccess(t, m.Add(memorymap.Range[device]{Start: 0x0000, End: 0x1fff, Device: "RAM", Mask: 0x07ff}))
	test.ExpectSuccess(t, m.Add(memorymap.Range[device]{Start: 0x2000, End: 0x3fff, Device: "PPU", Mask: 0x0007}))
	test.ExpectEquality(t, m.Len(), 3)

	// ranges are kept in address order
	r := m.Ranges()
	test.ExpectEquality(t, r[0].Device, device("RAM"))
	test.ExpectEquality(t, r[2].Device, device("ROM"))

	i, ok := m.Lookup(0x0801)
	test.DemandSuccess(t, ok)
	test.ExpectEquality(t, m.Range(i).Device, device("RAM"))
	test.ExpectEquality(t, m.Range(i).Offset(0x0801), uint32(0x0001))

	i, ok = m.Lookup(0x2009)
	test.DemandSuccess(t, ok)
	test.ExpectEquality(t, m.Range(i).Offset(0x2009), uint32(0x0001))

	i, ok = m.Lookup(0xfffc)
	test.DemandSuccess(t, ok)
	test.ExpectEquality(t, m.Range(i).Offset(0xfffc), uint32(0x7ffc))

	_, ok = m.Lookup(0x4000)
	test.ExpectFailure(t, ok)
}

func TestOverlap(t *testing.T) {
	m := memorymap.New[device](0xffff)
	test.ExpectSuccess(t, m.Add(memorymap.Range[device]{Start: 0x1000, End: 0x1fff, Device: "A"}))

	err := m.Add(memorymap.Range[device]{Start: 0x1fff, End: 0x2fff, Device: "B"})
	test.ExpectSuccess(t, errors.Is(err, memorymap.OverlapError))

	err = m.Add(memorymap.Range[device]{Start: 0x0000, End: 0x1000, Device: "B"})
	test.ExpectSuccess(t, errors.Is(err, memorymap.OverlapError))

	err = m.Add(memorymap.Range[device]{Start: 0x0000, End: 0x2000, Device: "B"})
	test.ExpectSuccess(t, errors.Is(err, memorymap.OverlapError))

	// beyond the address space
	err = m.Add(memorymap.Range[device]{Start: 0xf000, End: 0x10000, Device: "B"})
	test.ExpectSuccess(t, errors.Is(err, memorymap.OverlapError))

	// start after end
	err = m.Add(memorymap.Range[device]{Start: 0x3000, End: 0x2000, Device: "B"})
	test.ExpectSuccess(t, errors.Is(err, memorymap.OverlapError))

	// adjacent is fine
	test.ExpectSuccess(t, m.Add(memorymap.Range[device]{Start: 0x2000, End: 0x2fff, Device: "B"}))
	test.ExpectSuccess(t, m.Add(memorymap.Range[device]{Start: 0x0000, End: 0x0fff, Device: "C"}))
	test.ExpectEquality(t, m.Len(), 3)
}

func TestDevicesAndSummary(t *testing.T) {
	m := memorymap.New[device](0xffff)
	test.ExpectSuccess(t, m.Add(memorymap.Range[device]{Start: 0x0000, End: 0x00ff, Device: "RAM"}))
	test.ExpectSuccess(t, m.Add(memorymap.Range[device]{Start: 0x0100, End: 0x01ff, Device: "RAM"}))
	test.ExpectSuccess(t, m.Add(memorymap.Range[device]{Start: 0x8000, End: 0xffff, Device: "ROM"}))

	d := m.Devices()
	test.DemandEquality(t, len(d), 2)
	test.ExpectEquality(t, d[0], device("RAM"))
	test.ExpectEquality(t, d[1], device("ROM"))

	s := m.Summary()
	test.ExpectSuccess(t, strings.Contains(s, "00000000 -> 000001ff RAM (2 ranges)"))
	test.ExpectSuccess(t, strings.Contains(s, "00008000 -> 0000ffff ROM"))
}
